// Package repl interprets the commands of the interactive terminal player.
//
// Every line is a command starting with ':'. Commands changing the selection print the
// rendered document afterwards, followed by the functions the change triggered.
package repl

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/proseplay/proseplay/annotation"
	"github.com/proseplay/proseplay/play"
	"github.com/proseplay/proseplay/render"
	"github.com/proseplay/proseplay/samples"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrUsage          = errors.New("invalid usage")
	ErrQuit           = errors.New("quit")
)

const HelpText = `
Commands:
  :load <path>            Load an annotated text file
  :sample [name]          Load a sample, or list the samples without a name
  :text <text>            Load the text, "\n" separates the lines
  :slide <window> <n>     Select the choice n of the window
  :random [window...]     Randomise the windows, all of them without arguments
  :expand                 Show every alternative
  :collapse               Show the current choices only
  :snapshot               Print the plain text of the current selection
  :show                   Print the rendered document
  :links                  List the linked windows
  :warnings [n]           Keep at most n warnings per load, or show the limit
  :help                   Show this help
  :quit                   Exit
`

// Interpreter runs commands against one document.
type Interpreter struct {
	doc     *play.Document
	catalog samples.Catalog
	out     io.Writer
	render  render.Options

	maxWarnings int
	// dropped is the number of warnings suppressed by the last load.
	dropped int

	// fired collects the triggers of the current command.
	fired []play.Trigger
}

// New returns an Interpreter with an empty document. The document is strict,
// so invalid indexes are reported to the user.
func New(out io.Writer, catalog samples.Catalog, styled bool, opts ...play.Option) *Interpreter {
	it := &Interpreter{
		catalog:     catalog,
		out:         out,
		maxWarnings: annotation.DefaultMaxWarnings,
		render: render.Options{
			Styled:   styled,
			Brackets: true,
			Links:    true,
		},
	}

	it.doc = play.Parse("", append([]play.Option{play.WithStrict()}, opts...)...)

	return it
}

// SetMaxWarnings limits the warnings printed by the next loads.
// A negative limit is an [annotation.ConfigError].
func (it *Interpreter) SetMaxWarnings(limit int) error {
	if _, err := annotation.NewWarnings(limit); err != nil {
		return err
	}

	it.maxWarnings = limit
	return nil
}

// Document returns the played document.
func (it *Interpreter) Document() *play.Document {
	return it.doc
}

// Execute runs the command line. It returns ErrQuit on ":quit".
func (it *Interpreter) Execute(line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	name, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch name {
	case ":quit", ":q":
		return ErrQuit

	case ":help", ":h":
		fmt.Fprint(it.out, HelpText)
		return nil

	case ":load":
		if rest == "" {
			return fmt.Errorf("%w: :load <path>", ErrUsage)
		}

		data, err := os.ReadFile(rest)
		if err != nil {
			return fmt.Errorf("cannot read %s: %w", rest, err)
		}

		return it.load(string(data))

	case ":sample":
		if rest == "" {
			it.listSamples()
			return nil
		}

		sample, err := it.catalog.Get(rest)
		if err != nil {
			return err
		}

		fmt.Fprintf(it.out, "%s by %s\n\n", sample.Title, sample.Author)
		return it.load(sample.Text)

	case ":text":
		if rest == "" {
			return fmt.Errorf("%w: :text <text>", ErrUsage)
		}

		return it.load(strings.ReplaceAll(rest, `\n`, "\n"))

	case ":slide":
		args, err := parseInts(rest)
		if err != nil || len(args) != 2 {
			return fmt.Errorf("%w: :slide <window> <choice>", ErrUsage)
		}

		return it.mutate(func() error {
			return it.doc.SlideWindow(args[0], args[1], 0)
		})

	case ":random":
		args, err := parseInts(rest)
		if err != nil {
			return fmt.Errorf("%w: :random [window...]", ErrUsage)
		}

		return it.mutate(func() error {
			return it.doc.RandomiseAll(args, 0)
		})

	case ":expand":
		it.doc.Expand()
		it.show()
		return nil

	case ":collapse":
		it.doc.Collapse()
		it.show()
		return nil

	case ":snapshot":
		fmt.Fprint(it.out, it.doc.Snapshot())
		return nil

	case ":show":
		it.show()
		return nil

	case ":links":
		it.listLinks()
		return nil

	case ":warnings":
		if rest == "" {
			fmt.Fprintf(it.out, "limit %d, %d suppressed\n", it.maxWarnings, it.dropped)
			return nil
		}

		limit, err := strconv.Atoi(rest)
		if err != nil {
			return fmt.Errorf("%w: :warnings [n]", ErrUsage)
		}

		return it.SetMaxWarnings(limit)
	}

	return fmt.Errorf("%w %q, type :help", ErrUnknownCommand, name)
}

// load replaces the text and binds every function it references to the trigger printer.
func (it *Interpreter) load(text string) error {
	warns, err := annotation.NewWarnings(it.maxWarnings)
	if err != nil {
		return err
	}

	if err := it.doc.Reset(annotation.ParseWithWarnings(text, warns)); err != nil {
		return err
	}
	it.dropped = warns.Dropped()

	for _, name := range it.doc.FunctionNames() {
		it.doc.SetFunction(name, it.record)
	}

	for _, w := range it.doc.Warnings() {
		fmt.Fprintf(it.out, "warning: line %d: %s\n", w.Line, w.Description)
	}

	it.show()
	return nil
}

func (it *Interpreter) record(t play.Trigger) {
	it.fired = append(it.fired, t)
}

// mutate runs fn and prints the document with the triggered functions.
func (it *Interpreter) mutate(fn func() error) error {
	it.fired = nil

	if err := fn(); err != nil {
		return err
	}

	it.show()

	for _, t := range it.fired {
		fmt.Fprintf(it.out, "-> %s (window %d: %q)\n", t.Name, t.Window, t.Text)
	}
	it.fired = nil

	return nil
}

func (it *Interpreter) show() {
	fmt.Fprint(it.out, render.Text(it.doc, it.render))
}

func (it *Interpreter) listSamples() {
	for _, name := range it.catalog.Names() {
		sample, _ := it.catalog.Get(name)
		fmt.Fprintf(it.out, "  %-16s %s\n", name, sample.Title)
	}
}

func (it *Interpreter) listLinks() {
	links := it.doc.Links()
	if len(links) == 0 {
		fmt.Fprintln(it.out, "no links")
		return
	}

	keys := make([]int, 0, len(links))
	for k := range links {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, k := range keys {
		windows := make([]string, len(links[k]))
		for i, w := range links[k] {
			windows[i] = strconv.Itoa(w)
		}
		fmt.Fprintf(it.out, "  #%d: windows %s\n", k, strings.Join(windows, ", "))
	}
}

// parseInts parses space separated integers. An empty string gives nil.
func parseInts(s string) ([]int, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil, nil
	}

	out := make([]int, len(fields))
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}
