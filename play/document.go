// Package play implements the selection model of interactive prose.
//
// A [Document] is built from a parsed [annotation.Document]. Every choice group becomes a [Window]
// which displays exactly one of its choices. Windows with the same link index form a link group,
// and the Document keeps the current index of every window in a link group equal:
//
//	doc := play.Parse("(a|b)[1]\n(c|d)[1]")
//	doc.SlideWindow(0, 1, 0)
//	doc.Snapshot() // "b\nd\n"
//
// # Policies
//
//  1. Out of range indices are clamped or ignored, and mutations of an expanded Document are ignored.
//     [WithStrict] turns both into errors.
//  2. The last selection request wins. A transition superseded by a newer request never completes,
//     so the function of its choice is not triggered.
//  3. Functions are called by name through the [Functions] registry, after the Document is unlocked.
//     Unregistered names are no-op.
package play

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/proseplay/proseplay/annotation"
)

// Item is either a literal text or a window reference.
type Item struct {
	Literal string
	Window  *Window
}

// Line is an ordered list of Items. A Line without Items is blank.
type Line struct {
	Items []Item
}

func (l Line) IsBlank() bool {
	return len(l.Items) == 0
}

// Document is the runtime structure of a text. It is safe for concurrent use.
type Document struct {
	mu  sync.Mutex
	cfg config

	source  annotation.Document
	lines   []Line
	windows []*Window

	// links maps the link index to the windows of its link group, in window order.
	links map[int][]*Window

	expanded bool
	drag     *gesture
}

// New builds the Document from the parsed source.
// It returns an error only if the source violates the invariants of [annotation.Group].
func New(src annotation.Document, opts ...Option) (*Document, error) {
	d := &Document{cfg: newConfig(opts)}

	if err := d.Reset(src); err != nil {
		return nil, err
	}

	return d, nil
}

// Parse parses the text and builds the Document. The parser never produces invalid groups,
// so Parse panics only on an internal invariant violation.
func Parse(text string, opts ...Option) *Document {
	d := &Document{cfg: newConfig(opts)}
	d.Load(text)
	return d
}

// Load parses the text and rebuilds the Document wholesale, see [Document.Reset].
func (d *Document) Load(text string) {
	warns, _ := annotation.NewWarnings(d.cfg.maxWarnings)

	if err := d.Reset(annotation.ParseWithWarnings(text, warns)); err != nil {
		panic(fmt.Sprintf("play: %v", err))
	}
}

// Reset rebuilds the Document from the source. Previous windows are discarded together with their
// in-flight transitions and drag state. The functions registry and the expansion flag are kept.
func (d *Document) Reset(src annotation.Document) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	lines, windows, links, err := build(src, &d.cfg, &d.mu)
	if err != nil {
		return err
	}

	for _, w := range d.windows {
		w.cancel()
	}

	for _, w := range windows {
		w.doc = d
	}

	d.source = src
	d.lines = lines
	d.windows = windows
	d.links = links
	d.drag = nil

	d.cfg.log.Debug().
		Int("lines", len(lines)).
		Int("windows", len(windows)).
		Int("links", len(links)).
		Msg("document built")

	return nil
}

// build creates the runtime structure in two phases:
//
//  1. Create windows in order of appearance and collect them by link index.
//  2. Inject the sibling lists, once every link group is complete.
func build(src annotation.Document, cfg *config, mu *sync.Mutex) ([]Line, []*Window, map[int][]*Window, error) {
	var (
		lines   = make([]Line, 0, len(src.Lines))
		windows []*Window
		links   = make(map[int][]*Window)
	)

	// 1. Windows
	for _, l := range src.Lines {
		line := Line{Items: make([]Item, 0, len(l.Tokens))}

		for _, tok := range l.Tokens {
			if tok.Type != annotation.TokenGroup {
				line.Items = append(line.Items, Item{Literal: tok.Value})
				continue
			}

			w, err := newWindow(len(windows), *tok.Group, cfg, mu)
			if err != nil {
				return nil, nil, nil, fmt.Errorf("line %d: %w", l.Number, err)
			}

			windows = append(windows, w)
			line.Items = append(line.Items, Item{Window: w})

			if w.linkIndex > 0 {
				links[w.linkIndex] = append(links[w.linkIndex], w)
			}
		}

		lines = append(lines, line)
	}

	// 2. Link siblings
	for _, group := range links {
		for _, w := range group {
			w.siblings = make([]*Window, 0, len(group)-1)
			for _, s := range group {
				if s != w {
					w.siblings = append(w.siblings, s)
				}
			}
		}
	}

	return lines, windows, links, nil
}

// Snapshot returns the plain text realization of the Document. Every line, including
// the last one, is terminated by '\n'. Blank lines are empty.
func (d *Document) Snapshot() string {
	d.mu.Lock()
	defer d.mu.Unlock()

	var sb strings.Builder

	for _, l := range d.lines {
		for _, it := range l.Items {
			if it.Window != nil {
				sb.WriteString(it.Window.currentText())
			} else {
				sb.WriteString(it.Literal)
			}
		}
		sb.WriteByte('\n')
	}

	return sb.String()
}

// Choices returns the display texts of every window, in window order.
func (d *Document) Choices() [][]string {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([][]string, len(d.windows))
	for i, w := range d.windows {
		texts := make([]string, len(w.choices))
		for j, c := range w.choices {
			texts[j] = c.Text
		}
		out[i] = texts
	}
	return out
}

// CurrentIndexes returns the current index of every window, parallel to [Document.Choices].
func (d *Document) CurrentIndexes() []int {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]int, len(d.windows))
	for i, w := range d.windows {
		out[i] = w.current
	}
	return out
}

func (d *Document) Lines() []Line {
	d.mu.Lock()
	defer d.mu.Unlock()

	return slices.Clone(d.lines)
}

func (d *Document) Windows() []*Window {
	d.mu.Lock()
	defer d.mu.Unlock()

	return slices.Clone(d.windows)
}

// Window returns the window with the index, or nil.
func (d *Document) Window(index int) *Window {
	d.mu.Lock()
	defer d.mu.Unlock()

	if index < 0 || index >= len(d.windows) {
		return nil
	}
	return d.windows[index]
}

// Links returns the window indices of every link group, keyed by link index.
func (d *Document) Links() map[int][]int {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make(map[int][]int, len(d.links))
	for link, group := range d.links {
		for _, w := range group {
			out[link] = append(out[link], w.index)
		}
	}
	return out
}

// FunctionNames returns sorted unique function names referenced by the choices.
func (d *Document) FunctionNames() []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.source.FunctionNames()
}

func (d *Document) Warnings() []annotation.Warning {
	d.mu.Lock()
	defer d.mu.Unlock()

	return slices.Clone(d.source.Warnings)
}

// Source returns the parsed source the Document was built from.
func (d *Document) Source() annotation.Document {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.source
}

// SetFunction registers fn under the name for every current and future window of the Document.
// A nil fn removes the binding.
func (d *Document) SetFunction(name string, fn Func) {
	d.cfg.functions.Register(name, fn)
}

// Functions returns the registry shared by the windows.
func (d *Document) Functions() *Functions {
	return d.cfg.functions
}

// SlideWindow selects the choice of the window and drives its link siblings to the same index,
// each clamped to its own choice list.
//
// Behaviour:
//   - The choice index is clamped, an unknown window is ignored.
//   - The selection supersedes the in-flight transitions of the window and its siblings,
//     and aborts a drag gesture involving them.
//   - The function of the arriving choice of every updated window is triggered once its
//     transition completes, immediately if d <= 0.
func (d *Document) SlideWindow(window, choice int, dur time.Duration) error {
	d.mu.Lock()
	fired, err := d.slideWindow(window, choice, dur)
	d.mu.Unlock()

	d.cfg.functions.fire(fired...)

	return err
}

func (d *Document) slideWindow(window, choice int, dur time.Duration) ([]Trigger, error) {
	if ok, err := d.mutable(); !ok {
		return nil, err
	}

	w, err := d.lookup(window)
	if w == nil {
		return nil, err
	}

	if d.cfg.strict && (choice < 0 || choice >= len(w.choices)) {
		return nil, fmt.Errorf("choice %d of window %d: %w", choice, window, ErrIndexOutOfRange)
	}

	return d.slide(w, choice, dur), nil
}

// slideOwned serves [Window.SlideToChoice] for a window of the Document.
func (d *Document) slideOwned(w *Window, choice int, dur time.Duration) int {
	d.mu.Lock()

	var fired []Trigger
	if ok, _ := d.mutable(); ok && d.owns(w) {
		fired = d.slide(w, choice, dur)
	}
	idx := w.current

	d.mu.Unlock()

	d.cfg.functions.fire(fired...)

	return idx
}

// slide aborts a drag involving w, selects the choice and propagates it to the link siblings.
func (d *Document) slide(w *Window, choice int, dur time.Duration) []Trigger {
	d.abortDrag(w)

	idx, fired := w.slide(choice, dur, nil)
	fired = propagate(w, idx, dur, fired)

	d.cfg.log.Debug().
		Int("window", w.index).
		Int("choice", idx).
		Int("siblings", len(w.siblings)).
		Msg("slide")

	return fired
}

// activateWindow serves [Window.Activate] for a window of the Document.
func (d *Document) activateWindow(w *Window, index int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.expanded || !d.owns(w) {
		return
	}

	d.abortDrag(w)

	idx := w.clamp(index)
	for _, aw := range append([]*Window{w}, w.siblings...) {
		aw.cancel()
		aw.activate(idx)
		aw.state = StateIdle
	}
}

// RandomiseAll picks a random choice for every window of the subset, or for every window if the subset
// is nil, and drives their link siblings to the same index. Siblings outside the subset are
// updated too, and a window is randomised at most once per call.
func (d *Document) RandomiseAll(subset []int, dur time.Duration) error {
	d.mu.Lock()
	fired, err := d.randomiseAll(subset, dur)
	d.mu.Unlock()

	d.cfg.functions.fire(fired...)

	return err
}

func (d *Document) randomiseAll(subset []int, dur time.Duration) ([]Trigger, error) {
	if ok, err := d.mutable(); !ok {
		return nil, err
	}

	if subset == nil {
		subset = make([]int, len(d.windows))
		for i := range subset {
			subset[i] = i
		}
	}

	if d.cfg.strict {
		for _, i := range subset {
			if i < 0 || i >= len(d.windows) {
				return nil, fmt.Errorf("window %d: %w", i, ErrIndexOutOfRange)
			}
		}
	}

	var (
		fired   []Trigger
		visited = make([]bool, len(d.windows))
	)

	for _, i := range subset {
		if i < 0 || i >= len(d.windows) || visited[i] {
			continue
		}

		w := d.windows[i]
		visited[i] = true
		for _, s := range w.siblings {
			visited[s.index] = true
		}

		d.abortDrag(w)

		var idx int
		idx, fired = w.slide(w.randomIndex(), dur, fired)
		fired = propagate(w, idx, dur, fired)

		d.cfg.log.Debug().Int("window", i).Int("choice", idx).Msg("randomise")
	}

	return fired, nil
}

// propagate is a single fan-out pass, siblings never propagate further.
func propagate(origin *Window, index int, dur time.Duration, fired []Trigger) []Trigger {
	for _, s := range origin.siblings {
		_, fired = s.slide(index, dur, fired)
	}
	return fired
}

// Restore activates the indexes passively: no transition, propagation or function trigger.
// It is used to replay a saved state and returns [ErrStateMismatch] if the length of indexes
// differs from the number of windows.
func (d *Document) Restore(indexes []int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(indexes) != len(d.windows) {
		return fmt.Errorf("got %d indexes for %d windows: %w", len(indexes), len(d.windows), ErrStateMismatch)
	}

	d.abortDrag(nil)

	for i, w := range d.windows {
		w.cancel()
		w.activate(indexes[i])
		w.state = StateIdle
	}

	return nil
}

// Expand switches the Document into the reveal-all mode, suspending every mutation
// until [Document.Collapse]. An active drag gesture is aborted.
func (d *Document) Expand() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.expanded {
		return
	}

	d.abortDrag(nil)
	d.expanded = true

	d.cfg.log.Debug().Msg("expand")
}

// Collapse leaves the reveal-all mode and re-asserts the current choice of every window.
func (d *Document) Collapse() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.expanded {
		return
	}

	d.expanded = false

	for _, w := range d.windows {
		w.activate(w.current)
	}

	d.cfg.log.Debug().Msg("collapse")
}

func (d *Document) IsExpanded() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.expanded
}

// mutable reports whether the Document accepts mutations. The error is non-nil in the strict mode only.
func (d *Document) mutable() (bool, error) {
	if !d.expanded {
		return true, nil
	}

	if d.cfg.strict {
		return false, ErrExpanded
	}

	return false, nil
}

// owns reports whether w is a window of the current build. Windows discarded by Reset are not.
func (d *Document) owns(w *Window) bool {
	return w.index < len(d.windows) && d.windows[w.index] == w
}

// lookup returns nil if the window doesn't exist. The error is non-nil in the strict mode only.
func (d *Document) lookup(index int) (*Window, error) {
	if index >= 0 && index < len(d.windows) {
		return d.windows[index], nil
	}

	if d.cfg.strict {
		return nil, fmt.Errorf("window %d: %w", index, ErrIndexOutOfRange)
	}

	return nil, nil
}
