package repl

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/proseplay/proseplay/annotation"
	"github.com/proseplay/proseplay/play"
	"github.com/proseplay/proseplay/samples"
	"github.com/stretchr/testify/require"
)

type fixedRand int

func (r fixedRand) IntN(n int) int {
	return int(r) % n
}

func newTestInterpreter(t *testing.T, opts ...play.Option) (*Interpreter, *bytes.Buffer) {
	t.Helper()

	catalog, err := samples.Load()
	require.NoError(t, err)

	var out bytes.Buffer
	return New(&out, catalog, false, opts...), &out
}

func TestExecute(t *testing.T) {
	testCases := []struct {
		name     string
		commands []string
		output   string
		err      error
	}{
		{
			name:     "Empty",
			commands: []string{"   "},
			output:   "",
		},
		{
			name:     "Text",
			commands: []string{`:text The (fog|mist) rolled\n(in|out)[1] and (in|out)[1]`},
			output:   "The [fog] rolled\n[in]#1 and [in]#1\n",
		},
		{
			name: "Slide",
			commands: []string{
				`:text (a|b)[1] (c|d->onD)[1]`,
				":slide 0 1",
			},
			output: "[a]#1 [c]#1\n" +
				"[b]#1 [d]#1\n" +
				"-> onD (window 1: \"d\")\n",
		},
		{
			name: "Random",
			commands: []string{
				`:text (a|b|c) (d|e|f)`,
				":random 1",
			},
			output: "[a] [d]\n[a] [f]\n",
		},
		{
			name: "ExpandCollapse",
			commands: []string{
				`:text (a|b)`,
				":expand",
				":collapse",
			},
			output: "[a]\n{*a|b}\n[a]\n",
		},
		{
			name: "Snapshot",
			commands: []string{
				`:text x (a|b)[2-]`,
				":snapshot",
			},
			output: "x [a]#2\nx a\n",
		},
		{
			name: "Links",
			commands: []string{
				`:text (a|b)[2] (c|d)[1] (e|f)[2]`,
				":links",
			},
			output: "[a]#2 [c]#1 [e]#2\n  #1: windows 1\n  #2: windows 0, 2\n",
		},
		{
			name: "NoLinks",
			commands: []string{
				":links",
			},
			output: "no links\n",
		},
		{
			name:     "Warnings",
			commands: []string{`:text \(a|b)`},
			output:   "",
		},
		{
			name:     "SlideUsage",
			commands: []string{":slide 1"},
			err:      ErrUsage,
		},
		{
			name:     "SlideOutOfRange",
			commands: []string{`:text (a|b)`, ":slide 3 0"},
			err:      play.ErrIndexOutOfRange,
		},
		{
			name:     "SlideExpanded",
			commands: []string{`:text (a|b)`, ":expand", ":slide 0 1"},
			err:      play.ErrExpanded,
		},
		{
			name:     "RandomUsage",
			commands: []string{":random x"},
			err:      ErrUsage,
		},
		{
			name:     "TextUsage",
			commands: []string{":text"},
			err:      ErrUsage,
		},
		{
			name:     "UnknownSample",
			commands: []string{":sample limericks"},
			err:      samples.ErrUnknownSample,
		},
		{
			name:     "UnknownCommand",
			commands: []string{":dance"},
			err:      ErrUnknownCommand,
		},
		{
			name:     "Quit",
			commands: []string{":quit"},
			err:      ErrQuit,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			it, out := newTestInterpreter(t, play.WithRand(fixedRand(2)))

			var err error
			for _, cmd := range tc.commands {
				if err = it.Execute(cmd); err != nil {
					break
				}
			}

			if tc.err != nil {
				require.ErrorIs(t, err, tc.err)
				return
			}

			require.NoError(t, err)

			if tc.name == "Warnings" {
				require.Contains(t, out.String(), "warning: line 1:")
				require.Contains(t, out.String(), "(a|b)\n")
				return
			}

			require.Equal(t, tc.output, out.String())
		})
	}
}

func TestExecute_Load(t *testing.T) {
	it, out := newTestInterpreter(t)

	path := filepath.Join(t.TempDir(), "poem.txt")
	require.NoError(t, os.WriteFile(path, []byte("a (b|c)\n\nd"), 0o644))

	require.NoError(t, it.Execute(":load "+path))
	require.Equal(t, "a [b]\n\nd\n", out.String())
	require.Equal(t, []int{0}, it.Document().CurrentIndexes())

	err := it.Execute(":load " + filepath.Join(t.TempDir(), "missing.txt"))
	require.ErrorIs(t, err, os.ErrNotExist)

	require.ErrorIs(t, it.Execute(":load"), ErrUsage)
}

func TestExecute_Sample(t *testing.T) {
	it, out := newTestInterpreter(t)

	require.NoError(t, it.Execute(":sample"))
	for _, name := range it.catalog.Names() {
		require.Contains(t, out.String(), name)
	}

	out.Reset()
	require.NoError(t, it.Execute(":sample homophones"))

	sample, err := it.catalog.Get("homophones")
	require.NoError(t, err)
	require.Contains(t, out.String(), sample.Title+" by "+sample.Author)
	require.NotEmpty(t, it.Document().Windows())
}

func TestExecute_FunctionsRebound(t *testing.T) {
	it, out := newTestInterpreter(t)

	require.NoError(t, it.Execute(`:text (a|b->first)`))
	require.NoError(t, it.Execute(`:text (c|d->second)`))

	out.Reset()
	require.NoError(t, it.Execute(":slide 0 1"))
	require.Equal(t, "[d]\n-> second (window 0: \"d\")\n", out.String())
}

func TestExecute_Warnings(t *testing.T) {
	it, out := newTestInterpreter(t)

	require.NoError(t, it.Execute(":warnings"))
	require.Equal(t, "limit 64, 0 suppressed\n", out.String())

	require.NoError(t, it.Execute(":warnings 1"))
	out.Reset()

	require.NoError(t, it.Execute(`:text (a) (b|c) (d)`))
	require.Equal(t, "warning: line 1: too many warnings, 2 more suppressed\n(a) [b] (d)\n", out.String())

	out.Reset()
	require.NoError(t, it.Execute(":warnings"))
	require.Equal(t, "limit 1, 2 suppressed\n", out.String())

	// silenced
	require.NoError(t, it.Execute(":warnings 0"))
	out.Reset()
	require.NoError(t, it.Execute(`:text (a)`))
	require.Equal(t, "(a)\n", out.String())

	var ce *annotation.ConfigError
	require.ErrorAs(t, it.Execute(":warnings -1"), &ce)
	require.Equal(t, annotation.IssueNegativeWarningsCap, ce.Issue)
	require.ErrorIs(t, it.Execute(":warnings x"), ErrUsage)
	require.Equal(t, 0, it.maxWarnings)
}

func TestExecute_Help(t *testing.T) {
	it, out := newTestInterpreter(t)

	require.NoError(t, it.Execute(":help"))
	require.Equal(t, HelpText, out.String())
}
