package annotation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse_SplitsLines(t *testing.T) {
	doc := Parse("(a|b)[1]\nplain\n(c|d)[1]")

	require.Len(t, doc.Lines, 3)
	for i, l := range doc.Lines {
		require.Equal(t, i+1, l.Number)
	}

	requireGroup(t, doc.Lines[0].Tokens[0], "a", "b")
	requireLiteral(t, doc.Lines[1].Tokens[0], "plain")
	requireGroup(t, doc.Lines[2].Tokens[0], "c", "d")
	require.Empty(t, doc.Warnings)
}

func TestParse_BlankLines(t *testing.T) {
	doc := Parse("first\n\nthird")

	require.Len(t, doc.Lines, 3)
	require.False(t, doc.Lines[0].IsBlank())
	require.True(t, doc.Lines[1].IsBlank())
	require.False(t, doc.Lines[2].IsBlank())
}

func TestParse_EmptyText(t *testing.T) {
	doc := Parse("")

	require.Len(t, doc.Lines, 1)
	require.True(t, doc.Lines[0].IsBlank())
}

func TestParse_TrimsTextAndCarriageReturns(t *testing.T) {
	doc := Parse("\n\n  (a|b)\r\nend  \n\n")

	require.Len(t, doc.Lines, 2)
	require.Equal(t, "(a|b)", doc.Lines[0].Input)
	require.Len(t, doc.Lines[0].Tokens, 1)
	requireGroup(t, doc.Lines[0].Tokens[0], "a", "b")
	require.Equal(t, "end", doc.Lines[1].Input)
}

func TestParse_WarningsCarryLineNumbers(t *testing.T) {
	doc := Parse("ok\n(a)\n(b|c)[0]")

	require.Len(t, doc.Warnings, 2)
	require.Equal(t, IssueSingleAlternative, doc.Warnings[0].Issue)
	require.Equal(t, 2, doc.Warnings[0].Line)
	require.Equal(t, IssueZeroLinkIndex, doc.Warnings[1].Issue)
	require.Equal(t, 3, doc.Warnings[1].Line)
}

func TestParse_WarningsAreCapped(t *testing.T) {
	input := ""
	for i := 0; i < DefaultMaxWarnings*2; i++ {
		input += "(x) "
	}

	doc := Parse(input)

	require.Len(t, doc.Warnings, DefaultMaxWarnings)
	require.Equal(t, IssueWarningsTruncated, doc.Warnings[DefaultMaxWarnings-1].Issue)
}

func TestParseWithWarnings_NilCollector(t *testing.T) {
	doc := ParseWithWarnings("(a)", nil)

	require.Len(t, doc.Lines, 1)
	require.Nil(t, doc.Warnings)
}

func TestDocument_Summaries(t *testing.T) {
	doc := Parse("(a->f|b)[2] (c|d->g)\n(e|f->f)[1] (h|i)[2-]")

	groups := doc.Groups()
	require.Len(t, groups, 4)
	require.Equal(t, OrientationHorizontal, groups[3].Orientation)

	require.Equal(t, []string{"f", "g"}, doc.FunctionNames())
	require.Equal(t, []int{1, 2}, doc.LinkIndexes())
}
