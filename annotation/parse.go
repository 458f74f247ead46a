// Package annotation implements the mini-language of interactive prose.
//
// A text is a sequence of lines. Each line is a mix of plain text and choice groups:
//
//	The (mist|missed) rolled in (slowly->onSlow|fast)[1-].
//
// # Syntax
//
//  1. A group is a pair of parentheses with at least 2 alternatives separated by pipes. Alternatives
//     can't contain any of "(", "|" or ")" and can't be empty.
//  2. An alternative can bind a function with "text->functionName". The name is stripped from
//     the displayed text.
//  3. A group can be followed by a link suffix "[" digits? orientation? "]". Digits set the link index,
//     groups with the same link index always display the choice at the same position. Orientation is
//     '-' for horizontal or '|' for vertical, which is the default.
//  4. A backslash right before the opening parenthesis turns the group into plain text: "\(a|b)" is
//     displayed as "(a|b)".
//
// # Policies
//
//  1. The parser never fails. Anything which does not match the grammar is plain text.
//     Diagnostics are collected as [Warning] items, but they never change the result.
//  2. Link index 0 means no link.
//  3. Lines are processed independently, only link indices are global across the text.
package annotation

import (
	"slices"
	"strings"
)

// Placeholder is displayed in place of a blank line, so renderers keep its height.
const Placeholder = "\u00a0"

// Line is a single tokenized line of the source text.
type Line struct {
	// Number is the 1-based number of the line in the source text.
	Number int

	// Input is the original line, without the line terminator.
	Input string

	Tokens []Token
}

// IsBlank reports whether the line yielded no tokens at all.
// Renderers should substitute [Placeholder] for such lines.
func (l Line) IsBlank() bool {
	return len(l.Tokens) == 0
}

// Document is the structured result of parsing a whole text.
type Document struct {
	Lines []Line

	// Warnings are the diagnostics collected during the tokenization.
	Warnings []Warning
}

// Parse tokenizes every line of the text and collects at most [DefaultMaxWarnings] Warnings.
//
// Leading and trailing whitespace of the whole text is trimmed. Lines are split by '\n', and a
// trailing '\r' is removed from each line.
func Parse(text string) Document {
	warns, _ := NewWarnings(DefaultMaxWarnings)
	return ParseWithWarnings(text, warns)
}

// ParseWithWarnings is the same as [Parse] but records Warnings into the provided collector,
// which can be nil.
func ParseWithWarnings(text string, warns *Warnings) Document {
	raw := strings.Split(strings.TrimSpace(text), "\n")

	doc := Document{
		Lines: make([]Line, len(raw)),
	}

	for i, line := range raw {
		line = strings.TrimSuffix(line, "\r")

		doc.Lines[i] = Line{
			Number: i + 1,
			Input:  line,
			Tokens: tokenizeLine(line, i+1, warns),
		}
	}

	doc.Warnings = warns.List()

	return doc
}

// Groups returns all the groups of the Document in order of appearance.
func (d Document) Groups() []Group {
	var out []Group
	for _, l := range d.Lines {
		for _, t := range l.Tokens {
			if t.Type == TokenGroup {
				out = append(out, *t.Group)
			}
		}
	}
	return out
}

// FunctionNames returns sorted unique names of the functions referenced by the Document.
func (d Document) FunctionNames() []string {
	var out []string
	for _, g := range d.Groups() {
		for _, c := range g.Choices {
			if c.Function != "" {
				out = append(out, c.Function)
			}
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// LinkIndexes returns sorted unique link indices used in the Document.
func (d Document) LinkIndexes() []int {
	var out []int
	for _, g := range d.Groups() {
		if g.Linked() {
			out = append(out, g.LinkIndex)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
