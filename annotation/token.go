package annotation

import (
	"errors"
	"fmt"
)

// Span defines bounds of the window view of a line.
type Span struct {
	// Start defines the inclusive start of the view.
	Start int

	// End defines the exclusive end of the view.
	End int
}

// NewSpan creates new Span from the startIdx and the width.
// End index is calculated as startIdx + width.
func NewSpan(startIdx int, width int) Span {
	return Span{startIdx, startIdx + width}
}

// Len returns the byte width of the Span.
func (s Span) Len() int {
	return s.End - s.Start
}

// Orientation defines the direction in which a choice group scrolls through its alternatives.
type Orientation int

const (
	// OrientationVertical is the default: alternatives are stacked on top of each other.
	OrientationVertical Orientation = iota

	// OrientationHorizontal lays the alternatives side by side. Set with the '-' suffix char.
	OrientationHorizontal
)

func (o Orientation) String() string {
	if o == OrientationHorizontal {
		return "horizontal"
	}
	return "vertical"
}

// TokenType can define either a Literal or a ChoiceGroup.
type TokenType int

const (
	// TokenLiteral means the [Token] holds immutable text which is emitted verbatim.
	TokenLiteral TokenType = iota

	// TokenGroup means the [Token] holds a [Group] of alternatives.
	TokenGroup
)

// ChoiceSpec is a single alternative of a [Group].
type ChoiceSpec struct {
	// Text is the string displayed when the choice is current.
	Text string `json:"text"`

	// Function is the optional name of the side-effect bound to the choice with the "->" syntax.
	// Empty string means no function is bound.
	Function string `json:"function,omitempty"`
}

// Group is the parsed form of "(a|b|c)[n-]".
type Group struct {
	// Choices has at least 2 items.
	Choices []ChoiceSpec `json:"choices"`

	// LinkIndex is a positive link group number, or 0 if the group is not linked.
	LinkIndex int `json:"link_index,omitempty"`

	// Orientation defaults to [OrientationVertical].
	Orientation Orientation `json:"orientation"`
}

var (
	ErrTooFewChoices    = errors.New("choice group must have at least 2 choices")
	ErrInvalidLinkIndex = errors.New("link index must not be negative")
)

// NewGroup creates a Group from the given choices.
//
// Unlike the parser, which only under-recognizes and never fails, NewGroup is meant for
// programmatic construction and returns [ErrTooFewChoices] if less than 2 choices are provided,
// or [ErrInvalidLinkIndex] if the link index is negative.
func NewGroup(choices []ChoiceSpec, linkIndex int, orientation Orientation) (Group, error) {
	if len(choices) < 2 {
		return Group{}, fmt.Errorf("%w: got %d", ErrTooFewChoices, len(choices))
	}

	if linkIndex < 0 {
		return Group{}, fmt.Errorf("%w: got %d", ErrInvalidLinkIndex, linkIndex)
	}

	cp := make([]ChoiceSpec, len(choices))
	copy(cp, choices)

	return Group{
		Choices:     cp,
		LinkIndex:   linkIndex,
		Orientation: orientation,
	}, nil
}

// Linked reports whether the Group belongs to a link group.
func (g Group) Linked() bool {
	return g.LinkIndex > 0
}

// Texts returns display texts of the Group's choices in order.
func (g Group) Texts() []string {
	out := make([]string, len(g.Choices))
	for i, c := range g.Choices {
		out[i] = c.Text
	}
	return out
}

// Token is the result of processing a part of a line.
type Token struct {
	// Type defines the type of the Token: a literal or a choice group.
	Type TokenType

	// Span defines the bytes of the line covered by the Token.
	// For an escaped group the escape symbol itself is not part of the Span.
	Span Span

	// Value is the exact source string covered by the Span.
	// For literals this is the text to be emitted.
	Value string

	// Group is set only for [TokenGroup] tokens.
	Group *Group

	// Escaped is true for a literal which would have been a group if it wasn't
	// preceded by the escape symbol.
	Escaped bool
}
