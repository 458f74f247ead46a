package annotation

import (
	"strconv"
	"strings"
)

// Symbols which drive the tokenizer. All of them are 1-byte ASCII characters,
// so they never collide with bytes of multi-byte UTF-8 code points.
const (
	SymbolGroupOpen   byte = '('
	SymbolGroupClose  byte = ')'
	SymbolSeparator   byte = '|'
	SymbolEscape      byte = '\\'
	SymbolSuffixOpen  byte = '['
	SymbolSuffixClose byte = ']'
	SymbolHorizontal  byte = '-'
	SymbolVertical    byte = '|'
)

// TagFunction separates the displayed text of an alternative from the bound function name.
const TagFunction = "->"

// groupMatch is the successful result of matching the group grammar at some opening parenthesis.
type groupMatch struct {
	// end is the exclusive end of the match, including the link suffix if any.
	end int

	group Group
}

// Tokenize transforms a single line into the sequence of literal and group Tokens.
// It can emit Warnings during the process, but never fails.
//
// Behaviour:
//
//  1. Groups are found left to right, non-overlapping, the leftmost opening parenthesis which
//     starts a valid group wins.
//  2. Text between groups becomes one literal Token. Empty literals are never emitted.
//  3. If the byte right before the opening parenthesis is [SymbolEscape], the whole match,
//     including its link suffix, becomes a literal with [Token.Escaped] set, and the escape
//     symbol is dropped from the preceding literal. Only the opening parenthesis is inspected,
//     there is no general escape grammar: "\|" or "\\" have no special meaning.
func Tokenize(line string, warns *Warnings) []Token {
	return tokenizeLine(line, 0, warns)
}

func tokenizeLine(line string, lineNo int, warns *Warnings) []Token {
	n := len(line)

	tokens := make([]Token, 0, 4)

	// the place where current plain string started
	textStart := 0

	for i := 0; i < n; {
		if line[i] != SymbolGroupOpen {
			i++
			continue
		}

		escaped := i > 0 && line[i-1] == SymbolEscape

		// diagnostics of an escaped span are pointless, the author asked for a literal
		var w *Warnings
		if !escaped {
			w = warns
		}

		m, ok := matchGroup(line, lineNo, i, w)

		// the parenthesis does not start a group, so it's a plain text
		if !ok {
			i++
			continue
		}

		// flushing the text before the match, without the escape symbol if it's present
		textEnd := i
		if escaped {
			textEnd--
		}

		if textStart < textEnd {
			tokens = append(tokens, Token{
				Type:  TokenLiteral,
				Span:  Span{textStart, textEnd},
				Value: line[textStart:textEnd],
			})
		}

		if escaped {
			tokens = append(tokens, Token{
				Type:    TokenLiteral,
				Span:    Span{i, m.end},
				Value:   line[i:m.end],
				Escaped: true,
			})

			warns.Add(Warning{
				Issue:       IssueEscapedGroup,
				Line:        lineNo,
				Pos:         i - 1,
				Description: "group " + strconv.Quote(line[i:m.end]) + " is escaped and will be displayed as is.",
			})
		} else {
			group := m.group
			tokens = append(tokens, Token{
				Type:  TokenGroup,
				Span:  Span{i, m.end},
				Value: line[i:m.end],
				Group: &group,
			})
		}

		i = m.end
		textStart = i
	}

	// final text flushing
	if textStart < n {
		tokens = append(tokens, Token{
			Type:  TokenLiteral,
			Span:  Span{textStart, n},
			Value: line[textStart:],
		})
	}

	return tokens
}

// isGroupSpecial reports whether b can't be a part of an alternative's text.
func isGroupSpecial(b byte) bool {
	return b == SymbolGroupOpen || b == SymbolGroupClose || b == SymbolSeparator
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// matchGroup tries to match the grammar
//
//	group      := "(" alt ("|" alt)+ ")" linkSuffix?
//	alt        := literalRun ("->" functionName)?
//	linkSuffix := "[" digits? orientationChar? "]"
//
// starting at the opening parenthesis with index open. Alternatives can't contain any of "(|)",
// so the scan never needs to backtrack.
func matchGroup(line string, lineNo int, open int, warns *Warnings) (m groupMatch, ok bool) {
	n := len(line)

	// 1. Collecting alternatives' spans

	alts := make([]Span, 0, 2)

	i := open + 1
	start := i

	for {
		for i < n && !isGroupSpecial(line[i]) {
			i++
		}

		if i == n || line[i] == SymbolGroupOpen {
			warns.Add(Warning{
				Issue:       IssueUnclosedGroup,
				Line:        lineNo,
				Pos:         open,
				Description: "opening parenthesis at byte index " + strconv.Itoa(open) + " is never closed.",
			})
			return
		}

		if i == start {
			warns.Add(Warning{
				Issue:       IssueEmptyAlternative,
				Line:        lineNo,
				Pos:         i,
				Description: "empty alternative at byte index " + strconv.Itoa(i) + ", the group is kept as text.",
			})
			return
		}

		alts = append(alts, Span{start, i})

		closing := line[i] == SymbolGroupClose

		// consuming the separator or the closing parenthesis
		i++
		start = i

		if closing {
			break
		}
	}

	if len(alts) < 2 {
		warns.Add(Warning{
			Issue:       IssueSingleAlternative,
			Line:        lineNo,
			Pos:         open,
			Description: "parenthesized text " + strconv.Quote(line[open:i]) + " has no alternatives and is kept as text.",
		})
		return
	}

	// 2. Building the choices

	m.group.Choices = make([]ChoiceSpec, len(alts))

	for k, sp := range alts {
		text, fn, emptyName := splitFunction(line[sp.Start:sp.End])
		if emptyName {
			warns.Add(Warning{
				Issue:       IssueEmptyFunctionName,
				Line:        lineNo,
				Pos:         sp.Start,
				Description: "alternative " + strconv.Quote(text) + " has no function name after \"->\".",
			})
		}
		m.group.Choices[k] = ChoiceSpec{Text: text, Function: fn}
	}

	m.end = i

	// 3. Checking the optional link suffix

	if i == n || line[i] != SymbolSuffixOpen {
		ok = true
		return
	}

	end, digits, orientation, valid := scanLinkSuffix(line, i)
	if !valid {
		warns.Add(Warning{
			Issue:       IssueMalformedLinkSuffix,
			Line:        lineNo,
			Pos:         i,
			Description: "bracket at byte index " + strconv.Itoa(i) + " is not a link suffix and is kept as text.",
		})
		ok = true
		return
	}

	m.end = end
	m.group.Orientation = orientation
	m.group.LinkIndex = parseLinkIndex(line, lineNo, digits, warns)

	ok = true
	return
}

// scanLinkSuffix matches "[" digits? orientationChar? "]" starting at the index i of the opening bracket.
func scanLinkSuffix(line string, i int) (end int, digits Span, orientation Orientation, ok bool) {
	n := len(line)

	j := i + 1
	for j < n && isDigit(line[j]) {
		j++
	}
	digits = Span{i + 1, j}

	if j < n && (line[j] == SymbolHorizontal || line[j] == SymbolVertical) {
		if line[j] == SymbolHorizontal {
			orientation = OrientationHorizontal
		}
		j++
	}

	if j < n && line[j] == SymbolSuffixClose {
		return j + 1, digits, orientation, true
	}

	return 0, Span{}, OrientationVertical, false
}

// parseLinkIndex converts the digits of the link suffix into a link index.
// Absent digits, zero and values not fitting into int all mean "no link".
func parseLinkIndex(line string, lineNo int, digits Span, warns *Warnings) int {
	if digits.Len() == 0 {
		return 0
	}

	raw := line[digits.Start:digits.End]

	idx, err := strconv.Atoi(raw)
	if err != nil {
		warns.Add(Warning{
			Issue:       IssueLinkIndexOverflow,
			Line:        lineNo,
			Pos:         digits.Start,
			Description: "link index " + raw + " is too large, the group is not linked.",
		})
		return 0
	}

	if idx == 0 {
		warns.Add(Warning{
			Issue:       IssueZeroLinkIndex,
			Line:        lineNo,
			Pos:         digits.Start,
			Description: "link index 0 means no link, link indices start from 1.",
		})
	}

	return idx
}

// splitFunction separates an alternative into the displayed text and the function name.
// For "a->b->c" the text is "a" and the name is "b". If nothing follows the first "->",
// the alternative is displayed as is and emptyName is true.
func splitFunction(alt string) (text, fn string, emptyName bool) {
	before, after, found := strings.Cut(alt, TagFunction)
	if !found {
		return alt, "", false
	}

	name, _, _ := strings.Cut(after, TagFunction)
	if name == "" {
		return alt, "", true
	}

	return before, name, false
}
