package annotation

import "fmt"

// Issue defines types of problems we might encounter during the tokenizing process.
//
// None of them is fatal: the tokenizer only under-recognizes, so every Issue explains
// why some part of a line stayed a literal or lost part of its metadata.
type Issue int

const (
	// IssueEscapedGroup means a valid group was preceded by [SymbolEscape] and was emitted as a literal.
	IssueEscapedGroup Issue = iota

	// IssueUnclosedGroup means the opening parenthesis has no closing counterpart before the end of
	// the line or before the next opening parenthesis.
	IssueUnclosedGroup

	// IssueSingleAlternative means the parenthesized text has no pipe in it, e.g. "(aside)".
	IssueSingleAlternative

	// IssueEmptyAlternative means one of the alternatives has no characters, e.g. "(a||b)" or "(a|)".
	IssueEmptyAlternative

	// IssueMalformedLinkSuffix means the group is followed by a bracket which is not a valid link suffix,
	// e.g. "(a|b)[x]". The bracket stays a literal and the group keeps default link and orientation.
	IssueMalformedLinkSuffix

	// IssueZeroLinkIndex means the link suffix holds 0, which is treated as "no link".
	IssueZeroLinkIndex

	// IssueLinkIndexOverflow means the digits of the link suffix do not fit into an int.
	IssueLinkIndexOverflow

	// IssueEmptyFunctionName means an alternative contains "->" without a name after it.
	// The alternative is displayed as is.
	IssueEmptyFunctionName

	// IssueWarningsTruncated occurs when there are too many Warnings recorded.
	IssueWarningsTruncated

	// IssueNegativeWarningsCap reports an invalid (negative) warnings capacity.
	IssueNegativeWarningsCap
)

var issueNames = map[Issue]string{
	IssueEscapedGroup:        "escaped_group",
	IssueUnclosedGroup:       "unclosed_group",
	IssueSingleAlternative:   "single_alternative",
	IssueEmptyAlternative:    "empty_alternative",
	IssueMalformedLinkSuffix: "malformed_link_suffix",
	IssueZeroLinkIndex:       "zero_link_index",
	IssueLinkIndexOverflow:   "link_index_overflow",
	IssueEmptyFunctionName:   "empty_function_name",
	IssueWarningsTruncated:   "warnings_truncated",
	IssueNegativeWarningsCap: "negative_warnings_cap",
}

func (i Issue) String() string {
	if name, ok := issueNames[i]; ok {
		return name
	}
	return "unknown"
}

// MarshalText makes Issues readable in JSON output.
func (i Issue) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

func (i *Issue) UnmarshalText(text []byte) error {
	for issue, name := range issueNames {
		if name == string(text) {
			*i = issue
			return nil
		}
	}
	return fmt.Errorf("unknown issue %q", text)
}
