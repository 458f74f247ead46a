package annotation

import "fmt"

// DefaultMaxWarnings is the limit used by [Parse].
const DefaultMaxWarnings = 64

// Warning is a diagnostic of the tokenizer. Warnings never stop the parsing.
type Warning struct {
	Issue Issue `json:"issue"`

	// Line is 1-based, or 0 if a single line was tokenized.
	Line int `json:"line"`

	// Pos is the byte offset in the line.
	Pos int `json:"pos"`

	Description string `json:"description"`
}

// Warnings collects the Warnings of a parse, keeping at most limit of them.
//
// When one more Warning arrives at the limit, the last kept Warning gives way to an
// [IssueWarningsTruncated] summary and the rest are only counted. A zero limit keeps nothing.
//
// A nil *Warnings is valid and records nothing.
type Warnings struct {
	limit   int
	list    []Warning
	dropped int
}

// NewWarnings returns a collector keeping at most limit Warnings.
// A negative limit is a [ConfigError].
func NewWarnings(limit int) (*Warnings, error) {
	if limit < 0 {
		return nil, NewConfigError(
			IssueNegativeWarningsCap,
			fmt.Errorf("warnings limit must be non-negative, got %d", limit),
		)
	}

	return &Warnings{limit: limit}, nil
}

func (w *Warnings) Add(item Warning) {
	if w == nil {
		return
	}

	if w.dropped == 0 && len(w.list) < w.limit {
		w.list = append(w.list, item)
		return
	}

	if w.limit == 0 {
		w.dropped++
		return
	}

	last := &w.list[w.limit-1]
	if w.dropped == 0 {
		// the replaced Warning counts as dropped too
		w.dropped = 1
		*last = Warning{Issue: IssueWarningsTruncated, Line: last.Line, Pos: last.Pos}
	}

	w.dropped++
	last.Description = fmt.Sprintf("too many warnings, %d more suppressed", w.dropped)
}

// List returns the kept Warnings, the summary included.
func (w *Warnings) List() []Warning {
	if w == nil {
		return nil
	}
	return w.list
}

// Dropped returns the number of Warnings which are not in the list.
func (w *Warnings) Dropped() int {
	if w == nil {
		return 0
	}
	return w.dropped
}

func (w *Warnings) Limit() int {
	if w == nil {
		return 0
	}
	return w.limit
}
