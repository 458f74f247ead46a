// Package render draws a [play.Document] as terminal text.
package render

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/proseplay/proseplay/annotation"
	"github.com/proseplay/proseplay/play"
)

var (
	magenta     = lipgloss.Color("213")
	cyan        = lipgloss.Color("6")
	brightBlack = lipgloss.Color("8")

	windowStyle  = lipgloss.NewStyle().Foreground(magenta).Bold(true)
	linkedStyle  = lipgloss.NewStyle().Foreground(cyan).Bold(true)
	choiceStyle  = lipgloss.NewStyle().Foreground(brightBlack)
	currentStyle = lipgloss.NewStyle().Foreground(magenta).Underline(true)
	markerStyle  = lipgloss.NewStyle().Foreground(brightBlack)
)

// Options control the rendering. The zero value renders the plain snapshot.
type Options struct {
	// Styled colors the windows with lipgloss.
	Styled bool

	// Brackets wraps the collapsed windows in square brackets.
	Brackets bool

	// Links appends "#<link index>" to linked windows.
	Links bool

	// Placeholder renders blank lines as [annotation.Placeholder].
	Placeholder bool
}

// Text renders every line of the Document, each one terminated by '\n'.
//
// Collapsed windows show their current choice. Expanded windows show every choice as "{a|*b|c}",
// where the current one is marked with '*'. Horizontal windows separate the choices with " / ".
func Text(doc *play.Document, opts Options) string {
	expanded := doc.IsExpanded()

	var sb strings.Builder

	for _, l := range doc.Lines() {
		if l.IsBlank() && opts.Placeholder {
			sb.WriteString(annotation.Placeholder)
		}

		for _, it := range l.Items {
			if it.Window == nil {
				sb.WriteString(it.Literal)
				continue
			}

			if expanded {
				sb.WriteString(expandedWindow(it.Window, opts))
			} else {
				sb.WriteString(collapsedWindow(it.Window, opts))
			}
		}

		sb.WriteByte('\n')
	}

	return sb.String()
}

func collapsedWindow(w *play.Window, opts Options) string {
	text := w.CurrentText()
	if opts.Brackets {
		text = "[" + text + "]"
	}

	if opts.Styled {
		if w.LinkIndex() > 0 {
			text = linkedStyle.Render(text)
		} else {
			text = windowStyle.Render(text)
		}
	}

	return text + linkMarker(w, opts)
}

func expandedWindow(w *play.Window, opts Options) string {
	sep := "|"
	if w.Orientation() == annotation.OrientationHorizontal {
		sep = " / "
	}

	current := w.Current()
	choices := w.Choices()
	parts := make([]string, len(choices))

	for i, c := range choices {
		text := c.Text
		switch {
		case i == current && opts.Styled:
			text = currentStyle.Render("*" + text)
		case i == current:
			text = "*" + text
		case opts.Styled:
			text = choiceStyle.Render(text)
		}
		parts[i] = text
	}

	return "{" + strings.Join(parts, sep) + "}" + linkMarker(w, opts)
}

func linkMarker(w *play.Window, opts Options) string {
	if !opts.Links || w.LinkIndex() == 0 {
		return ""
	}

	m := "#" + strconv.Itoa(w.LinkIndex())
	if opts.Styled {
		m = markerStyle.Render(m)
	}
	return m
}
