package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"strings"
)

// ANSI color codes for terminal output.
const (
	colorReset = "\033[0m"
	colorRed   = "\033[31m"
	colorCyan  = "\033[36m"
	colorWhite = "\033[37m"
	colorGray  = "\033[90m"
	colorBold  = "\033[1m"
)

var colorEnabled = true

// SetColors turns ANSI color output on or off.
func SetColors(enabled bool) {
	colorEnabled = enabled
}

func color(code, text string) string {
	if !colorEnabled {
		return text
	}
	return code + text + colorReset
}

func red(text string) string   { return color(colorRed, text) }
func cyan(text string) string  { return color(colorCyan, text) }
func white(text string) string { return color(colorWhite, text) }
func gray(text string) string  { return color(colorGray, text) }
func bold(text string) string  { return color(colorBold, text) }

// Style selects how Fprint renders an error.
type Style string

const (
	// StyleText is the multi-line terminal report.
	StyleText Style = "text"
	// StyleCompact is one "file:line:col: code: message" line.
	StyleCompact Style = "compact"
	// StyleJSON is one JSON object per error.
	StyleJSON Style = "json"
)

// ParseStyle validates an --error-format value. Empty means StyleText.
func ParseStyle(s string) (Style, error) {
	switch st := Style(s); st {
	case "":
		return StyleText, nil
	case StyleText, StyleCompact, StyleJSON:
		return st, nil
	}
	return "", fmt.Errorf("unknown error format %q (want text, compact or json)", s)
}

// Format returns the error formatted for terminal display.
func (e *ConsoleError) Format() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(red(bold(e.label())))
	b.WriteString(" ")
	b.WriteString(white(e.Message))
	b.WriteString("\n\n")

	if e.Location != nil {
		fmt.Fprintf(&b, "  %s\n\n", cyan(e.Location.String()))
		if len(e.Context) > 0 {
			e.writeSource(&b)
			b.WriteString("\n")
		}
	}

	if lines := wrapText(e.Detail, 70); len(lines) > 0 {
		writeIndented(&b, "  ", lines)
		b.WriteString("\n")
	}
	if e.Suggestion != "" {
		fmt.Fprintf(&b, "  %s%s\n\n", cyan("Hint: "), e.Suggestion)
	}
	if e.Example != "" {
		fmt.Fprintf(&b, "  %s\n", cyan("Example:"))
		writeIndented(&b, "    ", strings.Split(e.Example, "\n"))
		b.WriteString("\n")
	}
	if e.Wrapped != nil {
		fmt.Fprintf(&b, "  %s%s\n", gray("Caused by: "), e.Wrapped.Error())
	}

	return b.String()
}

func (e *ConsoleError) label() string {
	if e.Code == "" {
		return "ERROR:"
	}
	return "ERROR " + e.Code + ":"
}

// writeSource prints the context lines with the error line marked and, when
// the column is known, a caret under it.
func (e *ConsoleError) writeSource(b *strings.Builder) {
	first := e.Location.Line - len(e.Context)/2
	for i, line := range e.Context {
		n := first + i
		marker := "    "
		if n == e.Location.Line {
			marker = "  " + red("→ ")
		}
		fmt.Fprintf(b, "%s%4d%s%s\n", marker, n, gray(" │ "), line)

		if n == e.Location.Line && e.Location.Column > 0 {
			fmt.Fprintf(b, "       %s%s%s\n", gray("│ "), strings.Repeat(" ", e.Location.Column-1), red("^"))
		}
	}
}

func writeIndented(b *strings.Builder, indent string, lines []string) {
	for _, line := range lines {
		b.WriteString(indent)
		b.WriteString(line)
		b.WriteString("\n")
	}
}

// FormatCompact returns the error on a single line.
func (e *ConsoleError) FormatCompact() string {
	parts := make([]string, 0, 4)
	if e.Location != nil {
		parts = append(parts, e.Location.String())
	}
	if e.Code != "" {
		parts = append(parts, e.Code)
	}
	parts = append(parts, e.Message)
	if e.Wrapped != nil {
		parts = append(parts, e.Wrapped.Error())
	}
	return strings.Join(parts, ": ")
}

type jsonLocation struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column,omitempty"`
}

type jsonError struct {
	Code       string        `json:"code,omitempty"`
	Category   Category      `json:"category,omitempty"`
	Message    string        `json:"message"`
	Detail     string        `json:"detail,omitempty"`
	Location   *jsonLocation `json:"location,omitempty"`
	Suggestion string        `json:"suggestion,omitempty"`
	Cause      string        `json:"cause,omitempty"`
}

// MarshalJSON encodes the error for machine-readable output.
func (e *ConsoleError) MarshalJSON() ([]byte, error) {
	out := jsonError{
		Code:       e.Code,
		Category:   e.Category,
		Message:    e.Message,
		Detail:     e.Detail,
		Suggestion: e.Suggestion,
	}
	if e.Location != nil {
		out.Location = &jsonLocation{File: e.Location.File, Line: e.Location.Line, Column: e.Location.Column}
	}
	if e.Wrapped != nil {
		out.Cause = e.Wrapped.Error()
	}
	return json.Marshal(out)
}

// FormatJSON returns the error as a single-line JSON object.
func (e *ConsoleError) FormatJSON() string {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Sprintf(`{"message":%s}`, mustQuote(e.Error()))
	}
	return string(data)
}

func mustQuote(s string) string {
	data, _ := json.Marshal(s)
	return string(data)
}

// wrapText wraps text to the specified width.
func wrapText(text string, width int) []string {
	if text == "" {
		return nil
	}
	if len(text) <= width {
		return []string{text}
	}

	var lines []string
	var current strings.Builder
	for _, word := range strings.Fields(text) {
		if current.Len() > 0 && current.Len()+len(word)+1 > width {
			lines = append(lines, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(word)
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}
	return lines
}

// Fprint writes err to w in the given style. Errors that are not a
// ConsoleError are printed with their message only.
func Fprint(w io.Writer, err error, style Style) {
	var ce *ConsoleError
	if !stderrors.As(err, &ce) {
		ce = &ConsoleError{Message: err.Error()}
	}

	switch style {
	case StyleCompact:
		fmt.Fprintln(w, ce.FormatCompact())
	case StyleJSON:
		fmt.Fprintln(w, ce.FormatJSON())
	default:
		fmt.Fprint(w, ce.Format())
	}
}
