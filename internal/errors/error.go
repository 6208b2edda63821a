package errors

import (
	"bufio"
	stderrors "errors"
	"fmt"
	"os"
)

// Category represents the type of error.
type Category string

const (
	CategoryConstruction Category = "construction"
	CategoryNavigation   Category = "navigation"
	CategoryValidation   Category = "validation"
	CategoryConfig       Category = "config"
	CategoryCLI          Category = "cli"
)

// Location represents a position in a file, such as a config file.
type Location struct {
	File   string
	Line   int
	Column int
}

// String returns the location as a formatted string.
func (l *Location) String() string {
	if l == nil {
		return ""
	}
	if l.Column > 0 {
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// ConsoleError is a structured error with a stable code, an explanation and
// an optional fix suggestion.
type ConsoleError struct {
	// Code is a unique error identifier (e.g., "E201").
	Code string

	// Category is the error type (construction, navigation, etc.).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Location is the file position where the error occurred.
	Location *Location

	// Context contains surrounding lines of the file.
	Context []string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Example shows the correct approach.
	Example string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *ConsoleError) Error() string {
	msg := e.Message
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, msg)
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *ConsoleError) Unwrap() error {
	return e.Wrapped
}

// ErrorCode returns the registered code.
func (e *ConsoleError) ErrorCode() string {
	return e.Code
}

// WithLocation adds a file position to the error and reads the lines around it.
func (e *ConsoleError) WithLocation(file string, line, column int) *ConsoleError {
	e.Location = &Location{File: file, Line: line, Column: column}
	e.Context = readContextLines(file, line, 5)
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *ConsoleError) WithSuggestion(s string) *ConsoleError {
	e.Suggestion = s
	return e
}

// WithExample adds an example to the error.
func (e *ConsoleError) WithExample(ex string) *ConsoleError {
	e.Example = ex
	return e
}

// WithDetail replaces the registered explanation.
func (e *ConsoleError) WithDetail(d string) *ConsoleError {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *ConsoleError) Wrap(err error) *ConsoleError {
	e.Wrapped = err
	return e
}

// readContextLines reads lines around the specified line number from a file.
func readContextLines(filename string, targetLine, contextSize int) []string {
	file, err := os.Open(filename)
	if err != nil {
		return nil
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	lineNum := 0
	startLine := targetLine - contextSize/2
	endLine := targetLine + contextSize/2

	for scanner.Scan() {
		lineNum++
		if lineNum >= startLine && lineNum <= endLine {
			lines = append(lines, scanner.Text())
		}
		if lineNum > endLine {
			break
		}
	}

	return lines
}

// New creates a ConsoleError from a registered error code.
func New(code string) *ConsoleError {
	template, ok := lookupTemplate(code)
	if !ok {
		return &ConsoleError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &ConsoleError{
		Code:       code,
		Category:   template.Category,
		Message:    template.Message,
		Detail:     template.Detail,
		Suggestion: template.Suggestion,
	}
}

// Newf creates a new ConsoleError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *ConsoleError {
	return &ConsoleError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError converts err to a ConsoleError. Errors that carry their own code
// (an ErrorCode() string method anywhere in the chain) use it; others get
// fallback.
func FromError(err error, fallback string) *ConsoleError {
	if err == nil {
		return nil
	}
	var ce *ConsoleError
	if stderrors.As(err, &ce) {
		return ce
	}

	code := fallback
	var coded interface{ ErrorCode() string }
	if stderrors.As(err, &coded) {
		if _, ok := lookupTemplate(coded.ErrorCode()); ok {
			code = coded.ErrorCode()
		}
	}
	return New(code).Wrap(err)
}
