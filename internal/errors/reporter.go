package errors

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Position tracks a location in a source or IR-text file for diagnostics.
type Position struct {
	Filename string
	Offset   int
	Line     int
	Column   int
}

// ErrorLevel represents the severity of an error.
type ErrorLevel string

const (
	Error   ErrorLevel = "error"
	Warning ErrorLevel = "warning"
	Note    ErrorLevel = "note"
	Help    ErrorLevel = "help"
)

// CompilerError represents a structured diagnostic with suggestions and context.
type CompilerError struct {
	Level       ErrorLevel
	Code        string   // Error code like E0400
	Message     string   // Primary error message
	Position    Position // Location in the source/IR text
	Length      int      // Length of the problematic region
	Suggestions []Suggestion
	Notes       []string
	HelpText    string
}

// Error implements the error interface so a CompilerError can be returned
// directly from pass functions and only rendered through FormatError when a
// caller actually needs the Rust-style presentation.
func (e CompilerError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

// Suggestion represents a suggested fix.
type Suggestion struct {
	Message     string
	Replacement string
	Position    Position
	Length      int
}

// ErrorReporter handles consistent error formatting and suggestions.
type ErrorReporter struct {
	filename string
	source   string
	lines    []string
}

// NewErrorReporter creates a new error reporter for a file.
func NewErrorReporter(filename, source string) *ErrorReporter {
	return &ErrorReporter{
		filename: filename,
		source:   source,
		lines:    strings.Split(source, "\n"),
	}
}

// levelStyle bundles the single piece of per-level information the renderer
// actually varies on — its color — so FormatError and createMarker share one
// lookup instead of each running its own switch over ErrorLevel.
var levelStyle = map[ErrorLevel]func(...interface{}) string{
	Error:   color.New(color.FgRed, color.Bold).SprintFunc(),
	Warning: color.New(color.FgYellow, color.Bold).SprintFunc(),
	Note:    color.New(color.FgBlue, color.Bold).SprintFunc(),
	Help:    color.New(color.FgGreen, color.Bold).SprintFunc(),
}

func styleFor(level ErrorLevel) func(...interface{}) string {
	if c, ok := levelStyle[level]; ok {
		return c
	}
	return levelStyle[Error]
}

// FormatError formats a compiler error with Rust-like styling and
// suggestions. Unlike source text from a lexer/parser, this core's
// Position legitimately defaults to its zero value for a synthesized
// instruction (a phi inserted by mem2reg, a spill reload — see spec §4.5,
// §6): there is no IR-text line those ever came from. Rendering three
// lines of bogus "line 0" source context for those would be actively
// misleading, so a non-positive line short-circuits to a compact one-line
// form naming the position as synthesized instead.
func (er *ErrorReporter) FormatError(err CompilerError) string {
	var result strings.Builder

	levelColor := styleFor(err.Level)
	header := fmt.Sprintf("%s: %s", levelColor(string(err.Level)), err.Message)
	if err.Code != "" {
		header = fmt.Sprintf("%s[%s]: %s", levelColor(string(err.Level)), err.Code, err.Message)
	}
	result.WriteString(header + "\n")

	width := 3
	if err.Position.Line > 0 {
		width = lineNumberWidth(err.Position.Line)
	}
	indent := strings.Repeat(" ", width)

	if err.Position.Line <= 0 {
		er.writeSynthesizedLocation(&result, indent)
	} else {
		er.writeSourceContext(&result, err, width, indent)
	}

	er.writeSuggestions(&result, err.Suggestions, indent)
	er.writeNotes(&result, err.Notes, indent)
	er.writeHelp(&result, err.HelpText, indent)

	result.WriteString("\n")
	return result.String()
}

// writeSynthesizedLocation renders the compact location line used when a
// diagnostic has no real IR-text position to point at.
func (er *ErrorReporter) writeSynthesizedLocation(result *strings.Builder, indent string) {
	dim := color.New(color.Faint).SprintFunc()
	fmt.Fprintf(result, "%s %s %s (synthesized instruction, no source line)\n", indent, dim("-->"), er.filename)
}

// writeSourceContext renders the `--> file:line:col` header, one line of
// context on either side of the offending line, and the caret marker.
func (er *ErrorReporter) writeSourceContext(result *strings.Builder, err CompilerError, width int, indent string) {
	bold := color.New(color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()
	gutter := func(n int) string { return dim(fmt.Sprintf("%*d", width, n)) }

	fmt.Fprintf(result, "%s %s %s:%d:%d\n", indent, dim("-->"), er.filename, err.Position.Line, err.Position.Column)
	fmt.Fprintf(result, "%s %s\n", indent, dim("│"))

	if err.Position.Line > 1 && err.Position.Line-1 < len(er.lines) {
		fmt.Fprintf(result, "%s %s %s\n", gutter(err.Position.Line-1), dim("│"), er.lines[err.Position.Line-2])
	}

	if err.Position.Line <= len(er.lines) {
		lineContent := er.lines[err.Position.Line-1]
		fmt.Fprintf(result, "%s %s %s\n",
			bold(fmt.Sprintf("%*d", width, err.Position.Line)), dim("│"), lineContent)

		marker := er.createMarker(err.Position.Column, err.Length, err.Level)
		fmt.Fprintf(result, "%s %s %s\n", indent, dim("│"), marker)
	}

	if err.Position.Line < len(er.lines) {
		fmt.Fprintf(result, "%s %s %s\n", gutter(err.Position.Line+1), dim("│"), er.lines[err.Position.Line])
	}
}

func (er *ErrorReporter) writeSuggestions(result *strings.Builder, suggestions []Suggestion, indent string) {
	if len(suggestions) == 0 {
		return
	}
	suggestionColor := color.New(color.FgCyan).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()
	fmt.Fprintf(result, "%s %s\n", indent, dim("│"))
	for i, suggestion := range suggestions {
		if i == 0 {
			fmt.Fprintf(result, "%s %s %s: %s\n", indent, suggestionColor("help"), suggestionColor("try"), suggestion.Message)
		} else {
			fmt.Fprintf(result, "%s %s %s\n", indent, suggestionColor("    "), suggestion.Message)
		}
		if suggestion.Replacement != "" {
			fmt.Fprintf(result, "%s %s\n", indent, dim("│"))
			replacement := strings.ReplaceAll(suggestion.Replacement, "\n", fmt.Sprintf("\n%s %s ", indent, dim("│")))
			fmt.Fprintf(result, "%s %s %s\n", indent, suggestionColor("│"), suggestionColor(replacement))
		}
	}
}

func (er *ErrorReporter) writeNotes(result *strings.Builder, notes []string, indent string) {
	noteColor := color.New(color.FgBlue).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()
	for _, note := range notes {
		fmt.Fprintf(result, "%s %s %s %s\n", indent, dim("│"), noteColor("note:"), note)
	}
}

func (er *ErrorReporter) writeHelp(result *strings.Builder, help string, indent string) {
	if help == "" {
		return
	}
	helpColor := color.New(color.FgGreen).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()
	fmt.Fprintf(result, "%s %s %s %s\n", indent, dim("│"), helpColor("help:"), help)
}

// createMarker builds the caret underline for the offending span. length is
// clamped to at least one column so a zero-length diagnostic still points at
// something.
func (er *ErrorReporter) createMarker(column, length int, level ErrorLevel) string {
	if length <= 0 {
		length = 1
	}
	spaces := strings.Repeat(" ", max0(column-1))
	markerColor := styleFor(level)
	return spaces + markerColor(strings.Repeat("^", length))
}

func lineNumberWidth(line int) int {
	width := len(fmt.Sprintf("%d", line))
	if width < 3 {
		width = 3
	}
	return width
}

func max0(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
