package irtext

import (
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/fatih/color"
)

var parser = participle.MustBuild[File](
	participle.Lexer(Lexer),
	participle.Elide("Whitespace", "Comment"),
	participle.UseLookahead(2),
)

// ParseString parses the textual IR format into its grammar tree. Grounded
// on grammar.ParseFile's use of participle.Build + ParseString; this
// package keeps parsing (this file) and AST-to-IR conversion (convert.go)
// separate the way the teacher keeps grammar/parser.go and
// internal/parser/parser.go separate.
func ParseString(filename, source string) (*File, error) {
	f, err := parser.ParseString(filename, source)
	if err != nil {
		return nil, fmt.Errorf("irtext: %w", err)
	}
	return f, nil
}

// ParseTextFile reads path and parses it as textual IR.
func ParseTextFile(path string) (*File, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("irtext: failed to read file: %w", err)
	}
	return ParseString(path, string(source))
}

// ReportParseError prints a friendly caret-style parse error, matching the
// presentation of grammar.reportParseError / cmd/kanso-cli's
// reportParseError.
func ReportParseError(src string, err error) {
	pe, ok := asParticipleError(err)
	if !ok {
		color.Red("Unexpected error: %s", err)
		return
	}

	pos := pe.Position()
	lines := strings.Split(src, "\n")
	if pos.Line <= 0 || pos.Line > len(lines) {
		color.Red("Syntax error at unknown location: %s", err)
		return
	}

	line := lines[pos.Line-1]
	caret := strings.Repeat(" ", max0(pos.Column-1)) + "^"

	color.Red("❌ Syntax error in %s at line %d, column %d:", pos.Filename, pos.Line, pos.Column)
	fmt.Println(line)
	color.HiRed(caret)
	fmt.Printf("→ %s\n", pe.Message())
}

func asParticipleError(err error) (participle.Error, bool) {
	for err != nil {
		if pe, ok := err.(participle.Error); ok {
			return pe, true
		}
		unwrappable, ok := err.(interface{ Unwrap() error })
		if !ok {
			return nil, false
		}
		err = unwrappable.Unwrap()
	}
	return nil, false
}

func max0(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
