package errors

import "fmt"

// IRErrorBuilder provides a fluent interface for building IR-core diagnostics.
type IRErrorBuilder struct {
	err CompilerError
}

// NewIRError creates a new error builder at the given position.
func NewIRError(code, message string, pos Position) *IRErrorBuilder {
	return &IRErrorBuilder{
		err: CompilerError{
			Level:    Error,
			Code:     code,
			Message:  message,
			Position: pos,
			Length:   1,
		},
	}
}

// NewIRWarning creates a new warning builder at the given position.
func NewIRWarning(code, message string, pos Position) *IRErrorBuilder {
	return &IRErrorBuilder{
		err: CompilerError{
			Level:    Warning,
			Code:     code,
			Message:  message,
			Position: pos,
			Length:   1,
		},
	}
}

func (b *IRErrorBuilder) WithLength(length int) *IRErrorBuilder {
	b.err.Length = length
	return b
}

func (b *IRErrorBuilder) WithSuggestion(message string) *IRErrorBuilder {
	b.err.Suggestions = append(b.err.Suggestions, Suggestion{Message: message})
	return b
}

func (b *IRErrorBuilder) WithNote(note string) *IRErrorBuilder {
	b.err.Notes = append(b.err.Notes, note)
	return b
}

func (b *IRErrorBuilder) WithHelp(help string) *IRErrorBuilder {
	b.err.HelpText = help
	return b
}

func (b *IRErrorBuilder) Build() CompilerError {
	return b.err
}

// DivisionByZero reports a constant division by zero folded by SCCP.
func DivisionByZero(pos Position) CompilerError {
	return NewIRError(ErrorDivisionByZero, "division by the constant zero", pos).
		WithSuggestion("guard the division with a conditional check before this point").
		WithNote("SCCP only folds arithmetic that is a compile-time constant; a division by a runtime value is not affected").
		Build()
}

// ModuloByZero reports a constant modulo by zero folded by SCCP.
func ModuloByZero(pos Position) CompilerError {
	return NewIRError(ErrorModuloByZero, "modulo by the constant zero", pos).
		WithSuggestion("guard the modulo with a conditional check before this point").
		Build()
}

// DuplicateFunction reports a function name registered twice in one module.
func DuplicateFunction(name string) CompilerError {
	return NewIRError(ErrorDuplicateFunction, fmt.Sprintf("function '%s' already exists in this module", name), Position{}).
		WithHelp("each function name must be unique within a module").
		Build()
}

// PhiPredecessorMismatch reports a phi whose incoming block set disagrees with
// the containing block's predecessor set.
func PhiPredecessorMismatch(block int, expected, got []int) CompilerError {
	return NewIRError(ErrorPhiPredecessorMismatch,
		fmt.Sprintf("phi in block '%d has incoming blocks %v, but the block's predecessors are %v", block, got, expected),
		Position{}).
		WithNote("every predecessor of a block must supply exactly one incoming operand to each phi in that block").
		Build()
}

// MissingTerminator reports a block with no terminating instruction.
func MissingTerminator(block int) CompilerError {
	return NewIRError(ErrorMissingTerminator, fmt.Sprintf("block '%d has no terminator instruction", block), Position{}).
		WithHelp("every reachable block must end in jmp, cond, or ret").
		Build()
}
