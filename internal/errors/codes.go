package errors

// Error codes for the minicc IR core.
//
// Error code ranges mirror a typical multi-stage compiler's convention:
// code families are grouped by hundred so a new diagnostic slots in
// without renumbering its neighbors.
//
// Error code ranges:
// E0100-E0199: Builder / IR-construction errors (programmer errors)
// E0200-E0299: Dominance and CFG-shape errors
// E0300-E0399: Mem2Reg errors
// E0400-E0499: SCCP errors
// E0500-E0599: Register allocation errors
// W0001-W0999: Warning codes (IsWarning and GetErrorCategory also treat
//              E0800-E0899 as warnings; no code in that range is defined)

const (
	// Builder errors (E0100-E0199) - malformed construction requests.

	// E0100: a function name was registered twice in the same module
	ErrorDuplicateFunction = "E0100"

	// E0101: an instruction was pushed after a block's terminator
	ErrorPushAfterTerminator = "E0101"

	// E0102: a builder operation ran with no function/block cursor set
	ErrorNoCursor = "E0102"

	// CFG errors (E0200-E0299).

	// E0200: a block has no terminator instruction
	ErrorMissingTerminator = "E0200"

	// E0201: a phi's incoming block set does not match its predecessor set
	ErrorPhiPredecessorMismatch = "E0201"

	// Mem2Reg errors (E0300-E0399).

	// E0300: an alloca's address value escaped into a non-memory use
	ErrorAllocaEscapes = "E0300"

	// SCCP errors (E0400-E0499).

	// E0400: constant division by zero
	ErrorDivisionByZero = "E0400"

	// E0401: constant modulo by zero
	ErrorModuloByZero = "E0401"

	// Register allocation errors (E0500-E0599).

	// E0500: live interval computed for a value with no definition site
	ErrorUnboundedInterval = "E0500"

	// Warning codes (W0001-W0999).

	// W0001: alloca with no stores, left unpromoted
	WarningUninitializedSlot = "W0001"
)

// GetErrorDescription returns a human-readable description of the error code.
func GetErrorDescription(code string) string {
	switch code {
	case ErrorDuplicateFunction:
		return "a function with this name already exists in the module"
	case ErrorPushAfterTerminator:
		return "an instruction was appended after the block's terminator"
	case ErrorNoCursor:
		return "the builder has no current function or block to operate on"
	case ErrorMissingTerminator:
		return "a basic block does not end with a terminator instruction"
	case ErrorPhiPredecessorMismatch:
		return "a phi's incoming edges do not match the block's predecessors"
	case ErrorAllocaEscapes:
		return "an alloca's value was used somewhere other than a load/store address"
	case ErrorDivisionByZero:
		return "division by the constant zero"
	case ErrorModuloByZero:
		return "modulo by the constant zero"
	case ErrorUnboundedInterval:
		return "a live interval was requested for an undefined value"
	case WarningUninitializedSlot:
		return "a stack slot is read before any store reaches it"
	default:
		return "unknown error code"
	}
}

// IsWarning returns true if the error code represents a warning rather than an error.
func IsWarning(code string) bool {
	return len(code) > 0 && (code[0] == 'W' || (code >= "E0800" && code < "E0900"))
}

// GetErrorCategory returns the category of the error based on its code.
func GetErrorCategory(code string) string {
	switch {
	case code >= "E0100" && code < "E0200":
		return "Builder"
	case code >= "E0200" && code < "E0300":
		return "CFG"
	case code >= "E0300" && code < "E0400":
		return "Mem2Reg"
	case code >= "E0400" && code < "E0500":
		return "SCCP"
	case code >= "E0500" && code < "E0600":
		return "RegAlloc"
	case code >= "E0800" && code < "E0900":
		return "Warning"
	case len(code) > 0 && code[0] == 'W':
		return "Warning"
	default:
		return "Unknown"
	}
}
