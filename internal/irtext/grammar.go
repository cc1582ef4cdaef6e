package irtext

import "github.com/alecthomas/participle/v2/lexer"

// File is the root production: the golden textual IR format is a sequence
// of function declarations, each introduced by `func name:` and followed
// by its blocks. This is the reverse grammar of ir.Print's output, built
// the way the teacher's grammar.Program reverses its own printer's shape.
type File struct {
	Functions []*FunctionDecl `@@*`
}

// FunctionDecl is `func <name>:` followed by zero or more blocks.
type FunctionDecl struct {
	Name   string       `"func" @Ident ":"`
	Blocks []*BlockDecl `@@*`
}

// BlockDecl is a `'N:` header followed by its straight-line instructions.
type BlockDecl struct {
	ID           string      `@Block ":"`
	Instructions []*InstrLine `@@*`
}

// InstrLine is any one instruction, disambiguated by its leading keyword
// (or, for an assignment, by the `$N =` prefix).
type InstrLine struct {
	Assign *AssignInstr `  @@`
	Store  *StoreInstr  `| @@`
	Jmp    *JmpInstr    `| @@`
	Cond   *CondInstr   `| @@`
	Ret    *RetInstr    `| @@`
}

// AssignInstr covers every instruction that defines a value: alloca, load,
// a unary op, a binary op, or a phi.
type AssignInstr struct {
	Pos  lexer.Position
	Dest string `@Value "="`
	RHS  *RHS   `@@`
}

// RHS is the right-hand side of an assignment.
type RHS struct {
	Alloca *AllocaRHS `  @@`
	Load   *LoadRHS   `| @@`
	Phi    *PhiRHS    `| @@`
	Un     *UnRHS     `| @@`
	Bin    *BinRHS    `| @@`
}

// AllocaRHS is the bare `alloca` keyword.
type AllocaRHS struct {
	Present bool `@"alloca"`
}

// LoadRHS is `load <address>`.
type LoadRHS struct {
	Address *Operand `"load" @@`
}

// UnRHS is `copy <src>`, the only unary op the core defines.
type UnRHS struct {
	Op  string   `@"copy"`
	Src *Operand `@@`
}

// BinRHS is `<op> <lhs>, <rhs>` for one of the eleven binary opcodes.
type BinRHS struct {
	Op  string   `@("add"|"sub"|"mul"|"div"|"mod"|"eq"|"ne"|"lt"|"le"|"gt"|"ge")`
	LHS *Operand `@@ ","`
	RHS *Operand `@@`
}

// PhiRHS is `phi { 'b1: op1, 'b2: op2, ... }`.
type PhiRHS struct {
	Entries []*PhiEntry `"phi" "{" @@ { "," @@ } "}"`
}

// PhiEntry is one `'block: operand` pair inside a phi's incoming set.
type PhiEntry struct {
	Block   string   `@Block ":"`
	Operand *Operand `@@`
}

// StoreInstr is `store <address>, <value>`.
type StoreInstr struct {
	Pos     lexer.Position
	Address *Operand `"store" @@ ","`
	Value   *Operand `@@`
}

// JmpInstr is `jmp 'target`.
type JmpInstr struct {
	Pos    lexer.Position
	Target string `"jmp" @Block`
}

// CondInstr is `cond <pred>, 'then, 'else`.
type CondInstr struct {
	Pos  lexer.Position
	Pred *Operand `"cond" @@ ","`
	Then string   `@Block ","`
	Else string   `@Block`
}

// RetInstr is `ret <value>`.
type RetInstr struct {
	Pos   lexer.Position
	Value *Operand `"ret" @@`
}

// Operand is either a `$N` value reference or a bare integer constant.
type Operand struct {
	Value *string `  @Value`
	Const *string `| @Int`
}
