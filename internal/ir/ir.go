// Package ir defines the in-memory control-flow-graph representation that
// the middle-end pipeline (mem2reg, SCCP, linear-scan) operates over.
//
// Blocks refer to successor blocks by BlockId and instructions refer to
// definitions by ValueId — indices into owner maps, never by back-pointer.
// This keeps the IR free of reference cycles and makes clone/move trivial.
package ir

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/eownerdead/minicc/internal/errors"
)

// ValueId names an SSA value. Pre-mem2reg it also names an abstract stack
// slot when it is the Dest of an Alloca.
type ValueId int

func (v ValueId) String() string { return "$" + strconv.Itoa(int(v)) }

// BlockId names a basic block. Block 0 is always the entry block.
type BlockId int

func (b BlockId) String() string { return "'" + strconv.Itoa(int(b)) }

// Operand is either a ValueId or a compile-time integer constant.
type Operand struct {
	val     ValueId
	cnst    int64
	isValue bool
}

// ValueOperand builds an Operand that references a ValueId.
func ValueOperand(v ValueId) Operand { return Operand{val: v, isValue: true} }

// ConstOperand builds an Operand holding a literal integer.
func ConstOperand(c int64) Operand { return Operand{cnst: c, isValue: false} }

// IsValue reports whether the operand names an SSA value.
func (o Operand) IsValue() bool { return o.isValue }

// IsConst reports whether the operand is a literal constant.
func (o Operand) IsConst() bool { return !o.isValue }

// Value returns the referenced ValueId. Only meaningful when IsValue.
func (o Operand) Value() ValueId { return o.val }

// Const returns the literal value. Only meaningful when IsConst.
func (o Operand) Const() int64 { return o.cnst }

func (o Operand) String() string {
	if o.isValue {
		return o.val.String()
	}
	return strconv.FormatInt(o.cnst, 10)
}

// Equal reports whether two operands denote the same value or constant.
func (o Operand) Equal(other Operand) bool {
	if o.isValue != other.isValue {
		return false
	}
	if o.isValue {
		return o.val == other.val
	}
	return o.cnst == other.cnst
}

// BinOp is a binary opcode. Arithmetic is two's-complement 64-bit;
// comparisons produce 0/1.
type BinOp int

const (
	Add BinOp = iota
	Sub
	Mul
	Div
	Mod
	Eq
	Ne
	Lt
	Le
	Gt
	Ge
)

var binOpNames = [...]string{"add", "sub", "mul", "div", "mod", "eq", "ne", "lt", "le", "gt", "ge"}

func (op BinOp) String() string {
	if int(op) < 0 || int(op) >= len(binOpNames) {
		return fmt.Sprintf("binop(%d)", int(op))
	}
	return binOpNames[op]
}

// UnOp is a unary opcode. Copy is currently the only member; it exists so
// ToTwoAddress has somewhere to materialize an accumulator operand.
type UnOp int

const (
	Copy UnOp = iota
)

func (op UnOp) String() string { return "copy" }

// Instruction is a closed tagged union: the variants below are the complete
// set, dispatched by type switch in every pass. There is no open extension
// point and no virtual dispatch — adding an opcode means extending this set
// and every switch that matches on it.
type Instruction interface {
	isInstruction()
}

// Alloca reserves an abstract stack slot named by Dest.
type Alloca struct {
	Dest ValueId
	Pos  errors.Position
}

// Store writes Value into the slot addressed by Address, which must be a
// ValueId originating from an Alloca.
type Store struct {
	Address Operand
	Value   Operand
	Pos     errors.Position
}

// Load reads the slot addressed by Address into Dest.
type Load struct {
	Dest    ValueId
	Address Operand
	Pos     errors.Position
}

// Bin computes Op(LHS, RHS) into Dest.
type Bin struct {
	Op   BinOp
	Dest ValueId
	LHS  Operand
	RHS  Operand
	Pos  errors.Position
}

// Un computes Op(Src) into Dest.
type Un struct {
	Op   UnOp
	Dest ValueId
	Src  Operand
	Pos  errors.Position
}

// Phi selects Incoming[pred] based on which predecessor transferred control.
// Incoming's key set must equal the containing block's predecessor set.
type Phi struct {
	Dest     ValueId
	Incoming map[BlockId]Operand
	Pos      errors.Position
}

// Jmp unconditionally transfers control to Target. Terminator.
type Jmp struct {
	Target BlockId
	Pos    errors.Position
}

// Cond transfers control to Then if Pred is nonzero, else Else. Terminator.
type Cond struct {
	Pred Operand
	Then BlockId
	Else BlockId
	Pos  errors.Position
}

// Ret returns Value from the function. Terminator.
type Ret struct {
	Value Operand
	Pos   errors.Position
}

func (Alloca) isInstruction() {}
func (Store) isInstruction()  {}
func (Load) isInstruction()   {}
func (Bin) isInstruction()    {}
func (Un) isInstruction()     {}
func (Phi) isInstruction()    {}
func (Jmp) isInstruction()    {}
func (Cond) isInstruction()   {}
func (Ret) isInstruction()    {}

// Dest returns the ValueId an instruction defines, if any.
func Dest(inst Instruction) (ValueId, bool) {
	switch i := inst.(type) {
	case Alloca:
		return i.Dest, true
	case Load:
		return i.Dest, true
	case Bin:
		return i.Dest, true
	case Un:
		return i.Dest, true
	case Phi:
		return i.Dest, true
	default:
		return 0, false
	}
}

// Operands returns every operand an instruction reads, in a stable order.
// A Phi's incoming operands are returned in ascending predecessor-BlockId
// order so callers get deterministic iteration.
func Operands(inst Instruction) []Operand {
	switch i := inst.(type) {
	case Alloca:
		return nil
	case Store:
		return []Operand{i.Address, i.Value}
	case Load:
		return []Operand{i.Address}
	case Bin:
		return []Operand{i.LHS, i.RHS}
	case Un:
		return []Operand{i.Src}
	case Phi:
		preds := make([]BlockId, 0, len(i.Incoming))
		for p := range i.Incoming {
			preds = append(preds, p)
		}
		sort.Slice(preds, func(a, b int) bool { return preds[a] < preds[b] })
		ops := make([]Operand, 0, len(preds))
		for _, p := range preds {
			ops = append(ops, i.Incoming[p])
		}
		return ops
	case Jmp:
		return nil
	case Cond:
		return []Operand{i.Pred}
	case Ret:
		if i.Value.IsConst() || i.Value.IsValue() {
			return []Operand{i.Value}
		}
		return nil
	default:
		return nil
	}
}

// IsTerminator reports whether an instruction ends its basic block.
func IsTerminator(inst Instruction) bool {
	switch inst.(type) {
	case Jmp, Cond, Ret:
		return true
	default:
		return false
	}
}

// Successors returns the block's out-edges as defined by its terminator.
// Cond with Then == Else yields a single-element slice: the CFG is still
// well-formed, just degenerate.
func Successors(terminator Instruction) []BlockId {
	switch t := terminator.(type) {
	case Jmp:
		return []BlockId{t.Target}
	case Cond:
		if t.Then == t.Else {
			return []BlockId{t.Then}
		}
		return []BlockId{t.Then, t.Else}
	case Ret:
		return nil
	default:
		return nil
	}
}

// InstPosition returns the source (or IR-text) position an instruction was
// built from, defaulting to the zero Position for synthesized instructions
// such as inserted phis.
func InstPosition(inst Instruction) errors.Position {
	switch i := inst.(type) {
	case Alloca:
		return i.Pos
	case Store:
		return i.Pos
	case Load:
		return i.Pos
	case Bin:
		return i.Pos
	case Un:
		return i.Pos
	case Phi:
		return i.Pos
	case Jmp:
		return i.Pos
	case Cond:
		return i.Pos
	case Ret:
		return i.Pos
	default:
		return errors.Position{}
	}
}

// RenameOperand substitutes every operand occurrence of from with to in a
// single instruction, returning the rewritten copy. When to is itself a
// ValueId, a definition site equal to from is rewritten as well — this is
// what lets the single-store mem2reg shortcut and SCCP fold a dest into its
// replacement and then prune the original definition.
func RenameOperand(inst Instruction, from ValueId, to Operand) Instruction {
	reDest := func(v ValueId) ValueId {
		if to.IsValue() && v == from {
			return to.Value()
		}
		return v
	}
	reOp := func(o Operand) Operand {
		if o.IsValue() && o.Value() == from {
			return to
		}
		return o
	}

	switch i := inst.(type) {
	case Alloca:
		i.Dest = reDest(i.Dest)
		return i
	case Store:
		i.Address = reOp(i.Address)
		i.Value = reOp(i.Value)
		return i
	case Load:
		i.Dest = reDest(i.Dest)
		i.Address = reOp(i.Address)
		return i
	case Bin:
		i.Dest = reDest(i.Dest)
		i.LHS = reOp(i.LHS)
		i.RHS = reOp(i.RHS)
		return i
	case Un:
		i.Dest = reDest(i.Dest)
		i.Src = reOp(i.Src)
		return i
	case Phi:
		i.Dest = reDest(i.Dest)
		incoming := make(map[BlockId]Operand, len(i.Incoming))
		for pred, op := range i.Incoming {
			incoming[pred] = reOp(op)
		}
		i.Incoming = incoming
		return i
	case Jmp:
		return i
	case Cond:
		i.Pred = reOp(i.Pred)
		return i
	case Ret:
		i.Value = reOp(i.Value)
		return i
	default:
		return inst
	}
}

// Block is a maximal straight-line instruction sequence. Every well-formed
// block ends with exactly one terminator and contains no terminator before
// the end (invariant I1).
type Block struct {
	Instructions []Instruction
}

// Terminator returns the block's terminating instruction, panicking if the
// block is malformed — a missing terminator is a programmer error, not a
// recoverable one, per spec §7.
func (b *Block) Terminator() Instruction {
	for _, inst := range b.Instructions {
		if IsTerminator(inst) {
			return inst
		}
	}
	panic(fmt.Sprintf("%s: block has no terminator instruction", errors.ErrorMissingTerminator))
}

// Function is a sparse map from BlockId to Block. Block 0 is the entry.
// The map is permitted to have holes; ids are dense only by convention.
type Function struct {
	Name   string
	Blocks map[BlockId]*Block
}

// SortedBlockIDs returns the function's block ids in ascending order. Every
// pass that needs a canonical traversal order derives it from this.
func (f *Function) SortedBlockIDs() []BlockId {
	ids := make([]BlockId, 0, len(f.Blocks))
	for id := range f.Blocks {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// AllValues returns every ValueId defined anywhere in the function.
func AllValues(f *Function) map[ValueId]struct{} {
	vals := map[ValueId]struct{}{}
	for _, id := range f.SortedBlockIDs() {
		for _, inst := range f.Blocks[id].Instructions {
			if v, ok := Dest(inst); ok {
				vals[v] = struct{}{}
			}
		}
	}
	return vals
}

// RenameVar substitutes every operand occurrence of from with to across all
// instructions in the function. Used by mem2reg's single-store shortcut and
// by SCCP to fold a constant into its uses before pruning the definition.
func RenameVar(f *Function, from ValueId, to Operand) {
	for _, id := range f.SortedBlockIDs() {
		block := f.Blocks[id]
		for i, inst := range block.Instructions {
			block.Instructions[i] = RenameOperand(inst, from, to)
		}
	}
}

// Module is a collection of named functions; names are unique within it.
type Module struct {
	Functions map[string]*Function
}

// NewModule returns an empty module.
func NewModule() *Module {
	return &Module{Functions: map[string]*Function{}}
}

// SortedFunctionNames returns the module's function names in lexical order.
func (m *Module) SortedFunctionNames() []string {
	names := make([]string, 0, len(m.Functions))
	for name := range m.Functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
