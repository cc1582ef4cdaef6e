package irtext

import (
	"fmt"
	"strconv"

	"github.com/alecthomas/participle/v2/lexer"

	"github.com/eownerdead/minicc/internal/errors"
	"github.com/eownerdead/minicc/internal/ir"
)

// Parse reads textual IR from source and builds the ir.Module it denotes —
// the reverse of ir.Print. This is the supplemented "read the golden
// format back" half of the textual IR interface spec.md §6 only specifies
// one direction of.
func Parse(filename, source string) (*ir.Module, error) {
	file, err := ParseString(filename, source)
	if err != nil {
		return nil, err
	}
	return convertFile(file)
}

// ParseFile reads path and converts it to an ir.Module.
func ParseFile(path string) (*ir.Module, error) {
	file, err := ParseTextFile(path)
	if err != nil {
		return nil, err
	}
	return convertFile(file)
}

func convertFile(file *File) (*ir.Module, error) {
	module := ir.NewModule()
	for _, fn := range file.Functions {
		if _, exists := module.Functions[fn.Name]; exists {
			return nil, fmt.Errorf("irtext: duplicate function %q", fn.Name)
		}
		converted, err := convertFunction(fn)
		if err != nil {
			return nil, err
		}
		module.Functions[fn.Name] = converted
	}
	return module, nil
}

func convertFunction(fn *FunctionDecl) (*ir.Function, error) {
	f := &ir.Function{Name: fn.Name, Blocks: map[ir.BlockId]*ir.Block{}}
	for _, b := range fn.Blocks {
		id, err := parseBlockID(b.ID)
		if err != nil {
			return nil, err
		}
		if _, exists := f.Blocks[id]; exists {
			return nil, fmt.Errorf("irtext: function %q declares block %s twice", fn.Name, id)
		}
		block := &ir.Block{}
		for _, line := range b.Instructions {
			inst, err := convertInstrLine(line)
			if err != nil {
				return nil, err
			}
			block.Instructions = append(block.Instructions, inst)
		}
		f.Blocks[id] = block
	}
	return f, nil
}

func convertInstrLine(line *InstrLine) (ir.Instruction, error) {
	switch {
	case line.Assign != nil:
		return convertAssign(line.Assign)
	case line.Store != nil:
		addr, err := convertOperand(line.Store.Address)
		if err != nil {
			return nil, err
		}
		val, err := convertOperand(line.Store.Value)
		if err != nil {
			return nil, err
		}
		return ir.Store{Address: addr, Value: val, Pos: toPosition(line.Store.Pos)}, nil
	case line.Jmp != nil:
		target, err := parseBlockID(line.Jmp.Target)
		if err != nil {
			return nil, err
		}
		return ir.Jmp{Target: target, Pos: toPosition(line.Jmp.Pos)}, nil
	case line.Cond != nil:
		pred, err := convertOperand(line.Cond.Pred)
		if err != nil {
			return nil, err
		}
		then, err := parseBlockID(line.Cond.Then)
		if err != nil {
			return nil, err
		}
		els, err := parseBlockID(line.Cond.Else)
		if err != nil {
			return nil, err
		}
		return ir.Cond{Pred: pred, Then: then, Else: els, Pos: toPosition(line.Cond.Pos)}, nil
	case line.Ret != nil:
		val, err := convertOperand(line.Ret.Value)
		if err != nil {
			return nil, err
		}
		return ir.Ret{Value: val, Pos: toPosition(line.Ret.Pos)}, nil
	default:
		return nil, fmt.Errorf("irtext: empty instruction line")
	}
}

func convertAssign(a *AssignInstr) (ir.Instruction, error) {
	dest, err := parseValueID(a.Dest)
	if err != nil {
		return nil, err
	}
	pos := toPosition(a.Pos)

	switch {
	case a.RHS.Alloca != nil:
		return ir.Alloca{Dest: dest, Pos: pos}, nil
	case a.RHS.Load != nil:
		addr, err := convertOperand(a.RHS.Load.Address)
		if err != nil {
			return nil, err
		}
		return ir.Load{Dest: dest, Address: addr, Pos: pos}, nil
	case a.RHS.Un != nil:
		src, err := convertOperand(a.RHS.Un.Src)
		if err != nil {
			return nil, err
		}
		return ir.Un{Op: ir.Copy, Dest: dest, Src: src, Pos: pos}, nil
	case a.RHS.Bin != nil:
		op, err := binOpFromString(a.RHS.Bin.Op)
		if err != nil {
			return nil, err
		}
		lhs, err := convertOperand(a.RHS.Bin.LHS)
		if err != nil {
			return nil, err
		}
		rhs, err := convertOperand(a.RHS.Bin.RHS)
		if err != nil {
			return nil, err
		}
		return ir.Bin{Op: op, Dest: dest, LHS: lhs, RHS: rhs, Pos: pos}, nil
	case a.RHS.Phi != nil:
		incoming := map[ir.BlockId]ir.Operand{}
		for _, entry := range a.RHS.Phi.Entries {
			blockID, err := parseBlockID(entry.Block)
			if err != nil {
				return nil, err
			}
			op, err := convertOperand(entry.Operand)
			if err != nil {
				return nil, err
			}
			incoming[blockID] = op
		}
		return ir.Phi{Dest: dest, Incoming: incoming, Pos: pos}, nil
	default:
		return nil, fmt.Errorf("irtext: %s = <empty right-hand side>", a.Dest)
	}
}

func convertOperand(o *Operand) (ir.Operand, error) {
	switch {
	case o.Value != nil:
		v, err := parseValueID(*o.Value)
		if err != nil {
			return ir.Operand{}, err
		}
		return ir.ValueOperand(v), nil
	case o.Const != nil:
		c, err := strconv.ParseInt(*o.Const, 10, 64)
		if err != nil {
			return ir.Operand{}, fmt.Errorf("irtext: malformed integer constant %q: %w", *o.Const, err)
		}
		return ir.ConstOperand(c), nil
	default:
		return ir.Operand{}, fmt.Errorf("irtext: empty operand")
	}
}

func parseValueID(raw string) (ir.ValueId, error) {
	n, err := strconv.Atoi(raw[1:]) // strip leading "$"
	if err != nil {
		return 0, fmt.Errorf("irtext: malformed value id %q: %w", raw, err)
	}
	return ir.ValueId(n), nil
}

func parseBlockID(raw string) (ir.BlockId, error) {
	n, err := strconv.Atoi(raw[1:]) // strip leading "'"
	if err != nil {
		return 0, fmt.Errorf("irtext: malformed block id %q: %w", raw, err)
	}
	return ir.BlockId(n), nil
}

func binOpFromString(s string) (ir.BinOp, error) {
	switch s {
	case "add":
		return ir.Add, nil
	case "sub":
		return ir.Sub, nil
	case "mul":
		return ir.Mul, nil
	case "div":
		return ir.Div, nil
	case "mod":
		return ir.Mod, nil
	case "eq":
		return ir.Eq, nil
	case "ne":
		return ir.Ne, nil
	case "lt":
		return ir.Lt, nil
	case "le":
		return ir.Le, nil
	case "gt":
		return ir.Gt, nil
	case "ge":
		return ir.Ge, nil
	default:
		return 0, fmt.Errorf("irtext: unknown binary operator %q", s)
	}
}

func toPosition(p lexer.Position) errors.Position {
	return errors.Position{Filename: p.Filename, Offset: p.Offset, Line: p.Line, Column: p.Column}
}
