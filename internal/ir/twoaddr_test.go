package ir

import "testing"

func TestToTwoAddressInsertsCopyWhenDestDiffersFromLHS(t *testing.T) {
	b := NewBuilder()
	b.NewFunction("f")
	b.NewBlock()
	// NewValue only moves past ids that an instruction already defines, and
	// nothing here defines the two operands, so all three ids are numbered
	// directly to keep them distinct.
	x, y, z := ValueId(0), ValueId(1), ValueId(2)
	b.Push(Bin{Op: Add, Dest: z, LHS: ValueOperand(x), RHS: ValueOperand(y)})
	b.Push(Ret{Value: ValueOperand(z)})

	fn := b.Module().Functions["f"]
	ToTwoAddress(fn)

	block := fn.Blocks[0]
	if len(block.Instructions) != 3 {
		t.Fatalf("expected copy + bin + ret, got %d instructions", len(block.Instructions))
	}

	cp, ok := block.Instructions[0].(Un)
	if !ok || cp.Op != Copy || cp.Dest != z || !cp.Src.Equal(ValueOperand(x)) {
		t.Fatalf("expected copy $%d = copy $%d first, got %#v", z, x, block.Instructions[0])
	}

	bin, ok := block.Instructions[1].(Bin)
	if !ok || !bin.LHS.Equal(ValueOperand(z)) || !bin.RHS.Equal(ValueOperand(y)) {
		t.Fatalf("expected in-place bin using dest as lhs, got %#v", block.Instructions[1])
	}
}

func TestToTwoAddressSkipsCopyWhenDestAlreadyLHS(t *testing.T) {
	b := NewBuilder()
	b.NewFunction("f")
	b.NewBlock()
	x := b.NewValue()
	b.Push(Bin{Op: Add, Dest: x, LHS: ValueOperand(x), RHS: ConstOperand(1)})
	b.Push(Ret{Value: ValueOperand(x)})

	fn := b.Module().Functions["f"]
	ToTwoAddress(fn)

	block := fn.Blocks[0]
	if len(block.Instructions) != 2 {
		t.Fatalf("expected no copy inserted, got %d instructions", len(block.Instructions))
	}
	if _, ok := block.Instructions[0].(Bin); !ok {
		t.Fatalf("expected bin to remain first instruction, got %#v", block.Instructions[0])
	}
}

func TestToTwoAddressLeavesNonBinInstructionsAlone(t *testing.T) {
	b := NewBuilder()
	b.NewFunction("f")
	b.NewBlock()
	v := b.NewValue()
	b.Push(Alloca{Dest: v})
	b.Push(Ret{Value: ConstOperand(0)})

	fn := b.Module().Functions["f"]
	before := len(fn.Blocks[0].Instructions)
	ToTwoAddress(fn)
	if len(fn.Blocks[0].Instructions) != before {
		t.Fatalf("expected instruction count unchanged, got %d want %d", len(fn.Blocks[0].Instructions), before)
	}
}
