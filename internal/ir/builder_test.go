package ir

import "testing"

func TestBuilderNewFunctionAndBlock(t *testing.T) {
	b := NewBuilder()
	fn := b.NewFunction("main")
	if fn.Name != "main" {
		t.Fatalf("expected function name 'main', got %q", fn.Name)
	}

	entry := b.NewBlock()
	if entry != 0 {
		t.Fatalf("expected first block id 0, got %s", entry)
	}

	v0 := b.NewValue()
	b.Push(Alloca{Dest: v0})
	b.Push(Ret{Value: ConstOperand(0)})

	block := fn.Blocks[entry]
	if len(block.Instructions) != 2 {
		t.Fatalf("expected 2 instructions, got %d", len(block.Instructions))
	}
}

func TestBuilderDuplicateFunctionPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic on duplicate function name")
		}
	}()
	b := NewBuilder()
	b.NewFunction("main")
	b.NewFunction("main")
}

func TestBuilderPushAfterTerminatorPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic on push after terminator")
		}
	}()
	b := NewBuilder()
	b.NewFunction("main")
	b.NewBlock()
	b.Push(Ret{Value: ConstOperand(0)})
	b.Push(Ret{Value: ConstOperand(1)})
}

func TestBuilderPushWithNoCursorPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic with no cursor set")
		}
	}()
	b := NewBuilder()
	b.Push(Ret{Value: ConstOperand(0)})
}

// TestBuilderMoveToFunctionFreshIdsAvoidCollision exercises MoveToFunction
// against a function the Builder never constructed itself (e.g. one
// irtext.Parse produced), then checks that NewValue/NewBlock hand out ids
// past its existing contents rather than colliding with them — the gap
// an independent per-function counter would otherwise reopen.
func TestBuilderMoveToFunctionFreshIdsAvoidCollision(t *testing.T) {
	prebuilt := &Function{
		Name: "prebuilt",
		Blocks: map[BlockId]*Block{
			0: {Instructions: []Instruction{
				Alloca{Dest: 5},
				Bin{Op: Add, Dest: 9, LHS: ConstOperand(1), RHS: ConstOperand(2)},
				Jmp{Target: 3},
			}},
			3: {Instructions: []Instruction{
				Ret{Value: ValueOperand(9)},
			}},
		},
	}

	b := NewBuilder()
	b.module.Functions[prebuilt.Name] = prebuilt
	b.MoveToFunction("prebuilt")

	if v := b.NewValue(); v != 10 {
		t.Fatalf("expected the next fresh value past $9 to be $10, got %s", v)
	}
	if blk := b.NewBlock(); blk != 4 {
		t.Fatalf("expected the next fresh block past '3 to be '4, got %s", blk)
	}

	all := AllValues(prebuilt)
	if _, ok := all[5]; !ok {
		t.Fatalf("expected AllValues to report the prebuilt alloca's $5, got %v", all)
	}
	if _, ok := all[9]; !ok {
		t.Fatalf("expected AllValues to report the prebuilt bin's $9, got %v", all)
	}
}

func TestBuilderMoveToBlock(t *testing.T) {
	b := NewBuilder()
	b.NewFunction("main")
	first := b.NewBlock()
	second := b.NewBlock()
	b.MoveToBlock(first)
	if b.CurrentBlock() != first {
		t.Fatalf("expected cursor at block %s, got %s", first, b.CurrentBlock())
	}
	b.Push(Jmp{Target: second})
	b.MoveToBlock(second)
	b.Push(Ret{Value: ConstOperand(0)})
}
