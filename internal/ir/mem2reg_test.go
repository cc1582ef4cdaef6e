package ir

import "testing"

// TestMem2RegSingleStoreShortcut covers spec scenario 1/4: a slot stored
// exactly once is promoted by direct substitution, with no phi.
//
//	$0 = alloca; store $0, 2; $1 = load $0; $2 = add $1, 3; ret $2
func TestMem2RegSingleStoreShortcut(t *testing.T) {
	f := &Function{
		Name: "f",
		Blocks: map[BlockId]*Block{
			0: {Instructions: []Instruction{
				Alloca{Dest: 0},
				Store{Address: ValueOperand(0), Value: ConstOperand(2)},
				Load{Dest: 1, Address: ValueOperand(0)},
				Bin{Op: Add, Dest: 2, LHS: ValueOperand(1), RHS: ConstOperand(3)},
				Ret{Value: ValueOperand(2)},
			}},
		},
	}

	preds := Predecessors(f)
	dom := Dominators(f, preds)
	df := DominanceFrontier(f, preds, dom)
	Mem2Reg(f, preds, df)

	insts := f.Blocks[0].Instructions
	if len(insts) != 2 {
		t.Fatalf("expected alloca/store/load eliminated, leaving 2 instructions, got %d: %v", len(insts), insts)
	}
	bin, ok := insts[0].(Bin)
	if !ok || !bin.LHS.IsConst() || bin.LHS.Const() != 2 {
		t.Fatalf("expected the load's substitution to leave lhs=Const(2), got %#v", insts[0])
	}

	if err := SCCP(f); err != nil {
		t.Fatalf("unexpected SCCP error: %v", err)
	}
	ret, ok := f.Blocks[0].Instructions[len(f.Blocks[0].Instructions)-1].(Ret)
	if !ok || !ret.Value.IsConst() || ret.Value.Const() != 5 {
		t.Fatalf("expected ret 5 after SCCP, got %v", f.Blocks[0].Instructions)
	}
}

// TestMem2RegIfElseMerge covers spec scenario 2: two stores into a slot
// from either arm of a diamond produce a phi at the merge block.
func TestMem2RegIfElseMerge(t *testing.T) {
	f := &Function{
		Name: "f",
		Blocks: map[BlockId]*Block{
			0: {Instructions: []Instruction{
				Alloca{Dest: 0},
				Cond{Pred: ConstOperand(1), Then: 1, Else: 2},
			}},
			1: {Instructions: []Instruction{
				Store{Address: ValueOperand(0), Value: ConstOperand(1)},
				Jmp{Target: 3},
			}},
			2: {Instructions: []Instruction{
				Store{Address: ValueOperand(0), Value: ConstOperand(2)},
				Jmp{Target: 3},
			}},
			3: {Instructions: []Instruction{
				Load{Dest: 1, Address: ValueOperand(0)},
				Ret{Value: ValueOperand(1)},
			}},
		},
	}

	preds := Predecessors(f)
	dom := Dominators(f, preds)
	df := DominanceFrontier(f, preds, dom)
	Mem2Reg(f, preds, df)

	merge := f.Blocks[3].Instructions
	phi, ok := merge[0].(Phi)
	if !ok {
		t.Fatalf("expected a phi at the start of the merge block, got %#v", merge[0])
	}
	if phi.Dest != 0 {
		t.Fatalf("expected phi to reuse the slot's ValueId 0, got %s", phi.Dest)
	}
	if len(phi.Incoming) != 2 {
		t.Fatalf("expected 2 incoming values, got %d", len(phi.Incoming))
	}
	if v := phi.Incoming[1]; !v.IsConst() || v.Const() != 1 {
		t.Fatalf("expected incoming from block 1 to be Const(1), got %v", v)
	}
	if v := phi.Incoming[2]; !v.IsConst() || v.Const() != 2 {
		t.Fatalf("expected incoming from block 2 to be Const(2), got %v", v)
	}

	ret, ok := merge[len(merge)-1].(Ret)
	if !ok || !ret.Value.IsValue() || ret.Value.Value() != 0 {
		t.Fatalf("expected ret to use the phi's value (ValueId 0) directly, got %#v", merge[len(merge)-1])
	}
}

// TestMem2RegLoopCarriedCounter covers spec scenario 3: a loop header's phi
// has incoming {pre_header: 0, latch: $increment}, and the increment inside
// the loop body reads the phi's value.
func TestMem2RegLoopCarriedCounter(t *testing.T) {
	f := &Function{
		Name: "f",
		Blocks: map[BlockId]*Block{
			// pre-header: i = 0
			0: {Instructions: []Instruction{
				Alloca{Dest: 0},
				Store{Address: ValueOperand(0), Value: ConstOperand(0)},
				Jmp{Target: 1},
			}},
			// header: cond i<N, body, exit
			1: {Instructions: []Instruction{
				Load{Dest: 1, Address: ValueOperand(0)},
				Cond{Pred: ValueOperand(1), Then: 2, Else: 3},
			}},
			// latch/body: i = i+1; jmp header
			2: {Instructions: []Instruction{
				Load{Dest: 2, Address: ValueOperand(0)},
				Bin{Op: Add, Dest: 3, LHS: ValueOperand(2), RHS: ConstOperand(1)},
				Store{Address: ValueOperand(0), Value: ValueOperand(3)},
				Jmp{Target: 1},
			}},
			// exit
			3: {Instructions: []Instruction{
				Ret{Value: ConstOperand(0)},
			}},
		},
	}

	preds := Predecessors(f)
	dom := Dominators(f, preds)
	df := DominanceFrontier(f, preds, dom)
	Mem2Reg(f, preds, df)

	header := f.Blocks[1].Instructions
	phi, ok := header[0].(Phi)
	if !ok {
		t.Fatalf("expected a phi at the loop header, got %#v", header[0])
	}
	if v := phi.Incoming[0]; !v.IsConst() || v.Const() != 0 {
		t.Fatalf("expected incoming from pre-header to be Const(0), got %v", v)
	}
	if v := phi.Incoming[2]; !v.IsValue() {
		t.Fatalf("expected incoming from latch to be an SSA value (the increment), got %v", v)
	}

	latch := f.Blocks[2].Instructions
	bin, ok := latch[0].(Bin)
	if !ok || !bin.LHS.IsValue() || bin.LHS.Value() != phi.Dest {
		t.Fatalf("expected the increment to read the phi's value directly, got %#v", latch[0])
	}
}

func TestMem2RegZeroStoreSlotIsLeftAlone(t *testing.T) {
	f := &Function{
		Name: "f",
		Blocks: map[BlockId]*Block{
			0: {Instructions: []Instruction{
				Alloca{Dest: 0},
				Load{Dest: 1, Address: ValueOperand(0)},
				Ret{Value: ValueOperand(1)},
			}},
		},
	}

	preds := Predecessors(f)
	dom := Dominators(f, preds)
	df := DominanceFrontier(f, preds, dom)
	result := Mem2Reg(f, preds, df)

	if len(result.Warnings) != 1 {
		t.Fatalf("expected one warning for the never-stored slot, got %d", len(result.Warnings))
	}
	if _, ok := f.Blocks[0].Instructions[0].(Alloca); !ok {
		t.Fatalf("expected the zero-store alloca to be left in place")
	}
}

// TestMem2RegIdempotent covers the pass-idempotence testable property:
// mem2reg ∘ mem2reg ≡ mem2reg.
func TestMem2RegIdempotent(t *testing.T) {
	f := buildIfElseForIdempotence()
	preds := Predecessors(f)
	dom := Dominators(f, preds)
	df := DominanceFrontier(f, preds, dom)
	Mem2Reg(f, preds, df)
	once := PrintFunction(f)

	preds2 := Predecessors(f)
	dom2 := Dominators(f, preds2)
	df2 := DominanceFrontier(f, preds2, dom2)
	Mem2Reg(f, preds2, df2)
	twice := PrintFunction(f)

	if once != twice {
		t.Fatalf("mem2reg is not idempotent:\nonce:\n%s\ntwice:\n%s", once, twice)
	}
}

func buildIfElseForIdempotence() *Function {
	return &Function{
		Name: "f",
		Blocks: map[BlockId]*Block{
			0: {Instructions: []Instruction{
				Alloca{Dest: 0},
				Cond{Pred: ConstOperand(1), Then: 1, Else: 2},
			}},
			1: {Instructions: []Instruction{
				Store{Address: ValueOperand(0), Value: ConstOperand(1)},
				Jmp{Target: 3},
			}},
			2: {Instructions: []Instruction{
				Store{Address: ValueOperand(0), Value: ConstOperand(2)},
				Jmp{Target: 3},
			}},
			3: {Instructions: []Instruction{
				Load{Dest: 1, Address: ValueOperand(0)},
				Ret{Value: ValueOperand(1)},
			}},
		},
	}
}
