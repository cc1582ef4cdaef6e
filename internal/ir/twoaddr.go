package ir

// ToTwoAddress lowers every 3-address Bin instruction (dest, lhs, rhs) into
// the 2-address shape a machine backend expects, where the destination
// register is also one of the sources: a copy materializes lhs into dest
// when they are not already the same value, followed by an in-place
// Bin(dest, dest, rhs). Grounded on minicc_ir/src/to2op.rs, which performs
// the same rewrite ahead of x86 emission; this repo stops at the rewritten
// IR and leaves emission itself out of scope.
//
// This pass is supplemental: it runs after register allocation, as a final
// step before handing the IR to the (out-of-scope) instruction emitter, and
// is safe to skip entirely for callers that only need the allocator's
// output.
func ToTwoAddress(f *Function) {
	for _, id := range f.SortedBlockIDs() {
		block := f.Blocks[id]
		var rewritten []Instruction
		for _, inst := range block.Instructions {
			bin, ok := inst.(Bin)
			if !ok {
				rewritten = append(rewritten, inst)
				continue
			}
			if bin.LHS.IsValue() && bin.LHS.Value() == bin.Dest {
				rewritten = append(rewritten, bin)
				continue
			}
			rewritten = append(rewritten, Un{Op: Copy, Dest: bin.Dest, Src: bin.LHS, Pos: bin.Pos})
			bin.LHS = ValueOperand(bin.Dest)
			rewritten = append(rewritten, bin)
		}
		block.Instructions = rewritten
	}
}
