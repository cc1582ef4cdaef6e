package ir

import (
	"sort"

	"github.com/eownerdead/minicc/internal/errors"
)

// Mem2RegResult carries the non-fatal diagnostics mem2reg produced while
// promoting a function — currently just the never-stored-slot warning.
type Mem2RegResult struct {
	Warnings []errors.CompilerError
}

// Mem2Reg promotes every stack slot (every Alloca) to SSA values,
// inserting phis at the dominance frontier of its defining stores. Slots
// are not checked for an address escaping into a non-memory use; every
// Alloca is treated as promotable. Grounded on the original
// compiler's classify / single-store shortcut / phi-insert / rename /
// rewrite pipeline (minicc_ir/src/mem2reg.rs), generalized here so that
// Load instructions of a multi-store slot are also eliminated (their uses
// are renamed during the DFS and the Loads dropped in the rewrite) rather
// than left behind — the spec's "no Alloca/Store/Load
// remains" postcondition requires it, even though the slot's own ValueId
// is reused as the phi destination at each point, mirroring how the
// original folds a slot and its current SSA value into one id.
func Mem2Reg(f *Function, preds map[BlockId]BlockSet, domFrontier map[BlockId]BlockSet) Mem2RegResult {
	var result Mem2RegResult
	for _, slot := range promotableSlots(f) {
		stores := storeBlocksOf(f, slot)
		count := 0
		for _, id := range stores {
			for _, inst := range f.Blocks[id].Instructions {
				if s, ok := inst.(Store); ok && s.Address.IsValue() && s.Address.Value() == slot {
					count++
				}
			}
		}
		switch count {
		case 0:
			result.Warnings = append(result.Warnings, errors.NewIRWarning(
				errors.WarningUninitializedSlot,
				"stack slot is never stored to and was left unpromoted",
				errors.Position{}).Build())
		case 1:
			promoteSingleStore(f, slot)
		default:
			promoteMultiStore(f, preds, domFrontier, slot, stores)
		}
	}
	return result
}

// promotableSlots returns every Alloca destination in f, in ascending
// ValueId order so promotion order (and therefore any fresh ids it
// allocates) is deterministic.
func promotableSlots(f *Function) []ValueId {
	var slots []ValueId
	for _, id := range f.SortedBlockIDs() {
		for _, inst := range f.Blocks[id].Instructions {
			if a, ok := inst.(Alloca); ok {
				slots = append(slots, a.Dest)
			}
		}
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i] < slots[j] })
	return slots
}

// storeBlocksOf returns, in ascending order, every block containing at
// least one Store whose address is slot.
func storeBlocksOf(f *Function, slot ValueId) []BlockId {
	var blocks []BlockId
	for _, id := range f.SortedBlockIDs() {
		for _, inst := range f.Blocks[id].Instructions {
			if s, ok := inst.(Store); ok && s.Address.IsValue() && s.Address.Value() == slot {
				blocks = append(blocks, id)
				break
			}
		}
	}
	return blocks
}

// promoteSingleStore handles the shortcut case: a slot stored exactly once
// has no phi to insert. Every load of the slot after the store becomes the
// stored operand directly, via a function-wide RenameVar, and the Alloca
// and Store are dropped.
func promoteSingleStore(f *Function, slot ValueId) {
	var stored Operand
	found := false
	for _, id := range f.SortedBlockIDs() {
		block := f.Blocks[id]
		kept := block.Instructions[:0:0]
		for _, inst := range block.Instructions {
			switch i := inst.(type) {
			case Alloca:
				if i.Dest == slot {
					continue
				}
			case Store:
				if i.Address.IsValue() && i.Address.Value() == slot {
					stored = i.Value
					found = true
					continue
				}
			}
			kept = append(kept, inst)
		}
		block.Instructions = kept
	}
	if !found {
		return
	}
	for _, id := range f.SortedBlockIDs() {
		block := f.Blocks[id]
		kept := block.Instructions[:0:0]
		for _, inst := range block.Instructions {
			if l, ok := inst.(Load); ok && l.Address.IsValue() && l.Address.Value() == slot {
				RenameVar(f, l.Dest, stored)
				continue
			}
			kept = append(kept, inst)
		}
		block.Instructions = kept
	}
}

// promoteMultiStore runs the full phi-insertion and rename pipeline for a
// slot stored from more than one block.
func promoteMultiStore(f *Function, preds map[BlockId]BlockSet, domFrontier map[BlockId]BlockSet, slot ValueId, storeBlocks []BlockId) {
	phiBlocks := BlockSet{}
	for _, b := range storeBlocks {
		for _, d := range domFrontier[b].Sorted() {
			phiBlocks.Add(d)
		}
	}

	incoming := make(map[BlockId]map[BlockId]Operand, len(phiBlocks))
	for b := range phiBlocks {
		incoming[b] = map[BlockId]Operand{}
	}

	entry := f.SortedBlockIDs()[0]
	visited := BlockSet{}
	renameMem2Reg(f, entry, slot, Operand{}, false, phiBlocks, incoming, visited)

	for _, id := range f.SortedBlockIDs() {
		block := f.Blocks[id]
		kept := block.Instructions[:0:0]
		if inc, hasPhi := incoming[id]; hasPhi {
			if !phiWellFormed(inc, preds[id]) {
				panic(errors.PhiPredecessorMismatch(int(id), blockIDsToInts(preds[id].Sorted()), blockIDsToInts(sortedKeys(inc))).Error())
			}
			kept = append(kept, Phi{Dest: slot, Incoming: inc})
		}
		for _, inst := range block.Instructions {
			switch i := inst.(type) {
			case Alloca:
				if i.Dest == slot {
					continue
				}
			case Store:
				if i.Address.IsValue() && i.Address.Value() == slot {
					continue
				}
			case Load:
				if i.Address.IsValue() && i.Address.Value() == slot {
					continue
				}
			}
			kept = append(kept, inst)
		}
		block.Instructions = kept
	}
}

// renameMem2Reg performs the depth-first traversal of the CFG (successors in
// terminator order, each block visited once) that threads the slot's
// current value through the CFG, substituting every Load of the slot with
// that current value and recording, for each block scheduled to receive a
// phi, the value live on exit from every predecessor that reaches it.
func renameMem2Reg(f *Function, block BlockId, slot ValueId, current Operand, haveCurrent bool, phiBlocks BlockSet, incoming map[BlockId]map[BlockId]Operand, visited BlockSet) {
	if visited.Has(block) {
		return
	}
	visited.Add(block)

	if phiBlocks.Has(block) {
		current = ValueOperand(slot)
		haveCurrent = true
	}

	b := f.Blocks[block]
	for _, inst := range b.Instructions {
		switch i := inst.(type) {
		case Store:
			if i.Address.IsValue() && i.Address.Value() == slot {
				current = i.Value
				haveCurrent = true
			}
		case Load:
			if haveCurrent && i.Address.IsValue() && i.Address.Value() == slot {
				RenameVar(f, i.Dest, current)
			}
		}
	}

	for _, succ := range BlockSuccessors(f, block) {
		if haveCurrent {
			if m, ok := incoming[succ]; ok {
				m[block] = current
			}
		}
		renameMem2Reg(f, succ, slot, current, haveCurrent, phiBlocks, incoming, visited)
	}
}

func phiWellFormed(incoming map[BlockId]Operand, predecessors BlockSet) bool {
	if len(incoming) != len(predecessors) {
		return false
	}
	for p := range incoming {
		if !predecessors.Has(p) {
			return false
		}
	}
	return true
}

func sortedKeys(m map[BlockId]Operand) []BlockId {
	ids := make([]BlockId, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func blockIDsToInts(ids []BlockId) []int {
	out := make([]int, len(ids))
	for i, id := range ids {
		out[i] = int(id)
	}
	return out
}
