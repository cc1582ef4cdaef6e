package ir

import (
	"sort"

	"github.com/eownerdead/minicc/internal/errors"
)

// SCCP folds every Bin instruction whose operands are both constants,
// repeating the scan-substitute-prune cycle to a fixpoint so that chains
// (`$1 = add 2, 3` feeding `$2 = mul $1, 2`) fold completely within one
// call — required for the idempotence property spec §8 tests
// (`sccp ∘ sccp ≡ sccp`): a second call must be a no-op, which a single
// non-iterating scan cannot guarantee. This is still deliberately not full
// lattice-based sparse conditional constant propagation: it tracks no
// top/bottom/constant lattice and never looks through a Phi. Grounded on
// minicc_ir/src/sccp.rs's eval_bin, wrapped in the fixpoint loop its
// single-function target never needed.
//
// Comparisons (Eq/Ne/Lt/Le/Gt/Ge) are left opaque even when both operands
// are constant — resolving Open Question (a): this pass only ever narrows
// arithmetic, never conditions, so it can never fold away a branch.
//
// A constant division or modulo by zero is a user-facing diagnostic, not a
// panic: it reflects a property of the input program, not a bug in this
// compiler, so the first one found is returned and folding stops there.
func SCCP(f *Function) error {
	for {
		replacements, err := foldConstantBins(f)
		if err != nil {
			return err
		}
		if len(replacements) == 0 {
			return nil
		}

		ids := make([]ValueId, 0, len(replacements))
		for id := range replacements {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		for _, id := range ids {
			RenameVar(f, id, replacements[id])
		}

		for _, id := range f.SortedBlockIDs() {
			block := f.Blocks[id]
			kept := block.Instructions[:0:0]
			for _, inst := range block.Instructions {
				if bin, ok := inst.(Bin); ok {
					if _, folded := replacements[bin.Dest]; folded {
						continue
					}
				}
				kept = append(kept, inst)
			}
			block.Instructions = kept
		}
	}
}

// foldConstantBins scans f once, returning the dest -> folded-constant
// substitution for every Bin instruction whose operands are both constants.
func foldConstantBins(f *Function) (map[ValueId]Operand, error) {
	replacements := map[ValueId]Operand{}

	for _, id := range f.SortedBlockIDs() {
		for _, inst := range f.Blocks[id].Instructions {
			bin, ok := inst.(Bin)
			if !ok || !bin.LHS.IsConst() || !bin.RHS.IsConst() {
				continue
			}
			l, r := bin.LHS.Const(), bin.RHS.Const()
			switch bin.Op {
			case Add:
				replacements[bin.Dest] = ConstOperand(l + r)
			case Sub:
				replacements[bin.Dest] = ConstOperand(l - r)
			case Mul:
				replacements[bin.Dest] = ConstOperand(l * r)
			case Div:
				if r == 0 {
					return nil, errors.DivisionByZero(bin.Pos)
				}
				replacements[bin.Dest] = ConstOperand(l / r)
			case Mod:
				if r == 0 {
					return nil, errors.ModuloByZero(bin.Pos)
				}
				replacements[bin.Dest] = ConstOperand(l % r)
			case Eq, Ne, Lt, Le, Gt, Ge:
				// left opaque; see Open Question (a)
			}
		}
	}

	return replacements, nil
}
