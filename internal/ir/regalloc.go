package ir

import "sort"

// Location is where a value lives after register allocation: either a
// numbered physical register or the special Spilled marker meaning it lives
// in a materialized stack slot instead.
type Location struct {
	Spilled  bool
	Register int
}

// RegisterLocation returns a Location naming physical register r.
func RegisterLocation(r int) Location { return Location{Register: r} }

// SpilledLocation returns the Location marking a value as spilled.
func SpilledLocation() Location { return Location{Spilled: true} }

// Interval is a value's live range expressed as canonical instruction
// indices: [Start, End]. Start is the index of its defining instruction;
// End is the highest index of any instruction that uses it. A value that
// is defined but never used has Start == End.
type Interval struct {
	Start int
	End   int
}

// instrRef locates one instruction by its position in canonical order.
type instrRef struct {
	block BlockId
	index int
}

// canonicalOrder returns every instruction in f in the order live-interval
// computation and spill materialization must agree on: ascending BlockId,
// then position within the block.
func canonicalOrder(f *Function) []instrRef {
	var order []instrRef
	for _, id := range f.SortedBlockIDs() {
		for i := range f.Blocks[id].Instructions {
			order = append(order, instrRef{block: id, index: i})
		}
	}
	return order
}

func instAt(f *Function, ref instrRef) Instruction {
	return f.Blocks[ref.block].Instructions[ref.index]
}

// LiveIntervals computes the live interval of every value defined in f, per
// spec §4.6: instructions are numbered 0..N-1 in canonical order; a value's
// start is its defining instruction's index, its end is the maximum index
// of any instruction using it as an operand (a phi's incoming operands
// count as used at the phi's own index, not at the predecessor that
// supplies them).
func LiveIntervals(f *Function) map[ValueId]Interval {
	order := canonicalOrder(f)
	intervals := map[ValueId]Interval{}

	for idx, ref := range order {
		if v, ok := Dest(instAt(f, ref)); ok {
			intervals[v] = Interval{Start: idx, End: idx}
		}
	}

	for idx, ref := range order {
		for _, op := range Operands(instAt(f, ref)) {
			if !op.IsValue() {
				continue
			}
			iv, ok := intervals[op.Value()]
			if !ok {
				continue
			}
			if idx > iv.End {
				iv.End = idx
				intervals[op.Value()] = iv
			}
		}
	}

	return intervals
}

// Allocate runs linear-scan register allocation over f's live intervals
// with k physical registers, returning the location chosen for every
// defined value. Grounded on minicc_ir/src/regalloc.rs's LinearScan,
// corrected to spill the active interval with the greatest end point (the
// original's max_by_key on start is not what spec §4.6 specifies).
func Allocate(f *Function, k int) map[ValueId]Location {
	intervals := LiveIntervals(f)

	order := make([]ValueId, 0, len(intervals))
	for v := range intervals {
		order = append(order, v)
	}
	sort.Slice(order, func(i, j int) bool {
		ii, ij := intervals[order[i]], intervals[order[j]]
		if ii.Start != ij.Start {
			return ii.Start < ij.Start
		}
		return order[i] < order[j]
	})

	locations := make(map[ValueId]Location, len(intervals))
	regOf := map[ValueId]int{}
	var active []ValueId
	freeRegs := make([]int, k)
	for i := range freeRegs {
		freeRegs[i] = k - 1 - i // pop from the end; smallest register first
	}

	popReg := func() int {
		r := freeRegs[len(freeRegs)-1]
		freeRegs = freeRegs[:len(freeRegs)-1]
		return r
	}
	pushReg := func(r int) {
		freeRegs = append(freeRegs, r)
		sort.Sort(sort.Reverse(sort.IntSlice(freeRegs)))
	}

	expireOldIntervals := func(current ValueId) {
		sort.Slice(active, func(i, j int) bool {
			ei, ej := intervals[active[i]].End, intervals[active[j]].End
			if ei != ej {
				return ei < ej
			}
			return active[i] < active[j]
		})
		kept := active[:0:0]
		for _, v := range active {
			if intervals[v].End >= intervals[current].Start {
				kept = append(kept, v)
				continue
			}
			pushReg(regOf[v])
		}
		active = kept
	}

	spillAtInterval := func(current ValueId) {
		spill := active[0]
		for _, v := range active {
			if intervals[v].End > intervals[spill].End ||
				(intervals[v].End == intervals[spill].End && v < spill) {
				spill = v
			}
		}
		if intervals[spill].End > intervals[current].End {
			locations[current] = RegisterLocation(regOf[spill])
			regOf[current] = regOf[spill]
			locations[spill] = SpilledLocation()
			delete(regOf, spill)
			newActive := active[:0:0]
			for _, v := range active {
				if v != spill {
					newActive = append(newActive, v)
				}
			}
			active = append(newActive, current)
		} else {
			locations[current] = SpilledLocation()
		}
	}

	for _, v := range order {
		expireOldIntervals(v)
		if len(active) == k {
			spillAtInterval(v)
		} else {
			r := popReg()
			locations[v] = RegisterLocation(r)
			regOf[v] = r
			active = append(active, v)
		}
	}

	return locations
}

// MaterializeSpills rewrites f so that every value allocated to Spilled has
// a stack slot backing it: an Alloca for the slot is prepended to the entry
// block, and a Load re-materializing the value is inserted immediately
// before each instruction that uses it.
//
// The original compiler's insert_alloca reloads through a hardcoded
// sentinel address (Var(666)) before every spilled use, which is a bug:
// spec §9(c) calls for a correct implementation to reference the spilled
// value's own allocated slot instead, which is what this does. It also
// generalizes past the original's single-reload-per-instruction limit,
// reloading every distinct spilled operand an instruction reads rather
// than only the first.
func MaterializeSpills(f *Function, locations map[ValueId]Location) {
	var spilled []ValueId
	for v, loc := range locations {
		if loc.Spilled {
			spilled = append(spilled, v)
		}
	}
	sort.Slice(spilled, func(i, j int) bool { return spilled[i] < spilled[j] })
	if len(spilled) == 0 {
		return
	}

	entryID := f.SortedBlockIDs()[0]
	entry := f.Blocks[entryID]
	allocas := make([]Instruction, len(spilled))
	for i, v := range spilled {
		allocas[i] = Alloca{Dest: v}
	}
	entry.Instructions = append(allocas, entry.Instructions...)

	for _, id := range f.SortedBlockIDs() {
		block := f.Blocks[id]
		var rewritten []Instruction
		for _, inst := range block.Instructions {
			seen := map[ValueId]struct{}{}
			for _, op := range Operands(inst) {
				if !op.IsValue() {
					continue
				}
				v := op.Value()
				if _, dup := seen[v]; dup {
					continue
				}
				if loc, ok := locations[v]; ok && loc.Spilled {
					seen[v] = struct{}{}
					rewritten = append(rewritten, Load{Dest: v, Address: ValueOperand(v)})
				}
			}
			rewritten = append(rewritten, inst)
		}
		block.Instructions = rewritten
	}
}
