package ir

// BlockSuccessors returns the out-edges of block id in f, derived from its
// terminator instruction.
func BlockSuccessors(f *Function, id BlockId) []BlockId {
	return Successors(f.Blocks[id].Terminator())
}

// Predecessors computes, for every block in f, the set of blocks that can
// transfer control directly to it. Grounded on the worklist-free single
// forward pass of the original compiler's pred_blocks: every block visits
// its own successors and records itself as their predecessor.
func Predecessors(f *Function) map[BlockId]BlockSet {
	preds := make(map[BlockId]BlockSet, len(f.Blocks))
	for id := range f.Blocks {
		preds[id] = BlockSet{}
	}
	for _, id := range f.SortedBlockIDs() {
		for _, succ := range BlockSuccessors(f, id) {
			preds[succ].Add(id)
		}
	}
	return preds
}

// Dominators computes the dominator set of every block in f via the classic
// iterative worklist fixpoint: dom(entry) = {entry}, dom(n) = {n} ∪
// (∩ dom(p) for p in preds(n)), initialized to the full block set for every
// non-entry block and iterated to a fixpoint.
func Dominators(f *Function, preds map[BlockId]BlockSet) map[BlockId]BlockSet {
	ids := f.SortedBlockIDs()
	if len(ids) == 0 {
		return map[BlockId]BlockSet{}
	}
	entry := ids[0]
	all := newBlockSet(ids...)

	dom := make(map[BlockId]BlockSet, len(ids))
	dom[entry] = newBlockSet(entry)
	for _, id := range ids {
		if id != entry {
			dom[id] = all.Clone()
		}
	}

	for changed := true; changed; {
		changed = false
		for _, id := range ids {
			if id == entry {
				continue
			}
			var next BlockSet
			first := true
			for _, p := range preds[id].Sorted() {
				if first {
					next = dom[p].Clone()
					first = false
					continue
				}
				next = next.Intersect(dom[p])
			}
			if first {
				// no predecessors reachable yet; leave as-is
				continue
			}
			next.Add(id)
			if !next.Equal(dom[id]) {
				dom[id] = next
				changed = true
			}
		}
	}
	return dom
}

// DominanceFrontier computes, for every block X, the set of blocks Y such
// that X dominates a predecessor of Y but does not strictly dominate Y
// itself. Grounded on the original compiler's df1 ∩ df2 formulation:
// df1(X) = blocks Y where X dominates some predecessor of Y,
// df2(X) = blocks Y that X does not strictly dominate,
// dominance_frontier(X) = df1(X) ∩ df2(X).
func DominanceFrontier(f *Function, preds map[BlockId]BlockSet, dom map[BlockId]BlockSet) map[BlockId]BlockSet {
	ids := f.SortedBlockIDs()
	df := make(map[BlockId]BlockSet, len(ids))
	for _, x := range ids {
		df1 := BlockSet{}
		df2 := BlockSet{}
		for _, y := range ids {
			for _, p := range preds[y].Sorted() {
				if dom[p].Has(x) {
					df1.Add(y)
					break
				}
			}
			if !(dom[y].Has(x) && y != x) {
				df2.Add(y)
			}
		}
		df[x] = df1.Intersect(df2)
	}
	return df
}
