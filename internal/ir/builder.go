package ir

import (
	"fmt"

	"github.com/eownerdead/minicc/internal/errors"
)

// Builder assembles a Module through a cursor: the current function and the
// current block within it. Per spec §4.1, every New* call derives its fresh
// id from the current function's *actual* contents — NewBlock from the
// highest BlockId already present, NewValue from AllValues' highest
// ValueId — rather than an independent counter the Builder keeps on the
// side. This is what keeps MoveToFunction safe to call on a function the
// Builder didn't itself construct (one irtext.Parse produced, say): the
// next id handed out is always one greater than what is actually there,
// never a stale counter that collides with it and violates invariant I2.
//
// Builder misuse — pushing with no cursor set, pushing after a block's
// terminator, registering a function name twice — is a programmer error.
// These conditions panic rather than return an error: they can only be
// triggered by a bug in the caller (the lowering pass this repo treats as
// an external collaborator), never by a malformed input program.
type Builder struct {
	module       *Module
	currentFunc  *Function
	currentBlock BlockId
	hasBlock     bool
}

// NewBuilder returns a Builder over a fresh, empty module.
func NewBuilder() *Builder {
	return &Builder{module: NewModule()}
}

// Module returns the module assembled so far.
func (b *Builder) Module() *Module { return b.module }

// NewFunction registers a function named name and moves the cursor to it.
// Panics if name is already registered.
func (b *Builder) NewFunction(name string) *Function {
	if _, exists := b.module.Functions[name]; exists {
		panic(errors.DuplicateFunction(name).Error())
	}
	fn := &Function{Name: name, Blocks: map[BlockId]*Block{}}
	b.module.Functions[name] = fn
	b.currentFunc = fn
	b.hasBlock = false
	return fn
}

// NewBlock allocates a block id one greater than the current maximum in the
// current function (or 0 if it has none yet — spec §4.1) and moves the
// cursor to it. Panics if no function is current.
func (b *Builder) NewBlock() BlockId {
	b.requireFunction()
	id := BlockId(0)
	for _, existing := range b.currentFunc.SortedBlockIDs() {
		if existing >= id {
			id = existing + 1
		}
	}
	b.currentFunc.Blocks[id] = &Block{}
	b.currentBlock = id
	b.hasBlock = true
	return id
}

// NewValue allocates a ValueId one greater than the current maximum across
// all defining instructions in the current function (spec §4.1, via
// AllValues), or 0 if it defines none yet. Panics if no function is
// current.
func (b *Builder) NewValue() ValueId {
	b.requireFunction()
	id := ValueId(0)
	for existing := range AllValues(b.currentFunc) {
		if existing >= id {
			id = existing + 1
		}
	}
	return id
}

// MoveToFunction moves the cursor to an already-registered function and
// clears the block cursor; Push panics until NewBlock or MoveToBlock sets it.
func (b *Builder) MoveToFunction(name string) {
	fn, ok := b.module.Functions[name]
	if !ok {
		panic(fmt.Sprintf("%s: no function named %q in this module", errors.ErrorNoCursor, name))
	}
	b.currentFunc = fn
	b.hasBlock = false
}

// MoveToBlock moves the cursor to an already-allocated block in the current
// function.
func (b *Builder) MoveToBlock(id BlockId) {
	b.requireFunction()
	if _, ok := b.currentFunc.Blocks[id]; !ok {
		panic(fmt.Sprintf("%s: block %s does not exist in function %q", errors.ErrorNoCursor, id, b.currentFunc.Name))
	}
	b.currentBlock = id
	b.hasBlock = true
}

// Push appends inst to the current block. Panics if there is no current
// block, or if the block already ends in a terminator — a builder may
// never append past a jmp/cond/ret.
func (b *Builder) Push(inst Instruction) {
	b.requireBlock()
	block := b.currentFunc.Blocks[b.currentBlock]
	if len(block.Instructions) > 0 && IsTerminator(block.Instructions[len(block.Instructions)-1]) {
		panic(fmt.Sprintf("%s: cannot push past the terminator of block %s", errors.ErrorPushAfterTerminator, b.currentBlock))
	}
	block.Instructions = append(block.Instructions, inst)
}

// CurrentBlock returns the block id the cursor currently points at.
func (b *Builder) CurrentBlock() BlockId {
	b.requireBlock()
	return b.currentBlock
}

func (b *Builder) requireFunction() {
	if b.currentFunc == nil {
		panic(fmt.Sprintf("%s: builder has no current function", errors.ErrorNoCursor))
	}
}

func (b *Builder) requireBlock() {
	b.requireFunction()
	if !b.hasBlock {
		panic(fmt.Sprintf("%s: builder has no current block", errors.ErrorNoCursor))
	}
}
