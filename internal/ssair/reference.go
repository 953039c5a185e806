package ssair

// Program is a minimal, mutable, in-memory SSA container: every node
// (header, code blocks, instructions) occupies a slot in a single flat
// slice indexed by NodeID, in program order. It implements Container for
// reads and Builder for the spill planner's in-place rewrites, and is the
// concrete IR the allocator's tests and the CLI batch/watch harness build
// against, standing in for the real, genuinely-external FEX IR container.
type Program struct {
	ops    []Op
	cursor NodeID
}

// NewProgram returns an empty program with the IR_HEADER node at id 0.
func NewProgram() *Program {
	p := &Program{ops: []Op{{Opcode: OpIRHeader, HeaderFirstBlock: InvalidID}}}
	p.cursor = 0
	return p
}

var _ Container = (*Program)(nil)
var _ Builder = (*Program)(nil)

func (p *Program) SSACount() int       { return len(p.ops) }
func (p *Program) FirstBlock() NodeID  { return p.ops[0].HeaderFirstBlock }
func (p *Program) OpAt(id NodeID) *Op  { return &p.ops[id] }

func (p *Program) Block(id NodeID) Block {
	op := &p.ops[id]
	return Block{ID: id, Begin: op.BlockBegin, Last: op.BlockLast, Next: op.BlockNext}
}

func (p *Program) ViewIR() Container { return p }

func (p *Program) WriteCursor() NodeID        { return p.cursor }
func (p *Program) SetWriteCursor(at NodeID)   { p.cursor = at }

// EmitConstant implements Builder by inserting immediately after the write
// cursor, moving the cursor to the new op.
func (p *Program) EmitConstant(value uint64) NodeID {
	return p.insertAfterCursor(Op{Opcode: OpConstant, HasDest: true, ConstantValue: value})
}

func (p *Program) EmitSpillRegister(src NodeID, slot uint32, class ClassID) NodeID {
	return p.insertAfterCursor(Op{
		Opcode: OpSpillRegister, HasDest: true, Args: []NodeID{src},
		SpillSlot: slot, SpillClass: class,
	})
}

func (p *Program) EmitFillRegister(slot uint32, class ClassID) NodeID {
	return p.insertAfterCursor(Op{
		Opcode: OpFillRegister, HasDest: true,
		SpillSlot: slot, SpillClass: class,
	})
}

func (p *Program) ReplaceAllUsesWithInclusive(oldValue, newValue, from, to NodeID) {
	for id := from; id <= to; id++ {
		op := &p.ops[id]
		for i, a := range op.Args {
			if a == oldValue {
				op.Args[i] = newValue
			}
		}
	}
}

// insertAfterCursor inserts op immediately after the current write cursor,
// renumbering every NodeID-valued reference in the program that points at
// or past the insertion point, and leaves the cursor on the new node. This
// is the reference stand-in for the real IR builder's insertion logic; the
// allocator itself never assumes anything about how insertion is
// implemented beyond the Builder contract.
func (p *Program) insertAfterCursor(op Op) NodeID {
	pos := p.cursor + 1

	for i := range p.ops {
		shiftRefs(&p.ops[i], pos)
	}

	p.ops = append(p.ops, Op{})
	copy(p.ops[pos+1:], p.ops[pos:])
	p.ops[pos] = op

	p.cursor = pos

	return pos
}

func shiftRefs(op *Op, pos NodeID) {
	shift := func(id NodeID) NodeID {
		if id != InvalidID && id >= pos {
			return id + 1
		}
		return id
	}

	for i, a := range op.Args {
		op.Args[i] = shift(a)
	}

	op.Value = shift(op.Value)
	op.PhiBegin = shift(op.PhiBegin)
	op.Next = shift(op.Next)
	op.HeaderFirstBlock = shift(op.HeaderFirstBlock)
	op.BlockBegin = shift(op.BlockBegin)
	op.BlockLast = shift(op.BlockLast)
	op.BlockNext = shift(op.BlockNext)
}

// ProgramBuilder assembles fixture programs for tests and for the CLI
// harness's JSON-loaded register-pressure scenarios. Unlike the Builder
// interface (which the spiller uses to mutate an already-running
// allocation), ProgramBuilder only ever appends in program order, so it
// never needs to renumber anything.
type ProgramBuilder struct {
	prog      *Program
	lastBlock NodeID
}

// NewProgramBuilder starts a fresh program.
func NewProgramBuilder() *ProgramBuilder {
	return &ProgramBuilder{prog: NewProgram(), lastBlock: InvalidID}
}

// Block starts a new basic block and returns its NodeID.
func (b *ProgramBuilder) Block() NodeID {
	id := NodeID(len(b.prog.ops))
	b.prog.ops = append(b.prog.ops, Op{Opcode: OpCodeBlock, BlockBegin: InvalidID, BlockLast: InvalidID, BlockNext: InvalidID})

	if b.lastBlock == InvalidID {
		b.prog.ops[0].HeaderFirstBlock = id
	} else {
		b.prog.ops[b.lastBlock].BlockNext = id
	}

	b.lastBlock = id

	return id
}

// Emit appends an instruction to the current block and returns its id.
func (b *ProgramBuilder) Emit(op Opcode, hasDest bool, args ...NodeID) NodeID {
	id := NodeID(len(b.prog.ops))
	b.prog.ops = append(b.prog.ops, Op{Opcode: op, HasDest: hasDest, Args: append([]NodeID{}, args...)})
	b.extendBlock(id)

	return id
}

// Constant appends a OpConstant def carrying value.
func (b *ProgramBuilder) Constant(value uint64) NodeID {
	id := b.Emit(OpConstant, true)
	b.prog.ops[id].ConstantValue = value

	return id
}

// ClassOp appends a context/mem-style op that carries an explicit class.
func (b *ProgramBuilder) ClassOp(op Opcode, class ClassID, args ...NodeID) NodeID {
	id := b.Emit(op, op != OpStoreContext && op != OpStoreMem, args...)
	b.prog.ops[id].Class = class

	return id
}

// Zext appends a ZEXT def with the given source size in bits.
func (b *ProgramBuilder) Zext(srcSize uint8, src NodeID) NodeID {
	id := b.Emit(OpZext, true, src)
	b.prog.ops[id].SrcSize = srcSize

	return id
}

// Phi appends a PHI def over incoming, wiring the PHI_VALUE wrapper chain
// that CalculateLiveRange-equivalents walk to build the partner list.
func (b *ProgramBuilder) Phi(incoming ...NodeID) NodeID {
	var first, prev NodeID = InvalidID, InvalidID

	for _, v := range incoming {
		pv := NodeID(len(b.prog.ops))
		b.prog.ops = append(b.prog.ops, Op{Opcode: OpPhiValue, Value: v, Next: InvalidID})
		b.extendBlock(pv)

		if prev == InvalidID {
			first = pv
		} else {
			b.prog.ops[prev].Next = pv
		}

		prev = pv
	}

	phi := NodeID(len(b.prog.ops))
	b.prog.ops = append(b.prog.ops, Op{Opcode: OpPhi, HasDest: true, PhiBegin: first})
	b.extendBlock(phi)

	return phi
}

func (b *ProgramBuilder) extendBlock(id NodeID) {
	blk := &b.prog.ops[b.lastBlock]
	if blk.BlockBegin == InvalidID {
		blk.BlockBegin = id
	}

	blk.BlockLast = id
}

// Finish returns the assembled program.
func (b *ProgramBuilder) Finish() *Program { return b.prog }

// NoopCompactor satisfies regalloc.Compactor for a Program that is always
// already dense: ProgramBuilder only appends and insertAfterCursor always
// renumbers eagerly, so there is never anything for compaction to do.
type NoopCompactor struct{}

func (NoopCompactor) Compact(Builder) bool { return false }
