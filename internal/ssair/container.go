package ssair

// Container is the read/write view the allocator iterates (spec §6,
// "Interface to IR container"). It is implemented by the external IR
// owner; Program is the in-package reference implementation used by tests
// and the CLI harness.
type Container interface {
	// SSACount is the number of SSA-id-indexed slots, i.e. one past the
	// highest valid NodeID.
	SSACount() int

	// FirstBlock returns the IR_HEADER's link to the first code block.
	FirstBlock() NodeID

	// Block returns the block descriptor for a CodeBlock node id.
	Block(id NodeID) Block

	// OpAt returns the instruction header at the given SSA id.
	OpAt(id NodeID) *Op
}

// Builder is the mutating side the spill planner uses to rewrite the IR in
// place (spec §6, "Interface to IR builder").
type Builder interface {
	ViewIR() Container

	WriteCursor() NodeID
	SetWriteCursor(at NodeID)

	// EmitConstant appends a constant op at the write cursor and returns
	// its id.
	EmitConstant(value uint64) NodeID

	// EmitSpillRegister appends a spill-slot-marker op reading src and
	// returns its id.
	EmitSpillRegister(src NodeID, slot uint32, class ClassID) NodeID

	// EmitFillRegister appends a fill-slot-marker op and returns its id.
	EmitFillRegister(slot uint32, class ClassID) NodeID

	// ReplaceAllUsesWithInclusive rewrites every use of old found at or
	// after from, up to and including to, within the same block, to
	// reference newValue instead.
	ReplaceAllUsesWithInclusive(oldValue, newValue NodeID, from, to NodeID)
}
