// Package regalloc implements a graph-coloring register allocator over a
// flat SSA intermediate representation (see internal/ssair for the IR
// container and builder this package consumes). It never touches the IR's
// opcode set or emission; it only classifies, colors, and — when physical
// registers run short — rewrites def/use chains through the Builder
// interface to insert spills, fills, and rematerializations.
package regalloc

import (
	ferrors "github.com/FEX-Project/FEX/internal/errors"
	"github.com/FEX-Project/FEX/internal/ssair"
)

// Compactor is the external IR-compaction pass the driver invokes at the
// top of every iteration to renumber SSA ids densely. ssair.NoopCompactor
// satisfies this for the reference container, which is always dense.
type Compactor interface {
	Compact(b ssair.Builder) (changed bool)
}

// Allocator is one register-allocation pass: it owns the register-set
// configuration, the reusable register graph, and the cross-iteration
// spill-slot bookkeeping (spec §6 "Public allocator API").
type Allocator struct {
	regs      *RegisterSet
	compactor Compactor
	graph     *registerGraph
	spiller   spillPlanner
	ranges    []liveRange
}

// NewAllocator creates an allocator pass. compactor may be nil, in which
// case the driver skips compaction (the reference Program never needs
// it). AllocateRegisterSet must be called before Run.
func NewAllocator(compactor Compactor) *Allocator {
	return &Allocator{compactor: compactor, graph: newRegisterGraph()}
}

// AllocateRegisterSet, AddRegisters, AddRegisterConflict, and
// AllocateRegisterConflicts forward to the underlying RegisterSet,
// matching spec §6's public API surface on the allocator itself.
func (a *Allocator) AllocateRegisterSet(registerCount, classCount uint32) {
	a.regs = AllocateRegisterSet(registerCount, classCount)
}

func (a *Allocator) AddRegisters(class, physicalCount uint32) { a.regs.AddRegisters(class, physicalCount) }

func (a *Allocator) AddRegisterConflict(classA, regA, classB, regB uint32) {
	a.regs.AddRegisterConflict(classA, regA, classB, regB)
}

func (a *Allocator) AllocateRegisterConflicts(class, n uint32) {
	a.regs.AllocateRegisterConflicts(class, n)
}

// GetNodeRegister returns the final assignment for nodeID after Run.
func (a *Allocator) GetNodeRegister(nodeID ssair.NodeID) RegAndClass {
	return a.graph.node(nodeID).reg
}

// Run executes the fixed-point driver (spec §4.8): compact, infer classes,
// compute liveness, build interference, color, and either stop (every
// class fits its physical budget) or spill exactly one victim and loop.
// It returns whether the IR was mutated (spec §7: "a boolean 'the IR was
// mutated' that the enclosing pass manager may use to re-run dependent
// passes").
func (a *Allocator) Run(b ssair.Builder) bool {
	a.spiller.reset()

	changed := false

	for {
		if a.compactor != nil {
			changed = a.compactor.Compact(b) || changed
		}

		ir := b.ViewIR()
		ssaCount := ir.SSACount()

		validateHeader(ir)

		a.graph.resetForCount(ssaCount)

		if ssaCount > len(a.ranges) {
			a.ranges = make([]liveRange, ssaCount)
		}

		inferClasses(ir, a.graph, a.ranges)
		computeLiveness(ir, a.graph, a.ranges)
		buildInterference(ir, a.graph, a.ranges)

		topPressure := make(map[uint32]uint32, a.regs.classCount())
		colorGraph(a.regs, a.graph, topPressure)

		if a.fullyAllocated(topPressure) {
			return changed
		}

		if !a.spiller.spillOnce(a.regs, b, a.graph, a.ranges) {
			return changed
		}

		changed = true
	}
}

func (a *Allocator) fullyAllocated(topPressure map[uint32]uint32) bool {
	var i uint32

	for i = 0; i < a.regs.classCount(); i++ {
		if topPressure[i] >= a.regs.physicalCount(i) {
			return false
		}
	}

	return true
}

func validateHeader(ir ssair.Container) {
	if ir.SSACount() == 0 || ir.OpAt(0).Opcode != ssair.OpIRHeader {
		panic(ferrors.ContractViolation("first op is not IR_HEADER", nil))
	}
}
