package regalloc

import (
	ferrors "github.com/FEX-Project/FEX/internal/errors"
	"github.com/FEX-Project/FEX/internal/ssair"
)

// spillStackUnit is one slot's recorded coverage (spec §3 SpillStackUnit).
// defNode is the most recent def assigned to the slot; class is fixed for
// the slot's lifetime; begin/end is the union of every range that has ever
// shared it.
type spillStackUnit struct {
	defNode uint32
	class   uint32
	begin   uint32
	end     uint32
}

// spillPlanner owns the cross-iteration spill-slot bookkeeping (spec §4.8:
// "reset spillSlotCount = 0 and clear spillStack" happens once before the
// driver loop, not per iteration).
type spillPlanner struct {
	stack     []spillStackUnit
	slotCount uint32
}

func (p *spillPlanner) reset() {
	p.stack = p.stack[:0]
	p.slotCount = 0
}

// spillOnce performs exactly one mutation of the IR: either a constant
// rematerialization or a real spill for the first overflowed node found in
// program order, and reports whether it found one (spec §4.7: "Return
// immediately after one spill or one rematerialization").
func (p *spillPlanner) spillOnce(rs *RegisterSet, b ssair.Builder, g *registerGraph, ranges []liveRange) bool {
	saved := b.WriteCursor()
	defer b.SetWriteCursor(saved)

	ir := b.ViewIR()

	overflowed, ok := firstOverflowed(rs, ir, g)
	if !ok {
		return false
	}

	if k, ok := findRematerializableNeighbor(g, ranges, overflowed); ok {
		rematerializeConstant(b, g, ranges, overflowed, k)
		return true
	}

	victim, ok := findNodeToSpill(g, ranges, overflowed)
	if !ok {
		dumpInfeasibleSpill(g, ranges, overflowed)
	}

	p.spillVictim(rs, b, g, ranges, overflowed, victim)

	return true
}

// firstOverflowed walks blocks/ops in program order and returns the first
// def whose assigned register index is at or past its class's physical
// budget.
func firstOverflowed(rs *RegisterSet, ir ssair.Container, g *registerGraph) (uint32, bool) {
	for block := ir.FirstBlock(); block != ssair.InvalidID; {
		b := ir.Block(block)

		for id := b.Begin; ; {
			n := g.node(id)
			if n.reg.Class != invalidNode && n.reg.Reg != allOnes && n.reg.Reg >= rs.physicalCount(n.reg.Class) {
				return uint32(id), true
			}

			if id == b.Last {
				break
			}

			id = nextInBlock(ir, id)
		}

		block = b.Next
	}

	return 0, false
}

// findRematerializableNeighbor is spec §4.7 step 1: a neighbor carrying a
// constant whose live range outlives the overflowed node.
func findRematerializableNeighbor(g *registerGraph, ranges []liveRange, n uint32) (uint32, bool) {
	for _, k := range g.node(ssair.NodeID(n)).neighbors {
		if ranges[k].rematCost == 1 && ranges[k].end > ranges[n].end {
			return k, true
		}
	}

	return 0, false
}

// rematerializeConstant inserts a fresh constant (same literal as k)
// immediately before k's first use strictly after n within n's block, and
// redirects every use of k from that point on to the new constant (spec
// §4.7 step 1).
func rematerializeConstant(b ssair.Builder, g *registerGraph, ranges []liveRange, n, k uint32) {
	ir := b.ViewIR()
	block := ir.Block(ssair.NodeID(g.node(ssair.NodeID(n)).blockID))

	useID, found := findFirstUse(ir, ssair.NodeID(n+1), block.Last, k)
	if !found {
		panic(ferrors.ContractViolation("rematerializable neighbor has no use after the overflowed node",
			map[string]interface{}{"node": n, "neighbor": k}))
	}

	literal := ir.OpAt(ssair.NodeID(k)).ConstantValue

	b.SetWriteCursor(useID - 1)
	newID := b.EmitConstant(literal)

	newBlockLast := b.ViewIR().Block(ssair.NodeID(g.node(ssair.NodeID(n)).blockID)).Last
	b.ReplaceAllUsesWithInclusive(ssair.NodeID(k), newID, newID, newBlockLast)
}

// findFirstUse scans ops [from, to] inclusive for the first op whose
// argument list contains target, matching spec §6's findFirstUse.
func findFirstUse(ir ssair.Container, from, to ssair.NodeID, target uint32) (ssair.NodeID, bool) {
	for id := from; id <= to; id++ {
		op := ir.OpAt(id)

		for _, a := range op.Args {
			if uint32(a) == target {
				return id, true
			}
		}
	}

	return 0, false
}

// findNodeToSpill is spec §4.7 step 2's victim selection: a deterministic
// primary ranking (farthest end, ties broken by lowest remat cost) over a
// fallback ranking, both restricted to already-live non-constant,
// non-PHI-chain neighbors. This intentionally does not reproduce the
// original's disjunctive OR between the two ranking tests (spec §9,
// "spill-pick heuristic ambiguity") — that is a documented bug, not a
// behavior to preserve.
func findNodeToSpill(g *registerGraph, ranges []liveRange, n uint32) (uint32, bool) {
	var (
		best     uint32
		bestEnd  uint32
		bestCost uint32 = ^uint32(0)
		found    bool
	)

	consider := func(k uint32) {
		if !found || ranges[k].end > bestEnd || (ranges[k].end == bestEnd && ranges[k].rematCost < bestCost) {
			best, bestEnd, bestCost, found = k, ranges[k].end, ranges[k].rematCost, true
		}
	}

	for _, k := range g.node(ssair.NodeID(n)).neighbors {
		if isSpillCandidate(g, ranges, n, k) && ranges[k].end > ranges[n].end {
			consider(k)
		}
	}

	if found {
		return best, true
	}

	for _, k := range g.node(ssair.NodeID(n)).neighbors {
		if isSpillCandidate(g, ranges, n, k) && ranges[k].end != ranges[n].end {
			consider(k)
		}
	}

	return best, found
}

// isSpillCandidate excludes constants, PHI-chain members, and neighbors
// not yet live at n, and requires the neighbor to already carry a
// register and class (spec §4.7 "Constraints").
func isSpillCandidate(g *registerGraph, ranges []liveRange, n, k uint32) bool {
	if ranges[k].rematCost == 1 {
		return false
	}

	if ranges[k].begin > ranges[n].begin {
		return false
	}

	node := g.node(ssair.NodeID(k))
	if node.inPhiChain {
		return false
	}

	return node.reg.Class != invalidNode && !node.reg.Unassigned()
}

// spillVictim allocates or reuses a spill slot for victim, inserts the
// SpillRegister two ops before n and the FillRegister before the victim's
// first subsequent use, and redirects uses accordingly (spec §4.7 step 2).
func (p *spillPlanner) spillVictim(rs *RegisterSet, b ssair.Builder, g *registerGraph, ranges []liveRange, n, victim uint32) {
	victimNode := g.node(ssair.NodeID(victim))
	victimClass := victimNode.reg.Class
	victimOp := b.ViewIR().OpAt(ssair.NodeID(victim))

	slot := p.allocateSlot(victimClass, victim, ranges[victim])
	victimNode.spillSlot = slot

	b.SetWriteCursor(ssair.NodeID(n - 2))
	spillID := b.EmitSpillRegister(ssair.NodeID(victim), slot, ssair.ClassID(victimClass))
	spillOp := b.ViewIR().OpAt(spillID)
	spillOp.Size, spillOp.Elements = victimOp.Size, victimOp.Elements

	ir := b.ViewIR()
	block := ir.Block(ssair.NodeID(g.node(ssair.NodeID(n)).blockID))

	useID, found := findFirstUse(ir, ssair.NodeID(n+1), block.Last, victim)
	if !found {
		panic(ferrors.ContractViolation("spill victim has no use after the overflowed node",
			map[string]interface{}{"node": n, "victim": victim}))
	}

	b.SetWriteCursor(useID - 1)
	fillID := b.EmitFillRegister(slot, ssair.ClassID(victimClass))
	fillOp := b.ViewIR().OpAt(fillID)
	fillOp.Size, fillOp.Elements = victimOp.Size, victimOp.Elements

	newBlockLast := b.ViewIR().Block(ssair.NodeID(g.node(ssair.NodeID(n)).blockID)).Last
	b.ReplaceAllUsesWithInclusive(ssair.NodeID(victim), fillID, fillID, newBlockLast)
}

// allocateSlot finds a unit whose recorded coverage does not overlap
// victimRange, folding victimRange into it (so future sharers see the
// union), or pushes a new unit. Spec §4.7 literally says "overlaps", but
// that would violate the slot-reuse-legality invariant (spec §8: "any two
// defs sharing s must have disjoint ranges"); non-overlap is the
// consistent reading and is what is implemented here.
func (p *spillPlanner) allocateSlot(class, victim uint32, victimRange liveRange) uint32 {
	for i := range p.stack {
		u := &p.stack[i]
		if u.class != class {
			continue
		}

		if u.end <= victimRange.begin || victimRange.end <= u.begin {
			u.defNode = victim

			if victimRange.begin < u.begin {
				u.begin = victimRange.begin
			}

			if victimRange.end > u.end {
				u.end = victimRange.end
			}

			return uint32(i)
		}
	}

	slot := p.slotCount
	p.slotCount++
	p.stack = append(p.stack, spillStackUnit{
		defNode: victim, class: class, begin: victimRange.begin, end: victimRange.end,
	})

	return slot
}

func dumpInfeasibleSpill(g *registerGraph, ranges []liveRange, n uint32) {
	neighbors := make([]map[string]interface{}, 0, len(g.node(ssair.NodeID(n)).neighbors))

	for _, k := range g.node(ssair.NodeID(n)).neighbors {
		neighbors = append(neighbors, map[string]interface{}{
			"id": k, "rematCost": ranges[k].rematCost,
			"begin": ranges[k].begin, "end": ranges[k].end,
		})
	}

	panic(ferrors.InfeasibleSpill(n, g.node(ssair.NodeID(n)).reg.Class, map[string]interface{}{
		"node": n, "class": g.node(ssair.NodeID(n)).reg.Class, "neighbors": neighbors,
	}))
}
