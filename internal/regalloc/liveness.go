package regalloc

import (
	ferrors "github.com/FEX-Project/FEX/internal/errors"
	"github.com/FEX-Project/FEX/internal/ssair"
)

// liveRange is (begin, end, rematCost) for one def (spec §3 LiveRange).
// begin/end are half-open during construction but the invariants document
// end as closed at the last use; the driver only ever compares them, never
// exposes the distinction externally.
type liveRange struct {
	begin     uint32
	end       uint32
	rematCost uint32
	set       bool // begin has been assigned
}

// computeLiveness walks every block in linkage order, and within a block
// every op from Begin through Last inclusive, assigning each def's
// [begin,end) range, its rematerialization cost, and linking PHI partner
// chains (spec §4.4).
func computeLiveness(ir ssair.Container, g *registerGraph, ranges []liveRange) {
	for i := range ranges[:g.count] {
		ranges[i] = liveRange{}
	}

	for block := ir.FirstBlock(); block != ssair.InvalidID; {
		b := ir.Block(block)
		blockIDu := uint32(block)

		for id := b.Begin; ; {
			visitLivenessOp(ir, g, ranges, id, blockIDu)

			if id == b.Last {
				break
			}

			id = nextInBlock(ir, id)
		}

		block = b.Next
	}
}

// nextInBlock returns the next SSA id after id in program order. The
// reference container is dense by id, so "next" is simply id+1; a real
// external container may use an explicit successor link instead, which
// this helper isolates.
func nextInBlock(ir ssair.Container, id ssair.NodeID) ssair.NodeID {
	return id + 1
}

func visitLivenessOp(ir ssair.Container, g *registerGraph, ranges []liveRange, id ssair.NodeID, blockID uint32) {
	op := ir.OpAt(id)
	idx := uint32(id)

	if op.HasDest {
		if ranges[idx].set {
			panic(ferrors.ContractViolation("def's begin set more than once",
				map[string]interface{}{"node": idx}))
		}

		ranges[idx] = liveRange{begin: idx, end: idx, rematCost: rematCost(op.Opcode), set: true}
	}

	g.node(id).blockID = blockID

	for _, arg := range op.Args {
		markUse(ranges, id, arg)
	}

	if op.Opcode == ssair.OpPhiValue {
		// The wrapped producer is used here, even though PHI_VALUE carries
		// it in Value rather than in the generic Args list.
		markUse(ranges, id, op.Value)
	}

	if op.Opcode == ssair.OpPhi {
		linkPhiPartners(ir, g, id, op)
	}
}

func markUse(ranges []liveRange, at ssair.NodeID, used ssair.NodeID) {
	if used == ssair.InvalidID {
		return
	}

	u := uint32(used)
	if !ranges[u].set {
		panic(ferrors.ContractViolation("use precedes its def",
			map[string]interface{}{"use": uint32(at), "def": u}))
	}

	if uint32(at) > ranges[u].end {
		ranges[u].end = uint32(at)
	}
}

// linkPhiPartners walks the PHI's incoming-value chain and links each
// incoming producer into a singly-linked partner list rooted at the PHI
// def itself (spec §4.4 step 4).
func linkPhiPartners(ir ssair.Container, g *registerGraph, phiID ssair.NodeID, phiOp *ssair.Op) {
	g.node(phiID).isPhiHead = true
	g.node(phiID).inPhiChain = true
	prev := uint32(phiID)

	for pv := phiOp.PhiBegin; pv != ssair.InvalidID; {
		pvOp := ir.OpAt(pv)
		producer := uint32(pvOp.Value)

		g.node(ssair.NodeID(prev)).phiPartner = producer
		g.node(ssair.NodeID(producer)).inPhiChain = true
		prev = producer
		pv = pvOp.Next
	}
}
