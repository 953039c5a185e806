package regalloc

import "github.com/FEX-Project/FEX/internal/ssair"

// inferClasses runs classOf over every def in the current iteration,
// writing the result into each node's regAndClass.Class (spec §4.3: "runs
// once per driver iteration after liveness reset; writes regAndClass.class
// only for defs").
func inferClasses(ir ssair.Container, g *registerGraph, ranges []liveRange) {
	for i := 0; i < g.count; i++ {
		if !ir.OpAt(ssair.NodeID(i)).HasDest {
			continue
		}

		g.node(ssair.NodeID(i)).reg.Class = classOf(ir, ssair.NodeID(i))
	}
}

// colorGraph assigns every classified node the lowest virtual register
// that does not conflict with any neighbor, grouping PHI partner chains
// jointly (spec §4.6). topPressure tracks, per class, the highest assigned
// index the driver uses to detect physical-budget overflow.
func colorGraph(rs *RegisterSet, g *registerGraph, topPressure map[uint32]uint32) {
	for i := 0; i < g.count; i++ {
		n := g.node(ssair.NodeID(i))
		if n.reg.Class == invalidNode {
			continue
		}

		if !n.reg.Unassigned() {
			continue // already colored as part of an earlier partner's chain
		}

		if n.phiPartner != invalidNode && n.isPhiHead {
			colorChain(rs, g, uint32(i), topPressure)
		} else {
			colorSingleton(rs, g, uint32(i), topPressure)
		}
	}
}

func chainMembers(g *registerGraph, head uint32) []uint32 {
	members := []uint32{head}

	for next := g.node(ssair.NodeID(head)).phiPartner; next != invalidNode; {
		members = append(members, next)
		next = g.node(ssair.NodeID(next)).phiPartner
	}

	return members
}

func colorChain(rs *RegisterSet, g *registerGraph, head uint32, topPressure map[uint32]uint32) {
	members := chainMembers(g, head)
	class := g.node(ssair.NodeID(head)).reg.Class

	r := findFirstClearing(rs, g, class, members)

	for _, m := range members {
		g.node(ssair.NodeID(m)).reg = RegAndClass{Class: class, Reg: r}
	}

	recordPressure(topPressure, class, r)
}

func colorSingleton(rs *RegisterSet, g *registerGraph, id uint32, topPressure map[uint32]uint32) {
	class := g.node(ssair.NodeID(id)).reg.Class
	r := findFirstClearing(rs, g, class, []uint32{id})

	g.node(ssair.NodeID(id)).reg = RegAndClass{Class: class, Reg: r}
	recordPressure(topPressure, class, r)
}

// findFirstClearing scans candidate registers in ascending order (spec
// §4.6 tie-break: "always the smallest r that clears") and returns the
// first that conflicts with no neighbor of any member, growing the class's
// virtual register count if none clears.
func findFirstClearing(rs *RegisterSet, g *registerGraph, class uint32, members []uint32) uint32 {
	virtualCount := rs.virtualCount(class)

	for r := uint32(0); r < virtualCount; r++ {
		if clearsAll(rs, g, class, r, members) {
			return r
		}
	}

	return rs.GrowVirtual(class)
}

func clearsAll(rs *RegisterSet, g *registerGraph, class, r uint32, members []uint32) bool {
	for _, m := range members {
		if conflictsWithCandidate(rs, g, class, r, m) {
			return false
		}
	}

	return true
}

// conflictsWithCandidate tests node n against candidate (class, r): a
// neighbor m conflicts if m.regAndClass == (class, r) directly, or if
// m.regAndClass names some (class', r') whose registered conflict is
// (class, r) (spec §4.6).
func conflictsWithCandidate(rs *RegisterSet, g *registerGraph, class, r, n uint32) bool {
	for _, neighbor := range g.node(ssair.NodeID(n)).neighbors {
		nr := g.node(ssair.NodeID(neighbor)).reg
		if nr.Unassigned() {
			continue
		}

		if nr.Class == class && nr.Reg == r {
			return true
		}

		if conflict, ok := rs.conflictOf(nr.Class, nr.Reg); ok {
			if conflict.OtherClass == class && conflict.OtherReg == r {
				return true
			}
		}
	}

	return false
}

func recordPressure(topPressure map[uint32]uint32, class, r uint32) {
	if r > topPressure[class] {
		topPressure[class] = r
	}
}
