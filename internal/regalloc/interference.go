package regalloc

import "github.com/FEX-Project/FEX/internal/ssair"

// pairwiseThreshold is the SSA-count boundary between the two interference
// strategies (spec §4.5): below it, pairwise; at or above it,
// block-partitioned.
const pairwiseThreshold = 2048

// buildInterference selects a strategy by SSA count and records symmetric
// adjacency for every pair of overlapping live ranges (spec §4.5). Both
// strategies are required to produce the same adjacency set.
func buildInterference(ir ssair.Container, g *registerGraph, ranges []liveRange) {
	if g.count < pairwiseThreshold {
		buildInterferencePairwise(g, ranges)
	} else {
		buildInterferenceBlockPartitioned(ir, g, ranges)
	}
}

func overlaps(a, b liveRange) bool {
	return !(a.begin >= b.end || b.begin >= a.end)
}

// buildInterferencePairwise is the O(N^2) cache-friendly strategy.
func buildInterferencePairwise(g *registerGraph, ranges []liveRange) {
	for i := 0; i < g.count; i++ {
		if !ranges[i].set {
			continue
		}

		for j := i + 1; j < g.count; j++ {
			if !ranges[j].set {
				continue
			}

			if overlaps(ranges[i], ranges[j]) {
				g.addEdge(uint32(i), uint32(j))
			}
		}
	}
}

// buildInterferenceBlockPartitioned is the two-pass strategy used once the
// node count makes the pairwise scan too costly: classify local vs.
// global, then for each block test every def in it against that block's
// locals plus the global list (spec §4.5).
func buildInterferenceBlockPartitioned(ir ssair.Container, g *registerGraph, ranges []liveRange) {
	locals := map[uint32][]uint32{}
	var global []uint32

	for i := 0; i < g.count; i++ {
		if !ranges[i].set {
			continue
		}

		n := g.node(ssair.NodeID(i))
		block := ir.Block(ssair.NodeID(n.blockID))

		if ranges[i].end <= uint32(block.Last) {
			locals[n.blockID] = append(locals[n.blockID], uint32(i))
		} else {
			global = append(global, uint32(i))
		}
	}

	for block := ir.FirstBlock(); block != ssair.InvalidID; {
		b := ir.Block(block)
		blockLocals := locals[uint32(block)]

		for id := b.Begin; ; {
			if ranges[id].set {
				x := uint32(id)

				for _, other := range blockLocals {
					if other != x && overlaps(ranges[x], ranges[other]) {
						g.addEdge(x, other)
					}
				}

				for _, other := range global {
					if other != x && overlaps(ranges[x], ranges[other]) {
						g.addEdge(x, other)
					}
				}
			}

			if id == b.Last {
				break
			}

			id = nextInBlock(ir, id)
		}

		block = b.Next
	}
}
