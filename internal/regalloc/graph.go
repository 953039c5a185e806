package regalloc

import "github.com/FEX-Project/FEX/internal/ssair"

// defaultInterferenceListCount is the initial dense-neighbor-list capacity
// per node, carried from the original's DEFAULT_INTERFERENCE_LIST_COUNT
// (SPEC_FULL.md, SUPPLEMENTED FEATURES #1).
const defaultInterferenceListCount = 128

// defaultNodeCount is the initial node-pool capacity, carried from the
// original's DEFAULT_NODE_COUNT.
const defaultNodeCount = 8192

// invalidNode is the sentinel "no node" id, distinct from ssair.InvalidID
// only in type.
const invalidNode uint32 = ^uint32(0)

// registerNode is the per-SSA-def header the allocator attaches alongside
// the IR: its color, its owning block, its spill slot if any, its PHI
// partner link, and its adjacency state (spec §3 RegisterNode).
type registerNode struct {
	reg        RegAndClass
	blockID    uint32
	spillSlot  uint32
	phiPartner uint32 // invalidNode if none
	isPhiHead  bool
	inPhiChain bool

	neighbors []uint32 // dense adjacency list, duplicates tolerated (spec §9 open question)
}

// registerGraph is the node pool plus interference matrix (spec §3
// "Graph invariants", §9 "growth semantics": buffers only ever grow).
type registerGraph struct {
	nodes  []registerNode
	matrix *interferenceMatrix
	count  int // logical node count for the current iteration, <= len(nodes)
}

func newRegisterGraph() *registerGraph {
	return &registerGraph{
		nodes:  make([]registerNode, defaultNodeCount),
		matrix: newInterferenceMatrix(defaultNodeCount),
	}
}

// resetForCount prepares the graph for an iteration over ssaCount nodes:
// grows node/matrix capacity if needed, then clears only the logical
// count's worth of state (spec §3 "on reset within a run, only the logical
// node count is reset and the interference matrix is cleared").
func (g *registerGraph) resetForCount(ssaCount int) {
	if ssaCount > len(g.nodes) {
		grown := make([]registerNode, ssaCount)
		copy(grown, g.nodes)
		g.nodes = grown
	}

	if ssaCount > g.matrix.capacity {
		g.matrix.growTo(ssaCount)
	} else {
		g.matrix.clearAll()
	}

	g.count = ssaCount

	for i := 0; i < ssaCount; i++ {
		n := &g.nodes[i]
		n.reg = UnassignedReg(invalidNode)
		n.blockID = invalidNode
		n.spillSlot = allOnes
		n.phiPartner = invalidNode
		n.isPhiHead = false
		n.inPhiChain = false

		if cap(n.neighbors) == 0 {
			n.neighbors = make([]uint32, 0, defaultInterferenceListCount)
		} else {
			n.neighbors = n.neighbors[:0]
		}
	}
}

func (g *registerGraph) node(id ssair.NodeID) *registerNode { return &g.nodes[id] }

// addEdge records symmetric adjacency between i and j, growing each node's
// dense list by doubling (or up to the default chunk size) on demand
// (spec §4.5).
func (g *registerGraph) addEdge(i, j uint32) {
	g.matrix.set(int(i), int(j))
	g.matrix.set(int(j), int(i))
	g.nodes[i].neighbors = appendNeighbor(g.nodes[i].neighbors, j)
	g.nodes[j].neighbors = appendNeighbor(g.nodes[j].neighbors, i)
}

func appendNeighbor(list []uint32, n uint32) []uint32 {
	if len(list) == cap(list) {
		newCap := cap(list) * 2
		if newCap < defaultInterferenceListCount {
			newCap = defaultInterferenceListCount
		}

		grown := make([]uint32, len(list), newCap)
		copy(grown, list)
		list = grown
	}

	return append(list, n)
}

func (g *registerGraph) interferes(i, j uint32) bool { return g.matrix.test(int(i), int(j)) }
