package regalloc

import (
	ferrors "github.com/FEX-Project/FEX/internal/errors"
	"github.com/FEX-Project/FEX/internal/ssair"
)

// Well-known class ids. The allocator's configuration surface (RegisterSet)
// accepts any class id a caller configures, but classOf (spec §4.3) must
// name the handful of classes its opcode-driven inference produces by
// identity, matching FEXCore::IR::RegisterClassType's fixed small set.
const (
	ClassGPR     uint32 = 0
	ClassFPR     uint32 = 1
	ClassGPRPair uint32 = 2
)

// classOf is the pure function mapping a def to its required register
// class (spec §4.3). It never mutates the op; callers write the result
// into the node's regAndClass.
func classOf(ir ssair.Container, id ssair.NodeID) uint32 {
	op := ir.OpAt(id)

	switch op.Opcode {
	case ssair.OpLoadContext, ssair.OpStoreContext, ssair.OpLoadMem, ssair.OpStoreMem:
		return uint32(op.Class)

	case ssair.OpZext:
		if op.SrcSize > 64 {
			panic(ferrors.ContractViolation("zext source size > 64",
				map[string]interface{}{"node": uint32(id), "srcSize": op.SrcSize}))
		}

		if op.SrcSize == 64 {
			return ClassFPR
		}

		return ClassGPR

	case ssair.OpCPUID:
		return ClassFPR

	case ssair.OpPhiValue:
		return classOf(ir, op.Value)

	case ssair.OpPhi:
		first := op.PhiBegin
		return classOf(ir, ir.OpAt(first).Value)

	case ssair.OpLoadContextPair, ssair.OpStoreContextPair, ssair.OpCreateElementPair,
		ssair.OpCASPair, ssair.OpTruncElementPair:
		return ClassGPRPair

	case ssair.OpExtractElementPair:
		return ClassGPR

	default:
		// Fallback rule driven by opcode ranges (spec §4.3): ids >=
		// GETHOSTFLAG -> GPR; ids > PRINT -> FPR; otherwise GPR.
		switch {
		case op.Opcode >= ssair.OpGetHostFlag:
			return ClassGPR
		case op.Opcode > ssair.OpPrint:
			return ClassFPR
		default:
			return ClassGPR
		}
	}
}

// rematCost is the fixed-at-liveness-time cost table (spec §3).
func rematCost(op ssair.Opcode) uint32 {
	switch op {
	case ssair.OpConstant:
		return 1
	case ssair.OpLoadContext, ssair.OpLoadFlag:
		return 10
	case ssair.OpLoadMem:
		return 100
	case ssair.OpFillRegister:
		return 1001
	case ssair.OpPhi:
		return 10000
	default:
		return 1000
	}
}
