package ssair

import (
	"encoding/json"
	"fmt"
)

// ProgramDump is the on-disk JSON shape the CLI batch/watch harness loads
// test programs from: a flat list of blocks, each a flat list of
// instructions, referencing earlier instructions by their position in
// dump order (0-based, counting every instruction across every block,
// header and block markers excluded).
type ProgramDump struct {
	Blocks []BlockDump `json:"blocks"`
}

// BlockDump is one basic block's instructions in program order.
type BlockDump struct {
	Ops []OpDump `json:"ops"`
}

// OpDump is one instruction: its opcode by name, its argument indices (into
// dump order), and whichever opcode-specific fields apply.
type OpDump struct {
	Op       string `json:"op"`
	Args     []int  `json:"args,omitempty"`
	Class    uint32 `json:"class,omitempty"`
	SrcSize  uint8  `json:"src_size,omitempty"`
	Value    uint64 `json:"value,omitempty"`    // OpConstant literal
	Incoming []int  `json:"incoming,omitempty"` // OpPhi incoming, by dump order
}

var opcodeByName = func() map[string]Opcode {
	m := make(map[string]Opcode)
	for op := OpInvalid; op <= OpSetHostFlag; op++ {
		m[op.String()] = op
	}

	return m
}()

// hasDestByDefault reports whether an opcode produces a value absent any
// dump-level override; OpStoreContext, OpStoreMem and OpSpillRegister are
// the only opcodes this table marks as producing none.
func hasDestByDefault(op Opcode) bool {
	switch op {
	case OpStoreContext, OpStoreMem, OpSpillRegister:
		return false
	default:
		return true
	}
}

// BuildFromDump assembles a Program from a ProgramDump, resolving every
// Args/Incoming index to the NodeID the builder assigned to that dump
// position.
func BuildFromDump(d *ProgramDump) (*Program, error) {
	b := NewProgramBuilder()
	ids := make([]NodeID, 0, 64)

	resolve := func(idx int) (NodeID, error) {
		if idx < 0 || idx >= len(ids) {
			return InvalidID, fmt.Errorf("dump references instruction %d before it is defined", idx)
		}

		return ids[idx], nil
	}

	for bi, blk := range d.Blocks {
		b.Block()

		for oi, od := range blk.Ops {
			opcode, ok := opcodeByName[od.Op]
			if !ok {
				return nil, fmt.Errorf("block %d op %d: unknown opcode %q", bi, oi, od.Op)
			}

			var id NodeID

			switch opcode {
			case OpConstant:
				id = b.Constant(od.Value)

			case OpLoadContext, OpStoreContext, OpLoadMem, OpStoreMem:
				args, err := resolveAll(ids, od.Args)
				if err != nil {
					return nil, err
				}

				id = b.ClassOp(opcode, ClassID(od.Class), args...)

			case OpZext:
				arg, err := resolve(od.Args[0])
				if err != nil {
					return nil, err
				}

				id = b.Zext(od.SrcSize, arg)

			case OpPhi:
				incoming, err := resolveAll(ids, od.Incoming)
				if err != nil {
					return nil, err
				}

				id = b.Phi(incoming...)

			default:
				args, err := resolveAll(ids, od.Args)
				if err != nil {
					return nil, err
				}

				id = b.Emit(opcode, hasDestByDefault(opcode), args...)
			}

			ids = append(ids, id)
		}
	}

	return b.Finish(), nil
}

func resolveAll(ids []NodeID, idxs []int) ([]NodeID, error) {
	out := make([]NodeID, len(idxs))

	for i, idx := range idxs {
		if idx < 0 || idx >= len(ids) {
			return nil, fmt.Errorf("dump references instruction %d before it is defined", idx)
		}

		out[i] = ids[idx]
	}

	return out, nil
}

// ToJSON is a debugging helper: serializes a ProgramDump back to JSON.
func (d *ProgramDump) ToJSON() ([]byte, error) { return json.MarshalIndent(d, "", "  ") }
