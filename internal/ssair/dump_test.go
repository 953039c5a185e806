package ssair

import (
	"encoding/json"
	"testing"
)

func TestBuildFromDump(t *testing.T) {
	dump := &ProgramDump{
		Blocks: []BlockDump{
			{Ops: []OpDump{
				{Op: "constant", Value: 42},
				{Op: "load_context", Class: 0},
				{Op: "add", Args: []int{0, 1}},
				{Op: "zext", Args: []int{1}, SrcSize: 32},
			}},
			{Ops: []OpDump{
				{Op: "load_context", Class: 0},
			}},
			{Ops: []OpDump{
				{Op: "phi", Incoming: []int{1, 4}},
				{Op: "print", Args: []int{5}},
			}},
		},
	}

	program, err := BuildFromDump(dump)
	if err != nil {
		t.Fatalf("BuildFromDump: %v", err)
	}

	if program.SSACount() == 0 {
		t.Fatalf("expected a non-empty program")
	}

	var foundConstant, foundPhi bool

	for i := 0; i < program.SSACount(); i++ {
		op := program.OpAt(NodeID(i))

		switch op.Opcode {
		case OpConstant:
			foundConstant = true

			if op.ConstantValue != 42 {
				t.Errorf("constant value = %d, want 42", op.ConstantValue)
			}
		case OpPhi:
			foundPhi = true
		}
	}

	if !foundConstant {
		t.Errorf("expected a constant op in the built program")
	}

	if !foundPhi {
		t.Errorf("expected a phi op in the built program")
	}
}

func TestBuildFromDumpUnknownOpcode(t *testing.T) {
	dump := &ProgramDump{
		Blocks: []BlockDump{{Ops: []OpDump{{Op: "not_a_real_opcode"}}}},
	}

	if _, err := BuildFromDump(dump); err == nil {
		t.Fatalf("expected an error for an unknown opcode")
	}
}

func TestBuildFromDumpForwardReference(t *testing.T) {
	dump := &ProgramDump{
		Blocks: []BlockDump{{Ops: []OpDump{
			{Op: "add", Args: []int{0, 1}}, // references itself and a never-defined index
		}}},
	}

	if _, err := BuildFromDump(dump); err == nil {
		t.Fatalf("expected an error for a forward/self reference")
	}
}

func TestProgramDumpJSONRoundTrip(t *testing.T) {
	dump := &ProgramDump{
		Blocks: []BlockDump{
			{Ops: []OpDump{
				{Op: "constant", Value: 7},
				{Op: "add", Args: []int{0, 0}},
			}},
		},
	}

	data, err := dump.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	var roundTripped ProgramDump
	if err := json.Unmarshal(data, &roundTripped); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if len(roundTripped.Blocks) != 1 || len(roundTripped.Blocks[0].Ops) != 2 {
		t.Fatalf("round-tripped dump shape mismatch: %+v", roundTripped)
	}

	if roundTripped.Blocks[0].Ops[0].Value != 7 {
		t.Errorf("round-tripped constant value = %d, want 7", roundTripped.Blocks[0].Ops[0].Value)
	}

	program, err := BuildFromDump(&roundTripped)
	if err != nil {
		t.Fatalf("BuildFromDump(round-tripped): %v", err)
	}

	if program.SSACount() == 0 {
		t.Fatalf("expected a non-empty program after round-trip")
	}
}
