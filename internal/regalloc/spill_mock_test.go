package regalloc

import (
	"testing"

	"go.uber.org/mock/gomock"

	"github.com/FEX-Project/FEX/internal/ssair"
)

// TestSpillOnceCursorDiscipline asserts that spillOnce saves the write
// cursor on entry and restores it exactly once on return, even when it
// finds nothing to spill (spec §5 "Cursor discipline",
// SUPPLEMENTED FEATURES #5: restored "on every path including the
// no-mutation path").
func TestSpillOnceCursorDiscipline(t *testing.T) {
	ctrl := gomock.NewController(t)

	pb := ssair.NewProgramBuilder()
	pb.Block()
	pb.Constant(7)
	program := pb.Finish()

	b := NewMockBuilder(ctrl)
	b.EXPECT().WriteCursor().Return(ssair.NodeID(2))
	b.EXPECT().ViewIR().Return(program)
	b.EXPECT().SetWriteCursor(ssair.NodeID(2))

	g := newRegisterGraph()
	g.resetForCount(program.SSACount())

	ranges := make([]liveRange, program.SSACount())

	p := &spillPlanner{}
	p.reset()

	mutated := p.spillOnce(AllocateRegisterSet(0, 1), b, g, ranges)
	if mutated {
		t.Fatalf("expected no mutation when no node has overflowed")
	}
}
