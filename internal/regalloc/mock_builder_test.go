package regalloc

import (
	"reflect"

	"go.uber.org/mock/gomock"

	"github.com/FEX-Project/FEX/internal/ssair"
)

// MockBuilder is a hand-authored gomock-style mock of ssair.Builder, in the
// shape mockgen would produce, used to assert the spiller's cursor
// save/restore discipline (spec §5 "Cursor discipline") without wiring a
// real IR builder.
type MockBuilder struct {
	ctrl     *gomock.Controller
	recorder *MockBuilderMockRecorder
}

type MockBuilderMockRecorder struct {
	mock *MockBuilder
}

func NewMockBuilder(ctrl *gomock.Controller) *MockBuilder {
	mock := &MockBuilder{ctrl: ctrl}
	mock.recorder = &MockBuilderMockRecorder{mock}

	return mock
}

func (m *MockBuilder) EXPECT() *MockBuilderMockRecorder { return m.recorder }

func (m *MockBuilder) ViewIR() ssair.Container {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ViewIR")
	ret0, _ := ret[0].(ssair.Container)

	return ret0
}

func (mr *MockBuilderMockRecorder) ViewIR() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ViewIR", reflect.TypeOf((*MockBuilder)(nil).ViewIR))
}

func (m *MockBuilder) WriteCursor() ssair.NodeID {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "WriteCursor")
	ret0, _ := ret[0].(ssair.NodeID)

	return ret0
}

func (mr *MockBuilderMockRecorder) WriteCursor() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "WriteCursor", reflect.TypeOf((*MockBuilder)(nil).WriteCursor))
}

func (m *MockBuilder) SetWriteCursor(at ssair.NodeID) {
	m.ctrl.T.Helper()
	m.ctrl.Call(m, "SetWriteCursor", at)
}

func (mr *MockBuilderMockRecorder) SetWriteCursor(at interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "SetWriteCursor", reflect.TypeOf((*MockBuilder)(nil).SetWriteCursor), at)
}

func (m *MockBuilder) EmitConstant(value uint64) ssair.NodeID {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "EmitConstant", value)
	ret0, _ := ret[0].(ssair.NodeID)

	return ret0
}

func (mr *MockBuilderMockRecorder) EmitConstant(value interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "EmitConstant", reflect.TypeOf((*MockBuilder)(nil).EmitConstant), value)
}

func (m *MockBuilder) EmitSpillRegister(src ssair.NodeID, slot uint32, class ssair.ClassID) ssair.NodeID {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "EmitSpillRegister", src, slot, class)
	ret0, _ := ret[0].(ssair.NodeID)

	return ret0
}

func (mr *MockBuilderMockRecorder) EmitSpillRegister(src, slot, class interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "EmitSpillRegister", reflect.TypeOf((*MockBuilder)(nil).EmitSpillRegister), src, slot, class)
}

func (m *MockBuilder) EmitFillRegister(slot uint32, class ssair.ClassID) ssair.NodeID {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "EmitFillRegister", slot, class)
	ret0, _ := ret[0].(ssair.NodeID)

	return ret0
}

func (mr *MockBuilderMockRecorder) EmitFillRegister(slot, class interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "EmitFillRegister", reflect.TypeOf((*MockBuilder)(nil).EmitFillRegister), slot, class)
}

func (m *MockBuilder) ReplaceAllUsesWithInclusive(oldValue, newValue, from, to ssair.NodeID) {
	m.ctrl.T.Helper()
	m.ctrl.Call(m, "ReplaceAllUsesWithInclusive", oldValue, newValue, from, to)
}

func (mr *MockBuilderMockRecorder) ReplaceAllUsesWithInclusive(oldValue, newValue, from, to interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ReplaceAllUsesWithInclusive", reflect.TypeOf((*MockBuilder)(nil).ReplaceAllUsesWithInclusive), oldValue, newValue, from, to)
}

var _ ssair.Builder = (*MockBuilder)(nil)
