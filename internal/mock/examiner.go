// Hand-written in the shape of MockGen output.
// Source: github.com/aa-labs/autoarchaeologist/pkg/artifact (interfaces: Examiner)

// Package mock is a GoMock package written in MockGen's generated style.
package mock

import (
	reflect "reflect"

	artifact "github.com/aa-labs/autoarchaeologist/pkg/artifact"
	gomock "github.com/golang/mock/gomock"
)

// MockExaminer is a mock of Examiner interface.
type MockExaminer struct {
	ctrl     *gomock.Controller
	recorder *MockExaminerMockRecorder
}

// MockExaminerMockRecorder is the mock recorder for MockExaminer.
type MockExaminerMockRecorder struct {
	mock *MockExaminer
}

// NewMockExaminer creates a new mock instance.
func NewMockExaminer(ctrl *gomock.Controller) *MockExaminer {
	mock := &MockExaminer{ctrl: ctrl}
	mock.recorder = &MockExaminerMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockExaminer) EXPECT() *MockExaminerMockRecorder {
	return m.recorder
}

// Name mocks base method.
func (m *MockExaminer) Name() string {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Name")
	ret0, _ := ret[0].(string)
	return ret0
}

// Name indicates an expected call of Name.
func (mr *MockExaminerMockRecorder) Name() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Name", reflect.TypeOf((*MockExaminer)(nil).Name))
}

// Examine mocks base method.
func (m *MockExaminer) Examine(a *artifact.Artifact) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Examine", a)
	ret0, _ := ret[0].(error)
	return ret0
}

// Examine indicates an expected call of Examine.
func (mr *MockExaminerMockRecorder) Examine(a interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Examine", reflect.TypeOf((*MockExaminer)(nil).Examine), a)
}
