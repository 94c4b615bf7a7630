package mocks

import (
	"context"

	"soundscape-server/internal/oracle"

	"github.com/stretchr/testify/mock"
)

// MockEmotionOracle is a mock type for the EmotionOracle type
type MockEmotionOracle struct {
	mock.Mock
}

// ClassifyEmotion provides a mock function with given fields: ctx, text
func (_m *MockEmotionOracle) ClassifyEmotion(ctx context.Context, text string) ([]oracle.EmotionScore, error) {
	ret := _m.Called(ctx, text)

	var r0 []oracle.EmotionScore
	if rf, ok := ret.Get(0).(func(context.Context, string) []oracle.EmotionScore); ok {
		r0 = rf(ctx, text)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).([]oracle.EmotionScore)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, string) error); ok {
		r1 = rf(ctx, text)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewMockEmotionOracle creates a new instance of MockEmotionOracle. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewMockEmotionOracle(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockEmotionOracle {
	m := &MockEmotionOracle{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

var _ oracle.EmotionOracle = (*MockEmotionOracle)(nil)
