package mocks

import (
	"context"

	"soundscape-server/internal/analysis"
	"soundscape-server/internal/service"

	"github.com/stretchr/testify/mock"
)

// MockSoundscapeService is a mock type for the SoundscapeService type
type MockSoundscapeService struct {
	mock.Mock
}

// ClassifyScene provides a mock function with given fields: ctx, text, genre
func (_m *MockSoundscapeService) ClassifyScene(ctx context.Context, text string, genre string) (analysis.SceneAnalysisResult, error) {
	ret := _m.Called(ctx, text, genre)

	var r0 analysis.SceneAnalysisResult
	if rf, ok := ret.Get(0).(func(context.Context, string, string) analysis.SceneAnalysisResult); ok {
		r0 = rf(ctx, text, genre)
	} else {
		r0 = ret.Get(0).(analysis.SceneAnalysisResult)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, string, string) error); ok {
		r1 = rf(ctx, text, genre)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// GenerateSoundscape provides a mock function with given fields: ctx, req
func (_m *MockSoundscapeService) GenerateSoundscape(ctx context.Context, req service.SoundscapeRequest) (analysis.SoundscapeResult, error) {
	ret := _m.Called(ctx, req)

	var r0 analysis.SoundscapeResult
	if rf, ok := ret.Get(0).(func(context.Context, service.SoundscapeRequest) analysis.SoundscapeResult); ok {
		r0 = rf(ctx, req)
	} else {
		r0 = ret.Get(0).(analysis.SoundscapeResult)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, service.SoundscapeRequest) error); ok {
		r1 = rf(ctx, req)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// FindTriggers provides a mock function with given fields: ctx, text
func (_m *MockSoundscapeService) FindTriggers(ctx context.Context, text string) ([]analysis.TriggerMatch, error) {
	ret := _m.Called(ctx, text)

	var r0 []analysis.TriggerMatch
	if rf, ok := ret.Get(0).(func(context.Context, string) []analysis.TriggerMatch); ok {
		r0 = rf(ctx, text)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).([]analysis.TriggerMatch)
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

// NewMockSoundscapeService creates a new instance of MockSoundscapeService. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewMockSoundscapeService(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockSoundscapeService {
	m := &MockSoundscapeService{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

var _ service.SoundscapeService = (*MockSoundscapeService)(nil)
