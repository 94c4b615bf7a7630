package mocks

import (
	"context"

	"soundscape-server/internal/models"
	"soundscape-server/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockContentProvider is a mock type for the ContentProvider type
type MockContentProvider struct {
	mock.Mock
}

// GetPageText provides a mock function with given fields: ctx, bookID, chapter, page
func (_m *MockContentProvider) GetPageText(ctx context.Context, bookID uuid.UUID, chapter int, page int) (string, error) {
	ret := _m.Called(ctx, bookID, chapter, page)

	var r0 string
	if rf, ok := ret.Get(0).(func(context.Context, uuid.UUID, int, int) string); ok {
		r0 = rf(ctx, bookID, chapter, page)
	} else {
		r0 = ret.String(0)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, uuid.UUID, int, int) error); ok {
		r1 = rf(ctx, bookID, chapter, page)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// GetBookGenre provides a mock function with given fields: ctx, bookID
func (_m *MockContentProvider) GetBookGenre(ctx context.Context, bookID uuid.UUID) (string, error) {
	ret := _m.Called(ctx, bookID)

	var r0 string
	if rf, ok := ret.Get(0).(func(context.Context, uuid.UUID) string); ok {
		r0 = rf(ctx, bookID)
	} else {
		r0 = ret.String(0)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, uuid.UUID) error); ok {
		r1 = rf(ctx, bookID)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// ListPages provides a mock function with given fields: ctx, bookID
func (_m *MockContentProvider) ListPages(ctx context.Context, bookID uuid.UUID) ([]models.PageRef, error) {
	ret := _m.Called(ctx, bookID)

	var r0 []models.PageRef
	if rf, ok := ret.Get(0).(func(context.Context, uuid.UUID) []models.PageRef); ok {
		r0 = rf(ctx, bookID)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).([]models.PageRef)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, uuid.UUID) error); ok {
		r1 = rf(ctx, bookID)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewMockContentProvider creates a new instance of MockContentProvider. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewMockContentProvider(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockContentProvider {
	m := &MockContentProvider{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

var _ repository.ContentProvider = (*MockContentProvider)(nil)
