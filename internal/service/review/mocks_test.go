package review

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/vocabquest-api/internal/domain"
	"github.com/phrazzld/vocabquest-api/internal/events"
	"github.com/phrazzld/vocabquest-api/internal/store"
	"github.com/stretchr/testify/mock"
)

// MockWordStateStore is a testify mock of store.WordStateStore.
// WithTx returns the mock itself so expectations cover transactional calls.
type MockWordStateStore struct {
	mock.Mock
}

var _ store.WordStateStore = (*MockWordStateStore)(nil)

func (m *MockWordStateStore) Create(ctx context.Context, state *domain.WordState) error {
	return m.Called(ctx, state).Error(0)
}

func (m *MockWordStateStore) Get(ctx context.Context, userID, wordID uuid.UUID) (*domain.WordState, error) {
	args := m.Called(ctx, userID, wordID)
	state, _ := args.Get(0).(*domain.WordState)
	return state, args.Error(1)
}

func (m *MockWordStateStore) GetForUpdate(
	ctx context.Context,
	userID, wordID uuid.UUID,
) (*domain.WordState, error) {
	args := m.Called(ctx, userID, wordID)
	state, _ := args.Get(0).(*domain.WordState)
	return state, args.Error(1)
}

func (m *MockWordStateStore) Update(ctx context.Context, state *domain.WordState) error {
	return m.Called(ctx, state).Error(0)
}

func (m *MockWordStateStore) ListDue(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
	limit int,
) ([]*domain.WordState, error) {
	args := m.Called(ctx, userID, now, limit)
	states, _ := args.Get(0).([]*domain.WordState)
	return states, args.Error(1)
}

func (m *MockWordStateStore) Stats(
	ctx context.Context,
	userID uuid.UUID,
	now, dayStart time.Time,
) (*domain.ReviewStats, error) {
	args := m.Called(ctx, userID, now, dayStart)
	stats, _ := args.Get(0).(*domain.ReviewStats)
	return stats, args.Error(1)
}

func (m *MockWordStateStore) UsersWithDue(ctx context.Context, now time.Time) ([]store.UserDueCount, error) {
	args := m.Called(ctx, now)
	counts, _ := args.Get(0).([]store.UserDueCount)
	return counts, args.Error(1)
}

func (m *MockWordStateStore) WithTx(_ *sql.Tx) store.WordStateStore {
	return m
}

// recordingEmitter captures emitted events.
type recordingEmitter struct {
	mu     sync.Mutex
	events []*events.Event
	err    error
}

func (e *recordingEmitter) EmitEvent(_ context.Context, event *events.Event) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, event)
	return e.err
}
