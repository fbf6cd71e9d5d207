package ledger

import (
	"container/list"
	"context"
	"slices"
	"sync"

	"github.com/covenantcc/crucible/pkg/api"
)

// taskEntry holds one task's persisted state.
type taskEntry struct {
	status   api.TaskStatus
	attempts []api.AttemptRecord
	lruElem  *list.Element // position in LRU list
}

// Memory is an in-memory ledger with optional LRU eviction. Task state
// is lost when the process restarts; it exists for lightweight
// deployments that still want task lookup and resumability within one
// process lifetime.
type Memory struct {
	mu      sync.RWMutex
	tasks   map[string]*taskEntry
	lruList *list.List // front = most recently used, back = least recently used
	maxSize int        // 0 = unlimited
}

// NewMemory creates a new in-memory ledger. If maxSize is 0, the ledger
// grows without limit. If maxSize > 0, the least recently touched task
// is evicted when the limit is reached.
func NewMemory(maxSize int) *Memory {
	return &Memory{
		tasks:   make(map[string]*taskEntry),
		lruList: list.New(),
		maxSize: maxSize,
	}
}

// touch marks a task as recently used, creating it if needed.
// Caller must hold the write lock.
func (m *Memory) touch(correlationID string) *taskEntry {
	if e, ok := m.tasks[correlationID]; ok {
		m.lruList.MoveToFront(e.lruElem)
		return e
	}

	if m.maxSize > 0 && len(m.tasks) >= m.maxSize {
		m.evictOldest()
	}

	e := &taskEntry{lruElem: m.lruList.PushFront(correlationID)}
	m.tasks[correlationID] = e
	return e
}

// evictOldest removes the least recently used task.
// Caller must hold the write lock.
func (m *Memory) evictOldest() {
	back := m.lruList.Back()
	if back == nil {
		return
	}
	id := back.Value.(string)
	m.lruList.Remove(back)
	delete(m.tasks, id)
}

// RecordAttempt appends one attempt record for the task.
func (m *Memory) RecordAttempt(_ context.Context, correlationID string, rec api.AttemptRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := m.touch(correlationID)
	e.attempts = append(e.attempts, rec)
	return nil
}

// SetStatus records the task's current loop status.
func (m *Memory) SetStatus(_ context.Context, correlationID string, status api.TaskStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.touch(correlationID).status = status
	return nil
}

// Attempts returns the task's attempt history in order. The returned
// slice is a copy; callers can hold it without racing later writes.
func (m *Memory) Attempts(_ context.Context, correlationID string) ([]api.AttemptRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.tasks[correlationID]
	if !ok {
		return nil, nil
	}
	return slices.Clone(e.attempts), nil
}

// Status returns the task's recorded status, or empty when unknown.
func (m *Memory) Status(_ context.Context, correlationID string) (api.TaskStatus, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.tasks[correlationID]
	if !ok {
		return "", nil
	}
	return e.status, nil
}
