package store

import (
	"context"
	"slices"
	"sync"
)

// Memory is an in-process SnapshotStore. Snapshots are lost on exit.
type Memory struct {
	mu      sync.RWMutex
	bySheet map[string][]Snapshot // oldest first
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{bySheet: make(map[string][]Snapshot)}
}

func (m *Memory) Save(_ context.Context, s Snapshot) (Snapshot, error) {
	s = Prepare(s)

	m.mu.Lock()
	defer m.mu.Unlock()

	list := append(m.bySheet[s.Sheet], s)
	slices.SortStableFunc(list, func(a, b Snapshot) int {
		return a.FetchedAt.Compare(b.FetchedAt)
	})
	m.bySheet[s.Sheet] = list
	return s, nil
}

func (m *Memory) Latest(_ context.Context, sheet string) (Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := m.bySheet[sheet]
	if len(list) == 0 {
		return Snapshot{}, ErrNotFound
	}
	return list[len(list)-1], nil
}

func (m *Memory) History(_ context.Context, sheet string, limit int) ([]Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := m.bySheet[sheet]
	out := make([]Snapshot, 0, len(list))
	for i := len(list) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		s := list[i]
		s.Body = ""
		out = append(out, s)
	}
	return out, nil
}

func (m *Memory) Prune(_ context.Context, sheet string, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	list := m.bySheet[sheet]
	if len(list) <= keep {
		return 0, nil
	}
	removed := len(list) - keep
	m.bySheet[sheet] = slices.Clone(list[removed:])
	return int64(removed), nil
}

func (m *Memory) Close() error {
	return nil
}
