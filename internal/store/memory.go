package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"examdesk/seating/internal/model"
)

// Memory is an in-process Store. Each slot owns its own lock so commits
// and lookups for different slots never contend.
type Memory struct {
	mu    sync.Mutex
	slots map[model.Slot]*memorySlot
}

type memorySlot struct {
	mu      sync.RWMutex
	current *model.Allocation
	version int64
}

func NewMemory() *Memory {
	return &Memory{slots: make(map[model.Slot]*memorySlot)}
}

func (m *Memory) slot(slot model.Slot) *memorySlot {
	m.mu.Lock()
	defer m.mu.Unlock()
	state, ok := m.slots[slot]
	if !ok {
		state = &memorySlot{}
		m.slots[slot] = state
	}
	return state
}

func (m *Memory) Commit(ctx context.Context, slot model.Slot, assignments []model.Assignment) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	copied := make([]model.Assignment, len(assignments))
	copy(copied, assignments)

	state := m.slot(slot)
	state.mu.Lock()
	defer state.mu.Unlock()
	state.version++
	state.current = &model.Allocation{
		Slot:        slot,
		Version:     state.version,
		CreatedAt:   time.Now().UTC(),
		Assignments: copied,
	}
	return state.version, nil
}

func (m *Memory) Lookup(ctx context.Context, roomNo string, slot model.Slot) ([]model.Assignment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	state := m.slot(slot)
	state.mu.RLock()
	defer state.mu.RUnlock()
	if state.current == nil {
		return nil, nil
	}
	var matched []model.Assignment
	for _, a := range state.current.Assignments {
		if a.RoomNo == roomNo {
			matched = append(matched, a)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].SeatNo < matched[j].SeatNo })
	return matched, nil
}

func (m *Memory) CurrentVersion(ctx context.Context, slot model.Slot) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	state := m.slot(slot)
	state.mu.RLock()
	defer state.mu.RUnlock()
	return state.version, nil
}
