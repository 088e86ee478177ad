package repository

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/mmeshcher/sales-dashboard/internal/model"
)

type memoryEntry struct {
	state     model.PageState
	updatedAt time.Time
}

// MemoryRepository хранит состояние сессий в памяти процесса.
type MemoryRepository struct {
	mu       sync.RWMutex
	sessions map[string]memoryEntry
	now      func() time.Time
}

// NewMemoryRepository создаёт пустое хранилище сессий в памяти.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		sessions: make(map[string]memoryEntry),
		now:      time.Now,
	}
}

// Close освобождает ресурсы хранилища.
func (r *MemoryRepository) Close() error {
	return nil
}

// LoadSession возвращает сохранённое состояние сессии.
func (r *MemoryRepository) LoadSession(_ context.Context, id string) (*model.PageState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	ps := e.state
	ps.Stack = slices.Clone(ps.Stack)
	return &ps, nil
}

// SaveSession сохраняет состояние сессии, перезаписывая предыдущее.
func (r *MemoryRepository) SaveSession(_ context.Context, id string, ps model.PageState) error {
	ps.Stack = slices.Clone(ps.Stack)

	r.mu.Lock()
	r.sessions[id] = memoryEntry{state: ps, updatedAt: r.now()}
	r.mu.Unlock()
	return nil
}

// DeleteSessionsBefore удаляет сессии, не обновлявшиеся с момента cutoff, и возвращает их количество.
func (r *MemoryRepository) DeleteSessionsBefore(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, e := range r.sessions {
		if e.updatedAt.Before(cutoff) {
			delete(r.sessions, id)
			n++
		}
	}
	return n, nil
}
