package event

import (
	"strings"
	"sync"

	"github.com/avensora/avensora-api/pkg/apperr"
)

// InMemory is a Repository backed by a map, for unit tests.
type InMemory struct {
	mu     sync.Mutex
	nextID uint
	byID   map[uint]*Event
}

func NewInMemory() *InMemory {
	return &InMemory{nextID: 1, byID: make(map[uint]*Event)}
}

func (m *InMemory) Create(e *Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.byID {
		if strings.EqualFold(existing.Name, e.Name) {
			return apperr.ErrConflict
		}
	}
	e.ID = m.nextID
	m.nextID++
	clone := *e
	m.byID[e.ID] = &clone
	return nil
}

func (m *InMemory) GetByID(id uint) (*Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.byID[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	clone := *e
	return &clone, nil
}

func (m *InMemory) List() ([]Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Event, 0, len(m.byID))
	for _, e := range m.byID {
		out = append(out, *e)
	}
	return out, nil
}
