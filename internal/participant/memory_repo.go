package participant

import (
	"strings"
	"sync"

	"github.com/avensora/avensora-api/pkg/apperr"
)

// InMemory is a Repository backed by maps. It emulates the unique
// constraints the Postgres schema carries (email, phone, code) so services
// exercised against it see the same error behavior as in production.
type InMemory struct {
	mu     sync.Mutex
	nextID uint
	byID   map[uint]*Participant
}

func NewInMemory() *InMemory {
	return &InMemory{nextID: 1, byID: make(map[uint]*Participant)}
}

func (m *InMemory) Create(p *Participant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.byID {
		if strings.EqualFold(existing.Email, p.Email) ||
			existing.Phone == p.Phone ||
			existing.Code == p.Code {
			return apperr.ErrConflict
		}
	}
	p.ID = m.nextID
	m.nextID++
	clone := *p
	m.byID[p.ID] = &clone
	return nil
}

func (m *InMemory) find(match func(*Participant) bool) (*Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.byID {
		if match(p) {
			clone := *p
			return &clone, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (m *InMemory) GetByID(id uint) (*Participant, error) {
	return m.find(func(p *Participant) bool { return p.ID == id })
}

func (m *InMemory) GetByEmail(email string) (*Participant, error) {
	return m.find(func(p *Participant) bool { return strings.EqualFold(p.Email, email) })
}

func (m *InMemory) GetByPhone(phone string) (*Participant, error) {
	return m.find(func(p *Participant) bool { return p.Phone == phone })
}

func (m *InMemory) GetByCode(code string) (*Participant, error) {
	return m.find(func(p *Participant) bool { return p.Code == code })
}

func (m *InMemory) GetByVerifyToken(token string) (*Participant, error) {
	return m.find(func(p *Participant) bool { return p.VerifyToken != "" && p.VerifyToken == token })
}

func (m *InMemory) Update(p *Participant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[p.ID]; !ok {
		return apperr.ErrNotFound
	}
	clone := *p
	m.byID[p.ID] = &clone
	return nil
}

func (m *InMemory) CodeExists(code string) (bool, error) {
	_, err := m.GetByCode(code)
	if err == nil {
		return true, nil
	}
	return false, nil
}

func (m *InMemory) IncrementReferralCount(code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.byID {
		if p.Code == code {
			p.ReferralCount++
			return nil
		}
	}
	return apperr.ErrNotFound
}

func (m *InMemory) SetReferralCount(code string, count int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.byID {
		if p.Code == code {
			p.ReferralCount = count
			return nil
		}
	}
	return apperr.ErrNotFound
}

func (m *InMemory) CountReferred(code string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, p := range m.byID {
		if p.ReferredBy != nil && *p.ReferredBy == code {
			count++
		}
	}
	return count, nil
}

func (m *InMemory) ListReferred(code string) ([]Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Participant
	for _, p := range m.byID {
		if p.ReferredBy != nil && *p.ReferredBy == code {
			out = append(out, *p)
		}
	}
	return out, nil
}
