package team

import (
	"sync"

	"github.com/avensora/avensora-api/pkg/apperr"
)

// InMemoryTeamRepository is a TeamRepository backed by maps. It emulates the
// Postgres constraints the registry leans on (the (event_id, leader_id) and
// (event_id, participant_id) unique indexes, join-token uniqueness, and the
// locked capacity check) under a single mutex, so concurrent service tests
// observe the same one-winner behavior as the real store.
type InMemoryTeamRepository struct {
	mu      sync.Mutex
	nextID  uint
	teams   map[uint]*Team
	members map[uint][]TeamMember // keyed by team ID
}

func NewInMemoryTeamRepository() *InMemoryTeamRepository {
	return &InMemoryTeamRepository{
		nextID:  1,
		teams:   make(map[uint]*Team),
		members: make(map[uint][]TeamMember),
	}
}

func (m *InMemoryTeamRepository) hasMembershipLocked(eventID, participantID uint) bool {
	for teamID, members := range m.members {
		t, ok := m.teams[teamID]
		if !ok || t.EventID != eventID {
			continue
		}
		for _, member := range members {
			if member.ParticipantID == participantID {
				return true
			}
		}
	}
	return false
}

func (m *InMemoryTeamRepository) CreateWithLeader(t *Team) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.teams {
		if existing.EventID == t.EventID && existing.LeaderID == t.LeaderID {
			return apperr.ErrConflict
		}
		if t.JoinToken != nil && existing.JoinToken != nil && *existing.JoinToken == *t.JoinToken {
			return apperr.ErrConflict
		}
	}
	if m.hasMembershipLocked(t.EventID, t.LeaderID) {
		return apperr.ErrConflict
	}
	t.ID = m.nextID
	m.nextID++
	clone := *t
	m.teams[t.ID] = &clone
	m.members[t.ID] = []TeamMember{{TeamID: t.ID, EventID: t.EventID, ParticipantID: t.LeaderID}}
	return nil
}

func (m *InMemoryTeamRepository) GetByID(id uint) (*Team, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.teams[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	clone := *t
	return &clone, nil
}

func (m *InMemoryTeamRepository) GetByJoinToken(tok string) (*Team, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.teams {
		if t.JoinToken != nil && *t.JoinToken == tok {
			clone := *t
			return &clone, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (m *InMemoryTeamRepository) GetMembership(eventID, participantID uint) (*TeamMember, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for teamID, members := range m.members {
		t, ok := m.teams[teamID]
		if !ok || t.EventID != eventID {
			continue
		}
		for _, member := range members {
			if member.ParticipantID == participantID {
				clone := member
				return &clone, nil
			}
		}
	}
	return nil, apperr.ErrNotFound
}

func (m *InMemoryTeamRepository) GetMembers(teamID uint) ([]TeamMember, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.teams[teamID]; !ok {
		return nil, apperr.ErrNotFound
	}
	out := make([]TeamMember, len(m.members[teamID]))
	copy(out, m.members[teamID])
	return out, nil
}

func (m *InMemoryTeamRepository) AddMemberChecked(member *TeamMember, maxSize int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.teams[member.TeamID]
	if !ok {
		return apperr.ErrNotFound
	}
	if maxSize > 0 && len(m.members[member.TeamID]) >= maxSize {
		return apperr.ErrTeamFull
	}
	if m.hasMembershipLocked(t.EventID, member.ParticipantID) {
		return apperr.ErrConflict
	}
	m.members[member.TeamID] = append(m.members[member.TeamID], *member)
	return nil
}

func (m *InMemoryTeamRepository) EnsureLeaderMembership(t *Team) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.teams[t.ID]; !ok {
		return apperr.ErrNotFound
	}
	for _, member := range m.members[t.ID] {
		if member.ParticipantID == t.LeaderID {
			return nil
		}
	}
	m.members[t.ID] = append(m.members[t.ID], TeamMember{TeamID: t.ID, EventID: t.EventID, ParticipantID: t.LeaderID})
	return nil
}

func (m *InMemoryTeamRepository) RemoveMember(teamID, participantID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	members := m.members[teamID]
	for i, member := range members {
		if member.ParticipantID == participantID {
			m.members[teamID] = append(members[:i], members[i+1:]...)
			return nil
		}
	}
	return apperr.ErrNotFound
}

func (m *InMemoryTeamRepository) DeleteWithMembers(teamID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.teams[teamID]; !ok {
		return apperr.ErrNotFound
	}
	delete(m.teams, teamID)
	delete(m.members, teamID)
	return nil
}

func (m *InMemoryTeamRepository) UpdateStatus(teamID uint, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.teams[teamID]
	if !ok {
		return apperr.ErrNotFound
	}
	t.Status = status
	return nil
}

func (m *InMemoryTeamRepository) ListByParticipant(participantID uint) ([]Team, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Team
	for teamID, members := range m.members {
		for _, member := range members {
			if member.ParticipantID == participantID {
				if t, ok := m.teams[teamID]; ok {
					out = append(out, *t)
				}
				break
			}
		}
	}
	return out, nil
}

func (m *InMemoryTeamRepository) ListAll(status string) ([]Team, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Team
	for _, t := range m.teams {
		if status == "" || t.Status == status {
			out = append(out, *t)
		}
	}
	return out, nil
}
