package team

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/avensora/avensora-api/pkg/apperr"
)

// TeamRepository defines the interface for team/registration data
// operations. Implementations translate not-found to apperr.ErrNotFound and
// unique-constraint violations to apperr.ErrConflict; capacity misses
// surface as apperr.ErrTeamFull straight from the atomic insert.
type TeamRepository interface {
	// CreateWithLeader persists the team and the leader's membership row in
	// one transaction, so a team can never exist without its leader.
	CreateWithLeader(t *Team) error
	GetByID(id uint) (*Team, error)
	GetByJoinToken(token string) (*Team, error)
	// GetMembership returns the participant's membership for an event,
	// whatever team it belongs to.
	GetMembership(eventID, participantID uint) (*TeamMember, error)
	GetMembers(teamID uint) ([]TeamMember, error)
	// AddMemberChecked inserts a membership while holding a row lock on the
	// team, re-counting members under the lock so that when one slot
	// remains, at most one of two racing joins succeeds.
	AddMemberChecked(m *TeamMember, maxSize int) error
	// EnsureLeaderMembership re-inserts the leader's membership row if a
	// prior mutation lost it. Invariant repair, run on every mutating op.
	EnsureLeaderMembership(t *Team) error
	RemoveMember(teamID, participantID uint) error
	// DeleteWithMembers removes the team and every membership row in one
	// transaction: the cascading unregistration of all members.
	DeleteWithMembers(teamID uint) error
	UpdateStatus(teamID uint, status string) error
	ListByParticipant(participantID uint) ([]Team, error)
	ListAll(status string) ([]Team, error)
}

type teamRepository struct {
	db *gorm.DB
}

func NewTeamRepository(db *gorm.DB) TeamRepository {
	return &teamRepository{db: db}
}

func (r *teamRepository) CreateWithLeader(t *Team) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(t).Error; err != nil {
			return err
		}
		member := TeamMember{TeamID: t.ID, EventID: t.EventID, ParticipantID: t.LeaderID}
		return tx.Create(&member).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperr.ErrConflict
		}
		return err
	}
	return nil
}

func (r *teamRepository) GetByID(id uint) (*Team, error) {
	var t Team
	if err := r.db.First(&t, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *teamRepository) GetByJoinToken(tok string) (*Team, error) {
	var t Team
	if err := r.db.Where("join_token = ?", tok).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *teamRepository) GetMembership(eventID, participantID uint) (*TeamMember, error) {
	var m TeamMember
	err := r.db.Where("event_id = ? AND participant_id = ?", eventID, participantID).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *teamRepository) GetMembers(teamID uint) ([]TeamMember, error) {
	var members []TeamMember
	if err := r.db.Where("team_id = ?", teamID).Order("created_at asc").Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

func (r *teamRepository) AddMemberChecked(m *TeamMember, maxSize int) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		// Row lock serializes conflicting joins against the same team; the
		// count below is therefore stable until commit.
		var t Team
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&t, m.TeamID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.ErrNotFound
			}
			return err
		}
		if maxSize > 0 {
			var count int64
			if err := tx.Model(&TeamMember{}).Where("team_id = ?", m.TeamID).Count(&count).Error; err != nil {
				return err
			}
			if count >= int64(maxSize) {
				return apperr.ErrTeamFull
			}
		}
		return tx.Create(m).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperr.ErrConflict
		}
		return err
	}
	return nil
}

func (r *teamRepository) EnsureLeaderMembership(t *Team) error {
	member := TeamMember{TeamID: t.ID, EventID: t.EventID, ParticipantID: t.LeaderID}
	err := r.db.Where("team_id = ? AND participant_id = ?", t.ID, t.LeaderID).
		FirstOrCreate(&member).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// Lost the race to another repair; the invariant holds either way.
		return nil
	}
	return err
}

func (r *teamRepository) RemoveMember(teamID, participantID uint) error {
	result := r.db.Unscoped().
		Where("team_id = ? AND participant_id = ?", teamID, participantID).
		Delete(&TeamMember{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (r *teamRepository) DeleteWithMembers(teamID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("team_id = ?", teamID).Delete(&TeamMember{}).Error; err != nil {
			return err
		}
		result := tx.Unscoped().Delete(&Team{}, teamID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperr.ErrNotFound
		}
		return nil
	})
}

func (r *teamRepository) UpdateStatus(teamID uint, status string) error {
	result := r.db.Model(&Team{}).Where("id = ?", teamID).Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (r *teamRepository) ListByParticipant(participantID uint) ([]Team, error) {
	var teams []Team
	err := r.db.Joins("JOIN team_members ON team_members.team_id = teams.id").
		Where("team_members.participant_id = ?", participantID).
		Order("teams.created_at desc").
		Find(&teams).Error
	if err != nil {
		return nil, err
	}
	return teams, nil
}

func (r *teamRepository) ListAll(status string) ([]Team, error) {
	var teams []Team
	query := r.db.Order("created_at desc")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Find(&teams).Error; err != nil {
		return nil, err
	}
	return teams, nil
}
