package team

import (
	"time"

	"gorm.io/gorm"

	"github.com/avensora/avensora-api/internal/participant"
)

const (
	StatusUnverified = "unverified"
	StatusVerified   = "verified"
	StatusRejected   = "rejected"
)

// Team is the registration record: one row per (group, event) registration.
// Deleting it IS unregistering every member. The (event_id, leader_id)
// unique index keeps a participant from leading two teams for one event.
type Team struct {
	gorm.Model
	EventID      uint    `json:"event_id" gorm:"uniqueIndex:idx_event_leader;not null"`
	Name         string  `json:"name"`
	IsIndividual bool    `json:"is_individual" gorm:"default:false"`
	LeaderID     uint    `json:"leader_id" gorm:"uniqueIndex:idx_event_leader;not null"`
	JoinToken    *string `json:"-" gorm:"uniqueIndex"`
	Status       string  `json:"status" gorm:"default:'unverified'"`
}

// TeamMember records one participant's membership in one team. EventID is
// denormalized from the team so the (event_id, participant_id) unique index
// can enforce one registration per participant per event at commit time.
// That constraint is what the registry leans on instead of check-then-act.
type TeamMember struct {
	gorm.Model
	TeamID        uint `json:"team_id" gorm:"index;not null"`
	EventID       uint `json:"event_id" gorm:"uniqueIndex:idx_event_participant;not null"`
	ParticipantID uint `json:"participant_id" gorm:"uniqueIndex:idx_event_participant;not null"`
}

// --- DTOs ---

type CreateTeamRequest struct {
	Name string `json:"name" binding:"omitempty,min=2,max=100"`
}

type JoinTeamRequest struct {
	Token string `json:"token" binding:"required"`
}

type AddMemberRequest struct {
	Code string `json:"code" binding:"required"`
}

type MemberView struct {
	ParticipantID uint   `json:"participant_id"`
	Name          string `json:"name"`
	Code          string `json:"code"`
	IsLeader      bool   `json:"is_leader"`
}

// TeamView is the registration view returned by every successful operation.
type TeamView struct {
	ID           uint         `json:"id"`
	EventID      uint         `json:"event_id"`
	Name         string       `json:"name,omitempty"`
	IsIndividual bool         `json:"is_individual"`
	LeaderID     uint         `json:"leader_id"`
	JoinToken    string       `json:"join_token,omitempty"`
	Status       string       `json:"status"`
	Members      []MemberView `json:"members"`
	CreatedAt    time.Time    `json:"created_at"`
}

func newTeamView(t *Team, members []TeamMember, byID map[uint]*participant.Participant, includeToken bool) *TeamView {
	view := &TeamView{
		ID:           t.ID,
		EventID:      t.EventID,
		Name:         t.Name,
		IsIndividual: t.IsIndividual,
		LeaderID:     t.LeaderID,
		Status:       t.Status,
		CreatedAt:    t.CreatedAt,
	}
	if includeToken && t.JoinToken != nil {
		view.JoinToken = *t.JoinToken
	}
	for _, m := range members {
		mv := MemberView{ParticipantID: m.ParticipantID, IsLeader: m.ParticipantID == t.LeaderID}
		if p, ok := byID[m.ParticipantID]; ok {
			mv.Name = p.Name
			mv.Code = p.Code
		}
		view.Members = append(view.Members, mv)
	}
	return view
}
