package team

import (
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/avensora/avensora-api/internal/event"
	"github.com/avensora/avensora-api/internal/gate"
	"github.com/avensora/avensora-api/internal/participant"
	"github.com/avensora/avensora-api/pkg/apperr"
	"github.com/avensora/avensora-api/pkg/notify"
)

// Service is the registration state machine. Every mutating operation first
// passes the access gate, then runs the leader-membership repair, and leans
// on storage-level constraints (not check-then-act reads) for the
// one-registration-per-participant-per-event and capacity invariants.
type Service struct {
	teams        TeamRepository
	events       event.Repository
	participants participant.Repository
	gate         *gate.Gate
	notifier     notify.Dispatcher
}

func NewService(teams TeamRepository, events event.Repository, participants participant.Repository, g *gate.Gate, notifier notify.Dispatcher) *Service {
	return &Service{
		teams:        teams,
		events:       events,
		participants: participants,
		gate:         g,
		notifier:     notifier,
	}
}

// notify is fire-and-forget: a failed dispatch never rolls back the write
// that triggered it.
func (s *Service) notify(eventName string, payload map[string]interface{}) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Dispatch(eventName, payload); err != nil {
		log.Printf("team: notification %s failed: %v", eventName, err)
	}
}

// CreateTeam registers the leader for a team event and returns the fresh
// join token in the view. Retrying after a crash yields ErrAlreadyRegistered,
// which itself reveals the prior success to the caller.
func (s *Service) CreateTeam(leaderID, eventID uint, name string) (*TeamView, error) {
	if _, err := s.gate.Authorize(leaderID); err != nil {
		return nil, err
	}
	ev, err := s.events.GetByID(eventID)
	if err != nil {
		return nil, err
	}
	if !ev.IsTeamEvent {
		return nil, apperr.ErrNotTeamEvent
	}

	tok := uuid.NewString()
	t := &Team{
		EventID:   eventID,
		Name:      name,
		LeaderID:  leaderID,
		JoinToken: &tok,
		Status:    StatusUnverified,
	}
	if err := s.teams.CreateWithLeader(t); err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			return nil, apperr.ErrAlreadyRegistered
		}
		return nil, err
	}

	s.notify("team.created", map[string]interface{}{"team_id": t.ID, "event_id": eventID, "leader_id": leaderID})
	return s.view(t, true)
}

// RegisterIndividual creates the degenerate single-member team that stands
// for an individual registration. No join token is issued.
func (s *Service) RegisterIndividual(participantID, eventID uint) (*TeamView, error) {
	if _, err := s.gate.Authorize(participantID); err != nil {
		return nil, err
	}
	ev, err := s.events.GetByID(eventID)
	if err != nil {
		return nil, err
	}
	if ev.IsTeamEvent {
		return nil, apperr.ErrNotIndividualEvent
	}

	t := &Team{
		EventID:      eventID,
		IsIndividual: true,
		LeaderID:     participantID,
		Status:       StatusUnverified,
	}
	if err := s.teams.CreateWithLeader(t); err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			return nil, apperr.ErrAlreadyRegistered
		}
		return nil, err
	}

	s.notify("registration.created", map[string]interface{}{"team_id": t.ID, "event_id": eventID, "participant_id": participantID})
	return s.view(t, false)
}

// JoinTeam resolves the team by token and inserts the membership at commit
// time. Capacity and double-registration are decided by the store under the
// team row lock and the membership unique index; a raced constraint hit is
// re-read and mapped to the proper business error, never leaked raw.
func (s *Service) JoinTeam(token string, participantID uint) (*TeamView, error) {
	if _, err := s.gate.Authorize(participantID); err != nil {
		return nil, err
	}
	t, err := s.teams.GetByJoinToken(token)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.ErrInvalidToken
		}
		return nil, err
	}
	if err := s.teams.EnsureLeaderMembership(t); err != nil {
		return nil, err
	}
	if t.LeaderID == participantID {
		return nil, apperr.ErrAlreadyLeader
	}
	ev, err := s.events.GetByID(t.EventID)
	if err != nil {
		return nil, err
	}

	if err := s.addMember(t, participantID, ev.MaxTeamSize); err != nil {
		return nil, err
	}

	s.notify("team.joined", map[string]interface{}{"team_id": t.ID, "participant_id": participantID})
	return s.view(t, false)
}

// AddMemberByCode lets the leader pull in a participant by code. The target
// must itself satisfy the gate criteria even though the call is authorized
// by the leader.
func (s *Service) AddMemberByCode(leaderID, teamID uint, code string) (*TeamView, error) {
	if _, err := s.gate.Authorize(leaderID); err != nil {
		return nil, err
	}
	t, err := s.teams.GetByID(teamID)
	if err != nil {
		return nil, err
	}
	if t.LeaderID != leaderID {
		return nil, apperr.ErrNotTeamLeader
	}
	if err := s.teams.EnsureLeaderMembership(t); err != nil {
		return nil, err
	}

	target, err := s.participants.GetByCode(code)
	if err != nil {
		return nil, err
	}
	if !gate.Eligible(target) {
		return nil, apperr.ErrNotEligible
	}
	if target.ID == t.LeaderID {
		return nil, apperr.ErrAlreadyLeader
	}
	ev, err := s.events.GetByID(t.EventID)
	if err != nil {
		return nil, err
	}

	if err := s.addMember(t, target.ID, ev.MaxTeamSize); err != nil {
		return nil, err
	}

	s.notify("team.member_added", map[string]interface{}{"team_id": t.ID, "participant_id": target.ID, "added_by": leaderID})
	return s.view(t, true)
}

// addMember performs the commit-time insert and classifies constraint hits:
// a duplicate membership on this team is AlreadyMember, on any other team
// for the event AlreadyRegistered.
func (s *Service) addMember(t *Team, participantID uint, maxSize int) error {
	m := &TeamMember{TeamID: t.ID, EventID: t.EventID, ParticipantID: participantID}
	err := s.teams.AddMemberChecked(m, maxSize)
	if err == nil {
		return nil
	}
	if errors.Is(err, apperr.ErrConflict) {
		existing, readErr := s.teams.GetMembership(t.EventID, participantID)
		if readErr == nil && existing.TeamID == t.ID {
			return apperr.ErrAlreadyMember
		}
		return apperr.ErrAlreadyRegistered
	}
	return err
}

// LeaveTeam removes the caller from the team. Leaders must delete the team
// instead. Min team size is deliberately not re-validated here; verification
// is the sole size-enforcement point.
func (s *Service) LeaveTeam(participantID, teamID uint) error {
	if _, err := s.gate.Authorize(participantID); err != nil {
		return err
	}
	t, err := s.teams.GetByID(teamID)
	if err != nil {
		return err
	}
	if err := s.teams.EnsureLeaderMembership(t); err != nil {
		return err
	}
	if t.LeaderID == participantID {
		return apperr.ErrLeaderCannotLeave
	}
	if err := s.teams.RemoveMember(teamID, participantID); err != nil {
		return err
	}
	s.notify("team.left", map[string]interface{}{"team_id": teamID, "participant_id": participantID})
	return nil
}

// RemoveMember is the leader-initiated counterpart of LeaveTeam.
func (s *Service) RemoveMember(leaderID, teamID, targetID uint) (*TeamView, error) {
	if _, err := s.gate.Authorize(leaderID); err != nil {
		return nil, err
	}
	t, err := s.teams.GetByID(teamID)
	if err != nil {
		return nil, err
	}
	if t.LeaderID != leaderID {
		return nil, apperr.ErrNotTeamLeader
	}
	if err := s.teams.EnsureLeaderMembership(t); err != nil {
		return nil, err
	}
	if targetID == t.LeaderID {
		return nil, apperr.ErrCannotRemoveLeader
	}
	if err := s.teams.RemoveMember(teamID, targetID); err != nil {
		return nil, err
	}
	s.notify("team.member_removed", map[string]interface{}{"team_id": teamID, "participant_id": targetID, "removed_by": leaderID})
	return s.view(t, true)
}

// DeleteTeam removes the registration record entirely. Because the team row
// IS the registration, the single cascading delete transitions every former
// member, leader included, back to not-registered for the event.
func (s *Service) DeleteTeam(leaderID, teamID uint) error {
	if _, err := s.gate.Authorize(leaderID); err != nil {
		return err
	}
	t, err := s.teams.GetByID(teamID)
	if err != nil {
		return err
	}
	if t.LeaderID != leaderID {
		return apperr.ErrNotTeamLeader
	}
	if err := s.teams.DeleteWithMembers(teamID); err != nil {
		return err
	}
	s.notify("team.deleted", map[string]interface{}{"team_id": teamID, "event_id": t.EventID})
	return nil
}

// UnregisterIndividual deletes the degenerate team behind an individual
// registration.
func (s *Service) UnregisterIndividual(participantID, eventID uint) error {
	if _, err := s.gate.Authorize(participantID); err != nil {
		return err
	}
	ev, err := s.events.GetByID(eventID)
	if err != nil {
		return err
	}
	if ev.IsTeamEvent {
		return apperr.ErrNotIndividualEvent
	}
	m, err := s.teams.GetMembership(eventID, participantID)
	if err != nil {
		return err
	}
	if err := s.teams.DeleteWithMembers(m.TeamID); err != nil {
		return err
	}
	s.notify("registration.deleted", map[string]interface{}{"event_id": eventID, "participant_id": participantID})
	return nil
}

// Verify is the admin transition to verified. This is the sole point where
// the event's [min,max] size bounds are enforced; intermediate team states
// may violate them freely. Re-verifying a rejected team is allowed because
// the transition is always explicit.
func (s *Service) Verify(teamID uint) (*TeamView, error) {
	t, err := s.teams.GetByID(teamID)
	if err != nil {
		return nil, err
	}
	if err := s.teams.EnsureLeaderMembership(t); err != nil {
		return nil, err
	}
	ev, err := s.events.GetByID(t.EventID)
	if err != nil {
		return nil, err
	}
	members, err := s.teams.GetMembers(teamID)
	if err != nil {
		return nil, err
	}
	if len(members) < ev.MinTeamSize || (ev.MaxTeamSize > 0 && len(members) > ev.MaxTeamSize) {
		return nil, fmt.Errorf("%w: team has %d members, event requires %d-%d",
			apperr.ErrTeamSizeInvalid, len(members), ev.MinTeamSize, ev.MaxTeamSize)
	}
	if err := s.teams.UpdateStatus(teamID, StatusVerified); err != nil {
		return nil, err
	}
	t.Status = StatusVerified
	s.notify("team.verified", map[string]interface{}{"team_id": teamID})
	return s.view(t, false)
}

// Reject is the admin transition to rejected. No side effects beyond the
// status flag; downstream readers decide what a rejection means.
func (s *Service) Reject(teamID uint) (*TeamView, error) {
	t, err := s.teams.GetByID(teamID)
	if err != nil {
		return nil, err
	}
	if err := s.teams.UpdateStatus(teamID, StatusRejected); err != nil {
		return nil, err
	}
	t.Status = StatusRejected
	s.notify("team.rejected", map[string]interface{}{"team_id": teamID})
	return s.view(t, false)
}

// GetTeam returns the registration view. The join token is only disclosed to
// the leader.
func (s *Service) GetTeam(requesterID, teamID uint) (*TeamView, error) {
	t, err := s.teams.GetByID(teamID)
	if err != nil {
		return nil, err
	}
	return s.view(t, t.LeaderID == requesterID)
}

// MyTeams lists every registration the participant is part of.
func (s *Service) MyTeams(participantID uint) ([]TeamView, error) {
	teams, err := s.teams.ListByParticipant(participantID)
	if err != nil {
		return nil, err
	}
	views := make([]TeamView, 0, len(teams))
	for i := range teams {
		v, err := s.view(&teams[i], teams[i].LeaderID == participantID)
		if err != nil {
			return nil, err
		}
		views = append(views, *v)
	}
	return views, nil
}

// ListTeams is the admin listing, optionally filtered by status.
func (s *Service) ListTeams(status string) ([]TeamView, error) {
	teams, err := s.teams.ListAll(status)
	if err != nil {
		return nil, err
	}
	views := make([]TeamView, 0, len(teams))
	for i := range teams {
		v, err := s.view(&teams[i], false)
		if err != nil {
			return nil, err
		}
		views = append(views, *v)
	}
	return views, nil
}

func (s *Service) view(t *Team, includeToken bool) (*TeamView, error) {
	members, err := s.teams.GetMembers(t.ID)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]*participant.Participant, len(members))
	for _, m := range members {
		p, err := s.participants.GetByID(m.ParticipantID)
		if err != nil {
			continue // deleted participant; the view degrades to IDs only
		}
		byID[m.ParticipantID] = p
	}
	return newTeamView(t, members, byID, includeToken), nil
}
