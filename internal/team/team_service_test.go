package team

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/avensora/avensora-api/internal/event"
	"github.com/avensora/avensora-api/internal/gate"
	"github.com/avensora/avensora-api/internal/participant"
	"github.com/avensora/avensora-api/pkg/apperr"
	"github.com/avensora/avensora-api/pkg/notify"
)

type TeamServiceSuite struct {
	suite.Suite
	participants *participant.InMemory
	events       *event.InMemory
	teams        *InMemoryTeamRepository
	svc          *Service
	codeSeq      int
}

func (s *TeamServiceSuite) SetupTest() {
	s.participants = participant.NewInMemory()
	s.events = event.NewInMemory()
	s.teams = NewInMemoryTeamRepository()
	s.svc = NewService(s.teams, s.events, s.participants, gate.New(s.participants), notify.Noop{})
	s.codeSeq = 0
}

func TestTeamServiceSuite(t *testing.T) {
	suite.Run(t, new(TeamServiceSuite))
}

// --- fixtures ---

func (s *TeamServiceSuite) newParticipant(verified, paid bool) *participant.Participant {
	s.codeSeq++
	p := &participant.Participant{
		Name:          fmt.Sprintf("Participant %d", s.codeSeq),
		Email:         fmt.Sprintf("p%d@x.com", s.codeSeq),
		Phone:         fmt.Sprintf("%010d", s.codeSeq),
		Code:          fmt.Sprintf("%s%06d", participant.CodePrefix, s.codeSeq),
		Password:      "x",
		EmailVerified: verified,
		Paid:          paid,
	}
	s.Require().NoError(s.participants.Create(p))
	return p
}

func (s *TeamServiceSuite) eligible() *participant.Participant {
	return s.newParticipant(true, true)
}

func (s *TeamServiceSuite) teamEvent(min, max int) *event.Event {
	ev := &event.Event{
		Name:        fmt.Sprintf("Team Event %d-%d #%d", min, max, s.codeSeq),
		IsTeamEvent: true,
		MinTeamSize: min,
		MaxTeamSize: max,
	}
	s.codeSeq++
	s.Require().NoError(s.events.Create(ev))
	return ev
}

func (s *TeamServiceSuite) individualEvent() *event.Event {
	s.codeSeq++
	ev := &event.Event{
		Name:        fmt.Sprintf("Solo Event #%d", s.codeSeq),
		MinTeamSize: 1,
		MaxTeamSize: 1,
	}
	s.Require().NoError(s.events.Create(ev))
	return ev
}

// assertLeaderInMembers checks the self-healing invariant for every team.
func (s *TeamServiceSuite) assertLeaderInMembers() {
	teams, err := s.teams.ListAll("")
	s.Require().NoError(err)
	for _, t := range teams {
		members, err := s.teams.GetMembers(t.ID)
		s.Require().NoError(err)
		found := false
		for _, m := range members {
			if m.ParticipantID == t.LeaderID {
				found = true
				break
			}
		}
		s.True(found, "leader %d missing from members of team %d", t.LeaderID, t.ID)
	}
}

// --- CreateTeam ---

func (s *TeamServiceSuite) TestCreateTeam() {
	s.Run("creates team with leader as sole member and a join token", func() {
		leader := s.eligible()
		ev := s.teamEvent(2, 4)

		view, err := s.svc.CreateTeam(leader.ID, ev.ID, "Bitwise")
		s.Require().NoError(err)
		s.NotEmpty(view.JoinToken)
		s.Require().Len(view.Members, 1)
		s.Equal(leader.ID, view.Members[0].ParticipantID)
		s.True(view.Members[0].IsLeader)
		s.Equal(StatusUnverified, view.Status)
		s.assertLeaderInMembers()
	})

	s.Run("rejects individual events", func() {
		leader := s.eligible()
		ev := s.individualEvent()

		_, err := s.svc.CreateTeam(leader.ID, ev.ID, "")
		s.Require().ErrorIs(err, apperr.ErrNotTeamEvent)
	})

	s.Run("second create for same leader and event reveals the first", func() {
		leader := s.eligible()
		ev := s.teamEvent(2, 4)

		_, err := s.svc.CreateTeam(leader.ID, ev.ID, "First")
		s.Require().NoError(err)

		_, err = s.svc.CreateTeam(leader.ID, ev.ID, "Second")
		s.Require().ErrorIs(err, apperr.ErrAlreadyRegistered)
	})

	s.Run("unverified email is refused before anything is persisted", func() {
		leader := s.newParticipant(false, true)
		ev := s.teamEvent(2, 4)
		before, err := s.teams.ListAll("")
		s.Require().NoError(err)

		_, err = s.svc.CreateTeam(leader.ID, ev.ID, "Nope")
		s.Require().ErrorIs(err, apperr.ErrEmailUnverified)

		after, err := s.teams.ListAll("")
		s.Require().NoError(err)
		s.Len(after, len(before))
		_, err = s.teams.GetMembership(ev.ID, leader.ID)
		s.Require().ErrorIs(err, apperr.ErrNotFound)
	})

	s.Run("unpaid leader is refused", func() {
		leader := s.newParticipant(true, false)
		ev := s.teamEvent(2, 4)

		_, err := s.svc.CreateTeam(leader.ID, ev.ID, "Nope")
		s.Require().ErrorIs(err, apperr.ErrPaymentRequired)
	})
}

// --- JoinTeam ---

func (s *TeamServiceSuite) TestJoinTeam() {
	leader := s.eligible()
	ev := s.teamEvent(2, 3)
	view, err := s.svc.CreateTeam(leader.ID, ev.ID, "Hosts")
	s.Require().NoError(err)
	token := view.JoinToken

	s.Run("unknown token", func() {
		p := s.eligible()
		_, err := s.svc.JoinTeam("no-such-token", p.ID)
		s.Require().ErrorIs(err, apperr.ErrInvalidToken)
	})

	s.Run("leader joining own team", func() {
		_, err := s.svc.JoinTeam(token, leader.ID)
		s.Require().ErrorIs(err, apperr.ErrAlreadyLeader)
	})

	s.Run("join then rejoin", func() {
		p := s.eligible()
		got, err := s.svc.JoinTeam(token, p.ID)
		s.Require().NoError(err)
		s.Len(got.Members, 2)
		s.assertLeaderInMembers()

		_, err = s.svc.JoinTeam(token, p.ID)
		s.Require().ErrorIs(err, apperr.ErrAlreadyMember)
	})

	s.Run("joining a second team for the same event", func() {
		otherLeader := s.eligible()
		other, err := s.svc.CreateTeam(otherLeader.ID, ev.ID, "Rivals")
		s.Require().NoError(err)

		p := s.eligible()
		_, err = s.svc.JoinTeam(token, p.ID)
		s.Require().NoError(err)

		_, err = s.svc.JoinTeam(other.JoinToken, p.ID)
		s.Require().ErrorIs(err, apperr.ErrAlreadyRegistered)
	})

	s.Run("capacity", func() {
		// Team is now at max (leader + two joins above).
		p := s.eligible()
		_, err := s.svc.JoinTeam(token, p.ID)
		s.Require().ErrorIs(err, apperr.ErrTeamFull)
	})

	s.Run("gated participant cannot join", func() {
		p := s.newParticipant(true, false)
		_, err := s.svc.JoinTeam(token, p.ID)
		s.Require().ErrorIs(err, apperr.ErrPaymentRequired)
	})
}

// TestConcurrentJoinLastSlot races two joins for the final slot; exactly one
// may win.
func (s *TeamServiceSuite) TestConcurrentJoinLastSlot() {
	leader := s.eligible()
	ev := s.teamEvent(1, 2) // one slot besides the leader
	view, err := s.svc.CreateTeam(leader.ID, ev.ID, "Race")
	s.Require().NoError(err)

	a := s.eligible()
	b := s.eligible()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, p := range []*participant.Participant{a, b} {
		wg.Add(1)
		go func(i int, pid uint) {
			defer wg.Done()
			_, errs[i] = s.svc.JoinTeam(view.JoinToken, pid)
		}(i, p.ID)
	}
	wg.Wait()

	winners, losers := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			winners++
		default:
			s.Require().ErrorIs(err, apperr.ErrTeamFull)
			losers++
		}
	}
	s.Equal(1, winners)
	s.Equal(1, losers)

	members, err := s.teams.GetMembers(view.ID)
	s.Require().NoError(err)
	s.Len(members, 2)
}

// --- AddMemberByCode ---

func (s *TeamServiceSuite) TestAddMemberByCode() {
	leader := s.eligible()
	ev := s.teamEvent(2, 4)
	view, err := s.svc.CreateTeam(leader.ID, ev.ID, "Coders")
	s.Require().NoError(err)

	s.Run("leader adds an eligible participant", func() {
		target := s.eligible()
		got, err := s.svc.AddMemberByCode(leader.ID, view.ID, target.Code)
		s.Require().NoError(err)
		s.Len(got.Members, 2)
		s.assertLeaderInMembers()
	})

	s.Run("only the leader may add", func() {
		outsider := s.eligible()
		target := s.eligible()
		_, err := s.svc.AddMemberByCode(outsider.ID, view.ID, target.Code)
		s.Require().ErrorIs(err, apperr.ErrNotTeamLeader)
	})

	s.Run("target must satisfy the gate criteria", func() {
		unverified := s.newParticipant(false, true)
		_, err := s.svc.AddMemberByCode(leader.ID, view.ID, unverified.Code)
		s.Require().ErrorIs(err, apperr.ErrNotEligible)

		unpaid := s.newParticipant(true, false)
		_, err = s.svc.AddMemberByCode(leader.ID, view.ID, unpaid.Code)
		s.Require().ErrorIs(err, apperr.ErrNotEligible)
	})

	s.Run("unknown code", func() {
		_, err := s.svc.AddMemberByCode(leader.ID, view.ID, "AVNZZ9ZZ9")
		s.Require().ErrorIs(err, apperr.ErrNotFound)
	})

	s.Run("adding the leader", func() {
		_, err := s.svc.AddMemberByCode(leader.ID, view.ID, leader.Code)
		s.Require().ErrorIs(err, apperr.ErrAlreadyLeader)
	})
}

// TestFormationScenario walks the min=2,max=4 flow: add-by-code to 2, token
// joins to 4, fifth attempt refused.
func (s *TeamServiceSuite) TestFormationScenario() {
	leader := s.eligible()
	ev := s.teamEvent(2, 4)
	view, err := s.svc.CreateTeam(leader.ID, ev.ID, "Quartet")
	s.Require().NoError(err)

	second := s.eligible()
	got, err := s.svc.AddMemberByCode(leader.ID, view.ID, second.Code)
	s.Require().NoError(err)
	s.Len(got.Members, 2)

	third := s.eligible()
	got, err = s.svc.JoinTeam(view.JoinToken, third.ID)
	s.Require().NoError(err)
	s.Len(got.Members, 3)

	fourth := s.eligible()
	got, err = s.svc.JoinTeam(view.JoinToken, fourth.ID)
	s.Require().NoError(err)
	s.Len(got.Members, 4)

	fifth := s.eligible()
	_, err = s.svc.JoinTeam(view.JoinToken, fifth.ID)
	s.Require().ErrorIs(err, apperr.ErrTeamFull)
}

// --- Leave / Remove ---

func (s *TeamServiceSuite) TestLeaveAndRemove() {
	leader := s.eligible()
	member := s.eligible()
	ev := s.teamEvent(1, 4)
	view, err := s.svc.CreateTeam(leader.ID, ev.ID, "Splitters")
	s.Require().NoError(err)
	_, err = s.svc.JoinTeam(view.JoinToken, member.ID)
	s.Require().NoError(err)

	s.Run("leader cannot leave", func() {
		err := s.svc.LeaveTeam(leader.ID, view.ID)
		s.Require().ErrorIs(err, apperr.ErrLeaderCannotLeave)
	})

	s.Run("leader cannot be removed", func() {
		_, err := s.svc.RemoveMember(leader.ID, view.ID, leader.ID)
		s.Require().ErrorIs(err, apperr.ErrCannotRemoveLeader)
	})

	s.Run("non-leader cannot remove", func() {
		_, err := s.svc.RemoveMember(member.ID, view.ID, leader.ID)
		s.Require().ErrorIs(err, apperr.ErrNotTeamLeader)
	})

	s.Run("member leaves and is free to register again", func() {
		s.Require().NoError(s.svc.LeaveTeam(member.ID, view.ID))
		s.assertLeaderInMembers()

		// No min-size re-validation on leave: team survives below min use.
		_, err := s.svc.CreateTeam(member.ID, ev.ID, "Fresh Start")
		s.Require().NoError(err)
	})

	s.Run("leader removes a member", func() {
		target := s.eligible()
		_, err := s.svc.JoinTeam(view.JoinToken, target.ID)
		s.Require().NoError(err)

		got, err := s.svc.RemoveMember(leader.ID, view.ID, target.ID)
		s.Require().NoError(err)
		s.Len(got.Members, 1)
	})
}

// --- Delete / cascade ---

func (s *TeamServiceSuite) TestDeleteTeamCascades() {
	leader := s.eligible()
	m1 := s.eligible()
	m2 := s.eligible()
	ev := s.teamEvent(1, 4)

	view, err := s.svc.CreateTeam(leader.ID, ev.ID, "Ephemeral")
	s.Require().NoError(err)
	_, err = s.svc.JoinTeam(view.JoinToken, m1.ID)
	s.Require().NoError(err)
	_, err = s.svc.JoinTeam(view.JoinToken, m2.ID)
	s.Require().NoError(err)

	s.Run("only the leader may delete", func() {
		err := s.svc.DeleteTeam(m1.ID, view.ID)
		s.Require().ErrorIs(err, apperr.ErrNotTeamLeader)
	})

	s.Run("delete unregisters every member", func() {
		s.Require().NoError(s.svc.DeleteTeam(leader.ID, view.ID))

		_, err := s.svc.GetTeam(leader.ID, view.ID)
		s.Require().ErrorIs(err, apperr.ErrNotFound)

		// Every former member, leader included, can register afresh.
		for _, p := range []*participant.Participant{leader, m1, m2} {
			_, err := s.svc.CreateTeam(p.ID, ev.ID, "Rebuilt")
			s.Require().NoError(err, "participant %d should be unregistered", p.ID)
		}
	})
}

// --- Individual events ---

func (s *TeamServiceSuite) TestIndividualRegistration() {
	p := s.eligible()
	ev := s.individualEvent()

	s.Run("register and re-register", func() {
		view, err := s.svc.RegisterIndividual(p.ID, ev.ID)
		s.Require().NoError(err)
		s.True(view.IsIndividual)
		s.Empty(view.JoinToken)
		s.Require().Len(view.Members, 1)

		_, err = s.svc.RegisterIndividual(p.ID, ev.ID)
		s.Require().ErrorIs(err, apperr.ErrAlreadyRegistered)
	})

	s.Run("unregister makes room again", func() {
		s.Require().NoError(s.svc.UnregisterIndividual(p.ID, ev.ID))
		_, err := s.svc.RegisterIndividual(p.ID, ev.ID)
		s.Require().NoError(err)
	})

	s.Run("team events refuse individual registration", func() {
		tev := s.teamEvent(2, 4)
		_, err := s.svc.RegisterIndividual(p.ID, tev.ID)
		s.Require().ErrorIs(err, apperr.ErrNotIndividualEvent)
		s.Require().ErrorIs(s.svc.UnregisterIndividual(p.ID, tev.ID), apperr.ErrNotIndividualEvent)
	})
}

// --- Verification workflow ---

func (s *TeamServiceSuite) TestVerificationWorkflow() {
	leader := s.eligible()
	ev := s.teamEvent(2, 3)
	view, err := s.svc.CreateTeam(leader.ID, ev.ID, "Judged")
	s.Require().NoError(err)

	s.Run("verify refuses a team below min size", func() {
		_, err := s.svc.Verify(view.ID)
		s.Require().ErrorIs(err, apperr.ErrTeamSizeInvalid)
	})

	s.Run("verify succeeds once within bounds", func() {
		m := s.eligible()
		_, err := s.svc.JoinTeam(view.JoinToken, m.ID)
		s.Require().NoError(err)

		got, err := s.svc.Verify(view.ID)
		s.Require().NoError(err)
		s.Equal(StatusVerified, got.Status)
	})

	s.Run("reject and explicit re-verify", func() {
		got, err := s.svc.Reject(view.ID)
		s.Require().NoError(err)
		s.Equal(StatusRejected, got.Status)

		got, err = s.svc.Verify(view.ID)
		s.Require().NoError(err)
		s.Equal(StatusVerified, got.Status)
	})
}

// TestLeaderMembershipRepair corrupts the store directly and checks the next
// mutating operation heals the leader-in-members invariant.
func (s *TeamServiceSuite) TestLeaderMembershipRepair() {
	leader := s.eligible()
	ev := s.teamEvent(1, 4)
	view, err := s.svc.CreateTeam(leader.ID, ev.ID, "Wounded")
	s.Require().NoError(err)

	s.Require().NoError(s.teams.RemoveMember(view.ID, leader.ID))

	p := s.eligible()
	_, err = s.svc.JoinTeam(view.JoinToken, p.ID)
	s.Require().NoError(err)

	s.assertLeaderInMembers()
}

// --- Views ---

func (s *TeamServiceSuite) TestJoinTokenOnlyDisclosedToLeader() {
	leader := s.eligible()
	member := s.eligible()
	ev := s.teamEvent(1, 4)
	view, err := s.svc.CreateTeam(leader.ID, ev.ID, "Secretive")
	s.Require().NoError(err)
	_, err = s.svc.JoinTeam(view.JoinToken, member.ID)
	s.Require().NoError(err)

	asLeader, err := s.svc.GetTeam(leader.ID, view.ID)
	s.Require().NoError(err)
	s.NotEmpty(asLeader.JoinToken)

	asMember, err := s.svc.GetTeam(member.ID, view.ID)
	s.Require().NoError(err)
	s.Empty(asMember.JoinToken)
}

func (s *TeamServiceSuite) TestMyTeams() {
	p := s.eligible()
	ev1 := s.teamEvent(1, 4)
	ev2 := s.individualEvent()

	_, err := s.svc.CreateTeam(p.ID, ev1.ID, "Mine")
	s.Require().NoError(err)
	_, err = s.svc.RegisterIndividual(p.ID, ev2.ID)
	s.Require().NoError(err)

	views, err := s.svc.MyTeams(p.ID)
	s.Require().NoError(err)
	s.Len(views, 2)
}
