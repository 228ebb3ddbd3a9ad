package gate

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/avensora/avensora-api/internal/participant"
	"github.com/avensora/avensora-api/pkg/apperr"
)

type GateSuite struct {
	suite.Suite
	repo *participant.InMemory
	gate *Gate
}

func (s *GateSuite) SetupTest() {
	s.repo = participant.NewInMemory()
	s.gate = New(s.repo)
}

func TestGateSuite(t *testing.T) {
	suite.Run(t, new(GateSuite))
}

func (s *GateSuite) add(name string, verified, paid bool) *participant.Participant {
	p := &participant.Participant{
		Name:          name,
		Email:         name + "@x.com",
		Phone:         name,
		Code:          "AVN" + name[:1] + "00000",
		Password:      "x",
		EmailVerified: verified,
		Paid:          paid,
	}
	s.Require().NoError(s.repo.Create(p))
	return p
}

func (s *GateSuite) TestUnknownParticipant() {
	_, err := s.gate.Authorize(999)
	s.Require().ErrorIs(err, apperr.ErrUnauthenticated)
}

// TestFailureOrder verifies the gate returns the FIRST failing condition:
// identity, then email verification, then payment.
func (s *GateSuite) TestFailureOrder() {
	neither := s.add("a", false, false)
	_, err := s.gate.Authorize(neither.ID)
	s.Require().ErrorIs(err, apperr.ErrEmailUnverified, "email check comes before payment")

	unpaid := s.add("b", true, false)
	_, err = s.gate.Authorize(unpaid.ID)
	s.Require().ErrorIs(err, apperr.ErrPaymentRequired)
}

func (s *GateSuite) TestAuthorized() {
	p := s.add("c", true, true)
	got, err := s.gate.Authorize(p.ID)
	s.Require().NoError(err)
	s.Equal(p.ID, got.ID)
}

func (s *GateSuite) TestEligible() {
	s.True(Eligible(&participant.Participant{EmailVerified: true, Paid: true}))
	s.False(Eligible(&participant.Participant{EmailVerified: true, Paid: false}))
	s.False(Eligible(&participant.Participant{EmailVerified: false, Paid: true}))
}
