package participant

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/avensora/avensora-api/pkg/apperr"
)

type ReferralSuite struct {
	suite.Suite
	repo *InMemory
	svc  *Service
}

func (s *ReferralSuite) SetupTest() {
	s.repo = NewInMemory()
	s.svc = NewService(s.repo)
}

func TestReferralSuite(t *testing.T) {
	suite.Run(t, new(ReferralSuite))
}

func (s *ReferralSuite) register(name string, referredBy string) *Participant {
	p := &Participant{
		Name:     name,
		Email:    name + "@x.com",
		Phone:    name,
		Password: "x",
	}
	if referredBy != "" {
		p.ReferredBy = &referredBy
	}
	s.Require().NoError(s.svc.Register(p))
	return p
}

func (s *ReferralSuite) TestCountsConvergeAndExcludeBadCodes() {
	referrer := s.register("ambassador", "")

	const k = 4
	for i := 0; i < k; i++ {
		s.register(fmt.Sprintf("good%d", i), referrer.Code)
	}
	// Bad referral codes must not fail the signup, and must not count.
	badFormat := s.register("badformat", "not-a-code")
	nonexistent := s.register("ghostref", "AVNZZ9ZZ9")

	s.Nil(badFormat.ReferredBy, "malformed code should be dropped")
	s.Nil(nonexistent.ReferredBy, "nonexistent code should be dropped")

	stats, err := s.svc.Referrals().Stats(referrer.Code)
	s.Require().NoError(err)
	s.EqualValues(k, stats.Count)
	s.Len(stats.Participants, k)

	// The cached counter converged too.
	stored, err := s.repo.GetByCode(referrer.Code)
	s.Require().NoError(err)
	s.Equal(k, stored.ReferralCount)
}

func (s *ReferralSuite) TestStatsUnknownCode() {
	_, err := s.svc.Referrals().Stats("AVNABC123")
	s.Require().ErrorIs(err, apperr.ErrNotFound)

	_, err = s.svc.Referrals().Stats("garbage")
	s.Require().ErrorIs(err, apperr.ErrNotFound)
}

func (s *ReferralSuite) TestRecountRepairsDrift() {
	referrer := s.register("ambassador", "")
	for i := 0; i < 3; i++ {
		s.register(fmt.Sprintf("ref%d", i), referrer.Code)
	}

	// Simulate the crash window between insert and increment.
	s.Require().NoError(s.repo.SetReferralCount(referrer.Code, 1))

	count, err := s.svc.Referrals().Recount(referrer.Code)
	s.Require().NoError(err)
	s.EqualValues(3, count)

	stored, err := s.repo.GetByCode(referrer.Code)
	s.Require().NoError(err)
	s.Equal(3, stored.ReferralCount)
}
