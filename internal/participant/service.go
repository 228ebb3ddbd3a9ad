package participant

import (
	"errors"

	"github.com/avensora/avensora-api/pkg/apperr"
)

// Service orchestrates participant creation: code assignment, the
// generate-and-insert retry loop, and referral crediting.
type Service struct {
	repo      Repository
	codes     *CodeGenerator
	referrals *ReferralService
}

func NewService(repo Repository) *Service {
	return &Service{
		repo:      repo,
		codes:     NewCodeGenerator(repo),
		referrals: NewReferralService(repo),
	}
}

func (s *Service) Referrals() *ReferralService {
	return s.referrals
}

// Register assigns a unique code and persists the participant. The unique
// constraint on participants.code is the final arbiter of uniqueness: an
// insert-time collision is treated exactly like a pre-check collision and
// the whole generate-and-insert sequence retries. Callers are expected to
// have pre-checked email and phone for duplicates.
func (s *Service) Register(p *Participant) error {
	referredBy, err := s.referrals.Normalize(derefOrEmpty(p.ReferredBy))
	if err != nil {
		return err
	}
	p.ReferredBy = referredBy

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := s.codes.Generate()
		if err != nil {
			return err
		}
		p.Code = code

		err = s.repo.Create(p)
		if err == nil {
			s.referrals.Record(p)
			return nil
		}
		if errors.Is(err, apperr.ErrConflict) {
			continue
		}
		return err
	}
	return apperr.ErrCodeSpaceExhausted
}

func derefOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
