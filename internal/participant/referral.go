package participant

import (
	"errors"
	"log"

	"github.com/avensora/avensora-api/pkg/apperr"
)

// ReferralService tracks referral relationships. The cached counter on the
// referrer is a fast-read convenience; the raw referred_by column is the
// source of truth and Recount converges the cache to it.
type ReferralService struct {
	repo Repository
}

func NewReferralService(repo Repository) *ReferralService {
	return &ReferralService{repo: repo}
}

// Normalize validates a referral code for a new signup. A missing, malformed
// or nonexistent code is dropped rather than failing the signup: registration
// degrades gracefully on a bad referral.
func (s *ReferralService) Normalize(code string) (*string, error) {
	if code == "" {
		return nil, nil
	}
	if !ValidFormat(code) {
		return nil, nil
	}
	if _, err := s.repo.GetByCode(code); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &code, nil
}

// Record credits the referrer after the referred participant has been
// created. The increment is not transactional with the insert; a crash in
// between is an accepted inconsistency window that Recount repairs.
func (s *ReferralService) Record(p *Participant) {
	if p.ReferredBy == nil {
		return
	}
	if err := s.repo.IncrementReferralCount(*p.ReferredBy); err != nil {
		log.Printf("referral: failed to credit %s for participant %d: %v", *p.ReferredBy, p.ID, err)
	}
}

// Stats recomputes the true referral count and referred participants for a
// code. It never trusts the cached counter.
func (s *ReferralService) Stats(code string) (*ReferralStats, error) {
	if !ValidFormat(code) {
		return nil, apperr.ErrNotFound
	}
	if _, err := s.repo.GetByCode(code); err != nil {
		return nil, err
	}

	count, err := s.repo.CountReferred(code)
	if err != nil {
		return nil, err
	}
	referred, err := s.repo.ListReferred(code)
	if err != nil {
		return nil, err
	}

	stats := &ReferralStats{Code: code, Count: count}
	for i := range referred {
		stats.Participants = append(stats.Participants, FilterParticipantRecord(&referred[i]))
	}
	return stats, nil
}

// Recount rewrites the cached counter from the true count, converging any
// drift left by crashes between insert and increment.
func (s *ReferralService) Recount(code string) (int64, error) {
	count, err := s.repo.CountReferred(code)
	if err != nil {
		return 0, err
	}
	if err := s.repo.SetReferralCount(code, int(count)); err != nil {
		return 0, err
	}
	return count, nil
}
