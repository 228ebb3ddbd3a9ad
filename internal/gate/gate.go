// Package gate evaluates a participant's eligibility before any registration
// mutation is allowed to proceed.
package gate

import (
	"errors"

	"github.com/avensora/avensora-api/internal/participant"
	"github.com/avensora/avensora-api/pkg/apperr"
)

// Gate is a read-then-classify check over the participant store. It holds no
// state and never retries.
type Gate struct {
	participants participant.Repository
}

func New(participants participant.Repository) *Gate {
	return &Gate{participants: participants}
}

// Authorize resolves the participant and returns the first failing condition
// in fixed order: unknown identity, unverified email, incomplete payment.
// Every mutating operation in the registry calls this first and refuses to
// proceed on anything but a nil error.
func (g *Gate) Authorize(participantID uint) (*participant.Participant, error) {
	p, err := g.participants.GetByID(participantID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.ErrUnauthenticated
		}
		return nil, err
	}
	if !p.EmailVerified {
		return nil, apperr.ErrEmailUnverified
	}
	if !p.Paid {
		return nil, apperr.ErrPaymentRequired
	}
	return p, nil
}

// Eligible reports whether an already-loaded participant satisfies the gate
// criteria. Used when a leader adds someone else: the target must qualify
// even though the call is authorized by the leader.
func Eligible(p *participant.Participant) bool {
	return p.EmailVerified && p.Paid
}
