// Package apperr defines the business-error taxonomy shared by all domains.
// Every error here is an expected, recoverable outcome; handlers match them
// with errors.Is and map them to stable HTTP statuses. Anything not in this
// taxonomy is treated as an internal failure.
package apperr

import (
	"errors"
	"net/http"
)

var (
	ErrUnauthenticated    = errors.New("not authenticated")
	ErrEmailUnverified    = errors.New("email not verified")
	ErrPaymentRequired    = errors.New("payment not completed")
	ErrNotTeamEvent       = errors.New("event does not support teams")
	ErrNotIndividualEvent = errors.New("event requires a team registration")
	ErrAlreadyRegistered  = errors.New("already registered for this event")
	ErrInvalidToken       = errors.New("invalid join token")
	ErrTeamFull           = errors.New("team is already full")
	ErrAlreadyMember      = errors.New("already a member of this team")
	ErrAlreadyLeader      = errors.New("already the leader of this team")
	ErrLeaderCannotLeave  = errors.New("leader cannot leave the team, delete it instead")
	ErrCannotRemoveLeader = errors.New("leader cannot be removed from the team")
	ErrNotEligible        = errors.New("participant is not eligible to be added")
	ErrNotTeamLeader      = errors.New("only the team leader may do this")
	ErrTeamSizeInvalid    = errors.New("team size outside event bounds")
	ErrNotFound           = errors.New("not found")
	ErrCodeSpaceExhausted = errors.New("participant code space exhausted")
	ErrConflict           = errors.New("conflicting concurrent write")
)

// Status maps a business error to its HTTP status code. Unknown errors map
// to 500 so storage failures never wear a business-error label.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrEmailUnverified), errors.Is(err, ErrPaymentRequired):
		return http.StatusForbidden
	case errors.Is(err, ErrNotTeamLeader):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrInvalidToken):
		return http.StatusNotFound
	case errors.Is(err, ErrAlreadyRegistered),
		errors.Is(err, ErrTeamFull),
		errors.Is(err, ErrAlreadyMember),
		errors.Is(err, ErrAlreadyLeader),
		errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrNotTeamEvent),
		errors.Is(err, ErrNotIndividualEvent),
		errors.Is(err, ErrLeaderCannotLeave),
		errors.Is(err, ErrCannotRemoveLeader),
		errors.Is(err, ErrNotEligible),
		errors.Is(err, ErrTeamSizeInvalid):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// IsBusiness reports whether err belongs to the recoverable taxonomy.
func IsBusiness(err error) bool {
	return Status(err) != http.StatusInternalServerError
}
