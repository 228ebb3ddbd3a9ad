package participant

import (
	"crypto/rand"
	"fmt"
	"regexp"

	"github.com/avensora/avensora-api/pkg/apperr"
)

const (
	// CodePrefix marks every participant code. The suffix is drawn from a
	// 36^6 space, so exhaustion is practically unreachable.
	CodePrefix    = "AVN"
	codeSuffixLen = 6
	codeAlphabet  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	// maxCodeAttempts bounds the generate-and-check retry loop. The loop
	// exists because two concurrent registrations can race to claim the same
	// random suffix: the pre-check and the insert are not atomic, so the
	// unique constraint on participants.code is the final arbiter and an
	// insert-time collision is retried the same way a pre-check hit is.
	maxCodeAttempts = 8
)

var codePattern = regexp.MustCompile(fmt.Sprintf("^%s[A-Z0-9]{%d}$", CodePrefix, codeSuffixLen))

// CodeGenerator produces collision-free participant codes.
type CodeGenerator struct {
	repo Repository
}

func NewCodeGenerator(repo Repository) *CodeGenerator {
	return &CodeGenerator{repo: repo}
}

// Generate returns a fresh code that did not exist at check time. Callers
// must still treat a duplicate-key error on insert as a collision and retry
// the whole generate-and-insert sequence.
func (g *CodeGenerator) Generate() (string, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := randomCode()
		if err != nil {
			return "", fmt.Errorf("failed to generate code: %w", err)
		}
		exists, err := g.repo.CodeExists(code)
		if err != nil {
			return "", fmt.Errorf("failed to check code uniqueness: %w", err)
		}
		if !exists {
			return code, nil
		}
	}
	return "", apperr.ErrCodeSpaceExhausted
}

// ValidFormat checks prefix, length and character class. It says nothing
// about whether the code exists.
func ValidFormat(code string) bool {
	return codePattern.MatchString(code)
}

func randomCode() (string, error) {
	buf := make([]byte, codeSuffixLen)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	suffix := make([]byte, codeSuffixLen)
	for i, b := range buf {
		suffix[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return CodePrefix + string(suffix), nil
}
