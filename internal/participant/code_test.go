package participant

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/avensora/avensora-api/pkg/apperr"
)

type CodeGeneratorSuite struct {
	suite.Suite
	repo *InMemory
	gen  *CodeGenerator
}

func (s *CodeGeneratorSuite) SetupTest() {
	s.repo = NewInMemory()
	s.gen = NewCodeGenerator(s.repo)
}

func TestCodeGeneratorSuite(t *testing.T) {
	suite.Run(t, new(CodeGeneratorSuite))
}

func (s *CodeGeneratorSuite) TestValidFormat() {
	cases := []struct {
		code  string
		valid bool
	}{
		{"AVNABC123", true},
		{"AVN000000", true},
		{"AVNZZZZZZ", true},
		{"avnabc123", false}, // lowercase
		{"XYZABC123", false}, // wrong prefix
		{"AVNABC12", false},  // too short
		{"AVNABC1234", false},
		{"AVNABC-12", false}, // bad character class
		{"", false},
	}
	for _, tc := range cases {
		s.Equal(tc.valid, ValidFormat(tc.code), "code %q", tc.code)
	}
}

func (s *CodeGeneratorSuite) TestGenerateProducesValidUniqueCodes() {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code, err := s.gen.Generate()
		s.Require().NoError(err)
		s.True(ValidFormat(code))
		s.False(seen[code], "generated duplicate %s", code)
		seen[code] = true

		// Claim the code so subsequent pre-checks see it.
		s.Require().NoError(s.repo.Create(&Participant{
			Name: "p", Email: code + "@x.com", Phone: code, Code: code, Password: "x",
		}))
	}
}

// saturatedRepo reports every candidate as taken, simulating a saturated
// code space.
type saturatedRepo struct {
	*InMemory
}

func (r *saturatedRepo) CodeExists(string) (bool, error) { return true, nil }

func (s *CodeGeneratorSuite) TestGenerateExhaustion() {
	gen := NewCodeGenerator(&saturatedRepo{NewInMemory()})
	_, err := gen.Generate()
	s.Require().ErrorIs(err, apperr.ErrCodeSpaceExhausted)
}

// conflictingRepo fails the first N inserts with a unique-constraint
// conflict, emulating a concurrent registration claiming the same suffix
// between pre-check and insert.
type conflictingRepo struct {
	*InMemory
	failures int
}

func (r *conflictingRepo) Create(p *Participant) error {
	if r.failures > 0 {
		r.failures--
		return apperr.ErrConflict
	}
	return r.InMemory.Create(p)
}

func (s *CodeGeneratorSuite) TestRegisterRetriesInsertTimeCollision() {
	repo := &conflictingRepo{InMemory: NewInMemory(), failures: 2}
	svc := NewService(repo)

	p := &Participant{Name: "Asha", Email: "asha@x.com", Phone: "1", Password: "x"}
	s.Require().NoError(svc.Register(p))
	s.True(ValidFormat(p.Code))

	stored, err := repo.GetByEmail("asha@x.com")
	s.Require().NoError(err)
	s.Equal(p.Code, stored.Code)
}

func (s *CodeGeneratorSuite) TestRegisterGivesUpAfterPersistentConflicts() {
	repo := &conflictingRepo{InMemory: NewInMemory(), failures: 1 << 20}
	svc := NewService(repo)

	err := svc.Register(&Participant{Name: "Asha", Email: "asha@x.com", Phone: "1", Password: "x"})
	s.Require().ErrorIs(err, apperr.ErrCodeSpaceExhausted)
}
