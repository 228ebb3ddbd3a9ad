package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestGenerateAndValidate(t *testing.T) {
	tok, err := GenerateJWT(42, "participant", testSecret, 15)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	claims, err := ValidateJWT(tok, testSecret)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.ParticipantID)
	assert.Equal(t, "participant", claims.Role)
	assert.Equal(t, "avensora-api", claims.Issuer)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	tok, err := GenerateJWT(42, "participant", testSecret, 15)
	require.NoError(t, err)

	_, err = ValidateJWT(tok, "other-secret")
	assert.Error(t, err)
}

func TestValidateRejectsExpired(t *testing.T) {
	tok, err := GenerateJWT(42, "participant", testSecret, -1)
	require.NoError(t, err)

	_, err = ValidateJWT(tok, testSecret)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expired")
}

func TestValidateRejectsZeroParticipantID(t *testing.T) {
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = ValidateJWT(tok, testSecret)
	assert.Error(t, err)
}

func TestGenerateRequiresSecret(t *testing.T) {
	_, err := GenerateJWT(42, "participant", "", 15)
	assert.Error(t, err)
	_, err = ValidateJWT("x", "")
	assert.Error(t, err)
}
