package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/avensora/avensora-api/pkg/token"
)

const (
	AuthParticipantIDKey = "auth_participant_id"
	AuthRoleKey          = "auth_role"
)

// RoleLookup resolves a participant ID to its current role. The middleware
// depends on this contract instead of the participant package, so domain
// packages can import the middleware without a cycle.
type RoleLookup func(id uint) (string, error)

// AuthMiddleware validates the bearer token and confirms the participant
// still exists. The looked-up role, not the token claim, is what gets stored
// in context.
func AuthMiddleware(jwtSecret string, lookup RoleLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			return
		}

		bearerToken := strings.Split(authHeader, " ")
		if len(bearerToken) != 2 || strings.ToLower(bearerToken[0]) != "bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid Authorization header format. Expected: Bearer <token>"})
			return
		}

		claims, err := token.ValidateJWT(bearerToken[1], jwtSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token: " + err.Error()})
			return
		}

		role, err := lookup(claims.ParticipantID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Participant not found or inactive"})
			return
		}

		c.Set(AuthParticipantIDKey, claims.ParticipantID)
		c.Set(AuthRoleKey, role)
		c.Next()
	}
}

// GetParticipantIDFromContext extracts the participant ID from the context.
func GetParticipantIDFromContext(c *gin.Context) (uint, error) {
	v, exists := c.Get(AuthParticipantIDKey)
	if !exists {
		return 0, errors.New("participant ID not found in context")
	}

	id, ok := v.(uint)
	if !ok {
		return 0, fmt.Errorf("participant ID has unexpected type: %T", v)
	}

	return id, nil
}
