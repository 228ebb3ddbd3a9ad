package participant

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleParticipant = "participant"
	RoleAdmin       = "admin"
)

// Participant is the identity record. Code doubles as the referral code: it
// is assigned exactly once at creation and never reused.
type Participant struct {
	gorm.Model
	Name          string     `json:"name" gorm:"not null"`
	Email         string     `json:"email" gorm:"uniqueIndex;not null"`
	Phone         string     `json:"phone" gorm:"uniqueIndex;not null"`
	Password      string     `json:"-" gorm:"not null"`
	Code          string     `json:"code" gorm:"uniqueIndex;not null"`
	College       string     `json:"college"`
	ReferredBy    *string    `json:"referred_by,omitempty" gorm:"index"`
	ReferralCount int        `json:"referral_count" gorm:"default:0"`
	EmailVerified bool       `json:"email_verified" gorm:"default:false"`
	Paid          bool       `json:"paid" gorm:"default:false"`
	Role          string     `json:"role" gorm:"default:'participant'"`
	IDCardURL     string     `json:"id_card_url"`
	VerifyToken   string     `json:"-" gorm:"index"`
	VerifyExpires *time.Time `json:"-"`
}

// --- DTOs ---

type RegisterRequest struct {
	Name         string `json:"name" binding:"required"`
	Email        string `json:"email" binding:"required,email"`
	Phone        string `json:"phone" binding:"required"`
	Password     string `json:"password" binding:"required,min=8,max=72"`
	College      string `json:"college"`
	ReferralCode string `json:"referral_code,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"john@example.com"`
	Password string `json:"password" binding:"required" example:"password123"`
}

type ChangePasswordRequest struct {
	OldPassword     string `json:"old_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8,max=72"`
	PasswordConfirm string `json:"password_confirm" binding:"required,eqfield=NewPassword"`
}

type ResendVerificationRequest struct {
	Email string `json:"email" binding:"required,email" example:"john@example.com"`
}

type AuthResponse struct {
	AccessToken string              `json:"access_token"`
	Participant ParticipantResponse `json:"participant"`
}

type ParticipantResponse struct {
	ID            uint      `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	Code          string    `json:"code"`
	College       string    `json:"college"`
	ReferredBy    *string   `json:"referred_by,omitempty"`
	ReferralCount int       `json:"referral_count"`
	EmailVerified bool      `json:"email_verified"`
	Paid          bool      `json:"paid"`
	IDCardURL     string    `json:"id_card_url,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// ReferralStats is the read model for a referral code's standing. Count is
// always recomputed from raw referred_by values, never the cached counter.
type ReferralStats struct {
	Code         string                `json:"code"`
	Count        int64                 `json:"count"`
	Participants []ParticipantResponse `json:"referred_participants"`
}

func FilterParticipantRecord(p *Participant) ParticipantResponse {
	return ParticipantResponse{
		ID:            p.ID,
		Name:          p.Name,
		Email:         p.Email,
		Phone:         p.Phone,
		Code:          p.Code,
		College:       p.College,
		ReferredBy:    p.ReferredBy,
		ReferralCount: p.ReferralCount,
		EmailVerified: p.EmailVerified,
		Paid:          p.Paid,
		IDCardURL:     p.IDCardURL,
		CreatedAt:     p.CreatedAt,
	}
}
