package participant

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/avensora/avensora-api/config"
	"github.com/avensora/avensora-api/internal/middleware"
	"github.com/avensora/avensora-api/pkg/apperr"
	"github.com/avensora/avensora-api/pkg/objectstore"
	"github.com/avensora/avensora-api/pkg/responses"
	"github.com/avensora/avensora-api/pkg/token"
	"github.com/avensora/avensora-api/utils"
)

const verifyTokenExpiry = 24 * time.Hour

// Controller handles participant HTTP requests.
type Controller struct {
	repo    Repository
	service *Service
	config  *config.Config
	store   objectstore.Store
}

func NewController(repo Repository, service *Service, cfg *config.Config, store objectstore.Store) *Controller {
	return &Controller{
		repo:    repo,
		service: service,
		config:  cfg,
		store:   store,
	}
}

// sendVerificationEmail simulates sending an email. Replace with the actual
// email service.
func (pc *Controller) sendVerificationEmail(to, verifyToken string) error {
	link := fmt.Sprintf("%s/verify-email?token=%s", pc.config.App.FrontendURL, verifyToken)
	log.Printf("SIMULATING: Sending verification email to %s with link %s", to, link)
	return nil
}

// Register godoc
// @Summary      Register a new participant
// @Description  Creates a participant, assigns a unique referral code, and credits the referrer if a valid referral code was supplied.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        participant body RegisterRequest true "Registration details"
// @Success      201 {object} responses.SuccessResponse{data=AuthResponse}
// @Failure      400 {object} responses.ErrorResponse "Validation error"
// @Failure      409 {object} responses.ErrorResponse "Email or phone already registered"
// @Router       /auth/register [post]
func (pc *Controller) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ValidationFailed(c, err)
		return
	}

	// Pre-checks give friendly errors; the unique constraints remain the
	// final arbiter under concurrency.
	if _, err := pc.repo.GetByEmail(strings.ToLower(req.Email)); !errors.Is(err, apperr.ErrNotFound) {
		responses.SendError(c, http.StatusConflict, "Participant with this email already exists")
		return
	}
	if _, err := pc.repo.GetByPhone(req.Phone); !errors.Is(err, apperr.ErrNotFound) {
		responses.SendError(c, http.StatusConflict, "Participant with this phone number already exists")
		return
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		responses.InternalServerError(c, "Error hashing password")
		return
	}

	verifyToken := utils.GenerateRandomToken(32)
	verifyExpires := time.Now().Add(verifyTokenExpiry)

	p := &Participant{
		Name:          req.Name,
		Email:         strings.ToLower(req.Email),
		Phone:         req.Phone,
		Password:      hashedPassword,
		College:       req.College,
		Role:          RoleParticipant,
		VerifyToken:   verifyToken,
		VerifyExpires: &verifyExpires,
	}
	if req.ReferralCode != "" {
		code := strings.ToUpper(strings.TrimSpace(req.ReferralCode))
		p.ReferredBy = &code
	}

	if err := pc.service.Register(p); err != nil {
		responses.SendAppError(c, err)
		return
	}

	if err := pc.sendVerificationEmail(p.Email, verifyToken); err != nil {
		log.Printf("participant: failed to send verification email to %s: %v", p.Email, err)
	}

	accessToken, err := token.GenerateJWT(p.ID, p.Role, pc.config.JWT.AccessTokenSecret, pc.config.JWT.AccessTokenExpiryMinutes)
	if err != nil {
		responses.InternalServerError(c, "Token generation failed")
		return
	}

	responses.SendSuccess(c, http.StatusCreated, "Registered successfully, please verify your email", AuthResponse{
		AccessToken: accessToken,
		Participant: FilterParticipantRecord(p),
	})
}

// Login godoc
// @Summary      Log in
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        credentials body LoginRequest true "Login credentials"
// @Success      200 {object} responses.SuccessResponse{data=AuthResponse}
// @Failure      401 {object} responses.ErrorResponse "Invalid credentials"
// @Router       /auth/login [post]
func (pc *Controller) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ValidationFailed(c, err)
		return
	}

	p, err := pc.repo.GetByEmail(strings.ToLower(req.Email))
	if err != nil || !utils.CheckPassword(p.Password, req.Password) {
		responses.Unauthorized(c, "Invalid email or password")
		return
	}

	accessToken, err := token.GenerateJWT(p.ID, p.Role, pc.config.JWT.AccessTokenSecret, pc.config.JWT.AccessTokenExpiryMinutes)
	if err != nil {
		responses.InternalServerError(c, "Token generation failed")
		return
	}

	responses.SendSuccess(c, http.StatusOK, "Logged in successfully", AuthResponse{
		AccessToken: accessToken,
		Participant: FilterParticipantRecord(p),
	})
}

// Me godoc
// @Summary      Get the authenticated participant's profile
// @Tags         Auth
// @Produce      json
// @Success      200 {object} responses.SuccessResponse{data=ParticipantResponse}
// @Security     ApiKeyAuth
// @Router       /auth/me [get]
func (pc *Controller) Me(c *gin.Context) {
	participantID, err := middleware.GetParticipantIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, err.Error())
		return
	}
	p, err := pc.repo.GetByID(participantID)
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "", FilterParticipantRecord(p))
}

// VerifyEmail godoc
// @Summary      Verify email address
// @Description  Consumes the token from the verification link.
// @Tags         Auth
// @Produce      json
// @Param        token query string true "Verification token"
// @Success      200 {object} responses.SuccessResponse
// @Failure      400 {object} responses.ErrorResponse "Invalid or expired token"
// @Router       /auth/verify-email [get]
func (pc *Controller) VerifyEmail(c *gin.Context) {
	tok := c.Query("token")
	if tok == "" {
		responses.BadRequest(c, "Verification token is required")
		return
	}

	p, err := pc.repo.GetByVerifyToken(tok)
	if err != nil || p.VerifyExpires == nil || p.VerifyExpires.Before(time.Now()) {
		responses.BadRequest(c, "Invalid or expired verification token")
		return
	}

	p.EmailVerified = true
	p.VerifyToken = ""
	p.VerifyExpires = nil
	if err := pc.repo.Update(p); err != nil {
		responses.InternalServerError(c, "Failed to verify email")
		return
	}

	responses.SendSuccess(c, http.StatusOK, "Email verified successfully", nil)
}

// ResendVerification godoc
// @Summary      Resend the verification email
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request body ResendVerificationRequest true "Email"
// @Success      200 {object} responses.SuccessResponse
// @Router       /auth/resend-verification [post]
func (pc *Controller) ResendVerification(c *gin.Context) {
	var req ResendVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ValidationFailed(c, err)
		return
	}

	p, err := pc.repo.GetByEmail(strings.ToLower(req.Email))
	if err != nil {
		// Do not reveal whether the address exists.
		responses.SendSuccess(c, http.StatusOK, "If the email is registered, a verification link has been sent", nil)
		return
	}
	if p.EmailVerified {
		responses.BadRequest(c, "Email is already verified")
		return
	}

	p.VerifyToken = utils.GenerateRandomToken(32)
	expires := time.Now().Add(verifyTokenExpiry)
	p.VerifyExpires = &expires
	if err := pc.repo.Update(p); err != nil {
		responses.InternalServerError(c, "Failed to refresh verification token")
		return
	}
	if err := pc.sendVerificationEmail(p.Email, p.VerifyToken); err != nil {
		log.Printf("participant: failed to resend verification email to %s: %v", p.Email, err)
	}

	responses.SendSuccess(c, http.StatusOK, "If the email is registered, a verification link has been sent", nil)
}

// ChangePassword godoc
// @Summary      Change password
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request body ChangePasswordRequest true "Old and new password"
// @Success      200 {object} responses.SuccessResponse
// @Security     ApiKeyAuth
// @Router       /auth/change-password [post]
func (pc *Controller) ChangePassword(c *gin.Context) {
	participantID, err := middleware.GetParticipantIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, err.Error())
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ValidationFailed(c, err)
		return
	}

	p, err := pc.repo.GetByID(participantID)
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	if !utils.CheckPassword(p.Password, req.OldPassword) {
		responses.Unauthorized(c, "Old password is incorrect")
		return
	}

	hashed, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		responses.InternalServerError(c, "Error hashing password")
		return
	}
	p.Password = hashed
	if err := pc.repo.Update(p); err != nil {
		responses.InternalServerError(c, "Failed to update password")
		return
	}

	responses.SendSuccess(c, http.StatusOK, "Password changed successfully", nil)
}

// UploadIDCard godoc
// @Summary      Upload the participant's ID card
// @Description  Stores the file through the object store and keeps only the returned URL.
// @Tags         Auth
// @Accept       multipart/form-data
// @Produce      json
// @Param        id_card formData file true "ID card image"
// @Success      200 {object} responses.SuccessResponse{data=ParticipantResponse}
// @Security     ApiKeyAuth
// @Router       /auth/me/id-card [put]
func (pc *Controller) UploadIDCard(c *gin.Context) {
	participantID, err := middleware.GetParticipantIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, err.Error())
		return
	}

	fileHeader, err := c.FormFile("id_card")
	if err != nil {
		responses.BadRequest(c, "id_card file is required")
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		responses.BadRequest(c, "Could not read uploaded file")
		return
	}
	defer f.Close()

	url, err := pc.store.Save(fileHeader.Filename, f)
	if err != nil {
		responses.InternalServerError(c, "Failed to store file")
		return
	}

	p, err := pc.repo.GetByID(participantID)
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	p.IDCardURL = url
	if err := pc.repo.Update(p); err != nil {
		responses.InternalServerError(c, "Failed to update profile")
		return
	}

	responses.SendSuccess(c, http.StatusOK, "ID card uploaded", FilterParticipantRecord(p))
}

// ReferralStats godoc
// @Summary      Referral statistics for a code
// @Description  Returns the recomputed referral count and referred participants.
// @Tags         Referrals
// @Produce      json
// @Param        code path string true "Referral code"
// @Success      200 {object} responses.SuccessResponse{data=ReferralStats}
// @Failure      404 {object} responses.ErrorResponse "Unknown code"
// @Router       /referrals/{code}/stats [get]
func (pc *Controller) ReferralStats(c *gin.Context) {
	code := strings.ToUpper(c.Param("code"))
	stats, err := pc.service.Referrals().Stats(code)
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "", stats)
}

// ApprovePayment godoc
// @Summary      Mark a participant's payment as completed (admin)
// @Description  The out-of-band payment verification touchpoint: flips the paid flag the access gate reads.
// @Tags         Admin
// @Produce      json
// @Param        id path uint true "Participant ID"
// @Success      200 {object} responses.SuccessResponse{data=ParticipantResponse}
// @Security     ApiKeyAuth
// @Router       /admin/participants/{id}/payment [put]
func (pc *Controller) ApprovePayment(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		responses.BadRequest(c, "Invalid participant ID")
		return
	}

	p, err := pc.repo.GetByID(uint(id))
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	p.Paid = true
	if err := pc.repo.Update(p); err != nil {
		responses.InternalServerError(c, "Failed to update participant")
		return
	}

	responses.SendSuccess(c, http.StatusOK, "Payment marked as completed", FilterParticipantRecord(p))
}

// RecountReferrals godoc
// @Summary      Converge a cached referral counter (admin)
// @Tags         Admin
// @Produce      json
// @Param        code path string true "Referral code"
// @Success      200 {object} responses.SuccessResponse
// @Security     ApiKeyAuth
// @Router       /admin/referrals/{code}/recount [post]
func (pc *Controller) RecountReferrals(c *gin.Context) {
	code := strings.ToUpper(c.Param("code"))
	count, err := pc.service.Referrals().Recount(code)
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Referral counter recomputed", gin.H{"code": code, "count": count})
}
