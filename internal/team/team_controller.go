package team

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/avensora/avensora-api/internal/middleware"
	"github.com/avensora/avensora-api/pkg/responses"
)

// Controller handles team/registration HTTP requests. All business decisions
// live in the service; handlers only parse, delegate, and map errors.
type Controller struct {
	service *Service
}

func NewController(service *Service) *Controller {
	return &Controller{service: service}
}

func currentParticipantID(c *gin.Context) (uint, bool) {
	id, err := middleware.GetParticipantIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, err.Error())
		return 0, false
	}
	return id, true
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		responses.BadRequest(c, "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// CreateTeam godoc
// @Summary      Create a team for an event
// @Description  Registers the caller as leader and returns the join token.
// @Tags         Teams
// @Accept       json
// @Produce      json
// @Param        event_id path uint true "Event ID"
// @Param        team body CreateTeamRequest true "Team details"
// @Success      201 {object} responses.SuccessResponse{data=TeamView}
// @Failure      403 {object} responses.ErrorResponse "Email unverified or payment incomplete"
// @Failure      409 {object} responses.ErrorResponse "Already registered for this event"
// @Failure      422 {object} responses.ErrorResponse "Event does not support teams"
// @Security     ApiKeyAuth
// @Router       /events/{event_id}/teams [post]
func (tc *Controller) CreateTeam(c *gin.Context) {
	participantID, ok := currentParticipantID(c)
	if !ok {
		return
	}
	eventID, ok := parseIDParam(c, "event_id")
	if !ok {
		return
	}
	var req CreateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ValidationFailed(c, err)
		return
	}

	view, err := tc.service.CreateTeam(participantID, eventID, req.Name)
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusCreated, "Team created successfully", view)
}

// RegisterIndividual godoc
// @Summary      Register for an individual event
// @Tags         Teams
// @Produce      json
// @Param        event_id path uint true "Event ID"
// @Success      201 {object} responses.SuccessResponse{data=TeamView}
// @Failure      409 {object} responses.ErrorResponse "Already registered"
// @Security     ApiKeyAuth
// @Router       /events/{event_id}/register [post]
func (tc *Controller) RegisterIndividual(c *gin.Context) {
	participantID, ok := currentParticipantID(c)
	if !ok {
		return
	}
	eventID, ok := parseIDParam(c, "event_id")
	if !ok {
		return
	}

	view, err := tc.service.RegisterIndividual(participantID, eventID)
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusCreated, "Registered successfully", view)
}

// UnregisterIndividual godoc
// @Summary      Unregister from an individual event
// @Tags         Teams
// @Produce      json
// @Param        event_id path uint true "Event ID"
// @Success      200 {object} responses.SuccessResponse
// @Security     ApiKeyAuth
// @Router       /events/{event_id}/register [delete]
func (tc *Controller) UnregisterIndividual(c *gin.Context) {
	participantID, ok := currentParticipantID(c)
	if !ok {
		return
	}
	eventID, ok := parseIDParam(c, "event_id")
	if !ok {
		return
	}

	if err := tc.service.UnregisterIndividual(participantID, eventID); err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Unregistered successfully", nil)
}

// JoinTeam godoc
// @Summary      Join a team using its join token
// @Tags         Teams
// @Accept       json
// @Produce      json
// @Param        request body JoinTeamRequest true "Join token"
// @Success      200 {object} responses.SuccessResponse{data=TeamView}
// @Failure      404 {object} responses.ErrorResponse "Invalid token"
// @Failure      409 {object} responses.ErrorResponse "Team full or already registered"
// @Security     ApiKeyAuth
// @Router       /teams/join [post]
func (tc *Controller) JoinTeam(c *gin.Context) {
	participantID, ok := currentParticipantID(c)
	if !ok {
		return
	}
	var req JoinTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ValidationFailed(c, err)
		return
	}

	view, err := tc.service.JoinTeam(req.Token, participantID)
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Joined team successfully", view)
}

// AddMember godoc
// @Summary      Add a member by participant code (leader only)
// @Tags         Teams
// @Accept       json
// @Produce      json
// @Param        team_id path uint true "Team ID"
// @Param        request body AddMemberRequest true "Participant code"
// @Success      200 {object} responses.SuccessResponse{data=TeamView}
// @Failure      422 {object} responses.ErrorResponse "Target not eligible"
// @Security     ApiKeyAuth
// @Router       /teams/{team_id}/members [post]
func (tc *Controller) AddMember(c *gin.Context) {
	participantID, ok := currentParticipantID(c)
	if !ok {
		return
	}
	teamID, ok := parseIDParam(c, "team_id")
	if !ok {
		return
	}
	var req AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ValidationFailed(c, err)
		return
	}

	view, err := tc.service.AddMemberByCode(participantID, teamID, req.Code)
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Member added successfully", view)
}

// LeaveTeam godoc
// @Summary      Leave a team
// @Tags         Teams
// @Produce      json
// @Param        team_id path uint true "Team ID"
// @Success      200 {object} responses.SuccessResponse
// @Failure      422 {object} responses.ErrorResponse "Leader cannot leave"
// @Security     ApiKeyAuth
// @Router       /teams/{team_id}/leave [post]
func (tc *Controller) LeaveTeam(c *gin.Context) {
	participantID, ok := currentParticipantID(c)
	if !ok {
		return
	}
	teamID, ok := parseIDParam(c, "team_id")
	if !ok {
		return
	}

	if err := tc.service.LeaveTeam(participantID, teamID); err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Left team successfully", nil)
}

// RemoveMember godoc
// @Summary      Remove a member (leader only)
// @Tags         Teams
// @Produce      json
// @Param        team_id path uint true "Team ID"
// @Param        participant_id path uint true "Participant ID"
// @Success      200 {object} responses.SuccessResponse{data=TeamView}
// @Failure      422 {object} responses.ErrorResponse "Cannot remove leader"
// @Security     ApiKeyAuth
// @Router       /teams/{team_id}/members/{participant_id} [delete]
func (tc *Controller) RemoveMember(c *gin.Context) {
	participantID, ok := currentParticipantID(c)
	if !ok {
		return
	}
	teamID, ok := parseIDParam(c, "team_id")
	if !ok {
		return
	}
	targetID, ok := parseIDParam(c, "participant_id")
	if !ok {
		return
	}

	view, err := tc.service.RemoveMember(participantID, teamID, targetID)
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Member removed successfully", view)
}

// DeleteTeam godoc
// @Summary      Delete a team (leader only)
// @Description  Deleting the team unregisters every member, leader included, from the event.
// @Tags         Teams
// @Produce      json
// @Param        team_id path uint true "Team ID"
// @Success      200 {object} responses.SuccessResponse
// @Security     ApiKeyAuth
// @Router       /teams/{team_id} [delete]
func (tc *Controller) DeleteTeam(c *gin.Context) {
	participantID, ok := currentParticipantID(c)
	if !ok {
		return
	}
	teamID, ok := parseIDParam(c, "team_id")
	if !ok {
		return
	}

	if err := tc.service.DeleteTeam(participantID, teamID); err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Team deleted successfully", nil)
}

// GetTeam godoc
// @Summary      Get a team by ID
// @Tags         Teams
// @Produce      json
// @Param        team_id path uint true "Team ID"
// @Success      200 {object} responses.SuccessResponse{data=TeamView}
// @Security     ApiKeyAuth
// @Router       /teams/{team_id} [get]
func (tc *Controller) GetTeam(c *gin.Context) {
	participantID, ok := currentParticipantID(c)
	if !ok {
		return
	}
	teamID, ok := parseIDParam(c, "team_id")
	if !ok {
		return
	}

	view, err := tc.service.GetTeam(participantID, teamID)
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "", view)
}

// MyTeams godoc
// @Summary      List the caller's registrations
// @Tags         Teams
// @Produce      json
// @Success      200 {object} responses.SuccessResponse{data=[]TeamView}
// @Security     ApiKeyAuth
// @Router       /me/teams [get]
func (tc *Controller) MyTeams(c *gin.Context) {
	participantID, ok := currentParticipantID(c)
	if !ok {
		return
	}

	views, err := tc.service.MyTeams(participantID)
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "", views)
}

// AdminListTeams godoc
// @Summary      List all teams (admin)
// @Tags         Admin
// @Produce      json
// @Param        status query string false "Filter by status (unverified|verified|rejected)"
// @Success      200 {object} responses.SuccessResponse{data=[]TeamView}
// @Security     ApiKeyAuth
// @Router       /admin/teams [get]
func (tc *Controller) AdminListTeams(c *gin.Context) {
	views, err := tc.service.ListTeams(c.Query("status"))
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "", views)
}

// VerifyTeam godoc
// @Summary      Verify a registration (admin)
// @Description  The sole enforcement point for the event's team-size bounds.
// @Tags         Admin
// @Produce      json
// @Param        team_id path uint true "Team ID"
// @Success      200 {object} responses.SuccessResponse{data=TeamView}
// @Failure      422 {object} responses.ErrorResponse "Team size outside event bounds"
// @Security     ApiKeyAuth
// @Router       /admin/teams/{team_id}/verify [put]
func (tc *Controller) VerifyTeam(c *gin.Context) {
	teamID, ok := parseIDParam(c, "team_id")
	if !ok {
		return
	}

	view, err := tc.service.Verify(teamID)
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Team verified", view)
}

// RejectTeam godoc
// @Summary      Reject a registration (admin)
// @Tags         Admin
// @Produce      json
// @Param        team_id path uint true "Team ID"
// @Success      200 {object} responses.SuccessResponse{data=TeamView}
// @Security     ApiKeyAuth
// @Router       /admin/teams/{team_id}/reject [put]
func (tc *Controller) RejectTeam(c *gin.Context) {
	teamID, ok := parseIDParam(c, "team_id")
	if !ok {
		return
	}

	view, err := tc.service.Reject(teamID)
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Team rejected", view)
}
