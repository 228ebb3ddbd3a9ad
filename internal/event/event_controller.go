package event

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/avensora/avensora-api/pkg/responses"
)

// Controller handles event HTTP requests.
type Controller struct {
	repo Repository
}

func NewController(repo Repository) *Controller {
	return &Controller{repo: repo}
}

// ListEvents godoc
// @Summary      List all events
// @Tags         Events
// @Produce      json
// @Success      200 {object} responses.SuccessResponse{data=[]Event}
// @Router       /events [get]
func (ec *Controller) ListEvents(c *gin.Context) {
	events, err := ec.repo.List()
	if err != nil {
		responses.InternalServerError(c, "Failed to retrieve events")
		return
	}
	responses.SendSuccess(c, http.StatusOK, "", events)
}

// GetEvent godoc
// @Summary      Get an event by ID
// @Tags         Events
// @Produce      json
// @Param        event_id path uint true "Event ID"
// @Success      200 {object} responses.SuccessResponse{data=Event}
// @Failure      404 {object} responses.ErrorResponse
// @Router       /events/{event_id} [get]
func (ec *Controller) GetEvent(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("event_id"), 10, 32)
	if err != nil {
		responses.BadRequest(c, "Invalid event ID")
		return
	}
	ev, err := ec.repo.GetByID(uint(id))
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "", ev)
}

// CreateEvent godoc
// @Summary      Create an event (admin)
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        event body CreateEventRequest true "Event definition"
// @Success      201 {object} responses.SuccessResponse{data=Event}
// @Failure      409 {object} responses.ErrorResponse "Event name already exists"
// @Security     ApiKeyAuth
// @Router       /admin/events [post]
func (ec *Controller) CreateEvent(c *gin.Context) {
	var req CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ValidationFailed(c, err)
		return
	}

	ev := Event{
		Name:        req.Name,
		Description: req.Description,
		IsTeamEvent: req.IsTeamEvent,
		MinTeamSize: req.MinTeamSize,
		MaxTeamSize: req.MaxTeamSize,
	}
	if ev.MinTeamSize == 0 {
		ev.MinTeamSize = 1
	}
	if ev.MaxTeamSize == 0 {
		ev.MaxTeamSize = ev.MinTeamSize
	}
	if !ev.IsTeamEvent {
		// Individual events always carry degenerate bounds.
		ev.MinTeamSize = 1
		ev.MaxTeamSize = 1
	}

	if err := ec.repo.Create(&ev); err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusCreated, "Event created", ev)
}
