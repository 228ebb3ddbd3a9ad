package team

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/avensora/avensora-api/config"
	"github.com/avensora/avensora-api/internal/event"
	"github.com/avensora/avensora-api/internal/gate"
	"github.com/avensora/avensora-api/internal/middleware"
	"github.com/avensora/avensora-api/internal/participant"
	"github.com/avensora/avensora-api/pkg/notify"
)

// RegisterTeamRoutes sets up all registration and verification routes.
func RegisterTeamRoutes(router *gin.RouterGroup, db *gorm.DB, appConfig *config.Config) {
	teamRepo := NewTeamRepository(db)
	eventRepo := event.NewRepository(db)
	participantRepo := participant.NewRepository(db)
	service := NewService(teamRepo, eventRepo, participantRepo, gate.New(participantRepo), notify.NewLogDispatcher())
	controller := NewController(service)

	authRoutes := router.Group("/")
	authRoutes.Use(middleware.AuthMiddleware(appConfig.JWT.AccessTokenSecret, participant.RoleLookup(participantRepo)))
	{
		authRoutes.POST("/events/:event_id/teams", controller.CreateTeam)
		authRoutes.POST("/events/:event_id/register", controller.RegisterIndividual)
		authRoutes.DELETE("/events/:event_id/register", controller.UnregisterIndividual)

		authRoutes.POST("/teams/join", controller.JoinTeam)
		authRoutes.GET("/teams/:team_id", controller.GetTeam)
		authRoutes.DELETE("/teams/:team_id", controller.DeleteTeam)
		authRoutes.POST("/teams/:team_id/members", controller.AddMember)
		authRoutes.POST("/teams/:team_id/leave", controller.LeaveTeam)
		authRoutes.DELETE("/teams/:team_id/members/:participant_id", controller.RemoveMember)

		authRoutes.GET("/me/teams", controller.MyTeams)
	}

	adminRoutes := router.Group("/admin")
	adminRoutes.Use(middleware.AuthMiddleware(appConfig.JWT.AccessTokenSecret, participant.RoleLookup(participantRepo)))
	adminRoutes.Use(middleware.RequireRole(participant.RoleAdmin))
	{
		adminRoutes.GET("/teams", controller.AdminListTeams)
		adminRoutes.PUT("/teams/:team_id/verify", controller.VerifyTeam)
		adminRoutes.PUT("/teams/:team_id/reject", controller.RejectTeam)
	}
}
