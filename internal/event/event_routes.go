package event

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/avensora/avensora-api/config"
	"github.com/avensora/avensora-api/internal/middleware"
	"github.com/avensora/avensora-api/internal/participant"
)

// RegisterEventRoutes sets up the public catalogue and admin event routes.
func RegisterEventRoutes(router *gin.RouterGroup, db *gorm.DB, appConfig *config.Config) {
	repo := NewRepository(db)
	controller := NewController(repo)
	participantRepo := participant.NewRepository(db)

	router.GET("/events", controller.ListEvents)
	router.GET("/events/:event_id", controller.GetEvent)

	adminRoutes := router.Group("/admin")
	adminRoutes.Use(middleware.AuthMiddleware(appConfig.JWT.AccessTokenSecret, participant.RoleLookup(participantRepo)))
	adminRoutes.Use(middleware.RequireRole(participant.RoleAdmin))
	{
		adminRoutes.POST("/events", controller.CreateEvent)
	}
}
