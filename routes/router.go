package routes

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/avensora/avensora-api/config"
	"github.com/avensora/avensora-api/internal/event"
	"github.com/avensora/avensora-api/internal/participant"
	"github.com/avensora/avensora-api/internal/team"
)

func SetupRoutes(db *gorm.DB, appConfig *config.Config) *gin.Engine {
	r := gin.Default()
	r.Use(cors.Default()) // allows all origins, GET/POST/PUT

	r.Static("/public", "./public")

	// Welcome page
	r.GET("/", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(`
			<html>
				<head><title>Avensora</title></head>
				<body style="text-align:center; margin-top: 40px;">
					<h1>Avensora Registration API 🎪</h1>
					<p><a href="/swagger/index.html">API docs</a></p>
				</body>
			</html>
		`))
	})

	// Swagger route
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API routes
	api := r.Group("/api")
	participant.RegisterParticipantRoutes(api, db, appConfig)
	event.RegisterEventRoutes(api, db, appConfig)
	team.RegisterTeamRoutes(api, db, appConfig)

	return r
}
