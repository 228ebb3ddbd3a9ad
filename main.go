package main

import (
	"log"

	"github.com/avensora/avensora-api/config"
	_ "github.com/avensora/avensora-api/docs"
	"github.com/avensora/avensora-api/internal/event"
	"github.com/avensora/avensora-api/internal/participant"
	"github.com/avensora/avensora-api/internal/team"
	"github.com/avensora/avensora-api/routes"
)

// @title Avensora Registration API
// @version 1.0
// @description Festival registration backend: events, teams, referrals 🎪
// @host localhost:8088
// @BasePath /api
func main() {
	if err := config.Initialize(); err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	cfg := config.GetConfig()

	err := config.DB.AutoMigrate(
		&participant.Participant{},
		&event.Event{},
		&team.Team{}, &team.TeamMember{},
	)
	if err != nil {
		log.Fatalf("AutoMigrate failed: %v", err)
	}
	log.Println("AutoMigrate successful")

	r := routes.SetupRoutes(config.DB, cfg)

	log.Printf("Starting server on port %s in %s mode\n", cfg.App.Port, cfg.App.Env)
	if err := r.Run(":" + cfg.App.Port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
