package event

import "gorm.io/gorm"

// Event defines team-size bounds and the team-or-individual flag. Events are
// immutable as far as the registration core is concerned; only admins create
// them.
type Event struct {
	gorm.Model
	Name        string `json:"name" gorm:"uniqueIndex;not null"`
	Description string `json:"description"`
	IsTeamEvent bool   `json:"is_team_event" gorm:"default:false"`
	MinTeamSize int    `json:"min_team_size" gorm:"default:1"`
	MaxTeamSize int    `json:"max_team_size" gorm:"default:1"`
}

type CreateEventRequest struct {
	Name        string `json:"name" binding:"required,min=2,max=100"`
	Description string `json:"description" binding:"max=2000"`
	IsTeamEvent bool   `json:"is_team_event"`
	MinTeamSize int    `json:"min_team_size" binding:"omitempty,gte=1"`
	MaxTeamSize int    `json:"max_team_size" binding:"omitempty,gtefield=MinTeamSize"`
}
