package api

import (
	"database/sql"
	"time"

	"github.com/vytor/mnemoflash/internal/services"
)

// Server holds the dependencies of the HTTP handlers.
type Server struct {
	DB                *sql.DB
	ProfileService    services.ProfileService
	CardService       services.CardService
	ReviewService     services.ReviewService
	StatsService      services.StatsService
	AudioService      services.AudioService
	GenerationService services.GenerationService
	CreationService   services.CreationService

	// DataTimeout bounds requests that only touch the database. Zero
	// disables it.
	DataTimeout time.Duration
}
