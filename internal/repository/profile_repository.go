package repository

import (
	"context"

	"github.com/vytor/mnemoflash/internal/models"
)

// ProfileRepository handles profile data access
type ProfileRepository interface {
	Get(ctx context.Context, id int64) (*models.Profile, error)
	List(ctx context.Context) ([]models.Profile, error)
	Upsert(ctx context.Context, username string) (*models.Profile, error)
	UpdateLanguages(ctx context.Context, id int64, learning, native string) error
	Delete(ctx context.Context, id int64) error
}
