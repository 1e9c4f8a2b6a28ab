package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/vytor/mnemoflash/internal/logger"
	"github.com/vytor/mnemoflash/internal/models"
	"github.com/vytor/mnemoflash/internal/repository"
)

type profileRepository struct {
	db *sql.DB
}

// NewProfileRepository creates a new ProfileRepository implementation
func NewProfileRepository(db *sql.DB) repository.ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) Upsert(ctx context.Context, username string) (*models.Profile, error) {
	log := logger.FromContext(ctx).WithPrefix("profile_repo")
	log.Debug("upserting profile for username: %s", username)

	var p models.Profile
	err := r.db.QueryRowContext(ctx, `
INSERT INTO profiles (username)
VALUES (?)
ON CONFLICT(username) DO UPDATE SET username = excluded.username
RETURNING id, username, learning_language, native_language, created_at
`, username).Scan(&p.ID, &p.Username, &p.LearningLanguage, &p.NativeLanguage, &p.CreatedAt)
	if err != nil {
		log.Error("failed to upsert profile: %v", err)
		return nil, err
	}
	log.Debug("profile upserted: id=%d", p.ID)
	return &p, nil
}

func (r *profileRepository) UpdateLanguages(ctx context.Context, id int64, learning, native string) error {
	log := logger.FromContext(ctx).WithPrefix("profile_repo")
	log.Debug("updating profile languages: profile_id=%d, learning=%s, native=%s", id, learning, native)

	res, err := r.db.ExecContext(ctx, `UPDATE profiles SET learning_language = ?, native_language = ? WHERE id = ?`, learning, native, id)
	if err != nil {
		log.Error("failed to update profile languages: %v", err)
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *profileRepository) List(ctx context.Context) ([]models.Profile, error) {
	log := logger.FromContext(ctx).WithPrefix("profile_repo")
	log.Debug("listing profiles")

	rows, err := r.db.QueryContext(ctx, `
SELECT id, username, learning_language, native_language, created_at
FROM profiles
ORDER BY created_at ASC, id ASC
`)
	if err != nil {
		log.Error("failed to list profiles: %v", err)
		return nil, err
	}
	defer rows.Close()

	var profiles []models.Profile
	for rows.Next() {
		var p models.Profile
		if err := rows.Scan(&p.ID, &p.Username, &p.LearningLanguage, &p.NativeLanguage, &p.CreatedAt); err != nil {
			log.Error("failed to scan profile row: %v", err)
			return nil, err
		}
		profiles = append(profiles, p)
	}

	log.Debug("found %d profiles", len(profiles))
	return profiles, rows.Err()
}

func (r *profileRepository) Get(ctx context.Context, id int64) (*models.Profile, error) {
	log := logger.FromContext(ctx).WithPrefix("profile_repo")
	log.Debug("getting profile: id=%d", id)

	var p models.Profile
	err := r.db.QueryRowContext(ctx, `
SELECT id, username, learning_language, native_language, created_at
FROM profiles
WHERE id = ?
`, id).Scan(&p.ID, &p.Username, &p.LearningLanguage, &p.NativeLanguage, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("profile not found: id=%d", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get profile: %v", err)
		return nil, err
	}
	return &p, nil
}

// Delete removes the profile. Cards, anchors, bindings and review data go
// with it through ON DELETE CASCADE.
func (r *profileRepository) Delete(ctx context.Context, id int64) error {
	log := logger.FromContext(ctx).WithPrefix("profile_repo")
	log.Debug("deleting profile and related data: id=%d", id)

	if _, err := r.db.ExecContext(ctx, `DELETE FROM profiles WHERE id = ?`, id); err != nil {
		log.Error("failed to delete profile %d: %v", id, err)
		return err
	}
	log.Debug("profile %d deleted with cascading data", id)
	return nil
}
