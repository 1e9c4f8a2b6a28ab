package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/mnemoflash/internal/logger"
	"github.com/vytor/mnemoflash/internal/models"
	"github.com/vytor/mnemoflash/internal/repository"
)

var reviewColumns = []string{
	"id", "profile_id", "card_id", "repetitions", "ease_factor", "interval_days",
	"next_review", "last_reviewed", "created_at",
}

type reviewRepository struct {
	db *sql.DB
}

// NewReviewRepository creates a new ReviewRepository implementation
func NewReviewRepository(db *sql.DB) repository.ReviewRepository {
	return &reviewRepository{db: db}
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return dbTime(*t)
}

func (r *reviewRepository) Insert(ctx context.Context, rec models.ReviewRecord) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("review_repo")
	log.Debug("inserting review record: profile_id=%d, card_id=%d", rec.ProfileID, rec.CardID)

	res, err := r.db.ExecContext(ctx, `
INSERT INTO review_records (profile_id, card_id, repetitions, ease_factor, interval_days, next_review, last_reviewed, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`, rec.ProfileID, rec.CardID, rec.Repetitions, rec.EaseFactor, rec.IntervalDays, dbTime(rec.NextReview), nullableTime(rec.LastReviewed), dbTime(rec.CreatedAt))
	if err != nil {
		log.Error("failed to insert review record: %v", err)
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		log.Error("failed to get review record id: %v", err)
		return 0, err
	}
	log.Debug("review record inserted: id=%d", id)
	return id, nil
}

func (r *reviewRepository) get(ctx context.Context, where squirrel.Eq) (*models.ReviewRecord, error) {
	log := logger.FromContext(ctx).WithPrefix("review_repo")

	sqlStr, args, err := sqlBuilder.Select(reviewColumns...).From("review_records").Where(where).ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	var rec models.ReviewRecord
	err = r.db.QueryRowContext(ctx, sqlStr, args...).Scan(&rec.ID, &rec.ProfileID, &rec.CardID, &rec.Repetitions,
		&rec.EaseFactor, &rec.IntervalDays, &rec.NextReview, &rec.LastReviewed, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("review record not found: %v", where)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get review record: %v", err)
		return nil, err
	}
	return &rec, nil
}

func (r *reviewRepository) Get(ctx context.Context, profileID, id int64) (*models.ReviewRecord, error) {
	return r.get(ctx, squirrel.Eq{"id": id, "profile_id": profileID})
}

func (r *reviewRepository) GetByCard(ctx context.Context, profileID, cardID int64) (*models.ReviewRecord, error) {
	return r.get(ctx, squirrel.Eq{"card_id": cardID, "profile_id": profileID})
}

func (r *reviewRepository) Record(ctx context.Context, rec models.ReviewRecord, entry models.ReviewHistory) error {
	log := logger.FromContext(ctx).WithPrefix("review_repo")
	log.Debug("recording review: id=%d, rating=%s, interval=%d, ease=%.2f", rec.ID, entry.Rating, rec.IntervalDays, rec.EaseFactor)

	return tx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
UPDATE review_records
SET repetitions = ?, ease_factor = ?, interval_days = ?, next_review = ?, last_reviewed = ?
WHERE id = ?
`, rec.Repetitions, rec.EaseFactor, rec.IntervalDays, dbTime(rec.NextReview), nullableTime(rec.LastReviewed), rec.ID)
		if err != nil {
			log.Error("failed to update review record: %v", err)
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return sql.ErrNoRows
		}

		if _, err := tx.ExecContext(ctx, `
INSERT INTO review_history (review_id, rating, interval_days, ease_factor, reviewed_at)
VALUES (?, ?, ?, ?, ?)
`, rec.ID, entry.Rating, entry.IntervalDays, entry.EaseFactor, dbTime(entry.ReviewedAt)); err != nil {
			log.Error("failed to insert review history: %v", err)
			return err
		}
		return nil
	})
}

func (r *reviewRepository) Due(ctx context.Context, profileID int64, now time.Time, limit int) ([]models.DueCard, error) {
	log := logger.FromContext(ctx).WithPrefix("review_repo")
	log.Debug("fetching due cards: profile_id=%d, limit=%d", profileID, limit)

	if limit <= 0 {
		limit = 10
	}
	cols := make([]string, 0, len(reviewColumns)+len(cardColumns))
	for _, c := range reviewColumns {
		cols = append(cols, "rr."+c)
	}
	for _, c := range cardColumns {
		cols = append(cols, "c."+c)
	}

	sqlStr, args, err := sqlBuilder.Select(cols...).
		From("review_records rr").
		Join("cards c ON c.id = rr.card_id").
		Where(squirrel.Eq{"rr.profile_id": profileID}).
		Where(squirrel.LtOrEq{"rr.next_review": dbTime(now)}).
		OrderBy("rr.next_review ASC", "rr.id ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to query due cards: %v", err)
		return nil, err
	}
	defer rows.Close()

	var due []models.DueCard
	for rows.Next() {
		var d models.DueCard
		var analysis, phonetics, scene, prompt string
		c := &d.Card
		rec := &d.Review
		if err := rows.Scan(&rec.ID, &rec.ProfileID, &rec.CardID, &rec.Repetitions, &rec.EaseFactor, &rec.IntervalDays,
			&rec.NextReview, &rec.LastReviewed, &rec.CreatedAt,
			&c.ID, &c.ProfileID, &c.Word, &c.POS, &c.IPA, &c.Translation, &c.ExampleSentence,
			&c.LearningLanguage, &c.NativeLanguage, &analysis, &phonetics, &scene, &prompt,
			&c.ImageURL, &c.AudioURL, &c.CreatedAt); err != nil {
			log.Error("failed to scan due card row: %v", err)
			return nil, err
		}
		for _, f := range []struct {
			raw string
			dst any
		}{{analysis, &c.Analysis}, {phonetics, &c.Phonetics}, {scene, &c.Scene}, {prompt, &c.ImagePrompt}} {
			if err := fromJSON(f.raw, f.dst); err != nil {
				return nil, err
			}
		}
		due = append(due, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	log.Debug("found %d due cards", len(due))
	return due, nil
}

func (r *reviewRepository) CountDue(ctx context.Context, profileID int64, now time.Time) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("review_repo")

	var count int
	err := r.db.QueryRowContext(ctx, `
SELECT COUNT(*) FROM review_records WHERE profile_id = ? AND next_review <= ?
`, profileID, dbTime(now)).Scan(&count)
	if err != nil {
		log.Error("failed to count due cards: %v", err)
		return 0, err
	}
	return count, nil
}

func (r *reviewRepository) History(ctx context.Context, reviewID int64) ([]models.ReviewHistory, error) {
	log := logger.FromContext(ctx).WithPrefix("review_repo")
	log.Debug("fetching review history: review_id=%d", reviewID)

	rows, err := r.db.QueryContext(ctx, `
SELECT id, review_id, rating, interval_days, ease_factor, reviewed_at
FROM review_history
WHERE review_id = ?
ORDER BY reviewed_at ASC, id ASC
`, reviewID)
	if err != nil {
		log.Error("failed to query review history: %v", err)
		return nil, err
	}
	defer rows.Close()

	var history []models.ReviewHistory
	for rows.Next() {
		var h models.ReviewHistory
		if err := rows.Scan(&h.ID, &h.ReviewID, &h.Rating, &h.IntervalDays, &h.EaseFactor, &h.ReviewedAt); err != nil {
			log.Error("failed to scan review history row: %v", err)
			return nil, err
		}
		history = append(history, h)
	}
	return history, rows.Err()
}
