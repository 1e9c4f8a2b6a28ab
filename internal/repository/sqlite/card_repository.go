package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/samber/lo"
	"github.com/vytor/mnemoflash/internal/logger"
	"github.com/vytor/mnemoflash/internal/models"
	"github.com/vytor/mnemoflash/internal/repository"
)

var cardColumns = []string{
	"id", "profile_id", "word", "pos", "ipa", "translation", "example_sentence",
	"learning_language", "native_language", "analysis_json", "phonetics_json",
	"scene_json", "image_prompt_json", "image_url", "audio_url", "created_at",
}

type cardRepository struct {
	db *sql.DB
}

// NewCardRepository creates a new CardRepository implementation
func NewCardRepository(db *sql.DB) repository.CardRepository {
	return &cardRepository{db: db}
}

func (r *cardRepository) Insert(ctx context.Context, c models.Card) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("inserting card: profile_id=%d, word=%s, anchors=%d, bindings=%d", c.ProfileID, c.Word, len(c.Anchors), len(c.Bindings))

	analysis, err := toJSON(c.Analysis)
	if err != nil {
		return 0, err
	}
	phonetics, err := toJSON(c.Phonetics)
	if err != nil {
		return 0, err
	}
	scene, err := toJSON(c.Scene)
	if err != nil {
		return 0, err
	}
	prompt, err := toJSON(c.ImagePrompt)
	if err != nil {
		return 0, err
	}

	var id int64
	err = tx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
INSERT INTO cards (profile_id, word, pos, ipa, translation, example_sentence, learning_language, native_language,
                   analysis_json, phonetics_json, scene_json, image_prompt_json, image_url, audio_url, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, c.ProfileID, c.Word, string(c.POS), c.IPA, c.Translation, c.ExampleSentence, c.LearningLanguage, c.NativeLanguage,
			analysis, phonetics, scene, prompt, c.ImageURL, c.AudioURL, dbTime(c.CreatedAt))
		if err != nil {
			log.Error("failed to insert card: %v", err)
			return err
		}
		id, err = res.LastInsertId()
		if err != nil {
			log.Error("failed to get card id: %v", err)
			return err
		}

		anchorStmt, err := tx.PrepareContext(ctx, `
INSERT INTO anchors (card_id, chunk, chunk_ipa, anchor_word, score, reason, position)
VALUES (?, ?, ?, ?, ?, ?, ?)
`)
		if err != nil {
			log.Error("failed to prepare anchor insert: %v", err)
			return err
		}
		defer anchorStmt.Close()
		for i, a := range c.Anchors {
			if _, err := anchorStmt.ExecContext(ctx, id, a.Chunk, a.ChunkIPA, a.AnchorWord, a.Score, a.Reason, i); err != nil {
				log.Error("failed to insert anchor %q: %v", a.Chunk, err)
				return err
			}
		}

		bindingStmt, err := tx.PrepareContext(ctx, `
INSERT INTO bindings (card_id, anchor, relation, target, position)
VALUES (?, ?, ?, ?, ?)
`)
		if err != nil {
			log.Error("failed to prepare binding insert: %v", err)
			return err
		}
		defer bindingStmt.Close()
		for i, b := range c.Bindings {
			if _, err := bindingStmt.ExecContext(ctx, id, b.Anchor, string(b.Relation), b.Target, i); err != nil {
				log.Error("failed to insert binding for %q: %v", b.Anchor, err)
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	log.Debug("card inserted: id=%d", id)
	return id, nil
}

func (r *cardRepository) Get(ctx context.Context, profileID, id int64) (*models.Card, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("getting card: id=%d, profile_id=%d", id, profileID)

	query, args, err := sqlBuilder.Select(cardColumns...).From("cards").
		Where(squirrel.Eq{"id": id, "profile_id": profileID}).ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	c, err := scanCard(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("card not found: id=%d", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get card: %v", err)
		return nil, err
	}

	cards := []models.Card{*c}
	if err := r.loadChildren(ctx, cards); err != nil {
		return nil, err
	}
	return &cards[0], nil
}

func applyCardFilter(q squirrel.SelectBuilder, filter models.CardFilter) squirrel.SelectBuilder {
	if filter.ProfileID != 0 {
		q = q.Where(squirrel.Eq{"profile_id": filter.ProfileID})
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		like := "%" + s + "%"
		q = q.Where(squirrel.Or{
			squirrel.Like{"word": like},
			squirrel.Like{"translation": like},
		})
	}
	if filter.POS != "" {
		q = q.Where(squirrel.Eq{"pos": filter.POS})
	}
	return q
}

func (r *cardRepository) List(ctx context.Context, filter models.CardFilter) ([]models.Card, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("listing cards with filter: profile_id=%d, search=%s, pos=%s", filter.ProfileID, filter.Search, filter.POS)

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := applyCardFilter(sqlBuilder.Select(cardColumns...).From("cards"), filter).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(limit)).Offset(uint64(offset))

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to list cards: %v", err)
		return nil, err
	}
	defer rows.Close()

	var cards []models.Card
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			log.Error("failed to scan card row: %v", err)
			return nil, err
		}
		cards = append(cards, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.loadChildren(ctx, cards); err != nil {
		return nil, err
	}
	log.Debug("found %d cards", len(cards))
	return cards, nil
}

func (r *cardRepository) Count(ctx context.Context, filter models.CardFilter) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")

	sqlStr, args, err := applyCardFilter(sqlBuilder.Select("COUNT(*)").From("cards"), filter).ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return 0, err
	}

	var count int
	if err := r.db.QueryRowContext(ctx, sqlStr, args...).Scan(&count); err != nil {
		log.Error("failed to count cards: %v", err)
		return 0, err
	}
	return count, nil
}

// loadChildren fills the anchors and bindings of cards in place.
func (r *cardRepository) loadChildren(ctx context.Context, cards []models.Card) error {
	if len(cards) == 0 {
		return nil
	}
	log := logger.FromContext(ctx).WithPrefix("card_repo")

	ids := lo.Map(cards, func(c models.Card, _ int) int64 { return c.ID })
	index := make(map[int64]int, len(cards))
	for i, c := range cards {
		index[c.ID] = i
		cards[i].Anchors = []models.CardAnchor{}
		cards[i].Bindings = []models.Binding{}
	}

	sqlStr, args, err := sqlBuilder.
		Select("id", "card_id", "chunk", "chunk_ipa", "anchor_word", "score", "reason").
		From("anchors").
		Where(squirrel.Eq{"card_id": ids}).
		OrderBy("card_id", "position").
		ToSql()
	if err != nil {
		return err
	}
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to query anchors: %v", err)
		return err
	}
	for rows.Next() {
		var a models.CardAnchor
		if err := rows.Scan(&a.ID, &a.CardID, &a.Chunk, &a.ChunkIPA, &a.AnchorWord, &a.Score, &a.Reason); err != nil {
			rows.Close()
			log.Error("failed to scan anchor row: %v", err)
			return err
		}
		i := index[a.CardID]
		cards[i].Anchors = append(cards[i].Anchors, a)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	sqlStr, args, err = sqlBuilder.
		Select("card_id", "anchor", "relation", "target").
		From("bindings").
		Where(squirrel.Eq{"card_id": ids}).
		OrderBy("card_id", "position").
		ToSql()
	if err != nil {
		return err
	}
	rows, err = r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to query bindings: %v", err)
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var cardID int64
		var b models.Binding
		if err := rows.Scan(&cardID, &b.Anchor, &b.Relation, &b.Target); err != nil {
			log.Error("failed to scan binding row: %v", err)
			return err
		}
		i := index[cardID]
		cards[i].Bindings = append(cards[i].Bindings, b)
	}
	return rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCard(row rowScanner) (*models.Card, error) {
	var c models.Card
	var analysis, phonetics, scene, prompt string
	if err := row.Scan(&c.ID, &c.ProfileID, &c.Word, &c.POS, &c.IPA, &c.Translation, &c.ExampleSentence,
		&c.LearningLanguage, &c.NativeLanguage, &analysis, &phonetics, &scene, &prompt,
		&c.ImageURL, &c.AudioURL, &c.CreatedAt); err != nil {
		return nil, err
	}
	if err := fromJSON(analysis, &c.Analysis); err != nil {
		return nil, err
	}
	if err := fromJSON(phonetics, &c.Phonetics); err != nil {
		return nil, err
	}
	if err := fromJSON(scene, &c.Scene); err != nil {
		return nil, err
	}
	if err := fromJSON(prompt, &c.ImagePrompt); err != nil {
		return nil, err
	}
	return &c, nil
}
