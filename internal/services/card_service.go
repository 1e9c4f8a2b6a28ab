package services

import (
	"context"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/vytor/mnemoflash/internal/dictionary"
	"github.com/vytor/mnemoflash/internal/errors"
	"github.com/vytor/mnemoflash/internal/flashcard"
	"github.com/vytor/mnemoflash/internal/logger"
	"github.com/vytor/mnemoflash/internal/models"
	"github.com/vytor/mnemoflash/internal/repository"
)

const (
	defaultCardPageSize = 50
	maxCardPageSize     = 200
)

// CardService handles card-related business logic
type CardService interface {
	CreateCard(ctx context.Context, profileID int64, card models.NewCard) (*models.Card, error)
	GetCard(ctx context.Context, profileID, id int64) (*models.Card, error)
	ListCards(ctx context.Context, filter models.CardFilter) ([]models.Card, int, error)
}

type cardService struct {
	cardRepo    repository.CardRepository
	reviewRepo  repository.ReviewRepository
	profileRepo repository.ProfileRepository
	dictionary  dictionary.ClientInterface
	now         func() time.Time
}

// NewCardService creates a new CardService. dict may be nil, in which case
// cards are saved without pronunciation audio unless the caller supplies it.
func NewCardService(
	cardRepo repository.CardRepository,
	reviewRepo repository.ReviewRepository,
	profileRepo repository.ProfileRepository,
	dict dictionary.ClientInterface,
) CardService {
	return &cardService{
		cardRepo:    cardRepo,
		reviewRepo:  reviewRepo,
		profileRepo: profileRepo,
		dictionary:  dict,
		now:         time.Now,
	}
}

func (s *cardService) CreateCard(ctx context.Context, profileID int64, nc models.NewCard) (*models.Card, error) {
	log := logger.FromContext(ctx).WithField("profile_id", profileID)
	log.Debug("creating card: word=%s, anchors=%d", nc.Word, len(nc.Anchors))

	word := strings.TrimSpace(nc.Word)
	if word == "" {
		return nil, errors.NewValidationError("word", "cannot be empty")
	}
	if len(nc.Anchors) == 0 {
		return nil, errors.NewValidationError("anchors", "at least one anchor is required")
	}
	if nc.ImageURL == "" {
		return nil, errors.NewValidationError("imageUrl", "cannot be empty")
	}

	profile, err := s.profileRepo.Get(ctx, profileID)
	if err != nil {
		log.Error("failed to load profile: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if profile == nil {
		return nil, errors.NewNotFoundError("profile", profileID)
	}

	card := buildCard(profileID, word, nc, s.now())
	if card.LearningLanguage == "" {
		card.LearningLanguage = profile.LearningLanguage
	}
	if card.NativeLanguage == "" {
		card.NativeLanguage = profile.NativeLanguage
	}
	if card.AudioURL == "" && s.dictionary != nil {
		audio, err := s.dictionary.Pronunciation(ctx, word, card.LearningLanguage)
		if err != nil {
			log.Warn("pronunciation lookup failed, saving without audio: %v", err)
		} else {
			card.AudioURL = audio.AudioURL
		}
	}

	id, err := s.cardRepo.Insert(ctx, card)
	if err != nil {
		log.Error("failed to insert card: %v", err)
		return nil, errors.NewInternalError(err)
	}
	card.ID = id
	for i := range card.Anchors {
		card.Anchors[i].CardID = id
	}

	rec := flashcard.InitialRecord(profileID, id, card.CreatedAt)
	rec.CreatedAt = card.CreatedAt
	if _, err := s.reviewRepo.Insert(ctx, rec); err != nil {
		log.Warn("card %d saved without review record: %v", id, err)
	}

	log.Info("card created: id=%d, word=%s", id, word)
	return &card, nil
}

func buildCard(profileID int64, word string, nc models.NewCard, now time.Time) models.Card {
	ipa := nc.Phonetics.IPA
	if ipa == "" {
		ipa = nc.Analysis.IPA
	}
	return models.Card{
		ProfileID:        profileID,
		Word:             word,
		POS:              nc.Analysis.POS,
		IPA:              ipa,
		Translation:      nc.Analysis.Translation,
		ExampleSentence:  nc.Analysis.ExampleUsage,
		LearningLanguage: nc.LearningLanguage,
		NativeLanguage:   nc.NativeLanguage,
		Analysis:         nc.Analysis,
		Phonetics:        nc.Phonetics,
		Scene:            nc.Scene,
		ImagePrompt:      nc.ImagePrompt,
		ImageURL:         nc.ImageURL,
		AudioURL:         nc.AudioURL,
		Anchors: lo.Map(nc.Anchors, func(a models.SelectedAnchor, _ int) models.CardAnchor {
			return models.CardAnchor{
				Chunk:      a.Chunk,
				ChunkIPA:   nc.Phonetics.ChunkIPA(a.Chunk),
				AnchorWord: a.AnchorWord,
				Score:      a.Score,
				Reason:     a.Reason,
			}
		}),
		Bindings:  append([]models.Binding(nil), nc.Scene.Bindings...),
		CreatedAt: now,
	}
}

func (s *cardService) GetCard(ctx context.Context, profileID, id int64) (*models.Card, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting card: profile_id=%d, id=%d", profileID, id)

	card, err := s.cardRepo.Get(ctx, profileID, id)
	if err != nil {
		log.Error("failed to get card: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if card == nil {
		return nil, errors.NewNotFoundError("card", id)
	}
	return card, nil
}

func (s *cardService) ListCards(ctx context.Context, filter models.CardFilter) ([]models.Card, int, error) {
	log := logger.FromContext(ctx)
	log.Debug("listing cards: profile_id=%d, search=%q, pos=%s", filter.ProfileID, filter.Search, filter.POS)

	if filter.Limit <= 0 {
		filter.Limit = defaultCardPageSize
	}
	filter.Limit = min(filter.Limit, maxCardPageSize)
	filter.Offset = max(filter.Offset, 0)

	cards, err := s.cardRepo.List(ctx, filter)
	if err != nil {
		log.Error("failed to list cards: %v", err)
		return nil, 0, errors.NewInternalError(err)
	}

	total, err := s.cardRepo.Count(ctx, filter)
	if err != nil {
		log.Error("failed to count cards: %v", err)
		return nil, 0, errors.NewInternalError(err)
	}

	return cards, total, nil
}
