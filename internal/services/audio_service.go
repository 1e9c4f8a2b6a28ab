package services

import (
	"context"
	"strings"

	"github.com/vytor/mnemoflash/internal/config"
	"github.com/vytor/mnemoflash/internal/dictionary"
	"github.com/vytor/mnemoflash/internal/errors"
	"github.com/vytor/mnemoflash/internal/logger"
)

// AudioService looks up pronunciation audio for a word.
type AudioService interface {
	Pronunciation(ctx context.Context, word, language string) (*dictionary.Audio, error)
}

type audioService struct {
	client dictionary.ClientInterface
}

func NewAudioService(client dictionary.ClientInterface) AudioService {
	return &audioService{client: client}
}

func (s *audioService) Pronunciation(ctx context.Context, word, language string) (*dictionary.Audio, error) {
	log := logger.FromContext(ctx)
	word = strings.TrimSpace(word)
	log.Debug("looking up pronunciation: word=%s, language=%s", word, language)

	if word == "" {
		return nil, errors.NewValidationError("word", "cannot be empty")
	}
	if language == "" {
		language = "en"
	}
	if _, ok := config.SupportedLanguages[language]; !ok {
		return nil, errors.NewValidationError("language", "unsupported language "+language)
	}

	audio, err := s.client.Pronunciation(ctx, word, language)
	if err != nil {
		log.Error("pronunciation lookup failed: %v", err)
		return nil, errors.NewUpstreamError("Failed to fetch audio", err)
	}
	return &audio, nil
}
