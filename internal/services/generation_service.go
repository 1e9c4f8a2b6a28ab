package services

import (
	"context"
	"strings"

	"github.com/vytor/mnemoflash/internal/errors"
	"github.com/vytor/mnemoflash/internal/gemini"
	"github.com/vytor/mnemoflash/internal/logger"
	"github.com/vytor/mnemoflash/internal/models"
	"github.com/vytor/mnemoflash/internal/pipeline"
)

// GenerationService exposes the generative steps directly, without a
// creation session. Requests are expected to be validated by the caller.
type GenerationService interface {
	Analyze(ctx context.Context, req models.AnalyzeRequest) (*models.AnalyzeResult, error)
	CustomizeChunking(ctx context.Context, req models.ChunkingRequest) (*models.Phonetics, error)
	GenerateAnchors(ctx context.Context, req models.AnchorsRequest) (*models.AnchorsResult, error)
	BuildScene(ctx context.Context, req models.SceneRequest) (*models.SceneResult, error)
	GenerateImage(ctx context.Context, req models.ImageRequest) (*models.ImageResult, error)
}

type generationService struct {
	gen pipeline.Generator
}

func NewGenerationService(gen pipeline.Generator) GenerationService {
	return &generationService{gen: gen}
}

func (s *generationService) Analyze(ctx context.Context, req models.AnalyzeRequest) (*models.AnalyzeResult, error) {
	log := logger.FromContext(ctx).WithPrefix("generation")
	req.Word = strings.TrimSpace(req.Word)
	log.Debug("analyze: word=%s, %s->%s", req.Word, req.LearningLanguage, req.NativeLanguage)

	if req.Word == "" {
		return nil, errors.NewValidationError("word", "cannot be empty")
	}
	res, err := s.gen.Analyze(ctx, req)
	if err != nil {
		log.Error("analyze failed: %v", err)
		return nil, generationError(err)
	}
	return res, nil
}

func (s *generationService) CustomizeChunking(ctx context.Context, req models.ChunkingRequest) (*models.Phonetics, error) {
	log := logger.FromContext(ctx).WithPrefix("generation")
	log.Debug("customize chunking: word=%s, chunks=%d", req.Word, len(req.CurrentChunks))

	if strings.TrimSpace(req.CustomInstructions) == "" {
		return nil, errors.NewValidationError("customInstructions", "cannot be empty")
	}
	res, err := s.gen.CustomizeChunking(ctx, req)
	if err != nil {
		log.Error("customize chunking failed: %v", err)
		return nil, generationError(err)
	}
	return res, nil
}

func (s *generationService) GenerateAnchors(ctx context.Context, req models.AnchorsRequest) (*models.AnchorsResult, error) {
	log := logger.FromContext(ctx).WithPrefix("generation")
	log.Debug("generate anchors: word=%s, chunks=%d, custom=%t", req.Word, len(req.Phonetics.Chunks), req.CustomInstructions != "")

	res, err := s.gen.GenerateAnchors(ctx, req)
	if err != nil {
		log.Error("generate anchors failed: %v", err)
		return nil, generationError(err)
	}
	res.Candidates = pipeline.SortCandidates(res.Candidates)
	return res, nil
}

func (s *generationService) BuildScene(ctx context.Context, req models.SceneRequest) (*models.SceneResult, error) {
	log := logger.FromContext(ctx).WithPrefix("generation")
	log.Debug("build scene: word=%s, anchors=%d, custom=%t", req.Word, len(req.Anchors), req.CustomInstructions != "")

	res, err := s.gen.BuildScene(ctx, req)
	if err != nil {
		log.Error("build scene failed: %v", err)
		return nil, generationError(err)
	}
	return res, nil
}

func (s *generationService) GenerateImage(ctx context.Context, req models.ImageRequest) (*models.ImageResult, error) {
	log := logger.FromContext(ctx).WithPrefix("generation")
	log.Debug("generate image: custom=%t", req.CustomInstructions != "")

	if strings.TrimSpace(req.Prompt) == "" {
		return nil, errors.NewValidationError("prompt", "cannot be empty")
	}
	res, err := s.gen.GenerateImage(ctx, req)
	if err != nil {
		log.Error("generate image failed: %v", err)
		return nil, generationError(err)
	}
	return res, nil
}

// generationError maps a generator failure to an AppError. The message is
// the generator's own description.
func generationError(err error) error {
	if appErr, ok := errors.As(err); ok {
		return appErr
	}
	if errors.Is(err, gemini.ErrAPIDisabled) || errors.Is(err, gemini.ErrNotConfigured) {
		return errors.NewUnavailableError(err.Error(), err)
	}
	return errors.NewUpstreamError(err.Error(), err)
}
