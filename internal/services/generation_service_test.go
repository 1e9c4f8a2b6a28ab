package services

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vytor/mnemoflash/internal/errors"
	"github.com/vytor/mnemoflash/internal/gemini"
	"github.com/vytor/mnemoflash/internal/models"
	"github.com/vytor/mnemoflash/internal/testutil/mocks"
)

func TestGenerationService_Analyze(t *testing.T) {
	gen := new(mocks.MockGenerator)
	want := &models.AnalyzeResult{Analysis: models.WordAnalysis{NormalizedWord: "table"}}
	gen.On("Analyze", mock.Anything, models.AnalyzeRequest{Word: "table", LearningLanguage: "en", NativeLanguage: "ru"}).Return(want, nil)

	got, err := NewGenerationService(gen).Analyze(context.Background(), models.AnalyzeRequest{Word: " table ", LearningLanguage: "en", NativeLanguage: "ru"})
	require.NoError(t, err)
	assert.Same(t, want, got)

	_, err = NewGenerationService(gen).Analyze(context.Background(), models.AnalyzeRequest{Word: " "})
	requireAppError(t, err, http.StatusBadRequest)
}

func TestGenerationService_ErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{"upstream failure", stderrors.New("failed to analyze word: HTTP 500: boom"), http.StatusBadGateway, errors.ErrCodeUpstream, "failed to analyze word: HTTP 500: boom"},
		{"api disabled", fmt.Errorf("%w (forbidden)", gemini.ErrAPIDisabled), http.StatusServiceUnavailable, errors.ErrCodeUnavailable, gemini.ErrAPIDisabled.Error() + " (forbidden)"},
		{"no api key", gemini.ErrNotConfigured, http.StatusServiceUnavailable, errors.ErrCodeUnavailable, "Gemini API key not configured"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := new(mocks.MockGenerator)
			gen.On("Analyze", mock.Anything, mock.Anything).Return(nil, tt.err)

			_, err := NewGenerationService(gen).Analyze(context.Background(), models.AnalyzeRequest{Word: "table"})
			appErr := requireAppError(t, err, tt.status)
			assert.Equal(t, tt.code, appErr.Code)
			assert.Equal(t, tt.message, appErr.Message)
		})
	}
}

func TestGenerationService_GenerateAnchors_SortsCandidates(t *testing.T) {
	gen := new(mocks.MockGenerator)
	gen.On("GenerateAnchors", mock.Anything, mock.Anything).Return(&models.AnchorsResult{Candidates: []models.ChunkCandidates{{
		Chunk: "tei",
		Candidates: []models.AnchorCandidate{
			{Word: "тень", PhoneticSimilarity: 0.6},
			{Word: "тей", PhoneticSimilarity: 0.9},
		},
	}}}, nil)

	res, err := NewGenerationService(gen).GenerateAnchors(context.Background(), models.AnchorsRequest{Word: "table"})
	require.NoError(t, err)
	assert.Equal(t, "тей", res.Candidates[0].Candidates[0].Word)
}

func TestGenerationService_RequiresInstructionsAndPrompt(t *testing.T) {
	gen := new(mocks.MockGenerator)
	svc := NewGenerationService(gen)

	_, err := svc.CustomizeChunking(context.Background(), models.ChunkingRequest{Word: "table", CustomInstructions: "  "})
	requireAppError(t, err, http.StatusBadRequest)

	_, err = svc.GenerateImage(context.Background(), models.ImageRequest{})
	requireAppError(t, err, http.StatusBadRequest)

	gen.AssertNotCalled(t, "CustomizeChunking", mock.Anything, mock.Anything)
	gen.AssertNotCalled(t, "GenerateImage", mock.Anything, mock.Anything)
}
