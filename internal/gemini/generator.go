package gemini

import (
	"context"
	"strings"

	"github.com/samber/lo"
	"github.com/vytor/mnemoflash/internal/models"
)

func (c *Client) Analyze(ctx context.Context, req models.AnalyzeRequest) (*models.AnalyzeResult, error) {
	var out models.AnalyzeResult
	err := c.generateJSON(ctx, "failed to analyze word", "analyze", analyzePrompt{
		Word:     req.Word,
		Learning: languageName(req.LearningLanguage),
		Native:   languageName(req.NativeLanguage),
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CustomizeChunking(ctx context.Context, req models.ChunkingRequest) (*models.Phonetics, error) {
	var out struct {
		Phonetics models.Phonetics `json:"phonetics"`
	}
	chunks := lo.Map(req.CurrentChunks, func(ch models.PhoneticChunk, _ int) string { return ch.Chunk })
	err := c.generateJSON(ctx, "failed to customize chunking", "chunking", chunkingPrompt{
		Word:         req.Word,
		Learning:     languageName(req.LearningLanguage),
		Chunks:       strings.Join(chunks, ", "),
		Instructions: req.CustomInstructions,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out.Phonetics, nil
}

// GenerateAnchors proposes native-language words for every chunk. Passing
// custom instructions and the current anchors regenerates them.
func (c *Client) GenerateAnchors(ctx context.Context, req models.AnchorsRequest) (*models.AnchorsResult, error) {
	failure := "failed to generate anchors"
	if req.CustomInstructions != "" {
		failure = "failed to customize anchors"
	}
	var out models.AnchorsResult
	err := c.generateJSON(ctx, failure, "anchors", anchorsPrompt{
		Word:         req.Word,
		Native:       languageName(req.NativeLanguage),
		Phonetics:    req.Phonetics,
		Current:      req.CurrentAnchors,
		Instructions: req.CustomInstructions,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// BuildScene binds the selected anchors to the word's meaning and writes
// the image prompt for it.
func (c *Client) BuildScene(ctx context.Context, req models.SceneRequest) (*models.SceneResult, error) {
	failure := "failed to build scene"
	if req.CustomInstructions != "" {
		failure = "failed to customize scene"
	}
	var out models.SceneResult
	err := c.generateJSON(ctx, failure, "scene", scenePrompt{
		Word:         req.Word,
		Native:       languageName(req.NativeLanguage),
		Analysis:     req.Analysis,
		Anchors:      req.Anchors,
		Current:      req.CurrentScene,
		Instructions: req.CustomInstructions,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
