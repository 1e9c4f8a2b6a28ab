// Package pipeline drives card creation through its fixed sequence of steps:
// input, analysis, chunking, anchors, bindings, image and complete.
//
// Each step has its own payload type. A payload embeds the payload of the
// step before it, so data from a later step cannot exist without everything
// that precedes it.
package pipeline

import "github.com/vytor/mnemoflash/internal/models"

type Step string

const (
	StepInput    Step = "input"
	StepAnalysis Step = "analysis"
	StepChunking Step = "chunking"
	StepAnchors  Step = "anchors"
	StepBindings Step = "bindings"
	StepImage    Step = "image"
	StepComplete Step = "complete"
)

// Steps lists every step in order.
var Steps = []Step{StepInput, StepAnalysis, StepChunking, StepAnchors, StepBindings, StepImage, StepComplete}

// Stage is the payload of the current step.
type Stage interface {
	Step() Step
	isStage()
}

type InputStage struct{}

func (InputStage) Step() Step { return StepInput }
func (InputStage) isStage()   {}

type AnalysisStage struct {
	Word      string
	Analysis  models.WordAnalysis
	Phonetics models.Phonetics
}

func (AnalysisStage) Step() Step { return StepAnalysis }
func (AnalysisStage) isStage()   {}

type ChunkingStage struct {
	AnalysisStage
}

func (ChunkingStage) Step() Step { return StepChunking }

type AnchorsStage struct {
	ChunkingStage
	Candidates []models.ChunkCandidates
	Selected   []models.SelectedAnchor
}

func (AnchorsStage) Step() Step { return StepAnchors }

// selectionComplete reports whether every chunk has exactly one selected
// anchor. A chunk with no candidates can never be complete.
func (a AnchorsStage) selectionComplete() bool {
	counts := make(map[string]int, len(a.Selected))
	for _, s := range a.Selected {
		counts[s.Chunk]++
	}
	for _, c := range a.Candidates {
		if counts[c.Chunk] != 1 {
			return false
		}
	}
	return true
}

type BindingsStage struct {
	AnchorsStage
	Scene       models.Scene
	ImagePrompt models.ImagePrompt
}

func (BindingsStage) Step() Step { return StepBindings }

type ImageStage struct {
	BindingsStage
	ImageURL   string
	Generating bool
	// Enhancements counts enhanced prompts followed since the last user action.
	Enhancements int
}

func (ImageStage) Step() Step { return StepImage }

type CompleteStage struct {
	ImageStage
	Card models.Card
}

func (CompleteStage) Step() Step { return StepComplete }
