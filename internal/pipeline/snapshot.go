package pipeline

import (
	"time"

	"github.com/vytor/mnemoflash/internal/models"
)

// Snapshot is a read-only view of a session for API responses. Fields from
// steps not yet reached are left empty.
type Snapshot struct {
	ID               string                   `json:"id"`
	Step             Step                     `json:"step"`
	Loading          bool                     `json:"loading"`
	Generating       bool                     `json:"generating"`
	Error            string                   `json:"error,omitempty"`
	LearningLanguage string                   `json:"learningLanguage"`
	NativeLanguage   string                   `json:"nativeLanguage"`
	Word             string                   `json:"word,omitempty"`
	Analysis         *models.WordAnalysis     `json:"analysis,omitempty"`
	Phonetics        *models.Phonetics        `json:"phonetics,omitempty"`
	AnchorCandidates []models.ChunkCandidates `json:"anchorCandidates,omitempty"`
	SelectedAnchors  []models.SelectedAnchor  `json:"selectedAnchors,omitempty"`
	Scene            *models.Scene            `json:"scene,omitempty"`
	ImagePrompt      *models.ImagePrompt      `json:"imagePrompt,omitempty"`
	ImageURL         string                   `json:"imageUrl,omitempty"`
	Card             *models.Card             `json:"card,omitempty"`
	UpdatedAt        time.Time                `json:"updatedAt"`
}

// CanConfirm reports whether the confirm action of the current step would
// pass its gate.
func (sn Snapshot) CanConfirm() bool {
	if sn.Loading || sn.Generating {
		return false
	}
	switch sn.Step {
	case StepInput, StepComplete:
		return false
	case StepAnchors:
		return AnchorsStage{Candidates: sn.AnchorCandidates, Selected: sn.SelectedAnchors}.selectionComplete()
	case StepImage:
		return sn.ImageURL != ""
	}
	return true
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	sn := Snapshot{
		ID:               s.ID,
		Step:             s.stage.Step(),
		Error:            s.errMsg,
		LearningLanguage: s.LearningLanguage,
		NativeLanguage:   s.NativeLanguage,
		UpdatedAt:        s.lastActive,
	}

	fillAnalysis := func(a AnalysisStage) {
		analysis, phonetics := a.Analysis, a.Phonetics
		sn.Word = a.Word
		sn.Analysis = &analysis
		sn.Phonetics = &phonetics
	}
	fillAnchors := func(a AnchorsStage) {
		fillAnalysis(a.AnalysisStage)
		sn.AnchorCandidates = a.Candidates
		sn.SelectedAnchors = a.Selected
	}
	fillBindings := func(b BindingsStage) {
		fillAnchors(b.AnchorsStage)
		scene, prompt := b.Scene, b.ImagePrompt
		sn.Scene = &scene
		sn.ImagePrompt = &prompt
	}
	fillImage := func(i ImageStage) {
		fillBindings(i.BindingsStage)
		sn.ImageURL = i.ImageURL
		sn.Generating = i.Generating
	}

	switch st := s.stage.(type) {
	case AnalysisStage:
		fillAnalysis(st)
	case ChunkingStage:
		fillAnalysis(st.AnalysisStage)
	case AnchorsStage:
		fillAnchors(st)
	case BindingsStage:
		fillBindings(st)
	case ImageStage:
		fillImage(st)
	case CompleteStage:
		fillImage(st.ImageStage)
		card := st.Card
		sn.Card = &card
	}
	sn.Loading = s.busy && !sn.Generating
	return sn
}
