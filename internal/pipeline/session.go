package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/vytor/mnemoflash/internal/logger"
	"github.com/vytor/mnemoflash/internal/models"
)

// Generator is the generative service behind every step that needs one.
type Generator interface {
	Analyze(ctx context.Context, req models.AnalyzeRequest) (*models.AnalyzeResult, error)
	CustomizeChunking(ctx context.Context, req models.ChunkingRequest) (*models.Phonetics, error)
	GenerateAnchors(ctx context.Context, req models.AnchorsRequest) (*models.AnchorsResult, error)
	BuildScene(ctx context.Context, req models.SceneRequest) (*models.SceneResult, error)
	GenerateImage(ctx context.Context, req models.ImageRequest) (*models.ImageResult, error)
}

// CardSaver persists a finished card.
type CardSaver interface {
	CreateCard(ctx context.Context, profileID int64, card models.NewCard) (*models.Card, error)
}

// Runner runs fn outside the caller's request. Image generation uses it so
// that generation outlives the request that started it.
type Runner interface {
	Go(name string, fn func(ctx context.Context) error) error
}

// Engine holds the collaborators shared by all sessions.
type Engine struct {
	gen             Generator
	cards           CardSaver
	runner          Runner
	maxEnhancements int
	now             func() time.Time
}

type EngineOption func(*Engine)

// WithMaxEnhancements bounds how many enhanced prompts one image action may
// follow before giving up.
func WithMaxEnhancements(n int) EngineOption {
	return func(e *Engine) {
		if n >= 0 {
			e.maxEnhancements = n
		}
	}
}

func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

func NewEngine(gen Generator, cards CardSaver, runner Runner, opts ...EngineOption) *Engine {
	e := &Engine{
		gen:             gen,
		cards:           cards,
		runner:          runner,
		maxEnhancements: 2,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Session is one card creation flow. It is safe for concurrent use; at most
// one outbound call runs at a time.
type Session struct {
	ID               string
	ProfileID        int64
	LearningLanguage string
	NativeLanguage   string

	engine *Engine

	mu         sync.Mutex
	stage      Stage
	busy       bool
	errMsg     string
	epoch      uint64
	lastActive time.Time
}

// NewSession starts a session at the input step.
func (e *Engine) NewSession(id string, profileID int64, learning, native string) *Session {
	return &Session{
		ID:               id,
		ProfileID:        profileID,
		LearningLanguage: learning,
		NativeLanguage:   native,
		engine:           e,
		stage:            InputStage{},
		lastActive:       e.now(),
	}
}

func (s *Session) log(ctx context.Context) *logger.Logger {
	return logger.FromContext(ctx).WithPrefix("pipeline").WithFields(map[string]any{
		"session_id": s.ID,
		"profile_id": s.ProfileID,
	})
}

// Stage returns the current step payload.
func (s *Session) Stage() Stage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stage
}

func (s *Session) Step() Step {
	return s.Stage().Step()
}

// Err returns the message of the last failed call, if any.
func (s *Session) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

func (s *Session) idleSince() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive, s.busy
}

// lockFor acquires the lock and checks that no call is in flight and the
// session is at want. On success the caller holds s.mu.
func (s *Session) lockFor(action string, want Step) error {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return &TransitionError{Action: action, Step: s.stage.Step(), Err: ErrBusy}
	}
	if s.stage.Step() != want {
		step := s.stage.Step()
		s.mu.Unlock()
		return &TransitionError{Action: action, Step: step, Err: ErrInvalidTransition}
	}
	s.lastActive = s.engine.now()
	return nil
}

// call runs an outbound call for action. prepare runs under the lock once
// the step checks pass and returns the function to call, or an error to
// reject the action. apply runs under the lock with the result, unless the
// session was reset meanwhile.
func call[T any](ctx context.Context, s *Session, action string, want Step,
	prepare func(st Stage) (func(context.Context) (T, error), error),
	apply func(st Stage, res T),
) error {
	if err := s.lockFor(action, want); err != nil {
		return err
	}
	fn, err := prepare(s.stage)
	if err != nil {
		s.mu.Unlock()
		return &TransitionError{Action: action, Step: want, Err: err}
	}
	s.busy = true
	s.errMsg = ""
	epoch := s.epoch
	s.mu.Unlock()

	log := s.log(ctx).WithField("action", action)
	log.Debug("calling generator")
	start := time.Now()
	res, err := fn(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch != s.epoch {
		log.Info("discarding result of %s, session was reset", action)
		return nil
	}
	s.busy = false
	s.lastActive = s.engine.now()
	if err != nil {
		s.errMsg = err.Error()
		log.Warn("%s failed after %v: %v", action, time.Since(start), err)
		return &UpstreamError{Op: action, Err: err}
	}
	apply(s.stage, res)
	log.Debug("%s completed in %v, step=%s", action, time.Since(start), s.stage.Step())
	return nil
}

// SubmitWord analyzes word and moves to the analysis step.
func (s *Session) SubmitWord(ctx context.Context, word string) error {
	word = strings.TrimSpace(word)
	if word == "" {
		return ErrEmptyWord
	}
	return call(ctx, s, "submit_word", StepInput,
		func(Stage) (func(context.Context) (*models.AnalyzeResult, error), error) {
			req := models.AnalyzeRequest{Word: word, LearningLanguage: s.LearningLanguage, NativeLanguage: s.NativeLanguage}
			return func(ctx context.Context) (*models.AnalyzeResult, error) {
				return s.engine.gen.Analyze(ctx, req)
			}, nil
		},
		func(_ Stage, res *models.AnalyzeResult) {
			s.stage = AnalysisStage{Word: word, Analysis: res.Analysis, Phonetics: res.Phonetics}
		})
}

// ConfirmAnalysis moves from analysis to chunking.
func (s *Session) ConfirmAnalysis() error {
	if err := s.lockFor("confirm_analysis", StepAnalysis); err != nil {
		return err
	}
	defer s.mu.Unlock()
	s.stage = ChunkingStage{AnalysisStage: s.stage.(AnalysisStage)}
	s.errMsg = ""
	return nil
}

// CustomizeChunking asks for a new phonetic split and replaces the current
// one without leaving the chunking step.
func (s *Session) CustomizeChunking(ctx context.Context, instructions string) error {
	instructions = strings.TrimSpace(instructions)
	if instructions == "" {
		return ErrEmptyInstructions
	}
	return call(ctx, s, "customize_chunking", StepChunking,
		func(st Stage) (func(context.Context) (*models.Phonetics, error), error) {
			cur := st.(ChunkingStage)
			req := models.ChunkingRequest{
				Word:               cur.Word,
				LearningLanguage:   s.LearningLanguage,
				NativeLanguage:     s.NativeLanguage,
				CustomInstructions: instructions,
				CurrentChunks:      cur.Phonetics.Chunks,
			}
			return func(ctx context.Context) (*models.Phonetics, error) {
				return s.engine.gen.CustomizeChunking(ctx, req)
			}, nil
		},
		func(st Stage, res *models.Phonetics) {
			cur := st.(ChunkingStage)
			cur.Phonetics = *res
			s.stage = cur
		})
}

// ConfirmChunking requests anchor candidates, auto-selects the best one per
// chunk and moves to the anchors step.
func (s *Session) ConfirmChunking(ctx context.Context) error {
	return call(ctx, s, "confirm_chunking", StepChunking,
		func(st Stage) (func(context.Context) (*models.AnchorsResult, error), error) {
			cur := st.(ChunkingStage)
			req := models.AnchorsRequest{Word: cur.Word, Phonetics: cur.Phonetics, NativeLanguage: s.NativeLanguage}
			return func(ctx context.Context) (*models.AnchorsResult, error) {
				return s.engine.gen.GenerateAnchors(ctx, req)
			}, nil
		},
		func(st Stage, res *models.AnchorsResult) {
			cands := normalizeCandidates(res.Candidates)
			s.stage = AnchorsStage{
				ChunkingStage: st.(ChunkingStage),
				Candidates:    cands,
				Selected:      AutoSelect(cands),
			}
		})
}

// SelectAnchor chooses word as the anchor for chunk, replacing any earlier
// choice for that chunk.
func (s *Session) SelectAnchor(chunk, word string) error {
	if err := s.lockFor("select_anchor", StepAnchors); err != nil {
		return err
	}
	defer s.mu.Unlock()

	cur := s.stage.(AnchorsStage)
	selected, err := selectAnchor(cur.Candidates, cur.Selected, chunk, word)
	if err != nil {
		return err
	}
	cur.Selected = selected
	s.stage = cur
	s.errMsg = ""
	return nil
}

// CustomizeAnchors regenerates the candidates and re-applies auto-selection.
func (s *Session) CustomizeAnchors(ctx context.Context, instructions string) error {
	instructions = strings.TrimSpace(instructions)
	if instructions == "" {
		return ErrEmptyInstructions
	}
	return call(ctx, s, "customize_anchors", StepAnchors,
		func(st Stage) (func(context.Context) (*models.AnchorsResult, error), error) {
			cur := st.(AnchorsStage)
			req := models.AnchorsRequest{
				Word:               cur.Word,
				Phonetics:          cur.Phonetics,
				NativeLanguage:     s.NativeLanguage,
				CustomInstructions: instructions,
				CurrentAnchors:     cur.Selected,
			}
			return func(ctx context.Context) (*models.AnchorsResult, error) {
				return s.engine.gen.GenerateAnchors(ctx, req)
			}, nil
		},
		func(st Stage, res *models.AnchorsResult) {
			cur := st.(AnchorsStage)
			cur.Candidates = normalizeCandidates(res.Candidates)
			cur.Selected = AutoSelect(cur.Candidates)
			s.stage = cur
		})
}

// ConfirmAnchors builds the scene and moves to the bindings step. It is
// rejected until every chunk has exactly one selected anchor.
func (s *Session) ConfirmAnchors(ctx context.Context) error {
	return call(ctx, s, "confirm_anchors", StepAnchors,
		func(st Stage) (func(context.Context) (*models.SceneResult, error), error) {
			cur := st.(AnchorsStage)
			if !cur.selectionComplete() {
				return nil, ErrIncompleteSelection
			}
			req := models.SceneRequest{
				Word:           cur.Word,
				Analysis:       cur.Analysis,
				Anchors:        cur.Selected,
				NativeLanguage: s.NativeLanguage,
			}
			return func(ctx context.Context) (*models.SceneResult, error) {
				return s.engine.gen.BuildScene(ctx, req)
			}, nil
		},
		func(st Stage, res *models.SceneResult) {
			s.stage = BindingsStage{
				AnchorsStage: st.(AnchorsStage),
				Scene:        res.Scene,
				ImagePrompt:  res.ImagePrompt,
			}
		})
}

// CustomizeScene regenerates the scene and its image prompt in place.
func (s *Session) CustomizeScene(ctx context.Context, instructions string) error {
	instructions = strings.TrimSpace(instructions)
	if instructions == "" {
		return ErrEmptyInstructions
	}
	return call(ctx, s, "customize_scene", StepBindings,
		func(st Stage) (func(context.Context) (*models.SceneResult, error), error) {
			cur := st.(BindingsStage)
			scene := cur.Scene
			req := models.SceneRequest{
				Word:               cur.Word,
				Analysis:           cur.Analysis,
				Anchors:            cur.Selected,
				NativeLanguage:     s.NativeLanguage,
				CustomInstructions: instructions,
				CurrentScene:       &scene,
			}
			return func(ctx context.Context) (*models.SceneResult, error) {
				return s.engine.gen.BuildScene(ctx, req)
			}, nil
		},
		func(st Stage, res *models.SceneResult) {
			cur := st.(BindingsStage)
			cur.Scene = res.Scene
			cur.ImagePrompt = res.ImagePrompt
			s.stage = cur
		})
}

// ConfirmScene moves to the image step and starts generating the image in
// the background.
func (s *Session) ConfirmScene(ctx context.Context) error {
	if err := s.lockFor("confirm_scene", StepBindings); err != nil {
		return err
	}
	img := ImageStage{BindingsStage: s.stage.(BindingsStage)}
	req := models.ImageRequest{Prompt: img.ImagePrompt.Prompt, NegativePrompt: img.ImagePrompt.NegativePrompt}
	epoch := s.beginGeneration(img)
	s.mu.Unlock()

	s.dispatch(ctx, epoch, req)
	return nil
}

// RegenerateImage generates a new image from the current prompt.
func (s *Session) RegenerateImage(ctx context.Context) error {
	return s.startImage(ctx, "regenerate_image", "")
}

// CustomizeImage generates a new image with extra instructions. The service
// may answer with an enhanced prompt instead, which replaces the current
// prompt and triggers another generation pass.
func (s *Session) CustomizeImage(ctx context.Context, instructions string) error {
	instructions = strings.TrimSpace(instructions)
	if instructions == "" {
		return ErrEmptyInstructions
	}
	return s.startImage(ctx, "customize_image", instructions)
}

func (s *Session) startImage(ctx context.Context, action, instructions string) error {
	if err := s.lockFor(action, StepImage); err != nil {
		return err
	}
	img := s.stage.(ImageStage)
	img.Enhancements = 0
	req := models.ImageRequest{
		Prompt:             img.ImagePrompt.Prompt,
		NegativePrompt:     img.ImagePrompt.NegativePrompt,
		CustomInstructions: instructions,
	}
	epoch := s.beginGeneration(img)
	s.mu.Unlock()

	s.dispatch(ctx, epoch, req)
	return nil
}

// beginGeneration marks img as generating. Caller holds s.mu.
func (s *Session) beginGeneration(img ImageStage) uint64 {
	img.Generating = true
	s.stage = img
	s.busy = true
	s.errMsg = ""
	return s.epoch
}

// dispatch hands one generation pass to the runner. Must be called without s.mu.
func (s *Session) dispatch(ctx context.Context, epoch uint64, req models.ImageRequest) {
	log := s.log(ctx)
	err := s.engine.runner.Go("generate-image:"+s.ID, func(jobCtx context.Context) (err error) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("image generation panicked: %v", r)
				err = fmt.Errorf("image generation failed: %v", r)
				s.failGeneration(epoch, err)
			}
		}()
		res, err := s.engine.gen.GenerateImage(jobCtx, req)
		if next, ok := s.completeImage(jobCtx, epoch, res, err); ok {
			s.dispatch(jobCtx, epoch, next)
		}
		return err
	})
	if err != nil {
		log.Error("failed to schedule image generation: %v", err)
		s.failGeneration(epoch, err)
	}
}

// completeImage applies one generation result. When the result is an
// enhanced prompt within the limit it returns the next request to run.
func (s *Session) completeImage(ctx context.Context, epoch uint64, res *models.ImageResult, err error) (models.ImageRequest, bool) {
	log := s.log(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch != s.epoch {
		log.Info("discarding image result, session was reset")
		return models.ImageRequest{}, false
	}
	img, ok := s.stage.(ImageStage)
	if !ok {
		return models.ImageRequest{}, false
	}
	s.lastActive = s.engine.now()

	stop := func(msg string) {
		img.Generating = false
		s.stage = img
		s.busy = false
		s.errMsg = msg
	}

	switch {
	case err != nil:
		log.Warn("image generation failed: %v", err)
		stop(err.Error())
	case res == nil || (res.ImageURL == "" && res.EnhancedPrompt == ""):
		stop(ErrEmptyImageResult.Error())
	case res.ImageURL != "":
		img.ImageURL = res.ImageURL
		stop("")
		log.Info("image ready")
	case img.Enhancements >= s.engine.maxEnhancements:
		log.Warn("enhanced prompt limit %d reached", s.engine.maxEnhancements)
		stop(ErrEnhancementLimit.Error())
	default:
		img.Enhancements++
		img.ImagePrompt.Prompt = res.EnhancedPrompt
		s.stage = img
		log.Debug("following enhanced prompt %d/%d", img.Enhancements, s.engine.maxEnhancements)
		return models.ImageRequest{Prompt: res.EnhancedPrompt, NegativePrompt: img.ImagePrompt.NegativePrompt}, true
	}
	return models.ImageRequest{}, false
}

func (s *Session) failGeneration(epoch uint64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch != s.epoch {
		return
	}
	if img, ok := s.stage.(ImageStage); ok {
		img.Generating = false
		s.stage = img
	}
	s.busy = false
	s.errMsg = err.Error()
}

// ConfirmImage persists the assembled card and moves to the complete step.
func (s *Session) ConfirmImage(ctx context.Context) error {
	return call(ctx, s, "confirm_image", StepImage,
		func(st Stage) (func(context.Context) (*models.Card, error), error) {
			img := st.(ImageStage)
			if img.ImageURL == "" {
				return nil, ErrNoImage
			}
			card := s.assemble(img)
			return func(ctx context.Context) (*models.Card, error) {
				return s.engine.cards.CreateCard(ctx, s.ProfileID, card)
			}, nil
		},
		func(st Stage, res *models.Card) {
			s.stage = CompleteStage{ImageStage: st.(ImageStage), Card: *res}
		})
}

func (s *Session) assemble(img ImageStage) models.NewCard {
	return models.NewCard{
		Word:             img.Word,
		Analysis:         img.Analysis,
		Phonetics:        img.Phonetics,
		Anchors:          append([]models.SelectedAnchor(nil), img.Selected...),
		Scene:            img.Scene,
		ImagePrompt:      img.ImagePrompt,
		ImageURL:         img.ImageURL,
		LearningLanguage: s.LearningLanguage,
		NativeLanguage:   s.NativeLanguage,
	}
}

// Back returns to the previous step. From analysis it resets the session.
// From image it is refused while an image is generating.
func (s *Session) Back() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	step := s.stage.Step()
	if s.busy {
		return &TransitionError{Action: "back", Step: step, Err: ErrBusy}
	}
	switch cur := s.stage.(type) {
	case AnalysisStage:
		s.resetLocked()
		return nil
	case ChunkingStage:
		s.stage = cur.AnalysisStage
	case AnchorsStage:
		s.stage = cur.ChunkingStage
	case BindingsStage:
		s.stage = cur.AnchorsStage
	case ImageStage:
		s.stage = cur.BindingsStage
	default:
		return &TransitionError{Action: "back", Step: step, Err: ErrInvalidTransition}
	}
	s.errMsg = ""
	s.lastActive = s.engine.now()
	return nil
}

// Reset discards all progress. Results of calls still in flight are ignored.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

func (s *Session) resetLocked() {
	s.stage = InputStage{}
	s.busy = false
	s.errMsg = ""
	s.epoch++
	s.lastActive = s.engine.now()
}

// normalizeCandidates drops repeated chunk groups and orders each group by
// similarity.
func normalizeCandidates(cands []models.ChunkCandidates) []models.ChunkCandidates {
	return SortCandidates(lo.UniqBy(cands, func(c models.ChunkCandidates) string { return c.Chunk }))
}
