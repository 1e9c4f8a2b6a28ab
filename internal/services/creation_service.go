package services

import (
	"context"
	stderrors "errors"
	"sort"

	"github.com/samber/lo"
	"github.com/vytor/mnemoflash/internal/errors"
	"github.com/vytor/mnemoflash/internal/logger"
	"github.com/vytor/mnemoflash/internal/models"
	"github.com/vytor/mnemoflash/internal/pipeline"
	"github.com/vytor/mnemoflash/internal/repository"
)

// Creation session actions, named after their routes.
const (
	ActionSubmitWord        = "word"
	ActionConfirmAnalysis   = "analysis/confirm"
	ActionBack              = "back"
	ActionConfirmChunking   = "chunking/confirm"
	ActionCustomizeChunking = "chunking/customize"
	ActionSelectAnchor      = "anchors/select"
	ActionCustomizeAnchors  = "anchors/customize"
	ActionConfirmAnchors    = "anchors/confirm"
	ActionCustomizeScene    = "scene/customize"
	ActionConfirmScene      = "scene/confirm"
	ActionRegenerateImage   = "image/regenerate"
	ActionCustomizeImage    = "image/customize"
	ActionConfirmImage      = "image/confirm"
	ActionReset             = "reset"
)

// CreationService drives card creation sessions for a profile.
type CreationService interface {
	StartSession(ctx context.Context, profileID int64) (*pipeline.Snapshot, error)
	GetSession(ctx context.Context, profileID int64, id string) (*pipeline.Snapshot, error)
	ListSessions(ctx context.Context, profileID int64) []pipeline.Snapshot
	DeleteSession(ctx context.Context, profileID int64, id string) error
	Apply(ctx context.Context, profileID int64, id, action string, in models.SessionInput) (*pipeline.Snapshot, error)
}

type creationService struct {
	store       *pipeline.Store
	profileRepo repository.ProfileRepository
}

func NewCreationService(store *pipeline.Store, profileRepo repository.ProfileRepository) CreationService {
	return &creationService{store: store, profileRepo: profileRepo}
}

func (s *creationService) StartSession(ctx context.Context, profileID int64) (*pipeline.Snapshot, error) {
	log := logger.FromContext(ctx)
	log.Debug("starting creation session: profile_id=%d", profileID)

	profile, err := s.profileRepo.Get(ctx, profileID)
	if err != nil {
		log.Error("failed to load profile: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if profile == nil {
		return nil, errors.NewNotFoundError("profile", profileID)
	}

	sess := s.store.Create(profileID, profile.LearningLanguage, profile.NativeLanguage)
	log.Info("creation session started: id=%s, %s->%s", sess.ID, sess.LearningLanguage, sess.NativeLanguage)
	sn := sess.Snapshot()
	return &sn, nil
}

func (s *creationService) GetSession(ctx context.Context, profileID int64, id string) (*pipeline.Snapshot, error) {
	logger.FromContext(ctx).Debug("getting creation session: profile_id=%d, id=%s", profileID, id)

	sess, err := s.store.Get(id, profileID)
	if err != nil {
		return nil, creationError(id, err)
	}
	sn := sess.Snapshot()
	return &sn, nil
}

// ListSessions returns the profile's sessions, most recently active first.
func (s *creationService) ListSessions(ctx context.Context, profileID int64) []pipeline.Snapshot {
	logger.FromContext(ctx).Debug("listing creation sessions: profile_id=%d", profileID)

	snaps := lo.Map(s.store.List(profileID), func(sess *pipeline.Session, _ int) pipeline.Snapshot {
		return sess.Snapshot()
	})
	sort.SliceStable(snaps, func(i, j int) bool {
		return snaps[i].UpdatedAt.After(snaps[j].UpdatedAt)
	})
	return snaps
}

func (s *creationService) DeleteSession(ctx context.Context, profileID int64, id string) error {
	logger.FromContext(ctx).Debug("deleting creation session: profile_id=%d, id=%s", profileID, id)

	if err := s.store.Delete(id, profileID); err != nil {
		return creationError(id, err)
	}
	return nil
}

// Apply runs action against the session and returns its state afterwards.
// Generator failures are reported as errors; the session keeps its previous
// step and records the message.
func (s *creationService) Apply(ctx context.Context, profileID int64, id, action string, in models.SessionInput) (*pipeline.Snapshot, error) {
	log := logger.FromContext(ctx).WithFields(map[string]any{"session_id": id, "action": action})
	log.Debug("applying session action")

	sess, err := s.store.Get(id, profileID)
	if err != nil {
		return nil, creationError(id, err)
	}

	if err := apply(ctx, sess, action, in); err != nil {
		log.Warn("session action rejected: %v", err)
		return nil, creationError(id, err)
	}

	sn := sess.Snapshot()
	log.Debug("session action applied: step=%s", sn.Step)
	return &sn, nil
}

func apply(ctx context.Context, sess *pipeline.Session, action string, in models.SessionInput) error {
	switch action {
	case ActionSubmitWord:
		return sess.SubmitWord(ctx, in.Word)
	case ActionConfirmAnalysis:
		return sess.ConfirmAnalysis()
	case ActionBack:
		return sess.Back()
	case ActionConfirmChunking:
		return sess.ConfirmChunking(ctx)
	case ActionCustomizeChunking:
		return sess.CustomizeChunking(ctx, in.Instructions)
	case ActionSelectAnchor:
		return sess.SelectAnchor(in.Chunk, in.Anchor)
	case ActionCustomizeAnchors:
		return sess.CustomizeAnchors(ctx, in.Instructions)
	case ActionConfirmAnchors:
		return sess.ConfirmAnchors(ctx)
	case ActionCustomizeScene:
		return sess.CustomizeScene(ctx, in.Instructions)
	case ActionConfirmScene:
		return sess.ConfirmScene(ctx)
	case ActionRegenerateImage:
		return sess.RegenerateImage(ctx)
	case ActionCustomizeImage:
		return sess.CustomizeImage(ctx, in.Instructions)
	case ActionConfirmImage:
		return sess.ConfirmImage(ctx)
	case ActionReset:
		sess.Reset()
		return nil
	}
	return errors.NewNotFoundError("action", action)
}

// creationError maps session errors to AppErrors.
func creationError(id string, err error) error {
	var upstream *pipeline.UpstreamError
	switch {
	case errors.Is(err, pipeline.ErrSessionNotFound):
		return errors.NewNotFoundError("creation session", id)
	case errors.Is(err, pipeline.ErrBusy), errors.Is(err, pipeline.ErrInvalidTransition):
		return errors.NewConflictError(err.Error(), err)
	case errors.Is(err, pipeline.ErrEmptyWord),
		errors.Is(err, pipeline.ErrEmptyInstructions),
		errors.Is(err, pipeline.ErrUnknownChunk),
		errors.Is(err, pipeline.ErrUnknownCandidate),
		errors.Is(err, pipeline.ErrIncompleteSelection),
		errors.Is(err, pipeline.ErrNoImage):
		return errors.NewBadRequestError(err.Error())
	case stderrors.As(err, &upstream):
		return generationError(upstream.Err)
	}
	if appErr, ok := errors.As(err); ok {
		return appErr
	}
	return errors.NewInternalError(err)
}
