package services

import (
	"context"
	stderrors "errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vytor/mnemoflash/internal/models"
	"github.com/vytor/mnemoflash/internal/pipeline"
	"github.com/vytor/mnemoflash/internal/testutil/mocks"
)

type inlineRunner struct{}

func (inlineRunner) Go(_ string, fn func(ctx context.Context) error) error {
	_ = fn(context.Background())
	return nil
}

type creationDeps struct {
	gen      *mocks.MockGenerator
	cards    *mocks.MockCardService
	profiles *mocks.MockProfileRepository
	svc      CreationService
}

func newCreationDeps() creationDeps {
	d := creationDeps{
		gen:      new(mocks.MockGenerator),
		cards:    new(mocks.MockCardService),
		profiles: new(mocks.MockProfileRepository),
	}
	engine := pipeline.NewEngine(d.gen, d.cards, inlineRunner{}, pipeline.WithClock(func() time.Time { return testNow }))
	d.svc = NewCreationService(pipeline.NewStore(engine, time.Hour), d.profiles)
	d.profiles.On("Get", mock.Anything, int64(1)).Return(&models.Profile{ID: 1, LearningLanguage: "en", NativeLanguage: "ru"}, nil)
	return d
}

func (d creationDeps) start(t *testing.T) string {
	t.Helper()
	sn, err := d.svc.StartSession(context.Background(), 1)
	require.NoError(t, err)
	return sn.ID
}

func TestCreationService_StartSession(t *testing.T) {
	d := newCreationDeps()

	sn, err := d.svc.StartSession(context.Background(), 1)
	require.NoError(t, err)
	assert.NotEmpty(t, sn.ID)
	assert.Equal(t, pipeline.StepInput, sn.Step)
	assert.Equal(t, "en", sn.LearningLanguage)
	assert.Equal(t, "ru", sn.NativeLanguage)

	got, err := d.svc.GetSession(context.Background(), 1, sn.ID)
	require.NoError(t, err)
	assert.Equal(t, sn.ID, got.ID)
	assert.Len(t, d.svc.ListSessions(context.Background(), 1), 1)
	assert.Empty(t, d.svc.ListSessions(context.Background(), 2))
}

func TestCreationService_StartSession_UnknownProfile(t *testing.T) {
	d := newCreationDeps()
	d.profiles.On("Get", mock.Anything, int64(9)).Return(nil, nil)

	_, err := d.svc.StartSession(context.Background(), 9)
	requireAppError(t, err, http.StatusNotFound)
}

func TestCreationService_Apply_SubmitWord(t *testing.T) {
	d := newCreationDeps()
	id := d.start(t)
	d.gen.On("Analyze", mock.Anything, models.AnalyzeRequest{Word: "table", LearningLanguage: "en", NativeLanguage: "ru"}).
		Return(&models.AnalyzeResult{Analysis: models.WordAnalysis{NormalizedWord: "table", POS: models.POSNoun}}, nil)

	sn, err := d.svc.Apply(context.Background(), 1, id, ActionSubmitWord, models.SessionInput{Word: "table"})
	require.NoError(t, err)
	assert.Equal(t, pipeline.StepAnalysis, sn.Step)
	assert.Equal(t, "table", sn.Word)

	sn, err = d.svc.Apply(context.Background(), 1, id, ActionConfirmAnalysis, models.SessionInput{})
	require.NoError(t, err)
	assert.Equal(t, pipeline.StepChunking, sn.Step)

	sn, err = d.svc.Apply(context.Background(), 1, id, ActionReset, models.SessionInput{})
	require.NoError(t, err)
	assert.Equal(t, pipeline.StepInput, sn.Step)
}

func TestCreationService_Apply_Errors(t *testing.T) {
	t.Run("unknown session", func(t *testing.T) {
		d := newCreationDeps()
		_, err := d.svc.Apply(context.Background(), 1, "missing", ActionBack, models.SessionInput{})
		requireAppError(t, err, http.StatusNotFound)
	})

	t.Run("session of another profile", func(t *testing.T) {
		d := newCreationDeps()
		id := d.start(t)
		_, err := d.svc.GetSession(context.Background(), 2, id)
		requireAppError(t, err, http.StatusNotFound)
	})

	t.Run("unknown action", func(t *testing.T) {
		d := newCreationDeps()
		id := d.start(t)
		_, err := d.svc.Apply(context.Background(), 1, id, "teleport", models.SessionInput{})
		requireAppError(t, err, http.StatusNotFound)
	})

	t.Run("empty word", func(t *testing.T) {
		d := newCreationDeps()
		id := d.start(t)
		_, err := d.svc.Apply(context.Background(), 1, id, ActionSubmitWord, models.SessionInput{Word: " "})
		requireAppError(t, err, http.StatusBadRequest)
	})

	t.Run("action not available at step", func(t *testing.T) {
		d := newCreationDeps()
		id := d.start(t)
		_, err := d.svc.Apply(context.Background(), 1, id, ActionConfirmScene, models.SessionInput{})
		requireAppError(t, err, http.StatusConflict)
	})

	t.Run("generator failure keeps step and records message", func(t *testing.T) {
		d := newCreationDeps()
		id := d.start(t)
		d.gen.On("Analyze", mock.Anything, mock.Anything).Return(nil, stderrors.New("failed to analyze word: HTTP 500: boom"))

		_, err := d.svc.Apply(context.Background(), 1, id, ActionSubmitWord, models.SessionInput{Word: "table"})
		appErr := requireAppError(t, err, http.StatusBadGateway)
		assert.Equal(t, "failed to analyze word: HTTP 500: boom", appErr.Message)

		sn, err := d.svc.GetSession(context.Background(), 1, id)
		require.NoError(t, err)
		assert.Equal(t, pipeline.StepInput, sn.Step)
		assert.Equal(t, "failed to analyze word: HTTP 500: boom", sn.Error)
	})
}

func TestCreationService_DeleteSession(t *testing.T) {
	d := newCreationDeps()
	id := d.start(t)

	requireAppError(t, d.svc.DeleteSession(context.Background(), 2, id), http.StatusNotFound)
	require.NoError(t, d.svc.DeleteSession(context.Background(), 1, id))

	_, err := d.svc.GetSession(context.Background(), 1, id)
	requireAppError(t, err, http.StatusNotFound)
}
