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
	"github.com/vytor/mnemoflash/internal/dictionary"
	"github.com/vytor/mnemoflash/internal/flashcard"
	"github.com/vytor/mnemoflash/internal/models"
	"github.com/vytor/mnemoflash/internal/testutil/mocks"
)

var testNow = time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)

func newCard() models.NewCard {
	return models.NewCard{
		Word: " table ",
		Analysis: models.WordAnalysis{
			NormalizedWord: "table",
			POS:            models.POSNoun,
			IPA:            "ˈteɪbl",
			Translation:    "стол",
			ExampleUsage:   "The book is on the table.",
		},
		Phonetics: models.Phonetics{
			IPA:    "ˈteɪbəl",
			Chunks: []models.PhoneticChunk{{Chunk: "tei", IPA: "teɪ"}, {Chunk: "bl", IPA: "bəl"}},
		},
		Anchors: []models.SelectedAnchor{
			{Chunk: "tei", AnchorWord: "тей", Score: 0.9, Reason: "Auto-selected best match"},
			{Chunk: "bl", AnchorWord: "бал", Score: 0.8, Reason: "User selected"},
		},
		Scene: models.Scene{
			MainObject: "a wooden table",
			Bindings:   []models.Binding{{Anchor: "тей", Relation: models.RelationOn, Target: "table"}},
		},
		ImagePrompt: models.ImagePrompt{Prompt: "a wooden table", NegativePrompt: "text"},
		ImageURL:    "data:image/png;base64,AAAA",
	}
}

type cardServiceDeps struct {
	cards    *mocks.MockCardRepository
	reviews  *mocks.MockReviewRepository
	profiles *mocks.MockProfileRepository
	dict     *mocks.MockDictionaryClient
	svc      *cardService
}

func newCardServiceDeps() cardServiceDeps {
	d := cardServiceDeps{
		cards:    new(mocks.MockCardRepository),
		reviews:  new(mocks.MockReviewRepository),
		profiles: new(mocks.MockProfileRepository),
		dict:     new(mocks.MockDictionaryClient),
	}
	d.svc = NewCardService(d.cards, d.reviews, d.profiles, d.dict).(*cardService)
	d.svc.now = func() time.Time { return testNow }
	return d
}

func TestCardService_CreateCard(t *testing.T) {
	d := newCardServiceDeps()
	d.profiles.On("Get", mock.Anything, int64(1)).Return(&models.Profile{ID: 1, LearningLanguage: "en", NativeLanguage: "ru"}, nil)
	d.dict.On("Pronunciation", mock.Anything, "table", "en").Return(dictionary.Audio{AudioURL: "https://audio/table.mp3", Source: dictionary.SourceDictionary}, nil)

	var inserted models.Card
	d.cards.On("Insert", mock.Anything, mock.AnythingOfType("models.Card")).
		Run(func(args mock.Arguments) { inserted = args.Get(1).(models.Card) }).
		Return(int64(7), nil)
	d.reviews.On("Insert", mock.Anything, mock.AnythingOfType("models.ReviewRecord")).Return(int64(3), nil)

	card, err := d.svc.CreateCard(context.Background(), 1, newCard())
	require.NoError(t, err)

	assert.Equal(t, int64(7), card.ID)
	assert.Equal(t, "table", inserted.Word)
	assert.Equal(t, models.POSNoun, inserted.POS)
	assert.Equal(t, "ˈteɪbəl", inserted.IPA)
	assert.Equal(t, "стол", inserted.Translation)
	assert.Equal(t, "The book is on the table.", inserted.ExampleSentence)
	assert.Equal(t, "en", inserted.LearningLanguage)
	assert.Equal(t, "ru", inserted.NativeLanguage)
	assert.Equal(t, "https://audio/table.mp3", inserted.AudioURL)
	assert.Equal(t, testNow, inserted.CreatedAt)

	require.Len(t, inserted.Anchors, 2)
	assert.Equal(t, "teɪ", inserted.Anchors[0].ChunkIPA)
	assert.Equal(t, "bəl", inserted.Anchors[1].ChunkIPA)
	assert.Equal(t, "User selected", inserted.Anchors[1].Reason)
	assert.Equal(t, int64(7), card.Anchors[0].CardID)
	assert.Len(t, inserted.Bindings, 1)

	d.reviews.AssertCalled(t, "Insert", mock.Anything, mock.MatchedBy(func(rec models.ReviewRecord) bool {
		return rec.CardID == 7 && rec.ProfileID == 1 && rec.Repetitions == 0 &&
			rec.EaseFactor == flashcard.DefaultEaseFactor && rec.IntervalDays == 1 && rec.NextReview.Equal(testNow)
	}))
}

func TestCardService_CreateCard_KeepsSuppliedLanguagesAndAudio(t *testing.T) {
	d := newCardServiceDeps()
	d.profiles.On("Get", mock.Anything, int64(1)).Return(&models.Profile{ID: 1, LearningLanguage: "en", NativeLanguage: "ru"}, nil)
	d.cards.On("Insert", mock.Anything, mock.MatchedBy(func(c models.Card) bool {
		return c.LearningLanguage == "de" && c.NativeLanguage == "en" && c.AudioURL == "https://given"
	})).Return(int64(1), nil)
	d.reviews.On("Insert", mock.Anything, mock.Anything).Return(int64(1), nil)

	nc := newCard()
	nc.LearningLanguage, nc.NativeLanguage, nc.AudioURL = "de", "en", "https://given"
	_, err := d.svc.CreateCard(context.Background(), 1, nc)
	require.NoError(t, err)
	d.dict.AssertNotCalled(t, "Pronunciation", mock.Anything, mock.Anything, mock.Anything)
}

func TestCardService_CreateCard_BestEffortExtras(t *testing.T) {
	d := newCardServiceDeps()
	d.profiles.On("Get", mock.Anything, int64(1)).Return(&models.Profile{ID: 1, LearningLanguage: "en", NativeLanguage: "ru"}, nil)
	d.dict.On("Pronunciation", mock.Anything, "table", "en").Return(dictionary.Audio{}, stderrors.New("offline"))
	d.cards.On("Insert", mock.Anything, mock.MatchedBy(func(c models.Card) bool { return c.AudioURL == "" })).Return(int64(2), nil)
	d.reviews.On("Insert", mock.Anything, mock.Anything).Return(int64(0), stderrors.New("disk full"))

	card, err := d.svc.CreateCard(context.Background(), 1, newCard())
	require.NoError(t, err)
	assert.Equal(t, int64(2), card.ID)
}

func TestCardService_CreateCard_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.NewCard)
	}{
		{"empty word", func(c *models.NewCard) { c.Word = "  " }},
		{"no anchors", func(c *models.NewCard) { c.Anchors = nil }},
		{"no image", func(c *models.NewCard) { c.ImageURL = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newCardServiceDeps()
			nc := newCard()
			tt.mutate(&nc)
			_, err := d.svc.CreateCard(context.Background(), 1, nc)
			requireAppError(t, err, http.StatusBadRequest)
			d.cards.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
		})
	}
}

func TestCardService_CreateCard_InsertFails(t *testing.T) {
	d := newCardServiceDeps()
	d.profiles.On("Get", mock.Anything, int64(1)).Return(&models.Profile{ID: 1, LearningLanguage: "en", NativeLanguage: "ru"}, nil)
	d.dict.On("Pronunciation", mock.Anything, mock.Anything, mock.Anything).Return(dictionary.Audio{}, nil)
	d.cards.On("Insert", mock.Anything, mock.Anything).Return(int64(0), stderrors.New("constraint failed"))

	_, err := d.svc.CreateCard(context.Background(), 1, newCard())
	requireAppError(t, err, http.StatusInternalServerError)
	d.reviews.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestCardService_GetCard_NotFound(t *testing.T) {
	d := newCardServiceDeps()
	d.cards.On("Get", mock.Anything, int64(1), int64(42)).Return(nil, nil)

	_, err := d.svc.GetCard(context.Background(), 1, 42)
	requireAppError(t, err, http.StatusNotFound)
}

func TestCardService_ListCards_ClampsPaging(t *testing.T) {
	d := newCardServiceDeps()
	want := models.CardFilter{ProfileID: 1, Search: "tab", Limit: maxCardPageSize, Offset: 0}
	d.cards.On("List", mock.Anything, want).Return([]models.Card{{ID: 1}}, nil)
	d.cards.On("Count", mock.Anything, want).Return(12, nil)

	cards, total, err := d.svc.ListCards(context.Background(), models.CardFilter{ProfileID: 1, Search: "tab", Limit: 1000, Offset: -5})
	require.NoError(t, err)
	assert.Len(t, cards, 1)
	assert.Equal(t, 12, total)
	d.cards.AssertExpectations(t)
}
