package sqlite_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/vytor/mnemoflash/internal/models"
	"github.com/vytor/mnemoflash/internal/repository"
	"github.com/vytor/mnemoflash/internal/repository/sqlite"
	"github.com/vytor/mnemoflash/internal/testutil"
)

type ReviewRepositorySuite struct {
	suite.Suite
	db        *sql.DB
	cards     repository.CardRepository
	repo      repository.ReviewRepository
	profileID int64
	now       time.Time
}

func (s *ReviewRepositorySuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.cards = sqlite.NewCardRepository(s.db)
	s.repo = sqlite.NewReviewRepository(s.db)
	s.profileID = testutil.NewProfile(s.T(), s.db, "learner")
	s.now = time.Date(2024, 6, 10, 9, 30, 0, 0, time.UTC)
}

func (s *ReviewRepositorySuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func (s *ReviewRepositorySuite) newRecord(word string, nextReview time.Time) models.ReviewRecord {
	cardID, err := s.cards.Insert(context.Background(), sampleCard(s.profileID, word, models.POSNoun, s.now))
	s.Require().NoError(err)
	return models.ReviewRecord{
		ProfileID:    s.profileID,
		CardID:       cardID,
		EaseFactor:   2.5,
		IntervalDays: 1,
		NextReview:   nextReview,
		CreatedAt:    s.now,
	}
}

func (s *ReviewRepositorySuite) TestInsertAndGet() {
	ctx := context.Background()
	rec := s.newRecord("table", s.now)

	id, err := s.repo.Insert(ctx, rec)
	s.Require().NoError(err)

	got, err := s.repo.Get(ctx, s.profileID, id)
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Equal(rec.CardID, got.CardID)
	s.Equal(2.5, got.EaseFactor)
	s.Equal(1, got.IntervalDays)
	s.Zero(got.Repetitions)
	s.Nil(got.LastReviewed)
	s.True(s.now.Equal(got.NextReview))

	byCard, err := s.repo.GetByCard(ctx, s.profileID, rec.CardID)
	s.Require().NoError(err)
	s.Equal(id, byCard.ID)

	missing, err := s.repo.Get(ctx, s.profileID+1, id)
	s.NoError(err)
	s.Nil(missing)
}

func (s *ReviewRepositorySuite) TestInsert_OneRecordPerCard() {
	ctx := context.Background()
	rec := s.newRecord("table", s.now)

	_, err := s.repo.Insert(ctx, rec)
	s.Require().NoError(err)
	_, err = s.repo.Insert(ctx, rec)
	s.Error(err)
}

func (s *ReviewRepositorySuite) TestRecord_UpdatesAndAppendsHistory() {
	ctx := context.Background()
	rec := s.newRecord("table", s.now)
	id, err := s.repo.Insert(ctx, rec)
	s.Require().NoError(err)

	rec.ID = id
	rec.Repetitions = 1
	rec.IntervalDays = 6
	rec.EaseFactor = 2.5
	rec.NextReview = s.now.AddDate(0, 0, 6)
	reviewed := s.now
	rec.LastReviewed = &reviewed

	err = s.repo.Record(ctx, rec, models.ReviewHistory{Rating: "good", IntervalDays: 6, EaseFactor: 2.5, ReviewedAt: s.now})
	s.Require().NoError(err)

	got, err := s.repo.Get(ctx, s.profileID, id)
	s.Require().NoError(err)
	s.Equal(1, got.Repetitions)
	s.Equal(6, got.IntervalDays)
	s.Require().NotNil(got.LastReviewed)
	s.True(s.now.Equal(*got.LastReviewed))

	history, err := s.repo.History(ctx, id)
	s.Require().NoError(err)
	s.Require().Len(history, 1)
	s.Equal("good", history[0].Rating)
	s.Equal(6, history[0].IntervalDays)
}

func (s *ReviewRepositorySuite) TestRecord_UnknownRecord() {
	err := s.repo.Record(context.Background(), models.ReviewRecord{ID: 42, EaseFactor: 2.5, IntervalDays: 1, NextReview: s.now},
		models.ReviewHistory{Rating: "good", IntervalDays: 1, EaseFactor: 2.5, ReviewedAt: s.now})
	s.ErrorIs(err, sql.ErrNoRows)

	var count int
	s.Require().NoError(s.db.QueryRow(`SELECT COUNT(*) FROM review_history`).Scan(&count))
	s.Zero(count)
}

func (s *ReviewRepositorySuite) TestDueAndCountDue() {
	ctx := context.Background()
	overdue := s.newRecord("table", s.now.Add(-48*time.Hour))
	dueNow := s.newRecord("chair", s.now)
	later := s.newRecord("lamp", s.now.Add(time.Hour))
	for _, rec := range []models.ReviewRecord{later, dueNow, overdue} {
		_, err := s.repo.Insert(ctx, rec)
		s.Require().NoError(err)
	}

	due, err := s.repo.Due(ctx, s.profileID, s.now, 10)
	s.Require().NoError(err)
	s.Require().Len(due, 2)
	s.Equal("table", due[0].Card.Word, "most overdue first")
	s.Equal("chair", due[1].Card.Word)
	s.Equal(due[0].Card.ID, due[0].Review.CardID)
	s.Equal("стол", due[0].Card.Analysis.Translation)

	limited, err := s.repo.Due(ctx, s.profileID, s.now, 1)
	s.Require().NoError(err)
	s.Len(limited, 1)

	count, err := s.repo.CountDue(ctx, s.profileID, s.now)
	s.Require().NoError(err)
	s.Equal(2, count)

	count, err = s.repo.CountDue(ctx, s.profileID, s.now.Add(2*time.Hour))
	s.Require().NoError(err)
	s.Equal(3, count)
}

func TestReviewRepositorySuite(t *testing.T) {
	suite.Run(t, new(ReviewRepositorySuite))
}
