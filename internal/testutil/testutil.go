package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vytor/wordflash/internal/db"
	"github.com/vytor/wordflash/internal/models"
)

var dbCounter atomic.Int64

// NewTestDB creates a private in-memory SQLite database with all migrations
// applied and foreign keys enabled.
func NewTestDB(t *testing.T) *db.DB {
	t.Helper()
	name := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", dbCounter.Add(1))
	database, err := db.Open(db.DriverSQLite, name)
	require.NoError(t, err)
	return database
}

// MustClose closes a resource and fails the test on error.
func MustClose(t *testing.T, closer interface{ Close() error }) {
	require.NoError(t, closer.Close())
}

// Epoch is a fixed UTC instant for deterministic tests.
var Epoch = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

// Card builds a new card for learnerID/contentID created at Epoch+offset.
func Card(learnerID, contentID string, offset time.Duration) models.Card {
	return models.NewCard(learnerID, contentID, models.ContentTypeWord, Epoch.Add(offset))
}

// ReviewedCard builds a card that has been reviewed and is next due at next.
func ReviewedCard(learnerID, contentID string, next time.Time, intervalDays int) models.Card {
	c := Card(learnerID, contentID, 0)
	last := next.Add(-time.Duration(intervalDays) * 24 * time.Hour)
	c.IsNew = false
	c.LastReviewedAt = &last
	c.NextReviewAt = next
	c.IntervalDays = intervalDays
	c.Repetitions = 1
	c.TotalReviews = 1
	c.TotalCorrect = 1
	return c
}
