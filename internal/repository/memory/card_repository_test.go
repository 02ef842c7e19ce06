package memory_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/wordflash/internal/models"
	"github.com/vytor/wordflash/internal/repository"
	"github.com/vytor/wordflash/internal/repository/memory"
	"github.com/vytor/wordflash/internal/testutil"
)

func TestCreateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewCardRepository()

	first, err := repo.Create(ctx, testutil.Card("l1", "hello", 0))
	require.NoError(t, err)
	second, err := repo.Create(ctx, models.NewCard("l1", "hello", models.ContentTypePhrase, testutil.Epoch.Add(time.Hour)))
	require.NoError(t, err)

	assert.Equal(t, int64(1), first.Version)
	assert.Equal(t, models.ContentTypeWord, second.ContentType)
	assert.Equal(t, testutil.Epoch, second.CreatedAt)
}

func TestGetMissing(t *testing.T) {
	card, err := memory.NewCardRepository().Get(context.Background(), "l1", "nope")
	require.NoError(t, err)
	assert.Nil(t, card)
}

func TestGetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewCardRepository()
	_, err := repo.Create(ctx, testutil.Card("l1", "hello", 0))
	require.NoError(t, err)

	card, err := repo.Get(ctx, "l1", "hello")
	require.NoError(t, err)
	card.TotalReviews = 99

	again, err := repo.Get(ctx, "l1", "hello")
	require.NoError(t, err)
	assert.Zero(t, again.TotalReviews)
}

func TestSaveVersioning(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewCardRepository()
	card, err := repo.Create(ctx, testutil.Card("l1", "hello", 0))
	require.NoError(t, err)

	stale := *card
	card.TotalReviews = 1
	require.NoError(t, repo.Save(ctx, card))
	assert.Equal(t, int64(2), card.Version)

	stale.TotalReviews = 5
	assert.ErrorIs(t, repo.Save(ctx, &stale), repository.ErrVersionConflict)

	ghost := testutil.Card("l1", "ghost", 0)
	assert.ErrorIs(t, repo.Save(ctx, &ghost), repository.ErrCardNotFound)
}

func TestSaveConcurrentWritersOneWins(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewCardRepository()
	card, err := repo.Create(ctx, testutil.Card("l1", "hello", 0))
	require.NoError(t, err)

	const writers = 16
	var wg sync.WaitGroup
	results := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := *card
			c.TotalReviews = 1
			results <- repo.Save(ctx, &c)
		}()
	}
	wg.Wait()
	close(results)

	var ok, conflicts int
	for err := range results {
		if err == nil {
			ok++
		} else {
			assert.ErrorIs(t, err, repository.ErrVersionConflict)
			conflicts++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, writers-1, conflicts)
}

func TestListsAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewCardRepository()
	now := testutil.Epoch.Add(10 * 24 * time.Hour)

	for _, c := range []models.Card{
		testutil.Card("l1", "new-b", 2*time.Minute),
		testutil.Card("l1", "new-a", time.Minute),
		testutil.ReviewedCard("l1", "due", now, 3),
		testutil.ReviewedCard("l1", "later", now.Add(time.Millisecond), 3),
		testutil.Card("l2", "other", 0),
	} {
		_, err := repo.Create(ctx, c)
		require.NoError(t, err)
	}

	all, err := repo.ListAll(ctx, "l1")
	require.NoError(t, err)
	assert.Len(t, all, 4)

	due, err := repo.ListDue(ctx, "l1", now)
	require.NoError(t, err)
	assert.Len(t, due, 3, "new cards are due at creation")

	fresh, err := repo.ListNew(ctx, "l1", 1)
	require.NoError(t, err)
	require.Len(t, fresh, 1)
	assert.Equal(t, "new-a", fresh[0].ContentID)

	learners, err := repo.ListLearners(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"l1", "l2"}, learners)

	deleted, err := repo.Delete(ctx, "l2", "other")
	require.NoError(t, err)
	assert.True(t, deleted)
	deleted, err = repo.Delete(ctx, "l2", "other")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestReviewHistory(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewCardRepository()
	_, err := repo.Create(ctx, testutil.Card("l1", "hello", 0))
	require.NoError(t, err)

	for i := 1; i <= 3; i++ {
		require.NoError(t, repo.InsertReviewLog(ctx, models.ReviewLog{
			LearnerID:  "l1",
			ContentID:  "hello",
			Quality:    i + 2,
			ReviewedAt: testutil.Epoch.Add(time.Duration(i) * time.Hour),
		}))
	}
	assert.ErrorIs(t, repo.InsertReviewLog(ctx, models.ReviewLog{LearnerID: "l1", ContentID: "nope"}), repository.ErrCardNotFound)

	history, err := repo.ReviewHistory(ctx, "l1", "hello", 2)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, 5, history[0].Quality)
	assert.Equal(t, int64(3), history[0].ID)
	assert.Equal(t, 4, history[1].Quality)
}
