package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/vytor/wordflash/internal/db"
	"github.com/vytor/wordflash/internal/logger"
	"github.com/vytor/wordflash/internal/models"
	"github.com/vytor/wordflash/internal/repository"
)

var cardColumns = []string{
	"learner_id", "content_id", "content_type", "ease_factor", "interval_days", "repetitions",
	"last_reviewed_at", "next_review_at", "total_reviews", "total_correct", "average_response_time_ms",
	"streak", "max_streak", "last_accuracy", "last_speed", "is_new", "version", "created_at", "updated_at",
}

var reviewColumns = []string{
	"learner_id", "content_id", "quality", "response_time_ms", "accuracy", "speed", "reviewed_at",
}

type cardRepository struct {
	db *db.DB
	sq squirrel.StatementBuilderType
}

// NewCardRepository creates a CardRepository backed by sqlite or postgres.
func NewCardRepository(database *db.DB) repository.CardRepository {
	return &cardRepository{db: database, sq: database.Builder()}
}

func (r *cardRepository) Get(ctx context.Context, learnerID, contentID string) (*models.Card, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("fetching card: learner=%s, content=%s", learnerID, contentID)

	query, args, err := r.sq.Select(cardColumns...).From("cards").
		Where(squirrel.Eq{"learner_id": learnerID, "content_id": contentID}).
		ToSql()
	if err != nil {
		return nil, err
	}

	var card models.Card
	err = r.db.GetContext(ctx, &card, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("card not found: learner=%s, content=%s", learnerID, contentID)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to fetch card: %v", err)
		return nil, err
	}
	return &card, nil
}

func (r *cardRepository) Create(ctx context.Context, card models.Card) (*models.Card, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("creating card: learner=%s, content=%s, type=%s", card.LearnerID, card.ContentID, card.ContentType)

	if card.Version == 0 {
		card.Version = 1
	}
	insert, insertArgs, err := r.sq.Insert("cards").
		Columns(cardColumns...).
		Values(cardValues(card)...).
		Suffix("ON CONFLICT (learner_id, content_id) DO NOTHING").
		ToSql()
	if err != nil {
		return nil, err
	}
	sel, selArgs, err := r.sq.Select(cardColumns...).From("cards").
		Where(squirrel.Eq{"learner_id": card.LearnerID, "content_id": card.ContentID}).
		ToSql()
	if err != nil {
		return nil, err
	}

	var stored models.Card
	err = db.RunInTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, insert, insertArgs...); err != nil {
			return err
		}
		return tx.GetContext(ctx, &stored, sel, selArgs...)
	})
	if err != nil {
		log.Error("failed to create card: %v", err)
		return nil, err
	}
	return &stored, nil
}

func (r *cardRepository) Save(ctx context.Context, card *models.Card) error {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("saving card: learner=%s, content=%s, version=%d, interval=%d, ease=%.2f",
		card.LearnerID, card.ContentID, card.Version, card.IntervalDays, card.EaseFactor)

	query, args, err := r.sq.Update("cards").
		SetMap(map[string]any{
			"ease_factor":              card.EaseFactor,
			"interval_days":            card.IntervalDays,
			"repetitions":              card.Repetitions,
			"last_reviewed_at":         utcPtr(card.LastReviewedAt),
			"next_review_at":           card.NextReviewAt.UTC(),
			"total_reviews":            card.TotalReviews,
			"total_correct":            card.TotalCorrect,
			"average_response_time_ms": card.AverageResponseTimeMs,
			"streak":                   card.Streak,
			"max_streak":               card.MaxStreak,
			"last_accuracy":            card.LastAccuracy,
			"last_speed":               card.LastSpeed,
			"is_new":                   card.IsNew,
			"updated_at":               card.UpdatedAt.UTC(),
			"version":                  squirrel.Expr("version + 1"),
		}).
		Where(squirrel.Eq{"learner_id": card.LearnerID, "content_id": card.ContentID, "version": card.Version}).
		ToSql()
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to save card: %v", err)
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		log.Error("failed to read affected rows: %v", err)
		return err
	}
	if n == 0 {
		existing, err := r.Get(ctx, card.LearnerID, card.ContentID)
		if err != nil {
			return err
		}
		if existing == nil {
			return repository.ErrCardNotFound
		}
		log.Debug("version conflict: learner=%s, content=%s, have=%d, stored=%d",
			card.LearnerID, card.ContentID, card.Version, existing.Version)
		return repository.ErrVersionConflict
	}
	card.Version++
	return nil
}

func (r *cardRepository) Delete(ctx context.Context, learnerID, contentID string) (bool, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("deleting card: learner=%s, content=%s", learnerID, contentID)

	query, args, err := r.sq.Delete("cards").
		Where(squirrel.Eq{"learner_id": learnerID, "content_id": contentID}).
		ToSql()
	if err != nil {
		return false, err
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to delete card: %v", err)
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *cardRepository) ListAll(ctx context.Context, learnerID string) ([]models.Card, error) {
	q := r.sq.Select(cardColumns...).From("cards").
		Where(squirrel.Eq{"learner_id": learnerID}).
		OrderBy("created_at", "content_id")
	return r.selectCards(ctx, "all", q)
}

func (r *cardRepository) ListDue(ctx context.Context, learnerID string, now time.Time) ([]models.Card, error) {
	q := r.sq.Select(cardColumns...).From("cards").
		Where(squirrel.Eq{"learner_id": learnerID}).
		Where(squirrel.LtOrEq{"next_review_at": now.UTC()}).
		OrderBy("next_review_at", "content_id")
	return r.selectCards(ctx, "due", q)
}

func (r *cardRepository) ListNew(ctx context.Context, learnerID string, limit int) ([]models.Card, error) {
	q := r.sq.Select(cardColumns...).From("cards").
		Where(squirrel.Eq{"learner_id": learnerID, "is_new": true}).
		OrderBy("created_at", "content_id")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	return r.selectCards(ctx, "new", q)
}

func (r *cardRepository) selectCards(ctx context.Context, kind string, q squirrel.SelectBuilder) ([]models.Card, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")

	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	var cards []models.Card
	if err := r.db.SelectContext(ctx, &cards, query, args...); err != nil {
		log.Error("failed to list %s cards: %v", kind, err)
		return nil, err
	}
	log.Debug("found %d %s cards", len(cards), kind)
	return cards, nil
}

func (r *cardRepository) ListLearners(ctx context.Context) ([]string, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")

	query, args, err := r.sq.Select("learner_id").Distinct().From("cards").OrderBy("learner_id").ToSql()
	if err != nil {
		return nil, err
	}
	var learners []string
	if err := r.db.SelectContext(ctx, &learners, query, args...); err != nil {
		log.Error("failed to list learners: %v", err)
		return nil, err
	}
	return learners, nil
}

func (r *cardRepository) InsertReviewLog(ctx context.Context, entry models.ReviewLog) error {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("inserting review history: learner=%s, content=%s, quality=%d", entry.LearnerID, entry.ContentID, entry.Quality)

	query, args, err := r.sq.Insert("review_history").
		Columns(reviewColumns...).
		Values(entry.LearnerID, entry.ContentID, entry.Quality, entry.ResponseTimeMs, entry.Accuracy, entry.Speed, entry.ReviewedAt.UTC()).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		log.Error("failed to insert review history: %v", err)
		return err
	}
	return nil
}

func (r *cardRepository) ReviewHistory(ctx context.Context, learnerID, contentID string, limit int) ([]models.ReviewLog, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")

	q := r.sq.Select(append([]string{"id"}, reviewColumns...)...).From("review_history").
		Where(squirrel.Eq{"learner_id": learnerID, "content_id": contentID}).
		OrderBy("reviewed_at DESC", "id DESC")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	var entries []models.ReviewLog
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		log.Error("failed to fetch review history: %v", err)
		return nil, err
	}
	return entries, nil
}

func cardValues(c models.Card) []any {
	return []any{
		c.LearnerID, c.ContentID, c.ContentType, c.EaseFactor, c.IntervalDays, c.Repetitions,
		utcPtr(c.LastReviewedAt), c.NextReviewAt.UTC(), c.TotalReviews, c.TotalCorrect, c.AverageResponseTimeMs,
		c.Streak, c.MaxStreak, c.LastAccuracy, c.LastSpeed, c.IsNew, c.Version, c.CreatedAt.UTC(), c.UpdatedAt.UTC(),
	}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
