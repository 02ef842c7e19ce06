package sqlstore_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/wordflash/internal/db"
	"github.com/vytor/wordflash/internal/repository"
	"github.com/vytor/wordflash/internal/repository/sqlstore"
	"github.com/vytor/wordflash/internal/testutil"
)

func newMockRepo(t *testing.T, driver string) (repository.CardRepository, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })
	return sqlstore.NewCardRepository(db.Wrap(sqlx.NewDb(mockDB, driver))), mock
}

func TestCardRepository_DriverErrors(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(mock sqlmock.Sqlmock)
		call      func(repo repository.CardRepository) error
	}{
		{
			name: "get",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT .* FROM cards WHERE").WillReturnError(fmt.Errorf("connection refused"))
			},
			call: func(repo repository.CardRepository) error {
				_, err := repo.Get(context.Background(), "l", "c")
				return err
			},
		},
		{
			name: "list due",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT .* FROM cards WHERE .* next_review_at <= ?").WillReturnError(fmt.Errorf("connection refused"))
			},
			call: func(repo repository.CardRepository) error {
				_, err := repo.ListDue(context.Background(), "l", testutil.Epoch)
				return err
			},
		},
		{
			name: "create rolls back",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec("INSERT INTO cards").WillReturnError(fmt.Errorf("disk full"))
				mock.ExpectRollback()
			},
			call: func(repo repository.CardRepository) error {
				_, err := repo.Create(context.Background(), testutil.Card("l", "c", 0))
				return err
			},
		},
		{
			name: "delete",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("DELETE FROM cards").WillReturnError(fmt.Errorf("locked"))
			},
			call: func(repo repository.CardRepository) error {
				_, err := repo.Delete(context.Background(), "l", "c")
				return err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMockRepo(t, db.DriverSQLite)
			tt.setupMock(mock)

			assert.Error(t, tt.call(repo))
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCardRepository_PostgresPlaceholders(t *testing.T) {
	repo, mock := newMockRepo(t, db.DriverPostgres)
	mock.ExpectQuery(`SELECT .* FROM cards WHERE content_id = \$1 AND learner_id = \$2`).
		WithArgs("c", "l").
		WillReturnRows(sqlmock.NewRows([]string{"learner_id"}))

	card, err := repo.Get(context.Background(), "l", "c")

	require.NoError(t, err)
	assert.Nil(t, card)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCardRepository_SaveConflictDetection(t *testing.T) {
	repo, mock := newMockRepo(t, db.DriverSQLite)
	card := testutil.Card("l", "c", 0)
	card.Version = 3

	mock.ExpectExec("UPDATE cards SET").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT .* FROM cards WHERE").
		WillReturnRows(sqlmock.NewRows([]string{"learner_id", "content_id", "version"}).AddRow("l", "c", 4))

	err := repo.Save(context.Background(), &card)

	assert.ErrorIs(t, err, repository.ErrVersionConflict)
	assert.Equal(t, int64(3), card.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}
