package repositories

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"venue-seating-ops/internal/database"
)

func newMockDB(t *testing.T, dialect database.Dialect) (*database.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})

	return &database.DB{DB: db, Dialect: dialect}, mock
}
