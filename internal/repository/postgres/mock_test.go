package postgres_test

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/trip-planner/internal/repository/postgres"
)

// newMockDB возвращает DB поверх sqlmock; имя драйвера задаёт $-плейсхолдеры для sqlx.Named
func newMockDB(t *testing.T) (*postgres.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return postgres.NewDBForTest(sqlx.NewDb(db, "postgres"), zap.NewNop()), mock
}
