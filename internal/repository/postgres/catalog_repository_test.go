package postgres_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/trip-planner/internal/domain"
	"github.com/trip-planner/internal/pkg/errors"
	"github.com/trip-planner/internal/repository/postgres"
)

var destinationCols = []string{
	"id", "name", "types", "address", "rating", "description", "photo_url",
	"opening_hours", "typical_duration_seconds", "created_at", "updated_at",
}

func TestDestinationRepository_GetByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := postgres.NewDestinationRepository(db, zap.NewNop())
	now := time.Now()

	mock.ExpectQuery(`FROM destinations WHERE id = \$1`).
		WithArgs("ChIJ-market").
		WillReturnRows(sqlmock.NewRows(destinationCols).AddRow(
			"ChIJ-market", "Ben Thanh Market", "{tourist_attraction,market}", "Le Loi", 4.4, "", "",
			[]byte(`{"periods":[{"open_day":0,"open_time":"0700","close_day":0,"close_time":"1900"}]}`),
			int64(5400), now, now))

	d, err := repo.GetByID(context.Background(), "ChIJ-market")
	require.NoError(t, err)

	assert.Equal(t, []string{"tourist_attraction", "market"}, d.Types)
	assert.Equal(t, 90*time.Minute, d.TypicalDuration)
	require.NotNil(t, d.Rating)
	assert.Equal(t, 4.4, *d.Rating)
	require.NotNil(t, d.OpeningHours)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDestinationRepository_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := postgres.NewDestinationRepository(db, zap.NewNop())

	mock.ExpectQuery(`FROM destinations`).WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	assert.True(t, errors.Is(err, errors.ErrDestinationNotFound))
}

func TestDestinationRepository_Upsert(t *testing.T) {
	db, mock := newMockDB(t)
	repo := postgres.NewDestinationRepository(db, zap.NewNop())

	mock.ExpectQuery(`INSERT INTO destinations .* ON CONFLICT \(id\) DO UPDATE`).
		WithArgs("X", "Museum", sqlmock.AnyArg(), "", sqlmock.AnyArg(), "", "", sqlmock.AnyArg(), int64(3600)).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(true))

	created, err := repo.Upsert(context.Background(), &domain.Destination{
		ID:              "X",
		Name:            "Museum",
		TypicalDuration: time.Hour,
	})
	require.NoError(t, err)
	assert.True(t, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDestinationRepository_GetByIDsEmpty(t *testing.T) {
	db, mock := newMockDB(t)
	repo := postgres.NewDestinationRepository(db, zap.NewNop())

	out, err := repo.GetByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPreferenceRepository_GetByUserID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := postgres.NewPreferenceRepository(db, zap.NewNop())

	cols := []string{
		"user_id", "weather_preference", "attraction_types", "budget_band", "kids_friendly",
		"eco_tier", "rank", "visited_destination_ids", "embedding", "cluster_id", "updated_at",
	}
	mock.ExpectQuery(`FROM user_preferences p LEFT JOIN user_cluster_associations`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(
			"u1", "sunny", "{museum}", "mid", true, "green", nil, "{D1,D2}", "{0.5,0.25,1}", "C1", time.Now()))

	pref, err := repo.GetByUserID(context.Background(), "u1")
	require.NoError(t, err)

	assert.Equal(t, []float32{0.5, 0.25, 1}, pref.Embedding)
	assert.True(t, pref.HasVisited("D2"))
	assert.Nil(t, pref.Rank)
	require.NotNil(t, pref.ClusterID)
	assert.Equal(t, "C1", *pref.ClusterID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPreferenceRepository_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := postgres.NewPreferenceRepository(db, zap.NewNop())

	mock.ExpectQuery(`FROM user_preferences`).WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByUserID(context.Background(), "ghost")
	assert.True(t, errors.Is(err, errors.ErrPreferenceNotFound))
}

func TestEmbeddingRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("upsert rejects empty vector", func(t *testing.T) {
		db, _ := newMockDB(t)
		repo := postgres.NewEmbeddingRepository(db, zap.NewNop())

		err := repo.Upsert(ctx, &domain.DestinationEmbedding{DestinationID: "D1"})
		assert.Equal(t, errors.CodeInvalidInput, errors.KindOf(err))
	})

	t.Run("list page converts vectors", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := postgres.NewEmbeddingRepository(db, zap.NewNop())

		mock.ExpectQuery(`FROM destination_embeddings WHERE destination_id > \$1 ORDER BY destination_id LIMIT \$2`).
			WithArgs("D1", 2).
			WillReturnRows(sqlmock.NewRows([]string{"destination_id", "vector", "model_version", "updated_at"}).
				AddRow("D2", "{1,0,0}", "fake-v1", time.Now()).
				AddRow("D3", "{0,1,0}", "fake-v1", time.Now()))

		page, err := repo.ListPage(ctx, "D1", 2)
		require.NoError(t, err)
		require.Len(t, page, 2)
		assert.Equal(t, []float32{0, 1, 0}, page[1].Vector)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("stale ids", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := postgres.NewEmbeddingRepository(db, zap.NewNop())

		mock.ExpectQuery(`e.model_version <> \$1`).
			WithArgs("fake-v2", 100).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("D1").AddRow("D4"))

		ids, err := repo.ListStale(ctx, "fake-v2", 0)
		require.NoError(t, err)
		assert.Equal(t, []string{"D1", "D4"}, ids)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestClusterRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("get with members", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := postgres.NewClusterRepository(db, zap.NewNop())

		mock.ExpectQuery(`FROM clusters WHERE id = \$1`).
			WithArgs("C1").
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "algorithm", "centroid", "updated_at"}).
				AddRow("C1", "eco", "kmeans", nil, time.Now()))
		mock.ExpectQuery(`FROM user_cluster_associations`).
			WithArgs("C1").
			WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow("u1").AddRow("u2"))

		c, err := repo.GetByID(ctx, "C1")
		require.NoError(t, err)
		assert.Equal(t, []string{"u1", "u2"}, c.MemberIDs)
		assert.Nil(t, c.Centroid)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing cluster", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := postgres.NewClusterRepository(db, zap.NewNop())

		mock.ExpectQuery(`FROM clusters`).WillReturnError(sql.ErrNoRows)

		_, err := repo.GetByID(ctx, "C9")
		assert.True(t, errors.Is(err, errors.ErrClusterNotFound))
	})

	t.Run("top destinations", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := postgres.NewClusterRepository(db, zap.NewNop())

		mock.ExpectQuery(`FROM cluster_destinations .* ORDER BY popularity_score DESC`).
			WithArgs("C1", 5).
			WillReturnRows(sqlmock.NewRows([]string{"destination_id", "popularity_score"}).
				AddRow("D1", 90.0).AddRow("D2", 40.0))

		top, err := repo.TopDestinations(ctx, "C1", 5)
		require.NoError(t, err)
		assert.Equal(t, []domain.PopularDestination{{DestinationID: "D1", Score: 90}, {DestinationID: "D2", Score: 40}}, top)
	})

	t.Run("record activity and recompute", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := postgres.NewClusterRepository(db, zap.NewNop())

		mock.ExpectExec(`INSERT INTO user_activities`).
			WithArgs("u1", "D1", "save").
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec(`INSERT INTO cluster_destinations`).
			WithArgs("C1", 10.0, 100.0).
			WillReturnResult(sqlmock.NewResult(0, 3))

		require.NoError(t, repo.RecordActivity(ctx, "u1", "D1", domain.ActivitySave))
		require.NoError(t, repo.RecomputePopularity(ctx, "C1"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
