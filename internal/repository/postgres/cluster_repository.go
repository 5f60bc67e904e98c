package postgres

import (
	"context"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/trip-planner/internal/domain"
	"github.com/trip-planner/internal/domain/repository"
	"github.com/trip-planner/internal/pkg/errors"
)

// popularityScale и popularityCap повторяют domain.PopularityScore
const (
	popularityScale float64 = 10
	popularityCap   float64 = 100
)

type clusterRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewClusterRepository создает новый экземпляр cluster repository
func NewClusterRepository(db *DB, logger *zap.Logger) repository.ClusterRepository {
	return &clusterRepository{
		db:     db,
		logger: logger,
	}
}

type clusterRow struct {
	ID        string          `db:"id"`
	Name      string          `db:"name"`
	Algorithm string          `db:"algorithm"`
	Centroid  pq.Float64Array `db:"centroid"`
	UpdatedAt time.Time       `db:"updated_at"`
}

// GetByID возвращает кластер с участниками
func (r *clusterRepository) GetByID(ctx context.Context, id string) (*domain.Cluster, error) {
	var row clusterRow
	if err := r.db.GetContext(ctx, &row,
		`SELECT id, name, algorithm, centroid, updated_at FROM clusters WHERE id = $1`, id); err != nil {
		return nil, mapError(err, errors.ErrClusterNotFound)
	}

	var members []string
	if err := r.db.SelectContext(ctx, &members,
		`SELECT user_id FROM user_cluster_associations WHERE cluster_id = $1 ORDER BY user_id`, id); err != nil {
		return nil, mapError(err, nil)
	}

	return &domain.Cluster{
		ID:        row.ID,
		Name:      row.Name,
		Algorithm: row.Algorithm,
		Centroid:  toFloat32s(row.Centroid),
		MemberIDs: members,
		UpdatedAt: row.UpdatedAt,
	}, nil
}

// TopDestinations возвращает до limit мест кластера по убыванию популярности
func (r *clusterRepository) TopDestinations(ctx context.Context, clusterID string, limit int) ([]domain.PopularDestination, error) {
	var rows []struct {
		DestinationID string  `db:"destination_id"`
		Score         float64 `db:"popularity_score"`
	}
	if err := r.db.SelectContext(ctx, &rows, `
		SELECT destination_id, popularity_score
		FROM cluster_destinations
		WHERE cluster_id = $1
		ORDER BY popularity_score DESC, destination_id
		LIMIT $2`, clusterID, clampLimit(limit)); err != nil {
		r.logger.Error("failed to load cluster destinations", zap.String("cluster_id", clusterID), zap.Error(err))
		return nil, mapError(err, nil)
	}
	out := make([]domain.PopularDestination, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.PopularDestination{DestinationID: row.DestinationID, Score: row.Score})
	}
	return out, nil
}

// RecordActivity сохраняет действие пользователя с местом
func (r *clusterRepository) RecordActivity(ctx context.Context, userID, destinationID string, activity domain.ActivityType) error {
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO user_activities (user_id, destination_id, activity) VALUES ($1, $2, $3)`,
		userID, destinationID, string(activity)); err != nil {
		return mapError(err, nil)
	}
	return nil
}

// RecomputePopularity пересчитывает популярность мест кластера:
// сумма весов активностей участников / число участников * 10, не больше 100
func (r *clusterRepository) RecomputePopularity(ctx context.Context, clusterID string) error {
	res, err := r.db.ExecContext(ctx, `
		WITH members AS (
			SELECT user_id FROM user_cluster_associations WHERE cluster_id = $1
		), member_count AS (
			SELECT count(*)::float8 AS n FROM members
		), weighted AS (
			SELECT a.destination_id,
			       sum(CASE a.activity WHEN 'save' THEN 3 WHEN 'review' THEN 2 WHEN 'search' THEN 1 ELSE 0 END)::float8 AS total
			FROM user_activities a
			JOIN members m ON m.user_id = a.user_id
			GROUP BY a.destination_id
		)
		INSERT INTO cluster_destinations (cluster_id, destination_id, popularity_score)
		SELECT $1, w.destination_id, least(w.total / mc.n * $2::float8, $3::float8)
		FROM weighted w, member_count mc
		WHERE mc.n > 0
		ON CONFLICT (cluster_id, destination_id) DO UPDATE SET
			popularity_score = EXCLUDED.popularity_score`,
		clusterID, popularityScale, popularityCap)
	if err != nil {
		r.logger.Error("failed to recompute popularity", zap.String("cluster_id", clusterID), zap.Error(err))
		return mapError(err, nil)
	}
	n, _ := res.RowsAffected()
	r.logger.Debug("cluster popularity recomputed", zap.String("cluster_id", clusterID), zap.Int64("rows", n))
	return nil
}
