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

type embeddingRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewEmbeddingRepository создает новый экземпляр embedding repository
func NewEmbeddingRepository(db *DB, logger *zap.Logger) repository.EmbeddingRepository {
	return &embeddingRepository{
		db:     db,
		logger: logger,
	}
}

type embeddingRow struct {
	DestinationID string          `db:"destination_id"`
	Vector        pq.Float64Array `db:"vector"`
	ModelVersion  string          `db:"model_version"`
	UpdatedAt     time.Time       `db:"updated_at"`
}

func (r embeddingRow) toDomain() domain.DestinationEmbedding {
	return domain.DestinationEmbedding{
		DestinationID: r.DestinationID,
		Vector:        toFloat32s(r.Vector),
		ModelVersion:  r.ModelVersion,
		UpdatedAt:     r.UpdatedAt,
	}
}

// Upsert сохраняет вектор места с версией модели
func (r *embeddingRepository) Upsert(ctx context.Context, e *domain.DestinationEmbedding) error {
	if len(e.Vector) == 0 {
		return errors.ErrInvalidRequest.WithMessage("empty vector for %s", e.DestinationID)
	}
	e.UpdatedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO destination_embeddings (destination_id, vector, model_version, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (destination_id) DO UPDATE SET
			vector = EXCLUDED.vector,
			model_version = EXCLUDED.model_version,
			updated_at = EXCLUDED.updated_at`,
		e.DestinationID, toFloat64s(e.Vector), e.ModelVersion, e.UpdatedAt)
	if err != nil {
		r.logger.Error("failed to upsert embedding", zap.String("destination_id", e.DestinationID), zap.Error(err))
		return mapError(err, nil)
	}
	return nil
}

// GetByDestinationIDs возвращает векторы по id мест, отсутствующие пропускаются
func (r *embeddingRepository) GetByDestinationIDs(ctx context.Context, ids []string) (map[string]domain.DestinationEmbedding, error) {
	out := make(map[string]domain.DestinationEmbedding, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []embeddingRow
	if err := r.db.SelectContext(ctx, &rows, `
		SELECT destination_id, vector, model_version, updated_at
		FROM destination_embeddings
		WHERE destination_id = ANY($1)`, pq.Array(ids)); err != nil {
		return nil, mapError(err, nil)
	}
	for _, row := range rows {
		out[row.DestinationID] = row.toDomain()
	}
	return out, nil
}

// ListPage возвращает векторы с id > afterID по возрастанию id
func (r *embeddingRepository) ListPage(ctx context.Context, afterID string, limit int) ([]domain.DestinationEmbedding, error) {
	var rows []embeddingRow
	if err := r.db.SelectContext(ctx, &rows, `
		SELECT destination_id, vector, model_version, updated_at
		FROM destination_embeddings
		WHERE destination_id > $1
		ORDER BY destination_id
		LIMIT $2`, afterID, clampLimit(limit)); err != nil {
		r.logger.Error("failed to list embeddings", zap.String("after", afterID), zap.Error(err))
		return nil, mapError(err, nil)
	}
	out := make([]domain.DestinationEmbedding, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

// ListStale возвращает id мест без вектора или с вектором другой версии модели
func (r *embeddingRepository) ListStale(ctx context.Context, modelVersion string, limit int) ([]string, error) {
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, `
		SELECT d.id
		FROM destinations d
		LEFT JOIN destination_embeddings e ON e.destination_id = d.id
		WHERE e.destination_id IS NULL OR e.model_version <> $1
		ORDER BY d.id
		LIMIT $2`, modelVersion, clampLimit(limit)); err != nil {
		return nil, mapError(err, nil)
	}
	return ids, nil
}
