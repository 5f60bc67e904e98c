package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/trip-planner/internal/domain"
	"github.com/trip-planner/internal/domain/repository"
	"github.com/trip-planner/internal/pkg/errors"
)

type destinationRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewDestinationRepository создает новый экземпляр destination repository
func NewDestinationRepository(db *DB, logger *zap.Logger) repository.DestinationRepository {
	return &destinationRepository{
		db:     db,
		logger: logger,
	}
}

type destinationRow struct {
	ID              string          `db:"id"`
	Name            string          `db:"name"`
	Types           pq.StringArray  `db:"types"`
	Address         string          `db:"address"`
	Rating          sql.NullFloat64 `db:"rating"`
	Description     string          `db:"description"`
	PhotoURL        string          `db:"photo_url"`
	OpeningHours    []byte          `db:"opening_hours"`
	DurationSeconds int64           `db:"typical_duration_seconds"`
	CreatedAt       time.Time       `db:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at"`
}

func (r destinationRow) toDomain() (domain.Destination, error) {
	d := domain.Destination{
		ID:              r.ID,
		Name:            r.Name,
		Types:           []string(r.Types),
		Address:         r.Address,
		Rating:          floatPtr(r.Rating),
		Description:     r.Description,
		PhotoURL:        r.PhotoURL,
		TypicalDuration: time.Duration(r.DurationSeconds) * time.Second,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
	if len(r.OpeningHours) > 0 {
		var oh domain.OpeningHours
		if err := json.Unmarshal(r.OpeningHours, &oh); err != nil {
			return d, errors.ErrDatabaseError.Wrap(err)
		}
		d.OpeningHours = &oh
	}
	return d, nil
}

const destinationColumns = `id, name, types, address, rating, description, photo_url,
	opening_hours, typical_duration_seconds, created_at, updated_at`

// GetByID возвращает место или ErrDestinationNotFound
func (r *destinationRepository) GetByID(ctx context.Context, id string) (*domain.Destination, error) {
	var row destinationRow
	query := `SELECT ` + destinationColumns + ` FROM destinations WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		return nil, mapError(err, errors.ErrDestinationNotFound)
	}
	d, err := row.toDomain()
	if err != nil {
		r.logger.Warn("corrupt opening hours", zap.String("destination_id", id), zap.Error(err))
		return nil, err
	}
	return &d, nil
}

// GetByIDs возвращает найденные места по id, отсутствующие пропускаются
func (r *destinationRepository) GetByIDs(ctx context.Context, ids []string) (map[string]domain.Destination, error) {
	out := make(map[string]domain.Destination, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []destinationRow
	query := `SELECT ` + destinationColumns + ` FROM destinations WHERE id = ANY($1)`
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(ids)); err != nil {
		r.logger.Error("failed to load destinations", zap.Int("count", len(ids)), zap.Error(err))
		return nil, mapError(err, nil)
	}
	for _, row := range rows {
		d, err := row.toDomain()
		if err != nil {
			r.logger.Warn("skipping destination with corrupt opening hours",
				zap.String("destination_id", row.ID), zap.Error(err))
			continue
		}
		out[d.ID] = d
	}
	return out, nil
}

// Upsert создаёт или обновляет место. created=true, если запись новая
func (r *destinationRepository) Upsert(ctx context.Context, dest *domain.Destination) (bool, error) {
	var hours []byte
	if dest.OpeningHours != nil {
		b, err := json.Marshal(dest.OpeningHours)
		if err != nil {
			return false, errors.ErrInvalidRequest.Wrap(err)
		}
		hours = b
	}

	// xmax = 0 только у только что вставленной строки
	var created bool
	err := r.db.GetContext(ctx, &created, `
		INSERT INTO destinations (id, name, types, address, rating, description, photo_url,
		                          opening_hours, typical_duration_seconds)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			types = EXCLUDED.types,
			address = EXCLUDED.address,
			rating = EXCLUDED.rating,
			description = EXCLUDED.description,
			photo_url = EXCLUDED.photo_url,
			opening_hours = EXCLUDED.opening_hours,
			typical_duration_seconds = EXCLUDED.typical_duration_seconds,
			updated_at = now()
		RETURNING (xmax = 0)`,
		dest.ID, dest.Name, pq.Array(nonNilStrings(dest.Types)), dest.Address, nullFloat(dest.Rating), dest.Description,
		dest.PhotoURL, hours, int64(dest.TypicalDuration/time.Second))
	if err != nil {
		r.logger.Error("failed to upsert destination", zap.String("destination_id", dest.ID), zap.Error(err))
		return false, mapError(err, nil)
	}
	return created, nil
}
