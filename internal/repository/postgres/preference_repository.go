package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/trip-planner/internal/domain"
	"github.com/trip-planner/internal/domain/repository"
	"github.com/trip-planner/internal/pkg/errors"
)

type preferenceRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewPreferenceRepository создает новый экземпляр preference repository
func NewPreferenceRepository(db *DB, logger *zap.Logger) repository.PreferenceRepository {
	return &preferenceRepository{
		db:     db,
		logger: logger,
	}
}

type preferenceRow struct {
	UserID            string          `db:"user_id"`
	WeatherPreference string          `db:"weather_preference"`
	AttractionTypes   pq.StringArray  `db:"attraction_types"`
	BudgetBand        string          `db:"budget_band"`
	KidsFriendly      bool            `db:"kids_friendly"`
	EcoTier           string          `db:"eco_tier"`
	Rank              sql.NullInt64   `db:"rank"`
	VisitedIDs        pq.StringArray  `db:"visited_destination_ids"`
	Embedding         pq.Float64Array `db:"embedding"`
	ClusterID         sql.NullString  `db:"cluster_id"`
	UpdatedAt         time.Time       `db:"updated_at"`
}

func (r preferenceRow) toDomain() *domain.UserPreference {
	p := &domain.UserPreference{
		UserID:            r.UserID,
		WeatherPreference: r.WeatherPreference,
		AttractionTypes:   []string(r.AttractionTypes),
		BudgetBand:        r.BudgetBand,
		KidsFriendly:      r.KidsFriendly,
		EcoTier:           r.EcoTier,
		VisitedIDs:        []string(r.VisitedIDs),
		Embedding:         toFloat32s(r.Embedding),
		UpdatedAt:         r.UpdatedAt,
	}
	if r.Rank.Valid {
		rank := int(r.Rank.Int64)
		p.Rank = &rank
	}
	if r.ClusterID.Valid {
		id := r.ClusterID.String
		p.ClusterID = &id
	}
	return p
}

const preferenceSelect = `
	SELECT p.user_id, p.weather_preference, p.attraction_types, p.budget_band, p.kids_friendly,
	       p.eco_tier, p.rank, p.visited_destination_ids, p.embedding, a.cluster_id, p.updated_at
	FROM user_preferences p
	LEFT JOIN user_cluster_associations a ON a.user_id = p.user_id`

// GetByUserID возвращает предпочтения или ErrPreferenceNotFound
func (r *preferenceRepository) GetByUserID(ctx context.Context, userID string) (*domain.UserPreference, error) {
	var row preferenceRow
	if err := r.db.GetContext(ctx, &row, preferenceSelect+` WHERE p.user_id = $1`, userID); err != nil {
		return nil, mapError(err, errors.ErrPreferenceNotFound)
	}
	return row.toDomain(), nil
}

// GetByUserIDs возвращает предпочтения нескольких пользователей
func (r *preferenceRepository) GetByUserIDs(ctx context.Context, userIDs []string) ([]*domain.UserPreference, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	var rows []preferenceRow
	if err := r.db.SelectContext(ctx, &rows,
		preferenceSelect+` WHERE p.user_id = ANY($1) ORDER BY p.user_id`, pq.Array(userIDs)); err != nil {
		r.logger.Error("failed to load preferences", zap.Int("count", len(userIDs)), zap.Error(err))
		return nil, mapError(err, nil)
	}
	prefs := make([]*domain.UserPreference, 0, len(rows))
	for _, row := range rows {
		prefs = append(prefs, row.toDomain())
	}
	return prefs, nil
}

// Upsert сохраняет предпочтения вместе с эмбеддингом. Принадлежность кластеру не меняется.
func (r *preferenceRepository) Upsert(ctx context.Context, pref *domain.UserPreference) error {
	var rank sql.NullInt64
	if pref.Rank != nil {
		rank = sql.NullInt64{Int64: int64(*pref.Rank), Valid: true}
	}
	pref.UpdatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO user_preferences (user_id, weather_preference, attraction_types, budget_band,
		                              kids_friendly, eco_tier, rank, visited_destination_ids, embedding, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (user_id) DO UPDATE SET
			weather_preference = EXCLUDED.weather_preference,
			attraction_types = EXCLUDED.attraction_types,
			budget_band = EXCLUDED.budget_band,
			kids_friendly = EXCLUDED.kids_friendly,
			eco_tier = EXCLUDED.eco_tier,
			rank = EXCLUDED.rank,
			visited_destination_ids = EXCLUDED.visited_destination_ids,
			embedding = EXCLUDED.embedding,
			updated_at = EXCLUDED.updated_at`,
		pref.UserID, pref.WeatherPreference, pq.Array(nonNilStrings(pref.AttractionTypes)), pref.BudgetBand,
		pref.KidsFriendly, pref.EcoTier, rank, pq.Array(nonNilStrings(pref.VisitedIDs)),
		toFloat64s(pref.Embedding), pref.UpdatedAt)
	if err != nil {
		r.logger.Error("failed to upsert preference", zap.String("user_id", pref.UserID), zap.Error(err))
		return mapError(err, nil)
	}
	return nil
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
