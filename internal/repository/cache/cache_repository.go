package cache

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/trip-planner/internal/domain"
	"github.com/trip-planner/internal/domain/repository"
	"github.com/trip-planner/internal/pkg/errors"
)

const (
	placeKeyTmpl  = "place:details:%s:%s"
	searchKeyTmpl = "place:search:%s:%s"
)

type placeCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewPlaceCache - кеш мест в Redis, записи живут ttl
func NewPlaceCache(redis *Redis, ttl time.Duration) repository.PlaceCache {
	return &placeCache{
		client: redis.Client(),
		ttl:    ttl,
		logger: redis.logger,
	}
}

func placeKey(language, placeID string) string {
	return fmt.Sprintf(placeKeyTmpl, language, placeID)
}

// searchKey нормализует запрос: регистр и лишние пробелы не влияют на ключ
func searchKey(language, query string) string {
	q := strings.Join(strings.Fields(strings.ToLower(query)), " ")
	return fmt.Sprintf(searchKeyTmpl, language, q)
}

func (r *placeCache) GetPlace(ctx context.Context, language, placeID string) (*domain.PlaceDetails, error) {
	var place domain.PlaceDetails
	hit, err := r.load(ctx, placeKey(language, placeID), &place)
	if err != nil || !hit {
		return nil, err
	}
	return &place, nil
}

func (r *placeCache) SetPlace(ctx context.Context, language string, place *domain.PlaceDetails) error {
	if place == nil || place.PlaceID == "" {
		return errors.ErrInvalidRequest.WithMessage("place id is required for caching")
	}
	return r.store(ctx, placeKey(language, place.PlaceID), place)
}

func (r *placeCache) GetSearch(ctx context.Context, language, query string) ([]domain.PlaceDetails, bool, error) {
	var hits []domain.PlaceDetails
	hit, err := r.load(ctx, searchKey(language, query), &hits)
	if err != nil || !hit {
		return nil, false, err
	}
	return hits, true, nil
}

func (r *placeCache) SetSearch(ctx context.Context, language, query string, hits []domain.PlaceDetails) error {
	if hits == nil {
		hits = []domain.PlaceDetails{}
	}
	return r.store(ctx, searchKey(language, query), hits)
}

// load - битая запись удаляется и считается промахом
func (r *placeCache) load(ctx context.Context, key string, dst interface{}) (bool, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if stderrors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		r.logger.Error("Failed to get from cache", zap.String("key", key), zap.Error(err))
		return false, errors.ErrCacheError.Wrap(err)
	}

	if err := json.Unmarshal(data, dst); err != nil {
		r.logger.Warn("Corrupt cache entry, dropping", zap.String("key", key), zap.Error(err))
		if delErr := r.client.Del(ctx, key).Err(); delErr != nil {
			r.logger.Warn("Failed to drop corrupt cache entry", zap.String("key", key), zap.Error(delErr))
		}
		return false, nil
	}

	r.logger.Debug("Cache hit", zap.String("key", key))
	return true, nil
}

func (r *placeCache) store(ctx context.Context, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.ErrInternalServer.Wrap(err)
	}
	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		r.logger.Error("Failed to set cache", zap.String("key", key), zap.Error(err))
		return errors.ErrCacheError.Wrap(err)
	}

	r.logger.Debug("Cache set", zap.String("key", key), zap.Duration("ttl", r.ttl))
	return nil
}
