// Package googlemaps реализует Place Resolver поверх Google Places API.
package googlemaps

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"googlemaps.github.io/maps"

	"github.com/trip-planner/internal/config"
	"github.com/trip-planner/internal/domain"
	"github.com/trip-planner/internal/domain/repository"
	"github.com/trip-planner/internal/pkg/errors"
)

const (
	photoBaseURL  = "https://maps.googleapis.com/maps/api/place/photo"
	photoMaxWidth = 800
	maxSearchHits = 10
)

var detailsFieldNames = []string{
	"place_id", "name", "type", "formatted_address", "rating", "photo", "opening_hours",
}

func detailsFields() ([]maps.PlaceDetailsFieldMask, error) {
	fields := make([]maps.PlaceDetailsFieldMask, 0, len(detailsFieldNames))
	for _, name := range detailsFieldNames {
		f, err := maps.ParsePlaceDetailsFieldMask(name)
		if err != nil {
			return nil, fmt.Errorf("place details field %q: %w", name, err)
		}
		fields = append(fields, f)
	}
	return fields, nil
}

type client struct {
	maps     *maps.Client
	limiter  *rate.Limiter
	cache    repository.PlaceCache
	fields   []maps.PlaceDetailsFieldMask
	timeout  time.Duration
	language string
	logger   *zap.Logger
}

// NewPlaceResolver создает клиент Google Places. cache может быть nil.
// opts дополняют опции клиента (например, maps.WithBaseURL в тестах).
func NewPlaceResolver(
	cfg *config.MapsConfig,
	cache repository.PlaceCache,
	logger *zap.Logger,
	opts ...maps.ClientOption,
) (repository.PlaceResolver, error) {
	options := append([]maps.ClientOption{maps.WithAPIKey(cfg.APIKey)}, opts...)
	mc, err := maps.NewClient(options...)
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}

	fields, err := detailsFields()
	if err != nil {
		return nil, err
	}

	rps := rate.Limit(cfg.RequestsPerSec)
	if cfg.RequestsPerSec <= 0 {
		rps = rate.Inf
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	return &client{
		maps:     mc,
		limiter:  rate.NewLimiter(rps, burst),
		cache:    cache,
		fields:   fields,
		timeout:  cfg.RequestTimeout,
		language: cfg.Language,
		logger:   logger,
	}, nil
}

// GetDetails возвращает описание места по place id
func (c *client) GetDetails(ctx context.Context, placeID string) (*domain.PlaceDetails, error) {
	if cached := c.cachedPlace(ctx, placeID); cached != nil {
		return cached, nil
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, errors.ErrUpstreamTimeout.Wrap(err)
	}

	res, err := c.maps.PlaceDetails(ctx, &maps.PlaceDetailsRequest{
		PlaceID:  placeID,
		Language: c.language,
		Fields:   c.fields,
	})
	if err != nil {
		return nil, c.mapError(ctx, "place details", err)
	}

	details := fromDetails(res)
	if details.PlaceID == "" {
		details.PlaceID = placeID
	}
	c.cachePlace(ctx, &details)
	return &details, nil
}

// Search ищет места по тексту
func (c *client) Search(ctx context.Context, query string) ([]domain.PlaceDetails, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.ErrInvalidRequest.WithMessage("search query is required")
	}
	if hits, ok := c.cachedSearch(ctx, query); ok {
		return hits, nil
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, errors.ErrUpstreamTimeout.Wrap(err)
	}

	resp, err := c.maps.TextSearch(ctx, &maps.TextSearchRequest{
		Query:    query,
		Language: c.language,
	})
	if err != nil {
		return nil, c.mapError(ctx, "text search", err)
	}

	out := make([]domain.PlaceDetails, 0, len(resp.Results))
	for _, r := range resp.Results {
		out = append(out, fromSearchResult(r))
		if len(out) >= maxSearchHits {
			break
		}
	}
	c.logger.Debug("Place search", zap.String("query", query), zap.Int("hits", len(out)))
	c.cacheSearch(ctx, query, out)
	return out, nil
}

func (c *client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

func (c *client) mapError(ctx context.Context, op string, err error) error {
	if ctx.Err() != nil || stderrors.Is(err, context.DeadlineExceeded) {
		c.logger.Warn("Places API timed out", zap.String("op", op), zap.Error(err))
		return errors.ErrUpstreamTimeout.Wrap(err)
	}
	msg := err.Error()
	if strings.Contains(msg, "NOT_FOUND") || strings.Contains(msg, "ZERO_RESULTS") || strings.Contains(msg, "INVALID_REQUEST") {
		return errors.ErrDestinationNotFound.Wrap(err)
	}
	c.logger.Error("Places API error", zap.String("op", op), zap.Error(err))
	return errors.ErrPlaceResolver.Wrap(err)
}

// Ошибки кеша не прерывают запрос к Places API

func (c *client) cachedPlace(ctx context.Context, placeID string) *domain.PlaceDetails {
	if c.cache == nil {
		return nil
	}
	d, err := c.cache.GetPlace(ctx, c.language, placeID)
	if err != nil {
		c.logger.Warn("Place cache read failed", zap.String("place_id", placeID), zap.Error(err))
		return nil
	}
	return d
}

func (c *client) cachePlace(ctx context.Context, d *domain.PlaceDetails) {
	if c.cache == nil {
		return
	}
	if err := c.cache.SetPlace(ctx, c.language, d); err != nil {
		c.logger.Warn("Failed to cache place details", zap.String("place_id", d.PlaceID), zap.Error(err))
	}
}

func (c *client) cachedSearch(ctx context.Context, query string) ([]domain.PlaceDetails, bool) {
	if c.cache == nil {
		return nil, false
	}
	hits, ok, err := c.cache.GetSearch(ctx, c.language, query)
	if err != nil {
		c.logger.Warn("Search cache read failed", zap.String("query", query), zap.Error(err))
		return nil, false
	}
	return hits, ok
}

func (c *client) cacheSearch(ctx context.Context, query string, hits []domain.PlaceDetails) {
	if c.cache == nil {
		return
	}
	if err := c.cache.SetSearch(ctx, c.language, query, hits); err != nil {
		c.logger.Warn("Failed to cache search hits", zap.String("query", query), zap.Error(err))
	}
}

func fromDetails(r maps.PlaceDetailsResult) domain.PlaceDetails {
	return domain.PlaceDetails{
		PlaceID:      r.PlaceID,
		Name:         r.Name,
		Types:        r.Types,
		Address:      r.FormattedAddress,
		Rating:       rating(r.Rating),
		Photos:       photoURLs(r.Photos),
		OpeningHours: openingHours(r.OpeningHours),
	}
}

func fromSearchResult(r maps.PlacesSearchResult) domain.PlaceDetails {
	return domain.PlaceDetails{
		PlaceID:      r.PlaceID,
		Name:         r.Name,
		Types:        r.Types,
		Address:      r.FormattedAddress,
		Rating:       rating(r.Rating),
		Photos:       photoURLs(r.Photos),
		OpeningHours: openingHours(r.OpeningHours),
	}
}

// rating: 0 у Places означает "нет оценок"
func rating(r float32) *float64 {
	if r <= 0 {
		return nil
	}
	v := float64(r)
	return &v
}

func photoURLs(photos []maps.Photo) []string {
	var out []string
	for _, p := range photos {
		if p.PhotoReference == "" {
			continue
		}
		q := url.Values{}
		q.Set("maxwidth", fmt.Sprint(photoMaxWidth))
		q.Set("photo_reference", p.PhotoReference)
		out = append(out, photoBaseURL+"?"+q.Encode())
	}
	return out
}

func openingHours(oh *maps.OpeningHours) *domain.OpeningHours {
	if oh == nil || len(oh.Periods) == 0 {
		return nil
	}
	out := &domain.OpeningHours{Periods: make([]domain.OpeningPeriod, 0, len(oh.Periods))}
	for _, p := range oh.Periods {
		out.Periods = append(out.Periods, domain.OpeningPeriod{
			OpenDay:   p.Open.Day,
			OpenTime:  p.Open.Time,
			CloseDay:  p.Close.Day,
			CloseTime: p.Close.Time,
		})
	}
	return out
}
