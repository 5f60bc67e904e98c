// Package embedding turns preference and destination records into fixed-size vectors.
package embedding

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/trip-planner/internal/domain"
	"github.com/trip-planner/internal/pkg/errors"
	"go.uber.org/zap"
)

// fallbackText кодируется вместо пустого ввода
const fallbackText = "destination"

// Provider - модель, возвращающая сырой вектор произвольной размерности
type Provider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Encoder детерминирован для фиксированной версии модели.
type Encoder interface {
	Encode(ctx context.Context, text string) ([]float32, error)
	Dim() int
	ModelVersion() string
}

// Service приводит вектор провайдера к размерности dim (обрезка или дополнение нулями)
// и нормирует его. Вызовы модели уходят в ограниченный пул воркеров.
type Service struct {
	provider Provider
	pool     *Pool
	dim      int
	version  string
	logger   *zap.Logger
}

func NewService(provider Provider, pool *Pool, dim int, version string, logger *zap.Logger) *Service {
	return &Service{
		provider: provider,
		pool:     pool,
		dim:      dim,
		version:  version,
		logger:   logger,
	}
}

func (s *Service) Dim() int {
	return s.dim
}

func (s *Service) ModelVersion() string {
	return s.version
}

func (s *Service) Encode(ctx context.Context, text string) ([]float32, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		text = fallbackText
	}

	var (
		raw []float32
		err error
	)
	if s.pool != nil {
		raw, err = s.pool.Submit(ctx, s.provider, text)
	} else {
		raw, err = s.provider.Embed(ctx, text)
	}
	if err != nil {
		if errors.KindOf(err) == errors.CodeTransient {
			return nil, err
		}
		s.logger.Warn("Embedding provider failed", zap.Error(err))
		return nil, errors.ErrEncoderUnavailable.Wrap(err)
	}

	return domain.Normalize(fitDim(raw, s.dim)), nil
}

func fitDim(v []float32, dim int) []float32 {
	out := make([]float32, dim)
	copy(out, v)
	return out
}

// EncodeUserPreference кодирует каноническое английское предложение из предпочтений.
func EncodeUserPreference(ctx context.Context, enc Encoder, pref *domain.UserPreference) ([]float32, error) {
	return enc.Encode(ctx, PreferenceText(pref))
}

// EncodeDestination кодирует name, types, address, rating, description через пробел.
func EncodeDestination(ctx context.Context, enc Encoder, dest *domain.Destination) ([]float32, error) {
	return enc.Encode(ctx, DestinationText(dest))
}

func PreferenceText(pref *domain.UserPreference) string {
	if pref == nil {
		return ""
	}
	var parts []string
	if pref.WeatherPreference != "" {
		parts = append(parts, fmt.Sprintf("Prefers %s weather.", pref.WeatherPreference))
	}
	if n := len(pref.AttractionTypes); n > 0 {
		parts = append(parts, fmt.Sprintf("Interested in %d activities: %s.", n, strings.Join(pref.AttractionTypes, ", ")))
	}
	if pref.BudgetBand != "" {
		parts = append(parts, fmt.Sprintf("Budget level %s.", pref.BudgetBand))
	}
	if pref.KidsFriendly {
		parts = append(parts, "Travels with kids.")
	}
	if pref.EcoTier != "" {
		parts = append(parts, fmt.Sprintf("Eco tier %s.", pref.EcoTier))
	}
	if pref.Rank != nil {
		parts = append(parts, fmt.Sprintf("Rank %d.", *pref.Rank))
	}
	if n := len(pref.VisitedIDs); n > 0 {
		parts = append(parts, fmt.Sprintf("Visited %d destinations.", n))
	}
	return strings.Join(parts, " ")
}

func DestinationText(dest *domain.Destination) string {
	if dest == nil {
		return ""
	}
	var parts []string
	if dest.Name != "" {
		parts = append(parts, dest.Name)
	}
	if len(dest.Types) > 0 {
		parts = append(parts, strings.Join(dest.Types, " "))
	}
	if dest.Address != "" {
		parts = append(parts, dest.Address)
	}
	if dest.Rating != nil {
		parts = append(parts, strconv.FormatFloat(*dest.Rating, 'f', -1, 64))
	}
	if dest.Description != "" {
		parts = append(parts, dest.Description)
	}
	return strings.Join(parts, " ")
}
