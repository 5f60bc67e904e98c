package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/trip-planner/internal/domain"
	"github.com/trip-planner/internal/domain/repository"
	"github.com/trip-planner/internal/embedding"
	"github.com/trip-planner/internal/pkg/errors"
	"github.com/trip-planner/internal/usecase/dto"
)

// PreferenceUseCase - предпочтения пользователя и их эмбеддинг
type PreferenceUseCase struct {
	prefRepo    repository.PreferenceRepository
	clusterRepo repository.ClusterRepository
	encoder     embedding.Encoder
	logger      *zap.Logger
}

// NewPreferenceUseCase - создание нового PreferenceUseCase
func NewPreferenceUseCase(
	prefRepo repository.PreferenceRepository,
	clusterRepo repository.ClusterRepository,
	encoder embedding.Encoder,
	logger *zap.Logger,
) *PreferenceUseCase {
	return &PreferenceUseCase{
		prefRepo:    prefRepo,
		clusterRepo: clusterRepo,
		encoder:     encoder,
		logger:      logger,
	}
}

// Save перезаписывает предпочтения и пересчитывает эмбеддинг. Кластер сохраняется.
func (uc *PreferenceUseCase) Save(ctx context.Context, userID string, req dto.PreferenceRequest) (*domain.UserPreference, error) {
	pref := &domain.UserPreference{
		UserID:            userID,
		WeatherPreference: req.WeatherPreference,
		AttractionTypes:   req.AttractionTypes,
		BudgetBand:        req.BudgetBand,
		KidsFriendly:      req.KidsFriendly,
		EcoTier:           req.EcoTier,
		Rank:              req.Rank,
		VisitedIDs:        req.VisitedIDs,
		UpdatedAt:         time.Now().UTC(),
	}

	existing, err := uc.prefRepo.GetByUserID(ctx, userID)
	switch {
	case err == nil:
		pref.ClusterID = existing.ClusterID
	case errors.KindOf(err) != errors.CodeNotFound:
		return nil, err
	}

	vec, err := embedding.EncodeUserPreference(ctx, uc.encoder, pref)
	if err != nil {
		uc.logger.Error("Failed to encode preferences", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	pref.Embedding = vec

	if err := uc.prefRepo.Upsert(ctx, pref); err != nil {
		uc.logger.Error("Failed to save preferences", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	uc.logger.Info("Preferences saved",
		zap.String("user_id", userID),
		zap.String("model_version", uc.encoder.ModelVersion()))
	return pref, nil
}

// Get - предпочтения пользователя
func (uc *PreferenceUseCase) Get(ctx context.Context, userID string) (*domain.UserPreference, error) {
	return uc.prefRepo.GetByUserID(ctx, userID)
}

// RecordActivity сохраняет действие и пересчитывает популярность кластера пользователя
func (uc *PreferenceUseCase) RecordActivity(ctx context.Context, userID string, req dto.ActivityRequest) error {
	activity := domain.ActivityType(req.Activity)
	if activity.Weight() == 0 {
		return errors.ErrInvalidRequest.WithMessage("unknown activity %q", req.Activity)
	}
	if err := uc.clusterRepo.RecordActivity(ctx, userID, req.DestinationID, activity); err != nil {
		return err
	}

	pref, err := uc.prefRepo.GetByUserID(ctx, userID)
	if err != nil || pref.ClusterID == nil {
		return nil
	}
	if err := uc.clusterRepo.RecomputePopularity(ctx, *pref.ClusterID); err != nil {
		uc.logger.Warn("Failed to recompute cluster popularity",
			zap.String("cluster_id", *pref.ClusterID), zap.Error(err))
	}
	return nil
}
