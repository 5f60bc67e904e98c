package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/trip-planner/internal/domain"
	"github.com/trip-planner/internal/embedding"
	"github.com/trip-planner/internal/pkg/errors"
	"github.com/trip-planner/internal/usecase"
	"github.com/trip-planner/internal/usecase/dto"
)

func newPreferenceUseCase(prefs *MockPreferenceRepository, clusters *MockClusterRepository) *usecase.PreferenceUseCase {
	logger := zap.NewNop()
	enc := embedding.NewService(embedding.NewFakeProvider(testDim, 1), nil, testDim, testModel, logger)
	return usecase.NewPreferenceUseCase(prefs, clusters, enc, logger)
}

func TestPreferenceUseCase_Save(t *testing.T) {
	ctx := context.Background()

	t.Run("keeps cluster and stores embedding", func(t *testing.T) {
		prefs := &MockPreferenceRepository{}
		prefs.On("GetByUserID", ctx, "u1").Return(&domain.UserPreference{UserID: "u1", ClusterID: ptrString("C")}, nil)
		prefs.On("Upsert", ctx, mock.MatchedBy(func(p *domain.UserPreference) bool {
			return p.UserID == "u1" && len(p.Embedding) == testDim && p.ClusterID != nil && *p.ClusterID == "C"
		})).Return(nil)
		uc := newPreferenceUseCase(prefs, &MockClusterRepository{})

		pref, err := uc.Save(ctx, "u1", dto.PreferenceRequest{WeatherPreference: "sunny", AttractionTypes: []string{"beach"}})
		require.NoError(t, err)
		assert.True(t, pref.HasEmbedding())
		prefs.AssertExpectations(t)
	})

	t.Run("new user", func(t *testing.T) {
		prefs := &MockPreferenceRepository{}
		prefs.On("GetByUserID", ctx, "u2").Return(nil, errors.ErrPreferenceNotFound)
		prefs.On("Upsert", ctx, mock.Anything).Return(nil)
		uc := newPreferenceUseCase(prefs, &MockClusterRepository{})

		pref, err := uc.Save(ctx, "u2", dto.PreferenceRequest{KidsFriendly: true})
		require.NoError(t, err)
		assert.Nil(t, pref.ClusterID)
	})
}

func TestPreferenceUseCase_RecordActivity(t *testing.T) {
	ctx := context.Background()
	prefs := &MockPreferenceRepository{}
	clusters := &MockClusterRepository{}
	prefs.On("GetByUserID", ctx, "u1").Return(&domain.UserPreference{UserID: "u1", ClusterID: ptrString("C")}, nil)
	clusters.On("RecordActivity", ctx, "u1", "D1", domain.ActivityReview).Return(nil)
	clusters.On("RecomputePopularity", ctx, "C").Return(nil)
	uc := newPreferenceUseCase(prefs, clusters)

	require.NoError(t, uc.RecordActivity(ctx, "u1", dto.ActivityRequest{DestinationID: "D1", Activity: "review"}))
	clusters.AssertExpectations(t)

	err := uc.RecordActivity(ctx, "u1", dto.ActivityRequest{DestinationID: "D1", Activity: "like"})
	assert.Equal(t, errors.CodeInvalidInput, errors.KindOf(err))
}
