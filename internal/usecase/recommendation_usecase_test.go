package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/trip-planner/internal/domain"
	"github.com/trip-planner/internal/pkg/errors"
	"github.com/trip-planner/internal/usecase"
	"github.com/trip-planner/internal/usecase/dto"
	"github.com/trip-planner/internal/vectorindex"
)

const testDim = 3

func newRecommendationUseCase(index usecase.VectorSearcher, prefs *MockPreferenceRepository, clusters *MockClusterRepository, embs *MockEmbeddingRepository) *usecase.RecommendationUseCase {
	return usecase.NewRecommendationUseCase(index, prefs, clusters, embs, testDim, 0.7, 0.3, zap.NewNop())
}

func TestRecommendationUseCase_ClusterHybrid(t *testing.T) {
	ctx := context.Background()

	setup := func() (*MockPreferenceRepository, *MockClusterRepository) {
		prefs := &MockPreferenceRepository{}
		clusters := &MockClusterRepository{}
		clusters.On("GetByID", ctx, "C").Return(&domain.Cluster{ID: "C", MemberIDs: []string{"u1", "u2"}}, nil)
		prefs.On("GetByUserIDs", ctx, []string{"u1", "u2"}).Return([]*domain.UserPreference{
			{UserID: "u1", Embedding: []float32{1, 0, 0}},
			{UserID: "u2"},
		}, nil)
		clusters.On("TopDestinations", ctx, "C", mock.Anything).Return([]domain.PopularDestination{
			{DestinationID: "D1", Score: 100},
			{DestinationID: "D2", Score: 60},
		}, nil)
		return prefs, clusters
	}
	index := &fakeSearcher{hits: []vectorindex.Hit{{ID: "D2", Score: 90}, {ID: "D3", Score: 80}}}

	t.Run("default weights blend similarity and popularity", func(t *testing.T) {
		prefs, clusters := setup()
		uc := newRecommendationUseCase(index, prefs, clusters, &MockEmbeddingRepository{})

		got, err := uc.ClusterHybrid(ctx, "C", 3, nil, nil)
		require.NoError(t, err)
		require.Len(t, got, 3)

		assert.Equal(t, "D2", got[0].DestinationID)
		assert.InDelta(t, 81, got[0].Hybrid, 1e-9)
		assert.Equal(t, "D3", got[1].DestinationID)
		assert.InDelta(t, 56, got[1].Hybrid, 1e-9)
		assert.Equal(t, "D1", got[2].DestinationID)
		assert.InDelta(t, 30, got[2].Hybrid, 1e-9)
		assert.Equal(t, 0.0, got[2].Similarity)
		assert.Equal(t, 100.0, got[2].Popularity)
	})

	t.Run("pure similarity weights keep similarity order", func(t *testing.T) {
		prefs, clusters := setup()
		uc := newRecommendationUseCase(index, prefs, clusters, &MockEmbeddingRepository{})

		got, err := uc.ClusterHybrid(ctx, "C", 2, ptrFloat64(1), ptrFloat64(0))
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "D2", got[0].DestinationID)
		assert.Equal(t, "D3", got[1].DestinationID)
	})

	t.Run("cluster without member embeddings returns empty", func(t *testing.T) {
		prefs := &MockPreferenceRepository{}
		clusters := &MockClusterRepository{}
		clusters.On("GetByID", ctx, "E").Return(&domain.Cluster{ID: "E", MemberIDs: []string{"u3"}}, nil)
		prefs.On("GetByUserIDs", ctx, []string{"u3"}).Return([]*domain.UserPreference{{UserID: "u3"}}, nil)
		uc := newRecommendationUseCase(index, prefs, clusters, &MockEmbeddingRepository{})

		got, err := uc.ClusterHybrid(ctx, "E", 5, nil, nil)
		require.NoError(t, err)
		assert.Empty(t, got)
		clusters.AssertNotCalled(t, "TopDestinations", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("negative weight is rejected", func(t *testing.T) {
		uc := newRecommendationUseCase(index, &MockPreferenceRepository{}, &MockClusterRepository{}, &MockEmbeddingRepository{})
		_, err := uc.ClusterHybrid(ctx, "C", 5, ptrFloat64(-1), nil)
		assert.Equal(t, errors.CodeInvalidInput, errors.KindOf(err))
	})
}

func TestMergeHybrid_SimilarityOnlyMatchesSearchOrder(t *testing.T) {
	hits := []vectorindex.Hit{{ID: "a", Score: 95}, {ID: "b", Score: 70}, {ID: "c", Score: 40}}
	popular := []domain.PopularDestination{{DestinationID: "c", Score: 100}, {DestinationID: "z", Score: 90}}

	got := usecase.MergeHybrid(hits, popular, 1, 0, 3)
	require.Len(t, got, 3)
	for i, h := range hits {
		assert.Equal(t, h.ID, got[i].DestinationID)
		assert.Equal(t, h.Score, got[i].Hybrid)
	}
}

func TestRecommendationUseCase_ForUser(t *testing.T) {
	ctx := context.Background()

	t.Run("filters visited destinations", func(t *testing.T) {
		prefs := &MockPreferenceRepository{}
		prefs.On("GetByUserID", ctx, "u1").Return(&domain.UserPreference{
			UserID:     "u1",
			Embedding:  []float32{0, 1, 0},
			VisitedIDs: []string{"D2"},
		}, nil)
		index := &fakeSearcher{hits: []vectorindex.Hit{{ID: "D1", Score: 99}, {ID: "D2", Score: 98}, {ID: "D3", Score: 97}}}
		uc := newRecommendationUseCase(index, prefs, &MockClusterRepository{}, &MockEmbeddingRepository{})

		got, err := uc.ForUser(ctx, "u1", 2, false)
		require.NoError(t, err)
		assert.Equal(t, []string{"D1", "D3"}, got)
	})

	t.Run("user without embedding is not found", func(t *testing.T) {
		prefs := &MockPreferenceRepository{}
		prefs.On("GetByUserID", ctx, "u2").Return(&domain.UserPreference{UserID: "u2"}, nil)
		uc := newRecommendationUseCase(&fakeSearcher{}, prefs, &MockClusterRepository{}, &MockEmbeddingRepository{})

		_, err := uc.ForUser(ctx, "u2", 5, false)
		assert.Equal(t, errors.CodeNotFound, errors.KindOf(err))
	})

	t.Run("index not built is service unavailable", func(t *testing.T) {
		prefs := &MockPreferenceRepository{}
		prefs.On("GetByUserID", ctx, "u1").Return(&domain.UserPreference{UserID: "u1", Embedding: []float32{1, 0, 0}}, nil)
		uc := newRecommendationUseCase(&fakeSearcher{err: errors.ErrIndexNotBuilt}, prefs, &MockClusterRepository{}, &MockEmbeddingRepository{})

		_, err := uc.ForUser(ctx, "u1", 5, false)
		assert.Equal(t, errors.CodeServiceUnavailable, errors.KindOf(err))
	})

	t.Run("hybrid path uses the user's cluster", func(t *testing.T) {
		prefs := &MockPreferenceRepository{}
		clusters := &MockClusterRepository{}
		prefs.On("GetByUserID", ctx, "u1").Return(&domain.UserPreference{
			UserID:    "u1",
			Embedding: []float32{1, 0, 0},
			ClusterID: ptrString("C"),
		}, nil)
		clusters.On("GetByID", ctx, "C").Return(&domain.Cluster{ID: "C", MemberIDs: []string{"u1"}}, nil)
		prefs.On("GetByUserIDs", ctx, []string{"u1"}).Return([]*domain.UserPreference{{UserID: "u1", Embedding: []float32{1, 0, 0}}}, nil)
		clusters.On("TopDestinations", ctx, "C", mock.Anything).Return([]domain.PopularDestination{{DestinationID: "D9", Score: 100}}, nil)
		index := &fakeSearcher{hits: []vectorindex.Hit{{ID: "D1", Score: 50}}}
		uc := newRecommendationUseCase(index, prefs, clusters, &MockEmbeddingRepository{})

		got, err := uc.ForUser(ctx, "u1", 2, true)
		require.NoError(t, err)
		assert.Equal(t, []string{"D1", "D9"}, got)
	})
}

func TestRecommendationUseCase_Rerank(t *testing.T) {
	ctx := context.Background()
	hits := []dto.SearchHit{
		{DestinationID: "far"},
		{DestinationID: "none"},
		{DestinationID: "near"},
	}

	t.Run("orders by affinity and puts unknown last", func(t *testing.T) {
		prefs := &MockPreferenceRepository{}
		embs := &MockEmbeddingRepository{}
		prefs.On("GetByUserID", ctx, "u1").Return(&domain.UserPreference{UserID: "u1", Embedding: []float32{1, 0, 0}}, nil)
		embs.On("GetByDestinationIDs", ctx, []string{"far", "none", "near"}).Return(map[string]domain.DestinationEmbedding{
			"far":  {DestinationID: "far", Vector: []float32{0, 1, 0}},
			"near": {DestinationID: "near", Vector: []float32{0.9, 0.1, 0}},
		}, nil)
		uc := newRecommendationUseCase(&fakeSearcher{}, prefs, &MockClusterRepository{}, embs)

		got := uc.Rerank(ctx, "u1", hits)
		require.Len(t, got, 3)
		assert.Equal(t, "near", got[0].DestinationID)
		assert.Equal(t, "far", got[1].DestinationID)
		assert.Equal(t, "none", got[2].DestinationID)
		assert.NotNil(t, got[0].Affinity)
		assert.Nil(t, got[2].Affinity)
	})

	t.Run("failure keeps provider order", func(t *testing.T) {
		prefs := &MockPreferenceRepository{}
		prefs.On("GetByUserID", ctx, "ghost").Return(nil, errors.ErrPreferenceNotFound)
		uc := newRecommendationUseCase(&fakeSearcher{}, prefs, &MockClusterRepository{}, &MockEmbeddingRepository{})

		got := uc.Rerank(ctx, "ghost", hits)
		assert.Equal(t, hits, got)
	})
}
