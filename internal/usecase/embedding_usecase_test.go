package usecase_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/trip-planner/internal/domain"
	"github.com/trip-planner/internal/domain/repository"
	"github.com/trip-planner/internal/embedding"
	"github.com/trip-planner/internal/usecase"
	"github.com/trip-planner/internal/vectorindex"
)

const testModel = "fake-v1"

func newEmbeddingUseCase(embs *MockEmbeddingRepository, dests *MockDestinationRepository, streams repository.StreamRepository, index usecase.IndexBuilder) *usecase.EmbeddingUseCase {
	logger := zap.NewNop()
	enc := embedding.NewService(embedding.NewFakeProvider(testDim, 7), nil, testDim, testModel, logger)
	return usecase.NewEmbeddingUseCase(embs, dests, streams, enc, index, 2, logger)
}

func TestEmbeddingUseCase_EncodeDestinations(t *testing.T) {
	ctx := context.Background()
	embs := &MockEmbeddingRepository{}
	dests := &MockDestinationRepository{}
	streams := &MockStreamRepository{}

	var stored []*domain.DestinationEmbedding
	embs.On("Upsert", ctx, mock.AnythingOfType("*domain.DestinationEmbedding")).Run(func(args mock.Arguments) {
		stored = append(stored, args.Get(1).(*domain.DestinationEmbedding))
	}).Return(nil)
	streams.On("PublishToStream", ctx, domain.StreamEmbeddingUpdated, mock.MatchedBy(func(ev domain.EmbeddingUpdatedEvent) bool {
		return len(ev.DestinationIDs) == 2 && ev.ModelVersion == testModel
	})).Return(nil)

	dests.On("GetByID", ctx, "d1").Return(&domain.Destination{ID: "d1", Name: "Zoo"}, nil)
	dests.On("Upsert", ctx, mock.MatchedBy(func(d *domain.Destination) bool {
		return d.ID == "d1" && d.TypicalDuration == 90*time.Minute
	})).Return(false, nil)

	uc := newEmbeddingUseCase(embs, dests, streams, nil)
	ids, err := uc.EncodeDestinations(ctx, []domain.DestinationPersistedEvent{
		{DestinationID: "d1", Name: "Zoo", Types: []string{"zoo"}, Duration: json.RawMessage(`{"seconds": 5400}`)},
		{DestinationID: "d2", Name: "Pho 24", Types: []string{"restaurant"}, Duration: json.RawMessage(`"oops"`)},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"d1", "d2"}, ids)
	require.Len(t, stored, 2)
	for _, e := range stored {
		assert.Len(t, e.Vector, testDim)
		assert.Equal(t, testModel, e.ModelVersion)
	}
	streams.AssertExpectations(t)
	dests.AssertExpectations(t)
}

func TestEmbeddingUseCase_RebuildIndex(t *testing.T) {
	ctx := context.Background()
	embs := &MockEmbeddingRepository{}
	index := vectorindex.New(testDim, 100, zap.NewNop())

	embs.On("ListPage", ctx, "", mock.Anything).Return([]domain.DestinationEmbedding{
		{DestinationID: "a", Vector: []float32{1, 0, 0}},
		{DestinationID: "b", Vector: []float32{0, 1, 0}},
		{DestinationID: "bad", Vector: []float32{1, 0}},
	}, nil)

	uc := newEmbeddingUseCase(embs, &MockDestinationRepository{}, nil, index)
	n, err := uc.RebuildIndex(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, index.Size())

	hits, err := index.Search([]float32{1, 0, 0}, 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "a", hits[0].ID)
}

func TestEmbeddingUseCase_ReencodeStale(t *testing.T) {
	ctx := context.Background()
	embs := &MockEmbeddingRepository{}
	dests := &MockDestinationRepository{}

	embs.On("ListStale", ctx, testModel, mock.Anything).Return([]string{"x", "missing"}, nil).Once()
	dests.On("GetByIDs", ctx, []string{"x", "missing"}).Return(map[string]domain.Destination{
		"x": {ID: "x", Name: "Old Market"},
	}, nil)
	embs.On("Upsert", ctx, mock.AnythingOfType("*domain.DestinationEmbedding")).Return(nil)

	uc := newEmbeddingUseCase(embs, dests, nil, nil)
	n, err := uc.ReencodeStale(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	embs.AssertNumberOfCalls(t, "ListStale", 1)
}
