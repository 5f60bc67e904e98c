package usecase_test

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/trip-planner/internal/domain"
	"github.com/trip-planner/internal/vectorindex"
)

// MockPlanRepository is a mock of PlanRepository
type MockPlanRepository struct {
	mock.Mock
}

func (m *MockPlanRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Plan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Plan), args.Error(1)
}

func (m *MockPlanRepository) FirstOwnedBy(ctx context.Context, userID string) (*domain.Plan, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Plan), args.Error(1)
}

func (m *MockPlanRepository) ListByMember(ctx context.Context, userID string, limit int) ([]*domain.Plan, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Plan), args.Error(1)
}

func (m *MockPlanRepository) Create(ctx context.Context, plan *domain.Plan) error {
	args := m.Called(ctx, plan)
	return args.Error(0)
}

func (m *MockPlanRepository) Save(ctx context.Context, plan *domain.Plan) error {
	args := m.Called(ctx, plan)
	return args.Error(0)
}

func (m *MockPlanRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPlanRepository) AddMember(ctx context.Context, member domain.PlanMember) error {
	args := m.Called(ctx, member)
	return args.Error(0)
}

// MockDestinationRepository is a mock of DestinationRepository
type MockDestinationRepository struct {
	mock.Mock
}

func (m *MockDestinationRepository) GetByID(ctx context.Context, id string) (*domain.Destination, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Destination), args.Error(1)
}

func (m *MockDestinationRepository) GetByIDs(ctx context.Context, ids []string) (map[string]domain.Destination, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Destination), args.Error(1)
}

func (m *MockDestinationRepository) Upsert(ctx context.Context, dest *domain.Destination) (bool, error) {
	args := m.Called(ctx, dest)
	return args.Bool(0), args.Error(1)
}

// MockPreferenceRepository is a mock of PreferenceRepository
type MockPreferenceRepository struct {
	mock.Mock
}

func (m *MockPreferenceRepository) GetByUserID(ctx context.Context, userID string) (*domain.UserPreference, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserPreference), args.Error(1)
}

func (m *MockPreferenceRepository) GetByUserIDs(ctx context.Context, userIDs []string) ([]*domain.UserPreference, error) {
	args := m.Called(ctx, userIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.UserPreference), args.Error(1)
}

func (m *MockPreferenceRepository) Upsert(ctx context.Context, pref *domain.UserPreference) error {
	args := m.Called(ctx, pref)
	return args.Error(0)
}

// MockEmbeddingRepository is a mock of EmbeddingRepository
type MockEmbeddingRepository struct {
	mock.Mock
}

func (m *MockEmbeddingRepository) Upsert(ctx context.Context, e *domain.DestinationEmbedding) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockEmbeddingRepository) GetByDestinationIDs(ctx context.Context, ids []string) (map[string]domain.DestinationEmbedding, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.DestinationEmbedding), args.Error(1)
}

func (m *MockEmbeddingRepository) ListPage(ctx context.Context, afterID string, limit int) ([]domain.DestinationEmbedding, error) {
	args := m.Called(ctx, afterID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DestinationEmbedding), args.Error(1)
}

func (m *MockEmbeddingRepository) ListStale(ctx context.Context, modelVersion string, limit int) ([]string, error) {
	args := m.Called(ctx, modelVersion, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockClusterRepository is a mock of ClusterRepository
type MockClusterRepository struct {
	mock.Mock
}

func (m *MockClusterRepository) GetByID(ctx context.Context, id string) (*domain.Cluster, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Cluster), args.Error(1)
}

func (m *MockClusterRepository) TopDestinations(ctx context.Context, clusterID string, limit int) ([]domain.PopularDestination, error) {
	args := m.Called(ctx, clusterID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PopularDestination), args.Error(1)
}

func (m *MockClusterRepository) RecordActivity(ctx context.Context, userID, destinationID string, activity domain.ActivityType) error {
	args := m.Called(ctx, userID, destinationID, activity)
	return args.Error(0)
}

func (m *MockClusterRepository) RecomputePopularity(ctx context.Context, clusterID string) error {
	args := m.Called(ctx, clusterID)
	return args.Error(0)
}

// MockPlaceResolver is a mock of PlaceResolver
type MockPlaceResolver struct {
	mock.Mock
}

func (m *MockPlaceResolver) GetDetails(ctx context.Context, placeID string) (*domain.PlaceDetails, error) {
	args := m.Called(ctx, placeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PlaceDetails), args.Error(1)
}

func (m *MockPlaceResolver) Search(ctx context.Context, query string) ([]domain.PlaceDetails, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PlaceDetails), args.Error(1)
}

// MockTextGenerator is a mock of TextGenerator
type MockTextGenerator struct {
	mock.Mock
}

func (m *MockTextGenerator) Generate(ctx context.Context, messages []domain.ChatMessage) (string, error) {
	args := m.Called(ctx, messages)
	return args.String(0), args.Error(1)
}

// MockStreamRepository is a mock of StreamRepository
type MockStreamRepository struct {
	mock.Mock
}

func (m *MockStreamRepository) ConsumeStream(ctx context.Context, stream, group, consumer string) (<-chan domain.StreamMessage, error) {
	args := m.Called(ctx, stream, group, consumer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(<-chan domain.StreamMessage), args.Error(1)
}

func (m *MockStreamRepository) ConsumeBatch(ctx context.Context, stream, group, consumer string, count int, block time.Duration) ([]domain.StreamMessage, error) {
	args := m.Called(ctx, stream, group, consumer, count, block)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StreamMessage), args.Error(1)
}

func (m *MockStreamRepository) AckMessage(ctx context.Context, stream, group, messageID string) error {
	args := m.Called(ctx, stream, group, messageID)
	return args.Error(0)
}

func (m *MockStreamRepository) AckMessages(ctx context.Context, stream, group string, messageIDs ...string) error {
	args := m.Called(ctx, stream, group, messageIDs)
	return args.Error(0)
}

func (m *MockStreamRepository) CreateConsumerGroup(ctx context.Context, stream, group string) error {
	args := m.Called(ctx, stream, group)
	return args.Error(0)
}

func (m *MockStreamRepository) PublishToStream(ctx context.Context, stream string, data interface{}) error {
	args := m.Called(ctx, stream, data)
	return args.Error(0)
}

// memoryStateStore - состояние диалога в памяти
type memoryStateStore struct {
	mu     sync.Mutex
	states map[string]domain.ConversationState
}

func newMemoryStateStore() *memoryStateStore {
	return &memoryStateStore{states: map[string]domain.ConversationState{}}
}

func (s *memoryStateStore) Get(_ context.Context, roomID string) (*domain.ConversationState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.states[roomID]
	return &st, nil
}

func (s *memoryStateStore) Save(_ context.Context, roomID string, state *domain.ConversationState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[roomID] = *state
	return nil
}

func (s *memoryStateStore) Clear(_ context.Context, roomID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, roomID)
	return nil
}

// fakeSearcher возвращает заранее заданные результаты
type fakeSearcher struct {
	hits []vectorindex.Hit
	err  error
}

func (f *fakeSearcher) Search(_ []float32, k int) ([]vectorindex.Hit, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.hits) > k {
		return f.hits[:k], nil
	}
	return f.hits, nil
}

func ptrFloat64(f float64) *float64 {
	return &f
}

func ptrString(s string) *string {
	return &s
}

func mustDate(s string) time.Time {
	t, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}
