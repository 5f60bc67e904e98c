package postgres_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/trip-planner/internal/domain"
	"github.com/trip-planner/internal/pkg/errors"
	"github.com/trip-planner/internal/repository/postgres/testhelpers"
)

// RepositoryIntegrationSuite гоняет репозитории против настоящего PostgreSQL
type RepositoryIntegrationSuite struct {
	suite.Suite
	testDB *testhelpers.TestDB
	repos  testhelpers.Repositories
	ctx    context.Context
}

// SetupSuite выполняется один раз перед всеми тестами
func (s *RepositoryIntegrationSuite) SetupSuite() {
	s.testDB = testhelpers.SetupTestDB(s.T())
	s.repos = s.testDB.NewRepositories()
}

// TearDownSuite выполняется один раз после всех тестов
func (s *RepositoryIntegrationSuite) TearDownSuite() {
	if s.testDB != nil {
		s.testDB.Close()
	}
}

// SetupTest выполняется перед каждым тестом
func (s *RepositoryIntegrationSuite) SetupTest() {
	s.ctx = context.Background()
	s.Require().NoError(s.testDB.Cleanup(s.ctx))
}

// ============================================================================
// Plans
// ============================================================================

func (s *RepositoryIntegrationSuite) TestPlan_CreateSaveReload() {
	d1 := day("2025-03-01")
	plan := &domain.Plan{
		Name:      "Saigon",
		PlaceName: "Ho Chi Minh City",
		StartDate: d1,
		EndDate:   day("2025-03-02"),
		Members:   []domain.PlanMember{{UserID: "owner", Role: domain.RoleOwner}},
		Destinations: []domain.PlanDestination{
			{DestinationID: "A", Kind: domain.KindAttraction, VisitDate: &d1, TimeSlot: domain.SlotMorning, OrderInDay: 1},
			{DestinationID: "H", Kind: domain.KindAccommodation},
		},
	}
	s.Require().NoError(s.repos.Plans.Create(s.ctx, plan))

	loaded, err := s.repos.Plans.GetByID(s.ctx, plan.ID)
	s.Require().NoError(err)
	s.Len(loaded.Destinations, 2)
	s.Equal("owner", loaded.OwnerID())

	loaded.Destinations = loaded.Destinations[:1]
	s.Require().NoError(s.repos.Plans.Save(s.ctx, loaded))

	again, err := s.repos.Plans.GetByID(s.ctx, plan.ID)
	s.Require().NoError(err)
	s.Len(again.Destinations, 1)
	s.Equal("A", again.Destinations[0].DestinationID)

	first, err := s.repos.Plans.FirstOwnedBy(s.ctx, "owner")
	s.Require().NoError(err)
	s.Equal(plan.ID, first.ID)
}

func (s *RepositoryIntegrationSuite) TestPlan_DuplicateDayOrderRejected() {
	d1 := day("2025-03-01")
	plan := &domain.Plan{
		Name:      "Clash",
		StartDate: d1,
		EndDate:   d1,
		Members:   []domain.PlanMember{{UserID: "owner", Role: domain.RoleOwner}},
		Destinations: []domain.PlanDestination{
			{DestinationID: "A", Kind: domain.KindAttraction, VisitDate: &d1, OrderInDay: 1},
			{DestinationID: "B", Kind: domain.KindAttraction, VisitDate: &d1, OrderInDay: 1},
		},
	}

	err := s.repos.Plans.Create(s.ctx, plan)
	s.Equal(errors.CodeConflict, errors.KindOf(err))

	_, err = s.repos.Plans.GetByID(s.ctx, plan.ID)
	s.True(errors.Is(err, errors.ErrPlanNotFound), "transaction must roll back")
}

// ============================================================================
// Clusters
// ============================================================================

func (s *RepositoryIntegrationSuite) TestCluster_RecomputePopularity() {
	s.testDB.SeedCluster(s.T(), "C1", "u1", "u2")

	s.Require().NoError(s.repos.Clusters.RecordActivity(s.ctx, "u1", "D1", domain.ActivitySave))
	s.Require().NoError(s.repos.Clusters.RecordActivity(s.ctx, "u2", "D1", domain.ActivityReview))
	s.Require().NoError(s.repos.Clusters.RecordActivity(s.ctx, "outsider", "D1", domain.ActivitySave))
	s.Require().NoError(s.repos.Clusters.RecomputePopularity(s.ctx, "C1"))

	top, err := s.repos.Clusters.TopDestinations(s.ctx, "C1", 10)
	s.Require().NoError(err)
	s.Require().Len(top, 1)
	// (3 + 2) / 2 участника * 10
	s.InDelta(domain.PopularityScore(5, 2), top[0].Score, 1e-9)
}

// ============================================================================
// Embeddings
// ============================================================================

func (s *RepositoryIntegrationSuite) TestEmbedding_PagingAndStale() {
	for _, id := range []string{"D1", "D2", "D3"} {
		_, err := s.repos.Destinations.Upsert(s.ctx, &domain.Destination{ID: id, Name: id})
		s.Require().NoError(err)
	}
	s.Require().NoError(s.repos.Embeddings.Upsert(s.ctx,
		&domain.DestinationEmbedding{DestinationID: "D1", Vector: []float32{1, 0}, ModelVersion: "v1"}))
	s.Require().NoError(s.repos.Embeddings.Upsert(s.ctx,
		&domain.DestinationEmbedding{DestinationID: "D2", Vector: []float32{0, 1}, ModelVersion: "v2"}))

	page, err := s.repos.Embeddings.ListPage(s.ctx, "", 1)
	s.Require().NoError(err)
	s.Require().Len(page, 1)
	s.Equal("D1", page[0].DestinationID)

	stale, err := s.repos.Embeddings.ListStale(s.ctx, "v2", 10)
	s.Require().NoError(err)
	s.Equal([]string{"D1", "D3"}, stale)
}

func TestRepositoryIntegrationSuite(t *testing.T) {
	suite.Run(t, new(RepositoryIntegrationSuite))
}
