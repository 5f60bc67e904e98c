package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"github.com/trip-planner/internal/config"
	deliveryhttp "github.com/trip-planner/internal/delivery/http"
	"github.com/trip-planner/internal/delivery/http/handler"
	"github.com/trip-planner/internal/domain"
	"github.com/trip-planner/internal/pkg/errors"
	"github.com/trip-planner/internal/usecase/dto"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Meta  *struct {
		Total int `json:"total"`
	} `json:"meta"`
	Error *struct {
		Code    string                 `json:"code"`
		Message string                 `json:"message"`
		Details map[string]interface{} `json:"details"`
	} `json:"error"`
}

type ServerTestSuite struct {
	suite.Suite
	planner *mockPlanner
	plans   *mockPlans
	recs    *mockRecommendations
	prefs   *mockPreferences
	db      stubHealth
	server  *deliveryhttp.Server
}

func (s *ServerTestSuite) SetupTest() {
	s.planner = new(mockPlanner)
	s.plans = new(mockPlans)
	s.recs = new(mockRecommendations)
	s.prefs = new(mockPreferences)
	s.db = stubHealth{}
	s.build()
}

func (s *ServerTestSuite) build() {
	logger := zap.NewNop()
	cfg := &config.Config{Server: config.ServerConfig{CORSOrigins: "http://localhost:3000"}}
	s.server = deliveryhttp.NewServer(cfg, logger, deliveryhttp.Handlers{
		Planner:         handler.NewPlannerHandler(s.planner, logger),
		Plans:           handler.NewPlanHandler(s.plans, logger),
		Recommendations: handler.NewRecommendationHandler(s.recs, logger),
		Preferences:     handler.NewPreferenceHandler(s.prefs, logger),
	}, map[string]deliveryhttp.HealthChecker{
		"postgres": s.db,
		"redis":    stubHealth{},
	})
}

func (s *ServerTestSuite) TearDownTest() {
	s.planner.AssertExpectations(s.T())
	s.plans.AssertExpectations(s.T())
	s.recs.AssertExpectations(s.T())
	s.prefs.AssertExpectations(s.T())
}

func (s *ServerTestSuite) do(method, path, userID string, body interface{}) (int, envelope) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}

	resp, err := s.server.App().Test(req, -1)
	s.Require().NoError(err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	if len(raw) > 0 {
		s.Require().NoError(json.Unmarshal(raw, &env))
	}
	return resp.StatusCode, env
}

func (s *ServerTestSuite) TestHealth() {
	status, env := s.do(nethttp.MethodGet, "/api/v1/health", "", nil)
	s.Equal(nethttp.StatusOK, status)
	s.Contains(string(env.Data), `"healthy"`)

	s.db = stubHealth{err: assert.AnError}
	s.build()
	status, env = s.do(nethttp.MethodGet, "/api/v1/health", "", nil)
	s.Equal(nethttp.StatusServiceUnavailable, status)
	s.Require().NotNil(env.Error)
	s.Equal(errors.CodeServiceUnavailable, env.Error.Code)
}

func (s *ServerTestSuite) TestMissingUserHeader() {
	status, env := s.do(nethttp.MethodPost, "/api/v1/plans", "", map[string]string{"name": "x"})
	s.Equal(nethttp.StatusUnauthorized, status)
	s.Require().NotNil(env.Error)
	s.Equal(errors.CodeUnauthorized, env.Error.Code)
}

func (s *ServerTestSuite) TestProcessUtterance() {
	s.planner.On("ProcessUtterance", mock.Anything, "alice", "room-1", "add the Louvre on day 2").
		Return(&dto.UtteranceResponse{OK: true, Message: "Added Louvre"}, nil)

	status, env := s.do(nethttp.MethodPost, "/api/v1/rooms/room-1/utterances", "alice",
		dto.UtteranceRequest{Text: "add the Louvre on day 2"})
	s.Equal(nethttp.StatusOK, status)

	var resp dto.UtteranceResponse
	s.Require().NoError(json.Unmarshal(env.Data, &resp))
	s.True(resp.OK)
	s.Equal("Added Louvre", resp.Message)
}

func (s *ServerTestSuite) TestProcessUtterance_EmptyText() {
	status, env := s.do(nethttp.MethodPost, "/api/v1/rooms/room-1/utterances", "alice",
		dto.UtteranceRequest{})
	s.Equal(nethttp.StatusBadRequest, status)
	s.Require().NotNil(env.Error)
	s.Equal("required", env.Error.Details["text"])
}

func (s *ServerTestSuite) TestProcessUtterance_Forbidden() {
	s.planner.On("ProcessUtterance", mock.Anything, "bob", "room-1", "remove Louvre").
		Return(nil, errors.ErrViewerCannotEdit)

	status, env := s.do(nethttp.MethodPost, "/api/v1/rooms/room-1/utterances", "bob",
		dto.UtteranceRequest{Text: "remove Louvre"})
	s.Equal(nethttp.StatusForbidden, status)
	s.Equal(errors.CodeForbidden, env.Error.Code)
}

func (s *ServerTestSuite) TestCreatePlan() {
	req := dto.CreatePlanRequest{
		Name:      "Paris",
		PlaceName: "Paris",
		StartDate: "2025-03-01",
		EndDate:   "2025-03-03",
		Destinations: []dto.PlanDestinationInput{
			{DestinationID: "louvre", Kind: "attraction"},
		},
	}
	s.plans.On("CreatePlan", mock.Anything, "alice", req).
		Return(&domain.PlanSnapshot{ID: "p1", Name: "Paris"}, nil)

	status, env := s.do(nethttp.MethodPost, "/api/v1/plans", "alice", req)
	s.Equal(nethttp.StatusCreated, status)

	var resp dto.PlanResponse
	s.Require().NoError(json.Unmarshal(env.Data, &resp))
	s.Equal("p1", resp.Plan.ID)
}

func (s *ServerTestSuite) TestCreatePlan_InvalidDate() {
	status, env := s.do(nethttp.MethodPost, "/api/v1/plans", "alice", dto.CreatePlanRequest{
		Name: "Paris", PlaceName: "Paris", StartDate: "01/03/2025", EndDate: "2025-03-03",
	})
	s.Equal(nethttp.StatusBadRequest, status)
	s.Equal("isodate", env.Error.Details["start_date"])
}

func (s *ServerTestSuite) TestPlanRoutes() {
	id := uuid.New()

	s.plans.On("ValidatePlan", mock.Anything, "alice", id).Return(&dto.ValidationResponse{
		Valid:    true,
		Warnings: []domain.Warning{{Agent: "budget", Message: "over budget"}},
	}, nil)
	status, env := s.do(nethttp.MethodGet, "/api/v1/plans/"+id.String()+"/validation", "alice", nil)
	s.Equal(nethttp.StatusOK, status)
	s.Require().NotNil(env.Meta)
	s.Equal(1, env.Meta.Total)

	s.plans.On("DistributePlan", mock.Anything, "alice", id).Return(&dto.DistributionResponse{
		Destinations: []domain.DestinationSnapshot{},
		Message:      "Plan is already well distributed",
	}, nil)
	status, _ = s.do(nethttp.MethodPost, "/api/v1/plans/"+id.String()+"/distribute", "alice", nil)
	s.Equal(nethttp.StatusOK, status)

	s.plans.On("DeletePlan", mock.Anything, "bob", id).Return(errors.ErrOwnerOnly)
	status, _ = s.do(nethttp.MethodDelete, "/api/v1/plans/"+id.String(), "bob", nil)
	s.Equal(nethttp.StatusForbidden, status)

	s.plans.On("DeletePlan", mock.Anything, "alice", id).Return(nil)
	status, _ = s.do(nethttp.MethodDelete, "/api/v1/plans/"+id.String(), "alice", nil)
	s.Equal(nethttp.StatusNoContent, status)
}

func (s *ServerTestSuite) TestPlanRoutes_BadID() {
	status, env := s.do(nethttp.MethodGet, "/api/v1/plans/not-a-uuid", "alice", nil)
	s.Equal(nethttp.StatusBadRequest, status)
	s.Equal(errors.CodeInvalidInput, env.Error.Code)
}

func (s *ServerTestSuite) TestGetPlan_NotFound() {
	id := uuid.New()
	s.plans.On("GetPlan", mock.Anything, "alice", id).Return(nil, errors.ErrPlanNotFound)

	status, env := s.do(nethttp.MethodGet, "/api/v1/plans/"+id.String(), "alice", nil)
	s.Equal(nethttp.StatusNotFound, status)
	s.Equal(errors.CodeNotFound, env.Error.Code)
}

func (s *ServerTestSuite) TestUserRecommendations() {
	s.recs.On("ForUser", mock.Anything, "alice", 3, true).Return([]string{"a", "b", "c"}, nil)

	status, env := s.do(nethttp.MethodGet, "/api/v1/users/alice/recommendations?k=3&hybrid=true", "alice", nil)
	s.Equal(nethttp.StatusOK, status)

	var resp dto.UserRecommendationsResponse
	s.Require().NoError(json.Unmarshal(env.Data, &resp))
	s.Equal([]string{"a", "b", "c"}, resp.DestinationIDs)
}

func (s *ServerTestSuite) TestUserRecommendations_OtherUser() {
	status, env := s.do(nethttp.MethodGet, "/api/v1/users/alice/recommendations", "mallory", nil)
	s.Equal(nethttp.StatusForbidden, status)
	s.Equal(errors.CodeForbidden, env.Error.Code)
}

func (s *ServerTestSuite) TestClusterRecommendations() {
	s.recs.On("ClusterHybrid", mock.Anything, "c1", 10,
		mock.MatchedBy(func(w *float64) bool { return w != nil && *w == 0.5 }),
		(*float64)(nil)).
		Return([]domain.ScoredDestination{{DestinationID: "x", Hybrid: 0.9}}, nil)

	status, env := s.do(nethttp.MethodGet, "/api/v1/clusters/c1/recommendations?w_sim=0.5", "alice", nil)
	s.Equal(nethttp.StatusOK, status)

	var resp dto.ClusterRecommendationsResponse
	s.Require().NoError(json.Unmarshal(env.Data, &resp))
	s.Require().Len(resp.Results, 1)
	s.Equal("x", resp.Results[0].DestinationID)
}

func (s *ServerTestSuite) TestClusterRecommendations_BadWeight() {
	status, _ := s.do(nethttp.MethodGet, "/api/v1/clusters/c1/recommendations?w_pop=abc", "alice", nil)
	s.Equal(nethttp.StatusBadRequest, status)

	status, _ = s.do(nethttp.MethodGet, "/api/v1/clusters/c1/recommendations?w_pop=-1", "alice", nil)
	s.Equal(nethttp.StatusBadRequest, status)
}

func (s *ServerTestSuite) TestRerank() {
	hits := []dto.SearchHit{{DestinationID: "a"}, {DestinationID: "b"}}
	s.recs.On("Rerank", mock.Anything, "alice", hits).
		Return([]dto.SearchHit{{DestinationID: "b"}, {DestinationID: "a"}})

	status, env := s.do(nethttp.MethodPost, "/api/v1/users/alice/rerank", "alice", dto.RerankRequest{Hits: hits})
	s.Equal(nethttp.StatusOK, status)

	var resp dto.RerankResponse
	s.Require().NoError(json.Unmarshal(env.Data, &resp))
	s.Equal("b", resp.Hits[0].DestinationID)
}

func (s *ServerTestSuite) TestPreferencesAndActivity() {
	req := dto.PreferenceRequest{AttractionTypes: []string{"museum"}, EcoTier: "gold"}
	s.prefs.On("Save", mock.Anything, "alice", req).
		Return(&domain.UserPreference{UserID: "alice", EcoTier: "gold"}, nil)

	status, _ := s.do(nethttp.MethodPut, "/api/v1/users/alice/preferences", "alice", req)
	s.Equal(nethttp.StatusOK, status)

	act := dto.ActivityRequest{DestinationID: "louvre", Activity: "save"}
	s.prefs.On("RecordActivity", mock.Anything, "alice", act).Return(nil)
	status, _ = s.do(nethttp.MethodPost, "/api/v1/users/alice/activities", "alice", act)
	s.Equal(nethttp.StatusNoContent, status)

	status, _ = s.do(nethttp.MethodPost, "/api/v1/users/alice/activities", "alice",
		dto.ActivityRequest{DestinationID: "louvre", Activity: "like"})
	s.Equal(nethttp.StatusBadRequest, status)
}

func TestServerTestSuite(t *testing.T) {
	suite.Run(t, new(ServerTestSuite))
}

func TestUnknownRoute(t *testing.T) {
	s := new(ServerTestSuite)
	s.SetT(t)
	s.SetupTest()

	req := httptest.NewRequest(nethttp.MethodGet, "/nope", nil)
	resp, err := s.server.App().Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, nethttp.StatusNotFound, resp.StatusCode)
}
