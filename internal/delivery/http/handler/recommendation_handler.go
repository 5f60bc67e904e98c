package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/trip-planner/internal/pkg/errors"
	"github.com/trip-planner/internal/pkg/utils"
	"github.com/trip-planner/internal/pkg/validator"
	"github.com/trip-planner/internal/usecase/dto"
)

// RecommendationHandler - рекомендации мест пользователю и кластеру, переранжирование поиска
type RecommendationHandler struct {
	recs   RecommendationService
	logger *zap.Logger
}

// NewRecommendationHandler - создание нового RecommendationHandler
func NewRecommendationHandler(recs RecommendationService, logger *zap.Logger) *RecommendationHandler {
	return &RecommendationHandler{
		recs:   recs,
		logger: logger,
	}
}

// ForUser godoc
// @Summary Recommend destinations for a user
// @Description Nearest destinations to the user's preference embedding, visited places excluded
// @Tags recommendations
// @Produce json
// @Param X-User-ID header string true "Caller id"
// @Param id path string true "User id"
// @Param k query int false "Number of results" default(10)
// @Param hybrid query bool false "Rank through the user's cluster"
// @Success 200 {object} utils.SuccessResponse{data=dto.UserRecommendationsResponse}
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /users/{id}/recommendations [get]
func (h *RecommendationHandler) ForUser(c *fiber.Ctx) error {
	userID, err := selfParam(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	k := c.QueryInt("k", defaultRecommendationK)
	if k < 0 || k > 100 {
		return utils.SendError(c, errors.ErrInvalidRequest.WithMessage("k must be between 0 and 100"))
	}

	ids, err := h.recs.ForUser(c.UserContext(), userID, k, c.QueryBool("hybrid", false))
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, dto.UserRecommendationsResponse{
		UserID:         userID,
		DestinationIDs: ids,
	}, &utils.Meta{
		Total: len(ids),
	})
}

// ClusterHybrid godoc
// @Summary Hybrid recommendations for a user cluster
// @Description Blends centroid similarity with cluster popularity
// @Tags recommendations
// @Produce json
// @Param X-User-ID header string true "Caller id"
// @Param id path string true "Cluster id"
// @Param k query int false "Number of results" default(10)
// @Param w_sim query number false "Similarity weight" default(0.7)
// @Param w_pop query number false "Popularity weight" default(0.3)
// @Success 200 {object} utils.SuccessResponse{data=dto.ClusterRecommendationsResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /clusters/{id}/recommendations [get]
func (h *RecommendationHandler) ClusterHybrid(c *fiber.Ctx) error {
	clusterID := c.Params("id")

	req := dto.ClusterRecommendationsRequest{K: c.QueryInt("k", defaultRecommendationK)}
	var err error
	if req.SimWeight, err = optionalFloat(c, "w_sim"); err != nil {
		return utils.SendError(c, err)
	}
	if req.PopWeight, err = optionalFloat(c, "w_pop"); err != nil {
		return utils.SendError(c, err)
	}
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	results, err := h.recs.ClusterHybrid(c.UserContext(), clusterID, req.K, req.SimWeight, req.PopWeight)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, dto.ClusterRecommendationsResponse{
		ClusterID: clusterID,
		Results:   results,
	}, &utils.Meta{
		Total: len(results),
	})
}

// Rerank godoc
// @Summary Rerank external search hits
// @Description Orders hits by similarity to the caller's cluster; hits without embeddings keep their order at the end
// @Tags recommendations
// @Accept json
// @Produce json
// @Param X-User-ID header string true "Caller id"
// @Param id path string true "User id"
// @Param request body dto.RerankRequest true "Search hits"
// @Success 200 {object} utils.SuccessResponse{data=dto.RerankResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Router /users/{id}/rerank [post]
func (h *RecommendationHandler) Rerank(c *fiber.Ctx) error {
	userID, err := selfParam(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	var req dto.RerankRequest
	if err := parseBody(c, &req); err != nil {
		return utils.SendError(c, err)
	}
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	hits := h.recs.Rerank(c.UserContext(), userID, req.Hits)

	return utils.SendSuccess(c, dto.RerankResponse{Hits: hits}, &utils.Meta{
		Total: len(hits),
	})
}

func optionalFloat(c *fiber.Ctx, key string) (*float64, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, errors.ErrInvalidRequest.WithMessage("%s must be a number", key)
	}
	return &v, nil
}
