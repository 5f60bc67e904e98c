package dto

import "github.com/trip-planner/internal/domain"

// UserRecommendationsResponse - recommend_for_user
type UserRecommendationsResponse struct {
	UserID         string   `json:"user_id"`
	DestinationIDs []string `json:"destination_ids"`
}

// ClusterRecommendationsRequest - параметры гибридного ранжирования
type ClusterRecommendationsRequest struct {
	K         int      `query:"k" validate:"omitempty,min=1,max=100"`
	SimWeight *float64 `query:"w_sim" validate:"omitempty,min=0"`
	PopWeight *float64 `query:"w_pop" validate:"omitempty,min=0"`
}

// ClusterRecommendationsResponse - recommend_for_cluster_hybrid
type ClusterRecommendationsResponse struct {
	ClusterID string                     `json:"cluster_id"`
	Results   []domain.ScoredDestination `json:"results"`
}

// SearchHit - результат стороннего поиска мест
type SearchHit struct {
	DestinationID string   `json:"destination_id" validate:"required"`
	Name          string   `json:"name,omitempty"`
	Address       string   `json:"address,omitempty"`
	Rating        *float64 `json:"rating,omitempty"`
	Affinity      *float64 `json:"affinity,omitempty"`
}

// RerankRequest - rerank_search_hits
type RerankRequest struct {
	Hits []SearchHit `json:"hits" validate:"required,max=200,dive"`
}

type RerankResponse struct {
	Hits []SearchHit `json:"hits"`
}

// PreferenceRequest - предпочтения пользователя
type PreferenceRequest struct {
	WeatherPreference string   `json:"weather_preference,omitempty" validate:"omitempty,max=50"`
	AttractionTypes   []string `json:"attraction_types,omitempty" validate:"omitempty,max=50"`
	BudgetBand        string   `json:"budget_band,omitempty" validate:"omitempty,max=50"`
	KidsFriendly      bool     `json:"kids_friendly"`
	EcoTier           string   `json:"eco_tier,omitempty" validate:"omitempty,max=50"`
	Rank              *int     `json:"rank,omitempty" validate:"omitempty,min=0"`
	VisitedIDs        []string `json:"visited_destination_ids,omitempty" validate:"omitempty,max=1000"`
}

// ActivityRequest - действие пользователя с местом
type ActivityRequest struct {
	DestinationID string `json:"destination_id" validate:"required"`
	Activity      string `json:"activity" validate:"required,oneof=save review search"`
}
