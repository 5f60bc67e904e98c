package domain

import "time"

// UserPreference - предпочтения пользователя для рекомендаций
type UserPreference struct {
	UserID            string    `json:"user_id"`
	WeatherPreference string    `json:"weather_preference,omitempty"`
	AttractionTypes   []string  `json:"attraction_types,omitempty"`
	BudgetBand        string    `json:"budget_band,omitempty"`
	KidsFriendly      bool      `json:"kids_friendly"`
	EcoTier           string    `json:"eco_tier,omitempty"`
	Rank              *int      `json:"rank,omitempty"`
	VisitedIDs        []string  `json:"visited_destination_ids,omitempty"`
	Embedding         []float32 `json:"-"`
	ClusterID         *string   `json:"cluster_id,omitempty"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (p *UserPreference) HasEmbedding() bool {
	return len(p.Embedding) > 0
}

func (p *UserPreference) HasVisited(destinationID string) bool {
	for _, id := range p.VisitedIDs {
		if id == destinationID {
			return true
		}
	}
	return false
}
