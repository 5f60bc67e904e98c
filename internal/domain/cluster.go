package domain

import "time"

// Cluster - группа пользователей с центроидом и популярными местами.
// Пересчитывается внешним batch-процессом.
type Cluster struct {
	ID                  string               `json:"id"`
	Name                string               `json:"name"`
	Algorithm           string               `json:"algorithm"`
	Centroid            []float32            `json:"-"`
	MemberIDs           []string             `json:"member_ids"`
	PopularDestinations []PopularDestination `json:"popular_destinations,omitempty"`
	UpdatedAt           time.Time            `json:"updated_at"`
}

type PopularDestination struct {
	DestinationID string  `json:"destination_id"`
	Score         float64 `json:"score"`
}

type ActivityType string

const (
	ActivitySave   ActivityType = "save"
	ActivityReview ActivityType = "review"
	ActivitySearch ActivityType = "search"
)

// Weight - вес активности в популярности
func (a ActivityType) Weight() float64 {
	switch a {
	case ActivitySave:
		return 3
	case ActivityReview:
		return 2
	case ActivitySearch:
		return 1
	}
	return 0
}

// PopularityScore нормирует взвешенную сумму активностей на число участников кластера
// (а не на число оценённых мест), умножает на 10 и обрезает до 100.
func PopularityScore(weightedSum float64, memberCount int) float64 {
	if memberCount <= 0 || weightedSum <= 0 {
		return 0
	}
	s := weightedSum / float64(memberCount) * 10
	if s > 100 {
		return 100
	}
	return s
}

// ScoredDestination - результат гибридного ранжирования
type ScoredDestination struct {
	DestinationID string  `json:"destination_id"`
	Similarity    float64 `json:"similarity"`
	Popularity    float64 `json:"popularity"`
	Hybrid        float64 `json:"hybrid"`
}
