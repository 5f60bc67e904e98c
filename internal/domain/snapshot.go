package domain

import (
	"github.com/google/uuid"
	"github.com/trip-planner/internal/pkg/errors"
)

// PlanSnapshot - плоское представление плана для агентов: даты как ISO строки,
// перечисления как строки. Агенты работают только со снимком.
type PlanSnapshot struct {
	ID           string                `json:"id"`
	Name         string                `json:"name"`
	PlaceName    string                `json:"place_name"`
	StartDate    string                `json:"start_date"`
	EndDate      string                `json:"end_date"`
	BudgetLimit  *float64              `json:"budget_limit,omitempty"`
	Members      []MemberSnapshot      `json:"members"`
	Destinations []DestinationSnapshot `json:"destinations"`
}

type MemberSnapshot struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

type DestinationSnapshot struct {
	ID              string        `json:"id,omitempty"`
	DestinationID   string        `json:"destination_id"`
	Name            string        `json:"name,omitempty"`
	Kind            string        `json:"kind"`
	VisitDate       string        `json:"visit_date,omitempty"`
	TimeSlot        string        `json:"time_slot,omitempty"`
	OrderInDay      int           `json:"order_in_day,omitempty"`
	EstimatedCost   *float64      `json:"estimated_cost,omitempty"`
	Note            string        `json:"note,omitempty"`
	URL             string        `json:"url,omitempty"`
	IsRepeated      bool          `json:"is_repeated"`
	RepeatIndex     int           `json:"repeat_index"`
	OpeningHours    *OpeningHours `json:"opening_hours,omitempty"`
	DurationMinutes int           `json:"duration_minutes,omitempty"`
}

func NewPlanSnapshot(p *Plan) PlanSnapshot {
	s := PlanSnapshot{
		ID:           p.ID.String(),
		Name:         p.Name,
		PlaceName:    p.PlaceName,
		StartDate:    FormatDate(&p.StartDate),
		EndDate:      FormatDate(&p.EndDate),
		BudgetLimit:  p.BudgetLimit,
		Members:      make([]MemberSnapshot, 0, len(p.Members)),
		Destinations: make([]DestinationSnapshot, 0, len(p.Destinations)),
	}
	if p.StartDate.IsZero() {
		s.StartDate = ""
	}
	if p.EndDate.IsZero() {
		s.EndDate = ""
	}
	for _, m := range p.Members {
		s.Members = append(s.Members, MemberSnapshot{UserID: m.UserID, Role: string(m.Role)})
	}
	for _, d := range p.Destinations {
		s.Destinations = append(s.Destinations, DestinationSnapshot{
			ID:            d.ID.String(),
			DestinationID: d.DestinationID,
			Name:          d.Name,
			Kind:          string(d.Kind),
			VisitDate:     FormatDate(d.VisitDate),
			TimeSlot:      string(d.TimeSlot),
			OrderInDay:    d.OrderInDay,
			EstimatedCost: d.EstimatedCost,
			Note:          d.Note,
			URL:           d.URL,
			IsRepeated:    d.IsRepeated,
			RepeatIndex:   d.RepeatIndex,
		})
	}
	return s
}

// AttachPlaceInfo добавляет часы работы и длительность визита из каталога мест.
func (s *PlanSnapshot) AttachPlaceInfo(places map[string]Destination) {
	for i := range s.Destinations {
		place, ok := places[s.Destinations[i].DestinationID]
		if !ok {
			continue
		}
		s.Destinations[i].OpeningHours = place.OpeningHours
		s.Destinations[i].DurationMinutes = int(place.TypicalDuration.Minutes())
		if s.Destinations[i].Name == "" {
			s.Destinations[i].Name = place.Name
		}
	}
}

// DisplayName - имя для сообщений пользователю
func (d *DestinationSnapshot) DisplayName() string {
	if d.Name != "" {
		return d.Name
	}
	return d.DestinationID
}

// ToPlanDestination переводит запись снимка обратно в сущность. Пустой ID - новый пункт.
func (d *DestinationSnapshot) ToPlanDestination(planID uuid.UUID) (PlanDestination, error) {
	pd := PlanDestination{
		PlanID:        planID,
		DestinationID: d.DestinationID,
		Name:          d.Name,
		Kind:          DestinationKind(d.Kind),
		TimeSlot:      TimeSlot(d.TimeSlot),
		OrderInDay:    d.OrderInDay,
		EstimatedCost: d.EstimatedCost,
		Note:          d.Note,
		URL:           d.URL,
		IsRepeated:    d.IsRepeated,
		RepeatIndex:   d.RepeatIndex,
	}
	if d.ID != "" {
		id, err := uuid.Parse(d.ID)
		if err != nil {
			return PlanDestination{}, errors.ErrInvalidRequest.WithMessage("invalid plan item id %q", d.ID)
		}
		pd.ID = id
	} else {
		pd.ID = uuid.New()
	}
	if d.VisitDate != "" {
		t, err := ParseDate(d.VisitDate)
		if err != nil {
			return PlanDestination{}, err
		}
		pd.VisitDate = &t
	}
	return pd, nil
}
