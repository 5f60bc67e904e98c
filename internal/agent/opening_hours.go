package agent

import (
	"context"
	"fmt"

	"github.com/trip-planner/internal/domain"
)

// OpeningHoursAgent сверяет слот пункта с известными часами работы места
type OpeningHoursAgent struct{}

func NewOpeningHoursAgent() *OpeningHoursAgent {
	return &OpeningHoursAgent{}
}

func (a *OpeningHoursAgent) Name() string {
	return domain.AgentOpeningHours
}

func (a *OpeningHoursAgent) Process(_ context.Context, plan *domain.PlanSnapshot, _ string) (*domain.AgentResult, error) {
	res := &domain.AgentResult{Success: true}
	start, _, err := planRange(plan)
	if err != nil {
		res.Message = "opening hours not checked: plan dates are invalid"
		return res, nil
	}

	checked := 0
	for i := range plan.Destinations {
		d := &plan.Destinations[i]
		if d.VisitDate == "" || d.OpeningHours == nil || len(d.OpeningHours.Periods) == 0 {
			continue
		}
		date, err := domain.ParseDate(d.VisitDate)
		if err != nil {
			continue
		}
		slot := domain.TimeSlot(d.TimeSlot)
		if !slot.Valid() {
			continue
		}
		checked++
		from, to := domain.SlotWindow(slot)
		if d.OpeningHours.OpenDuring(date.Weekday(), from, to) {
			continue
		}

		res.Warnings = append(res.Warnings, warn(a.Name(), fmt.Sprintf(
			"%s is typically closed during %s on day %d", d.DisplayName(), slot, dayNumber(start, d.VisitDate))))

		for _, alt := range spreadSlots {
			if alt == slot {
				continue
			}
			from, to := domain.SlotWindow(alt)
			if d.OpeningHours.OpenDuring(date.Weekday(), from, to) {
				res.Modifications = append(res.Modifications, domain.Modification{
					Agent: a.Name(), ItemID: d.ID, DestinationID: d.DestinationID,
					Field: "time_slot", OldValue: string(slot), NewValue: string(alt),
				})
				res.Suggestions = append(res.Suggestions, fmt.Sprintf("Move %s to the %s", d.DisplayName(), alt))
				break
			}
		}
	}

	res.Message = fmt.Sprintf("checked opening hours for %d destinations", checked)
	return res, nil
}
