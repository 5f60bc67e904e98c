package agent

import (
	"context"
	"fmt"

	"github.com/trip-planner/internal/domain"
)

// maxDayMinutes - больше этого суммарного времени визитов день считается перегруженным
const maxDayMinutes = 14 * 60

// DailyScheduleAgent проверяет форму каждого дня поездки
type DailyScheduleAgent struct {
	shape DailyShape
}

func NewDailyScheduleAgent(shape DailyShape) *DailyScheduleAgent {
	return &DailyScheduleAgent{shape: shape}
}

func (a *DailyScheduleAgent) Name() string {
	return domain.AgentDailySchedule
}

type dayTally struct {
	attractions    int
	restaurants    int
	accommodations int
	minutes        int
}

func (a *DailyScheduleAgent) Process(_ context.Context, plan *domain.PlanSnapshot, _ string) (*domain.AgentResult, error) {
	res := &domain.AgentResult{Success: true}
	start, end, err := planRange(plan)
	if err != nil {
		res.Message = "daily schedule not checked: plan dates are invalid"
		return res, nil
	}
	days := tripDays(start, end)

	tallies := make([]dayTally, days+1)
	for i := range plan.Destinations {
		d := &plan.Destinations[i]
		n := dayNumber(start, d.VisitDate)
		if n < 1 || n > days {
			continue
		}
		switch effectiveKind(d) {
		case domain.KindAttraction:
			tallies[n].attractions++
		case domain.KindRestaurant:
			tallies[n].restaurants++
		case domain.KindAccommodation:
			tallies[n].accommodations++
		}
		tallies[n].minutes += d.DurationMinutes
	}

	badDays := 0
	for n := 1; n <= days; n++ {
		t := tallies[n]
		before := len(res.Warnings)
		if t.attractions > a.shape.MaxAttractionsPerDay {
			res.Warnings = append(res.Warnings, warn(a.Name(),
				fmt.Sprintf("day %d has %d attractions (max %d)", n, t.attractions, a.shape.MaxAttractionsPerDay)))
		}
		if t.restaurants < a.shape.RestaurantsPerDay {
			res.Warnings = append(res.Warnings, warn(a.Name(),
				fmt.Sprintf("day %d has %d restaurants (expected %d)", n, t.restaurants, a.shape.RestaurantsPerDay)))
		}
		if t.accommodations < a.shape.AccommodationsPerDay {
			res.Warnings = append(res.Warnings, warn(a.Name(), fmt.Sprintf("day %d has no accommodation", n)))
		}
		if t.minutes > maxDayMinutes {
			res.Warnings = append(res.Warnings, warn(a.Name(),
				fmt.Sprintf("day %d is overbooked: about %dh of visits", n, t.minutes/60)))
			res.Suggestions = append(res.Suggestions, fmt.Sprintf("Move something from day %d to a lighter day", n))
		}
		if len(res.Warnings) > before {
			badDays++
		}
	}

	if badDays == 0 {
		res.Message = fmt.Sprintf("all %d days have a complete shape", days)
	} else {
		res.Message = fmt.Sprintf("%d of %d days need attention", badDays, days)
	}
	return res, nil
}
