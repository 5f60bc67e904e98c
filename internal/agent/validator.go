package agent

import (
	"context"
	"fmt"
	"sort"

	"github.com/trip-planner/internal/domain"
)

// ValidatorAgent - сквозная проверка: даты, участники, диапазон и непрерывность порядка
type ValidatorAgent struct{}

func NewValidatorAgent() *ValidatorAgent {
	return &ValidatorAgent{}
}

func (a *ValidatorAgent) Name() string {
	return domain.AgentValidator
}

func (a *ValidatorAgent) Process(_ context.Context, plan *domain.PlanSnapshot, _ string) (*domain.AgentResult, error) {
	res := &domain.AgentResult{}
	problem := func(format string, args ...interface{}) {
		res.Warnings = append(res.Warnings, warn(a.Name(), fmt.Sprintf(format, args...)))
	}

	start, end, rangeErr := planRange(plan)
	if rangeErr != nil {
		problem("plan dates are missing or inverted (%s .. %s)", plan.StartDate, plan.EndDate)
	}

	owners := 0
	for _, m := range plan.Members {
		switch domain.MemberRole(m.Role) {
		case domain.RoleOwner:
			owners++
		case domain.RoleEditor, domain.RoleViewer:
		default:
			problem("member %s has unknown role %q", m.UserID, m.Role)
		}
	}
	if owners != 1 {
		problem("plan has %d owners, expected exactly one", owners)
	}

	originals := map[string]bool{}
	for _, d := range plan.Destinations {
		if !d.IsRepeated {
			originals[d.DestinationID] = true
		}
	}

	orders := map[string][]int{}
	for i := range plan.Destinations {
		d := &plan.Destinations[i]
		if d.IsRepeated {
			if domain.DestinationKind(d.Kind) == domain.KindAttraction {
				problem("%s is an attraction and must not be repeated", d.DisplayName())
			}
			if !originals[d.DestinationID] {
				problem("%s is a repeat without an original", d.DisplayName())
			}
		}
		if d.VisitDate == "" {
			problem("%s is not scheduled", d.DisplayName())
			continue
		}
		date, err := domain.ParseDate(d.VisitDate)
		if err != nil {
			problem("%s has invalid visit date %q", d.DisplayName(), d.VisitDate)
			continue
		}
		if rangeErr == nil && (date.Before(start) || date.After(end)) {
			problem("%s is scheduled on %s outside %s .. %s", d.DisplayName(), d.VisitDate, plan.StartDate, plan.EndDate)
		}
		orders[d.VisitDate] = append(orders[d.VisitDate], d.OrderInDay)
	}

	dates := make([]string, 0, len(orders))
	for date := range orders {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	for _, date := range dates {
		got := orders[date]
		sort.Ints(got)
		for i, o := range got {
			if o != i+1 {
				problem("order_in_day on %s is not contiguous: %v", date, got)
				break
			}
		}
	}

	res.Success = len(res.Warnings) == 0
	if res.Success {
		res.Message = "plan is valid"
	} else {
		res.Message = fmt.Sprintf("%d problems found", len(res.Warnings))
	}
	return res, nil
}
