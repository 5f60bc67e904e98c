package agent

import (
	"context"
	"fmt"
	"sort"

	"github.com/trip-planner/internal/domain"
)

// BudgetAgent сравнивает сумму оценочных затрат с лимитом плана
type BudgetAgent struct{}

func NewBudgetAgent() *BudgetAgent {
	return &BudgetAgent{}
}

func (a *BudgetAgent) Name() string {
	return domain.AgentBudget
}

// TotalCost - сумма estimated_cost по запланированным пунктам
func TotalCost(plan *domain.PlanSnapshot) float64 {
	total := 0.0
	for _, d := range plan.Destinations {
		if d.VisitDate != "" && d.EstimatedCost != nil {
			total += *d.EstimatedCost
		}
	}
	return total
}

func (a *BudgetAgent) Process(_ context.Context, plan *domain.PlanSnapshot, _ string) (*domain.AgentResult, error) {
	res := &domain.AgentResult{Success: true}
	total := TotalCost(plan)

	if plan.BudgetLimit == nil {
		res.Message = fmt.Sprintf("estimated cost %.0f; no budget limit set", total)
		return res, nil
	}
	limit := *plan.BudgetLimit
	if total <= limit {
		res.Message = fmt.Sprintf("estimated cost %.0f is within budget %.0f", total, limit)
		return res, nil
	}

	overage := total - limit
	res.Message = fmt.Sprintf("estimated cost %.0f exceeds budget %.0f", total, limit)
	res.Warnings = append(res.Warnings, warn(a.Name(),
		fmt.Sprintf("estimated cost %.0f exceeds budget %.0f by %.0f", total, limit, overage)))

	// без чего можно обойтись: достопримечательности и повторы, самые дешёвые первыми
	var dispensable []domain.DestinationSnapshot
	for _, d := range plan.Destinations {
		if d.VisitDate == "" || d.EstimatedCost == nil || *d.EstimatedCost <= 0 {
			continue
		}
		if d.IsRepeated || effectiveKind(&d) == domain.KindAttraction {
			dispensable = append(dispensable, d)
		}
	}
	sort.SliceStable(dispensable, func(i, j int) bool {
		ci, cj := *dispensable[i].EstimatedCost, *dispensable[j].EstimatedCost
		if ci != cj {
			return ci < cj
		}
		return dispensable[i].DisplayName() < dispensable[j].DisplayName()
	})

	saved := 0.0
	for _, d := range dispensable {
		if saved >= overage {
			break
		}
		saved += *d.EstimatedCost
		res.Suggestions = append(res.Suggestions,
			fmt.Sprintf("Consider dropping %s on %s (saves %.0f)", d.DisplayName(), d.VisitDate, *d.EstimatedCost))
		res.Modifications = append(res.Modifications, domain.Modification{
			Agent: a.Name(), ItemID: d.ID, DestinationID: d.DestinationID,
			Field: "removed", OldValue: d.VisitDate,
		})
	}
	return res, nil
}
