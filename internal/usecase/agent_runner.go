package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/trip-planner/internal/agent"
	"github.com/trip-planner/internal/domain"
)

// AgentReport - объединённый результат суб-агентов
type AgentReport struct {
	Warnings      []domain.Warning
	Modifications []domain.Modification
	Suggestions   []string
	Results       map[string]*domain.AgentResult
}

// AgentRunner запускает суб-агентов последовательно в фиксированном порядке:
// opening_hours -> budget -> daily_schedule -> validator.
type AgentRunner struct {
	agents []agent.SubAgent
	logger *zap.Logger
}

func NewAgentRunner(shape agent.DailyShape, logger *zap.Logger) *AgentRunner {
	return newAgentRunner(logger,
		agent.NewOpeningHoursAgent(),
		agent.NewBudgetAgent(),
		agent.NewDailyScheduleAgent(shape),
		agent.NewValidatorAgent(),
	)
}

func newAgentRunner(logger *zap.Logger, agents ...agent.SubAgent) *AgentRunner {
	return &AgentRunner{agents: agents, logger: logger}
}

// Run никогда не прерывается из-за агента: ошибка или паника становится предупреждением
func (r *AgentRunner) Run(ctx context.Context, snap *domain.PlanSnapshot, action string) *AgentReport {
	report := &AgentReport{Results: make(map[string]*domain.AgentResult, len(r.agents))}
	var groups [][]domain.Warning

	for _, a := range r.agents {
		res, err := r.runOne(ctx, a, snap, action)
		if err != nil {
			r.logger.Warn("Sub-agent failed", zap.String("agent", a.Name()), zap.Error(err))
			groups = append(groups, []domain.Warning{{Agent: a.Name(), Message: err.Error()}})
			continue
		}
		report.Results[a.Name()] = res
		groups = append(groups, res.Warnings)
		report.Modifications = append(report.Modifications, res.Modifications...)
		report.Suggestions = append(report.Suggestions, res.Suggestions...)
	}

	report.Warnings = domain.MergeWarnings(groups...)
	return report
}

func (r *AgentRunner) runOne(ctx context.Context, a agent.SubAgent, snap *domain.PlanSnapshot, action string) (res *domain.AgentResult, err error) {
	defer func() {
		if p := recover(); p != nil {
			res = nil
			err = fmt.Errorf("agent %s panicked: %v", a.Name(), p)
		}
	}()
	res, err = a.Process(ctx, snap, action)
	if err == nil && res == nil {
		err = fmt.Errorf("agent %s returned no result", a.Name())
	}
	return res, err
}

// Valid - структурная валидность по validator-агенту
func (rep *AgentReport) Valid() bool {
	res, ok := rep.Results[domain.AgentValidator]
	return ok && res.Success
}
