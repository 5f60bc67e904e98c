package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/trip-planner/internal/agent"
	"github.com/trip-planner/internal/domain"
	"github.com/trip-planner/internal/domain/repository"
	"github.com/trip-planner/internal/pkg/errors"
	"github.com/trip-planner/internal/usecase/dto"
)

// PlanUseCase - жизненный цикл плана, проверка и распределение
type PlanUseCase struct {
	planRepo     repository.PlanRepository
	catalog      *DestinationUseCase
	distribution *agent.DistributionAgent
	runner       *AgentRunner
	logger       *zap.Logger
}

// NewPlanUseCase - создание нового PlanUseCase
func NewPlanUseCase(
	planRepo repository.PlanRepository,
	catalog *DestinationUseCase,
	shape agent.DailyShape,
	runner *AgentRunner,
	logger *zap.Logger,
) *PlanUseCase {
	return &PlanUseCase{
		planRepo:     planRepo,
		catalog:      catalog,
		distribution: agent.NewDistributionAgent(shape),
		runner:       runner,
		logger:       logger,
	}
}

func toPlanDestinations(planID uuid.UUID, inputs []dto.PlanDestinationInput) ([]domain.PlanDestination, error) {
	out := make([]domain.PlanDestination, 0, len(inputs))
	for _, in := range inputs {
		d := domain.PlanDestination{
			ID:            uuid.New(),
			PlanID:        planID,
			DestinationID: in.DestinationID,
			Name:          in.Name,
			Kind:          domain.DestinationKind(in.Kind),
			TimeSlot:      domain.TimeSlot(in.TimeSlot),
			OrderInDay:    in.OrderInDay,
			EstimatedCost: in.EstimatedCost,
			Note:          in.Note,
			URL:           in.URL,
		}
		if !d.Kind.Valid() {
			return nil, errors.ErrInvalidRequest.WithMessage("unknown destination kind %q", in.Kind)
		}
		if in.VisitDate != "" {
			t, err := domain.ParseDate(in.VisitDate)
			if err != nil {
				return nil, err
			}
			d.VisitDate = &t
		}
		out = append(out, d)
	}
	return out, nil
}

// CreatePlan создаёт план владельцем. Если пункты не распределены, план сразу распределяется.
func (uc *PlanUseCase) CreatePlan(ctx context.Context, userID string, req dto.CreatePlanRequest) (*domain.PlanSnapshot, error) {
	start, err := domain.ParseDate(req.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := domain.ParseDate(req.EndDate)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	plan := &domain.Plan{
		ID:          uuid.New(),
		Name:        req.Name,
		PlaceName:   req.PlaceName,
		StartDate:   start,
		EndDate:     end,
		BudgetLimit: req.BudgetLimit,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	plan.Members = []domain.PlanMember{{PlanID: plan.ID, UserID: userID, Role: domain.RoleOwner}}
	if err := plan.Validate(); err != nil {
		return nil, err
	}

	plan.Destinations, err = toPlanDestinations(plan.ID, req.Destinations)
	if err != nil {
		return nil, err
	}
	if _, err := uc.distribute(plan); err != nil {
		return nil, err
	}

	if err := uc.planRepo.Create(ctx, plan); err != nil {
		uc.logger.Error("Failed to create plan", zap.String("plan_id", plan.ID.String()), zap.Error(err))
		return nil, err
	}
	uc.logger.Info("Plan created",
		zap.String("plan_id", plan.ID.String()),
		zap.String("owner", userID),
		zap.Int("destinations", len(plan.Destinations)))

	snap := domain.NewPlanSnapshot(plan)
	return &snap, nil
}

// GetPlan - снимок плана для участника
func (uc *PlanUseCase) GetPlan(ctx context.Context, userID string, planID uuid.UUID) (*domain.PlanSnapshot, error) {
	plan, err := uc.planRepo.GetByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	if err := plan.CanView(userID); err != nil {
		return nil, err
	}
	snap := domain.NewPlanSnapshot(plan)
	return &snap, nil
}

// DeletePlan - только владелец
func (uc *PlanUseCase) DeletePlan(ctx context.Context, userID string, planID uuid.UUID) error {
	plan, err := uc.planRepo.GetByID(ctx, planID)
	if err != nil {
		return err
	}
	if err := plan.RequireOwner(userID); err != nil {
		return err
	}
	if err := uc.planRepo.Delete(ctx, planID); err != nil {
		uc.logger.Error("Failed to delete plan", zap.String("plan_id", planID.String()), zap.Error(err))
		return err
	}
	uc.logger.Info("Plan deleted", zap.String("plan_id", planID.String()))
	return nil
}

// ReplaceDestinations заменяет все пункты плана одним сохранением
func (uc *PlanUseCase) ReplaceDestinations(ctx context.Context, userID string, planID uuid.UUID, req dto.ReplaceDestinationsRequest) (*domain.PlanSnapshot, error) {
	plan, err := uc.planRepo.GetByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	if err := plan.CanEdit(userID); err != nil {
		return nil, err
	}

	working := plan.Clone()
	working.Destinations, err = toPlanDestinations(plan.ID, req.Destinations)
	if err != nil {
		return nil, err
	}
	if _, err := uc.distribute(working); err != nil {
		return nil, err
	}
	working.UpdatedAt = time.Now().UTC()
	if err := uc.planRepo.Save(ctx, working); err != nil {
		uc.logger.Error("Failed to replace destinations", zap.String("plan_id", planID.String()), zap.Error(err))
		return nil, err
	}
	snap := domain.NewPlanSnapshot(working)
	return &snap, nil
}

// AddMember - владелец добавляет редактора или наблюдателя
func (uc *PlanUseCase) AddMember(ctx context.Context, userID string, planID uuid.UUID, req dto.AddMemberRequest) (*domain.PlanSnapshot, error) {
	plan, err := uc.planRepo.GetByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	if err := plan.RequireOwner(userID); err != nil {
		return nil, err
	}
	if err := plan.AddMember(req.UserID, domain.MemberRole(req.Role)); err != nil {
		return nil, err
	}
	if err := uc.planRepo.AddMember(ctx, plan.Members[len(plan.Members)-1]); err != nil {
		return nil, err
	}
	snap := domain.NewPlanSnapshot(plan)
	return &snap, nil
}

// ValidatePlan прогоняет суб-агентов по плану, ничего не сохраняя
func (uc *PlanUseCase) ValidatePlan(ctx context.Context, userID string, planID uuid.UUID) (*dto.ValidationResponse, error) {
	plan, err := uc.planRepo.GetByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	if err := plan.CanView(userID); err != nil {
		return nil, err
	}

	snap := uc.snapshotWithPlaces(ctx, plan)
	report := uc.runner.Run(ctx, &snap, "validate")
	return &dto.ValidationResponse{
		Valid:       report.Valid(),
		Warnings:    report.Warnings,
		Suggestions: nonNil(report.Suggestions),
	}, nil
}

// DistributePlan перераспределяет пункты и сохраняет результат
func (uc *PlanUseCase) DistributePlan(ctx context.Context, userID string, planID uuid.UUID) (*dto.DistributionResponse, error) {
	plan, err := uc.planRepo.GetByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	if err := plan.CanEdit(userID); err != nil {
		return nil, err
	}

	working := plan.Clone()
	res, err := uc.distribute(working)
	if err != nil {
		return nil, err
	}
	if len(res.Modifications) > 0 {
		working.UpdatedAt = time.Now().UTC()
		if err := uc.planRepo.Save(ctx, working); err != nil {
			uc.logger.Error("Failed to save distributed plan", zap.String("plan_id", planID.String()), zap.Error(err))
			return nil, err
		}
	}

	uc.logger.Info("Plan distributed",
		zap.String("plan_id", planID.String()),
		zap.Bool("redistributed", res.Redistributed),
		zap.Int("modifications", len(res.Modifications)))

	snap := domain.NewPlanSnapshot(working)
	return &dto.DistributionResponse{
		Destinations:  snap.Destinations,
		Warnings:      nonNil(res.Warnings),
		Modifications: nonNil(res.Modifications),
		Message:       res.Message,
	}, nil
}

// distribute применяет агент распределения к плану на месте
func (uc *PlanUseCase) distribute(plan *domain.Plan) (*agent.DistributionResult, error) {
	snap := domain.NewPlanSnapshot(plan)
	res, err := uc.distribution.Distribute(&snap)
	if err != nil {
		return nil, err
	}
	if err := applyDistribution(plan, res.Destinations); err != nil {
		return nil, err
	}
	return res, nil
}

func applyDistribution(plan *domain.Plan, dests []domain.DestinationSnapshot) error {
	out := make([]domain.PlanDestination, 0, len(dests))
	for i := range dests {
		d, err := dests[i].ToPlanDestination(plan.ID)
		if err != nil {
			return err
		}
		out = append(out, d)
	}
	plan.Destinations = out
	return plan.CheckInvariants()
}

func (uc *PlanUseCase) snapshotWithPlaces(ctx context.Context, plan *domain.Plan) domain.PlanSnapshot {
	return snapshotWithPlaces(ctx, uc.catalog, plan)
}

func snapshotWithPlaces(ctx context.Context, catalog *DestinationUseCase, plan *domain.Plan) domain.PlanSnapshot {
	snap := domain.NewPlanSnapshot(plan)
	if catalog == nil {
		return snap
	}
	seen := map[string]bool{}
	var ids []string
	for _, d := range plan.Destinations {
		if !seen[d.DestinationID] {
			seen[d.DestinationID] = true
			ids = append(ids, d.DestinationID)
		}
	}
	snap.AttachPlaceInfo(catalog.PlaceInfo(ctx, ids))
	return snap
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
