package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/trip-planner/internal/domain"
	"github.com/trip-planner/internal/domain/repository"
	"github.com/trip-planner/internal/pkg/dbx"
	"github.com/trip-planner/internal/pkg/errors"
)

type planRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewPlanRepository создает новый экземпляр plan repository
func NewPlanRepository(db *DB, logger *zap.Logger) repository.PlanRepository {
	return &planRepository{
		db:     db,
		logger: logger,
	}
}

type planRow struct {
	ID          uuid.UUID       `db:"id"`
	Name        string          `db:"name"`
	PlaceName   string          `db:"place_name"`
	StartDate   time.Time       `db:"start_date"`
	EndDate     time.Time       `db:"end_date"`
	BudgetLimit sql.NullFloat64 `db:"budget_limit"`
	CreatedAt   time.Time       `db:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at"`
}

func (r planRow) toDomain() *domain.Plan {
	return &domain.Plan{
		ID:          r.ID,
		Name:        r.Name,
		PlaceName:   r.PlaceName,
		StartDate:   r.StartDate.UTC(),
		EndDate:     r.EndDate.UTC(),
		BudgetLimit: floatPtr(r.BudgetLimit),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

type planDestinationRow struct {
	ID            uuid.UUID       `db:"id"`
	PlanID        uuid.UUID       `db:"plan_id"`
	DestinationID string          `db:"destination_id"`
	Name          string          `db:"name"`
	Kind          string          `db:"kind"`
	VisitDate     sql.NullTime    `db:"visit_date"`
	TimeSlot      string          `db:"time_slot"`
	OrderInDay    int             `db:"order_in_day"`
	EstimatedCost sql.NullFloat64 `db:"estimated_cost"`
	Note          string          `db:"note"`
	URL           string          `db:"url"`
	IsRepeated    bool            `db:"is_repeated"`
	RepeatIndex   int             `db:"repeat_index"`
}

func (r planDestinationRow) toDomain() domain.PlanDestination {
	d := domain.PlanDestination{
		ID:            r.ID,
		PlanID:        r.PlanID,
		DestinationID: r.DestinationID,
		Name:          r.Name,
		Kind:          domain.DestinationKind(r.Kind),
		TimeSlot:      domain.TimeSlot(r.TimeSlot),
		OrderInDay:    r.OrderInDay,
		EstimatedCost: floatPtr(r.EstimatedCost),
		Note:          r.Note,
		URL:           r.URL,
		IsRepeated:    r.IsRepeated,
		RepeatIndex:   r.RepeatIndex,
	}
	if r.VisitDate.Valid {
		t := r.VisitDate.Time.UTC()
		d.VisitDate = &t
	}
	return d
}

func newPlanDestinationRow(planID uuid.UUID, d domain.PlanDestination) planDestinationRow {
	row := planDestinationRow{
		ID:            d.ID,
		PlanID:        planID,
		DestinationID: d.DestinationID,
		Name:          d.Name,
		Kind:          string(d.Kind),
		TimeSlot:      string(d.TimeSlot),
		OrderInDay:    d.OrderInDay,
		EstimatedCost: nullFloat(d.EstimatedCost),
		Note:          d.Note,
		URL:           d.URL,
		IsRepeated:    d.IsRepeated,
		RepeatIndex:   d.RepeatIndex,
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if d.VisitDate != nil {
		row.VisitDate = sql.NullTime{Time: *d.VisitDate, Valid: true}
	}
	return row
}

const planColumns = `id, name, place_name, start_date, end_date, budget_limit, created_at, updated_at`

// GetByID возвращает план с участниками и пунктами
func (r *planRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Plan, error) {
	var row planRow
	query := `SELECT ` + planColumns + ` FROM plans WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		return nil, mapError(err, errors.ErrPlanNotFound)
	}
	plan := row.toDomain()
	if err := r.loadChildren(ctx, r.db.DB, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// FirstOwnedBy возвращает самый ранний план, которым владеет пользователь
func (r *planRepository) FirstOwnedBy(ctx context.Context, userID string) (*domain.Plan, error) {
	var row planRow
	query := `
		SELECT p.id, p.name, p.place_name, p.start_date, p.end_date, p.budget_limit, p.created_at, p.updated_at
		FROM plans p
		JOIN plan_members m ON m.plan_id = p.id
		WHERE m.user_id = $1 AND m.role = 'owner'
		ORDER BY p.created_at, p.id
		LIMIT 1`
	if err := r.db.GetContext(ctx, &row, query, userID); err != nil {
		return nil, mapError(err, errors.ErrPlanNotFound)
	}
	plan := row.toDomain()
	if err := r.loadChildren(ctx, r.db.DB, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// ListByMember возвращает планы, где пользователь участник
func (r *planRepository) ListByMember(ctx context.Context, userID string, limit int) ([]*domain.Plan, error) {
	var rows []planRow
	query := `
		SELECT p.id, p.name, p.place_name, p.start_date, p.end_date, p.budget_limit, p.created_at, p.updated_at
		FROM plans p
		JOIN plan_members m ON m.plan_id = p.id
		WHERE m.user_id = $1
		ORDER BY p.start_date, p.id
		LIMIT $2`
	if err := r.db.SelectContext(ctx, &rows, query, userID, clampLimit(limit)); err != nil {
		r.logger.Error("failed to list plans", zap.String("user_id", userID), zap.Error(err))
		return nil, mapError(err, nil)
	}

	plans := make([]*domain.Plan, 0, len(rows))
	for _, row := range rows {
		plan := row.toDomain()
		if err := r.loadChildren(ctx, r.db.DB, plan); err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}
	return plans, nil
}

func (r *planRepository) loadChildren(ctx context.Context, q dbx.DBTX, plan *domain.Plan) error {
	var members []domain.PlanMember
	if err := q.SelectContext(ctx, &members,
		`SELECT plan_id, user_id, role FROM plan_members WHERE plan_id = $1 ORDER BY role = 'owner' DESC, user_id`,
		plan.ID); err != nil {
		return mapError(err, nil)
	}
	plan.Members = members

	var rows []planDestinationRow
	if err := q.SelectContext(ctx, &rows, `
		SELECT id, plan_id, destination_id, name, kind, visit_date, time_slot, order_in_day,
		       estimated_cost, note, url, is_repeated, repeat_index
		FROM plan_destinations
		WHERE plan_id = $1
		ORDER BY visit_date NULLS LAST, order_in_day, id`, plan.ID); err != nil {
		return mapError(err, nil)
	}
	plan.Destinations = make([]domain.PlanDestination, 0, len(rows))
	for _, row := range rows {
		plan.Destinations = append(plan.Destinations, row.toDomain())
	}
	domain.SortDestinations(plan.Destinations)
	return nil
}

// Create сохраняет новый план, участников и пункты в одной транзакции
func (r *planRepository) Create(ctx context.Context, plan *domain.Plan) error {
	if plan.ID == uuid.Nil {
		plan.ID = uuid.New()
	}
	now := time.Now().UTC()
	plan.CreatedAt, plan.UpdatedAt = now, now

	err := dbx.WithTx(ctx, r.db.DB, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO plans (id, name, place_name, start_date, end_date, budget_limit, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			plan.ID, plan.Name, plan.PlaceName, plan.StartDate, plan.EndDate,
			nullFloat(plan.BudgetLimit), plan.CreatedAt, plan.UpdatedAt); err != nil {
			return err
		}
		for i := range plan.Members {
			plan.Members[i].PlanID = plan.ID
			if err := insertMember(ctx, tx, plan.Members[i]); err != nil {
				return err
			}
		}
		return insertDestinations(ctx, tx, plan)
	})
	if err != nil {
		r.logger.Error("failed to create plan", zap.String("plan_id", plan.ID.String()), zap.Error(err))
		return mapError(err, nil)
	}
	return nil
}

// Save обновляет атрибуты плана и полностью заменяет список пунктов в одной транзакции
func (r *planRepository) Save(ctx context.Context, plan *domain.Plan) error {
	plan.UpdatedAt = time.Now().UTC()

	err := dbx.WithTx(ctx, r.db.DB, nil, func(ctx context.Context, tx dbx.DBTX) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE plans
			SET name = $2, place_name = $3, start_date = $4, end_date = $5, budget_limit = $6, updated_at = $7
			WHERE id = $1`,
			plan.ID, plan.Name, plan.PlaceName, plan.StartDate, plan.EndDate,
			nullFloat(plan.BudgetLimit), plan.UpdatedAt)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return errors.ErrPlanNotFound
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM plan_destinations WHERE plan_id = $1`, plan.ID); err != nil {
			return err
		}
		return insertDestinations(ctx, tx, plan)
	})
	if err != nil {
		r.logger.Error("failed to save plan", zap.String("plan_id", plan.ID.String()), zap.Error(err))
		return mapError(err, errors.ErrPlanNotFound)
	}
	return nil
}

// Delete удаляет план каскадно
func (r *planRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM plans WHERE id = $1`, id)
	if err != nil {
		return mapError(err, nil)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.ErrPlanNotFound
	}
	return nil
}

// AddMember добавляет участника
func (r *planRepository) AddMember(ctx context.Context, member domain.PlanMember) error {
	if err := insertMember(ctx, r.db.DB, member); err != nil {
		return mapError(err, nil)
	}
	return nil
}

func insertMember(ctx context.Context, q sqlx.ExecerContext, m domain.PlanMember) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO plan_members (plan_id, user_id, role) VALUES ($1, $2, $3)`,
		m.PlanID, m.UserID, string(m.Role))
	return err
}

// insertDestinations пишет пункты плана; id присваиваются тем, у кого их нет
func insertDestinations(ctx context.Context, q sqlx.ExtContext, plan *domain.Plan) error {
	if len(plan.Destinations) == 0 {
		return nil
	}
	rows := make([]planDestinationRow, 0, len(plan.Destinations))
	for i := range plan.Destinations {
		row := newPlanDestinationRow(plan.ID, plan.Destinations[i])
		plan.Destinations[i].ID = row.ID
		plan.Destinations[i].PlanID = plan.ID
		rows = append(rows, row)
	}
	_, err := sqlx.NamedExecContext(ctx, q, `
		INSERT INTO plan_destinations (
			id, plan_id, destination_id, name, kind, visit_date, time_slot, order_in_day,
			estimated_cost, note, url, is_repeated, repeat_index
		) VALUES (
			:id, :plan_id, :destination_id, :name, :kind, :visit_date, :time_slot, :order_in_day,
			:estimated_cost, :note, :url, :is_repeated, :repeat_index
		)`, rows)
	return err
}
