package postgres

import (
	"database/sql"
	stderrors "errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"github.com/trip-planner/internal/pkg/errors"
)

// Константы для лимитов запросов
const (
	// DefaultQueryLimit - лимит по умолчанию для запросов
	DefaultQueryLimit = 100
	// MaxQueryLimit - максимальный лимит для запросов
	MaxQueryLimit = 1000
)

// Коды ошибок PostgreSQL
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// clampLimit приводит лимит к [1, MaxQueryLimit]
func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultQueryLimit
	}
	if limit > MaxQueryLimit {
		return MaxQueryLimit
	}
	return limit
}

// pgCode достаёт SQLSTATE из ошибки любого из двух драйверов
func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if stderrors.As(err, &pgErr) {
		return pgErr.Code
	}
	var pqErr *pq.Error
	if stderrors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

// mapError переводит ошибку БД в таксономию: нет строки -> notFound, уникальность -> Conflict
func mapError(err error, notFound *errors.AppError) error {
	if err == nil {
		return nil
	}
	if stderrors.Is(err, sql.ErrNoRows) && notFound != nil {
		return notFound
	}
	switch pgCode(err) {
	case pgUniqueViolation:
		return errors.ErrAlreadyExists.Wrap(err)
	case pgForeignKeyViolation, pgCheckViolation:
		return errors.ErrInvalidRequest.Wrap(err)
	}
	if errors.KindOf(err) != errors.CodeInternal {
		return err
	}
	return errors.ErrDatabaseError.Wrap(err)
}

func toFloat64s(v []float32) pq.Float64Array {
	if v == nil {
		return nil
	}
	out := make(pq.Float64Array, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}

func toFloat32s(v pq.Float64Array) []float32 {
	if len(v) == 0 {
		return nil
	}
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x)
	}
	return out
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
