package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gosuda/coperto/internal/domain"
)

type ShiftRepo struct {
	db dbtx
}

func NewShiftRepo(db dbtx) *ShiftRepo {
	return &ShiftRepo{db: db}
}

// TIME columns are read back as text and parsed; seconds are dropped.
const shiftColumns = `id, tenant_id, name, start_time::text, end_time::text, days_of_week, is_active, created_at, updated_at`

func (r *ShiftRepo) Create(ctx context.Context, s *domain.Shift) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO shifts (id, tenant_id, name, start_time, end_time, days_of_week, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4::time, $5::time, $6, $7, $8, $9)`,
		s.ID, s.TenantID, s.Name, s.StartTime.String(), s.EndTime.String(),
		weekdaysToDB(s.DaysOfWeek), s.IsActive, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("shiftRepo.Create: %w", err)
	}

	return nil
}

func (r *ShiftRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*domain.Shift, error) {
	s, err := scanShift(r.db.QueryRow(ctx,
		`SELECT `+shiftColumns+` FROM shifts WHERE tenant_id = $1 AND id = $2`,
		tenantID, id,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("shiftRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("shiftRepo.GetByID: %w", err)
	}

	return s, nil
}

func (r *ShiftRepo) List(ctx context.Context, tenantID uuid.UUID) ([]*domain.Shift, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+shiftColumns+` FROM shifts WHERE tenant_id = $1
		 ORDER BY start_time, name`,
		tenantID,
	)
	if err != nil {
		return nil, fmt.Errorf("shiftRepo.List: %w", err)
	}
	defer rows.Close()

	return scanShifts(rows, "shiftRepo.List")
}

func (r *ShiftRepo) ListActive(ctx context.Context, tenantID uuid.UUID) ([]*domain.Shift, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+shiftColumns+` FROM shifts WHERE tenant_id = $1 AND is_active
		 ORDER BY start_time, name`,
		tenantID,
	)
	if err != nil {
		return nil, fmt.Errorf("shiftRepo.ListActive: %w", err)
	}
	defer rows.Close()

	return scanShifts(rows, "shiftRepo.ListActive")
}

func (r *ShiftRepo) Update(ctx context.Context, s *domain.Shift) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE shifts SET name = $1, start_time = $2::time, end_time = $3::time,
		        days_of_week = $4, is_active = $5, updated_at = now()
		 WHERE tenant_id = $6 AND id = $7`,
		s.Name, s.StartTime.String(), s.EndTime.String(),
		weekdaysToDB(s.DaysOfWeek), s.IsActive, s.TenantID, s.ID,
	)
	if err != nil {
		return fmt.Errorf("shiftRepo.Update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("shiftRepo.Update: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *ShiftRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM shifts WHERE tenant_id = $1 AND id = $2`,
		tenantID, id,
	)
	if err != nil {
		return fmt.Errorf("shiftRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("shiftRepo.Delete: %w", domain.ErrNotFound)
	}

	return nil
}

func scanShift(row pgx.Row) (*domain.Shift, error) {
	var s domain.Shift
	var start, end string
	var days []int16

	if err := row.Scan(&s.ID, &s.TenantID, &s.Name, &start, &end, &days, &s.IsActive, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}

	var err error
	if s.StartTime, err = domain.ParseClockTime(start); err != nil {
		return nil, fmt.Errorf("start_time: %w", err)
	}
	if s.EndTime, err = domain.ParseClockTime(end); err != nil {
		return nil, fmt.Errorf("end_time: %w", err)
	}
	s.DaysOfWeek = weekdaysFromDB(days)

	return &s, nil
}

func scanShifts(rows pgx.Rows, caller string) ([]*domain.Shift, error) {
	var shifts []*domain.Shift
	for rows.Next() {
		s, err := scanShift(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", caller, err)
		}
		shifts = append(shifts, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", caller, err)
	}

	return shifts, nil
}

func weekdaysToDB(days []time.Weekday) []int16 {
	out := make([]int16, 0, len(days))
	for _, d := range domain.SortWeekdays(days) {
		out = append(out, int16(d))
	}
	return out
}

func weekdaysFromDB(days []int16) []time.Weekday {
	out := make([]time.Weekday, 0, len(days))
	for _, d := range days {
		out = append(out, time.Weekday(d))
	}
	return out
}
