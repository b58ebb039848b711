package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gosuda/coperto/internal/domain"
)

type ReservationRepo struct {
	db dbtx
}

func NewReservationRepo(db dbtx) *ReservationRepo {
	return &ReservationRepo{db: db}
}

// Assigned table ids are aggregated in assignment order.
const reservationColumns = `r.id, r.tenant_id, r.customer_name, r.customer_email, r.customer_phone,
	r.guests, r.high_chairs, r.date, r.time::text, r.notes, r.status, r.rejection_reason,
	COALESCE((SELECT array_agg(rt.table_id ORDER BY rt.position)
	          FROM reservation_tables rt WHERE rt.reservation_id = r.id), '{}'),
	r.created_at, r.updated_at`

func (r *ReservationRepo) Create(ctx context.Context, res *domain.Reservation) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO reservations (id, tenant_id, customer_name, customer_email, customer_phone,
		                           guests, high_chairs, date, time, notes, status, rejection_reason,
		                           created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::time, $10, $11, $12, $13, $14)`,
		res.ID, res.TenantID, res.CustomerName, res.CustomerEmail, res.CustomerPhone,
		res.Guests, res.HighChairs, res.Date, res.Time.String(), res.Notes,
		res.Status, res.RejectionReason, res.CreatedAt, res.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("reservationRepo.Create: %w", err)
	}

	return nil
}

func (r *ReservationRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*domain.Reservation, error) {
	res, err := scanReservation(r.db.QueryRow(ctx,
		`SELECT `+reservationColumns+` FROM reservations r WHERE r.tenant_id = $1 AND r.id = $2`,
		tenantID, id,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("reservationRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reservationRepo.GetByID: %w", err)
	}

	return res, nil
}

func (r *ReservationRepo) GetForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*domain.Reservation, error) {
	res, err := scanReservation(r.db.QueryRow(ctx,
		`SELECT `+reservationColumns+` FROM reservations r WHERE r.tenant_id = $1 AND r.id = $2
		 FOR UPDATE OF r`,
		tenantID, id,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("reservationRepo.GetForUpdate: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reservationRepo.GetForUpdate: %w", err)
	}

	return res, nil
}

func (r *ReservationRepo) List(ctx context.Context, tenantID uuid.UUID, filter domain.ReservationFilter) ([]*domain.Reservation, error) {
	where := []string{"r.tenant_id = $1"}
	args := []any{tenantID}

	if filter.Date != nil {
		args = append(args, *filter.Date)
		where = append(where, fmt.Sprintf("r.date = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where = append(where, fmt.Sprintf("r.status = $%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 500
	}
	args = append(args, limit, max(filter.Offset, 0))

	query := `SELECT ` + reservationColumns + ` FROM reservations r
		 WHERE ` + strings.Join(where, " AND ") + `
		 ORDER BY r.date, r.time, r.created_at
		 LIMIT $` + fmt.Sprint(len(args)-1) + ` OFFSET $` + fmt.Sprint(len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("reservationRepo.List: %w", err)
	}
	defer rows.Close()

	var out []*domain.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("reservationRepo.List: scan: %w", err)
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reservationRepo.List: rows: %w", err)
	}

	return out, nil
}

func (r *ReservationRepo) UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status domain.ReservationStatus, reason string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE reservations SET status = $1, rejection_reason = $2, updated_at = now()
		 WHERE tenant_id = $3 AND id = $4`,
		status, reason, tenantID, id,
	)
	if err != nil {
		return fmt.Errorf("reservationRepo.UpdateStatus: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("reservationRepo.UpdateStatus: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *ReservationRepo) ReplaceAssignments(ctx context.Context, tenantID, reservationID uuid.UUID, tableIDs []uuid.UUID) error {
	_, err := r.db.Exec(ctx,
		`DELETE FROM reservation_tables WHERE tenant_id = $1 AND reservation_id = $2`,
		tenantID, reservationID,
	)
	if err != nil {
		return fmt.Errorf("reservationRepo.ReplaceAssignments: delete: %w", err)
	}

	if len(tableIDs) == 0 {
		return nil
	}

	_, err = r.db.Exec(ctx,
		`INSERT INTO reservation_tables (tenant_id, reservation_id, table_id, position)
		 SELECT $1, $2, t.id, t.ord
		 FROM unnest($3::uuid[]) WITH ORDINALITY AS t(id, ord)`,
		tenantID, reservationID, tableIDs,
	)
	if err != nil {
		return fmt.Errorf("reservationRepo.ReplaceAssignments: insert: %w", err)
	}

	return nil
}

func (r *ReservationRepo) ListTableBookings(ctx context.Context, tenantID uuid.UUID, date time.Time, tableIDs []uuid.UUID) ([]*domain.TableBooking, error) {
	rows, err := r.db.Query(ctx,
		`SELECT rt.reservation_id, rt.table_id, r.time::text
		 FROM reservation_tables rt
		 JOIN reservations r ON r.id = rt.reservation_id
		 WHERE rt.tenant_id = $1 AND r.date = $2 AND r.status = $3
		   AND rt.table_id = ANY($4::uuid[])
		 ORDER BY r.time`,
		tenantID, date, domain.ReservationConfirmed, tableIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("reservationRepo.ListTableBookings: %w", err)
	}
	defer rows.Close()

	var out []*domain.TableBooking
	for rows.Next() {
		var b domain.TableBooking
		var at string
		if err := rows.Scan(&b.ReservationID, &b.TableID, &at); err != nil {
			return nil, fmt.Errorf("reservationRepo.ListTableBookings: scan: %w", err)
		}
		if b.Time, err = domain.ParseClockTime(at); err != nil {
			return nil, fmt.Errorf("reservationRepo.ListTableBookings: %w", err)
		}
		out = append(out, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reservationRepo.ListTableBookings: rows: %w", err)
	}

	return out, nil
}

func scanReservation(row pgx.Row) (*domain.Reservation, error) {
	var res domain.Reservation
	var at string

	err := row.Scan(
		&res.ID, &res.TenantID, &res.CustomerName, &res.CustomerEmail, &res.CustomerPhone,
		&res.Guests, &res.HighChairs, &res.Date, &at, &res.Notes, &res.Status, &res.RejectionReason,
		&res.TableIDs, &res.CreatedAt, &res.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if res.Time, err = domain.ParseClockTime(at); err != nil {
		return nil, fmt.Errorf("time: %w", err)
	}

	return &res, nil
}
