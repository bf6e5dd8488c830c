package appointments

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/barbearia-labs/barber-ai-platform/internal/booking"
)

type db interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Repository provides persistence for appointments.
type Repository struct {
	db db
}

// NewRepository creates a repository backed by pgx pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	if pool == nil {
		panic("appointments: pgx pool required")
	}
	return &Repository{db: pool}
}

func newRepositoryWithDB(db db) *Repository {
	return &Repository{db: db}
}

// ListBlockingForDay returns the appointments that still occupy their slot
// for one employee on one date. Cancelled and no-show rows are excluded at
// the query level; they free the interval.
func (r *Repository) ListBlockingForDay(ctx context.Context, employeeID uuid.UUID, date time.Time) ([]booking.Appointment, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, barbershop_id, employee_id, service_id,
		       client_name, client_phone, client_profile_id,
		       date, to_char(start_time, 'HH24:MI'), to_char(end_time, 'HH24:MI'),
		       status, payment_status
		FROM appointments
		WHERE employee_id = $1 AND date = $2
		  AND status NOT IN ('cancelled', 'no_show')
		ORDER BY start_time
	`, employeeID, date.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("appointments: select for day: %w", err)
	}
	defer rows.Close()

	var out []booking.Appointment
	for rows.Next() {
		var a booking.Appointment
		var status, payment string
		if err := rows.Scan(&a.ID, &a.BarbershopID, &a.EmployeeID, &a.ServiceID,
			&a.ClientName, &a.ClientPhone, &a.ClientProfileID,
			&a.Date, &a.Start, &a.End, &status, &payment); err != nil {
			return nil, fmt.Errorf("appointments: scan row: %w", err)
		}
		a.Status = booking.AppointmentStatus(status)
		a.PaymentStatus = booking.PaymentStatus(payment)
		out = append(out, a)
	}
	return out, rows.Err()
}

// Insert writes a single appointment row.
func (r *Repository) Insert(ctx context.Context, a booking.Appointment) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO appointments (
			id, barbershop_id, employee_id, service_id,
			client_name, client_phone, client_profile_id,
			date, start_time, end_time, status, payment_status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, a.ID, a.BarbershopID, a.EmployeeID, a.ServiceID,
		a.ClientName, a.ClientPhone, a.ClientProfileID,
		a.Date.Format("2006-01-02"), a.Start, a.End,
		string(a.Status), string(a.PaymentStatus))
	if err != nil {
		return fmt.Errorf("appointments: insert: %w", err)
	}
	return nil
}
