package catalog

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

// db is the subset of pgxpool.Pool the repository needs; pgxmock satisfies it
// in tests.
type db interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Repository reads the barbershop catalog: services, employees, schedules and
// breaks. All reads are scoped to a barbershop and treated as an immutable
// snapshot for the duration of one conversational turn.
type Repository struct {
	db db
}

// NewRepository initializes a repo backed by pgxpool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	if pool == nil {
		panic("catalog: pgx pool required")
	}
	return &Repository{db: pool}
}

func newRepositoryWithDB(db db) *Repository {
	return &Repository{db: db}
}

// Services returns the shop's active services.
func (r *Repository) Services(ctx context.Context, shopID uuid.UUID) ([]booking.Service, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, price_cents, duration_minutes
		FROM services
		WHERE barbershop_id = $1 AND active
		ORDER BY name
	`, shopID)
	if err != nil {
		return nil, fmt.Errorf("catalog: select services: %w", err)
	}
	defer rows.Close()

	var out []booking.Service
	for rows.Next() {
		var s booking.Service
		if err := rows.Scan(&s.ID, &s.Name, &s.PriceCents, &s.DurationMinutes); err != nil {
			return nil, fmt.Errorf("catalog: scan service: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Employees returns the shop's active employees in creation order. The slot
// fallback ("any barber") walks this exact order, so it must be stable.
func (r *Repository) Employees(ctx context.Context, shopID uuid.UUID) ([]booking.Employee, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name
		FROM employees
		WHERE barbershop_id = $1 AND active
		ORDER BY created_at, id
	`, shopID)
	if err != nil {
		return nil, fmt.Errorf("catalog: select employees: %w", err)
	}
	defer rows.Close()

	var out []booking.Employee
	for rows.Next() {
		var e booking.Employee
		if err := rows.Scan(&e.ID, &e.Name); err != nil {
			return nil, fmt.Errorf("catalog: scan employee: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// SchedulesForDay returns all active schedule rows for the shop on a weekday.
func (r *Repository) SchedulesForDay(ctx context.Context, shopID uuid.UUID, weekday time.Weekday) ([]booking.Schedule, error) {
	rows, err := r.db.Query(ctx, `
		SELECT employee_id, day_of_week,
		       to_char(start_time, 'HH24:MI'), to_char(end_time, 'HH24:MI'),
		       active
		FROM schedules
		WHERE barbershop_id = $1 AND day_of_week = $2 AND active
		ORDER BY employee_id, start_time
	`, shopID, int(weekday))
	if err != nil {
		return nil, fmt.Errorf("catalog: select schedules: %w", err)
	}
	defer rows.Close()

	var out []booking.Schedule
	for rows.Next() {
		var s booking.Schedule
		var dow int
		if err := rows.Scan(&s.EmployeeID, &dow, &s.Start, &s.End, &s.Active); err != nil {
			return nil, fmt.Errorf("catalog: scan schedule: %w", err)
		}
		s.Weekday = time.Weekday(dow)
		out = append(out, s)
	}
	return out, rows.Err()
}

// BreaksForDay returns active breaks in effect on the given date: recurring
// rows for its weekday plus one-off rows pinned to the date itself.
func (r *Repository) BreaksForDay(ctx context.Context, shopID uuid.UUID, date time.Time) ([]booking.Break, error) {
	rows, err := r.db.Query(ctx, `
		SELECT employee_id, kind, title,
		       to_char(start_time, 'HH24:MI'), to_char(end_time, 'HH24:MI'),
		       day_of_week, specific_date
		FROM breaks
		WHERE barbershop_id = $1 AND active
		  AND ((kind = 'recurring' AND day_of_week = $2)
		    OR (kind = 'date' AND specific_date = $3))
		ORDER BY employee_id, start_time
	`, shopID, int(date.Weekday()), date.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("catalog: select breaks: %w", err)
	}
	defer rows.Close()

	var out []booking.Break
	for rows.Next() {
		var b booking.Break
		var kind string
		var dow *int
		var specific *time.Time
		if err := rows.Scan(&b.EmployeeID, &kind, &b.Title, &b.Start, &b.End, &dow, &specific); err != nil {
			return nil, fmt.Errorf("catalog: scan break: %w", err)
		}
		b.Kind = booking.BreakKind(kind)
		b.Active = true
		if dow != nil {
			wd := time.Weekday(*dow)
			b.Weekday = &wd
		}
		b.Date = specific
		out = append(out, b)
	}
	return out, rows.Err()
}
