package clients

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Profile is a returning client known to a barbershop. Recognition is by
// phone; the stored name lets the bot greet and skip re-asking it.
type Profile struct {
	ID           uuid.UUID
	BarbershopID uuid.UUID
	Name         string
	Phone        string
	CreatedAt    time.Time
}

type db interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Repository struct {
	db db
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	if pool == nil {
		panic("clients: pgx pool required")
	}
	return &Repository{db: pool}
}

func newRepositoryWithDB(db db) *Repository {
	return &Repository{db: db}
}

// FindByPhone looks a client up by the trailing 10 digits of the phone, so a
// number saved with country code still matches one typed without it. Returns
// (nil, nil) when the shop has no client with that phone.
func (r *Repository) FindByPhone(ctx context.Context, shopID uuid.UUID, phone string) (*Profile, error) {
	key := MatchKey(phone)
	if key == "" {
		return nil, nil
	}

	var p Profile
	err := r.db.QueryRow(ctx, `
		SELECT id, barbershop_id, name, phone, created_at
		FROM client_profiles
		WHERE barbershop_id = $1
		  AND RIGHT(regexp_replace(phone, '\D', '', 'g'), 10) = $2
		ORDER BY created_at DESC
		LIMIT 1
	`, shopID, key).Scan(&p.ID, &p.BarbershopID, &p.Name, &p.Phone, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("clients: select profile by phone: %w", err)
	}
	return &p, nil
}
