package clients

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

var shopID = uuid.MustParse("aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa")

func TestFindByPhoneMatchesSuffix(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	repo := newRepositoryWithDB(mock)
	id := uuid.New()
	created := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT id, barbershop_id, name, phone, created_at").
		WithArgs(shopID, "1198888777").
		WillReturnRows(pgxmock.NewRows([]string{"id", "barbershop_id", "name", "phone", "created_at"}).
			AddRow(id, shopID, "Carlos", "11988887777", created))

	p, err := repo.FindByPhone(context.Background(), shopID, "+55 (11) 98888-7777")
	if err != nil {
		t.Fatalf("FindByPhone: %v", err)
	}
	if p == nil || p.Name != "Carlos" {
		t.Fatalf("unexpected profile: %+v", p)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestFindByPhoneUnknownReturnsNil(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	repo := newRepositoryWithDB(mock)

	mock.ExpectQuery("SELECT id, barbershop_id, name, phone, created_at").
		WithArgs(shopID, "1133334444").
		WillReturnRows(pgxmock.NewRows([]string{"id", "barbershop_id", "name", "phone", "created_at"}))

	p, err := repo.FindByPhone(context.Background(), shopID, "11 3333-4444")
	if err != nil {
		t.Fatalf("FindByPhone: %v", err)
	}
	if p != nil {
		t.Fatalf("expected nil profile, got %+v", p)
	}
}

func TestFindByPhoneEmptyInputSkipsQuery(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	repo := newRepositoryWithDB(mock)
	p, err := repo.FindByPhone(context.Background(), shopID, "sem número")
	if err != nil {
		t.Fatalf("FindByPhone: %v", err)
	}
	if p != nil {
		t.Fatalf("expected nil profile, got %+v", p)
	}
}
