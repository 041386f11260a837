package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/danielolamide0/WurldMarket-sub001/internal/repository"
)

func TestVendorRepository_GetByContactEmailIsCaseInsensitive(t *testing.T) {
	mock := newMockPool(t)
	repo := NewVendorRepository(mock)

	createdAt := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	rows := pgxmock.NewRows(vendorColumns).AddRow(
		"vendor-1", "Fresh Farm", "fresh-farm", "Owner@FreshFarm.com", "farmpass", nil, createdAt,
	)

	mock.ExpectQuery(`SELECT .* FROM vendors WHERE lower\(contact_email\) = \$1 ORDER BY created_at ASC LIMIT 1`).
		WithArgs("owner@freshfarm.com").
		WillReturnRows(rows)

	vendor, err := repo.GetByContactEmail(context.Background(), "owner@freshfarm.com")
	if err != nil {
		t.Fatalf("GetByContactEmail returned error: %v", err)
	}
	if vendor.ID != "vendor-1" || vendor.Password != "farmpass" || vendor.OwnerID != nil {
		t.Fatalf("unexpected vendor: %+v", vendor)
	}

	assertExpectations(t, mock)
}

func TestVendorRepository_UpdateContactEmail(t *testing.T) {
	mock := newMockPool(t)
	repo := NewVendorRepository(mock)

	mock.ExpectExec(`UPDATE vendors SET contact_email = \$1 WHERE id = \$2`).
		WithArgs("new@freshfarm.com", "vendor-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`UPDATE vendors SET contact_email = \$1 WHERE id = \$2`).
		WithArgs("new@freshfarm.com", "missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	if err := repo.UpdateContactEmail(context.Background(), "vendor-1", "new@freshfarm.com"); err != nil {
		t.Fatalf("UpdateContactEmail returned error: %v", err)
	}
	if err := repo.UpdateContactEmail(context.Background(), "missing", "new@freshfarm.com"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	assertExpectations(t, mock)
}

func TestVendorRepository_GetByIDNotFound(t *testing.T) {
	mock := newMockPool(t)
	repo := NewVendorRepository(mock)

	mock.ExpectQuery(`SELECT .* FROM vendors WHERE id = \$1`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	if _, err := repo.GetByID(context.Background(), "missing"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	assertExpectations(t, mock)
}

func TestVendorRepository_SlugExists(t *testing.T) {
	mock := newMockPool(t)
	repo := NewVendorRepository(mock)

	mock.ExpectQuery(`SELECT EXISTS \( SELECT 1 FROM vendors WHERE slug = \$1 \)`).
		WithArgs("fresh-farm").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.SlugExists(context.Background(), "fresh-farm")
	if err != nil {
		t.Fatalf("SlugExists returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected slug to exist")
	}

	assertExpectations(t, mock)
}

func TestVendorRepository_UpdatePasswordAndOwner(t *testing.T) {
	mock := newMockPool(t)
	repo := NewVendorRepository(mock)

	mock.ExpectExec(`UPDATE vendors SET password = \$1 WHERE id = \$2`).
		WithArgs("$2a$10$hash", "vendor-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`UPDATE vendors SET owner_id = \$1 WHERE id = \$2`).
		WithArgs("acc-1", "vendor-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	if err := repo.UpdatePassword(context.Background(), "vendor-1", "$2a$10$hash"); err != nil {
		t.Fatalf("UpdatePassword returned error: %v", err)
	}
	if err := repo.SetOwner(context.Background(), "vendor-1", "acc-1"); err != nil {
		t.Fatalf("SetOwner returned error: %v", err)
	}

	assertExpectations(t, mock)
}
