package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/danielolamide0/WurldMarket-sub001/internal/core/domain"
	"github.com/danielolamide0/WurldMarket-sub001/internal/repository"
)

func TestVerificationCodeRepository_Create(t *testing.T) {
	mock := newMockPool(t)
	repo := NewVerificationCodeRepository(mock)

	now := time.Date(2025, 10, 24, 12, 0, 0, 0, time.UTC)
	code := domain.VerificationCode{
		ID:        "code-1",
		Email:     "jane@example.com",
		Code:      "123456",
		Purpose:   domain.PurposeSignup,
		ExpiresAt: now.Add(15 * time.Minute),
		CreatedAt: now,
	}

	mock.ExpectExec(`INSERT INTO verification_codes`).
		WithArgs("code-1", "jane@example.com", "123456", "signup", code.ExpiresAt, false, now).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := repo.Create(context.Background(), code); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	assertExpectations(t, mock)
}

func TestVerificationCodeRepository_Latest(t *testing.T) {
	mock := newMockPool(t)
	repo := NewVerificationCodeRepository(mock)

	now := time.Date(2025, 10, 24, 12, 0, 0, 0, time.UTC)
	rows := pgxmock.NewRows(verificationCodeColumns).
		AddRow("code-2", "jane@example.com", "654321", "password-reset", now.Add(15*time.Minute), false, now)

	mock.ExpectQuery(`SELECT .* FROM verification_codes WHERE email = \$1 AND purpose = \$2 ORDER BY created_at DESC LIMIT 1`).
		WithArgs("jane@example.com", "password-reset").
		WillReturnRows(rows)

	code, err := repo.Latest(context.Background(), "jane@example.com", domain.PurposePasswordReset)
	if err != nil {
		t.Fatalf("Latest returned error: %v", err)
	}
	if code.ID != "code-2" || code.Purpose != domain.PurposePasswordReset {
		t.Fatalf("unexpected code: %+v", code)
	}

	mock.ExpectQuery(`SELECT .* FROM verification_codes`).
		WithArgs("nobody@example.com", "signup").
		WillReturnError(pgx.ErrNoRows)

	if _, err := repo.Latest(context.Background(), "nobody@example.com", domain.PurposeSignup); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	assertExpectations(t, mock)
}

func TestVerificationCodeRepository_RedeemIsConditional(t *testing.T) {
	mock := newMockPool(t)
	repo := NewVerificationCodeRepository(mock)

	now := time.Date(2025, 10, 24, 12, 0, 0, 0, time.UTC)

	mock.ExpectExec(`UPDATE verification_codes SET used = \$1 WHERE email = \$2 AND code = \$3 AND purpose = \$4 AND used = \$5 AND expires_at > \$6`).
		WithArgs(true, "jane@example.com", "123456", "signup", false, now).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`UPDATE verification_codes SET used = \$1`).
		WithArgs(true, "jane@example.com", "123456", "signup", false, now).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	ok, err := repo.Redeem(context.Background(), "jane@example.com", "123456", domain.PurposeSignup, now)
	if err != nil || !ok {
		t.Fatalf("expected first redeem to succeed, got ok=%v err=%v", ok, err)
	}

	ok, err = repo.Redeem(context.Background(), "jane@example.com", "123456", domain.PurposeSignup, now)
	if err != nil || ok {
		t.Fatalf("expected second redeem to fail, got ok=%v err=%v", ok, err)
	}

	assertExpectations(t, mock)
}

func TestVerificationCodeRepository_Consume(t *testing.T) {
	mock := newMockPool(t)
	repo := NewVerificationCodeRepository(mock)

	now := time.Date(2025, 10, 24, 12, 0, 0, 0, time.UTC)

	mock.ExpectExec(`UPDATE verification_codes SET used = \$1 WHERE id = \$2 AND used = \$3 AND expires_at > \$4`).
		WithArgs(true, "code-1", false, now).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	ok, err := repo.Consume(context.Background(), "code-1", now)
	if err != nil || !ok {
		t.Fatalf("expected consume to succeed, got ok=%v err=%v", ok, err)
	}

	assertExpectations(t, mock)
}

func TestVerificationCodeRepository_InvalidateUnused(t *testing.T) {
	mock := newMockPool(t)
	repo := NewVerificationCodeRepository(mock)

	mock.ExpectExec(`UPDATE verification_codes SET used = \$1 WHERE email = \$2 AND purpose = \$3 AND used = \$4`).
		WithArgs(true, "jane@example.com", "email-change", false).
		WillReturnResult(pgxmock.NewResult("UPDATE", 2))

	n, err := repo.InvalidateUnused(context.Background(), "jane@example.com", domain.PurposeEmailChange)
	if err != nil {
		t.Fatalf("InvalidateUnused returned error: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 invalidated rows, got %d", n)
	}

	assertExpectations(t, mock)
}

func TestVerificationCodeRepository_DeleteExpiredBefore(t *testing.T) {
	mock := newMockPool(t)
	repo := NewVerificationCodeRepository(mock)

	cutoff := time.Date(2025, 10, 24, 11, 0, 0, 0, time.UTC)

	mock.ExpectExec(`DELETE FROM verification_codes WHERE expires_at < \$1`).
		WithArgs(cutoff).
		WillReturnResult(pgxmock.NewResult("DELETE", 7))

	n, err := repo.DeleteExpiredBefore(context.Background(), cutoff)
	if err != nil {
		t.Fatalf("DeleteExpiredBefore returned error: %v", err)
	}
	if n != 7 {
		t.Fatalf("expected 7 deleted rows, got %d", n)
	}

	assertExpectations(t, mock)
}
