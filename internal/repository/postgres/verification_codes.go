package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/danielolamide0/WurldMarket-sub001/internal/core/domain"
	"github.com/danielolamide0/WurldMarket-sub001/internal/core/port"
	"github.com/danielolamide0/WurldMarket-sub001/internal/repository"
)

const verificationCodesTable = "verification_codes"

var verificationCodeColumns = []string{
	"id",
	"email",
	"code",
	"purpose",
	"expires_at",
	"used",
	"created_at",
}

// VerificationCodeRepository implements port.VerificationCodeRepository using PostgreSQL.
type VerificationCodeRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewVerificationCodeRepository wires a PostgreSQL-backed verification code repository.
func NewVerificationCodeRepository(exec pgExecutor) *VerificationCodeRepository {
	return &VerificationCodeRepository{
		exec:    exec,
		builder: newBuilder(),
	}
}

// Create inserts a verification code record.
func (r *VerificationCodeRepository) Create(ctx context.Context, code domain.VerificationCode) error {
	stmt, args, err := r.builder.Insert(verificationCodesTable).
		Columns(verificationCodeColumns...).
		Values(
			code.ID,
			code.Email,
			code.Code,
			string(code.Purpose),
			code.ExpiresAt,
			code.Used,
			code.CreatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert verification code sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert verification code: %w", err)
	}

	return nil
}

// Latest returns the most recently issued code for the pair regardless of state.
func (r *VerificationCodeRepository) Latest(ctx context.Context, email string, purpose domain.VerificationPurpose) (*domain.VerificationCode, error) {
	query := r.builder.Select(verificationCodeColumns...).
		From(verificationCodesTable).
		Where(squirrel.Eq{"email": email}).
		Where(squirrel.Eq{"purpose": string(purpose)}).
		OrderBy("created_at DESC").
		Limit(1)

	return r.getOne(ctx, query, "latest")
}

// FindValid returns the newest unused, unexpired record matching the code.
func (r *VerificationCodeRepository) FindValid(ctx context.Context, email, code string, purpose domain.VerificationPurpose, now time.Time) (*domain.VerificationCode, error) {
	query := r.builder.Select(verificationCodeColumns...).
		From(verificationCodesTable).
		Where(squirrel.Eq{"email": email}).
		Where(squirrel.Eq{"code": code}).
		Where(squirrel.Eq{"purpose": string(purpose)}).
		Where(squirrel.Eq{"used": false}).
		Where(squirrel.Gt{"expires_at": now}).
		OrderBy("created_at DESC").
		Limit(1)

	return r.getOne(ctx, query, "valid")
}

func (r *VerificationCodeRepository) getOne(ctx context.Context, query squirrel.SelectBuilder, label string) (*domain.VerificationCode, error) {
	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select %s verification code sql: %w", label, err)
	}

	var (
		record  domain.VerificationCode
		purpose string
	)
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(
		&record.ID,
		&record.Email,
		&record.Code,
		&purpose,
		&record.ExpiresAt,
		&record.Used,
		&record.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan %s verification code: %w", label, err)
	}

	record.Purpose = domain.VerificationPurpose(purpose)
	return &record, nil
}

// InvalidateUnused marks every unused code for the pair as used.
func (r *VerificationCodeRepository) InvalidateUnused(ctx context.Context, email string, purpose domain.VerificationPurpose) (int64, error) {
	stmt, args, err := r.builder.Update(verificationCodesTable).
		Set("used", true).
		Where(squirrel.Eq{"email": email}).
		Where(squirrel.Eq{"purpose": string(purpose)}).
		Where(squirrel.Eq{"used": false}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build invalidate verification codes sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return 0, fmt.Errorf("invalidate verification codes: %w", err)
	}

	return ct.RowsAffected(), nil
}

// Consume claims a previously looked-up record. It only succeeds while the record is still valid.
func (r *VerificationCodeRepository) Consume(ctx context.Context, id string, now time.Time) (bool, error) {
	stmt, args, err := r.builder.Update(verificationCodesTable).
		Set("used", true).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"used": false}).
		Where(squirrel.Gt{"expires_at": now}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build consume verification code sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return false, fmt.Errorf("consume verification code: %w", err)
	}

	return ct.RowsAffected() > 0, nil
}

// Redeem validates and consumes a code in one conditional update.
func (r *VerificationCodeRepository) Redeem(ctx context.Context, email, code string, purpose domain.VerificationPurpose, now time.Time) (bool, error) {
	stmt, args, err := r.builder.Update(verificationCodesTable).
		Set("used", true).
		Where(squirrel.Eq{"email": email}).
		Where(squirrel.Eq{"code": code}).
		Where(squirrel.Eq{"purpose": string(purpose)}).
		Where(squirrel.Eq{"used": false}).
		Where(squirrel.Gt{"expires_at": now}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build redeem verification code sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return false, fmt.Errorf("redeem verification code: %w", err)
	}

	return ct.RowsAffected() > 0, nil
}

// MarkUsed unconditionally invalidates a record.
func (r *VerificationCodeRepository) MarkUsed(ctx context.Context, id string) error {
	stmt, args, err := r.builder.Update(verificationCodesTable).
		Set("used", true).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build mark verification code used sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("mark verification code used: %w", err)
	}

	return nil
}

// Delete removes a single record.
func (r *VerificationCodeRepository) Delete(ctx context.Context, id string) error {
	_, err := r.deleteWhere(ctx, squirrel.Eq{"id": id}, "by id")
	return err
}

// DeleteByEmail removes every record addressed to email.
func (r *VerificationCodeRepository) DeleteByEmail(ctx context.Context, email string) (int64, error) {
	return r.deleteWhere(ctx, squirrel.Eq{"email": email}, "by email")
}

// DeleteExpiredBefore removes records that expired before cutoff.
func (r *VerificationCodeRepository) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return r.deleteWhere(ctx, squirrel.Lt{"expires_at": cutoff}, "expired")
}

func (r *VerificationCodeRepository) deleteWhere(ctx context.Context, where squirrel.Sqlizer, label string) (int64, error) {
	stmt, args, err := r.builder.Delete(verificationCodesTable).
		Where(where).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete verification codes %s sql: %w", label, err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return 0, fmt.Errorf("delete verification codes %s: %w", label, err)
	}

	return ct.RowsAffected(), nil
}

var _ port.VerificationCodeRepository = (*VerificationCodeRepository)(nil)
