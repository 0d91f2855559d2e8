package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/account-service/internal/domain"
)

const pgUniqueViolation = "23505"

type postgresAccountRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresAccountRepository returns a Postgres-backed implementation.
func NewPostgresAccountRepository(pool *pgxpool.Pool) AccountRepository {
	return &postgresAccountRepository{pool: pool}
}

func (r *postgresAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	const query = `
        INSERT INTO accounts (email, first_name, last_name, password_hash, verified, verification_code, password_reset_code)
        VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''))
        RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		account.Email,
		account.FirstName,
		account.LastName,
		account.PasswordHash,
		account.Verified,
		account.VerificationCode,
		account.PasswordResetCode,
	).Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

func (r *postgresAccountRepository) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrAccountNotFound
	}
	const query = `
        SELECT id, email, first_name, last_name, password_hash, verified, verification_code,
               COALESCE(password_reset_code, ''), created_at, updated_at
        FROM accounts WHERE id=$1`
	return r.scanOne(ctx, query, id)
}

func (r *postgresAccountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	const query = `
        SELECT id, email, first_name, last_name, password_hash, verified, verification_code,
               COALESCE(password_reset_code, ''), created_at, updated_at
        FROM accounts WHERE email=$1`
	return r.scanOne(ctx, query, email)
}

func (r *postgresAccountRepository) scanOne(ctx context.Context, query string, arg any) (*domain.Account, error) {
	var account domain.Account
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&account.ID,
		&account.Email,
		&account.FirstName,
		&account.LastName,
		&account.PasswordHash,
		&account.Verified,
		&account.VerificationCode,
		&account.PasswordResetCode,
		&account.CreatedAt,
		&account.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("select account: %w", err)
	}
	return &account, nil
}

func (r *postgresAccountRepository) Save(ctx context.Context, account *domain.Account) error {
	const query = `
        UPDATE accounts SET verified = verified OR $1, password_reset_code = NULLIF($2, ''), updated_at = NOW()
        WHERE id=$3
        RETURNING updated_at`

	if _, err := uuid.Parse(account.ID); err != nil {
		return ErrAccountNotFound
	}
	if err := r.pool.QueryRow(ctx, query,
		account.Verified,
		account.PasswordResetCode,
		account.ID,
	).Scan(&account.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("update account: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
