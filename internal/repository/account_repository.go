package repository

import (
	"context"
	"errors"

	"github.com/spec-kit/account-service/internal/domain"
)

var (
	// ErrAccountNotFound is returned when no account matches the lookup key.
	ErrAccountNotFound = errors.New("account not found")
	// ErrDuplicateEmail is returned by Create when the email is already taken.
	ErrDuplicateEmail = errors.New("account email already exists")
)

// AccountRepository defines persistence access for accounts.
//
// Save only persists the mutable fields: verified, passwordResetCode
// and the update timestamp.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	FindByID(ctx context.Context, id string) (*domain.Account, error)
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	Save(ctx context.Context, account *domain.Account) error
}
