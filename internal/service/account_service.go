package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/account-service/internal/auth"
	"github.com/spec-kit/account-service/internal/domain"
	"github.com/spec-kit/account-service/internal/events"
	"github.com/spec-kit/account-service/internal/repository"
)

// Caller-facing messages.
const (
	MsgAccountCreated         = "User successfully created"
	MsgAccountVerified        = "User successfully verified"
	MsgAccountAlreadyVerified = "User already verified"
	MsgCouldNotVerify         = "Could not verify user"
	MsgPasswordResetGeneric   = "If a user with that email is registered you will receive a password reset email"
)

var (
	// ErrAccountExists is returned when the email is already registered.
	ErrAccountExists = errors.New("account already exists")
	// ErrNotificationFailed is returned when the account was stored but its email could not be sent.
	ErrNotificationFailed = errors.New("notification could not be delivered")
)

// VerificationOutcome is the result of a verification attempt. Unknown ids and
// wrong codes share one outcome so callers cannot tell them apart.
type VerificationOutcome int

const (
	VerificationFailed VerificationOutcome = iota
	VerificationSucceeded
	VerificationAlreadyDone
)

// Message returns the caller-facing text for the outcome.
func (o VerificationOutcome) Message() string {
	switch o {
	case VerificationSucceeded:
		return MsgAccountVerified
	case VerificationAlreadyDone:
		return MsgAccountAlreadyVerified
	default:
		return MsgCouldNotVerify
	}
}

// CreateAccountInput is the validated registration payload.
type CreateAccountInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// AccountService coordinates the account lifecycle workflows.
type AccountService struct {
	accounts   repository.AccountRepository
	codes      auth.CodeGenerator
	dispatcher events.Dispatcher
	logger     *zap.Logger
	bcryptCost int
}

// AccountDependencies encapsulates collaborators for the account service.
type AccountDependencies struct {
	AccountRepo repository.AccountRepository
	Codes       auth.CodeGenerator
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
	BcryptCost  int
}

// NewAccountService builds the service.
func NewAccountService(deps AccountDependencies) *AccountService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	codes := deps.Codes
	if codes == nil {
		codes = auth.NewRandomCodes(auth.DefaultCodeBytes)
	}
	return &AccountService{
		accounts:   deps.AccountRepo,
		codes:      codes,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		bcryptCost: deps.BcryptCost,
	}
}

// CreateAccount stores a new unverified account and sends its verification email.
// The account is kept when the email fails; the caller gets ErrNotificationFailed.
func (s *AccountService) CreateAccount(ctx context.Context, in CreateAccountInput) (*domain.Account, error) {
	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	code, err := s.codes.NewCode()
	if err != nil {
		return nil, fmt.Errorf("generate verification code: %w", err)
	}

	account := &domain.Account{
		Email:            domain.NormalizeEmail(in.Email),
		FirstName:        in.FirstName,
		LastName:         in.LastName,
		PasswordHash:     hash,
		VerificationCode: code,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrAccountExists
		}
		return nil, fmt.Errorf("create account: %w", err)
	}

	err = s.publish(ctx, events.EventAccountRegistered, account.ID, events.AccountRegisteredPayload{
		Email:            account.Email,
		VerificationCode: account.VerificationCode,
	})
	if err != nil {
		s.logger.Error("verification email failed",
			zap.String("account_id", account.ID), zap.Error(err))
		return account, fmt.Errorf("%w: %v", ErrNotificationFailed, err)
	}

	s.logger.Debug("account created", zap.String("account_id", account.ID))
	return account, nil
}

// VerifyAccount checks the supplied code and marks the account verified on a match.
func (s *AccountService) VerifyAccount(ctx context.Context, id, verificationCode string) (VerificationOutcome, error) {
	account, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			s.logger.Debug("verification for unknown account", zap.String("account_id", id))
			return VerificationFailed, nil
		}
		return VerificationFailed, fmt.Errorf("find account: %w", err)
	}

	if account.Verified {
		return VerificationAlreadyDone, nil
	}

	if !auth.CodesEqual(account.VerificationCode, verificationCode) {
		s.logger.Debug("verification code mismatch", zap.String("account_id", id))
		return VerificationFailed, nil
	}

	account.MarkVerified()
	if err := s.accounts.Save(ctx, account); err != nil {
		return VerificationFailed, fmt.Errorf("save account: %w", err)
	}
	s.logger.Debug("account verified", zap.String("account_id", id))
	return VerificationSucceeded, nil
}

// RequestPasswordReset assigns a fresh reset code to a verified account and
// emails it. Unknown and unverified addresses are indistinguishable to the
// caller, and so is a failed reset email.
func (s *AccountService) RequestPasswordReset(ctx context.Context, email string) error {
	email = domain.NormalizeEmail(email)

	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			s.logger.Debug("password reset for unknown email", zap.String("email", email))
			return nil
		}
		return fmt.Errorf("find account: %w", err)
	}

	if !account.Verified {
		s.logger.Debug("password reset for unverified account", zap.String("account_id", account.ID))
		return nil
	}

	code, err := s.codes.NewCode()
	if err != nil {
		return fmt.Errorf("generate reset code: %w", err)
	}
	account.PasswordResetCode = code
	if err := s.accounts.Save(ctx, account); err != nil {
		return fmt.Errorf("save account: %w", err)
	}

	err = s.publish(ctx, events.EventPasswordResetRequested, account.ID, events.PasswordResetRequestedPayload{
		Email:             account.Email,
		PasswordResetCode: code,
	})
	if err != nil {
		s.logger.Error("password reset email failed",
			zap.String("account_id", account.ID), zap.Error(err))
		return nil
	}

	s.logger.Debug("password reset email sent", zap.String("email", email))
	return nil
}

func (s *AccountService) publish(ctx context.Context, eventType events.EventType, accountID string, payload interface{}) error {
	if s.dispatcher == nil {
		return nil
	}
	return s.dispatcher.Publish(ctx, events.Event{
		Type:      eventType,
		AccountID: accountID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	})
}
