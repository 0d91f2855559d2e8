package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/account-service/internal/api/dto"
	"github.com/spec-kit/account-service/internal/service"
	"github.com/spec-kit/account-service/internal/validation"
	apperrors "github.com/spec-kit/account-service/pkg/util/errorutil"
)

// AccountsHandler exposes the account lifecycle endpoints.
type AccountsHandler struct {
	accounts *service.AccountService
}

// NewAccountsHandler constructs handler.
func NewAccountsHandler(accounts *service.AccountService) *AccountsHandler {
	return &AccountsHandler{accounts: accounts}
}

// Create handles POST /api/users.
func (h *AccountsHandler) Create(c *fiber.Ctx) error {
	req, ok := validation.Payload[dto.CreateAccountRequest](c)
	if !ok {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	_, err := h.accounts.CreateAccount(c.UserContext(), service.CreateAccountInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		return accountError(err)
	}
	return respondMessage(c, service.MsgAccountCreated)
}

// Verify handles GET and POST /api/users/verify/:id/:verificationCode.
func (h *AccountsHandler) Verify(c *fiber.Ctx) error {
	params, ok := validation.Payload[dto.VerifyAccountParams](c)
	if !ok {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	outcome, err := h.accounts.VerifyAccount(c.UserContext(), params.ID, params.VerificationCode)
	if err != nil {
		return accountError(err)
	}
	return respondMessage(c, outcome.Message())
}

// ForgotPassword handles POST /api/users/forgotpassword.
func (h *AccountsHandler) ForgotPassword(c *fiber.Ctx) error {
	req, ok := validation.Payload[dto.ForgotPasswordRequest](c)
	if !ok {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	if err := h.accounts.RequestPasswordReset(c.UserContext(), req.Email); err != nil {
		return accountError(err)
	}
	return respondMessage(c, service.MsgPasswordResetGeneric)
}

func respondMessage(c *fiber.Ctx, msg string) error {
	return c.JSON(fiber.Map{"data": dto.MessageResponse{Message: msg}})
}

func accountError(err error) error {
	switch {
	case errors.Is(err, service.ErrAccountExists):
		return apperrors.NewConflict("ACCOUNT_EXISTS", "Account already exists")
	case errors.Is(err, service.ErrNotificationFailed):
		return apperrors.NewUpstreamError("NOTIFICATION_FAILED", "notification could not be delivered", err)
	default:
		return apperrors.NewInternalError(err)
	}
}
