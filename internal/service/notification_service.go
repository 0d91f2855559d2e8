package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/account-service/internal/config"
	"github.com/spec-kit/account-service/internal/events"
	"github.com/spec-kit/account-service/internal/notify"
)

const (
	verificationSubject  = "Please verify your account"
	passwordResetSubject = "Reset your password"
)

// NotificationService turns account events into outbound emails.
type NotificationService struct {
	dispatcher events.Dispatcher
	mailer     notify.Mailer
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, mailer notify.Mailer, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		mailer:     mailer,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventAccountRegistered, n.handleAccountRegistered)
	n.dispatcher.Subscribe(events.EventPasswordResetRequested, n.handlePasswordResetRequested)
}

func (n *NotificationService) handleAccountRegistered(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.AccountRegisteredPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T", event.Payload)
	}
	return n.send(ctx, event, notify.Message{
		From:    n.cfg.EmailFrom,
		To:      payload.Email,
		Subject: verificationSubject,
		Text:    fmt.Sprintf("verification code %s. Id: %s", payload.VerificationCode, event.AccountID),
	})
}

func (n *NotificationService) handlePasswordResetRequested(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.PasswordResetRequestedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T", event.Payload)
	}
	return n.send(ctx, event, notify.Message{
		From:    n.cfg.EmailFrom,
		To:      payload.Email,
		Subject: passwordResetSubject,
		Text:    fmt.Sprintf("Password reset code: %s. Id: %s", payload.PasswordResetCode, event.AccountID),
	})
}

func (n *NotificationService) send(ctx context.Context, event events.Event, msg notify.Message) error {
	if err := n.mailer.Send(ctx, msg); err != nil {
		return err
	}
	n.logger.Debug("email sent",
		zap.String("event_type", string(event.Type)),
		zap.String("account_id", event.AccountID))
	return nil
}
