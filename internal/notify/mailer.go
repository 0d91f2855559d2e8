// Package notify delivers outbound account emails. Delivery is synchronous:
// every Mailer reports failure to its caller.
package notify

import (
	"context"
	"errors"
)

// Message is a plain-text email.
type Message struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
}

// Mailer sends a single message.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// ErrInvalidMessage is returned for messages missing a sender or recipient.
var ErrInvalidMessage = errors.New("message requires from and to")

func (m Message) validate() error {
	if m.From == "" || m.To == "" {
		return ErrInvalidMessage
	}
	return nil
}
