package notify

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/smtp"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/knadh/smtppool"
	"go.uber.org/zap"
)

// emailSender is the part of *smtppool.Pool used for delivery.
type emailSender interface {
	Send(e smtppool.Email) error
	Close()
}

// SMTPMailer spreads messages round-robin over pooled SMTP connections.
type SMTPMailer struct {
	pools   []emailSender
	hosts   []string
	counter atomic.Uint64
	logger  *zap.Logger
}

// NewSMTPMailer opens a connection pool per server. Servers that fail to
// initialise are logged and skipped; at least one must succeed.
func NewSMTPMailer(list SMTPServerList, logger *zap.Logger) (*SMTPMailer, error) {
	m := &SMTPMailer{logger: logger}
	for _, server := range list.Servers {
		pool, err := connectToPool(server)
		if err != nil {
			logger.Error("error setting up smtp connection pool",
				zap.String("server", server.Address()), zap.Error(err))
			continue
		}
		m.pools = append(m.pools, pool)
		m.hosts = append(m.hosts, server.Address())
	}
	if len(m.pools) == 0 {
		return nil, errors.New("no smtp server connection in the pool")
	}
	return m, nil
}

func connectToPool(server SMTPServer) (*smtppool.Pool, error) {
	var auth smtp.Auth
	if server.AuthData.Username != "" || server.AuthData.Password != "" {
		auth = smtp.PlainAuth("", server.AuthData.Username, server.AuthData.Password, server.Host)
	}

	port, err := strconv.Atoi(server.Port)
	if err != nil {
		return nil, fmt.Errorf("invalid smtp port %q: %w", server.Port, err)
	}

	timeout := time.Duration(server.SendTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	conns := server.Connections
	if conns <= 0 {
		conns = 1
	}

	return smtppool.New(smtppool.Opt{
		Host:            server.Host,
		Port:            port,
		MaxConns:        conns,
		IdleTimeout:     timeout,
		PoolWaitTimeout: timeout,
		TLSConfig: &tls.Config{
			InsecureSkipVerify: server.InsecureSkipVerify, //nolint:gosec
			ServerName:         server.Host,
		},
		Auth: auth,
	})
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := msg.validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	index := int(m.counter.Add(1) % uint64(len(m.pools)))
	err := m.pools[index].Send(smtppool.Email{
		From:    msg.From,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Text:    []byte(msg.Text),
	})
	if err != nil {
		m.logger.Error("error when trying to send email",
			zap.String("server", m.hosts[index]), zap.Error(err))
		return fmt.Errorf("smtp send via %s: %w", m.hosts[index], err)
	}
	return nil
}

// Close releases every pool.
func (m *SMTPMailer) Close() {
	for _, pool := range m.pools {
		pool.Close()
	}
}
