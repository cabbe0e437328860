package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"github.com/AchilleasB/paws-rescue/rescue-api/internal/config"
	"github.com/AchilleasB/paws-rescue/rescue-api/internal/core/domain"
	"github.com/AchilleasB/paws-rescue/rescue-api/internal/core/ports"
)

const smtpTimeout = 15 * time.Second

// SMTPMailer implements ports.Mailer. A fresh client is dialled per send
// since go-mail clients hold a single connection.
type SMTPMailer struct {
	cfg    config.SMTPConfig
	opts   []mail.Option
	cb     *gobreaker.CircuitBreaker
	logger *zap.Logger
}

var _ ports.Mailer = (*SMTPMailer)(nil)

func NewSMTPMailer(cfg config.SMTPConfig, logger *zap.Logger) (*SMTPMailer, error) {
	if cfg.Host == "" {
		return nil, errors.New("smtp host is empty")
	}
	if cfg.From == "" {
		return nil, errors.New("smtp from address is empty")
	}

	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTimeout(smtpTimeout),
	}
	if cfg.RequireTLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password))
	}

	return &SMTPMailer{
		cfg:    cfg,
		opts:   opts,
		cb:     config.NewCircuitBreaker("SMTP", logger),
		logger: logger,
	}, nil
}

// buildMessage turns an Email into a plain-text message.
func (m *SMTPMailer) buildMessage(email ports.Email) (*mail.Msg, error) {
	if len(email.To) == 0 {
		return nil, domain.Validationf("email has no recipients")
	}
	msg := mail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return nil, fmt.Errorf("from address: %w", err)
	}
	if err := msg.To(email.To...); err != nil {
		return nil, domain.Validationf("invalid recipient: %v", err)
	}
	msg.Subject(email.Subject)
	msg.SetDate()
	msg.SetMessageID()
	msg.SetBodyString(mail.TypeTextPlain, email.TextBody)
	return msg, nil
}

func (m *SMTPMailer) Send(ctx context.Context, email ports.Email) error {
	msg, err := m.buildMessage(email)
	if err != nil {
		return err
	}

	_, err = m.cb.Execute(func() (interface{}, error) {
		client, err := mail.NewClient(m.cfg.Host, m.opts...)
		if err != nil {
			return nil, err
		}
		return nil, client.DialAndSendWithContext(ctx, msg)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return domain.Unavailable("mail server is unavailable", err)
		}
		return fmt.Errorf("smtp send: %w", err)
	}
	m.logger.Debug("email sent", zap.Strings("to", email.To), zap.String("subject", email.Subject))
	return nil
}
