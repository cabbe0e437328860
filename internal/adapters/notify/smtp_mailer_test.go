package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"github.com/AchilleasB/paws-rescue/rescue-api/internal/config"
	"github.com/AchilleasB/paws-rescue/rescue-api/internal/core/domain"
	"github.com/AchilleasB/paws-rescue/rescue-api/internal/core/ports"
)

func testConfig() config.SMTPConfig {
	return config.SMTPConfig{Host: "localhost", Port: 2525, From: "no-reply@pawsrescue.org"}
}

func TestNewSMTPMailer_Validation(t *testing.T) {
	_, err := NewSMTPMailer(config.SMTPConfig{From: "a@b.org"}, zap.NewNop())
	assert.Error(t, err)

	_, err = NewSMTPMailer(config.SMTPConfig{Host: "localhost"}, zap.NewNop())
	assert.Error(t, err)

	m, err := NewSMTPMailer(testConfig(), zap.NewNop())
	require.NoError(t, err)
	assert.Len(t, m.opts, 3)

	cfg := testConfig()
	cfg.Username = "relay"
	cfg.Password = "secret"
	m, err = NewSMTPMailer(cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Len(t, m.opts, 6)
}

func TestBuildMessage(t *testing.T) {
	m, err := NewSMTPMailer(testConfig(), zap.NewNop())
	require.NoError(t, err)

	msg, err := m.buildMessage(ports.Email{
		To:       []string{"sam@example.org"},
		Subject:  "Your foster application was received",
		TextBody: "Thanks for applying.",
	})
	require.NoError(t, err)

	rcpts, err := msg.GetRecipients()
	require.NoError(t, err)
	assert.Equal(t, []string{"sam@example.org"}, rcpts)
	assert.Equal(t, []string{"Your foster application was received"}, msg.GetGenHeader(mail.HeaderSubject))
}

func TestBuildMessage_Rejects(t *testing.T) {
	m, err := NewSMTPMailer(testConfig(), zap.NewNop())
	require.NoError(t, err)

	_, err = m.buildMessage(ports.Email{Subject: "x"})
	assert.True(t, errors.Is(err, domain.ErrValidation))

	_, err = m.buildMessage(ports.Email{To: []string{"not an address"}, Subject: "x"})
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestSend_InvalidEmailNeverDials(t *testing.T) {
	cfg := testConfig()
	cfg.Host = "smtp.invalid"
	m, err := NewSMTPMailer(cfg, zap.NewNop())
	require.NoError(t, err)

	err = m.Send(context.Background(), ports.Email{Subject: "x"})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}
