package ports

import (
	"context"

	"github.com/AchilleasB/paws-rescue/rescue-api/internal/core/domain"
)

type EventPublisher interface {
	Publish(ctx context.Context, evt domain.Event) error
}

type Email struct {
	To       []string
	Subject  string
	TextBody string
}

type Mailer interface {
	Send(ctx context.Context, email Email) error
}
