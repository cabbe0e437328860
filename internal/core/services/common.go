package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/AchilleasB/paws-rescue/rescue-api/internal/core/domain"
)

// Clock returns the current time. Services default to UTC wall time.
type Clock func() time.Time

func utcNow() time.Time { return time.Now().UTC() }

func newID() string { return uuid.NewString() }

func actorID(actor *domain.User) *string {
	if actor == nil {
		return nil
	}
	id := actor.ID
	return &id
}

func actorName(actor *domain.User) string {
	if actor == nil {
		return "system"
	}
	if name := actor.FullName(); name != "" {
		return name
	}
	return actor.Email
}

// appendNote adds a timestamped line to an existing free-text notes field.
func appendNote(existing string, at time.Time, label, text string) string {
	text = strings.TrimSpace(text)
	line := fmt.Sprintf("[%s] %s", at.UTC().Format("2006-01-02 15:04 UTC"), label)
	if text != "" {
		line += ": " + text
	}
	if strings.TrimSpace(existing) == "" {
		return line
	}
	return strings.TrimRight(existing, "\n") + "\n" + line
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}

func strPtr(s string) *string { return &s }
