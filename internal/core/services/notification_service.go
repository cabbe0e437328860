package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/AchilleasB/paws-rescue/rescue-api/internal/core/domain"
	"github.com/AchilleasB/paws-rescue/rescue-api/internal/core/ports"
	"github.com/AchilleasB/paws-rescue/rescue-api/internal/metrics"
)

// NotificationService turns domain events into e-mails for staff and
// applicants.
type NotificationService struct {
	mailer     ports.Mailer
	staffEmail string
	logger     *zap.Logger
}

func NewNotificationService(mailer ports.Mailer, staffEmail string, logger *zap.Logger) *NotificationService {
	return &NotificationService{mailer: mailer, staffEmail: strings.TrimSpace(staffEmail), logger: logger}
}

// Handle sends every e-mail the event calls for. Unknown event types are
// ignored. A malformed payload is returned as an error the consumer should
// not retry.
func (s *NotificationService) Handle(ctx context.Context, evt domain.Event) error {
	emails, err := s.emailsFor(evt)
	if err != nil {
		return err
	}
	for _, e := range emails {
		if err := s.mailer.Send(ctx, e); err != nil {
			metrics.NotificationsSent.WithLabelValues(string(evt.Type), "error").Inc()
			return fmt.Errorf("send %s notification: %w", evt.Type, err)
		}
		metrics.NotificationsSent.WithLabelValues(string(evt.Type), "sent").Inc()
	}
	if len(emails) > 0 {
		s.logger.Info("notifications sent",
			zap.String("event_id", evt.ID),
			zap.String("event_type", string(evt.Type)),
			zap.Int("count", len(emails)))
	}
	return nil
}

func (s *NotificationService) staff(subject, body string) []ports.Email {
	if s.staffEmail == "" {
		return nil
	}
	return []ports.Email{{To: []string{s.staffEmail}, Subject: subject, TextBody: body}}
}

func (s *NotificationService) emailsFor(evt domain.Event) ([]ports.Email, error) {
	switch evt.Type {
	case domain.EventAdoptionFinalized, domain.EventAdoptionReturned:
		var p domain.AdoptionEvent
		if err := json.Unmarshal(evt.Payload, &p); err != nil {
			return nil, domain.Validationf("decode %s payload: %v", evt.Type, err)
		}
		if evt.Type == domain.EventAdoptionReturned {
			return s.staff(
				fmt.Sprintf("%s was returned", p.AnimalName),
				fmt.Sprintf("%s (%s) was returned by %s on %s. New status: %s.",
					p.AnimalName, p.AnimalID, p.AdopterName, p.OccurredAt.Format("2006-01-02"), p.Status),
			), nil
		}
		out := s.staff(
			fmt.Sprintf("%s has been adopted", p.AnimalName),
			fmt.Sprintf("%s (%s) was adopted by %s <%s> on %s.",
				p.AnimalName, p.AnimalID, p.AdopterName, p.AdopterEmail, p.OccurredAt.Format("2006-01-02")),
		)
		if p.AdopterEmail != "" {
			out = append(out, ports.Email{
				To:      []string{p.AdopterEmail},
				Subject: fmt.Sprintf("Welcome home, %s!", p.AnimalName),
				TextBody: fmt.Sprintf("Dear %s,\n\nThank you for adopting %s. We are always here if you need help settling in.\n",
					p.AdopterName, p.AnimalName),
			})
		}
		return out, nil

	case domain.EventApplicationSubmitted, domain.EventApplicationReviewed:
		var p domain.ApplicationEvent
		if err := json.Unmarshal(evt.Payload, &p); err != nil {
			return nil, domain.Validationf("decode %s payload: %v", evt.Type, err)
		}
		if evt.Type == domain.EventApplicationSubmitted {
			out := s.staff(
				fmt.Sprintf("New %s application", p.Kind),
				fmt.Sprintf("%s <%s> submitted a %s application (%s).", p.ApplicantName, p.ApplicantEmail, p.Kind, p.ApplicationID),
			)
			return append(out, ports.Email{
				To:      []string{p.ApplicantEmail},
				Subject: fmt.Sprintf("We received your %s application", p.Kind),
				TextBody: fmt.Sprintf("Dear %s,\n\nThank you for your %s application. Our team will review it and get back to you.\n",
					p.ApplicantName, p.Kind),
			}), nil
		}
		if p.Status == domain.AppOnHold {
			return nil, nil
		}
		return []ports.Email{{
			To:      []string{p.ApplicantEmail},
			Subject: fmt.Sprintf("Your %s application: %s", p.Kind, p.Status),
			TextBody: fmt.Sprintf("Dear %s,\n\nThe status of your %s application is now: %s.\n",
				p.ApplicantName, p.Kind, p.Status),
		}}, nil

	case domain.EventFosterApproved:
		var p domain.FosterApprovedEvent
		if err := json.Unmarshal(evt.Payload, &p); err != nil {
			return nil, domain.Validationf("decode %s payload: %v", evt.Type, err)
		}
		return s.staff(
			"New foster approved",
			fmt.Sprintf("%s <%s> is now a foster (profile %s).", p.Name, p.Email, p.ProfileID),
		), nil
	}
	return nil, nil
}
