package domain

import (
	"encoding/json"
	"time"
)

type EventType string

const (
	EventAdoptionFinalized    EventType = "adoption.finalized"
	EventAdoptionReturned     EventType = "adoption.returned"
	EventApplicationSubmitted EventType = "application.submitted"
	EventApplicationReviewed  EventType = "application.reviewed"
	EventFosterApproved       EventType = "foster.approved"
)

// Event is a domain event written to the outbox in the same transaction as
// the change it describes.
type Event struct {
	ID        string          `json:"id"`
	Type      EventType       `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

type AdoptionEvent struct {
	AnimalID     string         `json:"animal_id"`
	AnimalName   string         `json:"animal_name"`
	AdoptionID   string         `json:"adoption_id"`
	AdopterName  string         `json:"adopter_name"`
	AdopterEmail string         `json:"adopter_email"`
	Status       AdoptionStatus `json:"status"`
	OccurredAt   time.Time      `json:"occurred_at"`
}

type ApplicationEvent struct {
	ApplicationID  string            `json:"application_id"`
	Kind           ApplicationKind   `json:"kind"`
	Status         ApplicationStatus `json:"status"`
	ApplicantName  string            `json:"applicant_name"`
	ApplicantEmail string            `json:"applicant_email"`
	OccurredAt     time.Time         `json:"occurred_at"`
}

type FosterApprovedEvent struct {
	UserID        string    `json:"user_id"`
	ProfileID     string    `json:"profile_id"`
	ApplicationID string    `json:"application_id"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// NewEvent marshals payload into an Event of type t.
func NewEvent(id string, t EventType, payload any, at time.Time) (Event, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	return Event{ID: id, Type: t, Payload: body, CreatedAt: at}, nil
}
