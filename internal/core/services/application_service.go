package services

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/AchilleasB/paws-rescue/rescue-api/internal/core/domain"
	"github.com/AchilleasB/paws-rescue/rescue-api/internal/core/ports"
)

type ApplicationService struct {
	store ports.Store
	now   Clock
}

func NewApplicationService(store ports.Store) *ApplicationService {
	return &ApplicationService{store: store, now: utcNow}
}

type SubmitInput struct {
	Applicant domain.ApplicantContact `json:"applicant"`
	Form      json.RawMessage         `json:"form"`
}

type validatable interface {
	Validate() error
}

// decodeForm strictly decodes raw into the form type of kind and validates it.
// It returns the form re-encoded, so unknown fields never reach the store.
func decodeForm(kind domain.ApplicationKind, raw json.RawMessage) (validatable, json.RawMessage, error) {
	var form validatable
	switch kind {
	case domain.KindFoster:
		form = &domain.FosterForm{}
	case domain.KindVolunteer:
		form = &domain.VolunteerForm{}
	case domain.KindAdoption:
		form = &domain.AdoptionForm{}
	case domain.KindPartnership:
		form = &domain.PartnershipForm{}
	default:
		return nil, nil, domain.Validationf("unknown application kind %q", kind)
	}

	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, nil, domain.Validationf("form is required")
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(form); err != nil {
		return nil, nil, domain.Validationf("form: %s", err.Error())
	}
	if err := form.Validate(); err != nil {
		return nil, nil, domain.Validationf("form: %s", err.Error())
	}
	clean, err := json.Marshal(form)
	if err != nil {
		return nil, nil, err
	}
	return form, clean, nil
}

// Submit records a public application in "Pending Review" and queues the
// application.submitted event.
func (s *ApplicationService) Submit(ctx context.Context, kindParam string, in SubmitInput) (*domain.Application, error) {
	kind, err := domain.ParseApplicationKind(kindParam)
	if err != nil {
		return nil, err
	}
	c := in.Applicant
	c.FirstName = strings.TrimSpace(c.FirstName)
	c.LastName = strings.TrimSpace(c.LastName)
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	c.Phone = strings.TrimSpace(c.Phone)
	if err := c.Validate(); err != nil {
		return nil, domain.Validationf("applicant: %s", err.Error())
	}
	form, clean, err := decodeForm(kind, in.Form)
	if err != nil {
		return nil, err
	}

	var app *domain.Application
	err = s.store.WithinTx(ctx, func(ctx context.Context, repos ports.Repositories) error {
		now := s.now()
		app = &domain.Application{
			ID:                 newID(),
			Kind:               kind,
			Status:             domain.AppPendingReview,
			ApplicantFirstName: c.FirstName,
			ApplicantLastName:  c.LastName,
			ApplicantEmail:     c.Email,
			ApplicantPhone:     c.Phone,
			Form:               clean,
			SubmittedAt:        now,
			UpdatedAt:          now,
		}
		if af, ok := form.(*domain.AdoptionForm); ok {
			if _, err := repos.Animals().FindByID(ctx, af.AnimalID); err != nil {
				if isNotFound(err) {
					return domain.Validationf("form: animal_id: animal does not exist")
				}
				return err
			}
			app.AnimalID = strPtr(af.AnimalID)
		}
		if err := repos.Applications().Create(ctx, app); err != nil {
			return err
		}
		return enqueueApplicationEvent(ctx, repos, domain.EventApplicationSubmitted, app, now)
	})
	if err != nil {
		return nil, err
	}
	return app, nil
}

func enqueueApplicationEvent(ctx context.Context, repos ports.Repositories, t domain.EventType, app *domain.Application, now time.Time) error {
	evt, err := domain.NewEvent(newID(), t, domain.ApplicationEvent{
		ApplicationID:  app.ID,
		Kind:           app.Kind,
		Status:         app.Status,
		ApplicantName:  strings.TrimSpace(app.ApplicantFirstName + " " + app.ApplicantLastName),
		ApplicantEmail: app.ApplicantEmail,
		OccurredAt:     now,
	}, now)
	if err != nil {
		return err
	}
	return repos.Outbox().Enqueue(ctx, evt)
}

func (s *ApplicationService) Get(ctx context.Context, id string) (*domain.Application, error) {
	return s.store.Applications().FindByID(ctx, id)
}

func (s *ApplicationService) List(ctx context.Context, filter domain.ApplicationFilter) ([]domain.Application, error) {
	if filter.Limit <= 0 || filter.Limit > domain.MaxPageSize {
		filter.Limit = domain.DefaultPageSize
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.store.Applications().List(ctx, filter)
}

type ReviewInput struct {
	Status string
	Notes  string
}

type ReviewResult struct {
	Application   *domain.Application   `json:"application"`
	FosterProfile *domain.FosterProfile `json:"foster_profile,omitempty"`
}

// Review records a reviewer decision. Once an application is decided, only
// notes may be added. Approving a foster application also provisions the
// foster user and profile inside the same transaction.
func (s *ApplicationService) Review(ctx context.Context, actor *domain.User, id string, in ReviewInput) (*ReviewResult, error) {
	next, err := domain.ParseApplicationStatus(in.Status)
	if err != nil {
		return nil, err
	}

	res := &ReviewResult{}
	err = s.store.WithinTx(ctx, func(ctx context.Context, repos ports.Repositories) error {
		now := s.now()
		app, err := repos.Applications().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !app.Status.IsOpen() && next != app.Status {
			return domain.Conflictf("application is already %q", app.Status)
		}
		if next == domain.AppPendingReview && app.Status != domain.AppPendingReview {
			return domain.Conflictf("application cannot go back to %q", domain.AppPendingReview)
		}

		becameApproved := next == domain.AppApproved && app.Status != domain.AppApproved
		label := "Review by " + actorName(actor) + " (" + string(next) + ")"
		app.InternalNotes = appendNote(app.InternalNotes, now, label, in.Notes)
		app.Status = next
		app.ReviewedBy = actorID(actor)
		app.ReviewedAt = &now
		app.UpdatedAt = now
		if err := repos.Applications().Update(ctx, app); err != nil {
			return err
		}
		res.Application = app

		if err := enqueueApplicationEvent(ctx, repos, domain.EventApplicationReviewed, app, now); err != nil {
			return err
		}
		if becameApproved && app.Kind == domain.KindFoster {
			profile, err := s.provisionFoster(ctx, repos, app, now)
			if err != nil {
				return err
			}
			res.FosterProfile = profile
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *ApplicationService) provisionFoster(ctx context.Context, repos ports.Repositories, app *domain.Application, now time.Time) (*domain.FosterProfile, error) {
	user, err := repos.Users().FindByEmail(ctx, app.ApplicantEmail)
	if err != nil && !isNotFound(err) {
		return nil, err
	}
	if user == nil {
		user = &domain.User{
			ID:        newID(),
			FirstName: app.ApplicantFirstName,
			LastName:  app.ApplicantLastName,
			Email:     app.ApplicantEmail,
			Role:      domain.RoleFoster,
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := repos.Users().Create(ctx, user); err != nil {
			return nil, err
		}
	} else if user.Role == domain.RoleGuest {
		user.Role = domain.RoleFoster
		user.UpdatedAt = now
		if err := repos.Users().Update(ctx, user); err != nil {
			return nil, err
		}
	}

	profile, err := repos.Fosters().FindByUserID(ctx, user.ID)
	if err != nil && !isNotFound(err) {
		return nil, err
	}
	if profile == nil {
		var form domain.FosterForm
		if err := json.Unmarshal(app.Form, &form); err != nil {
			return nil, err
		}
		profile = &domain.FosterProfile{
			ID:                newID(),
			UserID:            user.ID,
			ApplicationID:     strPtr(app.ID),
			IsActive:          true,
			Capacity:          form.MaxAnimals,
			AvailabilityNotes: form.AvailabilityNotes,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		if profile.Capacity <= 0 {
			profile.Capacity = 1
		}
		if err := repos.Fosters().Create(ctx, profile); err != nil {
			return nil, err
		}
	} else if !profile.IsActive {
		profile.IsActive = true
		profile.UpdatedAt = now
		if err := repos.Fosters().Update(ctx, profile); err != nil {
			return nil, err
		}
	}

	evt, err := domain.NewEvent(newID(), domain.EventFosterApproved, domain.FosterApprovedEvent{
		UserID:        user.ID,
		ProfileID:     profile.ID,
		ApplicationID: app.ID,
		Email:         user.Email,
		Name:          user.FullName(),
		OccurredAt:    now,
	}, now)
	if err != nil {
		return nil, err
	}
	if err := repos.Outbox().Enqueue(ctx, evt); err != nil {
		return nil, err
	}
	return profile, nil
}
