package services

import (
	"context"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/AchilleasB/paws-rescue/rescue-api/internal/core/domain"
	"github.com/AchilleasB/paws-rescue/rescue-api/internal/core/ports"
	"github.com/AchilleasB/paws-rescue/rescue-api/internal/metrics"
)

// LifecycleService guards the adoption and foster transitions of an animal.
// Every operation locks the animal row for the length of its transaction, so
// concurrent operations on the same animal are serialized.
type LifecycleService struct {
	store ports.Store
	now   Clock
}

func NewLifecycleService(store ports.Store) *LifecycleService {
	return &LifecycleService{store: store, now: utcNow}
}

type AdopterInput struct {
	UserID  *string
	Name    string
	Email   string
	Phone   string
	Address string
}

type FinalizeAdoptionInput struct {
	Adopter      AdopterInput
	AdoptionDate *time.Time
	Notes        string
}

func (in FinalizeAdoptionInput) Validate() error {
	a := in.Adopter
	return validation.ValidateStruct(&a,
		validation.Field(&a.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&a.Email, validation.Required, is.Email, validation.Length(3, 254)),
		validation.Field(&a.Phone, validation.Length(0, 40)),
		validation.Field(&a.Address, validation.Length(0, 500)),
	)
}

func (s *LifecycleService) FinalizeAdoption(ctx context.Context, actor *domain.User, animalID string, in FinalizeAdoptionInput) (*domain.AdoptionHistory, error) {
	in.Adopter.Email = strings.ToLower(strings.TrimSpace(in.Adopter.Email))
	in.Adopter.Name = strings.TrimSpace(in.Adopter.Name)
	if err := in.Validate(); err != nil {
		return nil, domain.Validationf("%s", err.Error())
	}

	var history *domain.AdoptionHistory
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos ports.Repositories) error {
		now := s.now()

		animal, err := repos.Animals().FindByIDForUpdate(ctx, animalID)
		if err != nil {
			return err
		}
		if !animal.AdoptionStatus.CanFinalizeAdoption() {
			return domain.Validationf("animal cannot be adopted while its status is %q", animal.AdoptionStatus)
		}

		active, err := repos.Adoptions().FindActiveForUpdate(ctx, animalID)
		if err != nil && !isNotFound(err) {
			return err
		}
		if active != nil {
			return domain.Conflictf("animal already has an active adoption")
		}

		if in.Adopter.UserID != nil {
			if _, err := repos.Users().FindByID(ctx, *in.Adopter.UserID); err != nil {
				return err
			}
		}

		animal.AdoptionStatus = domain.StatusAdopted
		animal.UpdatedAt = now
		animal.UpdatedBy = actorID(actor)
		if err := repos.Animals().Update(ctx, animal); err != nil {
			return err
		}

		adoptionDate := now
		if in.AdoptionDate != nil {
			adoptionDate = in.AdoptionDate.UTC()
		}
		history = &domain.AdoptionHistory{
			ID:             newID(),
			AnimalID:       animalID,
			AdopterUserID:  in.Adopter.UserID,
			AdopterName:    in.Adopter.Name,
			AdopterEmail:   in.Adopter.Email,
			AdopterPhone:   strings.TrimSpace(in.Adopter.Phone),
			AdopterAddress: strings.TrimSpace(in.Adopter.Address),
			AdoptionDate:   adoptionDate,
			Notes:          strings.TrimSpace(in.Notes),
			CreatedBy:      actorID(actor),
			UpdatedBy:      actorID(actor),
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := repos.Adoptions().Create(ctx, history); err != nil {
			return err
		}

		evt, err := domain.NewEvent(newID(), domain.EventAdoptionFinalized, domain.AdoptionEvent{
			AnimalID:     animal.ID,
			AnimalName:   animal.Name,
			AdoptionID:   history.ID,
			AdopterName:  history.AdopterName,
			AdopterEmail: history.AdopterEmail,
			Status:       animal.AdoptionStatus,
			OccurredAt:   now,
		}, now)
		if err != nil {
			return err
		}
		return repos.Outbox().Enqueue(ctx, evt)
	})
	if err != nil {
		return nil, err
	}
	metrics.LifecycleTransitions.WithLabelValues("finalize_adoption").Inc()
	return history, nil
}

type ProcessReturnInput struct {
	AdoptionStatus string
	ReturnDate     *time.Time
	Notes          string
}

func (s *LifecycleService) ProcessReturn(ctx context.Context, actor *domain.User, animalID string, in ProcessReturnInput) (*domain.AdoptionHistory, error) {
	next, err := domain.ParseAdoptionStatus(in.AdoptionStatus)
	if err != nil {
		return nil, err
	}
	if !next.ValidPostReturn() {
		return nil, domain.Validationf("status %q is not allowed after a return", next)
	}

	var history *domain.AdoptionHistory
	err = s.store.WithinTx(ctx, func(ctx context.Context, repos ports.Repositories) error {
		now := s.now()

		animal, err := repos.Animals().FindByIDForUpdate(ctx, animalID)
		if err != nil {
			return err
		}

		active, err := repos.Adoptions().FindActiveForUpdate(ctx, animalID)
		if err != nil {
			if isNotFound(err) {
				return domain.NotFoundf("no active adoption found for this animal")
			}
			return err
		}
		if !animal.AdoptionStatus.CanProcessReturn() {
			return domain.Conflictf("animal status is %q, expected %q", animal.AdoptionStatus, domain.StatusAdopted)
		}

		returnDate := now
		if in.ReturnDate != nil {
			returnDate = in.ReturnDate.UTC()
		}
		if returnDate.Before(active.AdoptionDate) {
			return domain.Validationf("return date cannot be before the adoption date")
		}

		active.ReturnDate = &returnDate
		active.Notes = appendNote(active.Notes, now, "Returned", in.Notes)
		active.UpdatedAt = now
		active.UpdatedBy = actorID(actor)
		if err := repos.Adoptions().Update(ctx, active); err != nil {
			return err
		}

		animal.AdoptionStatus = next
		animal.UpdatedAt = now
		animal.UpdatedBy = actorID(actor)
		if err := repos.Animals().Update(ctx, animal); err != nil {
			return err
		}
		history = active

		evt, err := domain.NewEvent(newID(), domain.EventAdoptionReturned, domain.AdoptionEvent{
			AnimalID:     animal.ID,
			AnimalName:   animal.Name,
			AdoptionID:   active.ID,
			AdopterName:  active.AdopterName,
			AdopterEmail: active.AdopterEmail,
			Status:       next,
			OccurredAt:   now,
		}, now)
		if err != nil {
			return err
		}
		return repos.Outbox().Enqueue(ctx, evt)
	})
	if err != nil {
		return nil, err
	}
	metrics.LifecycleTransitions.WithLabelValues("process_return").Inc()
	return history, nil
}

// AssignFoster places an animal with a foster. The animal's prior status is
// not checked.
func (s *LifecycleService) AssignFoster(ctx context.Context, actor *domain.User, animalID, fosterUserID string) (*domain.Animal, error) {
	if strings.TrimSpace(fosterUserID) == "" {
		return nil, domain.Validationf("foster_user_id is required")
	}

	var animal *domain.Animal
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos ports.Repositories) error {
		a, err := repos.Animals().FindByIDForUpdate(ctx, animalID)
		if err != nil {
			return err
		}
		foster, err := repos.Users().FindByID(ctx, fosterUserID)
		if err != nil {
			if isNotFound(err) {
				return domain.NotFoundf("foster user not found")
			}
			return err
		}
		if !foster.IsActive {
			return domain.Validationf("foster user is inactive")
		}

		a.CurrentFosterUserID = strPtr(foster.ID)
		a.AdoptionStatus = domain.StatusAvailableInFoster
		a.UpdatedAt = s.now()
		a.UpdatedBy = actorID(actor)
		animal = a
		return repos.Animals().Update(ctx, a)
	})
	if err != nil {
		return nil, err
	}
	metrics.LifecycleTransitions.WithLabelValues("assign_foster").Inc()
	return animal, nil
}

// ClearFoster ends a foster placement and sets the caller-chosen status.
func (s *LifecycleService) ClearFoster(ctx context.Context, actor *domain.User, animalID, status string) (*domain.Animal, error) {
	next, err := domain.ParseAdoptionStatus(status)
	if err != nil {
		return nil, err
	}
	if next == domain.StatusAdopted {
		return nil, domain.Validationf("use the adoption endpoint to mark an animal as adopted")
	}

	var animal *domain.Animal
	err = s.store.WithinTx(ctx, func(ctx context.Context, repos ports.Repositories) error {
		a, err := repos.Animals().FindByIDForUpdate(ctx, animalID)
		if err != nil {
			return err
		}
		a.CurrentFosterUserID = nil
		a.AdoptionStatus = next
		a.UpdatedAt = s.now()
		a.UpdatedBy = actorID(actor)
		animal = a
		return repos.Animals().Update(ctx, a)
	})
	if err != nil {
		return nil, err
	}
	metrics.LifecycleTransitions.WithLabelValues("clear_foster").Inc()
	return animal, nil
}

func (s *LifecycleService) History(ctx context.Context, animalID string) ([]domain.AdoptionHistory, error) {
	if _, err := s.store.Animals().FindByID(ctx, animalID); err != nil {
		return nil, err
	}
	return s.store.Adoptions().ListByAnimal(ctx, animalID)
}
