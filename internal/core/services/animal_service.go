package services

import (
	"context"
	"errors"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/AchilleasB/paws-rescue/rescue-api/internal/core/domain"
	"github.com/AchilleasB/paws-rescue/rescue-api/internal/core/ports"
)

type AnimalService struct {
	store ports.Store
	now   Clock
}

func NewAnimalService(store ports.Store) *AnimalService {
	return &AnimalService{store: store, now: utcNow}
}

type AnimalInput struct {
	AnimalType     string
	Name           string
	Breed          string
	DateOfBirth    *time.Time
	Gender         string
	WeightLbs      *float64
	Story          string
	AdoptionStatus string
}

func (in *AnimalInput) normalize() {
	in.AnimalType = strings.TrimSpace(in.AnimalType)
	in.Name = strings.TrimSpace(in.Name)
	in.Breed = strings.TrimSpace(in.Breed)
	in.Gender = strings.TrimSpace(in.Gender)
	in.Story = strings.TrimSpace(in.Story)
}

func (in AnimalInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.AnimalType, validation.Required, validation.Length(1, 50)),
		validation.Field(&in.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&in.Breed, validation.Length(0, 100)),
		validation.Field(&in.Gender, validation.Required, validation.In("Male", "Female", "Unknown")),
		validation.Field(&in.WeightLbs, validation.Min(0.0), validation.Max(500.0)),
		validation.Field(&in.Story, validation.Length(0, 10000)),
		validation.Field(&in.DateOfBirth, validation.By(func(v interface{}) error {
			dob, _ := v.(*time.Time)
			if dob != nil && dob.After(time.Now()) {
				return errors.New("must not be in the future")
			}
			return nil
		})),
	)
}

func (s *AnimalService) Create(ctx context.Context, actor *domain.User, in AnimalInput) (*domain.Animal, error) {
	in.normalize()
	if err := in.Validate(); err != nil {
		return nil, domain.Validationf("%s", err.Error())
	}

	status := domain.StatusNotYetAvailable
	if strings.TrimSpace(in.AdoptionStatus) != "" {
		parsed, err := domain.ParseAdoptionStatus(in.AdoptionStatus)
		if err != nil {
			return nil, err
		}
		if parsed == domain.StatusAdopted {
			return nil, domain.Validationf("a new animal cannot start as %q", domain.StatusAdopted)
		}
		status = parsed
	}

	now := s.now()
	animal := &domain.Animal{
		ID:             newID(),
		AnimalType:     in.AnimalType,
		Name:           in.Name,
		Breed:          in.Breed,
		DateOfBirth:    in.DateOfBirth,
		Gender:         in.Gender,
		WeightLbs:      in.WeightLbs,
		Story:          in.Story,
		AdoptionStatus: status,
		CreatedBy:      actorID(actor),
		UpdatedBy:      actorID(actor),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.store.Animals().Create(ctx, animal); err != nil {
		return nil, err
	}
	return animal, nil
}

func (s *AnimalService) Get(ctx context.Context, id string) (*domain.Animal, error) {
	return s.store.Animals().FindByID(ctx, id)
}

func (s *AnimalService) Search(ctx context.Context, filter domain.AnimalFilter) ([]domain.Animal, error) {
	filter.Normalize()
	return s.store.Animals().Search(ctx, filter)
}

func (s *AnimalService) ListByFoster(ctx context.Context, userID string) ([]domain.Animal, error) {
	return s.store.Animals().ListByFoster(ctx, userID)
}

// Update replaces the descriptive fields of an animal. A status change must
// be allowed by the transition table.
func (s *AnimalService) Update(ctx context.Context, actor *domain.User, id string, in AnimalInput) (*domain.Animal, error) {
	in.normalize()
	if err := in.Validate(); err != nil {
		return nil, domain.Validationf("%s", err.Error())
	}

	var next *domain.AdoptionStatus
	if strings.TrimSpace(in.AdoptionStatus) != "" {
		parsed, err := domain.ParseAdoptionStatus(in.AdoptionStatus)
		if err != nil {
			return nil, err
		}
		next = &parsed
	}

	var animal *domain.Animal
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos ports.Repositories) error {
		a, err := repos.Animals().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if next != nil {
			if !a.AdoptionStatus.CanSetManually(*next) {
				return domain.Conflictf("status cannot change from %q to %q directly; use the adoption or return operation",
					a.AdoptionStatus, *next)
			}
			a.AdoptionStatus = *next
		}

		a.AnimalType = in.AnimalType
		a.Name = in.Name
		a.Breed = in.Breed
		a.DateOfBirth = in.DateOfBirth
		a.Gender = in.Gender
		a.WeightLbs = in.WeightLbs
		a.Story = in.Story
		a.UpdatedAt = s.now()
		a.UpdatedBy = actorID(actor)
		animal = a
		return repos.Animals().Update(ctx, a)
	})
	if err != nil {
		return nil, err
	}
	return animal, nil
}
