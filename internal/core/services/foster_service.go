package services

import (
	"context"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/AchilleasB/paws-rescue/rescue-api/internal/core/domain"
	"github.com/AchilleasB/paws-rescue/rescue-api/internal/core/ports"
)

type FosterService struct {
	store ports.Store
	now   Clock
}

func NewFosterService(store ports.Store) *FosterService {
	return &FosterService{store: store, now: utcNow}
}

func (s *FosterService) List(ctx context.Context, activeOnly bool) ([]domain.FosterProfile, error) {
	return s.store.Fosters().List(ctx, activeOnly)
}

func (s *FosterService) Get(ctx context.Context, userID string) (*domain.FosterProfile, error) {
	return s.store.Fosters().FindByUserID(ctx, userID)
}

type FosterUpdate struct {
	IsActive          *bool
	Capacity          *int
	AvailabilityNotes *string
	HomeVisitDate     *time.Time
	HomeVisitNotes    *string
}

func (s *FosterService) Update(ctx context.Context, userID string, in FosterUpdate) (*domain.FosterProfile, error) {
	var profile *domain.FosterProfile
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos ports.Repositories) error {
		p, err := repos.Fosters().FindByUserID(ctx, userID)
		if err != nil {
			return err
		}
		if in.IsActive != nil {
			p.IsActive = *in.IsActive
		}
		if in.Capacity != nil {
			p.Capacity = *in.Capacity
		}
		if in.AvailabilityNotes != nil {
			p.AvailabilityNotes = strings.TrimSpace(*in.AvailabilityNotes)
		}
		if in.HomeVisitDate != nil {
			d := in.HomeVisitDate.UTC()
			p.HomeVisitDate = &d
		}
		if in.HomeVisitNotes != nil {
			p.HomeVisitNotes = strings.TrimSpace(*in.HomeVisitNotes)
		}
		if err := validation.ValidateStruct(p,
			validation.Field(&p.Capacity, validation.Min(0), validation.Max(50)),
			validation.Field(&p.AvailabilityNotes, validation.Length(0, 2000)),
			validation.Field(&p.HomeVisitNotes, validation.Length(0, 4000)),
		); err != nil {
			return domain.Validationf("%s", err.Error())
		}
		p.UpdatedAt = s.now()
		profile = p
		return repos.Fosters().Update(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// Animals lists the animals currently placed with the foster.
func (s *FosterService) Animals(ctx context.Context, userID string) ([]domain.Animal, error) {
	if _, err := s.store.Users().FindByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.store.Animals().ListByFoster(ctx, userID)
}
