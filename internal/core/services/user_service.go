package services

import (
	"context"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/AchilleasB/paws-rescue/rescue-api/internal/core/domain"
	"github.com/AchilleasB/paws-rescue/rescue-api/internal/core/ports"
)

type UserService struct {
	store ports.Store
	now   Clock
}

func NewUserService(store ports.Store) *UserService {
	return &UserService{store: store, now: utcNow}
}

type SyncInput struct {
	Subject   string
	Email     string
	FirstName string
	LastName  string
}

func (in SyncInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Subject, validation.Required, validation.Length(1, 255)),
		validation.Field(&in.Email, validation.Required, is.Email, validation.Length(3, 254)),
		validation.Field(&in.FirstName, validation.Length(0, 100)),
		validation.Field(&in.LastName, validation.Length(0, 100)),
	)
}

// Sync finds or creates the local user for an externally authenticated
// subject. It is safe to call on every login: a repeat call with identical
// input only refreshes last_login_at.
func (s *UserService) Sync(ctx context.Context, in SyncInput) (*domain.User, bool, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	if err := in.Validate(); err != nil {
		return nil, false, domain.Validationf("%s", err.Error())
	}

	var (
		user    *domain.User
		created bool
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos ports.Repositories) error {
		now := s.now()
		existing, err := repos.Users().FindBySubject(ctx, in.Subject)
		if err != nil && !isNotFound(err) {
			return err
		}

		if existing == nil {
			byEmail, err := repos.Users().FindByEmail(ctx, in.Email)
			if err != nil && !isNotFound(err) {
				return err
			}
			if byEmail != nil {
				if byEmail.Subject != nil && *byEmail.Subject != in.Subject {
					return domain.Conflictf("email %s is linked to another account", in.Email)
				}
				// Pre-provisioned row (for example by a foster approval): link it.
				byEmail.Subject = strPtr(in.Subject)
				byEmail.UpdatedAt = now
				existing = byEmail
			}
		}

		if existing == nil {
			user = &domain.User{
				ID:          newID(),
				Subject:     strPtr(in.Subject),
				FirstName:   in.FirstName,
				LastName:    in.LastName,
				Email:       in.Email,
				Role:        domain.RoleGuest,
				IsActive:    true,
				CreatedAt:   now,
				UpdatedAt:   now,
				LastLoginAt: &now,
			}
			created = true
			return repos.Users().Create(ctx, user)
		}

		if !existing.IsActive {
			return domain.Forbiddenf("account is inactive")
		}

		changed := false
		if in.FirstName != "" && in.FirstName != existing.FirstName {
			existing.FirstName = in.FirstName
			changed = true
		}
		if in.LastName != "" && in.LastName != existing.LastName {
			existing.LastName = in.LastName
			changed = true
		}
		if in.Email != existing.Email {
			other, err := repos.Users().FindByEmail(ctx, in.Email)
			if err != nil && !isNotFound(err) {
				return err
			}
			if other != nil && other.ID != existing.ID {
				return domain.Conflictf("email %s is already in use", in.Email)
			}
			existing.Email = in.Email
			changed = true
		}
		if changed {
			existing.UpdatedAt = now
		}
		existing.LastLoginAt = &now
		user = existing
		return repos.Users().Update(ctx, existing)
	})
	if err != nil {
		return nil, false, err
	}
	return user, created, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.store.Users().FindByID(ctx, id)
}

type ProfileInput struct {
	FirstName string
	LastName  string
}

func (s *UserService) UpdateProfile(ctx context.Context, userID string, in ProfileInput) (*domain.User, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	if err := validation.ValidateStruct(&in,
		validation.Field(&in.FirstName, validation.Required, validation.Length(1, 100)),
		validation.Field(&in.LastName, validation.Required, validation.Length(1, 100)),
	); err != nil {
		return nil, domain.Validationf("%s", err.Error())
	}

	user, err := s.store.Users().FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.FirstName = in.FirstName
	user.LastName = in.LastName
	user.UpdatedAt = s.now()
	if err := s.store.Users().Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) List(ctx context.Context, filter domain.UserFilter) ([]domain.User, error) {
	if filter.Limit <= 0 || filter.Limit > domain.MaxPageSize {
		filter.Limit = domain.DefaultPageSize
	}
	return s.store.Users().List(ctx, filter)
}

type AccessInput struct {
	Role     *string
	IsActive *bool
}

// UpdateAccess changes a user's role or active flag. An admin cannot
// deactivate or demote themselves.
func (s *UserService) UpdateAccess(ctx context.Context, actor *domain.User, userID string, in AccessInput) (*domain.User, error) {
	var role *domain.Role
	if in.Role != nil {
		r, err := domain.ParseRole(*in.Role)
		if err != nil {
			return nil, err
		}
		role = &r
	}
	if actor != nil && actor.ID == userID {
		if (role != nil && *role != actor.Role) || (in.IsActive != nil && !*in.IsActive) {
			return nil, domain.Conflictf("you cannot change your own role or deactivate yourself")
		}
	}

	var user *domain.User
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos ports.Repositories) error {
		u, err := repos.Users().FindByID(ctx, userID)
		if err != nil {
			return err
		}
		if role != nil {
			u.Role = *role
		}
		if in.IsActive != nil {
			u.IsActive = *in.IsActive
		}
		u.UpdatedAt = s.now()
		user = u
		return repos.Users().Update(ctx, u)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}
