package ports

import (
	"context"

	"github.com/AchilleasB/paws-rescue/rescue-api/internal/core/domain"
)

type UserRepository interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindBySubject(ctx context.Context, subject string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	List(ctx context.Context, filter domain.UserFilter) ([]domain.User, error)
}

type AnimalRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Animal, error)
	// FindByIDForUpdate locks the animal row until the surrounding
	// transaction ends. Outside a transaction it behaves like FindByID.
	FindByIDForUpdate(ctx context.Context, id string) (*domain.Animal, error)
	Create(ctx context.Context, animal *domain.Animal) error
	Update(ctx context.Context, animal *domain.Animal) error
	Search(ctx context.Context, filter domain.AnimalFilter) ([]domain.Animal, error)
	ListByFoster(ctx context.Context, userID string) ([]domain.Animal, error)
}

type AdoptionRepository interface {
	FindActiveForUpdate(ctx context.Context, animalID string) (*domain.AdoptionHistory, error)
	Create(ctx context.Context, history *domain.AdoptionHistory) error
	Update(ctx context.Context, history *domain.AdoptionHistory) error
	ListByAnimal(ctx context.Context, animalID string) ([]domain.AdoptionHistory, error)
}

type MediaRepository interface {
	FindImage(ctx context.Context, animalID, imageID string) (*domain.AnimalImage, error)
	ListImages(ctx context.Context, animalID string) ([]domain.AnimalImage, error)
	HasPrimaryImage(ctx context.Context, animalID string) (bool, error)
	// ClearPrimaryImages unsets is_primary on every image of the animal
	// except exceptID (which may be empty).
	ClearPrimaryImages(ctx context.Context, animalID, exceptID string) error
	CreateImage(ctx context.Context, image *domain.AnimalImage) error
	UpdateImage(ctx context.Context, image *domain.AnimalImage) error
	DeleteImage(ctx context.Context, animalID, imageID string) error

	FindDocument(ctx context.Context, animalID, documentID string) (*domain.AnimalDocument, error)
	ListDocuments(ctx context.Context, animalID string) ([]domain.AnimalDocument, error)
	CreateDocument(ctx context.Context, document *domain.AnimalDocument) error
	UpdateDocument(ctx context.Context, document *domain.AnimalDocument) error
	DeleteDocument(ctx context.Context, animalID, documentID string) error
}

type ApplicationRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Application, error)
	FindByIDForUpdate(ctx context.Context, id string) (*domain.Application, error)
	Create(ctx context.Context, app *domain.Application) error
	Update(ctx context.Context, app *domain.Application) error
	List(ctx context.Context, filter domain.ApplicationFilter) ([]domain.Application, error)
}

type FosterRepository interface {
	FindByUserID(ctx context.Context, userID string) (*domain.FosterProfile, error)
	Create(ctx context.Context, profile *domain.FosterProfile) error
	Update(ctx context.Context, profile *domain.FosterProfile) error
	List(ctx context.Context, activeOnly bool) ([]domain.FosterProfile, error)
}

type OutboxRepository interface {
	Enqueue(ctx context.Context, event domain.Event) error
}

// Repositories groups every repository bound to the same connection or
// transaction.
type Repositories interface {
	Users() UserRepository
	Animals() AnimalRepository
	Adoptions() AdoptionRepository
	Media() MediaRepository
	Applications() ApplicationRepository
	Fosters() FosterRepository
	Outbox() OutboxRepository
}

// Store is the relational store. WithinTx runs fn inside one transaction:
// fn's error (or a panic) rolls everything back, a nil return commits.
type Store interface {
	Repositories
	WithinTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
	Ping(ctx context.Context) error
}
