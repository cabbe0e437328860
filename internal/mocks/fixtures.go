package mocks

import (
	"time"

	"github.com/google/uuid"

	"github.com/AchilleasB/paws-rescue/rescue-api/internal/core/domain"
)

var fixtureTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// NewUser builds an active user with the given role.
func NewUser(role domain.Role, email string) domain.User {
	subject := "sub-" + email
	return domain.User{
		ID:        uuid.NewString(),
		Subject:   &subject,
		FirstName: "Test",
		LastName:  string(role),
		Email:     email,
		Role:      role,
		IsActive:  true,
		CreatedAt: fixtureTime,
		UpdatedAt: fixtureTime,
	}
}

// NewAnimal builds an animal in the given status.
func NewAnimal(name string, status domain.AdoptionStatus) domain.Animal {
	return domain.Animal{
		ID:             uuid.NewString(),
		AnimalType:     "Dog",
		Name:           name,
		Breed:          "Mixed",
		Gender:         "Female",
		AdoptionStatus: status,
		CreatedAt:      fixtureTime,
		UpdatedAt:      fixtureTime,
	}
}
