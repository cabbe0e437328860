package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AchilleasB/paws-rescue/rescue-api/internal/core/domain"
	"github.com/AchilleasB/paws-rescue/rescue-api/internal/core/services"
	"github.com/AchilleasB/paws-rescue/rescue-api/internal/mocks"
)

func animalInput(name string) services.AnimalInput {
	return services.AnimalInput{
		AnimalType: "Cat",
		Name:       name,
		Breed:      "Tabby",
		Gender:     "Male",
	}
}

func TestAnimalCreate_Defaults(t *testing.T) {
	store := mocks.NewStore()
	svc := services.NewAnimalService(store)

	a, err := svc.Create(context.Background(), nil, animalInput(" Milo "))
	require.NoError(t, err)
	assert.NotEmpty(t, a.ID)
	assert.Equal(t, "Milo", a.Name)
	assert.Equal(t, domain.StatusNotYetAvailable, a.AdoptionStatus)

	got, err := svc.Get(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)
}

func TestAnimalCreate_Validation(t *testing.T) {
	svc := services.NewAnimalService(mocks.NewStore())
	ctx := context.Background()

	cases := map[string]func(in *services.AnimalInput){
		"missing name":     func(in *services.AnimalInput) { in.Name = "" },
		"bad gender":       func(in *services.AnimalInput) { in.Gender = "Robot" },
		"negative weight":  func(in *services.AnimalInput) { w := -1.0; in.WeightLbs = &w },
		"future birthday":  func(in *services.AnimalInput) { d := time.Now().Add(48 * time.Hour); in.DateOfBirth = &d },
		"unknown status":   func(in *services.AnimalInput) { in.AdoptionStatus = "Lost" },
		"starting adopted": func(in *services.AnimalInput) { in.AdoptionStatus = "Adopted" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := animalInput("Milo")
			mutate(&in)
			_, err := svc.Create(ctx, nil, in)
			assert.True(t, errors.Is(err, domain.ErrValidation), "got %v", err)
		})
	}
}

func TestAnimalUpdate_AdoptedIsGuarded(t *testing.T) {
	store := mocks.NewStore()
	svc := services.NewAnimalService(store)
	ctx := context.Background()

	available := mocks.NewAnimal("Rex", domain.StatusAvailable)
	adopted := mocks.NewAnimal("Luna", domain.StatusAdopted)
	store.SeedAnimal(available)
	store.SeedAnimal(adopted)

	in := animalInput("Rex")
	in.AdoptionStatus = "Adopted"
	_, err := svc.Update(ctx, nil, available.ID, in)
	assert.True(t, errors.Is(err, domain.ErrConflict))

	in = animalInput("Luna")
	in.AdoptionStatus = "Available"
	_, err = svc.Update(ctx, nil, adopted.ID, in)
	assert.True(t, errors.Is(err, domain.ErrConflict))

	// unchanged status is fine, other fields update
	in = animalInput("Luna II")
	in.AdoptionStatus = "Adopted"
	got, err := svc.Update(ctx, nil, adopted.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "Luna II", got.Name)

	in = animalInput("Rex")
	in.AdoptionStatus = "Medical Hold"
	got, err = svc.Update(ctx, nil, available.ID, in)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusMedicalHold, got.AdoptionStatus)
}

func TestAnimalSearch(t *testing.T) {
	store := mocks.NewStore()
	svc := services.NewAnimalService(store)
	ctx := context.Background()

	for i, name := range []string{"Charlie", "Bella", "Cooper"} {
		a := mocks.NewAnimal(name, domain.StatusAvailable)
		a.CreatedAt = a.CreatedAt.Add(time.Duration(i) * time.Hour)
		store.SeedAnimal(a)
	}
	cat := mocks.NewAnimal("Whiskers", domain.StatusNotYetAvailable)
	cat.AnimalType = "Cat"
	store.SeedAnimal(cat)

	all, err := svc.Search(ctx, domain.AnimalFilter{SortBy: domain.SortByName})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "Bella", all[0].Name)

	dogs, err := svc.Search(ctx, domain.AnimalFilter{AnimalType: "dog"})
	require.NoError(t, err)
	assert.Len(t, dogs, 3)

	status := domain.StatusNotYetAvailable
	pending, err := svc.Search(ctx, domain.AnimalFilter{Status: &status})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "Whiskers", pending[0].Name)

	named, err := svc.Search(ctx, domain.AnimalFilter{Name: "oo"})
	require.NoError(t, err)
	require.Len(t, named, 1)
	assert.Equal(t, "Cooper", named[0].Name)

	paged, err := svc.Search(ctx, domain.AnimalFilter{SortBy: domain.SortByName, Limit: 2, Offset: 1})
	require.NoError(t, err)
	require.Len(t, paged, 2)
	assert.Equal(t, "Charlie", paged[0].Name)
}
