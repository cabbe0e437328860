package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AchilleasB/paws-rescue/rescue-api/internal/core/domain"
	"github.com/AchilleasB/paws-rescue/rescue-api/internal/core/services"
	"github.com/AchilleasB/paws-rescue/rescue-api/internal/mocks"
)

var applicant = domain.ApplicantContact{
	FirstName: "Sam",
	LastName:  "Carter",
	Email:     "Sam@Example.org",
	Phone:     "555-0101",
}

const fosterForm = `{
	"home_type": "House",
	"owns_home": true,
	"has_yard": true,
	"household_adults": 2,
	"household_children": 1,
	"max_animals": 3,
	"availability_notes": "weekends",
	"agrees_to_home_visit": true
}`

func submitFoster(t *testing.T, svc *services.ApplicationService) *domain.Application {
	t.Helper()
	app, err := svc.Submit(context.Background(), "foster", services.SubmitInput{
		Applicant: applicant,
		Form:      json.RawMessage(fosterForm),
	})
	require.NoError(t, err)
	return app
}

func TestSubmit_PendingReviewAndEvent(t *testing.T) {
	store := mocks.NewStore()
	svc := services.NewApplicationService(store)

	app := submitFoster(t, svc)
	assert.Equal(t, domain.KindFoster, app.Kind)
	assert.Equal(t, domain.AppPendingReview, app.Status)
	assert.Equal(t, "sam@example.org", app.ApplicantEmail)

	var form domain.FosterForm
	require.NoError(t, json.Unmarshal(app.Form, &form))
	assert.Equal(t, 3, form.MaxAnimals)

	assert.Equal(t, []domain.EventType{domain.EventApplicationSubmitted}, store.EventTypes())
}

func TestSubmit_Validation(t *testing.T) {
	svc := services.NewApplicationService(mocks.NewStore())
	ctx := context.Background()

	cases := []struct {
		name string
		kind string
		in   services.SubmitInput
	}{
		{"unknown kind", "sponsor", services.SubmitInput{Applicant: applicant, Form: json.RawMessage(fosterForm)}},
		{"missing form", "foster", services.SubmitInput{Applicant: applicant}},
		{"unknown form field", "foster", services.SubmitInput{Applicant: applicant, Form: json.RawMessage(`{"home_type":"Flat","bogus":1}`)}},
		{"home visit declined", "foster", services.SubmitInput{Applicant: applicant, Form: json.RawMessage(
			`{"home_type":"Flat","household_adults":1,"max_animals":1,"agrees_to_home_visit":false}`)}},
		{"bad applicant email", "volunteer", services.SubmitInput{
			Applicant: domain.ApplicantContact{FirstName: "A", LastName: "B", Email: "nope"},
			Form:      json.RawMessage(`{"interests":["walking"],"availability":"mornings","emergency_contact_name":"C","emergency_contact_phone":"1"}`),
		}},
		{"adoption for missing animal", "adoption", services.SubmitInput{Applicant: applicant, Form: json.RawMessage(
			`{"animal_id":"0b0e2f6c-1111-4c3a-9a1e-2d3c4b5a6f70","home_type":"House","household_adults":2,"reason_for_adopting":"love"}`)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Submit(ctx, tc.kind, tc.in)
			assert.True(t, errors.Is(err, domain.ErrValidation), "got %v", err)
		})
	}
}

func TestSubmit_AdoptionLinksAnimal(t *testing.T) {
	store := mocks.NewStore()
	animal := mocks.NewAnimal("Pepper", domain.StatusAvailable)
	store.SeedAnimal(animal)

	app, err := services.NewApplicationService(store).Submit(context.Background(), "Adoption", services.SubmitInput{
		Applicant: applicant,
		Form: json.RawMessage(`{"animal_id":"` + animal.ID +
			`","home_type":"House","household_adults":2,"reason_for_adopting":"companionship"}`),
	})
	require.NoError(t, err)
	require.NotNil(t, app.AnimalID)
	assert.Equal(t, animal.ID, *app.AnimalID)
}

func TestReview_ApproveFosterProvisionsUserAndProfile(t *testing.T) {
	store := mocks.NewStore()
	svc := services.NewApplicationService(store)
	staff := mocks.NewUser(domain.RoleStaff, "staff@rescue.org")
	store.SeedUser(staff)
	ctx := context.Background()

	app := submitFoster(t, svc)
	res, err := svc.Review(ctx, &staff, app.ID, services.ReviewInput{Status: "Approved", Notes: "great home"})
	require.NoError(t, err)
	assert.Equal(t, domain.AppApproved, res.Application.Status)
	assert.Contains(t, res.Application.InternalNotes, "great home")
	require.NotNil(t, res.Application.ReviewedBy)
	assert.Equal(t, staff.ID, *res.Application.ReviewedBy)

	require.NotNil(t, res.FosterProfile)
	assert.Equal(t, 3, res.FosterProfile.Capacity)
	assert.True(t, res.FosterProfile.IsActive)

	user, err := store.Users().FindByEmail(ctx, "sam@example.org")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleFoster, user.Role)
	assert.Nil(t, user.Subject)
	assert.Equal(t, user.ID, res.FosterProfile.UserID)

	assert.Equal(t, []domain.EventType{
		domain.EventApplicationSubmitted,
		domain.EventApplicationReviewed,
		domain.EventFosterApproved,
	}, store.EventTypes())

	// re-approving only appends a note
	again, err := svc.Review(ctx, &staff, app.ID, services.ReviewInput{Status: "Approved", Notes: "visit done"})
	require.NoError(t, err)
	assert.Nil(t, again.FosterProfile)
	assert.Contains(t, again.Application.InternalNotes, "visit done")
}

func TestReview_PromotesExistingGuestButNeverDemotes(t *testing.T) {
	ctx := context.Background()
	for _, role := range []domain.Role{domain.RoleGuest, domain.RoleStaff} {
		t.Run(string(role), func(t *testing.T) {
			store := mocks.NewStore()
			svc := services.NewApplicationService(store)
			existing := mocks.NewUser(role, "sam@example.org")
			store.SeedUser(existing)

			app := submitFoster(t, svc)
			_, err := svc.Review(ctx, nil, app.ID, services.ReviewInput{Status: "Approved"})
			require.NoError(t, err)

			u, err := store.Users().FindByID(ctx, existing.ID)
			require.NoError(t, err)
			want := role
			if role == domain.RoleGuest {
				want = domain.RoleFoster
			}
			assert.Equal(t, want, u.Role)
		})
	}
}

func TestReview_DecidedApplicationsAreFinal(t *testing.T) {
	store := mocks.NewStore()
	svc := services.NewApplicationService(store)
	ctx := context.Background()

	app := submitFoster(t, svc)
	_, err := svc.Review(ctx, nil, app.ID, services.ReviewInput{Status: "On Hold"})
	require.NoError(t, err)
	_, err = svc.Review(ctx, nil, app.ID, services.ReviewInput{Status: "Rejected"})
	require.NoError(t, err)

	_, err = svc.Review(ctx, nil, app.ID, services.ReviewInput{Status: "Approved"})
	assert.True(t, errors.Is(err, domain.ErrConflict))

	_, err = svc.Review(ctx, nil, app.ID, services.ReviewInput{Status: "Pending Review"})
	assert.True(t, errors.Is(err, domain.ErrConflict))

	_, err = svc.Review(ctx, nil, app.ID, services.ReviewInput{Status: "Maybe"})
	assert.True(t, errors.Is(err, domain.ErrValidation))

	_, err = svc.Review(ctx, nil, "missing", services.ReviewInput{Status: "Approved"})
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	_, err = store.Fosters().FindByUserID(ctx, "whatever")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestListApplications_Filters(t *testing.T) {
	store := mocks.NewStore()
	svc := services.NewApplicationService(store)
	ctx := context.Background()

	submitFoster(t, svc)
	_, err := svc.Submit(ctx, "partnership", services.SubmitInput{
		Applicant: applicant,
		Form:      json.RawMessage(`{"organization_name":"Pet Co","partnership_type":"Sponsorship","website":"https://pet.example.com"}`),
	})
	require.NoError(t, err)

	kind := domain.KindPartnership
	apps, err := svc.List(ctx, domain.ApplicationFilter{Kind: &kind})
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, domain.KindPartnership, apps[0].Kind)

	all, err := svc.List(ctx, domain.ApplicationFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
