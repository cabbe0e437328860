package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/AchilleasB/paws-rescue/rescue-api/internal/adapters/handler"
	"github.com/AchilleasB/paws-rescue/rescue-api/internal/adapters/middleware"
	"github.com/AchilleasB/paws-rescue/rescue-api/internal/adapters/respond"
	"github.com/AchilleasB/paws-rescue/rescue-api/internal/core/domain"
	"github.com/AchilleasB/paws-rescue/rescue-api/internal/core/ports"
	"github.com/AchilleasB/paws-rescue/rescue-api/internal/core/services"
	"github.com/AchilleasB/paws-rescue/rescue-api/internal/mocks"
)

type testAPI struct {
	t      *testing.T
	router http.Handler
	store  *mocks.Store
	blobs  *mocks.BlobStore
	staff  domain.User
}

const (
	staffToken = "staff-token"
	adminToken = "admin-token"
	guestToken = "guest-token"
)

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	logger := zap.NewNop()
	store := mocks.NewStore()
	blobs := mocks.NewBlobStore()
	verifier := mocks.NewTokenVerifier()

	staff := mocks.NewUser(domain.RoleStaff, "staff@rescue.org")
	admin := mocks.NewUser(domain.RoleAdmin, "admin@rescue.org")
	guest := mocks.NewUser(domain.RoleGuest, "guest@rescue.org")
	for token, u := range map[string]domain.User{staffToken: staff, adminToken: admin, guestToken: guest} {
		store.SeedUser(u)
		verifier.Tokens[token] = &ports.TokenIdentity{Subject: *u.Subject, Email: u.Email}
	}
	verifier.Tokens["new-token"] = &ports.TokenIdentity{Subject: "brand-new", Email: "new@rescue.org", FirstName: "Nia", LastName: "Reed"}

	router := handler.NewRouter(handler.RouterDeps{
		Logger:         logger,
		Auth:           middleware.NewAuthMiddleware(verifier, store.Users(), logger),
		AllowedOrigins: []string{"*"},
		Health:         handler.NewHealthHandler(logger, handler.HealthCheck{Name: "database", Check: store.Ping}),
		Users:          handler.NewUserHandler(services.NewUserService(store), logger),
		Animals:        handler.NewAnimalHandler(services.NewAnimalService(store), logger),
		Lifecycle:      handler.NewLifecycleHandler(services.NewLifecycleService(store), logger),
		Media:          handler.NewMediaHandler(services.NewMediaService(store, blobs, services.MediaConfig{}, logger), logger),
		Applications:   handler.NewApplicationHandler(services.NewApplicationService(store), logger),
		Fosters:        handler.NewFosterHandler(services.NewFosterService(store), logger),
	})
	return &testAPI{t: t, router: router, store: store, blobs: blobs, staff: staff}
}

func (a *testAPI) do(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (a *testAPI) createAnimal(name, status string) domain.Animal {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/api/animals", staffToken, map[string]any{
		"animal_type":     "Dog",
		"name":            name,
		"breed":           "Collie",
		"gender":          "Male",
		"date_of_birth":   "2021-05-04",
		"adoption_status": status,
	})
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[domain.Animal](a.t, rec)
}

func (a *testAPI) setStatus(id, status string) {
	a.t.Helper()
	rec := a.do(http.MethodPut, "/api/animals/"+id, staffToken, map[string]any{
		"animal_type":     "Dog",
		"name":            "Rex",
		"breed":           "Collie",
		"gender":          "Male",
		"adoption_status": status,
	})
	require.Equal(a.t, http.StatusOK, rec.Code, rec.Body.String())
}

var adopter = map[string]any{
	"adopter_name":  "Jordan Lee",
	"adopter_email": "jordan@example.org",
	"adopter_phone": "555-0199",
}

func TestCreateAndGetAnimal(t *testing.T) {
	api := newTestAPI(t)
	created := api.createAnimal("Rex", "Not Yet Available")
	assert.Equal(t, domain.StatusNotYetAvailable, created.AdoptionStatus)
	require.NotNil(t, created.CreatedBy)
	assert.Equal(t, api.staff.ID, *created.CreatedBy)

	rec := api.do(http.MethodGet, "/api/animals/"+created.ID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[domain.Animal](t, rec)
	assert.Equal(t, "Rex", got.Name)
	assert.Equal(t, domain.StatusNotYetAvailable, got.AdoptionStatus)
}

func TestAdoptionLifecycle(t *testing.T) {
	api := newTestAPI(t)
	animal := api.createAnimal("Rex", "Not Yet Available")
	api.setStatus(animal.ID, "Available")

	rec := api.do(http.MethodPost, "/api/animals/"+animal.ID+"/adoption", staffToken, adopter)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var raw map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	assert.Contains(t, raw, "return_date")
	assert.Nil(t, raw["return_date"])
	assert.Equal(t, "jordan@example.org", raw["adopter_email"])

	got := decode[domain.Animal](t, api.do(http.MethodGet, "/api/animals/"+animal.ID, "", nil))
	assert.Equal(t, domain.StatusAdopted, got.AdoptionStatus)

	// a second finalize is rejected and changes nothing
	rec = api.do(http.MethodPost, "/api/animals/"+animal.ID+"/adoption", staffToken, adopter)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[respond.ErrorBody](t, rec)
	assert.Equal(t, "BadRequest", body.Error.Code)
	history := decode[[]domain.AdoptionHistory](t, api.do(http.MethodGet, "/api/animals/"+animal.ID+"/adoptions", staffToken, nil))
	assert.Len(t, history, 1)

	rec = api.do(http.MethodPost, "/api/animals/"+animal.ID+"/return", staffToken, map[string]any{
		"adoption_status": "Available",
		"notes":           "allergies",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	returned := decode[domain.AdoptionHistory](t, rec)
	assert.NotNil(t, returned.ReturnDate)

	got = decode[domain.Animal](t, api.do(http.MethodGet, "/api/animals/"+animal.ID, "", nil))
	assert.Equal(t, domain.StatusAvailable, got.AdoptionStatus)

	assert.Equal(t, []domain.EventType{domain.EventAdoptionFinalized, domain.EventAdoptionReturned}, api.store.EventTypes())
}

func TestFinalizeAdoption_Rejections(t *testing.T) {
	api := newTestAPI(t)
	animal := api.createAnimal("Rex", "Medical Hold")

	rec := api.do(http.MethodPost, "/api/animals/"+animal.ID+"/adoption", staffToken, adopter)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(http.MethodPost, "/api/animals/"+animal.ID+"/return", staffToken, map[string]any{"adoption_status": "Available"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(http.MethodPost, "/api/animals/"+animal.ID+"/adoption", guestToken, adopter)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.do(http.MethodPost, "/api/animals/"+animal.ID+"/adoption", "", adopter)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = api.do(http.MethodPost, "/api/animals/1b9d6bcd-bbfd-4b2d-9b5d-ab8dfbbd4bed/adoption", staffToken, adopter)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	assert.Empty(t, api.store.Events())
}

func TestImages_FirstIsPrimary(t *testing.T) {
	api := newTestAPI(t)
	animal := api.createAnimal("Rex", "Available")
	base := "/api/animals/" + animal.ID + "/images"

	var images []domain.AnimalImage
	for _, file := range []string{"front.jpg", "side.jpg"} {
		rec := api.do(http.MethodPost, base+"/upload-url", staffToken, map[string]string{"file_name": file})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		ticket := decode[domain.UploadTicket](t, rec)
		assert.Contains(t, ticket.UploadURL, "sp=cw")

		rec = api.do(http.MethodPost, base, staffToken, map[string]string{"blob_name": ticket.BlobName})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		images = append(images, decode[domain.AnimalImage](t, rec))
	}
	assert.True(t, images[0].IsPrimary)
	assert.False(t, images[1].IsPrimary)

	listed := decode[[]domain.AnimalImage](t, api.do(http.MethodGet, base, "", nil))
	require.Len(t, listed, 2)
	assert.Equal(t, images[0].ID, listed[0].ID)

	// only admins delete
	rec := api.do(http.MethodDelete, base+"/"+images[0].ID, staffToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = api.do(http.MethodDelete, base+"/"+images[0].ID, adminToken, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	listed = decode[[]domain.AnimalImage](t, api.do(http.MethodGet, base, "", nil))
	require.Len(t, listed, 1)
	assert.True(t, listed[0].IsPrimary)
	assert.Equal(t, []string{"animal-images/" + images[0].BlobName}, api.blobs.DeletedBlobs())
}

func TestSubmitAndReviewApplication(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(http.MethodPost, "/api/applications/foster", "", map[string]any{
		"applicant": map[string]string{
			"first_name": "Sam", "last_name": "Carter", "email": "sam@example.org",
		},
		"form": map[string]any{
			"home_type": "House", "household_adults": 2, "max_animals": 2, "agrees_to_home_visit": true,
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	app := decode[domain.Application](t, rec)
	assert.Equal(t, domain.AppPendingReview, app.Status)

	rec = api.do(http.MethodGet, "/api/applications/"+app.ID, "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = api.do(http.MethodPut, "/api/applications/"+app.ID+"/review", staffToken, map[string]string{"status": "Approved"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	reviewed := decode[services.ReviewResult](t, rec)
	assert.Equal(t, domain.AppApproved, reviewed.Application.Status)
	require.NotNil(t, reviewed.FosterProfile)

	fosters := decode[[]domain.FosterProfile](t, api.do(http.MethodGet, "/api/fosters", staffToken, nil))
	require.Len(t, fosters, 1)
	assert.Equal(t, 2, fosters[0].Capacity)
}

func TestUserSyncAndMe(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(http.MethodGet, "/api/users/me", "new-token", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.do(http.MethodPost, "/api/users/sync", "new-token", nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	synced := decode[handler.SyncResponse](t, rec)
	assert.True(t, synced.Created)
	assert.Equal(t, domain.RoleGuest, synced.User.Role)

	rec = api.do(http.MethodPost, "/api/users/sync", "new-token", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	me := decode[domain.User](t, api.do(http.MethodGet, "/api/users/me", "new-token", nil))
	assert.Equal(t, "new@rescue.org", me.Email)
	assert.Equal(t, "Nia", me.FirstName)

	rec = api.do(http.MethodGet, "/api/users", staffToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	users := decode[[]domain.User](t, api.do(http.MethodGet, "/api/users", adminToken, nil))
	assert.Len(t, users, 4)
}

func TestRouter_Fallbacks(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(http.MethodGet, "/api/nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NotFound", decode[respond.ErrorBody](t, rec).Error.Code)

	rec = api.do(http.MethodPatch, "/api/animals", staffToken, nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = api.do(http.MethodPost, "/api/animals", staffToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "request body is required", decode[respond.ErrorBody](t, rec).Error.Message)
}
