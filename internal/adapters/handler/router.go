package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/AchilleasB/paws-rescue/rescue-api/internal/adapters/middleware"
	"github.com/AchilleasB/paws-rescue/rescue-api/internal/adapters/respond"
	"github.com/AchilleasB/paws-rescue/rescue-api/internal/core/domain"
)

type RouterDeps struct {
	Logger         *zap.Logger
	Auth           *middleware.AuthMiddleware
	RateLimiter    *middleware.RateLimiter
	AllowedOrigins []string

	Health       *HealthHandler
	Users        *UserHandler
	Animals      *AnimalHandler
	Lifecycle    *LifecycleHandler
	Media        *MediaHandler
	Applications *ApplicationHandler
	Fosters      *FosterHandler
}

func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(d.Logger))
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORSMiddleware(d.AllowedOrigins))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respond.Message(w, http.StatusNotFound, "resource not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respond.Message(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	// Health endpoints (OpenShift compatible)
	r.Get("/health", d.Health.Health)
	r.Get("/health/ready", d.Health.Ready)
	r.Get("/health/live", d.Health.Live)
	r.Handle("/metrics", promhttp.Handler())

	staff := func(h http.HandlerFunc) http.HandlerFunc { return d.Auth.RequireRole(domain.StaffRoles, h) }
	admin := func(h http.HandlerFunc) http.HandlerFunc { return d.Auth.RequireRole(domain.AdminRoles, h) }
	anyUser := func(h http.HandlerFunc) http.HandlerFunc { return d.Auth.RequireRole(nil, h) }
	limited := func(h http.HandlerFunc) http.HandlerFunc {
		if d.RateLimiter == nil {
			return h
		}
		return d.RateLimiter.Limit(h)
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/users/sync", d.Auth.RequireToken(d.Users.Sync))
		r.Get("/users/me", anyUser(d.Users.Me))
		r.Put("/users/me", anyUser(d.Users.UpdateMe))
		r.Get("/users", admin(d.Users.List))
		r.Put("/users/{id}", admin(d.Users.UpdateAccess))

		r.Get("/animals", d.Animals.List)
		r.Post("/animals", staff(d.Animals.Create))
		r.Route("/animals/{id}", func(r chi.Router) {
			r.Get("/", d.Animals.Get)
			r.Put("/", staff(d.Animals.Update))

			r.Get("/adoptions", staff(d.Lifecycle.History))
			r.Post("/adoption", staff(d.Lifecycle.FinalizeAdoption))
			r.Post("/return", staff(d.Lifecycle.ProcessReturn))
			r.Put("/foster", staff(d.Lifecycle.AssignFoster))
			r.Post("/foster/clear", staff(d.Lifecycle.ClearFoster))

			r.Post("/images/upload-url", staff(d.Media.ImageUploadURL))
			r.Get("/images", d.Media.ListImages)
			r.Post("/images", staff(d.Media.AddImage))
			r.Put("/images/{imageID}", staff(d.Media.UpdateImage))
			r.Delete("/images/{imageID}", admin(d.Media.DeleteImage))

			r.Post("/documents/upload-url", staff(d.Media.DocumentUploadURL))
			r.Get("/documents", staff(d.Media.ListDocuments))
			r.Post("/documents", staff(d.Media.AddDocument))
			r.Get("/documents/{documentID}/download-url", staff(d.Media.DocumentDownloadURL))
			r.Put("/documents/{documentID}", staff(d.Media.UpdateDocument))
			r.Delete("/documents/{documentID}", admin(d.Media.DeleteDocument))
		})

		r.Post("/applications/{kind}", limited(d.Applications.Submit))
		r.Get("/applications", staff(d.Applications.List))
		r.Get("/applications/{id}", staff(d.Applications.Get))
		r.Put("/applications/{id}/review", staff(d.Applications.Review))

		r.Get("/fosters/me/animals", d.Auth.RequireRole([]domain.Role{domain.RoleFoster}, d.Animals.MyFosterAnimals))
		r.Get("/fosters", staff(d.Fosters.List))
		r.Get("/fosters/{userID}", staff(d.Fosters.Get))
		r.Put("/fosters/{userID}", staff(d.Fosters.Update))
		r.Get("/fosters/{userID}/animals", staff(d.Fosters.Animals))
	})

	return r
}
