package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/AchilleasB/paws-rescue/rescue-api/internal/adapters/respond"
	"github.com/AchilleasB/paws-rescue/rescue-api/internal/core/domain"
	"github.com/AchilleasB/paws-rescue/rescue-api/internal/core/services"
)

type ApplicationHandler struct {
	applications *services.ApplicationService
	logger       *zap.Logger
}

func NewApplicationHandler(applications *services.ApplicationService, logger *zap.Logger) *ApplicationHandler {
	return &ApplicationHandler{applications: applications, logger: logger}
}

type ReviewRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

// Submit is the public intake endpoint for every application kind.
func (h *ApplicationHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req services.SubmitInput
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	app, err := h.applications.Submit(r.Context(), chi.URLParam(r, "kind"), req)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	h.logger.Info("application submitted",
		zap.String("application_id", app.ID),
		zap.String("kind", string(app.Kind)))
	respond.JSON(w, http.StatusCreated, app)
}

func (h *ApplicationHandler) List(w http.ResponseWriter, r *http.Request) {
	var filter domain.ApplicationFilter
	q := r.URL.Query()
	if k := q.Get("kind"); k != "" {
		kind, err := domain.ParseApplicationKind(k)
		if err != nil {
			respond.Error(w, r, h.logger, err)
			return
		}
		filter.Kind = &kind
	}
	if s := q.Get("status"); s != "" {
		status, err := domain.ParseApplicationStatus(s)
		if err != nil {
			respond.Error(w, r, h.logger, err)
			return
		}
		filter.Status = &status
	}
	var err error
	if filter.Limit, err = queryInt(r, "limit", domain.DefaultPageSize); err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	if filter.Offset, err = queryInt(r, "offset", 0); err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	apps, err := h.applications.List(r.Context(), filter)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, apps)
}

func (h *ApplicationHandler) Get(w http.ResponseWriter, r *http.Request) {
	app, err := h.applications.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, app)
}

func (h *ApplicationHandler) Review(w http.ResponseWriter, r *http.Request) {
	actor, err := currentUser(r)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	var req ReviewRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	res, err := h.applications.Review(r.Context(), actor, chi.URLParam(r, "id"), services.ReviewInput{
		Status: req.Status,
		Notes:  req.Notes,
	})
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	h.logger.Info("application reviewed",
		zap.String("application_id", res.Application.ID),
		zap.String("status", string(res.Application.Status)),
		zap.String("user_id", actor.ID))
	respond.JSON(w, http.StatusOK, res)
}
