package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/AchilleasB/paws-rescue/rescue-api/internal/adapters/respond"
	"github.com/AchilleasB/paws-rescue/rescue-api/internal/core/services"
)

type FosterHandler struct {
	fosters *services.FosterService
	logger  *zap.Logger
}

func NewFosterHandler(fosters *services.FosterService, logger *zap.Logger) *FosterHandler {
	return &FosterHandler{fosters: fosters, logger: logger}
}

type FosterUpdateRequest struct {
	IsActive          *bool   `json:"is_active"`
	Capacity          *int    `json:"capacity"`
	AvailabilityNotes *string `json:"availability_notes"`
	HomeVisitDate     *string `json:"home_visit_date"`
	HomeVisitNotes    *string `json:"home_visit_notes"`
}

func (h *FosterHandler) List(w http.ResponseWriter, r *http.Request) {
	activeOnly, err := queryBool(r, "active", false)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	profiles, err := h.fosters.List(r.Context(), activeOnly)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, profiles)
}

func (h *FosterHandler) Get(w http.ResponseWriter, r *http.Request) {
	profile, err := h.fosters.Get(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, profile)
}

func (h *FosterHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req FosterUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	visit, err := parseDate("home_visit_date", req.HomeVisitDate)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	profile, err := h.fosters.Update(r.Context(), chi.URLParam(r, "userID"), services.FosterUpdate{
		IsActive:          req.IsActive,
		Capacity:          req.Capacity,
		AvailabilityNotes: req.AvailabilityNotes,
		HomeVisitDate:     visit,
		HomeVisitNotes:    req.HomeVisitNotes,
	})
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, profile)
}

func (h *FosterHandler) Animals(w http.ResponseWriter, r *http.Request) {
	animals, err := h.fosters.Animals(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, animals)
}
