package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/AchilleasB/paws-rescue/rescue-api/internal/adapters/respond"
	"github.com/AchilleasB/paws-rescue/rescue-api/internal/core/services"
)

// LifecycleHandler exposes adoption, return and foster placement.
type LifecycleHandler struct {
	lifecycle *services.LifecycleService
	logger    *zap.Logger
}

func NewLifecycleHandler(lifecycle *services.LifecycleService, logger *zap.Logger) *LifecycleHandler {
	return &LifecycleHandler{lifecycle: lifecycle, logger: logger}
}

type FinalizeAdoptionRequest struct {
	AdopterUserID  *string `json:"adopter_user_id"`
	AdopterName    string  `json:"adopter_name"`
	AdopterEmail   string  `json:"adopter_email"`
	AdopterPhone   string  `json:"adopter_phone"`
	AdopterAddress string  `json:"adopter_address"`
	AdoptionDate   *string `json:"adoption_date"`
	Notes          string  `json:"notes"`
}

type ProcessReturnRequest struct {
	AdoptionStatus string  `json:"adoption_status"`
	ReturnDate     *string `json:"return_date"`
	Notes          string  `json:"notes"`
}

type AssignFosterRequest struct {
	FosterUserID string `json:"foster_user_id"`
}

type ClearFosterRequest struct {
	AdoptionStatus string `json:"adoption_status"`
}

func (h *LifecycleHandler) FinalizeAdoption(w http.ResponseWriter, r *http.Request) {
	actor, err := currentUser(r)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	var req FinalizeAdoptionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	date, err := parseDate("adoption_date", req.AdoptionDate)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	animalID := chi.URLParam(r, "id")
	history, err := h.lifecycle.FinalizeAdoption(r.Context(), actor, animalID, services.FinalizeAdoptionInput{
		Adopter: services.AdopterInput{
			UserID:  req.AdopterUserID,
			Name:    req.AdopterName,
			Email:   req.AdopterEmail,
			Phone:   req.AdopterPhone,
			Address: req.AdopterAddress,
		},
		AdoptionDate: date,
		Notes:        req.Notes,
	})
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	h.logger.Info("adoption finalized",
		zap.String("animal_id", animalID),
		zap.String("adoption_id", history.ID),
		zap.String("user_id", actor.ID))
	respond.JSON(w, http.StatusCreated, history)
}

func (h *LifecycleHandler) ProcessReturn(w http.ResponseWriter, r *http.Request) {
	actor, err := currentUser(r)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	var req ProcessReturnRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	date, err := parseDate("return_date", req.ReturnDate)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	animalID := chi.URLParam(r, "id")
	history, err := h.lifecycle.ProcessReturn(r.Context(), actor, animalID, services.ProcessReturnInput{
		AdoptionStatus: req.AdoptionStatus,
		ReturnDate:     date,
		Notes:          req.Notes,
	})
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	h.logger.Info("adoption return processed",
		zap.String("animal_id", animalID),
		zap.String("adoption_id", history.ID),
		zap.String("user_id", actor.ID))
	respond.JSON(w, http.StatusOK, history)
}

func (h *LifecycleHandler) AssignFoster(w http.ResponseWriter, r *http.Request) {
	actor, err := currentUser(r)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	var req AssignFosterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	animal, err := h.lifecycle.AssignFoster(r.Context(), actor, chi.URLParam(r, "id"), req.FosterUserID)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, animal)
}

func (h *LifecycleHandler) ClearFoster(w http.ResponseWriter, r *http.Request) {
	actor, err := currentUser(r)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	var req ClearFosterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	animal, err := h.lifecycle.ClearFoster(r.Context(), actor, chi.URLParam(r, "id"), req.AdoptionStatus)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, animal)
}

func (h *LifecycleHandler) History(w http.ResponseWriter, r *http.Request) {
	history, err := h.lifecycle.History(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, history)
}
