package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/AchilleasB/paws-rescue/rescue-api/internal/adapters/respond"
	"github.com/AchilleasB/paws-rescue/rescue-api/internal/core/domain"
	"github.com/AchilleasB/paws-rescue/rescue-api/internal/core/services"
)

type AnimalHandler struct {
	animals *services.AnimalService
	logger  *zap.Logger
}

func NewAnimalHandler(animals *services.AnimalService, logger *zap.Logger) *AnimalHandler {
	return &AnimalHandler{animals: animals, logger: logger}
}

type AnimalRequest struct {
	AnimalType     string   `json:"animal_type"`
	Name           string   `json:"name"`
	Breed          string   `json:"breed"`
	DateOfBirth    *string  `json:"date_of_birth"`
	Gender         string   `json:"gender"`
	WeightLbs      *float64 `json:"weight_lbs"`
	Story          string   `json:"story"`
	AdoptionStatus string   `json:"adoption_status"`
}

func (req AnimalRequest) toInput() (services.AnimalInput, error) {
	dob, err := parseDate("date_of_birth", req.DateOfBirth)
	if err != nil {
		return services.AnimalInput{}, err
	}
	return services.AnimalInput{
		AnimalType:     req.AnimalType,
		Name:           req.Name,
		Breed:          req.Breed,
		DateOfBirth:    dob,
		Gender:         req.Gender,
		WeightLbs:      req.WeightLbs,
		Story:          req.Story,
		AdoptionStatus: req.AdoptionStatus,
	}, nil
}

// List serves the public animal search.
func (h *AnimalHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.AnimalFilter{
		AnimalType: strings.TrimSpace(q.Get("type")),
		Breed:      strings.TrimSpace(q.Get("breed")),
		Gender:     strings.TrimSpace(q.Get("gender")),
		Name:       strings.TrimSpace(q.Get("name")),
		SortBy:     strings.ToLower(strings.TrimSpace(q.Get("sort"))),
		Descending: strings.EqualFold(q.Get("order"), "desc"),
	}
	if s := q.Get("status"); s != "" {
		st, err := domain.ParseAdoptionStatus(s)
		if err != nil {
			respond.Error(w, r, h.logger, err)
			return
		}
		filter.Status = &st
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

	animals, err := h.animals.Search(r.Context(), filter)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, animals)
}

func (h *AnimalHandler) Get(w http.ResponseWriter, r *http.Request) {
	animal, err := h.animals.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, animal)
}

func (h *AnimalHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, err := currentUser(r)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	var req AnimalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	in, err := req.toInput()
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	animal, err := h.animals.Create(r.Context(), actor, in)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	h.logger.Info("animal created", zap.String("animal_id", animal.ID), zap.String("user_id", actor.ID))
	respond.JSON(w, http.StatusCreated, animal)
}

func (h *AnimalHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, err := currentUser(r)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	var req AnimalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	in, err := req.toInput()
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	animal, err := h.animals.Update(r.Context(), actor, chi.URLParam(r, "id"), in)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, animal)
}

// MyFosterAnimals lists the animals placed with the calling foster.
func (h *AnimalHandler) MyFosterAnimals(w http.ResponseWriter, r *http.Request) {
	actor, err := currentUser(r)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	animals, err := h.animals.ListByFoster(r.Context(), actor.ID)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, animals)
}
