package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/AchilleasB/paws-rescue/rescue-api/internal/adapters/middleware"
	"github.com/AchilleasB/paws-rescue/rescue-api/internal/adapters/respond"
	"github.com/AchilleasB/paws-rescue/rescue-api/internal/core/domain"
	"github.com/AchilleasB/paws-rescue/rescue-api/internal/core/services"
)

type UserHandler struct {
	users  *services.UserService
	logger *zap.Logger
}

func NewUserHandler(users *services.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

// SyncRequest may carry profile fields the access token lacks.
type SyncRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type SyncResponse struct {
	User    *domain.User `json:"user"`
	Created bool         `json:"created"`
}

type ProfileRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type AccessRequest struct {
	Role     *string `json:"role"`
	IsActive *bool   `json:"is_active"`
}

// Sync finds or creates the local user for the token subject. Token claims
// win over body fields.
func (h *UserHandler) Sync(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		respond.Error(w, r, h.logger, domain.Unauthenticatedf("authentication required"))
		return
	}
	var req SyncRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			respond.Error(w, r, h.logger, err)
			return
		}
	}

	in := services.SyncInput{
		Subject:   id.Subject,
		Email:     firstNonEmpty(id.Email, req.Email),
		FirstName: firstNonEmpty(id.FirstName, req.FirstName),
		LastName:  firstNonEmpty(id.LastName, req.LastName),
	}
	user, created, err := h.users.Sync(r.Context(), in)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
		h.logger.Info("user created on first login", zap.String("user_id", user.ID))
	}
	respond.JSON(w, status, SyncResponse{User: user, Created: created})
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	actor, err := currentUser(r)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, actor)
}

func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	actor, err := currentUser(r)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	var req ProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	user, err := h.users.UpdateProfile(r.Context(), actor.ID, services.ProfileInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, user)
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	var filter domain.UserFilter
	if s := r.URL.Query().Get("role"); s != "" {
		role, err := domain.ParseRole(s)
		if err != nil {
			respond.Error(w, r, h.logger, err)
			return
		}
		filter.Role = &role
	}
	var err error
	if filter.ActiveOnly, err = queryBool(r, "active", false); err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	if filter.Limit, err = queryInt(r, "limit", domain.DefaultPageSize); err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	if filter.Offset, err = queryInt(r, "offset", 0); err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	users, err := h.users.List(r.Context(), filter)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, users)
}

func (h *UserHandler) UpdateAccess(w http.ResponseWriter, r *http.Request) {
	actor, err := currentUser(r)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	var req AccessRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	user, err := h.users.UpdateAccess(r.Context(), actor, chi.URLParam(r, "id"), services.AccessInput{
		Role:     req.Role,
		IsActive: req.IsActive,
	})
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	h.logger.Info("user access updated",
		zap.String("user_id", user.ID),
		zap.String("role", string(user.Role)),
		zap.Bool("is_active", user.IsActive),
		zap.String("by", actor.ID))
	respond.JSON(w, http.StatusOK, user)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
