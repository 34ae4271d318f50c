package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/usersvc/apiserver/internal/services"
	"github.com/usersvc/apiserver/internal/store"
	"github.com/usersvc/apiserver/internal/validate"
	"github.com/usersvc/apiserver/types"
)

// UserService is the set of user operations the handlers call.
type UserService interface {
	List(ctx context.Context) ([]types.User, error)
	Get(ctx context.Context, rawID string) (types.User, error)
	Create(ctx context.Context, body map[string]any) (types.User, error)
	Update(ctx context.Context, rawID string, body map[string]any) (types.User, error)
	Delete(ctx context.Context, rawID string) (types.User, error)
}

// ValidationResponse lists every failing field.
type ValidationResponse struct {
	Errors validate.Errors `json:"errors"`
}

// UserHandler provides HTTP handlers for users.
type UserHandler struct {
	userService UserService
}

// NewUserHandler constructs a handler with the provided service.
func NewUserHandler(userService UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// UserRouter registers user routes on the given router.
func UserRouter(r chi.Router, userService UserService) {
	handler := NewUserHandler(userService)

	r.Get("/", handler.ListUsers)
	r.Post("/", handler.CreateUser)
	r.Route("/{userID}", func(r chi.Router) {
		r.Get("/", handler.GetUser)
		r.Put("/", handler.UpdateUser)
		r.Delete("/", handler.DeleteUser)
	})
}

func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.userService.Get(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	body, err := decodeObject(w, r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	user, err := h.userService.Create(r.Context(), body)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "userID")
	if _, err := services.ParseID(id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	body, err := decodeObject(w, r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	user, err := h.userService.Update(r.Context(), id, body)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.userService.Delete(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// writeServiceError maps a pipeline error onto its HTTP response.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErrs validate.Errors
	var storeErr *services.StoreError

	switch {
	case errors.As(err, &validationErrs):
		writeJSON(w, http.StatusBadRequest, ValidationResponse{Errors: validationErrs})
	case errors.Is(err, services.ErrInvalidID):
		writeJSON(w, http.StatusBadRequest, ValidationResponse{Errors: validate.Errors{
			{Field: "id", Message: services.ErrInvalidID.Error()},
		}})
	case errors.Is(err, errMalformedBody):
		writeError(w, http.StatusBadRequest, errMalformedBody.Error())
	case errors.Is(err, store.ErrEmptyUpdate):
		writeError(w, http.StatusBadRequest, store.ErrEmptyUpdate.Error())
	case errors.Is(err, services.ErrNotFound):
		writeJSON(w, http.StatusNotFound, MessageResponse{Message: "User not found"})
	case errors.As(err, &storeErr):
		log.Error().Err(storeErr.Err).Str("op", storeErr.Op).Str("path", r.URL.Path).Msg("store failure")
		writeError(w, http.StatusInternalServerError, storeErr.Error())
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Msg("unexpected error")
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
