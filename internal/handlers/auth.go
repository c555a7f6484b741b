package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/studyhub/studyhub-gobackend/internal/apperr"
	"github.com/studyhub/studyhub-gobackend/internal/models"
)

// AuthProvider is what the auth endpoints need from the service layer.
type AuthProvider interface {
	Register(ctx context.Context, firstName, lastName, email, password, role string) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, *models.User, error)
	GetUser(ctx context.Context, userID string) (*models.User, error)
}

type AuthHandler struct {
	service  AuthProvider
	validate *validator.Validate
}

func NewAuthHandler(service AuthProvider) *AuthHandler {
	return &AuthHandler{service: service, validate: validator.New()}
}

type registerRequest struct {
	FirstName string `json:"firstName" validate:"required,min=2,max=40"`
	LastName  string `json:"lastName" validate:"max=40"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	Role      string `json:"role" validate:"omitempty,oneof=student instructor"`
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.HandleError(w, apperr.New(http.StatusBadRequest, "Invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		apperr.HandleError(w, apperr.Wrap(http.StatusBadRequest, "Validation failed: "+err.Error(), err))
		return
	}

	user, err := h.service.Register(r.Context(), req.FirstName, req.LastName, req.Email, req.Password, req.Role)
	if err != nil {
		apperr.HandleError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"user":    user,
	})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.HandleError(w, apperr.New(http.StatusBadRequest, "Invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		apperr.HandleError(w, apperr.Wrap(http.StatusBadRequest, "Validation failed: "+err.Error(), err))
		return
	}

	token, user, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		apperr.HandleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"accessToken": token,
		"user":        user,
	})
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		apperr.HandleError(w, apperr.New(http.StatusUnauthorized, "Authentication required"))
		return
	}
	user, err := h.service.GetUser(r.Context(), userID)
	if err != nil {
		apperr.HandleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"user":    user,
	})
}
