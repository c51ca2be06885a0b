package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"wision/internal/models"
	"wision/internal/service"
)

// AuthHandler handles account and profile HTTP requests
type AuthHandler struct {
	authService *service.AuthService
	ledger      *service.LedgerService
	logger      *zap.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, ledger *service.LedgerService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		ledger:      ledger,
		logger:      logger,
	}
}

type registerRequest struct {
	Email    string             `json:"email"`
	Password string             `json:"password"`
	Profile  models.UserProfile `json:"profile"`
}

type accountView struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles POST /users/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithDetails(w, h.logger, http.StatusBadRequest, ErrInvalidJSON, err.Error())
		return
	}

	account, session, err := h.authService.Register(r.Context(), req.Email, req.Password, req.Profile)
	if err != nil {
		respondWithServiceError(w, h.logger, "Registration failed", err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, map[string]any{
		"success": true,
		"user":    accountView{ID: account.ID, Email: account.Email},
		"token":   session.AccessToken,
	})
}

// Login handles POST /users/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithDetails(w, h.logger, http.StatusBadRequest, ErrInvalidJSON, err.Error())
		return
	}

	session, account, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondWithServiceError(w, h.logger, "Login failed", err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, map[string]any{
		"success": true,
		"session": session,
		"user":    accountView{ID: account.ID, Email: account.Email},
	})
}

// GetProfile handles GET /users/profile
func (h *AuthHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.ledger.GetProfile(r.Context(), GetUserIDFromContext(r.Context()))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, h.logger, http.StatusNotFound, ErrProfileNotFound, "", nil)
			return
		}
		respondWithServiceError(w, h.logger, "Failed to fetch profile", err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, map[string]any{"profile": profile})
}

// UpdateProfile handles PUT /users/profile
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var incoming models.UserProfile
	if err := decodeJSON(w, r, &incoming); err != nil {
		respondWithDetails(w, h.logger, http.StatusBadRequest, ErrInvalidJSON, err.Error())
		return
	}

	if _, err := h.ledger.ReplaceProfile(r.Context(), GetUserIDFromContext(r.Context()), incoming); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, h.logger, http.StatusNotFound, ErrProfileNotFound, "", nil)
			return
		}
		respondWithServiceError(w, h.logger, "Failed to update profile", err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, map[string]any{
		"success": true,
		"message": "Profile updated successfully",
	})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}

// queryInt parses an optional integer query parameter
func queryInt(r *http.Request, name string) (int, bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, false, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, err
	}
	return n, true, nil
}
