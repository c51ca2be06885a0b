package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"wision/internal/service"
	"wision/internal/validation"
)

// errorResponse is the JSON body of every failed request
type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, logger *zap.Logger, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Warn("failed to write response", zap.Error(err))
	}
}

func respondWithError(w http.ResponseWriter, logger *zap.Logger, status int, userMsg, logMsg string, err error) {
	if err != nil {
		if logMsg == "" {
			logMsg = userMsg
		}
		logger.Error(logMsg, zap.Int("status", status), zap.Error(err))
	}

	respondJSON(w, logger, status, errorResponse{Error: userMsg})
}

func respondWithDetails(w http.ResponseWriter, logger *zap.Logger, status int, userMsg, details string) {
	respondJSON(w, logger, status, errorResponse{Error: userMsg, Details: details})
}

// respondWithServiceError maps a service error to its HTTP status. Only
// unexpected errors are logged.
func respondWithServiceError(w http.ResponseWriter, logger *zap.Logger, userMsg string, err error) {
	var ve validation.ValidationError
	switch {
	case errors.As(err, &ve):
		respondWithDetails(w, logger, http.StatusBadRequest, userMsg, ve.Error())
	case errors.Is(err, service.ErrUnauthorized):
		respondWithError(w, logger, http.StatusUnauthorized, ErrInvalidToken, "", nil)
	case errors.Is(err, service.ErrInvalidCredentials):
		respondWithDetails(w, logger, http.StatusUnauthorized, userMsg, err.Error())
	case errors.Is(err, service.ErrEmailTaken):
		respondWithDetails(w, logger, http.StatusConflict, userMsg, err.Error())
	case errors.Is(err, service.ErrAlreadySubmitted):
		respondWithError(w, logger, http.StatusConflict, ErrAlreadySubmitted, "", nil)
	case errors.Is(err, service.ErrNotFound):
		respondWithDetails(w, logger, http.StatusNotFound, userMsg, err.Error())
	case errors.Is(err, service.ErrConflict):
		logger.Warn("update retries exhausted", zap.Error(err))
		respondWithError(w, logger, http.StatusServiceUnavailable, ErrServiceBusy, "", nil)
	case errors.Is(err, service.ErrInvalidState):
		respondWithError(w, logger, http.StatusInternalServerError, userMsg, "invalid server state", err)
	default:
		respondWithError(w, logger, http.StatusInternalServerError, userMsg, "", err)
	}
}
