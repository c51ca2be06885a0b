package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"wision/internal/service"
	"wision/internal/validation"
)

func TestRespondWithErrorWritesStatusAndBody(t *testing.T) {
	recorder := httptest.NewRecorder()

	respondWithError(recorder, zap.NewNop(), 418, "Teapot", "", nil)

	if recorder.Code != 418 {
		t.Fatalf("expected status 418, got %d", recorder.Code)
	}
	if ct := recorder.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected JSON content type, got %q", ct)
	}

	var body errorResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Error != "Teapot" {
		t.Fatalf("expected error 'Teapot', got %q", body.Error)
	}
}

func TestRespondWithErrorLogsMessage(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	recorder := httptest.NewRecorder()

	respondWithError(recorder, zap.New(core), 500, ErrInternalServerError, "", errors.New("boom"))

	entries := logs.FilterMessage(ErrInternalServerError).All()
	if len(entries) != 1 {
		t.Fatalf("expected one log entry, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["error"]; got != "boom" {
		t.Fatalf("expected log to include error, got %v", got)
	}
}

func TestRespondWithServiceErrorStatus(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantLogged bool
	}{
		{"validation", validation.ValidationError{Field: "answer", Message: "answer is required"}, http.StatusBadRequest, false},
		{"unauthorized", service.ErrUnauthorized, http.StatusUnauthorized, false},
		{"bad credentials", service.ErrInvalidCredentials, http.StatusUnauthorized, false},
		{"email taken", service.ErrEmailTaken, http.StatusConflict, false},
		{"already submitted", service.ErrAlreadySubmitted, http.StatusConflict, false},
		{"wrapped not found", fmt.Errorf("profile u1: %w", service.ErrNotFound), http.StatusNotFound, false},
		{"conflict", service.ErrConflict, http.StatusServiceUnavailable, true},
		{"invalid state", service.ErrInvalidState, http.StatusInternalServerError, true},
		{"unexpected", errors.New("disk on fire"), http.StatusInternalServerError, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.WarnLevel)
			recorder := httptest.NewRecorder()

			respondWithServiceError(recorder, zap.New(core), "Request failed", tt.err)

			if recorder.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, recorder.Code)
			}
			if logged := logs.Len() > 0; logged != tt.wantLogged {
				t.Fatalf("expected logged=%v, got %v", tt.wantLogged, logged)
			}
		})
	}
}
