package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"wision/internal/service"
)

// ChallengeHandler serves the catalog, the daily challenge and submissions
type ChallengeHandler struct {
	catalog     *service.CatalogService
	challenges  *service.ChallengeService
	submissions *service.SubmissionService
	logger      *zap.Logger
}

// NewChallengeHandler creates a new challenge handler
func NewChallengeHandler(catalog *service.CatalogService, challenges *service.ChallengeService, submissions *service.SubmissionService, logger *zap.Logger) *ChallengeHandler {
	return &ChallengeHandler{
		catalog:     catalog,
		challenges:  challenges,
		submissions: submissions,
		logger:      logger,
	}
}

type submitRequest struct {
	ChallengeID   string `json:"challengeId"`
	Answer        string `json:"answer"`
	ChallengeDate string `json:"challengeDate"`
}

// ListCharacters handles GET /characters
func (h *ChallengeHandler) ListCharacters(w http.ResponseWriter, r *http.Request) {
	difficulty, _, err := queryInt(r, "difficulty")
	if err != nil {
		respondWithDetails(w, h.logger, http.StatusBadRequest, "Invalid difficulty", err.Error())
		return
	}

	characters, err := h.catalog.List(r.Context(), service.CharacterFilter{
		Category:   r.URL.Query().Get("category"),
		Difficulty: difficulty,
	})
	if err != nil {
		respondWithServiceError(w, h.logger, "Failed to fetch characters", err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, map[string]any{"characters": characters})
}

// RandomCharacters handles GET /characters/random
func (h *ChallengeHandler) RandomCharacters(w http.ResponseWriter, r *http.Request) {
	count, ok, err := queryInt(r, "count")
	if err != nil {
		respondWithDetails(w, h.logger, http.StatusBadRequest, "Invalid count", err.Error())
		return
	}
	if !ok {
		count = 1
	}
	difficulty, _, err := queryInt(r, "difficulty")
	if err != nil {
		respondWithDetails(w, h.logger, http.StatusBadRequest, "Invalid difficulty", err.Error())
		return
	}

	characters, err := h.catalog.RandomSample(r.Context(), count, service.CharacterFilter{Difficulty: difficulty})
	if err != nil {
		respondWithServiceError(w, h.logger, "Failed to fetch random characters", err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, map[string]any{"characters": characters})
}

// DailyChallenge handles GET /challenges/daily
func (h *ChallengeHandler) DailyChallenge(w http.ResponseWriter, r *http.Request) {
	challenge, err := h.challenges.GetTodaysChallenge(r.Context())
	if err != nil {
		respondWithServiceError(w, h.logger, "Failed to fetch daily challenge", err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, map[string]any{"challenge": challenge})
}

// Submit handles POST /challenges/submit
func (h *ChallengeHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithDetails(w, h.logger, http.StatusBadRequest, ErrInvalidJSON, err.Error())
		return
	}

	result, err := h.submissions.Submit(r.Context(), GetUserIDFromContext(r.Context()), service.SubmitInput{
		ChallengeID: req.ChallengeID,
		Answer:      req.Answer,
		Date:        req.ChallengeDate,
	})
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithDetails(w, h.logger, http.StatusNotFound, ErrChallengeNotFound, err.Error())
			return
		}
		respondWithServiceError(w, h.logger, "Failed to submit challenge", err)
		return
	}

	h.logger.Debug("challenge submitted",
		zap.String("user_id", GetUserIDFromContext(r.Context())),
		zap.Bool("correct", result.IsCorrect),
		zap.Int("points", result.PointsEarned))

	respondJSON(w, h.logger, http.StatusOK, map[string]any{
		"success":       true,
		"isCorrect":     result.IsCorrect,
		"pointsEarned":  result.PointsEarned,
		"correctAnswer": result.CorrectAnswer,
		"explanation":   result.Explanation,
	})
}
