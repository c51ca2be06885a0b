package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"wision/internal/service"
)

// DiscoveryHandler handles creative lab discoveries, rankings and progress
type DiscoveryHandler struct {
	discoveries *service.DiscoveryService
	leaderboard *service.LeaderboardService
	logger      *zap.Logger
}

// NewDiscoveryHandler creates a new discovery handler
func NewDiscoveryHandler(discoveries *service.DiscoveryService, leaderboard *service.LeaderboardService, logger *zap.Logger) *DiscoveryHandler {
	return &DiscoveryHandler{
		discoveries: discoveries,
		leaderboard: leaderboard,
		logger:      logger,
	}
}

type discoveryRequest struct {
	Character string   `json:"character"`
	Radicals  []string `json:"radicals"`
	Method    string   `json:"method"`
}

// RecordDiscovery handles POST /discoveries
func (h *DiscoveryHandler) RecordDiscovery(w http.ResponseWriter, r *http.Request) {
	var req discoveryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithDetails(w, h.logger, http.StatusBadRequest, ErrInvalidJSON, err.Error())
		return
	}

	result, err := h.discoveries.RecordDiscovery(r.Context(), GetUserIDFromContext(r.Context()), service.DiscoveryInput{
		Character: req.Character,
		Radicals:  req.Radicals,
		Method:    req.Method,
	})
	if err != nil {
		respondWithServiceError(w, h.logger, "Failed to record discovery", err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, map[string]any{
		"success":          true,
		"isNew":            result.IsNew,
		"pointsEarned":     result.PointsEarned,
		"totalDiscoveries": result.TotalDiscoveries,
	})
}

// ListDiscoveries handles GET /discoveries
func (h *DiscoveryHandler) ListDiscoveries(w http.ResponseWriter, r *http.Request) {
	log, err := h.discoveries.ListDiscoveries(r.Context(), GetUserIDFromContext(r.Context()))
	if err != nil {
		respondWithServiceError(w, h.logger, "Failed to fetch discoveries", err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, map[string]any{"discoveries": log})
}

// Leaderboard handles GET /leaderboard
func (h *DiscoveryHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	limit, _, err := queryInt(r, "limit")
	if err != nil {
		respondWithDetails(w, h.logger, http.StatusBadRequest, "Invalid limit", err.Error())
		return
	}

	kind := service.NormalizeLeaderboardType(r.URL.Query().Get("type"))
	entries, err := h.leaderboard.GetLeaderboard(r.Context(), kind, limit)
	if err != nil {
		respondWithServiceError(w, h.logger, "Failed to fetch leaderboard", err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, map[string]any{
		"leaderboard": entries,
		"type":        kind,
	})
}

// Progress handles GET /analytics/progress
func (h *DiscoveryHandler) Progress(w http.ResponseWriter, r *http.Request) {
	progress, err := h.leaderboard.GetProgress(r.Context(), GetUserIDFromContext(r.Context()))
	if err != nil {
		respondWithServiceError(w, h.logger, "Failed to fetch progress analytics", err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, map[string]any{"progress": progress})
}
