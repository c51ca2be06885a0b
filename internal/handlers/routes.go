package handlers

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"wision/internal/service"
)

// Services bundles everything the API routes call into
type Services struct {
	Catalog     *service.CatalogService
	Challenges  *service.ChallengeService
	Ledger      *service.LedgerService
	Submissions *service.SubmissionService
	Discoveries *service.DiscoveryService
	Leaderboard *service.LeaderboardService
	Auth        *service.AuthService
	StoreName   string
}

// NewRouter registers every API route under prefix and wraps the mux with
// CORS and request logging
func NewRouter(prefix string, svc Services, middleware *Middleware, logger *zap.Logger) http.Handler {
	authHandler := NewAuthHandler(svc.Auth, svc.Ledger, logger)
	challengeHandler := NewChallengeHandler(svc.Catalog, svc.Challenges, svc.Submissions, logger)
	discoveryHandler := NewDiscoveryHandler(svc.Discoveries, svc.Leaderboard, logger)

	mux := http.NewServeMux()

	mux.HandleFunc("GET "+prefix+"/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, logger, http.StatusOK, map[string]any{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
			"store":     svc.StoreName,
		})
	})

	mux.HandleFunc("POST "+prefix+"/users/register", middleware.RateLimit(authHandler.Register))
	mux.HandleFunc("POST "+prefix+"/users/login", middleware.RateLimit(authHandler.Login))
	mux.HandleFunc("GET "+prefix+"/users/profile", middleware.RequireAuth(authHandler.GetProfile))
	mux.HandleFunc("PUT "+prefix+"/users/profile", middleware.RequireAuth(authHandler.UpdateProfile))

	mux.HandleFunc("GET "+prefix+"/characters", challengeHandler.ListCharacters)
	mux.HandleFunc("GET "+prefix+"/characters/random", challengeHandler.RandomCharacters)
	mux.HandleFunc("GET "+prefix+"/challenges/daily", challengeHandler.DailyChallenge)
	mux.HandleFunc("POST "+prefix+"/challenges/submit", middleware.RequireAuth(challengeHandler.Submit))

	mux.HandleFunc("POST "+prefix+"/discoveries", middleware.RequireAuth(discoveryHandler.RecordDiscovery))
	mux.HandleFunc("GET "+prefix+"/discoveries", middleware.RequireAuth(discoveryHandler.ListDiscoveries))
	mux.HandleFunc("GET "+prefix+"/leaderboard", discoveryHandler.Leaderboard)
	mux.HandleFunc("GET "+prefix+"/analytics/progress", middleware.RequireAuth(discoveryHandler.Progress))

	return Logging(logger, CORS(mux))
}
