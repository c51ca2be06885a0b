// Package client is a Go client for the Wision API. When the server cannot
// be reached it degrades to local generation and grading for the calls
// that can be answered offline.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"wision/internal/catalog"
	"wision/internal/challenge"
	"wision/internal/grading"
	"wision/internal/kvstore"
	"wision/internal/models"
	"wision/internal/repository"
	"wision/internal/service"
)

// DefaultTimeout bounds every API request
const DefaultTimeout = 10 * time.Second

// ErrUpstreamUnavailable means the server could not be reached or failed
var ErrUpstreamUnavailable = errors.New("upstream unavailable")

// APIError is a 4xx response from the server
type APIError struct {
	Status  int
	Message string
	Details string
}

func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("api error %d: %s (%s)", e.Status, e.Message, e.Details)
	}
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Challenge is a daily challenge and whether it was generated locally
type Challenge struct {
	models.DailyChallenge
	Offline bool `json:"offline"`
}

// SubmissionOutcome is a graded answer and whether it was graded locally
type SubmissionOutcome struct {
	models.SubmissionResult
	Offline bool `json:"offline"`
}

// DiscoveryOutcome is a recorded discovery and whether it was only credited locally
type DiscoveryOutcome struct {
	models.DiscoveryResult
	Offline bool `json:"offline"`
}

// Client calls the API with a bearer token
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
	local      *service.ChallengeService
	now        func() time.Time
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient sets the transport used underneath the token source
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the client's logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New creates a client for the API rooted at baseURL (including the route
// prefix, e.g. http://localhost:8080/api). token may be empty.
func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     zap.NewNop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	if token != "" {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, c.httpClient)
		authed := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: token,
			TokenType:   "Bearer",
		}))
		authed.Timeout = c.httpClient.Timeout
		c.httpClient = authed
	}

	store := kvstore.NewMemory()
	catalogSvc := service.NewCatalogService(repository.NewCharacterRepository(store), catalog.Default())
	c.local = service.NewChallengeService(repository.NewChallengeRepository(store), catalogSvc)
	return c
}

// DailyChallenge fetches today's challenge, generating it locally when the
// server is unavailable
func (c *Client) DailyChallenge(ctx context.Context) (*Challenge, error) {
	var resp struct {
		Challenge models.DailyChallenge `json:"challenge"`
	}
	err := c.do(ctx, http.MethodGet, "/challenges/daily", nil, &resp)
	if err == nil {
		return &Challenge{DailyChallenge: resp.Challenge}, nil
	}
	if !errors.Is(err, ErrUpstreamUnavailable) {
		return nil, err
	}

	c.logger.Warn("using local daily challenge", zap.Error(err))
	local, lerr := c.local.GetChallenge(ctx, challenge.FormatDate(c.now()))
	if lerr != nil {
		return nil, fmt.Errorf("local challenge: %w", lerr)
	}
	return &Challenge{DailyChallenge: *local, Offline: true}, nil
}

// SubmitChallenge submits an answer, grading locally when the server is unavailable
func (c *Client) SubmitChallenge(ctx context.Context, ch *models.DailyChallenge, answer string) (*SubmissionOutcome, error) {
	body := map[string]string{
		"challengeId":   ch.ID,
		"answer":        answer,
		"challengeDate": ch.Date,
	}
	var resp models.SubmissionResult
	err := c.do(ctx, http.MethodPost, "/challenges/submit", body, &resp)
	if err == nil {
		return &SubmissionOutcome{SubmissionResult: resp}, nil
	}
	if !errors.Is(err, ErrUpstreamUnavailable) {
		return nil, err
	}

	c.logger.Warn("grading challenge locally", zap.String("challenge_id", ch.ID), zap.Error(err))
	correct := grading.IsCorrect(answer, ch.AcceptableMeanings)
	return &SubmissionOutcome{
		SubmissionResult: models.SubmissionResult{
			IsCorrect:     correct,
			PointsEarned:  grading.SubmissionPoints(correct),
			CorrectAnswer: ch.Meaning,
			Explanation:   challenge.Explanation(ch),
		},
		Offline: true,
	}, nil
}

// RecordDiscovery records a discovery, crediting it locally when the server
// is unavailable
func (c *Client) RecordDiscovery(ctx context.Context, character string, radicals []string, method string) (*DiscoveryOutcome, error) {
	if method == "" {
		method = models.MethodCreativeLab
	}
	body := map[string]any{
		"character": character,
		"radicals":  radicals,
		"method":    method,
	}
	var resp models.DiscoveryResult
	err := c.do(ctx, http.MethodPost, "/discoveries", body, &resp)
	if err == nil {
		return &DiscoveryOutcome{DiscoveryResult: resp}, nil
	}
	if !errors.Is(err, ErrUpstreamUnavailable) {
		return nil, err
	}

	c.logger.Warn("crediting discovery locally", zap.String("character", character), zap.Error(err))
	return &DiscoveryOutcome{
		DiscoveryResult: models.DiscoveryResult{
			IsNew:        true,
			PointsEarned: grading.DiscoveryPoints(radicals),
		},
		Offline: true,
	}, nil
}

// Profile fetches the authenticated user's profile
func (c *Client) Profile(ctx context.Context) (*models.UserProfile, error) {
	var resp struct {
		Profile models.UserProfile `json:"profile"`
	}
	if err := c.do(ctx, http.MethodGet, "/users/profile", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Profile, nil
}

// Leaderboard fetches a ranking
func (c *Client) Leaderboard(ctx context.Context, kind string, limit int) ([]models.LeaderboardEntry, error) {
	q := url.Values{}
	if kind != "" {
		q.Set("type", kind)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	path := "/leaderboard"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var resp struct {
		Leaderboard []models.LeaderboardEntry `json:"leaderboard"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Leaderboard, nil
}

// Health reports whether the server answers its health check
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

// ChallengeStreak counts consecutive completed days anchored today or yesterday
func ChallengeStreak(completions map[string]models.ChallengeCompletion, today time.Time) int {
	return challenge.Streak(completions, today)
}

// WeeklyCompleted counts completed days in the last seven days including today
func WeeklyCompleted(completions map[string]models.ChallengeCompletion, today time.Time) int {
	return challenge.WeeklyCompleted(completions, today)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("%w: %s %s returned %d", ErrUpstreamUnavailable, method, path, resp.StatusCode)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		var e struct {
			Error   string `json:"error"`
			Details string `json:"details"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		if e.Error == "" {
			e.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: e.Error, Details: e.Details}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}
