package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wision/internal/catalog"
	"wision/internal/database"
	"wision/internal/kvstore"
	"wision/internal/models"
	"wision/internal/repository"
	"wision/internal/security"
	"wision/internal/validation"
)

var testNow = time.Date(2024, 8, 1, 10, 30, 0, 0, time.UTC)

type testServices struct {
	store       kvstore.Store
	catalog     *CatalogService
	challenges  *ChallengeService
	ledger      *LedgerService
	submissions *SubmissionService
	discoveries *DiscoveryService
	leaderboard *LeaderboardService
	auth        *AuthService
}

func newTestServices(t *testing.T) *testServices {
	t.Helper()
	return newTestServicesWithCatalog(t, catalog.Default())
}

func newTestServicesWithCatalog(t *testing.T, data *catalog.Data) *testServices {
	t.Helper()
	return newTestServicesOn(t, kvstore.NewMemory(), data)
}

// newTestServicesOn wires every service over store, as one process would
func newTestServicesOn(t *testing.T, store kvstore.Store, data *catalog.Data) *testServices {
	t.Helper()

	clock := func() time.Time { return testNow }

	challengeRepo := repository.NewChallengeRepository(store)

	catalogSvc := NewCatalogService(repository.NewCharacterRepository(store), data)
	challengeSvc := NewChallengeService(challengeRepo, catalogSvc)
	challengeSvc.now = clock
	ledger := NewLedgerService(repository.NewProfileRepository(store))
	ledger.now = clock
	submissions := NewSubmissionService(challengeRepo, challengeSvc, ledger)
	submissions.now = clock
	discoveries := NewDiscoveryService(repository.NewDiscoveryRepository(store), catalogSvc, ledger)
	discoveries.now = clock
	leaderboard := NewLeaderboardService(ledger, discoveries)
	leaderboard.now = clock
	auth := NewAuthService(repository.NewAccountRepository(store), ledger,
		security.NewTokenManager("test-secret", time.Hour), nil, nil)

	return &testServices{
		store:       store,
		catalog:     catalogSvc,
		challenges:  challengeSvc,
		ledger:      ledger,
		submissions: submissions,
		discoveries: discoveries,
		leaderboard: leaderboard,
		auth:        auth,
	}
}

func (ts *testServices) createUser(t *testing.T, userID, name string) {
	t.Helper()
	_, err := ts.ledger.CreateProfile(context.Background(), userID, models.UserProfile{Name: name})
	require.NoError(t, err)
}

func TestCatalogService_Initialize(t *testing.T) {
	ctx := context.Background()
	ts := newTestServices(t)

	characters, err := ts.catalog.Initialize(ctx)
	require.NoError(t, err)
	assert.Len(t, characters, 10)

	// The stored catalog wins over the configured one on later reads
	ts.catalog.data = &catalog.Data{Characters: characters[:1]}
	characters, err = ts.catalog.Initialize(ctx)
	require.NoError(t, err)
	assert.Len(t, characters, 10)
}

func TestCatalogService_List(t *testing.T) {
	ctx := context.Background()
	ts := newTestServices(t)

	tests := []struct {
		name   string
		filter CharacterFilter
		want   int
	}{
		{"no filter", CharacterFilter{}, 10},
		{"category", CharacterFilter{Category: "nature"}, 3},
		{"difficulty", CharacterFilter{Difficulty: 1}, 2},
		{"both", CharacterFilter{Category: "actions", Difficulty: 2}, 3},
		{"no match", CharacterFilter{Category: "nope"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ts.catalog.List(ctx, tt.filter)
			require.NoError(t, err)
			assert.Len(t, got, tt.want)
			for _, c := range got {
				if tt.filter.Category != "" {
					assert.Equal(t, tt.filter.Category, c.Category)
				}
				if tt.filter.Difficulty != 0 {
					assert.Equal(t, tt.filter.Difficulty, c.Difficulty)
				}
			}
		})
	}
}

func TestCatalogService_RandomSample(t *testing.T) {
	ctx := context.Background()
	ts := newTestServices(t)

	tests := []struct {
		name   string
		n      int
		filter CharacterFilter
		want   int
	}{
		{"three", 3, CharacterFilter{}, 3},
		{"zero means one", 0, CharacterFilter{}, 1},
		{"negative means one", -4, CharacterFilter{}, 1},
		{"oversize returns all", 50, CharacterFilter{Difficulty: 1}, 2},
		{"empty filter result", 5, CharacterFilter{Category: "nope"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ts.catalog.RandomSample(ctx, tt.n, tt.filter)
			require.NoError(t, err)
			assert.Len(t, got, tt.want)

			seen := make(map[string]bool)
			for _, c := range got {
				assert.False(t, seen[c.Character], "duplicate %s", c.Character)
				seen[c.Character] = true
			}
		})
	}
}

func TestChallengeService_GetChallenge(t *testing.T) {
	ctx := context.Background()
	ts := newTestServices(t)

	ch, err := ts.challenges.GetChallenge(ctx, "2024-08-01")
	require.NoError(t, err)
	assert.Equal(t, "daily-2024-08-01", ch.ID)
	assert.Equal(t, "休", ch.Character)
	assert.Equal(t, "rest", ch.Meaning)
	assert.Equal(t, []string{"rest", "relax"}, ch.AcceptableMeanings)
	assert.Equal(t, 20, ch.Points)
	require.Len(t, ch.Radicals, 2)
	assert.Equal(t, models.RadicalInfo{Character: "人", Meaning: "person"}, ch.Radicals[0])

	again, err := ts.challenges.GetChallenge(ctx, "2024-08-01")
	require.NoError(t, err)
	assert.Equal(t, ch, again)

	today, err := ts.challenges.GetTodaysChallenge(ctx)
	require.NoError(t, err)
	assert.Equal(t, ch, today)
}

func TestChallengeService_StoredChallengeIsStable(t *testing.T) {
	ctx := context.Background()
	ts := newTestServices(t)

	first, err := ts.challenges.GetChallenge(ctx, "2025-03-15")
	require.NoError(t, err)

	// Changing the tables after generation does not alter the stored challenge
	ts.catalog.data = &catalog.Data{}
	second, err := ts.challenges.GetChallenge(ctx, "2025-03-15")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestChallengeService_SurvivesRestart(t *testing.T) {
	ctx := context.Background()
	dates := []string{"2024-08-01", "2025-03-15", "2025-12-31"}

	reference := make(map[string]*models.DailyChallenge)
	fresh := newTestServicesOn(t, kvstore.NewMemory(), catalog.Default())
	for _, date := range dates {
		ch, err := fresh.challenges.GetChallenge(ctx, date)
		require.NoError(t, err)
		reference[date] = ch
	}
	assert.Equal(t, "休", reference["2024-08-01"].Character)

	openSQLite := func(t *testing.T, path string) (kvstore.Store, func() error) {
		t.Helper()
		db, err := database.Initialize(path)
		require.NoError(t, err)
		_, err = db.RunMigrations(ctx)
		require.NoError(t, err)
		return kvstore.NewSQLStore(db), db.Close
	}

	tests := []struct {
		name string
		// open returns the same persisted store on every call
		open func(t *testing.T) (kvstore.Store, func() error)
		sql  bool
	}{
		{
			name: "memory",
			open: func() func(t *testing.T) (kvstore.Store, func() error) {
				store := kvstore.NewMemory()
				return func(t *testing.T) (kvstore.Store, func() error) {
					return store, func() error { return nil }
				}
			}(),
		},
		{
			name: "sqlite",
			open: func() func(t *testing.T) (kvstore.Store, func() error) {
				path := filepath.Join(t.TempDir(), "wision.db")
				return func(t *testing.T) (kvstore.Store, func() error) {
					return openSQLite(t, path)
				}
			}(),
			sql: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.sql && testing.Short() {
				t.Skip("Skipping integration test in short mode")
			}

			store, closeStore := tt.open(t)
			first := newTestServicesOn(t, store, catalog.Default())
			before := make(map[string]*models.DailyChallenge)
			for _, date := range dates {
				ch, err := first.challenges.GetChallenge(ctx, date)
				require.NoError(t, err)
				before[date] = ch
			}
			require.NoError(t, closeStore())

			store, closeStore = tt.open(t)
			defer closeStore()
			second := newTestServicesOn(t, store, catalog.Default())
			for _, date := range dates {
				persisted, err := second.challenges.FindChallenge(ctx, date)
				require.NoError(t, err)
				assert.Equal(t, before[date], persisted, date)
				assert.Equal(t, reference[date], persisted, date)
			}
		})
	}
}

func TestChallengeService_GenerationIgnoresCallerCancellation(t *testing.T) {
	store := &gatedStore{
		Store:   kvstore.NewMemory(),
		prefix:  "daily_challenge:",
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	ts := newTestServicesOn(t, store, catalog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	type result struct {
		ch  *models.DailyChallenge
		err error
	}
	done := make(chan result, 1)
	go func() {
		ch, err := ts.challenges.GetChallenge(ctx, "2024-08-01")
		done <- result{ch, err}
	}()

	<-store.entered
	cancel()
	close(store.release)

	got := <-done
	require.NoError(t, got.err)
	assert.Equal(t, "休", got.ch.Character)

	persisted, err := ts.challenges.FindChallenge(context.Background(), "2024-08-01")
	require.NoError(t, err)
	assert.Equal(t, got.ch, persisted)
}

func TestChallengeService_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("malformed date", func(t *testing.T) {
		ts := newTestServices(t)
		_, err := ts.challenges.GetChallenge(ctx, "08/01/2024")
		var ve validation.ValidationError
		assert.ErrorAs(t, err, &ve)
	})

	t.Run("empty catalog", func(t *testing.T) {
		ts := newTestServicesWithCatalog(t, &catalog.Data{})
		_, err := ts.challenges.GetChallenge(ctx, "2024-08-01")
		assert.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("find does not generate", func(t *testing.T) {
		ts := newTestServices(t)
		_, err := ts.challenges.FindChallenge(ctx, "2024-08-01")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestChallengeService_ConcurrentGeneration(t *testing.T) {
	ctx := context.Background()
	ts := newTestServices(t)

	const workers = 20
	results := make([]*models.DailyChallenge, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ch, err := ts.challenges.GetChallenge(ctx, "2024-12-31")
			assert.NoError(t, err)
			results[i] = ch
		}(i)
	}
	wg.Wait()

	for _, ch := range results {
		require.NotNil(t, ch)
		assert.Equal(t, *results[0], *ch)
	}

	entry, err := ts.store.Get(ctx, "daily_challenge:2024-12-31")
	require.NoError(t, err)
	assert.Equal(t, int64(1), entry.Version)
}

func TestLedgerService_ApplyScoreDelta(t *testing.T) {
	ctx := context.Background()
	ts := newTestServices(t)
	ts.createUser(t, "u1", "Lin")

	p, err := ts.ledger.ApplyScoreDelta(ctx, "u1", 40, nil)
	require.NoError(t, err)
	assert.Equal(t, 40, p.Score)
	require.NotNil(t, p.UpdatedAt)

	_, err = ts.ledger.ApplyScoreDelta(ctx, "missing", 10, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLedgerService_ConcurrentDeltas(t *testing.T) {
	ctx := context.Background()
	ts := newTestServices(t)
	ts.createUser(t, "u1", "Lin")

	const workers = 4
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = ts.ledger.ApplyScoreDelta(ctx, "u1", 10, nil)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}

	p, err := ts.ledger.GetProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, workers*10, p.Score)
}

func TestLedgerService_CreditStopsWithContext(t *testing.T) {
	ts := newTestServices(t)
	ts.createUser(t, "u1", "Lin")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ts.ledger.ApplyScoreDelta(ctx, "u1", 10, nil)
	assert.ErrorIs(t, err, context.Canceled)

	p, err := ts.ledger.GetProfile(context.Background(), "u1")
	require.NoError(t, err)
	assert.Zero(t, p.Score)
}

func TestLedgerService_ReplaceProfile(t *testing.T) {
	ctx := context.Background()
	ts := newTestServices(t)
	ts.createUser(t, "u1", "Lin")

	_, err := ts.ledger.ApplyScoreDelta(ctx, "u1", 75, nil)
	require.NoError(t, err)

	p, err := ts.ledger.ReplaceProfile(ctx, "u1", models.UserProfile{
		UserID:           "attacker",
		Name:             "Lin Wei",
		Age:              12,
		Interests:        []string{"nature"},
		ProficiencyLevel: 2,
		KnownCharacters:  30,
		Score:            99999,
	})
	require.NoError(t, err)
	assert.Equal(t, "u1", p.UserID)
	assert.Equal(t, "Lin Wei", p.Name)
	assert.Equal(t, 12, p.Age)
	assert.Equal(t, 75, p.Score)
	assert.Equal(t, testNow, p.CreatedAt)
}

func TestLedgerService_CreateProfileTwice(t *testing.T) {
	ctx := context.Background()
	ts := newTestServices(t)
	ts.createUser(t, "u1", "Lin")

	_, err := ts.ledger.CreateProfile(ctx, "u1", models.UserProfile{Name: "Again"})
	assert.ErrorIs(t, err, ErrConflict)
}
