package jobs

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/camr1993/fantasy-football-assistant-sub000/internal/adapters/storage"
	"github.com/camr1993/fantasy-football-assistant-sub000/internal/config"
	"github.com/camr1993/fantasy-football-assistant-sub000/internal/domain/model"
	"github.com/camr1993/fantasy-football-assistant-sub000/internal/domain/recommend"
	"github.com/camr1993/fantasy-football-assistant-sub000/pkg/logger"
)

func TestMain(m *testing.M) {
	_ = logger.Init()
	_ = logger.SetLevelString("error")
	os.Exit(m.Run())
}

// fakeFetcher serves canned provider responses keyed by league id, with an
// optional per-league error.
type fakeFetcher struct {
	leagues      map[string]model.League
	rosters      map[string][]model.RosterEntry
	transactions map[string][]model.Transaction
	players      map[string][]model.Player
	weekStats    map[string][]model.PlayerWeekStat
	fail         map[string]error
}

func (f *fakeFetcher) LeagueSettings(_ context.Context, _ *model.Credential, leagueID string) (model.League, error) {
	if err := f.fail[leagueID]; err != nil {
		return model.League{}, err
	}
	return f.leagues[leagueID], nil
}

func (f *fakeFetcher) Rosters(_ context.Context, _ *model.Credential, leagueID string) ([]model.RosterEntry, error) {
	if err := f.fail[leagueID]; err != nil {
		return nil, err
	}
	return f.rosters[leagueID], nil
}

func (f *fakeFetcher) Transactions(_ context.Context, _ *model.Credential, leagueID string) ([]model.Transaction, error) {
	if err := f.fail[leagueID]; err != nil {
		return nil, err
	}
	return f.transactions[leagueID], nil
}

func (f *fakeFetcher) Players(_ context.Context, _ *model.Credential, leagueID string) ([]model.Player, error) {
	if err := f.fail[leagueID]; err != nil {
		return nil, err
	}
	return f.players[leagueID], nil
}

func (f *fakeFetcher) WeekStats(_ context.Context, _ *model.Credential, leagueID string, _, _ int) ([]model.PlayerWeekStat, error) {
	if err := f.fail[leagueID]; err != nil {
		return nil, err
	}
	return f.weekStats[leagueID], nil
}

func testDeps(t *testing.T, fetch *fakeFetcher) (Deps, *storage.MemStore) {
	t.Helper()
	store := storage.NewMemStore()
	return Deps{
		Store:  store,
		Fetch:  fetch,
		Engine: recommend.New(),
		Config: config.New(),
		Logger: logger.Get().Named("jobs-test"),
	}, store
}

func seedLeague(t *testing.T, store *storage.MemStore, lg model.League) {
	t.Helper()
	if err := store.UpsertLeague(context.Background(), lg); err != nil {
		t.Fatalf("seed league: %v", err)
	}
}

func TestRegistryLookup(t *testing.T) {
	deps, _ := testDeps(t, &fakeFetcher{})
	reg := NewRegistry(deps)

	for _, name := range []string{
		JobSyncLeagueSettings, JobSyncRosters, JobSyncTransactions,
		JobSyncPlayers, JobSyncWeekStats,
		JobComputeDefenseMetrics, JobComputeKickerMetrics,
		JobRefreshRecommendations,
	} {
		j, ok := reg.Lookup(name)
		if !ok {
			t.Fatalf("expected %s registered", name)
		}
		if j.Name() != name {
			t.Fatalf("job registered under %s reports name %s", name, j.Name())
		}
	}
	if _, ok := reg.Lookup("definitely_not_a_job"); ok {
		t.Fatal("unknown name must not resolve")
	}
	if got := len(reg.Names()); got != 8 {
		t.Fatalf("expected 8 registered jobs, got %d", got)
	}
}

func TestSyncLeagueSettingsKeepsOwnership(t *testing.T) {
	ctx := context.Background()
	fetch := &fakeFetcher{leagues: map[string]model.League{
		"l1": {ID: "l1", Name: "Main", Season: 2025, CurrentWeek: 6, TeamKey: "l1.t.3"},
	}}
	deps, store := testDeps(t, fetch)
	seedLeague(t, store, model.League{ID: "l1", Name: "stale", Season: 2025, CurrentWeek: 5, UserID: "u1"})

	res, err := (&syncLeagueSettings{deps: deps}).Run(ctx, Request{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Records != 1 {
		t.Fatalf("expected 1 record, got %d", res.Records)
	}
	lgs, _ := store.Leagues(ctx, "u1")
	if len(lgs) != 1 || lgs[0].CurrentWeek != 6 || lgs[0].UserID != "u1" || lgs[0].TeamKey != "l1.t.3" {
		t.Fatalf("league not refreshed with ownership kept: %+v", lgs)
	}
}

func TestSyncRostersReplacesEntries(t *testing.T) {
	ctx := context.Background()
	fetch := &fakeFetcher{rosters: map[string][]model.RosterEntry{
		"l1": {
			{TeamKey: "l1.t.1", PlayerID: "p1", Slot: "QB"},
			{TeamKey: "l1.t.1", PlayerID: "p2", Slot: "BN"},
		},
	}}
	deps, store := testDeps(t, fetch)
	seedLeague(t, store, model.League{ID: "l1", UserID: "u1"})
	if err := store.ReplaceRosters(ctx, "l1", []model.RosterEntry{{TeamKey: "l1.t.9", PlayerID: "old", Slot: "WR"}}); err != nil {
		t.Fatal(err)
	}

	res, err := (&syncRosters{deps: deps}).Run(ctx, Request{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Records != 2 {
		t.Fatalf("expected 2 records, got %d", res.Records)
	}
	entries, _ := store.Rosters(ctx, "l1")
	if len(entries) != 2 {
		t.Fatalf("expected old roster replaced, got %+v", entries)
	}
}

func TestSyncWeekStatsRequiresWeek(t *testing.T) {
	ctx := context.Background()
	deps, store := testDeps(t, &fakeFetcher{})
	seedLeague(t, store, model.League{ID: "l1", UserID: "u1"}) // CurrentWeek 0

	_, err := (&syncWeekStats{deps: deps}).Run(ctx, Request{})
	if !errors.Is(err, ErrBatchFailed) {
		t.Fatalf("expected batch failure when no week resolvable, got %v", err)
	}
}

func TestBatchPartialFailureContinuesSiblings(t *testing.T) {
	ctx := context.Background()
	fetch := &fakeFetcher{
		players: map[string][]model.Player{
			"l1": {{ID: "p1", Name: "A", Position: model.Quarterback}},
			"l2": {{ID: "p2", Name: "B", Position: model.Kicker}},
		},
		fail: map[string]error{"l2": errors.New("provider down")},
	}
	deps, store := testDeps(t, fetch)
	seedLeague(t, store, model.League{ID: "l1", UserID: "u1"})
	seedLeague(t, store, model.League{ID: "l2", UserID: "u1"})

	res, err := (&syncPlayers{deps: deps}).Run(ctx, Request{})
	if err != nil {
		t.Fatalf("partial failure must not fail the job: %v", err)
	}
	if res.Records != 1 {
		t.Fatalf("expected the healthy league synced, got %d records", res.Records)
	}
	if !strings.Contains(res.Summary, "1 failed") {
		t.Fatalf("summary should count the failed league: %q", res.Summary)
	}

	players, _ := store.Players(ctx, "l1")
	if len(players) != 1 {
		t.Fatalf("healthy league should have its players stored: %+v", players)
	}
}

func TestBatchAllFailedFailsJob(t *testing.T) {
	ctx := context.Background()
	fetch := &fakeFetcher{fail: map[string]error{"l1": errors.New("provider down")}}
	deps, store := testDeps(t, fetch)
	seedLeague(t, store, model.League{ID: "l1", UserID: "u1"})

	_, err := (&syncPlayers{deps: deps}).Run(ctx, Request{})
	if !errors.Is(err, ErrBatchFailed) {
		t.Fatalf("expected ErrBatchFailed, got %v", err)
	}
}

func seedWeekStats(t *testing.T, store *storage.MemStore, leagueID string, playerID string, byWeek map[int]map[string]float64, pointsByWeek map[int]float64) {
	t.Helper()
	var rows []model.PlayerWeekStat
	for w, m := range byWeek {
		rows = append(rows, model.PlayerWeekStat{
			LeagueID: leagueID, PlayerID: playerID, Season: 2025, Week: w,
			Points: pointsByWeek[w], Stats: m,
		})
	}
	if err := store.UpsertWeekStats(context.Background(), rows); err != nil {
		t.Fatal(err)
	}
}

func TestComputeDefenseMetrics(t *testing.T) {
	ctx := context.Background()
	deps, store := testDeps(t, &fakeFetcher{})
	seedLeague(t, store, model.League{ID: "l1", Season: 2025, CurrentWeek: 3, UserID: "u1"})
	if err := store.UpsertPlayers(ctx, "l1", []model.Player{
		{ID: "def1", Name: "Steel Curtain", Position: model.Defense},
		{ID: "def2", Name: "Doomsday", Position: model.Defense},
		{ID: "qb1", Name: "Gunslinger", Position: model.Quarterback},
	}); err != nil {
		t.Fatal(err)
	}
	seedWeekStats(t, store, "l1", "def1",
		map[int]map[string]float64{
			1: {"points_allowed": 10, "sacks": 3, "turnovers": 2},
			2: {"points_allowed": 20, "sacks": 1, "turnovers": 0},
			3: {"points_allowed": 14, "sacks": 2, "turnovers": 1},
		},
		map[int]float64{1: 12, 2: 4, 3: 8})
	seedWeekStats(t, store, "l1", "def2",
		map[int]map[string]float64{
			3: {"points_allowed": 28, "sacks": 0, "turnovers": 0},
		},
		map[int]float64{3: 1})

	job := newComputeMetrics(deps, JobComputeDefenseMetrics, model.Defense, defenseMetrics, "zscore")
	res, err := job.Run(ctx, Request{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Records != 2 {
		t.Fatalf("expected metric rows for the two defenses, got %d", res.Records)
	}

	rows, err := store.MetricRows(ctx, "l1", 2025, 3)
	if err != nil {
		t.Fatal(err)
	}
	byID := map[string]model.MetricRow{}
	for _, row := range rows {
		byID[row.SubjectID] = row
	}
	if _, ok := byID["qb1"]; ok {
		t.Fatal("non-defense subjects must not appear in defense metric rows")
	}

	d1 := byID["def1"]
	// weeks 1..3 rolling window at week 3: mean(10,20,14) = 14.67
	if got := d1.Rolling["points_allowed"]; got != 14.67 {
		t.Fatalf("rolling points_allowed = %v, want 14.67", got)
	}
	if d1.Normalized["points_allowed"] == nil || byID["def2"].Normalized["points_allowed"] == nil {
		t.Fatal("z-score normalization must produce values for both defenses")
	}
	// two-subject population: z-scores mirror each other
	a, b := *d1.Normalized["points_allowed"], *byID["def2"].Normalized["points_allowed"]
	if a+b > 0.001 || a+b < -0.001 {
		t.Fatalf("two-subject z-scores should sum to ~0, got %v and %v", a, b)
	}
}

func TestComputeKickerMetricsZeroRange(t *testing.T) {
	ctx := context.Background()
	deps, store := testDeps(t, &fakeFetcher{})
	seedLeague(t, store, model.League{ID: "l1", Season: 2025, CurrentWeek: 1, UserID: "u1"})
	if err := store.UpsertPlayers(ctx, "l1", []model.Player{
		{ID: "k1", Name: "Legatron", Position: model.Kicker},
		{ID: "k2", Name: "Iceman", Position: model.Kicker},
	}); err != nil {
		t.Fatal(err)
	}
	seedWeekStats(t, store, "l1", "k1", map[int]map[string]float64{1: {"fg_made": 2, "xp_made": 3}}, map[int]float64{1: 9})
	seedWeekStats(t, store, "l1", "k2", map[int]map[string]float64{1: {"fg_made": 2, "xp_made": 1}}, map[int]float64{1: 7})

	job := newComputeMetrics(deps, JobComputeKickerMetrics, model.Kicker, kickerMetrics, "minmax")
	if _, err := job.Run(ctx, Request{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rows, _ := store.MetricRows(ctx, "l1", 2025, 1)
	for _, row := range rows {
		// identical fg_made across the population: zero range means null
		if v, ok := row.Normalized["fg_made"]; !ok || v != nil {
			t.Fatalf("zero-range fg_made should normalize to an explicit null, got %v", v)
		}
		if row.Normalized["xp_made"] == nil {
			t.Fatal("xp_made has spread and should normalize to a value")
		}
	}
}

func TestRefreshRecommendationsCachesAdvice(t *testing.T) {
	ctx := context.Background()
	deps, store := testDeps(t, &fakeFetcher{})
	seedLeague(t, store, model.League{ID: "l1", Season: 2025, CurrentWeek: 2, UserID: "u1", TeamKey: "l1.t.1"})
	if err := store.UpsertPlayers(ctx, "l1", []model.Player{
		{ID: "def1", Name: "Mine", Position: model.Defense},
		{ID: "def2", Name: "Theirs", Position: model.Defense},
		{ID: "def3", Name: "Free Agent", Position: model.Defense},
	}); err != nil {
		t.Fatal(err)
	}
	if err := store.ReplaceRosters(ctx, "l1", []model.RosterEntry{
		{TeamKey: "l1.t.1", PlayerID: "def1", Slot: "DEF"},
		{TeamKey: "l1.t.2", PlayerID: "def2", Slot: "DEF"},
	}); err != nil {
		t.Fatal(err)
	}
	score := func(v float64) *float64 { return &v }
	if err := store.UpsertMetricRows(ctx, []model.MetricRow{
		{LeagueID: "l1", SubjectID: "def1", Season: 2025, Week: 2, Normalized: map[string]*float64{"points": score(0.2)}},
		{LeagueID: "l1", SubjectID: "def2", Season: 2025, Week: 2, Normalized: map[string]*float64{"points": score(0.9)}},
		{LeagueID: "l1", SubjectID: "def3", Season: 2025, Week: 2, Normalized: map[string]*float64{"points": score(0.8)}},
	}); err != nil {
		t.Fatal(err)
	}

	res, err := (&refreshRecommendations{deps: deps}).Run(ctx, Request{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Records == 0 {
		t.Fatal("expected advice cached for the roster")
	}

	advice, ok, err := store.Advice(ctx, "l1", "u1")
	if err != nil || !ok {
		t.Fatalf("expected cached advice, ok=%v err=%v", ok, err)
	}
	ups := advice["def1"].AddUpgrades
	if len(ups) != 1 {
		t.Fatalf("expected one upgrade for def1, got %+v", ups)
	}
	// def2 is rostered by another team and must not surface as a candidate
	if ups[0].CandidateID != "def3" {
		t.Fatalf("candidate must be the free agent, got %s", ups[0].CandidateID)
	}
}

func TestAdvisorOnDemand(t *testing.T) {
	ctx := context.Background()
	deps, store := testDeps(t, &fakeFetcher{})
	seedLeague(t, store, model.League{ID: "l1", Season: 2025, CurrentWeek: 2, UserID: "u1", TeamKey: "l1.t.1"})
	if err := store.UpsertPlayers(ctx, "l1", []model.Player{
		{ID: "k1", Name: "Mine", Position: model.Kicker},
		{ID: "k2", Name: "Free Agent", Position: model.Kicker},
	}); err != nil {
		t.Fatal(err)
	}
	if err := store.ReplaceRosters(ctx, "l1", []model.RosterEntry{
		{TeamKey: "l1.t.1", PlayerID: "k1", Slot: "K"},
	}); err != nil {
		t.Fatal(err)
	}
	score := func(v float64) *float64 { return &v }
	if err := store.UpsertMetricRows(ctx, []model.MetricRow{
		{LeagueID: "l1", SubjectID: "k1", Season: 2025, Week: 2, Normalized: map[string]*float64{"points": score(0.1)}},
		{LeagueID: "l1", SubjectID: "k2", Season: 2025, Week: 2, Normalized: map[string]*float64{"points": score(0.7)}},
	}); err != nil {
		t.Fatal(err)
	}

	advisor := NewAdvisor(deps)
	advice, err := advisor.Advise(ctx, "l1", "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(advice["k1"].AddUpgrades) != 1 || advice["k1"].AddUpgrades[0].CandidateID != "k2" {
		t.Fatalf("expected the free-agent upgrade, got %+v", advice["k1"])
	}

	if _, err := advisor.Advise(ctx, "nope", "u1"); !errors.Is(err, ErrLeagueNotFound) {
		t.Fatalf("expected ErrLeagueNotFound, got %v", err)
	}
}
