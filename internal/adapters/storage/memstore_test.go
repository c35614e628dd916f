package storage

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/camr1993/fantasy-football-assistant-sub000/internal/domain/model"
)

func intPtr(n int) *int { return &n }

func TestClaimNextOrdering(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	// Force distinct creation times so the tiebreak is observable.
	now := time.Now()
	times := []time.Time{now, now.Add(time.Second), now.Add(2 * time.Second)}
	i := 0
	s.now = func() time.Time { t := times[i%len(times)]; i++; return t }

	lowPrio, _ := s.EnqueueJob(ctx, EnqueueParams{Name: "sync_players", Priority: 5})
	highPrio, _ := s.EnqueueJob(ctx, EnqueueParams{Name: "sync_rosters", Priority: 1})
	highPrioLater, _ := s.EnqueueJob(ctx, EnqueueParams{Name: "sync_transactions", Priority: 1})

	first, err := s.ClaimNext(ctx)
	if err != nil || first == nil {
		t.Fatalf("claim: %v %v", first, err)
	}
	if first.ID != highPrio {
		t.Errorf("expected lowest priority value first, got %s", first.Name)
	}
	second, _ := s.ClaimNext(ctx)
	if second.ID != highPrioLater {
		t.Errorf("expected created_at tiebreak, got %s", second.Name)
	}
	third, _ := s.ClaimNext(ctx)
	if third.ID != lowPrio {
		t.Errorf("expected priority 5 last, got %s", third.Name)
	}
	if none, _ := s.ClaimNext(ctx); none != nil {
		t.Errorf("expected empty queue, got %+v", none)
	}
}

func TestClaimNextExclusive(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	const pending = 40
	const claimers = 8
	for i := 0; i < pending; i++ {
		if _, err := s.EnqueueJob(ctx, EnqueueParams{Name: "sync_week_stats", Priority: 1, Week: intPtr(i + 1)}); err != nil {
			t.Fatalf("enqueue: %v", err)
		}
	}

	var mu sync.Mutex
	seen := map[string]int{}
	var wg sync.WaitGroup
	for c := 0; c < claimers; c++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				j, err := s.ClaimNext(ctx)
				if err != nil {
					t.Errorf("claim: %v", err)
					return
				}
				if j == nil {
					return
				}
				mu.Lock()
				seen[j.ID]++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if len(seen) != pending {
		t.Fatalf("expected %d claimed jobs, got %d", pending, len(seen))
	}
	for id, n := range seen {
		if n != 1 {
			t.Errorf("job %s claimed %d times", id, n)
		}
	}
}

func TestTerminalTransitions(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	id, _ := s.EnqueueJob(ctx, EnqueueParams{Name: "sync_rosters", Priority: 1})
	if _, err := s.ClaimNext(ctx); err != nil {
		t.Fatalf("claim: %v", err)
	}

	if err := s.FailJob(ctx, id, 1500*time.Millisecond, "provider returned 500"); err != nil {
		t.Fatalf("fail: %v", err)
	}
	j, _ := s.Job(ctx, id)
	if j.Status != model.JobFailed {
		t.Errorf("expected failed, got %s", j.Status)
	}
	if j.RunTimeMS == nil || *j.RunTimeMS != 1500 {
		t.Error("run time must be recorded on failure")
	}
	if j.ErrorMessage == nil || *j.ErrorMessage == "" {
		t.Error("error message must be recorded on failure")
	}

	// Terminal states never regress.
	if err := s.CompleteJob(ctx, id, time.Second); !errors.Is(err, ErrTerminalState) {
		t.Errorf("expected ErrTerminalState, got %v", err)
	}
	if err := s.FailJob(ctx, "missing", time.Second, "x"); !errors.Is(err, ErrJobNotFound) {
		t.Errorf("expected ErrJobNotFound, got %v", err)
	}
}

func TestMetricRowUpsertIdempotent(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	row := model.MetricRow{
		LeagueID:  "lg-1",
		SubjectID: "def-1",
		Season:    2025,
		Week:      3,
		Raw:       map[string]float64{"points_allowed": 17},
		Rolling:   map[string]float64{"points_allowed": 15.33},
	}
	if err := s.UpsertMetricRows(ctx, []model.MetricRow{row}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := s.UpsertMetricRows(ctx, []model.MetricRow{row}); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	rows, err := s.MetricRows(ctx, "lg-1", 2025, 3)
	if err != nil {
		t.Fatalf("metric rows: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("upsert must overwrite, not duplicate: got %d rows", len(rows))
	}
}

func TestWeekStatsRange(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	for week := 1; week <= 5; week++ {
		err := s.UpsertWeekStats(ctx, []model.PlayerWeekStat{{
			LeagueID: "lg-1", PlayerID: "p1", Season: 2025, Week: week, Points: float64(week),
		}})
		if err != nil {
			t.Fatalf("upsert week %d: %v", week, err)
		}
	}

	rows, err := s.WeekStats(ctx, "lg-1", 2025, 2, 4)
	if err != nil {
		t.Fatalf("week stats: %v", err)
	}
	if len(rows) != 3 {
		t.Errorf("expected weeks 2-4, got %d rows", len(rows))
	}
}

func TestCredentialRoundTrip(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	missing, err := s.Credential(ctx, "nobody")
	if err != nil || missing != nil {
		t.Fatalf("missing credential should be nil,nil: %v %v", missing, err)
	}

	cred := &model.Credential{UserID: "u1", AccessToken: "tok", ExpiresAt: time.Now().Add(time.Hour)}
	if err := s.SaveCredential(ctx, cred); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := s.Credential(ctx, "u1")
	if err != nil || got == nil || got.AccessToken != "tok" {
		t.Fatalf("round trip failed: %+v %v", got, err)
	}
}
