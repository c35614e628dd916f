package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/camr1993/fantasy-football-assistant-sub000/internal/domain/model"
)

// MemStore implements Store with in-process maps. It backs development runs
// without a database and the package's own tests; the claim path holds the
// store mutex for the whole select-and-mark step, giving the same
// exclusivity the SQL implementation gets from row locking.
type MemStore struct {
	mu sync.Mutex

	jobs         map[string]*model.Job
	leagues      map[string]model.League
	players      map[string]map[string]model.Player      // league -> id -> player
	rosters      map[string][]model.RosterEntry          // league -> entries
	transactions map[string]map[string]model.Transaction // league -> tx id -> tx
	weekStats    map[string]model.PlayerWeekStat         // key -> row
	metricRows   map[string]model.MetricRow              // key -> row
	credentials  map[string]model.Credential
	advice       map[string]model.Advice // league|user -> advice

	now func() time.Time
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		jobs:         map[string]*model.Job{},
		leagues:      map[string]model.League{},
		players:      map[string]map[string]model.Player{},
		rosters:      map[string][]model.RosterEntry{},
		transactions: map[string]map[string]model.Transaction{},
		weekStats:    map[string]model.PlayerWeekStat{},
		metricRows:   map[string]model.MetricRow{},
		credentials:  map[string]model.Credential{},
		advice:       map[string]model.Advice{},
		now:          time.Now,
	}
}

func (s *MemStore) EnqueueJob(ctx context.Context, p EnqueueParams) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	now := s.now().UTC()
	s.jobs[id] = &model.Job{
		ID:        id,
		Name:      p.Name,
		Status:    model.JobPending,
		Priority:  p.Priority,
		Week:      p.Week,
		UserID:    p.UserID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return id, nil
}

func (s *MemStore) ClaimNext(ctx context.Context) (*model.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var best *model.Job
	for _, j := range s.jobs {
		if j.Status != model.JobPending {
			continue
		}
		if best == nil ||
			j.Priority < best.Priority ||
			(j.Priority == best.Priority && j.CreatedAt.Before(best.CreatedAt)) {
			best = j
		}
	}
	if best == nil {
		return nil, nil
	}
	best.Status = model.JobRunning
	best.UpdatedAt = s.now().UTC()
	cp := *best
	return &cp, nil
}

func (s *MemStore) CompleteJob(ctx context.Context, id string, runTime time.Duration) error {
	return s.finish(id, model.JobCompleted, runTime, "")
}

func (s *MemStore) FailJob(ctx context.Context, id string, runTime time.Duration, msg string) error {
	return s.finish(id, model.JobFailed, runTime, msg)
}

func (s *MemStore) finish(id string, status model.JobStatus, runTime time.Duration, msg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[id]
	if !ok {
		return ErrJobNotFound
	}
	if j.Status.Terminal() {
		return ErrTerminalState
	}
	ms := runTime.Milliseconds()
	j.Status = status
	j.RunTimeMS = &ms
	if msg != "" {
		j.ErrorMessage = &msg
	}
	j.UpdatedAt = s.now().UTC()
	return nil
}

func (s *MemStore) PendingJobs(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, j := range s.jobs {
		if j.Status == model.JobPending {
			n++
		}
	}
	return n, nil
}

// Job returns a copy of one job row, for tests and the enqueue CLI.
func (s *MemStore) Job(ctx context.Context, id string) (*model.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[id]
	if !ok {
		return nil, ErrJobNotFound
	}
	cp := *j
	return &cp, nil
}

func (s *MemStore) UpsertLeague(ctx context.Context, lg model.League) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	lg.UpdatedAt = s.now().UTC()
	s.leagues[lg.ID] = lg
	return nil
}

func (s *MemStore) Leagues(ctx context.Context, userID string) ([]model.League, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.League
	for _, lg := range s.leagues {
		if userID == "" || lg.UserID == userID {
			out = append(out, lg)
		}
	}
	return out, nil
}

func (s *MemStore) UpsertPlayers(ctx context.Context, leagueID string, players []model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.players[leagueID] == nil {
		s.players[leagueID] = map[string]model.Player{}
	}
	for _, p := range players {
		s.players[leagueID][p.ID] = p
	}
	return nil
}

func (s *MemStore) Players(ctx context.Context, leagueID string) ([]model.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Player, 0, len(s.players[leagueID]))
	for _, p := range s.players[leagueID] {
		out = append(out, p)
	}
	return out, nil
}

func (s *MemStore) ReplaceRosters(ctx context.Context, leagueID string, entries []model.RosterEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rosters[leagueID] = append([]model.RosterEntry(nil), entries...)
	return nil
}

func (s *MemStore) Rosters(ctx context.Context, leagueID string) ([]model.RosterEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.RosterEntry(nil), s.rosters[leagueID]...), nil
}

func (s *MemStore) InsertTransactions(ctx context.Context, leagueID string, txs []model.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.transactions[leagueID] == nil {
		s.transactions[leagueID] = map[string]model.Transaction{}
	}
	for _, tx := range txs {
		s.transactions[leagueID][tx.ID] = tx
	}
	return nil
}

func weekStatKey(leagueID, playerID string, season, week int) string {
	return fmt.Sprintf("%s|%s|%d|%d", leagueID, playerID, season, week)
}

func (s *MemStore) UpsertWeekStats(ctx context.Context, rows []model.PlayerWeekStat) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range rows {
		s.weekStats[weekStatKey(r.LeagueID, r.PlayerID, r.Season, r.Week)] = r
	}
	return nil
}

func (s *MemStore) WeekStats(ctx context.Context, leagueID string, season, fromWeek, toWeek int) ([]model.PlayerWeekStat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.PlayerWeekStat
	for _, r := range s.weekStats {
		if r.LeagueID == leagueID && r.Season == season && r.Week >= fromWeek && r.Week <= toWeek {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *MemStore) UpsertMetricRows(ctx context.Context, rows []model.MetricRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range rows {
		s.metricRows[weekStatKey(r.LeagueID, r.SubjectID, r.Season, r.Week)] = r
	}
	return nil
}

func (s *MemStore) MetricRows(ctx context.Context, leagueID string, season, week int) ([]model.MetricRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.MetricRow
	for _, r := range s.metricRows {
		if r.LeagueID == leagueID && r.Season == season && r.Week == week {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *MemStore) Credential(ctx context.Context, userID string) (*model.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cred, ok := s.credentials[userID]
	if !ok {
		return nil, nil
	}
	cp := cred
	return &cp, nil
}

func (s *MemStore) SaveCredential(ctx context.Context, cred *model.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credentials[cred.UserID] = *cred
	return nil
}

func adviceKey(leagueID, userID string) string {
	return leagueID + "|" + userID
}

func (s *MemStore) SaveAdvice(ctx context.Context, leagueID, userID string, advice model.Advice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.advice[adviceKey(leagueID, userID)] = advice
	return nil
}

func (s *MemStore) Advice(ctx context.Context, leagueID, userID string) (model.Advice, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.advice[adviceKey(leagueID, userID)]
	return a, ok, nil
}

