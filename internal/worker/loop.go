// Package worker runs the claim/execute/record loop over the durable job
// queue. One loop per process; horizontal scale comes from the store's
// atomic claim, not from coordination between workers.
package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/camr1993/fantasy-football-assistant-sub000/internal/adapters/storage"
	"github.com/camr1993/fantasy-football-assistant-sub000/internal/domain/model"
	"github.com/camr1993/fantasy-football-assistant-sub000/internal/jobs"
	"github.com/camr1993/fantasy-football-assistant-sub000/pkg/logger"
	"github.com/camr1993/fantasy-football-assistant-sub000/pkg/metrics"
)

// State is the loop's current phase, surfaced on the health endpoint.
type State string

const (
	StateIdle      State = "idle"
	StateClaiming  State = "claiming"
	StateExecuting State = "executing"
	StateRecording State = "recording"
	StateDraining  State = "draining"
	StateStopped   State = "stopped"
)

var allStates = []string{
	string(StateIdle), string(StateClaiming), string(StateExecuting),
	string(StateRecording), string(StateDraining), string(StateStopped),
}

// CredentialSource resolves the credential a job runs under. nil,nil means
// no usable credential exists.
type CredentialSource interface {
	Get(ctx context.Context, userID string) (*model.Credential, error)
}

// Lifecycle is the compute control hook invoked while draining.
type Lifecycle interface {
	Stop(ctx context.Context)
}

const (
	defaultMaxJobs    = 50
	defaultMaxRuntime = 3 * time.Hour
	defaultIdleSleep  = 5 * time.Second
)

// Loop is the worker state machine. Construct with New, run once with Run;
// a Loop is not reusable after Run returns.
type Loop struct {
	store     storage.Store
	registry  *jobs.Registry
	creds     CredentialSource
	lifecycle Lifecycle
	logger    logger.Logger

	maxJobs    int
	maxRuntime time.Duration
	idleSleep  time.Duration
	now        func() time.Time

	mu        sync.RWMutex
	state     State
	jobsDone  int
	startedAt time.Time
}

// New constructs a Loop bound to its collaborators. lifecycle may be nil
// when no compute control API is configured.
func New(store storage.Store, registry *jobs.Registry, creds CredentialSource, lifecycle Lifecycle, opts ...Option) *Loop {
	l := &Loop{
		store:      store,
		registry:   registry,
		creds:      creds,
		lifecycle:  lifecycle,
		logger:     logger.Get().Named("worker"),
		maxJobs:    defaultMaxJobs,
		maxRuntime: defaultMaxRuntime,
		idleSleep:  defaultIdleSleep,
		now:        time.Now,
		state:      StateIdle,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// State returns the loop's current phase.
func (l *Loop) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// JobsDone returns the number of jobs recorded this run.
func (l *Loop) JobsDone() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.jobsDone
}

// StartedAt returns the run's start time; zero before Run.
func (l *Loop) StartedAt() time.Time {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.startedAt
}

func (l *Loop) setState(s State) {
	l.mu.Lock()
	l.state = s
	l.mu.Unlock()
	metrics.UpdateWorkerState(string(s), allStates)
}

// Run drives the loop until the context cancels, the job ceiling is hit, or
// the wall-clock ceiling passes. It always drains before returning: the
// compute lifecycle stop hook runs exactly once.
func (l *Loop) Run(ctx context.Context) error {
	l.mu.Lock()
	l.startedAt = l.now()
	l.mu.Unlock()
	deadline := l.now().Add(l.maxRuntime)

	var drainErr error
	for {
		if ctx.Err() != nil {
			l.logger.Info(ctx, "drain: context canceled")
			break
		}
		if l.JobsDone() >= l.maxJobs {
			l.logger.Info(ctx, "drain: job ceiling reached", logger.Int("jobs", l.JobsDone()))
			break
		}
		if l.now().After(deadline) {
			l.logger.Info(ctx, "drain: runtime ceiling reached")
			break
		}

		l.setState(StateClaiming)
		if pending, err := l.store.PendingJobs(ctx); err == nil {
			metrics.UpdatePendingJobs(pending)
		}
		job, err := l.store.ClaimNext(ctx)
		if err != nil {
			l.logger.Error(ctx, "claim failed", logger.Error(err))
			l.idle(ctx)
			continue
		}
		if job == nil {
			l.idle(ctx)
			continue
		}

		if err := l.execute(ctx, job); err != nil {
			drainErr = err
			break
		}
	}

	l.setState(StateDraining)
	if l.lifecycle != nil {
		l.lifecycle.Stop(ctx)
	}
	l.setState(StateStopped)
	l.logger.Info(ctx, "worker stopped", logger.Int("jobs_done", l.JobsDone()))
	return drainErr
}

// idle parks the loop between claims; wakes early on cancellation.
func (l *Loop) idle(ctx context.Context) {
	l.setState(StateIdle)
	select {
	case <-ctx.Done():
	case <-time.After(l.idleSleep):
	}
}

// execute runs one claimed job through Executing and Recording. An unknown
// name fails immediately, before any credential work. Only a missing
// administrative credential escapes as an error; everything else, panics
// included, records a terminal state and lets the loop continue.
func (l *Loop) execute(ctx context.Context, job *model.Job) error {
	l.setState(StateExecuting)
	started := l.now()

	fn, ok := l.registry.Lookup(job.Name)
	if !ok {
		l.record(ctx, job, started, fmt.Errorf("unknown job name %q", job.Name))
		return nil
	}

	userID := ""
	if job.UserID != nil {
		userID = *job.UserID
	}
	cred, err := l.creds.Get(ctx, userID)
	if err != nil {
		l.record(ctx, job, started, fmt.Errorf("resolve credential: %w", err))
		return nil
	}
	if cred == nil {
		if userID == "" {
			l.record(ctx, job, started, ErrAdminCredentialMissing)
			return ErrAdminCredentialMissing
		}
		l.record(ctx, job, started, fmt.Errorf("no credential for user %s", userID))
		return nil
	}

	res, runErr := l.runSafely(ctx, fn, jobs.Request{Credential: cred, Week: job.Week, UserID: job.UserID})
	if runErr != nil {
		l.record(ctx, job, started, runErr)
		return nil
	}
	l.logger.Info(ctx, "job completed",
		logger.String("job", job.Name),
		logger.String("id", job.ID),
		logger.Int("records", res.Records),
		logger.String("summary", res.Summary),
	)
	l.record(ctx, job, started, nil)
	return nil
}

// runSafely converts a job panic into an error so the terminal state is
// always recorded.
func (l *Loop) runSafely(ctx context.Context, fn jobs.SyncFunc, req jobs.Request) (res jobs.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panic: %v", r)
		}
	}()
	return fn.Run(ctx, req)
}

// record writes the terminal state for one job and bumps the run counters.
func (l *Loop) record(ctx context.Context, job *model.Job, started time.Time, runErr error) {
	l.setState(StateRecording)
	elapsed := l.now().Sub(started)

	status := "completed"
	if runErr != nil {
		status = "failed"
		l.logger.Warn(ctx, "job failed",
			logger.String("job", job.Name),
			logger.String("id", job.ID),
			logger.Error(runErr),
		)
		if err := l.store.FailJob(ctx, job.ID, elapsed, runErr.Error()); err != nil {
			l.logger.Error(ctx, "record failure", logger.String("id", job.ID), logger.Error(err))
		}
	} else {
		if err := l.store.CompleteJob(ctx, job.ID, elapsed); err != nil {
			l.logger.Error(ctx, "record completion", logger.String("id", job.ID), logger.Error(err))
		}
	}

	metrics.RecordJobProcessed(job.Name, status)
	metrics.ObserveJobDuration(job.Name, elapsed)
	l.mu.Lock()
	l.jobsDone++
	l.mu.Unlock()
}
