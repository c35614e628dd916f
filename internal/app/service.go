// Package app is the composition root: it wires configuration, storage,
// the provider client, the job registry, the worker loop, and the HTTP
// surface into one runnable service.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/camr1993/fantasy-football-assistant-sub000/internal/adapters/api"
	"github.com/camr1993/fantasy-football-assistant-sub000/internal/adapters/compute"
	"github.com/camr1993/fantasy-football-assistant-sub000/internal/adapters/credentials"
	"github.com/camr1993/fantasy-football-assistant-sub000/internal/adapters/provider"
	"github.com/camr1993/fantasy-football-assistant-sub000/internal/adapters/storage"
	"github.com/camr1993/fantasy-football-assistant-sub000/internal/config"
	"github.com/camr1993/fantasy-football-assistant-sub000/internal/domain/recommend"
	"github.com/camr1993/fantasy-football-assistant-sub000/internal/jobs"
	"github.com/camr1993/fantasy-football-assistant-sub000/internal/worker"
	"github.com/camr1993/fantasy-football-assistant-sub000/pkg/logger"
)

// Service owns the worker loop and its HTTP surface for one process.
type Service struct {
	cfg    *config.Config
	logger logger.Logger

	store  storage.Store
	pg     *storage.PGStore
	loop   *worker.Loop
	server *http.Server
}

// New wires the service from configuration. An empty Postgres DSN selects
// the in-memory store, which only makes sense for dev runs.
func New(ctx context.Context, cfg *config.Config) (*Service, error) {
	log := logger.Get().Named("app")

	var (
		store storage.Store
		pg    *storage.PGStore
	)
	if cfg.PostgresDSN == "" {
		log.Warn(ctx, "no postgres dsn configured, using in-memory store")
		store = storage.NewMemStore()
	} else {
		var err error
		pg, err = storage.Connect(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("storage: %w", err)
		}
		store = pg
	}

	fetch := provider.NewClient(cfg.ProviderBaseURL,
		provider.WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.ProviderTimeoutSec) * time.Second}),
		provider.WithMaxAttempts(cfg.FetchMaxAttempts),
		provider.WithBackoffBase(cfg.FetchBackoff()),
		provider.WithPageSize(cfg.FetchPageSize),
	)

	var refresher credentials.Refresher
	if cfg.ProviderTokenURL != "" {
		refresher = credentials.NewHTTPRefresher(cfg.ProviderTokenURL, cfg.ProviderClientID, cfg.ProviderClientSecret)
	}
	creds := credentials.New(store, refresher,
		credentials.WithSkew(time.Duration(cfg.CredentialSkewSec)*time.Second))

	deps := jobs.Deps{
		Store:  store,
		Fetch:  fetch,
		Engine: recommend.New(recommend.WithLogger(logger.Get().Named("recommend"))),
		Config: cfg,
		Logger: logger.Get().Named("jobs"),
	}
	registry := jobs.NewRegistry(deps)

	var lifecycle worker.Lifecycle
	if cfg.ControlAPIURL != "" {
		lifecycle = compute.NewManager(cfg.ControlAPIURL, cfg.ControlAppID,
			compute.WithToken(cfg.ControlAPIToken))
	}

	loop := worker.New(store, registry, creds, lifecycle,
		worker.WithMaxJobs(cfg.MaxJobsPerRun),
		worker.WithMaxRuntime(cfg.MaxRuntime()),
	)

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.NewRouter(loop, jobs.NewAdvisor(deps)),
		ReadHeaderTimeout: 5 * time.Second,
	}

	return &Service{
		cfg:    cfg,
		logger: log,
		store:  store,
		pg:     pg,
		loop:   loop,
		server: server,
	}, nil
}

// Run serves HTTP and drives the worker loop until ctx cancels or the loop
// drains on its own ceilings. The HTTP listener stays up for the loop's
// whole lifetime so health stays observable while draining.
func (s *Service) Run(ctx context.Context) error {
	httpErr := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "http listening", logger.String("addr", s.cfg.Addr))
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			httpErr <- err
			return
		}
		httpErr <- nil
	}()

	loopErr := s.loop.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		s.logger.Error(ctx, "http shutdown", logger.Error(err))
	}
	if err := <-httpErr; err != nil && loopErr == nil {
		loopErr = fmt.Errorf("http server: %w", err)
	}

	if s.pg != nil {
		s.pg.Close()
	}
	return loopErr
}
