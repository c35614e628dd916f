// Package compute starts and stops the remote compute instance hosting the
// worker, through its control API.
//
// Both operations are best effort: a control API failure is logged and
// swallowed, never propagated as a job failure. The worst case is an
// instance left running until an external reaper reclaims it.
package compute

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/camr1993/fantasy-football-assistant-sub000/pkg/logger"
	"github.com/camr1993/fantasy-football-assistant-sub000/pkg/metrics"
)

const defaultTimeout = 10 * time.Second

// instance is one compute instance as reported by the control API.
type instance struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// Manager drives the control API for one logical application.
type Manager struct {
	http    *http.Client
	baseURL string
	token   string
	appID   string
	logger  logger.Logger
}

// NewManager creates a lifecycle manager with configuration options.
func NewManager(baseURL, appID string, opts ...Option) *Manager {
	m := &Manager{
		http:    &http.Client{Timeout: defaultTimeout},
		baseURL: baseURL,
		appID:   appID,
		logger:  logger.Get().Named("lifecycle"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// EnsureRunning lists instances for the application and starts the first
// found, or creates one if none exist.
func (m *Manager) EnsureRunning(ctx context.Context) {
	instances, err := m.list(ctx)
	if err != nil {
		m.swallow(ctx, "ensure_running", err)
		return
	}
	if len(instances) == 0 {
		if err := m.create(ctx); err != nil {
			m.swallow(ctx, "ensure_running", err)
			return
		}
		metrics.RecordLifecycleOp("ensure_running", "created")
		m.logger.Info(ctx, "created compute instance", logger.String("app", m.appID))
		return
	}
	if err := m.post(ctx, fmt.Sprintf("/v1/instances/%s/start", instances[0].ID), nil); err != nil {
		m.swallow(ctx, "ensure_running", err)
		return
	}
	metrics.RecordLifecycleOp("ensure_running", "started")
	m.logger.Info(ctx, "started compute instance",
		logger.String("app", m.appID),
		logger.String("instance", instances[0].ID),
	)
}

// Stop lists instances and issues a stop against the first found.
func (m *Manager) Stop(ctx context.Context) {
	instances, err := m.list(ctx)
	if err != nil {
		m.swallow(ctx, "stop", err)
		return
	}
	if len(instances) == 0 {
		metrics.RecordLifecycleOp("stop", "none")
		return
	}
	if err := m.post(ctx, fmt.Sprintf("/v1/instances/%s/stop", instances[0].ID), nil); err != nil {
		m.swallow(ctx, "stop", err)
		return
	}
	metrics.RecordLifecycleOp("stop", "stopped")
	m.logger.Info(ctx, "stopped compute instance",
		logger.String("app", m.appID),
		logger.String("instance", instances[0].ID),
	)
}

func (m *Manager) swallow(ctx context.Context, op string, err error) {
	metrics.RecordLifecycleOp(op, "error")
	m.logger.Warn(ctx, "control API call failed",
		logger.String("op", op),
		logger.Error(err),
	)
}

func (m *Manager) list(ctx context.Context) ([]instance, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/v1/apps/%s/instances", m.baseURL, m.appID), nil)
	if err != nil {
		return nil, err
	}
	m.auth(req)

	resp, err := m.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list instances: %d: %s", resp.StatusCode, body)
	}
	var out []instance
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("list instances: %w", err)
	}
	return out, nil
}

func (m *Manager) create(ctx context.Context) error {
	payload, _ := json.Marshal(map[string]string{"app_id": m.appID})
	return m.post(ctx, fmt.Sprintf("/v1/apps/%s/instances", m.appID), payload)
}

func (m *Manager) post(ctx context.Context, path string, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	m.auth(req)

	resp, err := m.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("POST %s: %d: %s", path, resp.StatusCode, body)
	}
	return nil
}

func (m *Manager) auth(req *http.Request) {
	if m.token != "" {
		req.Header.Set("Authorization", "Bearer "+m.token)
	}
}
