package compute

import (
	"net/http"

	"github.com/camr1993/fantasy-football-assistant-sub000/pkg/logger"
)

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(m *Manager) {
		if h != nil {
			m.http = h
		}
	}
}

// WithToken sets the control API bearer token.
func WithToken(token string) Option {
	return func(m *Manager) {
		m.token = token
	}
}

// WithLogger sets a custom logger for the manager.
func WithLogger(l logger.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}
