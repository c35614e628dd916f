// Package credentials resolves provider access tokens for jobs, refreshing
// expired tokens transparently through a collaborator.
package credentials

import (
	"context"
	"fmt"
	"time"

	"github.com/camr1993/fantasy-football-assistant-sub000/internal/domain/model"
	"github.com/camr1993/fantasy-football-assistant-sub000/pkg/logger"
)

const defaultSkew = time.Minute

// Store is the slice of the storage contract this package needs.
type Store interface {
	Credential(ctx context.Context, userID string) (*model.Credential, error)
	SaveCredential(ctx context.Context, cred *model.Credential) error
}

// Refresher exchanges an expired credential for a fresh one. Token issuance
// itself is an external concern; the pipeline only calls this boundary.
type Refresher interface {
	Refresh(ctx context.Context, cred *model.Credential) (*model.Credential, error)
}

// Provider hands out valid credentials. A nil credential (with nil error)
// means the job cannot run, not a crash.
type Provider struct {
	store     Store
	refresher Refresher
	skew      time.Duration
	now       func() time.Time
	logger    logger.Logger
}

// Option applies a configuration option to the Provider.
type Option func(*Provider)

// WithSkew refreshes tokens this long before their actual expiry.
func WithSkew(d time.Duration) Option {
	return func(p *Provider) {
		if d > 0 {
			p.skew = d
		}
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(p *Provider) {
		if now != nil {
			p.now = now
		}
	}
}

// WithLogger sets a custom logger for the provider.
func WithLogger(l logger.Logger) Option {
	return func(p *Provider) {
		if l != nil {
			p.logger = l
		}
	}
}

// New constructs a Provider. refresher may be nil, in which case expired
// credentials resolve to nil.
func New(store Store, refresher Refresher, opts ...Option) *Provider {
	p := &Provider{
		store:     store,
		refresher: refresher,
		skew:      defaultSkew,
		now:       time.Now,
		logger:    logger.Get().Named("credentials"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Get resolves the credential for userID; an empty userID resolves the
// administrative credential. Returns nil,nil when no usable credential
// exists.
func (p *Provider) Get(ctx context.Context, userID string) (*model.Credential, error) {
	if userID == "" {
		userID = model.AdminUserID
	}
	cred, err := p.store.Credential(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load credential for %s: %w", userID, err)
	}
	if cred == nil {
		return nil, nil
	}
	if !cred.ExpiredAt(p.now().Add(p.skew)) {
		return cred, nil
	}

	if p.refresher == nil {
		p.logger.Warn(ctx, "credential expired and no refresher configured",
			logger.String("user", userID))
		return nil, nil
	}
	fresh, err := p.refresher.Refresh(ctx, cred)
	if err != nil {
		return nil, fmt.Errorf("refresh credential for %s: %w", userID, err)
	}
	fresh.UserID = userID
	if err := p.store.SaveCredential(ctx, fresh); err != nil {
		return nil, fmt.Errorf("persist refreshed credential for %s: %w", userID, err)
	}
	p.logger.Debug(ctx, "credential refreshed", logger.String("user", userID))
	return fresh, nil
}
