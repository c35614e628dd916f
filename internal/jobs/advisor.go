package jobs

import (
	"context"
	"fmt"

	"github.com/camr1993/fantasy-football-assistant-sub000/internal/domain/model"
)

// Advisor serves on-demand advice for the read API. Unlike the refresh job
// it never touches the cache: it rebuilds from the current metric rows on
// every call.
type Advisor struct {
	deps Deps
}

// NewAdvisor constructs an Advisor over the same dependencies the jobs use.
func NewAdvisor(deps Deps) *Advisor {
	return &Advisor{deps: deps}
}

// Advise builds advice for one of the user's leagues.
func (a *Advisor) Advise(ctx context.Context, leagueID, userID string) (model.Advice, error) {
	leagues, err := a.deps.Store.Leagues(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list leagues: %w", err)
	}
	var lg *model.League
	for i := range leagues {
		if leagues[i].ID == leagueID {
			lg = &leagues[i]
			break
		}
	}
	if lg == nil {
		return nil, fmt.Errorf("%w: %s for user %s", ErrLeagueNotFound, leagueID, userID)
	}
	if lg.CurrentWeek < 1 {
		return nil, fmt.Errorf("league %s has no current week yet", leagueID)
	}

	in, err := buildAdviceInput(ctx, a.deps, *lg, lg.CurrentWeek)
	if err != nil {
		return nil, err
	}
	return a.deps.Engine.Build(ctx, in), nil
}
