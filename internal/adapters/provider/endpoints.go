package provider

import (
	"context"
	"fmt"

	"github.com/camr1993/fantasy-football-assistant-sub000/internal/domain/model"
)

// Typed endpoint helpers. Each returns decoded model entities; callers never
// see provider JSON.

// LeagueSettings fetches league metadata including the current week.
func (c *Client) LeagueSettings(ctx context.Context, cred *model.Credential, leagueID string) (model.League, error) {
	resp, err := c.Call(ctx, cred, fmt.Sprintf("/league/%s/settings", leagueID))
	if err != nil {
		return model.League{}, err
	}
	return decodeLeague(resp.Body)
}

// Rosters fetches every team's roster entries for a league.
func (c *Client) Rosters(ctx context.Context, cred *model.Credential, leagueID string) ([]model.RosterEntry, error) {
	items, err := c.Pages(ctx, cred, fmt.Sprintf("/league/%s/rosters", leagueID))
	if err != nil {
		return nil, err
	}
	out := make([]model.RosterEntry, 0, len(items))
	for _, item := range items {
		entry, err := decodeRosterEntry(item)
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, nil
}

// Transactions fetches the add/drop/trade feed for a league.
func (c *Client) Transactions(ctx context.Context, cred *model.Credential, leagueID string) ([]model.Transaction, error) {
	items, err := c.Pages(ctx, cred, fmt.Sprintf("/league/%s/transactions", leagueID))
	if err != nil {
		return nil, err
	}
	out := make([]model.Transaction, 0, len(items))
	for _, item := range items {
		tx, err := decodeTransaction(item, leagueID)
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, nil
}

// Players fetches the league player pool including injury status and bye
// weeks.
func (c *Client) Players(ctx context.Context, cred *model.Credential, leagueID string) ([]model.Player, error) {
	items, err := c.Pages(ctx, cred, fmt.Sprintf("/league/%s/players", leagueID))
	if err != nil {
		return nil, err
	}
	out := make([]model.Player, 0, len(items))
	for _, item := range items {
		p, err := decodePlayer(item)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// WeekStats fetches per-player stat rows for one league week.
func (c *Client) WeekStats(ctx context.Context, cred *model.Credential, leagueID string, season, week int) ([]model.PlayerWeekStat, error) {
	items, err := c.Pages(ctx, cred, fmt.Sprintf("/league/%s/stats?week=%d", leagueID, week))
	if err != nil {
		return nil, err
	}
	out := make([]model.PlayerWeekStat, 0, len(items))
	for _, item := range items {
		row, err := decodeWeekStats(item, leagueID, season)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, nil
}
