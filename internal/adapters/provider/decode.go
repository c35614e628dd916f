package provider

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/camr1993/fantasy-football-assistant-sub000/internal/domain/model"
)

// This file is the single decoding boundary: raw provider JSON, including
// its numeric-id stat lists, converts into typed model entities here and
// nowhere else.

// statNames maps the provider's numeric stat ids to metric keys. Unknown
// ids are dropped at the boundary.
var statNames = map[int]string{
	5:  "points_allowed",
	8:  "sacks",
	12: "turnovers",
	19: "fg_made",
	20: "fg_attempted",
	21: "fg_long",
	22: "xp_made",
	31: "yards_allowed",
}

type rawLeague struct {
	Key         string `json:"league_key"`
	Name        string `json:"name"`
	Season      int    `json:"season"`
	CurrentWeek int    `json:"current_week"`
	TeamKey     string `json:"team_key"`
}

type rawRosterEntry struct {
	TeamKey   string `json:"team_key"`
	PlayerKey string `json:"player_key"`
	Slot      string `json:"selected_position"`
}

type rawTransaction struct {
	Key       string `json:"transaction_key"`
	Type      string `json:"type"`
	PlayerKey string `json:"player_key"`
	TeamKey   string `json:"team_key"`
	Week      int    `json:"week"`
	Timestamp int64  `json:"timestamp"`
}

type rawPlayer struct {
	Key          string `json:"player_key"`
	FullName     string `json:"full_name"`
	Position     string `json:"display_position"`
	ProTeam      string `json:"editorial_team_abbr"`
	InjuryStatus string `json:"status"`
	ByeWeek      int    `json:"bye_week"`
}

type rawStatPair struct {
	StatID int     `json:"stat_id"`
	Value  float64 `json:"value"`
}

type rawWeekStats struct {
	PlayerKey string        `json:"player_key"`
	Week      int           `json:"week"`
	Points    float64       `json:"total_points"`
	Stats     []rawStatPair `json:"stats"`
}

func decodeLeague(body []byte) (model.League, error) {
	var raw rawLeague
	if err := json.Unmarshal(body, &raw); err != nil {
		return model.League{}, fmt.Errorf("%w: league: %w", ErrDecode, err)
	}
	return model.League{
		ID:          raw.Key,
		Name:        raw.Name,
		Season:      raw.Season,
		CurrentWeek: raw.CurrentWeek,
		TeamKey:     raw.TeamKey,
	}, nil
}

func decodeRosterEntry(item json.RawMessage) (model.RosterEntry, error) {
	var raw rawRosterEntry
	if err := json.Unmarshal(item, &raw); err != nil {
		return model.RosterEntry{}, fmt.Errorf("%w: roster entry: %w", ErrDecode, err)
	}
	return model.RosterEntry{
		TeamKey:  raw.TeamKey,
		PlayerID: raw.PlayerKey,
		Slot:     raw.Slot,
	}, nil
}

func decodeTransaction(item json.RawMessage, leagueID string) (model.Transaction, error) {
	var raw rawTransaction
	if err := json.Unmarshal(item, &raw); err != nil {
		return model.Transaction{}, fmt.Errorf("%w: transaction: %w", ErrDecode, err)
	}
	return model.Transaction{
		ID:       raw.Key,
		LeagueID: leagueID,
		Type:     raw.Type,
		PlayerID: raw.PlayerKey,
		TeamKey:  raw.TeamKey,
		Week:     raw.Week,
		At:       time.Unix(raw.Timestamp, 0).UTC(),
	}, nil
}

func decodePlayer(item json.RawMessage) (model.Player, error) {
	var raw rawPlayer
	if err := json.Unmarshal(item, &raw); err != nil {
		return model.Player{}, fmt.Errorf("%w: player: %w", ErrDecode, err)
	}
	return model.Player{
		ID:           raw.Key,
		Name:         raw.FullName,
		Position:     model.Position(raw.Position),
		Team:         raw.ProTeam,
		InjuryStatus: raw.InjuryStatus,
		ByeWeek:      raw.ByeWeek,
	}, nil
}

func decodeWeekStats(item json.RawMessage, leagueID string, season int) (model.PlayerWeekStat, error) {
	var raw rawWeekStats
	if err := json.Unmarshal(item, &raw); err != nil {
		return model.PlayerWeekStat{}, fmt.Errorf("%w: week stats: %w", ErrDecode, err)
	}
	stats := make(map[string]float64, len(raw.Stats))
	for _, pair := range raw.Stats {
		name, ok := statNames[pair.StatID]
		if !ok {
			continue
		}
		stats[name] = pair.Value
	}
	return model.PlayerWeekStat{
		LeagueID: leagueID,
		PlayerID: raw.PlayerKey,
		Season:   season,
		Week:     raw.Week,
		Points:   raw.Points,
		Stats:    stats,
	}, nil
}
