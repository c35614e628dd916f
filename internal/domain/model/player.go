package model

import "time"

// Position is a roster position group. Normalization populations are built
// per position, per week.
type Position string

const (
	Quarterback  Position = "QB"
	RunningBack  Position = "RB"
	WideReceiver Position = "WR"
	TightEnd     Position = "TE"
	Kicker       Position = "K"
	Defense      Position = "DEF"
)

// Injury statuses that make a player ineligible as a candidate.
const (
	InjuryOut              = "O"
	InjuryInjuredReserve   = "IR"
	InjuryPhysicallyUnable = "PUP"
)

// Bench-like slots. Players in these slots are not in the starting lineup.
const (
	SlotBench          = "BN"
	SlotInjuredReserve = "IR"
)

// League is the synced metadata for one fantasy league.
type League struct {
	ID          string
	Name        string
	Season      int
	CurrentWeek int
	UserID      string // owner of the linked account that surfaced this league
	TeamKey     string // the linked account's own team within the league
	UpdatedAt   time.Time
}

// Player is the synced master record for one player within a league's
// player pool.
type Player struct {
	ID           string
	Name         string
	Position     Position
	Team         string // pro team abbreviation
	InjuryStatus string // empty when healthy
	ByeWeek      int    // 0 when unknown
}

// Unavailable reports whether the player is flagged out by injury status.
func (p Player) Unavailable() bool {
	switch p.InjuryStatus {
	case InjuryOut, InjuryInjuredReserve, InjuryPhysicallyUnable:
		return true
	}
	return false
}

// OnByeNext reports whether the player's bye falls on the week after week.
func (p Player) OnByeNext(week int) bool {
	return p.ByeWeek != 0 && p.ByeWeek == week+1
}

// RosterEntry ties a player to a fantasy team and slot for the active week.
type RosterEntry struct {
	TeamKey  string
	PlayerID string
	Slot     string // e.g. "QB", "FLEX", "BN"
}

// RosteredPlayer is a player on the requesting user's roster with the
// computed weighted score for the active week.
type RosteredPlayer struct {
	Player
	TeamKey string
	Slot    string
	Score   float64
}

// BenchSlot reports whether the rostered player currently sits on a
// bench-like slot.
func (r RosteredPlayer) BenchSlot() bool {
	return r.Slot == SlotBench || r.Slot == SlotInjuredReserve
}

// CandidatePlayer is an eligible non-rostered player considered as a
// replacement.
type CandidatePlayer struct {
	Player
	Score float64
}

// Transaction is one add/drop/trade record from the provider feed.
type Transaction struct {
	ID       string
	LeagueID string
	Type     string // add, drop, trade
	PlayerID string
	TeamKey  string
	Week     int
	At       time.Time
}

// PlayerWeekStat is one raw stat row for a (league, player, season, week).
// Stats maps provider stat keys to values, e.g. "points_allowed" or
// "fg_made".
type PlayerWeekStat struct {
	LeagueID string
	PlayerID string
	Season   int
	Week     int
	Points   float64
	Stats    map[string]float64
}
