package domain

import (
	"math"
	"time"
)

// Team represents a fundraising group and its contribution ledger.
type Team struct {
	ID                 int64          `json:"id"`
	Name               string         `json:"name"`
	Goal               float64        `json:"goal"`
	TotalContributions float64        `json:"totalContributions"`
	Members            []Contribution `json:"members"`
	CreatedAt          time.Time      `json:"createdAt"`
}

// Contribution is a single named pledge applied to a team.
type Contribution struct {
	Name      string    `json:"name"`
	Amount    float64   `json:"amount"`
	CreatedAt time.Time `json:"createdAt"`
}

// LeaderboardEntry is the reduced team shape used for ranking.
type LeaderboardEntry struct {
	Name               string  `json:"name"`
	TotalContributions float64 `json:"totalContributions"`
}

// Clone returns a deep copy so callers never share the member slice.
func (t Team) Clone() Team {
	members := make([]Contribution, len(t.Members))
	copy(members, t.Members)
	t.Members = members
	return t
}

// Progress reports the share of the goal raised so far. It is always finite
// so it can be carried in JSON payloads.
func (t Team) Progress() float64 {
	if t.Goal <= 0 {
		return 0
	}
	p := t.TotalContributions / t.Goal
	if math.IsInf(p, 1) {
		return math.MaxFloat64
	}
	return p
}
