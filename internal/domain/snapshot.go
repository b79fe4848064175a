package domain

import "encoding/json"

type snapshotMember struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

type snapshot struct {
	ID                 int64            `json:"id"`
	Name               string           `json:"name"`
	Goal               float64          `json:"goal"`
	TotalContributions float64          `json:"totalContributions"`
	Progress           float64          `json:"progress"`
	Members            []snapshotMember `json:"members"`
}

// MarshalSnapshot encodes the live-update payload pushed to team listeners.
// Members are always present so every push carries the same shape.
func MarshalSnapshot(team Team) ([]byte, error) {
	members := make([]snapshotMember, 0, len(team.Members))
	for _, m := range team.Members {
		members = append(members, snapshotMember{Name: m.Name, Amount: m.Amount})
	}
	return json.Marshal(snapshot{
		ID:                 team.ID,
		Name:               team.Name,
		Goal:               team.Goal,
		TotalContributions: team.TotalContributions,
		Progress:           team.Progress(),
		Members:            members,
	})
}
