package leaderboard

import (
	"context"
	"sort"

	"github.com/Saku-iyadurai/GivingteamChallenge/internal/domain"
)

// TeamLister is the read side of the team registry.
type TeamLister interface {
	ListTeams(ctx context.Context) ([]domain.Team, error)
}

// Projector ranks teams by total contributions.
type Projector struct {
	teams TeamLister
}

// New returns a Projector reading from teams.
func New(teams TeamLister) Projector {
	return Projector{teams: teams}
}

// Project returns every team ranked by total, highest first. Teams with equal
// totals keep creation order. The registry is left untouched.
func (p Projector) Project(ctx context.Context) ([]domain.LeaderboardEntry, error) {
	teams, err := p.teams.ListTeams(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(teams, func(i, j int) bool {
		return teams[i].TotalContributions > teams[j].TotalContributions
	})
	entries := make([]domain.LeaderboardEntry, 0, len(teams))
	for _, team := range teams {
		entries = append(entries, domain.LeaderboardEntry{
			Name:               team.Name,
			TotalContributions: team.TotalContributions,
		})
	}
	return entries, nil
}
