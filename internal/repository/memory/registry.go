// Package memory holds the process-local source of truth for teams and
// donations. State lives for the life of the process and is never persisted.
package memory

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/Saku-iyadurai/GivingteamChallenge/internal/domain"
	"github.com/Saku-iyadurai/GivingteamChallenge/internal/repository"
)

// Registry is the in-memory team registry. The zero value is ready to use;
// NewRegistry is equivalent.
type Registry struct {
	mu     sync.RWMutex
	teams  []*domain.Team
	byID   map[int64]*domain.Team
	nextID int64
	now    func() time.Time
}

var _ repository.TeamRepository = (*Registry)(nil)

// NewRegistry returns an empty registry whose first team gets id 1.
func NewRegistry() *Registry {
	r := &Registry{now: time.Now}
	r.Reset()
	return r
}

// Reset drops every team and restarts the id sequence.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.teams = nil
	r.byID = make(map[int64]*domain.Team)
	r.nextID = 1
}

// CreateTeam validates and stores a new team.
func (r *Registry) CreateTeam(ctx context.Context, name string, goal float64) (*domain.Team, error) {
	name = strings.TrimSpace(name)
	if err := domain.ValidateName("name", name); err != nil {
		return nil, err
	}
	if err := domain.ValidateAmount("goal", goal); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.byID == nil {
		r.byID = make(map[int64]*domain.Team)
	}
	if r.nextID < 1 {
		r.nextID = 1
	}
	team := &domain.Team{
		ID:        r.nextID,
		Name:      name,
		Goal:      goal,
		Members:   []domain.Contribution{},
		CreatedAt: r.clock().UTC(),
	}
	r.nextID++
	r.teams = append(r.teams, team)
	r.byID[team.ID] = team
	snapshot := team.Clone()
	return &snapshot, nil
}

// ListTeams returns snapshots of every team in creation order.
func (r *Registry) ListTeams(ctx context.Context) ([]domain.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	teams := make([]domain.Team, 0, len(r.teams))
	for _, team := range r.teams {
		teams = append(teams, team.Clone())
	}
	return teams, nil
}

// GetTeamByID returns a snapshot of the team.
func (r *Registry) GetTeamByID(ctx context.Context, teamID int64) (*domain.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	team, ok := r.byID[teamID]
	if !ok {
		return nil, fmt.Errorf("team %d: %w", teamID, repository.ErrNotFound)
	}
	snapshot := team.Clone()
	return &snapshot, nil
}

// AppendContribution adds a member record and its amount to the team total in
// one step and returns the updated snapshot.
func (r *Registry) AppendContribution(ctx context.Context, teamID int64, contribution domain.Contribution) (*domain.Team, error) {
	contribution.Name = strings.TrimSpace(contribution.Name)
	if err := domain.ValidateName("name", contribution.Name); err != nil {
		return nil, err
	}
	if err := domain.ValidateAmount("amount", contribution.Amount); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	team, ok := r.byID[teamID]
	if !ok {
		return nil, fmt.Errorf("team %d: %w", teamID, repository.ErrNotFound)
	}
	next := team.TotalContributions + contribution.Amount
	if math.IsInf(next, 0) {
		return nil, domain.Invalid("amount", "would overflow team total")
	}
	if contribution.CreatedAt.IsZero() {
		contribution.CreatedAt = r.clock().UTC()
	}
	team.Members = append(team.Members, contribution)
	team.TotalContributions = next
	snapshot := team.Clone()
	return &snapshot, nil
}

func (r *Registry) clock() time.Time {
	if r.now == nil {
		return time.Now()
	}
	return r.now()
}

// Len reports the number of registered teams.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.teams)
}
