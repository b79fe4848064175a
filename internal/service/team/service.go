package team

import (
	"context"
	"log/slog"

	"github.com/Saku-iyadurai/GivingteamChallenge/internal/domain"
	"github.com/Saku-iyadurai/GivingteamChallenge/internal/repository"
)

// Service handles team workflows.
type Service struct {
	repo    repository.TeamRepository
	journal repository.Journal
	logger  *slog.Logger
}

// New constructs a Service. A nil journal records nothing.
func New(repo repository.TeamRepository, journal repository.Journal, logger *slog.Logger) Service {
	if journal == nil {
		journal = repository.NopJournal{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return Service{repo: repo, journal: journal, logger: logger}
}

// Create registers a team. Goal arrives as the client sent it and is coerced
// to a positive number.
func (s Service) Create(ctx context.Context, name, rawGoal string) (*domain.Team, error) {
	if err := domain.ValidateName("name", name); err != nil {
		return nil, err
	}
	goal, err := domain.ParseAmount("goal", rawGoal)
	if err != nil {
		return nil, err
	}
	team, err := s.repo.CreateTeam(ctx, name, goal)
	if err != nil {
		return nil, err
	}
	if err := s.journal.RecordTeam(ctx, *team); err != nil {
		s.logger.Warn("journal team failed", "team_id", team.ID, "error", err)
	}
	s.logger.Info("team created", "team_id", team.ID, "goal", team.Goal)
	return team, nil
}

// List returns every team.
func (s Service) List(ctx context.Context) ([]domain.Team, error) {
	return s.repo.ListTeams(ctx)
}

// Get returns a single team.
func (s Service) Get(ctx context.Context, teamID int64) (*domain.Team, error) {
	return s.repo.GetTeamByID(ctx, teamID)
}
