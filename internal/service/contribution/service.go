package contribution

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/Saku-iyadurai/GivingteamChallenge/internal/domain"
	"github.com/Saku-iyadurai/GivingteamChallenge/internal/repository"
)

// Broadcaster pushes an encoded team snapshot to a team's listeners.
type Broadcaster interface {
	Broadcast(teamID int64, payload []byte)
}

// Service applies contributions and notifies listeners.
type Service struct {
	repo    repository.TeamRepository
	hub     Broadcaster
	journal repository.Journal
	logger  *slog.Logger
	// seq spans mutation and dispatch so broadcasts leave in mutation order.
	seq *sync.Mutex
}

// New constructs a contribution service.
func New(repo repository.TeamRepository, hub Broadcaster, journal repository.Journal, logger *slog.Logger) Service {
	if journal == nil {
		journal = repository.NopJournal{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return Service{
		repo:    repo,
		hub:     hub,
		journal: journal,
		logger:  logger.With("component", "contribution"),
		seq:     &sync.Mutex{},
	}
}

// Contribute validates the request, appends it to the team and broadcasts the
// updated snapshot. The snapshot is returned whether or not anyone listens.
func (s Service) Contribute(ctx context.Context, teamID int64, contributor, rawAmount string) (*domain.Team, error) {
	contributor = strings.TrimSpace(contributor)
	if err := domain.ValidateName("name", contributor); err != nil {
		return nil, err
	}
	amount, err := domain.ParseAmount("amount", rawAmount)
	if err != nil {
		return nil, err
	}

	team, record, err := s.apply(ctx, teamID, domain.Contribution{Name: contributor, Amount: amount})
	if err != nil {
		return nil, err
	}
	if err := s.journal.RecordContribution(ctx, teamID, record); err != nil {
		s.logger.Warn("journal contribution failed", "team_id", teamID, "error", err)
	}
	s.logger.Info("contribution accepted", "team_id", teamID, "amount", amount, "total", team.TotalContributions)
	return team, nil
}

func (s Service) apply(ctx context.Context, teamID int64, c domain.Contribution) (*domain.Team, domain.Contribution, error) {
	s.seq.Lock()
	defer s.seq.Unlock()
	team, err := s.repo.AppendContribution(ctx, teamID, c)
	if err != nil {
		return nil, domain.Contribution{}, err
	}
	record := team.Members[len(team.Members)-1]
	s.broadcast(*team)
	return team, record, nil
}

func (s Service) broadcast(team domain.Team) {
	if s.hub == nil {
		return
	}
	payload, err := domain.MarshalSnapshot(team)
	if err != nil {
		s.logger.Warn("failed to marshal team snapshot", "team_id", team.ID, "error", err)
		return
	}
	s.hub.Broadcast(team.ID, payload)
}
