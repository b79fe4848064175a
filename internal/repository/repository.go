package repository

import (
	"context"

	"github.com/Saku-iyadurai/GivingteamChallenge/internal/domain"
)

// TeamRepository owns teams and their contribution ledgers.
type TeamRepository interface {
	CreateTeam(ctx context.Context, name string, goal float64) (*domain.Team, error)
	ListTeams(ctx context.Context) ([]domain.Team, error)
	GetTeamByID(ctx context.Context, teamID int64) (*domain.Team, error)
	AppendContribution(ctx context.Context, teamID int64, contribution domain.Contribution) (*domain.Team, error)
}

// DonationRepository stores direct nonprofit donations.
type DonationRepository interface {
	AppendDonation(ctx context.Context, donation domain.Donation) error
	ListDonations(ctx context.Context) ([]domain.Donation, error)
}

// Journal records accepted mutations for reconciliation. It is write-only;
// nothing reads team state back from it.
type Journal interface {
	RecordTeam(ctx context.Context, team domain.Team) error
	RecordContribution(ctx context.Context, teamID int64, contribution domain.Contribution) error
	RecordDonation(ctx context.Context, donation domain.Donation) error
}

// NopJournal discards every record.
type NopJournal struct{}

func (NopJournal) RecordTeam(context.Context, domain.Team) error { return nil }
func (NopJournal) RecordContribution(context.Context, int64, domain.Contribution) error {
	return nil
}
func (NopJournal) RecordDonation(context.Context, domain.Donation) error { return nil }
