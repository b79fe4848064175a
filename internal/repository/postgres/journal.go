package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Saku-iyadurai/GivingteamChallenge/internal/domain"
	"github.com/Saku-iyadurai/GivingteamChallenge/internal/repository"
)

// Journal appends accepted teams, contributions and donations to PostgreSQL.
// Team ids restart on every process start, so rows are scoped by run id.
type Journal struct {
	pool  *pgxpool.Pool
	runID string
}

var _ repository.Journal = (*Journal)(nil)

// NewJournal constructs a Journal for one process run.
func NewJournal(pool *pgxpool.Pool, runID string) (*Journal, error) {
	if pool == nil {
		return nil, errors.New("nil pool provided")
	}
	if runID == "" {
		return nil, errors.New("empty run id")
	}
	return &Journal{pool: pool, runID: runID}, nil
}

// RunID returns the identifier scoping this process's rows.
func (j *Journal) RunID() string {
	return j.runID
}

// RecordTeam inserts a team row.
func (j *Journal) RecordTeam(ctx context.Context, team domain.Team) error {
	const query = `INSERT INTO journal_teams (run_id, team_id, name, goal, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (run_id, team_id) DO NOTHING`
	_, err := j.pool.Exec(ctx, query, j.runID, team.ID, team.Name, team.Goal, team.CreatedAt)
	return err
}

// RecordContribution inserts a contribution row.
func (j *Journal) RecordContribution(ctx context.Context, teamID int64, contribution domain.Contribution) error {
	const query = `INSERT INTO journal_contributions (run_id, team_id, contributor, amount, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := j.pool.Exec(ctx, query, j.runID, teamID, contribution.Name, contribution.Amount, contribution.CreatedAt)
	return err
}

// RecordDonation inserts a nonprofit donation row.
func (j *Journal) RecordDonation(ctx context.Context, donation domain.Donation) error {
	const query = `INSERT INTO journal_donations (id, run_id, nonprofit_id, amount, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING`
	_, err := j.pool.Exec(ctx, query, donation.ID, j.runID, donation.NonprofitID, donation.Amount, donation.Timestamp)
	return err
}

// TotalsForRun sums journaled contributions per team for a run. The migrate
// command's reconcile mode prints it; it is never used to rebuild the registry.
func (j *Journal) TotalsForRun(ctx context.Context, runID string) (map[int64]float64, error) {
	const query = `SELECT team_id, COALESCE(SUM(amount), 0)
		FROM journal_contributions
		WHERE run_id = $1
		GROUP BY team_id`
	rows, err := j.pool.Query(ctx, query, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := make(map[int64]float64)
	for rows.Next() {
		var teamID int64
		var total float64
		if err := rows.Scan(&teamID, &total); err != nil {
			return nil, err
		}
		totals[teamID] = total
	}
	return totals, rows.Err()
}
