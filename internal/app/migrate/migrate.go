// Package migrate applies the journal schema with goose.
package migrate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/Saku-iyadurai/GivingteamChallenge/db"
)

const (
	runTimeout  = time.Minute
	pingTimeout = 5 * time.Second
)

// Runner owns a goose provider bound to the journal pool.
type Runner struct {
	pool     *pgxpool.Pool
	sqlDB    *sql.DB
	provider *goose.Provider
	log      *slog.Logger
}

// MigrationState is one row of Status output.
type MigrationState struct {
	Version   int64
	Path      string
	Applied   bool
	AppliedAt time.Time
}

// New returns a migration runner. An empty migrationsDir selects the
// migrations embedded in the binary.
func New(pool *pgxpool.Pool, migrationsDir string, log *slog.Logger) (*Runner, error) {
	if pool == nil {
		return nil, errors.New("nil pool provided")
	}
	if log == nil {
		log = slog.Default()
	}
	fsys, err := resolveSource(migrationsDir)
	if err != nil {
		return nil, err
	}
	sqlDB := stdlib.OpenDBFromPool(pool)
	provider, err := goose.NewProvider(goose.DialectPostgres, sqlDB, fsys)
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("configure goose: %w", err)
	}
	return &Runner{
		pool:     pool,
		sqlDB:    sqlDB,
		provider: provider,
		log:      log.With("component", "migrate"),
	}, nil
}

// resolveSource returns a filesystem whose root holds the .sql files.
func resolveSource(migrationsDir string) (fs.FS, error) {
	if migrationsDir == "" {
		return fs.Sub(db.Migrations, db.MigrationsRoot)
	}
	info, err := os.Stat(migrationsDir)
	if err != nil {
		return nil, fmt.Errorf("locate migrations dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("migrations path %s is not a directory", migrationsDir)
	}
	return os.DirFS(migrationsDir), nil
}

// Ensure applies pending migrations.
func (r *Runner) Ensure(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()
	results, err := r.provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	for _, res := range results {
		r.log.Info("migration applied", "version", res.Source.Version, "path", res.Source.Path, "duration", res.Duration)
	}
	if len(results) == 0 {
		r.log.Debug("schema up to date")
	}
	return nil
}

// Status reports applied and pending migrations in version order.
func (r *Runner) Status(ctx context.Context) ([]MigrationState, error) {
	statuses, err := r.provider.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("migration status: %w", err)
	}
	out := make([]MigrationState, 0, len(statuses))
	for _, st := range statuses {
		out = append(out, MigrationState{
			Version:   st.Source.Version,
			Path:      st.Source.Path,
			Applied:   st.State == goose.StateApplied,
			AppliedAt: st.AppliedAt,
		})
	}
	return out, nil
}

// Down rolls back the latest migration, or every migration above
// targetVersion when it is positive.
func (r *Runner) Down(ctx context.Context, targetVersion int64) error {
	ctx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()
	if targetVersion > 0 {
		results, err := r.provider.DownTo(ctx, targetVersion)
		if err != nil {
			return fmt.Errorf("rollback to version %d: %w", targetVersion, err)
		}
		r.log.Info("rollback complete", "target", targetVersion, "reverted", len(results))
		return nil
	}
	res, err := r.provider.Down(ctx)
	if err != nil {
		return fmt.Errorf("rollback latest migration: %w", err)
	}
	r.log.Info("rollback complete", "version", res.Source.Version)
	return nil
}

// Ping checks the pool can reach the database.
func (r *Runner) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := r.pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	return nil
}

// Close releases the goose connection wrapper and the pool.
func (r *Runner) Close() {
	_ = r.provider.Close()
	r.pool.Close()
}
