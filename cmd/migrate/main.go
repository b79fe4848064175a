package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Saku-iyadurai/GivingteamChallenge/internal/app/migrate"
	"github.com/Saku-iyadurai/GivingteamChallenge/internal/repository/postgres"
	"github.com/Saku-iyadurai/GivingteamChallenge/pkg/config"
	"github.com/Saku-iyadurai/GivingteamChallenge/pkg/logger"
)

func main() {
	timeout := flag.Duration("timeout", time.Minute, "command timeout")
	target := flag.Int64("target", 0, "target version for down (0 reverts only the latest)")
	dir := flag.String("dir", "", "migrations directory (defaults to DB_MIGRATIONS_DIR, then the embedded set)")
	runID := flag.String("run", "", "journal run id to sum for reconcile")
	flag.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), "usage: migrate [flags] up|status|down|reconcile")
		flag.PrintDefaults()
	}
	flag.Parse()

	opts := options{command: "up", target: *target, runID: strings.TrimSpace(*runID)}
	if flag.NArg() > 0 {
		opts.command = flag.Arg(0)
	}

	cfg := config.LoadAPIConfig()
	log := logger.ForEnvironment(cfg.Environment, "migrate", logger.ParseLevel(cfg.LogLevel))

	if err := opts.validate(); err != nil {
		log.Error("invalid arguments", "error", err)
		flag.Usage()
		os.Exit(2)
	}

	if !cfg.JournalEnabled() {
		log.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	migrationsDir := cfg.MigrationsDir
	if *dir != "" {
		migrationsDir = *dir
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	runner, err := migrate.New(pool, migrationsDir, log)
	if err != nil {
		pool.Close()
		log.Error("failed to configure migration runner", "error", err)
		os.Exit(1)
	}

	// The runner owns the pool, so reconcile has to finish before Close.
	err = run(ctx, runner, pool, opts)
	runner.Close()
	if err != nil {
		log.Error("migration command failed", "command", opts.command, "error", err)
		os.Exit(1)
	}
	log.Info("migration command completed", "command", opts.command)
}

type options struct {
	command string
	target  int64
	runID   string
}

func (o options) validate() error {
	switch o.command {
	case "up", "down", "status":
		return nil
	case "reconcile":
		if o.runID == "" {
			return errors.New("reconcile requires -run")
		}
		return nil
	default:
		return fmt.Errorf("unsupported command %q", o.command)
	}
}

func run(ctx context.Context, runner *migrate.Runner, pool *pgxpool.Pool, opts options) error {
	switch opts.command {
	case "up":
		return runner.Ensure(ctx)
	case "down":
		return runner.Down(ctx, opts.target)
	case "reconcile":
		journal, err := postgres.NewJournal(pool, opts.runID)
		if err != nil {
			return err
		}
		totals, err := journal.TotalsForRun(ctx, journal.RunID())
		if err != nil {
			return err
		}
		return writeTotals(os.Stdout, totals)
	case "status":
		states, err := runner.Status(ctx)
		if err != nil {
			return err
		}
		for _, st := range states {
			applied := "pending"
			if st.Applied {
				applied = st.AppliedAt.Format(time.RFC3339)
			}
			fmt.Printf("%05d\t%s\t%s\n", st.Version, st.Path, applied)
		}
		return nil
	default:
		return fmt.Errorf("unsupported command %q", opts.command)
	}
}

// writeTotals prints one "team_id<TAB>total" line per team, ordered by id.
func writeTotals(w io.Writer, totals map[int64]float64) error {
	for _, id := range slices.Sorted(maps.Keys(totals)) {
		if _, err := fmt.Fprintf(w, "%d\t%s\n", id, strconv.FormatFloat(totals[id], 'f', -1, 64)); err != nil {
			return err
		}
	}
	return nil
}
