package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	redis "github.com/redis/go-redis/v9"

	"github.com/Saku-iyadurai/GivingteamChallenge/internal/app/migrate"
	httpx "github.com/Saku-iyadurai/GivingteamChallenge/internal/http"
	"github.com/Saku-iyadurai/GivingteamChallenge/internal/repository"
	"github.com/Saku-iyadurai/GivingteamChallenge/internal/repository/memory"
	"github.com/Saku-iyadurai/GivingteamChallenge/internal/repository/postgres"
	"github.com/Saku-iyadurai/GivingteamChallenge/internal/service/causes"
	"github.com/Saku-iyadurai/GivingteamChallenge/internal/service/contribution"
	"github.com/Saku-iyadurai/GivingteamChallenge/internal/service/donation"
	"github.com/Saku-iyadurai/GivingteamChallenge/internal/service/leaderboard"
	"github.com/Saku-iyadurai/GivingteamChallenge/internal/service/team"
	"github.com/Saku-iyadurai/GivingteamChallenge/internal/ws"
	"github.com/Saku-iyadurai/GivingteamChallenge/pkg/config"
	"github.com/Saku-iyadurai/GivingteamChallenge/pkg/logger"
)

func main() {
	cfg := config.LoadAPIConfig()
	log := logger.ForEnvironment(cfg.Environment, "api", logger.ParseLevel(cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	healthChecks := make(map[string]func(context.Context) error)

	var journal repository.Journal = repository.NopJournal{}
	if cfg.JournalEnabled() {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}

		runner, err := migrate.New(pool, cfg.MigrationsDir, log)
		if err != nil {
			log.Error("failed to configure migrations", "error", err)
			os.Exit(1)
		}
		defer runner.Close()
		if err := runner.Ping(ctx); err != nil {
			log.Error("database ping failed", "error", err)
			os.Exit(1)
		}
		if err := runner.Ensure(ctx); err != nil {
			log.Error("migrations failed", "error", err)
			os.Exit(1)
		}

		pgJournal, err := postgres.NewJournal(pool, uuid.NewString())
		if err != nil {
			log.Error("failed to configure journal", "error", err)
			os.Exit(1)
		}
		journal = pgJournal
		healthChecks["database"] = pool.Ping
		log.Info("contribution journal enabled", "run_id", pgJournal.RunID())
	}

	var redisClient *redis.Client
	if addr := strings.TrimSpace(cfg.RedisAddr); addr != "" {
		client := redis.NewClient(&redis.Options{Addr: addr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := client.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			log.Warn("redis unavailable, using in-process rate limits and no search cache", "error", err)
			_ = client.Close()
		} else {
			redisClient = client
			defer redisClient.Close()
			healthChecks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
		}
	}

	registry := memory.NewRegistry()
	donations := memory.NewDonationStore()
	hub := ws.NewHub(ws.NewDirectory(), log, ws.NewMetrics(prometheus.DefaultRegisterer))

	searchOpts := causes.Options{
		BaseURL:    cfg.CauseSearchURL,
		APIKey:     cfg.CauseSearchKey,
		Take:       cfg.CauseSearchTake,
		HTTPClient: &http.Client{Timeout: cfg.CauseSearchTimeout},
	}
	limiter := httpx.NewMemoryRateLimiter()
	if redisClient != nil {
		limiter.Close()
		limiter = httpx.NewRedisRateLimiter(redisClient, log)
		searchOpts.Cache = causes.NewRedisCache(redisClient)
		searchOpts.CacheTTL = cfg.CauseCacheTTL
	}

	router := httpx.NewRouter(log, httpx.Services{
		Teams:         team.New(registry, journal, log),
		Contributions: contribution.New(registry, hub, journal, log),
		Leaderboard:   leaderboard.New(registry),
		Donations:     donation.New(donations, journal, log),
		Causes:        causes.NewSearcher(searchOpts, log),
		Hub:           hub,
	}, httpx.Options{
		Limiter:       limiter,
		HealthChecks:  healthChecks,
		AllowedOrigin: cfg.CORSAllowedOrigin,
		SendBuffer:    cfg.ListenerSendBuffer,
		PingEvery:     cfg.ListenerPingEvery,
		SSEHeartbeat:  cfg.SSEHeartbeatEvery,
	})
	defer router.Close()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errorCh := make(chan error, 1)
	go func() {
		log.Info("api server starting", "addr", cfg.Addr, "environment", cfg.Environment)
		errorCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGracePeriod)
		defer cancel()
		// Live listeners are hijacked connections that Shutdown does not track.
		hub.Reset()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
		}
		log.Info("api server stopped")
	case err := <-errorCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}
}
