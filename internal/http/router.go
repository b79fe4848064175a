package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Saku-iyadurai/GivingteamChallenge/internal/domain"
	"github.com/Saku-iyadurai/GivingteamChallenge/internal/service/contribution"
	"github.com/Saku-iyadurai/GivingteamChallenge/internal/service/donation"
	"github.com/Saku-iyadurai/GivingteamChallenge/internal/service/leaderboard"
	"github.com/Saku-iyadurai/GivingteamChallenge/internal/service/team"
	"github.com/Saku-iyadurai/GivingteamChallenge/internal/ws"
)

// CauseSearcher looks up nonprofits on the upstream provider.
type CauseSearcher interface {
	SearchCauses(ctx context.Context, query string) ([]domain.Cause, error)
}

// Services groups the application services exposed over HTTP.
type Services struct {
	Teams         team.Service
	Contributions contribution.Service
	Leaderboard   leaderboard.Projector
	Donations     donation.Service
	Causes        CauseSearcher
	Hub           *ws.Hub
}

// Options tunes router behaviour. Zero values select defaults.
type Options struct {
	Limiter       RateLimiter
	Registerer    prometheus.Registerer
	Gatherer      prometheus.Gatherer
	HealthChecks  map[string]func(context.Context) error
	AllowedOrigin string
	SendBuffer    int
	PingEvery     time.Duration
	SSEHeartbeat  time.Duration
}

// Router wires HTTP endpoints to services.
type Router struct {
	mux           *http.ServeMux
	logger        *slog.Logger
	team          team.Service
	contribution  contribution.Service
	leaderboard   leaderboard.Projector
	donation      donation.Service
	causes        CauseSearcher
	hub           *ws.Hub
	upgrader      websocket.Upgrader
	limiter       RateLimiter
	metrics       *httpMetrics
	metricsView   http.Handler
	healthChecks  map[string]func(context.Context) error
	allowedOrigin string
	clientOpts    ws.ClientOptions
	sseHeartbeat  time.Duration
}

const maxBodyBytes = 64 << 10

// NewRouter assembles routes with dependencies.
func NewRouter(logger *slog.Logger, svc Services, opts Options) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	if svc.Hub == nil {
		svc.Hub = ws.NewHub(nil, logger, nil)
	}
	r := &Router{
		mux:          http.NewServeMux(),
		logger:       logger,
		team:         svc.Teams,
		contribution: svc.Contributions,
		leaderboard:  svc.Leaderboard,
		donation:     svc.Donations,
		causes:       svc.Causes,
		hub:          svc.Hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		limiter:       opts.Limiter,
		metrics:       newHTTPMetrics(opts.Registerer),
		healthChecks:  opts.HealthChecks,
		allowedOrigin: strings.TrimSpace(opts.AllowedOrigin),
		clientOpts:    ws.ClientOptions{SendBuffer: opts.SendBuffer, PingEvery: opts.PingEvery},
		sseHeartbeat:  opts.SSEHeartbeat,
	}
	if r.limiter == nil {
		r.limiter = NewMemoryRateLimiter()
	}
	if opts.Gatherer != nil {
		r.metricsView = promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})
	} else {
		r.metricsView = promhttp.Handler()
	}
	r.register()
	return r
}

// ServeHTTP applies CORS headers and delegates to the underlying mux.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if r.allowedOrigin != "" {
		headers := w.Header()
		headers.Set("Access-Control-Allow-Origin", r.allowedOrigin)
		headers.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		headers.Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
		if req.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	r.mux.ServeHTTP(w, req)
}

// Close releases background resources.
func (r *Router) Close() {
	if r.limiter != nil {
		r.limiter.Close()
	}
}

func (r *Router) register() {
	r.mux.HandleFunc("/healthz", r.audit("/healthz", r.handleHealthz))
	r.mux.Handle("/metrics", r.metricsView)
	r.mux.HandleFunc("/api/teams", r.audit("/api/teams", r.handleTeams))
	r.mux.HandleFunc("/api/teams/", r.audit("/api/teams/{id}", r.handleTeamSubroutes))
	r.mux.HandleFunc("/api/leaderboard", r.audit("/api/leaderboard", r.handleLeaderboard))
	r.mux.HandleFunc("/api/search/", r.audit("/api/search/{term}", r.limited(policySearch, r.handleSearch)))
	r.mux.HandleFunc("/api/donate", r.audit("/api/donate", r.limited(policyDonate, r.handleDonate)))
	r.mux.HandleFunc("/api/donations", r.audit("/api/donations", r.handleDonations))
	r.mux.HandleFunc("/ws/", r.audit("/ws/{id}", r.limited(policyLive, r.handleTeamWS)))
}

func (r *Router) methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func (r *Router) notFound(w http.ResponseWriter) {
	writeError(w, http.StatusNotFound, "not found")
}
