package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	httpx "github.com/Saku-iyadurai/GivingteamChallenge/internal/http"
	"github.com/Saku-iyadurai/GivingteamChallenge/internal/domain"
	"github.com/Saku-iyadurai/GivingteamChallenge/internal/repository/memory"
	"github.com/Saku-iyadurai/GivingteamChallenge/internal/service/contribution"
	"github.com/Saku-iyadurai/GivingteamChallenge/internal/service/donation"
	"github.com/Saku-iyadurai/GivingteamChallenge/internal/service/leaderboard"
	"github.com/Saku-iyadurai/GivingteamChallenge/internal/service/team"
	"github.com/Saku-iyadurai/GivingteamChallenge/internal/ws"
	"github.com/Saku-iyadurai/GivingteamChallenge/pkg/logger"
)

type staticCauses []domain.Cause

func (s staticCauses) SearchCauses(context.Context, string) ([]domain.Cause, error) {
	return s, nil
}

func newTestServer(t *testing.T) *Client {
	t.Helper()
	log := logger.Discard()
	registry := memory.NewRegistry()
	hub := ws.NewHub(nil, log, nil)
	router := httpx.NewRouter(log, httpx.Services{
		Teams:         team.New(registry, nil, log),
		Contributions: contribution.New(registry, hub, nil, log),
		Leaderboard:   leaderboard.New(registry),
		Donations:     donation.New(memory.NewDonationStore(), nil, log),
		Causes:        staticCauses{{ID: "red-cross", Name: "American Red Cross"}},
		Hub:           hub,
	}, httpx.Options{Registerer: prometheus.NewRegistry()})
	srv := httptest.NewServer(router)
	t.Cleanup(func() {
		hub.Reset()
		srv.Close()
		router.Close()
	})
	cli, err := New(srv.URL)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return cli
}

func TestNewNormalisesBaseURL(t *testing.T) {
	cli, err := New(" localhost:5000/ ")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if cli.BaseURL() != "http://localhost:5000" {
		t.Fatalf("unexpected base url %q", cli.BaseURL())
	}
	if got := cli.websocketURL("/ws/teams/1"); got != "ws://localhost:5000/ws/teams/1" {
		t.Fatalf("unexpected websocket url %q", got)
	}

	secure, err := New("https://giving.example.org/")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if got := secure.websocketURL("/ws/teams/1"); got != "wss://giving.example.org/ws/teams/1" {
		t.Fatalf("unexpected secure websocket url %q", got)
	}

	def, _ := New("")
	if def.BaseURL() != defaultBaseURL {
		t.Fatalf("expected default base url, got %q", def.BaseURL())
	}
	if _, err := New("ftp://giving.example.org"); err == nil {
		t.Fatal("expected unsupported scheme error")
	}
}

func TestAPIErrorCarriesRequestID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Request-ID", "req-7")
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"error":"cause search unavailable"}`))
	}))
	defer srv.Close()
	cli, _ := New(srv.URL)

	_, err := cli.SearchCauses(context.Background(), "water")
	var apiErr APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != http.StatusBadGateway || apiErr.Message != "cause search unavailable" || apiErr.RequestID != "req-7" {
		t.Fatalf("unexpected error %+v", apiErr)
	}
}

func TestTeamLifecycle(t *testing.T) {
	cli := newTestServer(t)
	ctx := context.Background()

	created, err := cli.CreateTeam(ctx, "Alpha", 100)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID != 1 || created.Goal != 100 {
		t.Fatalf("unexpected team %+v", created)
	}
	if _, err := cli.Contribute(ctx, created.ID, "Bob", 40); err != nil {
		t.Fatalf("contribute: %v", err)
	}
	updated, err := cli.Contribute(ctx, created.ID, "Cara", 70)
	if err != nil {
		t.Fatalf("contribute: %v", err)
	}
	if updated.TotalContributions != 110 || len(updated.Members) != 2 {
		t.Fatalf("unexpected team %+v", updated)
	}

	got, err := cli.GetTeam(ctx, created.ID)
	if err != nil || got.TotalContributions != 110 {
		t.Fatalf("get team: %+v %v", got, err)
	}
	teams, err := cli.ListTeams(ctx)
	if err != nil || len(teams) != 1 {
		t.Fatalf("list teams: %d %v", len(teams), err)
	}
	board, err := cli.Leaderboard(ctx)
	if err != nil || len(board) != 1 || board[0].TotalContributions != 110 {
		t.Fatalf("leaderboard: %+v %v", board, err)
	}
}

func TestAPIErrors(t *testing.T) {
	cli := newTestServer(t)
	ctx := context.Background()

	_, err := cli.Contribute(ctx, 999, "Bob", 10)
	if !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	_, err = cli.CreateTeam(ctx, "", 100)
	var apiErr APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusBadRequest || apiErr.Message != "name: is required" {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestDonationsAndSearch(t *testing.T) {
	cli := newTestServer(t)
	ctx := context.Background()

	found, err := cli.SearchCauses(ctx, "disaster relief")
	if err != nil || len(found) != 1 || found[0].ID != "red-cross" {
		t.Fatalf("search: %+v %v", found, err)
	}
	d, err := cli.Donate(ctx, "red-cross", 25)
	if err != nil {
		t.Fatalf("donate: %v", err)
	}
	if d.ID == "" || d.NonprofitID != "red-cross" || d.Timestamp.IsZero() {
		t.Fatalf("unexpected donation %+v", d)
	}
	list, err := cli.ListDonations(ctx)
	if err != nil || len(list) != 1 || list[0].ID != d.ID {
		t.Fatalf("list donations: %+v %v", list, err)
	}
}

func TestWatchTeam(t *testing.T) {
	cli := newTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	created, err := cli.CreateTeam(ctx, "Alpha", 100)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	var mu sync.Mutex
	var seen []float64
	var lastProgress float64
	first := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- cli.WatchTeam(ctx, created.ID, func(team Team) error {
			mu.Lock()
			seen = append(seen, team.TotalContributions)
			lastProgress = team.Progress
			n := len(seen)
			mu.Unlock()
			if n == 1 {
				close(first)
			}
			if n == 3 {
				return ErrStopWatching
			}
			return nil
		})
	}()

	select {
	case <-first:
	case <-ctx.Done():
		t.Fatal("no initial snapshot")
	}
	if _, err := cli.Contribute(ctx, created.ID, "Bob", 40); err != nil {
		t.Fatalf("contribute: %v", err)
	}
	if _, err := cli.Contribute(ctx, created.ID, "Cara", 70); err != nil {
		t.Fatalf("contribute: %v", err)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("watch: %v", err)
		}
	case <-ctx.Done():
		t.Fatal("watch did not finish")
	}
	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 3 || seen[0] != 0 || seen[1] != 40 || seen[2] != 110 {
		t.Fatalf("unexpected snapshots %v", seen)
	}
	if lastProgress != 1.1 {
		t.Fatalf("unexpected progress %v", lastProgress)
	}
}

func TestWatchUnknownTeam(t *testing.T) {
	cli := newTestServer(t)
	err := cli.WatchTeam(context.Background(), 42, func(Team) error { return nil })
	if !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestWatchTeamStopsOnCancel(t *testing.T) {
	cli := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	created, err := cli.CreateTeam(ctx, "Alpha", 100)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	done := make(chan error, 1)
	go func() {
		done <- cli.WatchTeam(ctx, created.ID, func(Team) error {
			cancel()
			return nil
		})
	}()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected nil after cancel, got %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("watch did not return after cancel")
	}
}
