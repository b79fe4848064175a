package causes

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/Saku-iyadurai/GivingteamChallenge/internal/domain"
	"github.com/Saku-iyadurai/GivingteamChallenge/pkg/logger"
)

const sampleResponse = `{"nonprofits":[
	{"slug":"red-cross","ein":"530196605","name":"American Red Cross","description":"Disaster relief","logoUrl":"https://example.org/rc.png"},
	{"slug":"","ein":"123456789","name":"No Slug Org","description":"Local food bank"}
]}`

func newUpstream(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestSearchCausesMapsNonprofits(t *testing.T) {
	var gotPath, gotKey, gotTake string
	srv := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("apiKey")
		gotTake = r.URL.Query().Get("take")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleResponse))
	})
	s := NewSearcher(Options{BaseURL: srv.URL + "/", APIKey: "pk_test"}, logger.Discard())

	causes, err := s.SearchCauses(context.Background(), "animals")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if gotPath != "/search/animals" || gotKey != "pk_test" || gotTake != "3" {
		t.Fatalf("unexpected upstream request path=%s key=%s take=%s", gotPath, gotKey, gotTake)
	}
	if len(causes) != 2 {
		t.Fatalf("expected 2 causes, got %d", len(causes))
	}
	first := causes[0]
	if first.ID != "red-cross" || first.Name != "American Red Cross" || first.Link != "https://www.every.org/red-cross" || first.LogoURL == "" {
		t.Fatalf("unexpected first cause %+v", first)
	}
	second := causes[1]
	if second.ID != "123456789" || second.Link != "" {
		t.Fatalf("expected ein fallback without link, got %+v", second)
	}
}

func TestSearchCausesHonoursTake(t *testing.T) {
	var gotTake string
	srv := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		gotTake = r.URL.Query().Get("take")
		_, _ = w.Write([]byte(`{"nonprofits":[]}`))
	})
	s := NewSearcher(Options{BaseURL: srv.URL, Take: 7}, logger.Discard())
	causes, err := s.SearchCauses(context.Background(), "water")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if gotTake != "7" || causes == nil || len(causes) != 0 {
		t.Fatalf("take=%s causes=%#v", gotTake, causes)
	}
}

func TestSearchCausesUpstreamFailures(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"status": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", http.StatusUnauthorized)
		},
		"malformed": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"nonprofits":`))
		},
	}
	for name, handler := range cases {
		t.Run(name, func(t *testing.T) {
			srv := newUpstream(t, handler)
			s := NewSearcher(Options{BaseURL: srv.URL}, logger.Discard())
			_, err := s.SearchCauses(context.Background(), "trees")
			var upstream *UpstreamError
			if !errors.As(err, &upstream) {
				t.Fatalf("expected UpstreamError, got %v", err)
			}
		})
	}
}

func TestSearchCausesTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	s := NewSearcher(Options{BaseURL: base, HTTPClient: &http.Client{Timeout: time.Second}}, logger.Discard())
	_, err := s.SearchCauses(context.Background(), "trees")
	var upstream *UpstreamError
	if !errors.As(err, &upstream) || upstream.Status != 0 {
		t.Fatalf("expected transport UpstreamError, got %v", err)
	}
}

func TestSearchCausesRequiresTerm(t *testing.T) {
	s := NewSearcher(Options{BaseURL: "http://unused.invalid"}, logger.Discard())
	if _, err := s.SearchCauses(context.Background(), "   "); !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

type mapCache struct {
	mu    sync.Mutex
	items map[string][]domain.Cause
	ttl   time.Duration
}

func (c *mapCache) Get(_ context.Context, key string) ([]domain.Cause, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.items[key]
	return v, ok, nil
}

func (c *mapCache) Set(_ context.Context, key string, causes []domain.Cause, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.items == nil {
		c.items = map[string][]domain.Cause{}
	}
	c.items[key] = causes
	c.ttl = ttl
	return nil
}

func TestSearchCausesUsesCache(t *testing.T) {
	var hits atomic.Int32
	srv := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(sampleResponse))
	})
	cache := &mapCache{}
	s := NewSearcher(Options{BaseURL: srv.URL, Cache: cache, CacheTTL: time.Minute}, logger.Discard())
	ctx := context.Background()

	if _, err := s.SearchCauses(ctx, "Animals"); err != nil {
		t.Fatalf("first search: %v", err)
	}
	causes, err := s.SearchCauses(ctx, "animals")
	if err != nil {
		t.Fatalf("second search: %v", err)
	}
	if hits.Load() != 1 {
		t.Fatalf("expected a single upstream call, got %d", hits.Load())
	}
	if len(causes) != 2 || cache.ttl != time.Minute {
		t.Fatalf("unexpected cached result %d causes ttl=%v", len(causes), cache.ttl)
	}
}

func TestSearchCausesFallsBackWhenRedisUnavailable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	_ = ln.Close()

	client := redis.NewClient(&redis.Options{Addr: addr, MaxRetries: -1, DialTimeout: 200 * time.Millisecond})
	t.Cleanup(func() { _ = client.Close() })

	var hits atomic.Int32
	srv := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(sampleResponse))
	})
	s := NewSearcher(Options{BaseURL: srv.URL, Cache: NewRedisCache(client), CacheTTL: time.Minute}, logger.Discard())

	causes, err := s.SearchCauses(context.Background(), "animals")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(causes) != 2 || hits.Load() != 1 {
		t.Fatalf("expected upstream result, got %d causes after %d calls", len(causes), hits.Load())
	}
}
