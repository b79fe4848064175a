package causes

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Saku-iyadurai/GivingteamChallenge/internal/domain"
)

const (
	defaultTake    = 3
	profileBaseURL = "https://www.every.org/"
	maxErrorBody   = 4 << 10
)

// UpstreamError reports a failed call to the cause search provider.
type UpstreamError struct {
	Status int
	Err    error
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("cause search upstream returned status %d", e.Status)
	}
	return fmt.Sprintf("cause search upstream: %v", e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Cache stores search results keyed by normalised query.
type Cache interface {
	Get(ctx context.Context, key string) ([]domain.Cause, bool, error)
	Set(ctx context.Context, key string, causes []domain.Cause, ttl time.Duration) error
}

// Options configures a Searcher.
type Options struct {
	BaseURL    string
	APIKey     string
	Take       int
	HTTPClient *http.Client
	Cache      Cache
	CacheTTL   time.Duration
}

// Searcher queries the every.org partner API for nonprofits.
type Searcher struct {
	baseURL  string
	apiKey   string
	take     int
	http     *http.Client
	cache    Cache
	cacheTTL time.Duration
	logger   *slog.Logger
}

// NewSearcher builds a Searcher. Results are cached only when both a cache
// and a positive TTL are supplied.
func NewSearcher(opts Options, logger *slog.Logger) *Searcher {
	if opts.Take <= 0 {
		opts.Take = defaultTake
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Searcher{
		baseURL:  strings.TrimRight(opts.BaseURL, "/"),
		apiKey:   opts.APIKey,
		take:     opts.Take,
		http:     opts.HTTPClient,
		cache:    opts.Cache,
		cacheTTL: opts.CacheTTL,
		logger:   logger.With("component", "causes"),
	}
}

type searchResponse struct {
	Nonprofits []nonprofit `json:"nonprofits"`
}

type nonprofit struct {
	Slug        string `json:"slug"`
	EIN         string `json:"ein"`
	Name        string `json:"name"`
	Description string `json:"description"`
	LogoURL     string `json:"logoUrl"`
}

// SearchCauses returns nonprofits matching query.
func (s *Searcher) SearchCauses(ctx context.Context, query string) ([]domain.Cause, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.Invalid("term", "is required")
	}
	key := strings.ToLower(query)
	if cached, ok := s.lookup(ctx, key); ok {
		return cached, nil
	}

	causes, err := s.fetch(ctx, query)
	if err != nil {
		return nil, err
	}
	s.store(ctx, key, causes)
	return causes, nil
}

func (s *Searcher) fetch(ctx context.Context, query string) ([]domain.Cause, error) {
	params := url.Values{}
	if s.apiKey != "" {
		params.Set("apiKey", s.apiKey)
	}
	params.Set("take", strconv.Itoa(s.take))
	endpoint := fmt.Sprintf("%s/search/%s?%s", s.baseURL, url.PathEscape(query), params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &UpstreamError{Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		s.logger.Warn("cause search request failed", "error", err)
		return nil, &UpstreamError{Err: fmt.Errorf("perform request: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		s.logger.Warn("cause search rejected", "status", resp.StatusCode, "body", strings.TrimSpace(string(body)))
		return nil, &UpstreamError{Status: resp.StatusCode}
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &UpstreamError{Err: fmt.Errorf("decode response: %w", err)}
	}
	causes := make([]domain.Cause, 0, len(payload.Nonprofits))
	for _, np := range payload.Nonprofits {
		causes = append(causes, toCause(np))
	}
	return causes, nil
}

func toCause(np nonprofit) domain.Cause {
	id := np.Slug
	if id == "" {
		id = np.EIN
	}
	cause := domain.Cause{
		ID:          id,
		Name:        np.Name,
		Description: np.Description,
		LogoURL:     np.LogoURL,
	}
	if np.Slug != "" {
		cause.Link = profileBaseURL + url.PathEscape(np.Slug)
	}
	return cause
}

func (s *Searcher) lookup(ctx context.Context, key string) ([]domain.Cause, bool) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return nil, false
	}
	causes, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("cause cache read failed", "error", err)
		return nil, false
	}
	return causes, ok
}

func (s *Searcher) store(ctx context.Context, key string, causes []domain.Cause) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return
	}
	if err := s.cache.Set(ctx, key, causes, s.cacheTTL); err != nil {
		s.logger.Warn("cause cache write failed", "error", err)
	}
}
