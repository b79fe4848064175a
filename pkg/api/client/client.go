package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

const (
	defaultBaseURL = "http://localhost:5000"
	defaultTimeout = 15 * time.Second
	maxErrorBody   = 4 << 10
)

// Client provides typed access to the giving API for interactive tools.
type Client struct {
	base   *url.URL
	http   *http.Client
	dialer *websocket.Dialer
}

// Option adjusts a Client during New.
type Option func(*Client)

// WithHTTPClient replaces the default 15s-timeout HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithDialer overrides the websocket dialer used by WatchTeam.
func WithDialer(d *websocket.Dialer) Option {
	return func(c *Client) {
		if d != nil {
			c.dialer = d
		}
	}
}

// New builds a Client for the API at base. A bare host:port is treated as
// plain HTTP and an empty base selects http://localhost:5000.
func New(base string, opts ...Option) (*Client, error) {
	raw := strings.TrimSpace(base)
	if raw == "" {
		raw = defaultBaseURL
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(strings.TrimRight(raw, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid api base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid api base url: unsupported scheme %q", u.Scheme)
	}
	c := &Client{
		base:   u,
		http:   &http.Client{Timeout: defaultTimeout},
		dialer: websocket.DefaultDialer,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL reports the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// APIError is a non-2xx answer from the API.
type APIError struct {
	Status    int
	Message   string
	RequestID string
}

func (e APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	if e.RequestID != "" {
		return fmt.Sprintf("api error %d: %s (request %s)", e.Status, msg, e.RequestID)
	}
	return fmt.Sprintf("api error %d: %s", e.Status, msg)
}

// IsNotFound reports whether err is an APIError with status 404.
func IsNotFound(err error) bool {
	var apiErr APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

func (c *Client) endpoint(path string) string {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + path
	return u.String()
}

// call sends body as JSON, when present, and decodes a 2xx reply into out.
func call[T any](ctx context.Context, c *Client, method, path string, body any) (T, error) {
	var out T
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return out, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), reader)
	if err != nil {
		return out, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return out, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return out, errorFromResponse(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return out, fmt.Errorf("decode %s response: %w", path, err)
	}
	return out, nil
}

func errorFromResponse(resp *http.Response) APIError {
	apiErr := APIError{Status: resp.StatusCode, RequestID: resp.Header.Get("X-Request-ID")}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(data) == 0 {
		return apiErr
	}
	var payload struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(data, &payload) == nil && payload.Error != "" {
		apiErr.Message = payload.Error
	} else {
		apiErr.Message = strings.TrimSpace(string(data))
	}
	return apiErr
}

// Contribution is one named pledge within a team.
type Contribution struct {
	Name      string    `json:"name"`
	Amount    float64   `json:"amount"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
}

// Team mirrors API team payloads. Live snapshots leave CreatedAt unset.
type Team struct {
	ID                 int64          `json:"id"`
	Name               string         `json:"name"`
	Goal               float64        `json:"goal"`
	TotalContributions float64        `json:"totalContributions"`
	Progress           float64        `json:"progress,omitempty"`
	Members            []Contribution `json:"members"`
	CreatedAt          time.Time      `json:"createdAt,omitzero"`
}

// LeaderboardEntry is a ranked team total.
type LeaderboardEntry struct {
	Name               string  `json:"name"`
	TotalContributions float64 `json:"totalContributions"`
}

// Cause is a nonprofit returned by search.
type Cause struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	LogoURL     string `json:"logoUrl,omitempty"`
	Link        string `json:"link,omitempty"`
}

// Donation records a direct gift to a nonprofit.
type Donation struct {
	ID          string    `json:"id"`
	NonprofitID string    `json:"nonprofitId"`
	Amount      float64   `json:"amount"`
	Timestamp   time.Time `json:"timestamp"`
}

// CreateTeam registers a team with a fundraising goal.
func (c *Client) CreateTeam(ctx context.Context, name string, goal float64) (Team, error) {
	return call[Team](ctx, c, http.MethodPost, "/api/teams", map[string]any{"name": name, "goal": goal})
}

// ListTeams returns every team in creation order.
func (c *Client) ListTeams(ctx context.Context) ([]Team, error) {
	return call[[]Team](ctx, c, http.MethodGet, "/api/teams", nil)
}

// GetTeam fetches a single team.
func (c *Client) GetTeam(ctx context.Context, teamID int64) (Team, error) {
	return call[Team](ctx, c, http.MethodGet, teamPath(teamID), nil)
}

// Contribute adds a named contribution and returns the updated team.
func (c *Client) Contribute(ctx context.Context, teamID int64, name string, amount float64) (Team, error) {
	resp, err := call[struct {
		Team Team `json:"team"`
	}](ctx, c, http.MethodPost, teamPath(teamID)+"/contribute", map[string]any{"name": name, "amount": amount})
	return resp.Team, err
}

// Leaderboard returns teams ranked by total contributions.
func (c *Client) Leaderboard(ctx context.Context) ([]LeaderboardEntry, error) {
	return call[[]LeaderboardEntry](ctx, c, http.MethodGet, "/api/leaderboard", nil)
}

// SearchCauses looks up nonprofits by free-text term.
func (c *Client) SearchCauses(ctx context.Context, term string) ([]Cause, error) {
	return call[[]Cause](ctx, c, http.MethodGet, "/api/search/"+url.PathEscape(term), nil)
}

// Donate records a direct donation to a nonprofit.
func (c *Client) Donate(ctx context.Context, nonprofitID string, amount float64) (Donation, error) {
	resp, err := call[struct {
		Donation Donation `json:"donation"`
	}](ctx, c, http.MethodPost, "/api/donate", map[string]any{"nonprofitId": nonprofitID, "amount": amount})
	return resp.Donation, err
}

// ListDonations returns every donation in the order made.
func (c *Client) ListDonations(ctx context.Context) ([]Donation, error) {
	return call[[]Donation](ctx, c, http.MethodGet, "/api/donations", nil)
}

func teamPath(teamID int64) string {
	return "/api/teams/" + strconv.FormatInt(teamID, 10)
}

// ErrStopWatching may be returned by a WatchTeam callback to end the watch
// without error.
var ErrStopWatching = errors.New("stop watching")

// WatchTeam streams live snapshots for a team, calling fn for each one. The
// first snapshot is the team's state at connect time. It returns when ctx is
// cancelled, the server closes the connection, or fn returns an error.
func (c *Client) WatchTeam(ctx context.Context, teamID int64, fn func(Team) error) error {
	endpoint := c.websocketURL("/ws/teams/" + strconv.FormatInt(teamID, 10))
	conn, resp, err := c.dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		if resp != nil && resp.StatusCode >= http.StatusBadRequest {
			defer resp.Body.Close()
			return errorFromResponse(resp)
		}
		return fmt.Errorf("dial live updates: %w", err)
	}
	defer conn.Close()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-stop:
		}
	}()

	for {
		var team Team
		if err := conn.ReadJSON(&team); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("read live update: %w", err)
		}
		if err := fn(team); err != nil {
			if errors.Is(err, ErrStopWatching) {
				return nil
			}
			return err
		}
	}
}

func (c *Client) websocketURL(path string) string {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + path
	if u.Scheme == "https" {
		u.Scheme = "wss"
	} else {
		u.Scheme = "ws"
	}
	return u.String()
}
