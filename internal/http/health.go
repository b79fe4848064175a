package httpx

import (
	"context"
	"net/http"
	"sync"
	"time"
)

const healthCheckTimeout = 2 * time.Second

type componentHealth struct {
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
	Listeners *int   `json:"listeners,omitempty"`
}

type healthReport struct {
	Status     string                     `json:"status"`
	Components map[string]componentHealth `json:"components"`
	Timestamp  time.Time                  `json:"timestamp"`
}

// handleHealthz runs every dependency check concurrently. Any failing check
// degrades the report and turns the response into a 503.
func (r *Router) handleHealthz(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		r.methodNotAllowed(w)
		return
	}

	report := healthReport{
		Status:     "ok",
		Components: make(map[string]componentHealth, len(r.healthChecks)+1),
		Timestamp:  time.Now().UTC(),
	}
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for name, check := range r.healthChecks {
		wg.Add(1)
		go func(name string, check func(context.Context) error) {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(req.Context(), healthCheckTimeout)
			defer cancel()
			result := componentHealth{Status: "up"}
			if err := check(ctx); err != nil {
				result = componentHealth{Status: "down", Error: err.Error()}
			}
			mu.Lock()
			report.Components[name] = result
			mu.Unlock()
		}(name, check)
	}
	wg.Wait()

	for _, c := range report.Components {
		if c.Status != "up" {
			report.Status = "degraded"
			break
		}
	}
	listeners := r.hub.Directory().Total()
	report.Components["live"] = componentHealth{Status: "up", Listeners: &listeners}

	code := http.StatusOK
	if report.Status != "ok" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, report)
}
