package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"finitefield.org/hanko-blog/internal/platform/httpx"
)

const (
	statusOK       = "ok"
	statusDegraded = "degraded"

	defaultCheckTimeout = 2 * time.Second
)

// DependencyCheck probes one upstream the server relies on.
type DependencyCheck struct {
	Name    string
	Timeout time.Duration
	Check   func(ctx context.Context) error
}

// BuildInfo describes the running binary.
type BuildInfo struct {
	Version   string
	CommitSHA string
	StartedAt time.Time
}

// HealthHandlers serves liveness and readiness probes.
type HealthHandlers struct {
	build  BuildInfo
	checks []DependencyCheck
	now    func() time.Time
}

// HealthOption customises HealthHandlers.
type HealthOption func(*HealthHandlers)

// WithHealthBuildInfo sets the build metadata reported by /readyz.
func WithHealthBuildInfo(info BuildInfo) HealthOption {
	return func(h *HealthHandlers) {
		h.build = info
	}
}

// WithHealthChecks adds dependency checks run by /readyz.
func WithHealthChecks(checks ...DependencyCheck) HealthOption {
	return func(h *HealthHandlers) {
		h.checks = append(h.checks, checks...)
	}
}

// WithHealthClock overrides the clock, for tests.
func WithHealthClock(now func() time.Time) HealthOption {
	return func(h *HealthHandlers) {
		if now != nil {
			h.now = now
		}
	}
}

// NewHealthHandlers constructs health handlers.
func NewHealthHandlers(opts ...HealthOption) *HealthHandlers {
	h := &HealthHandlers{now: time.Now}
	for _, opt := range opts {
		opt(h)
	}
	if h.build.StartedAt.IsZero() {
		h.build.StartedAt = h.now()
	}
	return h
}

// Healthz reports liveness as plain text.
func (h *HealthHandlers) Healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

type checkResult struct {
	Status    string `json:"status"`
	LatencyMS int64  `json:"latencyMs"`
	Error     string `json:"error,omitempty"`
}

type readinessPayload struct {
	Status    string                 `json:"status"`
	Version   string                 `json:"version,omitempty"`
	CommitSHA string                 `json:"commitSha,omitempty"`
	Uptime    string                 `json:"uptime"`
	Checks    map[string]checkResult `json:"checks"`
	Details   []string               `json:"details,omitempty"`
}

// Readyz runs every dependency check concurrently and answers 503 if any fails.
func (h *HealthHandlers) Readyz(w http.ResponseWriter, r *http.Request) {
	results := make([]checkResult, len(h.checks))
	var g errgroup.Group
	for i, check := range h.checks {
		g.Go(func() error {
			results[i] = h.run(r.Context(), check)
			return nil
		})
	}
	_ = g.Wait()

	payload := readinessPayload{
		Status:    statusOK,
		Version:   h.build.Version,
		CommitSHA: h.build.CommitSHA,
		Uptime:    h.now().Sub(h.build.StartedAt).Round(time.Second).String(),
		Checks:    make(map[string]checkResult, len(h.checks)),
	}
	for i, check := range h.checks {
		payload.Checks[check.Name] = results[i]
		if results[i].Status != statusOK {
			payload.Status = statusDegraded
			payload.Details = append(payload.Details, fmt.Sprintf("%s: %s", check.Name, results[i].Error))
		}
	}
	sort.Strings(payload.Details)

	status := http.StatusOK
	if payload.Status != statusOK {
		status = http.StatusServiceUnavailable
	}
	w.Header().Set("Cache-Control", "no-store")
	_ = httpx.WriteJSONStatus(w, status, payload)
}

func (h *HealthHandlers) run(ctx context.Context, check DependencyCheck) checkResult {
	timeout := check.Timeout
	if timeout <= 0 {
		timeout = defaultCheckTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := h.now()
	err := check.Check(ctx)
	res := checkResult{Status: statusOK, LatencyMS: h.now().Sub(start).Milliseconds()}
	if err != nil {
		res.Status = statusDegraded
		res.Error = err.Error()
	}
	return res
}
