package urlcheck

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const probeUserAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:124.0) Gecko/20100101 Firefox/124.0"

// Result is the outcome of a best-effort URL check.
type Result struct {
	// Canonical is the canonical form. When the URL was confirmed live it is
	// taken from the final redirect target; otherwise it is the syntactic
	// canonical form of the input.
	Canonical string

	// Validated is true when a probe or an archival lookup confirmed the URL.
	Validated bool

	// RateLimited is true when confirmation required the archival service
	// while the shared deflection flag was (or became) active. The caller
	// decides whether that is fatal: it is for re-validating a stored URL,
	// not for a fresh submission.
	RateLimited bool
}

// Config holds checker construction parameters.
type Config struct {
	// ProbeTimeout bounds each outbound HTTP call.
	ProbeTimeout time.Duration

	// WaybackBackoff is how long one 429 from the archival service deflects
	// all workers.
	WaybackBackoff time.Duration

	// ProbesPerSecond throttles outbound probes across the process.
	ProbesPerSecond float64

	// WaybackEndpoint overrides the availability API URL (tests).
	WaybackEndpoint string
}

// Checker verifies URLs against the live web with an archival fallback.
// It is safe for concurrent use and callable outside request paths.
type Checker struct {
	client          *http.Client
	limiter         *rate.Limiter
	flags           *FlagStore
	waybackEndpoint string
	waybackBackoff  time.Duration
	logger          *slog.Logger
}

// New creates a checker. flags may not be nil; the deflection flag is shared
// by every worker in the process.
func New(cfg Config, flags *FlagStore, logger *slog.Logger) *Checker {
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = 10 * time.Second
	}
	if cfg.WaybackBackoff <= 0 {
		cfg.WaybackBackoff = 5 * time.Minute
	}
	if cfg.ProbesPerSecond <= 0 {
		cfg.ProbesPerSecond = 5
	}
	if cfg.WaybackEndpoint == "" {
		cfg.WaybackEndpoint = DefaultWaybackEndpoint
	}

	return &Checker{
		client:          &http.Client{Timeout: cfg.ProbeTimeout},
		limiter:         rate.NewLimiter(rate.Limit(cfg.ProbesPerSecond), 1),
		flags:           flags,
		waybackEndpoint: cfg.WaybackEndpoint,
		waybackBackoff:  cfg.WaybackBackoff,
		logger:          logger,
	}
}

// Check normalizes raw and verifies it best effort: HEAD, then GET, then the
// Wayback availability API. Only normalization failures return an error;
// network trouble degrades to Validated=false.
func (c *Checker) Check(ctx context.Context, raw string) (Result, error) {
	canonical, err := Normalize(raw)
	if err != nil {
		return Result{}, err
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return Result{Canonical: canonical}, nil
	}

	if final, ok := c.probe(ctx, http.MethodHead, canonical); ok {
		return Result{Canonical: final, Validated: true}, nil
	}
	if final, ok := c.probe(ctx, http.MethodGet, canonical); ok {
		return Result{Canonical: final, Validated: true}, nil
	}

	return c.checkArchive(ctx, canonical)
}

// probe issues one request and reports the renormalized final URL on success.
// Redirects are followed; the canonical form is taken from where they land.
func (c *Checker) probe(ctx context.Context, method, target string) (string, bool) {
	req, err := http.NewRequestWithContext(ctx, method, target, http.NoBody)
	if err != nil {
		return "", false
	}
	req.Header.Set("User-Agent", probeUserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", false
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", false
	}

	final, err := Normalize(resp.Request.URL.String())
	if err != nil {
		return "", false
	}
	return final, true
}

// checkArchive consults the Wayback availability API, honoring the shared
// deflection flag.
func (c *Checker) checkArchive(ctx context.Context, canonical string) (Result, error) {
	limited, err := c.flags.IsRateLimited()
	if err != nil {
		c.logger.Warn("Rate-limit flag read failed", "error", err)
	}
	if limited {
		return Result{Canonical: canonical, RateLimited: true}, nil
	}

	available, err := c.queryWayback(ctx, canonical)
	if err != nil {
		if errors.Is(err, errWaybackRateLimit) {
			if setErr := c.flags.SetRateLimited(c.waybackBackoff); setErr != nil {
				c.logger.Warn("Rate-limit flag write failed", "error", setErr)
			}
			return Result{Canonical: canonical, RateLimited: true}, nil
		}
		c.logger.Debug("Wayback lookup failed", "url", canonical, "error", err)
		return Result{Canonical: canonical}, nil
	}

	return Result{Canonical: canonical, Validated: available}, nil
}
