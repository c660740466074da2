// Package health aggregates availability probes of the external
// collaborators (media toolchain, primary aligner, fallback aligner).
package health

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/streamsync/subsync/internal/models"
)

// Prober is the capability the checker needs from each collaborator.
type Prober interface {
	Probe(ctx context.Context) error
}

// Checker caches probe results for a short TTL so that frequent health
// scrapes do not re-exec the tool binaries on every request. Probe caching
// lives in front of the core and never memoizes synchronization work.
type Checker struct {
	ffmpeg   Prober
	primary  Prober
	fallback Prober
	cache    *lru.LRU[string, bool]
}

// DefaultTTL is how long a probe result is considered fresh.
const DefaultTTL = 30 * time.Second

// NewChecker creates a Checker over the three collaborators.
func NewChecker(ffmpeg, primary, fallback Prober, ttl time.Duration) *Checker {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Checker{
		ffmpeg:   ffmpeg,
		primary:  primary,
		fallback: fallback,
		cache:    lru.NewLRU[string, bool](8, nil, ttl),
	}
}

// Status probes all collaborators and reports aggregate availability. The
// service is healthy when the media toolchain works and at least one aligner
// is present; a missing fallback alone only degrades it.
func (c *Checker) Status(ctx context.Context) models.HealthStatus {
	ffmpegOK := c.probe(ctx, "ffmpeg", c.ffmpeg)
	primaryOK := c.probe(ctx, "primary", c.primary)
	fallbackOK := c.probe(ctx, "fallback", c.fallback)

	status := "degraded"
	if ffmpegOK && (primaryOK || fallbackOK) {
		status = "healthy"
	}

	return models.HealthStatus{
		Status:    status,
		FFmpeg:    ffmpegOK,
		Primary:   primaryOK,
		Fallback:  fallbackOK,
		CheckedAt: time.Now().UTC().Format(time.RFC3339),
	}
}

func (c *Checker) probe(ctx context.Context, key string, p Prober) bool {
	if ok, cached := c.cache.Get(key); cached {
		return ok
	}
	ok := p.Probe(ctx) == nil
	c.cache.Add(key, ok)
	return ok
}
