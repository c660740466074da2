// Package syncer sequences one synchronization request: acquire bounded
// audio, run the primary aligner, fall back to the fast aligner when the
// primary yields no acceptable signal, reduce the offset evidence and apply
// the resolved offset to the subtitle document.
package syncer

import (
	"context"
	"time"

	"github.com/streamsync/subsync/internal/models"
)

// Service defines the interface for synchronizing a subtitle against a
// stream.
type Service interface {
	// Synchronize processes one request and always returns a result; failed
	// requests carry Success=false and a message naming which stage failed
	// and why. A partially shifted subtitle is never returned.
	Synchronize(ctx context.Context, req models.SyncRequest) *models.SyncResult
}

// Options are the tunable policy parameters of the orchestrator. Zero values
// fall back to the service defaults.
type Options struct {
	// AudioDuration bounds how much media is extracted for analysis.
	AudioDuration time.Duration

	// Stage budgets. Each external invocation runs under its own hard
	// timeout so one stalled tool cannot consume the whole request budget.
	FetchTimeout    time.Duration
	PrimaryTimeout  time.Duration
	FallbackTimeout time.Duration

	// MinConfidence is the acceptance threshold for the primary aligner.
	// FallbackMinConfidence is the lower bar applied to the coarser
	// fallback. Both are policy parameters, not contracts.
	MinConfidence         float64
	FallbackMinConfidence float64

	// MaxSamples caps how many offset samples the reducer considers.
	MaxSamples int

	// ScratchRoot is the directory under which each request creates its
	// uniquely named scratch directory.
	ScratchRoot string
}

func (o Options) withDefaults() Options {
	if o.AudioDuration <= 0 {
		o.AudioDuration = 600 * time.Second
	}
	if o.FetchTimeout <= 0 {
		o.FetchTimeout = 90 * time.Second
	}
	if o.PrimaryTimeout <= 0 {
		o.PrimaryTimeout = 120 * time.Second
	}
	if o.FallbackTimeout <= 0 {
		o.FallbackTimeout = 60 * time.Second
	}
	if o.MinConfidence <= 0 {
		o.MinConfidence = 0.5
	}
	if o.FallbackMinConfidence <= 0 {
		o.FallbackMinConfidence = 0.3
	}
	if o.MaxSamples <= 0 {
		o.MaxSamples = 5
	}
	return o
}
