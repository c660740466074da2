// Package aligner wraps the external alignment tools behind one capability:
// given extracted audio and a subtitle document, produce offset evidence.
// The orchestrator's fallback step is a second call through the same
// interface with a different concrete strategy.
package aligner

import (
	"context"
	"time"
)

// AlignRequest carries the inputs of one alignment attempt. All paths live
// inside the request's scratch directory.
type AlignRequest struct {
	AudioPath    string        // Extracted mono WAV
	SubtitlePath string        // Original subtitle written to disk
	OutputPath   string        // Where the tool should write the aligned subtitle
	Language     string        // Hint for speech analysis, may be empty
	Budget       time.Duration // Hard per-invocation timeout
}

// Output is the raw evidence an alignment attempt produced. SyncedText is
// empty when the tool wrote no usable output file; Log always carries the
// combined diagnostic stream, captured regardless of the tool's exit status.
type Output struct {
	SyncedText string
	Log        string
}

// Aligner is implemented by each external alignment strategy.
type Aligner interface {
	// Name identifies the strategy in logs, metrics and error messages.
	Name() string

	// Align runs the tool against the request's audio and subtitle. It
	// returns *apperrors.ToolTimeoutError when the budget is exceeded and
	// *apperrors.NoSignalError when the tool binary is not available. A tool
	// that ran but produced nothing usable yields an Output with empty
	// SyncedText and a nil error; judging the evidence is the extractor's
	// job.
	Align(ctx context.Context, req AlignRequest) (*Output, error)

	// Probe reports whether the tool binary is invocable.
	Probe(ctx context.Context) error
}
