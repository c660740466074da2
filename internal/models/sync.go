package models

import (
	"time"
)

// OffsetSample is one candidate offset derived from aligner output for a
// single cue. A set of these, not a single reading, is the raw signal the
// offset extractor reduces.
type OffsetSample struct {
	CueIndex int           // Index of the original cue the sample came from
	Offset   time.Duration // Signed; negative moves the subtitle earlier
}

// SyncRequest is the inbound synchronization request.
type SyncRequest struct {
	StreamURL string `json:"stream_url"` // Locator of the video/audio stream
	Subtitle  string `json:"subtitle"`   // Raw SRT document
	Language  string `json:"language"`   // Hint for the speech analyzer

	// IncludeSubtitle controls whether the shifted subtitle text is carried
	// in the result. Offset-only requests leave it false for a lighter
	// payload.
	IncludeSubtitle bool `json:"-"`
}

// SyncResult is the outcome of one synchronization request. It is
// constructed once and never mutated.
type SyncResult struct {
	Success          bool    `json:"success"`
	OffsetMs         int64   `json:"offset_ms"`
	SyncedSubtitle   string  `json:"synced_subtitle,omitempty"`
	Confidence       float64 `json:"confidence,omitempty"`
	Message          string  `json:"message"`
	ProcessingTimeMs int64   `json:"processing_time_ms"`
}

// HealthStatus reports availability of the external collaborators.
type HealthStatus struct {
	Status    string `json:"status"` // "healthy" or "degraded"
	FFmpeg    bool   `json:"ffmpeg"`
	Primary   bool   `json:"primary_aligner"`
	Fallback  bool   `json:"fallback_aligner"`
	CheckedAt string `json:"checked_at"`
}
