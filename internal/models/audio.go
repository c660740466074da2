package models

import (
	"time"
)

// AudioSample is a transient local audio artifact extracted from a remote
// stream. It is owned by the synchronization request that created it; the
// request's scratch directory cleanup removes the file on every exit path.
type AudioSample struct {
	Path      string        // Absolute path of the extracted WAV file
	Size      int64         // Bytes written by the media toolchain
	Duration  time.Duration // Requested extraction duration
	SourceURL string        // Stream locator the audio was extracted from
	CreatedAt time.Time
}
