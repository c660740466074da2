// Package media acquires bounded audio excerpts from remote streams via the
// ffmpeg toolchain.
package media

import (
	"context"
	"time"

	"github.com/streamsync/subsync/internal/models"
)

// Fetcher defines the interface for extracting analysis audio from a stream.
type Fetcher interface {
	// Fetch extracts at most maxDuration of audio starting at stream offset
	// zero into a single new file inside workDir. The bound is enforced by
	// the fetcher itself with a hard timeout, independent of whether the
	// toolchain honors the requested duration; live streams may otherwise
	// never terminate. The caller owns deletion of the produced file.
	Fetch(ctx context.Context, streamURL string, maxDuration time.Duration, workDir string) (*models.AudioSample, error)

	// Probe reports whether the media toolchain is invocable.
	Probe(ctx context.Context) error
}
