package media

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/timeout"

	"github.com/streamsync/subsync/internal/apperrors"
	"github.com/streamsync/subsync/internal/config"
	"github.com/streamsync/subsync/internal/models"
)

// minAudioBytes is the smallest output accepted as a real extraction. A WAV
// below this is header plus a fraction of a second of silence, which no
// aligner can work with.
const minAudioBytes = 10 * 1024

// audioFileName is the single artifact each Fetch call writes into the
// request's scratch directory.
const audioFileName = "audio.wav"

// unsupportedMarkers are ffmpeg stderr fragments that indicate the stream
// container or codec cannot be demuxed, as opposed to a network failure.
var unsupportedMarkers = []string{
	"invalid data found when processing input",
	"unknown format",
	"no such demuxer",
	"could not find codec parameters",
	"unsupported codec",
}

// FFmpegFetcher implements Fetcher on top of the ffmpeg binary.
type FFmpegFetcher struct {
	binary       string
	fetchTimeout time.Duration
}

// NewFetcher creates an ffmpeg-backed fetcher. fetchTimeout is the hard
// ceiling for one extraction regardless of the requested media duration.
func NewFetcher(binary string, fetchTimeout time.Duration) Fetcher {
	if binary == "" {
		binary = "ffmpeg"
	}
	if fetchTimeout <= 0 {
		fetchTimeout = 90 * time.Second
	}
	return &FFmpegFetcher{binary: binary, fetchTimeout: fetchTimeout}
}

// Fetch implements Fetcher.
func (f *FFmpegFetcher) Fetch(ctx context.Context, streamURL string, maxDuration time.Duration, workDir string) (*models.AudioSample, error) {
	logger := config.GetLogger()
	outputPath := filepath.Join(workDir, audioFileName)
	args := buildExtractArgs(streamURL, maxDuration, outputPath)

	logger.Info().
		Str("stream_url", streamURL).
		Dur("max_duration", maxDuration).
		Str("output", outputPath).
		Msg("Extracting audio from stream")

	// Captured outside the policy run so stderr stays readable on failure.
	var toolOutput string
	budgetPolicy := timeout.New[any](f.fetchTimeout)
	err := failsafe.With[any](budgetPolicy).
		WithContext(ctx).
		RunWithExecution(func(exe failsafe.Execution[any]) error {
			cmd := exec.CommandContext(exe.Context(), f.binary, args...)
			combined, runErr := cmd.CombinedOutput()
			toolOutput = strings.TrimSpace(string(combined))
			return runErr
		})

	if err != nil {
		switch {
		case errors.Is(err, timeout.ErrExceeded), errors.Is(err, context.DeadlineExceeded):
			return nil, apperrors.NewToolTimeoutError("ffmpeg", f.fetchTimeout)
		case errors.Is(err, exec.ErrNotFound):
			return nil, apperrors.NewFetchError(streamURL, "ffmpeg binary not found")
		case isUnsupportedStream(toolOutput):
			return nil, apperrors.NewUnsupportedStreamError(streamURL, firstLine(toolOutput))
		default:
			return nil, apperrors.NewFetchError(streamURL, firstLine(toolOutput))
		}
	}

	info, statErr := os.Stat(outputPath)
	if statErr != nil || info.Size() < minAudioBytes {
		return nil, apperrors.NewFetchError(streamURL, "toolchain produced no usable audio")
	}

	logger.Info().
		Int64("size", info.Size()).
		Str("output", outputPath).
		Msg("Audio extracted")

	return &models.AudioSample{
		Path:      outputPath,
		Size:      info.Size(),
		Duration:  maxDuration,
		SourceURL: streamURL,
		CreatedAt: time.Now(),
	}, nil
}

// buildExtractArgs assembles the ffmpeg invocation: audio only, mono,
// 16 kHz PCM, bounded to the requested duration. The format matches what
// speech-based aligners expect.
func buildExtractArgs(streamURL string, maxDuration time.Duration, outputPath string) []string {
	return []string{
		"-y",
		"-hide_banner",
		"-loglevel", "warning",
		"-t", strconv.Itoa(int(maxDuration.Seconds())),
		"-i", streamURL,
		"-vn",
		"-acodec", "pcm_s16le",
		"-ar", "16000",
		"-ac", "1",
		outputPath,
	}
}

func isUnsupportedStream(stderr string) bool {
	lower := strings.ToLower(stderr)
	for _, marker := range unsupportedMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx]
	}
	return s
}

// Probe implements Fetcher.
func (f *FFmpegFetcher) Probe(ctx context.Context) error {
	return exec.CommandContext(ctx, f.binary, "-version").Run()
}
