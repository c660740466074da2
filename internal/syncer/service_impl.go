package syncer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/streamsync/subsync/internal/aligner"
	"github.com/streamsync/subsync/internal/apperrors"
	"github.com/streamsync/subsync/internal/config"
	"github.com/streamsync/subsync/internal/media"
	"github.com/streamsync/subsync/internal/metrics"
	"github.com/streamsync/subsync/internal/models"
	"github.com/streamsync/subsync/internal/offset"
	"github.com/streamsync/subsync/internal/srt"
)

// DefaultService is the default implementation of Service.
type DefaultService struct {
	fetcher  media.Fetcher
	primary  aligner.Aligner
	fallback aligner.Aligner
	opts     Options
	logger   zerolog.Logger
}

// NewService creates a synchronization service around the given collaborators.
func NewService(fetcher media.Fetcher, primary, fallback aligner.Aligner, opts Options) Service {
	return &DefaultService{
		fetcher:  fetcher,
		primary:  primary,
		fallback: fallback,
		opts:     opts.withDefaults(),
		logger:   config.GetLogger(),
	}
}

// attempt is the outcome of one aligner invocation after reduction.
type attempt struct {
	aligner    string
	offset     time.Duration
	confidence float64
	samples    int
	err        error
}

func (a attempt) accepted() bool {
	return a.err == nil
}

// Synchronize implements Service.
func (s *DefaultService) Synchronize(ctx context.Context, req models.SyncRequest) *models.SyncResult {
	started := time.Now()

	s.logger.Info().
		Str("stream_url", req.StreamURL).
		Int("subtitle_bytes", len(req.Subtitle)).
		Str("language", req.Language).
		Bool("include_subtitle", req.IncludeSubtitle).
		Msg("Synchronization request received")

	result := s.run(ctx, req, started)

	status := "failure"
	if result.Success {
		status = "success"
	}
	metrics.SyncRequestsTotal.WithLabelValues(status).Inc()

	s.logger.Info().
		Bool("success", result.Success).
		Int64("offset_ms", result.OffsetMs).
		Float64("confidence", result.Confidence).
		Int64("processing_time_ms", result.ProcessingTimeMs).
		Msg("Synchronization request finished")

	return result
}

func (s *DefaultService) run(ctx context.Context, req models.SyncRequest, started time.Time) *models.SyncResult {
	decoded, err := srt.DecodeUTF8([]byte(req.Subtitle))
	if err != nil {
		return failure(started, fmt.Sprintf("subtitle decoding failed: %v", err))
	}

	doc, err := srt.Parse(string(decoded))
	if err != nil {
		return failure(started, fmt.Sprintf("subtitle parsing failed: %v", err))
	}

	// One scratch directory per request, uuid-keyed so concurrent requests
	// never collide. Removal is deferred, so the audio sample and every
	// intermediate file are released on all exit paths including
	// cancellation.
	workDir := filepath.Join(s.opts.ScratchRoot, "subsync-"+uuid.NewString())
	if err := os.MkdirAll(workDir, 0o700); err != nil {
		return failure(started, fmt.Sprintf("scratch directory creation failed: %v", err))
	}
	defer func() {
		if err := os.RemoveAll(workDir); err != nil {
			s.logger.Error().Err(err).Str("work_dir", workDir).Msg("Failed to remove scratch directory")
		}
	}()

	subtitlePath := filepath.Join(workDir, "input.srt")
	if err := os.WriteFile(subtitlePath, decoded, 0o600); err != nil {
		return failure(started, fmt.Sprintf("writing subtitle to scratch failed: %v", err))
	}

	fetchStarted := time.Now()
	sample, err := s.fetcher.Fetch(ctx, req.StreamURL, s.opts.AudioDuration, workDir)
	metrics.StageDurationSeconds.WithLabelValues("fetch").Observe(time.Since(fetchStarted).Seconds())
	if err != nil {
		// No aligner can run without audio; not retried, the failure is
		// almost always a bad or unreachable URL.
		return failure(started, fmt.Sprintf("audio extraction failed: %v", err))
	}

	primaryAttempt := s.attemptAlign(ctx, s.primary, doc, sample, subtitlePath, workDir,
		s.opts.PrimaryTimeout, s.opts.MinConfidence, req.Language, "primary")
	if primaryAttempt.accepted() {
		return s.resolve(req, doc, primaryAttempt, started)
	}

	var timeoutErr *apperrors.ToolTimeoutError
	if errors.As(primaryAttempt.err, &timeoutErr) {
		// A stream or tool that stalled once is likely to stall again; the
		// fallback is not attempted after a timeout.
		return failure(started, fmt.Sprintf("primary alignment timed out: %v", primaryAttempt.err))
	}

	s.logger.Warn().
		Str("aligner", s.primary.Name()).
		Err(primaryAttempt.err).
		Msg("Primary aligner produced no acceptable signal, invoking fallback")
	metrics.FallbackInvocationsTotal.Inc()

	fallbackAttempt := s.attemptAlign(ctx, s.fallback, doc, sample, subtitlePath, workDir,
		s.opts.FallbackTimeout, s.opts.FallbackMinConfidence, req.Language, "fallback")
	if fallbackAttempt.accepted() {
		return s.resolve(req, doc, fallbackAttempt, started)
	}

	return failure(started, fmt.Sprintf("primary analysis failed: %v; fallback alignment also failed: %v",
		primaryAttempt.err, fallbackAttempt.err))
}

// attemptAlign invokes one aligner and reduces its evidence to a candidate
// offset. Acceptance requires at least one sample and a confidence at or
// above the stage threshold.
func (s *DefaultService) attemptAlign(ctx context.Context, a aligner.Aligner, doc *models.SubtitleDocument,
	sample *models.AudioSample, subtitlePath, workDir string, budget time.Duration, threshold float64,
	language, stage string) attempt {

	alignStarted := time.Now()
	out, err := a.Align(ctx, aligner.AlignRequest{
		AudioPath:    sample.Path,
		SubtitlePath: subtitlePath,
		OutputPath:   filepath.Join(workDir, "aligned_"+stage+".srt"),
		Language:     language,
		Budget:       budget,
	})
	metrics.StageDurationSeconds.WithLabelValues(stage).Observe(time.Since(alignStarted).Seconds())

	if err != nil {
		metrics.AlignerAttemptsTotal.WithLabelValues(a.Name(), attemptStatus(err)).Inc()
		return attempt{aligner: a.Name(), err: err}
	}

	samples := offset.ExtractSamples(doc, out)
	resolved, confidence, err := offset.Reduce(samples, s.opts.MaxSamples)
	if err != nil {
		metrics.AlignerAttemptsTotal.WithLabelValues(a.Name(), "no_signal").Inc()
		return attempt{aligner: a.Name(), err: apperrors.NewNoSignalError(a.Name())}
	}
	if confidence < threshold {
		metrics.AlignerAttemptsTotal.WithLabelValues(a.Name(), "low_confidence").Inc()
		return attempt{aligner: a.Name(), err: apperrors.NewLowConfidenceError(a.Name(), confidence, len(samples))}
	}

	metrics.AlignerAttemptsTotal.WithLabelValues(a.Name(), "accepted").Inc()
	s.logger.Info().
		Str("aligner", a.Name()).
		Dur("offset", resolved).
		Float64("confidence", confidence).
		Int("samples", len(samples)).
		Msg("Aligner produced an accepted offset")

	return attempt{aligner: a.Name(), offset: resolved, confidence: confidence, samples: len(samples)}
}

// resolve applies the accepted offset and assembles the success result.
func (s *DefaultService) resolve(req models.SyncRequest, doc *models.SubtitleDocument, a attempt, started time.Time) *models.SyncResult {
	var synced string
	if req.IncludeSubtitle {
		synced = srt.Serialize(srt.Shift(doc, a.offset))
	}

	return &models.SyncResult{
		Success:          true,
		OffsetMs:         a.offset.Milliseconds(),
		SyncedSubtitle:   synced,
		Confidence:       a.confidence,
		Message:          fmt.Sprintf("Synchronized successfully via %s. Offset: %dms", a.aligner, a.offset.Milliseconds()),
		ProcessingTimeMs: time.Since(started).Milliseconds(),
	}
}

func failure(started time.Time, message string) *models.SyncResult {
	return &models.SyncResult{
		Success:          false,
		Message:          message,
		ProcessingTimeMs: time.Since(started).Milliseconds(),
	}
}

func attemptStatus(err error) string {
	switch {
	case errors.Is(err, &apperrors.ToolTimeoutError{}):
		return "timeout"
	case errors.Is(err, &apperrors.NoSignalError{}):
		return "no_signal"
	default:
		return "error"
	}
}
