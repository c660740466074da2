package aligner

import (
	"context"
	"strconv"
)

// FFsubsync is the primary, speech-pattern based alignment strategy. It
// extracts a voice-activity signal from the audio and correlates it with the
// subtitle timing, which makes it accurate but comparatively slow.
type FFsubsync struct {
	binary           string
	maxOffsetSeconds int
}

// NewFFsubsync creates the primary aligner around the given binary.
func NewFFsubsync(binary string, maxOffsetSeconds int) *FFsubsync {
	if binary == "" {
		binary = "ffsubsync"
	}
	if maxOffsetSeconds <= 0 {
		maxOffsetSeconds = 60
	}
	return &FFsubsync{binary: binary, maxOffsetSeconds: maxOffsetSeconds}
}

// Name implements Aligner.
func (f *FFsubsync) Name() string {
	return "ffsubsync"
}

// Align implements Aligner.
func (f *FFsubsync) Align(ctx context.Context, req AlignRequest) (*Output, error) {
	args := f.buildArgs(req)
	return run(ctx, f.Name(), f.binary, args, req)
}

// buildArgs assembles the ffsubsync invocation. Framerate correction is
// disabled because the service resolves a single uniform offset; letting the
// tool also rescale timestamps would make the per-cue diff meaningless.
func (f *FFsubsync) buildArgs(req AlignRequest) []string {
	return []string{
		req.AudioPath,
		"-i", req.SubtitlePath,
		"-o", req.OutputPath,
		"--no-fix-framerate",
		"--max-offset-seconds", strconv.Itoa(f.maxOffsetSeconds),
	}
}

// Probe implements Aligner.
func (f *FFsubsync) Probe(ctx context.Context) error {
	return probeBinary(ctx, f.binary)
}
