package aligner

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/streamsync/subsync/internal/apperrors"
)

func TestFFsubsyncBuildArgs(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name             string
		binary           string
		maxOffsetSeconds int
		wantMaxOffset    string
	}{
		{"explicit max offset", "ffsubsync", 90, "90"},
		{"zero falls back to default", "ffsubsync", 0, "60"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := NewFFsubsync(tt.binary, tt.maxOffsetSeconds)
			args := f.buildArgs(AlignRequest{
				AudioPath:    "/scratch/audio.wav",
				SubtitlePath: "/scratch/input.srt",
				OutputPath:   "/scratch/aligned.srt",
			})

			joined := strings.Join(args, " ")
			if args[0] != "/scratch/audio.wav" {
				t.Errorf("args[0] = %q, want the audio path", args[0])
			}
			if !strings.Contains(joined, "-i /scratch/input.srt") {
				t.Errorf("args missing subtitle input: %q", joined)
			}
			if !strings.Contains(joined, "-o /scratch/aligned.srt") {
				t.Errorf("args missing output path: %q", joined)
			}
			if !strings.Contains(joined, "--no-fix-framerate") {
				t.Errorf("args missing --no-fix-framerate: %q", joined)
			}
			if !strings.Contains(joined, "--max-offset-seconds "+tt.wantMaxOffset) {
				t.Errorf("args max offset = %q, want %s", joined, tt.wantMaxOffset)
			}
		})
	}
}

func TestRunCapturesLogRegardlessOfExitStatus(t *testing.T) {
	t.Parallel()
	req := AlignRequest{OutputPath: filepath.Join(t.TempDir(), "aligned.srt"), Budget: 5 * time.Second}

	out, err := run(context.Background(), "fake", "sh",
		[]string{"-c", "echo 'offset seconds: 1.5'; exit 2"}, req)
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if !strings.Contains(out.Log, "offset seconds: 1.5") {
		t.Errorf("Log = %q, want captured diagnostic line", out.Log)
	}
	if out.SyncedText != "" {
		t.Errorf("SyncedText = %q, want empty when no output file was written", out.SyncedText)
	}
}

func TestRunReadsAlignedOutput(t *testing.T) {
	t.Parallel()
	outputPath := filepath.Join(t.TempDir(), "aligned.srt")
	req := AlignRequest{OutputPath: outputPath, Budget: 5 * time.Second}

	out, err := run(context.Background(), "fake", "sh",
		[]string{"-c", "printf 'aligned content' > " + outputPath}, req)
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if out.SyncedText != "aligned content" {
		t.Errorf("SyncedText = %q, want %q", out.SyncedText, "aligned content")
	}
}

func TestRunBudgetExceeded(t *testing.T) {
	t.Parallel()
	req := AlignRequest{OutputPath: filepath.Join(t.TempDir(), "aligned.srt"), Budget: 100 * time.Millisecond}

	_, err := run(context.Background(), "fake", "sh", []string{"-c", "sleep 10"}, req)
	if !errors.Is(err, &apperrors.ToolTimeoutError{}) {
		t.Fatalf("run() error = %v, want *apperrors.ToolTimeoutError", err)
	}
}

func TestRunMissingBinary(t *testing.T) {
	t.Parallel()
	req := AlignRequest{OutputPath: filepath.Join(t.TempDir(), "aligned.srt"), Budget: time.Second}

	_, err := run(context.Background(), "fake", "definitely-not-an-installed-binary", nil, req)
	if !errors.Is(err, &apperrors.NoSignalError{}) {
		t.Fatalf("run() error = %v, want *apperrors.NoSignalError", err)
	}
}

func TestAlassAlignArgs(t *testing.T) {
	t.Parallel()
	a := NewAlass("")
	if a.Name() != "alass" {
		t.Errorf("Name() = %q, want alass", a.Name())
	}
	if a.binary != "alass" {
		t.Errorf("binary = %q, want default alass", a.binary)
	}
}
