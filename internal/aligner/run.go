package aligner

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/timeout"

	"github.com/streamsync/subsync/internal/apperrors"
	"github.com/streamsync/subsync/internal/config"
)

// run executes an alignment tool under the request budget and collects its
// evidence. The tool's exit status is deliberately ignored: a failed run
// with a readable log is still evidence, and the offset extractor decides
// whether anything usable came out of it.
func run(ctx context.Context, name, binary string, args []string, req AlignRequest) (*Output, error) {
	logger := config.GetLogger()

	budgetPolicy := timeout.New[*Output](req.Budget)
	out, err := failsafe.With[*Output](budgetPolicy).
		WithContext(ctx).
		GetWithExecution(func(exe failsafe.Execution[*Output]) (*Output, error) {
			cmd := exec.CommandContext(exe.Context(), binary, args...)
			combined, runErr := cmd.CombinedOutput()
			log := strings.TrimSpace(string(combined))

			if runErr != nil {
				if errors.Is(runErr, exec.ErrNotFound) {
					logger.Warn().Str("aligner", name).Str("binary", binary).Msg("Aligner binary not found")
					return nil, apperrors.NewNoSignalError(name)
				}
				if exe.Context().Err() != nil {
					return nil, exe.Context().Err()
				}
				// Non-zero exit: keep the log, let the extractor judge it.
				logger.Warn().Str("aligner", name).Err(runErr).Msg("Aligner exited with an error, keeping its output")
			}

			return &Output{SyncedText: readAligned(req.OutputPath), Log: log}, nil
		})

	switch {
	case err == nil:
		return out, nil
	case errors.Is(err, timeout.ErrExceeded), errors.Is(err, context.DeadlineExceeded):
		return nil, apperrors.NewToolTimeoutError(name, req.Budget)
	default:
		return nil, err
	}
}

// readAligned returns the aligned subtitle text, or "" when the tool wrote
// no output or an empty file.
func readAligned(path string) string {
	content, err := os.ReadFile(path)
	if err != nil || len(content) == 0 {
		return ""
	}
	return string(content)
}

// probeBinary checks that a tool responds to --version.
func probeBinary(ctx context.Context, binary string) error {
	return exec.CommandContext(ctx, binary, "--version").Run()
}
