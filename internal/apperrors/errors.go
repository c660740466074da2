package apperrors

import (
	"fmt"
	"time"
)

// FetchError represents a failure to extract audio from a remote stream
// (network failure, unreachable URL, or empty toolchain output).
type FetchError struct {
	URL    string
	Detail string
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("failed to fetch audio from %s: %s", e.URL, e.Detail)
	}
	return fmt.Sprintf("failed to fetch audio from %s", e.URL)
}

// Is allows for error checking with errors.Is().
func (e *FetchError) Is(target error) bool {
	_, ok := target.(*FetchError)
	return ok
}

// NewFetchError creates a new FetchError.
func NewFetchError(url, detail string) *FetchError {
	return &FetchError{URL: url, Detail: detail}
}

// UnsupportedStreamError is returned when the media toolchain cannot demux
// the given URL or container format.
type UnsupportedStreamError struct {
	URL    string
	Detail string
}

// Error implements the error interface.
func (e *UnsupportedStreamError) Error() string {
	return fmt.Sprintf("stream %s cannot be demuxed: %s", e.URL, e.Detail)
}

// Is allows for error checking with errors.Is().
func (e *UnsupportedStreamError) Is(target error) bool {
	_, ok := target.(*UnsupportedStreamError)
	return ok
}

// NewUnsupportedStreamError creates a new UnsupportedStreamError.
func NewUnsupportedStreamError(url, detail string) *UnsupportedStreamError {
	return &UnsupportedStreamError{URL: url, Detail: detail}
}

// ParseError is returned when a subtitle document yields zero recoverable
// cues. Individual malformed cue blocks are tolerated and skipped; only a
// document with no well-formed cue at all is fatal.
type ParseError struct {
	Detail string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("subtitle document could not be parsed: %s", e.Detail)
}

// Is allows for error checking with errors.Is().
func (e *ParseError) Is(target error) bool {
	_, ok := target.(*ParseError)
	return ok
}

// NewParseError creates a new ParseError.
func NewParseError(detail string) *ParseError {
	return &ParseError{Detail: detail}
}

// NoSignalError is returned when an aligner produced zero usable offset
// samples. Coming from the primary aligner it triggers the fallback path;
// coming from the fallback it is terminal.
type NoSignalError struct {
	Aligner string
}

// Error implements the error interface.
func (e *NoSignalError) Error() string {
	return fmt.Sprintf("%s produced no usable offset samples", e.Aligner)
}

// Is allows for error checking with errors.Is().
func (e *NoSignalError) Is(target error) bool {
	_, ok := target.(*NoSignalError)
	return ok
}

// NewNoSignalError creates a new NoSignalError.
func NewNoSignalError(aligner string) *NoSignalError {
	return &NoSignalError{Aligner: aligner}
}

// LowConfidenceError is returned when offset samples were extracted but
// their agreement is too weak to accept.
type LowConfidenceError struct {
	Aligner    string
	Confidence float64
	Samples    int
}

// Error implements the error interface.
func (e *LowConfidenceError) Error() string {
	return fmt.Sprintf("%s confidence %.2f from %d sample(s) is below the acceptance threshold", e.Aligner, e.Confidence, e.Samples)
}

// Is allows for error checking with errors.Is().
func (e *LowConfidenceError) Is(target error) bool {
	_, ok := target.(*LowConfidenceError)
	return ok
}

// NewLowConfidenceError creates a new LowConfidenceError.
func NewLowConfidenceError(aligner string, confidence float64, samples int) *LowConfidenceError {
	return &LowConfidenceError{Aligner: aligner, Confidence: confidence, Samples: samples}
}

// ToolTimeoutError is returned when an external tool invocation exceeded its
// stage budget. It is terminal at whichever stage it occurs; a stream that
// stalled once is likely to stall again within the same request budget.
type ToolTimeoutError struct {
	Tool   string
	Budget time.Duration
}

// Error implements the error interface.
func (e *ToolTimeoutError) Error() string {
	return fmt.Sprintf("%s exceeded its %s budget", e.Tool, e.Budget)
}

// Is allows for error checking with errors.Is().
func (e *ToolTimeoutError) Is(target error) bool {
	_, ok := target.(*ToolTimeoutError)
	return ok
}

// NewToolTimeoutError creates a new ToolTimeoutError.
func NewToolTimeoutError(tool string, budget time.Duration) *ToolTimeoutError {
	return &ToolTimeoutError{Tool: tool, Budget: budget}
}

// InternalError wraps an unexpected failure.
type InternalError struct {
	Cause error
}

// Error implements the error interface.
func (e *InternalError) Error() string {
	return fmt.Sprintf("internal error: %v", e.Cause)
}

// Is allows for error checking with errors.Is().
func (e *InternalError) Is(target error) bool {
	_, ok := target.(*InternalError)
	return ok
}

// Unwrap exposes the underlying cause for errors.Is/errors.As chains.
func (e *InternalError) Unwrap() error {
	return e.Cause
}

// NewInternalError creates a new InternalError.
func NewInternalError(cause error) *InternalError {
	return &InternalError{Cause: cause}
}
