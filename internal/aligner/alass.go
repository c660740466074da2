package aligner

import (
	"context"
)

// Alass is the fallback alignment strategy: a fast, coarser aligner used
// only when the primary one yields no usable signal.
type Alass struct {
	binary string
}

// NewAlass creates the fallback aligner around the given binary.
func NewAlass(binary string) *Alass {
	if binary == "" {
		binary = "alass"
	}
	return &Alass{binary: binary}
}

// Name implements Aligner.
func (a *Alass) Name() string {
	return "alass"
}

// Align implements Aligner.
func (a *Alass) Align(ctx context.Context, req AlignRequest) (*Output, error) {
	args := []string{req.AudioPath, req.SubtitlePath, req.OutputPath}
	return run(ctx, a.Name(), a.binary, args, req)
}

// Probe implements Aligner.
func (a *Alass) Probe(ctx context.Context) error {
	return probeBinary(ctx, a.binary)
}
