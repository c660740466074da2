package models

import (
	"time"
)

// Cue represents a single timed subtitle entry.
type Cue struct {
	Index int           `json:"index"` // Sequence number within the document
	Start time.Duration `json:"start"` // Start time relative to stream start
	End   time.Duration `json:"end"`   // End time, always >= Start
	Lines []string      `json:"lines"` // Text payload, one or more lines
}

// SubtitleDocument is an ordered sequence of cues parsed from an SRT document.
// Cues keep the non-decreasing start-time order they were parsed in; shifting
// translates timestamps but never re-sorts.
type SubtitleDocument struct {
	Cues []Cue `json:"cues"`
}

// Clone returns a deep copy of the document so that shifted copies never
// alias the original cue text slices.
func (d *SubtitleDocument) Clone() *SubtitleDocument {
	cues := make([]Cue, len(d.Cues))
	copy(cues, d.Cues)
	for i := range cues {
		lines := make([]string, len(d.Cues[i].Lines))
		copy(lines, d.Cues[i].Lines)
		cues[i].Lines = lines
	}
	return &SubtitleDocument{Cues: cues}
}
