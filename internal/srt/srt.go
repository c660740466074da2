// Package srt implements parsing, serialization and time-shifting of SubRip
// subtitle documents. Parsing is tolerant per cue block: a malformed block is
// skipped, not fatal, unless no block at all survives.
package srt

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/streamsync/subsync/internal/apperrors"
	"github.com/streamsync/subsync/internal/models"
)

// timestampPattern matches an SRT timestamp. A dot millisecond separator is
// accepted on input; serialization always emits the comma form.
var timestampPattern = regexp.MustCompile(`^(\d+):(\d{2}):(\d{2})[,.](\d{1,3})$`)

// Parse converts a raw SRT document into a SubtitleDocument. Cue blocks are
// separated by blank lines; the block index line is optional and never
// trusted. Returns *apperrors.ParseError when zero well-formed cues are
// found.
func Parse(text string) (*models.SubtitleDocument, error) {
	normalized := strings.ReplaceAll(text, "\r\n", "\n")
	normalized = strings.TrimPrefix(normalized, "\ufeff")
	blocks := strings.Split(normalized, "\n\n")

	cues := make([]models.Cue, 0, len(blocks))
	for _, block := range blocks {
		cue, ok := parseBlock(block)
		if !ok {
			continue
		}
		cue.Index = len(cues) + 1
		cues = append(cues, cue)
	}

	if len(cues) == 0 {
		return nil, apperrors.NewParseError("no well-formed cues")
	}
	return &models.SubtitleDocument{Cues: cues}, nil
}

// parseBlock parses one cue block. The timing line is located by its arrow
// separator so documents with missing or duplicated index lines still parse.
func parseBlock(block string) (models.Cue, bool) {
	lines := splitTrimmed(block)
	if len(lines) < 2 {
		return models.Cue{}, false
	}

	timingLine := -1
	for i, line := range lines {
		if strings.Contains(line, "-->") {
			timingLine = i
			break
		}
	}
	if timingLine == -1 || timingLine == len(lines)-1 {
		return models.Cue{}, false
	}

	start, end, err := parseTimingLine(lines[timingLine])
	if err != nil {
		return models.Cue{}, false
	}
	if end < start {
		return models.Cue{}, false
	}

	text := make([]string, len(lines)-timingLine-1)
	copy(text, lines[timingLine+1:])
	return models.Cue{Start: start, End: end, Lines: text}, true
}

func splitTrimmed(block string) []string {
	raw := strings.Split(block, "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		lines = append(lines, strings.TrimRight(line, " \t"))
	}
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func parseTimingLine(line string) (time.Duration, time.Duration, error) {
	parts := strings.Split(line, "-->")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("missing arrow separator in %q", line)
	}
	start, err := ParseTimestamp(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, err
	}
	end, err := ParseTimestamp(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

// ParseTimestamp converts an SRT timestamp (HH:MM:SS,mmm) to a duration.
func ParseTimestamp(s string) (time.Duration, error) {
	match := timestampPattern.FindStringSubmatch(s)
	if match == nil {
		return 0, fmt.Errorf("invalid timestamp %q", s)
	}
	h, _ := strconv.Atoi(match[1])
	m, _ := strconv.Atoi(match[2])
	sec, _ := strconv.Atoi(match[3])
	ms, _ := strconv.Atoi(match[4])
	if m > 59 || sec > 59 {
		return 0, fmt.Errorf("invalid timestamp %q", s)
	}
	total := time.Duration(h)*time.Hour +
		time.Duration(m)*time.Minute +
		time.Duration(sec)*time.Second +
		time.Duration(ms)*time.Millisecond
	return total, nil
}

// FormatTimestamp converts a duration to canonical SRT form (HH:MM:SS,mmm).
// Negative durations render as 00:00:00,000.
func FormatTimestamp(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	ms := d.Milliseconds()
	h := ms / 3_600_000
	ms %= 3_600_000
	m := ms / 60_000
	ms %= 60_000
	s := ms / 1000
	ms %= 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}

// Serialize re-emits a document as SRT text. Cues are renumbered
// sequentially from 1, timestamps are canonicalized and the text payload is
// preserved verbatim.
func Serialize(doc *models.SubtitleDocument) string {
	var b strings.Builder
	for i, cue := range doc.Cues {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteString("\n")
		b.WriteString(FormatTimestamp(cue.Start))
		b.WriteString(" --> ")
		b.WriteString(FormatTimestamp(cue.End))
		b.WriteString("\n")
		b.WriteString(strings.Join(cue.Lines, "\n"))
		b.WriteString("\n")
	}
	return b.String()
}

// Shift returns a new document with offset added to every cue's start and
// end. A start that would go negative clamps to zero; an end that would fall
// before its clamped start collapses to a zero-duration cue. No cue is ever
// dropped and the input document is never mutated.
func Shift(doc *models.SubtitleDocument, offset time.Duration) *models.SubtitleDocument {
	shifted := doc.Clone()
	for i := range shifted.Cues {
		cue := &shifted.Cues[i]
		cue.Start += offset
		cue.End += offset
		if cue.Start < 0 {
			cue.Start = 0
		}
		if cue.End < cue.Start {
			cue.End = cue.Start
		}
	}
	return shifted
}
