// Package offset turns raw aligner output into a single resolved offset.
// Extraction and reduction are pure functions so they can be tested without
// invoking the real external tools.
package offset

import (
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/streamsync/subsync/internal/aligner"
	"github.com/streamsync/subsync/internal/apperrors"
	"github.com/streamsync/subsync/internal/models"
	"github.com/streamsync/subsync/internal/srt"
)

// logOffsetPattern matches the diagnostic offset line ffsubsync prints, e.g.
// "offset seconds: -2.34".
var logOffsetPattern = regexp.MustCompile(`(?i)offset seconds:\s*(-?\d+(?:\.\d+)?)`)

// ExtractSamples derives per-cue offset samples from aligner output.
//
// When the aligner produced a synced subtitle document, each sample is the
// difference between the aligned and original start time of the cue at the
// same position. When no document is available the aligner's log is scanned
// for reported offset readings instead. Unparseable material is skipped;
// an empty result is the caller's signal that the aligner produced nothing
// usable.
func ExtractSamples(original *models.SubtitleDocument, out *aligner.Output) []models.OffsetSample {
	if out == nil {
		return nil
	}
	if samples := samplesFromSyncedText(original, out.SyncedText); len(samples) > 0 {
		return samples
	}
	return samplesFromLog(out.Log)
}

func samplesFromSyncedText(original *models.SubtitleDocument, syncedText string) []models.OffsetSample {
	if syncedText == "" || original == nil {
		return nil
	}
	synced, err := srt.Parse(syncedText)
	if err != nil {
		return nil
	}
	n := len(original.Cues)
	if len(synced.Cues) < n {
		n = len(synced.Cues)
	}
	samples := make([]models.OffsetSample, 0, n)
	for i := 0; i < n; i++ {
		samples = append(samples, models.OffsetSample{
			CueIndex: original.Cues[i].Index,
			Offset:   synced.Cues[i].Start - original.Cues[i].Start,
		})
	}
	return samples
}

func samplesFromLog(log string) []models.OffsetSample {
	matches := logOffsetPattern.FindAllStringSubmatch(log, -1)
	samples := make([]models.OffsetSample, 0, len(matches))
	for _, match := range matches {
		seconds, err := strconv.ParseFloat(match[1], 64)
		if err != nil {
			continue
		}
		samples = append(samples, models.OffsetSample{
			CueIndex: len(samples) + 1,
			Offset:   time.Duration(seconds * float64(time.Second)),
		})
	}
	return samples
}

// singleSampleConfidence is the floor reported when fewer than two samples
// are available. A lone sample is still informative, so the floor sits at the
// default primary acceptance threshold rather than at zero.
const singleSampleConfidence = 0.5

// minConfidence is the lowest confidence Reduce reports for any non-empty
// sample set.
const minConfidence = 0.1

// spreadScale is the mean absolute deviation at which confidence bottoms
// out. Samples agreeing within a few tens of milliseconds score close to 1.
const spreadScale = time.Second

// Reduce collapses a sample set to one scalar offset and a confidence score.
//
// At most maxSamples samples are considered, taken in original cue order.
// The offset is the median of the considered samples; the median is used
// instead of the mean so a single wild reading on a noisy or music-heavy
// segment cannot drag the result. Confidence reflects how tightly the
// samples cluster around that median. An empty set returns
// *apperrors.NoSignalError rather than a zero offset disguised as success.
func Reduce(samples []models.OffsetSample, maxSamples int) (time.Duration, float64, error) {
	if len(samples) == 0 {
		return 0, 0, apperrors.NewNoSignalError("aligner")
	}
	if maxSamples <= 0 {
		maxSamples = 5
	}

	ordered := make([]models.OffsetSample, len(samples))
	copy(ordered, samples)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].CueIndex < ordered[j].CueIndex })
	if len(ordered) > maxSamples {
		ordered = ordered[:maxSamples]
	}

	offsets := make([]time.Duration, len(ordered))
	for i, s := range ordered {
		offsets[i] = s.Offset
	}
	sort.Slice(offsets, func(i, j int) bool { return offsets[i] < offsets[j] })
	median := offsets[len(offsets)/2]

	if len(offsets) < 2 {
		return median, singleSampleConfidence, nil
	}

	var totalDeviation time.Duration
	for _, o := range offsets {
		d := o - median
		if d < 0 {
			d = -d
		}
		totalDeviation += d
	}
	meanDeviation := totalDeviation / time.Duration(len(offsets))

	confidence := 1 - float64(meanDeviation)/float64(spreadScale)
	if confidence < minConfidence {
		confidence = minConfidence
	}
	if confidence > 1 {
		confidence = 1
	}
	return median, confidence, nil
}
