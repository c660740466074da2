package offset

import (
	"errors"
	"testing"
	"time"

	"github.com/streamsync/subsync/internal/aligner"
	"github.com/streamsync/subsync/internal/apperrors"
	"github.com/streamsync/subsync/internal/models"
	"github.com/streamsync/subsync/internal/srt"
)

func ms(v int64) time.Duration {
	return time.Duration(v) * time.Millisecond
}

func samplesOf(offsets ...int64) []models.OffsetSample {
	out := make([]models.OffsetSample, len(offsets))
	for i, o := range offsets {
		out[i] = models.OffsetSample{CueIndex: i + 1, Offset: ms(o)}
	}
	return out
}

func TestExtractSamples(t *testing.T) {
	t.Parallel()

	original, err := srt.Parse("1\n00:00:01,000 --> 00:00:04,000\na\n\n" +
		"2\n00:00:05,000 --> 00:00:06,000\nb\n\n" +
		"3\n00:00:10,000 --> 00:00:11,000\nc\n")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	t.Run("diffs aligned subtitle against original", func(t *testing.T) {
		t.Parallel()
		synced := "1\n00:00:02,500 --> 00:00:05,500\na\n\n" +
			"2\n00:00:06,500 --> 00:00:07,500\nb\n\n" +
			"3\n00:00:11,500 --> 00:00:12,500\nc\n"
		samples := ExtractSamples(original, &aligner.Output{SyncedText: synced})
		if len(samples) != 3 {
			t.Fatalf("len(samples) = %d, want 3", len(samples))
		}
		for i, s := range samples {
			if s.Offset != 1500*time.Millisecond {
				t.Errorf("sample %d offset = %v, want 1.5s", i, s.Offset)
			}
			if s.CueIndex != original.Cues[i].Index {
				t.Errorf("sample %d cue index = %d, want %d", i, s.CueIndex, original.Cues[i].Index)
			}
		}
	})

	t.Run("falls back to log readings when no document was produced", func(t *testing.T) {
		t.Parallel()
		log := "[INFO] extracting speech segments...\n" +
			"[INFO] offset seconds: -2.25\n" +
			"[INFO] done"
		samples := ExtractSamples(original, &aligner.Output{Log: log})
		if len(samples) != 1 {
			t.Fatalf("len(samples) = %d, want 1", len(samples))
		}
		if samples[0].Offset != -2250*time.Millisecond {
			t.Errorf("offset = %v, want -2.25s", samples[0].Offset)
		}
	})

	t.Run("unparseable output yields zero samples", func(t *testing.T) {
		t.Parallel()
		samples := ExtractSamples(original, &aligner.Output{Log: "Traceback (most recent call last): ..."})
		if len(samples) != 0 {
			t.Fatalf("len(samples) = %d, want 0", len(samples))
		}
	})

	t.Run("shorter aligned document pairs only matching cues", func(t *testing.T) {
		t.Parallel()
		synced := "1\n00:00:02,000 --> 00:00:05,000\na\n"
		samples := ExtractSamples(original, &aligner.Output{SyncedText: synced})
		if len(samples) != 1 {
			t.Fatalf("len(samples) = %d, want 1", len(samples))
		}
		if samples[0].Offset != time.Second {
			t.Errorf("offset = %v, want 1s", samples[0].Offset)
		}
	})

	t.Run("nil output yields zero samples", func(t *testing.T) {
		t.Parallel()
		if samples := ExtractSamples(original, nil); len(samples) != 0 {
			t.Fatalf("len(samples) = %d, want 0", len(samples))
		}
	})
}

func TestReduce(t *testing.T) {
	t.Parallel()

	t.Run("zero samples is NoSignalError, never a fake zero offset", func(t *testing.T) {
		t.Parallel()
		_, _, err := Reduce(nil, 5)
		if !errors.Is(err, &apperrors.NoSignalError{}) {
			t.Fatalf("Reduce(nil) error = %v, want *apperrors.NoSignalError", err)
		}
	})

	t.Run("median resists one wild outlier", func(t *testing.T) {
		t.Parallel()
		noisy := samplesOf(100, 105, 98, 5000, 102)
		got, noisyConf, err := Reduce(noisy, 5)
		if err != nil {
			t.Fatalf("Reduce() error = %v", err)
		}
		if got < ms(98) || got > ms(105) {
			t.Errorf("median = %v, want within 98ms..105ms", got)
		}

		tight := samplesOf(100, 101, 99, 102, 100)
		_, tightConf, err := Reduce(tight, 5)
		if err != nil {
			t.Fatalf("Reduce() error = %v", err)
		}
		if noisyConf >= tightConf {
			t.Errorf("confidence: noisy %.3f should be below tight %.3f", noisyConf, tightConf)
		}
	})

	t.Run("single sample gets the floor confidence and can be accepted", func(t *testing.T) {
		t.Parallel()
		got, conf, err := Reduce(samplesOf(1500), 5)
		if err != nil {
			t.Fatalf("Reduce() error = %v", err)
		}
		if got != ms(1500) {
			t.Errorf("offset = %v, want 1.5s", got)
		}
		if conf != singleSampleConfidence {
			t.Errorf("confidence = %.2f, want %.2f", conf, singleSampleConfidence)
		}
	})

	t.Run("only the first N samples in cue order are considered", func(t *testing.T) {
		t.Parallel()
		samples := []models.OffsetSample{
			{CueIndex: 6, Offset: ms(9000)},
			{CueIndex: 1, Offset: ms(100)},
			{CueIndex: 2, Offset: ms(100)},
			{CueIndex: 3, Offset: ms(100)},
			{CueIndex: 4, Offset: ms(100)},
			{CueIndex: 5, Offset: ms(100)},
		}
		got, _, err := Reduce(samples, 5)
		if err != nil {
			t.Fatalf("Reduce() error = %v", err)
		}
		if got != ms(100) {
			t.Errorf("offset = %v, want 100ms (cue 6 must not be considered)", got)
		}
	})

	t.Run("confidence never exceeds 1 nor drops below the minimum", func(t *testing.T) {
		t.Parallel()
		_, conf, err := Reduce(samplesOf(0, 0, 0), 5)
		if err != nil {
			t.Fatalf("Reduce() error = %v", err)
		}
		if conf != 1 {
			t.Errorf("identical samples confidence = %.3f, want 1", conf)
		}

		_, conf, err = Reduce(samplesOf(0, 60000), 5)
		if err != nil {
			t.Fatalf("Reduce() error = %v", err)
		}
		if conf != minConfidence {
			t.Errorf("wildly spread confidence = %.3f, want floor %.3f", conf, minConfidence)
		}
	})
}
