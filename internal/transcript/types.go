package transcript

import (
	"fmt"

	"crosstalk/internal/faults"
)

// TimeSpan is a half-open interval on the recording timeline, in seconds.
type TimeSpan struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Validate rejects negative and zero-length spans.
func (s TimeSpan) Validate() error {
	if s.Start < 0 {
		return fmt.Errorf("span start %.3f is negative", s.Start)
	}
	if s.End <= s.Start {
		return fmt.Errorf("span end %.3f is not after start %.3f", s.End, s.Start)
	}
	return nil
}

// Duration returns the span length in seconds.
func (s TimeSpan) Duration() float64 {
	return s.End - s.Start
}

// Segment is one time-stamped piece of engine output. Segments within a
// Transcript are ordered by span start; overlap between consecutive segments
// is engine behaviour and is carried through as-is.
type Segment struct {
	Span TimeSpan `json:"span"`
	Text string   `json:"text"`
}

// Transcript is the canonical speech-to-text contract produced by every
// transcription backend.
type Transcript struct {
	Text     string    `json:"text"`
	Language string    `json:"language"`
	Segments []Segment `json:"segments"`
}

// SpeakerTurn is one diarization interval attributed to a speaker label.
// Turns of different speakers may overlap (simultaneous speech).
type SpeakerTurn struct {
	Span    TimeSpan `json:"span"`
	Speaker string   `json:"speaker"`
}

// AnnotatedSegment attributes one transcript segment to one speaker. The
// span is always the original segment span, never clipped to the turn.
type AnnotatedSegment struct {
	Span    TimeSpan `json:"span"`
	Speaker string   `json:"speaker"`
	Text    string   `json:"text"`
}

// SpeakerTranscript is the fused, immutable result of alignment.
//
// Segments holds every annotated segment sorted by span start. BySpeaker is
// an exact partition of Segments keyed by speaker label, each bucket keeping
// the chronological order of the master list. Speakers lists every label the
// diarization produced, in first-appearance order, including speakers whose
// turns overlapped no transcript segment.
type SpeakerTranscript struct {
	FullText  string                        `json:"full_text"`
	Language  string                        `json:"language"`
	Segments  []AnnotatedSegment            `json:"segments"`
	Speakers  []string                      `json:"speakers"`
	BySpeaker map[string][]AnnotatedSegment `json:"by_speaker"`
}

// SpeakerSegments returns one speaker's bucket.
func (st *SpeakerTranscript) SpeakerSegments(speaker string) ([]AnnotatedSegment, error) {
	segments, ok := st.BySpeaker[speaker]
	if !ok {
		return nil, faults.Wrap(faults.ErrSpeakerNotFound, "transcript", "lookup", fmt.Sprintf("speaker %q has no segments", speaker), nil)
	}
	return segments, nil
}
