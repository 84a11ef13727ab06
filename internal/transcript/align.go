package transcript

import (
	"fmt"
	"sort"
	"strings"

	"crosstalk/internal/faults"
)

// Align fuses a transcript with an ordered list of speaker turns.
//
// For every (turn, segment) pair whose spans intersect with strictly
// positive length, one AnnotatedSegment is emitted carrying the turn's
// speaker and the segment's original, unclipped span. A segment straddling a
// speaker boundary therefore appears once per overlapping turn, with
// identical span and text and differing speaker. That duplication is the
// contract, not an artifact; downstream consumers rely on it.
//
// The scan is O(turns x segments), fine for the hundreds of items a single
// recording produces. Inputs are never mutated.
func Align(tr *Transcript, turns []SpeakerTurn) (*SpeakerTranscript, error) {
	if tr == nil {
		return nil, faults.Wrap(faults.ErrAlignmentInput, "align", "validate", "transcript is nil", nil)
	}
	if err := validateInputs(tr, turns); err != nil {
		return nil, err
	}

	annotated := make([]AnnotatedSegment, 0, len(tr.Segments))
	speakers := make([]string, 0, 4)
	seen := make(map[string]struct{}, 4)

	for _, turn := range turns {
		if _, ok := seen[turn.Speaker]; !ok {
			seen[turn.Speaker] = struct{}{}
			speakers = append(speakers, turn.Speaker)
		}
		for _, seg := range tr.Segments {
			overlapStart := max(turn.Span.Start, seg.Span.Start)
			overlapEnd := min(turn.Span.End, seg.Span.End)
			if overlapStart >= overlapEnd {
				continue
			}
			annotated = append(annotated, AnnotatedSegment{
				Span:    seg.Span,
				Speaker: turn.Speaker,
				Text:    strings.TrimSpace(seg.Text),
			})
		}
	}

	// Ties keep generation order, so turn order decides between segments
	// with equal starts.
	sort.SliceStable(annotated, func(i, j int) bool {
		return annotated[i].Span.Start < annotated[j].Span.Start
	})

	bySpeaker := make(map[string][]AnnotatedSegment, len(speakers))
	for _, seg := range annotated {
		bySpeaker[seg.Speaker] = append(bySpeaker[seg.Speaker], seg)
	}

	return &SpeakerTranscript{
		FullText:  tr.Text,
		Language:  tr.Language,
		Segments:  annotated,
		Speakers:  speakers,
		BySpeaker: bySpeaker,
	}, nil
}

func validateInputs(tr *Transcript, turns []SpeakerTurn) error {
	for i, seg := range tr.Segments {
		if err := seg.Span.Validate(); err != nil {
			return faults.Wrap(faults.ErrAlignmentInput, "align", "validate", fmt.Sprintf("transcript segment %d", i), err)
		}
	}
	for i, turn := range turns {
		if err := turn.Span.Validate(); err != nil {
			return faults.Wrap(faults.ErrAlignmentInput, "align", "validate", fmt.Sprintf("speaker turn %d", i), err)
		}
		if strings.TrimSpace(turn.Speaker) == "" {
			return faults.Wrap(faults.ErrAlignmentInput, "align", "validate", fmt.Sprintf("speaker turn %d has no label", i), nil)
		}
	}
	return nil
}
