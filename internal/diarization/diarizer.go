package diarization

import (
	"context"
	"fmt"
	"os"

	"crosstalk/internal/faults"
	"crosstalk/internal/transcript"
)

// Hint constrains the expected speaker count. Exact and the Min/Max range
// are mutually exclusive; a zero Hint leaves the pipeline unconstrained.
type Hint struct {
	Exact int
	Min   int
	Max   int
}

// Validate rejects contradictory hints.
func (h Hint) Validate() error {
	if h.Exact < 0 || h.Min < 0 || h.Max < 0 {
		return faults.Wrap(faults.ErrValidation, "diarization", "hint", "speaker counts cannot be negative", nil)
	}
	if h.Exact > 0 && (h.Min > 0 || h.Max > 0) {
		return faults.Wrap(faults.ErrValidation, "diarization", "hint", "exact speaker count excludes a min/max range", nil)
	}
	if h.Min > 0 && h.Max > 0 && h.Min > h.Max {
		return faults.Wrap(faults.ErrValidation, "diarization", "hint", fmt.Sprintf("min speakers %d exceeds max %d", h.Min, h.Max), nil)
	}
	return nil
}

// Request carries one diarization job.
type Request struct {
	AudioPath string
	Hint      Hint
}

// Diarizer is one diarization backend variant.
type Diarizer interface {
	Name() string
	Available() error
	Diarize(ctx context.Context, req Request) ([]transcript.SpeakerTurn, error)
}

func validateRequest(req Request) error {
	if _, err := os.Stat(req.AudioPath); err != nil {
		return faults.Wrap(faults.ErrInputNotFound, "diarization", "diarize", req.AudioPath, err)
	}
	return req.Hint.Validate()
}
