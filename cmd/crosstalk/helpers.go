package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"crosstalk/internal/faults"
	"crosstalk/internal/transcript"
)

// resolveSpeakerTranscript loads the speaker transcript a subcommand operates
// on: either a saved analysis referenced by id, or an inline JSON file (the
// object `analyze --diarize` prints) given via --from-json.
func resolveSpeakerTranscript(cmd *cobra.Command, ctx *commandContext, args []string, fromJSON string) (*transcript.SpeakerTranscript, error) {
	fromJSON = strings.TrimSpace(fromJSON)
	if fromJSON != "" {
		return readSpeakerTranscriptJSON(fromJSON)
	}
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return nil, errors.New("an analysis id or --from-json file is required")
	}

	db, err := ctx.openStore()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	analysis, err := db.GetAnalysis(cmd.Context(), strings.TrimSpace(args[0]))
	if err != nil {
		return nil, err
	}
	return analysis.Transcript, nil
}

func readSpeakerTranscriptJSON(path string) (*transcript.SpeakerTranscript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, faults.Wrap(faults.ErrInputNotFound, "cli", "read-json", path, err)
	}
	var payload struct {
		Language  string                        `json:"language"`
		FullText  string                        `json:"full_text"`
		Annotated []transcript.AnnotatedSegment `json:"annotated_segments"`
		Speakers  []string                      `json:"speakers"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, faults.Wrap(faults.ErrValidation, "cli", "read-json", fmt.Sprintf("parse %s", path), err)
	}
	if len(payload.Annotated) == 0 {
		return nil, faults.Wrap(faults.ErrValidation, "cli", "read-json", fmt.Sprintf("%s has no annotated segments", path), nil)
	}

	st := &transcript.SpeakerTranscript{
		FullText:  payload.FullText,
		Language:  payload.Language,
		Segments:  payload.Annotated,
		Speakers:  payload.Speakers,
		BySpeaker: make(map[string][]transcript.AnnotatedSegment),
	}
	seen := make(map[string]struct{}, len(payload.Speakers))
	for _, speaker := range payload.Speakers {
		seen[speaker] = struct{}{}
	}
	for _, seg := range payload.Annotated {
		st.BySpeaker[seg.Speaker] = append(st.BySpeaker[seg.Speaker], seg)
		if _, ok := seen[seg.Speaker]; !ok {
			seen[seg.Speaker] = struct{}{}
			st.Speakers = append(st.Speakers, seg.Speaker)
		}
	}
	return st, nil
}
