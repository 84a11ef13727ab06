package subtitles

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"crosstalk/internal/faults"
	"crosstalk/internal/transcript"
)

func sampleSpeakerTranscript() *transcript.SpeakerTranscript {
	tr := &transcript.Transcript{
		Text: "hello there general kenobi",
		Segments: []transcript.Segment{
			{Span: transcript.TimeSpan{Start: 0, End: 2}, Text: "hello there"},
			{Span: transcript.TimeSpan{Start: 2, End: 4}, Text: "general kenobi"},
		},
	}
	turns := []transcript.SpeakerTurn{
		{Span: transcript.TimeSpan{Start: 0, End: 2}, Speaker: "SPEAKER_00"},
		{Span: transcript.TimeSpan{Start: 2, End: 4}, Speaker: "SPEAKER_01"},
	}
	st, err := transcript.Align(tr, turns)
	if err != nil {
		panic(err)
	}
	return st
}

func TestWriteSpeaker(t *testing.T) {
	st := sampleSpeakerTranscript()
	path := filepath.Join(t.TempDir(), "out.srt")

	if err := WriteSpeaker(st, "SPEAKER_00", path); err != nil {
		t.Fatalf("write speaker: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "hello there") || strings.Contains(content, "general kenobi") {
		t.Fatalf("expected only SPEAKER_00 cues:\n%s", content)
	}
}

func TestWriteSpeakerUnknown(t *testing.T) {
	st := sampleSpeakerTranscript()
	err := WriteSpeaker(st, "SPEAKER_99", filepath.Join(t.TempDir(), "out.srt"))
	if !errors.Is(err, faults.ErrSpeakerNotFound) {
		t.Fatalf("expected speaker not found, got %v", err)
	}
}

func TestWriteAllSpeakers(t *testing.T) {
	st := sampleSpeakerTranscript()
	dir := filepath.Join(t.TempDir(), "nested", "exports")

	paths, err := WriteAllSpeakers(st, dir, "meeting")
	if err != nil {
		t.Fatalf("write all: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("expected 2 files, got %v", paths)
	}
	want := []string{
		filepath.Join(dir, "meeting_SPEAKER_00.srt"),
		filepath.Join(dir, "meeting_SPEAKER_01.srt"),
	}
	for i, p := range paths {
		if p != want[i] {
			t.Fatalf("path %d = %q, want %q", i, p, want[i])
		}
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("missing exported file %q: %v", p, err)
		}
	}
}

func TestWriteAllSpeakersDefaultBaseName(t *testing.T) {
	st := sampleSpeakerTranscript()
	dir := t.TempDir()
	paths, err := WriteAllSpeakers(st, dir, "")
	if err != nil {
		t.Fatalf("write all: %v", err)
	}
	if filepath.Base(paths[0]) != "speaker_SPEAKER_00.srt" {
		t.Fatalf("unexpected default base name: %q", paths[0])
	}
}
