package subtitles

import (
	"strings"
	"testing"
)

func TestFormatTimestamp(t *testing.T) {
	cases := []struct {
		seconds float64
		want    string
	}{
		{0, "00:00:00,000"},
		{3661.005, "01:01:01,005"},
		{59.999, "00:00:59,999"},
		{3600, "01:00:00,000"},
		{1.9996, "00:00:01,999"}, // truncated, never rounded up
		{36000.5, "10:00:00,500"},
	}
	for _, tc := range cases {
		if got := FormatTimestamp(tc.seconds); got != tc.want {
			t.Fatalf("FormatTimestamp(%v) = %q, want %q", tc.seconds, got, tc.want)
		}
	}
}

func TestParseTimestampRoundTrip(t *testing.T) {
	for _, value := range []string{"01:01:01,005", "00:00:00,000", "10:59:59,999"} {
		seconds, err := ParseTimestamp(value)
		if err != nil {
			t.Fatalf("parse %q: %v", value, err)
		}
		if got := FormatTimestamp(seconds); got != value {
			t.Fatalf("round trip %q -> %v -> %q", value, seconds, got)
		}
	}
}

func TestParseTimestampRejectsGarbage(t *testing.T) {
	for _, value := range []string{"", "1:2", "aa:bb:cc,ddd", "00:00:00"} {
		if _, err := ParseTimestamp(value); err == nil {
			t.Fatalf("expected error for %q", value)
		}
	}
}

func TestRenderCueStructure(t *testing.T) {
	lines := []Line{
		{Start: 0, End: 1.5, Text: "  first cue  "},
		{Start: 1.5, End: 3, Text: "second cue"},
		{Start: 3, End: 4, Text: "third cue"},
	}
	content := Render(lines)

	if CountCues(content) != 3 {
		t.Fatalf("expected 3 cues, got %d:\n%s", CountCues(content), content)
	}

	blocks := strings.Split(strings.TrimSpace(content), "\n\n")
	for i, block := range blocks {
		rows := strings.Split(block, "\n")
		if len(rows) != 3 {
			t.Fatalf("cue %d has %d rows: %q", i+1, len(rows), block)
		}
		if rows[0] != []string{"1", "2", "3"}[i] {
			t.Fatalf("cue %d numbered %q", i+1, rows[0])
		}
		if !strings.Contains(rows[1], " --> ") {
			t.Fatalf("cue %d missing range line: %q", i+1, rows[1])
		}
	}

	if !strings.Contains(content, "first cue") || strings.Contains(content, "  first cue") {
		t.Fatalf("cue text must be trimmed:\n%s", content)
	}
	if !strings.Contains(content, "00:00:01,500 --> 00:00:03,000") {
		t.Fatalf("unexpected range formatting:\n%s", content)
	}
	if !strings.HasSuffix(content, "\n\n") {
		t.Fatalf("content must end with a blank separator line")
	}
}

func TestRenderEmpty(t *testing.T) {
	if got := Render(nil); got != "" {
		t.Fatalf("expected empty output, got %q", got)
	}
	if CountCues("") != 0 {
		t.Fatalf("expected zero cues for empty content")
	}
}
