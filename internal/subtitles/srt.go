package subtitles

import (
	"fmt"
	"strconv"
	"strings"

	"crosstalk/internal/transcript"
)

// Line is one renderable cue source: a time range plus its text.
type Line struct {
	Start float64
	End   float64
	Text  string
}

// FromSegments converts canonical transcript segments to cue lines.
func FromSegments(segments []transcript.Segment) []Line {
	lines := make([]Line, 0, len(segments))
	for _, seg := range segments {
		lines = append(lines, Line{Start: seg.Span.Start, End: seg.Span.End, Text: seg.Text})
	}
	return lines
}

// FromAnnotated converts speaker-annotated segments to cue lines.
func FromAnnotated(segments []transcript.AnnotatedSegment) []Line {
	lines := make([]Line, 0, len(segments))
	for _, seg := range segments {
		lines = append(lines, Line{Start: seg.Span.Start, End: seg.Span.End, Text: seg.Text})
	}
	return lines
}

// Render produces SRT content: cues numbered from 1, a timestamp range line,
// the trimmed text, and a blank separator after every cue.
func Render(lines []Line) string {
	var b strings.Builder
	for i, line := range lines {
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteByte('\n')
		b.WriteString(FormatTimestamp(line.Start))
		b.WriteString(" --> ")
		b.WriteString(FormatTimestamp(line.End))
		b.WriteByte('\n')
		b.WriteString(strings.TrimSpace(line.Text))
		b.WriteByte('\n')
		b.WriteByte('\n')
	}
	return b.String()
}

// FormatTimestamp renders seconds as HH:MM:SS,mmm with zero padding.
// Sub-millisecond precision is truncated, not rounded; the tiny offset below
// keeps values sitting a float ulp under a millisecond boundary (3661.005
// stored as 3661.004999...) from truncating to the previous millisecond.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	totalMillis := int64(seconds*1000 + 0.0005)
	hours := totalMillis / 3_600_000
	minutes := (totalMillis % 3_600_000) / 60_000
	secs := (totalMillis % 60_000) / 1000
	millis := totalMillis % 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}

// ParseTimestamp converts an SRT timestamp back to seconds. A period is
// accepted in place of the standard comma.
func ParseTimestamp(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty timestamp")
	}
	value = strings.ReplaceAll(value, ".", ",")
	timeParts := strings.Split(value, ",")
	if len(timeParts) != 2 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hms := strings.Split(timeParts[0], ":")
	if len(hms) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hours, errH := strconv.Atoi(hms[0])
	minutes, errM := strconv.Atoi(hms[1])
	seconds, errS := strconv.Atoi(hms[2])
	millis, errMS := strconv.Atoi(timeParts[1])
	if errH != nil || errM != nil || errS != nil || errMS != nil {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	return float64(hours*3600+minutes*60+seconds) + float64(millis)/1000, nil
}

// CountCues returns the number of cue blocks in rendered SRT content.
func CountCues(content string) int {
	content = strings.TrimSpace(content)
	if content == "" {
		return 0
	}
	count := 0
	for _, block := range strings.Split(content, "\n\n") {
		if strings.TrimSpace(block) != "" {
			count++
		}
	}
	return count
}
