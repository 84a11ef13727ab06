package diarization

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"crosstalk/internal/transcript"
)

// ParseRTTM reads speaker turns from RTTM content. Only SPEAKER records are
// considered; the result is sorted ascending by turn start.
//
// RTTM record layout:
//
//	SPEAKER <file> <chan> <onset> <duration> <NA> <NA> <label> <NA> <NA>
func ParseRTTM(r io.Reader) ([]transcript.SpeakerTurn, error) {
	var turns []transcript.SpeakerTurn
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, ";") {
			continue
		}
		fields := strings.Fields(line)
		if fields[0] != "SPEAKER" {
			continue
		}
		if len(fields) < 8 {
			return nil, fmt.Errorf("rttm line %d: expected at least 8 fields, got %d", lineNo, len(fields))
		}
		onset, err := strconv.ParseFloat(fields[3], 64)
		if err != nil {
			return nil, fmt.Errorf("rttm line %d: bad onset %q", lineNo, fields[3])
		}
		duration, err := strconv.ParseFloat(fields[4], 64)
		if err != nil {
			return nil, fmt.Errorf("rttm line %d: bad duration %q", lineNo, fields[4])
		}
		if duration <= 0 {
			continue
		}
		turns = append(turns, transcript.SpeakerTurn{
			Span:    transcript.TimeSpan{Start: onset, End: onset + duration},
			Speaker: fields[7],
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read rttm: %w", err)
	}
	sort.SliceStable(turns, func(i, j int) bool {
		return turns[i].Span.Start < turns[j].Span.Start
	})
	return turns, nil
}
