// Package diarization adapts an external speaker-diarization pipeline into
// the canonical list of ordered speaker turns.
package diarization
