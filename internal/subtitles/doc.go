// Package subtitles renders speaker-attributed transcripts as SRT subtitle
// files, for the whole recording or for one speaker's segments.
package subtitles
