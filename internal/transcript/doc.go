// Package transcript defines the canonical transcription and diarization
// data model and the alignment engine that fuses the two into a
// speaker-attributed transcript.
package transcript
