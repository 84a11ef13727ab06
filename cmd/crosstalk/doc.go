// Package main hosts the crosstalk CLI entrypoint and command graph.
//
// The Cobra-based command tree turns terminal invocations into transcription,
// diarization, subtitle export, speaker audio extraction, model management,
// and media helper operations. Operational commands emit exactly one JSON
// object on stdout with a "success" field so the CLI can be driven by other
// programs; the status command renders human-readable tables instead.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
