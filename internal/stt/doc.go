// Package stt adapts external speech-to-text engines to one canonical
// Transcript contract. Backends form a closed set; availability is an
// explicit capability probe, never an import-failure fallback.
package stt
