package faults

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel markers for failure classification. Public operations wrap
// underlying errors with one of these so callers can classify with errors.Is
// and the CLI can map them to stable result codes.
var (
	ErrInputNotFound      = errors.New("input not found")
	ErrNotFound           = errors.New("not found")
	ErrBackendUnavailable = errors.New("backend unavailable")
	ErrModelLoad          = errors.New("model load failure")
	ErrTranscription      = errors.New("transcription failure")
	ErrDiarization        = errors.New("diarization failure")
	ErrAuthRequired       = errors.New("auth required")
	ErrToolUnavailable    = errors.New("tool unavailable")
	ErrToolExecution      = errors.New("tool execution failure")
	ErrAlignmentInput     = errors.New("alignment input invalid")
	ErrSpeakerNotFound    = errors.New("speaker not found")
	ErrCancelled          = errors.New("cancelled by user")
	ErrValidation         = errors.New("validation error")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker. The marker should be one of the exported
// sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrValidation
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Code maps an error to the stable code string reported on the JSON command
// surface. Unclassified errors report as "internal".
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInputNotFound):
		return "input_not_found"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrBackendUnavailable):
		return "backend_unavailable"
	case errors.Is(err, ErrModelLoad):
		return "model_load_failure"
	case errors.Is(err, ErrTranscription):
		return "transcription_failure"
	case errors.Is(err, ErrDiarization):
		return "diarization_failure"
	case errors.Is(err, ErrAuthRequired):
		return "auth_required"
	case errors.Is(err, ErrToolUnavailable):
		return "tool_unavailable"
	case errors.Is(err, ErrToolExecution):
		return "tool_execution_failure"
	case errors.Is(err, ErrAlignmentInput):
		return "alignment_input_invalid"
	case errors.Is(err, ErrSpeakerNotFound):
		return "speaker_not_found"
	case errors.Is(err, ErrCancelled):
		return "cancelled"
	case errors.Is(err, ErrValidation):
		return "validation_error"
	default:
		return "internal"
	}
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "operation failed"
	}
	return strings.Join(parts, ": ")
}
