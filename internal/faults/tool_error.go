package faults

import (
	"fmt"
	"strings"
)

// ToolError reports a nonzero exit from an external tool. Stderr carries the
// tool's diagnostic output verbatim so the caller can surface it unchanged.
type ToolError struct {
	Tool     string
	ExitCode int
	Stderr   string
}

func (e *ToolError) Error() string {
	detail := strings.TrimSpace(e.Stderr)
	if detail == "" {
		detail = "no diagnostic output"
	}
	return fmt.Sprintf("%s exited with status %d: %s", e.Tool, e.ExitCode, detail)
}

func (e *ToolError) Unwrap() error {
	return ErrToolExecution
}
