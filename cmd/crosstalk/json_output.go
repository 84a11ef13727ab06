package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"crosstalk/internal/faults"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type failurePayload struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code"`
}

// writeFailure reports an operational failure as the command's single JSON
// object. The process still exits zero; a nonzero exit is reserved for usage
// errors.
func writeFailure(cmd *cobra.Command, err error) error {
	return writeJSON(cmd, failurePayload{Error: err.Error(), Code: faults.Code(err)})
}
