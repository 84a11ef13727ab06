package main

import (
	"github.com/spf13/cobra"

	"crosstalk/internal/store"
)

type analysesResult struct {
	Success  bool            `json:"success"`
	Analyses []store.Summary `json:"analyses"`
}

func newAnalysesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "analyses",
		Short: "List saved analyses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := ctx.openStore()
			if err != nil {
				return writeFailure(cmd, err)
			}
			defer db.Close()

			summaries, err := db.ListAnalyses(cmd.Context())
			if err != nil {
				return writeFailure(cmd, err)
			}
			if summaries == nil {
				summaries = []store.Summary{}
			}
			return writeJSON(cmd, analysesResult{Success: true, Analyses: summaries})
		},
	}
}
