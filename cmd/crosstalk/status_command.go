package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"crosstalk/internal/deps"
	"crosstalk/internal/models"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show external tool availability and installed models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			statuses := deps.Check(cfg)
			rows := make([][]string, 0, len(statuses))
			for _, status := range statuses {
				state := "ok"
				if !status.Available {
					state = "missing"
					if status.Optional {
						state = "missing (optional)"
					}
				}
				detail := status.Detail
				if detail == "" {
					detail = status.Description
				}
				rows = append(rows, []string{status.Name, status.Command, state, detail})
			}
			fmt.Fprintln(out, "External tools")
			fmt.Fprintln(out, renderTable([]string{"Tool", "Command", "State", "Detail"}, rows))

			installed := models.InstalledWhisperModels(cfg.Paths.ModelsDir)
			modelRows := make([][]string, 0, len(models.WhisperModels))
			for _, model := range models.WhisperModels {
				state := "not installed"
				for _, have := range installed {
					if have == model {
						state = "installed"
						break
					}
				}
				modelRows = append(modelRows, []string{model, state})
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Whisper models in "+cfg.Paths.ModelsDir)
			fmt.Fprintln(out, renderTable([]string{"Model", "State"}, modelRows))

			if token := strings.TrimSpace(cfg.Diarization.HuggingFaceToken); token == "" {
				fmt.Fprintln(out)
				fmt.Fprintln(out, "Diarization: no HuggingFace token configured; set diarization.hf_token or HF_TOKEN")
			}
			return nil
		},
	}
}
