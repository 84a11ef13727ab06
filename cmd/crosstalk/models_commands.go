package main

import (
	"github.com/spf13/cobra"

	"crosstalk/internal/models"
	"crosstalk/internal/stt"
)

type backendStatus struct {
	Name      string `json:"name"`
	Available bool   `json:"available"`
	Detail    string `json:"detail,omitempty"`
}

type modelsListResult struct {
	Success   bool            `json:"success"`
	ModelsDir string          `json:"models_dir"`
	Available []string        `json:"available_models"`
	Installed []string        `json:"installed_models"`
	Backends  []backendStatus `json:"backends"`
}

type modelsDownloadResult struct {
	Success   bool    `json:"success"`
	ModelID   string  `json:"model_id"`
	LocalPath string  `json:"local_path,omitempty"`
	State     string  `json:"state"`
	Percent   float64 `json:"percent"`
}

func newModelsCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "Manage speech-to-text model weights",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newModelsListCommand(ctx))
	cmd.AddCommand(newModelsDownloadCommand(ctx))
	return cmd
}

func newModelsListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show catalog models, installed weights, and backend availability",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := ctx.modelsManager()
			if err != nil {
				return writeFailure(cmd, err)
			}
			sttCfg, err := ctx.sttConfig()
			if err != nil {
				return writeFailure(cmd, err)
			}

			result := modelsListResult{
				Success:   true,
				ModelsDir: manager.BaseDir(),
				Available: models.WhisperModels,
				Installed: models.InstalledWhisperModels(manager.BaseDir()),
			}
			for _, name := range []string{stt.BackendWhisperCpp, stt.BackendWhisperX, stt.BackendFasterWhisper} {
				status := backendStatus{Name: name}
				if err := stt.Registry(sttCfg)[name].Available(); err != nil {
					status.Detail = err.Error()
				} else {
					status.Available = true
				}
				result.Backends = append(result.Backends, status)
			}
			return writeJSON(cmd, result)
		},
	}
}

func newModelsDownloadCommand(ctx *commandContext) *cobra.Command {
	var familyFlag string

	cmd := &cobra.Command{
		Use:   "download <model>",
		Short: "Download model weights",
		Long: `Downloads the named model weights into the models directory. Whisper.cpp
GGML weights come from the public hub; pyannote weights are token-gated and
are reported as requiring authentication instead. The download is guarded by
a file lock so concurrent invocations do not clobber each other.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := ctx.modelsManager()
			if err != nil {
				return writeFailure(cmd, err)
			}
			logger := ctx.loggerOrDiscard()
			logger.Info("model download started", "component", "models", "family", familyFlag, "model", args[0])

			path, task, err := manager.Download(cmd.Context(), familyFlag, args[0])
			status := task.Poll()
			if err != nil {
				return writeFailure(cmd, err)
			}
			return writeJSON(cmd, modelsDownloadResult{
				Success:   true,
				ModelID:   status.ModelID,
				LocalPath: path,
				State:     string(status.State),
				Percent:   status.Percent,
			})
		},
	}

	cmd.Flags().StringVar(&familyFlag, "family", models.FamilyWhisperCpp, "Model family (whispercpp, whisperx, pyannote)")
	return cmd
}
