package config

const (
	defaultModelsDir    = "~/.config/crosstalk/models"
	defaultOutputDir    = "~/.local/share/crosstalk/output"
	defaultLogDir       = "~/.local/share/crosstalk/logs"
	defaultDatabasePath = "~/.local/share/crosstalk/crosstalk.db"
	defaultBackend      = "whispercpp"
	defaultModel        = "base"
	defaultLogFormat    = "console"
	defaultLogLevel     = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			ModelsDir:    defaultModelsDir,
			OutputDir:    defaultOutputDir,
			LogDir:       defaultLogDir,
			DatabasePath: defaultDatabasePath,
		},
		Transcription: Transcription{
			Backend: defaultBackend,
			Model:   defaultModel,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
