package main

import (
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"crosstalk/internal/config"
	"crosstalk/internal/logging"
	"crosstalk/internal/media"
	"crosstalk/internal/models"
	"crosstalk/internal/store"
	"crosstalk/internal/stt"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error

	managerOnce sync.Once
	manager     *models.Manager
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.New(logging.Options{
			Level:    cfg.Logging.Level,
			Format:   cfg.Logging.Format,
			FilePath: filepath.Join(cfg.Paths.LogDir, "crosstalk.log"),
		})
	})
	return c.logger, c.loggerErr
}

// loggerOrDiscard never fails; commands that only need best-effort logging
// use it so a broken log setup cannot mask the real result.
func (c *commandContext) loggerOrDiscard() *slog.Logger {
	logger, err := c.ensureLogger()
	if err != nil || logger == nil {
		return logging.Discard()
	}
	return logger
}

// openStore opens the analysis database. Callers close it.
func (c *commandContext) openStore() (*store.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return store.Open(cfg.Paths.DatabasePath)
}

func (c *commandContext) modelsManager() (*models.Manager, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	c.managerOnce.Do(func() {
		c.manager = models.NewManager(cfg.Paths.ModelsDir)
	})
	return c.manager, nil
}

func (c *commandContext) mediaRunner() (*media.Runner, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	tools, err := media.ResolveToolset(cfg.Tools.FFmpeg, cfg.Tools.FFprobe)
	if err != nil {
		return nil, err
	}
	return media.NewRunner(tools), nil
}

func (c *commandContext) sttConfig() (stt.Config, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return stt.Config{}, err
	}
	manager, err := c.modelsManager()
	if err != nil {
		return stt.Config{}, err
	}
	return stt.Config{
		Models:            manager,
		WhisperCLI:        cfg.Tools.WhisperCLI,
		WhisperCTranslate: cfg.Tools.WhisperCTranslate,
		UVX:               cfg.Tools.UVX,
		HFToken:           cfg.Diarization.HuggingFaceToken,
	}, nil
}
