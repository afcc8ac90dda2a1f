package app

import (
	"io"
	"log/slog"

	"github.com/specialistvlad/exptgrid/internal/config"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW    io.Writer
	logger  *slog.Logger
	config  *Config
	loaders []config.Loader
}

// NewApp is the constructor for the main application. User-facing output
// (summaries, dry-run lines) goes to outW and logs go to logW. Without
// explicit loaders, every built-in configuration format is enabled.
func NewApp(outW, logW io.Writer, cfg *Config, loaders ...config.Loader) *App {
	if cfg == nil {
		panic("app: nil config")
	}
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	logger.Debug("Logger configured successfully.")

	if len(loaders) == 0 {
		loaders = coreLoaders()
	}
	logger.Debug("Configuration loaders registered.", "count", len(loaders))

	return &App{
		outW:    outW,
		logger:  logger,
		config:  cfg,
		loaders: loaders,
	}
}

func (a *App) vars() config.Vars {
	return config.Vars{
		User:        a.config.User,
		ScratchDisk: a.config.ScratchDisk,
		Values:      a.config.Vars,
	}
}
