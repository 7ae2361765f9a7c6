package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/capstan-dev/capstan/internal/config"
	"github.com/capstan-dev/capstan/internal/ctxlog"
	"github.com/capstan-dev/capstan/internal/msbuild"
)

// App encapsulates the application's dependencies, configuration, and
// lifecycle for one release run.
type App struct {
	outW      io.Writer
	logger    *slog.Logger
	appConfig *Config
	model     *config.Model
	extractor msbuild.Extractor
	getenv    func(string) string
}

// NewApp constructs a fully initialized App with its own isolated logger.
// The configuration loader and metadata extractor are injected so tests can
// substitute fakes. Startup failures panic; main recovers and reports them.
func NewApp(outW io.Writer, appConfig *Config, loader config.Loader, extractor msbuild.Extractor) *App {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	// A .env next to the working directory supplies tokens during local
	// development; its absence is not an error.
	if err := godotenv.Load(); err == nil {
		logger.Debug("Environment loaded from .env file.")
	}

	cfgModel, err := loader.Load(ctx, appConfig.ConfigPath)
	if err != nil {
		panic(fmt.Errorf("failed to load configuration: %w", err))
	}
	logger.Debug("Release configuration loaded.",
		"inputs", len(cfgModel.Inputs), "branches", cfgModel.Branches)

	return &App{
		outW:      outW,
		logger:    logger,
		appConfig: appConfig,
		model:     cfgModel,
		extractor: extractor,
		getenv:    os.Getenv,
	}
}

// Model returns the loaded release configuration. Primarily for testing.
func (a *App) Model() *config.Model {
	return a.model
}
