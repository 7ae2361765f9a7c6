package app

import (
	"errors"
	"fmt"
)

// Commands accepted on the command line.
const (
	CommandBuild   = "build"
	CommandPublish = "publish"
	CommandRun     = "run"
)

// Config holds everything an App instance needs to run.
type Config struct {
	Command    string // build, publish, or run
	ConfigPath string // path to capstan.hcl

	LogFormat   string
	LogLevel    string
	WorkerCount int
}

// NewConfig validates a Config.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.Command == "" {
		return nil, errors.New("a command is required: build, publish, or run")
	}
	switch cfg.Command {
	case CommandBuild, CommandPublish, CommandRun:
	default:
		return nil, fmt.Errorf("unknown command %q: expected build, publish, or run", cfg.Command)
	}
	if cfg.ConfigPath == "" {
		return nil, errors.New("ConfigPath is a required configuration field and cannot be empty")
	}
	return &cfg, nil
}
