package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/maksimkurb/ikuai-bridge/src/internal/config"
	"github.com/maksimkurb/ikuai-bridge/src/internal/log"
)

type Runner interface {
	Init(args []string, globalArgs *AppContext) error
	Run() error
	Name() string
}

type AppContext struct {
	ConfigPath string
	Verbose    bool
	// LogFormat overrides general.log_format when set.
	LogFormat string
	// Out receives command output. Defaults to stdout.
	Out io.Writer
}

func (ctx *AppContext) out() io.Writer {
	if ctx == nil || ctx.Out == nil {
		return os.Stdout
	}
	return ctx.Out
}

// loadAndValidateConfigOrFail loads configuration from file, validates it and
// applies its logging settings.
func loadAndValidateConfigOrFail(ctx *AppContext) (*config.Config, error) {
	cfg, err := config.LoadConfig(ctx.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %v", err)
	}

	if err := cfg.ValidateConfig(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %v", err)
	}

	applyLogSettings(cfg, ctx)
	return cfg, nil
}

// applyLogSettings honors log_level and log_format unless the command line
// already decided.
func applyLogSettings(cfg *config.Config, ctx *AppContext) {
	if ctx.Verbose || cfg.General.LogLevel == "debug" {
		log.SetVerbose(true)
	}

	format := cfg.General.LogFormat
	if ctx.LogFormat != "" {
		format = ctx.LogFormat
	}
	if format == "" {
		return
	}
	if err := log.SetFormat(format); err != nil {
		log.Warnf("%v", err)
	}
}
