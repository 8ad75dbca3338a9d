// Package common holds the flags shared by the commands running a pipeline.
package common

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/askiada/go-stage/internal/config"
	"github.com/askiada/go-stage/internal/logging"
)

// Flags overrides the configuration file.
type Flags struct {
	ConfigPath string
	LogLevel   string
	LogFormat  string
	Capacity   int
}

// Bind registers the flags on cmd.
func (f *Flags) Bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.ConfigPath, "config", "c", "", "Path to a YAML config file")
	cmd.Flags().StringVar(&f.LogLevel, "log-level", "", "Log level: debug, info, warn or error")
	cmd.Flags().StringVar(&f.LogFormat, "log-format", "", "Log format: text or json")
	cmd.Flags().IntVar(&f.Capacity, "capacity", 0, "Channel capacity, 0 or less for unbounded channels")
}

// Load reads the configuration and applies the flags set on cmd.
func (f *Flags) Load(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(f.ConfigPath)
	if err != nil {
		return config.Config{}, err
	}

	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level = f.LogLevel
	}

	if cmd.Flags().Changed("log-format") {
		cfg.Log.Format = f.LogFormat
	}

	if cmd.Flags().Changed("capacity") {
		cfg.Pipeline.Capacity = f.Capacity
	}

	err = cfg.Validate()
	if err != nil {
		return config.Config{}, err
	}

	cfg.Log.Output = cmd.ErrOrStderr()
	if cfg.Log.File != "" {
		cfg.Log.Output = nil
	}

	return cfg, nil
}

// InitLogger creates the shared logger. The returned function closes it.
func InitLogger(cfg config.Config) (*slog.Logger, func(), error) {
	logger, err := logging.Init(cfg.Log)
	if err != nil {
		return nil, nil, err
	}

	return logger, func() {
		err := logging.Close()
		if err != nil {
			slog.Error("unable to close logger", "error", err.Error())
		}
	}, nil
}
