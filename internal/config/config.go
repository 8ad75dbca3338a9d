// Package config loads the runtime configuration of stagerun from a YAML file.
package config

import (
	"bytes"
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/askiada/go-stage/internal/logging"
	"github.com/askiada/go-stage/pkg/pipeline/channel"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// DefaultScript forwards every message unchanged.
const DefaultScript = `function transform(msg) return msg end`

// Config is the root of the configuration file.
type Config struct {
	Log      logging.Config `yaml:"log"`
	Pipeline Pipeline       `yaml:"pipeline"`
	Range    Range          `yaml:"range"`
	Filter   Filter         `yaml:"filter"`
	Script   Script         `yaml:"script"`
}

type Pipeline struct {
	// Capacity is the buffer size of every channel, 0 or less for unbounded channels.
	Capacity int  `yaml:"capacity"`
	Measure  bool `yaml:"measure"`
}

// Range configures the source of every demo pipeline.
type Range struct {
	Start int `yaml:"start"`
	End   int `yaml:"end"`
	Step  int `yaml:"step"`
}

type Filter struct {
	Whitelist []int `yaml:"whitelist"`
}

// Script holds the Lua code of the script demo, inline or in a file.
type Script struct {
	Source   string `yaml:"source"`
	File     string `yaml:"file"`
	Function string `yaml:"function"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Log: logging.Config{
			Level:  "info",
			Format: logging.FormatText,
		},
		Pipeline: Pipeline{
			Capacity: channel.DefaultCapacity,
		},
		Range: Range{
			Start: 0,
			End:   5,
			Step:  1,
		},
		Filter: Filter{
			Whitelist: []int{1, 3},
		},
		Script: Script{
			Function: "transform",
		},
	}
}

// Load reads the file at path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "unable to read config %s", path)
	}

	cfg, err := Parse(data)
	if err != nil {
		return Config{}, errors.Wrapf(err, "config %s", path)
	}

	return cfg, nil
}

// Parse decodes data over the defaults and validates the result. Unknown keys are rejected.
func Parse(data []byte) (Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	err := dec.Decode(&cfg)
	if err != nil && !errors.Is(err, io.EOF) {
		return Config{}, errors.Wrap(err, "unable to decode config")
	}

	err = cfg.Validate()
	if err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks the values which cannot be checked by the stages themselves.
func (c Config) Validate() error {
	err := c.Log.Validate()
	if err != nil {
		return errors.Wrap(err, "log")
	}

	if c.Script.Source != "" && c.Script.File != "" {
		return errors.Wrap(ErrInvalidConfig, "script: source and file are exclusive")
	}

	return nil
}

// ScriptSource returns the inline script, the content of the script file, or DefaultScript.
func (c Config) ScriptSource() (string, error) {
	if c.Script.File == "" {
		if c.Script.Source == "" {
			return DefaultScript, nil
		}

		return c.Script.Source, nil
	}

	data, err := os.ReadFile(c.Script.File)
	if err != nil {
		return "", errors.Wrapf(err, "unable to read script %s", c.Script.File)
	}

	return string(data), nil
}
