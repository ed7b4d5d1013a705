package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/specialistvlad/hatremote/internal/session"
)

var (
	ErrMissingCommands = errors.New("the commands config path is required")
	ErrMissingLayout   = errors.New("the layout config path is required")
	ErrPartialImages   = errors.New("image resources and images to commands configs must be given together")
	ErrInvalidOption   = errors.New("invalid option")
)

// Config holds everything an App needs to run.
type Config struct {
	CommandsPath         string
	LayoutPath           string
	InputSequencesPaths  []string
	VariablesPaths       []string
	ImageResourcesPath   string
	ImagesToCommandsPath string

	Port             int
	HealthcheckPort  int
	StickEnvToWindow bool
	KeysDelay        time.Duration

	LogFormat string
	LogLevel  string
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		Port:      12345,
		LogFormat: "json",
		LogLevel:  "info",
	}
}

// ApplySession overrides cfg with every value the session file sets.
func (cfg *Config) ApplySession(f *session.File) {
	if f.Commands != "" {
		cfg.CommandsPath = f.Commands
	}
	if f.Layout != "" {
		cfg.LayoutPath = f.Layout
	}
	if len(f.InputSequences) > 0 {
		cfg.InputSequencesPaths = f.InputSequences
	}
	if len(f.Variables) > 0 {
		cfg.VariablesPaths = f.Variables
	}
	if f.Images != nil {
		cfg.ImageResourcesPath = f.Images.Resources
		cfg.ImagesToCommandsPath = f.Images.Commands
	}
	if s := f.Server; s != nil {
		if s.Port != nil {
			cfg.Port = *s.Port
		}
		if s.HealthcheckPort != nil {
			cfg.HealthcheckPort = *s.HealthcheckPort
		}
		if s.StickEnvToWindow != nil {
			cfg.StickEnvToWindow = *s.StickEnvToWindow
		}
		if s.KeysDelayMs != nil {
			cfg.KeysDelay = time.Duration(*s.KeysDelayMs) * time.Millisecond
		}
	}
	if l := f.Log; l != nil {
		if l.Level != nil {
			cfg.LogLevel = *l.Level
		}
		if l.Format != nil {
			cfg.LogFormat = *l.Format
		}
	}
}

// NewConfig validates cfg and returns a copy of it.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.CommandsPath == "" {
		return nil, ErrMissingCommands
	}
	if cfg.LayoutPath == "" {
		return nil, ErrMissingLayout
	}
	if (cfg.ImageResourcesPath == "") != (cfg.ImagesToCommandsPath == "") {
		return nil, ErrPartialImages
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("%w: port %d is outside 1..65535", ErrInvalidOption, cfg.Port)
	}
	if cfg.HealthcheckPort < 0 || cfg.HealthcheckPort > 65535 {
		return nil, fmt.Errorf("%w: healthcheck port %d is outside 0..65535", ErrInvalidOption, cfg.HealthcheckPort)
	}
	if cfg.KeysDelay < 0 {
		return nil, fmt.Errorf("%w: keys delay must not be negative", ErrInvalidOption)
	}
	if _, ok := parseLevel(cfg.LogLevel); !ok {
		return nil, fmt.Errorf("%w: log level must be 'debug', 'info', 'warn', or 'error'", ErrInvalidOption)
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("%w: log format must be 'text' or 'json'", ErrInvalidOption)
	}
	return &cfg, nil
}
