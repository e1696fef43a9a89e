package app

import (
	"errors"
	"fmt"

	"github.com/vk/kubelower/internal/modifier"
)

// StdoutOutput selects standard output as the output destination.
const StdoutOutput = "-"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	Paths []string // hcl files or directories

	LogFormat   string
	LogLevel    string
	Output      string
	MetricsFile string

	Tag   string
	Types modifier.Types
}

var (
	validLogLevels  = map[string]struct{}{"debug": {}, "info": {}, "warn": {}, "error": {}}
	validLogFormats = map[string]struct{}{"text": {}, "json": {}}
)

// NewConfig validates cfg and fills in defaults.
func NewConfig(cfg Config) (*Config, error) {
	if len(cfg.Paths) == 0 {
		return nil, errors.New("at least one path to .hcl files is required")
	}
	if _, ok := validLogLevels[cfg.LogLevel]; !ok {
		return nil, fmt.Errorf("invalid log-level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.LogLevel)
	}
	if _, ok := validLogFormats[cfg.LogFormat]; !ok {
		return nil, fmt.Errorf("invalid log-format %q: must be 'text' or 'json'", cfg.LogFormat)
	}

	if cfg.Output == "" {
		cfg.Output = StdoutOutput
	}
	if cfg.Tag == "" {
		cfg.Tag = modifier.DefaultTag
	}
	cfg.Types = withDefaultTypes(cfg.Types)
	return &cfg, nil
}

// withDefaultTypes fills every empty type name with its default.
func withDefaultTypes(t modifier.Types) modifier.Types {
	d := modifier.DefaultTypes()
	pick := func(v, def string) string {
		if v == "" {
			return def
		}
		return v
	}
	return modifier.Types{
		Service:            pick(t.Service, d.Service),
		Deployment:         pick(t.Deployment, d.Deployment),
		Container:          pick(t.Container, d.Container),
		Resource:           pick(t.Resource, d.Resource),
		ServiceResource:    pick(t.ServiceResource, d.ServiceResource),
		DeploymentResource: pick(t.DeploymentResource, d.DeploymentResource),
	}
}
