package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/vk/kubelower/internal/app"
	"github.com/vk/kubelower/internal/modifier"
)

const (
	// EnvPrefix prefixes every environment variable read as configuration.
	EnvPrefix = "KUBELOWER_"
	// DefaultConfigFile is read when present and no --config is given.
	DefaultConfigFile = "kubelower.toml"
)

// Flag names. They double as koanf keys.
const (
	flagConfig      = "config"
	flagLogLevel    = "log-level"
	flagLogFormat   = "log-format"
	flagOutput      = "output"
	flagMetricsFile = "metrics-file"
	flagTag         = "tag"
)

// fileConfig is the shape of the layered configuration.
type fileConfig struct {
	LogLevel    string         `koanf:"log-level"`
	LogFormat   string         `koanf:"log-format"`
	Output      string         `koanf:"output"`
	MetricsFile string         `koanf:"metrics-file"`
	Tag         string         `koanf:"tag"`
	Types       modifier.Types `koanf:"types"`
}

// Load builds the app configuration for paths.
// Priority: Flags > Env > Config File > Defaults
func Load(f *pflag.FlagSet, paths []string) (*app.Config, error) {
	k := koanf.New(".")

	t := modifier.DefaultTypes()
	defaults := map[string]interface{}{
		flagLogLevel:    "info",
		flagLogFormat:   "text",
		flagOutput:      app.StdoutOutput,
		flagMetricsFile: "",
		flagTag:         modifier.DefaultTag,
		"types": map[string]interface{}{
			"service":             t.Service,
			"deployment":          t.Deployment,
			"container":           t.Container,
			"resource":            t.Resource,
			"service_resource":    t.ServiceResource,
			"deployment_resource": t.DeploymentResource,
		},
	}
	if err := k.Load(makeMapProvider(defaults), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if err := loadFile(k, f); err != nil {
		return nil, err
	}

	// KUBELOWER_LOG_LEVEL=debug, KUBELOWER_TYPES_SERVICE_RESOURCE=...
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if f != nil {
		if err := k.Load(posflag.Provider(f, ".", k), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var fc fileConfig
	if err := k.Unmarshal("", &fc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return app.NewConfig(app.Config{
		Paths:       paths,
		LogLevel:    strings.ToLower(fc.LogLevel),
		LogFormat:   strings.ToLower(fc.LogFormat),
		Output:      fc.Output,
		MetricsFile: fc.MetricsFile,
		Tag:         fc.Tag,
		Types:       fc.Types,
	})
}

// loadFile reads the TOML config file. A missing default file is ignored;
// a missing file named by --config is an error.
func loadFile(k *koanf.Koanf, f *pflag.FlagSet) error {
	path := DefaultConfigFile
	explicit := false
	if f != nil {
		if fl := f.Lookup(flagConfig); fl != nil {
			path = fl.Value.String()
			explicit = fl.Changed
		}
	}
	if path == "" {
		return nil
	}

	err := k.Load(file.Provider(path), toml.Parser())
	if err == nil || (!explicit && errors.Is(err, fs.ErrNotExist)) {
		return nil
	}
	return fmt.Errorf("failed to load config file %q: %w", path, err)
}

// envKey maps an environment variable name to its koanf key.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	if rest, ok := strings.CutPrefix(key, "types_"); ok {
		return "types." + rest
	}
	return strings.ReplaceAll(key, "_", "-")
}

// Helper to use map as a provider
type mapProvider struct {
	m map[string]interface{}
}

func makeMapProvider(m map[string]interface{}) *mapProvider {
	return &mapProvider{m: m}
}

func (p *mapProvider) Read() (map[string]interface{}, error) {
	return p.m, nil
}

func (p *mapProvider) ReadBytes() ([]byte, error) {
	return nil, fmt.Errorf("not implemented")
}
