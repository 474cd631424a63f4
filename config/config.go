// Package config loads the pipeline's process-level configuration: per-parse options
// (password, flatten, page range, debug output) and layout-detector options (execution
// providers, thread counts), layered as defaults, then an optional file, then env vars
// (each layer overriding the previous one) the way the teacher's own config manager does,
// but scoped down to this library's surface.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/rapidpapertrans/docparse/layout"
	"github.com/rapidpapertrans/docparse/nativeworker"
)

// EnvPrefix namespaces every environment variable this package reads, e.g.
// DOCPARSE_DETECTOR_INTRA_THREADS.
const EnvPrefix = "DOCPARSE"

// ParseConfig carries the per-document options a caller may set for one parse.
type ParseConfig struct {
	Password  string `mapstructure:"password"`
	FlattenPDF bool  `mapstructure:"flatten_pdf"`
	PageStart int    `mapstructure:"page_start"`
	PageEnd   int    `mapstructure:"page_end"` // 0 means "all pages"
	DebugDir  string `mapstructure:"debug_dir"`
}

// PageRange returns the configured page range, or nil when PageEnd is unset (all pages).
func (c ParseConfig) PageRange() *nativeworker.PageRange {
	if c.PageEnd <= 0 {
		return nil
	}
	return &nativeworker.PageRange{Start: c.PageStart, End: c.PageEnd}
}

// DetectorConfig carries the layout detector's runtime options.
type DetectorConfig struct {
	ModelPath          string   `mapstructure:"model_path"`
	SharedLibraryPath  string   `mapstructure:"shared_library_path"`
	ExecutionProviders []string `mapstructure:"execution_providers"`
	IntraThreads       int      `mapstructure:"intra_threads"`
	InterThreads       int      `mapstructure:"inter_threads"`
}

// ToLayoutConfig converts the loaded settings into layout.Config, resolving provider names
// against layout.ExecutionProvider and falling back to CPU for anything unrecognized.
func (c DetectorConfig) ToLayoutConfig() layout.Config {
	cfg := layout.DefaultConfig(c.ModelPath)
	cfg.SharedLibraryPath = c.SharedLibraryPath
	if c.IntraThreads > 0 {
		cfg.IntraThreads = c.IntraThreads
	}
	if c.InterThreads > 0 {
		cfg.InterThreads = c.InterThreads
	}
	if len(c.ExecutionProviders) > 0 {
		providers := make([]layout.ExecutionProvider, 0, len(c.ExecutionProviders))
		for _, name := range c.ExecutionProviders {
			providers = append(providers, parseProvider(name))
		}
		cfg.ExecutionProviders = providers
	}
	return cfg
}

func parseProvider(name string) layout.ExecutionProvider {
	switch strings.ToLower(name) {
	case "coreml":
		return layout.ProviderCoreML
	case "cuda":
		return layout.ProviderCUDA
	default:
		return layout.ProviderCPU
	}
}

// Load reads ParseConfig and DetectorConfig from optional configFile, overlaid with
// DOCPARSE_-prefixed environment variables, overlaid over built-in defaults. configFile may
// be empty, in which case only env vars and defaults apply.
func Load(configFile string) (ParseConfig, DetectorConfig, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return ParseConfig{}, DetectorConfig{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var parseCfg ParseConfig
	if err := v.UnmarshalKey("parse", &parseCfg); err != nil {
		return ParseConfig{}, DetectorConfig{}, fmt.Errorf("unmarshal parse config: %w", err)
	}
	var detectorCfg DetectorConfig
	if err := v.UnmarshalKey("detector", &detectorCfg); err != nil {
		return ParseConfig{}, DetectorConfig{}, fmt.Errorf("unmarshal detector config: %w", err)
	}
	return parseCfg, detectorCfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("parse.flatten_pdf", false)
	v.SetDefault("parse.page_start", 0)
	v.SetDefault("parse.page_end", 0)
	v.SetDefault("detector.intra_threads", layout.DefaultConfig("").IntraThreads)
	v.SetDefault("detector.inter_threads", layout.DefaultConfig("").InterThreads)
	v.SetDefault("detector.execution_providers", []string{"cpu"})
}
