// Package config loads the mdpo.yaml configuration file.
package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/mdpo/internal/foundation/errors"
)

// Version is the configuration schema version this build understands.
const Version = "1.0"

// DefaultPath is the configuration file looked up when none is given.
const DefaultPath = "mdpo.yaml"

// Config is the complete mdpo configuration.
type Config struct {
	Version string        `yaml:"version"`
	Extract ExtractConfig `yaml:"extract"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// ExtractConfig controls which documents are read and what becomes a unit.
type ExtractConfig struct {
	Include         []string `yaml:"include,omitempty"`          // glob patterns; default *.md and *.markdown
	OpaqueHTMLTags  []string `yaml:"opaque_html_tags,omitempty"` // HTML blocks never translated
	FrontmatterKeys []string `yaml:"frontmatter_keys,omitempty"` // translatable frontmatter fields
	Workers         int      `yaml:"workers"`                    // parallel documents
}

// OutputConfig controls where and how PO catalogs are written.
type OutputConfig struct {
	Directory     string `yaml:"directory"`
	Wrap          int    `yaml:"wrap"`
	Project       string `yaml:"project,omitempty"`
	Language      string `yaml:"language,omitempty"`
	SkipUnchanged bool   `yaml:"skip_unchanged"`

	wrapSpecified bool
}

// UnmarshalYAML records whether wrap was written so that an explicit 0
// (no folding) survives defaulting.
func (o *OutputConfig) UnmarshalYAML(node *yaml.Node) error {
	type plain OutputConfig
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*o = OutputConfig(p)
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == "wrap" {
			o.wrapSpecified = true
		}
	}
	return nil
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// MetricsConfig enables the Prometheus textfile export.
type MetricsConfig struct {
	Textfile string `yaml:"textfile,omitempty"`
}

// Result is a loaded configuration plus the normalization warnings raised
// while loading it.
type Result struct {
	Config   *Config
	Warnings []string
	EnvFiles []string // .env files that were loaded
}

// Load reads configPath after loading .env files into the environment, then
// expands ${VAR} references, normalizes, applies defaults and validates.
func Load(configPath string) (*Result, error) {
	envFiles := loadEnvFiles()

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user input
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigError("configuration file not found").
				WithContext("path", configPath).
				Build()
		}
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to read config file").
			WithContext("path", configPath).
			Build()
	}
	res, err := Parse(data)
	if err != nil {
		if ce, ok := errors.AsClassified(err); ok {
			return nil, ce.WithContext("path", configPath)
		}
		return nil, err
	}
	res.EnvFiles = envFiles
	return res, nil
}

// Parse decodes configuration bytes. Environment references are expanded
// before decoding.
func Parse(data []byte) (*Result, error) {
	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to parse configuration").Build()
	}
	if cfg.Version != Version {
		return nil, errors.ConfigError("unsupported configuration version").
			WithContext("version", cfg.Version).
			WithContext("expected", Version).
			Build()
	}

	warnings := normalize(&cfg)
	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &Result{Config: &cfg, Warnings: warnings}, nil
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	cfg := &Config{Version: Version}
	applyDefaults(cfg)
	return cfg
}
