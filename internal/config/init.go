package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/mdpo/internal/foundation/errors"
	"git.home.luguber.info/inful/mdpo/internal/po"
)

// Init writes an example configuration file. An existing file is kept
// unless force is set.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return errors.ConfigError("configuration file already exists (use --force to overwrite)").
			WithContext("path", configPath).
			Build()
	}

	example := Config{
		Version: Version,
		Extract: ExtractConfig{
			Include:         []string{"*.md", "*.markdown"},
			OpaqueHTMLTags:  []string{"svg", "math"},
			FrontmatterKeys: DefaultFrontmatterKeys,
			Workers:         4,
		},
		Output: OutputConfig{
			Directory:     DefaultOutputDirectory,
			Wrap:          po.DefaultWrap,
			Project:       "${MDPO_PROJECT}",
			Language:      "",
			SkipUnchanged: true,
		},
		Logging: LoggingConfig{Level: LogLevelInfo, Format: LogFormatText},
		Metrics: MetricsConfig{Textfile: ""},
	}

	data, err := yaml.Marshal(&example)
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "failed to marshal example configuration").Build()
	}
	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write configuration file").
			WithContext("path", configPath).
			Build()
	}
	return nil
}
