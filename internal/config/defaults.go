package config

import (
	"runtime"

	"git.home.luguber.info/inful/mdpo/internal/po"
)

// Defaults applied to unset fields.
const (
	DefaultOutputDirectory = "po"
	DefaultProject         = "PACKAGE VERSION"
)

// DefaultFrontmatterKeys are translated when extract.frontmatter_keys is unset.
var DefaultFrontmatterKeys = []string{"title", "description"}

func applyDefaults(c *Config) {
	if c.Extract.Workers == 0 {
		c.Extract.Workers = runtime.GOMAXPROCS(0)
	}
	if c.Extract.FrontmatterKeys == nil {
		c.Extract.FrontmatterKeys = append([]string(nil), DefaultFrontmatterKeys...)
	}
	if c.Output.Directory == "" {
		c.Output.Directory = DefaultOutputDirectory
	}
	if c.Output.Wrap == 0 && !c.Output.wrapSpecified {
		c.Output.Wrap = po.DefaultWrap
	}
	if c.Output.Project == "" {
		c.Output.Project = DefaultProject
	}
	if c.Logging.Level == "" {
		c.Logging.Level = LogLevelInfo
	}
	if c.Logging.Format == "" {
		c.Logging.Format = LogFormatText
	}
}
