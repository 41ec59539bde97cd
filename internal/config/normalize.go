package config

import (
	"slices"
	"strings"
)

// normalize canonicalizes enumerations and lists in place, before defaults
// are applied, and returns a warning for every value it rewrote.
func normalize(c *Config) []string {
	var warnings []string
	level := logLevels.Field("logging.level", string(c.Logging.Level))
	if level.Warning != "" {
		warnings = append(warnings, level.Warning)
	}
	c.Logging.Level = level.Value

	format := logFormats.Field("logging.format", string(c.Logging.Format))
	if format.Warning != "" {
		warnings = append(warnings, format.Warning)
	}
	c.Logging.Format = format.Value

	c.Extract.OpaqueHTMLTags = cleanList(c.Extract.OpaqueHTMLTags, true)
	c.Extract.FrontmatterKeys = cleanList(c.Extract.FrontmatterKeys, false)
	c.Extract.Include = cleanList(c.Extract.Include, false)
	if c.Extract.Workers < 0 {
		c.Extract.Workers = 0
	}
	if c.Output.Wrap < 0 {
		c.Output.Wrap = 0
	}
	return warnings
}

// cleanList trims entries, drops blanks and duplicates, and optionally
// lowercases. A nil list stays nil so that defaults still apply.
func cleanList(in []string, lower bool) []string {
	if in == nil {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if lower {
			s = strings.ToLower(s)
		}
		if s == "" || slices.Contains(out, s) {
			continue
		}
		out = append(out, s)
	}
	return out
}
