package config

import (
	"path"

	"git.home.luguber.info/inful/mdpo/internal/foundation/errors"
)

// maxWorkers bounds extract.workers.
const maxWorkers = 256

func validate(c *Config) error {
	if c.Extract.Workers > maxWorkers {
		return errors.ValidationError("extract.workers out of range").
			WithContext("workers", c.Extract.Workers).
			WithContext("max", maxWorkers).
			Build()
	}
	for _, p := range c.Extract.Include {
		if _, err := path.Match(p, ""); err != nil {
			return errors.ValidationError("invalid extract.include pattern").
				WithContext("pattern", p).
				WithCause(err).
				Build()
		}
	}
	if c.Output.Wrap > 0 && c.Output.Wrap < 10 {
		return errors.ValidationError("output.wrap too narrow").
			WithContext("wrap", c.Output.Wrap).
			Build()
	}
	return nil
}
