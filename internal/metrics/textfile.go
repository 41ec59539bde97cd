package metrics

import (
	"os"
	"path/filepath"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/mdpo/internal/foundation/errors"
)

// WriteTextfile writes the metrics gathered from g in the text exposition
// format to path. The write is atomic (temp file plus rename). Failures are
// warnings: metrics never fail a run.
func WriteTextfile(path string, g prom.Gatherer) error {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to create metrics directory").
			WithContext("path", path).
			Warning().
			Build()
	}
	if err := prom.WriteToTextfile(path, g); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write metrics textfile").
			WithContext("path", path).
			Warning().
			Build()
	}
	return nil
}
