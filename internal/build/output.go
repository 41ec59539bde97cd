package build

import (
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/inful/mdfp"

	"git.home.luguber.info/inful/mdpo/internal/config"
	"git.home.luguber.info/inful/mdpo/internal/foundation/errors"
	"git.home.luguber.info/inful/mdpo/internal/po"
	"git.home.luguber.info/inful/mdpo/internal/units"
)

const fingerprintHeader = "X-Source-Fingerprint"

func isCatalogFile(p string) bool {
	switch strings.ToLower(filepath.Ext(p)) {
	case ".pot", ".po":
		return true
	}
	return false
}

// CatalogPath maps a document path onto its template below dir:
// docs/intro.md becomes <dir>/docs/intro.pot.
func CatalogPath(dir, docPath string) string {
	rel := strings.TrimSuffix(docPath, path.Ext(docPath)) + ".pot"
	return filepath.Join(dir, filepath.FromSlash(rel))
}

type writer struct {
	cfg       *config.Config
	revision  string
	generator string
	force     bool
}

func (w *writer) header(fp string) po.Header {
	return po.Header{
		Project:     w.cfg.Output.Project,
		Language:    w.cfg.Output.Language,
		Fingerprint: fp,
		Revision:    w.revision,
		Generator:   w.generator,
	}
}

func (w *writer) perDocument(dir string, extractions []Extraction, res *Result) error {
	for _, e := range extractions {
		target := CatalogPath(dir, e.Document.Path)
		if w.upToDate(target, e.Fingerprint) {
			res.Skipped++
			continue
		}
		if err := w.write(target, po.FromStores(w.header(e.Fingerprint), e.Store)); err != nil {
			return err
		}
		res.Written = append(res.Written, target)
	}
	return nil
}

func (w *writer) combined(target string, extractions []Extraction, res *Result) error {
	var parts strings.Builder
	stores := make([]*units.Store, len(extractions))
	for i, e := range extractions {
		parts.WriteString(e.Document.Path + "\t" + e.Fingerprint + "\n")
		stores[i] = e.Store
	}
	fp := mdfp.CalculateFingerprintFromParts("", parts.String())
	if w.upToDate(target, fp) {
		res.Skipped = len(extractions)
		return nil
	}
	if err := w.write(target, po.FromStores(w.header(fp), stores...)); err != nil {
		return err
	}
	res.Written = append(res.Written, target)
	return nil
}

// upToDate reports whether target already records fingerprint fp. Unreadable
// or foreign catalogs are never up to date.
func (w *writer) upToDate(target, fp string) bool {
	if w.force || !w.cfg.Output.SkipUnchanged {
		return false
	}
	f, err := os.Open(target) // #nosec G304 -- output path derived from configuration
	if err != nil {
		return false
	}
	defer func() { _ = f.Close() }()
	c, err := po.Read(f)
	if err != nil {
		return false
	}
	got, ok := c.HeaderValue(fingerprintHeader)
	return ok && got == fp
}

// write stores the catalog atomically: a temporary file in the target
// directory is renamed over target.
func (w *writer) write(target string, c *po.Catalog) error {
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to create output directory").
			WithContext("path", dir).
			Build()
	}
	tmp, err := os.CreateTemp(dir, ".mdpo-*.tmp")
	if err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to create temporary file").
			WithContext("path", dir).
			Build()
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if err := po.Write(tmp, c, po.WriteOptions{Wrap: w.cfg.Output.Wrap}); err != nil {
		_ = tmp.Close()
		return withOutput(err, target)
	}
	if err := tmp.Close(); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to close catalog").
			WithContext("path", target).
			Build()
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to move catalog into place").
			WithContext("path", target).
			Build()
	}
	return nil
}

func withOutput(err error, target string) error {
	if ce, ok := errors.AsClassified(err); ok {
		return ce.WithContext("path", target)
	}
	return err
}
