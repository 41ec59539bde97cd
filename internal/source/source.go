// Package source loads the Markdown documents to extract, either from a
// directory tree or from a commit of a local git repository.
package source

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"git.home.luguber.info/inful/mdpo/internal/foundation/errors"
)

// Document is one Markdown file. Path is slash-separated and relative to the
// directory or repository root.
type Document struct {
	Path    string
	Content []byte
}

// markdownExts are the extensions picked up when no include pattern is given.
var markdownExts = []string{".md", ".markdown"}

// Matcher decides which relative paths are documents.
type Matcher struct {
	include []string
}

// NewMatcher validates the include patterns. An empty list selects every
// Markdown file.
func NewMatcher(include []string) (*Matcher, error) {
	for _, p := range include {
		if _, err := path.Match(p, ""); err != nil {
			return nil, errors.ValidationError("invalid include pattern").
				WithContext("pattern", p).
				WithCause(err).
				Build()
		}
	}
	return &Matcher{include: include}, nil
}

// Match reports whether rel (slash-separated) is selected. Patterns without
// a slash are matched against the base name; others against the whole path.
func (m *Matcher) Match(rel string) bool {
	if len(m.include) == 0 {
		ext := strings.ToLower(path.Ext(rel))
		for _, e := range markdownExts {
			if ext == e {
				return true
			}
		}
		return false
	}
	for _, p := range m.include {
		target := rel
		if !strings.Contains(p, "/") {
			target = path.Base(rel)
		}
		if ok, _ := path.Match(p, target); ok {
			return true
		}
	}
	return false
}

// Dir returns the Markdown documents below root, sorted by path. Hidden
// directories are skipped.
func Dir(root string, include []string) ([]Document, error) {
	m, err := NewMatcher(include)
	if err != nil {
		return nil, err
	}
	var docs []Document
	walkErr := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if !d.Type().IsRegular() || !m.Match(rel) {
			return nil
		}
		content, err := os.ReadFile(p) // #nosec G304 -- path comes from walking root
		if err != nil {
			return err
		}
		docs = append(docs, Document{Path: rel, Content: content})
		return nil
	})
	if walkErr != nil {
		return nil, errors.WrapError(walkErr, errors.CategoryFileSystem, "failed to read documents").
			WithContext("path", root).
			Build()
	}
	sortDocuments(docs)
	return docs, nil
}

// File reads a single document. The document path is the base name.
func File(p string) (Document, error) {
	content, err := os.ReadFile(p) // #nosec G304 -- user supplied input file
	if err != nil {
		return Document{}, errors.WrapError(err, errors.CategoryFileSystem, "failed to read document").
			WithContext("path", p).
			Build()
	}
	return Document{Path: filepath.Base(p), Content: content}, nil
}

func sortDocuments(docs []Document) {
	sort.Slice(docs, func(i, j int) bool { return docs[i].Path < docs[j].Path })
}
