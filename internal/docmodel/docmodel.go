// Package docmodel is the parsed form of a source document: its frontmatter,
// its Markdown body and a content fingerprint used to skip unchanged files.
package docmodel

import (
	"os"
	"strings"

	"github.com/inful/mdfp"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/mdpo/internal/foundation/errors"
	"git.home.luguber.info/inful/mdpo/internal/frontmatter"
)

// Options controls parsing behavior for ParsedDoc.
type Options struct {
	// FrontmatterKeys lists the frontmatter keys whose values are translatable.
	FrontmatterKeys []string
}

// ParsedDoc represents a Markdown document split into YAML frontmatter and body.
type ParsedDoc struct {
	original []byte
	block    frontmatter.Block
	fields   []frontmatter.Field
}

// Parse parses raw file content into a ParsedDoc.
func Parse(content []byte, opts Options) (*ParsedDoc, error) {
	orig := append([]byte(nil), content...)
	block, err := frontmatter.Split(orig)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryValidation, "failed to split frontmatter").Build()
	}

	fields, err := frontmatter.TranslatableFields(block.Raw, opts.FrontmatterKeys)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryParse, "failed to read frontmatter fields").Build()
	}

	return &ParsedDoc{original: orig, block: block, fields: fields}, nil
}

// ParseFile reads a file from disk and parses it into a ParsedDoc.
func ParseFile(path string, opts Options) (*ParsedDoc, error) {
	// #nosec G304 -- path comes from the configured document sources.
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to read document").
			WithContext("path", path).
			Build()
	}

	doc, err := Parse(content, opts)
	if err != nil {
		category := errors.CategoryValidation
		if classified, ok := errors.AsClassified(err); ok {
			category = classified.Category()
		}
		return nil, errors.WrapError(err, category, "failed to parse document").
			WithContext("path", path).
			Build()
	}
	return doc, nil
}

// Original returns a copy of the original bytes.
func (d *ParsedDoc) Original() []byte {
	return append([]byte(nil), d.original...)
}

// HadFrontmatter reports whether the original document contained a YAML frontmatter block.
func (d *ParsedDoc) HadFrontmatter() bool {
	return d.block.Present
}

// FrontmatterRaw returns the raw YAML frontmatter bytes (without delimiters),
// or nil when the document had none.
func (d *ParsedDoc) FrontmatterRaw() []byte {
	if !d.block.Present {
		return nil
	}
	return append([]byte{}, d.block.Raw...)
}

// Body returns the Markdown body bytes (frontmatter removed).
func (d *ParsedDoc) Body() []byte {
	return append([]byte(nil), d.block.Body...)
}

// LineOffset translates body line numbers into file line numbers:
// fileLine = LineOffset() + bodyLine.
func (d *ParsedDoc) LineOffset() int {
	return d.block.BodyLine()
}

// TranslatableFields returns the frontmatter values selected by
// Options.FrontmatterKeys, with file line numbers.
func (d *ParsedDoc) TranslatableFields() []frontmatter.Field {
	out := make([]frontmatter.Field, len(d.fields))
	for i, f := range d.fields {
		f.Line++ // opening delimiter
		out[i] = f
	}
	return out
}

// Fingerprint returns the content fingerprint of the document. A fingerprint
// field already stored in the frontmatter does not take part, so writing it
// back does not change the result.
func (d *ParsedDoc) Fingerprint() (string, error) {
	fm := ""
	if d.block.Present {
		fields, err := frontmatter.ParseYAML(d.block.Raw)
		if err != nil {
			return "", errors.WrapError(err, errors.CategoryParse, "failed to parse frontmatter").Build()
		}
		delete(fields, mdfp.FingerprintField)
		if len(fields) > 0 {
			out, err := yaml.Marshal(fields)
			if err != nil {
				return "", errors.WrapError(err, errors.CategoryInternal, "failed to serialize frontmatter").Build()
			}
			fm = strings.TrimSuffix(string(out), "\n")
		}
	}
	return mdfp.CalculateFingerprintFromParts(fm, string(d.block.Body)), nil
}
