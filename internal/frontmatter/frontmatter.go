// Package frontmatter splits YAML frontmatter off Markdown documents and
// reads the fields that carry translatable text.
package frontmatter

import (
	"bytes"
	"errors"

	"gopkg.in/yaml.v3"
)

// ErrMissingClosingDelimiter indicates the document started with a YAML
// frontmatter delimiter but did not contain a closing delimiter.
var ErrMissingClosingDelimiter = errors.New("yaml frontmatter start delimiter found but closing delimiter is missing")

// Block is the result of splitting a document.
type Block struct {
	// Raw is the YAML between the delimiters, nil when Present is false.
	Raw []byte
	// Body is the Markdown after the closing delimiter (the whole input when
	// there is no frontmatter).
	Body []byte
	// Present reports whether the document opened with a frontmatter block.
	Present bool
	// Newline is the line ending detected on the first line.
	Newline string
}

// BodyLine returns the 1-based file line on which the body starts, minus one:
// fileLine = BodyLine() + bodyLine.
func (b Block) BodyLine() int {
	if !b.Present {
		return 0
	}
	return 2 + bytes.Count(b.Raw, []byte("\n"))
}

// Split separates `---` delimited YAML frontmatter from the Markdown body.
func Split(content []byte) (Block, error) {
	nl := detectNewline(content)
	delim := []byte("---" + nl)
	if !bytes.HasPrefix(content, delim) {
		return Block{Body: content, Newline: nl}, nil
	}

	rest := content[len(delim):]
	if bytes.HasPrefix(rest, delim) {
		return Block{Raw: []byte{}, Body: rest[len(delim):], Present: true, Newline: nl}, nil
	}

	closing := append([]byte(nl), delim...)
	idx := bytes.Index(rest, closing)
	if idx < 0 {
		return Block{Newline: nl}, ErrMissingClosingDelimiter
	}
	return Block{
		Raw:     rest[:idx+len(nl)],
		Body:    rest[idx+len(closing):],
		Present: true,
		Newline: nl,
	}, nil
}

// ParseYAML parses raw YAML frontmatter (without --- delimiters) into a map.
func ParseYAML(raw []byte) (map[string]any, error) {
	fields := map[string]any{}
	if len(bytes.TrimSpace(raw)) == 0 {
		return fields, nil
	}
	if err := yaml.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

func detectNewline(content []byte) string {
	if i := bytes.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}
