package markdown

import (
	"bytes"
	"slices"
	"sort"

	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// Document is a parsed Markdown body (frontmatter already removed).
//
// Link reference definitions appear in the tree as LinkReferenceDefinition
// nodes at the position they occupied in the source. Definitions the parser
// registered without a position are kept in Orphans.
type Document struct {
	Root    gmast.Node
	Source  []byte
	Orphans []*LinkReferenceDefinition

	lineStarts []int
	labels     map[gmast.Node][]byte
}

// Parse parses a Markdown body into a Document.
//
// A fresh parser and parser context are built per call, so Parse is safe to
// use from multiple goroutines.
func Parse(body []byte) *Document {
	rec := &referenceRecorder{seen: make(map[string]struct{})}
	links := newReferenceLinkParser()
	p := parser.NewParser(
		parser.WithBlockParsers(parser.DefaultBlockParsers()...),
		parser.WithInlineParsers(inlineParsers(links)...),
		parser.WithParagraphTransformers(util.Prioritized(rec, 100)),
	)
	ctx := parser.NewContext()
	root := p.Parse(text.NewReader(body), parser.WithContext(ctx))

	doc := &Document{
		Root:       root,
		Source:     body,
		lineStarts: lineStarts(body),
		labels:     links.labels,
	}
	doc.Orphans = rec.orphans(ctx)
	return doc
}

// inlineParsers returns goldmark's default inline parsers with the link
// parser replaced by links.
func inlineParsers(links *referenceLinkParser) []util.PrioritizedValue {
	out := parser.DefaultInlineParsers()
	for i, v := range out {
		if ip, ok := v.Value.(parser.InlineParser); ok && bytes.IndexByte(ip.Trigger(), ']') >= 0 {
			out[i] = util.Prioritized(links, v.Priority)
		}
	}
	return out
}

// ReferenceLabel returns the raw label through which a link or image node
// resolved to a definition. Inline links have none.
func (d *Document) ReferenceLabel(n gmast.Node) ([]byte, bool) {
	label, ok := d.labels[n]
	return label, ok
}

// LineOf returns the 1-based line number of a byte offset in the body.
func (d *Document) LineOf(offset int) int {
	if offset < 0 {
		return 0
	}
	return sort.Search(len(d.lineStarts), func(i int) bool {
		return d.lineStarts[i] > offset
	})
}

// blockLine returns the line on which a block starts, falling back to its
// first descendant that carries source lines.
func (d *Document) blockLine(n gmast.Node) int {
	if def, ok := n.(*LinkReferenceDefinition); ok {
		return d.LineOf(def.Offset)
	}
	if n.Type() == gmast.TypeBlock {
		if lines := n.Lines(); lines != nil && lines.Len() > 0 {
			return d.LineOf(lines.At(0).Start)
		}
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if line := d.blockLine(c); line > 0 {
			return line
		}
	}
	return 0
}

func lineStarts(src []byte) []int {
	starts := []int{0}
	for i, b := range src {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return slices.Clip(starts)
}
