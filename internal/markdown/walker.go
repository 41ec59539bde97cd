package markdown

import (
	"bytes"
	"iter"
	"strings"

	gmast "github.com/yuin/goldmark/ast"

	"git.home.luguber.info/inful/mdpo/internal/units"
)

// BlockKind is the closed set of block variants the walker understands.
type BlockKind int

const (
	BlockDocument BlockKind = iota
	BlockParagraph
	BlockATXHeading
	BlockSetextHeading
	BlockThematicBreak
	BlockCode
	BlockHTML
	BlockQuote
	BlockList
	BlockListItem
	BlockLinkReferenceDefinition
)

var blockKindNames = [...]string{
	BlockDocument:                "document",
	BlockParagraph:               "paragraph",
	BlockATXHeading:              "atx-heading",
	BlockSetextHeading:           "setext-heading",
	BlockThematicBreak:           "thematic-break",
	BlockCode:                    "code",
	BlockHTML:                    "html",
	BlockQuote:                   "blockquote",
	BlockList:                    "list",
	BlockListItem:                "list-item",
	BlockLinkReferenceDefinition: "link-reference-definition",
}

func (k BlockKind) String() string {
	if int(k) < len(blockKindNames) {
		return blockKindNames[k]
	}
	return "unknown"
}

// Candidate is one block visited by the walker. Text is the normalized
// translatable text, empty for blocks that are never translated or that
// normalize to nothing.
type Candidate struct {
	Block BlockKind
	Node  gmast.Node
	Text  string
	Links []LinkRef
	Line  int
}

// Translatable reports whether the candidate yields a unit.
func (c Candidate) Translatable() bool { return c.Text != "" }

// UnitKind maps the block onto the kind recorded for its unit.
func (c Candidate) UnitKind() units.Kind {
	switch c.Block {
	case BlockATXHeading, BlockSetextHeading:
		return units.KindHeading
	case BlockHTML:
		return units.KindHTML
	default:
		return units.KindParagraph
	}
}

// WalkOptions tunes block policy.
type WalkOptions struct {
	// OpaqueHTMLTags lists tag names whose HTML blocks are never translated,
	// on top of script, style, pre, textarea, comments and declarations.
	OpaqueHTMLTags []string
}

// Walk visits every block of doc in document order. Each range over the
// returned sequence starts a fresh traversal.
//
// Walk panics with an internal error when it meets a block kind it does not
// know, such as a node added by a parser extension.
func Walk(doc *Document, opts WalkOptions) iter.Seq[Candidate] {
	opaque := make(map[string]bool, len(opts.OpaqueHTMLTags))
	for _, tag := range opts.OpaqueHTMLTags {
		opaque[strings.ToLower(strings.TrimSpace(tag))] = true
	}
	return func(yield func(Candidate) bool) {
		w := &walker{doc: doc, opaque: opaque, yield: yield}
		w.walkChildren(doc.Root)
	}
}

type walker struct {
	doc    *Document
	opaque map[string]bool
	yield  func(Candidate) bool
}

func (w *walker) walkChildren(n gmast.Node) bool {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if !w.walkBlock(c) {
			return false
		}
	}
	return true
}

func (w *walker) emit(kind BlockKind, n gmast.Node) bool {
	return w.yield(Candidate{Block: kind, Node: n, Line: w.doc.blockLine(n)})
}

func (w *walker) walkBlock(n gmast.Node) bool {
	switch n := n.(type) {
	case *gmast.Paragraph, *gmast.TextBlock:
		if n.Lines().Len() == 0 {
			// left behind when every line was a link reference definition
			return true
		}
		return w.emitInline(BlockParagraph, n)
	case *gmast.Heading:
		kind := BlockSetextHeading
		if isATXHeading(n, w.doc.Source) {
			kind = BlockATXHeading
		}
		return w.emitInline(kind, n)
	case *gmast.ThematicBreak:
		return w.emit(BlockThematicBreak, n)
	case *gmast.CodeBlock, *gmast.FencedCodeBlock:
		return w.emit(BlockCode, n)
	case *gmast.HTMLBlock:
		return w.yield(Candidate{
			Block: BlockHTML,
			Node:  n,
			Text:  htmlBlockText(n, w.doc.Source, w.opaque),
			Line:  w.doc.blockLine(n),
		})
	case *gmast.Blockquote:
		return w.emit(BlockQuote, n) && w.walkChildren(n)
	case *gmast.List:
		return w.emit(BlockList, n) && w.walkChildren(n)
	case *gmast.ListItem:
		return w.emit(BlockListItem, n) && w.walkChildren(n)
	case *LinkReferenceDefinition:
		return w.emit(BlockLinkReferenceDefinition, n)
	default:
		panic(unexpectedNode(n))
	}
}

func (w *walker) emitInline(kind BlockKind, n gmast.Node) bool {
	in := NormalizeInline(inlineChildren(n), w.doc.Source)
	return w.yield(Candidate{
		Block: kind,
		Node:  n,
		Text:  in.Text,
		Links: in.Links,
		Line:  w.doc.blockLine(n),
	})
}

// isATXHeading tells ATX headings from setext ones, which goldmark represents
// with the same node. An ATX heading's content is preceded on its line by
// the opening '#' run; a setext heading's only by indentation and container
// markers.
func isATXHeading(n *gmast.Heading, source []byte) bool {
	lines := n.Lines()
	if lines.Len() == 0 {
		return true
	}
	start := lines.At(0).Start
	lineStart := bytes.LastIndexByte(source[:start], '\n') + 1
	prefix := bytes.TrimRight(source[lineStart:start], " \t")
	return bytes.HasSuffix(prefix, []byte("#"))
}
