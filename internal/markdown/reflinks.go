package markdown

import (
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// referenceLinkParser wraps goldmark's link parser and records, for every
// link or image built from a reference, the label that selected the
// definition. Inline links get no label.
//
// It mirrors the parser's stack of open brackets: goldmark pushes one on
// every '[' or "![" and pops the most recent on every ']'.
type referenceLinkParser struct {
	parser.InlineParser
	openers []int
	labels  map[gmast.Node][]byte
}

func newReferenceLinkParser() *referenceLinkParser {
	return &referenceLinkParser{
		InlineParser: parser.NewLinkParser(),
		labels:       make(map[gmast.Node][]byte),
	}
}

func (p *referenceLinkParser) Parse(parent gmast.Node, block text.Reader, pc parser.Context) gmast.Node {
	line, seg := block.PeekLine()
	if len(line) == 0 || line[0] != ']' {
		n := p.InlineParser.Parse(parent, block, pc)
		if n != nil {
			open := seg.Start
			if line[0] == '!' {
				open++
			}
			p.openers = append(p.openers, open+1)
		}
		return n
	}

	textStart := -1
	if k := len(p.openers); k > 0 {
		textStart = p.openers[k-1]
		p.openers = p.openers[:k-1]
	}
	n := p.InlineParser.Parse(parent, block, pc)
	if n == nil || textStart < 0 {
		return n
	}
	_, pos := block.Position()
	if label := referenceLabel(block, textStart, seg.Start, pos.Start); label != nil {
		p.labels[n] = label
	}
	return n
}

// CloseBlock forwards to goldmark, which drops unmatched brackets at the end
// of every block.
func (p *referenceLinkParser) CloseBlock(parent gmast.Node, block text.Reader, pc parser.Context) {
	p.openers = p.openers[:0]
	if cb, ok := p.InlineParser.(parser.CloseBlocker); ok {
		cb.CloseBlock(parent, block, pc)
	}
}

// referenceLabel returns the label of a link whose text spans
// [textStart, closer) and whose source ends at end. Full references carry
// their own label, collapsed and shortcut references use the link text.
// Inline links return nil.
func referenceLabel(block text.Reader, textStart, closer, end int) []byte {
	suffix := block.Value(text.NewSegment(closer+1, end))
	if len(suffix) > 0 && suffix[0] == '(' {
		return nil
	}
	if len(suffix) >= 2 && suffix[0] == '[' && suffix[len(suffix)-1] == ']' {
		if inner := suffix[1 : len(suffix)-1]; !util.IsBlank(inner) {
			return inner
		}
	}
	return block.Value(text.NewSegment(textStart, closer))
}
