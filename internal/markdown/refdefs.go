package markdown

import (
	"bytes"
	"sort"

	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// KindLinkReferenceDefinition is the node kind of LinkReferenceDefinition.
var KindLinkReferenceDefinition = gmast.NewNodeKind("LinkReferenceDefinition")

// LinkReferenceDefinition is a `[label]: destination "title"` definition.
// Label, Destination and Title hold raw source bytes (escapes and entities
// unresolved). Offset is the byte offset of the definition in the body, or
// -1 when unknown.
type LinkReferenceDefinition struct {
	gmast.BaseBlock
	Label       []byte
	Destination []byte
	Title       []byte
	Offset      int
}

// Kind implements ast.Node.
func (n *LinkReferenceDefinition) Kind() gmast.NodeKind {
	return KindLinkReferenceDefinition
}

// IsRaw keeps the inline parser away from definition nodes.
func (n *LinkReferenceDefinition) IsRaw() bool {
	return true
}

// Dump implements ast.Node.
func (n *LinkReferenceDefinition) Dump(source []byte, level int) {
	gmast.DumpHelper(n, source, level, map[string]string{
		"Label":       string(n.Label),
		"Destination": string(n.Destination),
		"Title":       string(n.Title),
	}, nil)
}

func newDefinition(ref parser.Reference, offset int) *LinkReferenceDefinition {
	return &LinkReferenceDefinition{
		Label:       ref.Label(),
		Destination: ref.Destination(),
		Title:       ref.Title(),
		Offset:      offset,
	}
}

// referenceRecorder runs goldmark's link reference transformer on each
// closed paragraph and leaves a LinkReferenceDefinition node in the tree for
// every definition it registers.
type referenceRecorder struct {
	seen map[string]struct{}
}

func (r *referenceRecorder) Transform(node *gmast.Paragraph, reader text.Reader, pc parser.Context) {
	parent := node.Parent()
	lines := node.Lines()
	if parent == nil || lines.Len() == 0 {
		parser.LinkReferenceParagraphTransformer.Transform(node, reader, pc)
		return
	}

	source := reader.Source()
	start := lines.At(0).Start
	stop := lines.At(lines.Len() - 1).Stop

	placeholder := &LinkReferenceDefinition{Offset: -1}
	parent.InsertBefore(parent, node, placeholder)

	parser.LinkReferenceParagraphTransformer.Transform(node, reader, pc)

	added := r.collectNew(pc)
	if len(added) > 0 {
		defs := make([]*LinkReferenceDefinition, 0, len(added))
		span := source[start:stop]
		for _, ref := range added {
			offset := -1
			if i := bytes.Index(span, labelOpener(ref.Label())); i >= 0 {
				offset = start + i
			}
			defs = append(defs, newDefinition(ref, offset))
		}
		sort.SliceStable(defs, func(i, j int) bool {
			return defs[i].Offset < defs[j].Offset
		})
		for _, def := range defs {
			parent.InsertBefore(parent, placeholder, def)
		}
	}
	parent.RemoveChild(parent, placeholder)
}

// collectNew returns references registered since the last call.
func (r *referenceRecorder) collectNew(pc parser.Context) []parser.Reference {
	var added []parser.Reference
	for _, ref := range pc.References() {
		key := util.ToLinkReference(ref.Label())
		if _, ok := r.seen[key]; ok {
			continue
		}
		r.seen[key] = struct{}{}
		added = append(added, ref)
	}
	return added
}

// orphans returns the definitions the parser registered outside a closed
// paragraph, ordered by their normalized label.
func (r *referenceRecorder) orphans(pc parser.Context) []*LinkReferenceDefinition {
	added := r.collectNew(pc)
	sort.Slice(added, func(i, j int) bool {
		return util.ToLinkReference(added[i].Label()) < util.ToLinkReference(added[j].Label())
	})
	out := make([]*LinkReferenceDefinition, 0, len(added))
	for _, ref := range added {
		out = append(out, newDefinition(ref, -1))
	}
	return out
}

func labelOpener(label []byte) []byte {
	out := make([]byte, 0, len(label)+2)
	out = append(out, '[')
	out = append(out, label...)
	return append(out, ']')
}
