package markdown

import (
	"strings"

	gmast "github.com/yuin/goldmark/ast"
	"golang.org/x/text/cases"

	"git.home.luguber.info/inful/mdpo/internal/units"
)

// pendingUnit is a unit the collector wants appended.
type pendingUnit struct {
	text string
	kind units.Kind
}

// referenceCollector decides which link titles and reference definition
// labels become units, and where. Links resolve to definitions by label
// identity: the label a reference link named, whitespace collapsed and case
// folded. Inline links never resolve.
type referenceCollector struct {
	doc        *Document
	folder     cases.Caser
	byKey      map[string]*LinkReferenceDefinition
	keys       map[*LinkReferenceDefinition]string
	referenced map[string]bool
	titled     map[string]bool
}

// newCollector indexes the definitions of doc and marks those that at least
// one link or image resolves to.
func newCollector(doc *Document) *referenceCollector {
	c := &referenceCollector{
		doc:        doc,
		folder:     cases.Fold(),
		byKey:      make(map[string]*LinkReferenceDefinition),
		keys:       make(map[*LinkReferenceDefinition]string),
		referenced: make(map[string]bool),
		titled:     make(map[string]bool),
	}
	add := func(def *LinkReferenceDefinition) {
		key := c.labelKey(def.Label)
		c.keys[def] = key
		if _, ok := c.byKey[key]; !ok {
			c.byKey[key] = def
		}
	}

	var links []gmast.Node
	_ = gmast.Walk(doc.Root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch n := n.(type) {
		case *LinkReferenceDefinition:
			add(n)
		case *gmast.Link, *gmast.Image:
			links = append(links, n)
		}
		return gmast.WalkContinue, nil
	})
	for _, def := range doc.Orphans {
		add(def)
	}

	for _, n := range links {
		if def := c.resolve(n); def != nil {
			c.referenced[c.keys[def]] = true
		}
	}
	return c
}

func (c *referenceCollector) labelKey(raw []byte) string {
	return c.folder.String(strings.Join(strings.Fields(string(raw)), " "))
}

// resolve returns the definition a reference link or image names, or nil
// for inline links.
func (c *referenceCollector) resolve(n gmast.Node) *LinkReferenceDefinition {
	if n == nil {
		return nil
	}
	label, ok := c.doc.ReferenceLabel(n)
	if !ok {
		return nil
	}
	return c.byKey[c.labelKey(label)]
}

// titles returns the title units that follow a unit containing links. A
// definition's title is emitted once, after the first unit referencing it.
func (c *referenceCollector) titles(links []LinkRef) []pendingUnit {
	var out []pendingUnit
	for _, l := range links {
		raw := l.Title
		if def := c.resolve(l.Node); def != nil {
			key := c.keys[def]
			if c.titled[key] {
				continue
			}
			c.titled[key] = true
			raw = def.Title
		}
		if title := decodeTitle(raw); title != "" {
			out = append(out, pendingUnit{text: title, kind: units.KindLinkTitle})
		}
	}
	return out
}

// definition returns the units of a definition visited at its own position.
// Referenced definitions yield nothing here: their label already appears as
// link text and their title follows the referencing unit.
func (c *referenceCollector) definition(def *LinkReferenceDefinition) []pendingUnit {
	key, ok := c.keys[def]
	if !ok || c.referenced[key] {
		return nil
	}
	var out []pendingUnit
	if label := strings.TrimSpace(decodeLabel(def.Label)); label != "" {
		out = append(out, pendingUnit{text: label, kind: units.KindLinkLabel})
	}
	if !c.titled[key] {
		c.titled[key] = true
		if title := decodeTitle(def.Title); title != "" {
			out = append(out, pendingUnit{text: title, kind: units.KindLinkTitle})
		}
	}
	return out
}
