package markdown

import (
	"bytes"
	"strings"

	gmast "github.com/yuin/goldmark/ast"

	"git.home.luguber.info/inful/mdpo/internal/foundation/errors"
)

// LinkRef is a link or image met while normalizing an inline run.
// Destination and Title are the raw bytes goldmark recorded; for reference
// links they are the referenced definition's.
type LinkRef struct {
	Node        gmast.Node
	Destination []byte
	Title       []byte
	Image       bool
}

// Inline is a normalized inline run.
type Inline struct {
	Text  string
	Links []LinkRef
}

// NormalizeInline renders an inline run to translatable text.
//
// Inline markup is re-emitted from the source so the translator sees the
// original delimiters, except that markup wrapping the whole run is dropped:
// raw HTML and autolinks on the edges are stripped, and when nothing was
// stripped a run made of a single emphasis or link is unwrapped, repeatedly.
// Link destinations never appear in the text; links are reported in Links so
// their titles can become units of their own.
func NormalizeInline(run []gmast.Node, source []byte) Inline {
	r := &inlineRenderer{source: source}
	run, stripped := trimMarkupEdges(run, source)
	if !stripped {
		run = r.unwrap(run)
	}
	r.renderRun(run)
	return Inline{Text: NormalizeWhitespace(r.buf.String()), Links: r.links}
}

func inlineChildren(n gmast.Node) []gmast.Node {
	var out []gmast.Node
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		out = append(out, c)
	}
	return out
}

type inlineRenderer struct {
	source []byte
	buf    strings.Builder
	links  []LinkRef
}

func (r *inlineRenderer) addLink(n gmast.Node) {
	r.links = append(r.links, newLinkRef(n))
}

func newLinkRef(n gmast.Node) LinkRef {
	switch n := n.(type) {
	case *gmast.Link:
		return LinkRef{Node: n, Destination: n.Destination, Title: n.Title}
	case *gmast.Image:
		return LinkRef{Node: n, Destination: n.Destination, Title: n.Title, Image: true}
	}
	return LinkRef{Node: n}
}

func (r *inlineRenderer) unwrap(run []gmast.Node) []gmast.Node {
	for {
		run = trimBlankEdges(run, r.source)
		if len(run) != 1 {
			return run
		}
		switch n := run[0].(type) {
		case *gmast.Emphasis:
			if hasLooseBacktick(n, r.source) {
				return run
			}
		case *gmast.Link, *gmast.Image:
			r.addLink(n)
		default:
			return run
		}
		run = inlineChildren(run[0])
	}
}

// renderRun writes a run of sibling inlines. Adjacent text nodes are decoded
// together so an escape split across node boundaries still resolves.
func (r *inlineRenderer) renderRun(run []gmast.Node) {
	var pending []byte
	flush := func() {
		if len(pending) > 0 {
			r.buf.WriteString(decodeText(pending, keepInlineEscape))
			pending = pending[:0]
		}
	}
	for _, n := range run {
		t, ok := n.(*gmast.Text)
		if !ok || t.IsRaw() {
			flush()
			r.render(n)
			continue
		}
		v := t.Segment.Value(r.source)
		if t.HardLineBreak() {
			pending = append(pending, trimHardBreak(v, byteAt(r.source, t.Segment.Stop))...)
			flush()
			r.buf.WriteByte('\n')
			continue
		}
		pending = append(pending, v...)
		if t.SoftLineBreak() {
			pending = append(pending, ' ')
		}
	}
	flush()
}

func (r *inlineRenderer) render(n gmast.Node) {
	switch n := n.(type) {
	case *gmast.Text:
		r.buf.Write(n.Segment.Value(r.source))
	case *gmast.String:
		if n.IsRaw() || n.IsCode() {
			r.buf.Write(n.Value)
		} else {
			r.buf.WriteString(decodeText(n.Value, keepInlineEscape))
		}
	case *gmast.CodeSpan:
		r.buf.WriteString(codeSpanSource(n, r.source))
	case *gmast.Emphasis:
		delim := strings.Repeat(string(emphasisDelimiter(n, r.source)), n.Level)
		r.buf.WriteString(delim)
		r.renderRun(inlineChildren(n))
		r.buf.WriteString(delim)
	case *gmast.Link, *gmast.Image:
		r.addLink(n)
		r.renderRun(inlineChildren(n))
	case *gmast.AutoLink:
		r.buf.WriteByte('<')
		r.buf.Write(n.Label(r.source))
		r.buf.WriteByte('>')
	case *gmast.RawHTML:
		for i := 0; i < n.Segments.Len(); i++ {
			seg := n.Segments.At(i)
			r.buf.Write(bytes.ReplaceAll(seg.Value(r.source), []byte("\n"), []byte(" ")))
		}
	default:
		panic(unexpectedNode(n))
	}
}

func unexpectedNode(n gmast.Node) error {
	return errors.InternalError("unexpected markdown node").
		WithContext("kind", n.Kind().String()).
		Build()
}

// trimHardBreak drops the trailing spaces that produced a hard line break.
// goldmark leaves the backslash of a backslash break out of the segment;
// next is the source byte right after the segment and tells whether the
// segment still ends with that backslash. A backslash before trailing spaces
// is literal text and stays.
func trimHardBreak(v []byte, next byte) []byte {
	if trimmed := bytes.TrimRight(v, " \t"); len(trimmed) < len(v) {
		return trimmed
	}
	if next != '\n' && next != '\r' {
		return v
	}
	n := 0
	for i := len(v) - 1; i >= 0 && v[i] == '\\'; i-- {
		n++
	}
	if n%2 == 1 {
		v = v[:len(v)-1]
	}
	return v
}

func byteAt(source []byte, i int) byte {
	if i >= 0 && i < len(source) {
		return source[i]
	}
	return 0
}

// trimMarkupEdges removes raw HTML and autolinks bounding the run, skipping
// whitespace-only text between them. It reports whether anything was removed.
func trimMarkupEdges(run []gmast.Node, source []byte) ([]gmast.Node, bool) {
	lo, hi := 0, len(run)
	stripped := false
head:
	for lo < hi {
		switch {
		case isEdgeMarkup(run[lo]):
			stripped = true
		case !isBlankText(run[lo], source):
			break head
		}
		lo++
	}
tail:
	for hi > lo {
		switch {
		case isEdgeMarkup(run[hi-1]):
			stripped = true
		case !isBlankText(run[hi-1], source):
			break tail
		}
		hi--
	}
	return run[lo:hi], stripped
}

func trimBlankEdges(run []gmast.Node, source []byte) []gmast.Node {
	for len(run) > 0 && isBlankText(run[0], source) {
		run = run[1:]
	}
	for len(run) > 0 && isBlankText(run[len(run)-1], source) {
		run = run[:len(run)-1]
	}
	return run
}

func isEdgeMarkup(n gmast.Node) bool {
	switch n.(type) {
	case *gmast.RawHTML, *gmast.AutoLink:
		return true
	}
	return false
}

func isBlankText(n gmast.Node, source []byte) bool {
	t, ok := n.(*gmast.Text)
	if !ok {
		return false
	}
	return len(bytes.TrimSpace(t.Segment.Value(source))) == 0
}

// hasLooseBacktick reports whether an emphasis holds a backtick outside a
// code span. Dropping its delimiters could let that backtick pair up with
// another one differently, so such emphasis is kept as written.
func hasLooseBacktick(n gmast.Node, source []byte) bool {
	found := false
	_ = gmast.Walk(n, func(c gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch c := c.(type) {
		case *gmast.CodeSpan:
			return gmast.WalkSkipChildren, nil
		case *gmast.Text:
			if bytes.IndexByte(c.Segment.Value(source), '`') >= 0 {
				found = true
				return gmast.WalkStop, nil
			}
		case *gmast.String:
			if bytes.IndexByte(c.Value, '`') >= 0 {
				found = true
				return gmast.WalkStop, nil
			}
		}
		return gmast.WalkContinue, nil
	})
	return found
}

// emphasisDelimiter returns the delimiter character ('*' or '_') an emphasis
// was written with, read back from the source.
func emphasisDelimiter(n *gmast.Emphasis, source []byte) byte {
	if start := inlineStart(n, source); start >= 0 && start < len(source) {
		if c := source[start]; c == '*' || c == '_' {
			return c
		}
	}
	return '*'
}

// inlineStart returns the source offset at which an inline node begins, or -1
// when it cannot be recovered.
func inlineStart(n gmast.Node, source []byte) int {
	first := func() int {
		if n.FirstChild() == nil {
			return -1
		}
		return inlineStart(n.FirstChild(), source)
	}
	switch n := n.(type) {
	case *gmast.Text:
		return n.Segment.Start
	case *gmast.RawHTML:
		if n.Segments.Len() == 0 {
			return -1
		}
		return n.Segments.At(0).Start
	case *gmast.CodeSpan:
		start, _, ok := codeSpanBounds(n, source)
		if !ok {
			return -1
		}
		return start
	case *gmast.Emphasis:
		if s := first(); s >= n.Level {
			return s - n.Level
		}
	case *gmast.Link:
		if s := first(); s >= 1 {
			return s - 1
		}
	case *gmast.Image:
		if s := first(); s >= 2 {
			return s - 2
		}
	}
	return -1
}

// codeSpanBounds returns the source range of a code span including its
// backtick fences.
func codeSpanBounds(n *gmast.CodeSpan, source []byte) (start, stop int, ok bool) {
	first, ok1 := n.FirstChild().(*gmast.Text)
	last, ok2 := n.LastChild().(*gmast.Text)
	if !ok1 || !ok2 {
		return 0, 0, false
	}
	start, stop = first.Segment.Start, last.Segment.Stop
	if start >= 2 && isSpaceOrNewline(source[start-1]) && source[start-2] == '`' {
		start--
	}
	for start > 0 && source[start-1] == '`' {
		start--
	}
	if stop+1 < len(source) && isSpaceOrNewline(source[stop]) && source[stop+1] == '`' {
		stop++
	}
	for stop < len(source) && source[stop] == '`' {
		stop++
	}
	return start, stop, true
}

func isSpaceOrNewline(c byte) bool {
	return c == ' ' || c == '\n'
}

// codeSpanSource re-emits a code span with its fences. Content spanning
// several lines is joined with spaces and container prefixes between the
// lines are left out.
func codeSpanSource(n *gmast.CodeSpan, source []byte) string {
	start, stop, ok := codeSpanBounds(n, source)
	if !ok {
		var b strings.Builder
		b.WriteByte('`')
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			if s, ok := c.(*gmast.String); ok {
				b.Write(s.Value)
			}
		}
		b.WriteByte('`')
		return b.String()
	}

	first := n.FirstChild().(*gmast.Text)
	last := n.LastChild().(*gmast.Text)

	var b strings.Builder
	b.Write(source[start:first.Segment.Start])
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*gmast.Text); ok {
			b.Write(t.Segment.Value(source))
		}
	}
	b.Write(source[last.Segment.Stop:stop])
	return strings.ReplaceAll(strings.ReplaceAll(b.String(), "\r\n", " "), "\n", " ")
}
