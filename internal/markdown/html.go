package markdown

import (
	"bytes"
	"slices"
	"strings"

	gmast "github.com/yuin/goldmark/ast"
	"golang.org/x/net/html"
)

// htmlBlockSource returns the raw source of an HTML block, closure line
// included.
func htmlBlockSource(n *gmast.HTMLBlock, source []byte) []byte {
	var b bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(source))
	}
	if n.HasClosure() {
		b.Write(n.ClosureLine.Value(source))
	}
	return b.Bytes()
}

type htmlToken struct {
	typ        html.TokenType
	name       string
	start, end int
	blank      bool
}

func (t htmlToken) isMarkup() bool {
	switch t.typ {
	case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken, html.CommentToken, html.DoctypeToken:
		return true
	}
	return false
}

// tokenizeHTML splits raw HTML into tokens with byte offsets. It also returns
// the lower-cased name of the first tag. ok is false when the tokens do not
// cover the input, in which case offsets cannot be trusted.
func tokenizeHTML(raw []byte) (toks []htmlToken, firstTag string, ok bool) {
	z := html.NewTokenizer(bytes.NewReader(raw))
	offset := 0
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		size := len(z.Raw())
		tok := htmlToken{typ: tt, start: offset, end: offset + size}
		if tt == html.TextToken {
			tok.blank = len(bytes.TrimSpace(raw[tok.start:tok.end])) == 0
		}
		switch tt {
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			tok.name = strings.ToLower(string(name))
			if firstTag == "" && tt != html.EndTagToken {
				firstTag = tok.name
			}
		}
		toks = append(toks, tok)
		offset += size
	}
	return toks, firstTag, offset == len(raw)
}

// htmlBlockText extracts the translatable text of an HTML block. Tags and
// comments bounding the block are removed when what they enclose is plain
// text. Otherwise only comments and elements wrapping the whole remainder are
// removed, so the markup left for the translator stays balanced. Character
// references in text are decoded and whitespace collapsed onto one line.
// Opaque blocks yield "".
func htmlBlockText(n *gmast.HTMLBlock, source []byte, opaque map[string]bool) string {
	switch n.HTMLBlockType {
	case gmast.HTMLBlockType1, gmast.HTMLBlockType3, gmast.HTMLBlockType4, gmast.HTMLBlockType5:
		return ""
	}

	raw := htmlBlockSource(n, source)
	toks, firstTag, ok := tokenizeHTML(raw)
	if firstTag != "" && opaque[firstTag] {
		return ""
	}
	if !ok {
		return NormalizeWhitespace(strings.ReplaceAll(decodeEntities(raw), "\n", " "))
	}

	lo, hi := 0, len(toks)
	for lo < hi && (toks[lo].isMarkup() || toks[lo].blank) {
		lo++
	}
	for hi > lo && (toks[hi-1].isMarkup() || toks[hi-1].blank) {
		hi--
	}
	if lo == hi {
		return ""
	}
	if slices.ContainsFunc(toks[lo:hi], htmlToken.isMarkup) {
		lo, hi = unwrapElements(toks)
	}

	var b strings.Builder
	for _, t := range toks[lo:hi] {
		v := raw[t.start:t.end]
		if t.typ == html.TextToken {
			b.WriteString(decodeEntities(v))
		} else {
			b.Write(v)
		}
	}
	return NormalizeWhitespace(strings.ReplaceAll(b.String(), "\n", " "))
}

// unwrapElements trims blank text, comments and elements whose start and end
// tags enclose everything else, and returns the remaining token range.
func unwrapElements(toks []htmlToken) (lo, hi int) {
	lo, hi = 0, len(toks)
	for lo < hi {
		switch {
		case toks[lo].blank || toks[lo].typ == html.CommentToken:
			lo++
		case toks[hi-1].blank || toks[hi-1].typ == html.CommentToken:
			hi--
		case toks[lo].typ == html.StartTagToken && closes(toks, lo, hi):
			lo++
			hi--
		default:
			return lo, hi
		}
	}
	return lo, hi
}

// closes reports whether the start tag at lo is closed by the end tag at
// hi-1.
func closes(toks []htmlToken, lo, hi int) bool {
	name := toks[lo].name
	depth := 0
	for i := lo; i < hi; i++ {
		t := toks[i]
		if t.name != name {
			continue
		}
		switch t.typ {
		case html.StartTagToken:
			depth++
		case html.EndTagToken:
			depth--
			if depth == 0 {
				return i == hi-1
			}
		}
	}
	return false
}
