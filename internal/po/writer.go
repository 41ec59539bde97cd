package po

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"git.home.luguber.info/inful/mdpo/internal/foundation/errors"
)

// DefaultWrap is the column at which msgid and msgstr strings are folded,
// matching gettext's default.
const DefaultWrap = 76

// WriteOptions controls catalog layout.
type WriteOptions struct {
	// Wrap folds long strings at this column. Zero or less disables folding;
	// strings containing newlines are still split after each newline.
	Wrap int
}

// Write serializes c as a PO file.
func Write(w io.Writer, c *Catalog, opts WriteOptions) error {
	bw := bufio.NewWriter(w)
	p := &printer{w: bw, wrap: opts.Wrap}

	p.line("msgid \"\"")
	var header strings.Builder
	for _, f := range c.Header {
		header.WriteString(f.Name + ": " + f.Value + "\n")
	}
	p.keyword("msgstr", header.String())

	for _, e := range c.Entries {
		p.line("")
		p.entry(e)
	}

	if err := bw.Flush(); err != nil {
		return errors.ExportError("failed to write PO catalog").WithCause(err).Build()
	}
	return nil
}

type printer struct {
	w    *bufio.Writer
	wrap int
}

func (p *printer) line(s string) {
	_, _ = p.w.WriteString(s)
	_ = p.w.WriteByte('\n')
}

func (p *printer) entry(e Entry) {
	for _, c := range e.Comments {
		p.line(strings.TrimRight("# "+c, " "))
	}
	for _, c := range e.Extracted {
		p.line("#. " + c)
	}
	for _, r := range e.References {
		p.line("#: " + r)
	}
	if len(e.Flags) > 0 {
		p.line("#, " + strings.Join(e.Flags, ", "))
	}
	if e.Context != "" {
		p.keyword("msgctxt", e.Context)
	}
	p.keyword("msgid", e.MsgID)
	if e.MsgIDPlural == "" {
		p.keyword("msgstr", e.MsgStr)
		return
	}
	p.keyword("msgid_plural", e.MsgIDPlural)
	forms := e.MsgStrPlural
	if len(forms) == 0 {
		forms = []string{"", ""}
	}
	for i, f := range forms {
		p.keyword("msgstr["+strconv.Itoa(i)+"]", f)
	}
}

// keyword prints `keyword "value"`, folding the value over several quoted
// lines when it holds a newline or overflows the wrap column.
func (p *printer) keyword(keyword, value string) {
	chunks := foldString(value, p.wrap)
	if len(chunks) == 1 && len(keyword)+len(quote(chunks[0]))+1 <= p.width() {
		p.line(keyword + " " + quote(chunks[0]))
		return
	}
	p.line(keyword + " \"\"")
	for _, c := range chunks {
		p.line(quote(c))
	}
}

func (p *printer) width() int {
	if p.wrap <= 0 {
		return int(^uint(0) >> 1)
	}
	return p.wrap
}

// foldString splits s after every newline and, when wrap is positive,
// breaks longer pieces after a space so that each escaped, quoted chunk fits.
func foldString(s string, wrap int) []string {
	if s == "" {
		return []string{""}
	}
	var out []string
	for _, piece := range strings.SplitAfter(s, "\n") {
		if piece == "" {
			continue
		}
		out = append(out, foldPiece(piece, wrap)...)
	}
	return out
}

func foldPiece(piece string, wrap int) []string {
	if wrap <= 0 {
		return []string{piece}
	}
	var out []string
	for len(quote(piece)) > wrap {
		cut := -1
		width := 1
		for i := 0; i < len(piece); i++ {
			width += len(escape(piece[i : i+1]))
			if width >= wrap {
				break
			}
			if piece[i] == ' ' {
				cut = i + 1
			}
		}
		if cut <= 0 || cut >= len(piece) {
			break
		}
		out = append(out, piece[:cut])
		piece = piece[cut:]
	}
	return append(out, piece)
}

func quote(s string) string {
	return "\"" + escape(s) + "\""
}

var escaper = strings.NewReplacer(
	"\\", "\\\\",
	"\"", "\\\"",
	"\n", "\\n",
	"\t", "\\t",
	"\r", "\\r",
)

func escape(s string) string {
	return escaper.Replace(s)
}
