package po

import (
	"bufio"
	"bytes"
	"io"
	"sort"
	"strconv"
	"strings"

	gettext "github.com/chai2010/gettext-go/po"

	"git.home.luguber.info/inful/mdpo/internal/foundation/errors"
)

// Read parses a PO catalog. Obsolete ("#~") entries and previous-msgid
// ("#|") comments are ignored. The header entry, if any, is split into
// Header fields instead of being returned as an entry.
func Read(r io.Reader) (*Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to read PO catalog").Build()
	}
	data, err = checkSyntax(data)
	if err != nil {
		return nil, err
	}
	f, err := gettext.Load(data)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryParse, "malformed PO catalog").Build()
	}

	c := &Catalog{Header: headerFields(&f.MimeHeader)}
	for i := range f.Messages {
		c.add(entryFromMessage(&f.Messages[i]))
	}
	return c, nil
}

func entryFromMessage(m *gettext.Message) Entry {
	e := Entry{
		MsgID:       m.MsgId,
		MsgIDPlural: m.MsgIdPlural,
		MsgStr:      m.MsgStr,
		Context:     m.MsgContext,
		Comments:    commentLines(m.TranslatorComment),
		Extracted:   commentLines(m.ExtractedComment),
	}
	if len(m.MsgStrPlural) > 0 {
		e.MsgStrPlural = append([]string(nil), m.MsgStrPlural...)
		if e.MsgStr == "" {
			e.MsgStr = e.MsgStrPlural[0]
		}
	}
	for i, file := range m.ReferenceFile {
		line := 0
		if i < len(m.ReferenceLine) {
			line = m.ReferenceLine[i]
		}
		if line > 0 {
			file += ":" + strconv.Itoa(line)
		}
		e.References = append(e.References, file)
	}
	for _, flag := range m.Flags {
		if flag = strings.TrimSpace(flag); flag != "" {
			e.Flags = append(e.Flags, flag)
		}
	}
	return e
}

func commentLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// headerFields lists the header in the order Header.fields writes it;
// non-standard fields follow sorted by name.
func headerFields(h *gettext.Header) []HeaderField {
	known := []HeaderField{
		{"Project-Id-Version", h.ProjectIdVersion},
		{"Report-Msgid-Bugs-To", h.ReportMsgidBugsTo},
		{"POT-Creation-Date", h.POTCreationDate},
		{"PO-Revision-Date", h.PORevisionDate},
		{"Last-Translator", h.LastTranslator},
		{"Language-Team", h.LanguageTeam},
		{"Language", h.Language},
		{"MIME-Version", h.MimeVersion},
		{"Content-Type", h.ContentType},
		{"Content-Transfer-Encoding", h.ContentTransferEncoding},
		{"Plural-Forms", h.PluralForms},
		{"X-Generator", h.XGenerator},
	}
	fields := []HeaderField{}
	for _, f := range known {
		if f.Value != "" {
			fields = append(fields, f)
		}
	}
	names := make([]string, 0, len(h.UnknowFields))
	for name := range h.UnknowFields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fields = append(fields, HeaderField{Name: name, Value: h.UnknowFields[name]})
	}
	return fields
}

// checkSyntax validates the shape of every line and reports the first bad
// one with its line number. Obsolete and previous-msgid lines are dropped
// from the returned data.
func checkSyntax(data []byte) ([]byte, error) {
	var out bytes.Buffer
	out.Grow(len(data))
	sawMsgID := false
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for lineNo := 1; scanner.Scan(); lineNo++ {
		raw := scanner.Text()
		line := strings.TrimSpace(raw)
		switch {
		case strings.HasPrefix(line, "#~"), strings.HasPrefix(line, "#|"):
			continue
		case line == "":
			sawMsgID = false
		case strings.HasPrefix(line, "#"):
		case strings.HasPrefix(line, "\""):
			if !isQuoted(line) {
				return nil, syntaxError("expected quoted string", lineNo, line)
			}
		default:
			keyword, rest, _ := strings.Cut(line, " ")
			if !isQuoted(strings.TrimSpace(rest)) {
				return nil, syntaxError("expected quoted string", lineNo, line)
			}
			switch {
			case keyword == "msgid":
				sawMsgID = true
			case keyword == "msgctxt", keyword == "msgid_plural":
			case keyword == "msgstr", isPluralKeyword(keyword):
				if !sawMsgID {
					return nil, syntaxError("msgstr without msgid", lineNo, line)
				}
			default:
				return nil, syntaxError("unknown keyword", lineNo, line)
			}
		}
		out.WriteString(raw)
		out.WriteByte('\n')
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.WrapError(err, errors.CategoryParse, "failed to scan PO catalog").Build()
	}
	return out.Bytes(), nil
}

func isQuoted(s string) bool {
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return false
	}
	escaped := false
	for i := 1; i < len(s)-1; i++ {
		switch {
		case escaped:
			escaped = false
		case s[i] == '\\':
			escaped = true
		case s[i] == '"':
			return false
		}
	}
	return !escaped
}

func isPluralKeyword(k string) bool {
	if !strings.HasPrefix(k, "msgstr[") || !strings.HasSuffix(k, "]") {
		return false
	}
	n, err := strconv.Atoi(k[len("msgstr[") : len(k)-1])
	return err == nil && n >= 0
}

func syntaxError(msg string, line int, text string) error {
	return errors.ParseError("malformed PO catalog: "+msg).
		WithContext("line", line).
		WithContext("text", text).
		Build()
}
