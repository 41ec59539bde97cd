package markdown

import (
	"strings"

	"github.com/yuin/goldmark/util"
	"golang.org/x/net/html"
)

// NormalizeWhitespace trims s and collapses every run of horizontal
// whitespace to a single space. Line breaks survive (one per hard break),
// but leading and trailing breaks are dropped and each line is trimmed.
// Only ASCII whitespace is touched so non-breaking spaces are preserved.
//
// NormalizeWhitespace is idempotent and maps whitespace-only input to "".
func NormalizeWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.Join(strings.FieldsFunc(line, isHorizontalSpace), " ")
	}
	return strings.Trim(strings.Join(lines, "\n"), "\n")
}

func isHorizontalSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\r', '\f', '\v':
		return true
	}
	return false
}

// inlineSignificant lists the punctuation characters whose backslash escape
// is kept in inline text: unescaping them would change how the text parses.
const inlineSignificant = "\\`*_[]<>!&"

func keepInlineEscape(c byte) bool {
	return strings.IndexByte(inlineSignificant, c) >= 0
}

func dropAllEscapes(byte) bool { return false }

// decodeText resolves backslash escapes and character references in raw
// Markdown text. keep decides, per escaped punctuation character, whether the
// backslash stays. An escaped '&' never starts a character reference.
func decodeText(raw []byte, keep func(byte) bool) string {
	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch {
		case c == '\\' && i+1 < len(raw) && util.IsPunct(raw[i+1]):
			if keep(raw[i+1]) {
				b.WriteByte('\\')
			}
			b.WriteByte(raw[i+1])
			i++
		case c == '&':
			if decoded, n := matchEntity(raw[i:]); n > 0 {
				b.WriteString(decoded)
				i += n - 1
				continue
			}
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// decodeTitle resolves a link title. Line breaks are kept and the title is
// not trimmed; whitespace-only titles decode to "".
func decodeTitle(raw []byte) string {
	title := decodeText(raw, dropAllEscapes)
	if strings.TrimSpace(title) == "" {
		return ""
	}
	return title
}

// decodeLabel resolves a link reference label to its display text.
func decodeLabel(raw []byte) string {
	return strings.Join(strings.Fields(decodeText(raw, dropAllEscapes)), " ")
}

// decodeEntities resolves character references only. Backslashes are left
// alone, as in raw HTML.
func decodeEntities(raw []byte) string {
	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		if raw[i] == '&' {
			if decoded, n := matchEntity(raw[i:]); n > 0 {
				b.WriteString(decoded)
				i += n - 1
				continue
			}
		}
		b.WriteByte(raw[i])
	}
	return b.String()
}

// maxEntityLength bounds the longest named reference (&CounterClockwiseContourIntegral;).
const maxEntityLength = 33

// matchEntity decodes the character reference at the start of b and reports
// how many bytes it spans. It returns 0 when b does not start with a valid,
// known reference.
func matchEntity(b []byte) (string, int) {
	end := -1
	for i := 1; i < len(b) && i < maxEntityLength; i++ {
		if b[i] == ';' {
			end = i
			break
		}
	}
	if end < 2 || !validEntityName(b[1:end]) {
		return "", 0
	}
	ref := string(b[:end+1])
	decoded := html.UnescapeString(ref)
	// A partial match such as "&notit;" decodes its legacy prefix only.
	if decoded == ref || (decoded != ";" && strings.HasSuffix(decoded, ";")) {
		return "", 0
	}
	return decoded, end + 1
}

func validEntityName(name []byte) bool {
	if name[0] == '#' {
		digits := name[1:]
		hex := false
		if len(digits) > 0 && (digits[0] == 'x' || digits[0] == 'X') {
			digits = digits[1:]
			hex = true
		}
		if len(digits) == 0 || (hex && len(digits) > 6) || (!hex && len(digits) > 7) {
			return false
		}
		for _, c := range digits {
			if !isDigit(c) && !(hex && isHexLetter(c)) {
				return false
			}
		}
		return true
	}
	for i, c := range name {
		if isLetter(c) || (i > 0 && isDigit(c)) {
			continue
		}
		return false
	}
	return true
}

func isDigit(c byte) bool     { return c >= '0' && c <= '9' }
func isLetter(c byte) bool    { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }
func isHexLetter(c byte) bool { return (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F') }
