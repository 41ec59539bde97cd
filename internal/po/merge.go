package po

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"git.home.luguber.info/inful/mdpo/internal/foundation/errors"
)

// blockSeparator matches the blank lines between plain-text blocks.
var blockSeparator = regexp.MustCompile(`\n(?:[ \t]*\n)+`)

// replacement is a byte-range substitution in a template.
type replacement struct {
	start, end int
	text       string
}

// MergeOptions controls MergeText.
type MergeOptions struct {
	// Wrap folds every line of a translation at this many characters.
	// Zero or less inserts translations as they are.
	Wrap int
}

// MergeText translates a plain-text template block by block. A block is a
// run of lines delimited by blank lines; its trimmed text is looked up in c
// and replaced in place, keeping the surrounding whitespace. Blocks without a
// usable translation are copied unchanged.
func MergeText(template string, c *Catalog, opts MergeOptions) string {
	var edits []replacement
	start := 0
	emit := func(end int) {
		block := template[start:end]
		trimmed := strings.TrimSpace(block)
		if trimmed == "" {
			return
		}
		translated, ok := c.Lookup(trimmed)
		if !ok {
			translated, ok = c.Lookup(strings.Join(strings.Fields(trimmed), " "))
		}
		if !ok {
			return
		}
		offset := start + strings.Index(block, trimmed)
		edits = append(edits, replacement{start: offset, end: offset + len(trimmed), text: wrapText(translated, opts.Wrap)})
	}
	for _, sep := range blockSeparator.FindAllStringIndex(template, -1) {
		emit(sep[0])
		start = sep[1]
	}
	emit(len(template))

	out, err := applyReplacements(template, edits)
	if err != nil {
		// Blocks never overlap; a failure here is a bug in the splitter.
		panic(err)
	}
	return out
}

// wrapText folds each line of s greedily at width characters. Words longer
// than a line are split.
func wrapText(s string, width int) string {
	if width <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = wrapLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func wrapLine(line string, width int) string {
	var out []string
	var cur strings.Builder
	n := 0
	flush := func() {
		if n > 0 {
			out = append(out, cur.String())
			cur.Reset()
			n = 0
		}
	}
	for _, word := range strings.Fields(line) {
		for utf8.RuneCountInString(word) > width {
			flush()
			r := []rune(word)
			out = append(out, string(r[:width]))
			word = string(r[width:])
		}
		size := utf8.RuneCountInString(word)
		if size == 0 {
			continue
		}
		if n > 0 && n+1+size > width {
			flush()
		}
		if n > 0 {
			cur.WriteByte(' ')
			n++
		}
		cur.WriteString(word)
		n += size
	}
	flush()
	return strings.Join(out, "\n")
}

// applyReplacements applies non-overlapping replacements, given as offsets
// into the original string, from the end toward the beginning.
func applyReplacements(s string, edits []replacement) (string, error) {
	if len(edits) == 0 {
		return s, nil
	}
	sorted := append([]replacement(nil), edits...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].start > sorted[j].start })

	for i, e := range sorted {
		if e.start < 0 || e.end < e.start || e.end > len(s) {
			return "", errors.InternalError("replacement out of range").
				WithContext("start", e.start).
				WithContext("end", e.end).
				Build()
		}
		if i > 0 && e.end > sorted[i-1].start {
			return "", errors.InternalError("overlapping replacements").
				WithContext("start", e.start).
				Build()
		}
	}

	out := s
	for _, e := range sorted {
		out = out[:e.start] + e.text + out[e.end:]
	}
	return out, nil
}
