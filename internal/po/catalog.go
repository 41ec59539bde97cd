package po

import (
	"slices"
	"strconv"
	"strings"

	"git.home.luguber.info/inful/mdpo/internal/units"
)

// Entry is one message of a catalog.
type Entry struct {
	MsgID        string
	MsgIDPlural  string
	MsgStr       string
	MsgStrPlural []string
	Context      string
	Comments     []string // translator comments, "# "
	Extracted    []string // extracted comments, "#."
	References   []string // source references, "#:"
	Flags        []string // "#,"
}

// Fuzzy reports whether the entry carries the fuzzy flag.
func (e Entry) Fuzzy() bool {
	return slices.Contains(e.Flags, "fuzzy")
}

// Catalog is an ordered set of entries plus the header fields.
type Catalog struct {
	Header  []HeaderField
	Entries []Entry

	index map[string]int
}

// HeaderField is a "Name: value" line of the header entry.
type HeaderField struct {
	Name  string
	Value string
}

// HeaderValue returns the value of the named header field.
func (c *Catalog) HeaderValue(name string) (string, bool) {
	for _, f := range c.Header {
		if strings.EqualFold(f.Name, name) {
			return f.Value, true
		}
	}
	return "", false
}

// Lookup returns the translation of msgid. Untranslated and fuzzy entries
// report false.
func (c *Catalog) Lookup(msgid string) (string, bool) {
	i, ok := c.lookupIndex()[msgid]
	if !ok {
		return "", false
	}
	e := c.Entries[i]
	if e.MsgStr == "" || e.Fuzzy() {
		return "", false
	}
	return e.MsgStr, true
}

// Len returns the number of entries, header excluded.
func (c *Catalog) Len() int { return len(c.Entries) }

func (c *Catalog) lookupIndex() map[string]int {
	if c.index == nil {
		c.index = make(map[string]int, len(c.Entries))
		for i, e := range c.Entries {
			if _, dup := c.index[e.MsgID]; !dup {
				c.index[e.MsgID] = i
			}
		}
	}
	return c.index
}

// add appends or merges an entry keyed by msgid.
func (c *Catalog) add(e Entry) {
	idx := c.lookupIndex()
	if i, ok := idx[e.MsgID]; ok {
		cur := &c.Entries[i]
		cur.References = appendUnique(cur.References, e.References...)
		cur.Extracted = appendUnique(cur.Extracted, e.Extracted...)
		return
	}
	idx[e.MsgID] = len(c.Entries)
	c.Entries = append(c.Entries, e)
}

// FromStores builds a template catalog (empty msgstr) from extracted units.
func FromStores(h Header, stores ...*units.Store) *Catalog {
	c := &Catalog{Header: h.fields()}
	for _, s := range stores {
		for _, u := range s.All() {
			c.add(Entry{
				MsgID:      u.Source,
				Extracted:  []string{string(u.Kind), "id: " + u.ID},
				References: []string{reference(u)},
			})
		}
	}
	return c
}

func reference(u units.Unit) string {
	if u.Location.Line <= 0 {
		return u.Document
	}
	return u.Document + ":" + strconv.Itoa(u.Location.Line)
}

func appendUnique(dst []string, values ...string) []string {
	for _, v := range values {
		if !slices.Contains(dst, v) {
			dst = append(dst, v)
		}
	}
	return dst
}
