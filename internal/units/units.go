// Package units holds translation units extracted from a document and the
// append-only store that carries them, in document order, to exporters.
package units

import (
	"fmt"
	"iter"
	"strconv"

	"github.com/google/uuid"
)

// Kind classifies where a unit came from.
type Kind string

const (
	KindParagraph   Kind = "paragraph"
	KindHeading     Kind = "heading"
	KindHTML        Kind = "html"
	KindLinkTitle   Kind = "link-title"
	KindLinkLabel   Kind = "link-label"
	KindFrontmatter Kind = "frontmatter"
)

// Location identifies a unit's position: its ordinal in the store and the
// 1-based source line of the block or definition it came from (0 if unknown).
type Location struct {
	Index int
	Line  int
}

func (l Location) String() string {
	if l.Line == 0 {
		return "#" + strconv.Itoa(l.Index)
	}
	return fmt.Sprintf("#%d@%d", l.Index, l.Line)
}

// Unit is a single translatable string. Units are values and are never
// mutated after they have been appended to a Store.
type Unit struct {
	Source   string
	Kind     Kind
	Location Location
	Document string
	ID       string
}

// idNamespace scopes UUIDv5 unit identifiers.
var idNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("urn:mdpo:unit"))

// StableID derives a deterministic identifier for a unit from the document
// name, its ordinal and its source text.
func StableID(document string, index int, source string) string {
	key := document + "\x00" + strconv.Itoa(index) + "\x00" + source
	return uuid.NewSHA1(idNamespace, []byte(key)).String()
}

// Store is an ordered, append-only sequence of units. A store belongs to a
// single extraction pass; it is not safe for concurrent mutation.
type Store struct {
	document string
	units    []Unit
	frozen   bool
}

// NewStore creates an empty store for the named document.
func NewStore(document string) *Store {
	return &Store{document: document}
}

// Document returns the name of the document the store was built from.
func (s *Store) Document() string { return s.document }

// Append adds a unit with the given source text. The index, document and ID
// are assigned by the store.
func (s *Store) Append(source string, kind Kind, line int) Unit {
	if s.frozen {
		panic("units: append to frozen store")
	}
	idx := len(s.units)
	u := Unit{
		Source:   source,
		Kind:     kind,
		Location: Location{Index: idx, Line: line},
		Document: s.document,
		ID:       StableID(s.document, idx, source),
	}
	s.units = append(s.units, u)
	return u
}

// Freeze ends the extraction pass. Later appends panic.
func (s *Store) Freeze() { s.frozen = true }

// Frozen reports whether Freeze has been called.
func (s *Store) Frozen() bool { return s.frozen }

// Len returns the number of units.
func (s *Store) Len() int { return len(s.units) }

// At returns the unit at position i.
func (s *Store) At(i int) Unit { return s.units[i] }

// Units returns a copy of the units in document order.
func (s *Store) Units() []Unit {
	out := make([]Unit, len(s.units))
	copy(out, s.units)
	return out
}

// Sources returns the source strings in document order.
func (s *Store) Sources() []string {
	out := make([]string, len(s.units))
	for i, u := range s.units {
		out[i] = u.Source
	}
	return out
}

// All iterates the units in document order.
func (s *Store) All() iter.Seq2[int, Unit] {
	return func(yield func(int, Unit) bool) {
		for i, u := range s.units {
			if !yield(i, u) {
				return
			}
		}
	}
}

// CountByKind tallies units per kind.
func (s *Store) CountByKind() map[Kind]int {
	counts := make(map[Kind]int)
	for _, u := range s.units {
		counts[u.Kind]++
	}
	return counts
}
