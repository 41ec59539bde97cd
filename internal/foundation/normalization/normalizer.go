// Package normalization maps loosely written configuration and flag values
// onto closed sets of typed constants.
package normalization

import (
	"fmt"
	"sort"
	"strings"
)

// Normalizer converts strings to one of a fixed set of values. Lookups are
// case-insensitive and ignore surrounding whitespace.
type Normalizer[T comparable] struct {
	values       map[string]T
	defaultValue T
	keys         []string
}

// NewNormalizer builds a normalizer over values; defaultValue is returned by
// Normalize for empty or unknown input.
func NewNormalizer[T comparable](values map[string]T, defaultValue T) *Normalizer[T] {
	n := &Normalizer[T]{
		values:       make(map[string]T, len(values)),
		defaultValue: defaultValue,
		keys:         make([]string, 0, len(values)),
	}
	for k, v := range values {
		key := clean(k)
		n.values[key] = v
		n.keys = append(n.keys, key)
	}
	sort.Strings(n.keys)
	return n
}

// Normalize returns the value for raw, or the default.
func (n *Normalizer[T]) Normalize(raw string) T {
	if v, ok := n.values[clean(raw)]; ok {
		return v
	}
	return n.defaultValue
}

// Lookup returns the value for raw and whether raw was recognized.
func (n *Normalizer[T]) Lookup(raw string) (T, bool) {
	v, ok := n.values[clean(raw)]
	return v, ok
}

// NormalizeWithError is Lookup with a descriptive error listing the valid keys.
func (n *Normalizer[T]) NormalizeWithError(raw string) (T, error) {
	if v, ok := n.Lookup(raw); ok {
		return v, nil
	}
	var zero T
	return zero, fmt.Errorf("invalid value %q, valid options: %s", raw, strings.Join(n.keys, ", "))
}

// Result is the outcome of normalizing a field, with a warning when the
// written value was rewritten or replaced by the default.
type Result[T comparable] struct {
	Value   T
	Warning string
}

// Field normalizes the named field. Empty input yields the default silently.
func (n *Normalizer[T]) Field(name, raw string) Result[T] {
	if strings.TrimSpace(raw) == "" {
		return Result[T]{Value: n.defaultValue}
	}
	v, ok := n.Lookup(raw)
	switch {
	case !ok:
		return Result[T]{
			Value:   n.defaultValue,
			Warning: fmt.Sprintf("unknown %s '%s', defaulting to %v", name, raw, n.defaultValue),
		}
	case clean(raw) != raw:
		return Result[T]{Value: v, Warning: fmt.Sprintf("normalized %s from '%s' to '%v'", name, raw, v)}
	default:
		return Result[T]{Value: v}
	}
}

// ValidKeys returns the accepted keys, sorted.
func (n *Normalizer[T]) ValidKeys() []string {
	return append([]string(nil), n.keys...)
}

func clean(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
