package layenv

import (
	"errors"
	"slices"
	"strings"
)

// KeyFor maps a path to its flat key: the normalized prefix followed by the
// upper-cased segments joined with "_". KeyFor(["api","google","key"], "GG")
// is "GG_API_GOOGLE_KEY".
//
// Distinct paths can map to the same key (api.google_key and api_google.key);
// NewIndex rejects such schemas.
func KeyFor(path Path, prefix string) string {
	return normalizePrefix(prefix) + strings.ToUpper(strings.Join(path, "_"))
}

// normalizePrefix appends "_" to a non-empty prefix that does not already
// end with one.
func normalizePrefix(prefix string) string {
	if prefix == "" || strings.HasSuffix(prefix, "_") {
		return prefix
	}
	return prefix + "_"
}

// Entry pairs a leaf path with its flat key.
type Entry struct {
	Path Path
	Key  string
}

// Index is the bidirectional path <-> key mapping for one schema and prefix.
// It is immutable once built and safe for concurrent use.
type Index struct {
	prefix  string
	entries []Entry
	byKey   map[string]int
	byPath  map[string]int
}

// NewIndex maps every path to its key and fails if the mapping is not
// injective. Each colliding key is reported as an *AmbiguousKeyError listing
// all of its paths; several collisions are joined, sorted by key.
func NewIndex(paths []Path, prefix string) (*Index, error) {
	ix := &Index{
		prefix:  normalizePrefix(prefix),
		entries: make([]Entry, 0, len(paths)),
		byKey:   make(map[string]int, len(paths)),
		byPath:  make(map[string]int, len(paths)),
	}

	groups := make(map[string][]string)
	for _, p := range paths {
		key := KeyFor(p, prefix)
		groups[key] = append(groups[key], p.String())
		if _, dup := ix.byKey[key]; dup {
			continue
		}
		ix.byKey[key] = len(ix.entries)
		ix.byPath[p.String()] = len(ix.entries)
		ix.entries = append(ix.entries, Entry{Path: slices.Clone(p), Key: key})
	}

	var collisions []error
	for _, e := range ix.entries {
		if dotted := groups[e.Key]; len(dotted) > 1 {
			collisions = append(collisions, &AmbiguousKeyError{Key: e.Key, Paths: dotted})
		}
	}
	if len(collisions) > 0 {
		slices.SortFunc(collisions, func(a, b error) int {
			return strings.Compare(a.(*AmbiguousKeyError).Key, b.(*AmbiguousKeyError).Key)
		})
		if len(collisions) == 1 {
			return nil, collisions[0]
		}
		return nil, errors.Join(collisions...)
	}
	return ix, nil
}

// Prefix returns the normalized prefix ("GG_"), or "" when unprefixed.
func (ix *Index) Prefix() string { return ix.prefix }

// Len returns the number of leaves.
func (ix *Index) Len() int { return len(ix.entries) }

// Entries returns a copy of the entries in schema order.
func (ix *Index) Entries() []Entry {
	return slices.Clone(ix.entries)
}

// Key returns the flat key of path.
func (ix *Index) Key(path Path) (string, bool) {
	i, ok := ix.byPath[path.String()]
	if !ok {
		return "", false
	}
	return ix.entries[i].Key, true
}

// Path returns the leaf path a flat key maps to.
func (ix *Index) Path(key string) (Path, bool) {
	i, ok := ix.byKey[key]
	if !ok {
		return nil, false
	}
	return slices.Clone(ix.entries[i].Path), true
}

// Keys returns every flat key in schema order.
func (ix *Index) Keys() []string {
	keys := make([]string, len(ix.entries))
	for i, e := range ix.entries {
		keys[i] = e.Key
	}
	return keys
}

// Table returns a key -> path lookup table.
func (ix *Index) Table() map[string]Path {
	table := make(map[string]Path, len(ix.entries))
	for _, e := range ix.entries {
		table[e.Key] = slices.Clone(e.Path)
	}
	return table
}

// position returns the schema order of a dotted path, or -1.
func (ix *Index) position(path string) int {
	if i, ok := ix.byPath[path]; ok {
		return i
	}
	return -1
}
