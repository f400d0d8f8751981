package layenv

import (
	"slices"
	"strings"
)

// Path identifies one leaf configuration field by the names of the fields
// leading to it from the root, e.g. ["api", "google", "key"].
type Path []string

// ParsePath splits a dotted path string ("api.google.key") into segments.
func ParsePath(s string) Path {
	if s == "" {
		return nil
	}
	return Path(strings.Split(s, "."))
}

// String returns the dotted form of the path.
func (p Path) String() string {
	return strings.Join(p, ".")
}

// Equal reports whether both paths have the same segments.
func (p Path) Equal(other Path) bool {
	return slices.Equal(p, other)
}

// Child returns a new path with name appended. The receiver is never modified.
func (p Path) Child(name string) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, name)
}
