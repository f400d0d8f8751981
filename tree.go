package layenv

import (
	"slices"
	"strings"
)

// Tree is the nested form of a merged source: field name to either a raw
// string value or a nested Tree.
type Tree map[string]any

// Lookup returns the raw value at path.
func (t Tree) Lookup(path Path) (string, bool) {
	node := t
	for i, seg := range path {
		if i == len(path)-1 {
			v, ok := node[seg].(string)
			return v, ok
		}
		next, ok := node[seg].(Tree)
		if !ok {
			return "", false
		}
		node = next
	}
	return "", false
}

// insert places value at path, creating intermediate levels.
func (t Tree) insert(path Path, value string) {
	node := t
	for _, seg := range path[:len(path)-1] {
		next, ok := node[seg].(Tree)
		if !ok {
			next = Tree{}
			node[seg] = next
		}
		node = next
	}
	node[path[len(path)-1]] = value
}

// Tree rebuilds the nested form of merged. Every indexed key present in
// merged is placed at its path; absent keys are left out, since defaults and
// optionality are decided by validation.
//
// The second result lists, sorted, the keys of merged that carry the index
// prefix but match no leaf. Keys outside the prefix, or all keys when the
// index is unprefixed, are never considered.
func (ix *Index) Tree(merged map[string]string) (Tree, []string) {
	tree := Tree{}
	for _, e := range ix.entries {
		if v, ok := merged[e.Key]; ok {
			tree.insert(e.Path, v)
		}
	}

	if ix.prefix == "" {
		return tree, nil
	}
	var unknown []string
	for k := range merged {
		if !strings.HasPrefix(k, ix.prefix) {
			continue
		}
		if _, ok := ix.byKey[k]; !ok {
			unknown = append(unknown, k)
		}
	}
	slices.Sort(unknown)
	return tree, unknown
}
