package layenv

import (
	"iter"
	"maps"
	"slices"
)

// Source is one layer of flat configuration: an ordered sequence of key/value
// pairs. A nil value means the key is mentioned but has no value; it does not
// override lower layers. An empty string is a value.
type Source interface {
	Vars() iter.Seq2[string, *string]
}

// Map is a Source over a plain map. Keys are yielded in sorted order.
type Map map[string]string

// Vars implements Source.
func (m Map) Vars() iter.Seq2[string, *string] {
	return func(yield func(string, *string) bool) {
		for _, k := range slices.Sorted(maps.Keys(m)) {
			v := m[k]
			if !yield(k, &v) {
				return
			}
		}
	}
}

// VarDict is an ordered Source. Setting a key again keeps its original
// position and replaces the value. The zero value is ready to use.
type VarDict struct {
	keys   []string
	values map[string]*string
}

// NewVarDict returns a VarDict holding m, in sorted key order.
func NewVarDict(m map[string]string) *VarDict {
	d := &VarDict{}
	for _, k := range slices.Sorted(maps.Keys(m)) {
		d.Set(k, m[k])
	}
	return d
}

// Set defines key with value.
func (d *VarDict) Set(key, value string) {
	d.put(key, &value)
}

// Unset records key without a value.
func (d *VarDict) Unset(key string) {
	d.put(key, nil)
}

func (d *VarDict) put(key string, value *string) {
	if d.values == nil {
		d.values = make(map[string]*string)
	}
	if _, ok := d.values[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.values[key] = value
}

// Lookup returns the value of key and whether the key is defined with a value.
func (d *VarDict) Lookup(key string) (string, bool) {
	if d == nil {
		return "", false
	}
	v := d.values[key]
	if v == nil {
		return "", false
	}
	return *v, true
}

// Len returns the number of keys, with or without values.
func (d *VarDict) Len() int {
	if d == nil {
		return 0
	}
	return len(d.keys)
}

// Vars implements Source.
func (d *VarDict) Vars() iter.Seq2[string, *string] {
	return func(yield func(string, *string) bool) {
		if d == nil {
			return
		}
		for _, k := range d.keys {
			if !yield(k, d.values[k]) {
				return
			}
		}
	}
}

// Merge folds sources left to right: for every key the value from the last
// source defining it wins. Precedence is purely positional. Nil sources count
// as empty. Merge never fails and performs no I/O.
func Merge(sources ...Source) map[string]string {
	merged := make(map[string]string)
	for _, src := range sources {
		if src == nil {
			continue
		}
		for k, v := range src.Vars() {
			if v == nil {
				continue
			}
			merged[k] = *v
		}
	}
	return merged
}
