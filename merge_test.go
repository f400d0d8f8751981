package layenv

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMerge(t *testing.T) {
	cases := []struct {
		name    string
		sources []Source
		want    map[string]string
	}{
		{
			name:    "later source wins",
			sources: []Source{Map{"A": "1"}, Map{"A": "2"}},
			want:    map[string]string{"A": "2"},
		},
		{
			name:    "disjoint keys are kept",
			sources: []Source{Map{"A": "1"}, Map{"B": "2"}},
			want:    map[string]string{"A": "1", "B": "2"},
		},
		{
			name:    "empty string overrides",
			sources: []Source{Map{"A": "1"}, Map{"A": ""}},
			want:    map[string]string{"A": ""},
		},
		{
			name:    "nil and empty sources",
			sources: []Source{nil, Map{"A": "1"}, Map{}, (*VarDict)(nil), Map(nil)},
			want:    map[string]string{"A": "1"},
		},
		{
			name:    "no sources",
			sources: nil,
			want:    map[string]string{},
		},
		{
			name: "three layers",
			sources: []Source{
				Map{"HOST": "127.0.0.1", "PORT": "9000", "KEY": "fake"},
				Map{"KEY": "real"},
				Map{"HOST": "0.0.0.0"},
			},
			want: map[string]string{"HOST": "0.0.0.0", "PORT": "9000", "KEY": "real"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Merge(tc.sources...))
		})
	}
}

func TestMergeAbsentValueDoesNotOverride(t *testing.T) {
	shell := &VarDict{}
	shell.Unset("A")
	shell.Set("B", "shell")

	merged := Merge(Map{"A": "file", "B": "file"}, shell)
	assert.Equal(t, map[string]string{"A": "file", "B": "shell"}, merged)

	only := &VarDict{}
	only.Unset("C")
	assert.Empty(t, Merge(only))
}

func TestMergeGrouping(t *testing.T) {
	a, b, c := Map{"K": "a", "X": "1"}, Map{"K": "b"}, Map{"K": "c", "Y": "2"}

	left := Merge(NewVarDict(Merge(a, b)), c)
	right := Merge(a, NewVarDict(Merge(b, c)))
	flat := Merge(a, b, c)

	assert.Equal(t, flat, left)
	assert.Equal(t, flat, right)
}

func TestVarDict(t *testing.T) {
	d := &VarDict{}
	d.Set("B", "1")
	d.Set("A", "2")
	d.Unset("C")
	d.Set("B", "3")

	var keys []string
	var values []*string
	for k, v := range d.Vars() {
		keys = append(keys, k)
		values = append(values, v)
	}
	assert.Equal(t, []string{"B", "A", "C"}, keys)
	assert.Equal(t, "3", *values[0])
	assert.Equal(t, "2", *values[1])
	assert.Nil(t, values[2])
	assert.Equal(t, 3, d.Len())

	v, ok := d.Lookup("B")
	assert.True(t, ok)
	assert.Equal(t, "3", v)
	_, ok = d.Lookup("C")
	assert.False(t, ok)
	_, ok = d.Lookup("D")
	assert.False(t, ok)

	var nilDict *VarDict
	assert.Equal(t, 0, nilDict.Len())
	_, ok = nilDict.Lookup("A")
	assert.False(t, ok)
}

func TestMapVarsSorted(t *testing.T) {
	var keys []string
	for k := range (Map{"B": "2", "C": "3", "A": "1"}).Vars() {
		keys = append(keys, k)
	}
	assert.Equal(t, []string{"A", "B", "C"}, keys)

	d := NewVarDict(map[string]string{"Z": "26", "M": "13"})
	keys = keys[:0]
	for k := range d.Vars() {
		keys = append(keys, k)
	}
	assert.Equal(t, []string{"M", "Z"}, keys)
}
