package layenv

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/iancoleman/strcase"
)

// Field is one node of a Schema: either a group (a nested struct) holding
// Children, or a leaf read from a single flat key.
type Field struct {
	Name       string       // path segment
	GoName     string       // struct field name
	Type       reflect.Type // declared Go type
	Default    string       // default tag value
	HasDefault bool         // default tag present, even if empty
	Optional   bool         // pointer leaf, left nil when absent
	Secret     bool         // masked in errors and output
	Rules      string       // validate tag
	Children   []*Field     // nil for leaves

	index int        // struct field index within the parent
	parse ParserFunc // leaf parser, resolved once
	elem  bool       // parse produces *Type's element, wrapped on assignment
}

// IsGroup reports whether the field is a nested struct.
func (f *Field) IsGroup() bool { return f.Children != nil }

// Schema is the static field tree of a configuration struct type. It is
// built once by reflection and treated as read-only data afterwards.
type Schema struct {
	typ    reflect.Type
	fields []*Field
	leaves []leaf
	byPath map[string]*Field
}

type leaf struct {
	path  Path
	field *Field
}

// SchemaFor builds the schema of struct type T.
func SchemaFor[T any]() (*Schema, error) {
	return NewSchema(reflect.TypeOf((*T)(nil)).Elem())
}

// NewSchema builds the schema of struct type t. It fails with *SchemaError for
// shapes the flat key space cannot express: list-valued, map, interface or
// recursive fields, or default tags that do not parse.
func NewSchema(t reflect.Type) (*Schema, error) {
	if t == nil || t.Kind() != reflect.Struct {
		return nil, &SchemaError{Type: t, Reason: "configuration type must be a struct"}
	}
	s := &Schema{typ: t, byPath: make(map[string]*Field)}
	fields, err := s.walk(t, nil, map[reflect.Type]bool{t: true})
	if err != nil {
		return nil, err
	}
	if fields == nil {
		fields = []*Field{}
	}
	s.fields = fields
	return s, nil
}

// Type returns the struct type the schema was built from.
func (s *Schema) Type() reflect.Type { return s.typ }

// Fields returns the top-level fields.
func (s *Schema) Fields() []*Field { return s.fields }

// Paths returns every leaf path in declaration order. Groups contribute only
// their leaves.
func (s *Schema) Paths() []Path {
	paths := make([]Path, len(s.leaves))
	for i, l := range s.leaves {
		paths[i] = l.path
	}
	return paths
}

// Field returns the field at the dotted path, leaf or group.
func (s *Schema) Field(path string) (*Field, bool) {
	f, ok := s.byPath[path]
	return f, ok
}

// walk descends into struct type t. visiting holds the struct types on the
// current descent so recursive types are rejected instead of looping.
func (s *Schema) walk(t reflect.Type, parent Path, visiting map[reflect.Type]bool) ([]*Field, error) {
	var fields []*Field
	seen := make(map[string]bool)
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		name := segmentName(sf)
		if name == "" {
			continue
		}
		path := parent.Child(name)
		if strings.Contains(name, ".") {
			return nil, &SchemaError{Path: path.String(), Type: sf.Type, Reason: "field name must not contain '.'"}
		}
		if seen[name] {
			return nil, &SchemaError{Path: path.String(), Type: sf.Type, Reason: "duplicate field name"}
		}
		seen[name] = true

		f := &Field{
			Name:   name,
			GoName: sf.Name,
			Type:   sf.Type,
			Secret: sf.Tag.Get("secret") == "true",
			Rules:  sf.Tag.Get("validate"),
			index:  i,
		}
		f.Default, f.HasDefault = sf.Tag.Lookup("default")

		if group := groupType(sf.Type); group != nil {
			if f.HasDefault {
				return nil, &SchemaError{Path: path.String(), Type: sf.Type, Reason: "default tag on a nested struct"}
			}
			if visiting[group] {
				return nil, &SchemaError{Path: path.String(), Type: sf.Type, Reason: "recursive struct type"}
			}
			visiting[group] = true
			children, err := s.walk(group, path, visiting)
			delete(visiting, group)
			if err != nil {
				return nil, err
			}
			if children == nil {
				children = []*Field{}
			}
			f.Children = children
		} else {
			if err := resolveLeaf(f, path); err != nil {
				return nil, err
			}
			s.leaves = append(s.leaves, leaf{path: path, field: f})
		}
		s.byPath[path.String()] = f
		fields = append(fields, f)
	}
	return fields, nil
}

// segmentName returns the path segment for a struct field: the env tag when
// set, otherwise the snake-cased field name with digits kept on the word
// before them. "-" skips the field.
func segmentName(sf reflect.StructField) string {
	name := sf.Tag.Get("env")
	switch name {
	case "-":
		return ""
	case "":
		return attachDigits(strcase.ToSnake(sf.Name))
	}
	return name
}

// attachDigits drops the "_" strcase puts between a letter and a digit, so
// Port2 is port2 rather than port_2.
func attachDigits(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c == '_' && i > 0 && i+1 < len(name) && isLetter(name[i-1]) && isDigit(name[i+1]) {
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

func isLetter(c byte) bool { return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' }

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// groupType returns the struct type to descend into when t is a struct or a
// pointer to struct without a registered parser, and nil otherwise.
func groupType(t reflect.Type) reflect.Type {
	if lookupParser(t) != nil {
		return nil
	}
	switch {
	case t.Kind() == reflect.Struct:
		return t
	case t.Kind() == reflect.Pointer && t.Elem().Kind() == reflect.Struct && lookupParser(t.Elem()) == nil:
		return t.Elem()
	}
	return nil
}

// resolveLeaf picks the parser for a leaf field and checks its default.
func resolveLeaf(f *Field, path Path) error {
	t := f.Type
	switch {
	case lookupParser(t) != nil:
		f.parse = lookupParser(t)
		f.Optional = t.Kind() == reflect.Pointer
	case isBasicKind(t.Kind()):
		f.parse = scalarParser(t)
	case t.Kind() == reflect.Pointer && lookupParser(t.Elem()) != nil:
		f.parse = lookupParser(t.Elem())
		f.elem, f.Optional = true, true
	case t.Kind() == reflect.Pointer && isBasicKind(t.Elem().Kind()):
		f.parse = scalarParser(t.Elem())
		f.elem, f.Optional = true, true
	default:
		return &SchemaError{Path: path.String(), Type: t, Reason: unsupportedReason(t)}
	}

	if f.HasDefault && f.Default != "" {
		if _, err := f.convert(f.Default); err != nil {
			return &SchemaError{Path: path.String(), Type: t, Reason: fmt.Sprintf("invalid default %q: %v", f.Default, err)}
		}
	}
	return nil
}

func unsupportedReason(t reflect.Type) string {
	switch t.Kind() {
	case reflect.Slice, reflect.Array:
		return "list-valued fields are not supported"
	case reflect.Map:
		return "dynamically keyed fields are not supported"
	case reflect.Interface:
		return "polymorphic fields are not supported"
	}
	return fmt.Sprintf("unsupported field kind %s", t.Kind())
}

// convert parses raw into a value assignable to the field.
func (f *Field) convert(raw string) (reflect.Value, error) {
	parsed, err := f.parse(raw)
	if err != nil {
		return reflect.Value{}, err
	}
	target := f.Type
	if f.elem {
		target = f.Type.Elem()
	}
	v := reflect.ValueOf(parsed)
	if !v.IsValid() {
		return reflect.Value{}, fmt.Errorf("parser for %v returned no value", target)
	}
	if v.Type() != target {
		if !v.Type().ConvertibleTo(target) {
			return reflect.Value{}, fmt.Errorf("parser for %v returned %v", target, v.Type())
		}
		v = v.Convert(target)
	}
	if f.elem {
		ptr := reflect.New(target)
		ptr.Elem().Set(v)
		return ptr, nil
	}
	return v, nil
}
