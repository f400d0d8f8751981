package layenv

import (
	"encoding/json"
	"fmt"
	"net/url"
	"reflect"
	"strings"
)

// mask returns a masked version of the secret string.
// It keeps the first 3 characters (runes) visible and replaces the rest with asterisks.
// For strings with 3 or fewer characters, all characters are replaced with asterisks.
//
// Examples:
//   - mask("") returns ""
//   - mask("a") returns "*"
//   - mask("abc") returns "***"
//   - mask("secret123") returns "sec******"
func mask(secret string) string {
	const keep = 3
	runes := []rune(secret)
	n := len(runes)
	if n <= keep {
		return strings.Repeat("*", n)
	}
	return string(runes[:keep]) + strings.Repeat("*", n-keep)
}

// maskURLPassword renders a URL with its password replaced by "xxxxx".
func maskURLPassword(u *url.URL) string {
	return u.Redacted()
}

// PrettyString returns cfg as indented JSON keyed by path segments, with
// secret fields masked and URL passwords hidden, for safe logging.
//
//	{
//	  "api": {"google": {"key": "ak.*******"}},
//	  "server": {"host": "0.0.0.0", "port": 9000}
//	}
func (p *Parser[T]) PrettyString(cfg T) string {
	out := safeMap(p.schema.fields, reflect.ValueOf(cfg))
	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Sprintf("error pretty-printing config: %v", err)
	}
	return string(b)
}

// safeMap walks val along the schema fields. encoding/json sorts map keys, so
// the output is deterministic.
func safeMap(fields []*Field, val reflect.Value) map[string]any {
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		fv := val.Field(f.index)
		if f.IsGroup() {
			if fv.Kind() == reflect.Pointer {
				if fv.IsNil() {
					out[f.Name] = nil
					continue
				}
				fv = fv.Elem()
			}
			out[f.Name] = safeMap(f.Children, fv)
			continue
		}
		out[f.Name] = safeValue(f, fv)
	}
	return out
}

func safeValue(f *Field, fv reflect.Value) any {
	if fv.Kind() == reflect.Pointer && fv.IsNil() {
		return nil
	}
	if f.elem {
		fv = fv.Elem()
	}
	v := fv.Interface()
	switch {
	case f.Secret:
		if s, ok := v.(string); ok {
			return mask(s)
		}
		return "***"
	case fv.Type() == reflect.TypeOf(url.URL{}):
		u := v.(url.URL)
		return maskURLPassword(&u)
	case fv.Type() == reflect.TypeOf(&url.URL{}):
		return maskURLPassword(v.(*url.URL))
	}
	if s, ok := stringer(fv); ok {
		return s.String()
	}
	if isBasicKind(fv.Kind()) {
		return v
	}
	return fmt.Sprintf("<%v>", fv.Type())
}

var stringerType = reflect.TypeOf((*fmt.Stringer)(nil)).Elem()

// stringer returns fv as a fmt.Stringer, copying it to an addressable value
// for types with pointer-receiver String methods (big.Int, resource.Quantity).
func stringer(fv reflect.Value) (fmt.Stringer, bool) {
	if fv.Type().Implements(stringerType) {
		return fv.Interface().(fmt.Stringer), true
	}
	if fv.Kind() != reflect.Pointer && reflect.PointerTo(fv.Type()).Implements(stringerType) {
		ptr := reflect.New(fv.Type())
		ptr.Elem().Set(fv)
		return ptr.Interface().(fmt.Stringer), true
	}
	return nil, false
}
