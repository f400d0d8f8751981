package layenv

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// ErrMissingRequiredValue is wrapped by a FieldError when a leaf has no value
// in any source, no default and is not optional.
var ErrMissingRequiredValue = errors.New("missing required value")

// SchemaError reports a struct shape that cannot be mapped to flat keys.
type SchemaError struct {
	Path   string       // dotted path of the offending field, empty for the root
	Type   reflect.Type // offending type
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("schema %v: %s", e.Type, e.Reason)
	}
	return fmt.Sprintf("schema field %s (%v): %s", e.Path, e.Type, e.Reason)
}

// AmbiguousKeyError reports two or more leaf paths resolving to the same key.
// Rename one of the fields (or alias it with an env tag) to resolve it.
type AmbiguousKeyError struct {
	Key   string
	Paths []string
}

func (e *AmbiguousKeyError) Error() string {
	quoted := make([]string, len(e.Paths))
	for i, p := range e.Paths {
		quoted[i] = "`" + p + "`"
	}
	return fmt.Sprintf("ambiguous key %s: paths %s all resolve to it", e.Key, strings.Join(quoted, ", "))
}

// UnknownKeyError is returned in strict mode when sources define prefixed keys
// that match no schema field.
type UnknownKeyError struct {
	Keys     []string
	Expected []string
}

func (e *UnknownKeyError) Error() string {
	return fmt.Sprintf("unknown keys %s; expected one of %s",
		strings.Join(e.Keys, ", "), strings.Join(e.Expected, ", "))
}

// ConstraintError is a failed validate tag rule, e.g. Rule "min" with Param "1".
type ConstraintError struct {
	Rule  string
	Param string
}

func (e *ConstraintError) Error() string {
	if e.Param == "" {
		return fmt.Sprintf("must satisfy %q", e.Rule)
	}
	return fmt.Sprintf("must satisfy %q", e.Rule+"="+e.Param)
}

// FieldError describes why one leaf failed to load.
type FieldError struct {
	Path  string // dotted schema path
	Key   string // flat key the value is read from
	Value string // offending raw value, masked for secrets
	Err   error
}

func (e *FieldError) Error() string {
	if errors.Is(e.Err, ErrMissingRequiredValue) {
		return fmt.Sprintf("%s (%s): %v", e.Path, e.Key, e.Err)
	}
	return fmt.Sprintf("%s (%s=%q): %v", e.Path, e.Key, e.Value, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// ValidationError aggregates every failing field of one Parse call.
type ValidationError struct {
	Errors []*FieldError
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	if len(e.Errors) == 1 {
		b.WriteString("config validation failed: 1 error")
	} else {
		fmt.Fprintf(&b, "config validation failed: %d errors", len(e.Errors))
	}
	for _, fe := range e.Errors {
		b.WriteString("\n  - ")
		b.WriteString(fe.Error())
	}
	return b.String()
}

func (e *ValidationError) Unwrap() []error {
	errs := make([]error, len(e.Errors))
	for i, fe := range e.Errors {
		errs[i] = fe
	}
	return errs
}

// Field returns the error recorded for the dotted path, if any.
func (e *ValidationError) Field(path string) (*FieldError, bool) {
	for _, fe := range e.Errors {
		if fe.Path == path {
			return fe, true
		}
	}
	return nil, false
}
