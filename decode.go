package layenv

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"
)

// decode assigns the raw values of tree to dst, a settable value of the
// schema's struct type, and reports every leaf that could not be loaded.
// Absent leaves take their default, stay nil when optional, and fail with
// ErrMissingRequiredValue otherwise.
func (s *Schema) decode(tree Tree, dst reflect.Value) []*FieldError {
	var errs []*FieldError
	decodeFields(s.fields, tree, dst, nil, &errs)
	return errs
}

func decodeFields(fields []*Field, tree Tree, dst reflect.Value, parent Path, errs *[]*FieldError) {
	for _, f := range fields {
		fv := dst.Field(f.index)
		path := parent.Child(f.Name)

		if f.IsGroup() {
			sub, _ := tree[f.Name].(Tree)
			if fv.Kind() == reflect.Pointer {
				if fv.IsNil() {
					fv.Set(reflect.New(fv.Type().Elem()))
				}
				fv = fv.Elem()
			}
			decodeFields(f.Children, sub, fv, path, errs)
			continue
		}

		raw, ok := tree[f.Name].(string)
		if !ok {
			switch {
			case f.HasDefault:
				if f.Default == "" {
					continue
				}
				raw = f.Default
			case f.Optional:
				continue
			default:
				*errs = append(*errs, &FieldError{Path: path.String(), Err: ErrMissingRequiredValue})
				continue
			}
		}

		v, err := f.convert(raw)
		if err != nil {
			if f.Secret {
				// parser errors tend to quote their input
				err = fmt.Errorf("invalid %v value", f.Type)
			}
			*errs = append(*errs, &FieldError{Path: path.String(), Value: f.display(raw), Err: err})
			continue
		}
		fv.Set(v)
	}
}

// display returns raw as it may appear in errors and logs.
func (f *Field) display(raw string) string {
	if f.Secret {
		return mask(raw)
	}
	return raw
}

// newValidator returns the validator used when no WithValidator option is
// given.
func newValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

// check runs the validate tag rules of every leaf of a decoded config. Paths
// listed in skip already failed decoding and are not reported again.
func (s *Schema) check(v *validator.Validate, cfg reflect.Value, tree Tree, skip map[string]bool) ([]*FieldError, error) {
	var errs []*FieldError
	if err := checkFields(v, s.fields, cfg, nil, tree, skip, &errs); err != nil {
		return nil, err
	}
	return errs, nil
}

func checkFields(v *validator.Validate, fields []*Field, val reflect.Value, parent Path, tree Tree, skip map[string]bool, errs *[]*FieldError) error {
	for _, f := range fields {
		fv := val.Field(f.index)
		path := parent.Child(f.Name)

		if f.IsGroup() {
			if fv.Kind() == reflect.Pointer {
				if fv.IsNil() {
					continue
				}
				fv = fv.Elem()
			}
			if err := checkFields(v, f.Children, fv, path, tree, skip, errs); err != nil {
				return err
			}
			continue
		}
		if f.Rules == "" || skip[path.String()] {
			continue
		}
		if f.Optional && fv.Kind() == reflect.Pointer && fv.IsNil() {
			continue
		}

		err := v.Var(fv.Interface(), f.Rules)
		if err == nil {
			continue
		}
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("validating %s: %w", path, err)
		}

		raw, ok := tree.Lookup(path)
		switch {
		case ok:
		case f.HasDefault:
			raw = f.Default
		default:
			raw = fmt.Sprint(fv.Interface())
		}
		for _, fe := range verrs {
			*errs = append(*errs, &FieldError{
				Path:  path.String(),
				Value: f.display(raw),
				Err:   &ConstraintError{Rule: fe.Tag(), Param: fe.Param()},
			})
		}
	}
	return nil
}
