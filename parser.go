package layenv

import (
	"log/slog"
	"reflect"
	"slices"

	"github.com/go-playground/validator/v10"
)

// Option configures a Parser.
type Option func(*options)

type options struct {
	logger   *slog.Logger
	strict   bool
	validate *validator.Validate
}

// WithLogger sets the logger used for diagnostics. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithStrict rejects prefixed keys that match no field with an
// *UnknownKeyError instead of ignoring them. It has no effect without a prefix.
func WithStrict() Option {
	return func(o *options) {
		o.strict = true
	}
}

// WithValidator uses v for validate tag rules, e.g. one with custom
// validations registered. Each leaf is checked on its own with v.Var, so
// cross-field rules such as eqfield are not available.
func WithValidator(v *validator.Validate) Option {
	return func(o *options) {
		o.validate = v
	}
}

// Parser loads configuration of type T from layered flat sources. Build it
// once with NewParser; it is immutable and safe for concurrent Parse calls.
type Parser[T any] struct {
	schema   *Schema
	index    *Index
	logger   *slog.Logger
	strict   bool
	validate *validator.Validate
}

// NewParser builds the schema of T and its key index for prefix. It fails
// with *SchemaError when T has a shape the flat key space cannot express and
// with *AmbiguousKeyError when two fields resolve to one key; in both cases
// no parser is returned.
//
// Example:
//
//	type Config struct {
//		API struct {
//			Google struct {
//				Key string `secret:"true"`
//			}
//		} `env:"api"`
//		Server struct {
//			Host string `default:"127.0.0.1"`
//			Port int    `default:"9000" validate:"min=1,max=65535"`
//		}
//	}
//
//	parser, err := layenv.NewParser[Config]("GG")
//	// keys: GG_API_GOOGLE_KEY, GG_SERVER_HOST, GG_SERVER_PORT
func NewParser[T any](prefix string, opts ...Option) (*Parser[T], error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.validate == nil {
		o.validate = newValidator()
	}

	schema, err := SchemaFor[T]()
	if err != nil {
		return nil, err
	}
	index, err := NewIndex(schema.Paths(), prefix)
	if err != nil {
		return nil, err
	}

	return &Parser[T]{
		schema:   schema,
		index:    index,
		logger:   o.logger,
		strict:   o.strict,
		validate: o.validate,
	}, nil
}

// MustNewParser is like NewParser but panics on error. Intended for package
// level variables holding a parser for a static config type.
func MustNewParser[T any](prefix string, opts ...Option) *Parser[T] {
	p, err := NewParser[T](prefix, opts...)
	if err != nil {
		panic(err)
	}
	return p
}

// Parse merges sources (later ones win), rebuilds the nested tree and decodes
// and validates it into a new T. Every failing field is reported at once in a
// single *ValidationError. Parse keeps no state between calls.
func (p *Parser[T]) Parse(sources ...Source) (T, error) {
	var zero T

	merged := Merge(sources...)
	tree, unknown := p.index.Tree(merged)
	if len(unknown) > 0 {
		if p.strict {
			return zero, &UnknownKeyError{Keys: unknown, Expected: p.index.Keys()}
		}
		p.logger.Debug("ignoring unknown prefixed keys",
			slog.String("prefix", p.index.Prefix()),
			slog.Any("keys", unknown))
	}

	cfg := new(T)
	errs := p.schema.decode(tree, reflect.ValueOf(cfg).Elem())

	failed := make(map[string]bool, len(errs))
	for _, fe := range errs {
		failed[fe.Path] = true
	}
	checked, err := p.schema.check(p.validate, reflect.ValueOf(cfg).Elem(), tree, failed)
	if err != nil {
		return zero, err
	}
	errs = append(errs, checked...)

	if len(errs) > 0 {
		for _, fe := range errs {
			fe.Key, _ = p.index.Key(ParsePath(fe.Path))
		}
		slices.SortStableFunc(errs, func(a, b *FieldError) int {
			return p.index.position(a.Path) - p.index.position(b.Path)
		})
		return zero, &ValidationError{Errors: errs}
	}

	p.logger.Debug("config parsed",
		slog.Int("sources", len(sources)),
		slog.Int("keys", len(merged)),
		slog.Int("fields", p.index.Len()))
	return *cfg, nil
}

// Tree returns the nested form of the merged sources, before decoding, and
// the prefixed keys that match no field.
func (p *Parser[T]) Tree(sources ...Source) (Tree, []string) {
	return p.index.Tree(Merge(sources...))
}

// Prefix returns the normalized key prefix.
func (p *Parser[T]) Prefix() string { return p.index.Prefix() }

// Paths returns every leaf path in schema order.
func (p *Parser[T]) Paths() []Path { return p.schema.Paths() }

// Table returns the key -> path lookup table, e.g.
// {"MYAPP_DATABASE_HOST": ["database", "host"]}.
func (p *Parser[T]) Table() map[string]Path { return p.index.Table() }

// Index returns the key index.
func (p *Parser[T]) Index() *Index { return p.index }

// Schema returns the field tree of T.
func (p *Parser[T]) Schema() *Schema { return p.schema }

// Parse builds a parser for T and parses sources once. Prefer keeping a
// Parser when loading more than once.
func Parse[T any](prefix string, sources ...Source) (T, error) {
	p, err := NewParser[T](prefix)
	if err != nil {
		var zero T
		return zero, err
	}
	return p.Parse(sources...)
}
