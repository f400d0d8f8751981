package layenv

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// ReadDotenv reads a dotenv file into a Map. It does not touch the process
// environment. A missing file is reported with an error wrapping
// fs.ErrNotExist so callers can decide to skip the layer.
func ReadDotenv(path string) (Map, error) {
	vars, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("reading dotenv %q: %w", path, err)
	}
	return Map(vars), nil
}

// ParseDotenv parses dotenv formatted content.
func ParseDotenv(r io.Reader) (Map, error) {
	vars, err := godotenv.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing dotenv: %w", err)
	}
	return Map(vars), nil
}

// Environ returns the whole process environment, in os.Environ order. It is
// not filtered: keys outside the parser's prefix are ignored during Parse.
func Environ() *VarDict {
	d := &VarDict{}
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		d.Set(k, v)
	}
	return d
}

// Load parses the dotenv files at paths, in order, followed by the process
// environment, so the shell overrides every file and later files override
// earlier ones. A missing file is logged as a warning and skipped; any other
// read error is returned.
//
//	cfg, err := parser.Load(".env", ".env.local")
func (p *Parser[T]) Load(paths ...string) (T, error) {
	sources, err := p.dotenvSources(paths)
	if err != nil {
		var zero T
		return zero, err
	}
	return p.Parse(append(sources, Environ())...)
}

func (p *Parser[T]) dotenvSources(paths []string) ([]Source, error) {
	sources := make([]Source, 0, len(paths)+1)
	for _, path := range paths {
		vars, err := ReadDotenv(path)
		if errors.Is(err, fs.ErrNotExist) {
			p.logger.Warn("dotenv file not found, skipping", slog.String("path", path))
			continue
		}
		if err != nil {
			return nil, err
		}
		p.logger.Debug("dotenv file read", slog.String("path", path), slog.Int("vars", len(vars)))
		sources = append(sources, vars)
	}
	return sources, nil
}

// Load builds a parser for T and loads the dotenv files at paths followed by
// the process environment.
//
//	cfg, err := layenv.Load[Config]("GG", ".env", ".env.local")
func Load[T any](prefix string, paths ...string) (T, error) {
	p, err := NewParser[T](prefix)
	if err != nil {
		var zero T
		return zero, err
	}
	return p.Load(paths...)
}
