package layenv

import (
	"crypto/ecdsa"
	"crypto/rsa"
	"crypto/x509"
	"encoding"
	"encoding/pem"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"net"
	"net/mail"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/shopspring/decimal"
	"k8s.io/apimachinery/pkg/api/resource"
)

// ParserFunc turns a raw string value into a typed value.
type ParserFunc func(raw string) (any, error)

// ParserFactory returns a parser for t, or nil if it cannot handle t.
type ParserFactory func(t reflect.Type) ParserFunc

var (
	customParsers   = make(map[reflect.Type]ParserFunc)
	parserFactories []ParserFactory
)

// RegisterParser plugs in a parser for one exact type. Parsers are resolved
// when a Parser is built, so register in init() or main() before NewParser.
func RegisterParser(typ reflect.Type, fn ParserFunc) {
	customParsers[typ] = fn
}

// RegisterParserFactory plugs in a factory that can produce parsers for a
// whole category of types. Factories are consulted in registration order,
// after explicit parsers.
func RegisterParserFactory(factory ParserFactory) {
	parserFactories = append(parserFactories, factory)
}

// Register registers parse for T and a pointer-returning variant for *T.
func Register[T any](parse func(raw string) (T, error)) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	RegisterParser(t, func(raw string) (any, error) {
		return parse(raw)
	})
	RegisterParser(reflect.PointerTo(t), func(raw string) (any, error) {
		v, err := parse(raw)
		if err != nil {
			return nil, err
		}
		return &v, nil
	})
}

// lookupParser finds a registered parser or factory-made parser for t.
func lookupParser(t reflect.Type) ParserFunc {
	if fn, ok := customParsers[t]; ok {
		return fn
	}
	for _, factory := range parserFactories {
		if fn := factory(t); fn != nil {
			return fn
		}
	}
	return nil
}

// isBasicKind reports kinds handled by parseScalar.
func isBasicKind(k reflect.Kind) bool {
	switch k {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// scalarParser returns a strconv based parser for a basic kind.
func scalarParser(t reflect.Type) ParserFunc {
	kind := t.Kind()
	bits := 0
	switch kind {
	case reflect.String, reflect.Bool:
	default:
		bits = t.Bits()
	}
	return func(raw string) (any, error) {
		return parseScalar(raw, kind, bits)
	}
}

// parseScalar parses a string value into the appropriate type based on reflect.Kind
func parseScalar(raw string, kind reflect.Kind, bits int) (any, error) {
	switch kind {
	case reflect.String:
		return raw, nil
	case reflect.Bool:
		return strconv.ParseBool(raw)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.ParseInt(strings.TrimSpace(raw), 10, bits)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.ParseUint(strings.TrimSpace(raw), 10, bits)
	case reflect.Float32, reflect.Float64:
		return strconv.ParseFloat(strings.TrimSpace(raw), bits)
	default:
		return nil, fmt.Errorf("unsupported scalar kind %s", kind)
	}
}

var textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()

// textUnmarshalerFactory covers any type whose pointer implements
// encoding.TextUnmarshaler, in value or pointer form.
func textUnmarshalerFactory(t reflect.Type) ParserFunc {
	target := t
	if t.Kind() == reflect.Pointer {
		target = t.Elem()
	}
	if !reflect.PointerTo(target).Implements(textUnmarshalerType) {
		return nil
	}
	return func(raw string) (any, error) {
		v := reflect.New(target)
		if err := v.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(raw)); err != nil {
			return nil, fmt.Errorf("failed to unmarshal text: %w", err)
		}
		if t.Kind() == reflect.Pointer {
			return v.Interface(), nil
		}
		return v.Elem().Interface(), nil
	}
}

func parseURL(raw string) (url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return url.URL{}, fmt.Errorf("invalid URL %q: %w", raw, err)
	}
	return *u, nil
}

func parseTime(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	if unix, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.Unix(unix, 0), nil
	}
	return time.Time{}, fmt.Errorf("invalid time %q: must be RFC3339 format or Unix seconds", raw)
}

func parseLevel(raw string) (slog.Level, error) {
	switch strings.ToLower(raw) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	if level, err := strconv.Atoi(raw); err == nil {
		return slog.Level(level), nil
	}
	return 0, fmt.Errorf("invalid slog level %q: must be debug|info|warn|error or integer", raw)
}

func parseBigInt(raw string) (big.Int, error) {
	bi := new(big.Int)
	if _, ok := bi.SetString(raw, 10); !ok {
		return big.Int{}, fmt.Errorf("invalid big.Int %q: must be base-10 integer", raw)
	}
	return *bi, nil
}

func parseIP(raw string) (net.IP, error) {
	ip := net.ParseIP(raw)
	if ip == nil {
		return nil, fmt.Errorf("invalid IP address %q", raw)
	}
	return ip, nil
}

func parseMailAddress(raw string) (mail.Address, error) {
	addr, err := mail.ParseAddress(raw)
	if err != nil {
		return mail.Address{}, fmt.Errorf("invalid email address %q: %w", raw, err)
	}
	return *addr, nil
}

// pemBlock decodes the first PEM block of raw.
func pemBlock(raw, what string) (*pem.Block, error) {
	block, _ := pem.Decode([]byte(raw))
	if block == nil {
		return nil, fmt.Errorf("invalid PEM format for %s private key", what)
	}
	return block, nil
}

func parseRSAKey(raw string) (*rsa.PrivateKey, error) {
	block, err := pemBlock(raw, "RSA")
	if err != nil {
		return nil, err
	}
	switch block.Type {
	case "RSA PRIVATE KEY":
		key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("failed to parse RSA private key: %w", err)
		}
		return key, nil
	case "PRIVATE KEY":
		key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("failed to parse PKCS#8 private key: %w", err)
		}
		if rsaKey, ok := key.(*rsa.PrivateKey); ok {
			return rsaKey, nil
		}
		return nil, errors.New("PKCS#8 key is not an RSA private key")
	default:
		return nil, fmt.Errorf("unsupported PEM block type for RSA private key: %s", block.Type)
	}
}

func parseECDSAKey(raw string) (*ecdsa.PrivateKey, error) {
	block, err := pemBlock(raw, "ECDSA")
	if err != nil {
		return nil, err
	}
	switch block.Type {
	case "EC PRIVATE KEY":
		key, err := x509.ParseECPrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("failed to parse EC private key: %w", err)
		}
		return key, nil
	case "PRIVATE KEY":
		key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("failed to parse PKCS#8 private key: %w", err)
		}
		if ecKey, ok := key.(*ecdsa.PrivateKey); ok {
			return ecKey, nil
		}
		return nil, errors.New("PKCS#8 key is not an ECDSA private key")
	default:
		return nil, fmt.Errorf("unsupported PEM block type for ECDSA private key: %s", block.Type)
	}
}

func init() {
	RegisterParserFactory(textUnmarshalerFactory)

	Register(parseURL)
	Register(parseTime)
	Register(parseLevel)
	Register(parseBigInt)
	Register(parseIP)
	Register(parseMailAddress)
	Register(func(raw string) (time.Duration, error) {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q: %w", raw, err)
		}
		return d, nil
	})
	Register(func(raw string) (decimal.Decimal, error) {
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return decimal.Decimal{}, fmt.Errorf("invalid decimal %q: %w", raw, err)
		}
		return d, nil
	})
	Register(func(raw string) (resource.Quantity, error) {
		q, err := resource.ParseQuantity(raw)
		if err != nil {
			return resource.Quantity{}, fmt.Errorf("invalid k8s quantity %q: %w", raw, err)
		}
		return q, nil
	})

	// The value forms copy the parsed key; the pointer forms are registered
	// last so *rsa.PrivateKey and *ecdsa.PrivateKey keep the parsed pointer.
	Register(func(raw string) (rsa.PrivateKey, error) {
		key, err := parseRSAKey(raw)
		if err != nil {
			return rsa.PrivateKey{}, err
		}
		return *key, nil
	})
	Register(func(raw string) (ecdsa.PrivateKey, error) {
		key, err := parseECDSAKey(raw)
		if err != nil {
			return ecdsa.PrivateKey{}, err
		}
		return *key, nil
	})
	Register(parseRSAKey)
	Register(parseECDSAKey)

	Register(func(raw string) (*vm.Program, error) {
		program, err := expr.Compile(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to compile expression %q: %w", raw, err)
		}
		return program, nil
	})
}
