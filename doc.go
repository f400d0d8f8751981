// Package layenv loads layered configuration (committed defaults, local
// overrides, the process environment) into a typed, nested Go struct, using
// flat CAPS_CASE keys as the common language between sources and schema.
//
// # Features
//
//   - Every leaf of a nested struct gets a flat key derived from its path
//   - Optional prefix to namespace keys inside a shared environment
//   - Ambiguous schemas (two fields, one key) are rejected up front
//   - Ordered sources with last-wins precedence; dotenv and environment built in
//   - All failing fields reported at once, with secrets masked
//   - Extended parsing for time.Duration, uuid.UUID, decimal.Decimal, vm.Program (expr), and other specialized types
//   - Constraint checks through `validate` tags (go-playground/validator)
//
// # Keys
//
// A leaf's key is its path segments joined with "_" and upper-cased, after
// the prefix and a "_". With prefix GG:
//
//	api.google.key  ->  GG_API_GOOGLE_KEY
//	server.port     ->  GG_SERVER_PORT
//
// Segments are the snake-cased Go field names unless an env tag names them.
// Digits stay on the word before them (Port2 is port2, IPv6Addr is
// i_pv6_addr); mixed-case acronyms split oddly (OAuth2 is o_auth2), so give
// such fields an env tag. Two fields of one struct may not share a segment.
// Since "_" is both the separator and a legal name character, a field
// google_key under api and a field key under api_google would share
// API_GOOGLE_KEY. NewParser refuses such a schema with an
// *AmbiguousKeyError naming the key and both paths.
//
// # Struct Tags
//
// Configuration is controlled through struct tags:
//   - `env:"name"` - path segment for the field; "-" skips it
//   - `default:"value"` - used when no source defines the key
//   - `secret:"true"` - masks the value in errors and PrettyString output
//   - `validate:"rules"` - go-playground/validator rules checked after parsing
//
// A leaf without a default is required, unless it is a pointer, which is
// left nil when absent and then skips its validate rules. Nested structs (value or pointer) become groups;
// list, map and interface fields are rejected with a *SchemaError.
//
// # Quick Start
//
//	type Config struct {
//		API struct {
//			Google struct {
//				Key string `secret:"true"`
//			}
//		} `env:"api"`
//		Logging struct {
//			Level slog.Level `default:"info"`
//		}
//		Server struct {
//			Host string `default:"127.0.0.1"`
//			Port int    `default:"9000" validate:"min=1,max=65535"`
//		}
//	}
//
//	parser, err := layenv.NewParser[Config]("GG")
//	if err != nil {
//		log.Fatal(err) // schema problem, fix the struct
//	}
//
//	// .env (committed), then .env.local, then the shell; later wins.
//	cfg, err := parser.Load(".env", ".env.local")
//	if err != nil {
//		log.Fatal(err) // every bad or missing field, at once
//	}
//	slog.Info("config loaded", "cfg", parser.PrettyString(cfg))
//
// # Sources
//
// Anything implementing Source can be a layer. Map wraps a plain map,
// VarDict keeps insertion order and can mark a key as present without a
// value. ReadDotenv and Environ produce the usual layers; Parse accepts any
// sequence of them:
//
//	cfg, err := parser.Parse(defaults, local, layenv.Environ())
//
// With a prefix, keys outside it are never looked at, so the rest of the
// environment cannot break parsing. Prefixed keys that match no field are
// ignored unless the parser is built WithStrict.
//
// # Supported Types
//
// The library supports a wide range of Go types:
//   - Basic types: string, bool, int and uint (all sizes), float32, float64
//   - Time types: time.Duration, time.Time (RFC3339 or Unix seconds)
//   - Network types: net.IP, mail.Address, url.URL
//   - Crypto types: rsa.PrivateKey, ecdsa.PrivateKey (from PEM format)
//   - Specialized types: uuid.UUID, decimal.Decimal, big.Int, slog.Level
//   - Kubernetes types: resource.Quantity
//   - Expression language: vm.Program (expr-lang/expr)
//   - Any type implementing encoding.TextUnmarshaler
//   - Custom types through Register, RegisterParser and RegisterParserFactory
//
// # Concurrency
//
// A Parser is immutable once built and Parse keeps no state between calls,
// so one parser can serve concurrent Parse calls. Lazy wraps a load in an
// explicit init-once cache for a process-wide config.
package layenv
