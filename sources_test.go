package layenv

import (
	"bytes"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestReadDotenv(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, ".env", `# This is a comment
LT_APP_NAME=myapp
LT_PORT=3000
export LT_DEBUG=true
LT_QUOTED="hello world"
LT_EMPTY=
`)

	vars, err := ReadDotenv(path)
	require.NoError(t, err)
	assert.Equal(t, Map{
		"LT_APP_NAME": "myapp",
		"LT_PORT":     "3000",
		"LT_DEBUG":    "true",
		"LT_QUOTED":   "hello world",
		"LT_EMPTY":    "",
	}, vars)

	_, set := os.LookupEnv("LT_APP_NAME")
	assert.False(t, set, "reading a file must not touch the environment")
}

func TestReadDotenvMissing(t *testing.T) {
	_, err := ReadDotenv(filepath.Join(t.TempDir(), "nope.env"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
	assert.Contains(t, err.Error(), "nope.env")
}

func TestParseDotenv(t *testing.T) {
	vars, err := ParseDotenv(strings.NewReader("A=1\nB='two'\n"))
	require.NoError(t, err)
	assert.Equal(t, Map{"A": "1", "B": "two"}, vars)
}

func TestEnviron(t *testing.T) {
	t.Setenv("LT_ENVIRON_CHECK", "a=b=c")
	t.Setenv("LT_ENVIRON_EMPTY", "")

	env := Environ()
	v, ok := env.Lookup("LT_ENVIRON_CHECK")
	assert.True(t, ok)
	assert.Equal(t, "a=b=c", v)

	v, ok = env.Lookup("LT_ENVIRON_EMPTY")
	assert.True(t, ok)
	assert.Equal(t, "", v)
}

type loadConfig struct {
	Name     string `default:"default-app"`
	Port     int    `default:"8080"`
	Debug    bool   `default:"false"`
	APIKey   string `secret:"true"`
	Database struct {
		Host string `default:"localhost"`
		Port int    `default:"5432"`
	}
}

func TestParserLoad(t *testing.T) {
	dir := t.TempDir()
	base := writeFile(t, dir, ".env", `LT_NAME=myapp
LT_PORT=3000
LT_API_KEY=fake
LT_DATABASE_HOST=db.example.com
`)
	local := writeFile(t, dir, ".env.local", `LT_API_KEY=secret123
LT_PORT=4000
`)
	t.Setenv("LT_PORT", "5000")
	t.Setenv("LT_DEBUG", "true")

	p := MustNewParser[loadConfig]("LT")
	cfg, err := p.Load(base, local)
	require.NoError(t, err)

	assert.Equal(t, "myapp", cfg.Name)
	assert.Equal(t, 5000, cfg.Port, "the shell wins over every file")
	assert.True(t, cfg.Debug)
	assert.Equal(t, "secret123", cfg.APIKey, "later files win over earlier ones")
	assert.Equal(t, "db.example.com", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)

	cfg, err = Load[loadConfig]("LT", base)
	require.NoError(t, err)
	assert.Equal(t, "fake", cfg.APIKey)
}

func TestParserLoadMissingFile(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	dir := t.TempDir()
	base := writeFile(t, dir, ".env", "LT_API_KEY=from-file\n")
	missing := filepath.Join(dir, ".env.local")

	p := MustNewParser[loadConfig]("LT", WithLogger(logger))
	cfg, err := p.Load(base, missing)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.APIKey)

	assert.Contains(t, buf.String(), "dotenv file not found, skipping")
	assert.Contains(t, buf.String(), ".env.local")
}

func TestParserLoadUnreadable(t *testing.T) {
	dir := t.TempDir()
	// a directory exists but cannot be read as a file
	_, err := MustNewParser[loadConfig]("LT").Load(dir)
	require.Error(t, err)
	assert.False(t, errors.Is(err, fs.ErrNotExist))
}

func TestParserLoadRequiresValue(t *testing.T) {
	_, err := Load[loadConfig]("LT_UNSET_PREFIX")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Errors, 1)
	assert.Equal(t, "LT_UNSET_PREFIX_API_KEY", verr.Errors[0].Key)
}
