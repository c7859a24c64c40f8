package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var managedKeys = []string{
	"HTTP_PORT", "PORT", "DATABASE_URL", "DATABASE_URL_FILE",
	"PGHOST", "PGUSER", "PGPASSWORD", "PGDATABASE", "PGPORT", "PGSSLMODE",
	"JWT_SECRET", "JWT_ISSUER", "SESSION_SECRET", "SESSION_COOKIE_NAME", "SESSION_COOKIE_SECURE",
	"CORS_ALLOWED_ORIGINS", "HTTP_READ_TIMEOUT", "HTTP_WRITE_TIMEOUT", "HTTP_IDLE_TIMEOUT",
	"LOG_LEVEL", "S3_BUCKET", "S3_REGION", "S3_ENDPOINT", "S3_ACCESS_KEY", "S3_SECRET_KEY",
	"UPLOAD_MAX_BYTES",
}

// isolate clears every variable Load reads and runs the test from an empty
// directory so no stray .env file is picked up.
func isolate(t *testing.T) {
	t.Helper()
	for _, k := range managedKeys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)
	t.Setenv("DATABASE_URL", "postgresql://u:p@db:5432/kudos")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, "postgres://u:p@db:5432/kudos", cfg.DatabaseURL)
	assert.Equal(t, "kudos", cfg.JWTIssuer)
	assert.Equal(t, "s3cret", cfg.Session.Secret)
	assert.Equal(t, "__session", cfg.Session.CookieName)
	assert.False(t, cfg.Session.Secure)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, 15*time.Second, cfg.ReadTimeout)
	assert.Equal(t, 60*time.Second, cfg.IdleTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, int64(5<<20), cfg.UploadMaxBytes)
	assert.False(t, cfg.Storage.Enabled())
}

func TestLoad_Overrides(t *testing.T) {
	isolate(t)
	t.Setenv("DATABASE_URL", "postgres://db/kudos")
	t.Setenv("JWT_SECRET", "jwt")
	t.Setenv("SESSION_SECRET", "cookie")
	t.Setenv("PORT", "3000")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, ,http://b.test")
	t.Setenv("HTTP_WRITE_TIMEOUT", "45s")
	t.Setenv("SESSION_COOKIE_SECURE", "true")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("S3_BUCKET", "pictures")
	t.Setenv("UPLOAD_MAX_BYTES", "1024")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.HTTPPort)
	assert.Equal(t, "cookie", cfg.Session.Secret)
	assert.True(t, cfg.Session.Secure)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
	assert.Equal(t, 45*time.Second, cfg.WriteTimeout)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.Storage.Enabled())
	assert.Equal(t, "us-east-1", cfg.Storage.Region)
	assert.Equal(t, int64(1024), cfg.UploadMaxBytes)
}

func TestLoad_MissingSecretFails(t *testing.T) {
	isolate(t)
	t.Setenv("DATABASE_URL", "postgres://db/kudos")

	_, err := Load()
	assert.EqualError(t, err, "JWT_SECRET is required")
}

func TestLoad_MissingDatabaseFails(t *testing.T) {
	isolate(t)
	t.Setenv("JWT_SECRET", "x")

	_, err := Load()
	assert.ErrorContains(t, err, "database configuration missing")
}

func TestLoad_AssemblesDSNFromPGVars(t *testing.T) {
	isolate(t)
	t.Setenv("JWT_SECRET", "x")
	t.Setenv("PGHOST", "localhost")
	t.Setenv("PGUSER", "kudos")
	t.Setenv("PGPASSWORD", "pw")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://kudos:pw@localhost:5432/kudos?sslmode=disable", cfg.DatabaseURL)
}

func TestLoad_DotEnvDoesNotOverrideEnvironment(t *testing.T) {
	isolate(t)
	t.Setenv("JWT_SECRET", "from-env")
	dotenv := "# comment\nexport DATABASE_URL=\"postgres://file/kudos\"\nJWT_SECRET=from-file\n"
	require.NoError(t, os.WriteFile(filepath.Join(".", ".env"), []byte(dotenv), 0o600))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://file/kudos", cfg.DatabaseURL)
	assert.Equal(t, "from-env", cfg.JWTSecret)
}

func TestLoadDotEnv_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("NOEQUALS\n"), 0o600))

	assert.EqualError(t, loadDotEnv(path), ".env line 1: missing '='")
}
