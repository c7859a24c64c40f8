package config

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	neturl "net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const defaultUploadMaxBytes = 5 << 20

// Config centralises runtime configuration.
type Config struct {
	HTTPPort       string
	DatabaseURL    string
	AllowedOrigins []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	LogLevel       string

	JWTSecret string
	JWTIssuer string

	Session Session
	Storage Storage

	UploadMaxBytes int64
}

// Session configures the signed session cookie.
type Session struct {
	Secret     string
	CookieName string
	Secure     bool
}

// Storage configures the S3 compatible bucket holding profile pictures.
type Storage struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// Enabled reports whether a bucket was configured.
func (s Storage) Enabled() bool { return s.Bucket != "" }

// Load reads configuration from the environment, after applying an optional
// .env file from the working directory.
func Load() (Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return Config{}, fmt.Errorf("loading .env: %w", err)
	}

	jwtSecret := getEnv("JWT_SECRET", "")
	cfg := Config{
		HTTPPort:       firstNonEmpty(os.Getenv("HTTP_PORT"), os.Getenv("PORT"), "8080"),
		DatabaseURL:    resolveDatabaseURL(),
		AllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		ReadTimeout:    getSecondsEnv("HTTP_READ_TIMEOUT", 15),
		WriteTimeout:   getSecondsEnv("HTTP_WRITE_TIMEOUT", 15),
		IdleTimeout:    getSecondsEnv("HTTP_IDLE_TIMEOUT", 60),
		LogLevel:       strings.ToLower(getEnv("LOG_LEVEL", "info")),
		JWTSecret:      jwtSecret,
		JWTIssuer:      getEnv("JWT_ISSUER", "kudos"),
		Session: Session{
			Secret:     getEnv("SESSION_SECRET", jwtSecret),
			CookieName: getEnv("SESSION_COOKIE_NAME", "__session"),
			Secure:     getBoolEnv("SESSION_COOKIE_SECURE", false),
		},
		Storage: Storage{
			Bucket:    getEnv("S3_BUCKET", ""),
			Region:    getEnv("S3_REGION", "us-east-1"),
			Endpoint:  getEnv("S3_ENDPOINT", ""),
			AccessKey: getEnv("S3_ACCESS_KEY", ""),
			SecretKey: getEnv("S3_SECRET_KEY", ""),
		},
		UploadMaxBytes: getInt64Env("UPLOAD_MAX_BYTES", defaultUploadMaxBytes),
	}

	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database configuration missing: provide DATABASE_URL or PG* env vars")
	}
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET is required")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

// getSecondsEnv accepts either a Go duration ("30s") or a bare number of seconds.
func getSecondsEnv(key string, fallbackSec int) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return time.Duration(fallbackSec) * time.Second
	}
	if n, err := strconv.Atoi(val); err == nil {
		return time.Duration(n) * time.Second
	}
	if d, err := time.ParseDuration(val); err == nil {
		return d
	}
	return time.Duration(fallbackSec) * time.Second
}

func getInt64Env(key string, fallback int64) int64 {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.ParseInt(val, 10, 64); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func getBoolEnv(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}

func splitCSV(value string) []string {
	parts := []string{}
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	if len(parts) == 0 {
		return []string{"*"}
	}
	return parts
}

// resolveDatabaseURL prefers DATABASE_URL, then a DSN read from
// DATABASE_URL_FILE, then a DSN assembled from the libpq PG* variables.
func resolveDatabaseURL() string {
	if url := coerceDatabaseURL(os.Getenv("DATABASE_URL")); url != "" {
		return url
	}
	if path := os.Getenv("DATABASE_URL_FILE"); path != "" {
		if data, err := os.ReadFile(path); err == nil {
			if url := coerceDatabaseURL(string(data)); url != "" {
				return url
			}
		}
	}

	host := os.Getenv("PGHOST")
	user := os.Getenv("PGUSER")
	if host == "" || user == "" {
		return ""
	}

	dsn := &neturl.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(host, firstNonEmpty(os.Getenv("PGPORT"), "5432")),
		Path:   "/" + firstNonEmpty(os.Getenv("PGDATABASE"), user),
		User:   neturl.User(user),
	}
	if password := os.Getenv("PGPASSWORD"); password != "" {
		dsn.User = neturl.UserPassword(user, password)
	}
	query := dsn.Query()
	query.Set("sslmode", firstNonEmpty(os.Getenv("PGSSLMODE"), "disable"))
	dsn.RawQuery = query.Encode()
	return dsn.String()
}

func coerceDatabaseURL(raw string) string {
	raw = strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(raw, "postgres://"):
		return raw
	case strings.HasPrefix(raw, "postgresql://"):
		return "postgres://" + strings.TrimPrefix(raw, "postgresql://")
	default:
		return ""
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// loadDotEnv applies KEY=VALUE lines from path. Variables already present in
// the environment win over the file.
func loadDotEnv(path string) error {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for lineNum := 1; scanner.Scan(); lineNum++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimSpace(strings.TrimPrefix(line, "export "))

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return fmt.Errorf(".env line %d: missing '='", lineNum)
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return fmt.Errorf(".env line %d: empty key", lineNum)
		}
		value = unquote(strings.TrimSpace(value))

		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return fmt.Errorf(".env line %d: %w", lineNum, err)
		}
	}
	return scanner.Err()
}

func unquote(value string) string {
	if len(value) < 2 {
		return value
	}
	first, last := value[0], value[len(value)-1]
	if (first == '"' || first == '\'') && first == last {
		return value[1 : len(value)-1]
	}
	return value
}
