package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// Config holds all application configuration loaded from environment variables.
type Config struct {
	DatabaseURL      string
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	CatalogBaseURL string
	PageSize       int
	MaxPages       int
	MaxProducts    int

	MaxConcurrency int
	RateLimit      time.Duration
	MaxRetries     int
	RequestTimeout time.Duration
	UserAgent      string
	FetchMode      string
	ChromeBin      string

	CatalogBatchSize  int
	SummaryBatchSize  int
	RefreshRegionView bool

	CSVOutputPath string
	LogLevel      string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "postgres"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "postgres"),
		PostgresDB:       getEnv("POSTGRES_DB", "postgres"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		CatalogBaseURL: getEnv("CATALOG_BASE_URL", "https://conveniomarco2.mercadopublico.cl/alimentos2/alimentos"),
		PageSize:       getEnvInt("PAGE_SIZE", 25),
		MaxPages:       getEnvInt("MAX_PAGES", 0),
		MaxProducts:    getEnvInt("MAX_PRODUCTS", 0),

		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 4),
		RateLimit:      time.Duration(getEnvInt("RATE_LIMIT_MS", 1000)) * time.Millisecond,
		MaxRetries:     getEnvInt("MAX_RETRIES", 3),
		RequestTimeout: getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
		UserAgent:      getEnv("USER_AGENT", defaultUserAgent),
		FetchMode:      strings.ToLower(getEnv("FETCH_MODE", "http")),
		ChromeBin:      getEnv("CHROME_BIN", ""),

		CatalogBatchSize:  getEnvInt("CATALOG_BATCH_SIZE", 500),
		SummaryBatchSize:  getEnvInt("SUMMARY_BATCH_SIZE", 200),
		RefreshRegionView: getEnvBool("REFRESH_REGION_VIEW", false),

		CSVOutputPath: getEnv("CSV_OUTPUT_PATH", "./output/precios_minimos.csv"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
	}
}

// DSN returns the PostgreSQL connection string. DATABASE_URL wins when set,
// which is how hosted Postgres (Supabase) hands out credentials.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return "host=" + dsnValue(c.PostgresHost) +
		" port=" + dsnValue(c.PostgresPort) +
		" user=" + dsnValue(c.PostgresUser) +
		" password=" + dsnValue(c.PostgresPassword) +
		" dbname=" + dsnValue(c.PostgresDB) +
		" sslmode=" + dsnValue(c.PostgresSSLMode)
}

// dsnValue quotes a key=value connection parameter when it is empty or
// holds a space, quote or backslash.
func dsnValue(v string) string {
	if v != "" && !strings.ContainsAny(v, " '\\\t\n") {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}

// getEnvDuration accepts Go durations ("45s") or a bare number of seconds.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	if d, err := time.ParseDuration(val); err == nil {
		return d
	}
	if n, err := strconv.Atoi(val); err == nil {
		return time.Duration(n) * time.Second
	}
	return fallback
}
