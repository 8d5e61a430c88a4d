package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"DATABASE_URL", "PAGE_SIZE", "REQUEST_TIMEOUT", "FETCH_MODE", "REFRESH_REGION_VIEW"} {
		t.Setenv(k, "")
	}

	cfg := Load()
	if cfg.PageSize != 25 {
		t.Errorf("PageSize: got %d, want 25", cfg.PageSize)
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Errorf("RequestTimeout: got %v, want 30s", cfg.RequestTimeout)
	}
	if cfg.FetchMode != "http" {
		t.Errorf("FetchMode: got %q, want http", cfg.FetchMode)
	}
	if cfg.CatalogBatchSize != 500 || cfg.SummaryBatchSize != 200 {
		t.Errorf("batch sizes: got %d/%d, want 500/200", cfg.CatalogBatchSize, cfg.SummaryBatchSize)
	}
	if cfg.RefreshRegionView {
		t.Error("RefreshRegionView should default to false")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PAGE_SIZE", "50")
	t.Setenv("REQUEST_TIMEOUT", "45")
	t.Setenv("RATE_LIMIT_MS", "250")
	t.Setenv("FETCH_MODE", "Browser")
	t.Setenv("REFRESH_REGION_VIEW", "true")
	t.Setenv("MAX_RETRIES", "not-a-number")

	cfg := Load()
	if cfg.PageSize != 50 {
		t.Errorf("PageSize: got %d, want 50", cfg.PageSize)
	}
	if cfg.RequestTimeout != 45*time.Second {
		t.Errorf("RequestTimeout: got %v, want 45s", cfg.RequestTimeout)
	}
	if cfg.RateLimit != 250*time.Millisecond {
		t.Errorf("RateLimit: got %v, want 250ms", cfg.RateLimit)
	}
	if cfg.FetchMode != "browser" {
		t.Errorf("FetchMode: got %q, want browser", cfg.FetchMode)
	}
	if !cfg.RefreshRegionView {
		t.Error("RefreshRegionView should be true")
	}
	if cfg.MaxRetries != 3 {
		t.Errorf("MaxRetries: got %d, want fallback 3", cfg.MaxRetries)
	}
}

func TestDSN(t *testing.T) {
	cfg := &Config{
		PostgresHost: "db", PostgresPort: "5432", PostgresUser: "u",
		PostgresPassword: "p", PostgresDB: "cm", PostgresSSLMode: "require",
	}
	want := "host=db port=5432 user=u password=p dbname=cm sslmode=require"
	if got := cfg.DSN(); got != want {
		t.Errorf("DSN: got %q, want %q", got, want)
	}

	cfg.PostgresPassword = `it's a \secret`
	want = `host=db port=5432 user=u password='it\'s a \\secret' dbname=cm sslmode=require`
	if got := cfg.DSN(); got != want {
		t.Errorf("DSN with quoted password: got %q, want %q", got, want)
	}

	cfg.DatabaseURL = "postgres://u:p@db/cm"
	if got := cfg.DSN(); got != cfg.DatabaseURL {
		t.Errorf("DSN with DATABASE_URL: got %q", got)
	}
}
