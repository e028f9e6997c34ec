package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, key := range []string{"ENV", "RECORD_STORE", "DATABASE_URL", "HTTP_TIMEOUT", "STRIPE_PRICE_ID", "SUPABASE_URL"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.Env != "dev" {
		t.Fatalf("expected env dev, got %q", cfg.Env)
	}
	if cfg.RecordStore != "rest" {
		t.Fatalf("expected rest record store, got %q", cfg.RecordStore)
	}
	if cfg.HTTPTimeout != 15*time.Second {
		t.Fatalf("expected 15s timeout, got %s", cfg.HTTPTimeout)
	}
	if cfg.CheckoutPriceID != defaultPriceID {
		t.Fatalf("unexpected price id %q", cfg.CheckoutPriceID)
	}
}

func TestLoadReadsDotenv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("SUPABASE_URL", "")
	os.Unsetenv("SUPABASE_URL")
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("SUPABASE_URL=https://example.supabase.co/\n"), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}

	cfg := Load()
	if cfg.SupabaseURL != "https://example.supabase.co" {
		t.Fatalf("expected trimmed supabase url, got %q", cfg.SupabaseURL)
	}
}

func TestNormalizeRecordStore(t *testing.T) {
	tests := []struct {
		raw   string
		dbURL string
		want  string
	}{
		{raw: "", dbURL: "", want: "rest"},
		{raw: "", dbURL: "postgres://localhost/cof", want: "postgres"},
		{raw: "memory", dbURL: "postgres://localhost/cof", want: "memory"},
		{raw: "Supabase", dbURL: "", want: "rest"},
		{raw: "pg", dbURL: "", want: "postgres"},
	}
	for _, tt := range tests {
		if got := normalizeRecordStore(tt.raw, tt.dbURL); got != tt.want {
			t.Fatalf("normalizeRecordStore(%q, %q) = %q, want %q", tt.raw, tt.dbURL, got, tt.want)
		}
	}
}
