package config

import (
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		DatabaseURL:  "postgres://localhost/acr",
		JWTSecret:    "dev-secret",
		Environment:  "development",
		MaxBodyBytes: 1 << 20,
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ADDR", "")
	t.Setenv("INTEGRITY_SCAN_INTERVAL", "")
	cfg := Load()
	if cfg.Addr != ":8080" {
		t.Fatalf("expected default addr, got %q", cfg.Addr)
	}
	if cfg.IntegrityScanInterval != 6*time.Hour {
		t.Fatalf("expected 6h scan interval, got %s", cfg.IntegrityScanInterval)
	}
}

func TestLoadReadsTypedValues(t *testing.T) {
	t.Setenv("MAX_BODY_BYTES", "4096")
	t.Setenv("OTEL_SAMPLER_RATIO", "0.25")
	t.Setenv("RUN_SEED", "false")
	t.Setenv("OTEL_EXPORTER", "OTLP")
	cfg := Load()
	if cfg.MaxBodyBytes != 4096 {
		t.Fatalf("expected 4096, got %d", cfg.MaxBodyBytes)
	}
	if cfg.OTelSamplerRatio != 0.25 {
		t.Fatalf("expected 0.25, got %v", cfg.OTelSamplerRatio)
	}
	if cfg.RunSeed {
		t.Fatal("expected RUN_SEED false")
	}
	if cfg.OTelExporter != "otlp" {
		t.Fatalf("expected lowercased exporter, got %q", cfg.OTelExporter)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"missing database", func(c *Config) { c.DatabaseURL = "" }, true},
		{"missing secret", func(c *Config) { c.JWTSecret = " " }, true},
		{"short production secret", func(c *Config) { c.Environment = "production" }, true},
		{"small body", func(c *Config) { c.MaxBodyBytes = 10 }, true},
		{"otlp without endpoint", func(c *Config) { c.OTelEnabled = true; c.OTelExporter = "otlp" }, true},
		{"unknown exporter", func(c *Config) { c.OTelEnabled = true; c.OTelExporter = "jaeger" }, true},
		{"stdout exporter", func(c *Config) { c.OTelEnabled = true; c.OTelExporter = "stdout"; c.OTelSamplerRatio = 1 }, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr && err == nil {
				t.Fatal("expected error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
