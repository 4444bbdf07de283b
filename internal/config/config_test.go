package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range keys {
		os.Unsetenv(k)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != "8000" {
		t.Errorf("expected default port 8000, got %s", cfg.Port)
	}
	if cfg.AppName != "Healthcare Gateway" {
		t.Errorf("expected default app name, got %s", cfg.AppName)
	}
	if cfg.Version != "1.0.0" {
		t.Errorf("expected version 1.0.0, got %s", cfg.Version)
	}
	if cfg.HL7Version != "2.5" || cfg.FHIRVersion != "R4" {
		t.Errorf("unexpected format versions %s/%s", cfg.HL7Version, cfg.FHIRVersion)
	}
	if cfg.StrictValidation {
		t.Error("expected strict validation to be off by default")
	}
	if cfg.BodyLimit != "1M" {
		t.Errorf("expected body limit 1M, got %s", cfg.BodyLimit)
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Errorf("expected request timeout 30s, got %s", cfg.RequestTimeout)
	}
	if cfg.MLLPAddr != "" {
		t.Errorf("expected MLLP to be disabled by default, got %q", cfg.MLLPAddr)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "http://localhost:8501" {
		t.Errorf("unexpected CORS origins %v", cfg.CORSOrigins)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected defaults to validate, got %v", err)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	os.Setenv("PORT", "9090")
	os.Setenv("HL7_STRICT_VALIDATION", "true")
	os.Setenv("CORS_ORIGINS", "http://a.example, http://b.example")
	os.Setenv("MLLP_ADDR", ":2575")
	defer func() {
		os.Unsetenv("PORT")
		os.Unsetenv("HL7_STRICT_VALIDATION")
		os.Unsetenv("CORS_ORIGINS")
		os.Unsetenv("MLLP_ADDR")
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != "9090" {
		t.Errorf("expected port 9090, got %s", cfg.Port)
	}
	if !cfg.StrictValidation {
		t.Error("expected strict validation to be on")
	}
	if cfg.MLLPAddr != ":2575" {
		t.Errorf("expected MLLP addr :2575, got %q", cfg.MLLPAddr)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "http://b.example" {
		t.Errorf("unexpected CORS origins %v", cfg.CORSOrigins)
	}
}

func TestConfig_IsDev(t *testing.T) {
	c := &Config{Env: "development"}
	if !c.IsDev() {
		t.Error("expected IsDev() to return true for development")
	}

	c.Env = "production"
	if c.IsDev() {
		t.Error("expected IsDev() to return false for production")
	}
	if !c.IsProduction() {
		t.Error("expected IsProduction() to return true for production")
	}
}

func TestConfig_SupportedFormats(t *testing.T) {
	c := &Config{HL7Version: "2.5", FHIRVersion: "R4"}
	got := c.SupportedFormats()
	if got["HL7"] != "2.5" || got["FHIR"] != "R4" || len(got) != 2 {
		t.Errorf("unexpected formats %v", got)
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := Config{Port: "8000", HL7Version: "2.5", FHIRVersion: "R4", HL7Encoding: "utf-8"}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"upper case encoding", func(c *Config) { c.HL7Encoding = "UTF-8" }, false},
		{"bad port", func(c *Config) { c.Port = "http" }, true},
		{"port out of range", func(c *Config) { c.Port = "70000" }, true},
		{"empty hl7 version", func(c *Config) { c.HL7Version = "" }, true},
		{"empty fhir version", func(c *Config) { c.FHIRVersion = "" }, true},
		{"latin1 encoding", func(c *Config) { c.HL7Encoding = "iso-8859-1" }, true},
		{"negative timeout", func(c *Config) { c.RequestTimeout = -time.Second }, true},
		{"wildcard cors in development", func(c *Config) { c.CORSOrigins = []string{"*"} }, false},
		{"wildcard cors in production", func(c *Config) {
			c.Env = "production"
			c.CORSOrigins = []string{"http://a.example", "*"}
		}, true},
		{"explicit cors in production", func(c *Config) {
			c.Env = "production"
			c.CORSOrigins = []string{"http://a.example"}
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
