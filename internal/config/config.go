package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port             string        `mapstructure:"PORT"`
	Env              string        `mapstructure:"ENV"`
	AppName          string        `mapstructure:"APP_NAME"`
	Version          string        `mapstructure:"VERSION"`
	HL7Version       string        `mapstructure:"HL7_VERSION"`
	HL7Encoding      string        `mapstructure:"HL7_ENCODING"`
	FHIRVersion      string        `mapstructure:"FHIR_VERSION"`
	StrictValidation bool          `mapstructure:"HL7_STRICT_VALIDATION"`
	CORSOrigins      []string      `mapstructure:"CORS_ORIGINS"`
	BodyLimit        string        `mapstructure:"BODY_LIMIT"`
	RequestTimeout   time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	MLLPAddr         string        `mapstructure:"MLLP_ADDR"`
}

var keys = []string{
	"PORT",
	"ENV",
	"APP_NAME",
	"VERSION",
	"HL7_VERSION",
	"HL7_ENCODING",
	"FHIR_VERSION",
	"HL7_STRICT_VALIDATION",
	"CORS_ORIGINS",
	"BODY_LIMIT",
	"REQUEST_TIMEOUT",
	"MLLP_ADDR",
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("APP_NAME", "Healthcare Gateway")
	v.SetDefault("VERSION", "1.0.0")
	v.SetDefault("HL7_VERSION", "2.5")
	v.SetDefault("HL7_ENCODING", "utf-8")
	v.SetDefault("FHIR_VERSION", "R4")
	v.SetDefault("HL7_STRICT_VALIDATION", false)
	v.SetDefault("CORS_ORIGINS", "http://localhost:8501")
	v.SetDefault("BODY_LIMIT", "1M")
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("MLLP_ADDR", "")

	// Bind env vars explicitly so Unmarshal picks them up
	for _, k := range keys {
		v.BindEnv(k)
	}

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.CORSOrigins = splitList(v.GetString("CORS_ORIGINS"))

	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// SupportedFormats returns the format table reported by the engine, keyed by
// format name with the configured version as value.
func (c *Config) SupportedFormats() map[string]string {
	return map[string]string{
		"HL7":  c.HL7Version,
		"FHIR": c.FHIRVersion,
	}
}

// Validate checks that the configuration is usable before anything starts
// listening.
func (c *Config) Validate() error {
	port, err := strconv.Atoi(c.Port)
	if err != nil || port <= 0 || port > 65535 {
		return fmt.Errorf("PORT must be a number between 1 and 65535, got %q", c.Port)
	}
	if c.HL7Version == "" {
		return fmt.Errorf("HL7_VERSION must not be empty")
	}
	if c.FHIRVersion == "" {
		return fmt.Errorf("FHIR_VERSION must not be empty")
	}
	if !strings.EqualFold(c.HL7Encoding, "utf-8") && !strings.EqualFold(c.HL7Encoding, "utf8") {
		return fmt.Errorf("HL7_ENCODING %q is not supported, only utf-8 is accepted", c.HL7Encoding)
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must not be negative, got %s", c.RequestTimeout)
	}
	if c.IsProduction() {
		for _, origin := range c.CORSOrigins {
			if origin == "*" {
				return fmt.Errorf("CORS_ORIGINS must list explicit origins in production")
			}
		}
	}
	return nil
}
