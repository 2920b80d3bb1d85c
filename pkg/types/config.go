// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"fmt"
	"time"
)

const (
	// DefaultModel is the OCR model requested from the provider.
	DefaultModel = "mistral-ocr-latest"

	// DefaultSignedURLExpiry is how long the provider keeps the upload's
	// retrieval URL valid.
	DefaultSignedURLExpiry = time.Hour

	// DefaultLogLevel keeps the CLI quiet unless something needs attention.
	DefaultLogLevel = "warn"
)

// ErrMissingAPIKey is returned by Config.Validate when no credential was found.
var ErrMissingAPIKey = errors.New("MISTRAL_API_KEY environment variable not set")

// HTTPConfig holds shared HTTP settings used by the provider client.
type HTTPConfig struct {
	// Timeout bounds each provider request. Zero means no timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with provider requests
	// (e.g. "pdf2md/dev").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// OCRConfig holds settings for the OCR provider.
type OCRConfig struct {
	HTTPConfig `yaml:",inline"`

	// APIKey authenticates every provider call.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// BaseURL overrides the provider endpoint (empty uses the public API).
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// Model is the OCR model identifier (default mistral-ocr-latest).
	Model string `json:"model" yaml:"model"`

	// SignedURLExpiry is the lifetime requested for the upload's signed URL
	// (default 1h). The provider works in whole hours.
	SignedURLExpiry time.Duration `json:"signed_url_expiry" yaml:"signed_url_expiry"`
}

// ConversionConfig holds settings for the local rewrite stage.
type ConversionConfig struct {
	// Frontmatter prepends a YAML header describing the conversion.
	Frontmatter bool `json:"frontmatter" yaml:"frontmatter"`
}

// LogConfig selects the log level and output format.
type LogConfig struct {
	// Level is a zerolog level name: debug, info, warn, error.
	Level string `json:"level" yaml:"level"`

	// Format is "console" (human readable) or "json".
	Format string `json:"format" yaml:"format"`
}

// Config groups all settings for one pdf2md run.
type Config struct {
	OCR        OCRConfig        `json:"ocr" yaml:"ocr"`
	Conversion ConversionConfig `json:"conversion" yaml:"conversion"`
	Log        LogConfig        `json:"log" yaml:"log"`
}

// ApplyDefaults fills zero-valued fields with their defaults.
func (c *Config) ApplyDefaults() {
	if c.OCR.Model == "" {
		c.OCR.Model = DefaultModel
	}
	if c.OCR.SignedURLExpiry <= 0 {
		c.OCR.SignedURLExpiry = DefaultSignedURLExpiry
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
}

// Validate checks the settings that must be present before any work begins.
func (c Config) Validate() error {
	if c.OCR.APIKey == "" {
		return ErrMissingAPIKey
	}
	if c.OCR.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %v", c.OCR.Timeout)
	}
	switch c.Log.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("unknown log format %q (want console or json)", c.Log.Format)
	}
	return nil
}
