// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pdf2md/internal/secrets"
	"github.com/pdiddy/pdf2md/pkg/types"
)

// apiKeyEnv is the environment variable holding the provider credential.
const apiKeyEnv = "MISTRAL_API_KEY"

// loadConfig resolves the run configuration from flags, environment,
// .env, an optional config file, and the secrets directory, in that
// order of precedence. It does not validate the result.
func loadConfig(cmd *cobra.Command, log zerolog.Logger) (types.Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return types.Config{}, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()
	cfgFile, _ := cmd.Flags().GetString("config")
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("pdf2md")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "pdf2md"))
		}
	}

	v.SetEnvPrefix("PDF2MD")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("api_key", apiKeyEnv); err != nil {
		return types.Config{}, err
	}

	for key, flag := range map[string]string{
		"model":       "model",
		"frontmatter": "frontmatter",
		"timeout":     "timeout",
		"log_level":   "log-level",
		"log_format":  "log-format",
	} {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return types.Config{}, fmt.Errorf("binding flag %s: %w", flag, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return types.Config{}, fmt.Errorf("reading config file: %w", err)
		}
	} else {
		log.Debug().Str("config", v.ConfigFileUsed()).Msg("using config file")
	}

	apiKey, err := secrets.Resolve(v.GetString("api_key"), secrets.DefaultDir, secrets.MistralAPIKey, log)
	if err != nil {
		return types.Config{}, err
	}

	cfg := types.Config{
		OCR: types.OCRConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   v.GetDuration("timeout"),
				UserAgent: "pdf2md/" + version,
			},
			APIKey:          apiKey,
			BaseURL:         v.GetString("base_url"),
			Model:           v.GetString("model"),
			SignedURLExpiry: v.GetDuration("signed_url_expiry"),
		},
		Conversion: types.ConversionConfig{
			Frontmatter: v.GetBool("frontmatter"),
		},
		Log: types.LogConfig{
			Level:  v.GetString("log_level"),
			Format: v.GetString("log_format"),
		},
	}
	cfg.ApplyDefaults()
	return cfg, nil
}
