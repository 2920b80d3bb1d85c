// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets reads credentials kept as plain-text files in a
// directory (by default .secrets/). The filename is the key and the
// trimmed contents are the value, e.g. .secrets/mistral-api-key.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// DefaultDir is where the CLI looks for secret files.
const DefaultDir = ".secrets"

// MistralAPIKey is the file holding the OCR provider credential.
const MistralAPIKey = "mistral-api-key"

// Load reads all files in dir and returns a map of filename to trimmed
// contents. A missing directory is not an error. Dotfiles, subdirectories,
// and empty files are skipped; unreadable files are logged and skipped.
func Load(dir string, log zerolog.Logger) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			log.Warn().Err(err).Str("secret", name).Msg("could not read secret")
			continue
		}

		if value := strings.TrimSpace(string(data)); value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// Resolve returns value when it is set, otherwise the secret stored under
// key in dir. It returns "" when neither exists.
func Resolve(value, dir, key string, log zerolog.Logger) (string, error) {
	if value != "" {
		return value, nil
	}
	s, err := Load(dir, log)
	if err != nil {
		return "", err
	}
	return s[key], nil
}
