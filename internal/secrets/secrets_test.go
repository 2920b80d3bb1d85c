// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T) string
		want  map[string]string
	}{
		{
			name: "reads key files and trims whitespace",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, MistralAPIKey, "  mk_abc123  \n")
				writeFile(t, dir, "other-key", "xyz\n")
				return dir
			},
			want: map[string]string{
				MistralAPIKey: "mk_abc123",
				"other-key":   "xyz",
			},
		},
		{
			name: "returns empty map for nonexistent directory",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "does-not-exist")
			},
			want: map[string]string{},
		},
		{
			name: "skips empty files, dotfiles, and subdirectories",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, MistralAPIKey, "valid")
				writeFile(t, dir, "empty-key", "")
				writeFile(t, dir, "whitespace-only", "   \n\t  ")
				writeFile(t, dir, ".hidden-key", "secret")
				require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0o755))
				return dir
			},
			want: map[string]string{
				MistralAPIKey: "valid",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(tt.setup(t), zerolog.Nop())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoad_NotADirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "plain", "x")

	_, err := Load(filepath.Join(dir, "plain"), zerolog.Nop())
	assert.ErrorContains(t, err, "reading secrets directory")
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, MistralAPIKey, "from-file")

	got, err := Resolve("from-env", dir, MistralAPIKey, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "from-env", got, "an explicit value wins over the secrets directory")

	got, err = Resolve("", dir, MistralAPIKey, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "from-file", got)

	got, err = Resolve("", filepath.Join(dir, "missing"), MistralAPIKey, zerolog.Nop())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}
