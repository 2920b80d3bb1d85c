// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"fmt"
	"strings"

	"go.yaml.in/yaml/v3"
)

// frontmatter describes a conversion in the optional YAML header.
type frontmatter struct {
	SourcePDF   string `yaml:"source_pdf"`
	ConvertedAt string `yaml:"converted_at"`
	Model       string `yaml:"model"`
	Pages       int    `yaml:"pages"`
	Images      int    `yaml:"images"`
}

// addFrontmatter prepends a YAML frontmatter block to body.
func addFrontmatter(fm frontmatter, body string) (string, error) {
	data, err := yaml.Marshal(fm)
	if err != nil {
		return "", fmt.Errorf("marshaling frontmatter: %w", err)
	}
	var b strings.Builder
	b.WriteString("---\n")
	b.Write(data)
	b.WriteString("---\n\n")
	b.WriteString(body)
	return b.String(), nil
}
