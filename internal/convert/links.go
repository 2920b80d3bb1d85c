// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"net/url"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// UnresolvedImages parses markdown and returns the destinations of image
// nodes that are neither in saved nor absolute URLs. These are references
// the provider emitted without a matching image payload.
func UnresolvedImages(markdown string, saved map[string]bool) []string {
	src := []byte(markdown)
	doc := goldmark.DefaultParser().Parse(text.NewReader(src))

	var missing []string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		img, ok := n.(*ast.Image)
		if !ok || !entering {
			return ast.WalkContinue, nil
		}
		dest := string(img.Destination)
		if saved[dest] || isAbsoluteURL(dest) {
			return ast.WalkContinue, nil
		}
		missing = append(missing, dest)
		return ast.WalkContinue, nil
	})
	return missing
}

func isAbsoluteURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && u.Scheme != ""
}
