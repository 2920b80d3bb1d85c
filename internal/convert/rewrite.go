// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"sort"
	"strings"
)

const upperhex = "0123456789ABCDEF"

// EncodePath percent-encodes a slash-separated relative path so it is a
// valid relative Markdown link target. Every byte other than ASCII
// letters, digits, "_.-~" and "/" is escaped, so "my doc:v2" becomes
// "my%20doc%3Av2" and can never read as a URL scheme.
func EncodePath(rel string) string {
	var b strings.Builder
	b.Grow(len(rel))
	for i := 0; i < len(rel); i++ {
		c := rel[i]
		if c == '/' || unreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&0x0f])
	}
	return b.String()
}

func unreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	case c == '_' || c == '.' || c == '-' || c == '~':
		return true
	}
	return false
}

// ImagePath returns the encoded link target for image id saved under
// dirName, e.g. "my%20doc_images/img-0.jpeg.png".
func ImagePath(dirName, id string) string {
	return EncodePath(dirName + "/" + id + imageExt)
}

// RewriteReferences replaces every ![id](id) in markdown with
// ![id](refs[id]). It is a literal text substitution: tokens whose id is
// not in refs, and any other Markdown, are left as they are.
func RewriteReferences(markdown string, refs map[string]string) string {
	if len(refs) == 0 {
		return markdown
	}
	ids := make([]string, 0, len(refs))
	for id := range refs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	pairs := make([]string, 0, 2*len(ids))
	for _, id := range ids {
		pairs = append(pairs, imageToken(id, id), imageToken(id, refs[id]))
	}
	return strings.NewReplacer(pairs...).Replace(markdown)
}

func imageToken(label, target string) string {
	return "![" + label + "](" + target + ")"
}
