// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/pdf2md/pkg/types"
)

// imageExt is the extension given to every saved image, whatever its
// actual encoding.
const imageExt = ".png"

// SaveImages decodes each image payload and writes it to dir/<id>.png,
// creating dir if needed and overwriting existing files. It returns the
// written paths in image order. The first failure stops the loop; files
// already written stay on disk.
func SaveImages(dir string, images []types.Image) ([]string, error) {
	if len(images) == 0 {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, wrap(KindIO, "materialize", fmt.Errorf("creating image directory: %w", err))
	}

	written := make([]string, 0, len(images))
	for _, img := range images {
		data, err := DecodePayload(img.Payload)
		if err != nil {
			return written, wrap(KindDecode, "materialize", fmt.Errorf("decoding image %s: %w", img.ID, err))
		}
		path := filepath.Join(dir, img.ID+imageExt)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return written, wrap(KindIO, "materialize", fmt.Errorf("writing image %s: %w", img.ID, err))
		}
		written = append(written, path)
	}
	return written, nil
}

// DecodePayload decodes a base64 image payload. A data URI
// ("data:image/png;base64,....") is accepted and its header stripped.
func DecodePayload(payload string) ([]byte, error) {
	if strings.HasPrefix(payload, "data:") {
		_, after, ok := strings.Cut(payload, ",")
		if !ok {
			return nil, errors.New("malformed data URI: no comma")
		}
		payload = after
	}
	return base64.StdEncoding.DecodeString(payload)
}
