// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"fmt"
	"os"

	"rsc.io/pdf"
)

// CountPages reads the PDF's page tree and returns its page count.
func CountPages(path string) (n int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return 0, err
	}

	// rsc.io/pdf panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			n, err = 0, fmt.Errorf("reading PDF structure: %v", r)
		}
	}()

	r, err := pdf.NewReader(f, fi.Size())
	if err != nil {
		return 0, err
	}
	return r.NumPage(), nil
}
