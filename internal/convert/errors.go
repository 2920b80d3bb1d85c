// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import "errors"

// Kind classifies a conversion failure by the stage that produced it.
type Kind int

const (
	KindUnknown Kind = iota
	// KindUsage is a wrong command-line invocation.
	KindUsage
	// KindConfig is missing or invalid configuration, e.g. no API key.
	KindConfig
	// KindInput means the PDF path does not name an existing file.
	KindInput
	// KindProvider covers upload, URL signing, and OCR failures.
	KindProvider
	// KindIO is a failure creating directories or writing files.
	KindIO
	// KindDecode means an image payload is not valid base64.
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindUsage:
		return "usage"
	case KindConfig:
		return "config"
	case KindInput:
		return "input"
	case KindProvider:
		return "provider"
	case KindIO:
		return "io"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// Error is a failure tagged with its Kind and the pipeline step (Op) that
// produced it. Its message is the wrapped error's message.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string { return e.Err.Error() }

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind of the first *Error in err's chain, or
// KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}
