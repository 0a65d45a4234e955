package convert

import (
	"errors"
	"fmt"
)

// Kind classifies conversion failures for callers that render them directly.
type Kind string

const (
	// KindFileAccess marks a missing or unreadable input file.
	KindFileAccess Kind = "file_access"
	// KindUnsupportedFormat marks a target format outside the registry.
	KindUnsupportedFormat Kind = "unsupported_format"
	// KindConversion marks any failure during decode, transform, or encode.
	KindConversion Kind = "conversion"
)

// Error is a classified conversion failure. Underlying tool errors are
// carried as message text only; their concrete types never reach callers'
// output.
type Error struct {
	Kind    Kind   `json:"kind"`
	Path    string `json:"path"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error formats the failure for logs and UI.
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Path == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Kind, e.Path, e.Message)
}

// Unwrap exposes the underlying error for errors.Is / errors.As.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// KindOf returns the classification of err, defaulting to KindConversion
// for errors that did not originate here.
func KindOf(err error) Kind {
	var cerr *Error
	if errors.As(err, &cerr) {
		return cerr.Kind
	}
	return KindConversion
}
