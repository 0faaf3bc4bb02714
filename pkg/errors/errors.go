package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrCursorLoop is returned when the upstream hands back a continuation
// cursor that was already followed during the same walk.
var ErrCursorLoop = errors.New("upstream returned a cursor that was already seen")

// ConfigurationError lists every missing or invalid setting.
type ConfigurationError struct {
	Violations []string
}

func (e *ConfigurationError) Error() string {
	if len(e.Violations) == 0 {
		return "invalid configuration"
	}
	return "invalid configuration: " + strings.Join(e.Violations, "; ")
}

// TransportError is returned when a catalog page cannot be fetched.
type TransportError struct {
	Op         string
	StatusCode int
	Detail     string
	Err        error
}

func (e *TransportError) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	b.WriteString(" failed")
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, ": status %d", e.StatusCode)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Hint returns an operator-facing suggestion for well known failures.
func (e *TransportError) Hint() string {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return "401 Unauthorized: make sure the token matches the environment (production vs sandbox) and the app has Catalog Read and Inventory Read scopes"
	case http.StatusForbidden:
		return "403 Forbidden: the token is missing a required scope for this location"
	case http.StatusTooManyRequests:
		return "429 Too Many Requests: rate limited, retry the run later"
	}
	return ""
}

// InventoryLookupError describes a failed inventory batch. It never leaves
// the inventory resolver.
type InventoryLookupError struct {
	Batch int
	Size  int
	Err   error
}

func (e *InventoryLookupError) Error() string {
	return fmt.Sprintf("inventory batch %d (%d ids): %v", e.Batch, e.Size, e.Err)
}

func (e *InventoryLookupError) Unwrap() error {
	return e.Err
}

// EmptyCatalogError is returned in strict mode when nothing qualified.
type EmptyCatalogError struct{}

func (e *EmptyCatalogError) Error() string {
	return "strict mode: 0 items after filtering; refusing to write output"
}

// WriteError names the destination that could not be written.
type WriteError struct {
	Destination string
	Succeeded   []string
	Err         error
}

func (e *WriteError) Error() string {
	msg := fmt.Sprintf("write %s: %v", e.Destination, e.Err)
	if len(e.Succeeded) > 0 {
		msg += fmt.Sprintf(" (already written: %s)", strings.Join(e.Succeeded, ", "))
	}
	return msg
}

func (e *WriteError) Unwrap() error {
	return e.Err
}
