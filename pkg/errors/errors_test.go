package errors

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigurationErrorListsEveryViolation(t *testing.T) {
	err := &ConfigurationError{Violations: []string{"missing A", "missing B"}}
	assert.Equal(t, "invalid configuration: missing A; missing B", err.Error())
}

func TestTransportErrorUnwrapAndHint(t *testing.T) {
	err := fmt.Errorf("sync: %w", &TransportError{Op: "list catalog", StatusCode: http.StatusUnauthorized, Detail: "token invalid"})

	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.Contains(t, te.Error(), "status 401")
	assert.Contains(t, te.Hint(), "production vs sandbox")

	loop := &TransportError{Op: "list catalog", Err: ErrCursorLoop}
	assert.ErrorIs(t, loop, ErrCursorLoop)
	assert.Empty(t, loop.Hint())
}

func TestWriteErrorNamesDestination(t *testing.T) {
	err := &WriteError{Destination: "b.json", Succeeded: []string{"a.json"}, Err: io.ErrShortWrite}
	assert.Contains(t, err.Error(), "write b.json")
	assert.Contains(t, err.Error(), "already written: a.json")
	assert.ErrorIs(t, err, io.ErrShortWrite)
}

func TestInventoryLookupErrorUnwrap(t *testing.T) {
	err := &InventoryLookupError{Batch: 2, Size: 50, Err: io.EOF}
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, "inventory batch 2 (50 ids): EOF", err.Error())
}
