package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"catalogsync/internal/logger"
	"catalogsync/internal/models"
	apperrors "catalogsync/pkg/errors"
)

type Writer struct {
	strict       bool
	destinations []Destination
	logger       *logger.Logger
}

// Result reports one successful destination write.
type Result struct {
	Destination string
	Bytes       int
}

func NewWriter(strict bool, destinations []Destination, logger *logger.Logger) *Writer {
	return &Writer{
		strict:       strict,
		destinations: destinations,
		logger:       logger,
	}
}

// Marshal renders the artifact: two-space indent, trailing newline.
func Marshal(exp *models.CatalogExport) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(exp); err != nil {
		return nil, fmt.Errorf("failed to marshal catalog: %w", err)
	}
	return buf.Bytes(), nil
}

// Write sends the same payload to every destination in order. In strict mode
// an empty catalog is refused before any destination is touched. The first
// failing destination stops the run with a WriteError.
func (w *Writer) Write(ctx context.Context, exp *models.CatalogExport) ([]Result, error) {
	if len(w.destinations) == 0 {
		return nil, &apperrors.WriteError{Destination: "(none)", Err: fmt.Errorf("no output destinations configured")}
	}
	if w.strict && len(exp.Items) == 0 {
		return nil, &apperrors.EmptyCatalogError{}
	}

	payload, err := Marshal(exp)
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(w.destinations))
	var succeeded []string
	for _, dest := range w.destinations {
		if err := dest.Write(ctx, exp, payload); err != nil {
			w.logger.Error("write to %s failed: %v", dest.Name(), err)
			return results, &apperrors.WriteError{Destination: dest.Name(), Succeeded: succeeded, Err: err}
		}
		w.logger.Info("wrote %d item(s) to %s", len(exp.Items), dest.Name())
		succeeded = append(succeeded, dest.Name())
		results = append(results, Result{Destination: dest.Name(), Bytes: len(payload)})
	}
	return results, nil
}
