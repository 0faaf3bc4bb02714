package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"catalogsync/internal/database"
	"catalogsync/internal/models"
)

// Destination receives the serialized catalog.
type Destination interface {
	Name() string
	Write(ctx context.Context, exp *models.CatalogExport, payload []byte) error
}

// ParseDestinations classifies each destination string. Database URLs
// become DatabaseDestination; everything else is a file path.
func ParseDestinations(raw []string, runID string) []Destination {
	dests := make([]Destination, 0, len(raw))
	for _, r := range raw {
		if database.IsURL(r) {
			dests = append(dests, &DatabaseDestination{URL: r, RunID: runID})
			continue
		}
		dests = append(dests, &FileDestination{Path: r})
	}
	return dests
}

type FileDestination struct {
	Path string
}

func (d *FileDestination) Name() string {
	return d.Path
}

// Write creates missing parent directories and replaces the file through a
// rename so readers never observe a partial artifact.
func (d *FileDestination) Write(_ context.Context, _ *models.CatalogExport, payload []byte) error {
	abs, err := filepath.Abs(d.Path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(abs)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return fmt.Errorf("replace file: %w", err)
	}
	return nil
}

// DatabaseDestination stores the payload as one catalog_exports row.
type DatabaseDestination struct {
	URL   string
	RunID string
}

func (d *DatabaseDestination) Name() string {
	return database.Redact(d.URL)
}

func (d *DatabaseDestination) Write(ctx context.Context, exp *models.CatalogExport, payload []byte) error {
	db, err := database.New(d.URL)
	if err != nil {
		return err
	}
	defer db.Close()

	rec := &models.ExportRecord{
		RunID:       d.RunID,
		LocationID:  exp.Meta.LocationID,
		Environment: exp.Meta.Environment,
		ExportedAt:  exp.Meta.ExportedAt,
		ItemCount:   exp.Meta.ItemCount,
		Payload:     string(payload),
	}
	if err := db.DB.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("insert export: %w", err)
	}
	return nil
}

// FirstFile returns the path of the first file destination, if any.
func FirstFile(dests []Destination) (string, bool) {
	for _, d := range dests {
		if f, ok := d.(*FileDestination); ok {
			return f.Path, true
		}
	}
	return "", false
}
