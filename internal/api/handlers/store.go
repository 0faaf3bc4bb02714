package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"time"

	"catalogsync/internal/models"
)

// ErrNotExported is returned while the artifact has not been written yet.
var ErrNotExported = errors.New("catalog has not been exported yet")

// CatalogStore serves the exported artifact from disk, re-reading it only
// when its modification time changes.
type CatalogStore struct {
	path string

	mu      sync.Mutex
	modTime time.Time
	size    int64
	export  *models.CatalogExport
}

func NewCatalogStore(path string) *CatalogStore {
	return &CatalogStore{path: path}
}

func (s *CatalogStore) Path() string {
	return s.path
}

// Load returns the current export.
func (s *CatalogStore) Load() (*models.CatalogExport, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotExported
		}
		return nil, fmt.Errorf("stat artifact: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.export != nil && info.ModTime().Equal(s.modTime) && info.Size() == s.size {
		return s.export, nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}
	var exp models.CatalogExport
	if err := json.Unmarshal(data, &exp); err != nil {
		return nil, fmt.Errorf("decode artifact: %w", err)
	}

	s.export = &exp
	s.modTime = info.ModTime()
	s.size = info.Size()
	return s.export, nil
}
