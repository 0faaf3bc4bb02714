package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalogsync/internal/models"
)

func TestNewSQLiteCreatesDirectoryAndTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "catalog.db")
	db, err := New(SQLitePrefix + path)
	require.NoError(t, err)
	defer db.Close()

	rec := &models.ExportRecord{LocationID: "L1", Environment: "sandbox", ExportedAt: time.Now(), Payload: "{}"}
	require.NoError(t, db.DB.Create(rec).Error)
	assert.Len(t, rec.ID, 36)

	var count int64
	require.NoError(t, db.DB.Model(&models.ExportRecord{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestIsURL(t *testing.T) {
	assert.True(t, IsURL("sqlite://data/catalog.db"))
	assert.True(t, IsURL("postgres://u:p@localhost/db"))
	assert.True(t, IsURL("postgresql://localhost/db"))
	assert.False(t, IsURL("data/products.json"))
	assert.False(t, IsURL("/srv/site/products.json"))
}

func TestRedact(t *testing.T) {
	assert.Equal(t, "postgres://user:***@db:5432/app", Redact("postgres://user:secret@db:5432/app"))
	assert.Equal(t, "postgres://db/app", Redact("postgres://db/app"))
	assert.Equal(t, "sqlite://x.db", Redact("sqlite://x.db"))
}
