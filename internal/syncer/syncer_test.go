package syncer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalogsync/internal/config"
	"catalogsync/internal/events"
	"catalogsync/internal/logger"
	"catalogsync/internal/models"
	apperrors "catalogsync/pkg/errors"
)

const teeCatalog = `{"objects":[
	{"type":"ITEM","id":"I1","present_at_location_ids":["L1"],"item_data":{"name":"Tee","description":"Soft","image_ids":["IMG1"]}},
	{"type":"ITEM_VARIATION","id":"V1","item_variation_data":{"item_id":"I1","name":"Regular","sku":"TEE-R","price_money":{"amount":2500,"currency":"USD"}}},
	{"type":"IMAGE","id":"IMG1","image_data":{"url":"https://img/tee.png"}}
]}`

const unpricedCatalog = `{"objects":[
	{"type":"ITEM","id":"I1","item_data":{"name":"Tee"}},
	{"type":"ITEM_VARIATION","id":"V1","item_variation_data":{"item_id":"I1","name":"Regular"}}
]}`

type upstream struct {
	catalog        string
	catalogStatus  int
	inventoryFails bool
}

func (u upstream) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v2/catalog/list":
			if u.catalogStatus != 0 {
				w.WriteHeader(u.catalogStatus)
				fmt.Fprint(w, `{"errors":[{"category":"AUTHENTICATION_ERROR","detail":"unauthorized"}]}`)
				return
			}
			fmt.Fprint(w, u.catalog)
		case "/v2/inventory/counts/batch-retrieve":
			if u.inventoryFails {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			fmt.Fprint(w, `{"counts":[{"catalog_object_id":"V1","state":"IN_STOCK","location_id":"L1","quantity":"5"}]}`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}
}

func newSyncer(t *testing.T, u upstream, strict, includeOOS bool) (*Syncer, string, *events.Recorder) {
	t.Helper()
	srv := httptest.NewServer(u.handler(t))
	t.Cleanup(srv.Close)

	out := filepath.Join(t.TempDir(), "site", "data", "products.json")
	cfg := &config.Config{
		Square: config.SquareConfig{
			AccessToken: "EAAAtest",
			LocationID:  "L1",
			Environment: config.Sandbox,
			APIVersion:  config.DefaultAPIVersion,
			BaseURL:     srv.URL,
			Timeout:     5 * time.Second,
		},
		Sync: config.SyncConfig{
			Strict:               strict,
			IncludeOutOfStock:    includeOOS,
			Outputs:              []string{out},
			InventoryConcurrency: 2,
		},
	}
	log := logger.NewNop()
	deps := DefaultDeps(cfg, "run-1", log)
	rec := &events.Recorder{}
	deps.Publisher = rec

	s := New(cfg, "run-1", deps, log)
	s.now = func() time.Time { return time.Date(2024, 8, 21, 0, 0, 0, 0, time.UTC) }
	return s, out, rec
}

func readExport(t *testing.T, path string) models.CatalogExport {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var exp models.CatalogExport
	require.NoError(t, json.Unmarshal(data, &exp))
	return exp
}

func TestRunExportsStockedItem(t *testing.T) {
	s, out, rec := newSyncer(t, upstream{catalog: teeCatalog}, true, false)

	report, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, report.Objects)
	require.Len(t, report.Results, 1)

	exp := readExport(t, out)
	assert.Equal(t, "square", exp.Meta.Source)
	assert.Equal(t, "L1", exp.Meta.LocationID)
	assert.Equal(t, "sandbox", exp.Meta.Environment)
	assert.Equal(t, 1, exp.Meta.ItemCount)
	require.Len(t, exp.Items, 1)

	p := exp.Items[0]
	assert.Equal(t, "Tee", p.Name)
	assert.Equal(t, "Soft", p.Description)
	require.NotNil(t, p.ImageURL)
	assert.Equal(t, "https://img/tee.png", *p.ImageURL)
	assert.Equal(t, models.NewMoney(2500, "USD"), p.MinPrice)
	require.Len(t, p.SKUs, 1)
	assert.EqualValues(t, 5, p.SKUs[0].Available)
	assert.Equal(t, "TEE-R", p.SKUs[0].SKU)

	require.Len(t, rec.Events, 1)
	assert.Equal(t, events.TypeCatalogExported, rec.Events[0].Type)
	assert.Equal(t, "run-1", rec.Events[0].RunID)
	assert.Equal(t, 1, rec.Events[0].ItemCount)
	assert.Equal(t, []string{out}, rec.Events[0].Destinations)
}

func TestRunIsIdempotent(t *testing.T) {
	s, out, _ := newSyncer(t, upstream{catalog: teeCatalog}, true, false)

	_, err := s.Run(context.Background())
	require.NoError(t, err)
	first, err := json.Marshal(readExport(t, out).Items)
	require.NoError(t, err)

	s.now = time.Now
	_, err = s.Run(context.Background())
	require.NoError(t, err)
	second, err := json.Marshal(readExport(t, out).Items)
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
}

func TestRunStrictRefusesEmptyCatalog(t *testing.T) {
	s, out, rec := newSyncer(t, upstream{catalog: unpricedCatalog}, true, true)

	_, err := s.Run(context.Background())
	var empty *apperrors.EmptyCatalogError
	require.True(t, errors.As(err, &empty))
	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr))
	assert.Empty(t, rec.Events)
}

func TestRunNonStrictWritesEmptyCatalog(t *testing.T) {
	s, out, _ := newSyncer(t, upstream{catalog: unpricedCatalog}, false, true)

	_, err := s.Run(context.Background())
	require.NoError(t, err)
	exp := readExport(t, out)
	assert.Empty(t, exp.Items)
	assert.Equal(t, 0, exp.Meta.ItemCount)
}

func TestRunTransportFailureAborts(t *testing.T) {
	s, out, _ := newSyncer(t, upstream{catalogStatus: http.StatusUnauthorized}, true, true)

	_, err := s.Run(context.Background())
	var te *apperrors.TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, http.StatusUnauthorized, te.StatusCode)
	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRunInventoryFailureDegrades(t *testing.T) {
	// Without inventory nothing is in stock, so only include-out-of-stock
	// keeps the item.
	s, _, _ := newSyncer(t, upstream{catalog: teeCatalog, inventoryFails: true}, true, false)
	_, err := s.Run(context.Background())
	var empty *apperrors.EmptyCatalogError
	require.True(t, errors.As(err, &empty))

	s, out, _ := newSyncer(t, upstream{catalog: teeCatalog, inventoryFails: true}, true, true)
	_, err = s.Run(context.Background())
	require.NoError(t, err)
	exp := readExport(t, out)
	require.Len(t, exp.Items, 1)
	assert.EqualValues(t, 0, exp.Items[0].SKUs[0].Available)
}

func TestRunPublishFailureIsNotFatal(t *testing.T) {
	s, out, rec := newSyncer(t, upstream{catalog: teeCatalog}, true, false)
	rec.Err = errors.New("broker down")

	_, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, readExport(t, out).Items, 1)
}
