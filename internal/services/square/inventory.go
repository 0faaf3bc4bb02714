package square

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"catalogsync/internal/logger"
	apperrors "catalogsync/pkg/errors"
)

const (
	opBatchRetrieveCounts = "batch retrieve inventory counts"

	// InventoryBatchSize is Square's documented maximum ids per call.
	InventoryBatchSize = 50
)

// CountFetcher is the single upstream call the resolver needs.
type CountFetcher interface {
	BatchRetrieveCounts(ctx context.Context, req BatchRetrieveCountsRequest) (*BatchRetrieveCountsResponse, error)
}

func (c *Client) BatchRetrieveCounts(ctx context.Context, req BatchRetrieveCountsRequest) (*BatchRetrieveCountsResponse, error) {
	var resp BatchRetrieveCountsResponse
	if err := c.do(ctx, opBatchRetrieveCounts, http.MethodPost, "/v2/inventory/counts/batch-retrieve", nil, req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Errors) > 0 {
		return nil, &apperrors.TransportError{Op: opBatchRetrieveCounts, Detail: formatAPIErrors(resp.Errors)}
	}
	return &resp, nil
}

// InventoryResolver maps variation ids to in-stock quantities at one
// location. Failures are logged and never returned: whatever was collected
// is handed back and missing ids read as zero.
type InventoryResolver struct {
	fetcher     CountFetcher
	locationID  string
	concurrency int
	logger      *logger.Logger
}

func NewInventoryResolver(fetcher CountFetcher, locationID string, concurrency int, logger *logger.Logger) *InventoryResolver {
	if concurrency < 1 {
		concurrency = 1
	}
	return &InventoryResolver{
		fetcher:     fetcher,
		locationID:  locationID,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Resolve splits ids into batches of InventoryBatchSize and runs up to
// concurrency batches at once. The result does not depend on completion
// order: rows are summed per id.
func (r *InventoryResolver) Resolve(ctx context.Context, ids []string) map[string]int64 {
	counts := make(map[string]int64)
	batches := batchIDs(ids, InventoryBatchSize)
	if len(batches) == 0 {
		return counts
	}

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		failed int
	)
	sem := make(chan struct{}, r.concurrency)

	for i, batch := range batches {
		wg.Add(1)
		sem <- struct{}{}
		go func(index int, batch []string) {
			defer wg.Done()
			defer func() { <-sem }()

			partial, err := r.fetchBatch(ctx, batch)

			mu.Lock()
			defer mu.Unlock()
			for id, qty := range partial {
				counts[id] += qty
			}
			if err != nil {
				failed++
				lookupErr := &apperrors.InventoryLookupError{Batch: index + 1, Size: len(batch), Err: err}
				r.logger.Warn("inventory lookup degraded: %v", lookupErr)
			}
		}(i, batch)
	}
	wg.Wait()

	if failed > 0 {
		r.logger.Warn("inventory: %d of %d batch(es) failed; missing variations count as out of stock", failed, len(batches))
	}
	r.logger.Debug("inventory: resolved %d variation(s) across %d batch(es)", len(counts), len(batches))
	return counts
}

// fetchBatch follows the per-batch cursor. Rows gathered before an error are
// returned alongside it.
func (r *InventoryResolver) fetchBatch(ctx context.Context, ids []string) (map[string]int64, error) {
	out := make(map[string]int64)
	seen := make(map[string]bool)
	req := BatchRetrieveCountsRequest{
		CatalogObjectIDs: ids,
		LocationIDs:      []string{r.locationID},
		States:           []string{StateInStock},
	}

	for {
		resp, err := r.fetcher.BatchRetrieveCounts(ctx, req)
		if err != nil {
			return out, err
		}
		for _, row := range resp.Counts {
			if !strings.EqualFold(row.State, StateInStock) {
				continue
			}
			if row.LocationID != "" && row.LocationID != r.locationID {
				continue
			}
			id := row.CatalogObjectID
			if id == "" {
				id = row.CatalogObjectIDCamel
			}
			if id == "" {
				continue
			}
			out[id] += parseQuantity(row.Quantity.String())
		}

		if resp.Cursor == "" {
			return out, nil
		}
		if seen[resp.Cursor] {
			return out, apperrors.ErrCursorLoop
		}
		seen[resp.Cursor] = true
		req.Cursor = resp.Cursor
	}
}

// parseQuantity truncates Square's decimal quantity strings to whole units
// and clamps negatives to zero.
func parseQuantity(raw string) int64 {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	qty := d.IntPart()
	if qty < 0 {
		return 0
	}
	return qty
}

// batchIDs deduplicates and sorts ids so batching is stable across runs.
func batchIDs(ids []string, size int) [][]string {
	seen := make(map[string]bool, len(ids))
	unique := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		unique = append(unique, id)
	}
	sort.Strings(unique)

	var batches [][]string
	for start := 0; start < len(unique); start += size {
		end := start + size
		if end > len(unique) {
			end = len(unique)
		}
		batches = append(batches, unique[start:end])
	}
	return batches
}
