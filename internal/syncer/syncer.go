package syncer

import (
	"context"
	"fmt"
	"iter"
	"time"

	"catalogsync/internal/catalog"
	"catalogsync/internal/config"
	"catalogsync/internal/events"
	"catalogsync/internal/export"
	"catalogsync/internal/logger"
	"catalogsync/internal/models"
	"catalogsync/internal/services/square"
)

type CatalogSource interface {
	Catalog(ctx context.Context, kinds ...models.ObjectKind) iter.Seq2[models.CatalogObject, error]
}

type InventorySource interface {
	Resolve(ctx context.Context, ids []string) map[string]int64
}

type CatalogWriter interface {
	Write(ctx context.Context, exp *models.CatalogExport) ([]export.Result, error)
}

type Deps struct {
	Source    CatalogSource
	Inventory InventorySource
	Writer    CatalogWriter
	Publisher events.Publisher
}

// DefaultDeps wires the Square client, file/database writer and kafka
// publisher from configuration.
func DefaultDeps(cfg *config.Config, runID string, log *logger.Logger) Deps {
	client := square.NewClient(cfg.Square, log)
	return Deps{
		Source:    client,
		Inventory: square.NewInventoryResolver(client, cfg.Square.LocationID, cfg.Sync.InventoryConcurrency, log),
		Writer:    export.NewWriter(cfg.Sync.Strict, export.ParseDestinations(cfg.Sync.Outputs, runID), log),
		Publisher: events.New(cfg.Kafka),
	}
}

type Syncer struct {
	cfg    *config.Config
	deps   Deps
	runID  string
	logger *logger.Logger
	now    func() time.Time
}

// Report summarizes a successful run.
type Report struct {
	RunID   string
	Objects int
	Stats   catalog.Stats
	Export  *models.CatalogExport
	Results []export.Result
}

func New(cfg *config.Config, runID string, deps Deps, log *logger.Logger) *Syncer {
	if deps.Publisher == nil {
		deps.Publisher = events.Nop{}
	}
	return &Syncer{
		cfg:    cfg,
		deps:   deps,
		runID:  runID,
		logger: log,
		now:    time.Now,
	}
}

// Run performs one full export. Catalog read failures and write failures
// abort the run; inventory problems only degrade stock figures; event
// publication failures are logged.
func (s *Syncer) Run(ctx context.Context) (*Report, error) {
	ix := catalog.NewIndex()
	objects := 0
	for obj, err := range s.deps.Source.Catalog(ctx, square.DefaultKinds...) {
		if err != nil {
			return nil, fmt.Errorf("fetch catalog: %w", err)
		}
		objects++
		ix.Add(obj)
	}
	s.logger.Info("fetched %d catalog object(s)", objects)

	variationIDs := ix.VariationIDs()
	counts := s.deps.Inventory.Resolve(ctx, variationIDs)
	s.logger.Info("inventory resolved for %d of %d variation(s)", len(counts), len(variationIDs))

	normalizer := catalog.NewNormalizer(s.cfg.Square.LocationID, s.cfg.Sync.IncludeOutOfStock)
	products, stats := normalizer.Normalize(ix, counts)
	s.logger.Info("normalized %d product(s) from %d item(s): deleted=%d not_at_location=%d unqualified=%d",
		stats.Products, stats.Items, stats.Deleted, stats.NotAtLocation, stats.Unqualified)

	exp := models.NewCatalogExport(s.cfg.Square.LocationID, string(s.cfg.Square.Environment), s.now(), products)

	results, err := s.deps.Writer.Write(ctx, exp)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, exp, results)

	return &Report{
		RunID:   s.runID,
		Objects: objects,
		Stats:   stats,
		Export:  exp,
		Results: results,
	}, nil
}

func (s *Syncer) publish(ctx context.Context, exp *models.CatalogExport, results []export.Result) {
	destinations := make([]string, len(results))
	for i, r := range results {
		destinations[i] = r.Destination
	}
	err := s.deps.Publisher.Publish(ctx, events.Event{
		Type:         events.TypeCatalogExported,
		RunID:        s.runID,
		LocationID:   exp.Meta.LocationID,
		Environment:  exp.Meta.Environment,
		ExportedAt:   exp.Meta.ExportedAt,
		ItemCount:    exp.Meta.ItemCount,
		Destinations: destinations,
	})
	if err != nil {
		s.logger.Warn("export event not published: %v", err)
	}
}
