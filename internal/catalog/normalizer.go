// Package catalog joins raw catalog objects and inventory into the
// storefront product list.
package catalog

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"catalogsync/internal/models"
)

// Index partitions one run's raw objects by kind. Later duplicates of an id
// replace earlier ones, including a variation's parent item.
type Index struct {
	items        []string
	byID         map[string]models.CatalogObject
	variationIDs []string

	// grouped from the final byID on first use; nil after every Add.
	variationsByItem map[string][]string
}

func NewIndex() *Index {
	return &Index{
		byID: make(map[string]models.CatalogObject),
	}
}

// BuildIndex is a convenience for indexing an already collected slice.
func BuildIndex(objs []models.CatalogObject) *Index {
	ix := NewIndex()
	for _, obj := range objs {
		ix.Add(obj)
	}
	return ix
}

func (ix *Index) Add(obj models.CatalogObject) {
	if obj.ID == "" {
		return
	}
	_, dup := ix.byID[obj.ID]
	ix.byID[obj.ID] = obj
	ix.variationsByItem = nil
	if dup {
		return
	}

	switch obj.Kind {
	case models.KindItem:
		ix.items = append(ix.items, obj.ID)
	case models.KindItemVariation:
		ix.variationIDs = append(ix.variationIDs, obj.ID)
	}
}

// variations returns the variation ids whose final copy names itemID as
// parent, in first-seen order.
func (ix *Index) variations(itemID string) []string {
	if ix.variationsByItem == nil {
		ix.variationsByItem = make(map[string][]string)
		for _, vid := range ix.variationIDs {
			v, ok := ix.byID[vid].AsVariation()
			if !ok || v.ItemID == "" {
				continue
			}
			ix.variationsByItem[v.ItemID] = append(ix.variationsByItem[v.ItemID], vid)
		}
	}
	return ix.variationsByItem[itemID]
}

// VariationIDs lists every variation seen, for the inventory lookup.
func (ix *Index) VariationIDs() []string {
	return append([]string(nil), ix.variationIDs...)
}

func (ix *Index) Len() int {
	return len(ix.byID)
}

func (ix *Index) imageURL(imageID string) *string {
	if imageID == "" {
		return nil
	}
	obj, ok := ix.byID[imageID]
	if !ok {
		return nil
	}
	img, ok := obj.AsImage()
	if !ok || img.URL == "" {
		return nil
	}
	url := img.URL
	return &url
}

// Stats counts why items did not make it into the export.
type Stats struct {
	Items         int
	Deleted       int
	NotAtLocation int
	Unqualified   int
	Products      int
}

type Normalizer struct {
	locationID        string
	includeOutOfStock bool
	collator          *collate.Collator
}

func NewNormalizer(locationID string, includeOutOfStock bool) *Normalizer {
	return &Normalizer{
		locationID:        locationID,
		includeOutOfStock: includeOutOfStock,
		collator:          collate.New(language.English),
	}
}

// Normalize builds the ordered product list. Items without a name or
// without a surviving SKU are dropped, not reported as errors. Inventory ids
// missing from counts are treated as zero stock.
func (n *Normalizer) Normalize(ix *Index, counts map[string]int64) ([]models.Product, Stats) {
	var stats Stats
	products := make([]models.Product, 0, len(ix.items))

	for _, id := range ix.items {
		obj := ix.byID[id]
		item, ok := obj.AsItem()
		if !ok {
			continue
		}
		stats.Items++
		if obj.Deleted {
			stats.Deleted++
			continue
		}
		if !obj.PresentAt(n.locationID) {
			stats.NotAtLocation++
			continue
		}

		product, ok := n.product(ix, obj.ID, item, counts)
		if !ok {
			stats.Unqualified++
			continue
		}
		products = append(products, product)
	}

	n.sort(products)
	stats.Products = len(products)
	return products, stats
}

func (n *Normalizer) product(ix *Index, itemID string, item *models.ItemData, counts map[string]int64) (models.Product, bool) {
	name := strings.TrimSpace(item.Name)
	if name == "" {
		return models.Product{}, false
	}

	var (
		skus     []models.SKU
		minPrice models.Money
	)
	for _, vid := range ix.variations(itemID) {
		obj := ix.byID[vid]
		v, ok := obj.AsVariation()
		if !ok || obj.Deleted || !obj.PresentAt(n.locationID) || v.Price == nil {
			continue
		}

		available := counts[vid]
		if available < 0 {
			available = 0
		}
		if available == 0 && !n.includeOutOfStock {
			continue
		}

		sku := v.SKU
		if sku == "" {
			sku = vid
		}
		skus = append(skus, models.SKU{
			ID:        vid,
			Name:      v.Name,
			SKU:       sku,
			Price:     *v.Price,
			Available: available,
		})
		if len(skus) == 1 || v.Price.Less(minPrice) {
			minPrice = *v.Price
		}
	}
	if len(skus) == 0 {
		return models.Product{}, false
	}

	return models.Product{
		ID:          itemID,
		Name:        name,
		Description: item.Description,
		ImageURL:    ix.imageURL(item.ImageID),
		MinPrice:    minPrice,
		SKUs:        skus,
	}, true
}

// sort orders by collated name; ids break ties so output is stable.
func (n *Normalizer) sort(products []models.Product) {
	sort.SliceStable(products, func(i, j int) bool {
		if c := n.collator.CompareString(products[i].Name, products[j].Name); c != 0 {
			return c < 0
		}
		return products[i].ID < products[j].ID
	})
}
