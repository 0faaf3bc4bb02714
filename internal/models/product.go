package models

import (
	"time"
)

const ExportSource = "square"

// SKU is a purchasable variation of a product.
type SKU struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	SKU       string `json:"sku"`
	Price     Money  `json:"price"`
	Available int64  `json:"available"`
}

// Product is the storefront view of a catalog item. Products always carry
// a non-empty name and at least one SKU.
type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	ImageURL    *string `json:"imageUrl"`
	MinPrice    Money   `json:"minPrice"`
	SKUs        []SKU   `json:"skus"`
}

func (p Product) InStock() bool {
	for _, s := range p.SKUs {
		if s.Available > 0 {
			return true
		}
	}
	return false
}

type ExportMeta struct {
	Source      string    `json:"source"`
	LocationID  string    `json:"locationId"`
	Environment string    `json:"environment"`
	ExportedAt  time.Time `json:"exportedAt"`
	ItemCount   int       `json:"itemCount"`
}

// CatalogExport is the artifact consumed by the storefront.
type CatalogExport struct {
	Meta  ExportMeta `json:"_meta"`
	Items []Product  `json:"items"`
}

// NewCatalogExport stamps metadata for the given products. Items is never nil
// so an empty catalog still serializes as [].
func NewCatalogExport(locationID, environment string, exportedAt time.Time, items []Product) *CatalogExport {
	if items == nil {
		items = []Product{}
	}
	return &CatalogExport{
		Meta: ExportMeta{
			Source:      ExportSource,
			LocationID:  locationID,
			Environment: environment,
			ExportedAt:  exportedAt.UTC().Truncate(time.Millisecond),
			ItemCount:   len(items),
		},
		Items: items,
	}
}

func (e *CatalogExport) Find(id string) (Product, bool) {
	for _, p := range e.Items {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}
