package models

// ObjectKind discriminates the catalog object variants.
type ObjectKind string

const (
	KindItem          ObjectKind = "ITEM"
	KindItemVariation ObjectKind = "ITEM_VARIATION"
	KindImage         ObjectKind = "IMAGE"
)

// CatalogObject is one raw record from the upstream catalog. Exactly one of
// the payload pointers matching Kind is set; use the As* accessors.
type CatalogObject struct {
	Kind                 ObjectKind
	ID                   string
	Deleted              bool
	PresentAtLocationIDs []string
	AbsentAtLocationIDs  []string

	item      *ItemData
	variation *VariationData
	image     *ImageData
}

type ItemData struct {
	Name        string
	Description string
	ImageID     string
}

type VariationData struct {
	ItemID string
	Name   string
	SKU    string
	// Price is nil when the variation has no fixed price.
	Price *Money
}

type ImageData struct {
	URL string
}

func NewItem(id string, data ItemData) CatalogObject {
	return CatalogObject{Kind: KindItem, ID: id, item: &data}
}

func NewVariation(id string, data VariationData) CatalogObject {
	return CatalogObject{Kind: KindItemVariation, ID: id, variation: &data}
}

func NewImage(id string, data ImageData) CatalogObject {
	return CatalogObject{Kind: KindImage, ID: id, image: &data}
}

func (o CatalogObject) AsItem() (*ItemData, bool) {
	if o.Kind != KindItem || o.item == nil {
		return nil, false
	}
	return o.item, true
}

func (o CatalogObject) AsVariation() (*VariationData, bool) {
	if o.Kind != KindItemVariation || o.variation == nil {
		return nil, false
	}
	return o.variation, true
}

func (o CatalogObject) AsImage() (*ImageData, bool) {
	if o.Kind != KindImage || o.image == nil {
		return nil, false
	}
	return o.image, true
}

// PresentAt applies the location scoping rule: a non-empty presence list
// must name the location, and the absence list must not.
func (o CatalogObject) PresentAt(locationID string) bool {
	if len(o.PresentAtLocationIDs) > 0 && !contains(o.PresentAtLocationIDs, locationID) {
		return false
	}
	return !contains(o.AbsentAtLocationIDs, locationID)
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
