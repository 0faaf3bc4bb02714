package square

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"catalogsync/internal/models"
)

type Transformer struct{}

func NewTransformer() *Transformer {
	return &Transformer{}
}

// TransformObject converts a wire object into the tagged catalog object.
// Unknown kinds, and known kinds missing their payload, report false.
func (t *Transformer) TransformObject(raw RawObject) (models.CatalogObject, bool) {
	var obj models.CatalogObject
	switch models.ObjectKind(strings.ToUpper(raw.Type)) {
	case models.KindItem:
		data := firstNonNil(raw.ItemData, raw.ItemDataCamel)
		if data == nil {
			return obj, false
		}
		obj = models.NewItem(raw.ID, t.TransformItem(raw, data))
	case models.KindItemVariation:
		data := firstNonNil(raw.ItemVariationData, raw.ItemVariationDataCamel)
		if data == nil {
			return obj, false
		}
		obj = models.NewVariation(raw.ID, t.TransformVariation(data))
	case models.KindImage:
		data := firstNonNil(raw.ImageData, raw.ImageDataCamel)
		if data == nil {
			return obj, false
		}
		obj = models.NewImage(raw.ID, models.ImageData{URL: strings.TrimSpace(data.URL)})
	default:
		return obj, false
	}

	obj.Deleted = raw.IsDeleted || raw.IsDeletedCamel
	obj.PresentAtLocationIDs = firstNonEmpty(raw.PresentAtLocationIDs, raw.PresentAtLocationIDsCamel)
	obj.AbsentAtLocationIDs = firstNonEmpty(raw.AbsentAtLocationIDs, raw.AbsentAtLocationIDsCamel)
	return obj, true
}

// TransformItem prefers the HTML description and the first listed image.
func (t *Transformer) TransformItem(raw RawObject, data *RawItemData) models.ItemData {
	description := firstString(data.DescriptionHTML, data.DescriptionHTMLCamel, data.Description)

	imageID := ""
	if ids := firstNonEmpty(data.ImageIDs, data.ImageIDsCamel); len(ids) > 0 {
		imageID = ids[0]
	}
	imageID = firstString(imageID, data.ImageID, data.ImageIDCamel, raw.ImageID, raw.ImageIDCamel)

	return models.ItemData{
		Name:        data.Name,
		Description: description,
		ImageID:     imageID,
	}
}

func (t *Transformer) TransformVariation(data *RawVariationData) models.VariationData {
	return models.VariationData{
		ItemID: firstString(data.ItemID, data.ItemIDCamel),
		Name:   data.Name,
		SKU:    strings.TrimSpace(data.SKU),
		Price:  ReadPrice(firstNonNil(data.PriceMoney, data.PriceMoneyCamel)),
	}
}

var (
	maxMinor = decimal.NewFromInt(math.MaxInt64)
	minMinor = decimal.NewFromInt(math.MinInt64)
)

// ReadPrice returns nil when no usable amount is present or the amount does
// not fit in int64. Amounts are minor units; currency defaults to USD.
func ReadPrice(m *RawMoney) *models.Money {
	if m == nil {
		return nil
	}
	amount := m.Amount.String()
	currency := m.Currency
	if nested := firstNonNil(m.AmountMoney, m.AmountMoneyCamel); nested != nil {
		if amount == "" {
			amount = nested.Amount.String()
		}
		if currency == "" {
			currency = nested.Currency
		}
	}
	if strings.TrimSpace(amount) == "" {
		return nil
	}

	d, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return nil
	}
	d = d.Round(0)
	if d.GreaterThan(maxMinor) || d.LessThan(minMinor) {
		return nil
	}
	money := models.NewMoney(d.IntPart(), currency)
	return &money
}

func firstNonNil[T any](values ...*T) *T {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

func firstNonEmpty(values ...[]string) []string {
	for _, v := range values {
		if len(v) > 0 {
			return v
		}
	}
	return nil
}

func firstString(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
