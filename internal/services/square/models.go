package square

import "encoding/json"

// Wire shapes. Square's HTTP API uses snake_case while its SDKs hand back
// camelCase, and older exports mixed both; each field that has been seen
// under two names carries both tags and is reconciled in transformer.go.

// ListCatalogResponse is the body of GET /v2/catalog/list.
type ListCatalogResponse struct {
	Objects []RawObject `json:"objects"`
	Cursor  string      `json:"cursor"`
	Errors  []APIError  `json:"errors"`
}

// APIError is one entry of Square's errors array.
type APIError struct {
	Category string `json:"category"`
	Code     string `json:"code"`
	Detail   string `json:"detail"`
	Field    string `json:"field"`
}

type RawObject struct {
	Type string `json:"type"`
	ID   string `json:"id"`

	IsDeleted      bool `json:"is_deleted"`
	IsDeletedCamel bool `json:"isDeleted"`

	PresentAtLocationIDs      []string `json:"present_at_location_ids"`
	PresentAtLocationIDsCamel []string `json:"presentAtLocationIds"`
	AbsentAtLocationIDs       []string `json:"absent_at_location_ids"`
	AbsentAtLocationIDsCamel  []string `json:"absentAtLocationIds"`

	ItemData               *RawItemData      `json:"item_data"`
	ItemDataCamel          *RawItemData      `json:"itemData"`
	ItemVariationData      *RawVariationData `json:"item_variation_data"`
	ItemVariationDataCamel *RawVariationData `json:"itemVariationData"`
	ImageData              *RawImageData     `json:"image_data"`
	ImageDataCamel         *RawImageData     `json:"imageData"`

	// Some exports put the primary image id on the object itself.
	ImageID      string `json:"image_id"`
	ImageIDCamel string `json:"imageId"`
}

type RawItemData struct {
	Name                 string   `json:"name"`
	Description          string   `json:"description"`
	DescriptionHTML      string   `json:"description_html"`
	DescriptionHTMLCamel string   `json:"descriptionHtml"`
	ImageIDs             []string `json:"image_ids"`
	ImageIDsCamel        []string `json:"imageIds"`
	ImageID              string   `json:"image_id"`
	ImageIDCamel         string   `json:"imageId"`
}

type RawVariationData struct {
	ItemID          string    `json:"item_id"`
	ItemIDCamel     string    `json:"itemId"`
	Name            string    `json:"name"`
	SKU             string    `json:"sku"`
	PriceMoney      *RawMoney `json:"price_money"`
	PriceMoneyCamel *RawMoney `json:"priceMoney"`
}

// RawMoney accepts the amount as a JSON number or a numeric string, and the
// nested amount_money form.
type RawMoney struct {
	Amount           json.Number `json:"amount"`
	Currency         string      `json:"currency"`
	AmountMoney      *RawMoney   `json:"amount_money"`
	AmountMoneyCamel *RawMoney   `json:"amountMoney"`
}

type RawImageData struct {
	URL  string `json:"url"`
	Name string `json:"name"`
}

// BatchRetrieveCountsRequest is the body of
// POST /v2/inventory/counts/batch-retrieve.
type BatchRetrieveCountsRequest struct {
	CatalogObjectIDs []string `json:"catalog_object_ids"`
	LocationIDs      []string `json:"location_ids"`
	States           []string `json:"states,omitempty"`
	Cursor           string   `json:"cursor,omitempty"`
}

type BatchRetrieveCountsResponse struct {
	Counts []InventoryCount `json:"counts"`
	Cursor string           `json:"cursor"`
	Errors []APIError       `json:"errors"`
}

type InventoryCount struct {
	CatalogObjectID      string      `json:"catalog_object_id"`
	CatalogObjectIDCamel string      `json:"catalogObjectId"`
	State                string      `json:"state"`
	LocationID           string      `json:"location_id"`
	Quantity             json.Number `json:"quantity"`
}

const StateInStock = "IN_STOCK"
