package square

import (
	"context"
	"iter"
	"net/http"
	"net/url"
	"strings"

	"catalogsync/internal/models"
	apperrors "catalogsync/pkg/errors"
)

const opListCatalog = "list catalog"

// DefaultKinds are the object kinds the storefront export needs.
var DefaultKinds = []models.ObjectKind{models.KindItem, models.KindItemVariation, models.KindImage}

// ListCatalogPage fetches one page of catalog objects.
func (c *Client) ListCatalogPage(ctx context.Context, cursor string, kinds []models.ObjectKind) (*ListCatalogResponse, error) {
	types := make([]string, len(kinds))
	for i, k := range kinds {
		types[i] = string(k)
	}
	q := url.Values{}
	q.Set("types", strings.Join(types, ","))
	if cursor != "" {
		q.Set("cursor", cursor)
	}

	var page ListCatalogResponse
	if err := c.do(ctx, opListCatalog, http.MethodGet, "/v2/catalog/list", q, nil, &page); err != nil {
		return nil, err
	}
	if len(page.Errors) > 0 {
		return nil, &apperrors.TransportError{Op: opListCatalog, Detail: formatAPIErrors(page.Errors)}
	}
	return &page, nil
}

// Catalog walks every page of the catalog, one request at a time, and
// yields each object of a known kind. The walk stops at the first error,
// which is yielded once. A cursor seen twice is a protocol violation.
// Each call starts again from the first page.
func (c *Client) Catalog(ctx context.Context, kinds ...models.ObjectKind) iter.Seq2[models.CatalogObject, error] {
	if len(kinds) == 0 {
		kinds = DefaultKinds
	}
	transformer := NewTransformer()

	return func(yield func(models.CatalogObject, error) bool) {
		seen := make(map[string]bool)
		cursor := ""
		pages := 0
		for {
			page, err := c.ListCatalogPage(ctx, cursor, kinds)
			if err != nil {
				yield(models.CatalogObject{}, err)
				return
			}
			pages++

			for _, raw := range page.Objects {
				obj, ok := transformer.TransformObject(raw)
				if !ok {
					c.logger.Debug("skipping catalog object %s of type %q", raw.ID, raw.Type)
					continue
				}
				if !yield(obj, nil) {
					return
				}
			}

			if page.Cursor == "" {
				c.logger.Debug("catalog walk finished after %d page(s)", pages)
				return
			}
			if seen[page.Cursor] {
				yield(models.CatalogObject{}, &apperrors.TransportError{Op: opListCatalog, Err: apperrors.ErrCursorLoop})
				return
			}
			seen[page.Cursor] = true
			cursor = page.Cursor
		}
	}
}
