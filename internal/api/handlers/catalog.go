package handlers

import (
	"errors"
	"net/http"
	"strings"

	"catalogsync/internal/logger"
	"catalogsync/internal/models"

	"github.com/gin-gonic/gin"
)

type CatalogHandler struct {
	store  *CatalogStore
	logger *logger.Logger
}

func NewCatalogHandler(store *CatalogStore, logger *logger.Logger) *CatalogHandler {
	return &CatalogHandler{
		store:  store,
		logger: logger,
	}
}

func (h *CatalogHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *CatalogHandler) Catalog(c *gin.Context) {
	exp, ok := h.load(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, exp)
}

func (h *CatalogHandler) List(c *gin.Context) {
	exp, ok := h.load(c)
	if !ok {
		return
	}

	search := strings.ToLower(strings.TrimSpace(c.Query("search")))
	inStock := c.Query("inStock") == "true"

	products := make([]models.Product, 0, len(exp.Items))
	for _, p := range exp.Items {
		if inStock && !p.InStock() {
			continue
		}
		if search != "" && !matches(p, search) {
			continue
		}
		products = append(products, p)
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  products,
		"total": len(products),
	})
}

func (h *CatalogHandler) Get(c *gin.Context) {
	exp, ok := h.load(c)
	if !ok {
		return
	}

	product, found := exp.Find(c.Param("id"))
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": product})
}

func (h *CatalogHandler) load(c *gin.Context) (*models.CatalogExport, bool) {
	exp, err := h.store.Load()
	if err == nil {
		return exp, true
	}
	if errors.Is(err, ErrNotExported) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return nil, false
	}
	h.logger.Error("load catalog %s: %v", h.store.Path(), err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load catalog"})
	return nil, false
}

// matches reports whether the lowercased query occurs in the product name,
// description or any SKU code.
func matches(p models.Product, query string) bool {
	if strings.Contains(strings.ToLower(p.Name), query) ||
		strings.Contains(strings.ToLower(p.Description), query) {
		return true
	}
	for _, s := range p.SKUs {
		if strings.Contains(strings.ToLower(s.SKU), query) {
			return true
		}
	}
	return false
}
