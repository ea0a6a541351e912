package http

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/comparaprecos/backend/internal/domain"
	"github.com/comparaprecos/backend/internal/usecase"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	comparison   *usecase.ComparisonService
	storeClients map[string]domain.StoreClient
	cache        domain.CacheRepository
	cacheTTL     time.Duration
}

// NewHandler creates a new HTTP handler
func NewHandler(comparison *usecase.ComparisonService, storeClients map[string]domain.StoreClient, cacheRepo domain.CacheRepository, cacheTTL time.Duration) *Handler {
	return &Handler{
		comparison:   comparison,
		storeClients: storeClients,
		cache:        cacheRepo,
		cacheTTL:     cacheTTL,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "comparaprecos-backend",
		"version": "1.0.0",
	})
}

// CompareProducts runs one comparison over the three catalogs supplied in the
// request body and returns the matched groups, leftovers, and stats.
func (h *Handler) CompareProducts(c *gin.Context) {
	var input domain.ComparisonInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "invalid request body: " + err.Error(),
		})
		return
	}

	result, err := h.comparison.Compare(c.Request.Context(), &input)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrInvalidInput) {
			status = http.StatusBadRequest
		}
		log.Printf("[HTTP] comparison failed: %v", err)
		c.JSON(status, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":           true,
		"comparedProducts":  result.ComparedProducts,
		"unmatchedProducts": result.UnmatchedProducts,
		"stats":             result.Stats,
	})
}

// ScrapeStore fetches the live catalog for one store, serving from the scrape
// cache when the same query was seen recently.
func (h *Handler) ScrapeStore(c *gin.Context) {
	storeName := c.Param("store")
	client, ok := h.storeClients[storeName]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   domain.ErrUnknownStore.Error() + ": " + storeName,
		})
		return
	}

	query := domain.ScrapeQuery{
		Search:        c.Query("search"),
		CategoryID:    c.Query("category"),
		PromotionOnly: c.Query("promotion") == "true",
	}
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil && limit > 0 {
		query.Limit = limit
	}

	cacheKey := scrapeCacheKey(storeName, query)
	if cached, err := h.cache.Get(c.Request.Context(), cacheKey); err == nil {
		if products, ok := cached.([]domain.StoreProduct); ok {
			c.JSON(http.StatusOK, gin.H{
				"success":  true,
				"store":    storeName,
				"products": products,
				"cached":   true,
			})
			return
		}
	}

	products, err := client.FetchProducts(c.Request.Context(), query)
	if err != nil {
		log.Printf("[HTTP] scrape %s failed: %v", storeName, err)
		c.JSON(http.StatusBadGateway, gin.H{
			"success": false,
			"error":   "store fetch failed: " + err.Error(),
		})
		return
	}

	if err := h.cache.Set(c.Request.Context(), cacheKey, products, h.cacheTTL); err != nil {
		log.Printf("[HTTP] cache set failed for %s: %v", cacheKey, err)
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"store":    storeName,
		"products": products,
		"cached":   false,
	})
}

func scrapeCacheKey(storeName string, query domain.ScrapeQuery) string {
	key := "scrape:" + storeName + ":" + query.Search + ":" + query.CategoryID + ":" + strconv.Itoa(query.Limit)
	if query.PromotionOnly {
		key += ":promo"
	}
	return key
}
