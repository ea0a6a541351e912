package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"net/http"
	"net/url"
	"strconv"

	"github.com/comparaprecos/backend/internal/domain"
)

const defaultSearchLimit = 100

// SearchClient scrapes retailers whose storefront exposes an
// Elasticsearch-style search endpoint (marcon and alfa share the platform).
// Payload: {"hits":{"hits":[{"_id":..., "_source":{...}}]}}.
type SearchClient struct {
	httpClient *http.Client
	baseURL    string
	storeName  string
	debug      bool
}

// NewSearchClient creates a search-API scraper for one store.
func NewSearchClient(storeName, baseURL string) *SearchClient {
	return &SearchClient{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    baseURL,
		storeName:  storeName,
	}
}

// SetDebug enables per-request logging.
func (c *SearchClient) SetDebug(debug bool) {
	c.debug = debug
}

// StoreName implements domain.StoreClient.
func (c *SearchClient) StoreName() string {
	return c.storeName
}

// searchResponse mirrors the storefront search payload. Prices arrive as
// either numbers or numeric strings depending on the indexer version, so
// they decode through json.Number.
type searchResponse struct {
	Hits struct {
		Hits []struct {
			ID     string       `json:"_id"`
			Source searchSource `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

type searchSource struct {
	ID               string      `json:"id"`
	Name             string      `json:"name"`
	Description      string      `json:"description"`
	Brand            string      `json:"brand"`
	Gtin             string      `json:"gtin"`
	Price            json.Number `json:"price"`
	PromotionalPrice json.Number `json:"promotional_price"`
	SalesUnit        string      `json:"sales_unit"`
	Image            string      `json:"image"`
}

// FetchProducts implements domain.StoreClient.
func (c *SearchClient) FetchProducts(ctx context.Context, query domain.ScrapeQuery) ([]domain.StoreProduct, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	params := url.Values{}
	if query.Search != "" {
		params.Set("search", query.Search)
	}
	if query.CategoryID != "" {
		params.Set("categories", query.CategoryID)
	}
	if query.PromotionOnly {
		params.Set("promotion", "true")
	}
	params.Set("size", strconv.Itoa(limit))
	params.Set("from", "0")

	reqURL := fmt.Sprintf("%s/search?%s", c.baseURL, params.Encode())
	if c.debug {
		log.Printf("[%s] fetching %s", c.storeName, reqURL)
	}

	body, err := fetchWithRetry(ctx, c.httpClient, reqURL)
	if err != nil {
		return nil, err
	}

	var payload searchResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", domain.ErrStoreAPIFailure, err)
	}

	products := make([]domain.StoreProduct, 0, len(payload.Hits.Hits))
	for _, hit := range payload.Hits.Hits {
		p, ok := mapSearchHit(hit.ID, hit.Source, c.storeName)
		if !ok {
			continue
		}
		products = append(products, p)
	}

	if c.debug {
		log.Printf("[%s] %d products", c.storeName, len(products))
	}
	return products, nil
}

// mapSearchHit reduces one search hit to the minimal record shape the
// matching engine consumes. Hits without a name are dropped here: they
// could never be compared anyway.
func mapSearchHit(hitID string, src searchSource, storeName string) (domain.StoreProduct, bool) {
	if src.Name == "" {
		return domain.StoreProduct{}, false
	}

	id := src.ID
	if id == "" {
		id = hitID
	}

	p := domain.StoreProduct{
		ID:        id,
		Name:      src.Name,
		Brand:     src.Brand,
		Gtin:      src.Gtin,
		SalesUnit: src.SalesUnit,
		Image:     src.Image,
		Store:     storeName,
	}

	price, _ := src.Price.Float64()
	if price > 0 {
		p.Price = domain.FlexPrice{Number: &price}
	}
	promo, _ := src.PromotionalPrice.Float64()
	if promo > 0 {
		p.PromotionalPrice = domain.FlexPrice{Number: &promo}
		if price > 0 && promo < price {
			p.Discount = int(math.Round((price - promo) / price * 100))
			p.InPromotion = true
		}
	}

	return p, true
}
