package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"github.com/comparaprecos/backend/internal/domain"
)

const (
	italoPageSize = 48
	maxItaloPages = 20
)

// ItaloClient scrapes the italo storefront catalog endpoint. Unlike the
// search-platform stores, italo returns localized string prices
// ("R$ 12,34") and a separate "special" field for promotional pricing;
// those strings are passed through untouched, the matching engine owns
// price parsing.
type ItaloClient struct {
	httpClient *http.Client
	baseURL    string
	debug      bool
}

// NewItaloClient creates the italo catalog scraper.
func NewItaloClient(baseURL string) *ItaloClient {
	return &ItaloClient{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    baseURL,
	}
}

// SetDebug enables per-request logging.
func (c *ItaloClient) SetDebug(debug bool) {
	c.debug = debug
}

// StoreName implements domain.StoreClient.
func (c *ItaloClient) StoreName() string {
	return domain.StoreItalo
}

type italoResponse struct {
	Products []italoProduct `json:"products"`
	HasMore  bool           `json:"hasMore"`
}

type italoProduct struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Gtin    string `json:"gtin"`
	Price   string `json:"price"`
	Special string `json:"special"`
	Image   string `json:"image"`
}

// FetchProducts implements domain.StoreClient. The catalog is paginated per
// category path; pages are walked until the API reports no more, the
// requested limit is reached, or the page ceiling trips.
func (c *ItaloClient) FetchProducts(ctx context.Context, query domain.ScrapeQuery) ([]domain.StoreProduct, error) {
	var products []domain.StoreProduct

	for page := 1; page <= maxItaloPages; page++ {
		params := url.Values{}
		if query.CategoryID != "" {
			params.Set("path", query.CategoryID)
		}
		if query.Search != "" {
			params.Set("q", query.Search)
		}
		params.Set("page", strconv.Itoa(page))
		params.Set("size", strconv.Itoa(italoPageSize))

		reqURL := fmt.Sprintf("%s/catalog?%s", c.baseURL, params.Encode())
		if c.debug {
			log.Printf("[italo] fetching page %d: %s", page, reqURL)
		}

		body, err := fetchWithRetry(ctx, c.httpClient, reqURL)
		if err != nil {
			// A partial catalog is still usable; only fail when the very
			// first page is unreachable.
			if page > 1 {
				log.Printf("[italo] page %d failed, keeping %d products: %v", page, len(products), err)
				break
			}
			return nil, err
		}

		var payload italoResponse
		if err := json.Unmarshal(body, &payload); err != nil {
			return nil, fmt.Errorf("%w: decode: %v", domain.ErrStoreAPIFailure, err)
		}

		for _, raw := range payload.Products {
			if raw.Name == "" {
				continue
			}
			products = append(products, domain.StoreProduct{
				ID:      raw.ID,
				Name:    raw.Name,
				Gtin:    raw.Gtin,
				Price:   domain.FlexPrice{Text: raw.Price},
				Special: raw.Special,
				Image:   raw.Image,
				Store:   domain.StoreItalo,
			})
			if query.Limit > 0 && len(products) >= query.Limit {
				return products, nil
			}
		}

		if !payload.HasMore || len(payload.Products) == 0 {
			break
		}
	}

	if c.debug {
		log.Printf("[italo] %d products", len(products))
	}
	return products, nil
}
