package store

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/comparaprecos/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchClient_FetchProducts(t *testing.T) {
	payload := `{
		"hits": {
			"hits": [
				{
					"_id": "hit-1",
					"_source": {
						"id": "p1",
						"name": "Arroz Tio Joao 5kg",
						"brand": "Tio Joao",
						"gtin": "7891234567895",
						"price": 24.90,
						"promotional_price": 19.90,
						"sales_unit": "UN",
						"image": "https://cdn.example.com/p1.jpg"
					}
				},
				{
					"_id": "hit-2",
					"_source": {
						"name": "Feijao Carioca 1kg",
						"price": "8.99"
					}
				},
				{
					"_id": "hit-3",
					"_source": {
						"gtin": "7890000000000",
						"price": 5.00
					}
				}
			]
		}
	}`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "arroz", r.URL.Query().Get("search"))
		assert.Equal(t, "cat-7", r.URL.Query().Get("categories"))
		assert.Equal(t, "true", r.URL.Query().Get("promotion"))
		assert.Equal(t, "50", r.URL.Query().Get("size"))
		w.Write([]byte(payload))
	}))
	defer server.Close()

	client := NewSearchClient(domain.StoreMarcon, server.URL)
	products, err := client.FetchProducts(context.Background(), domain.ScrapeQuery{
		Search:        "arroz",
		CategoryID:    "cat-7",
		PromotionOnly: true,
		Limit:         50,
	})
	require.NoError(t, err)

	// The nameless third hit is dropped.
	require.Len(t, products, 2)

	first := products[0]
	assert.Equal(t, "p1", first.ID)
	assert.Equal(t, "Arroz Tio Joao 5kg", first.Name)
	assert.Equal(t, "7891234567895", first.Gtin)
	assert.Equal(t, domain.StoreMarcon, first.Store)
	require.NotNil(t, first.Price.Number)
	assert.Equal(t, 24.90, *first.Price.Number)
	require.NotNil(t, first.PromotionalPrice.Number)
	assert.Equal(t, 19.90, *first.PromotionalPrice.Number)
	assert.True(t, first.InPromotion)
	assert.Equal(t, 20, first.Discount)

	// String-typed price still decodes; the hit id backfills a missing source id.
	second := products[1]
	assert.Equal(t, "hit-2", second.ID)
	require.NotNil(t, second.Price.Number)
	assert.Equal(t, 8.99, *second.Price.Number)
	assert.False(t, second.InPromotion)
}

func TestSearchClient_DefaultLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "100", r.URL.Query().Get("size"))
		assert.Equal(t, "0", r.URL.Query().Get("from"))
		w.Write([]byte(`{"hits":{"hits":[]}}`))
	}))
	defer server.Close()

	client := NewSearchClient(domain.StoreAlfa, server.URL)
	products, err := client.FetchProducts(context.Background(), domain.ScrapeQuery{})
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestSearchClient_ClientError(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := NewSearchClient(domain.StoreMarcon, server.URL)
	_, err := client.FetchProducts(context.Background(), domain.ScrapeQuery{})

	assert.ErrorIs(t, err, domain.ErrStoreAPIFailure)
	assert.Equal(t, 1, requests, "4xx must not be retried")
}

func TestSearchClient_RetriesServerError(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if requests < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"hits":{"hits":[]}}`))
	}))
	defer server.Close()

	client := NewSearchClient(domain.StoreMarcon, server.URL)
	_, err := client.FetchProducts(context.Background(), domain.ScrapeQuery{})

	require.NoError(t, err)
	assert.Equal(t, 3, requests)
}

func TestSearchClient_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer server.Close()

	client := NewSearchClient(domain.StoreMarcon, server.URL)
	_, err := client.FetchProducts(context.Background(), domain.ScrapeQuery{})
	assert.ErrorIs(t, err, domain.ErrStoreAPIFailure)
}

func TestExponentialBackoff(t *testing.T) {
	tests := []struct {
		attempt  int
		expected string
	}{
		{1, "500ms"},
		{2, "1s"},
		{3, "2s"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, exponentialBackoff(tt.attempt).String())
	}
}
