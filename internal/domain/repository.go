package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching scrape results
type CacheRepository interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// SemanticMatcher proposes cross-list product equivalences via an external
// text-understanding service. Implementations own batching, pacing, and wire
// format; the engine only sees index/score tuples. A degraded service must
// surface as an empty proposal list, not as an error.
type SemanticMatcher interface {
	ProposeMatches(ctx context.Context, listA, listB []string) ([]MatchProposal, error)
}

// ScrapeQuery narrows a catalog scrape.
type ScrapeQuery struct {
	Search        string `json:"search,omitempty"`
	CategoryID    string `json:"categoryId,omitempty"`
	PromotionOnly bool   `json:"promotion,omitempty"`
	Limit         int    `json:"limit,omitempty"`
}

// StoreClient fetches already-reduced product records from one retailer.
// Pagination, payload parsing, and retries live behind this interface; the
// matching engine only ever consumes the returned records.
type StoreClient interface {
	StoreName() string
	FetchProducts(ctx context.Context, query ScrapeQuery) ([]StoreProduct, error)
}
