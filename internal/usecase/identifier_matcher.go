package usecase

import (
	"sort"

	"github.com/comparaprecos/backend/internal/domain"
)

// MatchByIdentifier is the first, highest-confidence matching stage. It
// indexes each store's catalog by normalized identifier, then walks the
// union of identifiers and emits a group wherever at least two stores hold
// the code with an extractable price.
//
// Returns the groups plus the remaining pool per store. Records whose
// identifier was claimed by a group are excluded from the remainder, even
// duplicates that lost the last-write-wins race inside the per-store index
// (a known simplification: a cheaper duplicate listing can be dropped).
func MatchByIdentifier(catalogs map[string][]domain.StoreProduct) ([]domain.MatchedGroup, map[string][]domain.StoreProduct) {
	type indexed struct {
		byID map[string]domain.StoreProduct
	}

	stores := make(map[string]indexed, len(domain.StoreOrder))
	idSet := make(map[string]bool)
	for _, store := range domain.StoreOrder {
		byID := make(map[string]domain.StoreProduct)
		for _, p := range catalogs[store] {
			if id := ExtractIdentifier(p); id != "" {
				byID[id] = p // last write wins on duplicates
				idSet[id] = true
			}
		}
		stores[store] = indexed{byID: byID}
	}

	// Map iteration order is random; sort the union so group emission (and
	// therefore the whole run) is deterministic.
	allIDs := make([]string, 0, len(idSet))
	for id := range idSet {
		allIDs = append(allIDs, id)
	}
	sort.Strings(allIDs)

	var groups []domain.MatchedGroup
	claimed := make(map[string]bool)

	for _, id := range allIDs {
		perStore := make(map[string]domain.StoreQuote)
		name := ""
		for _, store := range domain.StoreOrder {
			p, ok := stores[store].byID[id]
			if !ok {
				continue
			}
			if name == "" {
				name = p.Name
			}
			if price, ok := ExtractPrice(p); ok {
				perStore[store] = domain.StoreQuote{Price: price}
			}
		}
		if len(perStore) < 2 {
			continue
		}

		claimed[id] = true
		groups = append(groups, domain.MatchedGroup{
			Name:       name,
			Identifier: id,
			PerStore:   perStore,
			MatchType:  domain.MatchTypeIdentifier,
			MatchScore: 1.0,
		})
	}

	remainder := make(map[string][]domain.StoreProduct, len(domain.StoreOrder))
	for _, store := range domain.StoreOrder {
		var pool []domain.StoreProduct
		for _, p := range catalogs[store] {
			id := ExtractIdentifier(p)
			if id == "" || !claimed[id] {
				pool = append(pool, p)
			}
		}
		remainder[store] = pool
	}

	return groups, remainder
}
