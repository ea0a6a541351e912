package usecase

import (
	"context"
	"fmt"
	"hash/fnv"
	"log"
	"sort"

	"github.com/comparaprecos/backend/internal/domain"
)

// ComparisonConfig holds configuration for the comparison service.
type ComparisonConfig struct {
	FuzzyThreshold     float64
	MaxCandidates      int
	QuantityTolerance  float64
	Synonyms           map[string][]string
	SemanticItemCap    int
	EnableDebugLogging bool
}

// ComparisonService orchestrates one comparison run: identifier matching,
// fuzzy matching, the optional semantic stage, and final aggregation. Each
// run is stateless and synchronous; stages hand shrinking pools forward
// instead of sharing mutable sets.
type ComparisonService struct {
	semantic           domain.SemanticMatcher // nil when not configured
	fuzzy              *FuzzyMatcher
	semanticItemCap    int
	quantityTolerance  float64
	enableDebugLogging bool
}

// NewComparisonService wires the engine. A nil semantic matcher disables the
// semantic stage regardless of the request flag.
func NewComparisonService(semantic domain.SemanticMatcher, config ComparisonConfig) *ComparisonService {
	return &ComparisonService{
		semantic: semantic,
		fuzzy: NewFuzzyMatcher(FuzzyConfig{
			Threshold:          config.FuzzyThreshold,
			MaxCandidates:      config.MaxCandidates,
			QuantityTolerance:  config.QuantityTolerance,
			Synonyms:           config.Synonyms,
			EnableDebugLogging: config.EnableDebugLogging,
		}),
		semanticItemCap:    config.SemanticItemCap,
		quantityTolerance:  config.QuantityTolerance,
		enableDebugLogging: config.EnableDebugLogging,
	}
}

// Compare reconciles the three catalogs into matched groups, leftovers, and
// summary statistics. Zero matches is a valid, successful result.
func (s *ComparisonService) Compare(ctx context.Context, input *domain.ComparisonInput) (*domain.ComparisonResult, error) {
	if input == nil {
		return nil, fmt.Errorf("%w: missing request body", domain.ErrInvalidInput)
	}

	// Records without a name cannot be compared by any stage; they go
	// straight to the unmatched list instead of crashing the run.
	catalogs := make(map[string][]domain.StoreProduct, len(domain.StoreOrder))
	var unmatched []domain.UnmatchedProduct
	for store, pool := range input.Catalogs() {
		var named []domain.StoreProduct
		for _, p := range pool {
			if p.Name == "" {
				unmatched = append(unmatched, toUnmatched(p, store))
				continue
			}
			named = append(named, p)
		}
		catalogs[store] = named
	}

	if s.enableDebugLogging {
		log.Printf("[COMPARE] starting: italo(%d) marcon(%d) alfa(%d) semanticAI=%v",
			len(catalogs[domain.StoreItalo]), len(catalogs[domain.StoreMarcon]),
			len(catalogs[domain.StoreAlfa]), input.UseSemanticAI)
	}

	groups, pools := MatchByIdentifier(catalogs)
	if s.enableDebugLogging {
		log.Printf("[COMPARE] identifier stage: %d groups", len(groups))
	}

	fuzzyGroups, pools := s.fuzzy.Match(pools)
	groups = append(groups, fuzzyGroups...)
	if s.enableDebugLogging {
		log.Printf("[COMPARE] fuzzy stage: %d groups", len(fuzzyGroups))
	}

	if input.UseSemanticAI && s.semantic != nil {
		stage := NewSemanticStage(s.semantic, s.semanticItemCap, s.quantityTolerance, s.enableDebugLogging)
		var semanticGroups []domain.MatchedGroup
		semanticGroups, pools = stage.Match(ctx, pools)
		groups = append(groups, semanticGroups...)
		if s.enableDebugLogging {
			log.Printf("[COMPARE] semantic stage: %d groups", len(semanticGroups))
		}
	}

	for i := range groups {
		finalizeGroup(&groups[i])
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Name != groups[j].Name {
			return groups[i].Name < groups[j].Name
		}
		return groups[i].Identifier < groups[j].Identifier
	})

	for _, store := range domain.StoreOrder {
		for _, p := range pools[store] {
			unmatched = append(unmatched, toUnmatched(p, store))
		}
	}

	result := &domain.ComparisonResult{
		ComparedProducts:  groups,
		UnmatchedProducts: unmatched,
		Stats:             buildStats(groups, unmatched),
	}
	if s.enableDebugLogging {
		log.Printf("[COMPARE] complete: %d matches, %d unmatched", result.Stats.TotalMatches, result.Stats.UnmatchedCount)
	}
	return result, nil
}

// finalizeGroup recomputes best/worst from the populated per-store prices,
// lowest price first with store order breaking ties.
func finalizeGroup(g *domain.MatchedGroup) {
	type quote struct {
		store string
		price float64
	}
	quotes := make([]quote, 0, len(g.PerStore))
	for _, store := range domain.StoreOrder {
		if q, ok := g.PerStore[store]; ok {
			quotes = append(quotes, quote{store: store, price: q.Price})
		}
	}
	sort.SliceStable(quotes, func(i, j int) bool {
		return quotes[i].price < quotes[j].price
	})
	if len(quotes) == 0 {
		return
	}
	g.BestStore = quotes[0].store
	g.BestPrice = quotes[0].price
	g.WorstStore = quotes[len(quotes)-1].store
	g.WorstPrice = quotes[len(quotes)-1].price
}

func buildStats(groups []domain.MatchedGroup, unmatched []domain.UnmatchedProduct) domain.ComparisonStats {
	stats := domain.ComparisonStats{
		TotalMatches:   len(groups),
		UnmatchedCount: len(unmatched),
		BestPriceWins:  make(map[string]int, len(domain.StoreOrder)),
	}
	for _, store := range domain.StoreOrder {
		stats.BestPriceWins[store] = 0
	}
	for _, g := range groups {
		switch g.MatchType {
		case domain.MatchTypeIdentifier:
			stats.IdentifierMatches++
		case domain.MatchTypeDescription:
			stats.DescriptionMatches++
		case domain.MatchTypeSemantic:
			stats.SemanticMatches++
		}
		stats.BestPriceWins[g.BestStore]++
	}
	return stats
}

func toUnmatched(p domain.StoreProduct, store string) domain.UnmatchedProduct {
	u := domain.UnmatchedProduct{
		Identifier: ExtractIdentifier(p),
		Name:       p.Name,
		Store:      store,
	}
	if price, ok := ExtractPrice(p); ok {
		u.Price = &price
	}
	return u
}

// syntheticTag builds a deterministic placeholder identifier for groups that
// were not matched by a real barcode. Derived from the representative name
// so repeated runs over identical input produce identical output.
func syntheticTag(prefix, name string) string {
	h := fnv.New32a()
	h.Write([]byte(NormalizeNameExtended(name)))
	return fmt.Sprintf("%s-%08X", prefix, h.Sum32())
}
