package usecase

import (
	"context"
	"log"
	"sort"

	"github.com/comparaprecos/backend/internal/domain"
)

// defaultSemanticItemCap bounds how many leftover items per side are ever
// handed to the external service. This is a cost ceiling, not a correctness
// knob: items beyond the cap simply stay unmatched.
const defaultSemanticItemCap = 100

// minSemanticScore is the confidence floor for committing an AI-proposed
// equivalence. Proposals below it are ignored even if the service returns
// them.
const minSemanticScore = 0.85

// SemanticStage resolves leftover pairs that textual heuristics could not,
// by delegating to an external language-model service through the
// SemanticMatcher port. It is best-effort: any adapter failure contributes
// zero matches, never a run failure.
type SemanticStage struct {
	matcher            domain.SemanticMatcher
	itemCap            int
	quantityTolerance  float64
	enableDebugLogging bool
}

// NewSemanticStage creates the semantic stage around a matcher adapter.
func NewSemanticStage(matcher domain.SemanticMatcher, itemCap int, quantityTolerance float64, debug bool) *SemanticStage {
	if itemCap <= 0 {
		itemCap = defaultSemanticItemCap
	}
	if quantityTolerance <= 0 {
		quantityTolerance = defaultQuantityTolerance
	}
	return &SemanticStage{
		matcher:            matcher,
		itemCap:            itemCap,
		quantityTolerance:  quantityTolerance,
		enableDebugLogging: debug,
	}
}

// semanticItem mirrors fuzzyItem for the leftover pools.
type semanticItem struct {
	product  domain.StoreProduct
	quantity *Quantity
	price    float64
	priced   bool
}

func prepareSemantic(pool []domain.StoreProduct) []semanticItem {
	items := make([]semanticItem, len(pool))
	for i, p := range pool {
		price, ok := ExtractPrice(p)
		items[i] = semanticItem{
			product:  p,
			quantity: ExtractQuantity(p.Name),
			price:    price,
			priced:   ok,
		}
	}
	return items
}

// Match runs the semantic stage over the italo↔marcon pair and then the
// italo↔alfa pair of leftover pools. Proposals are committed in descending
// score order under the same quantity gate and first-match-wins exclusivity
// as the fuzzy stage; each committed group needs both prices present.
func (s *SemanticStage) Match(ctx context.Context, pools map[string][]domain.StoreProduct) ([]domain.MatchedGroup, map[string][]domain.StoreProduct) {
	italo := prepareSemantic(pools[domain.StoreItalo])
	marcon := prepareSemantic(pools[domain.StoreMarcon])
	alfa := prepareSemantic(pools[domain.StoreAlfa])

	usedItalo := make([]bool, len(italo))
	usedMarcon := make([]bool, len(marcon))
	usedAlfa := make([]bool, len(alfa))

	var groups []domain.MatchedGroup
	groups = append(groups, s.matchPair(ctx, domain.StoreItalo, italo, usedItalo, domain.StoreMarcon, marcon, usedMarcon)...)
	groups = append(groups, s.matchPair(ctx, domain.StoreItalo, italo, usedItalo, domain.StoreAlfa, alfa, usedAlfa)...)

	remainder := map[string][]domain.StoreProduct{
		domain.StoreItalo:  leftoverSemantic(italo, usedItalo),
		domain.StoreMarcon: leftoverSemantic(marcon, usedMarcon),
		domain.StoreAlfa:   leftoverSemantic(alfa, usedAlfa),
	}
	return groups, remainder
}

func (s *SemanticStage) matchPair(
	ctx context.Context,
	storeA string, itemsA []semanticItem, usedA []bool,
	storeB string, itemsB []semanticItem, usedB []bool,
) []domain.MatchedGroup {
	// Build capped name lists over the still-unused, priced items, keeping
	// the mapping back to pool positions.
	listA, mapA := semanticNames(itemsA, usedA, s.itemCap)
	listB, mapB := semanticNames(itemsB, usedB, s.itemCap)
	if len(listA) == 0 || len(listB) == 0 {
		return nil
	}

	proposals, err := s.matcher.ProposeMatches(ctx, listA, listB)
	if err != nil {
		// Degrade silently: a failed semantic pass just yields no matches.
		log.Printf("[SEMANTIC] %s/%s pass failed: %v", storeA, storeB, err)
		return nil
	}
	if s.enableDebugLogging {
		log.Printf("[SEMANTIC] %s/%s: %d proposals over %dx%d names", storeA, storeB, len(proposals), len(listA), len(listB))
	}

	// Strongest proposals first; ties broken by position for determinism.
	sort.Slice(proposals, func(i, j int) bool {
		if proposals[i].Score != proposals[j].Score {
			return proposals[i].Score > proposals[j].Score
		}
		if proposals[i].IdxA != proposals[j].IdxA {
			return proposals[i].IdxA < proposals[j].IdxA
		}
		return proposals[i].IdxB < proposals[j].IdxB
	})

	var groups []domain.MatchedGroup
	for _, prop := range proposals {
		if prop.Score < minSemanticScore {
			continue
		}
		if prop.IdxA < 0 || prop.IdxA >= len(listA) || prop.IdxB < 0 || prop.IdxB >= len(listB) {
			continue
		}
		posA, posB := mapA[prop.IdxA], mapB[prop.IdxB]
		if usedA[posA] || usedB[posB] {
			continue
		}
		a, b := itemsA[posA], itemsB[posB]
		if !QuantitiesCompatible(a.quantity, b.quantity, s.quantityTolerance) {
			continue
		}

		usedA[posA] = true
		usedB[posB] = true
		name := a.product.Name
		groups = append(groups, domain.MatchedGroup{
			Name:       name,
			Identifier: syntheticTag("SEM", name),
			PerStore: map[string]domain.StoreQuote{
				storeA: {Price: a.price},
				storeB: {Price: b.price},
			},
			MatchType:  domain.MatchTypeSemantic,
			MatchScore: prop.Score,
		})
	}
	return groups
}

// semanticNames collects names of unused, priced items up to cap, returning
// the list plus list-position -> pool-position mapping. Unpriced items are
// never offered to the service: a proposal over them could not form a
// comparable group anyway.
func semanticNames(items []semanticItem, used []bool, limit int) ([]string, []int) {
	var names []string
	var positions []int
	for i, item := range items {
		if used[i] || !item.priced {
			continue
		}
		names = append(names, item.product.Name)
		positions = append(positions, i)
		if len(names) >= limit {
			break
		}
	}
	return names, positions
}

func leftoverSemantic(items []semanticItem, used []bool) []domain.StoreProduct {
	var out []domain.StoreProduct
	for i, item := range items {
		if !used[i] {
			out = append(out, item.product)
		}
	}
	return out
}
