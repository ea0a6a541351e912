package usecase

import (
	"log"

	"github.com/comparaprecos/backend/internal/domain"
)

// Fuzzy matching defaults
const (
	defaultFuzzyThreshold = 0.55
	defaultMaxCandidates  = 50
)

// FuzzyConfig holds configuration for the description-based matching stage.
type FuzzyConfig struct {
	Threshold          float64
	MaxCandidates      int
	QuantityTolerance  float64
	Synonyms           map[string][]string
	EnableDebugLogging bool
}

// FuzzyMatcher forms groups from the identifier-stage remainder using
// token-set similarity over normalized, synonym-expanded names, with the
// quantity gate applied before any scoring.
type FuzzyMatcher struct {
	threshold          float64
	maxCandidates      int
	quantityTolerance  float64
	synonyms           map[string][]string
	enableDebugLogging bool
}

// NewFuzzyMatcher creates a fuzzy matcher, falling back to defaults for
// zero-valued configuration.
func NewFuzzyMatcher(config FuzzyConfig) *FuzzyMatcher {
	threshold := config.Threshold
	if threshold <= 0 {
		threshold = defaultFuzzyThreshold
	}
	maxCandidates := config.MaxCandidates
	if maxCandidates <= 0 {
		maxCandidates = defaultMaxCandidates
	}
	tolerance := config.QuantityTolerance
	if tolerance <= 0 {
		tolerance = defaultQuantityTolerance
	}
	synonyms := config.Synonyms
	if synonyms == nil {
		synonyms = DefaultSynonyms
	}

	return &FuzzyMatcher{
		threshold:          threshold,
		maxCandidates:      maxCandidates,
		quantityTolerance:  tolerance,
		synonyms:           synonyms,
		enableDebugLogging: config.EnableDebugLogging,
	}
}

// fuzzyItem is one pool entry with everything precomputed once per run.
type fuzzyItem struct {
	product  domain.StoreProduct
	tokens   []string
	quantity *Quantity
	price    float64
	priced   bool
}

func (m *FuzzyMatcher) prepare(pool []domain.StoreProduct) []fuzzyItem {
	items := make([]fuzzyItem, len(pool))
	for i, p := range pool {
		price, ok := ExtractPrice(p)
		items[i] = fuzzyItem{
			product:  p,
			tokens:   GetTokensWithSynonyms(p.Name, m.synonyms),
			quantity: ExtractQuantity(p.Name),
			price:    price,
			priced:   ok,
		}
	}
	return items
}

func tokenSets(items []fuzzyItem) [][]string {
	sets := make([][]string, len(items))
	for i := range items {
		sets[i] = items[i].tokens
	}
	return sets
}

// CalculateSimilarity is a Dice-style coefficient over two token sets:
// 2*|common| / (|a|+|b|). Inputs must already be deduplicated sets.
// Returns 0 when either side tokenized empty.
func CalculateSimilarity(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	set := make(map[string]bool, len(a))
	for _, t := range a {
		set[t] = true
	}
	common := 0
	for _, t := range b {
		if set[t] {
			common++
		}
	}
	return 2 * float64(common) / float64(len(a)+len(b))
}

// findBestMatch picks the highest-scoring unused candidate whose quantity is
// compatible with the query's. Candidates come from the token index, so at
// most maxCandidates pairs are ever scored. Returns (-1, 0) when nothing
// reaches the threshold.
func (m *FuzzyMatcher) findBestMatch(query fuzzyItem, items []fuzzyItem, idx TokenIndex, used []bool) (int, float64) {
	best := -1
	bestScore := 0.0
	for _, pos := range FindCandidates(query.tokens, idx, m.maxCandidates) {
		if used[pos] {
			continue
		}
		if !QuantitiesCompatible(query.quantity, items[pos].quantity, m.quantityTolerance) {
			continue
		}
		score := CalculateSimilarity(query.tokens, items[pos].tokens)
		if score > bestScore {
			best, bestScore = pos, score
		}
	}
	if best < 0 || bestScore < m.threshold {
		return -1, 0
	}
	return best, bestScore
}

// Match runs the two deterministic fuzzy passes over the per-store pools:
// first marcon anchors against alfa, opportunistically pulling in an italo
// match on the same anchor; then remaining italo items sweep against
// remaining marcon items. First match wins; once a record joins a group it
// leaves every subsequent candidate pool. A textual match that cannot
// produce at least two store prices is discarded and claims nothing.
func (m *FuzzyMatcher) Match(pools map[string][]domain.StoreProduct) ([]domain.MatchedGroup, map[string][]domain.StoreProduct) {
	italo := m.prepare(pools[domain.StoreItalo])
	marcon := m.prepare(pools[domain.StoreMarcon])
	alfa := m.prepare(pools[domain.StoreAlfa])

	italoIdx := BuildTokenIndex(tokenSets(italo))
	marconIdx := BuildTokenIndex(tokenSets(marcon))
	alfaIdx := BuildTokenIndex(tokenSets(alfa))

	usedItalo := make([]bool, len(italo))
	usedMarcon := make([]bool, len(marcon))
	usedAlfa := make([]bool, len(alfa))

	var groups []domain.MatchedGroup

	// Pass 1: marcon <-> alfa, with an opportunistic italo leg.
	for i := range marcon {
		if usedMarcon[i] || !marcon[i].priced {
			continue
		}
		j, alfaScore := m.findBestMatch(marcon[i], alfa, alfaIdx, usedAlfa)
		if j < 0 {
			continue
		}

		members := []groupMember{
			{store: domain.StoreMarcon, item: marcon[i], score: 1},
			{store: domain.StoreAlfa, item: alfa[j], score: alfaScore},
		}
		k, italoScore := m.findBestMatch(marcon[i], italo, italoIdx, usedItalo)
		if k >= 0 {
			members = append(members, groupMember{store: domain.StoreItalo, item: italo[k], score: italoScore})
		}

		group, ok := buildDescriptionGroup(members)
		if !ok {
			if m.enableDebugLogging {
				log.Printf("[FUZZY] dropping priceless match for %q", marcon[i].product.Name)
			}
			continue
		}

		// Claim only the members that made it into the group; a matched but
		// priceless leg stays in the pool and surfaces as unmatched.
		if _, ok := group.PerStore[domain.StoreMarcon]; ok {
			usedMarcon[i] = true
		}
		if _, ok := group.PerStore[domain.StoreAlfa]; ok {
			usedAlfa[j] = true
		}
		if k >= 0 {
			if _, ok := group.PerStore[domain.StoreItalo]; ok {
				usedItalo[k] = true
			}
		}
		groups = append(groups, group)
	}

	// Pass 2: remaining italo items against remaining marcon items.
	for i := range italo {
		if usedItalo[i] || !italo[i].priced {
			continue
		}
		j, score := m.findBestMatch(italo[i], marcon, marconIdx, usedMarcon)
		if j < 0 {
			continue
		}

		group, ok := buildDescriptionGroup([]groupMember{
			{store: domain.StoreItalo, item: italo[i], score: 1},
			{store: domain.StoreMarcon, item: marcon[j], score: score},
		})
		if !ok {
			continue
		}

		if _, ok := group.PerStore[domain.StoreItalo]; ok {
			usedItalo[i] = true
		}
		if _, ok := group.PerStore[domain.StoreMarcon]; ok {
			usedMarcon[j] = true
		}
		groups = append(groups, group)
	}

	remainder := map[string][]domain.StoreProduct{
		domain.StoreItalo:  leftover(italo, usedItalo),
		domain.StoreMarcon: leftover(marcon, usedMarcon),
		domain.StoreAlfa:   leftover(alfa, usedAlfa),
	}
	return groups, remainder
}

// groupMember is one store's contribution to a candidate group. The anchor
// carries score 1; each matched leg carries its similarity score, so the
// group score ends up being the weakest link.
type groupMember struct {
	store string
	item  fuzzyItem
	score float64
}

// buildDescriptionGroup assembles a description-matched group from priced
// members. Returns false when fewer than two members have extractable
// prices, since price-lessness makes the comparison meaningless.
func buildDescriptionGroup(members []groupMember) (domain.MatchedGroup, bool) {
	perStore := make(map[string]domain.StoreQuote)
	weakest := 1.0
	for _, mem := range members {
		if !mem.item.priced {
			continue
		}
		perStore[mem.store] = domain.StoreQuote{Price: mem.item.price}
		if mem.score < weakest {
			weakest = mem.score
		}
	}
	if len(perStore) < 2 {
		return domain.MatchedGroup{}, false
	}

	name := ""
	for _, store := range domain.StoreOrder {
		if _, ok := perStore[store]; !ok {
			continue
		}
		for _, mem := range members {
			if mem.store == store {
				name = mem.item.product.Name
			}
		}
		break
	}

	return domain.MatchedGroup{
		Name:       name,
		Identifier: syntheticTag("TXT", name),
		PerStore:   perStore,
		MatchType:  domain.MatchTypeDescription,
		MatchScore: weakest,
	}, true
}

func leftover(items []fuzzyItem, used []bool) []domain.StoreProduct {
	var out []domain.StoreProduct
	for i, item := range items {
		if !used[i] {
			out = append(out, item.product)
		}
	}
	return out
}
