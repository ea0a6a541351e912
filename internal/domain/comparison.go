package domain

// MatchType records how a matched group was formed.
type MatchType string

const (
	// MatchTypeIdentifier means the group was formed by an exact GTIN/EAN match.
	MatchTypeIdentifier MatchType = "identifier"
	// MatchTypeDescription means the group was formed by text similarity.
	MatchTypeDescription MatchType = "description"
	// MatchTypeSemantic means the group was formed by the AI-assisted stage.
	MatchTypeSemantic MatchType = "semantic"
)

// StoreQuote is one store's price inside a matched group.
type StoreQuote struct {
	Price float64 `json:"price"`
}

// MatchedGroup represents "this is the same product across 2+ stores".
// Invariants: PerStore has at least 2 entries, BestPrice <= WorstPrice, and
// BestStore/WorstStore are keys of PerStore.
type MatchedGroup struct {
	Name       string                `json:"name"`
	Identifier string                `json:"identifier,omitempty"`
	PerStore   map[string]StoreQuote `json:"perStore"`
	BestStore  string                `json:"bestStore"`
	BestPrice  float64               `json:"bestPrice"`
	WorstStore string                `json:"worstStore"`
	WorstPrice float64               `json:"worstPrice"`
	MatchType  MatchType             `json:"matchType"`
	MatchScore float64               `json:"matchScore"`
}

// UnmatchedProduct is emitted for every input record not claimed by any group.
type UnmatchedProduct struct {
	Identifier string   `json:"identifier,omitempty"`
	Name       string   `json:"name"`
	Price      *float64 `json:"price,omitempty"`
	Store      string   `json:"store"`
}

// ComparisonStats summarizes one comparison run.
type ComparisonStats struct {
	TotalMatches       int            `json:"totalMatches"`
	IdentifierMatches  int            `json:"identifierMatches"`
	DescriptionMatches int            `json:"descriptionMatches"`
	SemanticMatches    int            `json:"semanticMatches"`
	UnmatchedCount     int            `json:"unmatchedCount"`
	BestPriceWins      map[string]int `json:"bestPriceWins"`
}

// ComparisonInput is the request payload for one comparison run: one raw
// catalog per store plus the semantic-stage toggle.
type ComparisonInput struct {
	ItaloProducts  []StoreProduct `json:"italoProducts"`
	MarconProducts []StoreProduct `json:"marconProducts"`
	AlfaProducts   []StoreProduct `json:"alfaProducts"`
	UseSemanticAI  bool           `json:"useSemanticAI"`
}

// Catalogs returns the input catalogs keyed by store label.
func (in *ComparisonInput) Catalogs() map[string][]StoreProduct {
	return map[string][]StoreProduct{
		StoreItalo:  in.ItaloProducts,
		StoreMarcon: in.MarconProducts,
		StoreAlfa:   in.AlfaProducts,
	}
}

// ComparisonResult is the complete output of one comparison run.
type ComparisonResult struct {
	ComparedProducts  []MatchedGroup     `json:"comparedProducts"`
	UnmatchedProducts []UnmatchedProduct `json:"unmatchedProducts"`
	Stats             ComparisonStats    `json:"stats"`
}

// MatchProposal is one cross-list equivalence proposed by the semantic
// matcher: positions into the two name lists handed to it, plus confidence.
type MatchProposal struct {
	IdxA  int
	IdxB  int
	Score float64
}
