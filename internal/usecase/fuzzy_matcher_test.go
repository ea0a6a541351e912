package usecase

import (
	"testing"

	"github.com/comparaprecos/backend/internal/domain"
)

func TestNewFuzzyMatcher(t *testing.T) {
	t.Run("applies defaults for zero-valued config", func(t *testing.T) {
		m := NewFuzzyMatcher(FuzzyConfig{})
		if m.threshold != defaultFuzzyThreshold {
			t.Errorf("threshold = %v, want %v", m.threshold, defaultFuzzyThreshold)
		}
		if m.maxCandidates != defaultMaxCandidates {
			t.Errorf("maxCandidates = %v, want %v", m.maxCandidates, defaultMaxCandidates)
		}
		if m.quantityTolerance != defaultQuantityTolerance {
			t.Errorf("quantityTolerance = %v, want %v", m.quantityTolerance, defaultQuantityTolerance)
		}
		if m.synonyms == nil {
			t.Error("synonyms should fall back to the default dictionary")
		}
	})

	t.Run("keeps provided config", func(t *testing.T) {
		m := NewFuzzyMatcher(FuzzyConfig{Threshold: 0.7, MaxCandidates: 10, QuantityTolerance: 0.05})
		if m.threshold != 0.7 || m.maxCandidates != 10 || m.quantityTolerance != 0.05 {
			t.Errorf("config not preserved: %+v", m)
		}
	})
}

func TestCalculateSimilarity(t *testing.T) {
	t.Run("identical sets score 1", func(t *testing.T) {
		if s := CalculateSimilarity([]string{"coca", "cola"}, []string{"coca", "cola"}); s != 1.0 {
			t.Errorf("similarity = %v, want 1.0", s)
		}
	})

	t.Run("disjoint sets score 0", func(t *testing.T) {
		if s := CalculateSimilarity([]string{"arroz"}, []string{"feijao"}); s != 0 {
			t.Errorf("similarity = %v, want 0", s)
		}
	})

	t.Run("empty side scores 0", func(t *testing.T) {
		if s := CalculateSimilarity(nil, []string{"arroz"}); s != 0 {
			t.Errorf("similarity = %v, want 0", s)
		}
	})

	t.Run("partial overlap", func(t *testing.T) {
		// 2 common over 3+2 tokens = 0.8
		s := CalculateSimilarity([]string{"leite", "integral", "italac"}, []string{"leite", "integral"})
		if s != 0.8 {
			t.Errorf("similarity = %v, want 0.8", s)
		}
	})
}

func fuzzyPools(italo, marcon, alfa []domain.StoreProduct) map[string][]domain.StoreProduct {
	return map[string][]domain.StoreProduct{
		domain.StoreItalo:  italo,
		domain.StoreMarcon: marcon,
		domain.StoreAlfa:   alfa,
	}
}

func TestFuzzyMatcherMatch(t *testing.T) {
	m := NewFuzzyMatcher(FuzzyConfig{})

	t.Run("matches across marcon and alfa through synonyms", func(t *testing.T) {
		groups, remainder := m.Match(fuzzyPools(
			nil,
			[]domain.StoreProduct{
				{Name: "Chiclete Trident Menta", Price: domain.FlexPrice{Number: floatPtr(3.50)}},
			},
			[]domain.StoreProduct{
				{Name: "Goma de Mascar Trident Menta", Price: domain.FlexPrice{Number: floatPtr(3.99)}},
			},
		))

		if len(groups) != 1 {
			t.Fatalf("groups = %d, want 1", len(groups))
		}
		g := groups[0]
		if g.MatchType != domain.MatchTypeDescription {
			t.Errorf("MatchType = %v", g.MatchType)
		}
		if g.MatchScore < defaultFuzzyThreshold {
			t.Errorf("MatchScore = %v, want >= threshold", g.MatchScore)
		}
		if g.PerStore[domain.StoreMarcon].Price != 3.50 || g.PerStore[domain.StoreAlfa].Price != 3.99 {
			t.Errorf("PerStore = %v", g.PerStore)
		}
		if g.Identifier == "" {
			t.Error("description groups must carry a synthetic identifier")
		}
		if len(remainder[domain.StoreMarcon]) != 0 || len(remainder[domain.StoreAlfa]) != 0 {
			t.Errorf("remainder = %v, want both claimed", remainder)
		}
	})

	t.Run("quantity gate blocks different package sizes", func(t *testing.T) {
		groups, remainder := m.Match(fuzzyPools(
			nil,
			[]domain.StoreProduct{
				{Name: "Refrigerante Coca Cola 350ml", Price: domain.FlexPrice{Number: floatPtr(4.50)}},
			},
			[]domain.StoreProduct{
				{Name: "Refrigerante Coca Cola 2l", Price: domain.FlexPrice{Number: floatPtr(9.90)}},
			},
		))

		if len(groups) != 0 {
			t.Fatalf("groups = %v, want none", groups)
		}
		if len(remainder[domain.StoreMarcon]) != 1 || len(remainder[domain.StoreAlfa]) != 1 {
			t.Errorf("remainder = %v, want both back", remainder)
		}
	})

	t.Run("pulls an italo leg into a marcon-alfa group", func(t *testing.T) {
		groups, remainder := m.Match(fuzzyPools(
			[]domain.StoreProduct{
				{Name: "Leite Integral Italac 1l", Price: domain.FlexPrice{Text: "R$ 5,49"}},
			},
			[]domain.StoreProduct{
				{Name: "Leite Integral Italac 1l", Price: domain.FlexPrice{Number: floatPtr(5.19)}},
			},
			[]domain.StoreProduct{
				{Name: "Leite Italac Integral 1l", Price: domain.FlexPrice{Number: floatPtr(5.39)}},
			},
		))

		if len(groups) != 1 {
			t.Fatalf("groups = %d, want 1", len(groups))
		}
		if len(groups[0].PerStore) != 3 {
			t.Errorf("PerStore = %v, want all three stores", groups[0].PerStore)
		}
		for store, pool := range remainder {
			if len(pool) != 0 {
				t.Errorf("remainder[%s] = %v, want empty", store, pool)
			}
		}
	})

	t.Run("pass two matches leftover italo against marcon", func(t *testing.T) {
		groups, _ := m.Match(fuzzyPools(
			[]domain.StoreProduct{
				{Name: "Sabao em Po Omo Lavagem Perfeita", Price: domain.FlexPrice{Text: "R$ 21,90"}},
			},
			[]domain.StoreProduct{
				{Name: "Sabao em Po Omo Lavagem Perfeita", Price: domain.FlexPrice{Number: floatPtr(19.90)}},
			},
			nil,
		))

		if len(groups) != 1 {
			t.Fatalf("groups = %d, want 1", len(groups))
		}
		g := groups[0]
		if _, ok := g.PerStore[domain.StoreItalo]; !ok {
			t.Errorf("PerStore = %v, want italo present", g.PerStore)
		}
		if _, ok := g.PerStore[domain.StoreMarcon]; !ok {
			t.Errorf("PerStore = %v, want marcon present", g.PerStore)
		}
	})

	t.Run("first match wins and claims the candidate", func(t *testing.T) {
		groups, remainder := m.Match(fuzzyPools(
			nil,
			[]domain.StoreProduct{
				{Name: "Biscoito Recheado Oreo Chocolate", Price: domain.FlexPrice{Number: floatPtr(3.99)}},
				{Name: "Biscoito Recheado Oreo Original", Price: domain.FlexPrice{Number: floatPtr(4.29)}},
			},
			[]domain.StoreProduct{
				{Name: "Biscoito Recheado Oreo Chocolate", Price: domain.FlexPrice{Number: floatPtr(4.10)}},
			},
		))

		if len(groups) != 1 {
			t.Fatalf("groups = %d, want 1", len(groups))
		}
		if groups[0].Name != "Biscoito Recheado Oreo Chocolate" {
			t.Errorf("Name = %q, want the first anchor to claim the candidate", groups[0].Name)
		}
		if len(remainder[domain.StoreMarcon]) != 1 {
			t.Errorf("remainder = %v, want the losing anchor back", remainder[domain.StoreMarcon])
		}
	})

	t.Run("a match without two prices is discarded and claims nothing", func(t *testing.T) {
		groups, remainder := m.Match(fuzzyPools(
			nil,
			[]domain.StoreProduct{
				{Name: "Azeite Extra Virgem Gallo", Price: domain.FlexPrice{Number: floatPtr(32.90)}},
			},
			[]domain.StoreProduct{
				{Name: "Azeite Extra Virgem Gallo"}, // no price
			},
		))

		if len(groups) != 0 {
			t.Fatalf("groups = %v, want none", groups)
		}
		if len(remainder[domain.StoreMarcon]) != 1 || len(remainder[domain.StoreAlfa]) != 1 {
			t.Errorf("remainder = %v, want both records back", remainder)
		}
	})

	t.Run("dissimilar names never group", func(t *testing.T) {
		groups, _ := m.Match(fuzzyPools(
			nil,
			[]domain.StoreProduct{
				{Name: "Arroz Branco Tipo 1", Price: domain.FlexPrice{Number: floatPtr(20)}},
			},
			[]domain.StoreProduct{
				{Name: "Feijao Carioca Tipo 1", Price: domain.FlexPrice{Number: floatPtr(9)}},
			},
		))
		if len(groups) != 0 {
			t.Errorf("groups = %v, want none", groups)
		}
	})
}
