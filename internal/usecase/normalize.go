package usecase

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Package-level compiled regex patterns for performance
var (
	nonAlphanumericRegex = regexp.MustCompile(`[^a-z0-9\s]`)
	multipleSpacesRegex  = regexp.MustCompile(`\s+`)
	digitsRegex          = regexp.MustCompile(`\d+`)

	// unitTokenRegex strips unit-of-measure expressions so package size never
	// leaks into text similarity (quantity is validated separately).
	unitTokenRegex = regexp.MustCompile(
		`\b\d+\s*(g|gr|grs|gramas|kg|kgs|quilos|ml|l|lt|lts|litros|un|und|unid|unidades|pct|pacote|cx|caixa)\b`,
	)
)

// noiseWords is the fixed stoplist of marketing terms that retailers append
// to product names and that carry no identity signal.
var noiseWords = map[string]bool{
	"promocao":  true,
	"promo":     true,
	"oferta":    true,
	"leve":      true,
	"pague":     true,
	"gratis":    true,
	"novo":      true,
	"exclusivo": true,
	"especial":  true,
	"super":     true,
	"mega":      true,
	"ultra":     true,
	"premium":   true,
	"gold":      true,
	"plus":      true,
	"extra":     true,
}

var diacriticsTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// stripDiacritics folds accented characters to their ASCII base form so
// "Joao" and "João" tokenize identically.
func stripDiacritics(s string) string {
	out, _, err := transform.String(diacriticsTransformer, s)
	if err != nil {
		return s
	}
	return out
}

// NormalizeName lowercases, strips diacritics and punctuation, removes unit
// expressions and marketing noise words, and collapses whitespace.
func NormalizeName(name string) string {
	s := strings.ToLower(stripDiacritics(name))
	s = nonAlphanumericRegex.ReplaceAllString(s, " ")
	s = unitTokenRegex.ReplaceAllString(s, " ")

	fields := strings.Fields(s)
	kept := fields[:0]
	for _, f := range fields {
		if !noiseWords[f] {
			kept = append(kept, f)
		}
	}
	return strings.Join(kept, " ")
}

// NormalizeNameExtended additionally removes embedded digits (size numbers
// that survived unit stripping, e.g. "coca cola 2"), since quantity is
// gated separately and must not bias similarity.
func NormalizeNameExtended(name string) string {
	s := digitsRegex.ReplaceAllString(NormalizeName(name), " ")
	return strings.TrimSpace(multipleSpacesRegex.ReplaceAllString(s, " "))
}

// GetTokens splits the extended-normalized name into tokens of length > 2.
func GetTokens(name string) []string {
	var tokens []string
	for _, f := range strings.Fields(NormalizeNameExtended(name)) {
		if len(f) > 2 {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// GetTokensWithSynonyms expands a token set through the synonym dictionary,
// so colloquial naming differences across retailers ("chiclete" vs "goma")
// still share tokens. Returns a deduplicated set.
func GetTokensWithSynonyms(name string, synonyms map[string][]string) []string {
	base := GetTokens(name)
	seen := make(map[string]bool, len(base)*2)
	var out []string
	add := func(t string) {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	for _, t := range base {
		add(t)
		for _, syn := range synonyms[t] {
			add(syn)
		}
	}
	return out
}

// TokenIndex is an inverted mapping from normalized token to positions in a
// product slice. Rebuilt per comparison run over the unmatched remainder of
// one store; ephemeral, owned by the fuzzy-matching stage.
type TokenIndex map[string][]int

// BuildTokenIndex indexes each pre-tokenized product by its tokens.
func BuildTokenIndex(tokenSets [][]string) TokenIndex {
	idx := make(TokenIndex)
	for i, tokens := range tokenSets {
		for _, t := range tokens {
			idx[t] = append(idx[t], i)
		}
	}
	return idx
}

// FindCandidates returns positions sharing at least 2 tokens with the query,
// ranked by shared-token count descending (position ascending on ties, so
// ordering stays deterministic), truncated at maxCandidates. This bounds
// candidate-pair evaluation to near-linear total work instead of all-pairs.
func FindCandidates(queryTokens []string, idx TokenIndex, maxCandidates int) []int {
	if maxCandidates <= 0 {
		maxCandidates = 50
	}

	shared := make(map[int]int)
	for _, t := range queryTokens {
		for _, pos := range idx[t] {
			shared[pos]++
		}
	}

	var candidates []int
	for pos, count := range shared {
		if count >= 2 {
			candidates = append(candidates, pos)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		ci, cj := candidates[i], candidates[j]
		if shared[ci] != shared[cj] {
			return shared[ci] > shared[cj]
		}
		return ci < cj
	})

	if len(candidates) > maxCandidates {
		candidates = candidates[:maxCandidates]
	}
	return candidates
}
