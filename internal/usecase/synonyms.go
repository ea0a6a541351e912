package usecase

import (
	"encoding/json"
	"fmt"
	"os"
)

// DefaultSynonyms maps grocery terms that retailers use interchangeably.
// The dictionary is data, not logic: callers may replace or extend it via
// configuration (matching.synonyms_file) without touching matching code.
// Every entry must be symmetric, keep both directions listed.
var DefaultSynonyms = map[string][]string{
	"chiclete":     {"goma"},
	"goma":         {"chiclete"},
	"bolacha":      {"biscoito"},
	"biscoito":     {"bolacha"},
	"macarrao":     {"massa"},
	"massa":        {"macarrao"},
	"refri":        {"refrigerante"},
	"refrigerante": {"refri"},
	"cachaca":      {"aguardente"},
	"aguardente":   {"cachaca"},
}

// LoadSynonymsFile reads a synonym dictionary from a JSON file shaped like
// {"chiclete": ["goma"], ...}. Entries are merged over DefaultSynonyms, so a
// deployment only needs to list its additions.
func LoadSynonymsFile(path string) (map[string][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read synonyms file: %w", err)
	}

	var extra map[string][]string
	if err := json.Unmarshal(data, &extra); err != nil {
		return nil, fmt.Errorf("failed to parse synonyms file: %w", err)
	}

	merged := make(map[string][]string, len(DefaultSynonyms)+len(extra))
	for k, v := range DefaultSynonyms {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = append(merged[k], v...)
	}
	return merged, nil
}
