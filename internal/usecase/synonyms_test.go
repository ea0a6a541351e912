package usecase

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultSynonymsSymmetry(t *testing.T) {
	for term, syns := range DefaultSynonyms {
		for _, syn := range syns {
			found := false
			for _, back := range DefaultSynonyms[syn] {
				if back == term {
					found = true
				}
			}
			if !found {
				t.Errorf("synonym %q -> %q has no reverse entry", term, syn)
			}
		}
	}
}

func TestLoadSynonymsFile(t *testing.T) {
	t.Run("merges file entries over the defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "synonyms.json")
		if err := os.WriteFile(path, []byte(`{"danone": ["iogurte"], "chiclete": ["pastilha"]}`), 0o644); err != nil {
			t.Fatal(err)
		}

		merged, err := LoadSynonymsFile(path)
		if err != nil {
			t.Fatalf("LoadSynonymsFile() error = %v", err)
		}
		if len(merged["danone"]) != 1 || merged["danone"][0] != "iogurte" {
			t.Errorf("danone = %v", merged["danone"])
		}
		// Existing entry keeps its default synonyms plus the addition.
		got := merged["chiclete"]
		if len(got) != 2 || got[0] != "goma" || got[1] != "pastilha" {
			t.Errorf("chiclete = %v, want [goma pastilha]", got)
		}
		// Defaults untouched by the merge.
		if len(DefaultSynonyms["chiclete"]) != 1 {
			t.Errorf("DefaultSynonyms mutated: %v", DefaultSynonyms["chiclete"])
		}
	})

	t.Run("missing file is an error", func(t *testing.T) {
		if _, err := LoadSynonymsFile("/no/such/file.json"); err == nil {
			t.Error("expected an error for a missing file")
		}
	})

	t.Run("malformed JSON is an error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.json")
		os.WriteFile(path, []byte("{not json"), 0o644)
		if _, err := LoadSynonymsFile(path); err == nil {
			t.Error("expected an error for malformed JSON")
		}
	})
}
