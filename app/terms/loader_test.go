package terms

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lysym/poe-build-search/app/database"
)

func writeSeedFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "terms.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write seed file: %v", err)
	}
	return path
}

func TestLoader_Load(t *testing.T) {
	path := writeSeedFile(t, `
class:
  Witch: ウィッチ
  Ranger: レンジャー
skill:
  Lightning Arrow: ライトニングアロー
keyword:
  minion: ミニオン
`)

	terms, err := NewLoader(path).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(terms) != 4 {
		t.Fatalf("Expected 4 terms, got %d", len(terms))
	}

	// Output is sorted by category then term
	first := terms[0]
	if first.Category != database.TermCategoryClass || first.TermEN != "Ranger" || first.TermJA != "レンジャー" {
		t.Errorf("Unexpected first term: %+v", first)
	}
	last := terms[3]
	if last.Category != database.TermCategorySkill || last.TermEN != "Lightning Arrow" {
		t.Errorf("Unexpected last term: %+v", last)
	}
}

func TestLoader_LoadMissingFile(t *testing.T) {
	terms, err := NewLoader(filepath.Join(t.TempDir(), "nope.yaml")).Load()
	if err != nil {
		t.Fatalf("Expected missing file to be tolerated, got %v", err)
	}
	if terms != nil {
		t.Errorf("Expected no terms, got %v", terms)
	}
}

func TestLoader_LoadInvalidCategory(t *testing.T) {
	path := writeSeedFile(t, `
weapon:
  Bow: 弓
`)

	if _, err := NewLoader(path).Load(); err == nil {
		t.Error("Expected error for unknown category")
	}
}

func TestLoader_LoadEmptyTerm(t *testing.T) {
	path := writeSeedFile(t, `
class:
  Witch: ""
`)

	if _, err := NewLoader(path).Load(); err == nil {
		t.Error("Expected error for empty translation")
	}
}

func TestLoader_LoadMalformedYAML(t *testing.T) {
	path := writeSeedFile(t, "class: [not, a, map]")

	if _, err := NewLoader(path).Load(); err == nil {
		t.Error("Expected error for malformed seed file")
	}
}
