package terms

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/lysym/poe-build-search/app/database"
)

// Loader reads the term dictionary seed file. The file maps each
// category to English terms and their Japanese translations:
//
//	class:
//	  Witch: ウィッチ
//	skill:
//	  Lightning Arrow: ライトニングアロー
type Loader struct {
	path string
}

// NewLoader creates a new seed file loader
func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Load parses and validates the seed file. A missing file is not an
// error; it yields an empty term list so the service can run without a
// dictionary.
func (l *Loader) Load() ([]database.Term, error) {
	data, err := os.ReadFile(l.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var raw map[string]map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}

	validCategories := map[string]bool{
		database.TermCategoryClass:      true,
		database.TermCategoryAscendancy: true,
		database.TermCategorySkill:      true,
		database.TermCategoryKeyword:    true,
	}

	var terms []database.Term
	for category, entries := range raw {
		if !validCategories[category] {
			return nil, fmt.Errorf("invalid term category %q in %s", category, l.path)
		}
		for en, ja := range entries {
			if en == "" || ja == "" {
				return nil, fmt.Errorf("empty term in category %q in %s", category, l.path)
			}
			terms = append(terms, database.Term{
				Category: category,
				TermEN:   en,
				TermJA:   ja,
			})
		}
	}

	// Map iteration order is random; keep seeding deterministic.
	sort.Slice(terms, func(i, j int) bool {
		if terms[i].Category != terms[j].Category {
			return terms[i].Category < terms[j].Category
		}
		return terms[i].TermEN < terms[j].TermEN
	})

	return terms, nil
}
