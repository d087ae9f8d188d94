package database

import (
	"database/sql"
	"fmt"
)

// TermRepository handles database operations for the term dictionary.
// Read-heavy: the translator and query-time synonym expansion look
// terms up far more often than anything writes them.
type TermRepository struct {
	db *DB
}

// NewTermRepository creates a new term repository
func NewTermRepository(db *DB) *TermRepository {
	return &TermRepository{db: db}
}

func validCategory(category string) bool {
	switch category {
	case TermCategoryClass, TermCategoryAscendancy, TermCategorySkill, TermCategoryKeyword:
		return true
	}
	return false
}

// Upsert inserts a term or updates its translation.
func (r *TermRepository) Upsert(category, termEN, termJA string) error {
	if !validCategory(category) {
		return fmt.Errorf("term category %q: %w", category, ErrValidation)
	}
	if termEN == "" || termJA == "" {
		return fmt.Errorf("term_en and term_ja are required: %w", ErrValidation)
	}

	_, err := r.db.Exec(`
		INSERT INTO terms (category, term_en, term_ja)
		VALUES (?, ?, ?)
		ON CONFLICT (category, term_en) DO UPDATE SET term_ja = excluded.term_ja`,
		category, termEN, termJA)
	if err != nil {
		return fmt.Errorf("failed to upsert term: %w", err)
	}

	return nil
}

// Seed inserts the given terms, skipping entries that already exist so
// manual corrections in the database survive a reseed. Returns the
// number of newly inserted terms.
func (r *TermRepository) Seed(terms []Term) (int, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	inserted := 0
	for _, t := range terms {
		if !validCategory(t.Category) {
			return 0, fmt.Errorf("term category %q: %w", t.Category, ErrValidation)
		}
		res, err := tx.Exec(`
			INSERT OR IGNORE INTO terms (category, term_en, term_ja)
			VALUES (?, ?, ?)`, t.Category, t.TermEN, t.TermJA)
		if err != nil {
			return 0, fmt.Errorf("failed to seed term %q: %w", t.TermEN, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("failed to count seeded term: %w", err)
		}
		inserted += int(affected)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit term seed: %w", err)
	}

	return inserted, nil
}

// Lookup returns the Japanese translation of an English term within a category.
func (r *TermRepository) Lookup(category, termEN string) (string, error) {
	var termJA string
	err := r.db.QueryRow(`
		SELECT term_ja FROM terms
		WHERE category = ? AND term_en = ? COLLATE NOCASE`,
		category, termEN).Scan(&termJA)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("term %s/%s: %w", category, termEN, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("failed to look up term: %w", err)
	}
	return termJA, nil
}

// FindTranslations returns dictionary counterparts of the given word in
// either direction: Japanese terms for an English word and English
// terms for a Japanese word. Used for query-time synonym expansion.
func (r *TermRepository) FindTranslations(word string) ([]string, error) {
	rows, err := r.db.Query(`
		SELECT term_ja FROM terms WHERE term_en = ? COLLATE NOCASE
		UNION
		SELECT term_en FROM terms WHERE term_ja = ?`, word, word)
	if err != nil {
		return nil, fmt.Errorf("failed to find translations: %w", err)
	}
	defer rows.Close()

	var translations []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("failed to scan translation: %w", err)
		}
		translations = append(translations, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating translations: %w", err)
	}

	return translations, nil
}

// GetCount returns the number of dictionary entries
func (r *TermRepository) GetCount() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM terms`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get term count: %w", err)
	}
	return count, nil
}
