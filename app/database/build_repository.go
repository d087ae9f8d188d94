package database

import (
	"database/sql"
	"fmt"
	"sort"
	"time"
)

// BuildRepository handles database operations for builds. Every mutation
// runs inside a transaction together with the trigger-maintained search
// index refresh, so readers observe either the pre-mutation or the
// post-mutation state of both, never a half-updated index.
type BuildRepository struct {
	db  *DB
	now func() time.Time
}

// NewBuildRepository creates a new build repository
func NewBuildRepository(db *DB) *BuildRepository {
	return &BuildRepository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// Upsert inserts a new build or updates the existing row matching
// (source, source_id). Returns the row id and whether a new row was
// inserted. The update path touches scraper-owned columns only:
// translations, translation status and scraped_at are left alone, so a
// re-scrape never clobbers completed translation work.
func (r *BuildRepository) Upsert(b *Build) (int64, bool, error) {
	if err := validateBuild(b); err != nil {
		return 0, false, err
	}

	skillsEN, err := marshalList(b.SkillsEN)
	if err != nil {
		return 0, false, fmt.Errorf("skills_en: %w", ErrValidation)
	}
	buildTypes, _ := marshalList(b.BuildTypes)
	playstyle, _ := marshalList(b.Playstyle)
	activities, _ := marshalList(b.Activities)
	damageTypes, _ := marshalList(b.DamageTypes)
	specialty, _ := marshalList(b.Specialty)

	tx, err := r.db.Begin()
	if err != nil {
		return 0, false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := r.now()

	var existingID int64
	err = tx.QueryRow(`SELECT id FROM builds WHERE source = ? AND source_id = ?`,
		b.Source, b.SourceID).Scan(&existingID)

	var id int64
	var inserted bool
	switch {
	case err == sql.ErrNoRows:
		res, err := tx.Exec(`
			INSERT INTO builds (
				source, source_id, source_url,
				name_en, class_en, ascendancy_en, skills_en,
				description_en, pros_cons_en, core_equipment_en,
				patch, build_types, author,
				favorites, verified, hc, ssf,
				playstyle, activities, cost_tier, damage_types,
				combat_style, specialty,
				translation_status, scraped_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, b.Source, b.SourceID, b.SourceURL,
			b.NameEN, b.ClassEN, nullable(b.AscendancyEN), skillsEN,
			nullable(b.DescriptionEN), nullable(b.ProsConsEN), nullable(b.CoreEquipmentEN),
			nullable(b.Patch), buildTypes, nullable(b.Author),
			b.Favorites, b.Verified, b.HC, b.SSF,
			playstyle, activities, nullable(b.CostTier), damageTypes,
			nullable(b.CombatStyle), specialty,
			TranslationPending, now, now)
		if err != nil {
			if isUniqueConstraintErr(err) {
				return 0, false, fmt.Errorf("build %s/%s: %w", b.Source, b.SourceID, ErrConflict)
			}
			return 0, false, fmt.Errorf("failed to insert build: %w", err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return 0, false, fmt.Errorf("failed to read inserted id: %w", err)
		}
		inserted = true
	case err != nil:
		return 0, false, fmt.Errorf("failed to check existing build: %w", err)
	default:
		_, err := tx.Exec(`
			UPDATE builds SET
				source_url = ?,
				name_en = ?, class_en = ?, ascendancy_en = ?, skills_en = ?,
				description_en = ?, pros_cons_en = ?, core_equipment_en = ?,
				patch = ?, build_types = ?, author = ?,
				favorites = ?, verified = ?, hc = ?, ssf = ?,
				playstyle = ?, activities = ?, cost_tier = ?, damage_types = ?,
				combat_style = ?, specialty = ?,
				updated_at = ?
			WHERE id = ?
		`, b.SourceURL,
			b.NameEN, b.ClassEN, nullable(b.AscendancyEN), skillsEN,
			nullable(b.DescriptionEN), nullable(b.ProsConsEN), nullable(b.CoreEquipmentEN),
			nullable(b.Patch), buildTypes, nullable(b.Author),
			b.Favorites, b.Verified, b.HC, b.SSF,
			playstyle, activities, nullable(b.CostTier), damageTypes,
			nullable(b.CombatStyle), specialty,
			now, existingID)
		if err != nil {
			return 0, false, fmt.Errorf("failed to update build: %w", err)
		}
		id = existingID
	}

	if err := tx.Commit(); err != nil {
		return 0, false, fmt.Errorf("failed to commit build upsert: %w", err)
	}

	return id, inserted, nil
}

// Get returns the full bilingual record for the given id.
func (r *BuildRepository) Get(id int64) (*Build, error) {
	row := r.db.QueryRow(buildSelect+` WHERE id = ?`, id)
	b, err := scanBuild(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("build %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get build: %w", err)
	}
	return b, nil
}

// GetBySourceID returns the build identified by its (source, source_id) pair.
func (r *BuildRepository) GetBySourceID(source, sourceID string) (*Build, error) {
	row := r.db.QueryRow(buildSelect+` WHERE source = ? AND source_id = ?`, source, sourceID)
	b, err := scanBuild(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("build %s/%s: %w", source, sourceID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get build: %w", err)
	}
	return b, nil
}

// UpdateTranslation writes the translator-owned columns and the new
// translation status for an existing build. translated_at is stamped on
// the first successful completion only. Returns ErrConflict when the
// build has been deleted in the meantime.
func (r *BuildRepository) UpdateTranslation(id int64, tr TranslationUpdate, status string) error {
	switch status {
	case TranslationCompleted, TranslationFailed:
	case TranslationPending:
		// Only ResetTranslations may move builds back to pending, so
		// terminal states never revert through the translator path.
		return fmt.Errorf("translation status %q is only reachable through a reset: %w",
			status, ErrValidation)
	default:
		return fmt.Errorf("translation status %q: %w", status, ErrValidation)
	}

	skillsJA, err := marshalList(tr.SkillsJA)
	if err != nil {
		return fmt.Errorf("skills_ja: %w", ErrValidation)
	}

	now := r.now()
	var translatedAt interface{}
	if status == TranslationCompleted {
		translatedAt = now
	}

	res, err := r.db.Exec(`
		UPDATE builds SET
			name_ja = ?, class_ja = ?, ascendancy_ja = ?, skills_ja = ?,
			description_ja = ?, pros_cons_ja = ?, core_equipment_ja = ?,
			translation_status = ?,
			translated_at = COALESCE(translated_at, ?),
			updated_at = ?
		WHERE id = ?
	`, nullable(tr.NameJA), nullable(tr.ClassJA), nullable(tr.AscendancyJA), skillsJA,
		nullable(tr.DescriptionJA), nullable(tr.ProsConsJA), nullable(tr.CoreEquipmentJA),
		status, translatedAt, now, id)
	if err != nil {
		return fmt.Errorf("failed to update translation: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check translation update: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("build %d no longer exists: %w", id, ErrConflict)
	}

	return nil
}

// Delete removes a build; the delete trigger drops its index entry in
// the same transaction.
func (r *BuildRepository) Delete(id int64) error {
	res, err := r.db.Exec(`DELETE FROM builds WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete build: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("build %d: %w", id, ErrNotFound)
	}

	return nil
}

// GetPendingTranslations returns builds awaiting translation, oldest first.
func (r *BuildRepository) GetPendingTranslations(limit int) ([]Build, error) {
	rows, err := r.db.Query(buildSelect+`
		WHERE translation_status = ?
		ORDER BY id
		LIMIT ?`, TranslationPending, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending translations: %w", err)
	}
	defer rows.Close()

	var builds []Build
	for rows.Next() {
		b, err := scanBuild(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan build row: %w", err)
		}
		builds = append(builds, *b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating build rows: %w", err)
	}

	return builds, nil
}

// ResetTranslations moves every build back to pending and clears the
// translation timestamps. Used when the translator is re-run from scratch.
func (r *BuildRepository) ResetTranslations() (int64, error) {
	res, err := r.db.Exec(`
		UPDATE builds
		SET translation_status = ?, translated_at = NULL, updated_at = ?`,
		TranslationPending, r.now())
	if err != nil {
		return 0, fmt.Errorf("failed to reset translations: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count reset rows: %w", err)
	}

	return affected, nil
}

// GetCount returns the total number of builds
func (r *BuildRepository) GetCount() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM builds`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get build count: %w", err)
	}
	return count, nil
}

// GetStats returns build counts broken down by source and translation status.
func (r *BuildRepository) GetStats() (*SourceStats, error) {
	stats := &SourceStats{
		BySource:      make(map[string]int),
		ByTranslation: make(map[string]int),
	}

	if err := r.db.QueryRow(`SELECT COUNT(*) FROM builds`).Scan(&stats.Total); err != nil {
		return nil, fmt.Errorf("failed to get build count: %w", err)
	}

	rows, err := r.db.Query(`SELECT source, COUNT(*) FROM builds GROUP BY source`)
	if err != nil {
		return nil, fmt.Errorf("failed to get source stats: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var source string
		var count int
		if err := rows.Scan(&source, &count); err != nil {
			return nil, fmt.Errorf("failed to scan source stats: %w", err)
		}
		stats.BySource[source] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating source stats: %w", err)
	}

	trRows, err := r.db.Query(`SELECT translation_status, COUNT(*) FROM builds GROUP BY translation_status`)
	if err != nil {
		return nil, fmt.Errorf("failed to get translation stats: %w", err)
	}
	defer trRows.Close()
	for trRows.Next() {
		var status string
		var count int
		if err := trRows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan translation stats: %w", err)
		}
		stats.ByTranslation[status] = count
	}
	if err := trRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating translation stats: %w", err)
	}

	return stats, nil
}

// GetDistinctClasses returns all English class names present in the store.
func (r *BuildRepository) GetDistinctClasses() ([]string, error) {
	return r.distinctColumn(`SELECT DISTINCT class_en FROM builds ORDER BY class_en`)
}

// GetDistinctAscendancies returns ascendancy names, optionally narrowed
// to one class.
func (r *BuildRepository) GetDistinctAscendancies(class string) ([]string, error) {
	if class != "" {
		return r.distinctColumn(`
			SELECT DISTINCT ascendancy_en FROM builds
			WHERE class_en = ? AND ascendancy_en IS NOT NULL
			ORDER BY ascendancy_en`, class)
	}
	return r.distinctColumn(`
		SELECT DISTINCT ascendancy_en FROM builds
		WHERE ascendancy_en IS NOT NULL
		ORDER BY ascendancy_en`)
}

// GetDistinctCombatStyles returns the combat styles present in the store.
func (r *BuildRepository) GetDistinctCombatStyles() ([]string, error) {
	return r.distinctColumn(`
		SELECT DISTINCT combat_style FROM builds
		WHERE combat_style IS NOT NULL
		ORDER BY combat_style`)
}

// GetDistinctSpecialties extracts the distinct specialty tags from the
// JSON list column.
func (r *BuildRepository) GetDistinctSpecialties() ([]string, error) {
	rows, err := r.db.Query(`SELECT DISTINCT specialty FROM builds WHERE specialty IS NOT NULL`)
	if err != nil {
		return nil, fmt.Errorf("failed to get specialties: %w", err)
	}
	defer rows.Close()

	seen := make(map[string]bool)
	for rows.Next() {
		var raw sql.NullString
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan specialty row: %w", err)
		}
		for _, s := range unmarshalList(raw) {
			seen[s] = true
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating specialty rows: %w", err)
	}

	specialties := make([]string, 0, len(seen))
	for s := range seen {
		specialties = append(specialties, s)
	}
	sort.Strings(specialties)
	return specialties, nil
}

// VerifyIndex checks that the search index still matches the builds
// table. The FTS5 integrity-check command validates index content
// against the external content table; a row count comparison catches
// entries for rows that no longer exist. Any mismatch is fatal.
func (r *BuildRepository) VerifyIndex() error {
	var buildCount, indexCount int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM builds`).Scan(&buildCount); err != nil {
		return fmt.Errorf("failed to count builds: %w", err)
	}
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM builds_fts`).Scan(&indexCount); err != nil {
		return fmt.Errorf("failed to count index entries: %w", err)
	}
	if buildCount != indexCount {
		return fmt.Errorf("builds has %d rows, index has %d: %w", buildCount, indexCount, ErrIndexDesync)
	}

	if _, err := r.db.Exec(`INSERT INTO builds_fts(builds_fts, rank) VALUES ('integrity-check', 1)`); err != nil {
		return fmt.Errorf("index content mismatch: %w", ErrIndexDesync)
	}

	return nil
}

func (r *BuildRepository) distinctColumn(query string, args ...interface{}) ([]string, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query distinct values: %w", err)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan distinct value: %w", err)
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating distinct values: %w", err)
	}

	return values, nil
}

func validateBuild(b *Build) error {
	switch {
	case b.Source == "":
		return fmt.Errorf("source is required: %w", ErrValidation)
	case b.SourceID == "":
		return fmt.Errorf("source_id is required: %w", ErrValidation)
	case b.SourceURL == "":
		return fmt.Errorf("source_url is required: %w", ErrValidation)
	case b.NameEN == "":
		return fmt.Errorf("name_en is required: %w", ErrValidation)
	case b.ClassEN == "":
		return fmt.Errorf("class_en is required: %w", ErrValidation)
	case b.CombatStyle != "" && !validCombatStyle(b.CombatStyle):
		return fmt.Errorf("combat_style %q: %w", b.CombatStyle, ErrValidation)
	}
	return nil
}

func validCombatStyle(s string) bool {
	switch s {
	case "melee", "ranged", "caster", "summoner", "hybrid":
		return true
	}
	return false
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

const buildSelect = `
	SELECT id, source, source_id, source_url,
	       name_en, COALESCE(name_ja, ''),
	       class_en, COALESCE(class_ja, ''),
	       COALESCE(ascendancy_en, ''), COALESCE(ascendancy_ja, ''),
	       skills_en, skills_ja,
	       COALESCE(description_en, ''), COALESCE(description_ja, ''),
	       COALESCE(pros_cons_en, ''), COALESCE(pros_cons_ja, ''),
	       COALESCE(core_equipment_en, ''), COALESCE(core_equipment_ja, ''),
	       COALESCE(patch, ''), build_types, COALESCE(author, ''),
	       favorites, verified, hc, ssf,
	       playstyle, activities, COALESCE(cost_tier, ''), damage_types,
	       COALESCE(combat_style, ''), specialty,
	       translation_status, scraped_at, translated_at, updated_at
	FROM builds`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBuild(row rowScanner) (*Build, error) {
	var b Build
	var skillsEN, skillsJA, buildTypes, playstyle, activities, damageTypes, specialty sql.NullString
	var translatedAt sql.NullTime

	err := row.Scan(
		&b.ID, &b.Source, &b.SourceID, &b.SourceURL,
		&b.NameEN, &b.NameJA,
		&b.ClassEN, &b.ClassJA,
		&b.AscendancyEN, &b.AscendancyJA,
		&skillsEN, &skillsJA,
		&b.DescriptionEN, &b.DescriptionJA,
		&b.ProsConsEN, &b.ProsConsJA,
		&b.CoreEquipmentEN, &b.CoreEquipmentJA,
		&b.Patch, &buildTypes, &b.Author,
		&b.Favorites, &b.Verified, &b.HC, &b.SSF,
		&playstyle, &activities, &b.CostTier, &damageTypes,
		&b.CombatStyle, &specialty,
		&b.TranslationStatus, &b.ScrapedAt, &translatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	b.SkillsEN = unmarshalList(skillsEN)
	b.SkillsJA = unmarshalList(skillsJA)
	b.BuildTypes = unmarshalList(buildTypes)
	b.Playstyle = unmarshalList(playstyle)
	b.Activities = unmarshalList(activities)
	b.DamageTypes = unmarshalList(damageTypes)
	b.Specialty = unmarshalList(specialty)
	if translatedAt.Valid {
		b.TranslatedAt = &translatedAt.Time
	}

	return &b, nil
}
