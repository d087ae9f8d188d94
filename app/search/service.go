package search

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lysym/poe-build-search/app/database"
)

const (
	DefaultPerPage = 24
	MaxPerPage     = 100
)

// Request describes one search query. All filters are exact matches and
// are ANDed together with the keyword match.
type Request struct {
	Keyword           string
	Source            string
	Class             string
	Ascendancy        string
	TranslationStatus string
	CombatStyle       string
	Patch             string
	Specialties       []string
	TranslatedOnly    bool
	Sort              string // favorites, updated, name
	Page              int
	PerPage           int
}

// Result is an ordered page of build summaries plus the total match
// count for pagination.
type Result struct {
	Builds     []database.BuildSummary
	Total      int
	Page       int
	PerPage    int
	TotalPages int
	Keyword    string
}

// Service is the read-only query engine. It obtains candidates and
// relevance from the trigram index, joins them back to the builds table
// for relational filtering, and pages the result with a stable order.
type Service struct {
	db      *database.DB
	terms   database.TermStore
	perPage int
}

// NewService creates a search service. terms may be nil to disable
// dictionary-based synonym expansion; perPage overrides the default
// page size when positive.
func NewService(db *database.DB, terms database.TermStore, perPage int) *Service {
	if perPage < 1 || perPage > MaxPerPage {
		perPage = DefaultPerPage
	}
	return &Service{db: db, terms: terms, perPage: perPage}
}

// Search executes a ranked, filtered build lookup. Unknown filter
// values and keywords matching nothing yield an empty result, not an
// error.
func (s *Service) Search(ctx context.Context, req Request) (*Result, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PerPage < 1 {
		req.PerPage = s.perPage
	}
	if req.PerPage > MaxPerPage {
		req.PerPage = MaxPerPage
	}

	keyword := Normalize(req.Keyword)

	var match MatchQuery
	if keyword != "" {
		match = BuildMatchQuery(keyword, s.expandSynonyms(keyword))
	}

	from := `FROM builds b`
	var conds []string
	var args []interface{}

	if match.Indexable() {
		from += ` JOIN (SELECT rowid AS build_id, rank FROM builds_fts WHERE builds_fts MATCH ?) m ON m.build_id = b.id`
		args = append(args, match.Expression)
	}

	// Tokens too short for the trigram index degrade to a substring
	// scan over the indexed columns. Dictionary counterparts that do
	// reach trigram width are ORed in through the index, so a seeded
	// term widens the token's match rather than narrowing it.
	for _, st := range match.Short {
		pattern := "%" + escapeLike(st.Token) + "%"
		for range indexedColumns {
			args = append(args, pattern)
		}
		if st.Match == "" {
			conds = append(conds, likeAnyColumn)
			continue
		}
		conds = append(conds, "("+likeAnyColumn+
			" OR b.id IN (SELECT rowid FROM builds_fts WHERE builds_fts MATCH ?))")
		args = append(args, st.Match)
	}

	conds, args = appendFilters(conds, args, req)

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	countQuery := `SELECT COUNT(*) ` + from + where
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count search results: %w", err)
	}

	order := orderClause(req.Sort, match.Indexable())
	offset := (req.Page - 1) * req.PerPage
	pageQuery := summarySelect + ` ` + from + where + order + ` LIMIT ? OFFSET ?`
	pageArgs := append(append([]interface{}{}, args...), req.PerPage, offset)

	rows, err := s.db.QueryContext(ctx, pageQuery, pageArgs...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute search: %w", err)
	}
	defer rows.Close()

	builds := make([]database.BuildSummary, 0, req.PerPage)
	for rows.Next() {
		summary, err := scanSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan search result: %w", err)
		}
		builds = append(builds, *summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating search results: %w", err)
	}

	totalPages := (total + req.PerPage - 1) / req.PerPage

	return &Result{
		Builds:     builds,
		Total:      total,
		Page:       req.Page,
		PerPage:    req.PerPage,
		TotalPages: totalPages,
		Keyword:    req.Keyword,
	}, nil
}

// expandSynonyms looks each keyword token up in the term dictionary so
// an English query can reach Japanese-only fields and vice versa.
func (s *Service) expandSynonyms(keyword string) map[string][]string {
	if s.terms == nil {
		return nil
	}

	synonyms := make(map[string][]string)
	for _, token := range strings.Fields(keyword) {
		translations, err := s.terms.FindTranslations(token)
		if err != nil || len(translations) == 0 {
			continue
		}
		synonyms[token] = translations
	}
	return synonyms
}

func appendFilters(conds []string, args []interface{}, req Request) ([]string, []interface{}) {
	if req.Source != "" {
		conds = append(conds, `b.source = ?`)
		args = append(args, req.Source)
	}
	if req.Class != "" {
		conds = append(conds, `b.class_en = ?`)
		args = append(args, req.Class)
	}
	if req.Ascendancy != "" {
		conds = append(conds, `b.ascendancy_en = ?`)
		args = append(args, req.Ascendancy)
	}
	if req.TranslationStatus != "" {
		conds = append(conds, `b.translation_status = ?`)
		args = append(args, req.TranslationStatus)
	}
	if req.TranslatedOnly {
		conds = append(conds, `b.translation_status = ?`)
		args = append(args, database.TranslationCompleted)
	}
	if req.CombatStyle != "" {
		conds = append(conds, `b.combat_style = ?`)
		args = append(args, req.CombatStyle)
	}
	if req.Patch != "" {
		conds = append(conds, `b.patch = ?`)
		args = append(args, req.Patch)
	}
	if len(req.Specialties) > 0 {
		specialtyConds := make([]string, 0, len(req.Specialties))
		for _, spec := range req.Specialties {
			specialtyConds = append(specialtyConds, `b.specialty LIKE ?`)
			args = append(args, `%"`+escapeLike(spec)+`"%`)
		}
		conds = append(conds, `(`+strings.Join(specialtyConds, " OR ")+`)`)
	}
	return conds, args
}

// orderClause returns the stable ordering for a result set. With a
// keyword, relevance rank comes first; the id tiebreak keeps page
// boundaries identical across repeated queries.
func orderClause(sort string, ranked bool) string {
	if ranked {
		return ` ORDER BY m.rank, b.id`
	}
	switch sort {
	case "updated":
		return ` ORDER BY b.updated_at DESC, b.id`
	case "name":
		return ` ORDER BY b.name_en COLLATE NOCASE, b.id`
	default:
		return ` ORDER BY b.favorites DESC, b.id`
	}
}

var indexedColumns = []string{
	"b.name_en", "b.name_ja",
	"b.class_en", "b.class_ja",
	"b.ascendancy_en", "b.ascendancy_ja",
	"b.skills_en", "b.skills_ja",
	"b.description_en", "b.description_ja",
	"b.pros_cons_en", "b.pros_cons_ja",
	"b.core_equipment_en", "b.core_equipment_ja",
}

var likeAnyColumn = func() string {
	parts := make([]string, len(indexedColumns))
	for i, col := range indexedColumns {
		parts[i] = col + ` LIKE ? ESCAPE '\'`
	}
	return "(" + strings.Join(parts, " OR ") + ")"
}()

const summarySelect = `
	SELECT b.id, b.source, b.source_url,
	       b.name_en, COALESCE(b.name_ja, ''),
	       b.class_en, COALESCE(b.class_ja, ''),
	       COALESCE(b.ascendancy_en, ''), COALESCE(b.ascendancy_ja, ''),
	       b.skills_ja, b.build_types,
	       b.favorites, b.verified,
	       COALESCE(b.cost_tier, ''), COALESCE(b.patch, ''),
	       COALESCE(b.combat_style, ''), b.translation_status`

func scanSummary(rows *sql.Rows) (*database.BuildSummary, error) {
	var s database.BuildSummary
	var skillsJA, buildTypes sql.NullString

	err := rows.Scan(&s.ID, &s.Source, &s.SourceURL,
		&s.NameEN, &s.NameJA,
		&s.ClassEN, &s.ClassJA,
		&s.AscendancyEN, &s.AscendancyJA,
		&skillsJA, &buildTypes,
		&s.Favorites, &s.Verified,
		&s.CostTier, &s.Patch,
		&s.CombatStyle, &s.TranslationStatus)
	if err != nil {
		return nil, err
	}

	s.SkillsJA = decodeList(skillsJA)
	s.BuildTypes = decodeList(buildTypes)

	return &s, nil
}

// decodeList parses a JSON list column; NULL and malformed values both
// decode to an empty list.
func decodeList(raw sql.NullString) []string {
	if !raw.Valid || raw.String == "" {
		return nil
	}
	var values []string
	if err := json.Unmarshal([]byte(raw.String), &values); err != nil {
		return nil
	}
	return values
}
