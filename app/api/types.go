package api

import (
	"github.com/lysym/poe-build-search/app/database"
	"github.com/lysym/poe-build-search/app/search"
)

type Handler struct {
	buildRepo  database.BuildStore
	ratingRepo database.RatingStore
	termRepo   database.TermStore
	searcher   *search.Service
}

// UpsertBuildRequest is the producer write payload for one scraped build.
type UpsertBuildRequest struct {
	Source        string   `json:"source" binding:"required"`
	SourceID      string   `json:"source_id" binding:"required"`
	SourceURL     string   `json:"source_url" binding:"required"`
	NameEN        string   `json:"name_en" binding:"required"`
	ClassEN       string   `json:"class_en" binding:"required"`
	AscendancyEN  string   `json:"ascendancy_en"`
	SkillsEN      []string `json:"skills_en"`
	DescriptionEN string   `json:"description_en"`
	ProsConsEN    string   `json:"pros_cons_en"`
	CoreEquipEN   string   `json:"core_equipment_en"`
	Patch         string   `json:"patch"`
	BuildTypes    []string `json:"build_types"`
	Author        string   `json:"author"`
	Favorites     int      `json:"favorites"`
	Verified      bool     `json:"verified"`
	HC            bool     `json:"hc"`
	SSF           bool     `json:"ssf"`
	Playstyle     []string `json:"playstyle"`
	Activities    []string `json:"activities"`
	CostTier      string   `json:"cost_tier"`
	DamageTypes   []string `json:"damage_types"`
	CombatStyle   string   `json:"combat_style"`
	Specialty     []string `json:"specialty"`
}

// TranslationRequest is the translator write payload for one build.
type TranslationRequest struct {
	NameJA        string   `json:"name_ja"`
	ClassJA       string   `json:"class_ja"`
	AscendancyJA  string   `json:"ascendancy_ja"`
	SkillsJA      []string `json:"skills_ja"`
	DescriptionJA string   `json:"description_ja"`
	ProsConsJA    string   `json:"pros_cons_ja"`
	CoreEquipJA   string   `json:"core_equipment_ja"`
	Status        string   `json:"status" binding:"required"`
}

// RatingRequest is one aggregated rating in a wholesale replace.
type RatingRequest struct {
	BuildID          *int64   `json:"build_id"`
	BuildNameMatched string   `json:"build_name_matched" binding:"required"`
	Score            int      `json:"score"`
	WeightedScore    float64  `json:"weighted_score"`
	MentionCount     int      `json:"mention_count"`
	CommentCount     int      `json:"comment_count"`
	Sentiment        string   `json:"sentiment"`
	SummaryEN        string   `json:"summary_en"`
	SummaryJA        string   `json:"summary_ja"`
	SourceURLs       []string `json:"source_urls"`
}

// BuildSummaryResponse mirrors database.BuildSummary for JSON output.
type BuildSummaryResponse struct {
	ID                int64    `json:"id"`
	Source            string   `json:"source"`
	SourceURL         string   `json:"source_url"`
	NameEN            string   `json:"name_en"`
	NameJA            string   `json:"name_ja,omitempty"`
	ClassEN           string   `json:"class_en"`
	ClassJA           string   `json:"class_ja,omitempty"`
	AscendancyEN      string   `json:"ascendancy_en,omitempty"`
	AscendancyJA      string   `json:"ascendancy_ja,omitempty"`
	SkillsJA          []string `json:"skills_ja,omitempty"`
	BuildTypes        []string `json:"build_types,omitempty"`
	Favorites         int      `json:"favorites"`
	Verified          bool     `json:"verified"`
	CostTier          string   `json:"cost_tier,omitempty"`
	Patch             string   `json:"patch,omitempty"`
	CombatStyle       string   `json:"combat_style,omitempty"`
	TranslationStatus string   `json:"translation_status"`
}

// SearchResponse is the paged search result envelope.
type SearchResponse struct {
	Builds     []BuildSummaryResponse `json:"builds"`
	Total      int                    `json:"total"`
	Page       int                    `json:"page"`
	PerPage    int                    `json:"per_page"`
	TotalPages int                    `json:"total_pages"`
	Query      string                 `json:"query"`
}

func toSummaryResponse(s database.BuildSummary) BuildSummaryResponse {
	return BuildSummaryResponse{
		ID:                s.ID,
		Source:            s.Source,
		SourceURL:         s.SourceURL,
		NameEN:            s.NameEN,
		NameJA:            s.NameJA,
		ClassEN:           s.ClassEN,
		ClassJA:           s.ClassJA,
		AscendancyEN:      s.AscendancyEN,
		AscendancyJA:      s.AscendancyJA,
		SkillsJA:          s.SkillsJA,
		BuildTypes:        s.BuildTypes,
		Favorites:         s.Favorites,
		Verified:          s.Verified,
		CostTier:          s.CostTier,
		Patch:             s.Patch,
		CombatStyle:       s.CombatStyle,
		TranslationStatus: s.TranslationStatus,
	}
}
