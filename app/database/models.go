package database

import (
	"time"
)

// Translation lifecycle states. Terminal states are only reverted by an
// explicit reset, never automatically.
const (
	TranslationPending   = "pending"
	TranslationCompleted = "completed"
	TranslationFailed    = "failed"
)

// Build represents a scraped build guide with bilingual content.
// List-valued fields are stored as JSON text columns; skills and
// equipment are order-significant, tag-like fields are not.
type Build struct {
	ID              int64    `json:"id"`
	Source          string   `json:"source"` // maxroll, mobalytics, youtube
	SourceID        string   `json:"source_id"`
	SourceURL       string   `json:"source_url"`
	NameEN          string   `json:"name_en"`
	NameJA          string   `json:"name_ja,omitempty"`
	ClassEN         string   `json:"class_en"`
	ClassJA         string   `json:"class_ja,omitempty"`
	AscendancyEN    string   `json:"ascendancy_en,omitempty"`
	AscendancyJA    string   `json:"ascendancy_ja,omitempty"`
	SkillsEN        []string `json:"skills_en,omitempty"`
	SkillsJA        []string `json:"skills_ja,omitempty"`
	DescriptionEN   string   `json:"description_en,omitempty"`
	DescriptionJA   string   `json:"description_ja,omitempty"`
	ProsConsEN      string   `json:"pros_cons_en,omitempty"`
	ProsConsJA      string   `json:"pros_cons_ja,omitempty"`
	CoreEquipmentEN string   `json:"core_equipment_en,omitempty"`
	CoreEquipmentJA string   `json:"core_equipment_ja,omitempty"`

	Patch       string   `json:"patch,omitempty"`
	BuildTypes  []string `json:"build_types,omitempty"`
	Author      string   `json:"author,omitempty"`
	Favorites   int      `json:"favorites"`
	Verified    bool     `json:"verified"`
	HC          bool     `json:"hc"`
	SSF         bool     `json:"ssf"`
	Playstyle   []string `json:"playstyle,omitempty"`
	Activities  []string `json:"activities,omitempty"`
	CostTier    string   `json:"cost_tier,omitempty"`
	DamageTypes []string `json:"damage_types,omitempty"`
	CombatStyle string   `json:"combat_style,omitempty"` // melee, ranged, caster, summoner, hybrid
	Specialty   []string `json:"specialty,omitempty"`

	TranslationStatus string     `json:"translation_status"`
	ScrapedAt         time.Time  `json:"scraped_at"`
	TranslatedAt      *time.Time `json:"translated_at,omitempty"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// BuildSummary is the lightweight projection returned by search results.
type BuildSummary struct {
	ID                int64
	Source            string
	SourceURL         string
	NameEN            string
	NameJA            string
	ClassEN           string
	ClassJA           string
	AscendancyEN      string
	AscendancyJA      string
	SkillsJA          []string
	BuildTypes        []string
	Favorites         int
	Verified          bool
	CostTier          string
	Patch             string
	CombatStyle       string
	TranslationStatus string
}

// TranslationUpdate carries the translator-owned columns for a build.
// English originals are never written through this path.
type TranslationUpdate struct {
	NameJA          string
	ClassJA         string
	AscendancyJA    string
	SkillsJA        []string
	DescriptionJA   string
	ProsConsJA      string
	CoreEquipmentJA string
}

// RedditRating is an aggregated positive-sentiment signal for a build.
// BuildID is nil when name matching failed.
type RedditRating struct {
	ID               int64     `json:"id"`
	BuildID          *int64    `json:"build_id,omitempty"`
	BuildNameMatched string    `json:"build_name_matched"`
	Score            int       `json:"score"`
	WeightedScore    float64   `json:"weighted_score"`
	MentionCount     int       `json:"mention_count"`
	CommentCount     int       `json:"comment_count"`
	Sentiment        string    `json:"sentiment"`
	SummaryEN        string    `json:"summary_en,omitempty"`
	SummaryJA        string    `json:"summary_ja,omitempty"`
	SourceURLs       []string  `json:"source_urls,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// Term dictionary categories.
const (
	TermCategoryClass      = "class"
	TermCategoryAscendancy = "ascendancy"
	TermCategorySkill      = "skill"
	TermCategoryKeyword    = "keyword"
)

// Term maps a domain term between English and Japanese.
type Term struct {
	ID       int64
	Category string
	TermEN   string
	TermJA   string
}

// SourceStats summarizes build counts for the stats endpoint.
type SourceStats struct {
	Total         int
	BySource      map[string]int
	ByTranslation map[string]int
}
