package database

// BuildStore is the build persistence contract consumed by the search
// service and the API handlers.
type BuildStore interface {
	Upsert(b *Build) (int64, bool, error)
	Get(id int64) (*Build, error)
	GetBySourceID(source, sourceID string) (*Build, error)
	UpdateTranslation(id int64, tr TranslationUpdate, status string) error
	Delete(id int64) error

	GetPendingTranslations(limit int) ([]Build, error)
	ResetTranslations() (int64, error)

	GetCount() (int, error)
	GetStats() (*SourceStats, error)
	GetDistinctClasses() ([]string, error)
	GetDistinctAscendancies(class string) ([]string, error)
	GetDistinctCombatStyles() ([]string, error)
	GetDistinctSpecialties() ([]string, error)

	VerifyIndex() error
}

type RatingStore interface {
	ReplaceAll(ratings []RedditRating) error
	GetForBuild(buildID int64) (*RedditRating, error)
	GetCount() (int, error)
}

type TermStore interface {
	Upsert(category, termEN, termJA string) error
	Seed(terms []Term) (int, error)
	Lookup(category, termEN string) (string, error)
	FindTranslations(word string) ([]string, error)
	GetCount() (int, error)
}

var _ BuildStore = (*BuildRepository)(nil)
var _ RatingStore = (*RatingRepository)(nil)
var _ TermStore = (*TermRepository)(nil)
