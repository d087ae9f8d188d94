package database

import (
	"database/sql"
	"fmt"
	"time"
)

// RatingRepository handles database operations for reddit rating
// aggregates. The aggregation producer recomputes everything on each
// run, so writes replace the whole table in one transaction.
type RatingRepository struct {
	db  *DB
	now func() time.Time
}

// NewRatingRepository creates a new rating repository
func NewRatingRepository(db *DB) *RatingRepository {
	return &RatingRepository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// ReplaceAll wipes the current ratings and stores the new set. Only
// positive-sentiment aggregates are accepted; anything else fails the
// whole batch so a producer bug surfaces instead of being dropped.
func (r *RatingRepository) ReplaceAll(ratings []RedditRating) error {
	for i, rating := range ratings {
		if rating.Sentiment != "positive" {
			return fmt.Errorf("rating %d has sentiment %q, only positive aggregates are persisted: %w",
				i, rating.Sentiment, ErrValidation)
		}
		if rating.BuildNameMatched == "" {
			return fmt.Errorf("rating %d is missing build_name_matched: %w", i, ErrValidation)
		}
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM reddit_ratings`); err != nil {
		return fmt.Errorf("failed to clear ratings: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO reddit_ratings (
			build_id, build_name_matched, score, weighted_score,
			mention_count, comment_count, sentiment,
			summary_en, summary_ja, source_urls, created_at
		) VALUES (?, ?, ?, ?, ?, ?, 'positive', ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare rating insert: %w", err)
	}
	defer stmt.Close()

	now := r.now()
	for _, rating := range ratings {
		sourceURLs, err := marshalList(rating.SourceURLs)
		if err != nil {
			return fmt.Errorf("source_urls: %w", ErrValidation)
		}
		var buildID interface{}
		if rating.BuildID != nil {
			buildID = *rating.BuildID
		}
		_, err = stmt.Exec(buildID, rating.BuildNameMatched,
			rating.Score, rating.WeightedScore,
			rating.MentionCount, rating.CommentCount,
			nullable(rating.SummaryEN), nullable(rating.SummaryJA),
			sourceURLs, now)
		if err != nil {
			return fmt.Errorf("failed to insert rating for %q: %w", rating.BuildNameMatched, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit ratings: %w", err)
	}

	return nil
}

// GetForBuild returns the rating aggregate linked to a build, or nil
// when the build was never mentioned.
func (r *RatingRepository) GetForBuild(buildID int64) (*RedditRating, error) {
	row := r.db.QueryRow(`
		SELECT id, build_id, build_name_matched, score, weighted_score,
		       mention_count, comment_count, sentiment,
		       COALESCE(summary_en, ''), COALESCE(summary_ja, ''),
		       source_urls, created_at
		FROM reddit_ratings
		WHERE build_id = ?`, buildID)

	var rating RedditRating
	var linkedID sql.NullInt64
	var sourceURLs sql.NullString
	err := row.Scan(&rating.ID, &linkedID, &rating.BuildNameMatched,
		&rating.Score, &rating.WeightedScore,
		&rating.MentionCount, &rating.CommentCount, &rating.Sentiment,
		&rating.SummaryEN, &rating.SummaryJA,
		&sourceURLs, &rating.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get rating: %w", err)
	}

	if linkedID.Valid {
		rating.BuildID = &linkedID.Int64
	}
	rating.SourceURLs = unmarshalList(sourceURLs)

	return &rating, nil
}

// GetCount returns the number of stored rating aggregates
func (r *RatingRepository) GetCount() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM reddit_ratings`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get rating count: %w", err)
	}
	return count, nil
}
