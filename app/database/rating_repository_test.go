package database

import (
	"errors"
	"testing"
)

func testRating(name string, buildID *int64) RedditRating {
	return RedditRating{
		BuildID:          buildID,
		BuildNameMatched: name,
		Score:            128,
		WeightedScore:    173.5,
		MentionCount:     3,
		CommentCount:     45,
		Sentiment:        "positive",
		SummaryEN:        "Frequently recommended as a league starter",
		SourceURLs:       []string{"https://reddit.com/r/pathofexile/abc123"},
	}
}

func TestRatingRepository_ReplaceAll(t *testing.T) {
	db := setupTestDB(t)
	builds := NewBuildRepository(db)
	ratings := NewRatingRepository(db)

	buildID, _, err := builds.Upsert(testBuild("maxroll", "la-deadeye"))
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	batch := []RedditRating{
		testRating("Lightning Arrow Deadeye", &buildID),
		testRating("Some Unmatched Build", nil),
	}
	if err := ratings.ReplaceAll(batch); err != nil {
		t.Fatalf("ReplaceAll failed: %v", err)
	}

	count, err := ratings.GetCount()
	if err != nil {
		t.Fatalf("GetCount failed: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected 2 ratings, got %d", count)
	}

	// A refresh replaces the whole snapshot
	refreshed := testRating("Lightning Arrow Deadeye", &buildID)
	refreshed.Score = 256
	if err := ratings.ReplaceAll([]RedditRating{refreshed}); err != nil {
		t.Fatalf("Second ReplaceAll failed: %v", err)
	}
	count, _ = ratings.GetCount()
	if count != 1 {
		t.Errorf("Expected 1 rating after refresh, got %d", count)
	}

	r, err := ratings.GetForBuild(buildID)
	if err != nil {
		t.Fatalf("GetForBuild failed: %v", err)
	}
	if r == nil {
		t.Fatal("Expected rating for build, got nil")
	}
	if r.Score != 256 || r.WeightedScore != 173.5 {
		t.Errorf("Unexpected rating values: %+v", r)
	}
	if len(r.SourceURLs) != 1 {
		t.Errorf("Expected 1 source URL, got %v", r.SourceURLs)
	}
}

func TestRatingRepository_RejectsInvalidRatings(t *testing.T) {
	ratings := NewRatingRepository(setupTestDB(t))

	if err := ratings.ReplaceAll([]RedditRating{testRating("Good Build", nil)}); err != nil {
		t.Fatalf("ReplaceAll failed: %v", err)
	}

	bad := testRating("Bad Build", nil)
	bad.Sentiment = "negative"
	if err := ratings.ReplaceAll([]RedditRating{bad}); !errors.Is(err, ErrValidation) {
		t.Errorf("Expected ErrValidation for non-positive sentiment, got %v", err)
	}

	bad = testRating("", nil)
	if err := ratings.ReplaceAll([]RedditRating{bad}); !errors.Is(err, ErrValidation) {
		t.Errorf("Expected ErrValidation for missing build name, got %v", err)
	}

	// A rejected batch must not clear the previous snapshot
	count, _ := ratings.GetCount()
	if count != 1 {
		t.Errorf("Expected previous snapshot intact, got %d ratings", count)
	}
}

func TestRatingRepository_GetForBuildAbsent(t *testing.T) {
	db := setupTestDB(t)
	builds := NewBuildRepository(db)
	ratings := NewRatingRepository(db)

	buildID, _, _ := builds.Upsert(testBuild("maxroll", "b1"))

	r, err := ratings.GetForBuild(buildID)
	if err != nil {
		t.Fatalf("GetForBuild failed: %v", err)
	}
	if r != nil {
		t.Errorf("Expected nil rating for unrated build, got %+v", r)
	}
}

func TestRatingRepository_BuildDeleteKeepsRating(t *testing.T) {
	db := setupTestDB(t)
	builds := NewBuildRepository(db)
	ratings := NewRatingRepository(db)

	buildID, _, _ := builds.Upsert(testBuild("maxroll", "b1"))
	if err := ratings.ReplaceAll([]RedditRating{testRating("Lightning Arrow Deadeye", &buildID)}); err != nil {
		t.Fatalf("ReplaceAll failed: %v", err)
	}

	if err := builds.Delete(buildID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	// ON DELETE SET NULL keeps the community signal around
	count, _ := ratings.GetCount()
	if count != 1 {
		t.Fatalf("Expected rating to survive build deletion, got %d", count)
	}
	r, _ := ratings.GetForBuild(buildID)
	if r != nil {
		t.Errorf("Expected no rating linked to deleted build, got %+v", r)
	}
}
