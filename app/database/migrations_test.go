package database

import (
	"errors"
	"testing"
)

func TestRunMigrationsIdempotent(t *testing.T) {
	db, err := NewConnection(":memory:")
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	version, dirty, err := RunMigrations(db)
	if err != nil {
		t.Fatalf("First migration run failed: %v", err)
	}
	if dirty {
		t.Fatal("Database left dirty after migration")
	}

	version2, dirty2, err := RunMigrations(db)
	if err != nil {
		t.Fatalf("Second migration run failed: %v", err)
	}
	if dirty2 {
		t.Fatal("Database left dirty after repeat migration")
	}
	if version2 != version {
		t.Errorf("Expected version %d after repeat run, got %d", version, version2)
	}
}

func TestVerifyIndex(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBuildRepository(db)

	if err := repo.VerifyIndex(); err != nil {
		t.Fatalf("VerifyIndex failed on empty database: %v", err)
	}

	id, _, err := repo.Upsert(testBuild("maxroll", "b1"))
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	repo.Upsert(testBuild("maxroll", "b2"))
	repo.UpdateTranslation(id, TranslationUpdate{NameJA: "訳"}, TranslationCompleted)
	repo.Delete(id)

	if err := repo.VerifyIndex(); err != nil {
		t.Fatalf("VerifyIndex failed after mutations: %v", err)
	}
}

func TestVerifyIndexDetectsDesync(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBuildRepository(db)

	if _, _, err := repo.Upsert(testBuild("maxroll", "b1")); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	// Plant an index entry with no backing row
	if _, err := db.Exec(`INSERT INTO builds_fts (rowid, name_en) VALUES (9999, 'ghost build')`); err != nil {
		t.Fatalf("Failed to plant ghost index entry: %v", err)
	}

	if err := repo.VerifyIndex(); !errors.Is(err, ErrIndexDesync) {
		t.Errorf("Expected ErrIndexDesync, got %v", err)
	}
}
