package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lysym/poe-build-search/app/database"
	"github.com/lysym/poe-build-search/app/search"
)

func NewHandler(buildRepo database.BuildStore, ratingRepo database.RatingStore,
	termRepo database.TermStore, searcher *search.Service) *Handler {
	return &Handler{
		buildRepo:  buildRepo,
		ratingRepo: ratingRepo,
		termRepo:   termRepo,
		searcher:   searcher,
	}
}

// SearchBuilds answers the read-only search contract: keyword, filters,
// sort and pagination. Malformed filter values produce an empty result
// set, never an error, to keep the search box forgiving.
func (h *Handler) SearchBuilds(c *gin.Context) {
	req := search.Request{
		Keyword:           c.Query("q"),
		Source:            c.Query("source"),
		Class:             c.Query("class"),
		Ascendancy:        c.Query("ascendancy"),
		TranslationStatus: c.Query("translation_status"),
		CombatStyle:       c.Query("combat_style"),
		Patch:             c.Query("patch"),
		TranslatedOnly:    c.Query("translated_only") == "true",
		Sort:              c.DefaultQuery("sort", "favorites"),
	}
	if specialties := c.Query("specialty"); specialties != "" {
		req.Specialties = strings.Split(specialties, ",")
	}
	req.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	req.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "0"))

	result, err := h.searcher.Search(c.Request.Context(), req)
	if err != nil {
		slog.Error("Search failed", "keyword", req.Keyword, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	builds := make([]BuildSummaryResponse, 0, len(result.Builds))
	for _, b := range result.Builds {
		builds = append(builds, toSummaryResponse(b))
	}

	c.JSON(http.StatusOK, SearchResponse{
		Builds:     builds,
		Total:      result.Total,
		Page:       result.Page,
		PerPage:    result.PerPage,
		TotalPages: result.TotalPages,
		Query:      result.Keyword,
	})
}

// GetBuild returns the full bilingual record plus its reddit rating, if any.
func (h *Handler) GetBuild(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid build id"})
		return
	}

	build, err := h.buildRepo.Get(id)
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "build not found"})
		return
	}
	if err != nil {
		slog.Error("Database error", "operation", "get_build", "id", id, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	rating, err := h.ratingRepo.GetForBuild(id)
	if err != nil {
		slog.Error("Database error", "operation", "get_rating", "id", id, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	response := gin.H{"build": build}
	if rating != nil {
		response["reddit_rating"] = rating
	}

	c.JSON(http.StatusOK, response)
}

// UpsertBuild is the scraper write path. Re-scraping an existing
// (source, source_id) updates the row in place.
func (h *Handler) UpsertBuild(c *gin.Context) {
	var req UpsertBuildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	build := &database.Build{
		Source:          req.Source,
		SourceID:        req.SourceID,
		SourceURL:       req.SourceURL,
		NameEN:          req.NameEN,
		ClassEN:         req.ClassEN,
		AscendancyEN:    req.AscendancyEN,
		SkillsEN:        req.SkillsEN,
		DescriptionEN:   req.DescriptionEN,
		ProsConsEN:      req.ProsConsEN,
		CoreEquipmentEN: req.CoreEquipEN,
		Patch:           req.Patch,
		BuildTypes:      req.BuildTypes,
		Author:          req.Author,
		Favorites:       req.Favorites,
		Verified:        req.Verified,
		HC:              req.HC,
		SSF:             req.SSF,
		Playstyle:       req.Playstyle,
		Activities:      req.Activities,
		CostTier:        req.CostTier,
		DamageTypes:     req.DamageTypes,
		CombatStyle:     req.CombatStyle,
		Specialty:       req.Specialty,
	}

	id, inserted, err := h.buildRepo.Upsert(build)
	if errors.Is(err, database.ErrValidation) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		slog.Error("Database error", "operation", "upsert_build",
			"source", req.Source, "source_id", req.SourceID, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	status := http.StatusOK
	if inserted {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"id": id, "created": inserted})
}

// DeleteBuild removes a build and its search index entry.
func (h *Handler) DeleteBuild(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid build id"})
		return
	}

	err = h.buildRepo.Delete(id)
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "build not found"})
		return
	}
	if err != nil {
		slog.Error("Database error", "operation", "delete_build", "id", id, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Status(http.StatusNoContent)
}

// UpdateTranslation is the translator write path. It only ever touches
// the translated columns and the status flag.
func (h *Handler) UpdateTranslation(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid build id"})
		return
	}

	var req TranslationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	update := database.TranslationUpdate{
		NameJA:          req.NameJA,
		ClassJA:         req.ClassJA,
		AscendancyJA:    req.AscendancyJA,
		SkillsJA:        req.SkillsJA,
		DescriptionJA:   req.DescriptionJA,
		ProsConsJA:      req.ProsConsJA,
		CoreEquipmentJA: req.CoreEquipJA,
	}

	err = h.buildRepo.UpdateTranslation(id, update, req.Status)
	switch {
	case errors.Is(err, database.ErrValidation):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	case errors.Is(err, database.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	case err != nil:
		slog.Error("Database error", "operation", "update_translation", "id", id, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id, "status": req.Status})
}

// GetPendingTranslations feeds the translation producer.
func (h *Handler) GetPendingTranslations(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit < 1 || limit > 500 {
		limit = 50
	}

	builds, err := h.buildRepo.GetPendingTranslations(limit)
	if err != nil {
		slog.Error("Database error", "operation", "pending_translations", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{"builds": builds, "count": len(builds)})
}

// ResetTranslations moves every build back to pending.
func (h *Handler) ResetTranslations(c *gin.Context) {
	count, err := h.buildRepo.ResetTranslations()
	if err != nil {
		slog.Error("Database error", "operation", "reset_translations", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{"reset": count})
}

// ReplaceRatings is the rating aggregator write path: the whole table
// is replaced in one transaction.
func (h *Handler) ReplaceRatings(c *gin.Context) {
	var reqs []RatingRequest
	if err := c.ShouldBindJSON(&reqs); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	ratings := make([]database.RedditRating, 0, len(reqs))
	for _, r := range reqs {
		ratings = append(ratings, database.RedditRating{
			BuildID:          r.BuildID,
			BuildNameMatched: r.BuildNameMatched,
			Score:            r.Score,
			WeightedScore:    r.WeightedScore,
			MentionCount:     r.MentionCount,
			CommentCount:     r.CommentCount,
			Sentiment:        r.Sentiment,
			SummaryEN:        r.SummaryEN,
			SummaryJA:        r.SummaryJA,
			SourceURLs:       r.SourceURLs,
		})
	}

	err := h.ratingRepo.ReplaceAll(ratings)
	if errors.Is(err, database.ErrValidation) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		slog.Error("Database error", "operation", "replace_ratings", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{"stored": len(ratings)})
}

func (h *Handler) GetClasses(c *gin.Context) {
	classes, err := h.buildRepo.GetDistinctClasses()
	if err != nil {
		slog.Error("Database error", "operation", "get_classes", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, gin.H{"classes": classes})
}

func (h *Handler) GetAscendancies(c *gin.Context) {
	ascendancies, err := h.buildRepo.GetDistinctAscendancies(c.Query("class"))
	if err != nil {
		slog.Error("Database error", "operation", "get_ascendancies", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ascendancies": ascendancies})
}

func (h *Handler) GetCombatStyles(c *gin.Context) {
	styles, err := h.buildRepo.GetDistinctCombatStyles()
	if err != nil {
		slog.Error("Database error", "operation", "get_combat_styles", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, gin.H{"combat_styles": styles})
}

func (h *Handler) GetSpecialties(c *gin.Context) {
	specialties, err := h.buildRepo.GetDistinctSpecialties()
	if err != nil {
		slog.Error("Database error", "operation", "get_specialties", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, gin.H{"specialties": specialties})
}

// GetHealth reports liveness plus the search index consistency check.
// A desynced index degrades the service rather than failing silently.
func (h *Handler) GetHealth(c *gin.Context) {
	health := gin.H{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if count, err := h.buildRepo.GetCount(); err == nil {
		health["builds"] = count
	}
	if count, err := h.termRepo.GetCount(); err == nil {
		health["terms"] = count
	}

	if err := h.buildRepo.VerifyIndex(); err != nil {
		slog.Error("Search index verification failed", "error", err)
		health["status"] = "degraded"
		health["index_error"] = err.Error()
		c.JSON(http.StatusServiceUnavailable, health)
		return
	}

	health["status"] = "ok"
	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.buildRepo.GetStats()
	if err != nil {
		slog.Error("Database error", "operation", "get_stats", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	ratingCount, err := h.ratingRepo.GetCount()
	if err != nil {
		slog.Error("Database error", "operation", "get_rating_count", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"builds":         stats.Total,
		"by_source":      stats.BySource,
		"by_translation": stats.ByTranslation,
		"reddit_ratings": ratingCount,
	})
}
