package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lysym/poe-build-search/app/api"
	"github.com/lysym/poe-build-search/app/cfg"
	"github.com/lysym/poe-build-search/app/database"
	"github.com/lysym/poe-build-search/app/search"
	"github.com/lysym/poe-build-search/app/terms"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	appCfg, err := cfg.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	log.Printf("Starting PoE Build Search server (version %s)...", appCfg.Version)

	// Database connection
	log.Printf("Opening database at %s...", appCfg.DBPath)
	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		log.Fatal("Failed to open database:", err)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		log.Fatal("Failed to run migrations:", err)
	}
	log.Printf("Database ready (schema version %d, dirty: %v)", version, dirty)

	// Initialize repositories
	buildRepo := database.NewBuildRepository(db)
	ratingRepo := database.NewRatingRepository(db)
	termRepo := database.NewTermRepository(db)

	// Seed the term dictionary
	log.Printf("Loading term dictionary from %s...", appCfg.TermsFile)
	seedTerms, err := terms.NewLoader(appCfg.TermsFile).Load()
	if err != nil {
		log.Fatal("Failed to load term dictionary:", err)
	}
	if len(seedTerms) > 0 {
		inserted, err := termRepo.Seed(seedTerms)
		if err != nil {
			log.Fatal("Failed to seed term dictionary:", err)
		}
		log.Printf("Term dictionary seeded: %d new of %d entries", inserted, len(seedTerms))
	}

	// Verify the search index matches the builds table before serving
	if err := buildRepo.VerifyIndex(); err != nil {
		log.Fatal("Search index verification failed:", err)
	}

	// Initialize core components
	searcher := search.NewService(db, termRepo, appCfg.PerPage)
	apiHandler := api.NewHandler(buildRepo, ratingRepo, termRepo, searcher)
	server := api.NewServer(apiHandler, appCfg.APIAccessKey)

	// Create HTTP server with timeouts
	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start HTTP server in a goroutine
	serverErrChan := make(chan error, 1)
	go func() {
		log.Printf("Starting HTTP server on port %s", appCfg.Port)
		log.Printf("API endpoints available:")
		log.Printf("  Search:        http://localhost:%s/builds/search?q=<keyword>", appCfg.Port)
		log.Printf("  Build detail:  http://localhost:%s/builds/<id>", appCfg.Port)
		log.Printf("  Health check:  http://localhost:%s/health", appCfg.Port)
		log.Printf("  Statistics:    http://localhost:%s/stats", appCfg.Port)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Wait for interrupt signal or server error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	log.Println("PoE Build Search server started successfully!")

	select {
	case sig := <-sigChan:
		log.Printf("Received signal: %v", sig)
	case err := <-serverErrChan:
		log.Printf("Server error: %v", err)
	}

	// Graceful shutdown
	log.Println("Shutting down server gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	} else {
		log.Println("HTTP server stopped")
	}

	log.Println("PoE Build Search server shutdown complete")
}
