package api

import (
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// NewServer creates a new HTTP server with all routes configured
func NewServer(handler *Handler, apiAccessKey string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
	}))

	r.Use(gin.Recovery())

	// CORS for the web UI consumer
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, X-API-Key")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	setupRoutes(r, handler, apiAccessKey)

	return r
}

// setupRoutes configures all the application routes
func setupRoutes(r *gin.Engine, handler *Handler, apiAccessKey string) {
	// Read-only consumer endpoints
	r.GET("/builds/search", handler.SearchBuilds)
	r.GET("/builds/:id", handler.GetBuild)

	r.GET("/meta/classes", handler.GetClasses)
	r.GET("/meta/ascendancies", handler.GetAscendancies)
	r.GET("/meta/combat-styles", handler.GetCombatStyles)
	r.GET("/meta/specialties", handler.GetSpecialties)

	r.GET("/health", handler.GetHealth)
	r.GET("/stats", handler.GetStats)

	// Producer endpoints (scrapers, translator, rating aggregator)
	if apiAccessKey != "" {
		api := r.Group("/api")
		api.Use(authMiddleware(apiAccessKey))
		{
			api.PUT("/builds", handler.UpsertBuild)
			api.DELETE("/builds/:id", handler.DeleteBuild)
			api.PATCH("/builds/:id/translation", handler.UpdateTranslation)
			api.GET("/builds/pending-translation", handler.GetPendingTranslations)
			api.POST("/translations/reset", handler.ResetTranslations)
			api.PUT("/ratings", handler.ReplaceRatings)
		}
		log.Printf("Producer endpoints enabled with authentication")
	} else {
		log.Printf("Producer endpoints disabled (API_ACCESS_KEY not set)")
	}

	r.GET("/", func(c *gin.Context) {
		endpoints := map[string]string{
			"search": "/builds/search?q=<keyword>",
			"build":  "/builds/<id>",
			"health": "/health",
			"stats":  "/stats",
		}

		if apiAccessKey != "" {
			endpoints["upsert"] = "/api/builds (PUT, requires X-API-Key header)"
			endpoints["translation"] = "/api/builds/<id>/translation (PATCH, requires X-API-Key header)"
			endpoints["ratings"] = "/api/ratings (PUT, requires X-API-Key header)"
		}

		c.JSON(200, gin.H{
			"service":     "PoE Build Search",
			"description": "Bilingual build guide aggregator with trigram full-text search",
			"endpoints":   endpoints,
			"api_status": map[string]interface{}{
				"enabled":       apiAccessKey != "",
				"auth_required": apiAccessKey != "",
				"header":        "X-API-Key",
			},
		})
	})

	// Favicon handler (return 204 to avoid 404s)
	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(204)
	})
}

// authMiddleware creates authentication middleware for producer endpoints
func authMiddleware(apiAccessKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		providedKey := c.GetHeader("X-API-Key")

		// Also check Authorization header with Bearer prefix
		if providedKey == "" {
			authHeader := c.GetHeader("Authorization")
			if strings.HasPrefix(authHeader, "Bearer ") {
				providedKey = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		if providedKey == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "API key required",
				"message": "Provide API key in X-API-Key header or Authorization: Bearer <key>",
			})
			c.Abort()
			return
		}

		if providedKey != apiAccessKey {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Invalid API key",
				"message": "The provided API key is not valid",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
