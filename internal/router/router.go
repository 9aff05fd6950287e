package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/stemsi/candidate-assessment/internal/config"
	"github.com/stemsi/candidate-assessment/internal/handler"
	"github.com/stemsi/candidate-assessment/internal/middleware"
	"github.com/stemsi/candidate-assessment/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Candidate  *handler.CandidateHandler
	Assessment *handler.AssessmentHandler
	Session    *handler.SessionHandler
	Response   *handler.ResponseHandler
	WS         *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
// limiter guards the write routes; nil disables rate limiting.
func SetupRouter(handlers *Handlers, cfg *config.Config, limiter middleware.Limiter, log zerolog.Logger) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// ─── CORS ──────────────────────────────────────────────────────────
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.AccessLog(log))

	// Recorded audio and media content are already compressed.
	router.Use(middleware.BrotliWithConfig(middleware.BrotliConfig{
		Quality:          middleware.DefaultBrotliConfig.Quality,
		MinLength:        middleware.DefaultBrotliConfig.MinLength,
		ExcludedPrefixes: []string{"/uploads", "/assets/audio", "/assets/images"},
	}))

	// ─── Static content (1 year) ───────────────────────────────────────
	assets := router.Group("/assets")
	assets.Use(middleware.CacheControl(31536000))
	{
		assets.Static("/", cfg.AssetsDir)
	}
	uploads := router.Group("/uploads")
	uploads.Use(middleware.CacheControl(31536000))
	{
		uploads.Static("/", cfg.UploadDir)
	}

	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	limit := func(route string) gin.HandlerFunc {
		if limiter == nil {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimit(limiter, route, log)
	}

	api := router.Group("/api/v1")
	api.Use(middleware.NoStore())
	{
		api.POST("/candidates/register", limit("register"), handlers.Candidate.Register)

		api.GET("/assessments/active", handlers.Assessment.GetActive)
		api.POST("/assessments/start", limit("start"), handlers.Assessment.Start)

		sessions := api.Group("/sessions/:session_id")
		{
			sessions.GET("/next", handlers.Session.Next)
			sessions.POST("/proceed", handlers.Session.Proceed)
			sessions.POST("/complete", handlers.Session.Complete)
			sessions.GET("/summary", handlers.Session.Summary)
		}

		responses := api.Group("/responses")
		responses.Use(limit("submit"))
		{
			responses.POST("/submit", handlers.Response.Submit)
			responses.POST("/submit-audio", handlers.Response.SubmitAudio)
		}
	}

	wsGroup := router.Group("/ws/v1")
	{
		wsGroup.GET("/sessions/:session_id/stream", handlers.WS.SessionStream)
	}

	return router
}
