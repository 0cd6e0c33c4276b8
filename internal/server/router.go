package server

import (
	"net/http"

	"threatdeck/internal/briefing"
	"threatdeck/internal/config"
	"threatdeck/internal/database"
	"threatdeck/internal/feeds"
	"threatdeck/internal/handlers"
	"threatdeck/internal/llm"
	"threatdeck/internal/middleware"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

func NewRouter(cfg *config.Config) *gin.Engine {
	r := gin.Default()

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	r.Use(sessions.Sessions("threatdeck_session", store))
	r.Use(middleware.InjectUser())

	ingestor := feeds.NewIngestor(database.DB)
	synthesizer := briefing.NewSynthesizer(database.DB, llm.New(cfg.LLMURL, cfg.LLMModel))

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	api := r.Group("/api")

	// AUTH
	api.POST("/auth/register", handlers.Register)
	api.POST("/auth/login", handlers.Login)
	api.POST("/auth/logout", handlers.Logout)

	// THREATS
	api.GET("/threats", handlers.ListThreats)
	api.POST("/threats/ingest", handlers.IngestAll(ingestor))
	api.POST("/threats/ingest/:source", handlers.IngestSource(ingestor))

	// ASSETS
	api.GET("/assets", handlers.ListAssets)
	api.POST("/assets", handlers.CreateAsset)
	api.POST("/assets/import", handlers.ImportAssets)
	api.DELETE("/assets/:id", middleware.RequireAuth(), handlers.DeleteAsset)

	// BRIEFINGS
	api.GET("/briefings", handlers.ListBriefings)
	api.POST("/briefings/generate", handlers.GenerateBriefings(synthesizer))
	api.PATCH("/briefings/:id/status", handlers.UpdateBriefingStatus)

	// DASHBOARD
	api.GET("/dashboard/stats", handlers.DashboardStats)
	api.GET("/dashboard/recent", handlers.RecentBriefings)

	return r
}
