package server

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/clipshare/clipshare-backend/internal/handlers"
	"github.com/clipshare/clipshare-backend/internal/middleware"
	"github.com/clipshare/clipshare-backend/internal/services"
	"github.com/clipshare/clipshare-backend/internal/types"
)

type RouterConfig struct {
	AuthService    services.AuthService
	AuthHandler    *handlers.AuthHandler
	ThemeHandler   *handlers.ThemeHandler
	VideoHandler   *handlers.VideoHandler
	CommentHandler *handlers.CommentHandler
	AdminHandler   *handlers.AdminHandler
	AllowOrigins   []string
	UploadDir      string
	MaxUploadBytes int64
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()
	// A little headroom over the profile limit so oversize uploads reach the
	// size check and get the proper error instead of a connection reset.
	router.MaxMultipartMemory = cfg.MaxUploadBytes + 1024*1024

	origins := cfg.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", handlers.HealthCheck)
	router.Static("/uploads", cfg.UploadDir)

	api := router.Group("/api")
	{
		api.POST("/auth/register", cfg.AuthHandler.Register)
		api.POST("/auth/login", cfg.AuthHandler.Login)

		api.GET("/themes", cfg.ThemeHandler.List)
		api.GET("/themes/:id", cfg.ThemeHandler.Get)

		api.GET("/videos", cfg.VideoHandler.List)
		api.GET("/videos/:id", cfg.VideoHandler.Get)
		api.GET("/videos/:id/comments", cfg.CommentHandler.ListForVideo)
		api.GET("/videos/:id/rating", cfg.CommentHandler.RatingSummary)
	}

	// ===============
	// || Protected ||
	// ===============
	protected := router.Group("/api")
	protected.Use(middleware.RequireAuth(cfg.AuthService))
	{
		protected.POST("/videos", cfg.VideoHandler.Create)
		protected.PUT("/videos/:id", cfg.VideoHandler.Update)
		protected.DELETE("/videos/:id", cfg.VideoHandler.Delete)

		protected.POST("/videos/:id/comments", cfg.CommentHandler.Create)
		protected.PUT("/comments/:commentId", cfg.CommentHandler.Update)
		protected.DELETE("/comments/:commentId", cfg.CommentHandler.Delete)

		protected.PUT("/videos/:id/rating", cfg.CommentHandler.Rate)
	}

	// ===============
	// || Admin     ||
	// ===============
	admin := router.Group("/api/admin")
	admin.Use(middleware.RequireAuth(cfg.AuthService), middleware.RequireRole(types.RoleAdmin))
	{
		admin.GET("/users", cfg.AdminHandler.ListUsers)
		admin.PUT("/users/:id/role", cfg.AdminHandler.UpdateUserRole)
		admin.DELETE("/videos/:id", cfg.AdminHandler.DeleteVideo)
	}

	return router
}

// SplitOrigins turns a comma-separated CORS_ORIGINS value into a list.
func SplitOrigins(raw string) []string {
	var origins []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
