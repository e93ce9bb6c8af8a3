package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/clipshare/clipshare-backend/internal/db"
	"github.com/clipshare/clipshare-backend/internal/handlers"
	"github.com/clipshare/clipshare-backend/internal/platform/logger"
	"github.com/clipshare/clipshare-backend/internal/repos"
	"github.com/clipshare/clipshare-backend/internal/server"
	"github.com/clipshare/clipshare-backend/internal/services"
	"github.com/clipshare/clipshare-backend/internal/types"
	"github.com/clipshare/clipshare-backend/internal/utils"
)

var defaultThemes = []string{
	"Comedy",
	"Education",
	"Gaming",
	"Music",
	"Sports",
	"Travel",
}

func main() {
	_ = godotenv.Load()

	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	log.Info("Loading environment variables from main...")
	port := utils.GetEnv("PORT", "8080", log)
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	uploadDir := utils.GetEnv("UPLOAD_DIR", "./uploads", log)
	profilePath := utils.GetEnv("UPLOAD_PROFILE_PATH", "", log)
	corsOrigins := utils.GetEnv("CORS_ORIGINS", "", log)
	rawStrategy := utils.GetEnv("VIDEO_ID_STRATEGY", "serial", log)
	accessTokenTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 86400, log)
	probeTimeout := utils.GetEnvAsInt64("FFPROBE_TIMEOUT_SECONDS", 30, log)

	strategy, err := types.ParseIdentityStrategy(rawStrategy)
	if err != nil {
		log.Fatal("Invalid VIDEO_ID_STRATEGY", "error", err)
	}
	profile, err := services.LoadUploadProfile(profilePath)
	if err != nil {
		log.Fatal("Failed to load upload profile", "error", err)
	}

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Fatal("Postgres init failed", "error", err)
	}
	if err = postgresService.AutoMigrateAll(strategy); err != nil {
		log.Fatal("Postgres auto migration failed", "error", err)
	}
	if err = postgresService.SeedThemes(defaultThemes); err != nil {
		log.Warn("Theme seeding failed", "error", err)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	userRepo := repos.NewUserRepo(thePG, log)
	themeRepo := repos.NewThemeRepo(thePG, log)
	videoRepo := repos.NewVideoRepo(thePG, log, strategy)
	commentRepo := repos.NewCommentRepo(thePG, log)
	ratingRepo := repos.NewRatingRepo(thePG, log)

	ctx := context.Background()
	if err := videoRepo.VerifySchema(ctx); err != nil {
		log.Fatal("Video schema does not match the configured identity strategy", "error", err)
	}

	// Services
	log.Info("Setting up Services from main...")
	proberService := services.NewMediaProbeService(log, time.Duration(probeTimeout)*time.Second)
	if err := proberService.AssertReady(ctx); err != nil {
		log.Warn("Media prober is not ready, uploads will fail analysis", "error", err)
	}
	uploadService, err := services.NewUploadService(uploadDir, profile, log)
	if err != nil {
		log.Fatal("Failed to init upload service", "error", err)
	}
	validationService := services.NewValidationService(profile, log)
	videoService := services.NewVideoService(
		thePG, log, profile,
		validationService, uploadService, proberService,
		videoRepo, themeRepo, commentRepo, ratingRepo,
	)
	authService := services.NewAuthService(userRepo, jwtSecretKey, time.Duration(accessTokenTTL)*time.Second, log)
	themeService := services.NewThemeService(themeRepo, log)
	commentService := services.NewCommentService(commentRepo, videoService, log)
	ratingService := services.NewRatingService(ratingRepo, videoService, log)
	adminService := services.NewAdminService(userRepo, videoService, log)

	// Handlers
	log.Info("Setting up Handlers from main...")
	authHandler := handlers.NewAuthHandler(authService)
	themeHandler := handlers.NewThemeHandler(themeService)
	videoHandler := handlers.NewVideoHandler(videoService)
	commentHandler := handlers.NewCommentHandler(commentService, ratingService)
	adminHandler := handlers.NewAdminHandler(adminService)

	// Router
	router := server.NewRouter(server.RouterConfig{
		AuthService:    authService,
		AuthHandler:    authHandler,
		ThemeHandler:   themeHandler,
		VideoHandler:   videoHandler,
		CommentHandler: commentHandler,
		AdminHandler:   adminHandler,
		AllowOrigins:   server.SplitOrigins(corsOrigins),
		UploadDir:      uploadDir,
		MaxUploadBytes: profile.MaxSizeBytes,
	})

	log.Info("Starting server...", "port", port, "video_id_strategy", string(strategy))
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Server exited", "error", err)
	}
}
