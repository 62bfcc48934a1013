package main

import (
	"fmt"
	"os"
	"time"

	"github.com/coursekit/coursekit-backend/internal/aicache"
	"github.com/coursekit/coursekit-backend/internal/clients/openai"
	"github.com/coursekit/coursekit-backend/internal/db"
	"github.com/coursekit/coursekit-backend/internal/handlers"
	"github.com/coursekit/coursekit-backend/internal/logger"
	"github.com/coursekit/coursekit-backend/internal/middleware"
	"github.com/coursekit/coursekit-backend/internal/repos"
	"github.com/coursekit/coursekit-backend/internal/server"
	"github.com/coursekit/coursekit-backend/internal/services"
	"github.com/coursekit/coursekit-backend/internal/utils"
)

func main() {
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
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	accessTokenTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
	refreshTokenTTL := utils.GetEnvAsInt("REFRESH_TOKEN_TTL", 86400, log)
	debounceMs := utils.GetEnvAsInt("AUTOSAVE_DEBOUNCE_MS", 2000, log)
	maxRetries := utils.GetEnvAsInt("AUTOSAVE_MAX_RETRIES", 3, log)
	aiCacheTTL := utils.GetEnvAsInt("AI_CACHE_TTL_SECONDS", 900, log)

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Warn("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	userRepo := repos.NewUserRepo(thePG, log)
	userTokenRepo := repos.NewUserTokenRepo(thePG, log)
	courseRepo := repos.NewCourseRepo(thePG, log)
	courseModuleRepo := repos.NewCourseModuleRepo(thePG, log)
	pageRepo := repos.NewPageRepo(thePG, log)

	// Services
	log.Info("Setting up Services from main...")
	bucketService, err := services.NewBucketService(log)
	if err != nil {
		log.Warn("Could not init BucketService", "error", err)
	}
	openaiClient, err := openai.NewClient(log)
	if err != nil {
		log.Error("Could not init OpenAI client", "error", err)
		os.Exit(1)
	}
	var aiCache aicache.Cache
	if redisCache, rErr := aicache.NewRedisCache(log); rErr == nil {
		aiCache = redisCache
	} else {
		log.Warn("Redis unavailable, using in-memory AI cache", "error", rErr)
		aiCache = aicache.NewMemoryCache(0)
	}

	authService := services.NewAuthService(thePG, log, userRepo, userTokenRepo, jwtSecretKey, time.Duration(accessTokenTTL)*time.Second, time.Duration(refreshTokenTTL)*time.Second)
	courseService := services.NewCourseService(thePG, log, courseRepo, courseModuleRepo, pageRepo)
	pageService := services.NewPageService(thePG, log, pageRepo)
	editorService := services.NewEditorService(log, pageService, time.Duration(debounceMs)*time.Millisecond, maxRetries)
	mediaService := services.NewMediaService(log, bucketService)
	aiGenService := services.NewAIGenService(log, openaiClient, aiCache, time.Duration(aiCacheTTL)*time.Second)

	// Handlers
	log.Info("Setting up handlers from main...")
	authHandler := handlers.NewAuthHandler(authService)
	courseHandler := handlers.NewCourseHandler(courseService)
	pageHandler := handlers.NewPageHandler(pageService)
	editorHandler := handlers.NewEditorHandler(editorService)
	mediaHandler := handlers.NewMediaHandler(mediaService)
	aiGenHandler := handlers.NewAIGenHandler(aiGenService)

	// Middleware
	log.Info("Setting up middleware from main...")
	authMiddleware := middleware.NewAuthMiddleware(log, authService)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		AuthHandler:    authHandler,
		AuthMiddleware: authMiddleware,
		CourseHandler:  courseHandler,
		PageHandler:    pageHandler,
		EditorHandler:  editorHandler,
		MediaHandler:   mediaHandler,
		AIGenHandler:   aiGenHandler,
	})

	port := utils.GetEnv("PORT", "8080", log)
	fmt.Printf("Server listening on :%s\n", port)
	if err := router.Run(":" + port); err != nil {
		log.Warn("Server failed", "error", err)
	}
}
