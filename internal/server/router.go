package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/coursekit/coursekit-backend/internal/handlers"
	"github.com/coursekit/coursekit-backend/internal/middleware"
)

type RouterConfig struct {
	AuthHandler    *handlers.AuthHandler
	AuthMiddleware *middleware.AuthMiddleware
	CourseHandler  *handlers.CourseHandler
	PageHandler    *handlers.PageHandler
	EditorHandler  *handlers.EditorHandler
	MediaHandler   *handlers.MediaHandler
	AIGenHandler   *handlers.AIGenHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	// Cors
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5174",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", handlers.HealthCheck)
	api := router.Group("/api")
	{
		api.POST("/register", cfg.AuthHandler.Register)
		api.POST("/login", cfg.AuthHandler.Login)
	}

	// ===============
	// || Protected ||
	// ===============
	protected := router.Group("/api")
	protected.Use(cfg.AuthMiddleware.RequireAuth())
	// Auth
	protected.POST("/refresh", cfg.AuthHandler.Refresh)
	protected.POST("/logout", cfg.AuthHandler.Logout)
	// Courses
	protected.POST("/courses", cfg.CourseHandler.CreateCourse)
	protected.GET("/courses", cfg.CourseHandler.ListCourses)
	protected.GET("/courses/:id", cfg.CourseHandler.GetCourse)
	protected.PATCH("/courses/:id", cfg.CourseHandler.UpdateCourse)
	protected.DELETE("/courses/:id", cfg.CourseHandler.DeleteCourse)
	protected.POST("/courses/:id/modules", cfg.CourseHandler.AddModule)
	// Pages
	protected.POST("/modules/:id/pages", cfg.PageHandler.CreatePage)
	protected.GET("/modules/:id/pages", cfg.PageHandler.ListPages)
	protected.GET("/pages/:id", cfg.PageHandler.GetPage)
	protected.PUT("/pages/:id", cfg.PageHandler.ReplaceBlocks)
	protected.POST("/pages/:id/validate", cfg.PageHandler.ValidatePage)
	protected.GET("/pages/:id/render", cfg.PageHandler.RenderPage)
	// Editor sessions
	protected.POST("/editor/:pageId/open", cfg.EditorHandler.Open)
	protected.POST("/editor/:pageId/blocks", cfg.EditorHandler.AddBlock)
	protected.PATCH("/editor/:pageId/blocks/:blockId", cfg.EditorHandler.PatchBlock)
	protected.DELETE("/editor/:pageId/blocks/:blockId", cfg.EditorHandler.RemoveBlock)
	protected.POST("/editor/:pageId/blocks/:blockId/move", cfg.EditorHandler.MoveBlock)
	protected.POST("/editor/:pageId/blocks/:blockId/duplicate", cfg.EditorHandler.DuplicateBlock)
	protected.GET("/editor/:pageId/status", cfg.EditorHandler.Status)
	protected.POST("/editor/:pageId/retry", cfg.EditorHandler.Retry)
	protected.POST("/editor/:pageId/flush", cfg.EditorHandler.Flush)
	protected.POST("/editor/:pageId/close", cfg.EditorHandler.Close)
	// Media
	protected.POST("/uploads", cfg.MediaHandler.Upload)
	// AI generation
	protected.POST("/ai/generate", cfg.AIGenHandler.Generate)

	return router
}
