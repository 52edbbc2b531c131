package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rezakmal/insightify/internal/config"
	"github.com/rezakmal/insightify/internal/models"
	"github.com/rezakmal/insightify/internal/services"
	"github.com/rezakmal/insightify/internal/utils"
)

type HandlerManager struct {
	authHandler     *AuthHandler
	courseHandler   *CourseHandler
	moduleHandler   *ModuleHandler
	quizHandler     *QuizHandler
	learningHandler *LearningHandler
	mlHandler       *MlHandler
	authMiddleware  *TokenAuthMiddleware

	serviceManager services.ServiceManager
	cfg            *config.Config
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	logger utils.Logger,
	cfg *config.Config,
) *HandlerManager {
	return &HandlerManager{
		authHandler:     NewAuthHandler(serviceManager.Auth(), logger),
		courseHandler:   NewCourseHandler(serviceManager.Course(), serviceManager.Progress(), logger),
		moduleHandler:   NewModuleHandler(serviceManager.Course(), serviceManager.Progress(), logger),
		quizHandler:     NewQuizHandler(serviceManager.Quiz(), logger),
		learningHandler: NewLearningHandler(serviceManager.Activity(), serviceManager.Progress(), logger),
		mlHandler:       NewMlHandler(serviceManager.Ml(), logger),
		authMiddleware:  NewTokenAuthMiddleware(serviceManager.Auth(), logger),
		serviceManager:  serviceManager,
		cfg:             cfg,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	requireAuth := hm.authMiddleware.Authenticate()
	optionalAuth := hm.authMiddleware.AuthenticateOptional()
	adminOnly := hm.authMiddleware.RequireRole(models.RoleAdmin)

	api := router.Group("/api")
	{
		// Auth routes; signup and login are rate limited per client IP
		auth := api.Group("/auth")
		auth.Use(RateLimitMiddleware(hm.cfg.AuthRPS, hm.cfg.AuthBurst))
		{
			auth.POST("/signup", hm.authHandler.Signup)
			auth.POST("/login", hm.authHandler.Login)
			auth.GET("/profile", requireAuth, hm.authHandler.Profile)
			auth.POST("/logout", requireAuth, hm.authHandler.Logout)
		}

		// Course catalog reads are public
		courses := api.Group("/courses")
		{
			courses.GET("", hm.courseHandler.List)
			courses.GET("/:id", hm.courseHandler.Get)
			courses.GET("/:id/modules", hm.courseHandler.Modules)

			courses.GET("/:id/progress", requireAuth, hm.courseHandler.Progress)
			courses.POST("/enroll", requireAuth, hm.courseHandler.Enroll)

			courses.POST("", requireAuth, adminOnly, hm.courseHandler.Create)
		}

		modules := api.Group("/modules")
		{
			// Optional auth: the handler rejects gated reads without a user
			modules.GET("/:id", optionalAuth, hm.moduleHandler.Get)

			modules.POST("/:id/start", requireAuth, hm.moduleHandler.Start)
			modules.POST("/:id/complete", requireAuth, hm.moduleHandler.Complete)
			modules.GET("/:id/status", requireAuth, hm.moduleHandler.Status)

			modules.POST("", requireAuth, adminOnly, hm.moduleHandler.Create)
		}

		quiz := api.Group("/quiz")
		{
			quiz.POST("/:moduleId/start", optionalAuth, hm.quizHandler.Start)
			quiz.POST("/:moduleId/submit", requireAuth, hm.quizHandler.Submit)
			quiz.POST("/:moduleId/import", requireAuth, adminOnly, hm.quizHandler.Import)
		}

		// The authenticated user's own learning history
		me := api.Group("/users/me")
		me.Use(requireAuth)
		{
			me.GET("/activity", hm.learningHandler.Activity)
			me.POST("/activity", hm.learningHandler.RecordActivity)
			me.GET("/activity/daily", hm.learningHandler.DailyActivity)
			me.GET("/quiz-results", hm.learningHandler.QuizResults)
			me.GET("/progress", hm.learningHandler.Progress)
		}

		// ML generation is expensive upstream, so it gets its own limiter
		ml := api.Group("/ml")
		ml.Use(RateLimitMiddleware(hm.cfg.MLRPS, hm.cfg.MLBurst), requireAuth)
		{
			ml.POST("/profile/generate", hm.mlHandler.GenerateProfile)
			ml.POST("/recommendations/generate", hm.mlHandler.GenerateRecommendations)
			ml.GET("/profile", hm.mlHandler.GetProfile)
			ml.GET("/recommendations", hm.mlHandler.GetRecommendations)
		}
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		if err := hm.serviceManager.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "insightify",
		})
	})
}
