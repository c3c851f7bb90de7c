package app

import (
	"zplus_counselling_backend/internal/config"
	"zplus_counselling_backend/internal/middleware"
	"zplus_counselling_backend/internal/model"
	"zplus_counselling_backend/pkg/monitoring"

	"zplus_counselling_backend/docs"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api/v1"

	router.GET("/health", c.health.Health)
	router.GET("/metrics", monitoring.PrometheusHandler())
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	v1 := router.Group("/api/v1")

	auth := v1.Group("/auth")
	{
		auth.POST("/register", c.auth.Register)
		auth.POST("/login", c.auth.Login)
		auth.GET("/me", middleware.AuthMiddleware(cfg), c.auth.Me)
	}

	authed := v1.Group("")
	authed.Use(middleware.AuthMiddleware(cfg))
	{
		users := authed.Group("/users")
		{
			users.GET("/profile", c.user.Profile)
			users.PUT("/profile", c.user.UpdateProfile)
		}

		assessments := authed.Group("/assessments")
		{
			assessments.GET("", c.assessment.ListAvailable)
			assessments.GET("/history", c.assessment.History)
			assessments.POST("/:testType/start", c.assessment.Start)
			assessments.GET("/:testType/current", c.assessment.Current)
			assessments.POST("/sessions/:sessionId/answers", c.assessment.SubmitAnswer)
			assessments.POST("/sessions/:sessionId/complete", c.assessment.Complete)
			assessments.POST("/sessions/:sessionId/abandon", c.assessment.Abandon)
		}

		results := authed.Group("/results")
		{
			results.GET("", c.result.ListMine)
			results.GET("/:sessionId", c.result.GetBySession)
		}

		counseling := authed.Group("/counseling")
		{
			counseling.GET("/counselors", c.counseling.ListCounselors)
			counseling.POST("/sessions", c.counseling.Book)
			counseling.GET("/sessions", c.counseling.ListMine)
			counseling.GET("/sessions/:id", c.counseling.Get)
			counseling.PUT("/sessions/:id/status", c.counseling.UpdateStatus)
			counseling.POST("/sessions/:id/feedback", c.counseling.Feedback)
		}
	}

	admin := v1.Group("/admin")
	admin.Use(middleware.AuthMiddleware(cfg), middleware.RoleMiddleware(model.RoleAdmin))
	{
		templates := admin.Group("/templates")
		{
			templates.POST("", c.adminTemplate.Create)
			templates.GET("", c.adminTemplate.List)
			templates.GET("/:id", c.adminTemplate.Get)
			templates.PUT("/:id", c.adminTemplate.Update)
			templates.PUT("/:id/active", c.adminTemplate.SetActive)
		}
	}
}
