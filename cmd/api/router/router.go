package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"model-eval/cmd/api/auth"
	"model-eval/cmd/api/dto"
	"model-eval/cmd/api/handlers"
	"model-eval/cmd/api/middleware"
	_ "model-eval/docs"
	"model-eval/ratelimit"
	"model-eval/services"
)

// Deps 는 라우터가 필요로 하는 서비스 묶음이다.
type Deps struct {
	Prompts       *services.PromptService
	Evaluations   *services.EvaluationService
	Providers     *services.ProviderService
	Authenticator *auth.Authenticator
	Limiter       ratelimit.Limiter
	Health        handlers.Pinger
}

func New(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestTrace(), middleware.RequestLogging())

	limiter := d.Limiter
	if limiter == nil {
		limiter = ratelimit.NewNoopLimiter()
	}

	// Health check
	r.GET("/health", handlers.HealthHandler(d.Health))

	// Swagger
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api", middleware.RequireAuth(d.Authenticator))
	{
		api.GET("/auth/validate", handlers.ValidateTokenHandler())

		prompts := api.Group("/prompts")
		prompts.GET("", handlers.ListPromptsHandler(d.Prompts))
		prompts.POST("", handlers.CreatePromptHandler(d.Prompts))
		prompts.POST("/import", handlers.ImportPromptHandler(d.Prompts))
		prompts.GET("/:id", handlers.GetPromptHandler(d.Prompts))
		prompts.PUT("/:id", handlers.UpdatePromptHandler(d.Prompts))
		prompts.DELETE("/:id", handlers.DeletePromptHandler(d.Prompts))

		limited := middleware.RateLimit(limiter)
		evaluations := api.Group("/evaluations")
		evaluations.GET("", handlers.ListEvaluationsHandler(d.Evaluations))
		evaluations.POST("", limited, handlers.CreateEvaluationHandler(d.Evaluations))
		evaluations.POST("/multi", limited, handlers.CreateMultiEvaluationHandler(d.Evaluations))
		evaluations.GET("/prompt/:promptId", handlers.ListPromptEvaluationsHandler(d.Evaluations))
		evaluations.GET("/prompt/:promptId/summary", handlers.PromptSummaryHandler(d.Evaluations))
		evaluations.GET("/:id", handlers.GetEvaluationHandler(d.Evaluations))
		evaluations.DELETE("/:id", handlers.DeleteEvaluationHandler(d.Evaluations))

		providers := api.Group("/providers")
		providers.GET("", handlers.ListProvidersHandler(d.Providers))
		providers.GET("/:provider/models", handlers.ProviderModelsHandler(d.Providers))
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.ErrorResponseDTO{Error: "Not Found - " + c.Request.URL.Path})
	})

	return r
}
