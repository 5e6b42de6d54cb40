package handler

import (
	"account-balance-service/internal/adapter/http/middleware"
	"account-balance-service/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const maxBodyBytes = 1 << 20

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	AccountSvc     ports.AccountService
	TokenSvc       ports.TokenService // nil = auth disabled
	RateLimiter    ports.RateLimiter  // nil = rate limiting disabled
	RateLimit      middleware.RateLimitRule
	HealthCheckers []ports.HealthChecker
	BaseURL        string
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(maxBodyBytes))

	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	swagger := r.Group("/swagger")
	{
		swagger.GET("", SwaggerUI)
		swagger.GET("/spec", SwaggerSpec)
	}

	v1 := r.Group("/api/v1")
	if deps.TokenSvc != nil {
		v1.Use(middleware.JWTAuth(deps.TokenSvc, deps.Logger))
	}
	if deps.RateLimiter != nil {
		v1.Use(middleware.RateLimiter(deps.RateLimiter, deps.RateLimit, deps.Logger))
	}

	accountHandler := NewAccountHandler(deps.AccountSvc, deps.BaseURL)
	v1.POST("/accounts", accountHandler.OpenAccount)

	account := v1.Group("/accounts/:accountNumber")
	{
		account.POST("/transactions", accountHandler.ApplyBatch)
		account.GET("/transactions", accountHandler.ListTransactions)
		account.GET("/balance", accountHandler.GetBalance)
	}

	return r
}
