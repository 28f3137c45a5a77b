package server

import (
	"net/http"

	"github.com/Isaias789672/chef-ai-recipes/internal/ai"
	"github.com/Isaias789672/chef-ai-recipes/internal/cache"
	"github.com/Isaias789672/chef-ai-recipes/internal/config"
	apierrors "github.com/Isaias789672/chef-ai-recipes/internal/errors"
	"github.com/Isaias789672/chef-ai-recipes/internal/logging"
	"github.com/Isaias789672/chef-ai-recipes/internal/middleware"
	"github.com/Isaias789672/chef-ai-recipes/internal/monitoring"
	"github.com/Isaias789672/chef-ai-recipes/internal/webhook"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// APIServer represents the main API server
type APIServer struct {
	config         *config.Config
	router         *gin.Engine
	db             *pgxpool.Pool
	redis          *cache.Redis
	webhookService *webhook.Service
	aiClient       *ai.Client
	rateLimiter    *middleware.RateLimiter
}

// NewAPIServer creates a new API server instance. redis may be nil; the
// AI endpoints then run without rate limiting.
func NewAPIServer(cfg *config.Config, db *pgxpool.Pool, redis *cache.Redis) *APIServer {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.HandleMethodNotAllowed = true

	// Add middleware in order
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS(cfg.CORS.AllowedOrigins))
	router.Use(monitoring.MetricsMiddleware())
	router.Use(logging.RequestLogger())

	webhookService := webhook.NewService(
		webhook.NewPostgresUserStore(db),
		webhook.NewPostgresEventLogStore(db),
		cfg.Webhook.Token,
	)

	srv := &APIServer{
		config:         cfg,
		router:         router,
		db:             db,
		redis:          redis,
		webhookService: webhookService,
		aiClient:       ai.NewClient(&cfg.AI),
	}

	if redis != nil {
		srv.rateLimiter = middleware.NewRateLimiter(redis, &cfg.RateLimit)
	}

	srv.setupRoutes()
	return srv
}

// Router returns the gin router
func (s *APIServer) Router() http.Handler {
	return s.router
}

// setupRoutes configures all API routes
func (s *APIServer) setupRoutes() {
	s.router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
	})

	// Health check
	s.router.GET("/health", s.healthCheck)

	// API v1 routes
	v1 := s.router.Group("/api/v1")
	{
		// Payment-provider webhooks (authenticated by shared secret,
		// not by middleware: the provider's dispatcher sends no headers
		// beyond content-type)
		webhooks := v1.Group("/webhooks")
		{
			webhooks.POST("/kiwify", s.handleKiwifyWebhook)
		}

		// AI completion proxies
		aiGroup := v1.Group("/ai")
		if s.rateLimiter != nil {
			aiGroup.Use(s.rateLimiter.Limit())
		}
		{
			aiGroup.POST("/chat", s.handleChatRecipe)
			aiGroup.POST("/generate", s.handleGenerateRecipe)
			aiGroup.POST("/analyze", s.handleAnalyzeFridge)
		}
	}
}

// Health check handler
func (s *APIServer) healthCheck(c *gin.Context) {
	if err := s.db.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "unhealthy",
			"service": "api",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "api",
	})
}

// respondError sends a standardized error response
func respondError(c *gin.Context, err *apierrors.APIError) {
	requestID := c.GetString("request_id")

	c.JSON(err.HTTPStatus, apierrors.ErrorResponse{
		Error:     *err,
		RequestID: requestID,
	})
}
