package handlers

import (
	"net/http"
	"time"

	"marketplace/internal/middleware"
	"marketplace/internal/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func (h *Handler) SetupRouter(rateLimiter *services.IPRateLimiter) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(h.corsConfig()))

	r.GET("/health", h.Health)

	api := r.Group(h.cfg.APIPrefix)
	requireAuth := middleware.BearerAuth(h.tokenService)

	// Auth Routes
	auth := api.Group("/auth")
	if rateLimiter != nil {
		auth.Use(middleware.RateLimit(rateLimiter))
	}
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.GET("/profile", requireAuth, h.Profile)
	}

	// Product Routes
	products := api.Group("/products")
	{
		products.GET("", h.ListProducts)
		products.GET("/my-listings", requireAuth, h.MyListings)
		products.POST("", requireAuth, h.CreateProduct)
		products.GET("/:id", h.GetProduct)
		products.GET("/:id/qr", h.ProductQRCode)
		products.DELETE("/:id", requireAuth, h.DeleteProduct)
	}

	return r
}

func (h *Handler) Health(c *gin.Context) {
	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		h.logger.Error("Health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (h *Handler) corsConfig() cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}

	origins := h.cfg.AllowedOrigins()
	for _, o := range origins {
		if o == "*" {
			origins = nil
			break
		}
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
