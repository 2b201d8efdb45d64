package router

import (
	"github.com/gin-gonic/gin"
	"github.com/ikkim/juveboxd-backend/config"
	"github.com/ikkim/juveboxd-backend/internal/app/controller"
	"github.com/ikkim/juveboxd-backend/internal/middleware"
)

type Router struct {
	reviewController *controller.ReviewController
	config           *config.Config
}

func NewRouter(reviewController *controller.ReviewController, cfg *config.Config) *Router {
	return &Router{
		reviewController: reviewController,
		config:           cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "JUVEBOXD API is running",
			"backend": r.config.Store.Backend,
		})
	})

	api := router.Group("/api")
	{
		reviews := api.Group("/reviews")
		{
			reviews.GET("", r.reviewController.ListReviews)
			reviews.POST("", r.reviewController.CreateReview)
			reviews.GET("/recent", r.reviewController.RecentReviews)
			reviews.GET("/summary", r.reviewController.GetSummary)
			reviews.GET("/export.xlsx", r.reviewController.ExportReviews)
			reviews.GET("/live", r.reviewController.LiveFeed)
			reviews.GET("/:id", r.reviewController.GetReview)
			reviews.DELETE("/:id", r.reviewController.DeleteReview)
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
