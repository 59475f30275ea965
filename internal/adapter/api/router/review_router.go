package router

import (
	"ulasanku/internal/adapter/api/handler"
	"ulasanku/internal/adapter/api/middleware"

	"github.com/labstack/echo/v4"
)

func SetupReviewRouter(
	e *echo.Echo,
	authMiddleware *middleware.AuthMiddleware,
	moderatorMiddleware *middleware.ModeratorMiddleware,
	rateLimitMiddleware *middleware.RateLimitMiddleware,
) {
	reviewHandler := handler.GetReviewHandler()

	// Public storefront routes
	e.GET("/v1/products/:productId/reviews", reviewHandler.GetProductReviews)

	// Protected routes (require authentication)
	authenticated := e.Group("")
	authenticated.Use(authMiddleware.Authenticate)

	authenticated.POST("/v1/products/:productId/reviews", reviewHandler.SubmitReview, rateLimitMiddleware.Limit("submit_review"))
	authenticated.POST("/v1/reviews/:reviewId/helpful", reviewHandler.MarkHelpful, rateLimitMiddleware.Limit("mark_helpful"))
	authenticated.POST("/v1/reviews/:reviewId/report", reviewHandler.ReportReview, rateLimitMiddleware.Limit("report_review"))

	// Moderation routes
	admin := e.Group("/v1/admin")
	admin.Use(authMiddleware.Authenticate)
	admin.Use(moderatorMiddleware.ModeratorOnly)

	admin.GET("/reviews", reviewHandler.GetAllReviews)
	admin.GET("/reviews/pending", reviewHandler.GetPendingReviews)
	admin.GET("/reviews/statistics", reviewHandler.GetStatistics)
	admin.PATCH("/reviews/:reviewId/approve", reviewHandler.ApproveReview)
	admin.PATCH("/reviews/:reviewId/reject", reviewHandler.RejectReview)
	admin.DELETE("/reviews/:reviewId", reviewHandler.DeleteReview)
	admin.POST("/products/:productId/recompute-rating", reviewHandler.RecomputeProductAggregate)
}
