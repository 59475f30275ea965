package router

import (
	"ulasanku/internal/adapter/api/middleware"

	"github.com/labstack/echo/v4"
)

func Setup(
	e *echo.Echo,
	authMiddleware *middleware.AuthMiddleware,
	moderatorMiddleware *middleware.ModeratorMiddleware,
	rateLimitMiddleware *middleware.RateLimitMiddleware,
) {
	SetupReviewRouter(e, authMiddleware, moderatorMiddleware, rateLimitMiddleware)
	SetupHealthRouter(e)
}
