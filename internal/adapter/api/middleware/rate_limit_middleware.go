package middleware

import (
	"fmt"

	"github.com/labstack/echo/v4"

	"ulasanku/internal/infrastructure/ratelimit"
	"ulasanku/pkg/errors"
	"ulasanku/pkg/logger"
	"ulasanku/pkg/response"
)

// RateLimitMiddleware throttles per user and action. Unauthenticated callers
// fall back to their IP as the bucket key.
type RateLimitMiddleware struct {
	limiter *ratelimit.RateLimiter
}

func NewRateLimitMiddleware(limiter *ratelimit.RateLimiter) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		limiter: limiter,
	}
}

func (m *RateLimitMiddleware) Limit(action string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key, ok := c.Get("uid").(string)
			if !ok || key == "" {
				key = c.RealIP()
			}

			allowed, waitTime := m.limiter.Allow(key, action)
			if !allowed {
				logger.Warn("Rate limit exceeded: key=%s, action=%s, retry in %v", key, action, waitTime)
				return response.Error(c, errors.TooManyRequests(
					fmt.Sprintf("Too many requests, retry in %d seconds", int(waitTime.Seconds())+1),
				))
			}

			return next(c)
		}
	}
}
