// Package middleware holds the gin middleware in front of the editor API.
//
//   - CORS: cross-origin access for the in-game browser and dev tooling
//   - RateLimit / GlobalRateLimit: token buckets from golang.org/x/time/rate
//   - RequestID / AccessLog: request correlation and zap access logging
//
// Example:
//
//	router.Use(middleware.RequestID(), middleware.AccessLog(logger))
//	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
//	router.Use(middleware.RateLimit(middleware.DefaultRateLimitConfig()))
package middleware
