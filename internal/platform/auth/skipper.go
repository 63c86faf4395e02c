package auth

import (
	"github.com/labstack/echo/v4"
)

// infraPaths are infrastructure endpoints that never look at sessions and
// are exempt from rate limiting.
var infraPaths = map[string]bool{
	"/health":    true,
	"/health/db": true,
}

// InfraSkipper returns true for health check requests.
func InfraSkipper(c echo.Context) bool {
	return infraPaths[c.Request().URL.Path]
}

// IsInfraPath reports whether path is a health check endpoint.
func IsInfraPath(path string) bool {
	return infraPaths[path]
}
