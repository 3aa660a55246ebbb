package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// publicPaths lists routes that bypass authentication on every method.
var publicPaths = map[string]bool{
	"/health":    true,
	"/health/db": true,
	"/metrics":   true,
	"/api/login": true,
}

// publicReads lists routes that are public for GET only.
var publicReads = map[string]bool{
	"/api/labs": true,
}

// AuthSkipper returns true for requests whose route should skip authentication.
func AuthSkipper(c echo.Context) bool {
	path := c.Path()
	if publicPaths[path] {
		return true
	}
	return c.Request().Method == http.MethodGet && publicReads[path]
}

// IsPublicPath reports whether the given path is public for every method.
func IsPublicPath(path string) bool {
	return publicPaths[path]
}
