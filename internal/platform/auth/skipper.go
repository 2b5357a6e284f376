package auth

import (
	"github.com/labstack/echo/v4"
)

// publicPaths lists URL paths that bypass authentication: infrastructure
// liveness checks and the public bulletin/location read endpoints subscribers
// browse before registering.
var publicPaths = map[string]bool{
	"/healthz":             true,
	"/api/locations/search": true,
}

// AuthSkipper returns true for requests whose path should skip authentication.
// Pass this as JWTConfig.Skipper or to DevAuthMiddleware so that health
// checks and public search endpoints remain reachable without a bearer token.
func AuthSkipper(c echo.Context) bool {
	return publicPaths[c.Path()]
}

// IsPublicPath reports whether the given path is a public endpoint that
// should bypass auth middleware.
func IsPublicPath(path string) bool {
	return publicPaths[path]
}
