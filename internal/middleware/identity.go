package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// UserIDKey is the echo context key holding the authenticated user id
const UserIDKey = "userID"

// bearerToken extracts the token of an "Authorization: Bearer <token>" header
func bearerToken(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "Missing Authorization header")
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "Invalid Authorization header format")
	}
	return parts[1], nil
}
