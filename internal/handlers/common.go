package handlers

import (
	"net/http"
	"strconv"

	"github.com/anonto42/nano-midea/engagement/internal/apperrors"
	"github.com/anonto42/nano-midea/engagement/internal/middleware"
	"github.com/labstack/echo/v4"
)

const (
	defaultPage  = 1
	defaultLimit = 20
)

// getUserIDFromContext returns the caller id set by the identity middleware
func getUserIDFromContext(c echo.Context) string {
	id, _ := c.Get(middleware.UserIDKey).(string)
	return id
}

func requireUser(c echo.Context) (string, error) {
	id := getUserIDFromContext(c)
	if id == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	return id, nil
}

// toHTTPError maps a service error onto the status code of its kind
func toHTTPError(err error) error {
	return echo.NewHTTPError(apperrors.HTTPStatus(err), apperrors.Message(err))
}

// getPaginationParams reads page and limit, defaulting absent values. Values
// that are present are handed to the services unchanged so non-positive
// pagination is rejected there.
func getPaginationParams(c echo.Context) (int, int, error) {
	page, err := intQueryParam(c, "page", defaultPage)
	if err != nil {
		return 0, 0, err
	}
	limit, err := intQueryParam(c, "limit", defaultLimit)
	if err != nil {
		return 0, 0, err
	}
	return page, limit, nil
}

func intQueryParam(c echo.Context, name string, def int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid "+name+" parameter")
	}
	return v, nil
}

func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return err
	}
	return nil
}

func respond(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, echo.Map{"success": true, "data": data})
}
