package handlers

import (
	"net/http"

	"github.com/anonto42/nano-midea/engagement/internal/models"
	"github.com/anonto42/nano-midea/engagement/internal/services"
	"github.com/labstack/echo/v4"
)

// UserHandler handles profile HTTP requests
type UserHandler struct {
	users *services.UserService
	graph *services.SocialGraph
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(users *services.UserService, graph *services.SocialGraph) *UserHandler {
	return &UserHandler{users: users, graph: graph}
}

// RegisterProfileRoutes registers profile routes
func (h *UserHandler) RegisterProfileRoutes(g *echo.Group) {
	g.POST("/users", h.CreateProfile)
	g.GET("/users/search", h.SearchUsers)
	g.GET("/users/:id", h.GetProfile)
	g.PUT("/profile", h.UpdateProfile)
	g.GET("/users/:id/relationship", h.GetRelationship)
}

// CreateProfile provisions the profile of the authenticated caller
func (h *UserHandler) CreateProfile(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	var req models.CreateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.users.CreateUser(c.Request().Context(), userID, req)
	if err != nil {
		return toHTTPError(err)
	}
	return respond(c, http.StatusCreated, user)
}

// GetProfile returns a profile with its counters
func (h *UserHandler) GetProfile(c echo.Context) error {
	if _, err := requireUser(c); err != nil {
		return err
	}

	user, err := h.users.GetUser(c.Request().Context(), c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return respond(c, http.StatusOK, user)
}

// UpdateProfile edits the caller's profile
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	var req models.UpdateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.users.UpdateUser(c.Request().Context(), userID, req)
	if err != nil {
		return toHTTPError(err)
	}
	return respond(c, http.StatusOK, user)
}

// GetRelationship describes the follow edges between the caller and a user
func (h *UserHandler) GetRelationship(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	rel, err := h.graph.Relationship(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return respond(c, http.StatusOK, rel)
}

// SearchUsers finds profiles by username or display name
func (h *UserHandler) SearchUsers(c echo.Context) error {
	if _, err := requireUser(c); err != nil {
		return err
	}
	page, limit, err := getPaginationParams(c)
	if err != nil {
		return err
	}

	users, err := h.users.SearchUsers(c.Request().Context(), c.QueryParam("q"), page, limit)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"users": users},
		"meta":    echo.Map{"currentPage": page, "itemsPerPage": limit},
	})
}
