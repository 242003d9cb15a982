package handlers

import (
	"net/http"

	"github.com/anonto42/nano-midea/engagement/internal/models"
	"github.com/anonto42/nano-midea/engagement/internal/services"
	"github.com/labstack/echo/v4"
)

// PostHandler handles post lifecycle HTTP requests
type PostHandler struct {
	posts *services.PostService
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(posts *services.PostService) *PostHandler {
	return &PostHandler{posts: posts}
}

// RegisterPostRoutes registers post routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("/posts", h.CreatePost)
	g.POST("/posts/:post_id/share", h.SharePost)
	g.PUT("/posts/:post_id", h.UpdatePost)
	g.DELETE("/posts/:post_id", h.DeletePost)
}

// CreatePost creates a new post
func (h *PostHandler) CreatePost(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	var req models.CreatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	post, err := h.posts.CreatePost(c.Request().Context(), userID, req)
	if err != nil {
		return toHTTPError(err)
	}
	return respond(c, http.StatusCreated, post)
}

// SharePost creates a share of another post with optional commentary
func (h *PostHandler) SharePost(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	var req models.SharePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	post, err := h.posts.SharePost(c.Request().Context(), userID, c.Param("post_id"), req)
	if err != nil {
		return toHTTPError(err)
	}
	return respond(c, http.StatusCreated, post)
}

// UpdatePost updates an existing post
func (h *PostHandler) UpdatePost(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	var req models.UpdatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	post, err := h.posts.UpdatePost(c.Request().Context(), userID, c.Param("post_id"), req)
	if err != nil {
		return toHTTPError(err)
	}
	return respond(c, http.StatusOK, post)
}

// DeletePost soft-deletes a post
func (h *PostHandler) DeletePost(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	if err := h.posts.DeletePost(c.Request().Context(), userID, c.Param("post_id")); err != nil {
		return toHTTPError(err)
	}
	return respond(c, http.StatusOK, echo.Map{"deleted": true})
}
