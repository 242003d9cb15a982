package handlers

import (
	"net/http"

	"github.com/anonto42/nano-midea/engagement/internal/models"
	"github.com/anonto42/nano-midea/engagement/internal/services"
	"github.com/labstack/echo/v4"
)

// LikeHandler handles like HTTP requests
type LikeHandler struct {
	likes *services.EngagementLedger
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(likes *services.EngagementLedger) *LikeHandler {
	return &LikeHandler{likes: likes}
}

// RegisterLikeRoutes registers like-related routes
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.POST("/posts/:post_id/likes/toggle", h.ToggleLike)
	g.GET("/posts/:post_id/likes", h.GetLikes)
}

// ToggleLike likes the post, or removes the caller's like when present
func (h *LikeHandler) ToggleLike(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	result, err := h.likes.ToggleLike(c.Request().Context(), c.Param("post_id"), userID)
	if err != nil {
		return toHTTPError(err)
	}

	return respond(c, http.StatusOK, echo.Map{
		"result": result,
		"liked":  result == models.LikeAdded,
	})
}

// GetLikes lists who liked a post, newest first
func (h *LikeHandler) GetLikes(c echo.Context) error {
	if _, err := requireUser(c); err != nil {
		return err
	}
	page, limit, err := getPaginationParams(c)
	if err != nil {
		return err
	}

	likes, err := h.likes.ListLikes(c.Request().Context(), c.Param("post_id"), page, limit)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"likes": likes},
		"meta":    echo.Map{"currentPage": page, "itemsPerPage": limit},
	})
}
