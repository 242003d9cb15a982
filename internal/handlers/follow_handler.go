package handlers

import (
	"context"
	"net/http"

	"github.com/anonto42/nano-midea/engagement/internal/models"
	"github.com/anonto42/nano-midea/engagement/internal/services"
	"github.com/labstack/echo/v4"
)

type edgeLister func(ctx context.Context, userID string, page, limit int) ([]models.Follow, error)

// FollowHandler handles follow/unfollow HTTP requests
type FollowHandler struct {
	graph *services.SocialGraph
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(graph *services.SocialGraph) *FollowHandler {
	return &FollowHandler{graph: graph}
}

// RegisterFollowRoutes registers follow-related routes
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.POST("/users/:id/follow", h.FollowUser)
	g.DELETE("/users/:id/follow", h.UnfollowUser)
	g.GET("/users/:id/followers", h.GetFollowers)
	g.GET("/users/:id/following", h.GetFollowing)
	g.GET("/follow-requests", h.GetPendingRequests)
	g.POST("/follow-requests/:id/accept", h.AcceptRequest)
	g.POST("/follow-requests/:id/reject", h.RejectRequest)
}

// FollowUser follows a user, or requests to when the user is private
func (h *FollowHandler) FollowUser(c echo.Context) error {
	currentUserID, err := requireUser(c)
	if err != nil {
		return err
	}

	follow, err := h.graph.Follow(c.Request().Context(), currentUserID, c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}

	return respond(c, http.StatusCreated, echo.Map{
		"follow":    follow,
		"following": follow.Accepted,
		"requested": !follow.Accepted,
	})
}

// UnfollowUser unfollows a user or withdraws a pending request
func (h *FollowHandler) UnfollowUser(c echo.Context) error {
	currentUserID, err := requireUser(c)
	if err != nil {
		return err
	}

	if err := h.graph.Unfollow(c.Request().Context(), currentUserID, c.Param("id")); err != nil {
		return toHTTPError(err)
	}
	return respond(c, http.StatusOK, echo.Map{"following": false})
}

// AcceptRequest accepts the pending request of the follower :id
func (h *FollowHandler) AcceptRequest(c echo.Context) error {
	currentUserID, err := requireUser(c)
	if err != nil {
		return err
	}

	follow, err := h.graph.AcceptFollowRequest(c.Request().Context(), currentUserID, c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return respond(c, http.StatusOK, follow)
}

// RejectRequest rejects the pending request of the follower :id
func (h *FollowHandler) RejectRequest(c echo.Context) error {
	currentUserID, err := requireUser(c)
	if err != nil {
		return err
	}

	if err := h.graph.RejectFollowRequest(c.Request().Context(), currentUserID, c.Param("id")); err != nil {
		return toHTTPError(err)
	}
	return respond(c, http.StatusOK, echo.Map{"rejected": true})
}

func (h *FollowHandler) GetFollowers(c echo.Context) error {
	return h.listEdges(c, c.Param("id"), h.graph.ListFollowers)
}

func (h *FollowHandler) GetFollowing(c echo.Context) error {
	return h.listEdges(c, c.Param("id"), h.graph.ListFollowing)
}

// GetPendingRequests lists requests waiting for the caller's decision
func (h *FollowHandler) GetPendingRequests(c echo.Context) error {
	return h.listEdges(c, getUserIDFromContext(c), h.graph.ListPendingRequests)
}

func (h *FollowHandler) listEdges(c echo.Context, userID string, list edgeLister) error {
	if _, err := requireUser(c); err != nil {
		return err
	}
	page, limit, err := getPaginationParams(c)
	if err != nil {
		return err
	}

	follows, err := list(c.Request().Context(), userID, page, limit)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"follows": follows},
		"meta":    echo.Map{"currentPage": page, "itemsPerPage": limit},
	})
}
