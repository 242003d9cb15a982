package handlers

import (
	"net/http"

	"github.com/anonto42/nano-midea/engagement/internal/services"
	"github.com/labstack/echo/v4"
)

// FeedHandler serves the read side: home feed, profile posts and single posts
type FeedHandler struct {
	feed *services.FeedAssembler
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(feed *services.FeedAssembler) *FeedHandler {
	return &FeedHandler{feed: feed}
}

// RegisterFeedRoutes registers feed routes
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("/feed", h.GetFeed)
	g.GET("/users/:id/posts", h.GetProfilePosts)
	g.GET("/posts/my-posts", h.GetMyPosts)
	g.GET("/posts/:post_id", h.GetPost)
}

// GetFeed returns the caller's home feed
func (h *FeedHandler) GetFeed(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	page, limit, err := getPaginationParams(c)
	if err != nil {
		return err
	}

	posts, err := h.feed.GetFeed(c.Request().Context(), userID, page, limit)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"posts": posts},
		"meta": echo.Map{
			"currentPage":  page,
			"itemsPerPage": limit,
			"hasNextPage":  len(posts) == limit,
		},
	})
}

// GetProfilePosts returns the public posts of a user
func (h *FeedHandler) GetProfilePosts(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	page, limit, err := getPaginationParams(c)
	if err != nil {
		return err
	}

	posts, err := h.feed.GetProfilePosts(c.Request().Context(), c.Param("id"), userID, page, limit)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"posts": posts},
		"meta":    echo.Map{"currentPage": page, "itemsPerPage": limit},
	})
}

// GetMyPosts returns the caller's own posts, private ones included
func (h *FeedHandler) GetMyPosts(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	page, limit, err := getPaginationParams(c)
	if err != nil {
		return err
	}

	posts, err := h.feed.GetMyPosts(c.Request().Context(), userID, page, limit)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"posts": posts},
		"meta":    echo.Map{"currentPage": page, "itemsPerPage": limit},
	})
}

// GetPost returns one post if the caller may see it
func (h *FeedHandler) GetPost(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	post, err := h.feed.GetPostByID(c.Request().Context(), c.Param("post_id"), userID)
	if err != nil {
		return toHTTPError(err)
	}
	return respond(c, http.StatusOK, post)
}
