package handlers

import (
	"context"
	"net/http"

	"github.com/anonto42/nano-midea/engagement/internal/models"
	"github.com/anonto42/nano-midea/engagement/internal/services"
	"github.com/labstack/echo/v4"
)

// CommentHandler handles comment and reply HTTP requests
type CommentHandler struct {
	comments *services.CommentThreads
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(comments *services.CommentThreads) *CommentHandler {
	return &CommentHandler{comments: comments}
}

// RegisterCommentRoutes registers comment routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/posts/:post_id/comments", h.CreateComment)
	g.GET("/posts/:post_id/comments", h.GetComments)
	g.GET("/comments/:id", h.GetComment)
	g.PUT("/comments/:id", h.UpdateComment)
	g.DELETE("/comments/:id", h.DeleteComment)
	g.POST("/comments/:id/replies", h.CreateReply)
	g.GET("/comments/:id/replies", h.GetReplies)
}

func (h *CommentHandler) CreateComment(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	var req models.CreateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	comment, err := h.comments.AddComment(c.Request().Context(), c.Param("post_id"), userID, req.Content)
	if err != nil {
		return toHTTPError(err)
	}
	return respond(c, http.StatusCreated, comment)
}

// CreateReply replies to a top-level comment. The reply lands on the
// parent's post.
func (h *CommentHandler) CreateReply(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	var req models.CreateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	reply, err := h.comments.ReplyToComment(c.Request().Context(), c.Param("id"), userID, req.Content)
	if err != nil {
		return toHTTPError(err)
	}
	return respond(c, http.StatusCreated, reply)
}

func (h *CommentHandler) GetComment(c echo.Context) error {
	if _, err := requireUser(c); err != nil {
		return err
	}

	comment, err := h.comments.GetComment(c.Request().Context(), c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return respond(c, http.StatusOK, comment)
}

// UpdateComment edits the content of the caller's comment
func (h *CommentHandler) UpdateComment(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	var req models.UpdateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	comment, err := h.comments.UpdateComment(c.Request().Context(), c.Param("id"), req.Content, userID)
	if err != nil {
		return toHTTPError(err)
	}
	return respond(c, http.StatusOK, comment)
}

func (h *CommentHandler) DeleteComment(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	if err := h.comments.DeleteComment(c.Request().Context(), c.Param("id"), userID); err != nil {
		return toHTTPError(err)
	}
	return respond(c, http.StatusOK, echo.Map{"deleted": true})
}

func (h *CommentHandler) GetComments(c echo.Context) error {
	return h.list(c, c.Param("post_id"), h.comments.ListComments)
}

func (h *CommentHandler) GetReplies(c echo.Context) error {
	return h.list(c, c.Param("id"), h.comments.ListReplies)
}

func (h *CommentHandler) list(c echo.Context, id string, fetch func(context.Context, string, int, int) ([]models.Comment, error)) error {
	if _, err := requireUser(c); err != nil {
		return err
	}
	page, limit, err := getPaginationParams(c)
	if err != nil {
		return err
	}

	comments, err := fetch(c.Request().Context(), id, page, limit)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"comments": comments},
		"meta":    echo.Map{"currentPage": page, "itemsPerPage": limit},
	})
}
