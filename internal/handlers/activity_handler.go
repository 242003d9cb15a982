package handlers

import (
	"net/http"

	"github.com/anonto42/nano-midea/engagement/internal/services"
	"github.com/labstack/echo/v4"
)

// ActivityHandler serves the caller's own activity log
type ActivityHandler struct {
	history *services.ActivityHistory
}

// NewActivityHandler creates a new ActivityHandler
func NewActivityHandler(history *services.ActivityHistory) *ActivityHandler {
	return &ActivityHandler{history: history}
}

// RegisterActivityRoutes registers activity routes
func (h *ActivityHandler) RegisterActivityRoutes(g *echo.Group) {
	g.GET("/activity", h.GetMyActivity)
}

// GetMyActivity lists the newest actions of the current user
func (h *ActivityHandler) GetMyActivity(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	_, limit, err := getPaginationParams(c)
	if err != nil {
		return err
	}

	events, err := h.history.ListMine(c.Request().Context(), userID, limit)
	if err != nil {
		return toHTTPError(err)
	}
	return respond(c, http.StatusOK, events)
}
