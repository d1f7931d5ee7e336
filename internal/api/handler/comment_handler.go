package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/reviewdeck/reviewdeck/internal/api/metrics"
	"github.com/reviewdeck/reviewdeck/internal/api/middleware"
	"github.com/reviewdeck/reviewdeck/internal/core/domain"
	"github.com/reviewdeck/reviewdeck/internal/core/policy"
	"github.com/reviewdeck/reviewdeck/internal/core/ports"
)

// CommentHandler serves comments under
// /titles/:title_id/reviews/:review_id/comments. Same policy shape as
// reviews, without any uniqueness constraint.
type CommentHandler struct {
	reviews ports.ReviewService
}

func NewCommentHandler(reviews ports.ReviewService) *CommentHandler {
	return &CommentHandler{reviews: reviews}
}

type commentRequest struct {
	Text string `json:"text" validate:"required"`
}

// List handles GET .../comments.
func (h *CommentHandler) List(c echo.Context) error {
	comments, err := h.reviews.ListComments(c.Request().Context(),
		c.Param("title_id"), c.Param("review_id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, comments)
}

// Get handles GET .../comments/:comment_id.
func (h *CommentHandler) Get(c echo.Context) error {
	comment, err := h.reviews.GetComment(c.Request().Context(),
		c.Param("title_id"), c.Param("review_id"), c.Param("comment_id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, comment)
}

// Create handles POST .../comments.
func (h *CommentHandler) Create(c echo.Context) error {
	var req commentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	comment, err := h.reviews.CreateComment(c.Request().Context(), middleware.Actor(c),
		c.Param("title_id"), c.Param("review_id"), req.Text)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, comment)
}

// Update handles PATCH .../comments/:comment_id.
func (h *CommentHandler) Update(c echo.Context) error {
	var req commentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	comment, err := h.reviews.UpdateComment(c.Request().Context(), middleware.Actor(c),
		c.Param("title_id"), c.Param("review_id"), c.Param("comment_id"), req.Text)
	if err != nil {
		if errors.Is(err, domain.ErrForbidden) {
			metrics.AuthzDenialsTotal.WithLabelValues(policy.Contribution.String(), "object").Inc()
		}
		return err
	}
	return c.JSON(http.StatusOK, comment)
}

// Delete handles DELETE .../comments/:comment_id.
func (h *CommentHandler) Delete(c echo.Context) error {
	err := h.reviews.DeleteComment(c.Request().Context(), middleware.Actor(c),
		c.Param("title_id"), c.Param("review_id"), c.Param("comment_id"))
	if err != nil {
		if errors.Is(err, domain.ErrForbidden) {
			metrics.AuthzDenialsTotal.WithLabelValues(policy.Contribution.String(), "object").Inc()
		}
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
