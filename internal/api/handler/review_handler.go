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

// ReviewHandler serves reviews under /titles/:title_id/reviews. Reads are
// public; the object-level write decision happens in the service once the
// review is loaded.
type ReviewHandler struct {
	reviews ports.ReviewService
}

func NewReviewHandler(reviews ports.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

// Score binds as a pointer so a literal 0 survives the required check;
// the configured bounds are enforced in the service.
type reviewRequest struct {
	Text  string `json:"text"  validate:"required"`
	Score *int   `json:"score" validate:"required"`
}

// List handles GET /titles/:title_id/reviews.
//
// @Summary      List reviews of a title
// @Tags         reviews
// @Produce      json
// @Success      200  {array}   domain.Review
// @Failure      404  {object}  errorResponse
// @Router       /titles/{title_id}/reviews [get]
func (h *ReviewHandler) List(c echo.Context) error {
	reviews, err := h.reviews.ListReviews(c.Request().Context(), c.Param("title_id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, reviews)
}

// Get handles GET /titles/:title_id/reviews/:review_id.
func (h *ReviewHandler) Get(c echo.Context) error {
	review, err := h.reviews.GetReview(c.Request().Context(), c.Param("title_id"), c.Param("review_id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, review)
}

// Create handles POST /titles/:title_id/reviews. A second review by the
// same author for the same title is rejected as a conflict.
//
// @Summary      Review a title
// @Tags         reviews
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        title_id  path      string         true  "Title ID"
// @Param        body      body      reviewRequest  true  "Review"
// @Success      201       {object}  domain.Review
// @Failure      400       {object}  errorResponse
// @Failure      401       {object}  errorResponse
// @Failure      404       {object}  errorResponse
// @Router       /titles/{title_id}/reviews [post]
func (h *ReviewHandler) Create(c echo.Context) error {
	var req reviewRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	review, err := h.reviews.CreateReview(c.Request().Context(), middleware.Actor(c), c.Param("title_id"), req.Text, *req.Score)
	if err != nil {
		if errors.Is(err, domain.ErrReviewExists) {
			metrics.ReviewConflictsTotal.Inc()
		}
		return err
	}

	metrics.ReviewsCreatedTotal.Inc()
	return c.JSON(http.StatusCreated, review)
}

// Update handles PATCH /titles/:title_id/reviews/:review_id.
func (h *ReviewHandler) Update(c echo.Context) error {
	var req reviewRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	review, err := h.reviews.UpdateReview(c.Request().Context(), middleware.Actor(c),
		c.Param("title_id"), c.Param("review_id"), req.Text, *req.Score)
	if err != nil {
		if errors.Is(err, domain.ErrForbidden) {
			metrics.AuthzDenialsTotal.WithLabelValues(policy.Contribution.String(), "object").Inc()
		}
		return err
	}
	return c.JSON(http.StatusOK, review)
}

// Delete handles DELETE /titles/:title_id/reviews/:review_id.
func (h *ReviewHandler) Delete(c echo.Context) error {
	err := h.reviews.DeleteReview(c.Request().Context(), middleware.Actor(c),
		c.Param("title_id"), c.Param("review_id"))
	if err != nil {
		if errors.Is(err, domain.ErrForbidden) {
			metrics.AuthzDenialsTotal.WithLabelValues(policy.Contribution.String(), "object").Inc()
		}
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
