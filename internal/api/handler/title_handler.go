package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/reviewdeck/reviewdeck/internal/core/ports"
)

// TitleHandler serves titles. Reads are open and carry the derived rating;
// writes are admin-gated in middleware.
type TitleHandler struct {
	catalog ports.CatalogService
}

func NewTitleHandler(catalog ports.CatalogService) *TitleHandler {
	return &TitleHandler{catalog: catalog}
}

type titleRequest struct {
	Name        string   `json:"name"        validate:"required,max=256"`
	Year        int      `json:"year"        validate:"required"`
	Description string   `json:"description"`
	Genres      []string `json:"genre"`
	Category    string   `json:"category"`
}

// List handles GET /titles.
//
// @Summary      List titles with their ratings
// @Tags         catalog
// @Produce      json
// @Success      200  {array}  domain.Title
// @Router       /titles [get]
func (h *TitleHandler) List(c echo.Context) error {
	titles, err := h.catalog.ListTitles(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, titles)
}

// Get handles GET /titles/:title_id.
func (h *TitleHandler) Get(c echo.Context) error {
	title, err := h.catalog.GetTitle(c.Request().Context(), c.Param("title_id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, title)
}

// Create handles POST /titles (admin only).
func (h *TitleHandler) Create(c echo.Context) error {
	var req titleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	title, err := h.catalog.CreateTitle(c.Request().Context(), ports.TitleInput{
		Name:        req.Name,
		Year:        req.Year,
		Description: req.Description,
		Genres:      req.Genres,
		Category:    req.Category,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, title)
}

// Update handles PATCH /titles/:title_id (admin only).
func (h *TitleHandler) Update(c echo.Context) error {
	var req titleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	title, err := h.catalog.UpdateTitle(c.Request().Context(), c.Param("title_id"), ports.TitleInput{
		Name:        req.Name,
		Year:        req.Year,
		Description: req.Description,
		Genres:      req.Genres,
		Category:    req.Category,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, title)
}

// Delete handles DELETE /titles/:title_id (admin only).
func (h *TitleHandler) Delete(c echo.Context) error {
	if err := h.catalog.DeleteTitle(c.Request().Context(), c.Param("title_id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
