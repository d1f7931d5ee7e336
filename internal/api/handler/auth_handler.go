package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/reviewdeck/reviewdeck/internal/api/metrics"
	"github.com/reviewdeck/reviewdeck/internal/core/domain"
	"github.com/reviewdeck/reviewdeck/internal/core/ports"
)

type AuthHandler struct {
	auth ports.AuthService
}

func NewAuthHandler(auth ports.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type signupRequest struct {
	Email    string `json:"email"    validate:"required,email,max=254"`
	Username string `json:"username" validate:"required,max=150"`
}

type signupResponse struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	// Warning is set when the registration committed but the confirmation
	// mail could not be delivered.
	Warning string `json:"warning,omitempty"`
}

type tokenRequest struct {
	Username         string `json:"username"          validate:"required"`
	ConfirmationCode string `json:"confirmation_code" validate:"required"`
}

type tokenResponse struct {
	Username string `json:"username"`
	Token    string `json:"token"`
}

// Signup registers a user and emails them a confirmation code.
//
// @Summary      Register via confirmation code
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      signupRequest  true  "Registration details"
// @Success      200   {object}  signupResponse
// @Failure      400   {object}  errorResponse
// @Router       /auth/signup [post]
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		metrics.SignupsTotal.WithLabelValues("invalid").Inc()
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.auth.SignUp(c.Request().Context(), req.Username, req.Email)
	switch {
	case errors.Is(err, domain.ErrMailDispatch):
		// The registration is committed; the response reports the delivery
		// failure without undoing it.
		metrics.SignupsTotal.WithLabelValues("mail_failed").Inc()
		metrics.MailDispatchTotal.WithLabelValues("failed").Inc()
		return c.JSON(http.StatusOK, signupResponse{
			Email:    user.Email,
			Username: user.Username,
			Warning:  domain.ErrMailDispatch.Error(),
		})
	case errors.Is(err, domain.ErrUsernameTaken), errors.Is(err, domain.ErrEmailTaken):
		metrics.SignupsTotal.WithLabelValues("conflict").Inc()
		return err
	case errors.Is(err, domain.ErrValidation):
		metrics.SignupsTotal.WithLabelValues("invalid").Inc()
		return err
	case err != nil:
		return err
	}

	metrics.SignupsTotal.WithLabelValues("ok").Inc()
	metrics.MailDispatchTotal.WithLabelValues("sent").Inc()
	return c.JSON(http.StatusOK, signupResponse{Email: user.Email, Username: user.Username})
}

// Token exchanges a confirmation code for a bearer token.
//
// @Summary      Exchange a confirmation code for an access token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      tokenRequest  true  "Exchange details"
// @Success      200   {object}  tokenResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /auth/token [post]
func (h *AuthHandler) Token(c echo.Context) error {
	var req tokenRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	token, err := h.auth.Exchange(c.Request().Context(), req.Username, req.ConfirmationCode)
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		metrics.TokenExchangesTotal.WithLabelValues("unknown_user").Inc()
		return err
	case errors.Is(err, domain.ErrInvalidCode):
		metrics.TokenExchangesTotal.WithLabelValues("invalid_code").Inc()
		return err
	case err != nil:
		return err
	}

	metrics.TokenExchangesTotal.WithLabelValues("issued").Inc()
	return c.JSON(http.StatusOK, tokenResponse{Username: req.Username, Token: token})
}
