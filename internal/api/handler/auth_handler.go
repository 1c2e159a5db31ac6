package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/darktech/marketplace-auth/internal/api/metrics"
	"github.com/darktech/marketplace-auth/internal/core/domain"
	"github.com/darktech/marketplace-auth/internal/core/ports"
)

// AttemptRecorder receives one record per real login attempt, fire-and-forget.
type AttemptRecorder interface {
	Record(attempt ports.LoginAttempt)
}

type AuthHandler struct {
	authService ports.AuthService
	sessions    ports.SessionStore
	recorder    AttemptRecorder
}

func NewAuthHandler(authService ports.AuthService, sessions ports.SessionStore, recorder AttemptRecorder) *AuthHandler {
	return &AuthHandler{authService: authService, sessions: sessions, recorder: recorder}
}

// Login exchanges username+PIN for a session token.
//
// @Summary      Login with username and PIN
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  sessionResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	start := time.Now()
	session, err := h.authService.Login(c.Request().Context(), req.Username, req.PIN)
	metrics.LoginDuration.Observe(time.Since(start).Seconds())

	// Lockout bookkeeping runs for every attempt that reached credential
	// verification, whatever the outcome of this exchange.
	switch {
	case err == nil:
		metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
		h.recorder.Record(ports.LoginAttempt{Username: req.Username, Success: true})
	case errors.Is(err, domain.ErrInvalidCredentials):
		metrics.LoginAttemptsTotal.WithLabelValues("invalid_credentials").Inc()
		h.recorder.Record(ports.LoginAttempt{Username: req.Username, Success: false})
	case errors.Is(err, domain.ErrAccountLocked):
		metrics.LoginAttemptsTotal.WithLabelValues("locked").Inc()
	default:
		metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
	}
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, sessionResponse{Token: session.Token, User: session.User})
}

// Register redeems an invite code and creates a new identity.
//
// @Summary      Register with an invite code
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration details"
// @Success      201   {object}  sessionResponse
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	session, err := h.authService.Register(c.Request().Context(), req.Username, req.PIN, req.InviteCode)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, sessionResponse{Token: session.Token, User: session.User})
}

// Logout revokes the server-side session record for the presented token.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]bool
// @Failure      401  {object}  map[string]string
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	sessionID, _ := c.Get("session_id").(string)
	if sessionID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing session")
	}

	if err := h.authService.Logout(c.Request().Context(), sessionID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

// Session returns the authenticated user snapshot, failing when the
// server-side record has been revoked even if the token signature is valid.
//
// @Summary      Introspect the current session
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.SessionUser
// @Failure      401  {object}  map[string]string
// @Router       /auth/session [get]
func (h *AuthHandler) Session(c echo.Context) error {
	sessionID, _ := c.Get("session_id").(string)
	if sessionID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing session")
	}

	user, err := h.sessions.Get(c.Request().Context(), sessionID)
	if err != nil {
		return err
	}
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "session revoked or expired")
	}
	return c.JSON(http.StatusOK, user)
}
