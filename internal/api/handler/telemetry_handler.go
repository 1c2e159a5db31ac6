package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/darktech/marketplace-auth/internal/core/ports"
)

// TelemetryHandler exposes lockout bookkeeping as its own endpoint for
// callers that run the credential exchange elsewhere.
type TelemetryHandler struct {
	lockout ports.LockoutService
}

func NewTelemetryHandler(lockout ports.LockoutService) *TelemetryHandler {
	return &TelemetryHandler{lockout: lockout}
}

// RecordAttempt updates the failed-attempt counter for one login attempt.
// Unknown usernames return a bare {ok:true} so the endpoint never reveals
// whether a handle exists.
//
// @Summary      Record a login attempt
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      attemptRequest  true  "Attempt outcome"
// @Success      200   {object}  attemptResponse
// @Failure      400   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /auth/attempts [post]
func (h *TelemetryHandler) RecordAttempt(c echo.Context) error {
	var req attemptRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	res, err := h.lockout.RecordAttempt(c.Request().Context(), ports.LoginAttempt{
		Username: req.Username,
		Success:  *req.Success,
	})
	if err != nil {
		return err
	}

	resp := attemptResponse{OK: true}
	if res.Known && !*req.Success {
		resp.Attempts = &res.Attempts
		resp.Locked = &res.Locked
	}
	return c.JSON(http.StatusOK, resp)
}
