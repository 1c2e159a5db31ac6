package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/darktech/marketplace-auth/internal/api/metrics"
	"github.com/darktech/marketplace-auth/internal/core/domain"
	"github.com/darktech/marketplace-auth/internal/core/ports"
)

type InviteHandler struct {
	inviteService ports.InviteService
}

func NewInviteHandler(inviteService ports.InviteService) *InviteHandler {
	return &InviteHandler{inviteService: inviteService}
}

// Validate consumes an available invite code and returns the role it grants.
//
// @Summary      Redeem an invite code
// @Tags         invites
// @Accept       json
// @Produce      json
// @Param        body  body      validateInviteRequest  true  "Invite code"
// @Success      200   {object}  validateInviteResponse
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /invites/validate [post]
func (h *InviteHandler) Validate(c echo.Context) error {
	var req validateInviteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	role, err := h.inviteService.Redeem(c.Request().Context(), req.Code)
	switch {
	case err == nil:
		metrics.InvitesRedeemedTotal.WithLabelValues("redeemed").Inc()
	case errors.Is(err, domain.ErrInviteNotFound):
		metrics.InvitesRedeemedTotal.WithLabelValues("not_found").Inc()
	case errors.Is(err, domain.ErrInviteConsumed):
		metrics.InvitesRedeemedTotal.WithLabelValues("consumed").Inc()
	default:
		metrics.InvitesRedeemedTotal.WithLabelValues("error").Inc()
	}
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, validateInviteResponse{Role: role})
}

// Link attaches a created identity to a consumed invite code. Callers treat
// failure as non-fatal; the endpoint itself still reports honest statuses.
//
// @Summary      Link an invite code to a user
// @Tags         invites
// @Accept       json
// @Produce      json
// @Param        body  body      linkInviteRequest  true  "User and code"
// @Success      200   {object}  map[string]bool
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /invites/link [post]
func (h *InviteHandler) Link(c echo.Context) error {
	var req linkInviteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.inviteService.Link(c.Request().Context(), req.Code, req.UserID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

// Generate creates a fresh available invite code. Admin only.
//
// @Summary      Generate an invite code
// @Tags         invites
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      generateInviteRequest  true  "Role to grant"
// @Success      201   {object}  generateInviteResponse
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /invites [post]
func (h *InviteHandler) Generate(c echo.Context) error {
	var req generateInviteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	createdBy, _ := c.Get("user_id").(string)
	invite, err := h.inviteService.Generate(c.Request().Context(), req.Role, createdBy)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, generateInviteResponse{Code: invite.Code, Role: invite.Role})
}
