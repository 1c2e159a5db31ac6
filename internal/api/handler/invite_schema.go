package handler

import "github.com/darktech/marketplace-auth/internal/core/domain"

type validateInviteRequest struct {
	Code string `json:"code" validate:"required"`
}

type validateInviteResponse struct {
	Role domain.Role `json:"role"`
}

type linkInviteRequest struct {
	UserID string `json:"user_id" validate:"required"`
	Code   string `json:"code"    validate:"required"`
}

type generateInviteRequest struct {
	Role domain.Role `json:"role" validate:"required,oneof=admin vendor client driver"`
}

type generateInviteResponse struct {
	Code string      `json:"code"`
	Role domain.Role `json:"role"`
}
