package handler

import "github.com/darktech/marketplace-auth/internal/core/domain"

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	PIN      string `json:"pin"      validate:"required,min=4,max=10"`
}

type registerRequest struct {
	Username   string `json:"username"    validate:"required"`
	PIN        string `json:"pin"         validate:"required,min=4,max=10"`
	InviteCode string `json:"invite_code" validate:"required"`
}

type attemptRequest struct {
	Username string `json:"username" validate:"required"`
	Success  *bool  `json:"success"  validate:"required"`
}

type sessionResponse struct {
	Token string             `json:"token"`
	User  domain.SessionUser `json:"user"`
}

type attemptResponse struct {
	OK       bool  `json:"ok"`
	Attempts *int  `json:"attempts,omitempty"`
	Locked   *bool `json:"locked,omitempty"`
}
