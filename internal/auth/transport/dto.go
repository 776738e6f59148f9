package transport

import "leasing_portal_backend/internal/managers/repository"

// LoginRequest authenticates a manager by email and password.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=1,max=72"`
}

// LoginResponse returns the issued access token and the manager profile.
type LoginResponse struct {
	AccessToken string             `json:"accessToken"`
	TokenType   string             `json:"tokenType"`
	ExpiresIn   int64              `json:"expiresIn"`
	Manager     repository.Manager `json:"manager"`
}
