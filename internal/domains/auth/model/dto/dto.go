package dto

import (
	"karaoke/infras/jwt"
	customerDto "karaoke/internal/domains/customer/model/dto"
)

// RegisterRequest is the public sign-up payload. Every account created here
// gets the user role.
type RegisterRequest struct {
	customerDto.CreateCustomerRequest
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

func (t *TokenResponse) FromTokenPair(tokenPair *jwt.TokenPair) {
	t.AccessToken = tokenPair.AccessToken
	t.RefreshToken = tokenPair.RefreshToken
	t.TokenType = tokenPair.TokenType
	t.ExpiresIn = tokenPair.ExpiresIn
}

type LoginResponse struct {
	TokenResponse
	Customer customerDto.CustomerResponse `json:"customer"`
}

type RegisterResponse struct {
	Customer customerDto.CustomerResponse `json:"customer"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type RefreshTokenResponse struct {
	TokenResponse
}
