package dto_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"karaoke/infras/jwt"
	"karaoke/internal/domains/auth/model/dto"
	customerDto "karaoke/internal/domains/customer/model/dto"
	"karaoke/shared/constant"
)

func TestTokenResponse_FromTokenPair(t *testing.T) {
	tokenPair := &jwt.TokenPair{
		AccessToken:  "test-access-token",
		RefreshToken: "test-refresh-token",
		TokenType:    "Bearer",
		ExpiresIn:    900,
	}

	var response dto.LoginResponse
	response.FromTokenPair(tokenPair)

	assert.Equal(t, tokenPair.AccessToken, response.AccessToken)
	assert.Equal(t, tokenPair.RefreshToken, response.RefreshToken)
	assert.Equal(t, "Bearer", response.TokenType)
	assert.Equal(t, int64(900), response.ExpiresIn)
}

func TestRegisterRequest_ToModel(t *testing.T) {
	name := "Test User"
	req := dto.RegisterRequest{
		CreateCustomerRequest: customerDto.CreateCustomerRequest{
			Username: "tester",
			Password: "secret",
			Name:     &name,
			Email:    "tester@example.com",
		},
	}

	m := req.ToModel("hashed")

	assert.Equal(t, "tester", m.Username)
	assert.Equal(t, "hashed", m.Password)
	assert.Equal(t, constant.RoleUser, m.Role)
	assert.Equal(t, &name, m.Name)
	assert.False(t, m.CreatedAt.IsZero())
}
