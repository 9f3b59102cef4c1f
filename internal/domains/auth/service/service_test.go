package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"karaoke/config"
	"karaoke/infras/jwt"
	jwtMocks "karaoke/infras/jwt/mocks"
	"karaoke/infras/otel/mocks"
	"karaoke/internal/domains/auth/model/dto"
	"karaoke/internal/domains/auth/service"
	customerMocks "karaoke/internal/domains/customer/mocks"
	customerModel "karaoke/internal/domains/customer/model"
	customerDto "karaoke/internal/domains/customer/model/dto"
	"karaoke/shared/constant"
	"karaoke/shared/failure"
	"karaoke/shared/password"
)

func TestAuthService_Register(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := customerMocks.NewMockCustomer(ctrl)
	mockJWT := jwtMocks.NewMockJWT(ctrl)

	svc := service.New(mockRepo, &config.Config{}, mocks.NewOtel(), mockJWT)

	req := dto.RegisterRequest{
		CreateCustomerRequest: customerDto.CreateCustomerRequest{
			Username: "singer",
			Password: "secret1",
			Email:    "singer@example.com",
		},
	}

	tests := []struct {
		name      string
		password  string
		setupMock func()
		wantKind  failure.Kind
		wantErr   bool
	}{
		{
			name: "successful registration",
			setupMock: func() {
				mockRepo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil).Times(2)
				mockRepo.EXPECT().
					InsertReturningID(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, m customerModel.Customer) (int64, error) {
						assert.Equal(t, constant.RoleUser, m.Role)
						assert.NotEqual(t, "secret1", m.Password)
						assert.NoError(t, password.Verify("secret1", m.Password))

						return 12, nil
					})
			},
		},
		{
			name:     "password past the bcrypt limit",
			password: strings.Repeat("é", 40),
			setupMock: func() {
				mockRepo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil).Times(2)
			},
			wantErr:  true,
			wantKind: failure.KindValidation,
		},
		{
			name: "username already exists",
			setupMock: func() {
				mockRepo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
			},
			wantErr:  true,
			wantKind: failure.KindConflict,
		},
		{
			name: "email already exists",
			setupMock: func() {
				mockRepo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
				mockRepo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
			},
			wantErr:  true,
			wantKind: failure.KindConflict,
		},
		{
			name: "unique index race",
			setupMock: func() {
				mockRepo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil).Times(2)
				mockRepo.EXPECT().
					InsertReturningID(gomock.Any(), gomock.Any()).
					Return(int64(0), failure.Conflict("customer already exists"))
			},
			wantErr:  true,
			wantKind: failure.KindConflict,
		},
		{
			name: "store unavailable",
			setupMock: func() {
				mockRepo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, failure.Persistence(errors.New("connection refused")))
			},
			wantErr:  true,
			wantKind: failure.KindPersistence,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()

			in := req
			if tt.password != "" {
				in.Password = tt.password
			}

			res, err := svc.Register(context.Background(), in)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Equal(t, tt.wantKind, failure.KindOf(err))

				return
			}

			assert.NoError(t, err)
			assert.Equal(t, int64(12), res.Customer.ID)
			assert.Equal(t, "singer", res.Customer.Username)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := customerMocks.NewMockCustomer(ctrl)
	mockJWT := jwtMocks.NewMockJWT(ctrl)

	svc := service.New(mockRepo, &config.Config{}, mocks.NewOtel(), mockJWT)

	hashed, err := password.Hash("password")
	require.NoError(t, err)

	validCustomer := customerModel.Customer{
		ID:       7,
		Username: "singer",
		Password: hashed,
		Email:    "singer@example.com",
		Role:     constant.RoleUser,
	}

	tests := []struct {
		name      string
		req       dto.LoginRequest
		setupMock func()
		wantKind  failure.Kind
		wantErr   bool
	}{
		{
			name: "successful login",
			req:  dto.LoginRequest{Username: "singer", Password: "password"},
			setupMock: func() {
				mockRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(validCustomer, nil)
				mockJWT.EXPECT().
					GenerateTokenPair(gomock.Any(), validCustomer.ID, validCustomer.Username, validCustomer.Role).
					Return(&jwt.TokenPair{AccessToken: "access-token", RefreshToken: "refresh-token", TokenType: "Bearer"}, nil)
			},
		},
		{
			name: "unknown username",
			req:  dto.LoginRequest{Username: "ghost", Password: "password"},
			setupMock: func() {
				mockRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(customerModel.Customer{}, nil)
			},
			wantErr:  true,
			wantKind: failure.KindUnauthorized,
		},
		{
			name: "wrong password",
			req:  dto.LoginRequest{Username: "singer", Password: "wrong"},
			setupMock: func() {
				mockRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(validCustomer, nil)
			},
			wantErr:  true,
			wantKind: failure.KindUnauthorized,
		},
		{
			name: "token generation error",
			req:  dto.LoginRequest{Username: "singer", Password: "password"},
			setupMock: func() {
				mockRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(validCustomer, nil)
				mockJWT.EXPECT().
					GenerateTokenPair(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil, errors.New("token generation failed"))
			},
			wantErr:  true,
			wantKind: failure.KindInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()

			result, err := svc.Login(context.Background(), tt.req)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Equal(t, tt.wantKind, failure.KindOf(err))

				return
			}

			assert.NoError(t, err)
			assert.Equal(t, "access-token", result.AccessToken)
			assert.Equal(t, "refresh-token", result.RefreshToken)
			assert.Equal(t, int64(7), result.Customer.ID)
		})
	}
}

func TestAuthService_RefreshToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := customerMocks.NewMockCustomer(ctrl)
	mockJWT := jwtMocks.NewMockJWT(ctrl)

	svc := service.New(mockRepo, &config.Config{}, mocks.NewOtel(), mockJWT)

	mockJWT.EXPECT().
		RefreshTokens(gomock.Any(), "good").
		Return(&jwt.TokenPair{AccessToken: "new-access", RefreshToken: "new-refresh"}, nil)

	res, err := svc.RefreshToken(context.Background(), dto.RefreshTokenRequest{RefreshToken: "good"})
	require.NoError(t, err)
	assert.Equal(t, "new-access", res.AccessToken)

	mockJWT.EXPECT().
		RefreshTokens(gomock.Any(), "bad").
		Return(nil, jwt.ErrInvalidToken)

	_, err = svc.RefreshToken(context.Background(), dto.RefreshTokenRequest{RefreshToken: "bad"})
	assert.True(t, failure.Is(err, failure.KindUnauthorized))
}
