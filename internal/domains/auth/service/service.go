package service

import (
	"context"
	"errors"
	"fmt"
	"karaoke/config"
	"karaoke/infras/jwt"
	"karaoke/infras/otel"
	"karaoke/internal/domains/auth/model/dto"
	customerModel "karaoke/internal/domains/customer/model"
	customerRepo "karaoke/internal/domains/customer/repository"
	"karaoke/shared/constant"
	gDto "karaoke/shared/dto"
	"karaoke/shared/failure"
	"karaoke/shared/password"

	"github.com/rs/zerolog/log"
)

const errInvalidCredentials = "invalid username or password"

type Auth interface {
	Register(ctx context.Context, req dto.RegisterRequest) (dto.RegisterResponse, error)
	Login(ctx context.Context, req dto.LoginRequest) (dto.LoginResponse, error)
	RefreshToken(ctx context.Context, req dto.RefreshTokenRequest) (dto.RefreshTokenResponse, error)
}

type serviceImpl struct {
	customerRepo customerRepo.Customer
	cfg          *config.Config
	otel         otel.Otel
	jwtService   jwt.JWT
}

func New(customerRepo customerRepo.Customer, cfg *config.Config, otel otel.Otel, jwt jwt.JWT) Auth {
	return &serviceImpl{
		customerRepo: customerRepo,
		cfg:          cfg,
		otel:         otel,
		jwtService:   jwt,
	}
}

func fieldFilter(field, value string) gDto.FilterGroup {
	return gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{
				Field:    field,
				Operator: gDto.FilterOperatorEq,
				Value:    value,
				Table:    customerModel.TableName,
			},
		},
	}
}

func (s *serviceImpl) Register(ctx context.Context, req dto.RegisterRequest) (res dto.RegisterResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".auth.Register")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	exists, err := s.customerRepo.Exist(ctx, fieldFilter(customerModel.FieldUsername, req.Username))
	if err != nil {
		log.Error().Err(err).Msg("failed to check if username exists")

		return res, fmt.Errorf("failed to check if username exists: %w", err)
	}

	if exists {
		return res, failure.Conflict("username already exists")
	}

	exists, err = s.customerRepo.Exist(ctx, fieldFilter(customerModel.FieldEmail, req.Email))
	if err != nil {
		log.Error().Err(err).Msg("failed to check if email exists")

		return res, fmt.Errorf("failed to check if email exists: %w", err)
	}

	if exists {
		return res, failure.Conflict("email already exists")
	}

	hashedPassword, err := password.Hash(req.Password)
	if errors.Is(err, password.ErrTooLong) {
		return res, failure.BadRequest(err)
	}

	if err != nil {
		log.Error().Err(err).Msg("failed to hash password")

		return res, failure.InternalError(fmt.Errorf("failed to hash password: %w", err))
	}

	customer := req.ToModel(hashedPassword)

	// a concurrent registration that slips past the checks is caught by the unique index
	customer.ID, err = s.customerRepo.InsertReturningID(ctx, customer)
	if err != nil {
		log.Error().Err(err).Str("username", req.Username).Msg("failed to create customer")

		return res, fmt.Errorf("failed to create customer: %w", err)
	}

	res.Customer.FromModel(customer)

	return res, nil
}

func (s *serviceImpl) Login(ctx context.Context, req dto.LoginRequest) (res dto.LoginResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".auth.Login")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	customer, err := s.customerRepo.Get(ctx, fieldFilter(customerModel.FieldUsername, req.Username))
	if err != nil {
		log.Error().Err(err).Msg("failed to get customer")

		return res, fmt.Errorf("failed to get customer: %w", err)
	}

	if customer.ID == 0 {
		log.Warn().Str("username", req.Username).Msg("login attempt with unknown username")

		return res, failure.Unauthorized(errInvalidCredentials)
	}

	if err = password.Verify(req.Password, customer.Password); err != nil {
		log.Warn().Str("username", req.Username).Msg("login attempt with wrong password")

		return res, failure.Unauthorized(errInvalidCredentials)
	}

	tokenPair, err := s.jwtService.GenerateTokenPair(ctx, customer.ID, customer.Username, customer.Role)
	if err != nil {
		log.Error().Err(err).Msg("failed to generate tokens")

		return res, failure.InternalError(fmt.Errorf("failed to generate tokens: %w", err))
	}

	res.FromTokenPair(tokenPair)
	res.Customer.FromModel(customer)

	return res, nil
}

func (s *serviceImpl) RefreshToken(ctx context.Context, req dto.RefreshTokenRequest) (res dto.RefreshTokenResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".auth.RefreshToken")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	tokenPair, err := s.jwtService.RefreshTokens(ctx, req.RefreshToken)
	if err != nil {
		log.Warn().Err(err).Msg("failed to refresh tokens")

		return res, failure.Unauthorized("invalid refresh token")
	}

	res.FromTokenPair(tokenPair)

	return res, nil
}
