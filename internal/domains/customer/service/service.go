package service

import (
	"context"
	"errors"
	"fmt"
	"karaoke/config"
	"karaoke/infras/otel"
	"karaoke/internal/domains/customer/model"
	"karaoke/internal/domains/customer/model/dto"
	"karaoke/internal/domains/customer/repository"
	"karaoke/shared"
	"karaoke/shared/cache"
	"karaoke/shared/constant"
	gDto "karaoke/shared/dto"
	"karaoke/shared/failure"
	"karaoke/shared/password"

	"github.com/rs/zerolog/log"
)

const (
	cacheGetCustomer    = "customer:get"
	cacheGetAllCustomer = "customer:gets"
)

var sortableColumns = []string{
	model.FieldID, model.FieldUsername, model.FieldName, model.FieldEmail, constant.FieldCreatedAt,
}

type Customer interface {
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) (dto.GetCustomersResponse, error)
	Get(ctx context.Context, id int64) (dto.CustomerResponse, error)
	Me(ctx context.Context) (dto.CustomerResponse, error)
	Update(ctx context.Context, req dto.UpdateCustomerRequest, id int64) (dto.CustomerResponse, error)
	ChangePassword(ctx context.Context, req dto.ChangePasswordRequest, id int64) error
	ChangeRole(ctx context.Context, req dto.ChangeRoleRequest, id int64) error
	Delete(ctx context.Context, id int64) error
}

type serviceImpl struct {
	repo  repository.Customer
	cfg   *config.Config
	cache cache.RedisCache
	otel  otel.Otel
}

func New(repo repository.Customer, cfg *config.Config, cache cache.RedisCache, otel otel.Otel) Customer {
	return &serviceImpl{
		repo:  repo,
		cfg:   cfg,
		cache: cache,
		otel:  otel,
	}
}

// authorize allows admins everywhere and other callers only on their own record.
func authorize(ctx context.Context, id int64) error {
	callerID, role, ok := shared.UserFromContext(ctx)
	if !ok {
		return failure.Unauthorized("authentication required")
	}

	if role != constant.RoleAdmin && callerID != id {
		return failure.ResourceRestrictedError
	}

	return nil
}

func (s *serviceImpl) GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetCustomersResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".customer.GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	params.RestrictSort(sortableColumns...)

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllCustomer, params, filter)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		log.Debug().Str("cacheKey", cacheKey).Msg("cache hit for customers")

		return res, nil
	}

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count customers")

		return res, fmt.Errorf("failed to count customers: %w", err)
	}

	models, err := s.repo.GetAll(ctx, params, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get customers")

		return res, fmt.Errorf("failed to get customers: %w", err)
	}

	res.FromModels(models, total, params.Page, params.Limit)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Warn().Err(err).Msg("failed to save customers to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) get(ctx context.Context, id int64) (res dto.CustomerResponse, err error) {
	cacheKey := shared.BuildCacheKey(cacheGetCustomer, id)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		log.Debug().Str("cacheKey", cacheKey).Msg("cache hit for customer")

		return res, nil
	}

	customer, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Int64("id", id).Msg("failed to get customer")

		return res, fmt.Errorf("failed to get customer: %w", err)
	}

	if customer.ID == 0 {
		return res, failure.NotFound("customer not found") // nolint:wrapcheck
	}

	res.FromModel(customer)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Warn().Err(err).Msg("failed to save customer to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id int64) (res dto.CustomerResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".customer.Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if err = authorize(ctx, id); err != nil {
		return res, err
	}

	return s.get(ctx, id)
}

func (s *serviceImpl) Me(ctx context.Context) (res dto.CustomerResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".customer.Me")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	callerID, _, ok := shared.UserFromContext(ctx)
	if !ok {
		return res, failure.Unauthorized("authentication required")
	}

	return s.get(ctx, callerID)
}

// ensureUnique reports a Conflict when another customer already holds value in field.
func (s *serviceImpl) ensureUnique(ctx context.Context, field, value string, id int64) error {
	filter := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: field, Operator: gDto.FilterOperatorEq, Value: value, Table: model.TableName},
			gDto.Filter{ArgName: "exclude_id", Field: model.FieldID, Operator: gDto.FilterOperatorNotEq, Value: id, Table: model.TableName},
		},
	}

	exist, err := s.repo.Exist(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to check %s uniqueness: %w", field, err)
	}

	if exist {
		return failure.Conflict(field + " already exists")
	}

	return nil
}

func (s *serviceImpl) Update(ctx context.Context, req dto.UpdateCustomerRequest, id int64) (res dto.CustomerResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".customer.Update")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if err = authorize(ctx, id); err != nil {
		return res, err
	}

	if req == (dto.UpdateCustomerRequest{}) {
		return res, failure.BadRequestFromString("update request cannot be empty")
	}

	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	exist, err := s.repo.Exist(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to check if customer exists")

		return res, fmt.Errorf("failed to check if customer exists: %w", err)
	}

	if !exist {
		return res, failure.NotFound("customer not found") // nolint:wrapcheck
	}

	if req.Username != "" {
		if err = s.ensureUnique(ctx, model.FieldUsername, req.Username, id); err != nil {
			return res, err
		}
	}

	if req.Email != "" {
		if err = s.ensureUnique(ctx, model.FieldEmail, req.Email, id); err != nil {
			return res, err
		}
	}

	if err = s.repo.Update(ctx, shared.TransformFields(req), filter); err != nil {
		log.Error().Err(err).Int64("id", id).Msg("failed to update customer")

		return res, fmt.Errorf("failed to update customer: %w", err)
	}

	s.invalidate(ctx, id)

	customer, err := s.repo.Get(ctx, filter)
	if err != nil {
		return res, fmt.Errorf("failed to reload customer: %w", err)
	}

	res.FromModel(customer)

	return res, nil
}

func (s *serviceImpl) ChangePassword(ctx context.Context, req dto.ChangePasswordRequest, id int64) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".customer.ChangePassword")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	callerID, _, ok := shared.UserFromContext(ctx)
	if !ok {
		return failure.Unauthorized("authentication required")
	}

	if callerID != id {
		return failure.ResourceRestrictedError
	}

	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	customer, err := s.repo.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get customer")

		return fmt.Errorf("failed to get customer: %w", err)
	}

	if customer.ID == 0 {
		return failure.NotFound("customer not found") // nolint:wrapcheck
	}

	if err = password.Verify(req.CurrentPassword, customer.Password); err != nil {
		return failure.BadRequestFromString("current password is incorrect")
	}

	hashed, err := password.Hash(req.NewPassword)
	if errors.Is(err, password.ErrTooLong) {
		return failure.BadRequest(err)
	}

	if err != nil {
		log.Error().Err(err).Msg("failed to hash new password")

		return failure.InternalError(fmt.Errorf("failed to hash new password: %w", err))
	}

	if err = s.repo.Update(ctx, shared.TransformFields(dto.UpdatePassword{Password: hashed}), filter); err != nil {
		log.Error().Err(err).Msg("failed to update password")

		return fmt.Errorf("failed to update password: %w", err)
	}

	return nil
}

func (s *serviceImpl) ChangeRole(ctx context.Context, req dto.ChangeRoleRequest, id int64) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".customer.ChangeRole")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if !shared.IsAdmin(ctx) {
		return failure.ForbiddenError
	}

	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	exist, err := s.repo.Exist(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to check if customer exists: %w", err)
	}

	if !exist {
		return failure.NotFound("customer not found") // nolint:wrapcheck
	}

	if err = s.repo.Update(ctx, shared.TransformFields(req), filter); err != nil {
		log.Error().Err(err).Int64("id", id).Msg("failed to change customer role")

		return fmt.Errorf("failed to change customer role: %w", err)
	}

	s.invalidate(ctx, id)

	return nil
}

func (s *serviceImpl) Delete(ctx context.Context, id int64) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".customer.Delete")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	exist, err := s.repo.Exist(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to check if customer exists")

		return fmt.Errorf("failed to check if customer exists: %w", err)
	}

	if !exist {
		return failure.NotFound("customer not found") // nolint:wrapcheck
	}

	if err = s.repo.Delete(ctx, filter); err != nil {
		log.Error().Err(err).Int64("id", id).Msg("failed to delete customer")

		return fmt.Errorf("failed to delete customer: %w", err)
	}

	s.invalidate(ctx, id)

	return nil
}

func (s *serviceImpl) invalidate(ctx context.Context, id int64) {
	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Delete(c, shared.BuildCacheKey(cacheGetCustomer, id)); err != nil {
			log.Warn().Err(err).Msg("failed to delete customer from cache")
		}

		shared.InvalidateCaches(c, s.cache, cacheGetAllCustomer)
	}()
}
