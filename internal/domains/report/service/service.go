package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=./mocks/service_mock.go -package=mocks

import (
	"context"
	"fmt"

	"karaoke/config"
	"karaoke/infras/otel"
	"karaoke/internal/domains/report/model"
	"karaoke/internal/domains/report/model/dto"
	"karaoke/internal/domains/report/repository"
	"karaoke/shared"
	"karaoke/shared/cache"
	"karaoke/shared/constant"
	"karaoke/shared/failure"
	"karaoke/shared/timezone"

	"github.com/rs/zerolog/log"
)

const (
	cacheReport = "report"

	defaultTopRoomsLimit = 5
	maxTopRoomsLimit     = 100
	defaultYearSpan      = 5
)

type Report interface {
	Monthly(ctx context.Context, year int) (dto.RevenueResponse, error)
	Quarterly(ctx context.Context, year int) (dto.RevenueResponse, error)
	Yearly(ctx context.Context, startYear, endYear int) (dto.RevenueResponse, error)
	TopRooms(ctx context.Context, year, limit int) (dto.TopRoomsResponse, error)
}

type serviceImpl struct {
	repo  repository.Report
	cfg   *config.Config
	cache cache.RedisCache
	otel  otel.Otel
}

func New(repo repository.Report, cfg *config.Config, cache cache.RedisCache, otel otel.Otel) Report {
	return &serviceImpl{
		repo:  repo,
		cfg:   cfg,
		cache: cache,
		otel:  otel,
	}
}

func currentYear() int {
	return timezone.Now().Year()
}

func (s *serviceImpl) Monthly(ctx context.Context, year int) (res dto.RevenueResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".report.Monthly")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if year == 0 {
		year = currentYear()
	}

	meta := dto.RevenueMeta{Type: model.TypeMonthly, Year: year}

	return s.revenue(ctx, meta, func() ([]model.Revenue, error) {
		return s.repo.RevenueByMonth(ctx, year)
	})
}

func (s *serviceImpl) Quarterly(ctx context.Context, year int) (res dto.RevenueResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".report.Quarterly")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if year == 0 {
		year = currentYear()
	}

	meta := dto.RevenueMeta{Type: model.TypeQuarterly, Year: year}

	return s.revenue(ctx, meta, func() ([]model.Revenue, error) {
		return s.repo.RevenueByQuarter(ctx, year)
	})
}

func (s *serviceImpl) Yearly(ctx context.Context, startYear, endYear int) (res dto.RevenueResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".report.Yearly")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if endYear == 0 {
		endYear = currentYear()
	}

	if startYear == 0 {
		startYear = endYear - defaultYearSpan
	}

	if startYear > endYear {
		return res, failure.BadRequestFromString("start_year must not be after end_year")
	}

	meta := dto.RevenueMeta{Type: model.TypeYearly, StartYear: startYear, EndYear: endYear}

	return s.revenue(ctx, meta, func() ([]model.Revenue, error) {
		return s.repo.RevenueByYear(ctx, startYear, endYear)
	})
}

func (s *serviceImpl) TopRooms(ctx context.Context, year, limit int) (res dto.TopRoomsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".report.TopRooms")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if year == 0 {
		year = currentYear()
	}

	limit = s.topRoomsLimit(limit)
	meta := dto.TopRoomsMeta{Type: model.TypeTopRooms, Year: year, Limit: limit}

	cacheKey := shared.BuildCacheKey(cacheReport, meta.Type, year, limit)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		log.Debug().Str("cacheKey", cacheKey).Msg("cache hit for top rooms")

		return res, nil
	}

	rooms, err := s.repo.TopRooms(ctx, year, limit)
	if err != nil {
		if s.cfg.Report.EmptyOnFailure {
			log.Error().Err(err).Int("year", year).Msg("top rooms report failed, answering empty")

			res.FromModels(nil, meta)

			return res, nil
		}

		return res, fmt.Errorf("failed to get top rooms: %w", err)
	}

	res.FromModels(rooms, meta)
	s.save(ctx, cacheKey, res)

	return res, nil
}

func (s *serviceImpl) topRoomsLimit(limit int) int {
	if limit <= 0 {
		limit = s.cfg.Report.TopRoomsLimit
	}

	if limit <= 0 {
		limit = defaultTopRoomsLimit
	}

	return min(limit, maxTopRoomsLimit)
}

// revenue serves a revenue report from cache or from load. When the report
// is configured to be empty on failure, a failed load is logged and answered
// with no rows.
func (s *serviceImpl) revenue(ctx context.Context, meta dto.RevenueMeta, load func() ([]model.Revenue, error)) (res dto.RevenueResponse, err error) {
	cacheKey := shared.BuildCacheKey(cacheReport, meta.Type, meta.Year, meta.StartYear, meta.EndYear)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		log.Debug().Str("cacheKey", cacheKey).Msg("cache hit for revenue report")

		return res, nil
	}

	rows, err := load()
	if err != nil {
		if s.cfg.Report.EmptyOnFailure {
			log.Error().Err(err).Str("type", meta.Type).Msg("revenue report failed, answering empty")

			res.FromModels(nil, meta)

			return res, nil
		}

		return res, fmt.Errorf("failed to get %s revenue: %w", meta.Type, err)
	}

	res.FromModels(rows, meta)
	s.save(ctx, cacheKey, res)

	return res, nil
}

func (s *serviceImpl) save(ctx context.Context, key string, value any) {
	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, key, value, s.cfg.Cache.TTL); err != nil {
			log.Warn().Err(err).Str("cacheKey", key).Msg("failed to save report to cache")
		}
	}()
}
