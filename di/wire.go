//go:build wireinject
// +build wireinject

package di

import (
	"karaoke/config"
	"karaoke/infras/jwt"
	"karaoke/infras/kafka"
	"karaoke/infras/otel"
	"karaoke/infras/postgres"
	"karaoke/infras/redis"
	"karaoke/infras/s3"
	"karaoke/permissions"
	"karaoke/shared/cache"
	"karaoke/transport/http"
	"karaoke/transport/http/middleware"
	"karaoke/transport/http/router"

	"github.com/google/wire"

	authService "karaoke/internal/domains/auth/service"
	bookingEvent "karaoke/internal/domains/booking/event"
	bookingRepository "karaoke/internal/domains/booking/repository"
	bookingService "karaoke/internal/domains/booking/service"
	customerRepository "karaoke/internal/domains/customer/repository"
	customerService "karaoke/internal/domains/customer/service"
	reportRepository "karaoke/internal/domains/report/repository"
	reportService "karaoke/internal/domains/report/service"
	roomRepository "karaoke/internal/domains/room/repository"
	roomService "karaoke/internal/domains/room/service"
	authHandler "karaoke/internal/handlers/auth"
	bookingHandler "karaoke/internal/handlers/booking"
	customerHandler "karaoke/internal/handlers/customer"
	reportHandler "karaoke/internal/handlers/report"
	roomHandler "karaoke/internal/handlers/room"
	"karaoke/internal/worker/sweeper"
)

var configurations = wire.NewSet(
	config.Get,
	permissions.Get,
)

var infrastructures = wire.NewSet(
	postgres.New,
	otel.New,
	redis.New,
	jwt.New,
	kafka.New,
	s3.New,
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
	middleware.NewAuthRoleMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
)

var customerDomain = wire.NewSet(
	customerRepository.New,
	customerService.New,
)

var authDomain = wire.NewSet(
	authService.New,
)

var roomDomain = wire.NewSet(
	roomRepository.New,
	roomService.New,
)

var bookingDomain = wire.NewSet(
	bookingRepository.New,
	bookingEvent.New,
	bookingService.New,
)

var reportDomain = wire.NewSet(
	reportRepository.New,
	reportService.New,
)

var domains = wire.NewSet(
	customerDomain,
	authDomain,
	roomDomain,
	bookingDomain,
	reportDomain,
)

var workers = wire.NewSet(
	sweeper.New,
	sweeper.NewScheduler,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	authHandler.New,
	customerHandler.New,
	roomHandler.New,
	bookingHandler.New,
	reportHandler.New,
	router.New,
)

func InitializeService() *http.HTTP {
	wire.Build(
		configurations,
		infrastructures,
		middlewares,
		sharedHelpers,
		domains,
		workers,
		routing,
		http.New,
	)

	return &http.HTTP{}
}
