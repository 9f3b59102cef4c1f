package sweeper

//go:generate go run go.uber.org/mock/mockgen -source=./sweeper.go -destination=./mocks/sweeper_mock.go -package=mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"karaoke/config"
	"karaoke/infras/otel"
	"karaoke/internal/domains/booking/event"
	bookingModel "karaoke/internal/domains/booking/model"
	bookingRepo "karaoke/internal/domains/booking/repository"
	reportModel "karaoke/internal/domains/report/model"
	"karaoke/shared"
	"karaoke/shared/cache"
	"karaoke/shared/constant"
	"karaoke/shared/timezone"

	"github.com/rs/zerolog/log"
)

const lockKey = "lock:worker:sweeper"

type Result struct {
	Scanned   int  `json:"scanned"`
	Completed int  `json:"completed"`
	Failed    int  `json:"failed"`
	Active    int  `json:"active"`
	Skipped   bool `json:"skipped"`
}

// Sweeper completes confirmed bookings whose end time has passed.
type Sweeper interface {
	Sweep(ctx context.Context) (Result, error)
}

type sweeperImpl struct {
	repo      bookingRepo.Booking
	cache     cache.RedisCache
	publisher event.Publisher
	cfg       *config.Config
	otel      otel.Otel
	now       func() time.Time

	mu sync.Mutex
}

func New(repo bookingRepo.Booking, cache cache.RedisCache, publisher event.Publisher, cfg *config.Config, otel otel.Otel) Sweeper {
	return &sweeperImpl{
		repo:      repo,
		cache:     cache,
		publisher: publisher,
		cfg:       cfg,
		otel:      otel,
		now:       timezone.Now,
	}
}

func (s *sweeperImpl) Sweep(ctx context.Context) (res Result, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelWorkerScopeName, constant.OtelWorkerScopeName+".sweeper.Sweep")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if !s.mu.TryLock() {
		log.Info().Msg("sweep already running in this process, skipping")

		res.Skipped = true

		return res, nil
	}
	defer s.mu.Unlock()

	token, err := s.cache.Lock(ctx, lockKey, s.cfg.Worker.Sweeper.LockTTLSeconds)

	switch {
	case err != nil:
		// completion is conditional, so a second replica can only repeat no-ops
		log.Warn().Err(err).Msg("sweeper lock unavailable, continuing with the local lock")
	case token == "":
		log.Info().Msg("sweep running on another replica, skipping")

		res.Skipped = true

		return res, nil
	default:
		defer func() {
			if err := s.cache.Unlock(context.WithoutCancel(ctx), lockKey, token); err != nil {
				log.Warn().Err(err).Msg("failed to release sweeper lock")
			}
		}()
	}

	now := s.now()

	due, err := s.repo.FindConfirmedPastEnd(ctx, now)
	if err != nil {
		log.Error().Err(err).Msg("failed to find expired bookings")

		return res, fmt.Errorf("failed to find expired bookings: %w", err)
	}

	res.Scanned = len(due)

	for _, booking := range due {
		completed, err := s.repo.MarkCompleted(ctx, booking.ID)
		if err != nil {
			log.Error().Err(err).Int64("booking_id", booking.ID).Msg("failed to complete booking")

			res.Failed++

			continue
		}

		if !completed {
			continue
		}

		res.Completed++

		booking.Status = bookingModel.StatusCompleted

		if err := s.publisher.Publish(ctx, event.TypeCompleted, booking); err != nil {
			log.Warn().Err(err).Int64("booking_id", booking.ID).Msg("booking event dropped")
		}
	}

	active, err := s.repo.CountActiveAt(ctx, now)
	if err != nil {
		log.Warn().Err(err).Msg("failed to count active bookings")
	} else {
		res.Active = active
	}

	if res.Completed > 0 {
		shared.InvalidateCaches(context.WithoutCancel(ctx), s.cache, bookingModel.EntityName, reportModel.EntityName)
	}

	log.Info().
		Int("scanned", res.Scanned).
		Int("completed", res.Completed).
		Int("failed", res.Failed).
		Int("active", res.Active).
		Msg("booking sweep finished")

	return res, nil
}
