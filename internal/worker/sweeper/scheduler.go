package sweeper

import (
	"context"
	"fmt"

	"karaoke/config"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Scheduler runs the sweeper on the configured cron spec. A run that is
// still going when the next tick fires makes that tick a no-op.
type Scheduler struct {
	cfg     *config.Config
	sweeper Sweeper
	cron    *cron.Cron
}

func NewScheduler(cfg *config.Config, sweeper Sweeper) *Scheduler {
	logger := cronLogger{}

	return &Scheduler{
		cfg:     cfg,
		sweeper: sweeper,
		cron: cron.New(
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
	}
}

func (s *Scheduler) Start() error {
	if !s.cfg.Worker.Sweeper.Enable {
		log.Info().Msg("booking sweeper disabled")

		return nil
	}

	_, err := s.cron.AddFunc(s.cfg.Worker.Sweeper.Schedule, func() {
		if _, err := s.sweeper.Sweep(context.Background()); err != nil {
			log.Error().Err(err).Msg("scheduled booking sweep failed")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid sweeper schedule %q: %w", s.cfg.Worker.Sweeper.Schedule, err)
	}

	s.cron.Start()

	log.Info().Str("schedule", s.cfg.Worker.Sweeper.Schedule).Msg("booking sweeper started")

	return nil
}

// Stop prevents new runs and waits for a running sweep until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()

	select {
	case <-done.Done():
		log.Info().Msg("booking sweeper stopped")

		return nil
	case <-ctx.Done():
		return fmt.Errorf("sweeper did not stop in time: %w", ctx.Err())
	}
}

type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	log.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	log.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
