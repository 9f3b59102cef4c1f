package sweeper_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"karaoke/config"
	"karaoke/infras/otel/mocks"
	"karaoke/internal/domains/booking/event"
	bookingMocks "karaoke/internal/domains/booking/mocks"
	"karaoke/internal/domains/booking/model"
	"karaoke/internal/worker/sweeper"
	sweeperMocks "karaoke/internal/worker/sweeper/mocks"
	cacheMocks "karaoke/shared/cache/mocks"
)

type fixture struct {
	sweeper   sweeper.Sweeper
	repo      *bookingMocks.MockBooking
	cache     *cacheMocks.MockRedisCache
	publisher *bookingMocks.MockPublisher
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	f := fixture{
		repo:      bookingMocks.NewMockBooking(ctrl),
		cache:     cacheMocks.NewMockRedisCache(ctrl),
		publisher: bookingMocks.NewMockPublisher(ctrl),
	}

	f.cache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	cfg := &config.Config{}
	cfg.Worker.Sweeper.LockTTLSeconds = 60

	f.sweeper = sweeper.New(f.repo, f.cache, f.publisher, cfg, mocks.NewOtel())

	return f
}

func TestSweeper_Sweep(t *testing.T) {
	expired := []model.Booking{
		{ID: 1, Status: model.StatusConfirmed},
		{ID: 2, Status: model.StatusConfirmed},
		{ID: 3, Status: model.StatusConfirmed},
	}

	tests := []struct {
		name      string
		setupMock func(f fixture)
		want      sweeper.Result
		wantErr   bool
	}{
		{
			name: "completes every expired booking and keeps going after a failure",
			setupMock: func(f fixture) {
				f.cache.EXPECT().Lock(gomock.Any(), gomock.Any(), 60).Return("lease-1", nil)
				f.cache.EXPECT().Unlock(gomock.Any(), gomock.Any(), "lease-1").Return(nil)
				f.repo.EXPECT().FindConfirmedPastEnd(gomock.Any(), gomock.Any()).Return(expired, nil)
				f.repo.EXPECT().MarkCompleted(gomock.Any(), int64(1)).Return(true, nil)
				f.repo.EXPECT().MarkCompleted(gomock.Any(), int64(2)).Return(false, errors.New("deadlock"))
				f.repo.EXPECT().MarkCompleted(gomock.Any(), int64(3)).Return(true, nil)
				f.publisher.EXPECT().
					Publish(gomock.Any(), event.TypeCompleted, gomock.Any()).
					DoAndReturn(func(_ context.Context, _ string, b model.Booking) error {
						assert.Equal(t, model.StatusCompleted, b.Status)

						return nil
					}).
					Times(2)
				f.repo.EXPECT().CountActiveAt(gomock.Any(), gomock.Any()).Return(4, nil)
			},
			want: sweeper.Result{Scanned: 3, Completed: 2, Failed: 1, Active: 4},
		},
		{
			name: "already completed bookings are left alone",
			setupMock: func(f fixture) {
				f.cache.EXPECT().Lock(gomock.Any(), gomock.Any(), gomock.Any()).Return("lease-1", nil)
				f.cache.EXPECT().Unlock(gomock.Any(), gomock.Any(), "lease-1").Return(nil)
				f.repo.EXPECT().FindConfirmedPastEnd(gomock.Any(), gomock.Any()).Return(expired[:1], nil)
				f.repo.EXPECT().MarkCompleted(gomock.Any(), int64(1)).Return(false, nil)
				f.repo.EXPECT().CountActiveAt(gomock.Any(), gomock.Any()).Return(0, nil)
			},
			want: sweeper.Result{Scanned: 1},
		},
		{
			name: "another replica holds the lock",
			setupMock: func(f fixture) {
				f.cache.EXPECT().Lock(gomock.Any(), gomock.Any(), gomock.Any()).Return("", nil)
			},
			want: sweeper.Result{Skipped: true},
		},
		{
			name: "redis outage falls back to the local lock",
			setupMock: func(f fixture) {
				f.cache.EXPECT().Lock(gomock.Any(), gomock.Any(), gomock.Any()).Return("", errors.New("connection refused"))
				f.repo.EXPECT().FindConfirmedPastEnd(gomock.Any(), gomock.Any()).Return(nil, nil)
				f.repo.EXPECT().CountActiveAt(gomock.Any(), gomock.Any()).Return(0, errors.New("timeout"))
			},
			want: sweeper.Result{},
		},
		{
			name: "scan failure is returned",
			setupMock: func(f fixture) {
				f.cache.EXPECT().Lock(gomock.Any(), gomock.Any(), gomock.Any()).Return("lease-1", nil)
				f.cache.EXPECT().Unlock(gomock.Any(), gomock.Any(), "lease-1").Return(nil)
				f.repo.EXPECT().FindConfirmedPastEnd(gomock.Any(), gomock.Any()).Return(nil, errors.New("db down"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setupMock(f)

			res, err := f.sweeper.Sweep(context.Background())

			if tt.wantErr {
				assert.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, res)
		})
	}
}

func TestSweeper_Sweep_NoSelfConcurrency(t *testing.T) {
	f := newFixture(t)

	entered := make(chan struct{})
	release := make(chan struct{})

	f.cache.EXPECT().Lock(gomock.Any(), gomock.Any(), gomock.Any()).Return("lease-1", nil)
	f.cache.EXPECT().Unlock(gomock.Any(), gomock.Any(), "lease-1").Return(nil)
	f.repo.EXPECT().
		FindConfirmedPastEnd(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, time.Time) ([]model.Booking, error) {
			close(entered)
			<-release

			return nil, nil
		})
	f.repo.EXPECT().CountActiveAt(gomock.Any(), gomock.Any()).Return(0, nil)

	var wg sync.WaitGroup

	wg.Add(1)

	go func() {
		defer wg.Done()

		res, err := f.sweeper.Sweep(context.Background())
		assert.NoError(t, err)
		assert.False(t, res.Skipped)
	}()

	<-entered

	res, err := f.sweeper.Sweep(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Skipped)

	close(release)
	wg.Wait()
}

func TestScheduler_InvalidSchedule(t *testing.T) {
	ctrl := gomock.NewController(t)

	cfg := &config.Config{}
	cfg.Worker.Sweeper.Enable = true
	cfg.Worker.Sweeper.Schedule = "every now and then"

	err := sweeper.NewScheduler(cfg, sweeperMocks.NewMockSweeper(ctrl)).Start()
	assert.Error(t, err)
}

func TestScheduler_DisabledStopsCleanly(t *testing.T) {
	ctrl := gomock.NewController(t)

	cfg := &config.Config{}
	cfg.Worker.Sweeper.Schedule = "@every 1s"

	scheduler := sweeper.NewScheduler(cfg, sweeperMocks.NewMockSweeper(ctrl))
	require.NoError(t, scheduler.Start())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	assert.NoError(t, scheduler.Stop(ctx))
}
