package service_test

import (
	"context"
	"errors"
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
	"karaoke/internal/domains/booking/model/dto"
	"karaoke/internal/domains/booking/repository"
	"karaoke/internal/domains/booking/service"
	roomMocks "karaoke/internal/domains/room/mocks"
	roomModel "karaoke/internal/domains/room/model"
	cacheMocks "karaoke/shared/cache/mocks"
	"karaoke/shared/constant"
	gDto "karaoke/shared/dto"
	"karaoke/shared/failure"
)

type fixture struct {
	svc       service.Booking
	repo      *bookingMocks.MockBooking
	roomRepo  *roomMocks.MockRoom
	cache     *cacheMocks.MockRedisCache
	publisher *bookingMocks.MockPublisher
	otel      *mocks.Otel
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	f := fixture{
		repo:      bookingMocks.NewMockBooking(ctrl),
		roomRepo:  roomMocks.NewMockRoom(ctrl),
		cache:     cacheMocks.NewMockRedisCache(ctrl),
		publisher: bookingMocks.NewMockPublisher(ctrl),
		otel:      mocks.NewOtel(),
	}

	f.cache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.cache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.cache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	cfg := &config.Config{}
	cfg.Cache.TTL = 3600

	f.svc = service.New(f.repo, f.roomRepo, cfg, f.cache, f.otel, f.publisher)

	return f
}

func callerCtx(id int64, role string) context.Context {
	ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, id)

	return context.WithValue(ctx, constant.ContextKeyUserRole, role)
}

// systemCtx is what an API-key caller carries: a role and no user id.
func systemCtx() context.Context {
	return context.WithValue(context.Background(), constant.ContextKeyUserRole, constant.RoleSystem)
}

func at(hour, minute int) time.Time {
	return time.Date(2025, 3, 1, hour, minute, 0, 0, time.UTC)
}

func iso(t time.Time) string { return t.Format(time.RFC3339) }

func floatPtr(v float64) *float64 { return &v }

func strPtr(v string) *string { return &v }

func TestBookingService_FindAvailableRooms(t *testing.T) {
	tests := []struct {
		name      string
		req       dto.IntervalQuery
		setupMock func(f fixture)
		wantRooms int
		wantErr   bool
	}{
		{
			name: "rooms free in the interval",
			req:  dto.IntervalQuery{StartTime: iso(at(12, 0)), EndTime: iso(at(13, 0))},
			setupMock: func(f fixture) {
				f.repo.EXPECT().
					FindAvailableRooms(gomock.Any(), at(12, 0), at(13, 0)).
					Return([]roomModel.Room{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}}, nil)
			},
			wantRooms: 2,
		},
		{
			name:      "start equal to end is rejected before the store",
			req:       dto.IntervalQuery{StartTime: iso(at(12, 0)), EndTime: iso(at(12, 0))},
			setupMock: func(_ fixture) {},
			wantErr:   true,
		},
		{
			name:      "malformed time",
			req:       dto.IntervalQuery{StartTime: "tomorrow", EndTime: iso(at(12, 0))},
			setupMock: func(_ fixture) {},
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setupMock(f)

			res, err := f.svc.FindAvailableRooms(context.Background(), tt.req)

			if tt.wantErr {
				assert.True(t, failure.Is(err, failure.KindValidation))

				return
			}

			require.NoError(t, err)
			assert.Len(t, res.Rooms, tt.wantRooms)
			assert.Equal(t, tt.wantRooms, res.Meta.TotalRooms)
		})
	}
}

func TestBookingService_IsTimeSlotOverlapping(t *testing.T) {
	f := newFixture(t)

	f.roomRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(roomModel.Room{ID: 4}, nil)
	f.repo.EXPECT().IsTimeSlotOverlapping(gomock.Any(), int64(4), at(11, 0), at(13, 0), int64(0)).Return(true, nil)

	res, err := f.svc.IsTimeSlotOverlapping(context.Background(), 4,
		dto.IntervalQuery{StartTime: iso(at(11, 0)), EndTime: iso(at(13, 0))})
	require.NoError(t, err)
	assert.False(t, res.Available)
	assert.Equal(t, int64(4), res.RoomID)
}

func TestBookingService_Create(t *testing.T) {
	tests := []struct {
		name      string
		ctx       context.Context
		req       dto.CreateBookingRequest
		setupMock func(f fixture)
		wantTotal float64
		wantKind  failure.Kind
		wantErr   bool
	}{
		{
			name: "customer books for self and total is ceil(hours) times price",
			ctx:  callerCtx(9, constant.RoleUser),
			req: dto.CreateBookingRequest{
				RoomID: 1, CustomerID: 42,
				StartTime: iso(at(10, 0)), EndTime: iso(at(12, 30)),
			},
			setupMock: func(f fixture) {
				f.roomRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(roomModel.Room{ID: 1, PricePerHour: 100}, nil)
				f.repo.EXPECT().
					Insert(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, b model.Booking) (model.Booking, error) {
						assert.Equal(t, int64(9), b.CustomerID)
						assert.Equal(t, model.StatusPending, b.Status)

						b.ID = 11

						return b, nil
					})
				f.publisher.EXPECT().Publish(gomock.Any(), event.TypeCreated, gomock.Any()).Return(nil)
			},
			wantTotal: 300,
		},
		{
			name: "admin books for another customer with a given total",
			ctx:  callerCtx(1, constant.RoleAdmin),
			req: dto.CreateBookingRequest{
				RoomID: 1, CustomerID: 42, Status: model.StatusConfirmed, TotalAmount: floatPtr(50),
				StartTime: iso(at(10, 0)), EndTime: iso(at(11, 0)),
			},
			setupMock: func(f fixture) {
				f.roomRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(roomModel.Room{ID: 1, PricePerHour: 100}, nil)
				f.repo.EXPECT().
					Insert(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, b model.Booking) (model.Booking, error) {
						assert.Equal(t, int64(42), b.CustomerID)
						assert.Equal(t, model.StatusConfirmed, b.Status)

						b.ID = 12

						return b, nil
					})
				f.publisher.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("broker down"))
			},
			wantTotal: 50,
		},
		{
			name: "system caller books for the named customer",
			ctx:  systemCtx(),
			req: dto.CreateBookingRequest{
				RoomID: 1, CustomerID: 42,
				StartTime: iso(at(10, 0)), EndTime: iso(at(11, 30)),
			},
			setupMock: func(f fixture) {
				f.roomRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(roomModel.Room{ID: 1, PricePerHour: 80}, nil)
				f.repo.EXPECT().
					Insert(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, b model.Booking) (model.Booking, error) {
						assert.Equal(t, int64(42), b.CustomerID)
						assert.Equal(t, model.StatusPending, b.Status)

						b.ID = 13

						return b, nil
					})
				f.publisher.EXPECT().Publish(gomock.Any(), event.TypeCreated, gomock.Any()).Return(nil)
			},
			wantTotal: 160,
		},
		{
			name:      "system caller must name a customer",
			ctx:       systemCtx(),
			req:       dto.CreateBookingRequest{RoomID: 1, StartTime: iso(at(10, 0)), EndTime: iso(at(11, 0))},
			setupMock: func(_ fixture) {},
			wantErr:   true,
			wantKind:  failure.KindValidation,
		},
		{
			name: "customer cannot create a confirmed booking",
			ctx:  callerCtx(9, constant.RoleUser),
			req: dto.CreateBookingRequest{
				RoomID: 1, Status: model.StatusConfirmed,
				StartTime: iso(at(10, 0)), EndTime: iso(at(13, 0)),
			},
			setupMock: func(_ fixture) {},
			wantErr:   true,
			wantKind:  failure.KindForbidden,
		},
		{
			name: "customer cannot set the price",
			ctx:  callerCtx(9, constant.RoleUser),
			req: dto.CreateBookingRequest{
				RoomID: 1, TotalAmount: floatPtr(0),
				StartTime: iso(at(10, 0)), EndTime: iso(at(13, 0)),
			},
			setupMock: func(_ fixture) {},
			wantErr:   true,
			wantKind:  failure.KindForbidden,
		},
		{
			name: "customer may ask for pending explicitly",
			ctx:  callerCtx(9, constant.RoleUser),
			req: dto.CreateBookingRequest{
				RoomID: 1, Status: model.StatusPending,
				StartTime: iso(at(10, 0)), EndTime: iso(at(13, 0)),
			},
			setupMock: func(f fixture) {
				f.roomRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(roomModel.Room{ID: 1, PricePerHour: 100}, nil)
				f.repo.EXPECT().
					Insert(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, b model.Booking) (model.Booking, error) {
						assert.Equal(t, model.StatusPending, b.Status)

						b.ID = 14

						return b, nil
					})
				f.publisher.EXPECT().Publish(gomock.Any(), event.TypeCreated, gomock.Any()).Return(nil)
			},
			wantTotal: 300,
		},
		{
			name: "overlap is a conflict",
			ctx:  callerCtx(9, constant.RoleUser),
			req:  dto.CreateBookingRequest{RoomID: 1, StartTime: iso(at(11, 0)), EndTime: iso(at(13, 0))},
			setupMock: func(f fixture) {
				f.roomRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(roomModel.Room{ID: 1, PricePerHour: 100}, nil)
				f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(model.Booking{}, repository.ErrOverlap)
			},
			wantErr:  true,
			wantKind: failure.KindConflict,
		},
		{
			name: "missing room",
			ctx:  callerCtx(9, constant.RoleUser),
			req:  dto.CreateBookingRequest{RoomID: 99, StartTime: iso(at(11, 0)), EndTime: iso(at(13, 0))},
			setupMock: func(f fixture) {
				f.roomRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(roomModel.Room{}, nil)
			},
			wantErr:  true,
			wantKind: failure.KindNotFound,
		},
		{
			name:      "end before start never reaches the store",
			ctx:       callerCtx(9, constant.RoleUser),
			req:       dto.CreateBookingRequest{RoomID: 1, StartTime: iso(at(13, 0)), EndTime: iso(at(11, 0))},
			setupMock: func(_ fixture) {},
			wantErr:   true,
			wantKind:  failure.KindValidation,
		},
		{
			name:      "anonymous caller",
			ctx:       context.Background(),
			req:       dto.CreateBookingRequest{RoomID: 1, StartTime: iso(at(11, 0)), EndTime: iso(at(13, 0))},
			setupMock: func(_ fixture) {},
			wantErr:   true,
			wantKind:  failure.KindUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setupMock(f)

			res, err := f.svc.Create(tt.ctx, tt.req)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Equal(t, tt.wantKind, failure.KindOf(err))

				return
			}

			require.NoError(t, err)
			assert.NotZero(t, res.ID)
			assert.InDelta(t, tt.wantTotal, res.TotalAmount, 0.001)
		})
	}
}

func TestBookingService_Get(t *testing.T) {
	tests := []struct {
		name      string
		ctx       context.Context
		setupMock func(f fixture)
		wantKind  failure.Kind
		wantErr   bool
	}{
		{
			name: "owner",
			ctx:  callerCtx(9, constant.RoleUser),
			setupMock: func(f fixture) {
				f.cache.EXPECT().Get(gomock.Any(), "booking:get:5", gomock.Any()).Return(errors.New("cache miss"))
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Booking{ID: 5, CustomerID: 9}, nil)
			},
		},
		{
			name: "another customer",
			ctx:  callerCtx(8, constant.RoleUser),
			setupMock: func(f fixture) {
				f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss"))
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Booking{ID: 5, CustomerID: 9}, nil)
			},
			wantErr:  true,
			wantKind: failure.KindForbidden,
		},
		{
			name: "cached entry is still authorized",
			ctx:  callerCtx(8, constant.RoleUser),
			setupMock: func(f fixture) {
				f.cache.EXPECT().
					Get(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, _ string, dest any) error {
						dest.(*dto.BookingResponse).CustomerID = 9

						return nil
					})
			},
			wantErr:  true,
			wantKind: failure.KindForbidden,
		},
		{
			name: "system caller reads any booking",
			ctx:  systemCtx(),
			setupMock: func(f fixture) {
				f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss"))
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Booking{ID: 5, CustomerID: 9}, nil)
			},
		},
		{
			name: "anonymous caller",
			ctx:  context.Background(),
			setupMock: func(f fixture) {
				f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss"))
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Booking{ID: 5, CustomerID: 9}, nil)
			},
			wantErr:  true,
			wantKind: failure.KindUnauthorized,
		},
		{
			name: "admin reads a missing booking",
			ctx:  callerCtx(1, constant.RoleAdmin),
			setupMock: func(f fixture) {
				f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss"))
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Booking{}, nil)
			},
			wantErr:  true,
			wantKind: failure.KindNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setupMock(f)

			res, err := f.svc.Get(tt.ctx, 5)

			if tt.wantErr {
				assert.Equal(t, tt.wantKind, failure.KindOf(err))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, int64(5), res.ID)
		})
	}
}

func TestBookingService_GetMine_FiltersByCaller(t *testing.T) {
	f := newFixture(t)

	f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss")).Times(2)
	f.repo.EXPECT().
		Count(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, filter gDto.FilterGroup) (int, error) {
			require.Len(t, filter.Filters, 1)
			assert.Equal(t, int64(9), filter.Filters[0].(gDto.Filter).Value)

			return 1, nil
		})
	f.repo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return([]model.Booking{{ID: 1, CustomerID: 9}}, nil)

	res, err := f.svc.GetMine(callerCtx(9, constant.RoleUser), gDto.QueryParams{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, res.Bookings, 1)
}

func TestBookingService_GetAll_AdminOnly(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.GetAll(callerCtx(9, constant.RoleUser), gDto.QueryParams{}, gDto.FilterGroup{})
	assert.True(t, failure.Is(err, failure.KindForbidden))
}

func TestBookingService_Update(t *testing.T) {
	current := model.Booking{
		ID: 5, RoomID: 1, CustomerID: 9,
		StartTime: at(10, 0), EndTime: at(12, 0),
		Status: model.StatusPending, TotalAmount: 200,
	}

	tests := []struct {
		name      string
		ctx       context.Context
		req       dto.UpdateBookingRequest
		current   model.Booking
		setupMock func(f fixture)
		wantTotal float64
		wantKind  failure.Kind
		wantErr   bool
	}{
		{
			name:    "reschedule re-prices and re-checks overlap",
			ctx:     callerCtx(9, constant.RoleUser),
			req:     dto.UpdateBookingRequest{EndTime: iso(at(13, 0))},
			current: current,
			setupMock: func(f fixture) {
				f.roomRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(roomModel.Room{ID: 1, PricePerHour: 100}, nil)
				f.repo.EXPECT().
					Modify(gomock.Any(), gomock.Any(), model.StatusPending).
					DoAndReturn(func(_ context.Context, b model.Booking, _ string) error {
						assert.True(t, b.EndTime.Equal(at(13, 0)))

						return nil
					})
				f.publisher.EXPECT().Publish(gomock.Any(), event.TypeUpdated, gomock.Any()).Return(nil)
			},
			wantTotal: 300,
		},
		{
			name:    "notes only keep the total",
			ctx:     callerCtx(9, constant.RoleUser),
			req:     dto.UpdateBookingRequest{Notes: strPtr("birthday")},
			current: current,
			setupMock: func(f fixture) {
				f.repo.EXPECT().Modify(gomock.Any(), gomock.Any(), model.StatusPending).Return(nil)
				f.publisher.EXPECT().Publish(gomock.Any(), event.TypeUpdated, gomock.Any()).Return(nil)
			},
			wantTotal: 200,
		},
		{
			name:    "owner cancels through update",
			ctx:     callerCtx(9, constant.RoleUser),
			req:     dto.UpdateBookingRequest{Status: model.StatusCancelled},
			current: current,
			setupMock: func(f fixture) {
				f.repo.EXPECT().Modify(gomock.Any(), gomock.Any(), model.StatusPending).Return(nil)
				f.publisher.EXPECT().Publish(gomock.Any(), event.TypeCancelled, gomock.Any()).Return(nil)
			},
			wantTotal: 200,
		},
		{
			name:      "owner cannot confirm",
			ctx:       callerCtx(9, constant.RoleUser),
			req:       dto.UpdateBookingRequest{Status: model.StatusConfirmed},
			current:   current,
			setupMock: func(_ fixture) {},
			wantErr:   true,
			wantKind:  failure.KindForbidden,
		},
		{
			name:      "pending cannot jump to completed",
			ctx:       callerCtx(1, constant.RoleAdmin),
			req:       dto.UpdateBookingRequest{Status: model.StatusCompleted},
			current:   current,
			setupMock: func(_ fixture) {},
			wantErr:   true,
			wantKind:  failure.KindValidation,
		},
		{
			name: "terminal booking cannot move",
			ctx:  callerCtx(1, constant.RoleAdmin),
			req:  dto.UpdateBookingRequest{StartTime: iso(at(9, 0))},
			current: model.Booking{
				ID: 5, RoomID: 1, CustomerID: 9, StartTime: at(10, 0), EndTime: at(12, 0), Status: model.StatusCancelled,
			},
			setupMock: func(_ fixture) {},
			wantErr:   true,
			wantKind:  failure.KindValidation,
		},
		{
			name:      "start moved past end",
			ctx:       callerCtx(9, constant.RoleUser),
			req:       dto.UpdateBookingRequest{StartTime: iso(at(12, 0))},
			current:   current,
			setupMock: func(_ fixture) {},
			wantErr:   true,
			wantKind:  failure.KindValidation,
		},
		{
			name:      "another customer",
			ctx:       callerCtx(8, constant.RoleUser),
			req:       dto.UpdateBookingRequest{Notes: strPtr("x")},
			current:   current,
			setupMock: func(_ fixture) {},
			wantErr:   true,
			wantKind:  failure.KindForbidden,
		},
		{
			name:      "customer cannot reprice",
			ctx:       callerCtx(9, constant.RoleUser),
			req:       dto.UpdateBookingRequest{TotalAmount: floatPtr(0)},
			current:   current,
			setupMock: func(_ fixture) {},
			wantErr:   true,
			wantKind:  failure.KindForbidden,
		},
		{
			name:    "system caller reprices",
			ctx:     systemCtx(),
			req:     dto.UpdateBookingRequest{TotalAmount: floatPtr(150)},
			current: current,
			setupMock: func(f fixture) {
				f.repo.EXPECT().Modify(gomock.Any(), gomock.Any(), model.StatusPending).Return(nil)
				f.publisher.EXPECT().Publish(gomock.Any(), event.TypeUpdated, gomock.Any()).Return(nil)
			},
			wantTotal: 150,
		},
		{
			name:    "moving onto a taken slot",
			ctx:     callerCtx(9, constant.RoleUser),
			req:     dto.UpdateBookingRequest{StartTime: iso(at(11, 0)), EndTime: iso(at(13, 0))},
			current: current,
			setupMock: func(f fixture) {
				f.roomRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(roomModel.Room{ID: 1, PricePerHour: 100}, nil)
				f.repo.EXPECT().Modify(gomock.Any(), gomock.Any(), gomock.Any()).Return(repository.ErrOverlap)
			},
			wantErr:  true,
			wantKind: failure.KindConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(tt.current, nil)
			tt.setupMock(f)

			res, err := f.svc.Update(tt.ctx, tt.req, 5)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Equal(t, tt.wantKind, failure.KindOf(err))

				return
			}

			require.NoError(t, err)
			assert.InDelta(t, tt.wantTotal, res.TotalAmount, 0.001)
		})
	}
}

func TestBookingService_Update_Empty(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Update(callerCtx(9, constant.RoleUser), dto.UpdateBookingRequest{}, 5)
	assert.True(t, failure.Is(err, failure.KindValidation))
}

func TestBookingService_Transitions(t *testing.T) {
	tests := []struct {
		name      string
		ctx       context.Context
		call      func(svc service.Booking, ctx context.Context) (dto.BookingResponse, error)
		setupMock func(f fixture)
		wantKind  failure.Kind
		wantErr   bool
	}{
		{
			name: "admin confirms a pending booking",
			ctx:  callerCtx(1, constant.RoleAdmin),
			call: func(svc service.Booking, ctx context.Context) (dto.BookingResponse, error) { return svc.Confirm(ctx, 5) },
			setupMock: func(f fixture) {
				f.repo.EXPECT().UpdateStatus(gomock.Any(), int64(5), model.StatusConfirmed, model.StatusPending).Return(true, nil)
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Booking{ID: 5, Status: model.StatusConfirmed}, nil)
				f.publisher.EXPECT().Publish(gomock.Any(), event.TypeConfirmed, gomock.Any()).Return(nil)
			},
		},
		{
			name: "losing a race reports the current status",
			ctx:  callerCtx(1, constant.RoleAdmin),
			call: func(svc service.Booking, ctx context.Context) (dto.BookingResponse, error) { return svc.Confirm(ctx, 5) },
			setupMock: func(f fixture) {
				f.repo.EXPECT().UpdateStatus(gomock.Any(), int64(5), model.StatusConfirmed, model.StatusPending).Return(false, nil)
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Booking{ID: 5, Status: model.StatusCancelled}, nil)
			},
			wantErr:  true,
			wantKind: failure.KindValidation,
		},
		{
			name: "unknown booking",
			ctx:  callerCtx(1, constant.RoleAdmin),
			call: func(svc service.Booking, ctx context.Context) (dto.BookingResponse, error) { return svc.Complete(ctx, 5) },
			setupMock: func(f fixture) {
				f.repo.EXPECT().UpdateStatus(gomock.Any(), int64(5), model.StatusCompleted, model.StatusConfirmed).Return(false, nil)
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Booking{}, nil)
			},
			wantErr:  true,
			wantKind: failure.KindNotFound,
		},
		{
			name:      "customer cannot confirm",
			ctx:       callerCtx(9, constant.RoleUser),
			call:      func(svc service.Booking, ctx context.Context) (dto.BookingResponse, error) { return svc.Confirm(ctx, 5) },
			setupMock: func(_ fixture) {},
			wantErr:   true,
			wantKind:  failure.KindForbidden,
		},
		{
			name: "owner cancels",
			ctx:  callerCtx(9, constant.RoleUser),
			call: func(svc service.Booking, ctx context.Context) (dto.BookingResponse, error) { return svc.Cancel(ctx, 5) },
			setupMock: func(f fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Booking{ID: 5, CustomerID: 9, Status: model.StatusConfirmed}, nil)
				f.repo.EXPECT().
					UpdateStatus(gomock.Any(), int64(5), model.StatusCancelled, model.StatusPending, model.StatusConfirmed).
					Return(true, nil)
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Booking{ID: 5, CustomerID: 9, Status: model.StatusCancelled}, nil)
				f.publisher.EXPECT().Publish(gomock.Any(), event.TypeCancelled, gomock.Any()).Return(nil)
			},
		},
		{
			name: "system caller cancels any booking",
			ctx:  systemCtx(),
			call: func(svc service.Booking, ctx context.Context) (dto.BookingResponse, error) { return svc.Cancel(ctx, 5) },
			setupMock: func(f fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Booking{ID: 5, CustomerID: 9, Status: model.StatusPending}, nil)
				f.repo.EXPECT().
					UpdateStatus(gomock.Any(), int64(5), model.StatusCancelled, model.StatusPending, model.StatusConfirmed).
					Return(true, nil)
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Booking{ID: 5, CustomerID: 9, Status: model.StatusCancelled}, nil)
				f.publisher.EXPECT().Publish(gomock.Any(), event.TypeCancelled, gomock.Any()).Return(nil)
			},
		},
		{
			name: "stranger cannot cancel",
			ctx:  callerCtx(8, constant.RoleUser),
			call: func(svc service.Booking, ctx context.Context) (dto.BookingResponse, error) { return svc.Cancel(ctx, 5) },
			setupMock: func(f fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Booking{ID: 5, CustomerID: 9, Status: model.StatusPending}, nil)
			},
			wantErr:  true,
			wantKind: failure.KindForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setupMock(f)

			res, err := tt.call(f.svc, tt.ctx)

			if tt.wantErr {
				assert.Equal(t, tt.wantKind, failure.KindOf(err))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, int64(5), res.ID)
		})
	}
}

func TestBookingService_Transition_Traced(t *testing.T) {
	f := newFixture(t)

	f.repo.EXPECT().UpdateStatus(gomock.Any(), int64(5), model.StatusCompleted, model.StatusConfirmed).Return(false, nil)
	f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Booking{ID: 5, Status: model.StatusPending}, nil)

	_, err := f.svc.Complete(callerCtx(1, constant.RoleAdmin), 5)
	require.Error(t, err)

	scope := f.otel.Scope(constant.OtelServiceScopeName + ".booking.Transition")
	require.NotNil(t, scope)

	assert.Equal(t, model.StatusCompleted, scope.Attribute("booking.status"))
	assert.True(t, failure.Is(scope.Err(), failure.KindValidation))
	assert.True(t, scope.Ended())
}

func TestBookingService_Delete(t *testing.T) {
	f := newFixture(t)

	err := f.svc.Delete(callerCtx(9, constant.RoleUser), 5)
	assert.True(t, failure.Is(err, failure.KindForbidden))

	f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Booking{ID: 5}, nil)
	f.repo.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil)
	f.publisher.EXPECT().Publish(gomock.Any(), event.TypeDeleted, gomock.Any()).Return(nil)

	assert.NoError(t, f.svc.Delete(callerCtx(1, constant.RoleAdmin), 5))
}
