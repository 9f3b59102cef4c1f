package booking_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"karaoke/infras/otel/mocks"
	"karaoke/internal/domains/booking/model"
	"karaoke/internal/domains/booking/model/dto"
	serviceMocks "karaoke/internal/domains/booking/service/mocks"
	"karaoke/internal/handlers/booking"
	"karaoke/internal/worker/sweeper"
	sweeperMocks "karaoke/internal/worker/sweeper/mocks"
	"karaoke/shared/constant"
	gDto "karaoke/shared/dto"
	"karaoke/shared/failure"
)

type fixture struct {
	router  chi.Router
	service *serviceMocks.MockBooking
	sweeper *sweeperMocks.MockSweeper
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	f := fixture{
		router:  chi.NewRouter(),
		service: serviceMocks.NewMockBooking(ctrl),
		sweeper: sweeperMocks.NewMockSweeper(ctrl),
	}

	handler := booking.New(f.service, f.sweeper, mocks.NewOtel())
	handler.Router(f.router)

	return f
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Meta    json.RawMessage `json:"meta"`
	Kind    string          `json:"kind"`
}

func (f fixture) do(t *testing.T, req *http.Request) (int, envelope) {
	t.Helper()

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	var body envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	return rec.Code, body
}

func asRole(req *http.Request, role string) *http.Request {
	ctx := context.WithValue(req.Context(), constant.ContextKeyUserID, int64(1))
	ctx = context.WithValue(ctx, constant.ContextKeyUserRole, role)

	return req.WithContext(ctx)
}

func TestHandler_GetAvailableRooms(t *testing.T) {
	t.Run("missing window is rejected before the service", func(t *testing.T) {
		f := newFixture(t)

		code, body := f.do(t, httptest.NewRequest(http.MethodGet, "/bookings/available?start_time=2025-03-01T10:00:00Z", nil))

		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, string(failure.KindValidation), body.Kind)
	})

	t.Run("rooms go in data and the window in meta", func(t *testing.T) {
		f := newFixture(t)

		f.service.EXPECT().
			FindAvailableRooms(gomock.Any(), dto.IntervalQuery{StartTime: "2025-03-01T10:00:00Z", EndTime: "2025-03-01T12:00:00Z"}).
			Return(dto.AvailableRoomsResponse{
				Meta: dto.AvailableRoomsMeta{StartTime: "2025-03-01T10:00:00Z", EndTime: "2025-03-01T12:00:00Z", TotalRooms: 0},
			}, nil)

		code, body := f.do(t, httptest.NewRequest(http.MethodGet,
			"/bookings/available?start_time=2025-03-01T10:00:00Z&end_time=2025-03-01T12:00:00Z", nil))

		require.Equal(t, http.StatusOK, code)
		assert.True(t, body.Success)

		var meta dto.AvailableRoomsMeta
		require.NoError(t, json.Unmarshal(body.Meta, &meta))
		assert.Equal(t, "2025-03-01T12:00:00Z", meta.EndTime)
	})
}

func TestHandler_CreateBooking(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		setupMock func(f fixture)
		wantCode  int
		wantKind  failure.Kind
	}{
		{
			name:     "malformed body",
			body:     `{"room_id":`,
			wantCode: http.StatusBadRequest,
			wantKind: failure.KindValidation,
		},
		{
			name:     "room is required",
			body:     `{"start_time":"2025-03-01T10:00:00Z","end_time":"2025-03-01T12:00:00Z"}`,
			wantCode: http.StatusBadRequest,
			wantKind: failure.KindValidation,
		},
		{
			name: "overlap surfaces as conflict",
			body: `{"room_id":1,"start_time":"2025-03-01T10:00:00Z","end_time":"2025-03-01T12:00:00Z"}`,
			setupMock: func(f fixture) {
				f.service.EXPECT().Create(gomock.Any(), gomock.Any()).
					Return(dto.BookingResponse{}, failure.Conflict("room is already booked for the requested time"))
			},
			wantCode: http.StatusConflict,
			wantKind: failure.KindConflict,
		},
		{
			name: "created",
			body: `{"room_id":1,"start_time":"2025-03-01T10:00:00Z","end_time":"2025-03-01T12:30:00Z","notes":"birthday"}`,
			setupMock: func(f fixture) {
				f.service.EXPECT().Create(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, req dto.CreateBookingRequest) (dto.BookingResponse, error) {
						assert.Equal(t, int64(1), req.RoomID)
						assert.Equal(t, "birthday", req.Notes)

						return dto.BookingResponse{ID: 9, RoomID: 1, Status: model.StatusPending, TotalAmount: 300}, nil
					})
			},
			wantCode: http.StatusCreated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			if tt.setupMock != nil {
				tt.setupMock(f)
			}

			req := asRole(httptest.NewRequest(http.MethodPost, "/bookings/", strings.NewReader(tt.body)), constant.RoleUser)

			code, body := f.do(t, req)

			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, string(tt.wantKind), body.Kind)
		})
	}
}

func TestHandler_GetBookings_Filters(t *testing.T) {
	t.Run("unknown status", func(t *testing.T) {
		f := newFixture(t)

		code, _ := f.do(t, httptest.NewRequest(http.MethodGet, "/bookings/?status=done", nil))

		assert.Equal(t, http.StatusBadRequest, code)
	})

	t.Run("non numeric room", func(t *testing.T) {
		f := newFixture(t)

		code, body := f.do(t, httptest.NewRequest(http.MethodGet, "/bookings/?room_id=abc", nil))

		assert.Equal(t, http.StatusBadRequest, code)
		assert.Contains(t, body.Message, "room_id")
	})

	t.Run("unreadable window bound", func(t *testing.T) {
		f := newFixture(t)

		code, body := f.do(t, httptest.NewRequest(http.MethodGet, "/bookings/?from=yesterday", nil))

		assert.Equal(t, http.StatusBadRequest, code)
		assert.Contains(t, body.Message, "from")
	})

	t.Run("window bounds start_time", func(t *testing.T) {
		f := newFixture(t)

		f.service.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ gDto.QueryParams, filter gDto.FilterGroup) (dto.GetBookingsResponse, error) {
				where, args := filter.GetWhereClause()
				assert.Equal(t, "(bookings.start_time >= :from AND bookings.start_time < :to)", where)
				assert.True(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC).Equal(args["from"].(time.Time)))
				assert.True(t, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC).Equal(args["to"].(time.Time)))

				return dto.GetBookingsResponse{}, nil
			})

		code, _ := f.do(t, httptest.NewRequest(http.MethodGet,
			"/bookings/?from=2025-03-01T00:00:00Z&to=2025-04-01T00:00:00Z", nil))

		assert.Equal(t, http.StatusOK, code)
	})

	t.Run("filters reach the service", func(t *testing.T) {
		f := newFixture(t)

		f.service.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, params gDto.QueryParams, filter gDto.FilterGroup) (dto.GetBookingsResponse, error) {
				assert.Equal(t, 2, params.Page)

				where, args := filter.GetWhereClause()
				assert.Contains(t, where, "bookings.room_id = :room_id")
				assert.Contains(t, where, "bookings.status = :status")
				assert.Equal(t, int64(3), args["room_id"])
				assert.Equal(t, model.StatusConfirmed, args["status"])

				return dto.GetBookingsResponse{}, nil
			})

		code, _ := f.do(t, httptest.NewRequest(http.MethodGet, "/bookings/?page=2&room_id=3&status=confirmed", nil))

		assert.Equal(t, http.StatusOK, code)
	})
}

func TestHandler_GetBookingByID_InvalidID(t *testing.T) {
	f := newFixture(t)

	code, body := f.do(t, httptest.NewRequest(http.MethodGet, "/bookings/zero", nil))

	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, string(failure.KindValidation), body.Kind)
}

func TestHandler_Transitions(t *testing.T) {
	tests := []struct {
		name      string
		path      string
		setupMock func(f fixture)
		wantCode  int
	}{
		{
			name: "confirm",
			path: "/bookings/5/confirm",
			setupMock: func(f fixture) {
				f.service.EXPECT().Confirm(gomock.Any(), int64(5)).
					Return(dto.BookingResponse{ID: 5, Status: model.StatusConfirmed}, nil)
			},
			wantCode: http.StatusOK,
		},
		{
			name: "cancel of a finished booking",
			path: "/bookings/5/cancel",
			setupMock: func(f fixture) {
				f.service.EXPECT().Cancel(gomock.Any(), int64(5)).
					Return(dto.BookingResponse{}, failure.BadRequestFromString("cannot change status from completed to cancelled"))
			},
			wantCode: http.StatusBadRequest,
		},
		{
			name: "complete of a missing booking",
			path: "/bookings/5/complete",
			setupMock: func(f fixture) {
				f.service.EXPECT().Complete(gomock.Any(), int64(5)).
					Return(dto.BookingResponse{}, failure.NotFound("booking not found"))
			},
			wantCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setupMock(f)

			code, _ := f.do(t, asRole(httptest.NewRequest(http.MethodPatch, tt.path, nil), constant.RoleAdmin))

			assert.Equal(t, tt.wantCode, code)
		})
	}
}

func TestHandler_Sweep(t *testing.T) {
	t.Run("customers cannot trigger a sweep", func(t *testing.T) {
		f := newFixture(t)

		code, body := f.do(t, asRole(httptest.NewRequest(http.MethodPost, "/bookings/sweep", nil), constant.RoleUser))

		assert.Equal(t, http.StatusForbidden, code)
		assert.Equal(t, string(failure.KindForbidden), body.Kind)
	})

	t.Run("staff get the result", func(t *testing.T) {
		f := newFixture(t)

		f.sweeper.EXPECT().Sweep(gomock.Any()).Return(sweeper.Result{Scanned: 2, Completed: 2}, nil)

		code, body := f.do(t, asRole(httptest.NewRequest(http.MethodPost, "/bookings/sweep", nil), constant.RoleAdmin))

		require.Equal(t, http.StatusOK, code)

		var res sweeper.Result
		require.NoError(t, json.Unmarshal(body.Data, &res))
		assert.Equal(t, 2, res.Completed)
	})

	t.Run("scan failures are hidden from the client", func(t *testing.T) {
		f := newFixture(t)

		f.sweeper.EXPECT().Sweep(gomock.Any()).Return(sweeper.Result{}, errors.New("pq: connection refused"))

		code, body := f.do(t, asRole(httptest.NewRequest(http.MethodPost, "/bookings/sweep", nil), constant.RoleSystem))

		assert.Equal(t, http.StatusInternalServerError, code)
		assert.Equal(t, constant.ResponseErrorInternal, body.Message)
	})
}
