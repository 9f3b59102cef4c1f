package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"karaoke/config"
	"karaoke/infras/otel/mocks"
	reportMocks "karaoke/internal/domains/report/mocks"
	"karaoke/internal/domains/report/model"
	"karaoke/internal/domains/report/service"
	cacheMocks "karaoke/shared/cache/mocks"
	"karaoke/shared/failure"
	"karaoke/shared/timezone"
)

var errCacheMiss = errors.New("cache miss")

func newService(t *testing.T, emptyOnFailure bool) (service.Report, *reportMocks.MockReport) {
	t.Helper()

	ctrl := gomock.NewController(t)

	repo := reportMocks.NewMockReport(ctrl)
	c := cacheMocks.NewMockRedisCache(ctrl)

	c.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errCacheMiss).AnyTimes()
	c.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	cfg := &config.Config{}
	cfg.Cache.TTL = 60
	cfg.Report.EmptyOnFailure = emptyOnFailure
	cfg.Report.TopRoomsLimit = 5

	return service.New(repo, cfg, c, mocks.NewOtel()), repo
}

func TestReportService_Monthly(t *testing.T) {
	dbErr := failure.Persistence(errors.New("relation does not exist"))

	tests := []struct {
		name           string
		emptyOnFailure bool
		year           int
		setupMock      func(repo *reportMocks.MockReport)
		wantRows       int
		wantErr        bool
	}{
		{
			name: "rows for the requested year",
			year: 2025,
			setupMock: func(repo *reportMocks.MockReport) {
				repo.EXPECT().RevenueByMonth(gomock.Any(), 2025).Return([]model.Revenue{
					{Period: 1, TotalRevenue: 300, BookingsCount: 2, AvgRevenue: 150},
					{Period: 3, TotalRevenue: 100, BookingsCount: 1, AvgRevenue: 100},
				}, nil)
			},
			wantRows: 2,
		},
		{
			name: "year defaults to the current one",
			setupMock: func(repo *reportMocks.MockReport) {
				repo.EXPECT().RevenueByMonth(gomock.Any(), timezone.Now().Year()).Return([]model.Revenue{}, nil)
			},
		},
		{
			name: "failure surfaces by default",
			year: 2025,
			setupMock: func(repo *reportMocks.MockReport) {
				repo.EXPECT().RevenueByMonth(gomock.Any(), 2025).Return(nil, dbErr)
			},
			wantErr: true,
		},
		{
			name:           "failure answers empty when configured",
			emptyOnFailure: true,
			year:           2025,
			setupMock: func(repo *reportMocks.MockReport) {
				repo.EXPECT().RevenueByMonth(gomock.Any(), 2025).Return(nil, dbErr)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo := newService(t, tt.emptyOnFailure)
			tt.setupMock(repo)

			res, err := svc.Monthly(context.Background(), tt.year)

			if tt.wantErr {
				assert.True(t, failure.Is(err, failure.KindPersistence))

				return
			}

			require.NoError(t, err)
			assert.Len(t, res.Revenue, tt.wantRows)
			assert.NotNil(t, res.Revenue)
			assert.Equal(t, model.TypeMonthly, res.Meta.Type)
		})
	}
}

func TestReportService_Quarterly(t *testing.T) {
	svc, repo := newService(t, false)

	repo.EXPECT().RevenueByQuarter(gomock.Any(), 2024).Return([]model.Revenue{{Period: 2, TotalRevenue: 50, BookingsCount: 1, AvgRevenue: 50}}, nil)

	res, err := svc.Quarterly(context.Background(), 2024)
	require.NoError(t, err)
	require.Len(t, res.Revenue, 1)
	assert.Equal(t, 2, res.Revenue[0].Period)
	assert.Equal(t, 2024, res.Meta.Year)
}

func TestReportService_Yearly(t *testing.T) {
	current := timezone.Now().Year()

	tests := []struct {
		name       string
		start, end int
		setupMock  func(repo *reportMocks.MockReport)
		wantErr    bool
	}{
		{
			name: "defaults to the last five years",
			setupMock: func(repo *reportMocks.MockReport) {
				repo.EXPECT().RevenueByYear(gomock.Any(), current-5, current).Return([]model.Revenue{}, nil)
			},
		},
		{
			name:  "explicit range",
			start: 2020,
			end:   2022,
			setupMock: func(repo *reportMocks.MockReport) {
				repo.EXPECT().RevenueByYear(gomock.Any(), 2020, 2022).Return([]model.Revenue{}, nil)
			},
		},
		{
			name:      "inverted range",
			start:     2023,
			end:       2020,
			setupMock: func(_ *reportMocks.MockReport) {},
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo := newService(t, false)
			tt.setupMock(repo)

			_, err := svc.Yearly(context.Background(), tt.start, tt.end)

			if tt.wantErr {
				assert.True(t, failure.Is(err, failure.KindValidation))

				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestReportService_TopRooms_Limit(t *testing.T) {
	tests := []struct {
		name      string
		limit     int
		wantLimit int
	}{
		{"default from config", 0, 5},
		{"explicit", 3, 3},
		{"capped", 500, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo := newService(t, false)

			repo.EXPECT().TopRooms(gomock.Any(), 2025, tt.wantLimit).Return([]model.TopRoom{{ID: 1, Name: "A"}}, nil)

			res, err := svc.TopRooms(context.Background(), 2025, tt.limit)
			require.NoError(t, err)
			assert.Equal(t, tt.wantLimit, res.Meta.Limit)
			assert.Len(t, res.Rooms, 1)
		})
	}
}

func TestReportService_TopRooms_EmptyOnFailure(t *testing.T) {
	svc, repo := newService(t, true)

	repo.EXPECT().TopRooms(gomock.Any(), 2025, 5).Return(nil, failure.Persistence(errors.New("boom")))

	res, err := svc.TopRooms(context.Background(), 2025, 0)
	require.NoError(t, err)
	assert.Empty(t, res.Rooms)
}
