package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"fmt"

	"karaoke/infras/otel"
	"karaoke/infras/postgres"
	bookingModel "karaoke/internal/domains/booking/model"
	"karaoke/internal/domains/report/model"
	"karaoke/shared/constant"
	"karaoke/shared/logger"
	gRepo "karaoke/shared/repository"
	"karaoke/shared/timezone"
)

const (
	revenueColumns = `COALESCE(SUM(total_amount), 0) AS total_revenue,
		COUNT(*) AS bookings_count,
		COALESCE(AVG(total_amount), 0) AS avg_revenue`

	revenueWhere = `status IN (:completed, :confirmed) AND start_time >= :from AND start_time < :to`

	// :tz is the application timezone, the same clock :from and :to are built on
	revenueByPeriod = `SELECT CAST(EXTRACT(%s FROM start_time AT TIME ZONE :tz) AS INTEGER) AS period, ` + revenueColumns + `
		FROM bookings WHERE ` + revenueWhere + ` GROUP BY 1 ORDER BY 1`

	queryTopRooms = `SELECT rooms.id, rooms.name, rooms.type,
			COUNT(bookings.id) AS booking_count,
			COALESCE(SUM(bookings.total_amount), 0) AS total_revenue
		FROM rooms
		LEFT JOIN bookings ON bookings.room_id = rooms.id
			AND bookings.status IN (:completed, :confirmed)
			AND bookings.start_time >= :from AND bookings.start_time < :to
		GROUP BY rooms.id, rooms.name, rooms.type
		ORDER BY total_revenue DESC, booking_count DESC, rooms.id ASC
		LIMIT :limit`
)

var (
	queryRevenueByMonth   = fmt.Sprintf(revenueByPeriod, "MONTH")
	queryRevenueByQuarter = fmt.Sprintf(revenueByPeriod, "QUARTER")
	queryRevenueByYear    = fmt.Sprintf(revenueByPeriod, "YEAR")
)

// Report reads revenue aggregates over bookings that earned money.
type Report interface {
	RevenueByMonth(ctx context.Context, year int) ([]model.Revenue, error)
	RevenueByQuarter(ctx context.Context, year int) ([]model.Revenue, error)
	RevenueByYear(ctx context.Context, startYear, endYear int) ([]model.Revenue, error)
	TopRooms(ctx context.Context, year, limit int) ([]model.TopRoom, error)
}

type repositoryImpl struct {
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Report {
	return &repositoryImpl{
		db:   db,
		otel: otel,
	}
}

// args bounds start_time to [startYear-01-01, endYear+1-01-01) in the
// application timezone and names that zone for period extraction.
func args(startYear, endYear int) map[string]any {
	return map[string]any{
		"completed": bookingModel.StatusCompleted,
		"confirmed": bookingModel.StatusConfirmed,
		"from":      timezone.StartOfYear(startYear),
		"to":        timezone.StartOfYear(endYear + 1),
		"tz":        timezone.GetLocation().String(),
	}
}

func (r *repositoryImpl) query(ctx context.Context, name, query string, dest any, params map[string]any) error {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".report."+name)
	defer scope.End()

	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	prepare, err := r.db.Read.PrepareNamedContext(ctx, query)
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return fmt.Errorf("failed to prepare %s (%s): %w", name, model.EntityName, gRepo.TranslateError(err, model.EntityName))
	}
	defer prepare.Close()

	if err = prepare.SelectContext(ctx, dest, params); err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return fmt.Errorf("failed to run %s (%s): %w", name, model.EntityName, gRepo.TranslateError(err, model.EntityName))
	}

	return nil
}

func (r *repositoryImpl) RevenueByMonth(ctx context.Context, year int) ([]model.Revenue, error) {
	res := []model.Revenue{}

	if err := r.query(ctx, "RevenueByMonth", queryRevenueByMonth, &res, args(year, year)); err != nil {
		return nil, err
	}

	return res, nil
}

func (r *repositoryImpl) RevenueByQuarter(ctx context.Context, year int) ([]model.Revenue, error) {
	res := []model.Revenue{}

	if err := r.query(ctx, "RevenueByQuarter", queryRevenueByQuarter, &res, args(year, year)); err != nil {
		return nil, err
	}

	return res, nil
}

func (r *repositoryImpl) RevenueByYear(ctx context.Context, startYear, endYear int) ([]model.Revenue, error) {
	res := []model.Revenue{}

	if err := r.query(ctx, "RevenueByYear", queryRevenueByYear, &res, args(startYear, endYear)); err != nil {
		return nil, err
	}

	return res, nil
}

func (r *repositoryImpl) TopRooms(ctx context.Context, year, limit int) ([]model.TopRoom, error) {
	res := []model.TopRoom{}

	params := args(year, year)
	params["limit"] = limit

	if err := r.query(ctx, "TopRooms", queryTopRooms, &res, params); err != nil {
		return nil, err
	}

	return res, nil
}
