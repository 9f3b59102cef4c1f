package report

import (
	"net/http"

	"karaoke/infras/otel"
	"karaoke/internal/domains/report/model/dto"
	"karaoke/internal/domains/report/service"
	"karaoke/shared"
	"karaoke/shared/constant"
	"karaoke/shared/failure"
	"karaoke/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Report
	otel    otel.Otel
}

func New(service service.Report, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/reports", func(routerGroup chi.Router) {
		routerGroup.Get("/revenue/monthly", handler.MonthlyRevenue)
		routerGroup.Get("/revenue/quarterly", handler.QuarterlyRevenue)
		routerGroup.Get("/revenue/yearly", handler.YearlyRevenue)
		routerGroup.Get("/rooms/top", handler.TopRooms)
	})
}

// queryInt reads an optional integer query parameter. Missing means zero.
func queryInt(r *http.Request, name string) (int, error) {
	value := r.URL.Query().Get(name)
	if value == "" {
		return 0, nil
	}

	n, err := shared.ConvertStringToInt(value)
	if err != nil || n < 0 {
		return 0, failure.BadRequestFromString(name + " must be a non-negative integer")
	}

	return n, nil
}

// MonthlyRevenue reports revenue per month of a year.
// @Summary Monthly revenue
// @Description Revenue of completed and confirmed bookings grouped by month of start time.
// @Tags Report
// @Produce json
// @Param year query int false "Year, defaults to the current year"
// @Success 200 {object} dto.RevenueResponse "Revenue rows in data, parameters in meta"
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/reports/revenue/monthly [get]
// @Security BearerAuth
func (handler *Handler) MonthlyRevenue(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".MonthlyRevenue")
	defer scope.End()

	year, err := queryInt(r, constant.RequestParamYear)
	if err != nil {
		scope.TraceError(err)
		response.WithError(w, err)

		return
	}

	handler.revenue(w, scope, func() (dto.RevenueResponse, error) {
		return handler.service.Monthly(ctx, year)
	})
}

// QuarterlyRevenue reports revenue per quarter of a year.
// @Summary Quarterly revenue
// @Description Revenue of completed and confirmed bookings grouped by quarter of start time.
// @Tags Report
// @Produce json
// @Param year query int false "Year, defaults to the current year"
// @Success 200 {object} dto.RevenueResponse "Revenue rows in data, parameters in meta"
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/reports/revenue/quarterly [get]
// @Security BearerAuth
func (handler *Handler) QuarterlyRevenue(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".QuarterlyRevenue")
	defer scope.End()

	year, err := queryInt(r, constant.RequestParamYear)
	if err != nil {
		scope.TraceError(err)
		response.WithError(w, err)

		return
	}

	handler.revenue(w, scope, func() (dto.RevenueResponse, error) {
		return handler.service.Quarterly(ctx, year)
	})
}

// YearlyRevenue reports revenue per year over a range.
// @Summary Yearly revenue
// @Description Revenue of completed and confirmed bookings grouped by year. Defaults to the last five years.
// @Tags Report
// @Produce json
// @Param start_year query int false "First year"
// @Param end_year query int false "Last year, defaults to the current year"
// @Success 200 {object} dto.RevenueResponse "Revenue rows in data, parameters in meta"
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/reports/revenue/yearly [get]
// @Security BearerAuth
func (handler *Handler) YearlyRevenue(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".YearlyRevenue")
	defer scope.End()

	startYear, err := queryInt(r, constant.RequestParamStartYear)
	if err != nil {
		scope.TraceError(err)
		response.WithError(w, err)

		return
	}

	endYear, err := queryInt(r, constant.RequestParamEndYear)
	if err != nil {
		scope.TraceError(err)
		response.WithError(w, err)

		return
	}

	handler.revenue(w, scope, func() (dto.RevenueResponse, error) {
		return handler.service.Yearly(ctx, startYear, endYear)
	})
}

func (handler *Handler) revenue(w http.ResponseWriter, scope otel.Scope, load func() (dto.RevenueResponse, error)) {
	res, err := load()
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to build revenue report")

		response.WithError(w, err)

		return
	}

	response.WithMeta(w, http.StatusOK, res.Revenue, res.Meta)
}

// TopRooms ranks rooms by revenue for a year.
// @Summary Top rooms
// @Description Rooms ranked by revenue, then booking count. Rooms without bookings are included.
// @Tags Report
// @Produce json
// @Param year query int false "Year, defaults to the current year"
// @Param limit query int false "Number of rooms, defaults to 5, at most 100"
// @Success 200 {object} dto.TopRoomsResponse "Rooms in data, parameters in meta"
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/reports/rooms/top [get]
// @Security BearerAuth
func (handler *Handler) TopRooms(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".TopRooms")
	defer scope.End()

	year, err := queryInt(r, constant.RequestParamYear)
	if err != nil {
		scope.TraceError(err)
		response.WithError(w, err)

		return
	}

	limit, err := queryInt(r, constant.RequestParamLimit)
	if err != nil {
		scope.TraceError(err)
		response.WithError(w, err)

		return
	}

	res, err := handler.service.TopRooms(ctx, year, limit)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to build top rooms report")

		response.WithError(w, err)

		return
	}

	response.WithMeta(w, http.StatusOK, res.Rooms, res.Meta)
}
