package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=./mocks/service_mock.go -package=mocks

import (
	"context"
	"fmt"

	"karaoke/config"
	"karaoke/infras/otel"
	"karaoke/internal/domains/booking/event"
	"karaoke/internal/domains/booking/model"
	"karaoke/internal/domains/booking/model/dto"
	"karaoke/internal/domains/booking/repository"
	roomModel "karaoke/internal/domains/room/model"
	roomDto "karaoke/internal/domains/room/model/dto"
	roomRepo "karaoke/internal/domains/room/repository"
	"karaoke/shared"
	"karaoke/shared/cache"
	"karaoke/shared/constant"
	gDto "karaoke/shared/dto"
	"karaoke/shared/failure"
	"karaoke/shared/timezone"

	"github.com/rs/zerolog/log"
)

const (
	cacheGetBooking    = "booking:get"
	cacheGetAllBooking = "booking:gets"
	cacheCountBooking  = "booking:count"

	// CacheReport is the prefix of every revenue report entry.
	CacheReport = "report"
)

var sortableColumns = []string{
	model.FieldID, model.FieldRoomID, model.FieldCustomerID, model.FieldStartTime,
	model.FieldEndTime, model.FieldStatus, model.FieldTotalAmount, constant.FieldCreatedAt,
}

type Booking interface {
	FindAvailableRooms(ctx context.Context, req dto.IntervalQuery) (dto.AvailableRoomsResponse, error)
	IsTimeSlotOverlapping(ctx context.Context, roomID int64, req dto.IntervalQuery) (dto.SlotAvailabilityResponse, error)

	Create(ctx context.Context, req dto.CreateBookingRequest) (dto.BookingResponse, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetBookingsResponse, error)
	GetMine(ctx context.Context, req gDto.QueryParams) (dto.GetBookingsResponse, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Get(ctx context.Context, id int64) (dto.BookingResponse, error)
	Update(ctx context.Context, req dto.UpdateBookingRequest, id int64) (dto.BookingResponse, error)
	Delete(ctx context.Context, id int64) error

	Confirm(ctx context.Context, id int64) (dto.BookingResponse, error)
	Cancel(ctx context.Context, id int64) (dto.BookingResponse, error)
	Complete(ctx context.Context, id int64) (dto.BookingResponse, error)
}

type serviceImpl struct {
	repo      repository.Booking
	roomRepo  roomRepo.Room
	cfg       *config.Config
	cache     cache.RedisCache
	otel      otel.Otel
	publisher event.Publisher
}

func New(
	repo repository.Booking,
	roomRepo roomRepo.Room,
	cfg *config.Config,
	cache cache.RedisCache,
	otel otel.Otel,
	publisher event.Publisher,
) Booking {
	return &serviceImpl{
		repo:      repo,
		roomRepo:  roomRepo,
		cfg:       cfg,
		cache:     cache,
		otel:      otel,
		publisher: publisher,
	}
}

func (s *serviceImpl) FindAvailableRooms(ctx context.Context, req dto.IntervalQuery) (res dto.AvailableRoomsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.FindAvailableRooms")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	start, end, err := dto.ParseInterval(req.StartTime, req.EndTime)
	if err != nil {
		return res, err
	}

	rooms, err := s.repo.FindAvailableRooms(ctx, start, end)
	if err != nil {
		log.Error().Err(err).Time("start", start).Time("end", end).Msg("failed to find available rooms")

		return res, fmt.Errorf("failed to find available rooms: %w", err)
	}

	res.Rooms = make([]roomDto.RoomResponse, len(rooms))
	for i, room := range rooms {
		res.Rooms[i].FromModel(room)
	}

	res.Meta = dto.AvailableRoomsMeta{
		StartTime:  timezone.Format(start, constant.DateFormat),
		EndTime:    timezone.Format(end, constant.DateFormat),
		TotalRooms: len(rooms),
	}

	return res, nil
}

func (s *serviceImpl) IsTimeSlotOverlapping(ctx context.Context, roomID int64, req dto.IntervalQuery) (res dto.SlotAvailabilityResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.IsTimeSlotOverlapping")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	start, end, err := dto.ParseInterval(req.StartTime, req.EndTime)
	if err != nil {
		return res, err
	}

	if _, err = s.findRoom(ctx, roomID); err != nil {
		return res, err
	}

	overlap, err := s.repo.IsTimeSlotOverlapping(ctx, roomID, start, end, 0)
	if err != nil {
		log.Error().Err(err).Int64("room_id", roomID).Msg("failed to check time slot")

		return res, fmt.Errorf("failed to check time slot: %w", err)
	}

	return dto.SlotAvailabilityResponse{
		RoomID:    roomID,
		StartTime: timezone.Format(start, constant.DateFormat),
		EndTime:   timezone.Format(end, constant.DateFormat),
		Available: !overlap,
	}, nil
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateBookingRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.Create")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	callerID, _, ok := shared.UserFromContext(ctx)
	staff := shared.IsAdmin(ctx)

	if !ok && !staff {
		return res, failure.Unauthorized("authentication required")
	}

	start, end, err := dto.ParseInterval(req.StartTime, req.EndTime)
	if err != nil {
		return res, err
	}

	switch {
	case !staff:
		// customers book for themselves at list price
		if req.TotalAmount != nil || (req.Status != "" && req.Status != model.StatusPending) {
			return res, failure.ForbiddenError
		}

		req.CustomerID = callerID
		req.Status = model.StatusPending
	case req.CustomerID == 0 && ok:
		req.CustomerID = callerID
	case req.CustomerID == 0:
		return res, failure.BadRequestFromString("customer_id is required")
	}

	room, err := s.findRoom(ctx, req.RoomID)
	if err != nil {
		return res, err
	}

	booking := req.ToModel(start, end)
	if req.TotalAmount == nil {
		booking.TotalAmount = model.TotalAmount(start, end, room.PricePerHour)
	}

	booking, err = s.repo.Insert(ctx, booking)
	if err != nil {
		log.Error().Err(err).Int64("room_id", req.RoomID).Msg("failed to create booking")

		return res, fmt.Errorf("failed to create booking: %w", err)
	}

	s.publish(ctx, event.TypeCreated, booking)
	s.invalidate(ctx)

	res.FromModel(booking)

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetBookingsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if !shared.IsAdmin(ctx) {
		return res, failure.ForbiddenError
	}

	return s.list(ctx, req, filter)
}

func (s *serviceImpl) GetMine(ctx context.Context, req gDto.QueryParams) (res dto.GetBookingsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.GetMine")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	callerID, _, ok := shared.UserFromContext(ctx)
	if !ok {
		return res, failure.Unauthorized("authentication required")
	}

	filter := gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{Field: model.FieldCustomerID, Operator: gDto.FilterOperatorEq, Value: callerID},
		},
	}

	return s.list(ctx, req, filter)
}

func (s *serviceImpl) list(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetBookingsResponse, err error) {
	req.RestrictSort(sortableColumns...)

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllBooking, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Debug().Str("cacheKey", cacheKey).Msg("cache hit for bookings")

		return res, nil
	}

	total, err := s.Count(ctx, filter)
	if err != nil {
		return res, err
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get bookings")

		return res, fmt.Errorf("failed to get bookings: %w", err)
	}

	res.FromModels(models, total, req.Page, req.Limit)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Warn().Err(err).Msg("failed to save bookings to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Count(ctx context.Context, filter gDto.FilterGroup) (res int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.Count")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKeyWithQuery(cacheCountBooking, gDto.QueryParams{}, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		return res, nil
	}

	res, err = s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count bookings")

		return res, fmt.Errorf("failed to count bookings: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Warn().Err(err).Msg("failed to save booking count to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id int64) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKey(cacheGetBooking, id)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		log.Debug().Str("cacheKey", cacheKey).Msg("cache hit for booking")

		if err = s.authorize(ctx, res.CustomerID); err != nil {
			return dto.BookingResponse{}, err
		}

		return res, nil
	}

	booking, err := s.find(ctx, id)
	if err != nil {
		return res, err
	}

	if err = s.authorize(ctx, booking.CustomerID); err != nil {
		return res, err
	}

	res.FromModel(booking)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Warn().Err(err).Msg("failed to save booking to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Update(ctx context.Context, req dto.UpdateBookingRequest, id int64) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.Update")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if req.IsEmpty() {
		return res, failure.BadRequestFromString("update request cannot be empty")
	}

	current, err := s.find(ctx, id)
	if err != nil {
		return res, err
	}

	if err = s.authorize(ctx, current.CustomerID); err != nil {
		return res, err
	}

	merged, err := s.merge(ctx, current, req)
	if err != nil {
		return res, err
	}

	if err = s.repo.Modify(ctx, merged, current.Status); err != nil {
		log.Error().Err(err).Int64("id", id).Msg("failed to update booking")

		return res, fmt.Errorf("failed to update booking: %w", err)
	}

	eventType := event.TypeUpdated
	if merged.Status != current.Status {
		eventType = event.TypeForStatus(merged.Status)
	}

	s.publish(ctx, eventType, merged)
	s.invalidate(ctx, id)

	res.FromModel(merged)

	return res, nil
}

// merge applies req on top of current and re-prices a moved booking.
func (s *serviceImpl) merge(ctx context.Context, current model.Booking, req dto.UpdateBookingRequest) (model.Booking, error) {
	merged := current

	if req.Reschedules() && model.IsTerminal(current.Status) {
		return merged, failure.BadRequestFromString(fmt.Sprintf("cannot reschedule a %s booking", current.Status))
	}

	if req.Status != "" && req.Status != current.Status {
		if !model.CanTransition(current.Status, req.Status) {
			return merged, failure.BadRequestFromString(
				fmt.Sprintf("cannot change status from %s to %s", current.Status, req.Status))
		}

		if !shared.IsAdmin(ctx) && req.Status != model.StatusCancelled {
			return merged, failure.ForbiddenError
		}

		merged.Status = req.Status
	}

	if req.RoomID != nil {
		merged.RoomID = *req.RoomID
	}

	if req.StartTime != "" {
		start, err := shared.ParseTime(req.StartTime)
		if err != nil {
			return merged, failure.BadRequestFromString("start_time: " + err.Error())
		}

		merged.StartTime = start
	}

	if req.EndTime != "" {
		end, err := shared.ParseTime(req.EndTime)
		if err != nil {
			return merged, failure.BadRequestFromString("end_time: " + err.Error())
		}

		merged.EndTime = end
	}

	if !merged.StartTime.Before(merged.EndTime) {
		return merged, failure.BadRequestFromString("start_time must be before end_time")
	}

	if req.Notes != nil {
		merged.Notes = *req.Notes
	}

	moved := merged.RoomID != current.RoomID ||
		!merged.StartTime.Equal(current.StartTime) ||
		!merged.EndTime.Equal(current.EndTime)

	switch {
	case req.TotalAmount != nil:
		if !shared.IsAdmin(ctx) {
			return merged, failure.ForbiddenError
		}

		merged.TotalAmount = *req.TotalAmount
	case moved:
		room, err := s.findRoom(ctx, merged.RoomID)
		if err != nil {
			return merged, err
		}

		merged.TotalAmount = model.TotalAmount(merged.StartTime, merged.EndTime, room.PricePerHour)
	}

	merged.UpdatedAt = timezone.Now()

	return merged, nil
}

func (s *serviceImpl) Delete(ctx context.Context, id int64) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.Delete")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if !shared.IsAdmin(ctx) {
		return failure.ForbiddenError
	}

	booking, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	if err = s.repo.Delete(ctx, shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
		log.Error().Err(err).Int64("id", id).Msg("failed to delete booking")

		return fmt.Errorf("failed to delete booking: %w", err)
	}

	s.publish(ctx, event.TypeDeleted, booking)
	s.invalidate(ctx, id)

	return nil
}

func (s *serviceImpl) Confirm(ctx context.Context, id int64) (dto.BookingResponse, error) {
	return s.transition(ctx, id, model.StatusConfirmed, false)
}

func (s *serviceImpl) Cancel(ctx context.Context, id int64) (dto.BookingResponse, error) {
	return s.transition(ctx, id, model.StatusCancelled, true)
}

func (s *serviceImpl) Complete(ctx context.Context, id int64) (dto.BookingResponse, error) {
	return s.transition(ctx, id, model.StatusCompleted, false)
}

// transition moves a booking to status `to` with a conditional update, so
// of two racing transitions only one can succeed.
func (s *serviceImpl) transition(ctx context.Context, id int64, to string, ownerAllowed bool) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.Transition")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	scope.SetAttribute("booking.status", to)

	if ownerAllowed {
		booking, err := s.find(ctx, id)
		if err != nil {
			return res, err
		}

		if err = s.authorize(ctx, booking.CustomerID); err != nil {
			return res, err
		}
	} else if !shared.IsAdmin(ctx) {
		return res, failure.ForbiddenError
	}

	changed, err := s.repo.UpdateStatus(ctx, id, to, model.SourcesOf(to)...)
	if err != nil {
		log.Error().Err(err).Int64("id", id).Str("to", to).Msg("failed to change booking status")

		return res, fmt.Errorf("failed to change booking status: %w", err)
	}

	booking, err := s.find(ctx, id)
	if err != nil {
		return res, err
	}

	if !changed {
		return res, failure.BadRequestFromString(
			fmt.Sprintf("cannot change status from %s to %s", booking.Status, to))
	}

	s.publish(ctx, event.TypeForStatus(to), booking)
	s.invalidate(ctx, id)

	res.FromModel(booking)

	return res, nil
}

// authorize lets staff through and otherwise requires the caller to own the booking.
func (s *serviceImpl) authorize(ctx context.Context, ownerID int64) error {
	if shared.IsAdmin(ctx) {
		return nil
	}

	callerID, _, ok := shared.UserFromContext(ctx)
	if !ok {
		return failure.Unauthorized("authentication required")
	}

	if callerID != ownerID {
		return failure.ResourceRestrictedError
	}

	return nil
}

func (s *serviceImpl) find(ctx context.Context, id int64) (model.Booking, error) {
	booking, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Int64("id", id).Msg("failed to get booking")

		return booking, fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.ID == 0 {
		return booking, failure.NotFound("booking not found") // nolint:wrapcheck
	}

	return booking, nil
}

func (s *serviceImpl) findRoom(ctx context.Context, id int64) (roomModel.Room, error) {
	room, err := s.roomRepo.Get(ctx, shared.FilterByID(id, roomModel.FieldID, roomModel.TableName))
	if err != nil {
		log.Error().Err(err).Int64("room_id", id).Msg("failed to get room")

		return room, fmt.Errorf("failed to get room: %w", err)
	}

	if room.ID == 0 {
		return room, failure.NotFound("room not found") // nolint:wrapcheck
	}

	return room, nil
}

func (s *serviceImpl) publish(ctx context.Context, eventType string, booking model.Booking) {
	if err := s.publisher.Publish(ctx, eventType, booking); err != nil {
		log.Warn().Err(err).Int64("booking_id", booking.ID).Str("type", eventType).Msg("booking event dropped")
	}
}

func (s *serviceImpl) invalidate(ctx context.Context, ids ...int64) {
	go func() {
		c := context.WithoutCancel(ctx)

		for _, id := range ids {
			if err := s.cache.Delete(c, shared.BuildCacheKey(cacheGetBooking, id)); err != nil {
				log.Warn().Err(err).Msg("failed to delete booking cache")
			}
		}

		shared.InvalidateCaches(c, s.cache, cacheGetAllBooking, cacheCountBooking, CacheReport)
	}()
}
