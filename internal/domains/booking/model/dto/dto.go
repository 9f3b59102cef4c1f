package dto

import (
	"time"

	"karaoke/internal/domains/booking/model"
	roomDto "karaoke/internal/domains/room/model/dto"
	"karaoke/shared"
	"karaoke/shared/constant"
	gDto "karaoke/shared/dto"
	"karaoke/shared/failure"
	gModel "karaoke/shared/model"
	"karaoke/shared/timezone"
)

// ParseInterval reads an ISO-8601 interval and rejects one that does not move forward.
func ParseInterval(start, end string) (startTime, endTime time.Time, err error) {
	startTime, err = shared.ParseTime(start)
	if err != nil {
		return startTime, endTime, failure.BadRequestFromString("start_time: " + err.Error())
	}

	endTime, err = shared.ParseTime(end)
	if err != nil {
		return startTime, endTime, failure.BadRequestFromString("end_time: " + err.Error())
	}

	if !startTime.Before(endTime) {
		return startTime, endTime, failure.BadRequestFromString("start_time must be before end_time")
	}

	return startTime, endTime, nil
}

type IntervalQuery struct {
	StartTime string `json:"start_time" validate:"required"`
	EndTime   string `json:"end_time"   validate:"required"`
}

type CreateBookingRequest struct {
	RoomID      int64    `json:"room_id"                validate:"required,gt=0"`
	CustomerID  int64    `json:"customer_id,omitempty"  validate:"omitempty,gt=0"`
	StartTime   string   `json:"start_time"             validate:"required"`
	EndTime     string   `json:"end_time"               validate:"required"`
	Status      string   `json:"status,omitempty"       validate:"omitempty,oneof=pending confirmed"`
	TotalAmount *float64 `json:"total_amount,omitempty" validate:"omitempty,gte=0"`
	Notes       string   `json:"notes,omitempty"        validate:"omitempty,max=500"`
}

// ToModel builds a pending booking unless confirmed was requested.
// TotalAmount stays zero when the caller left it out.
func (c *CreateBookingRequest) ToModel(start, end time.Time) model.Booking {
	status := c.Status
	if status == "" {
		status = model.StatusPending
	}

	var total float64
	if c.TotalAmount != nil {
		total = *c.TotalAmount
	}

	now := timezone.Now()

	return model.Booking{
		RoomID:      c.RoomID,
		CustomerID:  c.CustomerID,
		StartTime:   start,
		EndTime:     end,
		Status:      status,
		TotalAmount: total,
		Notes:       c.Notes,
		Metadata: gModel.Metadata{
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
}

type UpdateBookingRequest struct {
	RoomID      *int64   `json:"room_id,omitempty"      validate:"omitempty,gt=0"`
	StartTime   string   `json:"start_time,omitempty"`
	EndTime     string   `json:"end_time,omitempty"`
	Status      string   `json:"status,omitempty"       validate:"omitempty,oneof=pending confirmed completed cancelled"`
	TotalAmount *float64 `json:"total_amount,omitempty" validate:"omitempty,gte=0"`
	Notes       *string  `json:"notes,omitempty"        validate:"omitempty,max=500"`
}

func (u *UpdateBookingRequest) IsEmpty() bool {
	return u.RoomID == nil && u.StartTime == "" && u.EndTime == "" && u.Status == "" &&
		u.TotalAmount == nil && u.Notes == nil
}

// Reschedules reports whether the request moves the booking in time or space.
func (u *UpdateBookingRequest) Reschedules() bool {
	return u.RoomID != nil || u.StartTime != "" || u.EndTime != ""
}

type BookingResponse struct {
	ID          int64   `json:"id"`
	RoomID      int64   `json:"room_id"`
	CustomerID  int64   `json:"customer_id"`
	StartTime   string  `json:"start_time"`
	EndTime     string  `json:"end_time"`
	Status      string  `json:"status"`
	TotalAmount float64 `json:"total_amount"`
	Notes       string  `json:"notes"`
	gDto.Metadata
}

func (r *BookingResponse) FromModel(m model.Booking) {
	r.ID = m.ID
	r.RoomID = m.RoomID
	r.CustomerID = m.CustomerID
	r.StartTime = timezone.Format(m.StartTime, constant.DateFormat)
	r.EndTime = timezone.Format(m.EndTime, constant.DateFormat)
	r.Status = m.Status
	r.TotalAmount = m.TotalAmount
	r.Notes = m.Notes
	r.Metadata.FromModel(m.Metadata)
}

type GetBookingsResponse struct {
	Bookings []BookingResponse `json:"bookings"`
	Meta     gDto.Meta         `json:"meta"`
}

func (r *GetBookingsResponse) FromModels(models []model.Booking, total, page, limit int) {
	r.Meta = gDto.Meta{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: shared.CalculateTotalPage(total, limit),
	}

	r.Bookings = make([]BookingResponse, len(models))
	for i, m := range models {
		r.Bookings[i].FromModel(m)
	}
}

type AvailableRoomsMeta struct {
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	TotalRooms int    `json:"total_rooms"`
}

type AvailableRoomsResponse struct {
	Rooms []roomDto.RoomResponse `json:"rooms"`
	Meta  AvailableRoomsMeta     `json:"meta"`
}

type SlotAvailabilityResponse struct {
	RoomID    int64  `json:"room_id"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Available bool   `json:"available"`
}
