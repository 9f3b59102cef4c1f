package model

import (
	"karaoke/shared/model"
	"math"
	"slices"
	"time"
)

const (
	TableName  = "bookings"
	EntityName = "booking"

	FieldID          = "id"
	FieldRoomID      = "room_id"
	FieldCustomerID  = "customer_id"
	FieldStartTime   = "start_time"
	FieldEndTime     = "end_time"
	FieldStatus      = "status"
	FieldTotalAmount = "total_amount"
	FieldNotes       = "notes"
)

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// ActiveStatuses hold a room. Only these take part in overlap checks.
var ActiveStatuses = []string{StatusPending, StatusConfirmed}

// RevenueStatuses are counted by revenue reports.
var RevenueStatuses = []string{StatusCompleted, StatusConfirmed}

var transitions = map[string][]string{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
}

type Booking struct {
	ID          int64     `db:"id"           insert:"-"`
	RoomID      int64     `db:"room_id"`
	CustomerID  int64     `db:"customer_id"`
	StartTime   time.Time `db:"start_time"`
	EndTime     time.Time `db:"end_time"`
	Status      string    `db:"status"`
	TotalAmount float64   `db:"total_amount"`
	Notes       string    `db:"notes"`
	model.Metadata
}

func (b Booking) IsActive() bool {
	return IsActive(b.Status)
}

func IsActive(status string) bool {
	return slices.Contains(ActiveStatuses, status)
}

func IsTerminal(status string) bool {
	return status == StatusCompleted || status == StatusCancelled
}

// CanTransition reports whether a booking in from may move to to.
func CanTransition(from, to string) bool {
	return slices.Contains(transitions[from], to)
}

// SourcesOf lists the statuses from which to can be reached.
func SourcesOf(to string) []string {
	var sources []string

	for _, from := range []string{StatusPending, StatusConfirmed} {
		if CanTransition(from, to) {
			sources = append(sources, from)
		}
	}

	return sources
}

// TotalAmount charges every started hour in full.
func TotalAmount(start, end time.Time, pricePerHour float64) float64 {
	hours := math.Ceil(end.Sub(start).Hours())
	if hours < 0 {
		hours = 0
	}

	return hours * pricePerHour
}
