package model

import (
	"karaoke/shared/model"
	"strings"
)

const (
	TableName  = "rooms"
	EntityName = "room"

	FieldID           = "id"
	FieldName         = "name"
	FieldType         = "type"
	FieldPricePerHour = "price_per_hour"
	FieldCapacity     = "capacity"
	FieldStatus       = "status"
	FieldImage        = "image"
)

const (
	TypeStandard = "Standard"
	TypeVIP      = "VIP"
	TypePremium  = "Premium"
	TypeSuite    = "Suite"
)

// Status is descriptive only. Availability is always derived from bookings.
const (
	StatusAvailable   = "available"
	StatusOccupied    = "occupied"
	StatusMaintenance = "maintenance"
)

type Room struct {
	ID           int64   `db:"id"             insert:"-"`
	Name         string  `db:"name"`
	Type         string  `db:"type"`
	PricePerHour float64 `db:"price_per_hour"`
	Capacity     int     `db:"capacity"`
	Status       string  `db:"status"`
	Image        *string `db:"image"`
	model.Metadata
}

var types = map[string]string{
	"standard": TypeStandard,
	"normal":   TypeStandard,
	"vip":      TypeVIP,
	"premium":  TypePremium,
	"suite":    TypeSuite,
}

// NormalizeType maps a client supplied room type onto one of the known types.
// "Normal" and unknown values become Standard.
func NormalizeType(value string) string {
	if t, ok := types[strings.ToLower(strings.TrimSpace(value))]; ok {
		return t
	}

	return TypeStandard
}
