package model

const (
	EntityName = "report"

	TypeMonthly   = "monthly"
	TypeQuarterly = "quarterly"
	TypeYearly    = "yearly"
	TypeTopRooms  = "top_rooms"
)

// Revenue is one period of aggregated booking revenue. Period is the month
// (1-12), the quarter (1-4) or the calendar year.
type Revenue struct {
	Period        int     `db:"period"`
	TotalRevenue  float64 `db:"total_revenue"`
	BookingsCount int     `db:"bookings_count"`
	AvgRevenue    float64 `db:"avg_revenue"`
}

type TopRoom struct {
	ID           int64   `db:"id"`
	Name         string  `db:"name"`
	Type         string  `db:"type"`
	BookingCount int     `db:"booking_count"`
	TotalRevenue float64 `db:"total_revenue"`
}
