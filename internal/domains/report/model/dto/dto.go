package dto

import "karaoke/internal/domains/report/model"

type RevenueRow struct {
	Period        int     `json:"period"`
	TotalRevenue  float64 `json:"total_revenue"`
	BookingsCount int     `json:"bookings_count"`
	AvgRevenue    float64 `json:"avg_revenue"`
}

type RevenueMeta struct {
	Type      string `json:"type"`
	Year      int    `json:"year,omitempty"`
	StartYear int    `json:"start_year,omitempty"`
	EndYear   int    `json:"end_year,omitempty"`
}

type RevenueResponse struct {
	Revenue []RevenueRow `json:"revenue"`
	Meta    RevenueMeta  `json:"meta"`
}

func (r *RevenueResponse) FromModels(models []model.Revenue, meta RevenueMeta) {
	r.Meta = meta

	r.Revenue = make([]RevenueRow, len(models))
	for i, m := range models {
		r.Revenue[i] = RevenueRow{
			Period:        m.Period,
			TotalRevenue:  m.TotalRevenue,
			BookingsCount: m.BookingsCount,
			AvgRevenue:    m.AvgRevenue,
		}
	}
}

type TopRoomRow struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Type         string  `json:"type"`
	BookingCount int     `json:"booking_count"`
	TotalRevenue float64 `json:"total_revenue"`
}

type TopRoomsMeta struct {
	Type  string `json:"type"`
	Year  int    `json:"year"`
	Limit int    `json:"limit"`
}

type TopRoomsResponse struct {
	Rooms []TopRoomRow `json:"rooms"`
	Meta  TopRoomsMeta `json:"meta"`
}

func (r *TopRoomsResponse) FromModels(models []model.TopRoom, meta TopRoomsMeta) {
	r.Meta = meta

	r.Rooms = make([]TopRoomRow, len(models))
	for i, m := range models {
		r.Rooms[i] = TopRoomRow{
			ID:           m.ID,
			Name:         m.Name,
			Type:         m.Type,
			BookingCount: m.BookingCount,
			TotalRevenue: m.TotalRevenue,
		}
	}
}
