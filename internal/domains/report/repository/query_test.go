package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"karaoke/shared/timezone"
)

func TestRevenueQueries_GroupOnAppClock(t *testing.T) {
	tests := []struct {
		name  string
		query string
		unit  string
	}{
		{name: "monthly", query: queryRevenueByMonth, unit: "MONTH"},
		{name: "quarterly", query: queryRevenueByQuarter, unit: "QUARTER"},
		{name: "yearly", query: queryRevenueByYear, unit: "YEAR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, tt.query, "EXTRACT("+tt.unit+" FROM start_time AT TIME ZONE :tz)")
			assert.Contains(t, tt.query, "start_time >= :from AND start_time < :to")
			assert.NotContains(t, tt.query, "%!")
		})
	}
}

func TestArgs_YearBoundsInAppTimezone(t *testing.T) {
	loc := timezone.GetLocation()

	params := args(2024, 2025)

	assert.Equal(t, loc.String(), params["tz"])
	assert.Equal(t, time.Date(2024, time.January, 1, 0, 0, 0, 0, loc), params["from"])
	assert.Equal(t, time.Date(2026, time.January, 1, 0, 0, 0, 0, loc), params["to"])
	assert.Equal(t, "completed", params["completed"])
	assert.Equal(t, "confirmed", params["confirmed"])
}
