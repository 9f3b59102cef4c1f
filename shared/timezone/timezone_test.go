package timezone_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"karaoke/shared/timezone"
)

// useZone switches the application clock for one test.
func useZone(t *testing.T, name string) {
	t.Helper()

	previous := timezone.GetLocation().String()

	require.NoError(t, timezone.Set(name))
	t.Cleanup(func() { _ = timezone.Set(previous) })
}

func TestSet(t *testing.T) {
	useZone(t, "Asia/Jakarta")

	t.Run("unknown zone keeps the current one", func(t *testing.T) {
		err := timezone.Set("Mars/Olympus_Mons")

		assert.Error(t, err)
		assert.Equal(t, "Asia/Jakarta", timezone.GetLocation().String())
	})

	t.Run("empty name is UTC", func(t *testing.T) {
		useZone(t, "")

		assert.Equal(t, time.UTC, timezone.GetLocation())
	})
}

func TestNow_OnAppClock(t *testing.T) {
	useZone(t, "Asia/Jakarta")

	now := timezone.Now()

	assert.Equal(t, "Asia/Jakarta", now.Location().String())
	assert.WithinDuration(t, time.Now(), now, time.Minute)
}

func TestFormat_BookingInJakarta(t *testing.T) {
	useZone(t, "Asia/Jakarta")

	start := time.Date(2025, 3, 1, 13, 0, 0, 0, time.UTC)

	assert.Equal(t, "2025-03-01T20:00:00+07:00", timezone.Format(start, time.RFC3339))
	assert.True(t, start.Equal(timezone.ToAppTime(start)), "conversion keeps the instant")
}

func TestParse_WallTimeInAppZone(t *testing.T) {
	useZone(t, "Asia/Jakarta")

	got, err := timezone.Parse("2006-01-02 15:04", "2025-03-01 20:00")
	require.NoError(t, err)
	assert.True(t, time.Date(2025, 3, 1, 13, 0, 0, 0, time.UTC).Equal(got))

	_, err = timezone.Parse("2006-01-02 15:04", "tonight")
	assert.Error(t, err)
}

func TestStartOfYear(t *testing.T) {
	tests := []struct {
		zone string
		want time.Time
	}{
		{zone: "UTC", want: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
		{zone: "Asia/Jakarta", want: time.Date(2024, 12, 31, 17, 0, 0, 0, time.UTC)},
		{zone: "America/New_York", want: time.Date(2025, 1, 1, 5, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.zone, func(t *testing.T) {
			useZone(t, tt.zone)

			got := timezone.StartOfYear(2025)

			assert.True(t, tt.want.Equal(got), "got %s", got)
			assert.Equal(t, tt.zone, got.Location().String())
		})
	}
}
