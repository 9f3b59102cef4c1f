package timezone

import (
	"fmt"
	"sync/atomic"
	"time"
	_ "time/tzdata"

	"github.com/rs/zerolog/log"

	"karaoke/config"
)

var location atomic.Pointer[time.Location]

func init() {
	location.Store(time.UTC)

	name := config.Get().App.Timezone
	if err := Set(name); err != nil {
		log.Error().Err(err).Str("timezone", name).Msg("falling back to UTC, use an IANA name such as Asia/Jakarta")
	}
}

// Set switches the application clock to the IANA zone name. An empty name
// means UTC. On error the previous zone stays in effect.
func Set(name string) error {
	if name == "" {
		name = "UTC"
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		return fmt.Errorf("failed to load timezone %q: %w", name, err)
	}

	location.Store(loc)
	log.Debug().Str("timezone", loc.String()).Msg("application timezone set")

	return nil
}

// GetLocation returns the application timezone.
func GetLocation() *time.Location {
	return location.Load()
}

// Now returns the current time on the application clock.
func Now() time.Time {
	return time.Now().In(GetLocation())
}

func ToAppTime(t time.Time) time.Time {
	return t.In(GetLocation())
}

// Parse reads a value without an offset as wall time in the application timezone.
func Parse(layout, value string) (time.Time, error) {
	return time.ParseInLocation(layout, value, GetLocation())
}

func Format(t time.Time, layout string) string {
	return ToAppTime(t).Format(layout)
}

// StartOfYear is local midnight on 1 January of year, the bound revenue
// reports use for a calendar year.
func StartOfYear(year int) time.Time {
	return time.Date(year, time.January, 1, 0, 0, 0, 0, GetLocation())
}
