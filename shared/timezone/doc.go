// Package timezone holds the application clock.
//
// Bookings are stored as instants (TIMESTAMPTZ). The clock decides how they
// are rendered in responses, how offset-less input such as "2025-03-01 20:00"
// is read, and where a report year begins. It is set from APP_TIMEZONE when
// the package loads and falls back to UTC on an unknown name. The IANA
// database is embedded, so slim images need no zoneinfo files.
package timezone
