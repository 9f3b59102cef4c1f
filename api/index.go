package handler

import (
	"net/http"
	"sync"

	"karaoke/config"
	"karaoke/di"
	"karaoke/shared/logger"
	transport "karaoke/transport/http"
)

var (
	app  *transport.HTTP
	once sync.Once
)

// Handler serves the API as a single serverless function. The booking sweep
// is expected to be triggered through POST /v1/bookings/sweep in this mode.
func Handler(w http.ResponseWriter, r *http.Request) {
	once.Do(func() {
		cfg := config.Get()

		logger.InitLogger()

		logger.SetLogLevel(cfg)

		app = di.InitializeService()
	})

	r.RequestURI = r.URL.String()

	app.ServeHTTP(w, r)
}
