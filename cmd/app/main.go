package main

import (
	"karaoke/config"
	"karaoke/di"
	"karaoke/helper"
	"karaoke/shared/logger"

	"github.com/rs/zerolog/log"
)

// @title Karaoke Booking API
// @version 1.0
// @description Room availability, bookings and revenue reports for a karaoke venue.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the access token.
func main() {
	cfg := config.Get()

	logger.InitLogger()

	logger.SetLogLevel(cfg)

	if cfg.DB.Postgres.AutoMigrate {
		if err := helper.Up(cfg); err != nil {
			log.Fatal().Err(err).Msg("Failed to apply database migrations")
		}
	}

	http := di.InitializeService()
	http.Serve()
}
