package main

import (
	"os"

	"github.com/yigit/prelimplanner/internal/pkg/logger" // Still needed for initial error logging
	"github.com/yigit/prelimplanner/internal/server"
)

// @title Prelim Planner API
// @version 1.0
// @description Registrar exam schedules scraped into per-semester tables

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http

func main() {
	srv, err := server.NewServer(os.Getenv("CONFIG_PATH"))
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
