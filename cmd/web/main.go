package main

import (
	"github.com/joho/godotenv"

	"jobboard_backend/internal/app"
	"jobboard_backend/internal/logger"
)

func main() {
	// .env is optional; real deployments set variables directly.
	if err := godotenv.Load(); err == nil {
		logger.Info("Loaded environment from .env")
	}

	app.Run()
}
