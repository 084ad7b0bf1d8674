package main

import (
	"log"

	"github.com/joho/godotenv"

	"carsource_backend/internal/app"
)

func main() {
	// Optional in production; containers set real env vars.
	_ = godotenv.Load()

	if err := app.Run(); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
