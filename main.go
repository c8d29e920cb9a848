package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"peajes/internal/config"
	"peajes/internal/container"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Load application configuration
	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Create dependency injection container
	appContainer, err := container.New(appConfig)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}
	defer appContainer.Shutdown(context.Background())

	source := appConfig.Artifacts.Dir
	if appConfig.Artifacts.BaseURL != "" {
		source = appConfig.Artifacts.BaseURL
	}
	appContainer.Logger.Info("Reading artifacts from %s", source)

	server := appContainer.Server()
	if err := server.Start(":" + appConfig.Server.Port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
