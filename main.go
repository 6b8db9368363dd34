package main

import (
	"log"

	"github.com/joho/godotenv"
	"scanorder/cmd"
	"scanorder/internal/config"
	"scanorder/internal/logger"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Printf("Warning: Could not load configuration: %v", err)
		if err := logger.Setup(logger.DefaultConfig()); err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		// Commands that need configuration report the error themselves.
		cfg = nil
	} else {
		if err := logger.Setup(cfg.GetLoggerConfig()); err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
	}

	log := logger.WithComponent("main")
	log.Debug().Msg("Starting scanorder")

	cmd.Execute(cfg)

	log.Debug().Msg("scanorder shutdown")
}
