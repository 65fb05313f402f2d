package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"github.com/Manuqueiroz1/relatorio-email/adapters/history"
	"github.com/Manuqueiroz1/relatorio-email/internal"
	"github.com/Manuqueiroz1/relatorio-email/internal/config"
	"github.com/Manuqueiroz1/relatorio-email/internal/report"
	"github.com/Manuqueiroz1/relatorio-email/ui"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := internal.DefaultLogger

	store, err := history.NewFileStore(cfg.Storage.DataDir)
	if err != nil {
		log.Fatalf("Failed to open history store: %v", err)
	}

	processor := report.NewProcessor(store)
	restored, err := processor.LoadSaved(context.Background())
	if err != nil {
		log.Fatalf("Failed to restore saved history: %v", err)
	}
	if restored {
		logger.Info("dashboard ready with saved history")
	} else {
		logger.Info("no complete saved history, waiting for uploads")
	}

	app, err := ui.NewApp(cfg, processor)
	if err != nil {
		log.Fatalf("Failed to initialize dashboard: %v", err)
	}

	if err := app.Start(); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}
