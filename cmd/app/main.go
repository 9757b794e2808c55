package main

import (
	"context"
	"flag"
	"log"
	"os"

	"ChurnPull/internal/di"
	"ChurnPull/pkg/config"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	log.Printf("env=%s model=%s artifacts=%s threshold=%.2f",
		cfg.Environment, cfg.Model.Type, cfg.Artifacts.Dir, cfg.Prediction.Threshold)

	// Missing or inconsistent artifacts fail here.
	app, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	if err := app.Run(context.Background()); err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}
