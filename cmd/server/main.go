package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/A5R13L/gmod-monaco-editor/internal/infrastructure/config"
	"github.com/A5R13L/gmod-monaco-editor/internal/infrastructure/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Flags override environment variables
	flag.StringVar(&cfg.Server.Port, "port", cfg.Server.Port, "Server port")
	flag.StringVar(&cfg.VFS.SeedDir, "seed", cfg.VFS.SeedDir, "Directory seeded into the virtual filesystem")
	flag.StringVar(&cfg.Assets.ThemesFile, "themes", cfg.Assets.ThemesFile, "YAML file of editor themes")
	flag.StringVar(&cfg.Assets.SnippetsFile, "snippets", cfg.Assets.SnippetsFile, "TOML file of snippets")
	flag.StringVar(&cfg.Completion.FeedURL, "feed", cfg.Completion.FeedURL, "Completion feed URL")
	dev := flag.Bool("dev", cfg.Logging.Development, "Development logging")
	flag.Parse()
	cfg.Logging.Development = *dev

	srv, err := server.NewServer(cfg)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Run()
	}()

	select {
	case <-sigChan:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}
	case err := <-errChan:
		if err != nil {
			log.Fatalf("Server error: %v", err)
		}
	}
}
