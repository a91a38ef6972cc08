package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/scrypster/lector/internal/assistant"
	"github.com/scrypster/lector/internal/config"
	"github.com/scrypster/lector/internal/llm"
	"github.com/scrypster/lector/internal/server"
	"github.com/scrypster/lector/internal/study"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file (overrides environment)")
	flag.Parse()

	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.LoadConfigFile(*configPath)
	} else {
		cfg, err = config.LoadConfig()
	}
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize the inference client
	client, err := llm.NewChatCompleter(cfg.LLM)
	if err != nil {
		log.Fatalf("Failed to initialize LLM client: %v", err)
	}
	log.Printf("Using %s provider with model %s", cfg.LLM.Provider, client.GetModel())

	// Open the study store
	if err := os.MkdirAll(cfg.Study.DataPath, 0o755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}
	store, err := study.NewStore(filepath.Join(cfg.Study.DataPath, "lector.db"))
	if err != nil {
		log.Fatalf("Failed to open study store: %v", err)
	}
	defer store.Close()

	// Build the assistant and wrap it in a study session
	a := assistant.New(client, assistant.Config{
		MinInterventionGap: cfg.Pipeline.MinInterventionGap,
		RecentWindow:       cfg.Pipeline.RecentWindow,
	})
	session := study.NewSession(a, cfg.Study.Mode, cfg.Study.ParticipantID, store)
	log.Printf("Study session %s started (participant %s, mode %s)",
		session.ID, session.ParticipantID, session.Mode)

	// Setup context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	addr, _ := server.Start(ctx, cfg, session)
	log.Printf("Reading assistant running at http://%s", addr)

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down gracefully...")

	saveCtx, saveCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := session.Save(saveCtx, true); err != nil {
		log.Printf("Warning: failed to save session: %v", err)
	}
	saveCancel()

	cancel()
	time.Sleep(1 * time.Second) // Give time for connections to close
}
