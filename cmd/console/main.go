package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jwebster45206/dm-engine/internal/config"
	"github.com/jwebster45206/dm-engine/internal/logger"
	"github.com/jwebster45206/dm-engine/internal/services"
	"github.com/jwebster45206/dm-engine/internal/session"
	"github.com/jwebster45206/dm-engine/internal/storage"
)

func main() {
	cfg := config.Load()

	// The TUI owns stdout, so logs go to a file to keep the screen clean.
	logFile, err := os.OpenFile("console.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logFile.Close() // Ignore error in defer
	}()
	log := logger.SetupWithWriter(cfg, logFile)

	store := storage.NewRedisStorage(cfg.RedisURL, cfg.DataDir, log)
	defer func() {
		_ = store.Close() // Ignore error in defer
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()
	if err := store.WaitForConnection(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Could not connect to Redis. Please ensure it is running.\nTry: docker-compose up -d\n")
		os.Exit(1)
	}

	llm, err := services.NewLLMService(cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create LLM service: %v\n", err)
		os.Exit(1)
	}
	if err := llm.InitModel(ctx, cfg.ModelName); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize model %q: %v\n", cfg.ModelName, err)
		os.Exit(1)
	}

	proc := session.NewProcessor(store, llm, log)

	p := tea.NewProgram(NewConsoleUI(proc, store),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithMouseAllMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}
