package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"ProductJudge/internal/app"
	"ProductJudge/internal/config"
	"ProductJudge/internal/logging"
	"ProductJudge/internal/tui"
)

const logFile = "productjudge-tui.log"

func main() {
	_ = godotenv.Load()

	// The terminal belongs to bubbletea, so logs go to a file.
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot open %s: %v\n", logFile, err)
		os.Exit(1)
	}
	defer f.Close()

	cfg := config.Load()
	logger := logging.NewWithWriter(f, cfg.Logging.Level)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot start: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()

	p := tea.NewProgram(tui.NewApp(ctx, application.Analyzer()), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		logger.Error("tui stopped", "error", err)
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
