package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"chatterm/api"
	"chatterm/audio"
	"chatterm/config"
	"chatterm/model"
	"chatterm/storage"
	"chatterm/ui"
)

const Version = "v0.1.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize debug logging after config is loaded
	config.InitDebugLog(cfg.DataDir())

	// Clean up old tmp dir in cache directory (crash recovery)
	if err := config.CleanupTempDir(); err != nil && config.DebugLog != nil {
		config.DebugLog.Printf("Warning: failed to cleanup old temp directory: %v", err)
	}

	// Temp dir holds recording and playback scratch files
	if err := config.CreateTempDir(); err != nil {
		fmt.Printf("Failed to create temp directory: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if err := config.CleanupTempDir(); err != nil && config.DebugLog != nil {
			config.DebugLog.Printf("Warning: failed to cleanup temp directory on exit: %v", err)
		}
	}()

	stateStore, err := storage.NewStateStore(cfg.DataDir())
	if err != nil {
		fmt.Printf("Failed to initialize state storage: %v\n", err)
		os.Exit(1)
	}
	defer stateStore.Close()

	// A corrupt or missing snapshot degrades to a fresh empty state
	snapshot := stateStore.Load()

	client := api.NewClient(cfg.BackendURL)
	recorder := audio.NewRecorder(config.GetTempDir())
	player := audio.NewPlayer(config.GetTempDir())

	dataModel := model.NewModel(cfg, client, stateStore, snapshot, recorder, player, Version)

	p := tea.NewProgram(
		ui.NewAppView(dataModel),
		tea.WithAltScreen(),
	)

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
