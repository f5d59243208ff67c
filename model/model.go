package model

import (
	"chatterm/api"
	"chatterm/audio"
	"chatterm/config"
	"chatterm/storage"
)

// Model holds the core application data and business logic state.
type Model struct {
	// Core dependencies
	Config     *config.Config
	Client     *api.Client
	Store      *Store
	StateStore *storage.StateStore
	Recorder   *audio.Recorder
	Player     *audio.Player

	// Runtime state (not UI)
	Recording     bool
	PendingConvID string // conversation with a chat request in flight, "" when none

	// Application metadata
	Version string
}

// NewModel rebuilds the application state from a persisted snapshot.
// A fresh install (or an unrecoverable snapshot) starts with one empty
// conversation, mirrored to storage right away.
func NewModel(cfg *config.Config, client *api.Client, stateStore *storage.StateStore, snapshot storage.Snapshot, recorder *audio.Recorder, player *audio.Player, version string) *Model {
	store := NewStore(snapshot)

	m := &Model{
		Config:     cfg,
		Client:     client,
		Store:      store,
		StateStore: stateStore,
		Recorder:   recorder,
		Player:     player,
		Version:    version,
	}

	if len(store.Conversations) == 0 {
		store.Create(TemplateEmpty)
		m.Persist()
	}

	return m
}

// Persist mirrors the store into the state slot. The write is
// synchronous so a render never runs ahead of a stale persisted copy;
// a failed write is logged and the session keeps going on the in-memory
// state.
func (m *Model) Persist() {
	if m.StateStore == nil {
		return
	}
	if err := m.StateStore.Save(m.Store.Snapshot()); err != nil {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[Model] failed to persist snapshot: %v", err)
		}
	}
}
