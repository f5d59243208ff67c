package config

func DefaultSettings() *Settings {
	return &Settings{
		DataDirectory: "~/.local/share/chatterm",
		BackendURL:    "http://127.0.0.1:8000",
		DefaultModel:  "gpt-4o-mini",
	}
}

func GenerateSettingsTemplate() string {
	return `# chatterm Configuration
# Location: ~/.config/chatterm/settings.toml
# This file uses TOML format: https://toml.io

# Directory where the conversation database is stored
data_directory = "~/.local/share/chatterm"

# Base URL of the chat backend (chat, transcription, TTS and upload endpoints)
backend_url = "http://127.0.0.1:8000"

# Model name forwarded with every chat request
default_model = "gpt-4o-mini"
`
}
