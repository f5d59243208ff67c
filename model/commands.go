package model

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"chatterm/api"
	"chatterm/config"
)

const (
	chatTimeout  = 120 * time.Second
	mediaTimeout = 30 * time.Second
)

// SendChat issues the chat request for one send. The history and file
// ids are captured up front so later store mutations cannot leak into an
// in-flight request.
func (m *Model) SendChat(convID string, history []api.ChatMessage, fileIDs []string) tea.Cmd {
	client := m.Client
	modelName := m.Config.DefaultModel

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), chatTimeout)
		defer cancel()

		start := time.Now()
		reply, err := client.Chat(ctx, api.ChatRequest{
			Messages: history,
			Model:    modelName,
			FileIDs:  fileIDs,
		})
		if config.DebugLog != nil {
			config.DebugLog.Printf("[Model] chat request finished after %v (err=%v)", time.Since(start), err)
		}

		return ChatReplyMsg{ConvID: convID, Reply: reply, Err: err}
	}
}

// StartRecording brings up microphone capture. A device or tool failure
// is reported in the message and the recorder stays idle.
func (m *Model) StartRecording() tea.Cmd {
	recorder := m.Recorder
	return func() tea.Msg {
		return RecordingStartedMsg{Err: recorder.Start()}
	}
}

// StopRecording ends the capture and sends the audio for transcription.
func (m *Model) StopRecording() tea.Cmd {
	recorder := m.Recorder
	client := m.Client

	return func() tea.Msg {
		data, err := recorder.Stop()
		if err != nil {
			return TranscriptionMsg{Err: err}
		}

		ctx, cancel := context.WithTimeout(context.Background(), mediaTimeout)
		defer cancel()

		text, err := client.Transcribe(ctx, data)
		return TranscriptionMsg{Text: text, Err: err}
	}
}

// Speak synthesizes the text and plays it, blocking until the playback
// ends naturally, is stopped, or synthesis fails. The player itself
// guarantees any previous playback is silenced first.
func (m *Model) Speak(text string) tea.Cmd {
	client := m.Client
	player := m.Player

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mediaTimeout)
		defer cancel()

		data, err := client.Synthesize(ctx, text)
		if err != nil {
			return TTSDoneMsg{Err: err}
		}

		return TTSDoneMsg{Err: player.Play(data)}
	}
}

// UploadFile sends one file to the upload backend on behalf of a
// conversation.
func (m *Model) UploadFile(convID, path string) tea.Cmd {
	client := m.Client

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mediaTimeout)
		defer cancel()

		fileID, name, err := client.Upload(ctx, path)
		return UploadResultMsg{ConvID: convID, FileID: fileID, Name: name, Err: err}
	}
}
