package ui

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"chatterm/api"
	"chatterm/config"
	"chatterm/model"
)

func (a AppView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	// Keep the placeholder spinner animated while a request is pending
	// against the visible conversation
	if a.dataModel.PendingConvID != "" && a.dataModel.PendingConvID == a.dataModel.Store.CurrentID {
		a.loadingSpinner, cmd = a.loadingSpinner.Update(msg)
		cmds = append(cmds, cmd)
		a.updateViewportContent(true)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height

		// Header (1), separator (1), textarea (3) and status bar (1)
		a.viewport.Width = a.chatWidth()
		a.viewport.Height = a.height - 6
		a.textarea.SetWidth(a.width)
		a.ready = true

		a.updateViewportContent(true)
		cmds = append(cmds, a.renderMissingMarkdown(a.dataModel.Store.Current())...)
		return a, tea.Batch(cmds...)

	case tea.KeyMsg:
		newView, cmd := a.handleKey(msg)
		cmds = append(cmds, cmd)
		return newView, tea.Batch(cmds...)

	case chatReplyMsg:
		newView, cmd := a.handleChatReply(msg)
		cmds = append(cmds, cmd)
		return newView, tea.Batch(cmds...)

	case typewriterTickMsg:
		return a.handleTypewriterTick()

	case markdownRenderedMsg:
		conv := a.dataModel.Store.Get(msg.ConvID)
		if conv != nil && msg.MessageIndex < len(conv.Messages) {
			conv.Messages[msg.MessageIndex].Rendered = msg.Rendered
			if conv.ID == a.dataModel.Store.CurrentID {
				a.updateViewportContent(true)
			}
		}
		return a, tea.Batch(cmds...)

	case recordingStartedMsg:
		if msg.Err != nil {
			// Microphone failure stays invisible: log and remain idle
			a.debugf("[UI] recording failed to start: %v", msg.Err)
			return a, tea.Batch(cmds...)
		}
		a.dataModel.Recording = true
		return a, tea.Batch(cmds...)

	case transcriptionMsg:
		if msg.Err != nil {
			a.debugf("[UI] transcription failed: %v", msg.Err)
			return a, tea.Batch(cmds...)
		}
		// Recognized text replaces the input, it does not append
		if msg.Text != "" {
			a.textarea.SetValue(msg.Text)
		}
		return a, tea.Batch(cmds...)

	case ttsDoneMsg:
		if msg.Err != nil {
			a.debugf("[UI] speech playback ended with error: %v", msg.Err)
		}
		a.speakingIdx = -1
		return a, tea.Batch(cmds...)

	case uploadResultMsg:
		newView, cmd := a.handleUploadResult(msg)
		cmds = append(cmds, cmd)
		return newView, tea.Batch(cmds...)
	}

	a.textarea, cmd = a.textarea.Update(msg)
	cmds = append(cmds, cmd)
	a.viewport, cmd = a.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return a, tea.Batch(cmds...)
}

func (a AppView) handleKey(msg tea.KeyMsg) (AppView, tea.Cmd) {
	if a.filterMode {
		return a.handleFilterKey(msg)
	}
	if a.uploadMode {
		return a.handleUploadKey(msg)
	}

	// Enter sends; while the animator runs the same key is the Stop
	// affordance and cancels instead. Alt+Enter passes through for
	// newlines.
	if msg.Type == tea.KeyEnter && !msg.Alt {
		if a.tw.active {
			a.tw.cancel()
			return a, nil
		}
		return a.handleSend()
	}

	st := a.dataModel.Store

	switch msg.String() {
	case "ctrl+c":
		return a, tea.Quit

	case "alt+n":
		return a.newConversation(model.TemplateEmpty)

	case "alt+o":
		return a.newConversation(model.TemplateOptimizerSetup)

	case "alt+d":
		conv := st.Current()
		if conv == nil {
			return a, nil
		}
		st.Delete(conv.ID)
		a.dataModel.Persist()
		a.transient = nil
		a.updateViewportContent(true)
		return a, tea.Batch(a.renderMissingMarkdown(st.Current())...)

	case "alt+j":
		return a.switchByOffset(1)

	case "alt+k":
		return a.switchByOffset(-1)

	case "alt+c":
		st.KeepContext = !st.KeepContext
		a.dataModel.Persist()
		return a, nil

	case "alt+r":
		if a.dataModel.Recording {
			a.dataModel.Recording = false
			return a, a.dataModel.StopRecording()
		}
		return a, a.dataModel.StartRecording()

	case "alt+t":
		return a.toggleSpeech()

	case "alt+f":
		a.uploadMode = true
		a.uploadInput.Focus()
		return a, textinput.Blink

	case "alt+y":
		a.copyLastReply()
		return a, nil

	case "alt+/":
		a.filterMode = true
		a.filterInput.Focus()
		return a, textinput.Blink

	case "alt+h":
		a.showHelp = !a.showHelp
		return a, nil
	}

	var cmd tea.Cmd
	a.textarea, cmd = a.textarea.Update(msg)
	return a, cmd
}

// handleSend runs one submit: validate, mutate, persist, paint, then
// fire the request.
func (a AppView) handleSend() (AppView, tea.Cmd) {
	text := strings.TrimSpace(a.textarea.Value())
	if text == "" {
		// Empty input is ignored silently
		return a, nil
	}

	st := a.dataModel.Store
	if st.Current() == nil {
		st.Create(model.TemplateEmpty)
		a.dataModel.Persist()
	}
	conv := st.Current()

	st.AppendMessage(conv.ID, model.RoleUser, text)
	a.dataModel.Persist()
	a.textarea.Reset()

	// History and attachments are captured before the request leaves
	history := st.History(text)
	fileIDs := conv.FileIDs()

	a.dataModel.PendingConvID = conv.ID
	a.loadingSpinner = spinner.New()
	a.loadingSpinner.Spinner = spinner.Dot
	a.updateViewportContent(true)

	a.debugf("[UI] sending message (%d history entries, %d file refs)", len(history), len(fileIDs))

	return a, tea.Batch(
		a.dataModel.SendChat(conv.ID, history, fileIDs),
		a.loadingSpinner.Tick,
	)
}

// handleChatReply routes a finished request: a server-rejected send is
// written into the log, a transport failure is painted but never
// persisted, and a reply is appended then handed to the animator.
func (a AppView) handleChatReply(msg chatReplyMsg) (AppView, tea.Cmd) {
	if a.dataModel.PendingConvID == msg.ConvID {
		a.dataModel.PendingConvID = ""
	}

	st := a.dataModel.Store
	conv := st.Get(msg.ConvID)
	if conv == nil {
		a.debugf("[UI] dropping reply for deleted conversation %s", msg.ConvID)
		a.updateViewportContent(true)
		return a, nil
	}

	if msg.Err != nil {
		var remote *api.RemoteError
		if errors.As(msg.Err, &remote) {
			st.AppendMessage(conv.ID, model.RoleAssistant, remote.Message)
			idx := len(conv.Messages) - 1
			conv.Messages[idx].SpeechReady = true
			a.dataModel.Persist()
			a.updateViewportContent(true)
			return a, a.renderMarkdownAsync(conv.ID, idx, remote.Message)
		}

		// Transport failure: the bubble is transient, the persisted log
		// stays untouched
		a.debugf("[UI] chat transport failure: %v", msg.Err)
		if conv.ID == st.CurrentID {
			a.transient = append(a.transient, Message{
				Role:        model.RoleAssistant,
				Content:     "Network error",
				SpeechReady: true,
			})
			a.updateViewportContent(true)
		}
		return a, nil
	}

	st.AppendMessage(conv.ID, model.RoleAssistant, msg.Reply)
	idx := len(conv.Messages) - 1
	a.dataModel.Persist()

	if conv.ID == st.CurrentID && a.tw.start(conv.ID, idx, msg.Reply) {
		a.updateViewportContent(true)
		return a, typewriterTick()
	}

	// Background conversation or animator unavailable: finalize directly
	conv.Messages[idx].SpeechReady = true
	a.updateViewportContent(true)
	return a, a.renderMarkdownAsync(conv.ID, idx, msg.Reply)
}

// handleTypewriterTick advances the animated reveal by one character.
// Finalization - natural or cancelled - always renders the full source
// text and only then attaches the speech affordance.
func (a AppView) handleTypewriterTick() (AppView, tea.Cmd) {
	if !a.tw.active {
		return a, nil
	}

	conv := a.dataModel.Store.Get(a.tw.convID)
	if conv == nil || a.tw.msgIndex >= len(conv.Messages) {
		a.tw.reset()
		a.updateViewportContent(true)
		return a, nil
	}

	if a.tw.finished() {
		full := a.tw.full()
		conv.Messages[a.tw.msgIndex].Rendered = renderMarkdown(full, a.chatWidth())
		conv.Messages[a.tw.msgIndex].SpeechReady = true
		a.tw.reset()
		a.updateViewportContent(true)
		return a, nil
	}

	if a.tw.advance() {
		a.tw.rendered = renderMarkdown(a.tw.prefix(), a.chatWidth())
	}
	a.updateViewportContent(true)
	return a, typewriterTick()
}

func (a AppView) handleUploadResult(msg uploadResultMsg) (AppView, tea.Cmd) {
	st := a.dataModel.Store

	if msg.Err != nil {
		text := "Upload failed: network error"
		var remote *api.RemoteError
		if errors.As(msg.Err, &remote) {
			text = "Upload failed: " + remote.Message
		}
		a.debugf("[UI] upload failed: %v", msg.Err)
		if msg.ConvID == st.CurrentID {
			a.transient = append(a.transient, Message{Role: model.RoleAssistant, Content: text})
			a.updateViewportContent(true)
		}
		return a, nil
	}

	st.AttachFile(msg.ConvID, model.FileRef{ID: msg.FileID, Name: msg.Name})
	a.dataModel.Persist()

	if msg.ConvID == st.CurrentID {
		a.transient = append(a.transient, Message{Role: model.RoleAssistant, Content: "File uploaded successfully!"})
		a.updateViewportContent(true)
	}
	return a, nil
}

func (a AppView) handleFilterKey(msg tea.KeyMsg) (AppView, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.filterMode = false
		a.filterInput.Reset()
		a.filterInput.Blur()
		return a, nil

	case "enter":
		visible := a.visibleConversations()
		a.filterMode = false
		a.filterInput.Reset()
		a.filterInput.Blur()
		if len(visible) > 0 {
			return a.switchConversation(visible[0].ID)
		}
		return a, nil
	}

	var cmd tea.Cmd
	a.filterInput, cmd = a.filterInput.Update(msg)
	return a, cmd
}

func (a AppView) handleUploadKey(msg tea.KeyMsg) (AppView, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.uploadMode = false
		a.uploadInput.Reset()
		a.uploadInput.Blur()
		return a, nil

	case "enter":
		path := strings.TrimSpace(a.uploadInput.Value())
		a.uploadMode = false
		a.uploadInput.Reset()
		a.uploadInput.Blur()
		if path == "" {
			return a, nil
		}
		path = config.ExpandPath(path)

		conv := a.dataModel.Store.Current()
		if conv == nil {
			return a, nil
		}

		a.transient = append(a.transient, Message{
			Role:    model.RoleUser,
			Content: "📎 Uploaded: " + filepath.Base(path),
		})
		a.updateViewportContent(true)
		return a, a.dataModel.UploadFile(conv.ID, path)
	}

	var cmd tea.Cmd
	a.uploadInput, cmd = a.uploadInput.Update(msg)
	return a, cmd
}

func (a AppView) newConversation(t model.Template) (AppView, tea.Cmd) {
	st := a.dataModel.Store
	st.Create(t)
	a.dataModel.Persist()
	a.transient = nil
	a.updateViewportContent(true)
	return a, tea.Batch(a.renderMissingMarkdown(st.Current())...)
}

func (a AppView) switchConversation(id string) (AppView, tea.Cmd) {
	st := a.dataModel.Store
	st.Select(id)
	a.dataModel.Persist()
	a.transient = nil
	a.updateViewportContent(true)
	return a, tea.Batch(a.renderMissingMarkdown(st.Current())...)
}

func (a AppView) switchByOffset(offset int) (AppView, tea.Cmd) {
	st := a.dataModel.Store
	idx := -1
	for i, c := range st.Conversations {
		if c.ID == st.CurrentID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return a, nil
	}

	idx += offset
	if idx < 0 || idx >= len(st.Conversations) {
		return a, nil
	}
	return a.switchConversation(st.Conversations[idx].ID)
}

// toggleSpeech speaks the newest finished assistant message, or stops
// the active playback. Only one playback is ever audible; the player
// silences a previous one before starting the next.
func (a AppView) toggleSpeech() (AppView, tea.Cmd) {
	if a.speakingIdx >= 0 {
		a.dataModel.Player.Stop()
		return a, nil
	}

	conv := a.dataModel.Store.Current()
	if conv == nil {
		return a, nil
	}

	for i := len(conv.Messages) - 1; i >= 0; i-- {
		msg := conv.Messages[i]
		if msg.Role == model.RoleAssistant && msg.SpeechReady {
			a.speakingIdx = i
			return a, a.dataModel.Speak(msg.Content)
		}
	}
	return a, nil
}

func (a *AppView) copyLastReply() {
	conv := a.dataModel.Store.Current()
	if conv == nil {
		return
	}
	for i := len(conv.Messages) - 1; i >= 0; i-- {
		if conv.Messages[i].Role == model.RoleAssistant {
			if err := clipboard.WriteAll(conv.Messages[i].Content); err != nil {
				a.debugf("[UI] clipboard write failed: %v", err)
			}
			return
		}
	}
}
