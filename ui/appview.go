package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	appmodel "chatterm/model"
)

const sidebarWidth = 28

// AppView is the Bubble Tea model for the whole session: it projects
// the conversation store, dispatches every user action, and routes the
// effect messages back into the store and the animator.
type AppView struct {
	// Reference to core data model
	dataModel *appmodel.Model

	// UI components
	viewport viewport.Model
	textarea textarea.Model

	// Window state
	width  int
	height int
	ready  bool

	// Typewriter animator (owns the Send/Stop affordance mode)
	tw typewriter

	// Rows painted but never persisted: the transport-failure bubble and
	// upload notices. Cleared whenever the visible conversation changes.
	transient []Message

	// Pending placeholder spinner
	loadingSpinner spinner.Model

	// Sidebar fuzzy filter
	filterMode  bool
	filterInput textinput.Model

	// Upload path prompt
	uploadMode  bool
	uploadInput textinput.Model

	// Index of the message being spoken, -1 when silent
	speakingIdx int

	showHelp bool
}

// NewAppView wires the view around an initialized data model.
func NewAppView(dataModel *appmodel.Model) AppView {
	ta := textarea.New()
	ta.Placeholder = "Type a message..."
	ta.Prompt = "┃ "
	ta.CharLimit = 0
	ta.SetHeight(3)
	ta.ShowLineNumbers = false
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.Focus()

	filter := textinput.New()
	filter.Placeholder = "filter..."
	filter.CharLimit = 64

	upload := textinput.New()
	upload.Placeholder = "path to file..."
	upload.CharLimit = 512

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return AppView{
		dataModel:      dataModel,
		textarea:       ta,
		filterInput:    filter,
		uploadInput:    upload,
		loadingSpinner: sp,
		speakingIdx:    -1,
	}
}

func (a AppView) Init() tea.Cmd {
	return textarea.Blink
}

func (a AppView) View() string {
	if !a.ready {
		return "Loading chatterm..."
	}

	title := "New chat"
	if conv := a.dataModel.Store.Current(); conv != nil {
		title = conv.Title
	}

	header := TitleStyle.Render(title)
	separator := DimStyle.Render(strings.Repeat("─", a.width))

	body := lipgloss.JoinHorizontal(
		lipgloss.Top,
		a.renderSidebar(),
		DimStyle.Render(strings.Repeat("│\n", max(a.viewport.Height, 1))),
		a.viewport.View(),
	)

	var view strings.Builder
	view.WriteString(header)
	view.WriteString("\n")
	view.WriteString(separator)
	view.WriteString("\n")
	view.WriteString(body)
	view.WriteString("\n")
	view.WriteString(a.textarea.View())
	view.WriteString("\n")
	view.WriteString(a.statusBar())

	return view.String()
}

func (a AppView) statusBar() string {
	var left []string

	left = append(left, a.dataModel.Config.DefaultModel)

	if a.dataModel.Store.KeepContext {
		left = append(left, "context:on")
	} else {
		left = append(left, "context:off")
	}

	if a.dataModel.Recording {
		left = append(left, RecordingStyle.Render("● rec"))
	}
	if a.speakingIdx >= 0 {
		left = append(left, SpeakingStyle.Render("♪ speaking"))
	}

	sendKey := "Send"
	if a.tw.active {
		sendKey = "Stop"
	}

	var right string
	if a.uploadMode {
		right = "attach: " + a.uploadInput.View()
	} else if a.showHelp {
		right = FormatFooter(
			"enter", sendKey,
			"alt+n", "New",
			"alt+o", "Optimizer",
			"alt+d", "Delete",
			"alt+j/k", "Switch",
			"alt+r", "Record",
			"alt+t", "Speak",
			"alt+f", "Attach",
			"alt+c", "Context",
			"alt+y", "Copy",
			"alt+/", "Filter",
			"ctrl+c", "Quit",
		)
	} else {
		right = FormatFooter("enter", sendKey, "alt+h", "Help")
	}

	return StatusStyle.Render(strings.Join(left, "  ")) + "  " + right
}

// chatWidth is the width available to the message viewport.
func (a AppView) chatWidth() int {
	w := a.width - sidebarWidth - 1
	if w < 20 {
		w = 20
	}
	return w
}

