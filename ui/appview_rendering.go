package ui

import (
	"fmt"
	"regexp"
	"strings"

	markdown "github.com/MichaelMure/go-term-markdown"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	gomarkdown "github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/parser"
	"github.com/mattn/go-runewidth"
	"github.com/sahilm/fuzzy"

	"chatterm/config"
	"chatterm/model"
)

// Pre-compiled regex patterns for better performance
var (
	inlineCodeRegex = regexp.MustCompile(`(?s)\x1b\[44;3m(.*?)\x1b\[0m`)
	mdLinkRegex     = regexp.MustCompile(`\[([^\]]+)\]\((https?://[^\)]+)\)`)
	urlRegex        = regexp.MustCompile(`(https?://[^\s]+)`)
)

// renderMarkdown projects assistant content onto the terminal: GitHub
// flavored markdown with code-block highlighting, autolink disabled so
// URLs stay plain text for the terminal emulator to handle.
func renderMarkdown(content string, width int) string {
	if width <= 4 {
		return content
	}

	content = mdLinkRegex.ReplaceAllString(content, "$2")

	ext := markdown.Extensions() &^ parser.Autolink
	p := parser.NewWithExtensions(ext)
	r := markdown.NewRenderer(width-4, 0)
	doc := p.Parse([]byte(content))
	rendered := gomarkdown.Render(doc, r)

	return postProcessMarkdown(string(rendered))
}

func postProcessMarkdown(rendered string) string {
	// Inline code: blue background → red text
	rendered = inlineCodeRegex.ReplaceAllString(rendered, "\x1b[31m$1\x1b[0m")

	// Color plain URLs red, skipping highlighted code lines
	redColor := "\x1b[31m"
	reset := "\x1b[0m"
	lines := strings.Split(rendered, "\n")
	for i, line := range lines {
		if !strings.Contains(line, "┃") {
			lines[i] = urlRegex.ReplaceAllString(line, redColor+"$1"+reset)
		}
	}

	return strings.Join(lines, "\n")
}

// renderMarkdownAsync renders one assistant message off the event loop
// and delivers the result as a message.
func (a AppView) renderMarkdownAsync(convID string, messageIndex int, content string) tea.Cmd {
	width := a.chatWidth()
	return func() tea.Msg {
		return markdownRenderedMsg{
			ConvID:       convID,
			MessageIndex: messageIndex,
			Rendered:     renderMarkdown(content, width),
		}
	}
}

// renderMissingMarkdown queues render commands for every assistant
// message of the conversation that has no cached projection yet.
func (a AppView) renderMissingMarkdown(conv *model.Conversation) []tea.Cmd {
	if conv == nil {
		return nil
	}
	var cmds []tea.Cmd
	for i, msg := range conv.Messages {
		if msg.Role == model.RoleAssistant && msg.Rendered == "" {
			cmds = append(cmds, a.renderMarkdownAsync(conv.ID, i, msg.Content))
		}
	}
	return cmds
}

// formatUserMessage renders user content as literal text behind a
// vertical bar - user input is never interpreted as markup.
func formatUserMessage(role, content string) string {
	greenBold := "\x1b[32;1m"
	reset := "\x1b[0m"
	bar := greenBold + "┃" + reset

	var result strings.Builder
	result.WriteString(fmt.Sprintf("%s %s\n", bar, role))
	for _, line := range strings.Split(content, "\n") {
		result.WriteString(fmt.Sprintf("%s %s\n", bar, line))
	}
	result.WriteString("\n")

	return result.String()
}

// updateViewportContent repaints the current conversation: every stored
// message in order, then any transient rows, then the pending
// placeholder. The animator owns the repaint of the message it targets.
func (a *AppView) updateViewportContent(gotoBottom bool) {
	conv := a.dataModel.Store.Current()
	if conv == nil || (len(conv.Messages) == 0 && len(a.transient) == 0 && a.dataModel.PendingConvID == "") {
		a.viewport.SetContent("No messages yet. Start chatting!")
		return
	}

	var content strings.Builder

	for i, msg := range conv.Messages {
		animating := a.tw.active && a.tw.convID == conv.ID && a.tw.msgIndex == i
		content.WriteString(a.formatMessage(msg, animating))
	}

	for _, msg := range a.transient {
		content.WriteString(a.formatMessage(msg, false))
	}

	if a.dataModel.PendingConvID == conv.ID {
		role := DimStyle.Render("Assistant")
		content.WriteString(fmt.Sprintf("%s\n%s AI is typing…\n\n", role, a.loadingSpinner.View()))
	}

	a.viewport.SetContent(content.String())
	if gotoBottom {
		a.viewport.GotoBottom()
	}
}

func (a *AppView) formatMessage(msg Message, animating bool) string {
	if msg.Role == model.RoleUser {
		return formatUserMessage(UserStyle.Render("You"), msg.Content)
	}

	role := AssistantStyle.Render("Assistant")

	if animating {
		return fmt.Sprintf("%s\n%s▋\n\n", role, a.tw.rendered)
	}

	body := msg.Rendered
	if body == "" {
		body = msg.Content
	}

	speaker := ""
	if msg.SpeechReady {
		speaker = DimStyle.Render(" 🔊")
	}

	return fmt.Sprintf("%s%s\n%s\n\n", role, speaker, body)
}

// renderSidebar projects the conversation list: one entry per
// conversation in store order, the current one highlighted, each
// carrying the delete affordance hint. It holds no state of its own.
func (a AppView) renderSidebar() string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("Conversations"))
	b.WriteString("\n\n")

	width := sidebarWidth - 4

	if a.filterMode {
		b.WriteString(a.filterInput.View())
		b.WriteString("\n\n")
	}

	for _, conv := range a.visibleConversations() {
		title := runewidth.Truncate(conv.Title, width, "…")
		if conv.ID == a.dataModel.Store.CurrentID {
			b.WriteString(SelectedStyle.Render("> " + title))
			b.WriteString(DimStyle.Render(" ✕"))
		} else {
			b.WriteString(SidebarStyle.Render("  " + title))
		}
		b.WriteString("\n")
	}

	return lipglossSidebar(b.String(), a.height-6)
}

// visibleConversations applies the fuzzy title filter when active.
func (a AppView) visibleConversations() []*model.Conversation {
	conversations := a.dataModel.Store.Conversations
	query := strings.TrimSpace(a.filterInput.Value())
	if !a.filterMode || query == "" {
		return conversations
	}

	titles := make([]string, len(conversations))
	for i, c := range conversations {
		titles[i] = c.Title
	}

	matches := fuzzy.Find(query, titles)
	filtered := make([]*model.Conversation, 0, len(matches))
	for _, m := range matches {
		filtered = append(filtered, conversations[m.Index])
	}
	return filtered
}

func lipglossSidebar(content string, height int) string {
	return lipgloss.NewStyle().Width(sidebarWidth).Height(height).Render(content)
}

func (a AppView) debugf(format string, args ...interface{}) {
	if config.DebugLog != nil {
		config.DebugLog.Printf(format, args...)
	}
}
