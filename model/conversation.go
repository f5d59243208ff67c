package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// titleLimit is the number of characters of the first user message used
// as a conversation title before an ellipsis is appended.
const titleLimit = 30

// Message is one chat message held in memory. Rendered caches the
// terminal markdown projection of assistant content; SpeechReady marks
// that the text is final and the speech affordance may target it.
// Neither cache field is persisted.
type Message struct {
	Role        string
	Content     string
	Rendered    string
	SpeechReady bool
}

// FileRef records a file accepted by the upload backend.
type FileRef struct {
	ID   string
	Name string
}

// Conversation is one titled thread of messages and attached files.
// ID is immutable once created.
type Conversation struct {
	ID        string
	Title     string
	CreatedAt time.Time
	Messages  []Message
	Files     []FileRef
}

// Template selects the seed content of a new conversation. The set is
// closed: adding a template means adding a constant and a case below.
type Template int

const (
	TemplateEmpty Template = iota
	TemplateOptimizerSetup
)

func newConversation(t Template) *Conversation {
	conv := &Conversation{
		ID:        uuid.New().String(),
		Title:     "New chat",
		CreatedAt: time.Now(),
		Messages:  []Message{},
		Files:     []FileRef{},
	}

	switch t {
	case TemplateOptimizerSetup:
		conv.Title = "Optimizer Setup"
		conv.Messages = append(conv.Messages, Message{
			Role:        RoleAssistant,
			Content:     "Do you want factor based or sub-asset based optimizer ?",
			SpeechReady: true,
		})
	}

	return conv
}

// DeriveTitle builds a conversation title from its first user message:
// the first 30 characters, with an ellipsis only when truncation occurred.
func DeriveTitle(content string) string {
	runes := []rune(content)
	if len(runes) <= titleLimit {
		return content
	}
	return string(runes[:titleLimit]) + "..."
}

// FileIDs returns the ids of all attached files, nil when there are none.
func (c *Conversation) FileIDs() []string {
	if len(c.Files) == 0 {
		return nil
	}
	ids := make([]string, 0, len(c.Files))
	for _, f := range c.Files {
		ids = append(ids, f.ID)
	}
	return ids
}
