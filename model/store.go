package model

import (
	"chatterm/api"
	"chatterm/storage"
)

// Store is the in-memory source of truth for all conversations. It is
// the only writer of the conversation sequence; the persistence adapter
// mirrors it and the view projects it. Conversations are ordered
// most-recent-first, and whenever the sequence is non-empty exactly one
// conversation is current.
type Store struct {
	Conversations []*Conversation
	CurrentID     string
	KeepContext   bool
}

// NewStore rebuilds the store from a persisted snapshot. The current id
// is re-derived: an unknown or empty id resolves to the head of the
// sequence so the selection invariant holds from the first frame.
func NewStore(snapshot storage.Snapshot) *Store {
	s := &Store{
		KeepContext: snapshot.KeepContext,
	}

	for _, pc := range snapshot.Conversations {
		conv := &Conversation{
			ID:        pc.ID,
			Title:     pc.Title,
			CreatedAt: pc.CreatedAt,
			Messages:  make([]Message, 0, len(pc.Messages)),
			Files:     make([]FileRef, 0, len(pc.Files)),
		}
		for _, pm := range pc.Messages {
			conv.Messages = append(conv.Messages, Message{
				Role:    pm.Role,
				Content: pm.Content,
				// Persisted assistant text is final; the speech
				// affordance may target it right away.
				SpeechReady: pm.Role == RoleAssistant,
			})
		}
		for _, pf := range pc.Files {
			conv.Files = append(conv.Files, FileRef{ID: pf.ID, Name: pf.Name})
		}
		s.Conversations = append(s.Conversations, conv)
	}

	s.CurrentID = snapshot.CurrentConversationID
	if s.Get(s.CurrentID) == nil {
		s.CurrentID = ""
		if len(s.Conversations) > 0 {
			s.CurrentID = s.Conversations[0].ID
		}
	}

	return s
}

// Create inserts a new conversation at the head of the sequence and
// makes it current.
func (s *Store) Create(t Template) *Conversation {
	conv := newConversation(t)
	s.Conversations = append([]*Conversation{conv}, s.Conversations...)
	s.CurrentID = conv.ID
	return conv
}

// Select makes the given conversation current. Unknown ids are ignored.
func (s *Store) Select(id string) {
	if s.Get(id) == nil {
		return
	}
	s.CurrentID = id
}

// Delete removes a conversation. If it was current, the head of the
// remaining sequence takes over; deleting the last conversation creates
// a fresh empty one so the store never ends up with zero conversations.
func (s *Store) Delete(id string) {
	idx := -1
	for i, c := range s.Conversations {
		if c.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return
	}

	s.Conversations = append(s.Conversations[:idx], s.Conversations[idx+1:]...)

	if s.CurrentID == id {
		if len(s.Conversations) == 0 {
			s.Create(TemplateEmpty)
			return
		}
		s.CurrentID = s.Conversations[0].ID
	}
}

// Get returns the conversation with the given id, or nil.
func (s *Store) Get(id string) *Conversation {
	for _, c := range s.Conversations {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// Current returns the current conversation, or nil when the store is empty.
func (s *Store) Current() *Conversation {
	return s.Get(s.CurrentID)
}

// AppendMessage pushes a message onto a conversation's log. The first
// user message of an otherwise empty conversation also derives the title.
func (s *Store) AppendMessage(convID, role, content string) {
	conv := s.Get(convID)
	if conv == nil {
		return
	}

	if len(conv.Messages) == 0 && role == RoleUser {
		conv.Title = DeriveTitle(content)
	}

	conv.Messages = append(conv.Messages, Message{Role: role, Content: content})
}

// AttachFile appends a file reference to a conversation. Files are never
// removed.
func (s *Store) AttachFile(convID string, ref FileRef) {
	conv := s.Get(convID)
	if conv == nil {
		return
	}
	conv.Files = append(conv.Files, ref)
}

// History builds the outgoing message history for a send of text. With
// KeepContext enabled the whole log of the current conversation goes out
// (the just-appended user message included); disabled, only the new
// message is sent even though prior turns stay visible locally.
func (s *Store) History(text string) []api.ChatMessage {
	if !s.KeepContext {
		return []api.ChatMessage{{Role: api.RoleUser, Content: text}}
	}

	conv := s.Current()
	if conv == nil {
		return []api.ChatMessage{{Role: api.RoleUser, Content: text}}
	}

	history := make([]api.ChatMessage, 0, len(conv.Messages))
	for _, m := range conv.Messages {
		history = append(history, api.ChatMessage{Role: m.Role, Content: m.Content})
	}
	return history
}

// Snapshot projects the store into its persisted form. Rendered caches
// and affordance flags stay behind.
func (s *Store) Snapshot() storage.Snapshot {
	snapshot := storage.Snapshot{
		Version:               storage.SnapshotVersion,
		Conversations:         make([]storage.Conversation, 0, len(s.Conversations)),
		CurrentConversationID: s.CurrentID,
		KeepContext:           s.KeepContext,
	}

	for _, c := range s.Conversations {
		pc := storage.Conversation{
			ID:        c.ID,
			Title:     c.Title,
			CreatedAt: c.CreatedAt,
			Messages:  make([]storage.Message, 0, len(c.Messages)),
			Files:     make([]storage.FileRef, 0, len(c.Files)),
		}
		for _, m := range c.Messages {
			pc.Messages = append(pc.Messages, storage.Message{Role: m.Role, Content: m.Content})
		}
		for _, f := range c.Files {
			pc.Files = append(pc.Files, storage.FileRef{ID: f.ID, Name: f.Name})
		}
		snapshot.Conversations = append(snapshot.Conversations, pc)
	}

	return snapshot
}
