package model

import (
	"strings"
	"testing"

	"chatterm/storage"
)

func TestNewStoreDerivesCurrentID(t *testing.T) {
	tests := []struct {
		name     string
		snapshot storage.Snapshot
		want     string
	}{
		{
			name: "persisted id is kept when it exists",
			snapshot: storage.Snapshot{
				Conversations: []storage.Conversation{
					{ID: "a"}, {ID: "b"},
				},
				CurrentConversationID: "b",
			},
			want: "b",
		},
		{
			name: "unknown id falls back to the head",
			snapshot: storage.Snapshot{
				Conversations: []storage.Conversation{
					{ID: "a"}, {ID: "b"},
				},
				CurrentConversationID: "gone",
			},
			want: "a",
		},
		{
			name: "empty id falls back to the head",
			snapshot: storage.Snapshot{
				Conversations: []storage.Conversation{{ID: "a"}},
			},
			want: "a",
		},
		{
			name:     "empty store has no current",
			snapshot: storage.Snapshot{CurrentConversationID: "x"},
			want:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore(tt.snapshot)
			if s.CurrentID != tt.want {
				t.Errorf("expected current %q, got %q", tt.want, s.CurrentID)
			}
		})
	}
}

func TestNewStoreMarksRestoredAssistantMessagesSpeechReady(t *testing.T) {
	s := NewStore(storage.Snapshot{
		Conversations: []storage.Conversation{
			{
				ID: "a",
				Messages: []storage.Message{
					{Role: RoleUser, Content: "hi"},
					{Role: RoleAssistant, Content: "hello"},
				},
			},
		},
	})

	conv := s.Get("a")
	if conv.Messages[0].SpeechReady {
		t.Error("user message should not be speech ready")
	}
	if !conv.Messages[1].SpeechReady {
		t.Error("restored assistant message should be speech ready")
	}
}

func TestCreateInsertsAtHeadAndSelects(t *testing.T) {
	s := NewStore(storage.Snapshot{})

	first := s.Create(TemplateEmpty)
	second := s.Create(TemplateEmpty)

	if len(s.Conversations) != 2 {
		t.Fatalf("expected 2 conversations, got %d", len(s.Conversations))
	}
	if s.Conversations[0].ID != second.ID {
		t.Error("newest conversation should be at the head")
	}
	if s.Conversations[1].ID != first.ID {
		t.Error("older conversation should have shifted down")
	}
	if s.CurrentID != second.ID {
		t.Error("newly created conversation should be current")
	}
	if second.Title != "New chat" {
		t.Errorf("expected placeholder title, got %q", second.Title)
	}
}

func TestCreateOptimizerTemplateSeedsAssistantMessage(t *testing.T) {
	s := NewStore(storage.Snapshot{})

	conv := s.Create(TemplateOptimizerSetup)

	if conv.Title != "Optimizer Setup" {
		t.Errorf("expected template title, got %q", conv.Title)
	}
	if len(conv.Messages) != 1 {
		t.Fatalf("expected 1 seeded message, got %d", len(conv.Messages))
	}
	seed := conv.Messages[0]
	if seed.Role != RoleAssistant {
		t.Errorf("seed should be an assistant message, got %q", seed.Role)
	}
	if !strings.Contains(seed.Content, "factor based or sub-asset based") {
		t.Errorf("unexpected seed content: %q", seed.Content)
	}
	if !seed.SpeechReady {
		t.Error("seeded assistant message should be speech ready")
	}
}

func TestSelectIgnoresUnknownID(t *testing.T) {
	s := NewStore(storage.Snapshot{})
	conv := s.Create(TemplateEmpty)

	s.Select("nope")

	if s.CurrentID != conv.ID {
		t.Errorf("selection moved to %q on an unknown id", s.CurrentID)
	}
}

func TestDelete(t *testing.T) {
	t.Run("deleting current selects the remaining head", func(t *testing.T) {
		s := NewStore(storage.Snapshot{})
		older := s.Create(TemplateEmpty)
		newest := s.Create(TemplateEmpty)

		s.Delete(newest.ID)

		if len(s.Conversations) != 1 {
			t.Fatalf("expected 1 conversation, got %d", len(s.Conversations))
		}
		if s.CurrentID != older.ID {
			t.Errorf("expected %q current, got %q", older.ID, s.CurrentID)
		}
	})

	t.Run("deleting a background conversation keeps the selection", func(t *testing.T) {
		s := NewStore(storage.Snapshot{})
		older := s.Create(TemplateEmpty)
		newest := s.Create(TemplateEmpty)

		s.Delete(older.ID)

		if s.CurrentID != newest.ID {
			t.Errorf("selection should be untouched, got %q", s.CurrentID)
		}
	})

	t.Run("deleting the last conversation creates a fresh one", func(t *testing.T) {
		s := NewStore(storage.Snapshot{})
		only := s.Create(TemplateEmpty)

		s.Delete(only.ID)

		if len(s.Conversations) != 1 {
			t.Fatalf("expected a replacement conversation, got %d", len(s.Conversations))
		}
		replacement := s.Conversations[0]
		if replacement.ID == only.ID {
			t.Error("replacement should be a new conversation")
		}
		if s.CurrentID != replacement.ID {
			t.Error("replacement should be current")
		}
		if len(replacement.Messages) != 0 {
			t.Error("replacement should start empty")
		}
	})

	t.Run("unknown id is a no-op", func(t *testing.T) {
		s := NewStore(storage.Snapshot{})
		s.Create(TemplateEmpty)

		s.Delete("nope")

		if len(s.Conversations) != 1 {
			t.Errorf("expected 1 conversation, got %d", len(s.Conversations))
		}
	})
}

func TestAppendMessageDerivesTitleFromFirstUserMessage(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "short message used verbatim",
			content: "hello there",
			want:    "hello there",
		},
		{
			name:    "exactly thirty characters keeps no ellipsis",
			content: strings.Repeat("a", 30),
			want:    strings.Repeat("a", 30),
		},
		{
			name:    "long message truncated with ellipsis",
			content: strings.Repeat("x", 48),
			want:    strings.Repeat("x", 30) + "...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore(storage.Snapshot{})
			conv := s.Create(TemplateEmpty)

			s.AppendMessage(conv.ID, RoleUser, tt.content)

			if conv.Title != tt.want {
				t.Errorf("expected title %q, got %q", tt.want, conv.Title)
			}
		})
	}
}

func TestAppendMessageTitleRules(t *testing.T) {
	t.Run("second message does not retitle", func(t *testing.T) {
		s := NewStore(storage.Snapshot{})
		conv := s.Create(TemplateEmpty)

		s.AppendMessage(conv.ID, RoleUser, "first")
		s.AppendMessage(conv.ID, RoleUser, "second")

		if conv.Title != "first" {
			t.Errorf("title should stay %q, got %q", "first", conv.Title)
		}
	})

	t.Run("seeded template keeps its title", func(t *testing.T) {
		s := NewStore(storage.Snapshot{})
		conv := s.Create(TemplateOptimizerSetup)

		s.AppendMessage(conv.ID, RoleUser, "factor based please")

		if conv.Title != "Optimizer Setup" {
			t.Errorf("seeded title should survive, got %q", conv.Title)
		}
	})

	t.Run("assistant message never titles", func(t *testing.T) {
		s := NewStore(storage.Snapshot{})
		conv := s.Create(TemplateEmpty)

		s.AppendMessage(conv.ID, RoleAssistant, "greetings")

		if conv.Title != "New chat" {
			t.Errorf("assistant message should not retitle, got %q", conv.Title)
		}
	})
}

func TestHistory(t *testing.T) {
	t.Run("keep context sends the whole log", func(t *testing.T) {
		s := NewStore(storage.Snapshot{})
		s.KeepContext = true
		conv := s.Create(TemplateEmpty)
		s.AppendMessage(conv.ID, RoleUser, "hi")
		s.AppendMessage(conv.ID, RoleAssistant, "hello")
		s.AppendMessage(conv.ID, RoleUser, "bye")

		history := s.History("bye")

		if len(history) != 3 {
			t.Fatalf("expected 3 history entries, got %d", len(history))
		}
		if history[2].Role != RoleUser || history[2].Content != "bye" {
			t.Errorf("history should end with the new message, got %+v", history[2])
		}
	})

	t.Run("without context only the new message leaves", func(t *testing.T) {
		s := NewStore(storage.Snapshot{})
		s.KeepContext = false
		conv := s.Create(TemplateEmpty)
		s.AppendMessage(conv.ID, RoleUser, "hi")
		s.AppendMessage(conv.ID, RoleAssistant, "hello")
		s.AppendMessage(conv.ID, RoleUser, "bye")

		history := s.History("bye")

		if len(history) != 1 {
			t.Fatalf("expected a single history entry, got %d", len(history))
		}
		if history[0].Role != RoleUser || history[0].Content != "bye" {
			t.Errorf("unexpected history entry: %+v", history[0])
		}
		// The local log keeps every turn regardless
		if len(conv.Messages) != 3 {
			t.Errorf("local log should be untouched, got %d messages", len(conv.Messages))
		}
	})
}

func TestSnapshotProjection(t *testing.T) {
	s := NewStore(storage.Snapshot{})
	s.KeepContext = false
	conv := s.Create(TemplateEmpty)
	s.AppendMessage(conv.ID, RoleUser, "hi")
	s.AppendMessage(conv.ID, RoleAssistant, "hello")
	conv.Messages[1].Rendered = "styled terminal output"
	conv.Messages[1].SpeechReady = true
	s.AttachFile(conv.ID, FileRef{ID: "f1", Name: "notes.txt"})

	snapshot := s.Snapshot()

	if snapshot.Version != storage.SnapshotVersion {
		t.Errorf("expected version %d, got %d", storage.SnapshotVersion, snapshot.Version)
	}
	if snapshot.CurrentConversationID != conv.ID {
		t.Errorf("expected current %q, got %q", conv.ID, snapshot.CurrentConversationID)
	}
	if snapshot.KeepContext {
		t.Error("keepContext should project as false")
	}
	if len(snapshot.Conversations) != 1 {
		t.Fatalf("expected 1 conversation, got %d", len(snapshot.Conversations))
	}
	pc := snapshot.Conversations[0]
	if len(pc.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(pc.Messages))
	}
	if pc.Messages[1].Content != "hello" {
		t.Errorf("unexpected persisted content: %q", pc.Messages[1].Content)
	}
	if len(pc.Files) != 1 || pc.Files[0].ID != "f1" {
		t.Errorf("unexpected persisted files: %+v", pc.Files)
	}
}

func TestFileIDs(t *testing.T) {
	s := NewStore(storage.Snapshot{})
	conv := s.Create(TemplateEmpty)

	if ids := conv.FileIDs(); ids != nil {
		t.Errorf("expected nil for no files, got %v", ids)
	}

	s.AttachFile(conv.ID, FileRef{ID: "f1", Name: "a.txt"})
	s.AttachFile(conv.ID, FileRef{ID: "f2", Name: "b.txt"})

	ids := conv.FileIDs()
	if len(ids) != 2 || ids[0] != "f1" || ids[1] != "f2" {
		t.Errorf("unexpected file ids: %v", ids)
	}
}
