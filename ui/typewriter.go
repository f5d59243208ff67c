package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const (
	// typeStride is how many revealed characters share one markdown
	// repaint; the final character always repaints.
	typeStride = 5
	// typeDelay separates consecutive reveal steps.
	typeDelay = 12 * time.Millisecond
)

// typewriter performs the animated reveal of one assistant message. It
// has two states, idle and animating, and only one reveal can target a
// bubble at a time - start is a no-op while animating. Cancellation is
// cooperative: a flag polled at step boundaries, so one already
// scheduled repaint may still land, but no further character is
// revealed after it. Cancelling is a fast-path to completion - the full
// text is rendered, never a truncated prefix.
type typewriter struct {
	active    bool
	cancelled bool
	convID    string
	msgIndex  int
	text      []rune
	shown     int
	rendered  string
}

// start begins a reveal. Callable only from idle.
func (t *typewriter) start(convID string, msgIndex int, text string) bool {
	if t.active {
		return false
	}
	t.active = true
	t.cancelled = false
	t.convID = convID
	t.msgIndex = msgIndex
	t.text = []rune(text)
	t.shown = 0
	t.rendered = ""
	return true
}

// cancel requests completion. Observed at the next step boundary.
func (t *typewriter) cancel() {
	if !t.active {
		return
	}
	t.cancelled = true
}

// finished reports whether the next step should finalize instead of
// revealing another character.
func (t *typewriter) finished() bool {
	return t.cancelled || t.shown >= len(t.text)
}

// advance reveals one character and reports whether this step is a
// repaint boundary.
func (t *typewriter) advance() (repaint bool) {
	if t.shown >= len(t.text) {
		return false
	}
	i := t.shown
	t.shown++
	return i%typeStride == 0 || t.shown == len(t.text)
}

// prefix returns the revealed portion of the text.
func (t *typewriter) prefix() string {
	return string(t.text[:t.shown])
}

// full returns the complete source text.
func (t *typewriter) full() string {
	return string(t.text)
}

// reset returns the animator to idle.
func (t *typewriter) reset() {
	t.active = false
	t.cancelled = false
	t.text = nil
	t.shown = 0
	t.rendered = ""
}

func typewriterTick() tea.Cmd {
	return tea.Tick(typeDelay, func(time.Time) tea.Msg {
		return typewriterTickMsg{}
	})
}
