package model

// ChatReplyMsg carries the outcome of a chat request. ConvID names the
// conversation that issued the send so a reply still lands in the right
// log when the user switched threads mid-flight.
type ChatReplyMsg struct {
	ConvID string
	Reply  string
	Err    error
}

// MarkdownRenderedMsg delivers an asynchronously rendered assistant
// message back to the view.
type MarkdownRenderedMsg struct {
	ConvID       string
	MessageIndex int
	Rendered     string
}

// TypewriterTickMsg drives one step of the animated reveal.
type TypewriterTickMsg struct{}

// RecordingStartedMsg reports whether microphone capture came up.
type RecordingStartedMsg struct {
	Err error
}

// TranscriptionMsg carries the text recognized from a finished recording.
type TranscriptionMsg struct {
	Text string
	Err  error
}

// TTSDoneMsg signals that a playback ended - naturally, by stop, or
// because synthesis failed.
type TTSDoneMsg struct {
	Err error
}

// UploadResultMsg carries the outcome of a file upload.
type UploadResultMsg struct {
	ConvID string
	FileID string
	Name   string
	Err    error
}
