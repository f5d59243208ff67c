package ui

import (
	"chatterm/model"
)

// Message type aliases - the concrete types live in the model package
type Message = model.Message

type chatReplyMsg = model.ChatReplyMsg
type markdownRenderedMsg = model.MarkdownRenderedMsg
type typewriterTickMsg = model.TypewriterTickMsg
type recordingStartedMsg = model.RecordingStartedMsg
type transcriptionMsg = model.TranscriptionMsg
type ttsDoneMsg = model.TTSDoneMsg
type uploadResultMsg = model.UploadResultMsg
