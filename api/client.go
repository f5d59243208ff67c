// Package api implements the HTTP client for the chat backend: chat
// completion, voice transcription, speech synthesis and file upload.
//
// The backend distinguishes two failure shapes and so does this client:
// a completed request with a non-2xx status carries a structured error
// body and is returned as *RemoteError; a request that never completed
// (connection refused, timeout, body read failure) is returned as a
// plain wrapped error. Callers branch on the type to decide whether the
// failure belongs in the conversation log.
package api

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one role/content pair of the outgoing history.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the wire shape of POST /api/chat.
type ChatRequest struct {
	Messages []ChatMessage `json:"messages"`
	Model    string        `json:"model"`
	FileIDs  []string      `json:"fileIds,omitempty"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// RemoteError is a completed request the backend rejected. Message is the
// server-provided text, already suitable for display.
type RemoteError struct {
	Status  int
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("backend error (status %d): %s", e.Status, e.Message)
}

// Client talks to the chat backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
}

func (c *Client) postJSON(ctx context.Context, path string, payload interface{}) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.httpClient.Do(req)
}

// Chat sends the conversation history and returns the assistant reply.
// A non-2xx response decodes into *RemoteError; if the error body is
// malformed the message falls back to a generic one.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (string, error) {
	res, err := c.postJSON(ctx, "/api/chat", req)
	if err != nil {
		return "", fmt.Errorf("chat request failed: %w", err)
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read chat response: %w", err)
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		var errRes errorResponse
		message := "Error from API"
		if err := json.Unmarshal(data, &errRes); err == nil && errRes.Error.Message != "" {
			message = errRes.Error.Message
		}
		return "", &RemoteError{Status: res.StatusCode, Message: message}
	}

	var chatRes chatResponse
	if err := json.Unmarshal(data, &chatRes); err != nil {
		return "", fmt.Errorf("failed to decode chat response: %w", err)
	}

	return chatRes.Reply, nil
}

type transcribeRequest struct {
	Audio string `json:"audio"`
}

type transcribeResponse struct {
	Text string `json:"text"`
}

// Transcribe sends base64-encoded audio and returns the recognized text.
// A response without text returns "" so the caller leaves the input
// field untouched.
func (c *Client) Transcribe(ctx context.Context, audio []byte) (string, error) {
	payload := transcribeRequest{Audio: base64.StdEncoding.EncodeToString(audio)}

	res, err := c.postJSON(ctx, "/api/transcribe", payload)
	if err != nil {
		return "", fmt.Errorf("transcription request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return "", &RemoteError{Status: res.StatusCode, Message: "transcription failed"}
	}

	var transRes transcribeResponse
	if err := json.NewDecoder(res.Body).Decode(&transRes); err != nil {
		return "", fmt.Errorf("failed to decode transcription response: %w", err)
	}

	return transRes.Text, nil
}

type ttsRequest struct {
	Text string `json:"text"`
}

// Synthesize requests spoken audio for the given text and returns the
// raw audio bytes from the response body.
func (c *Client) Synthesize(ctx context.Context, text string) ([]byte, error) {
	res, err := c.postJSON(ctx, "/api/tts", ttsRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("tts request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, &RemoteError{Status: res.StatusCode, Message: "speech synthesis failed"}
	}

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read tts response: %w", err)
	}

	return data, nil
}

type uploadResponse struct {
	OpenAIFileID string `json:"openAIFileId"`
	Error        string `json:"error"`
}

// Upload sends one file as a multipart form. It returns the id issued by
// the backend and the original filename. A response carrying an error
// string comes back as *RemoteError with that string as the message.
func (c *Client) Upload(ctx context.Context, path string) (string, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", "", fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	name := filepath.Base(path)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", name)
	if err != nil {
		return "", "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", "", fmt.Errorf("failed to read file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", "", fmt.Errorf("failed to finalize form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/upload", &buf)
	if err != nil {
		return "", "", fmt.Errorf("failed to build upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	res, err := c.httpClient.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("upload request failed: %w", err)
	}
	defer res.Body.Close()

	var upRes uploadResponse
	if err := json.NewDecoder(res.Body).Decode(&upRes); err != nil {
		return "", "", fmt.Errorf("failed to decode upload response: %w", err)
	}

	if upRes.Error != "" {
		return "", "", &RemoteError{Status: res.StatusCode, Message: upRes.Error}
	}
	if upRes.OpenAIFileID == "" {
		return "", "", fmt.Errorf("upload response missing file id")
	}

	return upRes.OpenAIFileID, name, nil
}
