// Package audio wraps the platform's media tools behind two small
// controllers: a microphone recorder and a playback player. Both spawn
// a subprocess (arecord/sox/ffmpeg for capture, afplay/mpg123/ffplay
// for playback) and keep their audio files in the cache temp directory.
package audio

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sync"
	"time"
)

// Recorder captures microphone audio into a WAV file. It has two
// states, idle and recording, and owns the capture process and its file
// exclusively for the duration of one recording session.
type Recorder struct {
	mu      sync.Mutex
	tempDir string
	cmd     *exec.Cmd
	path    string

	// command builds the capture process; replaceable in tests.
	command func(dest string) (*exec.Cmd, error)
}

func NewRecorder(tempDir string) *Recorder {
	return &Recorder{
		tempDir: tempDir,
		command: captureCommand,
	}
}

func captureCommand(dest string) (*exec.Cmd, error) {
	if path, err := exec.LookPath("arecord"); err == nil {
		return exec.Command(path, "-q", "-f", "cd", "-t", "wav", dest), nil
	}
	if path, err := exec.LookPath("rec"); err == nil {
		return exec.Command(path, "-q", dest), nil
	}
	if path, err := exec.LookPath("ffmpeg"); err == nil {
		if runtime.GOOS == "darwin" {
			return exec.Command(path, "-y", "-loglevel", "quiet", "-f", "avfoundation", "-i", ":0", dest), nil
		}
		return exec.Command(path, "-y", "-loglevel", "quiet", "-f", "alsa", "-i", "default", dest), nil
	}
	return nil, fmt.Errorf("no audio capture tool found (need arecord, rec or ffmpeg)")
}

// Start begins capturing. A failure to locate a tool or to start it
// leaves the recorder idle.
func (r *Recorder) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cmd != nil {
		return fmt.Errorf("already recording")
	}

	if err := os.MkdirAll(r.tempDir, 0700); err != nil {
		return fmt.Errorf("failed to create temp directory: %w", err)
	}

	dest := filepath.Join(r.tempDir, fmt.Sprintf("rec-%d.wav", time.Now().UnixNano()))

	cmd, err := r.command(dest)
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start audio capture: %w", err)
	}

	r.cmd = cmd
	r.path = dest
	return nil
}

// Stop ends the capture, waits for the process to flush the file, and
// returns the recorded bytes. The file and the process are released on
// every path, error ones included.
func (r *Recorder) Stop() ([]byte, error) {
	r.mu.Lock()
	cmd := r.cmd
	path := r.path
	r.cmd = nil
	r.path = ""
	r.mu.Unlock()

	if cmd == nil {
		return nil, fmt.Errorf("not recording")
	}

	defer os.Remove(path)

	// Interrupt lets the tool finalize the WAV header; the exit status
	// of an interrupted recorder is not an error.
	if cmd.Process != nil {
		if err := cmd.Process.Signal(os.Interrupt); err != nil {
			_ = cmd.Process.Kill()
		}
	}
	_ = cmd.Wait()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read recording: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("recording is empty")
	}

	return data, nil
}

// Active reports whether a recording session is in progress.
func (r *Recorder) Active() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cmd != nil
}
