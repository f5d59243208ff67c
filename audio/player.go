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

type playback struct {
	cmd     *exec.Cmd
	file    string
	stopped bool
}

// Player plays synthesized audio. At most one playback is audible at a
// time: starting a new one stops whatever is still running, so the
// single output resource is always fully released before reassignment.
type Player struct {
	mu      sync.Mutex
	tempDir string
	current *playback

	// command builds the playback process; replaceable in tests.
	command func(file string) (*exec.Cmd, error)
}

func NewPlayer(tempDir string) *Player {
	return &Player{
		tempDir: tempDir,
		command: playbackCommand,
	}
}

func playbackCommand(file string) (*exec.Cmd, error) {
	if runtime.GOOS == "darwin" {
		if path, err := exec.LookPath("afplay"); err == nil {
			return exec.Command(path, file), nil
		}
	}
	if path, err := exec.LookPath("mpg123"); err == nil {
		return exec.Command(path, "-q", file), nil
	}
	if path, err := exec.LookPath("ffplay"); err == nil {
		return exec.Command(path, "-nodisp", "-autoexit", "-loglevel", "quiet", file), nil
	}
	if path, err := exec.LookPath("mpv"); err == nil {
		return exec.Command(path, "--no-video", "--really-quiet", file), nil
	}
	return nil, fmt.Errorf("no audio playback tool found (need afplay, mpg123, ffplay or mpv)")
}

// Play writes the audio to a temp file and blocks until playback ends.
// Any playback still active is stopped first. A playback ended by Stop
// returns nil - being silenced is not a failure.
func (p *Player) Play(data []byte) error {
	p.mu.Lock()

	p.stopLocked()

	if err := os.MkdirAll(p.tempDir, 0700); err != nil {
		p.mu.Unlock()
		return fmt.Errorf("failed to create temp directory: %w", err)
	}

	file := filepath.Join(p.tempDir, fmt.Sprintf("tts-%d.mp3", time.Now().UnixNano()))
	if err := os.WriteFile(file, data, 0600); err != nil {
		p.mu.Unlock()
		return fmt.Errorf("failed to write audio file: %w", err)
	}

	cmd, err := p.command(file)
	if err != nil {
		p.mu.Unlock()
		_ = os.Remove(file)
		return err
	}
	if err := cmd.Start(); err != nil {
		p.mu.Unlock()
		_ = os.Remove(file)
		return fmt.Errorf("failed to start playback: %w", err)
	}

	pb := &playback{cmd: cmd, file: file}
	p.current = pb
	p.mu.Unlock()

	waitErr := cmd.Wait()

	p.mu.Lock()
	stopped := pb.stopped
	if p.current == pb {
		p.current = nil
	}
	p.mu.Unlock()

	_ = os.Remove(file)

	if stopped {
		return nil
	}
	if waitErr != nil {
		return fmt.Errorf("playback failed: %w", waitErr)
	}
	return nil
}

// Stop pauses and resets the active playback, if any.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

func (p *Player) stopLocked() {
	if p.current == nil {
		return
	}
	p.current.stopped = true
	if p.current.cmd.Process != nil {
		_ = p.current.cmd.Process.Kill()
	}
	p.current = nil
}

// Active reports whether a playback is currently audible.
func (p *Player) Active() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current != nil
}
