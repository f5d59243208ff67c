package audio

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"
)

// fakeCapture writes fixed bytes to the destination and then waits to
// be interrupted, like a real capture tool would. The bytes are written
// before the process starts so an immediate Stop cannot race the write.
func fakeCapture(payload string) func(dest string) (*exec.Cmd, error) {
	return func(dest string) (*exec.Cmd, error) {
		if err := os.WriteFile(dest, []byte(payload), 0600); err != nil {
			return nil, err
		}
		return exec.Command("sleep", "10"), nil
	}
}

func TestRecorderStartStop(t *testing.T) {
	r := NewRecorder(t.TempDir())
	r.command = fakeCapture("RIFF-wav-bytes")

	if r.Active() {
		t.Fatal("recorder should start idle")
	}
	if err := r.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if !r.Active() {
		t.Fatal("recorder should be active after Start")
	}

	data, err := r.Stop()
	if err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if string(data) != "RIFF-wav-bytes" {
		t.Errorf("unexpected recording: %q", data)
	}
	if r.Active() {
		t.Error("recorder should be idle after Stop")
	}
}

func TestRecorderStartWhileRecordingFails(t *testing.T) {
	r := NewRecorder(t.TempDir())
	r.command = fakeCapture("x")

	if err := r.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer r.Stop()

	if err := r.Start(); err == nil {
		t.Error("second Start should be refused while recording")
	}
}

func TestRecorderStopWhileIdleFails(t *testing.T) {
	r := NewRecorder(t.TempDir())

	if _, err := r.Stop(); err == nil {
		t.Error("Stop without a recording should fail")
	}
}

func TestRecorderEmptyRecording(t *testing.T) {
	r := NewRecorder(t.TempDir())
	r.command = fakeCapture("")

	if err := r.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	_, err := r.Stop()
	if err == nil {
		t.Fatal("an empty capture file should be an error")
	}
	if !strings.Contains(err.Error(), "empty") {
		t.Errorf("unexpected error: %v", err)
	}
	if r.Active() {
		t.Error("recorder should be idle after a failed Stop")
	}
}

func TestRecorderToolLookupFailureLeavesIdle(t *testing.T) {
	r := NewRecorder(t.TempDir())
	r.command = func(dest string) (*exec.Cmd, error) {
		return nil, fmt.Errorf("no audio capture tool found")
	}

	if err := r.Start(); err == nil {
		t.Fatal("Start should surface the lookup failure")
	}
	if r.Active() {
		t.Error("recorder should stay idle when no tool is available")
	}
}
