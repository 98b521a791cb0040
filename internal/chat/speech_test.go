package chat

import (
	"errors"
	"testing"
)

// fakePlayback records Speak and Cancel calls.
type fakePlayback struct {
	spoken    []string
	cancelled int
}

func (f *fakePlayback) Speak(text string) error { f.spoken = append(f.spoken, text); return nil }
func (f *fakePlayback) Cancel()                 { f.cancelled++ }
func (f *fakePlayback) Supported() bool         { return true }

type fakeCapture struct {
	started int
	stopped int
	result  string
}

func (f *fakeCapture) Start(onResult func(string)) error {
	f.started++
	if f.result != "" {
		onResult(f.result)
	}
	return nil
}
func (f *fakeCapture) Stop()           { f.stopped++ }
func (f *fakeCapture) Supported() bool { return true }

func TestPlaybackLastRequestWins(t *testing.T) {
	fake := &fakePlayback{}
	ctrl := NewPlaybackController(fake)

	if err := ctrl.Play("first"); err != nil {
		t.Fatalf("Play: %v", err)
	}
	if fake.cancelled != 0 {
		t.Errorf("first Play cancelled %d utterances, want 0", fake.cancelled)
	}
	if err := ctrl.Play("second"); err != nil {
		t.Fatalf("Play: %v", err)
	}
	if fake.cancelled != 1 {
		t.Errorf("second Play cancelled %d utterances, want 1", fake.cancelled)
	}
	if len(fake.spoken) != 2 || fake.spoken[1] != "second" {
		t.Errorf("spoken = %v", fake.spoken)
	}
	if !ctrl.Playing() {
		t.Error("controller not playing after Play")
	}

	ctrl.Stop()
	if fake.cancelled != 2 {
		t.Errorf("Stop cancelled %d, want 2 total", fake.cancelled)
	}
	if ctrl.Playing() {
		t.Error("controller still playing after Stop")
	}

	// Stop when idle is a no-op.
	ctrl.Stop()
	if fake.cancelled != 2 {
		t.Errorf("idle Stop cancelled %d, want 2 total", fake.cancelled)
	}
}

func TestUnsupportedPlayback(t *testing.T) {
	ctrl := NewPlaybackController(nil)
	if err := ctrl.Play("anything"); !errors.Is(err, ErrUnsupportedCapability) {
		t.Fatalf("err = %v, want ErrUnsupportedCapability", err)
	}
	if ctrl.Playing() {
		t.Error("unsupported controller reports playing")
	}
	// Stop must not panic without a backend.
	ctrl.Stop()
}

func TestCaptureToggle(t *testing.T) {
	fake := &fakeCapture{result: "what is gravity"}
	ctrl := NewCaptureController(fake)

	var draft string
	if err := ctrl.Toggle(func(text string) { draft = text }); err != nil {
		t.Fatalf("Toggle on: %v", err)
	}
	if !ctrl.Active() {
		t.Error("capture not active after toggle on")
	}
	if draft != "what is gravity" {
		t.Errorf("draft = %q, recognition result not delivered", draft)
	}

	if err := ctrl.Toggle(nil); err != nil {
		t.Fatalf("Toggle off: %v", err)
	}
	if ctrl.Active() {
		t.Error("capture still active after toggle off")
	}
	if fake.started != 1 || fake.stopped != 1 {
		t.Errorf("started=%d stopped=%d, want 1/1", fake.started, fake.stopped)
	}
}

func TestUnsupportedCapture(t *testing.T) {
	ctrl := NewCaptureController(nil)
	if err := ctrl.Toggle(func(string) {}); !errors.Is(err, ErrUnsupportedCapability) {
		t.Fatalf("err = %v, want ErrUnsupportedCapability", err)
	}
	if ctrl.Active() {
		t.Error("unsupported capture reports active")
	}
}
