package chat

import (
	"errors"
	"sync"
)

// ErrUnsupportedCapability is returned when speech capture or playback is
// requested on a platform that lacks the relevant API.
var ErrUnsupportedCapability = errors.New("speech capability not supported on this platform")

// SpeechCapture converts microphone input to text. A completed recognition
// result is delivered to the callback passed to Start; it replaces the draft
// input, it is never auto-submitted.
type SpeechCapture interface {
	Start(onResult func(text string)) error
	Stop()
	Supported() bool
}

// SpeechPlayback speaks a piece of text aloud. At most one utterance is
// active at a time.
type SpeechPlayback interface {
	Speak(text string) error
	Cancel()
	Supported() bool
}

// UnsupportedCapture is the SpeechCapture used where no speech-to-text API
// exists. Start always fails with ErrUnsupportedCapability.
type UnsupportedCapture struct{}

func (UnsupportedCapture) Start(func(string)) error { return ErrUnsupportedCapability }
func (UnsupportedCapture) Stop()                    {}
func (UnsupportedCapture) Supported() bool          { return false }

// UnsupportedPlayback is the SpeechPlayback used where no text-to-speech API
// exists. Speak always fails with ErrUnsupportedCapability.
type UnsupportedPlayback struct{}

func (UnsupportedPlayback) Speak(string) error { return ErrUnsupportedCapability }
func (UnsupportedPlayback) Cancel()            {}
func (UnsupportedPlayback) Supported() bool    { return false }

// CaptureController toggles microphone capture and tracks whether it is
// active. Toggling on an unsupported platform reports the error and leaves
// the controller off.
type CaptureController struct {
	mu      sync.Mutex
	capture SpeechCapture
	active  bool
}

// NewCaptureController wraps the given capture capability. A nil capture is
// treated as unsupported.
func NewCaptureController(capture SpeechCapture) *CaptureController {
	if capture == nil {
		capture = UnsupportedCapture{}
	}
	return &CaptureController{capture: capture}
}

// Toggle starts capture if idle and stops it if active.
func (c *CaptureController) Toggle(onResult func(text string)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.capture.Supported() {
		return ErrUnsupportedCapability
	}
	if c.active {
		c.capture.Stop()
		c.active = false
		return nil
	}
	if err := c.capture.Start(onResult); err != nil {
		return err
	}
	c.active = true
	return nil
}

// Active reports whether capture is currently running.
func (c *CaptureController) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// PlaybackController enforces the last-request-wins playback policy: starting
// a new utterance always cancels the prior one first, and stopping is always
// available.
type PlaybackController struct {
	mu       sync.Mutex
	playback SpeechPlayback
	playing  bool
}

// NewPlaybackController wraps the given playback capability. A nil playback
// is treated as unsupported.
func NewPlaybackController(playback SpeechPlayback) *PlaybackController {
	if playback == nil {
		playback = UnsupportedPlayback{}
	}
	return &PlaybackController{playback: playback}
}

// Play speaks text, cancelling any utterance already in flight.
func (p *PlaybackController) Play(text string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.playback.Supported() {
		return ErrUnsupportedCapability
	}
	if p.playing {
		p.playback.Cancel()
	}
	if err := p.playback.Speak(text); err != nil {
		p.playing = false
		return err
	}
	p.playing = true
	return nil
}

// Stop cancels any in-flight utterance.
func (p *PlaybackController) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.playing {
		p.playback.Cancel()
		p.playing = false
	}
}

// Playing reports whether an utterance is in flight.
func (p *PlaybackController) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}
