// Package playback decides when the displayed frame of animated content
// advances.
package playback

import (
	"time"

	"github.com/mrowan/lumava/internal/content"
)

type Mode string

const (
	ModeIdle     Mode = "idle"
	ModeStatic   Mode = "static"
	ModeAnimated Mode = "animated"
)

// Machine tracks the current frame of loaded content against a caller
// supplied clock. It is owned by the render loop and is not safe for
// concurrent use.
type Machine struct {
	mode        Mode
	frames      []content.Frame
	index       int
	lastAdvance time.Time
}

// Mode returns the current playback mode.
func (m *Machine) Mode() Mode {
	if m.mode == "" {
		return ModeIdle
	}
	return m.mode
}

// Reset drops all content and returns the machine to idle.
func (m *Machine) Reset() {
	*m = Machine{mode: ModeIdle}
}

// SetContent installs freshly loaded content, restarting playback from the
// first frame at now.
func (m *Machine) SetContent(c content.Content, now time.Time) {
	if c.Animated() {
		m.mode = ModeAnimated
		m.frames = c.Frames
		m.index = 0
		m.lastAdvance = now
		return
	}

	m.mode = ModeStatic
	m.frames = c.Frames
	m.index = 0
	m.lastAdvance = time.Time{}
}

// Frame returns the frame currently due for display.
func (m *Machine) Frame() (content.Frame, bool) {
	if len(m.frames) == 0 {
		return content.Frame{}, false
	}
	return m.frames[m.index], true
}

// Index returns the current animation frame index.
func (m *Machine) Index() int {
	return m.index
}

// Tick advances animated playback by at most one frame and reports whether
// the displayed frame changed. The advance is clamped to a single step per
// tick: elapsed time beyond the current frame's duration does not skip
// frames, it only makes the next advance due sooner relative to now.
func (m *Machine) Tick(now time.Time) bool {
	if m.mode != ModeAnimated || len(m.frames) == 0 {
		return false
	}

	if now.Sub(m.lastAdvance) < m.frames[m.index].Duration {
		return false
	}

	m.index = (m.index + 1) % len(m.frames)
	m.lastAdvance = now
	return true
}
