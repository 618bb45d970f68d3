// Package viewer owns the render-loop side of the system: the displayed
// state, the per-tick dispatch poll, and frame advancement.
package viewer

import (
	"io"
	"log/slog"
	"time"

	"github.com/mrowan/lumava/internal/config"
	"github.com/mrowan/lumava/internal/content"
	"github.com/mrowan/lumava/internal/dispatch"
	"github.com/mrowan/lumava/internal/playback"
)

// Loader turns a target path into displayable content.
type Loader interface {
	Load(path string) (content.Content, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(path string) (content.Content, error)

func (f LoaderFunc) Load(path string) (content.Content, error) {
	return f(path)
}

// State is the render loop's exclusively-owned snapshot of what is shown.
// SizedOnce survives resets: only the first content resizes the window.
type State struct {
	Path      string
	Err       string
	Width     int
	Height    int
	SizedOnce bool
}

// Viewer consumes path messages and drives playback. It is owned by the
// foreground thread; only the dispatch queue is shared with the accept loop.
type Viewer struct {
	logger  *slog.Logger
	queue   *dispatch.Queue
	load    Loader
	present Presenter
	window  config.WindowConfig

	machine playback.Machine
	state   State
}

// New constructs a viewer with safe default fallbacks.
func New(
	logger *slog.Logger,
	queue *dispatch.Queue,
	loader Loader,
	presenter Presenter,
	window config.WindowConfig,
) *Viewer {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if loader == nil {
		loader = LoaderFunc(content.Load)
	}
	if presenter == nil {
		presenter = noopPresenter{}
	}

	return &Viewer{
		logger:  logger,
		queue:   queue,
		load:    loader,
		present: presenter,
		window:  window,
	}
}

// State returns the current viewer state snapshot.
func (v *Viewer) State() State {
	return v.state
}

// Mode returns the current playback mode.
func (v *Viewer) Mode() playback.Mode {
	return v.machine.Mode()
}

// FrameIndex returns the current animation frame index.
func (v *Viewer) FrameIndex() int {
	return v.machine.Index()
}

// ShowPath replaces the displayed content with the file at path. All state
// except the one-shot sizing flag is reset before the load, so a failed load
// shows the error, not a stale image.
func (v *Viewer) ShowPath(path string, now time.Time) {
	sized := v.state.SizedOnce
	v.state = State{Path: path, SizedOnce: sized}
	v.machine.Reset()

	c, err := v.load.Load(path)
	if err != nil {
		v.state.Err = err.Error()
		v.present.ShowError(v.state.Err)
		v.present.RequestRepaint()
		v.logger.Warn("load failed", "path", path, "error", err.Error())
		return
	}

	v.state.Width = c.Width
	v.state.Height = c.Height
	v.machine.SetContent(c, now)

	if !v.state.SizedOnce {
		width, height := v.window.InitialSize(c.Width, c.Height)
		v.present.SizeToContent(width, height)
		v.state.SizedOnce = true
	}

	v.presentCurrentFrame()
	v.logger.Info("content loaded",
		"path", path,
		"width", c.Width,
		"height", c.Height,
		"animated", c.Animated(),
		"frames", len(c.Frames),
	)
}

// Tick runs one render-loop iteration: poll the dispatch queue for at most
// one new path, then advance animated playback.
func (v *Viewer) Tick(now time.Time) {
	if path, ok := v.queue.TryReceive(); ok {
		v.ShowPath(path, now)
	}

	if v.machine.Tick(now) {
		v.presentCurrentFrame()
	}
}

func (v *Viewer) presentCurrentFrame() {
	frame, ok := v.machine.Frame()
	if !ok {
		return
	}
	v.present.ShowFrame(frame.Image, v.state.Width, v.state.Height)
	v.present.RequestRepaint()
}
