// Package config materializes the runtime tunables for the viewer process.
package config

import (
	"strings"
	"time"

	"github.com/mrowan/lumava/internal/ipc"
)

// Config is the fully materialized runtime configuration.
type Config struct {
	SocketPath     string
	DeliverTimeout time.Duration
	ProbeTimeout   time.Duration
	TickInterval   time.Duration
	Window         WindowConfig
}

// WindowConfig controls first-content window sizing hints handed to the
// presenter.
type WindowConfig struct {
	MaxInitialWidth  int
	MaxInitialHeight int
	PadX             int
	PadY             int
	FallbackWidth    int
	FallbackHeight   int
}

// Default returns the canonical runtime configuration.
func Default() Config {
	return Config{
		SocketPath:     ipc.SocketPath(),
		DeliverTimeout: 500 * time.Millisecond,
		ProbeTimeout:   180 * time.Millisecond,
		TickInterval:   16 * time.Millisecond,
		Window: WindowConfig{
			MaxInitialWidth:  1200,
			MaxInitialHeight: 800,
			PadX:             40,
			PadY:             60,
			FallbackWidth:    800,
			FallbackHeight:   600,
		},
	}
}

// Load resolves configuration with an optional socket-path override from the
// command line. The LUMAVA_SOCKET env override is applied inside the
// endpoint resolver.
func Load(socketOverride string) Config {
	cfg := Default()
	if override := strings.TrimSpace(socketOverride); override != "" {
		cfg.SocketPath = override
	}
	return cfg
}

// InitialSize computes the padded, capped first-window size for content of
// the given natural dimensions.
func (w WindowConfig) InitialSize(width, height int) (int, int) {
	if width <= 0 || height <= 0 {
		return w.FallbackWidth, w.FallbackHeight
	}

	sizedW := width + w.PadX
	if sizedW > w.MaxInitialWidth {
		sizedW = w.MaxInitialWidth
	}
	sizedH := height + w.PadY
	if sizedH > w.MaxInitialHeight {
		sizedH = w.MaxInitialHeight
	}
	return sizedW, sizedH
}
