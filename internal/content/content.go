// Package content classifies target paths and decodes them into displayable
// frames. Decoding is delegated to the image codec registry; this package
// only shapes the result for playback.
package content

import (
	"image"
	"time"
)

// Frame is one decoded RGBA frame with its authored display duration.
// Static content carries a single frame with a zero duration.
type Frame struct {
	Image    *image.RGBA
	Duration time.Duration
}

// Content is the decoded result of loading one target path.
type Content struct {
	Frames   []Frame
	Width    int
	Height   int
	animated bool
}

// NewStatic builds single-frame content.
func NewStatic(frame Frame, width, height int) Content {
	return Content{Frames: []Frame{frame}, Width: width, Height: height}
}

// NewAnimated builds content that plays frames in order with their durations.
func NewAnimated(frames []Frame, width, height int) Content {
	return Content{Frames: frames, Width: width, Height: height, animated: true}
}

// Animated reports whether this content was decoded through the animated
// path and carries per-frame durations.
func (c Content) Animated() bool {
	return c.animated && len(c.Frames) > 0
}
