package content

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	"os"
	"path/filepath"
	"strings"
	"time"

	// Codec registration for the static decode path.
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// animatedExt is the only extension routed through the animated decode path.
// Classification is extension-only, not a format sniff.
const animatedExt = ".gif"

// GIF delay units are hundredths of a second; the floor keeps a zero-delay
// frame from advancing on every tick.
const (
	gifDelayUnit  = 10 * time.Millisecond
	minFrameDelay = 10 * time.Millisecond
)

// ErrNoFrames marks an animated file with zero decodable frames.
var ErrNoFrames = errors.New("animation contains no frames")

// LoadError wraps any failure to turn a path into displayable content.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Load decodes the file at path into content. The .gif extension selects the
// animated path; everything else is decoded as a single static frame.
func Load(path string) (Content, error) {
	if strings.EqualFold(filepath.Ext(path), animatedExt) {
		return loadAnimated(path)
	}
	return loadStatic(path)
}

func loadStatic(path string) (Content, error) {
	f, err := os.Open(path)
	if err != nil {
		return Content{}, &LoadError{Path: path, Err: err}
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return Content{}, &LoadError{Path: path, Err: err}
	}

	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)

	return NewStatic(Frame{Image: rgba}, bounds.Dx(), bounds.Dy()), nil
}

func loadAnimated(path string) (Content, error) {
	f, err := os.Open(path)
	if err != nil {
		return Content{}, &LoadError{Path: path, Err: err}
	}
	defer f.Close()

	g, err := gif.DecodeAll(f)
	if err != nil {
		return Content{}, &LoadError{Path: path, Err: err}
	}
	if len(g.Image) == 0 {
		return Content{}, &LoadError{Path: path, Err: ErrNoFrames}
	}

	width, height := g.Config.Width, g.Config.Height
	if width == 0 || height == 0 {
		b := g.Image[0].Bounds()
		width, height = b.Max.X, b.Max.Y
	}

	// Frames are composited over the running canvas at their authored
	// offsets. Disposal modes beyond draw-over are not honored.
	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	frames := make([]Frame, 0, len(g.Image))
	for i, paletted := range g.Image {
		draw.Draw(canvas, paletted.Bounds(), paletted, paletted.Bounds().Min, draw.Over)

		snapshot := image.NewRGBA(canvas.Bounds())
		copy(snapshot.Pix, canvas.Pix)

		delay := minFrameDelay
		if i < len(g.Delay) && g.Delay[i] > 0 {
			delay = time.Duration(g.Delay[i]) * gifDelayUnit
		}
		frames = append(frames, Frame{Image: snapshot, Duration: delay})
	}

	return NewAnimated(frames, width, height), nil
}
