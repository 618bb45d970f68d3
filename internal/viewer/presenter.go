package viewer

import "image"

// Presenter is the GUI-toolkit seam. The toolkit owns the window and the
// texture; the viewer tells it what to show. Implementations run on the
// foreground thread only.
type Presenter interface {
	// ShowFrame uploads a freshly decoded frame for display.
	ShowFrame(img *image.RGBA, width, height int)
	// ShowError replaces the content area with an error message.
	ShowError(text string)
	// SizeToContent resizes the window; called for the first content only.
	SizeToContent(width, height int)
	// RequestRepaint asks the toolkit to repaint promptly.
	RequestRepaint()
}

// noopPresenter preserves viewer flow when no toolkit is wired, as in tests.
type noopPresenter struct{}

func (noopPresenter) ShowFrame(*image.RGBA, int, int) {}
func (noopPresenter) ShowError(string)                {}
func (noopPresenter) SizeToContent(int, int)          {}
func (noopPresenter) RequestRepaint()                 {}
