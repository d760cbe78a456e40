package window

import (
	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"
)

// Window is a platform window presenting a WebGPU surface.
type Window interface {
	// SurfaceDescriptor returns a wgpu.SurfaceDescriptor suitable for creating a WebGPU surface.
	// The descriptor is platform-appropriate (Windows HWND, X11 Xlib, Wayland, macOS Metal, etc.).
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the surface descriptor, or nil after Close
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// Size returns the framebuffer size in pixels. On high-DPI displays it differs from the
	// window size in screen coordinates.
	//
	// Returns:
	//   - int: width in pixels
	//   - int: height in pixels
	Size() (int, int)

	// SetResizeCallback sets the function called when the framebuffer is resized.
	//
	// Parameters:
	//   - callback: function receiving new width and height in pixels, or nil
	SetResizeCallback(callback func(width, height int))

	// Input returns the input state updated by PollEvents.
	Input() *Input

	// PollEvents processes pending events without blocking. Per-frame input deltas are reset
	// before the events are applied.
	//
	// Returns:
	//   - bool: false once the window has been asked to close
	PollEvents() bool

	// IsRunning reports whether the window is still open.
	IsRunning() bool

	// Close destroys the window and releases platform resources.
	//
	// Returns:
	//   - error: an error if the window is not open
	Close() error
}

type engineWindow struct {
	log   *zap.Logger
	title string

	width, height int

	minWidth, minHeight int
	maxWidth, maxHeight int

	input    Input
	onResize func(width, height int)

	platform *glfwWindow
}

var _ Window = &engineWindow{}

// NewWindow creates and shows a window. Options are applied over a 1280x720 default.
//
// Parameters:
//   - options: variadic list of WindowBuilderOption functions
//
// Returns:
//   - Window: the open window
//   - error: an error if the platform window could not be created
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	w := &engineWindow{
		log:       zap.NewNop(),
		title:     "oxy",
		width:     1280,
		height:    720,
		minWidth:  320,
		minHeight: 200,
	}
	for _, opt := range options {
		opt(w)
	}
	w.input.reset()
	if err := newPlatformWindow(w); err != nil {
		return nil, err
	}
	w.log.Info("window created", zap.String("title", w.title), zap.Int("width", w.width), zap.Int("height", w.height))
	return w, nil
}

func (w *engineWindow) Size() (int, int) { return w.width, w.height }
func (w *engineWindow) Input() *Input    { return &w.input }

func (w *engineWindow) SetResizeCallback(callback func(width, height int)) {
	w.onResize = callback
}

func (w *engineWindow) resized(width, height int) {
	if width == w.width && height == w.height {
		return
	}
	w.width, w.height = width, height
	w.log.Debug("framebuffer resized", zap.Int("width", width), zap.Int("height", height))
	if w.onResize != nil && width > 0 && height > 0 {
		w.onResize(width, height)
	}
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	if w.platform == nil {
		return nil
	}
	return w.platform.surfaceDescriptor()
}

func (w *engineWindow) PollEvents() bool {
	if w.platform == nil {
		return false
	}
	w.input.beginFrame()
	w.platform.poll()
	return w.IsRunning()
}

func (w *engineWindow) IsRunning() bool {
	return w.platform != nil && w.platform.running()
}

func (w *engineWindow) Close() error {
	if w.platform == nil {
		return errNotOpen
	}
	w.platform.close()
	w.platform = nil
	w.log.Info("window closed")
	return nil
}
