package window

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
)

var errNotOpen = errors.New("window: not open")

// glfwWindow holds the GLFW-specific window state.
type glfwWindow struct {
	window *glfw.Window
	closed bool
}

// newPlatformWindow creates the GLFW window, wires its callbacks into w and stores it as w.platform.
//
// GLFW reference: https://www.glfw.org/docs/latest/window_guide.html
func newPlatformWindow(w *engineWindow) error {
	runtime.LockOSThread()

	if err := glfw.Init(); err != nil {
		return fmt.Errorf("initialize GLFW: %w", err)
	}

	// WebGPU provides its own graphics API, so no OpenGL context is created.
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)

	win, err := glfw.CreateWindow(w.width, w.height, w.title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return fmt.Errorf("create GLFW window: %w", err)
	}
	maxW, maxH := glfw.DontCare, glfw.DontCare
	if w.maxWidth > 0 {
		maxW = w.maxWidth
	}
	if w.maxHeight > 0 {
		maxH = w.maxHeight
	}
	win.SetSizeLimits(w.minWidth, w.minHeight, maxW, maxH)

	gw := &glfwWindow{window: win}
	w.platform = gw

	win.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if key == glfw.KeyEscape && action == glfw.Press {
			win.SetShouldClose(true)
			return
		}
		switch action {
		case glfw.Press, glfw.Repeat:
			w.input.setKey(uint32(key), true)
		case glfw.Release:
			w.input.setKey(uint32(key), false)
		}
	})
	win.SetScrollCallback(func(_ *glfw.Window, _, yoff float64) {
		w.input.addScroll(float32(yoff))
	})
	win.SetMouseButtonCallback(func(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
		b := -1
		switch button {
		case glfw.MouseButtonLeft:
			b = MouseLeft
		case glfw.MouseButtonRight:
			b = MouseRight
		case glfw.MouseButtonMiddle:
			b = MouseMiddle
		}
		w.input.setButton(b, action == glfw.Press)
	})
	win.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		w.input.moveCursor(float32(x), float32(y))
	})

	// The framebuffer size is the pixel size the surface must be configured with.
	win.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.resized(width, height)
	})
	w.width, w.height = win.GetFramebufferSize()
	return nil
}

// surfaceDescriptor uses the wgpuglfw bridge, which has per-platform implementations.
func (g *glfwWindow) surfaceDescriptor() *wgpu.SurfaceDescriptor {
	return wgpuglfw.GetSurfaceDescriptor(g.window)
}

func (g *glfwWindow) poll() {
	glfw.PollEvents()
}

func (g *glfwWindow) running() bool {
	return !g.closed && !g.window.ShouldClose()
}

func (g *glfwWindow) close() {
	if g.closed {
		return
	}
	g.closed = true
	g.window.Destroy()
	glfw.Terminate()
}
