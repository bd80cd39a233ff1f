package core

import (
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/pkg/errors"
)

func init() {
	// GL calls must stay on the thread that owns the context.
	runtime.LockOSThread()
}

type Window struct {
	Handle *glfw.Window
	Width  int
	Height int
	Title  string

	resized func(Viewport)
}

type WindowConfig struct {
	Width     int
	Height    int
	Title     string
	Resizable bool
	VSync     bool
	Visible   bool
	Samples   int
}

func DefaultWindowConfig() WindowConfig {
	return WindowConfig{
		Width:     1280,
		Height:    800,
		Title:     "Histology Viewer",
		Resizable: true,
		VSync:     true,
		Visible:   true,
	}
}

// NewWindow creates a window with a current OpenGL 4.1 core context.
func NewWindow(config WindowConfig) (*Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, errors.Wrap(err, "failed to initialize GLFW")
	}

	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Resizable, boolToInt(config.Resizable))
	glfw.WindowHint(glfw.Visible, boolToInt(config.Visible))
	glfw.WindowHint(glfw.Samples, config.Samples)

	handle, err := glfw.CreateWindow(config.Width, config.Height, config.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, errors.Wrap(err, "failed to create window")
	}
	handle.MakeContextCurrent()
	if config.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	window := &Window{
		Handle: handle,
		Width:  config.Width,
		Height: config.Height,
		Title:  config.Title,
	}

	handle.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		window.Width = width
		window.Height = height
		if window.resized != nil {
			window.resized(NewViewport(width, height))
		}
	})

	return window, nil
}

// OnResize registers fn to be called with the new framebuffer viewport.
func (w *Window) OnResize(fn func(Viewport)) {
	w.resized = fn
}

// Viewport returns the current framebuffer size as a viewport.
func (w *Window) Viewport() Viewport {
	width, height := w.Handle.GetFramebufferSize()
	return NewViewport(width, height)
}

// DefaultFramebuffer is always 0 for a GLFW window.
func (w *Window) DefaultFramebuffer() uint32 {
	return 0
}

func (w *Window) ShouldClose() bool {
	return w.Handle.ShouldClose()
}

func (w *Window) PollEvents() {
	glfw.PollEvents()
}

func (w *Window) SwapBuffers() {
	w.Handle.SwapBuffers()
}

func (w *Window) Destroy() {
	w.Handle.Destroy()
	glfw.Terminate()
}

func (w *Window) IsKeyPressed(key int) bool {
	return w.Handle.GetKey(glfw.Key(key)) == glfw.Press
}

// IsMouseButtonPressed reports whether button (0 left, 1 right) is held.
func (w *Window) IsMouseButtonPressed(button int) bool {
	return w.Handle.GetMouseButton(glfw.MouseButton(button)) == glfw.Press
}

func (w *Window) GetCursorPos() (float64, float64) {
	return w.Handle.GetCursorPos()
}

// OnScroll registers fn for vertical wheel movement.
func (w *Window) OnScroll(fn func(dy float64)) {
	w.Handle.SetScrollCallback(func(win *glfw.Window, xoff, yoff float64) {
		fn(yoff)
	})
}

func (w *Window) SetTitle(title string) {
	w.Handle.SetTitle(title)
	w.Title = title
}

// CursorNDC returns the cursor position in normalised device coordinates,
// with +Y pointing up.
func (w *Window) CursorNDC() (float32, float32) {
	x, y := w.Handle.GetCursorPos()
	ww, wh := w.Handle.GetSize()
	if ww == 0 || wh == 0 {
		return -2, -2
	}
	ndcX := float32(2*x/float64(ww) - 1)
	ndcY := float32(1 - 2*y/float64(wh))
	return ndcX, ndcY
}

// MouseButtonCallback is called on left-button presses with the cursor in NDC.
type MouseButtonCallback func(ndcX, ndcY float32)

func (w *Window) OnLeftClick(cb MouseButtonCallback) {
	w.Handle.SetMouseButtonCallback(func(win *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		if button == glfw.MouseButtonLeft && action == glfw.Press {
			cb(w.CursorNDC())
		}
	})
}

func boolToInt(b bool) int {
	if b {
		return glfw.True
	}
	return glfw.False
}

const (
	KeyEscape = int(glfw.KeyEscape)
	KeyP      = int(glfw.KeyP)
	KeyO      = int(glfw.KeyO)
	KeyL      = int(glfw.KeyL)
	KeyG      = int(glfw.KeyG)
	Key0      = int(glfw.Key0)
	Key1      = int(glfw.Key1)
	Key2      = int(glfw.Key2)
	Key3      = int(glfw.Key3)
	Key4      = int(glfw.Key4)

	KeyLeftBracket  = int(glfw.KeyLeftBracket)
	KeyRightBracket = int(glfw.KeyRightBracket)
)
