package window

// Mouse buttons reported by Input.ButtonDown.
const (
	MouseLeft = iota
	MouseRight
	MouseMiddle
	mouseButtonCount
)

// Input is the keyboard and mouse state of a window. Key codes are the platform key codes
// (GLFW key values). Deltas accumulate between two PollEvents calls.
type Input struct {
	keys    map[uint32]bool
	pressed map[uint32]bool
	buttons [mouseButtonCount]bool

	cursorX, cursorY float32
	cursorDX         float32
	cursorDY         float32
	scroll           float32
	hasCursor        bool
}

func (in *Input) reset() {
	in.keys = make(map[uint32]bool)
	in.pressed = make(map[uint32]bool)
	in.buttons = [mouseButtonCount]bool{}
	in.beginFrame()
}

func (in *Input) beginFrame() {
	clear(in.pressed)
	in.cursorDX, in.cursorDY = 0, 0
	in.scroll = 0
}

// KeyDown reports whether key is held.
func (in *Input) KeyDown(key uint32) bool { return in.keys[key] }

// KeyPressed reports whether key went down since the last poll.
func (in *Input) KeyPressed(key uint32) bool { return in.pressed[key] }

// ButtonDown reports whether mouse button b is held.
func (in *Input) ButtonDown(b int) bool {
	return b >= 0 && b < mouseButtonCount && in.buttons[b]
}

// Cursor returns the cursor position in screen coordinates.
func (in *Input) Cursor() (x, y float32) { return in.cursorX, in.cursorY }

// CursorDelta returns the cursor movement since the last poll.
func (in *Input) CursorDelta() (dx, dy float32) { return in.cursorDX, in.cursorDY }

// Scroll returns the vertical scroll since the last poll; positive scrolls up.
func (in *Input) Scroll() float32 { return in.scroll }

func (in *Input) setKey(key uint32, down bool) {
	if down && !in.keys[key] {
		in.pressed[key] = true
	}
	in.keys[key] = down
}

func (in *Input) setButton(b int, down bool) {
	if b >= 0 && b < mouseButtonCount {
		in.buttons[b] = down
	}
}

func (in *Input) moveCursor(x, y float32) {
	if in.hasCursor {
		in.cursorDX += x - in.cursorX
		in.cursorDY += y - in.cursorY
	}
	in.cursorX, in.cursorY = x, y
	in.hasCursor = true
}

func (in *Input) addScroll(delta float32) { in.scroll += delta }
