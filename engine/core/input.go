package core

import "sync"

type Button uint16

const (
	BUTTON_LEFT Button = iota
	BUTTON_RIGHT
	BUTTON_MIDDLE
	BUTTON_MAX_BUTTONS
)

// Key code definitions. Only the keys the engine reacts to are named.
type KeyCode uint16

const (
	KEY_ENTER  KeyCode = 0x0D
	KEY_TAB    KeyCode = 0x09
	KEY_SHIFT  KeyCode = 0x10
	KEY_ESCAPE KeyCode = 0x1B
	KEY_SPACE  KeyCode = 0x20
	KEY_LEFT   KeyCode = 0x25
	KEY_UP     KeyCode = 0x26
	KEY_RIGHT  KeyCode = 0x27
	KEY_DOWN   KeyCode = 0x28
	KEY_A      KeyCode = 0x41
	KEY_D      KeyCode = 0x44
	KEY_E      KeyCode = 0x45
	KEY_F      KeyCode = 0x46
	KEY_Q      KeyCode = 0x51
	KEY_R      KeyCode = 0x52
	KEY_S      KeyCode = 0x53
	KEY_W      KeyCode = 0x57

	KEYS_MAX_KEYS KeyCode = 0xFF
)

type KeyboardState struct {
	Keys [KEYS_MAX_KEYS]bool
}

type MouseState struct {
	X       float64
	Y       float64
	Buttons [BUTTON_MAX_BUTTONS]bool
}

// Input holds the current and previous keyboard/mouse state. The platform layer
// writes into it from its callbacks and the frame loop reads from it.
type Input struct {
	mu               sync.Mutex
	events           *EventBus
	keyboardCurrent  KeyboardState
	keyboardPrevious KeyboardState
	mouseCurrent     MouseState
	mousePrevious    MouseState
	mouseSeen        bool
}

// NewInput creates the input state. events may be nil.
func NewInput(events *EventBus) *Input {
	return &Input{events: events}
}

// Update copies current states to previous states. Call once per frame after reading.
func (in *Input) Update() {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.keyboardPrevious = in.keyboardCurrent
	in.mousePrevious = in.mouseCurrent
}

func (in *Input) IsKeyDown(key KeyCode) bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.keyboardCurrent.Keys[key]
}

func (in *Input) WasKeyDown(key KeyCode) bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.keyboardPrevious.Keys[key]
}

func (in *Input) IsButtonDown(button Button) bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.mouseCurrent.Buttons[button]
}

// MouseDelta is the cursor movement since the previous Update.
func (in *Input) MouseDelta() (float64, float64) {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.mouseCurrent.X - in.mousePrevious.X, in.mouseCurrent.Y - in.mousePrevious.Y
}

func (in *Input) ProcessKey(key KeyCode, pressed bool) {
	if key >= KEYS_MAX_KEYS {
		return
	}
	in.mu.Lock()
	changed := in.keyboardCurrent.Keys[key] != pressed
	in.keyboardCurrent.Keys[key] = pressed
	in.mu.Unlock()

	if changed && in.events != nil {
		code := EVENT_CODE_KEY_RELEASED
		if pressed {
			code = EVENT_CODE_KEY_PRESSED
		}
		in.events.Fire(Event{Code: code, Key: key})
	}
}

func (in *Input) ProcessButton(button Button, pressed bool) {
	if button >= BUTTON_MAX_BUTTONS {
		return
	}
	in.mu.Lock()
	defer in.mu.Unlock()
	in.mouseCurrent.Buttons[button] = pressed
}

func (in *Input) ProcessMouseMove(x, y float64) {
	in.mu.Lock()
	defer in.mu.Unlock()
	// The first sample would otherwise produce a huge delta from the origin.
	if !in.mouseSeen {
		in.mousePrevious.X, in.mousePrevious.Y = x, y
		in.mouseSeen = true
	}
	in.mouseCurrent.X = x
	in.mouseCurrent.Y = y
}
