package input

import (
	"sync"
)

// Key is a physical key known to the harness. Window backends translate
// their native key codes to these.
type Key int

const (
	KeyUnknown Key = iota
	KeyEscape
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyW
	KeyA
	KeyS
	KeyD
	KeyF
	KeySpace
)

// Action represents a logical harness action, not a physical key
type Action int

// Action constants using iota
const (
	ActionQuit Action = iota
	ActionMoveUp
	ActionMoveDown
	ActionMoveLeft
	ActionMoveRight
	ActionToggleWireframe
	ActionPause
	ActionCount // Sentinel value for array sizing
)

// InputManager maps physical keys to logical actions and tracks their state
// across frames
type InputManager struct {
	mu sync.RWMutex

	// Key to action mapping (one key can map to multiple actions)
	keyToActions map[Key][]Action

	// held keys; an action stays active while any of its keys is down
	held map[Key]bool

	// Current frame state (indexed by Action)
	currentState [ActionCount]bool

	// Just pressed/released flags (reset each frame)
	justPressed  [ActionCount]bool
	justReleased [ActionCount]bool
}

// NewInputManager creates a new InputManager with the default bindings:
// Escape quits, arrow keys and WASD move, F toggles wireframe, Space pauses.
func NewInputManager() *InputManager {
	im := &InputManager{
		keyToActions: make(map[Key][]Action),
		held:         make(map[Key]bool),
	}

	im.BindKey(KeyEscape, ActionQuit)
	im.BindKey(KeyUp, ActionMoveUp)
	im.BindKey(KeyDown, ActionMoveDown)
	im.BindKey(KeyLeft, ActionMoveLeft)
	im.BindKey(KeyRight, ActionMoveRight)
	im.BindKey(KeyW, ActionMoveUp)
	im.BindKey(KeyS, ActionMoveDown)
	im.BindKey(KeyA, ActionMoveLeft)
	im.BindKey(KeyD, ActionMoveRight)
	im.BindKey(KeyF, ActionToggleWireframe)
	im.BindKey(KeySpace, ActionPause)

	return im
}

// BindKey binds a physical key to a logical action
// Multiple keys can be bound to the same action (e.g., WASD and arrow keys)
func (im *InputManager) BindKey(key Key, action Action) {
	im.mu.Lock()
	defer im.mu.Unlock()

	if action < 0 || action >= ActionCount {
		return
	}

	im.keyToActions[key] = append(im.keyToActions[key], action)
}

// UnbindKey removes all action bindings for a key
func (im *InputManager) UnbindKey(key Key) {
	im.mu.Lock()
	defer im.mu.Unlock()

	delete(im.keyToActions, key)
	delete(im.held, key)
}

// HandleKeyEvent processes a key transition. Repeats count as pressed.
func (im *InputManager) HandleKeyEvent(key Key, pressed bool) {
	im.mu.Lock()
	defer im.mu.Unlock()

	if pressed {
		im.held[key] = true
	} else {
		delete(im.held, key)
	}

	for _, act := range im.keyToActions[key] {
		active := pressed || im.anyHeld(act)
		// Detect edges immediately when event arrives
		if active && !im.currentState[act] {
			im.justPressed[act] = true
		}
		if !active && im.currentState[act] {
			im.justReleased[act] = true
		}
		im.currentState[act] = active
	}
}

func (im *InputManager) anyHeld(action Action) bool {
	for key := range im.held {
		for _, act := range im.keyToActions[key] {
			if act == action {
				return true
			}
		}
	}
	return false
}

// PostUpdate must be called at the end of each frame to reset edge flags
func (im *InputManager) PostUpdate() {
	im.mu.Lock()
	defer im.mu.Unlock()

	for i := range ActionCount {
		im.justPressed[i] = false
		im.justReleased[i] = false
	}
}

// IsActive returns true if the action is currently being held down
func (im *InputManager) IsActive(action Action) bool {
	if action < 0 || action >= ActionCount {
		return false
	}

	im.mu.RLock()
	defer im.mu.RUnlock()

	return im.currentState[action]
}

// JustPressed returns true only if the action was pressed in the current frame
func (im *InputManager) JustPressed(action Action) bool {
	if action < 0 || action >= ActionCount {
		return false
	}

	im.mu.RLock()
	defer im.mu.RUnlock()

	return im.justPressed[action]
}

// JustReleased returns true only if the action was released in the current frame
func (im *InputManager) JustReleased(action Action) bool {
	if action < 0 || action >= ActionCount {
		return false
	}

	im.mu.RLock()
	defer im.mu.RUnlock()

	return im.justReleased[action]
}

// Direction returns the held movement as (dx, dy), each -1, 0 or 1.
// Opposite keys cancel.
func (im *InputManager) Direction() (dx, dy int) {
	im.mu.RLock()
	defer im.mu.RUnlock()

	if im.currentState[ActionMoveRight] {
		dx++
	}
	if im.currentState[ActionMoveLeft] {
		dx--
	}
	if im.currentState[ActionMoveUp] {
		dy++
	}
	if im.currentState[ActionMoveDown] {
		dy--
	}
	return dx, dy
}
