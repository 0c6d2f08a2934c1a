package core

import "sync"

// System internal event codes.
type EventCode int

const (
	// Shuts the application down on the next frame.
	EVENT_CODE_APPLICATION_QUIT EventCode = iota + 1
	EVENT_CODE_KEY_PRESSED
	EVENT_CODE_KEY_RELEASED
	// Resized/resolution changed from the OS. Width and Height are set.
	EVENT_CODE_RESIZED
	// A watched asset changed on disk. Path is set.
	EVENT_CODE_ASSET_CHANGED
)

type Event struct {
	Code   EventCode
	Key    KeyCode
	Width  uint32
	Height uint32
	Path   string
}

// OnEvent returns true when the event was handled and should not reach later listeners.
type OnEvent func(Event) bool

// EventBus dispatches events synchronously to listeners in registration order.
type EventBus struct {
	mu        sync.RWMutex
	listeners map[EventCode][]OnEvent
}

func NewEventBus() *EventBus {
	return &EventBus{listeners: make(map[EventCode][]OnEvent)}
}

func (b *EventBus) Register(code EventCode, fn OnEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners[code] = append(b.listeners[code], fn)
}

// Fire reports whether any listener handled the event.
func (b *EventBus) Fire(e Event) bool {
	b.mu.RLock()
	listeners := append([]OnEvent(nil), b.listeners[e.Code]...)
	b.mu.RUnlock()

	for _, fn := range listeners {
		if fn(e) {
			return true
		}
	}
	return false
}
