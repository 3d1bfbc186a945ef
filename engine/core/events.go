package core

import "sync"

type EventCode uint16

// System internal event codes.
const (
	// Shuts the application down on the next frame.
	EVENT_CODE_APPLICATION_QUIT EventCode = 0x01

	// Keyboard key pressed. Data is a *KeyEvent.
	EVENT_CODE_KEY_PRESSED EventCode = 0x02

	// Keyboard key released. Data is a *KeyEvent.
	EVENT_CODE_KEY_RELEASED EventCode = 0x03

	// Mouse button pressed. Data is a *MouseEvent.
	EVENT_CODE_BUTTON_PRESSED EventCode = 0x04

	// Mouse button released. Data is a *MouseEvent.
	EVENT_CODE_BUTTON_RELEASED EventCode = 0x05

	// Mouse moved. Data is a *MouseEvent.
	EVENT_CODE_MOUSE_MOVED EventCode = 0x06

	// Mouse wheel scrolled. Data is a *MouseEvent.
	EVENT_CODE_MOUSE_WHEEL EventCode = 0x07

	// Client area resized by the OS. Data is a *SystemEvent.
	EVENT_CODE_RESIZED EventCode = 0x08

	// Window focus gained or lost. Data is a *SystemEvent.
	EVENT_CODE_FOCUS_CHANGED EventCode = 0x09

	// Shader source or bytecode on disk changed. Data is the file path.
	EVENT_CODE_SHADERS_CHANGED EventCode = 0x0A

	MAX_EVENT_CODE EventCode = 0xFF
)

type KeyEvent struct {
	KeyCode KeyCode
}

type MouseEvent struct {
	Button Button
	PosX   uint16
	PosY   uint16
	Scroll int8
}

type SystemEvent struct {
	WindowWidth  uint32
	WindowHeight uint32
	Focused      bool
}

type EventContext struct {
	Type EventCode
	Data interface{}
}

type EventCallback func(context EventContext)

type eventSystemState struct {
	mu       sync.RWMutex
	handlers map[EventCode][]EventCallback
}

var eventState *eventSystemState

func EventSystemInitialize() bool {
	if eventState != nil {
		return false
	}
	eventState = &eventSystemState{
		handlers: map[EventCode][]EventCallback{},
	}
	return true
}

func EventSystemShutdown() error {
	eventState = nil
	return nil
}

// Register to be called whenever an event with the given code fires.
// Handlers run on the thread that fires the event.
func EventRegister(code EventCode, callback EventCallback) {
	if eventState == nil {
		return
	}
	eventState.mu.Lock()
	eventState.handlers[code] = append(eventState.handlers[code], callback)
	eventState.mu.Unlock()
}

// Dispatches the event to every registered handler, in registration order.
// Dispatch is synchronous so window events keep their ordering against
// the frame loop.
func EventFire(context EventContext) {
	if eventState == nil {
		return
	}
	eventState.mu.RLock()
	handlers := eventState.handlers[context.Type]
	eventState.mu.RUnlock()
	for _, h := range handlers {
		h(context)
	}
}
