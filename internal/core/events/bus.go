package events

import (
	"sync"
	"time"
)

// Dispatch runs fn on the main sequencing context.
type Dispatch func(fn func())

// Immediate runs fn on the calling goroutine.
func Immediate(fn func()) {
	fn()
}

// Handler receives events of a subscribed type.
type Handler func(Event)

type subscription struct {
	id      uint64
	handler Handler
}

// Bus is a typed publish/subscribe channel. Handlers are always invoked
// through the bus's Dispatch.
type Bus struct {
	mu       sync.Mutex
	dispatch Dispatch
	nextID   uint64
	handlers map[Type][]subscription
}

// NewBus creates a bus delivering through dispatch.
func NewBus(dispatch Dispatch) *Bus {
	if dispatch == nil {
		dispatch = Immediate
	}
	return &Bus{
		dispatch: dispatch,
		handlers: make(map[Type][]subscription),
	}
}

// Subscribe registers handler for eventType and returns its unsubscribe func.
func (bus *Bus) Subscribe(eventType Type, handler Handler) func() {
	bus.mu.Lock()
	bus.nextID++
	id := bus.nextID
	bus.handlers[eventType] = append(bus.handlers[eventType], subscription{id: id, handler: handler})
	bus.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			bus.remove(eventType, id)
		})
	}
}

// Publish delivers event to every current subscriber of its type.
func (bus *Bus) Publish(event Event) {
	if event.At.IsZero() {
		event.At = time.Now()
	}

	bus.mu.Lock()
	subscribers := append([]subscription(nil), bus.handlers[event.Type]...)
	bus.mu.Unlock()

	for _, sub := range subscribers {
		sub := sub
		bus.dispatch(func() {
			if !bus.active(event.Type, sub.id) {
				return
			}
			sub.handler(event)
		})
	}
}

// Subscribers returns the number of handlers registered for eventType.
func (bus *Bus) Subscribers(eventType Type) int {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	return len(bus.handlers[eventType])
}

func (bus *Bus) active(eventType Type, id uint64) bool {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	for _, sub := range bus.handlers[eventType] {
		if sub.id == id {
			return true
		}
	}
	return false
}

func (bus *Bus) remove(eventType Type, id uint64) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	subscribers := bus.handlers[eventType]
	for index, sub := range subscribers {
		if sub.id == id {
			bus.handlers[eventType] = append(subscribers[:index:index], subscribers[index+1:]...)
			break
		}
	}
	if len(bus.handlers[eventType]) == 0 {
		delete(bus.handlers, eventType)
	}
}
