package input

import (
	"slices"
	"sync"
)

// Kind is a pointer event type.
type Kind int

const (
	PointerDown Kind = iota
	PointerMove
	PointerUp
	PointerCancel
)

func (k Kind) String() string {
	switch k {
	case PointerDown:
		return "down"
	case PointerMove:
		return "move"
	case PointerUp:
		return "up"
	case PointerCancel:
		return "cancel"
	default:
		return "unknown"
	}
}

// Event is a pointer event in screen coordinates.
type Event struct {
	Kind Kind
	X, Y float64
}

// Handler receives dispatched events.
type Handler func(Event)

// Release removes a listener. Calling it more than once is safe.
type Release func()

// Dispatcher is a registry of pointer listeners, the equivalent of
// window-level event listeners. Handlers run in registration order.
type Dispatcher struct {
	mu        sync.Mutex
	next      int
	listeners map[Kind]map[int]Handler
}

// NewDispatcher returns an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{listeners: make(map[Kind]map[int]Handler)}
}

// Listen registers h for events of kind k.
func (d *Dispatcher) Listen(k Kind, h Handler) Release {
	d.mu.Lock()
	id := d.next
	d.next++
	if d.listeners[k] == nil {
		d.listeners[k] = make(map[int]Handler)
	}
	d.listeners[k][id] = h
	d.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			d.mu.Lock()
			delete(d.listeners[k], id)
			d.mu.Unlock()
		})
	}
}

// Dispatch delivers ev to the listeners registered for its kind. Handlers may
// release listeners, including their own, while running.
func (d *Dispatcher) Dispatch(ev Event) int {
	d.mu.Lock()
	ids := make([]int, 0, len(d.listeners[ev.Kind]))
	for id := range d.listeners[ev.Kind] {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	handlers := make([]Handler, len(ids))
	for i, id := range ids {
		handlers[i] = d.listeners[ev.Kind][id]
	}
	d.mu.Unlock()

	for _, h := range handlers {
		h(ev)
	}
	return len(handlers)
}

// Len returns the number of registered listeners across all kinds.
func (d *Dispatcher) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, m := range d.listeners {
		n += len(m)
	}
	return n
}
