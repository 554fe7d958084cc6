package board

import "sync"

// EventKind identifies an input event delivered by a Surface.
type EventKind int

const (
	EventPointerMove EventKind = iota
	EventPointerUp
	EventPointerLeave
	EventKey
)

// Event is a pointer or keyboard event in board coordinates.
type Event struct {
	Kind  EventKind
	Point Point
	Key   string
}

type Handler func(Event)

// Surface is the application-wide input source. Subscribe returns a
// function that removes the handler again.
type Surface interface {
	Subscribe(kind EventKind, h Handler) (unsubscribe func())
}

// Dispatcher is an in-process Surface. The view feeds raw events into
// Dispatch and only the currently subscribed handlers see them.
type Dispatcher struct {
	mu       sync.Mutex
	next     int
	handlers map[EventKind]map[int]Handler
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[EventKind]map[int]Handler)}
}

func (d *Dispatcher) Subscribe(kind EventKind, h Handler) func() {
	d.mu.Lock()
	defer d.mu.Unlock()
	id := d.next
	d.next++
	if d.handlers[kind] == nil {
		d.handlers[kind] = make(map[int]Handler)
	}
	d.handlers[kind][id] = h

	var once sync.Once
	return func() {
		once.Do(func() {
			d.mu.Lock()
			delete(d.handlers[kind], id)
			d.mu.Unlock()
		})
	}
}

// Dispatch delivers e to the handlers subscribed at the time of the call.
// Handlers may unsubscribe themselves.
func (d *Dispatcher) Dispatch(e Event) {
	d.mu.Lock()
	hs := make([]Handler, 0, len(d.handlers[e.Kind]))
	for _, h := range d.handlers[e.Kind] {
		hs = append(hs, h)
	}
	d.mu.Unlock()

	for _, h := range hs {
		h(e)
	}
}

// Len reports the number of live subscriptions.
func (d *Dispatcher) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, m := range d.handlers {
		n += len(m)
	}
	return n
}
