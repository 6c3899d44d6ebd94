package player

import (
	"sync"

	"github.com/bookplay-cli/bookplay/activity"
)

// Dispatcher fans the player's input events out to whatever listeners the
// running activity attached. It implements activity.Dispatcher.
type Dispatcher struct {
	mu        sync.Mutex
	next      int
	listeners map[int]listener
}

type listener struct {
	event   string
	handler func(activity.Event)
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{listeners: make(map[int]listener)}
}

// AddEventListener subscribes a handler and returns its remover.
func (d *Dispatcher) AddEventListener(event string, handler func(activity.Event)) func() {
	d.mu.Lock()
	defer d.mu.Unlock()

	id := d.next
	d.next++
	d.listeners[id] = listener{event: event, handler: handler}

	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		delete(d.listeners, id)
	}
}

// Dispatch delivers an event to every listener subscribed to its type.
func (d *Dispatcher) Dispatch(ev activity.Event) {
	d.mu.Lock()
	var handlers []func(activity.Event)
	for _, l := range d.listeners {
		if l.event == ev.Type {
			handlers = append(handlers, l.handler)
		}
	}
	d.mu.Unlock()

	for _, handler := range handlers {
		handler(ev)
	}
}

// Len returns the number of live listeners.
func (d *Dispatcher) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.listeners)
}
