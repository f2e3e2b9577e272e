// Package events defines the lifecycle notifications emitted by the registry,
// providers and the executor, and a small synchronous fan-out hub.
package events

import (
	"sync"
)

// Kind identifies an event.
type Kind string

const (
	ToolRegistered   Kind = "tool-registered"
	ToolUnregistered Kind = "tool-unregistered"
	ProviderStarted  Kind = "started"
	ProviderStopped  Kind = "stopped"
)

// ServerInfo describes a started provider.
type ServerInfo struct {
	URL  string
	Kind string
	Port int
}

// Event is delivered to listeners. ToolName is set for tool events, Server
// for ProviderStarted.
type Event struct {
	Kind     Kind
	ToolName string
	Server   *ServerInfo
}

// Listener observes events.
type Listener interface {
	OnEvent(Event)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(Event)

func (f ListenerFunc) OnEvent(e Event) { f(e) }

// Hub delivers events to subscribers synchronously, in subscription order.
// The zero value is ready to use.
type Hub struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]Listener
	order  []int
}

// Subscribe registers l and returns a function that removes it.
func (h *Hub) Subscribe(l Listener) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs == nil {
		h.subs = make(map[int]Listener)
	}
	id := h.nextID
	h.nextID++
	h.subs[id] = l
	h.order = append(h.order, id)

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs, id)
			for i, v := range h.order {
				if v == id {
					h.order = append(h.order[:i], h.order[i+1:]...)
					break
				}
			}
		})
	}
}

// Publish delivers e to every current subscriber. Listeners run outside the
// hub lock so they may subscribe or unsubscribe.
func (h *Hub) Publish(e Event) {
	h.mu.RLock()
	listeners := make([]Listener, 0, len(h.order))
	for _, id := range h.order {
		listeners = append(listeners, h.subs[id])
	}
	h.mu.RUnlock()

	for _, l := range listeners {
		l.OnEvent(e)
	}
}

// Recorder is a Listener that keeps every event it sees. Handy for tests and
// for the CLI's verbose mode.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) OnEvent(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Kinds returns the kinds of the recorded events in order.
func (r *Recorder) Kinds() []Kind {
	evts := r.Events()
	out := make([]Kind, len(evts))
	for i, e := range evts {
		out[i] = e.Kind
	}
	return out
}
