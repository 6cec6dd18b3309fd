// Package live pushes catalog changes to connected browsers over websockets.
package live

import (
	"context"
	"sync"

	"github.com/golang/glog"

	"realtysite/internal/modules/listing"
)

const sendBuffer = 16

// client is one websocket connection as seen by the hub.
type client struct {
	send chan Event

	mu     sync.Mutex
	closed bool
}

// offer queues ev without blocking and reports whether it fit.
func (c *client) offer(ev Event) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return true
	}
	select {
	case c.send <- ev:
		return true
	default:
		return false
	}
}

func (c *client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

type Hub struct {
	mutex       sync.RWMutex
	clients     map[*client]struct{}
	unsubscribe func()
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*client]struct{})}
}

// Watch forwards every change of the store to the connected clients.
func (h *Hub) Watch(store *listing.Store) {
	h.unsubscribe = store.Subscribe(func(_ context.Context, c listing.Change) {
		h.Broadcast(eventFromChange(c))
	})
}

func (h *Hub) register() *client {
	c := &client{send: make(chan Event, sendBuffer)}
	h.mutex.Lock()
	h.clients[c] = struct{}{}
	h.mutex.Unlock()
	return c
}

func (h *Hub) unregister(c *client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		c.close()
	}
}

// Broadcast queues ev for every client. Clients whose buffer is full are
// dropped.
func (h *Hub) Broadcast(ev Event) {
	h.mutex.RLock()
	var slow []*client
	for c := range h.clients {
		if !c.offer(ev) {
			slow = append(slow, c)
		}
	}
	h.mutex.RUnlock()

	for _, c := range slow {
		glog.Warningf("live: dropping slow client")
		h.unregister(c)
	}
}

func (h *Hub) Count() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	return len(h.clients)
}

// Close disconnects every client and stops watching the store.
func (h *Hub) Close() {
	if h.unsubscribe != nil {
		h.unsubscribe()
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	for c := range h.clients {
		c.close()
		delete(h.clients, c)
	}
}
