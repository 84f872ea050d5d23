// Package realtime fans events out to live websocket connections.
//
// Each authenticated connection is subscribed to exactly two channels: one
// scoped to its identity and one to its organization. Publishing is
// best-effort: no queuing, no persistence, no delivery confirmation. A
// channel with no subscribers is a no-op, never an error.
package realtime

import (
	"log/slog"
	"sync"
)

// Event is the payload published to a channel.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Channel scope keys.

func UserChannel(userID string) string { return "user:" + userID }
func OrgChannel(orgID string) string   { return "org:" + orgID }

// Publisher is the fan-out surface the sweep orchestrator depends on.
type Publisher interface {
	Publish(channel string, event Event)
}

// Hub is the channel registry. Constructed once at process start and passed
// by handle to anything that publishes; registrations live only as long as
// their connection.
type Hub struct {
	mu       sync.RWMutex
	channels map[string]map[*Conn]struct{}
	logger   *slog.Logger
}

// NewHub creates an empty hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		channels: make(map[string]map[*Conn]struct{}),
		logger:   logger,
	}
}

// Subscribe registers a connection on the given channels.
func (h *Hub) Subscribe(c *Conn, channels ...string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range channels {
		subs, ok := h.channels[ch]
		if !ok {
			subs = make(map[*Conn]struct{})
			h.channels[ch] = subs
		}
		subs[c] = struct{}{}
		c.subscribed = append(c.subscribed, ch)
	}
}

// remove drops a connection from all its channels. Called on disconnect;
// there is no explicit unsubscribe.
func (h *Hub) remove(c *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range c.subscribed {
		if subs, ok := h.channels[ch]; ok {
			delete(subs, c)
			if len(subs) == 0 {
				delete(h.channels, ch)
			}
		}
	}
	c.subscribed = nil
}

// Publish broadcasts an event to every connection currently subscribed to
// the channel. Never blocks: a connection whose send buffer is full misses
// the event.
func (h *Hub) Publish(channel string, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	subs := h.channels[channel]
	if len(subs) == 0 {
		return
	}
	for c := range subs {
		select {
		case c.send <- event:
		default:
			h.logger.Warn("realtime: dropping event for slow consumer",
				"channel", channel, "event", event.Type)
		}
	}
}

// Subscribers returns the current subscriber count for a channel.
func (h *Hub) Subscribers(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.channels[channel])
}
