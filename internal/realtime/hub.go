package realtime

import (
	"log"
	"sync"
	"time"
)

// Hub owns the connection registry and room membership, and routes
// notifications to live connections. Delivery is best-effort: a user
// with no matching connection is a silent no-op, and no method here
// ever returns an error to business code.
type Hub struct {
	registry *Registry

	// room membership lock, separate from the registry's lock
	mu    sync.RWMutex
	rooms map[string]map[*Client]struct{}
}

// NewHub creates a hub with an empty registry
func NewHub() *Hub {
	return &Hub{
		registry: NewRegistry(),
		rooms:    make(map[string]map[*Client]struct{}),
	}
}

// Registry exposes the connection table for the handshake handler.
func (h *Hub) Registry() *Registry {
	return h.registry
}

// Register adds an authenticated client. A previous connection for
// the same (user, platform) is evicted from its rooms and closed.
func (h *Hub) Register(c *Client) {
	if old := h.registry.Register(c); old != nil {
		h.removeFromRooms(old)
		old.Close()
		log.Printf("realtime: replaced connection for user %s (%s)", c.UserID, c.Platform)
	}
	log.Printf("realtime: client connected: %s (%s)", c.UserID, c.Platform)
}

// Unregister drops the client from the registry and all rooms and
// closes it. No-op for clients already replaced by a newer handshake.
func (h *Hub) Unregister(c *Client) {
	h.registry.Unregister(c)
	h.removeFromRooms(c)
	c.Close()
	log.Printf("realtime: client disconnected: %s (%s)", c.UserID, c.Platform)
}

// JoinRoom adds the client to a room, creating it on first join.
func (h *Hub) JoinRoom(c *Client, room string) {
	if room == "" {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*Client]struct{})
		h.rooms[room] = members
	}
	members[c] = struct{}{}
}

// LeaveRoom removes the client from a room, dropping the room once
// empty.
func (h *Hub) LeaveRoom(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if members, ok := h.rooms[room]; ok {
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
}

func (h *Hub) removeFromRooms(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for room, members := range h.rooms {
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
}

// roomMembers snapshots a room's membership.
func (h *Hub) roomMembers(room string) []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()

	members := h.rooms[room]
	out := make([]*Client, 0, len(members))
	for c := range members {
		out = append(out, c)
	}
	return out
}

// SendNotification delivers a notification envelope to the user's
// live connections. platformFilter narrows delivery to one platform;
// empty means every connected platform. No connection, or no match,
// is a silent no-op.
func (h *Hub) SendNotification(userID, title, message, platformFilter, notifType string, data map[string]interface{}) {
	for _, c := range h.registry.Lookup(userID) {
		if platformFilter != "" && c.Platform != platformFilter {
			continue
		}
		c.Emit("notification", Notification{
			Title:     title,
			Message:   message,
			Type:      notifType,
			Data:      data,
			Platform:  c.Platform,
			Timestamp: time.Now(),
		})
	}
}

// BroadcastToAll fans an event out to every live connection,
// optionally narrowed to one platform.
func (h *Hub) BroadcastToAll(event string, data map[string]interface{}, platformFilter string) {
	for _, c := range h.registry.All() {
		if platformFilter != "" && c.Platform != platformFilter {
			continue
		}
		c.Emit(event, withEnvelope(data, c.Platform))
	}
}

// BroadcastToRoom fans an event out to a room's members, optionally
// narrowed to one platform.
func (h *Hub) BroadcastToRoom(room, event string, data map[string]interface{}, platformFilter string) {
	for _, c := range h.roomMembers(room) {
		if platformFilter != "" && c.Platform != platformFilter {
			continue
		}
		c.Emit(event, withEnvelope(data, c.Platform))
	}
}

func withEnvelope(data map[string]interface{}, platform string) map[string]interface{} {
	out := make(map[string]interface{}, len(data)+2)
	for k, v := range data {
		out[k] = v
	}
	out["platform"] = platform
	out["timestamp"] = time.Now()
	return out
}

// Domain broadcasts. These mirror the events the clients subscribe
// to; payloads go out as-is to every connection.

func (h *Hub) NotifyNewPlace(place interface{})    { h.broadcast("newPlace", place) }
func (h *Hub) NotifyActivity(activity interface{}) { h.broadcast("activity", activity) }
func (h *Hub) NotifyPayment(payment interface{})   { h.broadcast("payment", payment) }
func (h *Hub) NotifyPlaceUpdate(place interface{}) { h.broadcast("placeUpdate", place) }
func (h *Hub) NotifyPlaceDelete(placeID string)    { h.broadcast("placeDelete", placeID) }

func (h *Hub) broadcast(event string, data interface{}) {
	for _, c := range h.registry.All() {
		c.Emit(event, data)
	}
}
