package realtime

import "sync"

// connKey identifies a registry slot. One live connection is tracked
// per (user, platform), so a web session and a mobile session for the
// same user coexist instead of the second silently evicting the
// first.
type connKey struct {
	userID   string
	platform string
}

// Registry is the in-memory table of live sessions. It is empty on
// process restart and shared by nothing outside this package.
type Registry struct {
	mu      sync.RWMutex
	clients map[connKey]*Client
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{clients: make(map[connKey]*Client)}
}

// Register inserts the client, replacing any existing connection for
// the same (user, platform). The replaced client, if any, is returned
// so the caller can close it.
func (r *Registry) Register(c *Client) *Client {
	key := connKey{userID: c.UserID, platform: c.Platform}

	r.mu.Lock()
	defer r.mu.Unlock()

	old := r.clients[key]
	r.clients[key] = c
	return old
}

// Unregister removes the client if it is still the registered one for
// its slot. A stale entry (already replaced by a newer handshake) is
// left alone.
func (r *Registry) Unregister(c *Client) {
	key := connKey{userID: c.UserID, platform: c.Platform}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.clients[key] == c {
		delete(r.clients, key)
	}
}

// Lookup returns every live connection for the user, across
// platforms.
func (r *Registry) Lookup(userID string) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Client
	for key, c := range r.clients {
		if key.userID == userID {
			out = append(out, c)
		}
	}
	return out
}

// LookupPlatform returns the user's connection for one platform.
func (r *Registry) LookupPlatform(userID, platform string) (*Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.clients[connKey{userID: userID, platform: platform}]
	return c, ok
}

// All returns a snapshot of every live connection.
func (r *Registry) All() []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Client, 0, len(r.clients))
	for _, c := range r.clients {
		out = append(out, c)
	}
	return out
}

// Count returns the number of live connections.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}
