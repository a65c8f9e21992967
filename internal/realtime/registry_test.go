package realtime

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	mu     sync.Mutex
	frames []frame
	closed bool
}

func (f *fakeConn) WriteJSON(v interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frames = append(f.frames, v.(frame))
	return nil
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeConn) events() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.frames))
	for i, fr := range f.frames {
		out[i] = fr.Event
	}
	return out
}

func (f *fakeConn) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func TestRegistryRegisterAndLookup(t *testing.T) {
	r := NewRegistry()

	web := NewClient("u1", "web", &fakeConn{})
	mobile := NewClient("u1", "mobile", &fakeConn{})

	require.Nil(t, r.Register(web))
	require.Nil(t, r.Register(mobile))

	// Both platforms stay registered for the same user
	assert.Len(t, r.Lookup("u1"), 2)
	assert.Equal(t, 2, r.Count())

	got, ok := r.LookupPlatform("u1", "mobile")
	require.True(t, ok)
	assert.Same(t, mobile, got)

	assert.Empty(t, r.Lookup("unknown"))
}

func TestRegistryReplaceSamePlatform(t *testing.T) {
	r := NewRegistry()

	first := NewClient("u1", "web", &fakeConn{})
	second := NewClient("u1", "web", &fakeConn{})

	require.Nil(t, r.Register(first))
	replaced := r.Register(second)
	require.Same(t, first, replaced)

	got, ok := r.LookupPlatform("u1", "web")
	require.True(t, ok)
	assert.Same(t, second, got)
	assert.Equal(t, 1, r.Count())
}

func TestRegistryUnregisterIgnoresStaleEntry(t *testing.T) {
	r := NewRegistry()

	first := NewClient("u1", "web", &fakeConn{})
	second := NewClient("u1", "web", &fakeConn{})

	r.Register(first)
	r.Register(second)

	// first was already replaced; unregistering it must not evict
	// the live connection
	r.Unregister(first)
	got, ok := r.LookupPlatform("u1", "web")
	require.True(t, ok)
	assert.Same(t, second, got)

	r.Unregister(second)
	_, ok = r.LookupPlatform("u1", "web")
	assert.False(t, ok)
}

func TestRegistryConcurrentAccess(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			userID := fmt.Sprintf("user-%d", i%10)
			c := NewClient(userID, "web", &fakeConn{})
			r.Register(c)
			r.Lookup(userID)
			r.Unregister(c)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 0, r.Count())
}
