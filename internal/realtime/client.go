package realtime

import (
	"log"
	"sync"
	"time"
)

// transport is the slice of the websocket connection the client
// needs. *websocket.Conn satisfies it; tests inject fakes.
type transport interface {
	WriteJSON(v interface{}) error
	Close() error
}

// frame is the wire format for server-to-client events.
type frame struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Notification is the envelope delivered on the "notification" event.
type Notification struct {
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Type      string                 `json:"type,omitempty"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Platform  string                 `json:"platform"`
	Timestamp time.Time              `json:"timestamp"`
}

const sendBuffer = 32

// Client is one live websocket session. Outbound frames go through a
// buffered channel drained by a single writer goroutine, so sends
// from business code never block on transport backpressure.
type Client struct {
	UserID   string
	Platform string

	conn      transport
	send      chan frame
	done      chan struct{}
	closeOnce sync.Once
}

// NewClient wraps an authenticated connection and starts its writer.
func NewClient(userID, platform string, conn transport) *Client {
	c := &Client{
		UserID:   userID,
		Platform: platform,
		conn:     conn,
		send:     make(chan frame, sendBuffer),
		done:     make(chan struct{}),
	}
	go c.writeLoop()
	return c
}

// Emit queues an event for delivery. Frames are dropped, with a log
// line, when the client cannot keep up or is already closed.
func (c *Client) Emit(event string, data interface{}) {
	select {
	case <-c.done:
		return
	default:
	}

	select {
	case c.send <- frame{Event: event, Data: data}:
	default:
		log.Printf("realtime: dropping %s event for user %s (%s): slow consumer", event, c.UserID, c.Platform)
	}
}

func (c *Client) writeLoop() {
	for {
		select {
		case f := <-c.send:
			if err := c.conn.WriteJSON(f); err != nil {
				log.Printf("realtime: write to user %s (%s) failed: %v", c.UserID, c.Platform, err)
				c.Close()
				return
			}
		case <-c.done:
			return
		}
	}
}

// Close stops the writer and closes the underlying connection. Safe
// to call more than once.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

// Closed reports whether the client has been shut down.
func (c *Client) Closed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}
