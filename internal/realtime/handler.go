package realtime

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/ndagijimanapazo/ikaze-backend/internal/auth"
	"github.com/ndagijimanapazo/ikaze-backend/internal/models"
)

// clientFrame is what connected clients send us.
type clientFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// UpgradeRequired gates the websocket route so plain HTTP requests
// get a 426 instead of hanging.
func UpgradeRequired(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// Handler returns the websocket connection handler. The handshake
// credential and platform arrive as query parameters
// (?token=...&platform=...); the token is verified before any client
// message is read. On failure the socket is closed with no
// acknowledgement and no registry entry.
func Handler(hub *Hub, jwtSecret string) fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		token := conn.Query("token")
		platform := conn.Query("platform", models.PlatformWeb)
		if !models.ValidPlatform(platform) {
			platform = models.PlatformWeb
		}

		if token == "" {
			_ = conn.Close()
			return
		}

		claims, err := auth.ParseValidate(jwtSecret, token)
		if err != nil {
			log.Printf("realtime: handshake rejected: %v", err)
			_ = conn.Close()
			return
		}

		client := NewClient(claims.Subject, platform, conn)
		hub.Register(client)
		defer hub.Unregister(client)

		client.Emit("connection_success", fiber.Map{
			"userId":    client.UserID,
			"platform":  client.Platform,
			"timestamp": time.Now(),
		})

		readLoop(hub, client, conn)
	})
}

func readLoop(hub *Hub, client *Client, conn *websocket.Conn) {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var f clientFrame
		if err := json.Unmarshal(raw, &f); err != nil {
			// Malformed frames are ignored, not fatal
			continue
		}

		switch f.Event {
		case "joinRoom":
			var room string
			if err := json.Unmarshal(f.Data, &room); err != nil || room == "" {
				continue
			}
			hub.JoinRoom(client, room)
			log.Printf("realtime: client %s joined room: %s", client.UserID, room)
			client.Emit("joinRoom", fiber.Map{"room": room})

		case "leaveRoom":
			var room string
			if err := json.Unmarshal(f.Data, &room); err != nil || room == "" {
				continue
			}
			hub.LeaveRoom(client, room)
			log.Printf("realtime: client %s left room: %s", client.UserID, room)
			client.Emit("leaveRoom", fiber.Map{"room": room})

		case "message":
			var msg struct {
				Room    string `json:"room"`
				Message string `json:"message"`
			}
			if err := json.Unmarshal(f.Data, &msg); err != nil || msg.Room == "" {
				continue
			}
			hub.BroadcastToRoom(msg.Room, "message", map[string]interface{}{
				"userId":  client.UserID,
				"message": msg.Message,
			}, "")
			client.Emit("message", fiber.Map{"room": msg.Room})
		}
	}
}
