package stream

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// RegisterRoutes exposes the live snapshot feed. A subscriber attaches to one
// claim session and receives every snapshot broadcast for it until either
// side closes the connection; inbound frames are drained and ignored.
func RegisterRoutes(r fiber.Router, hub *Hub) {
	r.Get("/ws/:sessionID", websocket.New(func(c *websocket.Conn) {
		client := hub.Register(c.Params("sessionID"))
		defer hub.Unregister(client)

		writerDone := make(chan struct{})
		go func() {
			defer close(writerDone)
			for snapshot := range client.Send {
				if err := c.WriteMessage(websocket.TextMessage, snapshot); err != nil {
					return
				}
			}
		}()

		for {
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
		<-writerDone
	}))
}
