package handlers

import (
	fiberws "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	ws "github.com/azmoonhq/azmoon_portal/websocket"
)

// MonitorUpgrade guards the monitor endpoint: a real websocket upgrade from
// the exam's owner (or an admin).
func MonitorUpgrade(c *fiber.Ctx) error {
	if !fiberws.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	if _, err := loadOwnedExam(c, c.Params("examId")); err != nil {
		return err
	}
	return c.Next()
}

// MonitorExam upgrades an instructor connection into a live submission feed
// for one exam. Ownership is checked before the upgrade in the route chain.
func MonitorExam() func(*fiberws.Conn) {
	return func(conn *fiberws.Conn) {
		examID, err := uuid.Parse(conn.Params("examId"))
		if err != nil {
			conn.Close()
			return
		}

		client := &ws.Client{ExamID: examID, Conn: conn}
		ws.Register <- client
		defer func() {
			ws.Unregister <- client
			conn.Close()
		}()

		// Drain the connection until the instructor disconnects.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}
}
