package websocket

import (
	"log"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
)

// Client is an instructor connection watching a single exam.
type Client struct {
	ExamID uuid.UUID
	Conn   *websocket.Conn
}

// SubmissionEvent is broadcast to an exam's watchers when an assignment
// completes.
type SubmissionEvent struct {
	ExamID      uuid.UUID `json:"exam_id"`
	StudentID   uuid.UUID `json:"student_id"`
	StudentName string    `json:"student_name"`
	Score       float64   `json:"score"`
	Expired     bool      `json:"expired"`
	CompletedAt time.Time `json:"completed_at"`
}

var watchers = make(map[uuid.UUID]map[*websocket.Conn]bool)
var watchersMu sync.RWMutex

var Register = make(chan *Client)
var Unregister = make(chan *Client)
var Broadcast = make(chan SubmissionEvent, 16)

func RunHub() {
	for {
		select {
		case client := <-Register:
			log.Printf("Monitor registered for exam %s", client.ExamID)
			watchersMu.Lock()
			if watchers[client.ExamID] == nil {
				watchers[client.ExamID] = make(map[*websocket.Conn]bool)
			}
			watchers[client.ExamID][client.Conn] = true
			watchersMu.Unlock()
		case client := <-Unregister:
			log.Printf("Monitor unregistered for exam %s", client.ExamID)
			watchersMu.Lock()
			if conns, ok := watchers[client.ExamID]; ok {
				delete(conns, client.Conn)
				if len(conns) == 0 {
					delete(watchers, client.ExamID)
				}
			}
			watchersMu.Unlock()
		case event := <-Broadcast:
			watchersMu.RLock()
			conns := make([]*websocket.Conn, 0, len(watchers[event.ExamID]))
			for conn := range watchers[event.ExamID] {
				conns = append(conns, conn)
			}
			watchersMu.RUnlock()

			for _, conn := range conns {
				if err := conn.WriteJSON(event); err != nil {
					log.Printf("Error sending submission event for exam %s: %v", event.ExamID, err)
					conn.Close()
					watchersMu.Lock()
					if set, ok := watchers[event.ExamID]; ok {
						delete(set, conn)
					}
					watchersMu.Unlock()
				}
			}
		}
	}
}

// Notify publishes a submission event without blocking the request path.
func Notify(event SubmissionEvent) {
	select {
	case Broadcast <- event:
	default:
		log.Printf("Monitor broadcast queue full, dropping event for exam %s", event.ExamID)
	}
}
