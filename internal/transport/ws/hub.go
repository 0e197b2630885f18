package ws

import (
	"encoding/json"
	"log"
	"sync"
)

// MessageType defines the type of WebSocket message
type MessageType string

// Monitor message types
const (
	MsgSessionStarted   MessageType = "session_started"
	MsgScreenChanged    MessageType = "screen_changed"
	MsgAnswersUpdated   MessageType = "answers_updated"
	MsgScreeningFailed  MessageType = "screening_failed"
	MsgSessionCompleted MessageType = "session_completed"
	MsgError            MessageType = "error"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub manages monitor WebSocket connections per session. Several researchers
// can watch the same session at once.
type Hub struct {
	monitorConns map[string]map[*Connection]bool // sessionID -> conns

	mu sync.RWMutex

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *BroadcastMessage
}

// Connection represents one monitor WebSocket connection
type Connection struct {
	SessionID    string
	ResearcherID string
	Send         chan []byte
	Hub          *Hub
}

// BroadcastMessage is a message destined for every monitor of one session
type BroadcastMessage struct {
	SessionID string
	Message   *Message
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	h := &Hub{
		monitorConns: make(map[string]map[*Connection]bool),
		register:     make(chan *Connection),
		unregister:   make(chan *Connection),
		broadcast:    make(chan *BroadcastMessage, 256),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			if h.monitorConns[conn.SessionID] == nil {
				h.monitorConns[conn.SessionID] = make(map[*Connection]bool)
			}
			h.monitorConns[conn.SessionID][conn] = true
			log.Printf("Researcher %s monitoring session %s", conn.ResearcherID, conn.SessionID)
			h.mu.Unlock()

		case conn := <-h.unregister:
			h.mu.Lock()
			if conns, ok := h.monitorConns[conn.SessionID]; ok {
				if conns[conn] {
					delete(conns, conn)
					close(conn.Send)
					log.Printf("Researcher %s stopped monitoring session %s", conn.ResearcherID, conn.SessionID)
				}
				if len(conns) == 0 {
					delete(h.monitorConns, conn.SessionID)
				}
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.RLock()
			data, _ := json.Marshal(msg.Message)
			if conns, ok := h.monitorConns[msg.SessionID]; ok {
				for conn := range conns {
					select {
					case conn.Send <- data:
					default:
						// Drop message if buffer full
					}
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// BroadcastToMonitors sends a message to every monitor of a session
// (implements service.Broadcaster)
func (h *Hub) BroadcastToMonitors(sessionID string, msgType string, payload interface{}) {
	data, _ := json.Marshal(payload)
	h.broadcast <- &BroadcastMessage{
		SessionID: sessionID,
		Message: &Message{
			Type:    MessageType(msgType),
			Payload: data,
		},
	}
}
