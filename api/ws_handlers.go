package api

import (
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Loopback façade; the CORS layer gates browser origins.
	},
}

// WSMessage is the change-event envelope pushed to view subscribers.
type WSMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Hub fans cache change events out to connected view clients so open
// pages can re-read snapshots without polling.
type Hub struct {
	mu    sync.RWMutex
	conns map[*websocket.Conn]bool
}

func NewHub() *Hub {
	return &Hub{conns: make(map[*websocket.Conn]bool)}
}

func (h *Hub) Handler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	h.mu.Lock()
	h.conns[conn] = true
	h.mu.Unlock()
	log.Printf("View client connected via WebSocket (%s)", r.RemoteAddr)

	defer func() {
		h.mu.Lock()
		delete(h.conns, conn)
		h.mu.Unlock()
		log.Printf("View client disconnected from WebSocket (%s)", r.RemoteAddr)
	}()

	conn.WriteJSON(WSMessage{Type: "connected", Data: map[string]string{"status": "connected"}})

	// Subscribers only listen; drain until the connection drops.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Broadcast sends one change event to every subscriber. Connections
// that fail to take the write are dropped.
func (h *Hub) Broadcast(eventType string, data interface{}) {
	msg := WSMessage{Type: eventType, Data: data}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		if err := conn.WriteJSON(msg); err != nil {
			log.Printf("WebSocket write error, dropping subscriber: %v", err)
			conn.Close()
			delete(h.conns, conn)
		}
	}
}
