package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/xinyuewang/hanabi/internal/stage"
	"github.com/xinyuewang/hanabi/internal/vmath"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// snapshotInterval is the outbound state cadence (~30 FPS).
const snapshotInterval = 33 * time.Millisecond

// StateHandler is the renderer's connection to the stage: it broadcasts
// stage snapshots to every connected client and funnels inbound input events
// into the stage queue.
type StateHandler struct {
	stage   *stage.Stage
	clients map[*websocket.Conn]bool
	mu      sync.RWMutex
}

// NewStateHandler creates a new StateHandler over the given stage.
func NewStateHandler(s *stage.Stage) *StateHandler {
	h := &StateHandler{
		stage:   s,
		clients: make(map[*websocket.Conn]bool),
	}
	go h.broadcast()
	return h
}

// inputMessage is one inbound event from the renderer.
type inputMessage struct {
	Type   string     `json:"type"` // select | confirm | trigger | pointer | reset
	Index  int        `json:"index"`
	Origin vmath.Vec3 `json:"origin"`
	Dir    vmath.Vec3 `json:"dir"`
	Click  bool       `json:"click"`
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *StateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		h.handleMessage(data)
	}
}

// handleMessage parses one inbound event and queues it on the stage.
func (h *StateHandler) handleMessage(data []byte) {
	var msg inputMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		log.Printf("state socket: bad message: %v", err)
		return
	}

	switch msg.Type {
	case "select":
		h.stage.QueueSelect(msg.Index)
	case "confirm":
		h.stage.QueueConfirm()
	case "trigger":
		h.stage.QueueTrigger()
	case "pointer":
		h.stage.QueuePointer(msg.Origin, msg.Dir, msg.Click)
	case "reset":
		h.stage.QueueReset()
	default:
		log.Printf("state socket: unknown message type %q", msg.Type)
	}
}

// broadcast sends stage snapshots to all connected clients.
func (h *StateHandler) broadcast() {
	ticker := time.NewTicker(snapshotInterval)
	defer ticker.Stop()

	for range ticker.C {
		h.mu.RLock()
		idle := len(h.clients) == 0
		h.mu.RUnlock()
		if idle {
			continue
		}

		msg, err := json.Marshal(h.stage.Snapshot())
		if err != nil {
			continue
		}

		h.mu.RLock()
		for conn := range h.clients {
			conn.WriteMessage(websocket.TextMessage, msg)
		}
		h.mu.RUnlock()
	}
}
