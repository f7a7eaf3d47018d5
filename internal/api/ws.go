package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/biomarker-insight-server/internal/service"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The API is CORS-open; the socket carries notifications only.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// datasetEvent is the message pushed to connected dashboards when the
// current dataset changes.
type datasetEvent struct {
	Event      string `json:"event"`
	Source     string `json:"source"`
	Generation uint64 `json:"generation"`
	Biomarkers int    `json:"biomarkers"`
	Simulated  bool   `json:"simulated"`
}

// Hub tracks connected WebSocket clients and fans dataset events out
// to them.
type Hub struct {
	log *logrus.Logger

	mu      sync.Mutex
	clients map[*websocket.Conn]bool

	broadcast chan datasetEvent
}

// NewHub creates a new hub with no clients.
func NewHub(log *logrus.Logger) *Hub {
	return &Hub{
		log:       log,
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan datasetEvent, 8),
	}
}

// Run fans out broadcast events until the context is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case event := <-h.broadcast:
			h.send(event)
		}
	}
}

// BroadcastDatasetReplaced queues a dataset-replaced event. Drops the
// event rather than blocking the ingestion path when the queue is
// full.
func (h *Hub) BroadcastDatasetReplaced(state service.DatasetState) {
	event := datasetEvent{
		Event:      "dataset_replaced",
		Source:     state.Source,
		Generation: state.Generation,
		Biomarkers: len(state.Dataset),
		Simulated:  state.Simulated,
	}
	select {
	case h.broadcast <- event:
	default:
		h.log.Warn("WebSocket broadcast queue full, dropping event")
	}
}

// Serve upgrades an HTTP request and registers the connection.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	h.mu.Lock()
	h.clients[conn] = true
	count := len(h.clients)
	h.mu.Unlock()

	h.log.WithField("clients", count).Debug("WebSocket client connected")

	// Reader goroutine: the client sends nothing meaningful, but the
	// read loop is what notices a closed connection.
	go func() {
		conn.SetReadLimit(maxMessageSize)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.remove(conn)
				return
			}
		}
	}()

	return nil
}

func (h *Hub) send(event datasetEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.log.WithError(err).Error("Failed to marshal WebSocket event")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			conn.Close()
			delete(h.clients, conn)
		}
	}
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[conn] {
		delete(h.clients, conn)
		conn.Close()
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		conn.Close()
		delete(h.clients, conn)
	}
}
