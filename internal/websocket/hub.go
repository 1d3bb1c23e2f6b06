package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/Helper-Yoon/chat-analyzer/internal/types"
	"github.com/rs/zerolog"
)

// Recorder receives connection statistics
type Recorder interface {
	RecordWebSocketConnect()
	RecordWebSocketDisconnect()
	RecordWebSocketMessage()
	RecordWebSocketError()
}

type nopRecorder struct{}

func (nopRecorder) RecordWebSocketConnect()    {}
func (nopRecorder) RecordWebSocketDisconnect() {}
func (nopRecorder) RecordWebSocketMessage()    {}
func (nopRecorder) RecordWebSocketError()      {}

// Hub maintains the set of active clients and broadcasts run progress to them
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// Outbound messages for every client
	broadcast chan []byte

	// Register requests from the clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Mutex to protect clients map
	mu sync.RWMutex

	recorder Recorder
	logger   zerolog.Logger
}

// NewHub creates a new Hub. rec may be nil.
func NewHub(logger zerolog.Logger, rec Recorder) *Hub {
	if rec == nil {
		rec = nopRecorder{}
	}
	return &Hub{
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		recorder:   rec,
		logger:     logger.With().Str("component", "ws-hub").Logger(),
	}
}

// Run starts the hub's main loop. It closes every client when ctx ends.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mu.Unlock()
			h.recorder.RecordWebSocketConnect()
			h.logger.Info().
				Str("client_id", client.id).
				Int("total_clients", total).
				Msg("client connected")

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.recorder.RecordWebSocketDisconnect()
				h.logger.Info().
					Str("client_id", client.id).
					Int("total_clients", len(h.clients)).
					Msg("client disconnected")
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.broadcastRaw(message)
		}
	}
}

// Broadcast queues a message for all connected clients. The message is
// dropped when the queue is full.
func (h *Hub) Broadcast(message []byte) {
	select {
	case h.broadcast <- message:
	default:
		h.recorder.RecordWebSocketError()
		h.logger.Warn().Msg("broadcast queue full, dropping message")
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// StageStarted broadcasts a stage_started event
func (h *Hub) StageStarted(runID, stage string) {
	h.publish(types.StageEvent{
		Type:      "stage_started",
		RunID:     runID,
		Stage:     stage,
		Timestamp: time.Now(),
	})
}

// StageCompleted broadcasts a stage_completed event
func (h *Hub) StageCompleted(runID, stage string, recordCount int) {
	h.publish(types.StageEvent{
		Type:        "stage_completed",
		RunID:       runID,
		Stage:       stage,
		RecordCount: recordCount,
		Timestamp:   time.Now(),
	})
}

// StageFailed broadcasts a stage_failed event
func (h *Hub) StageFailed(runID, stage string, err error) {
	h.publish(types.StageEvent{
		Type:      "stage_failed",
		RunID:     runID,
		Stage:     stage,
		Error:     err.Error(),
		Timestamp: time.Now(),
	})
}

// RunCompleted broadcasts the outcome of a run
func (h *Hub) RunCompleted(event types.RunCompleted) {
	h.publish(event)
}

func (h *Hub) publish(event any) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to marshal event")
		return
	}
	h.Broadcast(data)
}

// broadcastRaw sends a message to all clients
func (h *Hub) broadcastRaw(message []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		select {
		case client.send <- message:
			h.recorder.RecordWebSocketMessage()
		default:
			// Client's send buffer is full, close and remove it
			close(client.send)
			delete(h.clients, client)
			h.recorder.RecordWebSocketDisconnect()
			h.logger.Warn().
				Str("client_id", client.id).
				Msg("client send buffer full, closing connection")
		}
	}
}
