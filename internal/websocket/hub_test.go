package websocket

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Helper-Yoon/chat-analyzer/internal/config"
	"github.com/Helper-Yoon/chat-analyzer/internal/types"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

func TestNewHub(t *testing.T) {
	logger := zerolog.New(&bytes.Buffer{})
	hub := NewHub(logger, nil)

	if hub == nil {
		t.Fatal("expected hub to be created")
	}

	if hub.clients == nil {
		t.Error("expected clients map to be initialized")
	}

	if hub.broadcast == nil {
		t.Error("expected broadcast channel to be initialized")
	}

	if hub.register == nil {
		t.Error("expected register channel to be initialized")
	}

	if hub.unregister == nil {
		t.Error("expected unregister channel to be initialized")
	}
}

func TestHubClientCount(t *testing.T) {
	hub := NewHub(zerolog.Nop(), nil)

	// Initial count should be 0
	if hub.ClientCount() != 0 {
		t.Errorf("expected 0 clients, got %d", hub.ClientCount())
	}

	// Simulate adding clients
	hub.mu.Lock()
	hub.clients[&Client{id: "test1"}] = true
	hub.clients[&Client{id: "test2"}] = true
	hub.mu.Unlock()

	if hub.ClientCount() != 2 {
		t.Errorf("expected 2 clients, got %d", hub.ClientCount())
	}
}

func TestHubBroadcastDoesNotBlock(t *testing.T) {
	hub := NewHub(zerolog.Nop(), nil)

	// No Run loop: the queue fills and further messages are dropped
	done := make(chan struct{})
	go func() {
		for i := 0; i < cap(hub.broadcast)+10; i++ {
			hub.Broadcast([]byte("test message"))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Error("broadcast blocked unexpectedly")
	}
}

func TestHubRegisterUnregister(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(zerolog.Nop(), nil)
	go hub.Run(ctx)

	// Create mock client
	client := &Client{
		id:   "test-client",
		hub:  hub,
		send: make(chan []byte, 1),
	}

	// Register client
	hub.register <- client
	time.Sleep(10 * time.Millisecond)

	if hub.ClientCount() != 1 {
		t.Errorf("expected 1 client after register, got %d", hub.ClientCount())
	}

	// Unregister client
	hub.unregister <- client
	time.Sleep(10 * time.Millisecond)

	if hub.ClientCount() != 0 {
		t.Errorf("expected 0 clients after unregister, got %d", hub.ClientCount())
	}
}

func TestHubStageEventsReachClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(zerolog.Nop(), nil)
	go hub.Run(ctx)

	client1 := &Client{id: "client1", hub: hub, send: make(chan []byte, 10)}
	client2 := &Client{id: "client2", hub: hub, send: make(chan []byte, 10)}
	hub.register <- client1
	hub.register <- client2
	time.Sleep(10 * time.Millisecond)

	hub.StageCompleted("run-1", "join", 12)

	for _, c := range []*Client{client1, client2} {
		select {
		case msg := <-c.send:
			var event types.StageEvent
			if err := json.Unmarshal(msg, &event); err != nil {
				t.Fatalf("%s: invalid event: %v", c.id, err)
			}
			if event.Type != "stage_completed" || event.RunID != "run-1" || event.RecordCount != 12 {
				t.Errorf("%s: unexpected event %+v", c.id, event)
			}
		case <-time.After(100 * time.Millisecond):
			t.Errorf("%s did not receive the event", c.id)
		}
	}
}

func TestHubStageFailedCarriesError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(zerolog.Nop(), nil)
	go hub.Run(ctx)

	client := &Client{id: "client1", hub: hub, send: make(chan []byte, 10)}
	hub.register <- client
	time.Sleep(10 * time.Millisecond)

	hub.StageFailed("run-2", "period_filter", types.ErrEmptyPeriod)

	select {
	case msg := <-client.send:
		var event types.StageEvent
		if err := json.Unmarshal(msg, &event); err != nil {
			t.Fatalf("invalid event: %v", err)
		}
		if event.Type != "stage_failed" || event.Stage != "period_filter" || event.Error != types.ErrEmptyPeriod.Error() {
			t.Errorf("unexpected event %+v", event)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("client did not receive the event")
	}
}

func TestHubShutdownClosesClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(zerolog.Nop(), nil)
	go hub.Run(ctx)

	client := &Client{id: "c", hub: hub, send: make(chan []byte, 1)}
	hub.register <- client
	cancel()

	select {
	case _, ok := <-client.send:
		if ok {
			t.Error("expected closed channel")
		}
	case <-time.After(time.Second):
		t.Error("client channel was not closed")
	}
}

func testConfig() *config.Config {
	return &config.Config{
		AllowedOrigins: []string{"http://localhost:5173"},
		PongWait:       time.Minute,
		PingPeriod:     54 * time.Second,
		WriteWait:      10 * time.Second,
		MaxMessageSize: 512,
	}
}

func TestHandlerStreamsEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(zerolog.Nop(), nil)
	go hub.Run(ctx)

	srv := httptest.NewServer(NewHandler(hub, testConfig(), zerolog.Nop()))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(time.Second)
	for hub.ClientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	hub.RunCompleted(types.RunCompleted{Type: "run_completed", RunID: "run-9", Status: types.StatusScored})

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var event types.RunCompleted
	if err := json.Unmarshal(msg, &event); err != nil {
		t.Fatalf("invalid event: %v", err)
	}
	if event.RunID != "run-9" || event.Status != types.StatusScored {
		t.Errorf("unexpected event %+v", event)
	}
}

func TestHandlerRejectsUnknownOrigin(t *testing.T) {
	hub := NewHub(zerolog.Nop(), nil)
	srv := httptest.NewServer(NewHandler(hub, testConfig(), zerolog.Nop()))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	header := map[string][]string{"Origin": {"http://evil.example"}}
	if _, _, err := websocket.DefaultDialer.Dial(url, header); err == nil {
		t.Error("expected handshake to fail for unknown origin")
	}
}
