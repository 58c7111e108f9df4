package websocket

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ravin00/VoiceMart-Shopping-Assistant/logger"
	"github.com/ravin00/VoiceMart-Shopping-Assistant/types"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // frontends connect from any origin
	},
}

// EventServer serves the /ws endpoint and broadcasts query events to
// every subscriber.
type EventServer struct {
	hub    *Hub
	port   int
	server *http.Server
	log    *logger.Logger
	mu     sync.Mutex
}

func NewEventServer(port int) *EventServer {
	return &EventServer{
		hub:  NewHub(),
		port: port,
		log:  logger.GetLogger().WithField("component", "events"),
	}
}

// Start begins accepting websocket subscribers.
func (s *EventServer) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	go s.hub.Run()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: mux,
	}

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.Error("event server stopped", err)
		}
	}()

	s.log.Infof("event server listening on :%d", s.port)
	return nil
}

// Stop closes the listener and disconnects all subscribers.
func (s *EventServer) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.hub.Close()
	if s.server != nil {
		return s.server.Close()
	}
	return nil
}

// Publish broadcasts one event. A missing timestamp is filled in.
func (s *EventServer) Publish(event types.EventMessage) {
	if event.Timestamp == "" {
		event.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	data, err := json.Marshal(event)
	if err != nil {
		s.log.Error("marshal event", err)
		return
	}
	s.hub.Broadcast(data)
}

func (s *EventServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error("websocket upgrade", err)
		return
	}

	client := NewClient(s.hub, conn)
	s.hub.register <- client

	go client.writePump()
	go client.readPump()
}
