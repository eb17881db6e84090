// Package websocket pushes export events to connected clients.
package websocket

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/fortuna/gridiron/internal/logging"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Server represents the WebSocket server
type Server struct {
	server *http.Server
	hub    *Hub
	cancel context.CancelFunc
	logger logrus.FieldLogger
}

// NewServer creates a new WebSocket server and starts its hub.
func NewServer(port string, logger logrus.FieldLogger) *Server {
	logger = logging.Component(logger, "websocket")
	ctx, cancel := context.WithCancel(context.Background())

	s := &Server{
		hub:    NewHub(logger),
		cancel: cancel,
		logger: logger,
	}
	go s.hub.Run(ctx)

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%s", port),
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Routes returns the websocket route table.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws/exports", s.handleExports)
	mux.HandleFunc("/ws/health", s.handleHealth)
	return mux
}

// Hub exposes the hub so the export runner can notify it.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Start starts the WebSocket server
func (s *Server) Start() error {
	s.logger.WithField("addr", s.server.Addr).Info("websocket server listening")
	return s.server.ListenAndServe()
}

// handleExports subscribes the connection to export events.
func (s *Server) handleExports(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.WithError(err).Warn("failed to upgrade connection")
		return
	}

	client := &Client{
		hub:  s.hub,
		conn: conn,
		send: make(chan []byte, 256),
	}

	select {
	case s.hub.register <- client:
	case <-s.hub.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// handleHealth returns WebSocket server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"status": "healthy", "clients": %d}`, s.hub.ClientCount())
}

// Shutdown stops the hub and the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	s.cancel()
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
