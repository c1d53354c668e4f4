package feed

import (
	"context"
	"net/http"
)

// Server upgrades incoming HTTP connections to WebSocket and hands
// them to Hub. It owns no trading state of its own.
type Server struct {
	hub        *Hub
	httpServer *http.Server
	stop       chan struct{}
}

// NewServer returns a Server listening on addr that feeds hub.
func NewServer(addr string, hub *Hub) *Server {
	s := &Server{hub: hub, stop: make(chan struct{})}
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	s.httpServer = &http.Server{Addr: addr, Handler: mux}
	return s
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	client := NewClient(s.hub, conn)
	go client.Serve()
}

// ListenAndServe starts the hub's registration loop and blocks
// serving HTTP until the server is shut down.
func (s *Server) ListenAndServe() error {
	go s.hub.Run(s.stop)
	return s.httpServer.ListenAndServe()
}

// Shutdown stops the hub's registration loop and gracefully closes
// the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	close(s.stop)
	return s.httpServer.Shutdown(ctx)
}
