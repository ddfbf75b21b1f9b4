package web

import (
	"context"
	_ "embed"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/tomz197/birdtreats/internal/config"
)

//go:embed index.html
var indexPage []byte

// Server serves the page and one game per WebSocket.
type Server struct {
	tuning   config.Tuning
	logger   *log.Logger
	upgrader websocket.Upgrader
	ctx      context.Context
}

// NewServer creates a server. Games end when ctx is cancelled.
func NewServer(ctx context.Context, tuning config.Tuning, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		tuning: tuning,
		logger: logger,
		ctx:    ctx,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
	}
}

// Handler returns the routes: the game page at / and the socket at /ws.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.servePage)
	mux.HandleFunc("GET /ws", s.serveGame)
	return mux
}

func (s *Server) servePage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexPage)
}

// serveGame upgrades the request and runs a game until the browser leaves.
func (s *Server) serveGame(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}

	logger := s.logger.With("remote", r.RemoteAddr)
	logger.Info("game started")

	conn := NewConnection(ws, logger)
	runner := NewRunner(conn, RunnerOptions{Tuning: s.tuning, Logger: logger})

	ctx, cancel := context.WithCancel(s.ctx)
	done := make(chan struct{})
	go conn.WritePump()
	go func() {
		defer close(done)
		defer cancel()
		if err := runner.Run(ctx); err != nil {
			logger.Warn("game stopped", "err", err)
		}
		ws.Close() // Unblocks the read pump
	}()

	conn.ReadPump(runner)
	cancel()
	<-done
	conn.Close()

	p := runner.Session().Progression()
	logger.Info("game ended", "score", p.Score, "level", p.Level)
}
