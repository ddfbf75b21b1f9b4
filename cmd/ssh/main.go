package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	"github.com/charmbracelet/wish/logging"
	"github.com/muesli/termenv"
	"github.com/tomz197/birdtreats/internal/config"
	"github.com/tomz197/birdtreats/internal/draw"
	"github.com/tomz197/birdtreats/internal/loop"
)

const (
	defaultHost        = "::"
	defaultPort        = "2222"
	defaultHostKeyPath = "/app/keys/host_key"
)

// Sessions get the shutdown notice plus this long to disconnect.
const sessionDrainTimeout = time.Duration(loop.ShutdownDisplaySeconds*float64(time.Second)) + 2*time.Second

func main() {
	if err := config.LoadDotEnv(); err != nil {
		log.Fatal("failed to load .env", "err", err)
	}
	logger := config.NewLogger(os.Stderr, "ssh")

	host := config.GetEnv("SSH_HOST", defaultHost)
	port := config.GetEnv("SSH_PORT", defaultPort)
	hostKeyPath := config.GetEnv("SSH_HOST_KEY", defaultHostKeyPath)

	tuning, err := config.LoadTuning(config.GetEnv(config.EnvTuningFile, ""))
	if err != nil {
		logger.Fatal("failed to load tuning", "err", err)
	}
	logger.Info("SSH config", "host", host, "port", port, "hostKeyPath", hostKeyPath)

	games := newGameServer(tuning, logger)

	opts := []ssh.Option{
		wish.WithAddress(net.JoinHostPort(host, port)),
		wish.WithMiddleware(
			games.middleware,
			activeterm.Middleware(),
			logging.MiddlewareWithLogger(logger),
		),
		// Set TCP_NODELAY to reduce latency for game input
		ssh.WrapConn(func(ctx ssh.Context, conn net.Conn) net.Conn {
			if tcpConn, ok := conn.(*net.TCPConn); ok {
				_ = tcpConn.SetNoDelay(true)
			}
			return conn
		}),
	}

	if hostKeyPath != "" {
		opts = append(opts, wish.WithHostKeyPath(hostKeyPath))
	}

	s, err := wish.NewServer(opts...)
	if err != nil {
		logger.Fatal("failed to create server", "err", err)
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("Starting SSH server", "addr", net.JoinHostPort(host, port))
	go func() {
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			logger.Fatal("server error", "err", err)
		}
	}()

	<-done
	logger.Info("Shutting down server...")

	// Show every player the shutdown notice and wait for their games to end
	if !games.shutdown(sessionDrainTimeout) {
		logger.Warn("sessions still running after timeout")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := s.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("shutdown error", "err", err)
	}
}

// gameServer runs an independent game for every SSH session.
type gameServer struct {
	ctx    context.Context
	cancel context.CancelFunc
	tuning config.Tuning
	logger *log.Logger

	mu sync.Mutex // Orders join against shutdown
	wg sync.WaitGroup
}

func newGameServer(tuning config.Tuning, logger *log.Logger) *gameServer {
	ctx, cancel := context.WithCancel(context.Background())
	return &gameServer{ctx: ctx, cancel: cancel, tuning: tuning, logger: logger}
}

// join registers a new session. It returns false once shutdown has begun.
func (g *gameServer) join() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.ctx.Err() != nil {
		return false
	}
	g.wg.Add(1)
	return true
}

// middleware handles SSH sessions and runs the game client.
func (g *gameServer) middleware(next ssh.Handler) ssh.Handler {
	return func(sess ssh.Session) {
		pty, winCh, ok := sess.Pty()
		if !ok {
			fmt.Fprintln(sess, "Error: PTY required. Please connect with: ssh -t user@host")
			return
		}

		if !g.join() {
			fmt.Fprintln(sess, "Server is shutting down. Please try again later.")
			return
		}
		defer g.wg.Done()

		g.logger.Info("New game session", "user", sess.User(), "terminal", pty.Term,
			"size", fmt.Sprintf("%dx%d", pty.Window.Width, pty.Window.Height))

		// Create a terminal size tracker that updates on window changes
		sizeTracker := newSizeTracker(pty.Window.Width, pty.Window.Height)

		// Listen for window size changes in a goroutine
		go func() {
			for win := range winCh {
				sizeTracker.update(win.Width, win.Height)
			}
		}()

		output := termenv.NewOutput(sess,
			termenv.WithEnvironment(sessionEnv{sess: sess, term: pty.Term}),
			termenv.WithUnsafe(),
		)

		c := loop.NewClient(bufio.NewReader(sess), sess, loop.Options{
			TermSizeFunc: sizeTracker.getSize,
			Tuning:       g.tuning,
			Profile:      output.EnvColorProfile(),
			Logger:       g.logger,
			Inactivity:   true,
			Username:     sess.User(),
		})
		if err := c.Run(g.ctx); err != nil {
			g.logger.Error("Game error", "user", sess.User(), "err", err)
		}

		g.logger.Info("Session ended", "user", sess.User())
		next(sess)
	}
}

// shutdown ends every game and blocks until the sessions have ended or
// timeout passes. It reports whether all sessions ended.
func (g *gameServer) shutdown(timeout time.Duration) bool {
	g.mu.Lock()
	g.cancel()
	g.mu.Unlock()

	done := make(chan struct{})
	go func() {
		g.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}

// sessionEnv exposes the client's environment to termenv so the colour
// profile matches the remote terminal rather than the server's.
type sessionEnv struct {
	sess ssh.Session
	term string
}

func (e sessionEnv) Environ() []string {
	return append(e.sess.Environ(), "TERM="+e.term)
}

func (e sessionEnv) Getenv(key string) string {
	if key == "TERM" {
		return e.term
	}
	prefix := key + "="
	for _, kv := range e.sess.Environ() {
		if strings.HasPrefix(kv, prefix) {
			return strings.TrimPrefix(kv, prefix)
		}
	}
	return ""
}

// sizeTracker tracks terminal size from SSH window change events.
type sizeTracker struct {
	mu     sync.RWMutex
	width  int
	height int
}

func newSizeTracker(width, height int) *sizeTracker {
	return &sizeTracker{width: width, height: height}
}

func (s *sizeTracker) update(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width = width
	s.height = height
}

func (s *sizeTracker) getSize() (int, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.width, s.height, nil
}

// Ensure sizeTracker.getSize satisfies draw.TermSizeFunc
var _ draw.TermSizeFunc = (*sizeTracker)(nil).getSize
