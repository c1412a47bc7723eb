// Package relay implements the beam rendezvous server: it pairs the two
// peers of a session by id and forwards their frames verbatim. It keeps
// no payload state beyond the live connections themselves.
package relay

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/aethershare/aether/internal/logging"
)

const (
	readyMessage = "ready"
	writeTimeout = 10 * time.Second
)

type Server struct {
	addr     string
	logger   logging.Logger
	upgrader websocket.Upgrader

	mu       sync.Mutex
	sessions map[string]*session
}

func NewServer(addr string, l logging.Logger) *Server {
	return &Server{
		addr:   addr,
		logger: l.With("module", "relay"),
		upgrader: websocket.Upgrader{
			// Locators are shared out of band; any origin may join.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		sessions: make(map[string]*session),
	}
}

// Routes builds the echo instance with the relay endpoints registered.
func (s *Server) Routes() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/session/:id", s.handleSession)

	return e
}

// Run serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	e := s.Routes()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "stopping relay")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = e.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "starting relay", "address", s.addr)
	if err := e.Start(s.addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) handleSession(c echo.Context) error {
	id := c.Param("id")
	ctx := c.Request().Context()

	conn, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	s.mu.Lock()
	sess, ok := s.sessions[id]
	if !ok {
		sess = newSession(id, s.logger)
		s.sessions[id] = sess
	}
	s.mu.Unlock()

	if !sess.join(conn) {
		s.logger.Warn(ctx, "session full, rejecting third peer", "session", id)
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "session full"),
			time.Now().Add(time.Second))
		return conn.Close()
	}

	if sess.complete() {
		s.logger.Info(ctx, "session paired", "session", id)
		sess.start(func() {
			s.mu.Lock()
			delete(s.sessions, id)
			s.mu.Unlock()
			s.logger.Info(ctx, "session closed", "session", id)
		})
	}

	return nil
}

// session is one rendezvous pair.
type session struct {
	id     string
	logger logging.Logger

	mu    sync.Mutex
	conns []*websocket.Conn

	closeOnce sync.Once
}

func newSession(id string, l logging.Logger) *session {
	return &session{id: id, logger: l}
}

func (s *session) join(conn *websocket.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.conns) >= 2 {
		return false
	}
	s.conns = append(s.conns, conn)
	return true
}

func (s *session) complete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns) == 2
}

// start notifies both peers and begins forwarding, one goroutine per
// direction. onClose runs once, after the first read or write failure
// tears the pair down.
func (s *session) start(onClose func()) {
	s.mu.Lock()
	a, b := s.conns[0], s.conns[1]
	s.mu.Unlock()

	for _, conn := range []*websocket.Conn{a, b} {
		_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, []byte(readyMessage)); err != nil {
			s.teardown(onClose)
			return
		}
		_ = conn.SetWriteDeadline(time.Time{})
	}

	go s.pump(a, b, onClose)
	go s.pump(b, a, onClose)
}

func (s *session) pump(from, to *websocket.Conn, onClose func()) {
	for {
		mt, data, err := from.ReadMessage()
		if err != nil {
			s.teardown(onClose)
			return
		}

		_ = to.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := to.WriteMessage(mt, data); err != nil {
			s.teardown(onClose)
			return
		}
		_ = to.SetWriteDeadline(time.Time{})
	}
}

func (s *session) teardown(onClose func()) {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		for _, conn := range s.conns {
			_ = conn.Close()
		}
		s.mu.Unlock()
		onClose()
	})
}
