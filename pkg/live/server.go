//go:build !wasm
// +build !wasm

// Package live is the dev server's reload channel: pages hold a WebSocket
// open and are told to reload when the client has been rebuilt.
package live

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// ReloadMessage tells a page to reload itself
const ReloadMessage = "reload"

const (
	writeWait  = 10 * time.Second
	pingPeriod = 54 * time.Second
	pongWait   = 60 * time.Second
)

// Server accepts reload connections and broadcasts to them
type Server struct {
	upgrader websocket.Upgrader
	sessions map[string]*Session
	mu       sync.RWMutex
	log      zerolog.Logger
}

// Session is one connected page
type Session struct {
	ID        string
	conn      *websocket.Conn
	sendChan  chan []byte
	closeChan chan struct{}
	closeOnce sync.Once
	log       zerolog.Logger
}

// NewServer creates a reload server. Any origin may connect.
func NewServer(log zerolog.Logger) *Server {
	return &Server{
		upgrader: websocket.Upgrader{
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		sessions: make(map[string]*Session),
		log:      log.With().Str("component", "live").Logger(),
	}
}

// HandleWebSocket upgrades the request and serves the session until the
// page goes away
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to upgrade connection")
		return
	}

	session := &Session{
		ID:        uuid.NewString(),
		conn:      conn,
		sendChan:  make(chan []byte, 16),
		closeChan: make(chan struct{}),
	}
	session.log = s.log.With().Str("session", session.ID).Logger()

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()
	session.log.Debug().Msg("page connected")

	session.handleConnection()

	s.mu.Lock()
	delete(s.sessions, session.ID)
	s.mu.Unlock()
	session.log.Debug().Msg("page disconnected")
}

// Broadcast queues msg for every session. A session whose queue is full
// is skipped.
func (s *Server) Broadcast(msg string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sent := 0
	for _, session := range s.sessions {
		select {
		case session.sendChan <- []byte(msg):
			sent++
		default:
			session.log.Warn().Msg("send queue full, dropping message")
		}
	}
	return sent
}

// Reload tells every connected page to reload
func (s *Server) Reload() int {
	return s.Broadcast(ReloadMessage)
}

// SessionCount returns the number of connected pages
func (s *Server) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Close disconnects every page
func (s *Server) Close() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, session := range s.sessions {
		session.close()
	}
}

// handleConnection reads until the connection fails; pages never send,
// so reading only detects disconnects and answers pings
func (s *Session) handleConnection() {
	defer s.close()
	go s.writer()

	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Debug().Err(err).Msg("unexpected close")
			}
			return
		}
	}
}

// writer handles writing messages to the WebSocket
func (s *Session) writer() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case message := <-s.sendChan:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				s.log.Warn().Err(err).Msg("failed to write message")
				s.close()
				return
			}

		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.close()
				return
			}

		case <-s.closeChan:
			return
		}
	}
}

func (s *Session) close() {
	s.closeOnce.Do(func() {
		close(s.closeChan)
		s.conn.Close()
	})
}
