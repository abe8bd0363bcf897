//go:build !wasm
// +build !wasm

package live

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestServer_ReloadReachesEveryPage(t *testing.T) {
	s := NewServer(zerolog.Nop())
	srv := httptest.NewServer(http.HandlerFunc(s.HandleWebSocket))
	defer srv.Close()

	a, b := dial(t, srv), dial(t, srv)
	require.Eventually(t, func() bool { return s.SessionCount() == 2 }, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, 2, s.Reload())
	for _, conn := range []*websocket.Conn{a, b} {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		kind, msg, err := conn.ReadMessage()
		require.NoError(t, err)
		assert.Equal(t, websocket.TextMessage, kind)
		assert.Equal(t, ReloadMessage, string(msg))
	}
}

func TestServer_ForgetsClosedPages(t *testing.T) {
	s := NewServer(zerolog.Nop())
	srv := httptest.NewServer(http.HandlerFunc(s.HandleWebSocket))
	defer srv.Close()

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return s.SessionCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return s.SessionCount() == 0 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, s.Reload())
}

func TestServer_Close(t *testing.T) {
	s := NewServer(zerolog.Nop())
	srv := httptest.NewServer(http.HandlerFunc(s.HandleWebSocket))
	defer srv.Close()

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return s.SessionCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	s.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
	require.Eventually(t, func() bool { return s.SessionCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestServer_RejectsPlainHTTP(t *testing.T) {
	s := NewServer(zerolog.Nop())
	srv := httptest.NewServer(http.HandlerFunc(s.HandleWebSocket))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, 0, s.SessionCount())
}
