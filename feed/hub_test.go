package feed

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rapidmidiex/rmxpiano/pianostate"
	"github.com/rapidmidiex/rmxpiano/wsmsg"
)

// serverConn returns the server side of a fresh websocket connection.
func serverConn(t *testing.T) *websocket.Conn {
	t.Helper()
	conns := make(chan *websocket.Conn, 1)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := (&websocket.Upgrader{}).Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conns <- conn
	}))
	t.Cleanup(ts.Close)

	ws, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { ws.Close() })

	conn := <-conns
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestSlowClientIsDropped(t *testing.T) {
	store, err := pianostate.NewDefault()
	require.NoError(t, err)
	h := NewHub(store, zap.NewNop())
	t.Cleanup(h.Close)

	// No writePump, so nothing drains the buffer.
	c := &client{hub: h, conn: serverConn(t), send: make(chan wsmsg.Envelope, 1)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	require.NoError(t, store.Press("C4"))
	require.Equal(t, 1, h.Clients())
	require.NoError(t, store.Press("D4"))
	require.Equal(t, 0, h.Clients())

	_, ok := <-c.send
	require.True(t, ok)
	_, ok = <-c.send
	require.False(t, ok, "send should be closed")

	// Later changes skip the dropped client.
	require.NoError(t, store.Release("C4"))
}
