// Package feed publishes the piano state to websocket subscribers. The feed
// is read-only: subscribers watch key changes but cannot press keys.
package feed

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/rapidmidiex/rmxpiano/pianostate"
	"github.com/rapidmidiex/rmxpiano/wsmsg"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	// Envelopes buffered per client before it is considered too slow.
	sendBuffer = 256
)

type (
	// Hub fans store changes out to every connected client.
	Hub struct {
		store *pianostate.Store
		log   *zap.Logger

		mu      sync.Mutex
		clients map[*client]struct{}
		closed  bool

		cancel func()
	}

	client struct {
		hub  *Hub
		conn *websocket.Conn
		send chan wsmsg.Envelope
	}
)

// NewHub subscribes to store. Call Close to unsubscribe and drop clients.
func NewHub(store *pianostate.Store, log *zap.Logger) *Hub {
	h := &Hub{
		store:   store,
		log:     log,
		clients: make(map[*client]struct{}),
	}
	h.cancel = store.Subscribe(h.onChange)
	return h
}

func (h *Hub) onChange(c pianostate.Change) {
	e, err := wsmsg.New(wsmsg.NOTE, wsmsg.NoteMsg{
		State:  wsmsg.StateOf(c.Pressed),
		Name:   c.Name,
		Number: c.MIDI,
	})
	if err != nil {
		h.log.Error("encode note", zap.Error(err))
		return
	}
	h.broadcast(e)
}

// broadcast queues e on every client. Clients whose buffer is full are
// dropped.
func (h *Hub) broadcast(e wsmsg.Envelope) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- e:
		default:
			h.log.Warn("dropping slow client", zap.String("remote", c.conn.RemoteAddr().String()))
			delete(h.clients, c)
			close(c.send)
		}
	}
}

// Reset releases every key and tells subscribers about it. The individual
// note off messages are sent by the store notifications first.
func (h *Hub) Reset() {
	h.store.Reset()
	e, err := wsmsg.New(wsmsg.RESET, wsmsg.ResetMsg{})
	if err != nil {
		h.log.Error("encode reset", zap.Error(err))
		return
	}
	h.broadcast(e)
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Serve registers conn and pumps envelopes to it until it goes away. After
// Close the connection is closed straight away.
func (h *Hub) Serve(conn *websocket.Conn) {
	c := &client{
		hub:  h,
		conn: conn,
		send: make(chan wsmsg.Envelope, sendBuffer),
	}

	// Snapshot and register under the hub lock so no change falls between
	// the two.
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "feed closed")
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
		conn.Close()
		return
	}
	snap, err := wsmsg.New(wsmsg.SNAPSHOT, wsmsg.SnapshotMsg{
		Pressed: h.store.Pressed(),
		Size:    h.store.Len(),
	})
	if err != nil {
		h.mu.Unlock()
		h.log.Error("encode snapshot", zap.Error(err))
		conn.Close()
		return
	}
	c.send <- snap
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.log.Info("client connected", zap.String("remote", conn.RemoteAddr().String()))

	go c.writePump()
	c.readPump()
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
		h.log.Info("client disconnected", zap.String("remote", c.conn.RemoteAddr().String()))
	}
}

// Close unsubscribes from the store and disconnects every client.
func (h *Hub) Close() {
	h.cancel()
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}

// readPump discards inbound frames; reading is only needed to handle pongs
// and notice the close.
func (c *client) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Warn("read", zap.Error(err))
			}
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case e, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(e); err != nil {
				c.hub.log.Warn("writeJSON", zap.Error(err))
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
