package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang/glog"
	"github.com/gorilla/websocket"
	"github.com/hoshinonyaruko/snake-autopilot/input"
	"github.com/hoshinonyaruko/snake-autopilot/session"
	"github.com/hoshinonyaruko/snake-autopilot/structs"
)

const (
	writeWait    = time.Second
	clientBuffer = 64 // frames a client may fall behind before it is dropped
)

type wsMessage struct {
	Type   string          `json:"type"`
	ID     string          `json:"id,omitempty"`
	Frame  *structs.Frame  `json:"frame,omitempty"`
	Report *structs.Report `json:"report,omitempty"`
	Action string          `json:"action,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// client is one websocket connection with its own outgoing queue, so the
// tick goroutine never waits on the network.
type client struct {
	conn *websocket.Conn
	send chan []byte
}

func (c *client) writeLoop() {
	defer c.conn.Close()
	for data := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			// Closing the conn ends readLoop, which unregisters the client.
			glog.V(1).Infof("websocket write: %v", err)
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// Hub streams frames to websocket clients and takes actions from them.
// It is a session sink.
type Hub struct {
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		clients:  make(map[*client]struct{}),
	}
}

func (h *Hub) Frame(id string, f structs.Frame) {
	h.broadcast(wsMessage{Type: "frame", ID: id, Frame: &f})
}

func (h *Hub) GameOver(id string, r structs.Report) {
	h.broadcast(wsMessage{Type: "gameover", ID: id, Report: &r})
}

func (h *Hub) broadcast(msg wsMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		glog.Errorf("encoding %s message: %v", msg.Type, err)
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		h.enqueueLocked(c, data)
	}
}

func (h *Hub) send(c *client, msg wsMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		glog.Errorf("encoding %s message: %v", msg.Type, err)
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		h.enqueueLocked(c, data)
	}
}

func (h *Hub) enqueueLocked(c *client, data []byte) {
	select {
	case c.send <- data:
	default:
		glog.Warningf("websocket client fell %d messages behind, dropping it", clientBuffer)
		h.removeLocked(c)
	}
}

func (h *Hub) removeLocked(c *client) {
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

// Handler upgrades the request and serves the client until it goes away.
// The first message is the current status; afterwards clients may send
// {"action": "left"} and friends.
func (h *Hub) Handler(m *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			glog.Warningf("websocket upgrade: %v", err)
			return
		}
		cl := &client{conn: conn, send: make(chan []byte, clientBuffer)}
		h.mu.Lock()
		h.clients[cl] = struct{}{}
		h.mu.Unlock()
		go cl.writeLoop()

		hello := wsMessage{Type: "status"}
		if r, err := m.Current(); err == nil {
			snap := r.Snapshot()
			hello.ID, hello.Report = snap.ID, &snap.Report
		}
		h.send(cl, hello)

		go h.readLoop(cl, m)
	}
}

func (h *Hub) readLoop(c *client, m *session.Manager) {
	defer h.drop(c)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var msg wsMessage
		if err := json.Unmarshal(data, &msg); err != nil || msg.Action == "" {
			continue
		}
		action, err := input.ParseAction(msg.Action)
		if err != nil {
			h.send(c, wsMessage{Type: "error", Action: msg.Action, Error: err.Error()})
			continue
		}
		r, err := m.Current()
		if err != nil {
			h.send(c, wsMessage{Type: "error", Action: msg.Action, Error: err.Error()})
			continue
		}
		if !r.Push(action) {
			h.send(c, wsMessage{Type: "error", Action: msg.Action, Error: "turns are ignored while the autopilot is on"})
		}
	}
}
