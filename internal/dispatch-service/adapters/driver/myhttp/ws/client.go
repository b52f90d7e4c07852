package ws

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	websocketdto "routa/internal/dispatch-service/core/domain/websocket_dto"

	"github.com/gorilla/websocket"
)

const (
	egressBuffer = 16
	pongWait     = time.Second * 60
	pingInterval = (pongWait * 9) / 10
	writeWait    = time.Second * 10
)

type Client struct {
	conn    *websocket.Conn
	hub     *Hub
	handler *EventHandler
	egress  chan websocketdto.Event

	// userID/role are set once by Hub.authenticate and read under hub.mu.
	userID string
	role   string
	authed atomic.Bool

	closeOnce sync.Once
	done      chan struct{}
}

func NewClient(conn *websocket.Conn, hub *Hub, handler *EventHandler) *Client {
	return &Client{
		conn:    conn,
		hub:     hub,
		handler: handler,
		egress:  make(chan websocketdto.Event, egressBuffer),
		done:    make(chan struct{}),
	}
}

func (c *Client) IsAuthed() bool {
	return c.authed.Load()
}

// drop severs the connection. The read pump notices the closed conn and
// detaches the client from the hub.
func (c *Client) drop() {
	c.closeOnce.Do(func() {
		close(c.done)
		if c.conn != nil {
			c.conn.Close()
		}
	})
}

func (c *Client) ReadMessages() {
	defer func() {
		c.hub.remove(c)
		c.drop()
	}()

	c.conn.SetReadLimit(1024)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var event websocketdto.Event
		if err := json.Unmarshal(payload, &event); err != nil {
			continue
		}
		if err := c.route(event); err != nil {
			return
		}
	}
}

// route handles a client frame. Everything except auth requires an
// authenticated connection.
func (c *Client) route(event websocketdto.Event) error {
	switch event.Type {
	case websocketdto.EventAuth:
		userID, role, err := c.handler.Authenticate(event)
		if err != nil {
			return err
		}
		c.hub.authenticate(c, userID, role)
		return nil

	case websocketdto.EventWatch:
		if !c.IsAuthed() {
			return errNotAuthenticated
		}
		var msg websocketdto.WatchMessage
		if err := json.Unmarshal(event.Data, &msg); err != nil {
			return err
		}
		c.hub.watch(c, msg.OrderID)
		return nil

	case websocketdto.EventUnwatch:
		if !c.IsAuthed() {
			return errNotAuthenticated
		}
		var msg websocketdto.WatchMessage
		if err := json.Unmarshal(event.Data, &msg); err != nil {
			return err
		}
		c.hub.unwatch(c, msg.OrderID)
		return nil

	default:
		// Unknown frames are ignored, not fatal.
		return nil
	}
}

func (c *Client) WriteMessages() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.drop()
	}()

	for {
		select {
		case <-c.done:
			return

		case event, ok := <-c.egress:
			if !ok {
				return
			}
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(event); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
