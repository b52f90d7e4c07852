package ws

import (
	"net/http"
	"sync"
	"time"

	"routa/internal/mylogger"

	"routa/internal/dispatch-service/core/domain/model"
	websocketdto "routa/internal/dispatch-service/core/domain/websocket_dto"

	"github.com/gorilla/websocket"
)

// websocketUpgrader upgrades incoming HTTP requests into persistent
// websocket connections
var websocketUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The tracking pages are served from a separate origin in dev.
	CheckOrigin: func(r *http.Request) bool { return true },
}

const authWait = time.Second * 5

// Hub is the in-process notification bus: it owns every live connection, the
// driver presence set and the per-order subscriber sets. Sends are
// at-most-once per connection and a dead or slow subscriber is dropped
// without delaying anyone else.
type Hub struct {
	mu       sync.RWMutex
	clients  map[*Client]bool
	byUser   map[string]map[*Client]bool
	drivers  map[*Client]bool
	watchers map[string]map[*Client]bool
	log      mylogger.Logger
}

func NewHub(log mylogger.Logger) *Hub {
	return &Hub{
		clients:  make(map[*Client]bool),
		byUser:   make(map[string]map[*Client]bool),
		drivers:  make(map[*Client]bool),
		watchers: make(map[string]map[*Client]bool),
		log:      log,
	}
}

// WsHandler upgrades the request and runs the connection until it drops. The
// client has authWait to send its auth frame before the connection is cut.
func (h *Hub) WsHandler(eh *EventHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := h.log.Action("WsHandler")

		conn, err := websocketUpgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Error("cannot upgrade", err)
			return
		}

		client := NewClient(conn, h, eh)
		h.add(client)

		time.AfterFunc(authWait, func() {
			if !client.IsAuthed() {
				log.Warn("closing unauthenticated connection")
				client.drop()
			}
		})

		go client.ReadMessages()
		go client.WriteMessages()
	}
}

func (h *Hub) add(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client] = true
}

// remove detaches the client from every index. Safe to call more than once.
func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.clients[client] {
		return
	}
	delete(h.clients, client)
	delete(h.drivers, client)

	if client.userID != "" {
		if conns, ok := h.byUser[client.userID]; ok {
			delete(conns, client)
			if len(conns) == 0 {
				delete(h.byUser, client.userID)
			}
		}
	}
	for orderID, conns := range h.watchers {
		delete(conns, client)
		if len(conns) == 0 {
			delete(h.watchers, orderID)
		}
	}
}

// authenticate binds the connection to a user. Driver connections join the
// presence set, which is what ToOnlineDrivers addresses.
func (h *Hub) authenticate(client *Client, userID, role string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.clients[client] {
		return
	}
	client.userID = userID
	client.role = role
	client.authed.Store(true)

	if h.byUser[userID] == nil {
		h.byUser[userID] = make(map[*Client]bool)
	}
	h.byUser[userID][client] = true

	if role == model.RoleDriver {
		h.drivers[client] = true
	}
}

func (h *Hub) watch(client *Client, orderID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.clients[client] || orderID == "" {
		return
	}
	if h.watchers[orderID] == nil {
		h.watchers[orderID] = make(map[*Client]bool)
	}
	h.watchers[orderID][client] = true
}

func (h *Hub) unwatch(client *Client, orderID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conns, ok := h.watchers[orderID]; ok {
		delete(conns, client)
		if len(conns) == 0 {
			delete(h.watchers, orderID)
		}
	}
}

func (h *Hub) ToUser(userID string, event websocketdto.Event) {
	for _, client := range h.snapshotUser(userID) {
		h.send(client, event)
	}
}

func (h *Hub) ToOnlineDrivers(event websocketdto.Event) {
	for _, client := range h.snapshotDrivers() {
		h.send(client, event)
	}
}

func (h *Hub) ToOrderSubscribers(orderID string, event websocketdto.Event) {
	for _, client := range h.snapshotWatchers(orderID) {
		h.send(client, event)
	}
}

func (h *Hub) IsDriverOnline(driverID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.drivers {
		if client.userID == driverID {
			return true
		}
	}
	return false
}

// send never blocks: a subscriber that cannot keep up is dropped so one dead
// connection cannot stall a broadcast.
func (h *Hub) send(client *Client, event websocketdto.Event) {
	select {
	case client.egress <- event:
	default:
		h.log.Warn("dropping slow subscriber", "user_id", client.userID)
		client.drop()
	}
}

func (h *Hub) snapshotUser(userID string) []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients := make([]*Client, 0, len(h.byUser[userID]))
	for client := range h.byUser[userID] {
		clients = append(clients, client)
	}
	return clients
}

func (h *Hub) snapshotDrivers() []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients := make([]*Client, 0, len(h.drivers))
	for client := range h.drivers {
		clients = append(clients, client)
	}
	return clients
}

func (h *Hub) snapshotWatchers(orderID string) []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients := make([]*Client, 0, len(h.watchers[orderID]))
	for client := range h.watchers[orderID] {
		clients = append(clients, client)
	}
	return clients
}
