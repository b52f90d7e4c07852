package websocketdto

import "encoding/json"

// Event is the framing every websocket message uses, both directions.
type Event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Server -> client event types.
const (
	EventOrderNew       = "order:new"
	EventOrderAccepted  = "order:accepted"
	EventOrderTaken     = "order:taken"
	EventOrderStatus    = "order:status"
	EventOrderCancelled = "order:cancelled"
)

// Client -> server event types.
const (
	EventAuth    = "auth"
	EventWatch   = "order:watch"
	EventUnwatch = "order:unwatch"
)

type AuthMessage struct {
	Token string `json:"token"`
}

type WatchMessage struct {
	OrderID string `json:"order_id"`
}
