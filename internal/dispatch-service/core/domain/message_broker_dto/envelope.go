package messagebrokerdto

import websocketdto "routa/internal/dispatch-service/core/domain/websocket_dto"

// Addressing scopes for an envelope.
const (
	ScopeUser          = "user"
	ScopeOnlineDrivers = "drivers"
	ScopeOrder         = "order"
)

// Envelope carries one notification across instances. Every instance's relay
// consumes every envelope and resolves the scope against its own live
// connections, so a claim landing on instance A still reaches a subscriber
// connected to instance B.
type Envelope struct {
	Scope string `json:"scope"`
	// Target is a user id for ScopeUser, an order id for ScopeOrder and
	// empty for ScopeOnlineDrivers.
	Target string             `json:"target,omitempty"`
	Event  websocketdto.Event `json:"event"`
}
