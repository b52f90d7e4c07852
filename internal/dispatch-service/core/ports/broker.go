package ports

import (
	"context"

	websocketdto "routa/internal/dispatch-service/core/domain/websocket_dto"

	amqp "github.com/rabbitmq/amqp091-go"
)

// IOrderEventsBroker fans order events out across service instances. Sends
// are best-effort: a publish failure must never fail the transition that
// triggered it.
type IOrderEventsBroker interface {
	Close() error
	IsAlive() bool

	PublishToUser(ctx context.Context, userID string, event websocketdto.Event) error
	PublishToOnlineDrivers(ctx context.Context, event websocketdto.Event) error
	PublishToOrderSubscribers(ctx context.Context, orderID string, event websocketdto.Event) error

	Consume(ctx context.Context) (<-chan amqp.Delivery, error)
}
