package notification

import (
	"context"
	"encoding/json"
	"sync"

	"routa/internal/mylogger"

	messagebrokerdto "routa/internal/dispatch-service/core/domain/message_broker_dto"
	"routa/internal/dispatch-service/core/ports"

	"github.com/rabbitmq/amqp091-go"
)

// Relay pumps broker envelopes into this instance's websocket hub. It is the
// read side of the cross-instance fan-out: the engine publishes, every relay
// delivers to whatever connections it happens to hold.
type Relay struct {
	ctx      context.Context
	wg       *sync.WaitGroup
	log      mylogger.Logger
	bus      ports.INotificationBus
	consumer ports.IOrderEventsBroker
}

func New(
	ctx context.Context,
	wg *sync.WaitGroup,
	log mylogger.Logger,
	bus ports.INotificationBus,
	consumer ports.IOrderEventsBroker,
) *Relay {
	return &Relay{
		ctx:      ctx,
		wg:       wg,
		log:      log,
		bus:      bus,
		consumer: consumer,
	}
}

func (r *Relay) Run() error {
	deliveries, err := r.consumer.Consume(r.ctx)
	if err != nil {
		return err
	}

	r.wg.Add(1)
	go r.work(r.ctx, deliveries)
	return nil
}

func (r *Relay) work(ctx context.Context, ch <-chan amqp091.Delivery) {
	log := r.log.Action("relay_work")
	defer func() {
		log.Info("relay worker is done")
		r.wg.Done()
	}()

	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if err := r.deliver(msg); err != nil {
				continue
			}
		case <-ctx.Done():
			return
		}
	}
}

func (r *Relay) deliver(msg amqp091.Delivery) error {
	log := r.log.Action("relay_deliver")

	var envelope messagebrokerdto.Envelope
	if err := json.Unmarshal(msg.Body, &envelope); err != nil {
		log.Error("cannot unmarshal envelope", err)
		msg.Nack(false, false)
		return err
	}

	switch envelope.Scope {
	case messagebrokerdto.ScopeUser:
		r.bus.ToUser(envelope.Target, envelope.Event)
	case messagebrokerdto.ScopeOnlineDrivers:
		r.bus.ToOnlineDrivers(envelope.Event)
	case messagebrokerdto.ScopeOrder:
		r.bus.ToOrderSubscribers(envelope.Target, envelope.Event)
	default:
		log.Warn("unknown envelope scope", "scope", envelope.Scope)
	}

	return msg.Ack(false)
}
