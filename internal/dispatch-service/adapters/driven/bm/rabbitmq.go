package bm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"routa/internal/config"
	"routa/internal/mylogger"

	messagebrokerdto "routa/internal/dispatch-service/core/domain/message_broker_dto"
	websocketdto "routa/internal/dispatch-service/core/domain/websocket_dto"
	"routa/internal/dispatch-service/core/ports"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	// Fanout: every instance's relay sees every envelope and resolves the
	// scope against its own live connections.
	exchange       = "order_events_fanout"
	reconnInterval = 10
)

type RabbitMQ struct {
	ctx          context.Context
	cfg          config.RabbitMqconfig
	mylog        mylogger.Logger
	conn         *amqp.Connection
	ch           *amqp.Channel
	reconnecting bool
	mu           *sync.Mutex
}

// create RabbitMQ adapter
func New(ctx context.Context, rabbitmqCfg config.RabbitMqconfig, mylog mylogger.Logger) (ports.IOrderEventsBroker, error) {
	r := &RabbitMQ{
		ctx:          ctx,
		cfg:          rabbitmqCfg,
		mylog:        mylog,
		mu:           &sync.Mutex{},
		reconnecting: false,
	}
	if err := r.connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %v", err)
	}
	return r, nil
}

func (r *RabbitMQ) PublishToUser(ctx context.Context, userID string, event websocketdto.Event) error {
	return r.publish(ctx, messagebrokerdto.Envelope{
		Scope:  messagebrokerdto.ScopeUser,
		Target: userID,
		Event:  event,
	})
}

func (r *RabbitMQ) PublishToOnlineDrivers(ctx context.Context, event websocketdto.Event) error {
	return r.publish(ctx, messagebrokerdto.Envelope{
		Scope: messagebrokerdto.ScopeOnlineDrivers,
		Event: event,
	})
}

func (r *RabbitMQ) PublishToOrderSubscribers(ctx context.Context, orderID string, event websocketdto.Event) error {
	return r.publish(ctx, messagebrokerdto.Envelope{
		Scope:  messagebrokerdto.ScopeOrder,
		Target: orderID,
		Event:  event,
	})
}

func (r *RabbitMQ) publish(ctx context.Context, envelope messagebrokerdto.Envelope) error {
	// Snapshot under the mutex: reconnect swaps conn/ch concurrently.
	conn, ch := r.snapshot()

	if conn == nil || conn.IsClosed() {
		r.mylog.Error("connection to rabbitmq is closed", errors.New("closed conn"))
		go r.reconnect(r.ctx)
		return errors.New("connection is closed")
	}

	body, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	return ch.PublishWithContext(ctx, exchange, "", false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
}

func (r *RabbitMQ) snapshot() (*amqp.Connection, *amqp.Channel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.conn, r.ch
}

// Consume binds an instance-private queue to the fanout exchange and returns
// its delivery channel.
func (r *RabbitMQ) Consume(ctx context.Context) (<-chan amqp.Delivery, error) {
	_, ch := r.snapshot()

	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		return nil, fmt.Errorf("declare relay queue: %w", err)
	}
	if err := ch.QueueBind(q.Name, "", exchange, false, nil); err != nil {
		return nil, fmt.Errorf("bind relay queue: %w", err)
	}
	return ch.ConsumeWithContext(ctx, q.Name, "", false, true, false, false, nil)
}

func (r *RabbitMQ) IsAlive() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.conn == nil || r.conn.IsClosed() {
		return false
	}
	if r.ch == nil || r.ch.IsClosed() {
		return false
	}
	return true
}

func (r *RabbitMQ) Close() error {
	conn, ch := r.snapshot()

	if ch != nil && !ch.IsClosed() {
		if err := ch.Close(); err != nil {
			return fmt.Errorf("close rabbitmq channel: %v", err)
		}
	}

	if conn != nil && !conn.IsClosed() {
		if err := conn.Close(); err != nil {
			return fmt.Errorf("close rabbitmq connection: %v", err)
		}
	}
	return nil
}

// connect to rabbitmq and declare the fanout topology
func (r *RabbitMQ) connect() error {
	conn, err := amqp.Dial(fmt.Sprintf("amqp://%v:%v@%v:%v/%v",
		r.cfg.User,
		r.cfg.Password,
		r.cfg.Host,
		r.cfg.Port,
		r.cfg.VHost,
	))
	if err != nil {
		return err
	}

	ch, err := conn.Channel()
	if err != nil {
		return err
	}

	if err := ch.ExchangeDeclare(exchange, "fanout", true, false, false, false, nil); err != nil {
		return err
	}

	r.mu.Lock()
	r.conn = conn
	r.ch = ch
	r.mu.Unlock()
	return nil
}

func (r *RabbitMQ) reconnect(ctx context.Context) {
	r.mu.Lock()
	if r.reconnecting {
		r.mu.Unlock()
		return
	}
	r.reconnecting = true
	r.mu.Unlock()

	t := time.NewTicker(time.Second * reconnInterval)
	mylog := r.mylog.Action("mb_reconnecting")

	for {
		select {
		case <-t.C:
			if err := r.connect(); err == nil {
				t.Stop()
				mylog.Action("mb_reconnection_completed").Info("Successfully reconnected!")
				r.mu.Lock()
				r.reconnecting = false
				r.mu.Unlock()
				return
			}
			mylog.Info("rabbitmq failed to reconnect")

		case <-ctx.Done():
			t.Stop()
			return
		}
	}
}
