package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/edulearn/platform/libs/metrics"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// Handler processes one decoded event
type Handler func(ctx context.Context, event *Event) error

// NATSBus publishes and subscribes to events on a core NATS connection
type NATSBus struct {
	conn    *nats.Conn
	source  string
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// Connect opens a NATS connection with unlimited reconnects
func Connect(url, source string, logger *zap.Logger) (*NATSBus, error) {
	nc, err := nats.Connect(url,
		nats.Name(source),
		nats.Timeout(10*time.Second),
		nats.ReconnectWait(time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSBus{
		conn:    nc,
		source:  source,
		logger:  logger,
		metrics: metrics.NewMetrics(),
	}, nil
}

// Publish implements Publisher
func (b *NATSBus) Publish(ctx context.Context, eventType string, payload any) error {
	event, err := NewEvent(b.source, eventType, payload)
	if err != nil {
		return err
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = b.conn.Publish(Subject(eventType), data)
	b.metrics.EventsPublished.WithLabelValues(eventType, metrics.Result(err)).Inc()
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", eventType, err)
	}
	return nil
}

// Subscribe delivers events of one type to handler. Subscribers sharing a queue
// group split the stream between them.
func (b *NATSBus) Subscribe(eventType, queue string, handler Handler) (*nats.Subscription, error) {
	sub, err := b.conn.QueueSubscribe(Subject(eventType), queue, func(msg *nats.Msg) {
		var event Event
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			b.logger.Error("failed to decode event", zap.String("subject", msg.Subject), zap.Error(err))
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := handler(ctx, &event); err != nil {
			b.logger.Error("event handler failed",
				zap.String("event_id", event.ID),
				zap.String("type", event.Type),
				zap.Error(err),
			)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", eventType, err)
	}
	return sub, nil
}

// Close drains the connection
func (b *NATSBus) Close() {
	if err := b.conn.Drain(); err != nil {
		b.logger.Warn("failed to drain NATS connection", zap.Error(err))
	}
}
