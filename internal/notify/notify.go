// Package notify publishes run outcomes to RabbitMQ
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/Helper-Yoon/chat-analyzer/internal/config"
	"github.com/Helper-Yoon/chat-analyzer/internal/types"
	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// Notifier announces finished runs
type Notifier interface {
	Notify(ctx context.Context, event types.RunCompleted) error
	Close() error
}

// NewRunCompleted summarises a result for subscribers. TopAgents holds the
// first n rows of the agent summary.
func NewRunCompleted(result *types.Result, n int) types.RunCompleted {
	top := result.Agents.Summary
	if len(top) > n {
		top = top[:n]
	}
	return types.RunCompleted{
		Type:      "run_completed",
		RunID:     result.RunID,
		Status:    result.Status,
		Period:    result.Period,
		TopAgents: append([]types.AgentSummary(nil), top...),
		Timestamp: time.Now(),
	}
}

// New returns an AMQP notifier, or a no-op when AMQP_URL is unset
func New(cfg *config.Config, logger zerolog.Logger) (Notifier, error) {
	if cfg.AMQPURL == "" {
		logger.Info().Msg("run notifications disabled (AMQP_URL unset)")
		return NoopNotifier{}, nil
	}
	return NewAMQPNotifier(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPRoutingKey, logger)
}

// NoopNotifier drops every event
type NoopNotifier struct{}

func (NoopNotifier) Notify(context.Context, types.RunCompleted) error { return nil }
func (NoopNotifier) Close() error                                     { return nil }

// session is one broker connection with the exchange declared
type session interface {
	Publish(ctx context.Context, exchange, key string, msg amqp091.Publishing) error
	IsClosed() bool
	Close() error
}

type dialFunc func(url, exchange string) (session, error)

// AMQPNotifier publishes to a topic exchange with publisher confirms. A
// dropped connection is redialled on the next Notify.
type AMQPNotifier struct {
	url      string
	exchange string
	key      string
	dial     dialFunc
	logger   zerolog.Logger

	mu   sync.Mutex
	sess session
}

// NewAMQPNotifier dials the broker and declares the exchange
func NewAMQPNotifier(url, exchange, key string, logger zerolog.Logger) (*AMQPNotifier, error) {
	return newAMQPNotifier(url, exchange, key, dialSession, logger)
}

func newAMQPNotifier(url, exchange, key string, dial dialFunc, logger zerolog.Logger) (*AMQPNotifier, error) {
	sess, err := dial(url, exchange)
	if err != nil {
		return nil, err
	}

	logger.Info().Str("exchange", exchange).Str("key", key).Msg("run notifications enabled")
	return &AMQPNotifier{
		url:      url,
		exchange: exchange,
		key:      key,
		dial:     dial,
		logger:   logger.With().Str("component", "notifier").Logger(),
		sess:     sess,
	}, nil
}

// Notify publishes the event and waits for the broker's confirm
func (n *AMQPNotifier) Notify(ctx context.Context, event types.RunCompleted) error {
	msg, err := Publishing(event)
	if err != nil {
		return err
	}

	sess, err := n.session()
	if err != nil {
		return err
	}
	err = sess.Publish(ctx, n.exchange, n.key, msg)
	if err != nil && sess.IsClosed() && ctx.Err() == nil {
		// connection dropped mid-publish; retry once on a fresh one
		if sess, err = n.session(); err != nil {
			return err
		}
		err = sess.Publish(ctx, n.exchange, n.key, msg)
	}
	if err != nil {
		return err
	}

	n.logger.Info().
		Str("run_id", event.RunID).
		Str("exchange", n.exchange).
		Str("key", n.key).
		Msg("published")
	return nil
}

// session returns the open session, redialling when the last one closed
func (n *AMQPNotifier) session() (session, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.sess != nil && !n.sess.IsClosed() {
		return n.sess, nil
	}
	if n.sess != nil {
		_ = n.sess.Close()
		n.sess = nil
		n.logger.Warn().Msg("broker connection lost, reconnecting")
	}

	sess, err := n.dial(n.url, n.exchange)
	if err != nil {
		return nil, fmt.Errorf("reconnect to broker: %w", err)
	}
	n.sess = sess
	n.logger.Info().Str("exchange", n.exchange).Msg("reconnected to broker")
	return sess, nil
}

func (n *AMQPNotifier) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.sess == nil {
		return nil
	}
	err := n.sess.Close()
	n.sess = nil
	return err
}

// amqpSession publishes over its own channel per message
type amqpSession struct {
	conn *amqp091.Connection
}

func dialSession(url, exchange string) (session, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	defer ch.Close()
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, err
	}
	return &amqpSession{conn: conn}, nil
}

func (s *amqpSession) Publish(ctx context.Context, exchange, key string, msg amqp091.Publishing) error {
	ch, err := s.conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()
	if err := ch.Confirm(false); err != nil {
		return err
	}

	confirm, err := ch.PublishWithDeferredConfirmWithContext(ctx, exchange, key, false, false, msg)
	if err != nil {
		return err
	}
	acked, err := confirm.WaitContext(ctx)
	if err != nil {
		return err
	}
	if !acked {
		return fmt.Errorf("broker rejected run %s", msg.CorrelationId)
	}
	return nil
}

func (s *amqpSession) IsClosed() bool { return s.conn.IsClosed() }
func (s *amqpSession) Close() error   { return s.conn.Close() }

// Envelope is the message body: event metadata plus the event
type Envelope struct {
	Meta Meta `json:"meta"`
	Data any  `json:"data"`
}

// Meta identifies an envelope
type Meta struct {
	ID            string    `json:"id"`
	Type          string    `json:"type"`
	CorrelationID string    `json:"correlationId"`
	OccurredAt    time.Time `json:"occurredAt"`
}

// Publishing builds the AMQP message for an event. The run id is the
// correlation id.
func Publishing(event types.RunCompleted) (amqp091.Publishing, error) {
	env := Envelope{
		Meta: Meta{
			ID:            uuid.NewString(),
			Type:          event.Type,
			CorrelationID: event.RunID,
			OccurredAt:    event.Timestamp,
		},
		Data: event,
	}
	body, err := json.Marshal(env)
	if err != nil {
		return amqp091.Publishing{}, err
	}

	return amqp091.Publishing{
		ContentType:   "application/json",
		DeliveryMode:  amqp091.Persistent,
		MessageId:     env.Meta.ID,
		CorrelationId: event.RunID,
		Type:          event.Type,
		Timestamp:     event.Timestamp,
		Body:          body,
	}, nil
}
