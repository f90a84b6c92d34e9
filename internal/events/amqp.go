package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"

	applog "pocketbook/internal/log"
)

// RoutingKey is used for every change message.
const RoutingKey = "transaction.changed"

// Circuit breaker states.
const (
	StateClosed int32 = iota
	StateOpen
	StateHalfOpen
)

const (
	maxFailures    = 5
	openTimeout    = 30 * time.Second
	maxBackoff     = 30 * time.Second
	publishTimeout = 5 * time.Second
)

// publisher is the part of *amqp091.Channel used to publish.
type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
}

// Client publishes change messages to a direct exchange and consumes them
// from a per-process queue. Messages this client published itself are
// skipped by Consume.
type Client struct {
	url          string
	exchangeName string
	queueName    string
	exclusive    bool
	source       string
	reconnecting atomic.Bool
	closed       atomic.Bool

	logger *slog.Logger

	// subscribe and backoff are replaced in tests.
	subscribe func(ctx context.Context) (<-chan amqp091.Delivery, error)
	backoff   func(attempt int) time.Duration

	mu      sync.Mutex
	conn    *amqp091.Connection
	channel *amqp091.Channel
	pub     publisher

	state        int32
	failureCount int64
	lastFailure  time.Time
}

// NewClient dials url and declares the exchange and queue. An empty
// queueName declares an exclusive server-named queue.
func NewClient(url, exchangeName, queueName string) (*Client, error) {
	c := &Client{
		url:          url,
		exchangeName: exchangeName,
		queueName:    queueName,
		exclusive:    queueName == "",
		source:       uuid.NewString(),
		backoff:      exponentialBackoff,
		logger:       slog.Default().With(applog.FieldComponent, applog.ComponentEvents),
	}
	c.subscribe = c.openDeliveries
	if err := c.connect(); err != nil {
		return nil, err
	}
	return c, nil
}

// Source identifies this process in published messages.
func (c *Client) Source() string {
	return c.source
}

func (c *Client) connect() error {
	conn, err := amqp091.Dial(c.url)
	if err != nil {
		return fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}

	c.mu.Lock()
	c.conn, c.channel, c.pub = conn, channel, channel
	c.mu.Unlock()

	if err := c.setup(); err != nil {
		c.Close()
		return fmt.Errorf("setup exchange and queue: %w", err)
	}
	return nil
}

func (c *Client) setup() error {
	err := c.channel.ExchangeDeclare(
		c.exchangeName, // name
		"direct",       // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	exclusive := c.exclusive
	name := c.queueName
	if exclusive {
		name = ""
	}
	q, err := c.channel.QueueDeclare(
		name,        // name
		!exclusive,  // durable
		exclusive,   // delete when unused
		exclusive,   // exclusive
		false,       // no-wait
		nil,         // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	c.queueName = q.Name

	if err := c.channel.QueueBind(q.Name, RoutingKey, c.exchangeName, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

// Notify implements Notifier by publishing msg as persistent JSON.
func (c *Client) Notify(ctx context.Context, msg ChangeMessage) error {
	if c.isCircuitOpen() {
		return errors.New("publish change: circuit breaker is open")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if msg.Source == "" {
		msg.Source = c.source
	}
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	c.mu.Lock()
	pub := c.pub
	c.mu.Unlock()
	if pub == nil {
		c.recordFailure()
		return errors.New("publish change: channel not open")
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = pub.PublishWithContext(ctx,
		c.exchangeName, // exchange
		RoutingKey,     // routing key
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			MessageId:    msg.ID.String(),
			Timestamp:    msg.Timestamp,
			Body:         body,
		},
	)
	if err != nil {
		c.recordFailure()
		if isConnectionError(err) {
			go c.reconnect(context.WithoutCancel(ctx))
		}
		return fmt.Errorf("publish message: %w", err)
	}
	c.recordSuccess()

	c.log().DebugContext(ctx, "Published change message",
		"id", msg.ID,
		"op", msg.Op,
		"revision", msg.Revision,
		"exchange", c.exchangeName)
	return nil
}

// ErrClientClosed is returned by Consume once Close has been called.
var ErrClientClosed = errors.New("AMQP client closed")

// Consume hands every foreign change message to handler until ctx ends or
// the client is closed. When the delivery stream breaks it resubscribes on
// the current channel with exponential backoff, reconnecting first if the
// channel is gone. Handler errors requeue the delivery; undecodable bodies
// are dropped.
func (c *Client) Consume(ctx context.Context, handler func(context.Context, ChangeMessage) error) error {
	for attempt := 0; ; attempt++ {
		msgs, err := c.subscribe(ctx)
		if err == nil {
			attempt = 0
			c.log().InfoContext(ctx, "Started consuming change messages", "queue", c.queueName)
			err = c.drain(ctx, msgs, handler)
		}
		if ctx.Err() != nil {
			c.log().InfoContext(ctx, "Stopping message consumption", "reason", ctx.Err())
			return ctx.Err()
		}
		if c.closed.Load() {
			return ErrClientClosed
		}

		wait := c.backoff(attempt)
		c.log().WarnContext(ctx, "Change consumption interrupted, resubscribing",
			"error", err,
			"attempt", attempt+1,
			"retry_in", wait)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

// openDeliveries starts a consumer on the current channel. A missing or
// closed channel kicks off a reconnect and reports an error so the caller
// retries later.
func (c *Client) openDeliveries(ctx context.Context) (<-chan amqp091.Delivery, error) {
	c.mu.Lock()
	channel := c.channel
	c.mu.Unlock()
	if channel == nil || channel.IsClosed() {
		go c.reconnect(context.WithoutCancel(ctx))
		return nil, errors.New("start consuming: channel not open")
	}

	msgs, err := channel.Consume(
		c.queueName, // queue
		"",          // consumer
		false,       // auto-ack
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		if isConnectionError(err) {
			go c.reconnect(context.WithoutCancel(ctx))
		}
		return nil, fmt.Errorf("start consuming: %w", err)
	}
	return msgs, nil
}

// drain processes deliveries until the stream closes or ctx ends.
func (c *Client) drain(ctx context.Context, msgs <-chan amqp091.Delivery, handler func(context.Context, ChangeMessage) error) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return errors.New("message channel closed")
			}
			c.handleDelivery(ctx, delivery, handler)
		}
	}
}

// acknowledger is the part of amqp091.Delivery used to settle a message.
type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

func (c *Client) handleDelivery(ctx context.Context, d amqp091.Delivery, handler func(context.Context, ChangeMessage) error) {
	c.settle(ctx, &d, d.Body, handler)
}

func (c *Client) settle(ctx context.Context, ack acknowledger, body []byte, handler func(context.Context, ChangeMessage) error) {
	msg, err := ChangeMessageFromJSON(body)
	if err != nil {
		c.log().ErrorContext(ctx, "Failed to unmarshal message", "error", err)
		ack.Nack(false, false)
		return
	}

	if msg.Source == c.source {
		ack.Ack(false)
		return
	}

	if err := handler(ctx, msg); err != nil {
		c.log().ErrorContext(ctx, "Failed to handle message",
			"error", err,
			"id", msg.ID,
			"op", msg.Op)
		ack.Nack(false, true)
		return
	}
	ack.Ack(false)
}

func (c *Client) reconnect(ctx context.Context) {
	if !c.reconnecting.CompareAndSwap(false, true) {
		return
	}
	defer c.reconnecting.Store(false)

	for attempt := 0; ; attempt++ {
		select {
		case <-ctx.Done():
			return
		case <-time.After(exponentialBackoff(attempt)):
		}
		if c.closed.Load() {
			return
		}
		c.closeConn()
		if err := c.connect(); err != nil {
			c.log().WarnContext(ctx, "AMQP reconnect failed", "attempt", attempt+1, "error", err)
			continue
		}
		c.log().InfoContext(ctx, "AMQP reconnected", "attempt", attempt+1)
		return
	}
}

func (c *Client) log() *slog.Logger {
	if c.logger == nil {
		return slog.Default()
	}
	return c.logger
}

func (c *Client) isCircuitOpen() bool {
	switch atomic.LoadInt32(&c.state) {
	case StateOpen:
		c.mu.Lock()
		last := c.lastFailure
		c.mu.Unlock()
		if time.Since(last) > openTimeout {
			atomic.StoreInt32(&c.state, StateHalfOpen)
			return false
		}
		return true
	default:
		return false
	}
}

func (c *Client) recordSuccess() {
	atomic.StoreInt64(&c.failureCount, 0)
	atomic.StoreInt32(&c.state, StateClosed)
}

func (c *Client) recordFailure() {
	c.mu.Lock()
	c.lastFailure = time.Now()
	c.mu.Unlock()
	if atomic.AddInt64(&c.failureCount, 1) >= maxFailures || atomic.LoadInt32(&c.state) == StateHalfOpen {
		atomic.StoreInt32(&c.state, StateOpen)
	}
}

// exponentialBackoff doubles from one second and caps at maxBackoff.
func exponentialBackoff(attempt int) time.Duration {
	if attempt >= 5 {
		return maxBackoff
	}
	d := time.Second << attempt
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, amqp091.ErrClosed) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, s := range []string{"connection", "eof", "broken pipe"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

func (c *Client) closeConn() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		c.conn.Close()
	}
	c.conn, c.channel, c.pub = nil, nil, nil
}

func (c *Client) Close() error {
	c.closed.Store(true)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.channel != nil {
		c.channel.Close()
	}
	var err error
	if c.conn != nil {
		err = c.conn.Close()
	}
	c.conn, c.channel, c.pub = nil, nil, nil
	return err
}
