package nats

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"quipt/internal/config"
	"quipt/internal/core/port"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// defaultAckWait mirrors the JetStream server default
const defaultAckWait = 30 * time.Second

// resubscribeDelay spaces attempts to reopen a subscription the server closed
const resubscribeDelay = time.Second

// Consumer is a struct to interact with nats
type Consumer struct {
	logger *slog.Logger
	conn   *nats.Conn
	js     jetstream.JetStream
	config config.NATSConfig
	wg     sync.WaitGroup

	mu     sync.Mutex
	iter   jetstream.MessagesContext
	done   chan struct{}
	closed bool
}

// messageSource is the part of jetstream.MessagesContext the receive loop uses
type messageSource interface {
	Next(opts ...jetstream.NextOpt) (jetstream.Msg, error)
}

// NewNATSConsumer creates a new consumer
func NewNATSConsumer(cfg config.NATSConfig, logger *slog.Logger) (*Consumer, error) {

	opts := []nats.Option{
		nats.Name(cfg.ConsumerName),
		nats.ReconnectWait(2 * time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logger.Warn("NATS disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected", "url", nc.ConnectedUrl())
		}),
	}
	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to connect to JetStream: %w", err)
	}

	return &Consumer{
		conn:   conn,
		js:     js,
		config: cfg,
		logger: logger,
		done:   make(chan struct{}),
	}, nil
}

func (n *Consumer) ackWait() time.Duration {
	if n.config.AckWait > 0 {
		return n.config.AckWait
	}
	return defaultAckWait
}

// Subscribe subscribes to stream and handles messages one at a time
func (n *Consumer) Subscribe(ctx context.Context, handler port.MessageService) error {
	iter, err := n.open(ctx)
	if err != nil {
		return err
	}
	if !n.setIter(iter) {
		iter.Stop()
		return errors.New("consumer is closed")
	}

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		n.logger.Info("NATS subscription started", "stream", n.config.StreamName, "subject", n.config.Subject)
		n.run(ctx, iter, handler)
		n.logger.Info("NATS subscription stopped")
	}()
	return nil
}

func (n *Consumer) open(ctx context.Context) (jetstream.MessagesContext, error) {
	consumerCfg := jetstream.ConsumerConfig{
		Durable:       n.config.ConsumerName,
		AckPolicy:     jetstream.AckExplicitPolicy,
		FilterSubject: n.config.Subject,
		AckWait:       n.ackWait(),
		MaxDeliver:    n.config.MaxDeliver,
		MaxAckPending: 1,
	}

	cons, err := n.js.CreateOrUpdateConsumer(ctx, n.config.StreamName, consumerCfg)
	if err != nil {
		return nil, err
	}
	return cons.Messages()
}

// run receives until ctx is cancelled or Close is called.
// Receive errors are logged and skipped; a subscription closed by the server is reopened.
func (n *Consumer) run(ctx context.Context, source messageSource, handler port.MessageService) {
	for {
		msg, err := source.Next()
		if err == nil {
			n.handle(ctx, msg, handler)
			continue
		}
		if n.stopping(ctx) {
			return
		}
		if !errors.Is(err, jetstream.ErrMsgIteratorClosed) {
			n.logger.Warn("failed to receive message", "error", err)
			continue
		}

		n.logger.Warn("NATS subscription closed by server, reopening", "error", err)
		reopened := n.reopen(ctx)
		if reopened == nil {
			return
		}
		source = reopened
	}
}

func (n *Consumer) reopen(ctx context.Context) messageSource {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-n.done:
			return nil
		case <-time.After(resubscribeDelay):
		}

		iter, err := n.open(ctx)
		if err != nil {
			n.logger.Error("failed to reopen NATS subscription", "error", err)
			continue
		}
		if !n.setIter(iter) {
			iter.Stop()
			return nil
		}
		n.logger.Info("NATS subscription reopened")
		return iter
	}
}

func (n *Consumer) setIter(iter jetstream.MessagesContext) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return false
	}
	n.iter = iter
	return true
}

func (n *Consumer) stopping(ctx context.Context) bool {
	if ctx.Err() != nil {
		return true
	}
	select {
	case <-n.done:
		return true
	default:
		return false
	}
}

// handle runs handler while keeping the message leased, then settles it
func (n *Consumer) handle(ctx context.Context, msg jetstream.Msg, handler port.MessageService) {
	stop := n.keepAlive(msg)
	handleErr := handler.HandleMessage(ctx, msg.Data())
	stop()

	if handleErr == nil {
		if ackErr := msg.Ack(); ackErr != nil {
			n.logger.Error("failed to ack message", "error", ackErr)
		}
		return
	}

	var delivered uint64 = 1
	if meta, err := msg.Metadata(); err == nil {
		delivered = meta.NumDelivered
	}

	if n.config.MaxDeliver > 0 && delivered >= uint64(n.config.MaxDeliver) {
		n.logger.Error("dropping message after max deliveries", "deliveries", delivered, "error", handleErr)
		if termErr := msg.Term(); termErr != nil {
			n.logger.Error("failed to term message", "error", termErr)
		}
		return
	}

	n.logger.Warn("failed to handle message", "deliveries", delivered, "error", handleErr)
	if nakErr := msg.NakWithDelay(n.config.RetryDelay * time.Duration(delivered)); nakErr != nil {
		n.logger.Error("failed to nak message", "error", nakErr)
	}
}

// keepAlive reports progress at half the ack wait until the returned func is called
func (n *Consumer) keepAlive(msg jetstream.Msg) func() {
	done := make(chan struct{})
	ticker := time.NewTicker(n.ackWait() / 2)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := msg.InProgress(); err != nil {
					n.logger.Warn("failed to extend message lease", "error", err)
				}
			}
		}
	}()

	return func() {
		close(done)
		wg.Wait()
	}
}

// Close graceful shutdown
func (n *Consumer) Close() error {
	n.mu.Lock()
	if !n.closed {
		n.closed = true
		close(n.done)
		if n.iter != nil {
			n.iter.Stop()
		}
	}
	n.mu.Unlock()

	n.wg.Wait()

	if n.conn != nil {
		n.conn.Close()
	}
	return nil
}
