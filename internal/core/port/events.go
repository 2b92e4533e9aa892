package port

import "context"

// EventConsumer is an interface to define a storage event consumer (nats, kafka, ...)
type EventConsumer interface {
	Subscribe(ctx context.Context, handler MessageService) error
	Close() error
}

// MessageService is an interface to define message handling.
// A returned error asks the broker to redeliver the message.
type MessageService interface {
	HandleMessage(ctx context.Context, data []byte) error
}
