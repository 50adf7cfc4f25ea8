package messagequeue

import "context"

// Handler processes one message body. A returned error rejects the message without requeue.
type Handler func(ctx context.Context, body []byte) error

// MessageQueue defines the interface for message queue services.
type MessageQueue interface {
	Publish(ctx context.Context, queueName string, body []byte) error
	// Consume blocks, dispatching messages to handler until ctx is cancelled or the
	// delivery channel closes.
	Consume(ctx context.Context, queueName string, handler Handler) error
	Close() error
}

// Noop drops every published message. Used when RABBITMQ_URL is empty.
type Noop struct{}

func (Noop) Publish(context.Context, string, []byte) error { return nil }

func (Noop) Consume(ctx context.Context, _ string, _ Handler) error {
	<-ctx.Done()
	return nil
}

func (Noop) Close() error { return nil }
