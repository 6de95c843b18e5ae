// Package eventbus defines the port for publish/subscribe messaging.
package eventbus

import "context"

// Handler processes a single message. Returning an error causes redelivery
// where the transport supports it.
type Handler func(subject string, data []byte) error

// Bus is the port interface for event publication and subscription. It carries
// lifecycle events (applications.*, maintenance.*) and out-of-band session
// invalidation signals (sessions.revoked).
type Bus interface {
	Publish(ctx context.Context, subject string, data []byte) error
	Subscribe(ctx context.Context, subject string, handler Handler) (cancel func(), err error)
}
