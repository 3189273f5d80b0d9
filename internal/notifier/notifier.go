package notifier

import "context"

// Notifier delivers a text notification to the single destination channel
// fixed at startup. An error means the message was not delivered and the
// engine will retry it on the next tick.
type Notifier interface {
	Deliver(ctx context.Context, text string) error
}
